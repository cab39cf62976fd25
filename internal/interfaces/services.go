package interfaces

import (
	"context"

	"github.com/cyphera/remote-accounts/internal/bridge"
	"github.com/cyphera/remote-accounts/internal/principal"
	"github.com/cyphera/remote-accounts/internal/results"
	"github.com/cyphera/remote-accounts/internal/types"
	"github.com/ethereum/go-ethereum/common"
)

// MessageService accepts relayed bridge messages.
type MessageService interface {
	Deliver(ctx context.Context, msg bridge.Message) (*bridge.Delivery, error)
}

// AccountService answers questions about principal accounts.
type AccountService interface {
	AddressOf(ctx context.Context, p principal.Identity) (*types.AddressResponse, error)
	DescribeAccount(ctx context.Context, addr common.Address) (*types.AccountResponse, error)
}

// RouterAdminService inspects routers and performs authority actions.
type RouterAdminService interface {
	ListRouters(ctx context.Context) ([]types.RouterResponse, error)
	GetRouter(ctx context.Context, addr common.Address) (*types.RouterResponse, error)
	SetSuccessor(ctx context.Context, routerAddr, successor common.Address) (*types.RouterResponse, error)
}

// ResultService reads the audit trail.
type ResultService interface {
	GetResult(ctx context.Context, id common.Hash) (*results.Record, error)
	ListResults(ctx context.Context, q results.Query) ([]results.Record, error)
	ListMessageResults(ctx context.Context, messageID string) ([]results.Record, error)
}
