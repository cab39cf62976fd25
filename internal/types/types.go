// Package types holds the request and response bodies of the HTTP API.
package types

import (
	"github.com/cyphera/remote-accounts/internal/principal"
	"github.com/cyphera/remote-accounts/internal/results"
	"github.com/ethereum/go-ethereum/common"
)

type ErrorResponse struct {
	Error         string `json:"error"`
	Details       string `json:"details,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	ChainID     uint64 `json:"chain_id"`
	SourceChain string `json:"source_chain"`
	BlockTime   uint64 `json:"block_time"`
}

// AddressResponse is the deterministic account location of a principal.
type AddressResponse struct {
	Principal principal.Identity `json:"principal"`
	Factory   common.Address     `json:"factory"`
	Address   common.Address     `json:"address"`
	Deployed  bool               `json:"deployed"`
}

// AccountResponse describes whatever lives at an address.
type AccountResponse struct {
	Address  common.Address `json:"address"`
	Deployed bool           `json:"deployed"`
	CodeHash common.Hash    `json:"code_hash"`
	Code     string         `json:"code,omitempty"`
	Owner    common.Address `json:"owner"`
	// Genuine is set when the code is the delegate account the factory deploys.
	Genuine bool   `json:"genuine"`
	Balance string `json:"balance"`
}

type RouterResponse struct {
	Address      common.Address `json:"address"`
	SourceChain  string         `json:"source_chain"`
	Authority    common.Address `json:"authority"`
	Gateway      common.Address `json:"gateway"`
	Factory      common.Address `json:"factory"`
	Isolation    string         `json:"isolation"`
	Successor    common.Address `json:"successor"`
	HasSuccessor bool           `json:"has_successor"`
}

type SetSuccessorRequest struct {
	Router    common.Address `json:"router" binding:"required"`
	Successor common.Address `json:"successor" binding:"required"`
}

type ResultListResponse struct {
	Object string           `json:"object"`
	Data   []results.Record `json:"data"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}
