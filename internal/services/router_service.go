package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/cyphera/remote-accounts/internal/account"
	"github.com/cyphera/remote-accounts/internal/bridge"
	"github.com/cyphera/remote-accounts/internal/factory"
	"github.com/cyphera/remote-accounts/internal/genesis"
	"github.com/cyphera/remote-accounts/internal/ledger"
	"github.com/cyphera/remote-accounts/internal/logger"
	"github.com/cyphera/remote-accounts/internal/ownable"
	"github.com/cyphera/remote-accounts/internal/principal"
	"github.com/cyphera/remote-accounts/internal/router"
	"github.com/cyphera/remote-accounts/internal/types"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

var (
	ErrUnknownRouter    = errors.New("router not found")
	ErrInvalidPrincipal = errors.New("invalid principal")
)

// RouterService exposes the deployed system to the HTTP layer.
type RouterService struct {
	ledger     *ledger.Ledger
	deployment *genesis.Deployment
	gateway    *bridge.Gateway
	logger     *zap.Logger
}

func NewRouterService(l *ledger.Ledger, d *genesis.Deployment, gw *bridge.Gateway) *RouterService {
	return &RouterService{
		ledger:     l,
		deployment: d,
		gateway:    gw,
		logger:     logger.Log,
	}
}

func (s *RouterService) Deliver(ctx context.Context, msg bridge.Message) (*bridge.Delivery, error) {
	return s.gateway.Deliver(ctx, msg)
}

// AddressOf computes where the factory places the account of p.
func (s *RouterService) AddressOf(_ context.Context, p principal.Identity) (*types.AddressResponse, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrincipal, err)
	}
	addr := factory.AddressFor(s.deployment.Factory, p)
	return &types.AddressResponse{
		Principal: p,
		Factory:   s.deployment.Factory,
		Address:   addr,
		Deployed:  s.ledger.CodeHash(addr) != (common.Hash{}),
	}, nil
}

func (s *RouterService) DescribeAccount(_ context.Context, addr common.Address) (*types.AccountResponse, error) {
	resp := &types.AccountResponse{
		Address: addr,
		Balance: s.ledger.Balance(addr).String(),
	}
	code, ok := s.ledger.Code(addr)
	if !ok {
		return resp, nil
	}
	resp.Deployed = true
	resp.CodeHash = code.Hash()
	resp.Code = code.String()
	resp.Genuine = resp.CodeHash == account.Code.Hash()
	err := s.ledger.View(addr, func(f *ledger.Frame) error {
		resp.Owner = ownable.Owner(f)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read owner of %s: %w", addr.Hex(), err)
	}
	return resp, nil
}

func (s *RouterService) ListRouters(ctx context.Context) ([]types.RouterResponse, error) {
	out := make([]types.RouterResponse, 0, len(s.deployment.Routers))
	for _, addr := range s.deployment.Routers {
		r, err := s.GetRouter(ctx, addr)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, nil
}

func (s *RouterService) GetRouter(_ context.Context, addr common.Address) (*types.RouterResponse, error) {
	c, ok := s.ledger.Contract(addr)
	if !ok {
		return nil, fmt.Errorf("%w at %s", ErrUnknownRouter, addr.Hex())
	}
	r, ok := c.(*router.Router)
	if !ok {
		return nil, fmt.Errorf("%w at %s", ErrUnknownRouter, addr.Hex())
	}
	resp := &types.RouterResponse{
		Address:     addr,
		SourceChain: r.SourceChain(),
		Authority:   r.Authority(),
		Gateway:     r.Gateway(),
		Factory:     r.Factory(),
		Isolation:   r.Isolation().String(),
	}
	err := s.ledger.View(addr, func(f *ledger.Frame) error {
		resp.Successor = r.Successor(f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp.HasSuccessor = resp.Successor != (common.Address{})
	return resp, nil
}

// SetSuccessor records the successor of routerAddr as the local authority.
func (s *RouterService) SetSuccessor(ctx context.Context, routerAddr, successor common.Address) (*types.RouterResponse, error) {
	if _, err := s.GetRouter(ctx, routerAddr); err != nil {
		return nil, err
	}
	receipt := s.ledger.Transact(s.deployment.Authority, func(f *ledger.Frame) error {
		return ledger.Invoke(f, routerAddr, func(r *router.Router, callee *ledger.Frame) error {
			return r.SetSuccessor(callee, successor)
		})
	})
	if receipt.Err != nil {
		return nil, fmt.Errorf("failed to set successor: %w", receipt.Err)
	}
	s.logger.Info("Router successor updated",
		logger.Router(routerAddr),
		zap.String("successor", successor.Hex()),
		zap.Uint64("block", receipt.Number),
	)
	return s.GetRouter(ctx, routerAddr)
}
