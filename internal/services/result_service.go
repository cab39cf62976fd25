package services

import (
	"context"

	"github.com/cyphera/remote-accounts/internal/logger"
	"github.com/cyphera/remote-accounts/internal/results"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ResultService reads operation results from a store.
type ResultService struct {
	store  results.Store
	logger *zap.Logger
}

func NewResultService(store results.Store) *ResultService {
	return &ResultService{
		store:  store,
		logger: logger.Log,
	}
}

func (s *ResultService) GetResult(ctx context.Context, id common.Hash) (*results.Record, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *ResultService) ListResults(ctx context.Context, q results.Query) ([]results.Record, error) {
	records, err := s.store.List(ctx, q)
	if err != nil {
		s.logger.Error("Failed to list results", zap.String("store", s.store.Name()), zap.Error(err))
		return nil, err
	}
	return records, nil
}

func (s *ResultService) ListMessageResults(ctx context.Context, messageID string) ([]results.Record, error) {
	return s.store.ListByMessage(ctx, messageID)
}
