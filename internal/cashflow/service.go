package cashflow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Service is the append-only cash ledger.
type Service struct {
	storage Storage
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a new Service.
func NewService(storage Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	return &Service{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// ListCashFlows returns every entry, most recent first.
func (s *Service) ListCashFlows(ctx context.Context) ([]*CashFlow, error) {
	all, err := s.storage.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list cash flows", zap.Error(err))
		return nil, fmt.Errorf("failed to list cash flows: %w", err)
	}
	return all, nil
}

// RecordCashFlow appends an entry dated now. Amounts are taken as given;
// zero and negative values are accepted as corrections.
func (s *Service) RecordCashFlow(ctx context.Context, description string, amount float64, isInflow bool) (*CashFlow, error) {
	cf := &CashFlow{
		Description: description,
		Amount:      amount,
		IsInflow:    isInflow,
		Date:        s.now(),
	}

	if err := s.storage.Insert(ctx, cf); err != nil {
		s.logger.Error("failed to save cash flow", zap.String("description", description), zap.Error(err))
		return nil, fmt.Errorf("failed to save cash flow: %w", err)
	}

	s.logger.Info("cash flow recorded",
		zap.String("cashflow_id", cf.ID.Hex()),
		zap.Float64("amount", amount),
		zap.Bool("inflow", isInflow),
	)
	return cf, nil
}
