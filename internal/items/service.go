package items

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidItem is returned when an item is missing a key field, carries
// a negative quantity or threshold, or would exceed MaxQuantity.
var ErrInvalidItem = errors.New("invalid item")

// ErrInvalidAmount is returned when a stock movement is not a positive amount.
var ErrInvalidAmount = errors.New("amount must be greater than zero")

// Service is the item ledger: upsert by natural key and stock movements.
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

// ListItems returns every item in natural store order.
func (s *Service) ListItems(ctx context.Context) ([]*Item, error) {
	all, err := s.storage.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list items", zap.Error(err))
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return all, nil
}

// UpsertItem adds quantity to the item with the same (name, brand, type), or
// creates it. The threshold only applies to newly created items.
func (s *Service) UpsertItem(ctx context.Context, in NewItem) (*Item, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Brand = strings.TrimSpace(in.Brand)
	in.Type = strings.TrimSpace(in.Type)

	switch {
	case in.Name == "" || in.Brand == "" || in.Type == "":
		return nil, fmt.Errorf("%w: name, brand and type are required", ErrInvalidItem)
	case in.Quantity < 0:
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidItem)
	case in.Quantity > MaxQuantity:
		return nil, fmt.Errorf("%w: quantity must not exceed %d", ErrInvalidItem, MaxQuantity)
	case in.LowStockThreshold < 0:
		return nil, fmt.Errorf("%w: lowStockThreshold must not be negative", ErrInvalidItem)
	}

	item, err := s.storage.Upsert(ctx, in, s.now())
	if errors.Is(err, ErrQuantityLimit) {
		s.logger.Warn("item upsert rejected",
			zap.String("name", in.Name),
			zap.Int("added", in.Quantity),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrInvalidItem, err)
	}
	if err != nil {
		s.logger.Error("failed to upsert item",
			zap.String("name", in.Name),
			zap.String("brand", in.Brand),
			zap.String("type", in.Type),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to upsert item: %w", err)
	}

	s.logger.Info("item upserted",
		zap.String("item_id", item.ID.Hex()),
		zap.Int("added", in.Quantity),
		zap.Int("quantity", item.Quantity),
	)
	return item, nil
}

// GetItem resolves an item by its hex id.
func (s *Service) GetItem(ctx context.Context, id string) (*Item, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	item, err := s.storage.Read(ctx, oid)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("failed to read item", zap.String("item_id", id), zap.Error(err))
		}
		return nil, err
	}
	return item, nil
}

// DecrementStock removes amount from the stock of an item in a single
// conditional update. It fails with ErrInvalidAmount, ErrNotFound or
// ErrInsufficientStock.
func (s *Service) DecrementStock(ctx context.Context, id string, amount int) (*Item, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	item, err := s.storage.Decrement(ctx, oid, amount, s.now())
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInsufficientStock):
		s.logger.Warn("stock decrement rejected", zap.String("item_id", id), zap.Int("amount", amount), zap.Error(err))
		return nil, err
	case err != nil:
		s.logger.Error("failed to decrement stock", zap.String("item_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}

	s.logger.Info("stock decremented",
		zap.String("item_id", id),
		zap.Int("amount", amount),
		zap.Int("quantity", item.Quantity),
	)
	return item, nil
}

// RestoreStock puts amount back on an item after a failed sale.
func (s *Service) RestoreStock(ctx context.Context, id string, amount int) (*Item, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	item, err := s.storage.Increment(ctx, oid, amount, s.now())
	if err != nil {
		s.logger.Error("failed to restore stock", zap.String("item_id", id), zap.Int("amount", amount), zap.Error(err))
		return nil, fmt.Errorf("failed to restore stock: %w", err)
	}

	s.logger.Info("stock restored", zap.String("item_id", id), zap.Int("amount", amount))
	return item, nil
}

// ListLowStock returns the items whose quantity is strictly below their threshold.
func (s *Service) ListLowStock(ctx context.Context) ([]*Item, error) {
	low, err := s.storage.LowStock(ctx)
	if err != nil {
		s.logger.Error("failed to list low stock items", zap.Error(err))
		return nil, fmt.Errorf("failed to list low stock items: %w", err)
	}
	return low, nil
}
