package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockflow/internal/items"
)

// UnitPrice is the fixed price charged per unit sold.
const UnitPrice = 19.99

var unitPrice = decimal.NewFromFloat(UnitPrice)

var (
	// ErrInvalidItemID is returned when the item id is not a valid identifier.
	ErrInvalidItemID = errors.New("invalid item id")
	// ErrItemNotFound is returned when the item id does not resolve to an item.
	ErrItemNotFound = errors.New("item not found")
	// ErrInsufficientStock is returned when the sale exceeds the quantity on hand.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidQuantity is returned for sales of zero or fewer units.
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
)

// Inventory is the part of the item ledger a sale needs.
type Inventory interface {
	GetItem(ctx context.Context, id string) (*items.Item, error)
	DecrementStock(ctx context.Context, id string, amount int) (*items.Item, error)
	RestoreStock(ctx context.Context, id string, amount int) (*items.Item, error)
}

// Service records sales against the item ledger.
type Service struct {
	storage   Storage
	inventory Inventory
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new Service.
func NewService(storage Storage, inventory Inventory, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	return &Service{
		storage:   storage,
		inventory: inventory,
		logger:    logger,
		now:       time.Now,
	}
}

// Total returns the amount charged for quantity units.
func Total(quantity int) float64 {
	return decimal.NewFromInt(int64(quantity)).Mul(unitPrice).Round(2).InexactFloat64()
}

// RecordSale resolves the item, takes quantity units out of its stock and
// stores the sale. The stock check and decrement are one conditional update,
// so concurrent sales cannot take the stock below zero.
func (s *Service) RecordSale(ctx context.Context, itemID string, quantity int) (*Sale, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.inventory.GetItem(ctx, itemID)
	if err != nil {
		return nil, s.translate(err, itemID)
	}
	if item.Quantity < quantity {
		s.logger.Warn("sale rejected",
			zap.String("item_id", itemID),
			zap.Int("requested", quantity),
			zap.Int("available", item.Quantity),
		)
		return nil, ErrInsufficientStock
	}

	if _, err := s.inventory.DecrementStock(ctx, itemID, quantity); err != nil {
		return nil, s.translate(err, itemID)
	}

	sale := &Sale{
		ItemID:   item.ID,
		ItemName: item.Name,
		Quantity: quantity,
		Total:    Total(quantity),
		SaleDate: s.now(),
	}

	if err := s.storage.Insert(ctx, sale); err != nil {
		s.logger.Error("failed to save sale, restoring stock", zap.String("item_id", itemID), zap.Error(err))
		if _, rerr := s.inventory.RestoreStock(ctx, itemID, quantity); rerr != nil {
			s.logger.Error("stock left decremented without a sale",
				zap.String("item_id", itemID),
				zap.Int("quantity", quantity),
				zap.Error(rerr),
			)
		}
		return nil, fmt.Errorf("failed to save sale: %w", err)
	}

	s.logger.Info("sale recorded",
		zap.String("sale_id", sale.ID.Hex()),
		zap.String("item_id", itemID),
		zap.Int("quantity", quantity),
		zap.Float64("total", sale.Total),
	)
	return sale, nil
}

// ListSales returns every sale, most recent first.
func (s *Service) ListSales(ctx context.Context) ([]*Sale, error) {
	all, err := s.storage.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list sales", zap.Error(err))
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return all, nil
}

func (s *Service) translate(err error, itemID string) error {
	switch {
	case errors.Is(err, items.ErrInvalidID):
		s.logger.Warn("sale rejected: malformed item id", zap.String("item_id", itemID))
		return ErrInvalidItemID
	case errors.Is(err, items.ErrNotFound):
		s.logger.Warn("sale rejected: item not found", zap.String("item_id", itemID))
		return ErrItemNotFound
	case errors.Is(err, items.ErrInsufficientStock):
		s.logger.Warn("sale rejected: insufficient stock", zap.String("item_id", itemID))
		return ErrInsufficientStock
	default:
		s.logger.Error("failed to record sale", zap.String("item_id", itemID), zap.Error(err))
		return fmt.Errorf("failed to record sale: %w", err)
	}
}
