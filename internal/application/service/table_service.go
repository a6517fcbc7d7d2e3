package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/cart"
	"github.com/sangkips/tableside-api/internal/domain/entity"
	"github.com/sangkips/tableside-api/internal/domain/money"
	"github.com/sangkips/tableside-api/internal/domain/repository"
	"github.com/sangkips/tableside-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// TableService is the read-side projection of a table's open orders
type TableService struct {
	tables repository.TableRepository
	orders repository.OrderRepository
}

// NewTableService creates a new table service
func NewTableService(tables repository.TableRepository, orders repository.OrderRepository) *TableService {
	return &TableService{tables: tables, orders: orders}
}

// TableLine is one merged line of a table summary
type TableLine struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"-"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"-"`
}

// TableSummary aggregates every active order of a table
type TableSummary struct {
	Table             *entity.Table   `json:"table"`
	PendingCount      int             `json:"pending_count"`
	OutstandingAmount decimal.Decimal `json:"-"`
	OrderIDs          []uuid.UUID     `json:"order_ids"`
	Lines             []TableLine     `json:"lines"`
}

// ListTables returns the outlet's tables
func (s *TableService) ListTables(ctx context.Context) ([]entity.Table, error) {
	return s.tables.List(ctx)
}

// ListActiveOrders returns the table's orders in pending, preparing, ready or served
func (s *TableService) ListActiveOrders(ctx context.Context, tableID uuid.UUID) ([]entity.Order, error) {
	if _, err := s.table(ctx, tableID); err != nil {
		return nil, err
	}
	return s.orders.ListActiveByTable(ctx, tableID)
}

// Summary merges the table's active orders into one view
func (s *TableService) Summary(ctx context.Context, tableID uuid.UUID) (*TableSummary, error) {
	table, err := s.table(ctx, tableID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListActiveByTable(ctx, tableID)
	if err != nil {
		return nil, err
	}

	summary := &TableSummary{
		Table:             table,
		PendingCount:      len(orders),
		OutstandingAmount: decimal.Zero,
		OrderIDs:          make([]uuid.UUID, 0, len(orders)),
	}
	basket := cart.New()
	for _, o := range orders {
		summary.OrderIDs = append(summary.OrderIDs, o.ID)
		summary.OutstandingAmount = summary.OutstandingAmount.Add(o.TotalAmount)
		for _, l := range o.Lines {
			basket = basket.Add(cart.Item{Name: l.Name, Price: l.UnitPrice, Quantity: l.Quantity})
		}
	}

	items := basket.Items()
	summary.Lines = make([]TableLine, len(items))
	for i, it := range items {
		summary.Lines[i] = TableLine{
			Name:      it.Name,
			UnitPrice: it.Price,
			Quantity:  it.Quantity,
			Total:     it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
		}
	}
	return summary, nil
}

func (s *TableService) table(ctx context.Context, id uuid.UUID) (*entity.Table, error) {
	table, err := s.tables.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, apperror.NewNotFoundError("Table")
	}
	return table, nil
}

// MarshalJSON renders money fields as decimals rounded to cents
func (l TableLine) MarshalJSON() ([]byte, error) {
	type Alias TableLine
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		Total     float64 `json:"total"`
	}{
		Alias:     Alias(l),
		UnitPrice: money.Float(l.UnitPrice),
		Total:     money.Float(l.Total),
	})
}

// MarshalJSON renders the outstanding amount rounded to cents
func (t TableSummary) MarshalJSON() ([]byte, error) {
	type Alias TableSummary
	return json.Marshal(&struct {
		Alias
		OutstandingAmount float64 `json:"outstanding_amount"`
	}{
		Alias:             Alias(t),
		OutstandingAmount: money.Float(t.OutstandingAmount),
	})
}
