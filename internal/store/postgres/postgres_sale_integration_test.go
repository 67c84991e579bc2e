package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sucursalpos/internal/domain"
	"sucursalpos/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	databaseURL := os.Getenv("SUCURSALPOS_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set SUCURSALPOS_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func TestSaleDecrementsAndSummaryRange(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	stamp := time.Now().UnixNano()
	branchID := fmt.Sprintf("br-it-%d", stamp)
	itemID := fmt.Sprintf("inv-it-%d", stamp)
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sales WHERE branch_id = $1`, branchID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, itemID)
	})

	if _, err := s.CreateInventoryItem(ctx, domain.InventoryItem{
		ID: itemID, BranchID: branchID, Description: "Cable IT", Price: decimal.RequireFromString("10.00"),
		Quantity: 10, Codes: []string{"IT-1"},
	}); err != nil {
		t.Fatalf("create item: %v", err)
	}

	sale, err := s.CreateSale(ctx, domain.Sale{
		EmployeeID: "usr-it",
		BranchID:   branchID,
		Total:      decimal.RequireFromString("30.00"),
		Lines: []domain.SaleLine{
			{ItemID: itemID, Description: "Cable IT", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if err := s.IncrementInventoryQuantity(ctx, itemID, -3); err != nil {
		t.Fatalf("decrement: %v", err)
	}

	item, err := s.GetInventoryItem(ctx, itemID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if item.Quantity != 7 {
		t.Fatalf("expected 7 left, got %d", item.Quantity)
	}
	if len(item.Codes) != 1 || item.Codes[0] != "IT-1" {
		t.Fatalf("codes did not round-trip: %v", item.Codes)
	}

	sales, err := s.ListSales(ctx, domain.SaleFilter{BranchID: branchID, From: sale.CreatedAt.Add(-time.Second)})
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(sales) != 1 || !sales[0].Total.Equal(decimal.RequireFromString("30.00")) || len(sales[0].Lines) != 1 {
		t.Fatalf("unexpected sales: %+v", sales)
	}
}

func TestCreateSaleWithStockRejectsOversell(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	stamp := time.Now().UnixNano()
	branchID := fmt.Sprintf("br-it-%d", stamp)
	itemID := fmt.Sprintf("inv-it-%d", stamp)
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sales WHERE branch_id = $1`, branchID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, itemID)
	})

	if _, err := s.CreateInventoryItem(ctx, domain.InventoryItem{
		ID: itemID, BranchID: branchID, Description: "Last unit", Price: decimal.NewFromInt(5), Quantity: 1,
	}); err != nil {
		t.Fatalf("create item: %v", err)
	}

	sale := domain.Sale{
		EmployeeID: "usr-it",
		BranchID:   branchID,
		Total:      decimal.NewFromInt(5),
		Lines:      []domain.SaleLine{{ItemID: itemID, Description: "Last unit", UnitPrice: decimal.NewFromInt(5), Quantity: 1}},
	}
	if _, err := s.CreateSaleWithStock(ctx, sale); err != nil {
		t.Fatalf("first sale: %v", err)
	}
	if _, err := s.CreateSaleWithStock(ctx, sale); !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	item, err := s.GetInventoryItem(ctx, itemID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if item.Quantity != 0 {
		t.Fatalf("expected 0 left, got %d", item.Quantity)
	}
}
