package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sucursalpos/internal/domain"
	"sucursalpos/internal/sale"
	"sucursalpos/internal/store"
	"sucursalpos/internal/store/memory"
)

var (
	testNow  = time.Date(2026, 4, 14, 15, 30, 0, 0, time.UTC)
	adminSes = domain.Session{UserID: "usr-admin", Name: "Admin", Role: domain.RoleAdmin}
	clerkSes = domain.Session{UserID: "usr-clerk", Name: "Clerk", Role: domain.RoleEmployee, BranchID: "br-1"}
)

func newTestService(t *testing.T, repo store.Repository, consistency string) *Service {
	t.Helper()
	return New(repo, Options{
		Location:    time.UTC,
		Consistency: consistency,
		Now:         func() time.Time { return testNow },
	})
}

func seedBranchItem(t *testing.T, repo *memory.Store, id string, price string, qty int) {
	t.Helper()
	ctx := context.Background()
	if _, err := repo.GetBranch(ctx, "br-1"); errors.Is(err, store.ErrNotFound) {
		_, err := repo.CreateBranch(ctx, domain.Branch{ID: "br-1", Name: "Centro"})
		require.NoError(t, err)
	}
	_, err := repo.CreateInventoryItem(ctx, domain.InventoryItem{
		ID:          id,
		BranchID:    "br-1",
		Description: "Item " + id,
		Price:       decimal.RequireFromString(price),
		Quantity:    qty,
		Codes:       []string{"CODE-" + id},
	})
	require.NoError(t, err)
}

func mustQuantity(t *testing.T, repo store.Repository, id string) int {
	t.Helper()
	item, err := repo.GetInventoryItem(context.Background(), id)
	require.NoError(t, err)
	return item.Quantity
}

func cartOf(t *testing.T, items ...sale.Item) *sale.Cart {
	t.Helper()
	var cart sale.Cart
	for _, it := range items {
		require.NoError(t, cart.Add(it))
	}
	return &cart
}

func TestFinalizeSaleEmptyCartWritesNothing(t *testing.T) {
	repo := memory.New()
	svc := newTestService(t, repo, ConsistencyIndependent)

	recorded, err := svc.FinalizeSale(context.Background(), clerkSes, &sale.Cart{})
	require.NoError(t, err)
	assert.Nil(t, recorded)

	sales, err := repo.ListSales(context.Background(), domain.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestFinalizeSaleTotalsExactly(t *testing.T) {
	repo := memory.New()
	seedBranchItem(t, repo, "inv-a", "10.00", 5)
	seedBranchItem(t, repo, "inv-b", "5.50", 5)
	svc := newTestService(t, repo, ConsistencyIndependent)

	a := sale.Item{ID: "inv-a", Description: "A", Price: decimal.RequireFromString("10.00"), Quantity: 5}
	b := sale.Item{ID: "inv-b", Description: "B", Price: decimal.RequireFromString("5.50"), Quantity: 5}
	cart := cartOf(t, a, a, b, b, b)

	recorded, err := svc.FinalizeSale(context.Background(), clerkSes, cart)
	require.NoError(t, err)
	require.NotNil(t, recorded)
	assert.Equal(t, "36.50", recorded.Total.StringFixed(2))
	assert.Equal(t, clerkSes.UserID, recorded.EmployeeID)
	assert.Equal(t, "br-1", recorded.BranchID)
	assert.True(t, recorded.CreatedAt.Equal(testNow))

	sales, err := repo.ListSales(context.Background(), domain.SaleFilter{BranchID: "br-1"})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.True(t, sales[0].Total.Equal(decimal.RequireFromString("36.50")))
	assert.Equal(t, 2, cart.Len(), "finalize must not modify the cart")
}

func TestFinalizeSaleDecrementsCatalogLinesOnly(t *testing.T) {
	repo := memory.New()
	seedBranchItem(t, repo, "inv-a", "4.00", 10)
	svc := newTestService(t, repo, ConsistencyIndependent)

	item := sale.Item{ID: "inv-a", Description: "A", Price: decimal.RequireFromString("4.00"), Quantity: 10}
	manual, err := sale.NewManualItem("gift wrap", decimal.RequireFromString("1.00"))
	require.NoError(t, err)
	cart := cartOf(t, item, item, item, manual)

	_, err = svc.FinalizeSale(context.Background(), clerkSes, cart)
	require.NoError(t, err)
	assert.Equal(t, 7, mustQuantity(t, repo, "inv-a"))
}

func TestIndependentModeOversellsConcurrently(t *testing.T) {
	repo := memory.New()
	seedBranchItem(t, repo, "inv-last", "9.99", 1)
	svc := newTestService(t, repo, ConsistencyIndependent)

	item := sale.Item{ID: "inv-last", Description: "Last", Price: decimal.RequireFromString("9.99"), Quantity: 1}
	sessions := []domain.Session{
		clerkSes,
		{UserID: "usr-clerk-2", Role: domain.RoleEmployee, BranchID: "br-1"},
	}

	carts := []*sale.Cart{cartOf(t, item), cartOf(t, item)}

	var wg sync.WaitGroup
	errs := make([]error, len(sessions))
	for i, sess := range sessions {
		wg.Add(1)
		go func(i int, sess domain.Session) {
			defer wg.Done()
			_, errs[i] = svc.FinalizeSale(context.Background(), sess, carts[i])
		}(i, sess)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, -1, mustQuantity(t, repo, "inv-last"))
}

func TestAtomicModeRejectsOversell(t *testing.T) {
	repo := memory.New()
	seedBranchItem(t, repo, "inv-last", "9.99", 1)
	svc := newTestService(t, repo, ConsistencyAtomic)

	item := sale.Item{ID: "inv-last", Description: "Last", Price: decimal.RequireFromString("9.99"), Quantity: 1}

	_, err := svc.FinalizeSale(context.Background(), clerkSes, cartOf(t, item))
	require.NoError(t, err)
	_, err = svc.FinalizeSale(context.Background(), clerkSes, cartOf(t, item))
	require.ErrorIs(t, err, store.ErrInsufficientStock)

	assert.Equal(t, 0, mustQuantity(t, repo, "inv-last"))
	sales, err := repo.ListSales(context.Background(), domain.SaleFilter{})
	require.NoError(t, err)
	assert.Len(t, sales, 1)
}

// failingDecrements records sales but refuses stock updates for one item.
type failingDecrements struct {
	*memory.Store
	failOn string
}

func (f failingDecrements) IncrementInventoryQuantity(ctx context.Context, id string, delta int) error {
	if id == f.failOn {
		return errors.New("write rejected")
	}
	return f.Store.IncrementInventoryQuantity(ctx, id, delta)
}

func TestPartialFailureIsReportedAndCartKept(t *testing.T) {
	mem := memory.New()
	seedBranchItem(t, mem, "inv-a", "2.00", 10)
	seedBranchItem(t, mem, "inv-b", "3.00", 10)
	svc := newTestService(t, failingDecrements{Store: mem, failOn: "inv-b"}, ConsistencyIndependent)
	ctx := context.Background()

	_, err := svc.SearchInventory(ctx, clerkSes, "item")
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, clerkSes, "inv-a")
	require.NoError(t, err)
	_, err = svc.SearchInventory(ctx, clerkSes, "CODE-inv-b")
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, clerkSes, "inv-b")
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, clerkSes)
	var partial *PartialSaleError
	require.ErrorAs(t, err, &partial)
	assert.NotEmpty(t, partial.SaleID)
	require.Len(t, partial.Unapplied, 1)
	assert.Equal(t, "inv-b", partial.Unapplied[0].ItemID)

	assert.Equal(t, 9, mustQuantity(t, mem, "inv-a"))
	assert.Equal(t, 10, mustQuantity(t, mem, "inv-b"))

	view, err := svc.Register(ctx, clerkSes)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 2)
}

func TestCheckoutClearsCartOnSuccess(t *testing.T) {
	repo := memory.New()
	seedBranchItem(t, repo, "inv-a", "2.00", 3)
	svc := newTestService(t, repo, ConsistencyIndependent)
	ctx := context.Background()

	view, err := svc.SearchInventory(ctx, clerkSes, "CODE-inv-a")
	require.NoError(t, err)
	require.Len(t, view.Results, 1)
	view, err = svc.AddToCart(ctx, clerkSes, "inv-a")
	require.NoError(t, err)
	assert.Empty(t, view.Query)
	assert.Empty(t, view.Results)

	resp, err := svc.Checkout(ctx, clerkSes)
	require.NoError(t, err)
	assert.True(t, resp.Recorded)

	view, err = svc.Register(ctx, clerkSes)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)

	resp, err = svc.Checkout(ctx, clerkSes)
	require.NoError(t, err)
	assert.False(t, resp.Recorded)
}

func TestSearchMatchesExactCodeOrDescription(t *testing.T) {
	repo := memory.New()
	seedBranchItem(t, repo, "cable", "1.00", 3)
	seedBranchItem(t, repo, "charger", "1.00", 3)
	svc := newTestService(t, repo, ConsistencyIndependent)
	ctx := context.Background()

	view, err := svc.SearchInventory(ctx, clerkSes, "ITEM CHAR")
	require.NoError(t, err)
	require.Len(t, view.Results, 1)
	assert.Equal(t, "charger", view.Results[0].ID)

	view, err = svc.SearchInventory(ctx, clerkSes, "CODE-cab")
	require.NoError(t, err)
	assert.Empty(t, view.Results, "codes must match exactly")

	view, err = svc.SearchInventory(ctx, clerkSes, "")
	require.NoError(t, err)
	assert.Equal(t, "CODE-cab", view.Query)
}

func TestTodaySummaryTotalsSinceMidnight(t *testing.T) {
	repo := memory.New()
	svc := newTestService(t, repo, ConsistencyIndependent)
	ctx := context.Background()

	for _, s := range []struct {
		total string
		at    time.Time
	}{
		{"12.00", testNow.Add(-2 * time.Hour)},
		{"8.50", testNow.Add(-1 * time.Hour)},
		{"99.00", testNow.Add(-20 * time.Hour)},
	} {
		_, err := repo.CreateSale(ctx, domain.Sale{
			EmployeeID: clerkSes.UserID,
			BranchID:   "br-1",
			Total:      decimal.RequireFromString(s.total),
			CreatedAt:  s.at,
			Lines:      []domain.SaleLine{{ItemID: "tmp-1", Quantity: 1, Temporary: true, UnitPrice: decimal.RequireFromString(s.total)}},
		})
		require.NoError(t, err)
	}

	summary, err := svc.TodaySummary(ctx, clerkSes, "ignored-for-employees")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, "20.50", summary.Total.StringFixed(2))
	assert.Equal(t, "2026-04-14", summary.Date)

	_, err = svc.TodaySummary(ctx, adminSes, "")
	require.ErrorIs(t, err, store.ErrInvalidRecord)
}

type failingSales struct {
	*memory.Store
}

func (failingSales) ListSales(context.Context, domain.SaleFilter) ([]domain.Sale, error) {
	return nil, store.ErrSchemaMissing
}

func TestTodaySummaryWrapsStoreFailure(t *testing.T) {
	svc := newTestService(t, failingSales{Store: memory.New()}, ConsistencyIndependent)

	_, err := svc.TodaySummary(context.Background(), clerkSes, "")
	require.ErrorIs(t, err, ErrSummaryUnavailable)
	require.ErrorIs(t, err, store.ErrSchemaMissing)
}

func TestAdminOperationsRejectEmployees(t *testing.T) {
	svc := newTestService(t, memory.New(), ConsistencyIndependent)
	ctx := context.Background()

	_, err := svc.CreateBranch(ctx, clerkSes, domain.BranchRequest{Name: "Sur"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.SalesDashboard(ctx, clerkSes, "", "", "")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.ListEmployees(ctx, clerkSes)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestMasterProductNormalization(t *testing.T) {
	repo := memory.New()
	svc := newTestService(t, repo, ConsistencyIndependent)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, adminSes, domain.NameRequest{Name: "Cases"})
	require.NoError(t, err)
	brand, err := svc.CreateBrand(ctx, adminSes, domain.NameRequest{Name: "Acme"})
	require.NoError(t, err)

	product, err := svc.CreateMasterProduct(ctx, adminSes, domain.MasterProductRequest{
		CategoryID: cat.ID,
		BrandID:    brand.ID,
		Model:      "X1",
		Price:      decimal.RequireFromString("15.00"),
		Colors:     []string{" red ", "", "blue"},
		Codes:      []string{"abc1", "  ", "xyz"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Cases Acme X1", product.Description)
	assert.Equal(t, []string{"red", "blue"}, product.Colors)
	assert.Equal(t, []string{"ABC1", "XYZ"}, product.Codes)

	_, err = svc.CreateMasterProduct(ctx, adminSes, domain.MasterProductRequest{CategoryID: "missing"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.CreateSubcategory(ctx, adminSes, domain.SubcategoryRequest{Name: "Slim"})
	assert.ErrorIs(t, err, store.ErrInvalidRecord)
}

func TestStockingMasterProductCopiesFields(t *testing.T) {
	repo := memory.New()
	svc := newTestService(t, repo, ConsistencyIndependent)
	ctx := context.Background()

	branch, err := svc.CreateBranch(ctx, adminSes, domain.BranchRequest{Name: "Centro"})
	require.NoError(t, err)
	cat, err := svc.CreateCategory(ctx, adminSes, domain.NameRequest{Name: "Audio"})
	require.NoError(t, err)
	product, err := svc.CreateMasterProduct(ctx, adminSes, domain.MasterProductRequest{
		CategoryID: cat.ID, Description: "Earbuds", Price: decimal.RequireFromString("6.75"), Codes: []string{"ear01"},
	})
	require.NoError(t, err)

	item, err := svc.CreateInventoryItem(ctx, adminSes, domain.InventoryCreateRequest{
		BranchID: branch.ID, MasterProductID: product.ID, Quantity: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "Earbuds", item.Description)
	assert.Equal(t, []string{"EAR01"}, item.Codes)
	assert.True(t, item.LowStock)

	item, err = svc.Restock(ctx, adminSes, item.ID, domain.RestockRequest{Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 7, item.Quantity)
	assert.False(t, item.LowStock)
}

func TestSalesDashboardAndRanking(t *testing.T) {
	repo := memory.New()
	svc := newTestService(t, repo, ConsistencyIndependent)
	ctx := context.Background()

	_, err := repo.CreateBranch(ctx, domain.Branch{ID: "br-1", Name: "Centro"})
	require.NoError(t, err)
	_, err = repo.CreateBranch(ctx, domain.Branch{ID: "br-2", Name: "Norte"})
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, domain.User{ID: "usr-ana", Name: "Ana", Email: "ana@example.com", Role: domain.RoleEmployee, BranchID: "br-1"})
	require.NoError(t, err)

	record := func(employee, branch, total string, at time.Time) {
		_, err := repo.CreateSale(ctx, domain.Sale{
			EmployeeID: employee, BranchID: branch, Total: decimal.RequireFromString(total), CreatedAt: at,
			Lines: []domain.SaleLine{{ItemID: "tmp-x", Quantity: 1, Temporary: true}},
		})
		require.NoError(t, err)
	}
	record("usr-ana", "br-1", "10.00", testNow.Add(-3*time.Hour))
	record("usr-ana", "br-1", "5.00", testNow.Add(-1*time.Hour))
	record("usr-gone", "br-2", "20.00", testNow.Add(-2*time.Hour))
	record("usr-ana", "br-1", "100.00", testNow.Add(-48*time.Hour))

	dash, err := svc.SalesDashboard(ctx, adminSes, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "35.00", dash.Total.StringFixed(2))
	require.Len(t, dash.ByBranch, 2)
	assert.Equal(t, "15.00", dash.ByBranch[0].Total.StringFixed(2))
	assert.Equal(t, 2, dash.ByBranch[0].Sales)
	require.Len(t, dash.Sales, 3)
	assert.True(t, dash.Sales[0].CreatedAt.After(dash.Sales[1].CreatedAt))

	filtered, err := svc.SalesDashboard(ctx, adminSes, "2026-04-12", "2026-04-14", "br-1")
	require.NoError(t, err)
	assert.Equal(t, "115.00", filtered.Total.StringFixed(2))
	assert.Len(t, filtered.ByBranch, 1)

	_, err = svc.SalesDashboard(ctx, adminSes, "2026-04-15", "2026-04-14", "")
	assert.ErrorIs(t, err, store.ErrInvalidRecord)

	ranking, err := svc.PerformanceRanking(ctx, adminSes, "", "")
	require.NoError(t, err)
	require.Len(t, ranking.Ranking, 2)
	assert.Equal(t, UnknownEmployeeName, ranking.Ranking[0].Name)
	assert.Equal(t, "20.00", ranking.Ranking[0].TotalSold.StringFixed(2))
	assert.Equal(t, "Ana", ranking.Ranking[1].Name)
	assert.Equal(t, 2, ranking.Ranking[1].SalesCount)
}

func TestEmployeeUpdateAndDelete(t *testing.T) {
	repo := memory.New()
	svc := newTestService(t, repo, ConsistencyIndependent)
	ctx := context.Background()

	_, err := repo.CreateBranch(ctx, domain.Branch{ID: "br-2", Name: "Norte"})
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, domain.User{ID: "usr-ana", Name: "Ana", Email: "ana@example.com", Role: domain.RoleEmployee})
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, domain.User{ID: "usr-admin", Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin})
	require.NoError(t, err)

	employees, err := svc.ListEmployees(ctx, adminSes)
	require.NoError(t, err)
	require.Len(t, employees, 1)

	updated, err := svc.UpdateEmployee(ctx, adminSes, "usr-ana", domain.UserUpdateRequest{Name: "Ana María", BranchID: "br-2"})
	require.NoError(t, err)
	assert.Equal(t, "br-2", updated.BranchID)
	assert.Equal(t, "ana@example.com", updated.Email)

	_, err = svc.UpdateEmployee(ctx, adminSes, "usr-ana", domain.UserUpdateRequest{Name: "Ana", BranchID: "missing"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, svc.DeleteEmployee(ctx, adminSes, "usr-ana"))
	_, err = repo.GetUser(ctx, "usr-ana")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSalesDashboardCoversWholeLocalDayAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}
	repo := memory.New()
	ctx := context.Background()
	_, err = repo.CreateBranch(ctx, domain.Branch{ID: "br-1", Name: "Centro"})
	require.NoError(t, err)
	for _, at := range []time.Time{
		time.Date(2026, 11, 1, 23, 30, 0, 0, loc),
		time.Date(2026, 3, 8, 23, 30, 0, 0, loc),
		time.Date(2026, 3, 9, 0, 30, 0, 0, loc),
	} {
		_, err := repo.CreateSale(ctx, domain.Sale{
			EmployeeID: "usr-clerk",
			BranchID:   "br-1",
			Lines:      []domain.SaleLine{{ItemID: "inv-a", Description: "A", UnitPrice: decimal.RequireFromString("5.00"), Quantity: 1}},
			Total:      decimal.RequireFromString("5.00"),
			CreatedAt:  at.UTC(),
		})
		require.NoError(t, err)
	}
	svc := New(repo, Options{
		Location:    loc,
		Consistency: ConsistencyIndependent,
		Now:         func() time.Time { return time.Date(2026, 11, 2, 12, 0, 0, 0, loc) },
	})

	fallBack, err := svc.SalesDashboard(ctx, adminSes, "2026-11-01", "2026-11-01", "")
	require.NoError(t, err)
	assert.Len(t, fallBack.Sales, 1, "the 25-hour day keeps its last hour")
	assert.Equal(t, "5.00", fallBack.Total.StringFixed(2))

	springForward, err := svc.SalesDashboard(ctx, adminSes, "2026-03-08", "2026-03-08", "")
	require.NoError(t, err)
	require.Len(t, springForward.Sales, 1, "the 23-hour day stops at local midnight")
	assert.Equal(t, 8, springForward.Sales[0].CreatedAt.In(loc).Day())

	ranking, err := svc.PerformanceRanking(ctx, adminSes, "2026-03-09", "2026-03-09")
	require.NoError(t, err)
	require.Len(t, ranking.Ranking, 1)
	assert.Equal(t, 1, ranking.Ranking[0].SalesCount)
}

func TestPricesKeepCentPrecision(t *testing.T) {
	repo := memory.New()
	svc := newTestService(t, repo, ConsistencyIndependent)
	ctx := context.Background()

	branch, err := svc.CreateBranch(ctx, adminSes, domain.BranchRequest{Name: "Centro"})
	require.NoError(t, err)
	cat, err := svc.CreateCategory(ctx, adminSes, domain.NameRequest{Name: "Bulk"})
	require.NoError(t, err)

	fine := decimal.RequireFromString("0.333")
	_, err = svc.CreateMasterProduct(ctx, adminSes, domain.MasterProductRequest{CategoryID: cat.ID, Description: "Screws", Price: fine})
	assert.ErrorIs(t, err, store.ErrInvalidRecord)

	_, err = svc.CreateInventoryItem(ctx, adminSes, domain.InventoryCreateRequest{BranchID: branch.ID, Description: "Screws", Price: &fine, Quantity: 10})
	assert.ErrorIs(t, err, store.ErrInvalidRecord)

	cents := decimal.RequireFromString("0.30")
	item, err := svc.CreateInventoryItem(ctx, adminSes, domain.InventoryCreateRequest{BranchID: branch.ID, Description: "Screws", Price: &cents, Quantity: 10})
	require.NoError(t, err)

	_, err = svc.UpdateInventoryItem(ctx, adminSes, item.ID, domain.InventoryUpdateRequest{Price: &fine})
	assert.ErrorIs(t, err, store.ErrInvalidRecord)
	stored, err := repo.GetInventoryItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.30", stored.Price.StringFixed(2))
}

func TestEmployeeManagementSkipsAdminProfiles(t *testing.T) {
	repo := memory.New()
	svc := newTestService(t, repo, ConsistencyIndependent)
	ctx := context.Background()

	_, err := repo.CreateBranch(ctx, domain.Branch{ID: "br-1", Name: "Centro"})
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, domain.User{ID: "usr-other-admin", Name: "Other", Email: "other@example.com", Role: domain.RoleAdmin})
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, domain.User{ID: "usr-ana", Name: "Ana", Email: "ana@example.com", Role: domain.RoleEmployee, BranchID: "br-1"})
	require.NoError(t, err)

	_, err = svc.UpdateEmployee(ctx, adminSes, "usr-other-admin", domain.UserUpdateRequest{Name: "Renamed", BranchID: "br-1"})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteEmployee(ctx, adminSes, "usr-other-admin"), store.ErrNotFound)
	other, err := repo.GetUser(ctx, "usr-other-admin")
	require.NoError(t, err)
	assert.Equal(t, "Other", other.Name)

	_, err = svc.UpdateEmployee(ctx, adminSes, "usr-ana", domain.UserUpdateRequest{Name: "Ana", BranchID: "  "})
	assert.ErrorIs(t, err, store.ErrInvalidRecord)
	ana, err := repo.GetUser(ctx, "usr-ana")
	require.NoError(t, err)
	assert.Equal(t, "br-1", ana.BranchID)
}
