package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"sucursalpos/internal/domain"
	"sucursalpos/internal/store"
)

const UnknownEmployeeName = "Unknown employee"

// TodaySummary totals a branch's sales since local midnight. Employees read
// their own branch; admins must name one. Store failures are wrapped in
// ErrSummaryUnavailable.
func (s *Service) TodaySummary(ctx context.Context, sess domain.Session, branchID string) (domain.DailySummary, error) {
	if !sess.IsAdmin() {
		if err := requireBranch(sess); err != nil {
			return domain.DailySummary{}, err
		}
		branchID = sess.BranchID
	}
	branchID = strings.TrimSpace(branchID)
	if branchID == "" {
		return domain.DailySummary{}, fmt.Errorf("%w: branch is required", store.ErrInvalidRecord)
	}

	ctx, span := s.tracer.Start(ctx, "service.TodaySummary")
	defer span.End()
	span.SetAttributes(attribute.String("summary.branch_id", branchID))

	start := s.startOfDay(s.now())
	sales, err := s.repo.ListSales(ctx, domain.SaleFilter{BranchID: branchID, From: start})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list sales failed")
		return domain.DailySummary{}, fmt.Errorf("%w: %w", ErrSummaryUnavailable, err)
	}

	total := decimal.Zero
	for _, sale := range sales {
		total = total.Add(sale.Total)
	}
	span.SetAttributes(attribute.Int("summary.count", len(sales)))

	return domain.DailySummary{
		BranchID: branchID,
		Date:     start.Format(dateLayout),
		Sales:    sales,
		Count:    len(sales),
		Total:    total,
	}, nil
}

// SalesDashboard lists sales in an inclusive date range, newest first, with
// a total for every branch in scope and a global total.
func (s *Service) SalesDashboard(ctx context.Context, sess domain.Session, from, to, branchID string) (domain.SalesDashboard, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.SalesDashboard{}, err
	}
	start, end, err := s.dateRange(from, to)
	if err != nil {
		return domain.SalesDashboard{}, err
	}
	branchID = strings.TrimSpace(branchID)

	branches, err := s.repo.ListBranches(ctx)
	if err != nil {
		return domain.SalesDashboard{}, err
	}
	sales, err := s.repo.ListSales(ctx, domain.SaleFilter{BranchID: branchID, From: start, To: end})
	if err != nil {
		return domain.SalesDashboard{}, err
	}
	slices.SortStableFunc(sales, func(a, b domain.Sale) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	byBranch := make(map[string]*domain.BranchTotal)
	totals := make([]domain.BranchTotal, 0, len(branches))
	for _, b := range branches {
		if branchID != "" && b.ID != branchID {
			continue
		}
		totals = append(totals, domain.BranchTotal{BranchID: b.ID, BranchName: b.Name, Total: decimal.Zero})
	}
	for i := range totals {
		byBranch[totals[i].BranchID] = &totals[i]
	}

	global := decimal.Zero
	for _, sale := range sales {
		global = global.Add(sale.Total)
		if bt, ok := byBranch[sale.BranchID]; ok {
			bt.Sales++
			bt.Total = bt.Total.Add(sale.Total)
		}
	}

	return domain.SalesDashboard{
		From:     start.Format(dateLayout),
		To:       end.Format(dateLayout),
		BranchID: branchID,
		Total:    global,
		ByBranch: totals,
		Sales:    sales,
	}, nil
}

// PerformanceRanking groups sales in range by employee, highest total first.
func (s *Service) PerformanceRanking(ctx context.Context, sess domain.Session, from, to string) (domain.PerformanceRanking, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.PerformanceRanking{}, err
	}
	start, end, err := s.dateRange(from, to)
	if err != nil {
		return domain.PerformanceRanking{}, err
	}

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return domain.PerformanceRanking{}, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	sales, err := s.repo.ListSales(ctx, domain.SaleFilter{From: start, To: end})
	if err != nil {
		return domain.PerformanceRanking{}, err
	}

	perf := make(map[string]*domain.EmployeePerformance)
	order := make([]string, 0)
	for _, sale := range sales {
		p, ok := perf[sale.EmployeeID]
		if !ok {
			name := names[sale.EmployeeID]
			if name == "" {
				name = UnknownEmployeeName
			}
			p = &domain.EmployeePerformance{EmployeeID: sale.EmployeeID, Name: name, TotalSold: decimal.Zero}
			perf[sale.EmployeeID] = p
			order = append(order, sale.EmployeeID)
		}
		p.TotalSold = p.TotalSold.Add(sale.Total)
		p.SalesCount++
	}

	ranking := make([]domain.EmployeePerformance, 0, len(order))
	for _, id := range order {
		ranking = append(ranking, *perf[id])
	}
	slices.SortStableFunc(ranking, func(a, b domain.EmployeePerformance) int {
		if c := b.TotalSold.Cmp(a.TotalSold); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	return domain.PerformanceRanking{
		From:    start.Format(dateLayout),
		To:      end.Format(dateLayout),
		Ranking: ranking,
	}, nil
}
