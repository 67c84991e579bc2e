package service

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"sucursalpos/internal/domain"
	"sucursalpos/internal/sale"
)

// PartialSaleError reports a sale that was recorded while some of its stock
// decrements were not applied. Nothing is rolled back.
type PartialSaleError struct {
	SaleID    string
	Unapplied []domain.SaleLine
	Err       error
}

func (e *PartialSaleError) Error() string {
	ids := make([]string, 0, len(e.Unapplied))
	for _, line := range e.Unapplied {
		ids = append(ids, line.ItemID)
	}
	return fmt.Sprintf("sale %s recorded but stock not decremented for %s: %v", e.SaleID, strings.Join(ids, ","), e.Err)
}

func (e *PartialSaleError) Unwrap() error {
	return e.Err
}

// SearchInventory filters the session branch inventory by exact code or by
// case-insensitive description match, and keeps the results on the register.
// An empty query leaves the register untouched.
func (s *Service) SearchInventory(ctx context.Context, sess domain.Session, query string) (domain.RegisterView, error) {
	if err := requireBranch(sess); err != nil {
		return domain.RegisterView{}, err
	}
	query = strings.TrimSpace(query)

	var view domain.RegisterView
	err := s.registers.Do(sess.UserID, sess.BranchID, func(r *sale.Register) error {
		if query == "" {
			view = r.View()
			return nil
		}
		items, err := s.ListInventory(ctx, sess, sess.BranchID)
		if err != nil {
			return err
		}
		r.SetResults(query, matchInventory(items, query))
		view = r.View()
		return nil
	})
	return view, err
}

func matchInventory(items []domain.InventoryItem, query string) []domain.InventoryItem {
	needle := strings.ToLower(query)
	found := make([]domain.InventoryItem, 0, len(items))
	for _, item := range items {
		if slices.Contains(item.Codes, query) || strings.Contains(strings.ToLower(item.Description), needle) {
			found = append(found, item)
		}
	}
	return found
}

func (s *Service) AddToCart(_ context.Context, sess domain.Session, itemID string) (domain.RegisterView, error) {
	if err := requireBranch(sess); err != nil {
		return domain.RegisterView{}, err
	}
	var view domain.RegisterView
	err := s.registers.Do(sess.UserID, sess.BranchID, func(r *sale.Register) error {
		if err := r.AddResult(strings.TrimSpace(itemID)); err != nil {
			return err
		}
		view = r.View()
		return nil
	})
	return view, err
}

func (s *Service) AddManualItem(_ context.Context, sess domain.Session, req domain.ManualItemRequest) (domain.RegisterView, error) {
	if err := requireBranch(sess); err != nil {
		return domain.RegisterView{}, err
	}
	item, err := sale.NewManualItem(req.Description, req.Price)
	if err != nil {
		return domain.RegisterView{}, err
	}
	var view domain.RegisterView
	err = s.registers.Do(sess.UserID, sess.BranchID, func(r *sale.Register) error {
		if err := r.AddManual(item); err != nil {
			return err
		}
		view = r.View()
		return nil
	})
	return view, err
}

func (s *Service) Register(_ context.Context, sess domain.Session) (domain.RegisterView, error) {
	if err := requireBranch(sess); err != nil {
		return domain.RegisterView{}, err
	}
	var view domain.RegisterView
	err := s.registers.Do(sess.UserID, sess.BranchID, func(r *sale.Register) error {
		view = r.View()
		return nil
	})
	return view, err
}

func (s *Service) ClearRegister(_ context.Context, sess domain.Session) error {
	if err := requireBranch(sess); err != nil {
		return err
	}
	return s.registers.Do(sess.UserID, sess.BranchID, func(r *sale.Register) error {
		*r = sale.Register{BranchID: r.BranchID}
		return nil
	})
}

// ForgetRegister drops the session register, e.g. on logout.
func (s *Service) ForgetRegister(userID string) {
	s.registers.Drop(userID)
}

// Checkout finalizes the session register and clears its cart on success.
// On any error the cart is kept as it was.
func (s *Service) Checkout(ctx context.Context, sess domain.Session) (domain.CheckoutResponse, error) {
	if err := requireBranch(sess); err != nil {
		return domain.CheckoutResponse{}, err
	}
	var resp domain.CheckoutResponse
	err := s.registers.Do(sess.UserID, sess.BranchID, func(r *sale.Register) error {
		recorded, err := s.FinalizeSale(ctx, sess, &r.Cart)
		if err != nil {
			return err
		}
		if recorded == nil {
			return nil
		}
		r.Cart.Clear()
		resp = domain.CheckoutResponse{Recorded: true, Sale: recorded}
		return nil
	})
	return resp, err
}

// FinalizeSale records the cart as a sale for the session employee and branch
// and decrements stock for every catalog line. An empty cart is a no-op and
// returns a nil sale. The cart itself is not modified.
func (s *Service) FinalizeSale(ctx context.Context, sess domain.Session, cart *sale.Cart) (*domain.Sale, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, nil
	}
	if err := requireBranch(sess); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "service.FinalizeSale")
	defer span.End()

	lines := cart.Lines()
	pending := domain.Sale{
		EmployeeID: sess.UserID,
		BranchID:   sess.BranchID,
		Lines:      lines,
		Total:      sale.Total(lines),
		CreatedAt:  s.now().UTC(),
	}
	span.SetAttributes(
		attribute.String("sale.branch_id", pending.BranchID),
		attribute.String("sale.consistency", s.consistency),
		attribute.Int("sale.lines", len(lines)),
		attribute.String("sale.total", pending.Total.StringFixed(2)),
	)

	var (
		recorded *domain.Sale
		err      error
	)
	if s.consistency == ConsistencyAtomic {
		recorded, err = s.repo.CreateSaleWithStock(ctx, pending)
	} else {
		recorded, err = s.finalizeIndependent(ctx, pending)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "finalize sale failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("sale.id", recorded.ID))
	return recorded, nil
}

func (s *Service) finalizeIndependent(ctx context.Context, pending domain.Sale) (*domain.Sale, error) {
	recorded, err := s.repo.CreateSale(ctx, pending)
	if err != nil {
		return nil, fmt.Errorf("record sale: %w", err)
	}

	for i, line := range recorded.Lines {
		if line.Temporary {
			continue
		}
		if err := s.repo.IncrementInventoryQuantity(ctx, line.ItemID, -line.Quantity); err != nil {
			unapplied := make([]domain.SaleLine, 0, len(recorded.Lines)-i)
			for _, rest := range recorded.Lines[i:] {
				if !rest.Temporary {
					unapplied = append(unapplied, rest)
				}
			}
			partial := &PartialSaleError{SaleID: recorded.ID, Unapplied: unapplied, Err: err}
			log.Printf("[service] WARN: %v", partial)
			return nil, partial
		}
	}
	return recorded, nil
}
