package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"sucursalpos/internal/domain"
	"sucursalpos/internal/store"
)

// ListInventory returns a branch's stock. Employees always see their own
// branch; admins may pass an empty branchID to see every branch.
func (s *Service) ListInventory(ctx context.Context, sess domain.Session, branchID string) ([]domain.InventoryItem, error) {
	if !sess.IsAdmin() {
		if err := requireBranch(sess); err != nil {
			return nil, err
		}
		branchID = sess.BranchID
	}
	items, err := s.repo.ListInventory(ctx, strings.TrimSpace(branchID))
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].LowStock = items[i].Quantity < domain.LowStockThreshold
	}
	return items, nil
}

func (s *Service) CreateInventoryItem(ctx context.Context, sess domain.Session, req domain.InventoryCreateRequest) (domain.InventoryItem, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.InventoryItem{}, err
	}
	branchID := strings.TrimSpace(req.BranchID)
	if branchID == "" || req.Quantity < 0 {
		return domain.InventoryItem{}, fmt.Errorf("%w: inventory needs a branch and a non-negative quantity", store.ErrInvalidRecord)
	}
	if _, err := s.repo.GetBranch(ctx, branchID); err != nil {
		return domain.InventoryItem{}, fmt.Errorf("branch %s: %w", branchID, err)
	}

	item := domain.InventoryItem{
		BranchID:    branchID,
		Description: strings.TrimSpace(req.Description),
		Quantity:    req.Quantity,
		Codes:       cleanList(req.Codes, true),
	}
	if req.Price != nil {
		item.Price = *req.Price
	}

	if mpID := strings.TrimSpace(req.MasterProductID); mpID != "" {
		product, err := s.repo.GetMasterProduct(ctx, mpID)
		if err != nil {
			return domain.InventoryItem{}, fmt.Errorf("master product %s: %w", mpID, err)
		}
		item.MasterProductID = product.ID
		if item.Description == "" {
			item.Description = product.Description
		}
		if req.Price == nil {
			item.Price = product.Price
		}
		if len(item.Codes) == 0 {
			item.Codes = slices.Clone(product.Codes)
		}
	} else if req.Price == nil {
		return domain.InventoryItem{}, fmt.Errorf("%w: ad-hoc inventory needs a price", store.ErrInvalidRecord)
	}

	if item.Description == "" {
		return domain.InventoryItem{}, fmt.Errorf("%w: inventory needs a description", store.ErrInvalidRecord)
	}
	if !domain.ValidPrice(item.Price) {
		return domain.InventoryItem{}, fmt.Errorf("%w: price must be non-negative with at most two decimals", store.ErrInvalidRecord)
	}

	created, err := s.repo.CreateInventoryItem(ctx, item)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	created.LowStock = created.Quantity < domain.LowStockThreshold
	return *created, nil
}

func (s *Service) UpdateInventoryItem(ctx context.Context, sess domain.Session, id string, req domain.InventoryUpdateRequest) (domain.InventoryItem, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.InventoryItem{}, err
	}
	existing, err := s.repo.GetInventoryItem(ctx, id)
	if err != nil {
		return domain.InventoryItem{}, err
	}

	updated := *existing
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return domain.InventoryItem{}, fmt.Errorf("%w: inventory needs a description", store.ErrInvalidRecord)
		}
		updated.Description = description
	}
	if req.Price != nil {
		if !domain.ValidPrice(*req.Price) {
			return domain.InventoryItem{}, fmt.Errorf("%w: price must be non-negative with at most two decimals", store.ErrInvalidRecord)
		}
		updated.Price = *req.Price
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return domain.InventoryItem{}, fmt.Errorf("%w: quantity must not be negative", store.ErrInvalidRecord)
		}
		updated.Quantity = *req.Quantity
	}
	if req.Codes != nil {
		updated.Codes = cleanList(req.Codes, true)
	}

	saved, err := s.repo.UpdateInventoryItem(ctx, updated)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	saved.LowStock = saved.Quantity < domain.LowStockThreshold
	return *saved, nil
}

func (s *Service) DeleteInventoryItem(ctx context.Context, sess domain.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	return s.repo.DeleteInventoryItem(ctx, id)
}

// Restock adds units to an item with an atomic increment.
func (s *Service) Restock(ctx context.Context, sess domain.Session, id string, req domain.RestockRequest) (domain.InventoryItem, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.InventoryItem{}, err
	}
	if req.Quantity < 1 {
		return domain.InventoryItem{}, fmt.Errorf("%w: restock quantity must be positive", store.ErrInvalidRecord)
	}
	if err := s.repo.IncrementInventoryQuantity(ctx, id, req.Quantity); err != nil {
		return domain.InventoryItem{}, err
	}
	item, err := s.repo.GetInventoryItem(ctx, id)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	item.LowStock = item.Quantity < domain.LowStockThreshold
	return *item, nil
}
