package service

import (
	"context"
	"fmt"
	"strings"

	"sucursalpos/internal/domain"
	"sucursalpos/internal/store"
)

func (s *Service) ListBranches(ctx context.Context, sess domain.Session) ([]domain.Branch, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	return s.repo.ListBranches(ctx)
}

func (s *Service) CreateBranch(ctx context.Context, sess domain.Session, req domain.BranchRequest) (domain.Branch, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.Branch{}, err
	}
	branch := domain.Branch{Name: strings.TrimSpace(req.Name), Location: strings.TrimSpace(req.Location), CreatedAt: s.now().UTC()}
	if branch.Name == "" {
		return domain.Branch{}, fmt.Errorf("%w: branch name is required", store.ErrInvalidRecord)
	}
	created, err := s.repo.CreateBranch(ctx, branch)
	if err != nil {
		return domain.Branch{}, err
	}
	return *created, nil
}

func (s *Service) UpdateBranch(ctx context.Context, sess domain.Session, id string, req domain.BranchRequest) (domain.Branch, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.Branch{}, err
	}
	branch := domain.Branch{ID: id, Name: strings.TrimSpace(req.Name), Location: strings.TrimSpace(req.Location)}
	if branch.Name == "" {
		return domain.Branch{}, fmt.Errorf("%w: branch name is required", store.ErrInvalidRecord)
	}
	updated, err := s.repo.UpdateBranch(ctx, branch)
	if err != nil {
		return domain.Branch{}, err
	}
	return *updated, nil
}

func (s *Service) DeleteBranch(ctx context.Context, sess domain.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	return s.repo.DeleteBranch(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context, sess domain.Session) ([]domain.Category, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, sess domain.Session, req domain.NameRequest) (domain.Category, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.Category{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Category{}, fmt.Errorf("%w: category name is required", store.ErrInvalidRecord)
	}
	created, err := s.repo.CreateCategory(ctx, domain.Category{Name: name})
	if err != nil {
		return domain.Category{}, err
	}
	return *created, nil
}

func (s *Service) UpdateCategory(ctx context.Context, sess domain.Session, id string, req domain.NameRequest) (domain.Category, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.Category{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Category{}, fmt.Errorf("%w: category name is required", store.ErrInvalidRecord)
	}
	updated, err := s.repo.UpdateCategory(ctx, domain.Category{ID: id, Name: name})
	if err != nil {
		return domain.Category{}, err
	}
	return *updated, nil
}

// DeleteCategory does not cascade; subcategories keep pointing at the
// removed id.
func (s *Service) DeleteCategory(ctx context.Context, sess domain.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	return s.repo.DeleteCategory(ctx, id)
}

func (s *Service) ListSubcategories(ctx context.Context, sess domain.Session, categoryID string) ([]domain.Subcategory, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	return s.repo.ListSubcategories(ctx, strings.TrimSpace(categoryID))
}

func (s *Service) CreateSubcategory(ctx context.Context, sess domain.Session, req domain.SubcategoryRequest) (domain.Subcategory, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.Subcategory{}, err
	}
	sub, err := s.validSubcategory(ctx, "", req)
	if err != nil {
		return domain.Subcategory{}, err
	}
	created, err := s.repo.CreateSubcategory(ctx, sub)
	if err != nil {
		return domain.Subcategory{}, err
	}
	return *created, nil
}

func (s *Service) UpdateSubcategory(ctx context.Context, sess domain.Session, id string, req domain.SubcategoryRequest) (domain.Subcategory, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.Subcategory{}, err
	}
	sub, err := s.validSubcategory(ctx, id, req)
	if err != nil {
		return domain.Subcategory{}, err
	}
	updated, err := s.repo.UpdateSubcategory(ctx, sub)
	if err != nil {
		return domain.Subcategory{}, err
	}
	return *updated, nil
}

func (s *Service) validSubcategory(ctx context.Context, id string, req domain.SubcategoryRequest) (domain.Subcategory, error) {
	sub := domain.Subcategory{ID: id, Name: strings.TrimSpace(req.Name), CategoryID: strings.TrimSpace(req.CategoryID)}
	if sub.Name == "" || sub.CategoryID == "" {
		return domain.Subcategory{}, fmt.Errorf("%w: subcategory needs a name and a category", store.ErrInvalidRecord)
	}
	if _, err := s.repo.GetCategory(ctx, sub.CategoryID); err != nil {
		return domain.Subcategory{}, fmt.Errorf("category %s: %w", sub.CategoryID, err)
	}
	return sub, nil
}

func (s *Service) DeleteSubcategory(ctx context.Context, sess domain.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	return s.repo.DeleteSubcategory(ctx, id)
}

func (s *Service) ListBrands(ctx context.Context, sess domain.Session) ([]domain.Brand, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	return s.repo.ListBrands(ctx)
}

func (s *Service) CreateBrand(ctx context.Context, sess domain.Session, req domain.NameRequest) (domain.Brand, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.Brand{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Brand{}, fmt.Errorf("%w: brand name is required", store.ErrInvalidRecord)
	}
	created, err := s.repo.CreateBrand(ctx, domain.Brand{Name: name})
	if err != nil {
		return domain.Brand{}, err
	}
	return *created, nil
}

func (s *Service) UpdateBrand(ctx context.Context, sess domain.Session, id string, req domain.NameRequest) (domain.Brand, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.Brand{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Brand{}, fmt.Errorf("%w: brand name is required", store.ErrInvalidRecord)
	}
	updated, err := s.repo.UpdateBrand(ctx, domain.Brand{ID: id, Name: name})
	if err != nil {
		return domain.Brand{}, err
	}
	return *updated, nil
}

func (s *Service) DeleteBrand(ctx context.Context, sess domain.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	return s.repo.DeleteBrand(ctx, id)
}

func (s *Service) ListMasterProducts(ctx context.Context, sess domain.Session) ([]domain.MasterProduct, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	return s.repo.ListMasterProducts(ctx)
}

func (s *Service) CreateMasterProduct(ctx context.Context, sess domain.Session, req domain.MasterProductRequest) (domain.MasterProduct, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.MasterProduct{}, err
	}
	product, err := s.buildMasterProduct(ctx, "", req)
	if err != nil {
		return domain.MasterProduct{}, err
	}
	created, err := s.repo.CreateMasterProduct(ctx, product)
	if err != nil {
		return domain.MasterProduct{}, err
	}
	return *created, nil
}

// UpdateMasterProduct replaces every field and stamps registered_at again.
func (s *Service) UpdateMasterProduct(ctx context.Context, sess domain.Session, id string, req domain.MasterProductRequest) (domain.MasterProduct, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.MasterProduct{}, err
	}
	product, err := s.buildMasterProduct(ctx, id, req)
	if err != nil {
		return domain.MasterProduct{}, err
	}
	updated, err := s.repo.UpdateMasterProduct(ctx, product)
	if err != nil {
		return domain.MasterProduct{}, err
	}
	return *updated, nil
}

func (s *Service) DeleteMasterProduct(ctx context.Context, sess domain.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	return s.repo.DeleteMasterProduct(ctx, id)
}

func (s *Service) buildMasterProduct(ctx context.Context, id string, req domain.MasterProductRequest) (domain.MasterProduct, error) {
	product := domain.MasterProduct{
		ID:            id,
		CategoryID:    strings.TrimSpace(req.CategoryID),
		SubcategoryID: strings.TrimSpace(req.SubcategoryID),
		BrandID:       strings.TrimSpace(req.BrandID),
		Model:         strings.TrimSpace(req.Model),
		Description:   strings.TrimSpace(req.Description),
		Price:         req.Price,
		Colors:        cleanList(req.Colors, false),
		Codes:         cleanList(req.Codes, true),
		RegisteredAt:  s.now().UTC(),
	}
	if product.CategoryID == "" {
		return domain.MasterProduct{}, fmt.Errorf("%w: master product needs a category", store.ErrInvalidRecord)
	}
	if !domain.ValidPrice(product.Price) {
		return domain.MasterProduct{}, fmt.Errorf("%w: price must be non-negative with at most two decimals", store.ErrInvalidRecord)
	}
	category, err := s.repo.GetCategory(ctx, product.CategoryID)
	if err != nil {
		return domain.MasterProduct{}, fmt.Errorf("category %s: %w", product.CategoryID, err)
	}
	if product.Description == "" {
		product.Description = s.composeDescription(ctx, category.Name, product)
	}
	return product, nil
}

// composeDescription joins category, subcategory, brand and model names, the
// way the catalog form pre-fills it.
func (s *Service) composeDescription(ctx context.Context, categoryName string, product domain.MasterProduct) string {
	parts := []string{categoryName}
	if product.SubcategoryID != "" {
		if subs, err := s.repo.ListSubcategories(ctx, product.CategoryID); err == nil {
			for _, sub := range subs {
				if sub.ID == product.SubcategoryID {
					parts = append(parts, sub.Name)
					break
				}
			}
		}
	}
	if product.BrandID != "" {
		if brands, err := s.repo.ListBrands(ctx); err == nil {
			for _, b := range brands {
				if b.ID == product.BrandID {
					parts = append(parts, b.Name)
					break
				}
			}
		}
	}
	parts = append(parts, product.Model)
	description := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	if description == "" {
		return domain.DefaultProductDescription
	}
	return description
}
