package store

import (
	"context"
	"errors"

	"sucursalpos/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidRecord     = errors.New("invalid record")
	ErrConflict          = errors.New("record already exists")
	// ErrSchemaMissing means a query hit a table, column or index the backing
	// store does not have yet.
	ErrSchemaMissing = errors.New("store schema missing; run migrate")
)

type Repository interface {
	ListBranches(ctx context.Context) ([]domain.Branch, error)
	GetBranch(ctx context.Context, id string) (*domain.Branch, error)
	CreateBranch(ctx context.Context, branch domain.Branch) (*domain.Branch, error)
	UpdateBranch(ctx context.Context, branch domain.Branch) (*domain.Branch, error)
	DeleteBranch(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, category domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListSubcategories(ctx context.Context, categoryID string) ([]domain.Subcategory, error)
	CreateSubcategory(ctx context.Context, sub domain.Subcategory) (*domain.Subcategory, error)
	UpdateSubcategory(ctx context.Context, sub domain.Subcategory) (*domain.Subcategory, error)
	DeleteSubcategory(ctx context.Context, id string) error

	ListBrands(ctx context.Context) ([]domain.Brand, error)
	CreateBrand(ctx context.Context, brand domain.Brand) (*domain.Brand, error)
	UpdateBrand(ctx context.Context, brand domain.Brand) (*domain.Brand, error)
	DeleteBrand(ctx context.Context, id string) error

	ListMasterProducts(ctx context.Context) ([]domain.MasterProduct, error)
	GetMasterProduct(ctx context.Context, id string) (*domain.MasterProduct, error)
	CreateMasterProduct(ctx context.Context, product domain.MasterProduct) (*domain.MasterProduct, error)
	UpdateMasterProduct(ctx context.Context, product domain.MasterProduct) (*domain.MasterProduct, error)
	DeleteMasterProduct(ctx context.Context, id string) error

	// ListInventory returns every item, or only one branch's when branchID is set.
	ListInventory(ctx context.Context, branchID string) ([]domain.InventoryItem, error)
	GetInventoryItem(ctx context.Context, id string) (*domain.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id string) error
	// IncrementInventoryQuantity applies delta atomically. It does not guard
	// against the quantity going negative.
	IncrementInventoryQuantity(ctx context.Context, id string, delta int) error

	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	// CreateSaleWithStock records the sale and decrements every non-temporary
	// line in one transaction, failing with ErrInsufficientStock if any line
	// exceeds the live quantity.
	CreateSaleWithStock(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error)

	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, user domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error

	CreateCredential(ctx context.Context, cred domain.Credential) error
	GetCredentialByEmail(ctx context.Context, email string) (*domain.Credential, error)
	DeleteCredential(ctx context.Context, email string) error
}
