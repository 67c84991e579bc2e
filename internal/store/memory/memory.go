package memory

import (
	"cmp"
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"sucursalpos/internal/domain"
	"sucursalpos/internal/store"
	"sucursalpos/internal/xid"
)

type Store struct {
	mu             sync.RWMutex
	branches       map[string]domain.Branch
	categories     map[string]domain.Category
	subcategories  map[string]domain.Subcategory
	brands         map[string]domain.Brand
	masterProducts map[string]domain.MasterProduct
	inventory      map[string]domain.InventoryItem
	sales          []domain.Sale
	users          map[string]domain.User
	credentials    map[string]domain.Credential
}

func New() *Store {
	return &Store{
		branches:       make(map[string]domain.Branch),
		categories:     make(map[string]domain.Category),
		subcategories:  make(map[string]domain.Subcategory),
		brands:         make(map[string]domain.Brand),
		masterProducts: make(map[string]domain.MasterProduct),
		inventory:      make(map[string]domain.InventoryItem),
		sales:          make([]domain.Sale, 0, 64),
		users:          make(map[string]domain.User),
		credentials:    make(map[string]domain.Credential),
	}
}

const (
	SeedBranchID        = "br-centro"
	SeedAdminEmail      = "admin@sucursalpos.local"
	SeedEmployeeEmail   = "employee@sucursalpos.local"
	seedAdminUserID     = "usr-admin"
	seedEmployeeUserID  = "usr-employee"
	seedCategoryGeneral = "cat-general"
)

// NewSeeded returns a store with one branch, a small stocked inventory and an
// admin plus an employee account for dev/demo mode. Passwords come from
// SEED_ADMIN_PASSWORD and SEED_EMPLOYEE_PASSWORD; unset values fall back to
// dev defaults with a warning.
func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()

	s.branches[SeedBranchID] = domain.Branch{ID: SeedBranchID, Name: "Centro", Location: "Av. Principal 100", CreatedAt: now}
	s.branches["br-norte"] = domain.Branch{ID: "br-norte", Name: "Norte", Location: "Calle 45 #12", CreatedAt: now}
	s.categories[seedCategoryGeneral] = domain.Category{ID: seedCategoryGeneral, Name: "General"}
	s.brands["brd-generic"] = domain.Brand{ID: "brd-generic", Name: "Generic"}

	for _, p := range []struct {
		id    string
		desc  string
		price string
		qty   int
		code  string
	}{
		{"inv-cable-usb", "Cable USB-C 1m", "4.50", 40, "USBC1M"},
		{"inv-charger", "Wall charger 20W", "12.00", 15, "CHG20W"},
		{"inv-case-black", "Phone case black", "8.50", 10, "CASEBLK"},
		{"inv-earbuds", "Wired earbuds", "6.75", 3, "EARB01"},
	} {
		s.inventory[p.id] = domain.InventoryItem{
			ID:          p.id,
			BranchID:    SeedBranchID,
			Description: p.desc,
			Price:       decimal.RequireFromString(p.price),
			Quantity:    p.qty,
			Codes:       []string{p.code},
			UpdatedAt:   now,
		}
	}

	for _, u := range seedUsers() {
		s.users[u.user.ID] = u.user
		s.credentials[u.cred.Email] = u.cred
	}
	return s
}

type seedAccount struct {
	user domain.User
	cred domain.Credential
}

func seedUsers() []seedAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	employeePwd := envOr("SEED_EMPLOYEE_PASSWORD", "employee123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_EMPLOYEE_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_EMPLOYEE_PASSWORD to override.")
	}

	now := time.Now().UTC()
	accounts := make([]seedAccount, 0, 2)
	for _, u := range []struct {
		id, name, email, password, role, branch string
	}{
		{seedAdminUserID, "Administrator", SeedAdminEmail, adminPwd, domain.RoleAdmin, ""},
		{seedEmployeeUserID, "Front Desk", SeedEmployeeEmail, employeePwd, domain.RoleEmployee, SeedBranchID},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.email, err)
		}
		accounts = append(accounts, seedAccount{
			user: domain.User{ID: u.id, Name: u.name, Email: u.email, Role: u.role, BranchID: u.branch, CreatedAt: now},
			cred: domain.Credential{Email: u.email, UserID: u.id, PasswordHash: string(hash), CreatedAt: now},
		})
	}
	return accounts
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (s *Store) ListBranches(_ context.Context) ([]domain.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedValues(s.branches, func(a, b domain.Branch) int {
		return cmp.Compare(a.Name, b.Name)
	}), nil
}

func (s *Store) GetBranch(_ context.Context, id string) (*domain.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	branch, ok := s.branches[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &branch, nil
}

func (s *Store) CreateBranch(_ context.Context, branch domain.Branch) (*domain.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(branch.Name) == "" {
		return nil, store.ErrInvalidRecord
	}
	if branch.ID == "" {
		branch.ID = xid.New("br")
	}
	if _, exists := s.branches[branch.ID]; exists {
		return nil, store.ErrConflict
	}
	if branch.CreatedAt.IsZero() {
		branch.CreatedAt = time.Now().UTC()
	}
	s.branches[branch.ID] = branch
	return &branch, nil
}

func (s *Store) UpdateBranch(_ context.Context, branch domain.Branch) (*domain.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.branches[branch.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if strings.TrimSpace(branch.Name) == "" {
		return nil, store.ErrInvalidRecord
	}
	branch.CreatedAt = current.CreatedAt
	s.branches[branch.ID] = branch
	return &branch, nil
}

func (s *Store) DeleteBranch(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteKey(s.branches, id)
}

func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedValues(s.categories, func(a, b domain.Category) int {
		return cmp.Compare(a.Name, b.Name)
	}), nil
}

func (s *Store) GetCategory(_ context.Context, id string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, ok := s.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &category, nil
}

func (s *Store) CreateCategory(_ context.Context, category domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(category.Name) == "" {
		return nil, store.ErrInvalidRecord
	}
	if category.ID == "" {
		category.ID = xid.New("cat")
	}
	s.categories[category.ID] = category
	return &category, nil
}

func (s *Store) UpdateCategory(_ context.Context, category domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[category.ID]; !ok {
		return nil, store.ErrNotFound
	}
	s.categories[category.ID] = category
	return &category, nil
}

// DeleteCategory leaves subcategories that pointed at it in place.
func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteKey(s.categories, id)
}

func (s *Store) ListSubcategories(_ context.Context, categoryID string) ([]domain.Subcategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := make([]domain.Subcategory, 0, len(s.subcategories))
	for _, sub := range s.subcategories {
		if categoryID != "" && sub.CategoryID != categoryID {
			continue
		}
		subs = append(subs, sub)
	}
	slices.SortFunc(subs, func(a, b domain.Subcategory) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return subs, nil
}

func (s *Store) CreateSubcategory(_ context.Context, sub domain.Subcategory) (*domain.Subcategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(sub.Name) == "" || sub.CategoryID == "" {
		return nil, store.ErrInvalidRecord
	}
	if sub.ID == "" {
		sub.ID = xid.New("sub")
	}
	s.subcategories[sub.ID] = sub
	return &sub, nil
}

func (s *Store) UpdateSubcategory(_ context.Context, sub domain.Subcategory) (*domain.Subcategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subcategories[sub.ID]; !ok {
		return nil, store.ErrNotFound
	}
	s.subcategories[sub.ID] = sub
	return &sub, nil
}

func (s *Store) DeleteSubcategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteKey(s.subcategories, id)
}

func (s *Store) ListBrands(_ context.Context) ([]domain.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedValues(s.brands, func(a, b domain.Brand) int {
		return cmp.Compare(a.Name, b.Name)
	}), nil
}

func (s *Store) CreateBrand(_ context.Context, brand domain.Brand) (*domain.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(brand.Name) == "" {
		return nil, store.ErrInvalidRecord
	}
	if brand.ID == "" {
		brand.ID = xid.New("brd")
	}
	s.brands[brand.ID] = brand
	return &brand, nil
}

func (s *Store) UpdateBrand(_ context.Context, brand domain.Brand) (*domain.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.brands[brand.ID]; !ok {
		return nil, store.ErrNotFound
	}
	s.brands[brand.ID] = brand
	return &brand, nil
}

func (s *Store) DeleteBrand(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteKey(s.brands, id)
}

func (s *Store) ListMasterProducts(_ context.Context) ([]domain.MasterProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.MasterProduct, 0, len(s.masterProducts))
	for _, p := range s.masterProducts {
		products = append(products, cloneMasterProduct(p))
	}
	slices.SortFunc(products, func(a, b domain.MasterProduct) int {
		if c := b.RegisteredAt.Compare(a.RegisteredAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return products, nil
}

func (s *Store) GetMasterProduct(_ context.Context, id string) (*domain.MasterProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.masterProducts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	product = cloneMasterProduct(product)
	return &product, nil
}

func (s *Store) CreateMasterProduct(_ context.Context, product domain.MasterProduct) (*domain.MasterProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.CategoryID == "" || !domain.ValidPrice(product.Price) {
		return nil, store.ErrInvalidRecord
	}
	if product.ID == "" {
		product.ID = xid.New("mp")
	}
	if product.RegisteredAt.IsZero() {
		product.RegisteredAt = time.Now().UTC()
	}
	s.masterProducts[product.ID] = cloneMasterProduct(product)
	return &product, nil
}

func (s *Store) UpdateMasterProduct(_ context.Context, product domain.MasterProduct) (*domain.MasterProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.masterProducts[product.ID]; !ok {
		return nil, store.ErrNotFound
	}
	if product.CategoryID == "" || !domain.ValidPrice(product.Price) {
		return nil, store.ErrInvalidRecord
	}
	s.masterProducts[product.ID] = cloneMasterProduct(product)
	return &product, nil
}

func (s *Store) DeleteMasterProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteKey(s.masterProducts, id)
}

func (s *Store) ListInventory(_ context.Context, branchID string) ([]domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.InventoryItem, 0, len(s.inventory))
	for _, item := range s.inventory {
		if branchID != "" && item.BranchID != branchID {
			continue
		}
		items = append(items, cloneInventoryItem(item))
	}
	slices.SortFunc(items, func(a, b domain.InventoryItem) int {
		if c := cmp.Compare(a.BranchID, b.BranchID); c != 0 {
			return c
		}
		return cmp.Compare(a.Description, b.Description)
	})
	return items, nil
}

func (s *Store) GetInventoryItem(_ context.Context, id string) (*domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.inventory[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	item = cloneInventoryItem(item)
	return &item, nil
}

func (s *Store) CreateInventoryItem(_ context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.BranchID == "" || strings.TrimSpace(item.Description) == "" || !domain.ValidPrice(item.Price) {
		return nil, store.ErrInvalidRecord
	}
	if item.ID == "" {
		item.ID = xid.New("inv")
	}
	if _, exists := s.inventory[item.ID]; exists {
		return nil, store.ErrConflict
	}
	item.UpdatedAt = time.Now().UTC()
	s.inventory[item.ID] = cloneInventoryItem(item)
	return &item, nil
}

func (s *Store) UpdateInventoryItem(_ context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.inventory[item.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if strings.TrimSpace(item.Description) == "" || !domain.ValidPrice(item.Price) {
		return nil, store.ErrInvalidRecord
	}
	item.BranchID = current.BranchID
	item.UpdatedAt = time.Now().UTC()
	s.inventory[item.ID] = cloneInventoryItem(item)
	return &item, nil
}

func (s *Store) DeleteInventoryItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteKey(s.inventory, id)
}

func (s *Store) IncrementInventoryQuantity(_ context.Context, id string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.inventory[id]
	if !ok {
		return store.ErrNotFound
	}
	item.Quantity += delta
	item.UpdatedAt = time.Now().UTC()
	s.inventory[id] = item
	return nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prepareSale(&sale); err != nil {
		return nil, err
	}
	s.sales = append(s.sales, cloneSale(sale))
	return &sale, nil
}

func (s *Store) CreateSaleWithStock(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prepareSale(&sale); err != nil {
		return nil, err
	}

	// Validate every line before touching stock so a rejection writes nothing.
	needed := make(map[string]int, len(sale.Lines))
	for _, line := range sale.Lines {
		if line.Temporary {
			continue
		}
		needed[line.ItemID] += line.Quantity
	}
	for id, qty := range needed {
		item, ok := s.inventory[id]
		if !ok {
			return nil, store.ErrNotFound
		}
		if item.Quantity < qty {
			return nil, store.ErrInsufficientStock
		}
	}

	now := time.Now().UTC()
	for id, qty := range needed {
		item := s.inventory[id]
		item.Quantity -= qty
		item.UpdatedAt = now
		s.inventory[id] = item
	}
	s.sales = append(s.sales, cloneSale(sale))
	return &sale, nil
}

func (s *Store) prepareSale(sale *domain.Sale) error {
	if sale.EmployeeID == "" || sale.BranchID == "" || len(sale.Lines) == 0 {
		return store.ErrInvalidRecord
	}
	for _, line := range sale.Lines {
		if line.ItemID == "" || line.Quantity < 1 {
			return store.ErrInvalidRecord
		}
	}
	if sale.ID == "" {
		sale.ID = xid.New("sale")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}
	return nil
}

func (s *Store) ListSales(_ context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0)
	for _, sale := range s.sales {
		if filter.BranchID != "" && sale.BranchID != filter.BranchID {
			continue
		}
		if !filter.From.IsZero() && sale.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && sale.CreatedAt.After(filter.To) {
			continue
		}
		sales = append(sales, cloneSale(sale))
	}
	return sales, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedValues(s.users, func(a, b domain.User) int {
		return cmp.Compare(a.Email, b.Email)
	}), nil
}

func (s *Store) GetUser(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &user, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Email = normalizeEmail(user.Email)
	if user.ID == "" || user.Email == "" {
		return nil, store.ErrInvalidRecord
	}
	if _, exists := s.users[user.ID]; exists {
		return nil, store.ErrConflict
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.ID] = user
	return &user, nil
}

func (s *Store) UpdateUser(_ context.Context, user domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return nil, store.ErrNotFound
	}
	s.users[user.ID] = user
	return &user, nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteKey(s.users, id)
}

func (s *Store) CreateCredential(_ context.Context, cred domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred.Email = normalizeEmail(cred.Email)
	if cred.Email == "" || cred.UserID == "" || cred.PasswordHash == "" {
		return store.ErrInvalidRecord
	}
	if _, exists := s.credentials[cred.Email]; exists {
		return store.ErrConflict
	}
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now().UTC()
	}
	s.credentials[cred.Email] = cred
	return nil
}

func (s *Store) GetCredentialByEmail(_ context.Context, email string) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.credentials[normalizeEmail(email)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &cred, nil
}

func (s *Store) DeleteCredential(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteKey(s.credentials, normalizeEmail(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func deleteKey[V any](m map[string]V, id string) error {
	if _, ok := m[id]; !ok {
		return store.ErrNotFound
	}
	delete(m, id)
	return nil
}

func sortedValues[V any](m map[string]V, less func(a, b V) int) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, less)
	return out
}

func cloneMasterProduct(src domain.MasterProduct) domain.MasterProduct {
	dst := src
	dst.Colors = slices.Clone(src.Colors)
	dst.Codes = slices.Clone(src.Codes)
	return dst
}

func cloneInventoryItem(src domain.InventoryItem) domain.InventoryItem {
	dst := src
	dst.Codes = slices.Clone(src.Codes)
	return dst
}

func cloneSale(src domain.Sale) domain.Sale {
	dst := src
	dst.Lines = slices.Clone(src.Lines)
	return dst
}
