package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// LowStockThreshold is the quantity under which an inventory item is flagged.
const LowStockThreshold = 5

// PriceDecimals matches the NUMERIC(12,2) price columns.
const PriceDecimals = 2

// ValidPrice reports whether p is non-negative and fits in two decimals.
func ValidPrice(p decimal.Decimal) bool {
	return !p.IsNegative() && p.Equal(p.Truncate(PriceDecimals))
}

const DefaultProductDescription = "No description"

type Branch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

type BranchRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Subcategory struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
}

type SubcategoryRequest struct {
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
}

type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type NameRequest struct {
	Name string `json:"name"`
}

type MasterProduct struct {
	ID            string          `json:"id"`
	CategoryID    string          `json:"category_id"`
	SubcategoryID string          `json:"subcategory_id,omitempty"`
	BrandID       string          `json:"brand_id,omitempty"`
	Model         string          `json:"model"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Colors        []string        `json:"colors"`
	Codes         []string        `json:"codes"`
	RegisteredAt  time.Time       `json:"registered_at"`
}

type MasterProductRequest struct {
	CategoryID    string          `json:"category_id"`
	SubcategoryID string          `json:"subcategory_id"`
	BrandID       string          `json:"brand_id"`
	Model         string          `json:"model"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Colors        []string        `json:"colors"`
	Codes         []string        `json:"codes"`
}

type InventoryItem struct {
	ID              string          `json:"id"`
	BranchID        string          `json:"branch_id"`
	MasterProductID string          `json:"master_product_id,omitempty"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Quantity        int             `json:"quantity"`
	Codes           []string        `json:"codes"`
	LowStock        bool            `json:"low_stock"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// InventoryCreateRequest stocks a branch either from a master product or with
// an ad-hoc description and price.
type InventoryCreateRequest struct {
	BranchID        string           `json:"branch_id"`
	MasterProductID string           `json:"master_product_id"`
	Description     string           `json:"description"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	Quantity        int              `json:"quantity"`
	Codes           []string         `json:"codes"`
}

type InventoryUpdateRequest struct {
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Quantity    *int             `json:"quantity,omitempty"`
	Codes       []string         `json:"codes,omitempty"`
}

type RestockRequest struct {
	Quantity int `json:"quantity"`
}

type SaleLine struct {
	ItemID      string          `json:"item_id"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Temporary   bool            `json:"temporary"`
}

func (l SaleLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Sale struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employee_id"`
	BranchID   string          `json:"branch_id"`
	Lines      []SaleLine      `json:"lines"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  time.Time       `json:"created_at"`
}

// SaleFilter selects sales by branch and an inclusive time range. Zero values
// leave that bound open.
type SaleFilter struct {
	BranchID string
	From     time.Time
	To       time.Time
}

type DailySummary struct {
	BranchID string          `json:"branch_id"`
	Date     string          `json:"date"`
	Sales    []Sale          `json:"sales"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
}

type BranchTotal struct {
	BranchID   string          `json:"branch_id"`
	BranchName string          `json:"branch_name"`
	Sales      int             `json:"sales"`
	Total      decimal.Decimal `json:"total"`
}

type SalesDashboard struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	BranchID string          `json:"branch_id,omitempty"`
	Total    decimal.Decimal `json:"total"`
	ByBranch []BranchTotal   `json:"by_branch"`
	Sales    []Sale          `json:"sales"`
}

type EmployeePerformance struct {
	EmployeeID string          `json:"employee_id"`
	Name       string          `json:"name"`
	TotalSold  decimal.Decimal `json:"total_sold"`
	SalesCount int             `json:"sales_count"`
}

type PerformanceRanking struct {
	From    string                `json:"from"`
	To      string                `json:"to"`
	Ranking []EmployeePerformance `json:"ranking"`
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	BranchID  string    `json:"branch_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type EmployeeCreateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	BranchID string `json:"branch_id"`
}

type UserUpdateRequest struct {
	Name     string `json:"name"`
	BranchID string `json:"branch_id"`
}

// Credential is an internal persistence model for auth secrets. It outlives
// the user profile it points at.
type Credential struct {
	Email        string
	UserID       string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is the authenticated caller, passed explicitly into every service
// operation.
type Session struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	BranchID string `json:"branch_id,omitempty"`
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
	Home        string `json:"home"`
	User        User   `json:"user"`
}

type SearchRequest struct {
	Query string `json:"query"`
}

type AddItemRequest struct {
	ItemID string `json:"item_id"`
}

type ManualItemRequest struct {
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

type RegisterView struct {
	BranchID string          `json:"branch_id"`
	Query    string          `json:"query"`
	Results  []InventoryItem `json:"results"`
	Lines    []SaleLine      `json:"lines"`
	Total    decimal.Decimal `json:"total"`
}

type CheckoutResponse struct {
	Recorded bool  `json:"recorded"`
	Sale     *Sale `json:"sale,omitempty"`
}
