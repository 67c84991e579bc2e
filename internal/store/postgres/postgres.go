package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"sucursalpos/internal/domain"
	"sucursalpos/internal/store"
	"sucursalpos/internal/xid"
)

//go:embed schema.sql
var schemaSQL string

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, location, created_at
		FROM branches
		ORDER BY name
	`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	branches := make([]domain.Branch, 0, 16)
	for rows.Next() {
		var b domain.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Location, &b.CreatedAt); err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

func (s *Store) GetBranch(ctx context.Context, id string) (*domain.Branch, error) {
	var b domain.Branch
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, location, created_at FROM branches WHERE id = $1
	`, id).Scan(&b.ID, &b.Name, &b.Location, &b.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

func (s *Store) CreateBranch(ctx context.Context, branch domain.Branch) (*domain.Branch, error) {
	if strings.TrimSpace(branch.Name) == "" {
		return nil, store.ErrInvalidRecord
	}
	if branch.ID == "" {
		branch.ID = xid.New("br")
	}
	if branch.CreatedAt.IsZero() {
		branch.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO branches (id, name, location, created_at) VALUES ($1,$2,$3,$4)
	`, branch.ID, branch.Name, branch.Location, branch.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &branch, nil
}

func (s *Store) UpdateBranch(ctx context.Context, branch domain.Branch) (*domain.Branch, error) {
	if strings.TrimSpace(branch.Name) == "" {
		return nil, store.ErrInvalidRecord
	}
	err := s.db.QueryRowContext(ctx, `
		UPDATE branches SET name = $2, location = $3 WHERE id = $1
		RETURNING created_at
	`, branch.ID, branch.Name, branch.Location).Scan(&branch.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &branch, nil
}

func (s *Store) DeleteBranch(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "branches", id)
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return listNamedRows(ctx, s.db, "categories", func(id, name string) domain.Category {
		return domain.Category{ID: id, Name: name}
	})
}

func (s *Store) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	if strings.TrimSpace(category.Name) == "" {
		return nil, store.ErrInvalidRecord
	}
	if category.ID == "" {
		category.ID = xid.New("cat")
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO categories (id, name) VALUES ($1,$2)`, category.ID, category.Name); err != nil {
		return nil, mapErr(err)
	}
	return &category, nil
}

func (s *Store) UpdateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	if err := s.execOne(ctx, `UPDATE categories SET name = $2 WHERE id = $1`, category.ID, category.Name); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "categories", id)
}

func (s *Store) ListSubcategories(ctx context.Context, categoryID string) ([]domain.Subcategory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category_id
		FROM subcategories
		WHERE ($1 = '' OR category_id = $1)
		ORDER BY name
	`, categoryID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	subs := make([]domain.Subcategory, 0, 16)
	for rows.Next() {
		var sub domain.Subcategory
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.CategoryID); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *Store) CreateSubcategory(ctx context.Context, sub domain.Subcategory) (*domain.Subcategory, error) {
	if strings.TrimSpace(sub.Name) == "" || sub.CategoryID == "" {
		return nil, store.ErrInvalidRecord
	}
	if sub.ID == "" {
		sub.ID = xid.New("sub")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subcategories (id, name, category_id) VALUES ($1,$2,$3)
	`, sub.ID, sub.Name, sub.CategoryID)
	if err != nil {
		return nil, mapErr(err)
	}
	return &sub, nil
}

func (s *Store) UpdateSubcategory(ctx context.Context, sub domain.Subcategory) (*domain.Subcategory, error) {
	if err := s.execOne(ctx, `
		UPDATE subcategories SET name = $2, category_id = $3 WHERE id = $1
	`, sub.ID, sub.Name, sub.CategoryID); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *Store) DeleteSubcategory(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "subcategories", id)
}

func (s *Store) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	return listNamedRows(ctx, s.db, "brands", func(id, name string) domain.Brand {
		return domain.Brand{ID: id, Name: name}
	})
}

func (s *Store) CreateBrand(ctx context.Context, brand domain.Brand) (*domain.Brand, error) {
	if strings.TrimSpace(brand.Name) == "" {
		return nil, store.ErrInvalidRecord
	}
	if brand.ID == "" {
		brand.ID = xid.New("brd")
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO brands (id, name) VALUES ($1,$2)`, brand.ID, brand.Name); err != nil {
		return nil, mapErr(err)
	}
	return &brand, nil
}

func (s *Store) UpdateBrand(ctx context.Context, brand domain.Brand) (*domain.Brand, error) {
	if err := s.execOne(ctx, `UPDATE brands SET name = $2 WHERE id = $1`, brand.ID, brand.Name); err != nil {
		return nil, err
	}
	return &brand, nil
}

func (s *Store) DeleteBrand(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "brands", id)
}

const masterProductColumns = `id, category_id, subcategory_id, brand_id, model, description, price, colors, codes, registered_at`

func (s *Store) ListMasterProducts(ctx context.Context) ([]domain.MasterProduct, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+masterProductColumns+`
		FROM master_products
		ORDER BY registered_at DESC, id
	`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	products := make([]domain.MasterProduct, 0, 64)
	for rows.Next() {
		p, err := scanMasterProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) GetMasterProduct(ctx context.Context, id string) (*domain.MasterProduct, error) {
	p, err := scanMasterProduct(s.db.QueryRowContext(ctx, `
		SELECT `+masterProductColumns+` FROM master_products WHERE id = $1
	`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (s *Store) CreateMasterProduct(ctx context.Context, product domain.MasterProduct) (*domain.MasterProduct, error) {
	if product.CategoryID == "" || !domain.ValidPrice(product.Price) {
		return nil, store.ErrInvalidRecord
	}
	if product.ID == "" {
		product.ID = xid.New("mp")
	}
	if product.RegisteredAt.IsZero() {
		product.RegisteredAt = time.Now().UTC()
	}
	colors, codes, err := encodeLists(product.Colors, product.Codes)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO master_products (`+masterProductColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, product.ID, product.CategoryID, nullIfEmpty(product.SubcategoryID), nullIfEmpty(product.BrandID),
		product.Model, product.Description, product.Price, colors, codes, product.RegisteredAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &product, nil
}

func (s *Store) UpdateMasterProduct(ctx context.Context, product domain.MasterProduct) (*domain.MasterProduct, error) {
	if product.CategoryID == "" || !domain.ValidPrice(product.Price) {
		return nil, store.ErrInvalidRecord
	}
	colors, codes, err := encodeLists(product.Colors, product.Codes)
	if err != nil {
		return nil, err
	}
	err = s.execOne(ctx, `
		UPDATE master_products
		SET category_id = $2, subcategory_id = $3, brand_id = $4, model = $5,
			description = $6, price = $7, colors = $8, codes = $9, registered_at = $10
		WHERE id = $1
	`, product.ID, product.CategoryID, nullIfEmpty(product.SubcategoryID), nullIfEmpty(product.BrandID),
		product.Model, product.Description, product.Price, colors, codes, product.RegisteredAt)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Store) DeleteMasterProduct(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "master_products", id)
}

const inventoryColumns = `id, branch_id, master_product_id, description, price, quantity, codes, updated_at`

func (s *Store) ListInventory(ctx context.Context, branchID string) ([]domain.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory_items
		WHERE ($1 = '' OR branch_id = $1)
		ORDER BY branch_id, description
	`, branchID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	items := make([]domain.InventoryItem, 0, 128)
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) GetInventoryItem(ctx context.Context, id string) (*domain.InventoryItem, error) {
	item, err := scanInventoryItem(s.db.QueryRowContext(ctx, `
		SELECT `+inventoryColumns+` FROM inventory_items WHERE id = $1
	`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &item, nil
}

func (s *Store) CreateInventoryItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	if item.BranchID == "" || strings.TrimSpace(item.Description) == "" || !domain.ValidPrice(item.Price) {
		return nil, store.ErrInvalidRecord
	}
	if item.ID == "" {
		item.ID = xid.New("inv")
	}
	codes, err := json.Marshal(nonNil(item.Codes))
	if err != nil {
		return nil, err
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO inventory_items (id, branch_id, master_product_id, description, price, quantity, codes, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,now())
		RETURNING updated_at
	`, item.ID, item.BranchID, nullIfEmpty(item.MasterProductID), item.Description, item.Price, item.Quantity, codes).Scan(&item.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &item, nil
}

func (s *Store) UpdateInventoryItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	if strings.TrimSpace(item.Description) == "" || !domain.ValidPrice(item.Price) {
		return nil, store.ErrInvalidRecord
	}
	codes, err := json.Marshal(nonNil(item.Codes))
	if err != nil {
		return nil, err
	}
	err = s.db.QueryRowContext(ctx, `
		UPDATE inventory_items
		SET description = $2, price = $3, quantity = $4, codes = $5, updated_at = now()
		WHERE id = $1
		RETURNING branch_id, updated_at
	`, item.ID, item.Description, item.Price, item.Quantity, codes).Scan(&item.BranchID, &item.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &item, nil
}

func (s *Store) DeleteInventoryItem(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "inventory_items", id)
}

func (s *Store) IncrementInventoryQuantity(ctx context.Context, id string, delta int) error {
	return s.execOne(ctx, `
		UPDATE inventory_items SET quantity = quantity + $2, updated_at = now() WHERE id = $1
	`, id, delta)
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if err := prepareSale(&sale); err != nil {
		return nil, err
	}

	pgTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	if err := insertSale(ctx, pgTx, sale); err != nil {
		return nil, err
	}
	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) CreateSaleWithStock(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if err := prepareSale(&sale); err != nil {
		return nil, err
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	for _, line := range sale.Lines {
		if line.Temporary {
			continue
		}
		res, err := pgTx.ExecContext(ctx, `
			UPDATE inventory_items
			SET quantity = quantity - $2, updated_at = now()
			WHERE id = $1 AND quantity >= $2
		`, line.ItemID, line.Quantity)
		if err != nil {
			return nil, mapErr(err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			var exists bool
			if err := pgTx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM inventory_items WHERE id = $1)`, line.ItemID).Scan(&exists); err != nil {
				return nil, err
			}
			if !exists {
				return nil, store.ErrNotFound
			}
			return nil, store.ErrInsufficientStock
		}
	}

	if err := insertSale(ctx, pgTx, sale); err != nil {
		return nil, err
	}
	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	return &sale, nil
}

func insertSale(ctx context.Context, tx *sql.Tx, sale domain.Sale) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sales (id, employee_id, branch_id, total, created_at) VALUES ($1,$2,$3,$4,$5)
	`, sale.ID, sale.EmployeeID, sale.BranchID, sale.Total, sale.CreatedAt)
	if err != nil {
		return mapErr(err)
	}
	for i, line := range sale.Lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sale_lines (sale_id, position, item_id, description, unit_price, quantity, temporary)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, sale.ID, i, line.ItemID, line.Description, line.UnitPrice, line.Quantity, line.Temporary)
		if err != nil {
			return mapErr(err)
		}
	}
	return nil
}

func prepareSale(sale *domain.Sale) error {
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

func (s *Store) ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, branch_id, total, created_at
		FROM sales
		WHERE ($1 = '' OR branch_id = $1)
			AND ($2::timestamptz IS NULL OR created_at >= $2)
			AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at, id
	`, filter.BranchID, nullTime(filter.From), nullTime(filter.To))
	if err != nil {
		return nil, mapErr(err)
	}

	sales := make([]domain.Sale, 0, 64)
	index := make(map[string]int)
	ids := make([]string, 0, 64)
	for rows.Next() {
		var sale domain.Sale
		if err := rows.Scan(&sale.ID, &sale.EmployeeID, &sale.BranchID, &sale.Total, &sale.CreatedAt); err != nil {
			_ = rows.Close()
			return nil, err
		}
		sale.Lines = make([]domain.SaleLine, 0, 4)
		index[sale.ID] = len(sales)
		ids = append(ids, sale.ID)
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	if len(ids) == 0 {
		return sales, nil
	}

	lineRows, err := s.db.QueryContext(ctx, `
		SELECT sale_id, item_id, description, unit_price, quantity, temporary
		FROM sale_lines
		WHERE sale_id = ANY($1)
		ORDER BY sale_id, position
	`, ids)
	if err != nil {
		return nil, mapErr(err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var saleID string
		var line domain.SaleLine
		if err := lineRows.Scan(&saleID, &line.ItemID, &line.Description, &line.UnitPrice, &line.Quantity, &line.Temporary); err != nil {
			return nil, err
		}
		if i, ok := index[saleID]; ok {
			sales[i].Lines = append(sales[i].Lines, line)
		}
	}
	return sales, lineRows.Err()
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, role, branch_id, created_at
		FROM users
		ORDER BY email
	`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	users := make([]domain.User, 0, 32)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, branch_id, created_at FROM users WHERE id = $1
	`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.ID == "" || user.Email == "" {
		return nil, store.ErrInvalidRecord
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, role, branch_id, created_at) VALUES ($1,$2,$3,$4,$5,$6)
	`, user.ID, user.Name, user.Email, user.Role, nullIfEmpty(user.BranchID), user.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (s *Store) UpdateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	err := s.execOne(ctx, `
		UPDATE users SET name = $2, role = $3, branch_id = $4 WHERE id = $1
	`, user.ID, user.Name, user.Role, nullIfEmpty(user.BranchID))
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "users", id)
}

func (s *Store) CreateCredential(ctx context.Context, cred domain.Credential) error {
	cred.Email = strings.ToLower(strings.TrimSpace(cred.Email))
	if cred.Email == "" || cred.UserID == "" || cred.PasswordHash == "" {
		return store.ErrInvalidRecord
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (email, user_id, password_hash, created_at) VALUES ($1,$2,$3,now())
	`, cred.Email, cred.UserID, cred.PasswordHash)
	return mapErr(err)
}

func (s *Store) GetCredentialByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	var cred domain.Credential
	err := s.db.QueryRowContext(ctx, `
		SELECT email, user_id, password_hash, created_at FROM credentials WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email))).Scan(&cred.Email, &cred.UserID, &cred.PasswordHash, &cred.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &cred, nil
}

func (s *Store) DeleteCredential(ctx context.Context, email string) error {
	return s.execOne(ctx, `DELETE FROM credentials WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMasterProduct(row rowScanner) (domain.MasterProduct, error) {
	var p domain.MasterProduct
	var subcategoryID, brandID sql.NullString
	var colorsRaw, codesRaw []byte
	if err := row.Scan(&p.ID, &p.CategoryID, &subcategoryID, &brandID, &p.Model, &p.Description,
		&p.Price, &colorsRaw, &codesRaw, &p.RegisteredAt); err != nil {
		return p, err
	}
	p.SubcategoryID = subcategoryID.String
	p.BrandID = brandID.String
	if err := json.Unmarshal(colorsRaw, &p.Colors); err != nil {
		return p, fmt.Errorf("decode colors for %s: %w", p.ID, err)
	}
	if err := json.Unmarshal(codesRaw, &p.Codes); err != nil {
		return p, fmt.Errorf("decode codes for %s: %w", p.ID, err)
	}
	return p, nil
}

func scanInventoryItem(row rowScanner) (domain.InventoryItem, error) {
	var item domain.InventoryItem
	var masterProductID sql.NullString
	var codesRaw []byte
	if err := row.Scan(&item.ID, &item.BranchID, &masterProductID, &item.Description,
		&item.Price, &item.Quantity, &codesRaw, &item.UpdatedAt); err != nil {
		return item, err
	}
	item.MasterProductID = masterProductID.String
	if err := json.Unmarshal(codesRaw, &item.Codes); err != nil {
		return item, fmt.Errorf("decode codes for %s: %w", item.ID, err)
	}
	return item, nil
}

func scanUser(row rowScanner) (domain.User, error) {
	var user domain.User
	var branchID sql.NullString
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &branchID, &user.CreatedAt); err != nil {
		return user, err
	}
	user.BranchID = branchID.String
	return user, nil
}

func listNamedRows[T any](ctx context.Context, db *sql.DB, table string, build func(id, name string) T) ([]T, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name FROM `+table+` ORDER BY name`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]T, 0, 32)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out = append(out, build(id, name))
	}
	return out, rows.Err()
}

func (s *Store) deleteByID(ctx context.Context, table, id string) error {
	return s.execOne(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
}

// execOne runs a statement that must touch exactly one row.
func (s *Store) execOne(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapErr(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", store.ErrConflict, pgErr.ConstraintName)
		case "23514", "23502":
			return fmt.Errorf("%w: %s", store.ErrInvalidRecord, pgErr.Message)
		case "42P01", "42703":
			return fmt.Errorf("%w: %s", store.ErrSchemaMissing, pgErr.Message)
		}
	}
	return err
}

func encodeLists(colors, codes []string) ([]byte, []byte, error) {
	colorsJSON, err := json.Marshal(nonNil(colors))
	if err != nil {
		return nil, nil, err
	}
	codesJSON, err := json.Marshal(nonNil(codes))
	if err != nil {
		return nil, nil, err
	}
	return colorsJSON, codesJSON, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullTime(val time.Time) any {
	if val.IsZero() {
		return nil
	}
	return val
}
