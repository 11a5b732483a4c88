// Package main provides a CLI tool for preparing the database: schema,
// access control entries, the admin user and optional demo data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"stockyard/internal/core/id"
	"stockyard/internal/infrastructure/storage/postgres"
	"stockyard/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to database
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := ensureSchema(ctx, pool); err != nil {
		log.Fatalw("failed to create schema", "error", err)
	}
	log.Info("schema is up to date")

	if err := seedAccessControl(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed roles and permissions", "error", err)
	}

	adminUserID, err := seedAdminUser(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}
	_ = adminUserID

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// ensureSchema creates all tables if they do not exist yet.
// Statements are idempotent so the seeder can run on every deploy.
func ensureSchema(ctx context.Context, pool *postgres.Pool) error {
	statements := []string{
		// --- Auth ---
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			full_name TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			last_login_at TIMESTAMPTZ,
			failed_login_attempts INT NOT NULL DEFAULT 0,
			locked_until TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			deleted_at TIMESTAMPTZ,
			version INT NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS roles (
			id UUID PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			is_system BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS permissions (
			id UUID PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			resource TEXT NOT NULL DEFAULT '',
			action TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS user_roles (
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role_id UUID NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
			granted_by UUID,
			granted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, role_id)
		)`,
		`CREATE TABLE IF NOT EXISTS role_permissions (
			role_id UUID NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
			permission_id UUID NOT NULL REFERENCES permissions(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (role_id, permission_id)
		)`,
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			token_hash TEXT NOT NULL UNIQUE,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			revoked_at TIMESTAMPTZ,
			revoked_reason TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			ip_address TEXT NOT NULL DEFAULT ''
		)`,
		// Denylist of logged-out access tokens, keyed by jti.
		`CREATE TABLE IF NOT EXISTS invalidated_tokens (
			id TEXT PRIMARY KEY,
			expiry_time TIMESTAMPTZ NOT NULL
		)`,

		// --- Catalogs ---
		`CREATE TABLE IF NOT EXISTS cat_categories (
			id UUID PRIMARY KEY,
			code TEXT NOT NULL,
			name TEXT NOT NULL,
			parent_id UUID,
			is_folder BOOLEAN NOT NULL DEFAULT FALSE,
			description TEXT,
			deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
			version INT NOT NULL DEFAULT 1
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_cat_categories_code
			ON cat_categories (code) WHERE NOT deletion_mark`,
		`CREATE TABLE IF NOT EXISTS cat_product_types (
			id UUID PRIMARY KEY,
			code TEXT NOT NULL,
			name TEXT NOT NULL,
			parent_id UUID,
			is_folder BOOLEAN NOT NULL DEFAULT FALSE,
			category_id UUID NOT NULL,
			price NUMERIC(15,2) NOT NULL DEFAULT 0,
			description TEXT,
			deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
			version INT NOT NULL DEFAULT 1
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_cat_product_types_code
			ON cat_product_types (code) WHERE NOT deletion_mark`,
		`CREATE TABLE IF NOT EXISTS cat_products (
			id UUID PRIMARY KEY,
			code TEXT NOT NULL,
			name TEXT NOT NULL,
			parent_id UUID,
			is_folder BOOLEAN NOT NULL DEFAULT FALSE,
			product_type_id UUID NOT NULL,
			size TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'active',
			image_url TEXT,
			description TEXT,
			deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
			version INT NOT NULL DEFAULT 1
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_cat_products_code
			ON cat_products (code) WHERE NOT deletion_mark`,
		`CREATE TABLE IF NOT EXISTS cat_warehouses (
			id UUID PRIMARY KEY,
			code TEXT NOT NULL,
			name TEXT NOT NULL,
			parent_id UUID,
			is_folder BOOLEAN NOT NULL DEFAULT FALSE,
			type TEXT NOT NULL DEFAULT 'main',
			address TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_system BOOLEAN NOT NULL DEFAULT FALSE,
			allow_negative_stock BOOLEAN NOT NULL DEFAULT FALSE,
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			description TEXT,
			deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
			version INT NOT NULL DEFAULT 1
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_cat_warehouses_code
			ON cat_warehouses (code) WHERE NOT deletion_mark`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_cat_warehouses_default
			ON cat_warehouses (is_default) WHERE is_default AND NOT deletion_mark`,

		// --- Notes ---
		`CREATE TABLE IF NOT EXISTS doc_exchange_notes (
			id UUID PRIMARY KEY,
			number TEXT NOT NULL,
			date TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			posted BOOLEAN NOT NULL DEFAULT FALSE,
			comment TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			source_warehouse_id UUID,
			destination_warehouse_id UUID,
			approved_by TEXT NOT NULL DEFAULT '',
			deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
			version INT NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			created_by TEXT NOT NULL DEFAULT '',
			updated_by TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_doc_exchange_notes_number
			ON doc_exchange_notes (number) WHERE NOT deletion_mark`,
		`CREATE INDEX IF NOT EXISTS ix_doc_exchange_notes_date
			ON doc_exchange_notes (date)`,
		`CREATE TABLE IF NOT EXISTS doc_exchange_note_items (
			line_id UUID PRIMARY KEY,
			document_id UUID NOT NULL REFERENCES doc_exchange_notes(id) ON DELETE CASCADE,
			line_no INT NOT NULL,
			code TEXT NOT NULL DEFAULT '',
			product_id UUID NOT NULL,
			quantity BIGINT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending'
		)`,
		`CREATE INDEX IF NOT EXISTS ix_doc_exchange_note_items_doc
			ON doc_exchange_note_items (document_id)`,
		`CREATE TABLE IF NOT EXISTS doc_stock_check_notes (
			id UUID PRIMARY KEY,
			number TEXT NOT NULL,
			date TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			posted BOOLEAN NOT NULL DEFAULT FALSE,
			comment TEXT NOT NULL DEFAULT '',
			warehouse_id UUID NOT NULL,
			checked_by TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
			version INT NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			created_by TEXT NOT NULL DEFAULT '',
			updated_by TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_doc_stock_check_notes_number
			ON doc_stock_check_notes (number) WHERE NOT deletion_mark`,
		`CREATE TABLE IF NOT EXISTS doc_stock_check_lines (
			line_id UUID PRIMARY KEY,
			document_id UUID NOT NULL REFERENCES doc_stock_check_notes(id) ON DELETE CASCADE,
			line_no INT NOT NULL,
			product_id UUID NOT NULL,
			last_quantity BIGINT NOT NULL DEFAULT 0,
			total_import_quantity BIGINT NOT NULL DEFAULT 0,
			total_export_quantity BIGINT NOT NULL DEFAULT 0,
			expected_quantity BIGINT NOT NULL DEFAULT 0,
			actual_quantity BIGINT NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending',
			counted_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS ix_doc_stock_check_lines_doc
			ON doc_stock_check_lines (document_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_doc_stock_check_lines_product
			ON doc_stock_check_lines (document_id, product_id)`,

		// --- Registers ---
		`CREATE TABLE IF NOT EXISTS reg_stock_movements (
			line_id UUID PRIMARY KEY,
			recorder_id UUID NOT NULL,
			recorder_type TEXT NOT NULL,
			period TIMESTAMPTZ NOT NULL,
			record_type TEXT NOT NULL,
			kind TEXT NOT NULL,
			warehouse_id UUID NOT NULL,
			product_id UUID NOT NULL,
			quantity BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS ix_reg_stock_movements_dims
			ON reg_stock_movements (warehouse_id, product_id, period)`,
		`CREATE INDEX IF NOT EXISTS ix_reg_stock_movements_recorder
			ON reg_stock_movements (recorder_id)`,
		`CREATE TABLE IF NOT EXISTS reg_stock_balances (
			warehouse_id UUID NOT NULL,
			product_id UUID NOT NULL,
			quantity BIGINT NOT NULL DEFAULT 0,
			last_movement_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (warehouse_id, product_id)
		)`,

		// --- System ---
		`CREATE TABLE IF NOT EXISTS sys_sequences (
			key TEXT PRIMARY KEY,
			current_val BIGINT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS sys_idempotency (
			idempotency_key TEXT PRIMARY KEY,
			user_id TEXT NOT NULL DEFAULT '',
			operation TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			request_hash TEXT NOT NULL DEFAULT '',
			response BYTEA,
			response_status INT NOT NULL DEFAULT 0,
			response_content_type TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			expires_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sys_audit (
			id UUID PRIMARY KEY,
			entity_type TEXT NOT NULL,
			entity_id UUID NOT NULL,
			action TEXT NOT NULL,
			user_id TEXT NOT NULL DEFAULT '',
			user_email TEXT NOT NULL DEFAULT '',
			changes JSONB,
			changes_compressed BYTEA,
			compression_algo TEXT NOT NULL DEFAULT 'none',
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS ix_sys_audit_entity
			ON sys_audit (entity_type, entity_id)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}

	return nil
}

// permissionSeed is one row in the permissions catalog.
type permissionSeed struct {
	code     string
	name     string
	resource string
	action   string
}

func permissionSeeds() []permissionSeed {
	resources := []struct {
		key     string
		name    string
		actions []string
	}{
		{"catalog:category", "Categories", []string{"read", "create", "update", "delete"}},
		{"catalog:product_type", "Product types", []string{"read", "create", "update", "delete"}},
		{"catalog:product", "Products", []string{"read", "create", "update", "delete"}},
		{"catalog:warehouse", "Warehouses", []string{"read", "create", "update", "delete"}},
		{"document:exchange_note", "Exchange notes", []string{"read", "create", "update", "delete", "approve", "finalize"}},
		{"document:stock_check", "Stock checks", []string{"read", "create", "update", "delete", "approve", "finalize"}},
		{"register:stock", "Stock register", []string{"read"}},
		{"report:stock", "Stock reports", []string{"read"}},
		{"report:notes", "Note journal", []string{"read"}},
	}

	var seeds []permissionSeed
	for _, r := range resources {
		for _, a := range r.actions {
			seeds = append(seeds, permissionSeed{
				code:     r.key + ":" + a,
				name:     r.name + ": " + a,
				resource: r.key,
				action:   a,
			})
		}
	}
	return seeds
}

// roleSeeds maps role codes to the permission codes they carry.
// The admin role needs no permissions: is_admin bypasses checks.
func roleSeeds() map[string][]string {
	manager := make([]string, 0)
	staff := make([]string, 0)
	viewer := make([]string, 0)

	for _, p := range permissionSeeds() {
		manager = append(manager, p.code)
		if p.action == "read" {
			viewer = append(viewer, p.code)
		}
		switch p.action {
		case "read", "create", "update":
			staff = append(staff, p.code)
		}
	}

	return map[string][]string{
		"admin":   nil,
		"manager": manager,
		"staff":   staff,
		"viewer":  viewer,
	}
}

func seedAccessControl(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	permIDs := make(map[string]id.ID)

	for _, p := range permissionSeeds() {
		pid := id.New()
		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO permissions (id, code, name, resource, action)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (code) DO NOTHING
		`, pid, p.code, p.name, p.resource, p.action)
		if err != nil {
			return fmt.Errorf("insert permission %s: %w", p.code, err)
		}
		if commandTag.RowsAffected() == 0 {
			if err := pool.Pool.QueryRow(ctx,
				`SELECT id FROM permissions WHERE code = $1`, p.code,
			).Scan(&pid); err != nil {
				return fmt.Errorf("fetch permission %s: %w", p.code, err)
			}
		}
		permIDs[p.code] = pid
	}

	roleNames := map[string]string{
		"admin":   "Administrator",
		"manager": "Warehouse manager",
		"staff":   "Warehouse staff",
		"viewer":  "Read-only viewer",
	}

	for code, permCodes := range roleSeeds() {
		rid := id.New()
		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO roles (id, code, name, is_system)
			VALUES ($1, $2, $3, true)
			ON CONFLICT (code) DO NOTHING
		`, rid, code, roleNames[code])
		if err != nil {
			return fmt.Errorf("insert role %s: %w", code, err)
		}
		if commandTag.RowsAffected() == 0 {
			if err := pool.Pool.QueryRow(ctx,
				`SELECT id FROM roles WHERE code = $1`, code,
			).Scan(&rid); err != nil {
				return fmt.Errorf("fetch role %s: %w", code, err)
			}
		}

		for _, pc := range permCodes {
			pid, ok := permIDs[pc]
			if !ok {
				continue
			}
			if _, err := pool.Pool.Exec(ctx, `
				INSERT INTO role_permissions (role_id, permission_id)
				VALUES ($1, $2)
				ON CONFLICT (role_id, permission_id) DO NOTHING
			`, rid, pid); err != nil {
				return fmt.Errorf("grant %s to %s: %w", pc, code, err)
			}
		}
	}

	log.Info("roles and permissions seeded")
	return nil
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@stockyard.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	// Check if admin already exists
	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1 AND deleted_at IS NULL`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (id, code, email, password_hash, full_name, is_active, is_admin, version)
		VALUES ($1, 'ADMIN', $2, $3, 'System Administrator', true, true, 1)
	`, userID, adminEmail, string(passwordHash))
	if err != nil {
		return id.Nil(), fmt.Errorf("insert admin user: %w", err)
	}

	// Assign admin role
	var adminRoleID id.ID
	err = pool.Pool.QueryRow(ctx,
		`SELECT id FROM roles WHERE code = 'admin'`,
	).Scan(&adminRoleID)
	if err != nil {
		log.Warnw("admin role not found, skipping role assignment", "error", err)
	} else {
		_, err = pool.Pool.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id, granted_by)
			VALUES ($1, $2, NULL)
			ON CONFLICT (user_id, role_id) DO NOTHING
		`, userID, adminRoleID)
		if err != nil {
			log.Warnw("failed to assign admin role", "error", err)
		}
	}

	log.Infow("admin user created",
		"email", adminEmail,
		"user_id", userID,
	)

	return userID, nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo data...")

	// 1. Categories
	categories := []struct {
		code string
		name string
	}{
		{"CAT-001", "Apparel"},
		{"CAT-002", "Footwear"},
		{"CAT-003", "Accessories"},
	}

	categoryIDs := make(map[string]id.ID)
	for _, c := range categories {
		cid := id.New()
		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_categories (id, code, name, version, deletion_mark)
			VALUES ($1, $2, $3, 1, false)
			ON CONFLICT (code) WHERE NOT deletion_mark DO NOTHING
		`, cid, c.code, c.name)
		if err != nil {
			log.Warnw("failed to seed category", "name", c.name, "error", err)
			continue
		}
		if commandTag.RowsAffected() == 0 {
			if err := pool.Pool.QueryRow(ctx, `
				SELECT id FROM cat_categories WHERE code = $1 AND NOT deletion_mark
			`, c.code).Scan(&cid); err != nil {
				log.Warnw("failed to fetch existing category", "code", c.code, "error", err)
				continue
			}
		}
		categoryIDs[c.code] = cid
	}

	// 2. Product types
	productTypes := []struct {
		code     string
		name     string
		category string
		price    string
	}{
		{"PT-001", "T-Shirt", "CAT-001", "19.90"},
		{"PT-002", "Hoodie", "CAT-001", "49.90"},
		{"PT-003", "Sneakers", "CAT-002", "89.00"},
		{"PT-004", "Canvas Belt", "CAT-003", "14.50"},
	}

	typeIDs := make(map[string]id.ID)
	for _, pt := range productTypes {
		catID, ok := categoryIDs[pt.category]
		if !ok {
			continue
		}
		tid := id.New()
		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_product_types (id, code, name, category_id, price, version, deletion_mark)
			VALUES ($1, $2, $3, $4, $5, 1, false)
			ON CONFLICT (code) WHERE NOT deletion_mark DO NOTHING
		`, tid, pt.code, pt.name, catID, pt.price)
		if err != nil {
			log.Warnw("failed to seed product type", "name", pt.name, "error", err)
			continue
		}
		if commandTag.RowsAffected() == 0 {
			if err := pool.Pool.QueryRow(ctx, `
				SELECT id FROM cat_product_types WHERE code = $1 AND NOT deletion_mark
			`, pt.code).Scan(&tid); err != nil {
				log.Warnw("failed to fetch existing product type", "code", pt.code, "error", err)
				continue
			}
		}
		typeIDs[pt.code] = tid
	}

	// 3. Products
	products := []struct {
		code     string
		name     string
		typeCode string
		size     string
		color    string
	}{
		{"PRD-00001", "T-Shirt Black S", "PT-001", "S", "black"},
		{"PRD-00002", "T-Shirt Black M", "PT-001", "M", "black"},
		{"PRD-00003", "T-Shirt White M", "PT-001", "M", "white"},
		{"PRD-00004", "Hoodie Grey L", "PT-002", "L", "grey"},
		{"PRD-00005", "Sneakers White 42", "PT-003", "42", "white"},
		{"PRD-00006", "Canvas Belt Brown", "PT-004", "one-size", "brown"},
	}

	for _, p := range products {
		typeID, ok := typeIDs[p.typeCode]
		if !ok {
			continue
		}
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_products (id, code, name, product_type_id, size, color, status, version, deletion_mark)
			VALUES ($1, $2, $3, $4, $5, $6, 'active', 1, false)
			ON CONFLICT (code) WHERE NOT deletion_mark DO NOTHING
		`, id.New(), p.code, p.name, typeID, p.size, p.color)
		if err != nil {
			log.Warnw("failed to seed product", "name", p.name, "error", err)
		}
	}

	// 4. Warehouses
	warehouses := []struct {
		code      string
		name      string
		address   string
		wType     string
		isDefault bool
		isSystem  bool
	}{
		{"WH-001", "Main warehouse", "12 Dock Road", "main", true, false},
		{"WH-002", "Retail store", "5 Market Street", "retail", false, false},
		{"WH-003", "Transit", "", "transit", false, false},
		// Technical counterpart location for transfers against external parties.
		{"WH-SYS", "Supplier gateway", "", "transit", false, true},
	}

	for _, w := range warehouses {
		var address any
		if w.address != "" {
			address = w.address
		}
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_warehouses (id, code, name, address, type, is_active, is_default, is_system, version, deletion_mark)
			VALUES ($1, $2, $3, $4, $5, true, $6, $7, 1, false)
			ON CONFLICT (code) WHERE NOT deletion_mark DO NOTHING
		`, id.New(), w.code, w.name, address, w.wType, w.isDefault, w.isSystem)
		if err != nil {
			// A second default trips the partial unique index on re-runs
			// with changed data. Log and keep going.
			log.Warnw("failed to seed warehouse", "name", w.name, "error", err)
		}
	}

	// 5. One finished import so balances and reports return data right away.
	if err := seedDemoImport(ctx, pool, log); err != nil {
		log.Warnw("failed to seed demo import note", "error", err)
	}

	log.Info("demo data seeded successfully")
	return nil
}

// seedDemoImport posts a finished IMPORT exchange note into the main
// warehouse, writing the same rows the posting engine would: completed
// items, receipt movements and the balance upsert. Skipped when any
// exchange note already exists.
func seedDemoImport(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	var exists bool
	if err := pool.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM doc_exchange_notes)`,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check existing notes: %w", err)
	}
	if exists {
		return nil
	}

	var warehouseID id.ID
	if err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM cat_warehouses WHERE code = 'WH-001' AND NOT deletion_mark`,
	).Scan(&warehouseID); err != nil {
		return fmt.Errorf("fetch main warehouse: %w", err)
	}

	items := []struct {
		productCode string
		quantity    int64 // whole units
	}{
		{"PRD-00001", 50},
		{"PRD-00004", 20},
	}

	now := time.Now()

	tx, err := pool.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var seq int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, "EXN_"+now.Format("2006")).Scan(&seq); err != nil {
		return fmt.Errorf("claim note number: %w", err)
	}
	number := fmt.Sprintf("EXN-%s-%05d", now.Format("2006"), seq)

	noteID := id.New()
	if _, err := tx.Exec(ctx, `
		INSERT INTO doc_exchange_notes
			(id, number, date, status, posted, type, destination_warehouse_id,
			 approved_by, created_by, updated_by, version)
		VALUES ($1, $2, $3, 'finished', true, 'IMPORT', $4, 'ADMIN', 'ADMIN', 'ADMIN', 1)
	`, noteID, number, now, warehouseID); err != nil {
		return fmt.Errorf("insert note: %w", err)
	}

	for i, it := range items {
		var productID id.ID
		if err := tx.QueryRow(ctx,
			`SELECT id FROM cat_products WHERE code = $1 AND NOT deletion_mark`,
			it.productCode,
		).Scan(&productID); err != nil {
			return fmt.Errorf("fetch product %s: %w", it.productCode, err)
		}

		var itemSeq int64
		if err := tx.QueryRow(ctx, `
			INSERT INTO sys_sequences (key, current_val)
			VALUES ('NI', 1)
			ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
			RETURNING current_val
		`).Scan(&itemSeq); err != nil {
			return fmt.Errorf("claim item code: %w", err)
		}

		// Quantities are stored as fixed point with 4 decimal places.
		qty := it.quantity * 10_000

		if _, err := tx.Exec(ctx, `
			INSERT INTO doc_exchange_note_items
				(line_id, document_id, line_no, code, product_id, quantity, status)
			VALUES ($1, $2, $3, $4, $5, $6, 'completed')
		`, id.New(), noteID, i+1, fmt.Sprintf("NI-%04d", itemSeq), productID, qty); err != nil {
			return fmt.Errorf("insert note item: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO reg_stock_movements
				(line_id, recorder_id, recorder_type, period, record_type, kind,
				 warehouse_id, product_id, quantity)
			VALUES ($1, $2, 'ExchangeNote', $3, 'receipt', 'IMPORT', $4, $5, $6)
		`, id.New(), noteID, now, warehouseID, productID, qty); err != nil {
			return fmt.Errorf("insert movement: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO reg_stock_balances (warehouse_id, product_id, quantity, last_movement_at, updated_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (warehouse_id, product_id) DO UPDATE
				SET quantity = reg_stock_balances.quantity + EXCLUDED.quantity,
				    last_movement_at = EXCLUDED.last_movement_at,
				    updated_at = now()
		`, warehouseID, productID, qty, now); err != nil {
			return fmt.Errorf("upsert balance: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit demo import: %w", err)
	}

	log.Infow("seeded demo import note", "number", number)
	return nil
}
