package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		rfc VARCHAR(32),
		address TEXT,
		phone VARCHAR(32),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS quotations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		number VARCHAR(64) NOT NULL,
		client_id UUID NOT NULL REFERENCES clients(id),
		subtotal NUMERIC(18,2) NOT NULL DEFAULT 0,
		tax NUMERIC(18,2) NOT NULL DEFAULT 0,
		discount NUMERIC(18,2) NOT NULL DEFAULT 0,
		total NUMERIC(18,2) NOT NULL DEFAULT 0,
		guarantee_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
		issued_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS quotation_items (
		quotation_id UUID NOT NULL REFERENCES quotations(id) ON DELETE CASCADE,
		position INT NOT NULL,
		item_key VARCHAR(64),
		description TEXT NOT NULL,
		quantity INT NOT NULL DEFAULT 0,
		unit_price NUMERIC(18,2) NOT NULL DEFAULT 0,
		guarantee NUMERIC(18,2) NOT NULL DEFAULT 0,
		PRIMARY KEY (quotation_id, position)
	);`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		number VARCHAR(64) NOT NULL,
		client_id UUID NOT NULL REFERENCES clients(id),
		start_date DATE,
		end_date DATE,
		status VARCHAR(64) NOT NULL DEFAULT 'Activo',
		responsible VARCHAR(255),
		subtotal NUMERIC(18,2) NOT NULL DEFAULT 0,
		tax NUMERIC(18,2) NOT NULL DEFAULT 0,
		discount NUMERIC(18,2) NOT NULL DEFAULT 0,
		total NUMERIC(18,2) NOT NULL DEFAULT 0,
		guarantee_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
		daily_rate NUMERIC(18,2) NOT NULL DEFAULT 0,
		quotation_id UUID REFERENCES quotations(id),
		quotation_guarantee NUMERIC(18,2),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contracts_number ON contracts (number);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_client_id ON contracts (client_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts (status);`,
	`CREATE TABLE IF NOT EXISTS contract_items (
		contract_id UUID NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		position INT NOT NULL,
		item_key VARCHAR(64),
		description TEXT NOT NULL,
		quantity INT NOT NULL DEFAULT 0,
		unit_price NUMERIC(18,2) NOT NULL DEFAULT 0,
		guarantee NUMERIC(18,2) NOT NULL DEFAULT 0,
		line_total NUMERIC(18,2) NOT NULL DEFAULT 0,
		manual_total BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (contract_id, position)
	);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
