package sqlstore

import "strings"

var tables = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		seq {{serial}},
		id TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL,
		owner_kind TEXT NOT NULL,
		owner_id TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS companies (
		seq {{serial}},
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		means_account TEXT NOT NULL,
		resources_account TEXT NOT NULL,
		labour_account TEXT NOT NULL,
		product_account TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS members (
		seq {{serial}},
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		account TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS social_accounting (
		singleton INTEGER NOT NULL PRIMARY KEY,
		id TEXT NOT NULL,
		account TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		seq {{serial}},
		id TEXT NOT NULL UNIQUE,
		date TEXT NOT NULL,
		sending_account TEXT NOT NULL,
		receiving_account TEXT NOT NULL,
		amount_sent TEXT NOT NULL,
		amount_received TEXT NOT NULL,
		purpose TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_sending ON transactions (sending_account)`,
	`CREATE INDEX IF NOT EXISTS transactions_receiving ON transactions (receiving_account)`,
	`CREATE TABLE IF NOT EXISTS plans (
		seq {{serial}},
		id TEXT NOT NULL UNIQUE,
		creation_date TEXT NOT NULL,
		planner TEXT NOT NULL,
		costs_labour TEXT NOT NULL,
		costs_resources TEXT NOT NULL,
		costs_means TEXT NOT NULL,
		product_name TEXT NOT NULL,
		product_unit TEXT NOT NULL,
		product_amount INTEGER NOT NULL,
		description TEXT NOT NULL,
		timeframe INTEGER NOT NULL,
		is_public_service INTEGER NOT NULL,
		approved INTEGER NOT NULL,
		approval_date TEXT,
		approval_reason TEXT NOT NULL,
		is_active INTEGER NOT NULL,
		activation_date TEXT,
		expired INTEGER NOT NULL,
		expiration_relative INTEGER,
		expiration_date TEXT,
		active_days INTEGER NOT NULL,
		payout_count INTEGER NOT NULL,
		is_available INTEGER NOT NULL,
		cooperation TEXT,
		requested_cooperation TEXT,
		hidden INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS plans_planner ON plans (planner)`,
	`CREATE TABLE IF NOT EXISTS cooperations (
		seq {{serial}},
		id TEXT NOT NULL UNIQUE,
		creation_date TEXT NOT NULL,
		name TEXT NOT NULL,
		definition TEXT NOT NULL,
		coordinator TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS worker_invites (
		seq {{serial}},
		id TEXT NOT NULL UNIQUE,
		creation_date TEXT NOT NULL,
		company TEXT NOT NULL,
		member TEXT NOT NULL,
		UNIQUE (company, member)
	)`,
	`CREATE TABLE IF NOT EXISTS company_workers (
		seq {{serial}},
		company TEXT NOT NULL,
		member TEXT NOT NULL,
		UNIQUE (company, member)
	)`,
	`CREATE TABLE IF NOT EXISTS purchases (
		seq {{serial}},
		id TEXT NOT NULL UNIQUE,
		purchase_date TEXT NOT NULL,
		plan TEXT NOT NULL,
		buyer TEXT NOT NULL,
		price_per_unit TEXT NOT NULL,
		amount INTEGER NOT NULL,
		purpose TEXT NOT NULL,
		transaction_id TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS purchases_buyer ON purchases (buyer)`,
}

// schema returns the CREATE statements for a dialect.
func schema(d Dialect) []string {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if d == Postgres {
		serial = "BIGSERIAL PRIMARY KEY"
	}
	out := make([]string, len(tables))
	for i, t := range tables {
		out[i] = strings.ReplaceAll(t, "{{serial}}", serial)
	}
	return out
}
