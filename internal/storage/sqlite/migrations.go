package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist. Households must be
// created before obligations due to the foreign key constraint.
//
// Money columns are INTEGER minor units (cents) throughout; REAL is
// never used for amounts.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS households (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_by TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS household_members (
    household_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (household_id, user_id),
    FOREIGN KEY (household_id) REFERENCES households(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS obligations (
    id TEXT PRIMARY KEY,
    household_id TEXT NOT NULL,
    description TEXT NOT NULL,
    category TEXT NOT NULL,
    total_cents INTEGER NOT NULL,
    method TEXT NOT NULL,
    fill_remainder INTEGER NOT NULL DEFAULT 0,
    split_json TEXT NOT NULL,
    created_by TEXT NOT NULL,
    version INTEGER NOT NULL DEFAULT 1,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (household_id) REFERENCES households(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS obligation_participants (
    obligation_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (obligation_id, user_id),
    FOREIGN KEY (obligation_id) REFERENCES obligations(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS payments (
    id TEXT PRIMARY KEY,
    obligation_id TEXT NOT NULL,
    paid_by TEXT NOT NULL,
    amount_cents INTEGER NOT NULL,
    method TEXT,
    note TEXT,
    paid_at INTEGER NOT NULL,
    FOREIGN KEY (obligation_id) REFERENCES obligations(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_household_members_household_id ON household_members(household_id);
CREATE INDEX IF NOT EXISTS idx_obligations_household_created ON obligations(household_id, created_at);
CREATE INDEX IF NOT EXISTS idx_obligation_participants_obligation_id ON obligation_participants(obligation_id);
CREATE INDEX IF NOT EXISTS idx_payments_obligation_id ON payments(obligation_id);
CREATE INDEX IF NOT EXISTS idx_payments_obligation_payer ON payments(obligation_id, paid_by);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
