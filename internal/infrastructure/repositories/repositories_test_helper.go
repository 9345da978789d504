package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createNetworkTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE networks (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		network_type TEXT NOT NULL DEFAULT 'EVM',
		native_currency TEXT NOT NULL,
		gateway_address TEXT NOT NULL,
		finality_seconds INTEGER DEFAULT 0,
		is_active BOOLEAN DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE network_rpcs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		network_id TEXT NOT NULL,
		url TEXT NOT NULL,
		priority INTEGER DEFAULT 0,
		is_active BOOLEAN DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE network_explorers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		network_id TEXT NOT NULL,
		url TEXT NOT NULL,
		created_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE network_aliases (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		network_id TEXT NOT NULL,
		alias TEXT NOT NULL UNIQUE,
		created_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE assets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		network_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		display_name TEXT NOT NULL,
		decimals INTEGER NOT NULL,
		contract_address TEXT NOT NULL,
		price_feed_id TEXT,
		is_stablecoin BOOLEAN DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME,
		UNIQUE(network_id, symbol)
	);`)
}

func createIdentityTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE identities (
		id TEXT PRIMARY KEY,
		handle TEXT NOT NULL UNIQUE,
		display_name TEXT,
		password_hash TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE identity_wallets (
		id TEXT PRIMARY KEY,
		identity_id TEXT NOT NULL,
		network_id TEXT NOT NULL,
		address TEXT NOT NULL,
		is_primary BOOLEAN DEFAULT 0,
		verified_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createPreferenceTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE settlement_preferences (
		identity_id TEXT PRIMARY KEY,
		network_id TEXT NOT NULL,
		asset_symbol TEXT NOT NULL,
		address TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createPaymentRequestTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE payment_requests (
		id TEXT PRIMARY KEY,
		payer_identity_id TEXT NOT NULL,
		payee_identity_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		note TEXT,
		status TEXT NOT NULL,
		override_network_id TEXT,
		override_asset_symbol TEXT,
		override_address TEXT,
		settled_tx_hash TEXT,
		expires_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}
