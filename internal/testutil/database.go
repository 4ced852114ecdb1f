package testutil

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the MySQL test database. It expects a database named
// sobgamecoin_test on localhost:3306 unless TEST_MYSQL_DSN is set, and skips
// the test when the server is unreachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		dsn = "root:@tcp(localhost:3306)/sobgamecoin_test?parseTime=true"
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.Ping()
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties the kv table and closes db.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	if _, err := db.Exec("DELETE FROM kv_entries"); err != nil {
		t.Logf("failed to clean table kv_entries: %v", err)
	}

	db.Close()
}

// SetupTestTables creates the kv table used by every repository.
func SetupTestTables(t *testing.T, db *sql.DB) {
	createKVTable := `
	CREATE TABLE IF NOT EXISTS kv_entries (
		k VARBINARY(191) NOT NULL PRIMARY KEY,
		v LONGBLOB NOT NULL,
		version BIGINT NOT NULL,
		updatedAt DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6)
	)`

	if _, err := db.Exec(createKVTable); err != nil {
		t.Logf("failed to create table kv_entries: %v", err)
	}
}
