//go:build integration

package schema

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"

	"sqlfixtables/internal/dialect"
)

// Run with MYSQL_TEST_DSN=user:pass@tcp(localhost:3306)/test go test -tags integration
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN not set, skipping")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.PingContext(context.Background()); err != nil {
		t.Skipf("MySQL not reachable: %v", err)
	}
	return db
}

func TestIntrospectorAgainstMySQL(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS sqlfix_probe"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE sqlfix_probe (
		id integer AUTO_INCREMENT PRIMARY KEY,
		code varchar(20) NOT NULL UNIQUE,
		note longtext NULL,
		active bool NOT NULL
	)`); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.ExecContext(context.Background(), "DROP TABLE IF EXISTS sqlfix_probe") })

	in := NewIntrospector(db, &dialect.MysqlDialect{})

	tables, err := in.TableNames(ctx)
	if err != nil {
		t.Fatalf("listing tables: %v", err)
	}
	if !tables["sqlfix_probe"] {
		t.Error("expected sqlfix_probe in table list")
	}

	cols, err := in.DescribeTable(ctx, "sqlfix_probe")
	if err != nil {
		t.Fatalf("describing: %v", err)
	}
	if len(cols) != 4 {
		t.Fatalf("expected 4 columns, got %d", len(cols))
	}
	if cols[0].Name != "id" || cols[0].Key != KeyPrimary || cols[0].Extra != "auto_increment" {
		t.Errorf("unexpected id column %+v", cols[0])
	}
	if cols[1].Key != KeyUnique || cols[1].Nullable {
		t.Errorf("unexpected code column %+v", cols[1])
	}
	if !cols[2].Nullable {
		t.Errorf("expected note to be nullable")
	}
	if cols[3].RawType != "tinyint(1)" {
		t.Errorf("expected bool to be reported as tinyint(1), got %s", cols[3].RawType)
	}

	_, err = in.DescribeTable(ctx, "sqlfix_absent")
	if !errors.Is(err, ErrTableNotFound) {
		t.Errorf("expected ErrTableNotFound, got %v", err)
	}
}
