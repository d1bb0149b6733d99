package database

import (
	"testing"
)

func TestDialectorFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		driver  string
		want    string
		wantErr bool
	}{
		{driver: "postgres", want: "postgres"},
		{driver: "pgsql", want: "postgres"},
		{driver: "MariaDB", want: "mysql"},
		{driver: "mysqli", want: "mysql"},
		{driver: "sqlite", want: "sqlite"},
		{driver: "sqlsrv", wantErr: true},
	}

	for _, tt := range tests {
		dialector, err := dialectorFor(tt.driver, "dsn")
		if tt.wantErr {
			if err == nil {
				t.Fatalf("dialectorFor(%q) expected error", tt.driver)
			}
			continue
		}
		if err != nil {
			t.Fatalf("dialectorFor(%q) unexpected error = %v", tt.driver, err)
		}
		if got := dialector.Name(); got != tt.want {
			t.Fatalf("dialectorFor(%q).Name() = %q, want %q", tt.driver, got, tt.want)
		}
	}
}

func TestDialectorForEmptyDSN(t *testing.T) {
	t.Parallel()

	if _, err := dialectorFor("postgres", "  "); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}

func TestOpenSQLiteAppliesPrefix(t *testing.T) {
	t.Parallel()

	db, err := Open(DriverSQLite, "file:open_prefix?mode=memory&cache=shared", "lms_")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB() error = %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if got := db.NamingStrategy.TableName("user"); got != "lms_user" {
		t.Fatalf("TableName(user) = %q, want lms_user", got)
	}
	if got := db.NamingStrategy.TableName("config_plugins"); got != "lms_config_plugins" {
		t.Fatalf("TableName(config_plugins) = %q, want lms_config_plugins", got)
	}
}
