package migrations

import (
	"context"
	"io/fs"
	"testing"
)

func TestFilesystems_ExposesBothDialects(t *testing.T) {
	filesystems, err := Filesystems()
	if err != nil {
		t.Fatalf("resolve filesystems: %v", err)
	}
	if len(filesystems) != 2 {
		t.Fatalf("expected postgres and sqlite specs, got %d", len(filesystems))
	}
	for _, spec := range filesystems {
		matches, err := fs.Glob(spec.FS, "*.up.sql")
		if err != nil {
			t.Fatalf("glob %s: %v", spec.Dialect, err)
		}
		if len(matches) == 0 {
			t.Fatalf("expected %s migrations, found none", spec.Dialect)
		}
	}
}

func TestRegister_FiltersByDialect(t *testing.T) {
	var seen []string
	err := Register(context.Background(), DialectSQLite, func(_ context.Context, dialect string, _ string, _ fs.FS) error {
		seen = append(seen, dialect)
		return nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(seen) != 1 || seen[0] != DialectSQLite {
		t.Fatalf("expected exactly one sqlite registration, got %v", seen)
	}
}

func TestRegister_RejectsUnknownDialect(t *testing.T) {
	err := Register(context.Background(), "oracle", func(context.Context, string, string, fs.FS) error {
		return nil
	})
	if err == nil {
		t.Fatalf("expected unsupported dialect to fail")
	}
}
