package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestMigrationFiles_Order(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.up.sql", "001_a.up.sql", "001_a.down.sql", "002_b.down.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	up, err := migrationFiles(dir, ".up.sql", false)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "001_a.up.sql"), filepath.Join(dir, "002_b.up.sql")}
	if !reflect.DeepEqual(up, want) {
		t.Errorf("expected %v, got %v", want, up)
	}

	down, err := migrationFiles(dir, ".down.sql", true)
	if err != nil {
		t.Fatal(err)
	}
	want = []string{filepath.Join(dir, "002_b.down.sql"), filepath.Join(dir, "001_a.down.sql")}
	if !reflect.DeepEqual(down, want) {
		t.Errorf("expected %v, got %v", want, down)
	}
}
