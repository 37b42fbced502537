package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestLoadELFNotELF covers the input-error branch only (spec §4.1/§7):
// hand-constructing a valid ELF64/RV64 binary byte-for-byte is its own
// brittle exercise, so this sticks to the one path that's safe to assert
// without a real linker-produced fixture.
func TestLoadELFNotELF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-an-elf.bin")
	if err := os.WriteFile(path, []byte("this is not an ELF file"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := LoadELF(path)
	if !errors.Is(err, ErrNotELF) {
		t.Fatalf("LoadELF(garbage) = %v, want ErrNotELF", err)
	}
}

func TestLoadELFMissingFile(t *testing.T) {
	_, err := LoadELF(filepath.Join(t.TempDir(), "does-not-exist.elf"))
	if err == nil {
		t.Fatal("LoadELF(missing file) = nil error, want non-nil")
	}
}
