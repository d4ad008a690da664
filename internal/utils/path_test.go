package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{
			name:      "empty path",
			input:     "",
			wantError: true,
		},
		{
			name:      "relative path",
			input:     "./test",
			wantError: false,
		},
		{
			name:      "absolute path",
			input:     "/tmp/test",
			wantError: false,
		},
		{
			name:      "home prefix",
			input:     "~/notes",
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ResolvePath(tt.input)
			if (err != nil) != tt.wantError {
				t.Errorf("ResolvePath(%q) error = %v, wantError %v", tt.input, err, tt.wantError)
			}
			if !tt.wantError && !filepath.IsAbs(result) {
				t.Errorf("ResolvePath(%q) = %q, want absolute path", tt.input, result)
			}
		})
	}
}

func TestEnsureDirAndExists(t *testing.T) {
	tmp := t.TempDir()
	nested := filepath.Join(tmp, "a", "b")

	if DirExists(nested) {
		t.Fatalf("DirExists(%q) = true before creation", nested)
	}
	if err := EnsureDir(nested); err != nil {
		t.Fatalf("EnsureDir(%q) error = %v", nested, err)
	}
	if !DirExists(nested) {
		t.Errorf("DirExists(%q) = false after EnsureDir", nested)
	}
	// Second call is a no-op.
	if err := EnsureDir(nested); err != nil {
		t.Errorf("EnsureDir(%q) second call error = %v", nested, err)
	}
}

func TestEnsureParentAndFileExists(t *testing.T) {
	tmp := t.TempDir()
	file := filepath.Join(tmp, "x", "y", "file.txt")

	if err := EnsureParent(file); err != nil {
		t.Fatalf("EnsureParent(%q) error = %v", file, err)
	}
	if err := os.WriteFile(file, []byte("data"), 0o644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}
	if !FileExists(file) {
		t.Errorf("FileExists(%q) = false for a regular file", file)
	}
	if FileExists(filepath.Dir(file)) {
		t.Errorf("FileExists(%q) = true for a directory", filepath.Dir(file))
	}
}
