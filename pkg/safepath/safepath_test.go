package safepath

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveStaysInsideRoot(t *testing.T) {
	root := t.TempDir()

	cases := []struct {
		name  string
		input string
	}{
		{"plain name", "video.webm"},
		{"parent traversal", "../../../etc/passwd"},
		{"absolute path", "/etc/passwd"},
		{"nested traversal", "a/../../b/secret.txt"},
		{"windows style", `..\..\boot.ini`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(root, tc.input)
			if err != nil {
				if errors.Is(err, ErrNotContained) {
					return
				}
				t.Fatalf("unexpected error: %v", err)
			}
			rootAbs, _ := filepath.Abs(root)
			if !strings.HasPrefix(got, rootAbs+string(filepath.Separator)) {
				t.Errorf("Resolve(%q) = %q, escapes %q", tc.input, got, rootAbs)
			}
		})
	}
}

func TestResolveTraversalKeepsBasename(t *testing.T) {
	root := t.TempDir()

	// Directory components are stripped, so a traversal attempt degrades to
	// its basename rather than being rejected outright.
	got, err := Resolve(root, "../../../etc/passwd")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if filepath.Base(got) != "passwd" {
		t.Errorf("expected basename passwd, got %q", got)
	}
}

func TestResolveEmptyName(t *testing.T) {
	if _, err := Resolve(t.TempDir(), ""); !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
}

func TestResolveRejectsDotNames(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{".", "..", "/"} {
		if _, err := Resolve(root, name); !errors.Is(err, ErrNotContained) {
			t.Errorf("Resolve(%q): expected ErrNotContained, got %v", name, err)
		}
	}
}

func TestResolveExisting(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "clip.webm"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ResolveExisting(root, "clip.webm", false)
	if err != nil {
		t.Fatalf("resolve existing: %v", err)
	}
	if filepath.Base(got) != "clip.webm" {
		t.Errorf("resolved %q", got)
	}

	if _, err := ResolveExisting(root, "missing.webm", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveExistingSuffixFallback(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "laptop7_clip.webm"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "sub_clip.webm"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ResolveExisting(root, "clip.webm", true)
	if err != nil {
		t.Fatalf("suffix fallback: %v", err)
	}
	if filepath.Base(got) != "laptop7_clip.webm" {
		t.Errorf("resolved %q, want the suffix match (directories skipped)", got)
	}

	// Fallback disabled: same input is a miss.
	if _, err := ResolveExisting(root, "clip.webm", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound without fallback, got %v", err)
	}
}

func TestContentTypeDefaults(t *testing.T) {
	if ct := ContentType("clip.webm"); ct != "video/webm" {
		t.Errorf("webm content type = %q", ct)
	}
	if ct := ContentType("mystery.bin"); ct != "application/octet-stream" {
		t.Errorf("unknown extension should default to octet-stream, got %q", ct)
	}
}
