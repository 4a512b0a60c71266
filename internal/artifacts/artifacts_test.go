package artifacts

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteOverwrites(t *testing.T) {
	dir := NewDir(filepath.Join(t.TempDir(), "cards"))

	path, err := dir.Write(CardName("FHP20241209ABCDEF12"), []byte("first"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Base(path) != "card_FHP20241209ABCDEF12.pdf" {
		t.Fatalf("unexpected path %s", path)
	}
	if _, err := dir.Write(CardName("FHP20241209ABCDEF12"), []byte("second")); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "second" {
		t.Fatalf("expected last writer to win, got %q", data)
	}
}

func TestWriteStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	dir := NewDir(root)
	path, err := dir.Write("../../etc/passwd", []byte("x"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Dir(path) != root {
		t.Fatalf("expected file inside %s, got %s", root, path)
	}
}

func TestPhotoName(t *testing.T) {
	cases := map[string]string{
		".JPG":     "FHP1_photo.jpg",
		"png":      "FHP1_photo.png",
		"":         "FHP1_photo",
		".p/../ng": "FHP1_photo.ng",
	}
	for ext, want := range cases {
		if got := PhotoName("FHP1", ext); got != want {
			t.Fatalf("PhotoName(%q) = %q, want %q", ext, got, want)
		}
	}
}
