package pages

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFilePages(t *testing.T) {
	dir := t.TempDir()
	home := filepath.Join(dir, "index.html")
	notFound := filepath.Join(dir, "page_not_found.html")

	if err := os.WriteFile(home, []byte("<h1>home</h1>"), 0644); err != nil {
		t.Fatal(err)
	}

	p := NewFilePages(home, notFound)

	got, err := p.HomePage()
	if err != nil {
		t.Fatalf("HomePage() error: %v", err)
	}
	if got != "<h1>home</h1>" {
		t.Errorf("HomePage() = %q", got)
	}

	if _, err := p.NotFoundPage(); err == nil {
		t.Error("expected an error for a missing page")
	}

	// Pages are read on every call
	if err := os.WriteFile(notFound, []byte("gone"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err = p.NotFoundPage()
	if err != nil || got != "gone" {
		t.Errorf("NotFoundPage() = %q, %v", got, err)
	}
}
