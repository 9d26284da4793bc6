package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestHTTPDownloaderSavesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := NewHTTPDownloader(dir)

	path, err := d.Download(context.Background(), srv.URL+"/forms/w4.pdf")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	if filepath.Base(path) != "w4.pdf" {
		t.Errorf("filename = %q, want w4.pdf", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("file not written: %v", err)
	}
	if string(data) != "%PDF-1.4 fake" {
		t.Errorf("content = %q", data)
	}
}

func TestHTTPDownloaderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	d := NewHTTPDownloader(t.TempDir())
	if _, err := d.Download(context.Background(), srv.URL+"/missing.pdf"); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
