package model

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFetchArtifacts(t *testing.T) {
	source := t.TempDir()
	if err := WriteSampleArtifacts(source); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.FileServer(http.Dir(source)))
	defer srv.Close()

	dir := t.TempDir()
	fetched := FetchArtifacts(srv.URL, dir, 5*time.Second)
	if fetched != len(artifactFiles) {
		t.Fatalf("expected %d fetched files, got %d", len(artifactFiles), fetched)
	}

	reg := Load(dir)
	if !reg.Available() {
		t.Error("fetched artifacts must load")
	}
	if n := reg.LoadedCount(); n != 3 {
		t.Errorf("expected 3 loaded classifiers, got %d", n)
	}
}

func TestFetchArtifacts_PartialSet(t *testing.T) {
	source := t.TempDir()
	if err := WriteSampleArtifacts(source); err != nil {
		t.Fatal(err)
	}
	// Only the primary artifact is published.
	for _, name := range []string{decisionTreeFile, svmFile, svmScalerFile, featureNamesFile} {
		if err := os.Remove(filepath.Join(source, name)); err != nil {
			t.Fatal(err)
		}
	}

	srv := httptest.NewServer(http.FileServer(http.Dir(source)))
	defer srv.Close()

	dir := t.TempDir()
	if fetched := FetchArtifacts(srv.URL, dir, 5*time.Second); fetched != 1 {
		t.Errorf("expected 1 fetched file, got %d", fetched)
	}
	if _, err := os.Stat(filepath.Join(dir, primaryFile)); err != nil {
		t.Errorf("primary artifact not written: %v", err)
	}
}

func TestFetchArtifacts_EmptyBaseURL(t *testing.T) {
	if fetched := FetchArtifacts("", t.TempDir(), time.Second); fetched != 0 {
		t.Errorf("expected no fetches without a base URL, got %d", fetched)
	}
}

func TestFetchArtifacts_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	if fetched := FetchArtifacts(srv.URL, t.TempDir(), time.Second); fetched != 0 {
		t.Errorf("expected no fetches from a dead server, got %d", fetched)
	}
}
