package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	t.Run("creates database in new directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b")
		s, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		defer s.Close()
		if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
			t.Errorf("database file not created: %v", err)
		}
		if s.Path() != filepath.Join(dir, FileName) {
			t.Errorf("unexpected path %s", s.Path())
		}
	})

	t.Run("requires existing database without create", func(t *testing.T) {
		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("Expected error for missing database")
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		dir := t.TempDir()
		s, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.SaveDocument(context.Background(), Document{Path: "a.pdf", Scanned: true}); err != nil {
			t.Fatal(err)
		}
		_ = s.Close()

		s, err = Open(dir, Options{})
		if err != nil {
			t.Fatalf("reopen failed: %v", err)
		}
		defer s.Close()
		docs, err := s.Documents(context.Background())
		if err != nil || len(docs) != 1 {
			t.Errorf("Documents() = %v, %v", docs, err)
		}
	})
}

func TestSaveDocumentAndRecords(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	doc := Document{
		Path:    "scans/invoice.pdf",
		Scanned: true,
		Pages: []Page{
			{Number: 2, Rows: 1, Cols: 2, Records: [][]string{{"c", "d"}}},
			{Number: 1, Rows: 2, Cols: 2, Records: [][]string{{"Name", "Qty"}, {"Widget, \"large\"", "5"}}},
			{Number: 3, Err: "empty image"},
		},
	}
	id, err := s.SaveDocument(ctx, doc)
	if err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("unexpected id %d", id)
	}

	records, err := s.Records(ctx, doc.Path)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	want := [][]string{{"Name", "Qty"}, {"Widget, \"large\"", "5"}, {"c", "d"}}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}

	docs, err := s.Documents(ctx)
	if err != nil {
		t.Fatalf("Documents failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("Expected 1 document, got %d", len(docs))
	}
	got := docs[0]
	if got.ID != id || got.Path != doc.Path || !got.Scanned {
		t.Errorf("unexpected document %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at was not parsed")
	}
	wantPages := []Page{
		{Number: 1, Rows: 2, Cols: 2},
		{Number: 2, Rows: 1, Cols: 2},
		{Number: 3, Err: "empty image"},
	}
	if diff := cmp.Diff(wantPages, got.Pages); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordsLatestRun(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, v := range []string{"old", "new"} {
		_, err := s.SaveDocument(ctx, Document{
			Path:  "a.png",
			Pages: []Page{{Number: 1, Rows: 1, Cols: 1, Records: [][]string{{v}}}},
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	records, err := s.Records(ctx, "a.png")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([][]string{{"new"}}, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}

	docs, err := s.Documents(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || docs[0].ID < docs[1].ID {
		t.Errorf("Expected newest first, got %+v", docs)
	}
}

func TestRecordsNotFound(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.Records(context.Background(), "missing.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	if parseTimestamp("2026-10-19 08:30:00").IsZero() {
		t.Error("SQLite layout not parsed")
	}
	if !parseTimestamp("yesterday").IsZero() {
		t.Error("Expected zero time for unknown layout")
	}
}
