package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrollServer(t *testing.T, pages [][]map[string]any) *httptest.Server {
	t.Helper()
	page := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if page == 0 && !strings.Contains(r.URL.Path, "/records/_search") {
			t.Errorf("initial request hit %s", r.URL.Path)
		}
		var hits []map[string]any
		if page < len(pages) {
			for _, src := range pages[page] {
				hits = append(hits, map[string]any{"_source": src})
			}
		}
		page++
		resp := map[string]any{
			"_scroll_id": fmt.Sprintf("scroll-%d", page),
			"hits":       map[string]any{"hits": hits},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestForEachPaginates(t *testing.T) {
	pages := [][]map[string]any{
		{
			{"id": "a", "title": "First", "author": "X", "publisher": "Uppsala", "first_year": "1900"},
			{"id": "b", "title": "Second", "author": "Y", "publisher": "Lund", "first_year": 1910},
		},
		{
			{"id": "c", "title": []string{"Third", "part"}, "author": "Z", "publisher": "", "first_year": nil},
		},
	}
	srv := scrollServer(t, pages)
	defer srv.Close()

	var got []Record
	total, err := NewClient(srv.URL).ForEach(context.Background(), "test", func(r *Record) error {
		got = append(got, *r)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 records, got %d", total)
	}
	if got[1].Year != "1910" {
		t.Errorf("numeric first_year should stringify, got %q", got[1].Year)
	}
	if got[2].Title != "Third part" {
		t.Errorf("array title should join with spaces, got %q", got[2].Title)
	}
	if got[2].Year != "" {
		t.Errorf("null first_year should be empty, got %q", got[2].Year)
	}
}

func TestCombined(t *testing.T) {
	r := Record{Author: "A", Title: "T", Location: "L", Year: "1990"}
	if got := r.Combined(); got != "A T L 1990" {
		t.Errorf("unexpected combined string: %q", got)
	}
}

func TestForEachError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ForEach(context.Background(), "test", func(r *Record) error { return nil })
	if err == nil {
		t.Fatal("expected error from failing server")
	}
}
