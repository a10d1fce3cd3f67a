package validators

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopflow/shopflow-backend/pkg/pagination"
)

func queryRequest(rawQuery string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.URL.RawQuery = rawQuery
	return req
}

func TestParseQueryInt(t *testing.T) {
	if got, err := ParseQueryInt(queryRequest(""), "page", 1, 1, 100); err != nil || got != 1 {
		t.Fatalf("empty value should default, got %d err %v", got, err)
	}
	if got, err := ParseQueryInt(queryRequest("page=7"), "page", 1, 1, 100); err != nil || got != 7 {
		t.Fatalf("expected 7, got %d err %v", got, err)
	}
	if _, err := ParseQueryInt(queryRequest("page=abc"), "page", 1, 1, 100); err == nil {
		t.Fatal("expected error for non-numeric value")
	}
	if _, err := ParseQueryInt(queryRequest("page=500"), "page", 1, 1, 100); err == nil {
		t.Fatal("expected error for out-of-range value")
	}
}

func TestParsePaginationDefaults(t *testing.T) {
	params, err := ParsePagination(queryRequest(""))
	if err != nil {
		t.Fatalf("parse pagination: %v", err)
	}
	if params.Page != 1 || params.Limit != pagination.DefaultLimit {
		t.Fatalf("unexpected defaults %+v", params)
	}
}

func TestParsePaginationRejectsOversizedLimit(t *testing.T) {
	if _, err := ParsePagination(queryRequest("limit=1000")); err == nil {
		t.Fatal("expected oversized limit to be rejected")
	}
}
