package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestServePprof(t *testing.T) {
	mux := http.NewServeMux()
	servePprof(mux, "debug/pprof")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/goroutine", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("goroutine profile: status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "goroutine") {
		t.Error("goroutine profile: unexpected dump body")
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/nosuch", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown profile: status = %d, want 404", rec.Code)
	}
}

func TestServePprofDisabled(t *testing.T) {
	mux := http.NewServeMux()
	servePprof(mux, "")
	servePprof(mux, "-")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/goroutine", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("disabled pprof: status = %d, want 404", rec.Code)
	}
}
