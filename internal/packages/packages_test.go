package packages

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchUnconfiguredReturnsEmpty(t *testing.T) {
	c := NewClient()
	if c.Configured() {
		t.Error("client without base URL must report unconfigured")
	}
	offers := c.Search(context.Background(), "Gramado")
	if len(offers) != 0 {
		t.Errorf("expected no offers, got %d", len(offers))
	}
}

func TestSearchParsesAliasedFields(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("destino")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"CÓDIGO": "PK-01", "DESTINO": "Gramado", "VALOR": "R$ 2.500"},
			{"Codigo": "PK-02", "Destino": "Gramado", "VALOR PARCELADO": 1890},
			{"irrelevante": "x"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	offers := c.Search(context.Background(), "Gramado Serra Gaúcha")

	if gotQuery != "Gramado Serra Gaúcha" {
		t.Errorf("destination not passed as query parameter: %q", gotQuery)
	}
	if len(offers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(offers))
	}
	if offers[0].Code != "PK-01" || offers[0].Price != "R$ 2.500" {
		t.Errorf("unexpected first offer: %+v", offers[0])
	}
	if offers[1].Code != "PK-02" || offers[1].Price != "1890" {
		t.Errorf("numeric price not normalized: %+v", offers[1])
	}
}

func TestSearchMalformedBodyReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "an array"}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	if offers := c.Search(context.Background(), "Natal"); len(offers) != 0 {
		t.Errorf("expected no offers for malformed body, got %d", len(offers))
	}
}

func TestSearchNonSuccessStatusReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	if offers := c.Search(context.Background(), "Natal"); len(offers) != 0 {
		t.Errorf("expected no offers on server error, got %d", len(offers))
	}
}

func TestSearchNetworkFailureReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately unreachable

	c := NewClient(WithBaseURL(srv.URL))
	if offers := c.Search(context.Background(), "Natal"); len(offers) != 0 {
		t.Errorf("expected no offers on network failure, got %d", len(offers))
	}
}
