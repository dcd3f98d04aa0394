package leads

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hadassaviagens/riobot/internal/models"
)

func TestSupabaseSinkInsertsRow(t *testing.T) {
	var gotPath, gotKey string
	var gotRow map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("apikey")
		if err := json.NewDecoder(r.Body).Decode(&gotRow); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	sink, err := NewSupabaseSink(srv.URL, "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lead := models.Lead{
		ID: 7, WhatsApp: "5521999990000@c.us", Name: "Maria",
		Type: models.LeadTypePromotion, Message: "Cancún",
		Origin: models.LeadOrigin, Status: models.LeadStatus,
		Channel: models.LeadChannel, CreatedAt: time.Now().UTC(),
	}
	if err := sink.SaveLead(context.Background(), lead, []models.Lead{lead}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/rest/v1/leads" {
		t.Errorf("unexpected path: %q", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("apikey header not set")
	}
	if gotRow["tipo"] != "promocao" || gotRow["status"] != "novo" || gotRow["canal"] != "whatsapp" {
		t.Errorf("unexpected row: %+v", gotRow)
	}
}

func TestSupabaseSinkNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "permission denied", http.StatusUnauthorized)
	}))
	defer srv.Close()

	sink, err := NewSupabaseSink(srv.URL, "wrong")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sink.SaveLead(context.Background(), models.Lead{ID: 1}, nil); err == nil {
		t.Error("expected error on non-2xx status")
	}
}

func TestSupabaseSinkRequiresConfig(t *testing.T) {
	if _, err := NewSupabaseSink("", "key"); err == nil {
		t.Error("expected error with empty URL")
	}
	if _, err := NewSupabaseSink("https://example.supabase.co", ""); err == nil {
		t.Error("expected error with empty key")
	}
}
