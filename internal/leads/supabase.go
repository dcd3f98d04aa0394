package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hadassaviagens/riobot/internal/models"
)

// DefaultSupabaseTimeout bounds one insert round-trip.
const DefaultSupabaseTimeout = 10 * time.Second

// SupabaseSink inserts one row per lead through the Supabase PostgREST API.
type SupabaseSink struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewSupabaseSink creates a sink for the given project URL and API key.
func NewSupabaseSink(baseURL, apiKey string) (*SupabaseSink, error) {
	if baseURL == "" || apiKey == "" {
		return nil, fmt.Errorf("supabase URL and key must both be set")
	}
	slog.Debug("SupabaseSink created", "url_set", true, "key_set", true)
	return &SupabaseSink{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: DefaultSupabaseTimeout},
	}, nil
}

// Name identifies this sink in logs and outcomes.
func (s *SupabaseSink) Name() string {
	return "leads-supabase"
}

// supabaseRow is the wire shape of one leads-table row.
type supabaseRow struct {
	WhatsApp string `json:"whatsapp"`
	Nome     string `json:"nome"`
	Tipo     string `json:"tipo"`
	Mensagem string `json:"mensagem"`
	Origem   string `json:"origem"`
	Status   string `json:"status"`
	Canal    string `json:"canal"`
	DataCad  string `json:"dataCadastro"`
}

// SaveLead posts the new lead to the leads table; the snapshot is unused.
func (s *SupabaseSink) SaveLead(ctx context.Context, lead models.Lead, all []models.Lead) error {
	row := supabaseRow{
		WhatsApp: lead.WhatsApp,
		Nome:     lead.Name,
		Tipo:     string(lead.Type),
		Mensagem: lead.Message,
		Origem:   lead.Origin,
		Status:   lead.Status,
		Canal:    lead.Channel,
		DataCad:  lead.CreatedAt.Format(time.RFC3339),
	}
	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to marshal lead %d: %w", lead.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/rest/v1/leads", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build supabase request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Prefer", "return=minimal")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("supabase insert failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("supabase insert returned status %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}
