// Package packages queries the external travel-package catalog.
//
// The endpoint returns loosely-typed records with several near-duplicate key
// spellings; this package normalizes them into typed offers at the boundary
// and ignores unrecognized shapes.
package packages

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hadassaviagens/riobot/internal/models"
)

// DefaultTimeout bounds one catalog lookup round-trip.
const DefaultTimeout = 10 * time.Second

// Field aliases observed in the catalog spreadsheet exports.
var (
	codeAliases  = []string{"CÓDIGO", "CODIGO", "Código", "Codigo", "codigo"}
	destAliases  = []string{"DESTINO", "Destino", "destino"}
	priceAliases = []string{
		"VALOR", "VALOR PARCELADO", "VALOR Á VISTA", "VALOR A VISTA", "VALOR DO PACOTE",
	}
)

// Opts holds configuration options for the catalog client.
type Opts struct {
	BaseURL string
	Timeout time.Duration
}

// Option defines a configuration option for the catalog client.
type Option func(*Opts)

// WithBaseURL sets the catalog endpoint base URL.
func WithBaseURL(base string) Option {
	return func(o *Opts) { o.BaseURL = base }
}

// WithTimeout overrides the lookup timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// Client queries the package catalog. With no base URL configured every
// search is a synchronous no-op returning no offers.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a catalog client. An empty base URL is allowed and
// disables lookups with a warning.
func NewClient(opts ...Option) *Client {
	cfg := Opts{Timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BaseURL == "" {
		slog.Warn("PACOTES_API_URL not configured, automatic package lookup disabled")
	}
	return &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// Configured reports whether a backing endpoint is set.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// Search returns candidate offers for a destination. Any failure (network,
// non-2xx, malformed body, non-array JSON) yields an empty slice; errors are
// logged, never returned.
func (c *Client) Search(ctx context.Context, destination string) []models.PackageOffer {
	if c.baseURL == "" {
		slog.Debug("Package lookup skipped, no endpoint configured")
		return nil
	}

	lookupURL := fmt.Sprintf("%s?destino=%s", c.baseURL, url.QueryEscape(destination))
	slog.Debug("Querying package catalog", "destination", destination)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		slog.Error("Failed to build package lookup request", "error", err)
		return nil
	}
	resp, err := c.client.Do(req)
	if err != nil {
		slog.Error("Package lookup request failed", "error", err, "destination", destination)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Error("Package lookup returned non-success status", "status", resp.StatusCode, "destination", destination)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("Failed to read package lookup response", "error", err)
		return nil
	}

	var raw []map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		slog.Error("Package lookup returned malformed body, treating as empty", "error", err)
		return nil
	}

	offers := make([]models.PackageOffer, 0, len(raw))
	for _, record := range raw {
		offer := parseOffer(record)
		if offer.Code == "" && offer.Destination == "" && offer.Price == "" {
			continue
		}
		offers = append(offers, offer)
	}
	slog.Info("Package lookup succeeded", "destination", destination, "offers", len(offers))
	return offers
}

// parseOffer normalizes one loosely-keyed catalog record. The first matching
// alias wins; string and numeric values are both accepted.
func parseOffer(record map[string]any) models.PackageOffer {
	return models.PackageOffer{
		Code:        firstAlias(record, codeAliases),
		Destination: firstAlias(record, destAliases),
		Price:       firstAlias(record, priceAliases),
	}
}

func firstAlias(record map[string]any, aliases []string) string {
	for _, key := range aliases {
		if value, ok := record[key]; ok {
			if s := stringify(value); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%.2f", v)
	default:
		return ""
	}
}
