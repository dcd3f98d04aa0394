package leads

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hadassaviagens/riobot/internal/models"
	_ "github.com/lib/pq"
)

// PostgresSink inserts one row per lead into the remote leads table. The
// table is owned by the downstream CRM; no migration is run here.
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink opens and pings a Postgres connection with the given DSN.
func NewPostgresSink(dsn string) (*PostgresSink, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres lead sink DSN not set")
	}

	slog.Debug("Opening Postgres lead sink connection")
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres lead sink", "error", err)
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		slog.Error("Postgres lead sink ping failed", "error", err)
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	slog.Info("Postgres lead sink connected")
	return &PostgresSink{db: db}, nil
}

// Name identifies this sink in logs and outcomes.
func (p *PostgresSink) Name() string {
	return "leads-postgres"
}

// SaveLead inserts the new lead; the full snapshot is unused here.
func (p *PostgresSink) SaveLead(ctx context.Context, lead models.Lead, all []models.Lead) error {
	query := `INSERT INTO leads (whatsapp, nome, tipo, mensagem, origem, status, canal, "dataCadastro")
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := p.db.ExecContext(ctx, query,
		lead.WhatsApp, lead.Name, string(lead.Type), lead.Message,
		lead.Origin, lead.Status, lead.Channel, lead.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert lead %d: %w", lead.ID, err)
	}
	return nil
}

// Close closes the database connection.
func (p *PostgresSink) Close() error {
	slog.Debug("Closing Postgres lead sink connection")
	return p.db.Close()
}
