// Package leads provides the lead store for RioBot.
//
// The store owns ID assignment and the in-process lead sequence, and fans
// each new lead out to the configured durable sinks and the notifier on a
// best-effort basis: a failing sink never blocks or fails the others, and
// never fails the capture itself.
package leads

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hadassaviagens/riobot/internal/models"
)

// DefaultOutcomeBufferSize is the buffer size of the sink-outcome channel.
const DefaultOutcomeBufferSize = 100

// Sink persists a newly captured lead. all is a snapshot of the full lead
// sequence including the new lead, for sinks that rewrite the whole record.
type Sink interface {
	Name() string
	SaveLead(ctx context.Context, lead models.Lead, all []models.Lead) error
}

// Notifier relays a summary of a newly captured lead to a supervisory contact.
type Notifier interface {
	NotifyLead(ctx context.Context, lead models.Lead)
}

// SinkOutcome reports the result of one downstream effect of a capture.
type SinkOutcome struct {
	LeadID int64
	Sink   string
	Err    error
}

// Input holds the caller-supplied fields of a new lead.
type Input struct {
	WhatsApp string
	Name     string
	Type     models.LeadType
	Message  string
}

// Store assigns lead IDs, keeps the in-process sequence and fans out to sinks.
type Store struct {
	mu       sync.Mutex
	nextID   int64
	leads    []models.Lead
	sinks    []Sink
	notifier Notifier
	outcomes chan SinkOutcome
}

// Option defines a configuration option for the lead store.
type Option func(*Store)

// WithSink adds a durable sink to the fan-out.
func WithSink(s Sink) Option {
	return func(st *Store) {
		st.sinks = append(st.sinks, s)
	}
}

// WithNotifier sets the notifier triggered after each capture.
func WithNotifier(n Notifier) Option {
	return func(st *Store) {
		st.notifier = n
	}
}

// NewStore creates a lead store with the given sinks and notifier.
func NewStore(opts ...Option) *Store {
	st := &Store{
		nextID:   1,
		outcomes: make(chan SinkOutcome, DefaultOutcomeBufferSize),
	}
	for _, opt := range opts {
		opt(st)
	}
	slog.Debug("Lead store created", "sinks", len(st.sinks), "notifier_set", st.notifier != nil)
	return st
}

// Record captures a new lead. The ID assignment and in-memory append always
// succeed before any sink is attempted; the returned lead is final even when
// every downstream effect fails.
func (st *Store) Record(ctx context.Context, in Input) models.Lead {
	st.mu.Lock()
	lead := models.Lead{
		ID:        st.nextID,
		WhatsApp:  in.WhatsApp,
		Name:      in.Name,
		Type:      in.Type,
		Message:   in.Message,
		Origin:    models.LeadOrigin,
		Status:    models.LeadStatus,
		Channel:   models.LeadChannel,
		CreatedAt: time.Now().UTC(),
	}
	st.nextID++
	st.leads = append(st.leads, lead)
	snapshot := make([]models.Lead, len(st.leads))
	copy(snapshot, st.leads)
	st.mu.Unlock()

	slog.Info("Lead captured", "id", lead.ID, "whatsapp", lead.WhatsApp, "type", lead.Type)

	var wg sync.WaitGroup
	for _, sink := range st.sinks {
		wg.Add(1)
		go func(s Sink) {
			defer wg.Done()
			err := s.SaveLead(ctx, lead, snapshot)
			if err != nil {
				slog.Error("Lead sink failed", "sink", s.Name(), "error", err, "lead_id", lead.ID)
			} else {
				slog.Debug("Lead sink succeeded", "sink", s.Name(), "lead_id", lead.ID)
			}
			st.emitOutcome(SinkOutcome{LeadID: lead.ID, Sink: s.Name(), Err: err})
		}(sink)
	}
	if st.notifier != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.notifier.NotifyLead(ctx, lead)
		}()
	}
	wg.Wait()

	return lead
}

// Leads returns a snapshot copy of the captured lead sequence.
func (st *Store) Leads() []models.Lead {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]models.Lead, len(st.leads))
	copy(out, st.leads)
	return out
}

// Outcomes returns the side-channel of individual sink outcomes. Emission is
// non-blocking; slow consumers lose outcomes, not captures.
func (st *Store) Outcomes() <-chan SinkOutcome {
	return st.outcomes
}

func (st *Store) emitOutcome(o SinkOutcome) {
	select {
	case st.outcomes <- o:
	default:
		slog.Debug("Lead store outcome channel full, dropping outcome", "sink", o.Sink, "lead_id", o.LeadID)
	}
}
