package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hadassaviagens/riobot/internal/models"
)

type mockSender struct {
	sent []string
	to   []string
	err  error
}

func (m *mockSender) SendText(ctx context.Context, to string, body string) error {
	if m.err != nil {
		return m.err
	}
	m.to = append(m.to, to)
	m.sent = append(m.sent, body)
	return nil
}

func sampleLead() models.Lead {
	return models.Lead{
		ID:        3,
		WhatsApp:  "5521999990000@c.us",
		Name:      "Maria Silva",
		Type:      models.LeadTypeQuote,
		Message:   "Gramado, maio de 2025",
		CreatedAt: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNotifyLeadSendsTemplate(t *testing.T) {
	sender := &mockSender{}
	n := NewOwnerNotifier(sender, "5521966758401@c.us")

	n.NotifyLead(context.Background(), sampleLead())

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.sent))
	}
	if sender.to[0] != "5521966758401@c.us" {
		t.Errorf("unexpected recipient: %q", sender.to[0])
	}
	body := sender.sent[0]
	for _, want := range []string{"NOVO ATENDIMENTO", "5521999990000@c.us", "Maria Silva", "orcamento", "Gramado, maio de 2025", "2025-05-01"} {
		if !strings.Contains(body, want) {
			t.Errorf("notification missing %q:\n%s", want, body)
		}
	}
}

func TestNotifyLeadOmitsEmptyName(t *testing.T) {
	sender := &mockSender{}
	n := NewOwnerNotifier(sender, "owner@c.us")

	lead := sampleLead()
	lead.Name = ""
	n.NotifyLead(context.Background(), lead)

	if strings.Contains(sender.sent[0], "Nome:") {
		t.Errorf("empty name must be omitted:\n%s", sender.sent[0])
	}
}

func TestNotifyLeadNoRecipient(t *testing.T) {
	sender := &mockSender{}
	n := NewOwnerNotifier(sender, "")

	n.NotifyLead(context.Background(), sampleLead())
	if len(sender.sent) != 0 {
		t.Error("no message should be sent without a recipient")
	}
}

func TestNotifyLeadSendFailureIsSwallowed(t *testing.T) {
	sender := &mockSender{err: errors.New("network down")}
	n := NewOwnerNotifier(sender, "owner@c.us")

	// Must not panic or propagate.
	n.NotifyLead(context.Background(), sampleLead())
}
