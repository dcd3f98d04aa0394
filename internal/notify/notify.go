// Package notify relays new-lead notifications to the agency owner.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hadassaviagens/riobot/internal/models"
)

// TextSender is the slice of the messaging service the notifier needs.
type TextSender interface {
	SendText(ctx context.Context, to string, body string) error
}

// OwnerNotifier sends a formatted lead summary to one configured recipient.
// With no recipient configured it degrades to a logged no-op.
type OwnerNotifier struct {
	sender    TextSender
	recipient string
}

// NewOwnerNotifier creates a notifier for the given recipient JID. An empty
// recipient is allowed and disables notifications with a warning.
func NewOwnerNotifier(sender TextSender, recipient string) *OwnerNotifier {
	if recipient == "" {
		slog.Warn("OWNER_NUMBER not configured, lead notifications disabled")
	}
	return &OwnerNotifier{sender: sender, recipient: recipient}
}

// NotifyLead formats and sends the lead summary. Failures are logged only.
func (n *OwnerNotifier) NotifyLead(ctx context.Context, lead models.Lead) {
	if n.recipient == "" {
		slog.Info("No notification recipient configured, skipping lead notification", "lead_id", lead.ID)
		return
	}

	if err := n.sender.SendText(ctx, n.recipient, FormatLead(lead)); err != nil {
		slog.Error("Failed to send lead notification", "error", err, "lead_id", lead.ID, "recipient", n.recipient)
		return
	}
	slog.Info("Lead notification sent", "lead_id", lead.ID, "recipient", n.recipient)
}

// FormatLead renders the fixed notification template.
func FormatLead(lead models.Lead) string {
	var b strings.Builder
	b.WriteString("🔔 *NOVO ATENDIMENTO HADASSA RIO*\n\n")
	fmt.Fprintf(&b, "📱 WhatsApp: %s\n", lead.WhatsApp)
	if lead.Name != "" {
		fmt.Fprintf(&b, "🙋 Nome: %s\n", lead.Name)
	}
	fmt.Fprintf(&b, "🧾 Tipo: %s\n", lead.Type)
	fmt.Fprintf(&b, "💬 Mensagem: %s\n", lead.Message)
	fmt.Fprintf(&b, "📅 Data: %s\n", lead.CreatedAt.Format(time.RFC3339))
	return b.String()
}
