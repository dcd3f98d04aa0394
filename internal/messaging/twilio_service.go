package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/hadassaviagens/riobot/internal/models"
	"github.com/hadassaviagens/riobot/internal/twiliowhatsapp"
)

var phoneNumberRegex = regexp.MustCompile(`[^0-9]`)

// TwilioService implements the Service interface using the Twilio API.
// Inbound messages arrive via webhook; outbound is text-only.
type TwilioService struct {
	client   twiliowhatsapp.Sender
	messages chan models.IncomingMessage
	done     chan struct{}
	mu       sync.RWMutex
	stopped  bool
}

// NewTwilioService creates a new TwilioService wrapping the given Twilio client.
func NewTwilioService(client twiliowhatsapp.Sender) *TwilioService {
	return &TwilioService{
		client:   client,
		messages: make(chan models.IncomingMessage, DefaultChannelBufferSize),
		done:     make(chan struct{}),
	}
}

// Start is a no-op for Twilio; inbound flows through the webhook handler.
func (s *TwilioService) Start(ctx context.Context) error {
	return nil
}

// Stop closes channels and stops the service.
func (s *TwilioService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true
	close(s.done)

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(s.messages)
	}()

	return nil
}

// SendText sends a text message via Twilio.
func (s *TwilioService) SendText(ctx context.Context, to string, body string) error {
	s.mu.RLock()
	if s.stopped {
		s.mu.RUnlock()
		return ErrServiceStopped
	}
	s.mu.RUnlock()

	number, err := jidToE164(to)
	if err != nil {
		slog.Error("TwilioService SendText recipient error", "error", err, "to", to)
		return err
	}
	return s.client.SendMessage(ctx, number, body)
}

// SendImage is unsupported with the Twilio Go SDK for local files; it logs and
// continues so the turn is never aborted.
func (s *TwilioService) SendImage(ctx context.Context, to string, path string, caption string) error {
	slog.Warn("TwilioService SendImage not supported, skipping attachment", "to", to, "path", path)
	return nil
}

// SendTyping is a no-op; the Twilio API has no typing indicator.
func (s *TwilioService) SendTyping(ctx context.Context, chat string, typing bool) error {
	slog.Debug("TwilioService SendTyping ignored (unsupported)", "chat", chat, "typing", typing)
	return nil
}

// Messages returns the channel of inbound messages.
func (s *TwilioService) Messages() <-chan models.IncomingMessage {
	return s.messages
}

// WebhookHandler handles inbound Twilio webhook requests, converting them to
// the adapter's event shape. Twilio senders are always one-to-one chats, so
// the number is normalized to the legacy user JID form the engine accepts.
func (s *TwilioService) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	slog.Info("Twilio webhook received")

	if err := r.ParseForm(); err != nil {
		slog.Error("Failed to parse Twilio webhook form", "error", err)
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	from := r.FormValue("From")
	body := r.FormValue("Body")
	profileName := r.FormValue("ProfileName")
	if from == "" || body == "" {
		slog.Warn("Twilio webhook missing fields", "from_set", from != "", "body_set", body != "")
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	jid := e164ToJID(from)
	msg := models.IncomingMessage{
		From:      jid,
		Chat:      jid,
		Text:      body,
		PushName:  profileName,
		Timestamp: time.Now(),
	}
	s.safeEmit(msg)

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *TwilioService) safeEmit(msg models.IncomingMessage) {
	s.mu.RLock()
	stopped := s.stopped
	s.mu.RUnlock()
	if stopped {
		slog.Warn("TwilioService dropping inbound message (service stopped)", "from", msg.From)
		return
	}

	select {
	case s.messages <- msg:
		slog.Debug("TwilioService emitted inbound message", "from", msg.From)
	case <-time.After(DefaultChannelTimeout):
		slog.Warn("TwilioService messages channel blocked, dropping message", "from", msg.From)
	}
}

// e164ToJID converts a Twilio "whatsapp:+5521..." sender into a user JID.
func e164ToJID(from string) string {
	number := strings.TrimPrefix(from, "whatsapp:")
	number = phoneNumberRegex.ReplaceAllString(number, "")
	return number + "@c.us"
}

// jidToE164 converts a user JID back into an E.164 number for Twilio.
func jidToE164(jid string) (string, error) {
	user, _, found := strings.Cut(jid, "@")
	if !found {
		user = jid
	}
	digits := phoneNumberRegex.ReplaceAllString(user, "")
	if len(digits) < 6 {
		return "", fmt.Errorf("invalid phone number: %q is too short (minimum 6 digits required)", digits)
	}
	return "+" + digits, nil
}
