package messaging

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/hadassaviagens/riobot/internal/models"
	"github.com/hadassaviagens/riobot/internal/whatsapp"
	"go.mau.fi/whatsmeow/types/events"
)

// WhatsAppService implements Service using the Whatsmeow-based whatsapp client.
type WhatsAppService struct {
	client   whatsapp.Sender
	waClient *whatsapp.Client // access to the underlying client for event handling
	messages chan models.IncomingMessage
	done     chan struct{}
	mu       sync.RWMutex
	stopped  bool
}

// NewWhatsAppService creates a new WhatsAppService wrapping the given Sender.
func NewWhatsAppService(client whatsapp.Sender) *WhatsAppService {
	service := &WhatsAppService{
		client:   client,
		messages: make(chan models.IncomingMessage, DefaultChannelBufferSize),
		done:     make(chan struct{}),
	}

	// Event handling needs the full client, not just the send interface.
	if waClient, ok := client.(*whatsapp.Client); ok {
		service.waClient = waClient
		slog.Debug("WhatsAppService created with full client for event handling")
	} else {
		slog.Debug("WhatsAppService created with interface client (likely mock)")
	}

	return service
}

// Start begins background event handling.
func (s *WhatsAppService) Start(ctx context.Context) error {
	slog.Debug("WhatsAppService Start invoked")
	if s.waClient != nil {
		go s.handleEvents(ctx)
		slog.Debug("WhatsAppService event handler started")
	} else {
		slog.Debug("WhatsAppService no full client available, skipping event handling (likely mock)")
	}
	return nil
}

// Stop stops background processing. The messages channel closes shortly after
// so an event callback already past the stopped check never sends on a closed
// channel.
func (s *WhatsAppService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	slog.Info("WhatsAppService Stop invoked")
	s.stopped = true
	close(s.done)

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(s.messages)
	}()

	if s.waClient != nil {
		s.waClient.Disconnect()
	}
	slog.Info("WhatsAppService stopped")
	return nil
}

// SendText sends a text message.
func (s *WhatsAppService) SendText(ctx context.Context, to string, body string) error {
	slog.Debug("WhatsAppService SendText invoked", "to", to, "body_length", len(body))
	if err := s.client.SendMessage(ctx, to, body); err != nil {
		slog.Error("WhatsAppService SendText error", "error", err, "to", to)
		return err
	}
	return nil
}

// SendImage sends a local image file with a caption. A missing file is logged
// and swallowed so the conversational turn continues.
func (s *WhatsAppService) SendImage(ctx context.Context, to string, path string, caption string) error {
	err := s.client.SendImage(ctx, to, path, caption)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("WhatsAppService image file not found, skipping attachment", "path", path)
			return nil
		}
		slog.Error("WhatsAppService SendImage error", "error", err, "to", to, "path", path)
		return err
	}
	return nil
}

// SendTyping signals composing state; failures are logged only.
func (s *WhatsAppService) SendTyping(ctx context.Context, chat string, typing bool) error {
	if err := s.client.SendChatPresence(ctx, chat, typing); err != nil {
		slog.Debug("WhatsAppService SendTyping error", "error", err, "chat", chat)
	}
	return nil
}

// Messages returns a channel of inbound message events.
func (s *WhatsAppService) Messages() <-chan models.IncomingMessage {
	return s.messages
}

// handleEvents registers a whatsmeow event handler feeding the messages channel.
func (s *WhatsAppService) handleEvents(ctx context.Context) {
	if s.waClient == nil || s.waClient.GetClient() == nil {
		slog.Error("WhatsAppService handleEvents: no client available")
		return
	}

	s.waClient.GetClient().AddEventHandler(func(evt interface{}) {
		switch v := evt.(type) {
		case *events.Message:
			s.handleIncomingMessage(v)
		case *events.Connected:
			slog.Info("WhatsApp connection ready")
		case *events.Disconnected:
			slog.Warn("WhatsApp client disconnected")
		case *events.LoggedOut:
			slog.Error("WhatsApp session logged out; pairing required")
		default:
			// Receipts, presences and protocol events are irrelevant here.
		}
	})

	slog.Debug("WhatsAppService event handler registered")
	<-ctx.Done()
	slog.Debug("WhatsAppService handleEvents stopping due to context cancellation")
}

// handleIncomingMessage converts an inbound text message into the adapter's
// event shape. The chat JID is kept raw so the conversation engine can
// dispatch on address shape (user, lid, group, broadcast).
func (s *WhatsAppService) handleIncomingMessage(evt *events.Message) {
	if evt.Message == nil || evt.Info.IsFromMe {
		return
	}

	var messageText string
	if evt.Message.Conversation != nil {
		messageText = *evt.Message.Conversation
	} else if evt.Message.ExtendedTextMessage != nil && evt.Message.ExtendedTextMessage.Text != nil {
		messageText = *evt.Message.ExtendedTextMessage.Text
	} else {
		slog.Debug("WhatsAppService ignoring non-text message", "from", evt.Info.Sender.String())
		return
	}

	chat := evt.Info.Chat.String()
	msg := models.IncomingMessage{
		From:      chat,
		Chat:      chat,
		Text:      messageText,
		PushName:  evt.Info.PushName,
		Timestamp: evt.Info.Timestamp,
	}

	slog.Debug("WhatsAppService processing incoming message", "from", msg.From, "body_length", len(msg.Text))
	s.safeEmit(msg)
}

func (s *WhatsAppService) safeEmit(msg models.IncomingMessage) {
	s.mu.RLock()
	stopped := s.stopped
	s.mu.RUnlock()
	if stopped {
		slog.Warn("WhatsAppService dropping inbound message (service stopped)", "from", msg.From)
		return
	}

	select {
	case s.messages <- msg:
		slog.Debug("WhatsAppService incoming message forwarded", "from", msg.From)
	case <-s.done:
		slog.Warn("WhatsAppService dropping inbound message (service stopping)", "from", msg.From)
	case <-time.After(DefaultChannelTimeout):
		slog.Warn("WhatsAppService messages channel blocked, dropping message", "from", msg.From, "timeout", DefaultChannelTimeout)
	}
}
