// Package messaging provides a pluggable message delivery abstraction for RioBot.
//
// Implementations exist for the Whatsmeow-based WhatsApp client and for the
// Twilio WhatsApp API.
package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/hadassaviagens/riobot/internal/models"
)

// Constants for messaging service configuration
const (
	// DefaultChannelBufferSize defines the default buffer size for message channels
	DefaultChannelBufferSize = 100
	// DefaultChannelTimeout defines the default timeout for non-blocking channel operations
	DefaultChannelTimeout = 1 * time.Second
)

// ErrServiceStopped is returned when a send is attempted after Stop.
var ErrServiceStopped = errors.New("messaging service stopped")

// Service defines a pluggable message delivery abstraction.
// It supports sending text, media and typing state, and provides a channel
// of inbound message events.
type Service interface {
	// Start begins any background processing (e.g., event handling).
	Start(ctx context.Context) error

	// Stop stops background processing and cleans up resources.
	Stop() error

	// SendText sends a text message to a recipient JID.
	SendText(ctx context.Context, to string, body string) error

	// SendImage sends a local image file with a caption. Implementations must
	// tolerate a missing file without failing the conversational turn.
	SendImage(ctx context.Context, to string, path string, caption string) error

	// SendTyping signals composing/paused state in a chat. Cosmetic; failures
	// are logged, never surfaced to the conversation.
	SendTyping(ctx context.Context, chat string, typing bool) error

	// Messages returns a channel of inbound message events.
	Messages() <-chan models.IncomingMessage
}
