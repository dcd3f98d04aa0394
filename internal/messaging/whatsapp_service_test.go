package messaging

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/hadassaviagens/riobot/internal/whatsapp"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

func TestWhatsAppServiceWithMockClient(t *testing.T) {
	svc := NewWhatsAppService(whatsapp.NewMockClient())

	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SendText(context.Background(), "5521999990000@s.whatsapp.net", "oi"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := svc.SendTyping(context.Background(), "5521999990000@s.whatsapp.net", true); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := svc.Stop(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWhatsAppServiceDropsInboundAfterStop(t *testing.T) {
	svc := NewWhatsAppService(whatsapp.NewMockClient())
	if err := svc.Stop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Stop is idempotent.
	if err := svc.Stop(); err != nil {
		t.Fatalf("unexpected error on second stop: %v", err)
	}

	// An event callback still in flight after Stop must drop, not panic.
	text := "oi"
	evt := &events.Message{Message: &waE2E.Message{Conversation: &text}}
	evt.Info.Chat = types.NewJID("5521999990000", "s.whatsapp.net")
	svc.handleIncomingMessage(evt)

	select {
	case msg, ok := <-svc.Messages():
		if ok {
			t.Errorf("message emitted after stop: %+v", msg)
		}
	default:
	}
}

// missingFileSender simulates the client failing to read the image file.
type missingFileSender struct {
	whatsapp.MockClient
}

func (m *missingFileSender) SendImage(ctx context.Context, to string, path string, caption string) error {
	return fmt.Errorf("failed to read image file %s: %w", path, os.ErrNotExist)
}

func TestWhatsAppServiceSendImageToleratesMissingFile(t *testing.T) {
	svc := NewWhatsAppService(&missingFileSender{})

	err := svc.SendImage(context.Background(), "5521999990000@s.whatsapp.net", "./imagens/maceio.jpg", "caption")
	if err != nil {
		t.Errorf("missing image file must not fail the turn, got %v", err)
	}
}
