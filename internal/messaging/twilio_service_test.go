package messaging

import (
	"context"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hadassaviagens/riobot/internal/twiliowhatsapp"
)

func TestTwilioWebhookEmitsMessage(t *testing.T) {
	svc := NewTwilioService(twiliowhatsapp.NewMockClient())

	form := url.Values{}
	form.Set("From", "whatsapp:+5521999990000")
	form.Set("Body", "oi")
	form.Set("ProfileName", "Maria Silva")

	req := httptest.NewRequest("POST", "/twilio/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	svc.WebhookHandler(rec, req)
	if rec.Code != 200 {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	select {
	case msg := <-svc.Messages():
		if msg.From != "5521999990000@c.us" {
			t.Errorf("unexpected From: %q", msg.From)
		}
		if msg.Text != "oi" || msg.PushName != "Maria Silva" {
			t.Errorf("unexpected message: %+v", msg)
		}
	default:
		t.Fatal("no message emitted")
	}
}

func TestTwilioWebhookMissingFields(t *testing.T) {
	svc := NewTwilioService(twiliowhatsapp.NewMockClient())

	req := httptest.NewRequest("POST", "/twilio/webhook", strings.NewReader("From=whatsapp%3A%2B5521999990000"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	svc.WebhookHandler(rec, req)
	if rec.Code != 400 {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestTwilioSendTextConvertsJID(t *testing.T) {
	mock := twiliowhatsapp.NewMockClient()
	svc := NewTwilioService(mock)

	if err := svc.SendText(context.Background(), "5521999990000@c.us", "pong"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mock.SentMessages) != 1 || mock.SentMessages[0].To != "+5521999990000" {
		t.Errorf("unexpected sent messages: %+v", mock.SentMessages)
	}
}

func TestTwilioSendAfterStop(t *testing.T) {
	svc := NewTwilioService(twiliowhatsapp.NewMockClient())
	if err := svc.Stop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SendText(context.Background(), "5521999990000@c.us", "oi"); err != ErrServiceStopped {
		t.Errorf("expected ErrServiceStopped, got %v", err)
	}
}
