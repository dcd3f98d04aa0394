package flow

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hadassaviagens/riobot/internal/leads"
	"github.com/hadassaviagens/riobot/internal/messaging"
	"github.com/hadassaviagens/riobot/internal/models"
	"github.com/hadassaviagens/riobot/internal/packages"
)

// Opts holds configuration options for the conversation engine.
type Opts struct {
	ImagePath   string
	TypingDelay time.Duration
}

// Option defines a configuration option for the conversation engine.
type Option func(*Opts)

// WithImagePath sets the destination image sent with the destination list.
func WithImagePath(path string) Option {
	return func(o *Opts) { o.ImagePath = path }
}

// WithTypingDelay enables typing-indicator pacing before replies. Zero
// disables both the indicator and the pause.
func WithTypingDelay(d time.Duration) Option {
	return func(o *Opts) { o.TypingDelay = d }
}

// Engine is the conversation state machine. It exclusively owns session
// state and handles each inbound turn to completion, so turns from the same
// sender are always applied in arrival order.
type Engine struct {
	sessions    SessionStore
	sender      messaging.Service
	leadStore   *leads.Store
	catalog     *packages.Client
	imagePath   string
	typingDelay time.Duration
}

// NewEngine creates a conversation engine over the given collaborators.
func NewEngine(sessions SessionStore, sender messaging.Service, leadStore *leads.Store, catalog *packages.Client, opts ...Option) *Engine {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("Conversation engine created", "image_path", cfg.ImagePath, "typing_delay", cfg.TypingDelay)
	return &Engine{
		sessions:    sessions,
		sender:      sender,
		leadStore:   leadStore,
		catalog:     catalog,
		imagePath:   cfg.ImagePath,
		typingDelay: cfg.TypingDelay,
	}
}

// Run consumes the messaging service's inbound channel until it closes or
// the context is cancelled.
func (e *Engine) Run(ctx context.Context) {
	slog.Info("Conversation engine running")
	for {
		select {
		case msg, ok := <-e.sender.Messages():
			if !ok {
				slog.Info("Conversation engine stopping, message channel closed")
				return
			}
			e.HandleMessage(ctx, msg)
		case <-ctx.Done():
			slog.Info("Conversation engine stopping", "reason", ctx.Err())
			return
		}
	}
}

// HandleMessage dispatches one inbound turn.
func (e *Engine) HandleMessage(ctx context.Context, msg models.IncomingMessage) {
	raw := msg.Text
	text := strings.ToLower(strings.TrimSpace(raw))
	from := msg.From

	slog.Debug("Inbound message", "from", from, "body_length", len(raw))

	// Broadcast origins get no reply and no session.
	if models.IsBroadcastSender(from) {
		slog.Debug("Ignoring broadcast-origin message", "from", from)
		return
	}

	if text == "ping" {
		e.reply(ctx, from, replyPong)
		return
	}

	if models.IsGroupSender(from) {
		e.reply(ctx, from, replyGroupRedirect)
		return
	}

	if !models.IsSupportedSender(from) {
		slog.Info("Ignoring message from unsupported sender shape", "from", from)
		return
	}

	session := e.sessions.Get(from)
	slog.Debug("Current stage", "from", from, "stage", session.Stage)

	// A fresh or reset session always gets the menu, whatever was typed.
	if session.Stage == models.StageIdle {
		e.sessions.SetName(from, msg.PushName)
		e.sendMainMenu(ctx, msg, msg.PushName)
		return
	}

	// Explicit reset escape hatch, available from any stage.
	if text == "menu" || text == "0" || text == "oi" {
		e.sendMainMenu(ctx, msg, session.Name)
		return
	}

	switch session.Stage {
	case models.StageMenu:
		e.handleMenu(ctx, msg, text)
	case models.StageQuote:
		e.handleQuote(ctx, msg, session)
	case models.StagePromotions:
		e.handlePromotion(ctx, msg, session)
	case models.StageQuestions:
		e.handleQuestion(ctx, msg, session)
	case models.StageHandoff:
		e.handleHandoff(ctx, msg, session)
	default:
		// destinos_menu is a dead-end; it and anything unrecognized fall
		// through to the generic re-prompt without a stage change.
		e.reply(ctx, from, replyFallback)
	}
}

// sendMainMenu sends the five-option menu and forces the stage to menu.
func (e *Engine) sendMainMenu(ctx context.Context, msg models.IncomingMessage, name string) {
	e.typing(ctx, msg.Chat)
	e.reply(ctx, msg.From, mainMenuText(name))
	e.sessions.SetStage(msg.From, models.StageMenu)
}

// handleMenu matches the trimmed, lower-cased text's first character against
// the menu options in numeric order.
func (e *Engine) handleMenu(ctx context.Context, msg models.IncomingMessage, text string) {
	from := msg.From
	switch {
	case strings.HasPrefix(text, "1"):
		e.sessions.SetStage(from, models.StageQuote)
		e.typing(ctx, msg.Chat)
		e.reply(ctx, from, replyQuotePrompt)
	case strings.HasPrefix(text, "2"):
		e.sessions.SetStage(from, models.StageDestinations)
		e.typing(ctx, msg.Chat)
		e.reply(ctx, from, replyDestinations)
		e.sendDestinationImage(ctx, from)
	case strings.HasPrefix(text, "3"):
		e.sessions.SetStage(from, models.StagePromotions)
		e.typing(ctx, msg.Chat)
		e.reply(ctx, from, replyPromoPrompt)
	case strings.HasPrefix(text, "4"):
		e.sessions.SetStage(from, models.StageHandoff)
		e.typing(ctx, msg.Chat)
		e.reply(ctx, from, replyHandoffAck)
	case strings.HasPrefix(text, "5"):
		e.sessions.SetStage(from, models.StageQuestions)
		e.typing(ctx, msg.Chat)
		e.reply(ctx, from, replyQuestionsPrompt)
	default:
		e.reply(ctx, from, replyNotUnderstood)
	}
}

// handleQuote captures a quote lead, acknowledges the destination (the text
// before the first comma, trimmed) and appends catalog offers when any exist.
func (e *Engine) handleQuote(ctx context.Context, msg models.IncomingMessage, session models.Session) {
	e.leadStore.Record(ctx, leads.Input{
		WhatsApp: msg.From,
		Name:     session.Name,
		Type:     models.LeadTypeQuote,
		Message:  msg.Text,
	})

	destination := strings.TrimSpace(strings.SplitN(msg.Text, ",", 2)[0])

	e.typing(ctx, msg.Chat)
	e.reply(ctx, msg.From, quoteAckText(destination))

	if offers := e.catalog.Search(ctx, destination); len(offers) > 0 {
		e.reply(ctx, msg.From, offersText(destination, offers))
	}

	e.sessions.SetStage(msg.From, models.StageIdle)
}

// handlePromotion captures a promotion lead and echoes the destination back.
func (e *Engine) handlePromotion(ctx context.Context, msg models.IncomingMessage, session models.Session) {
	e.leadStore.Record(ctx, leads.Input{
		WhatsApp: msg.From,
		Name:     session.Name,
		Type:     models.LeadTypePromotion,
		Message:  msg.Text,
	})

	e.typing(ctx, msg.Chat)
	e.reply(ctx, msg.From, promoAckText(msg.Text))
	e.sessions.SetStage(msg.From, models.StageIdle)
}

// handleQuestion captures a question lead.
func (e *Engine) handleQuestion(ctx context.Context, msg models.IncomingMessage, session models.Session) {
	e.leadStore.Record(ctx, leads.Input{
		WhatsApp: msg.From,
		Name:     session.Name,
		Type:     models.LeadTypeQuestion,
		Message:  msg.Text,
	})

	e.typing(ctx, msg.Chat)
	e.reply(ctx, msg.From, replyQuestionAck)
	e.sessions.SetStage(msg.From, models.StageIdle)
}

// handleHandoff captures a handoff lead and stays in the handoff stage until
// the sender explicitly resets with menu/0/oi.
func (e *Engine) handleHandoff(ctx context.Context, msg models.IncomingMessage, session models.Session) {
	e.leadStore.Record(ctx, leads.Input{
		WhatsApp: msg.From,
		Name:     session.Name,
		Type:     models.LeadTypeHandoff,
		Message:  msg.Text,
	})

	e.reply(ctx, msg.From, replyHandoffContinue)
}

// reply sends a text reply; delivery failures degrade this turn only.
func (e *Engine) reply(ctx context.Context, to string, body string) {
	if err := e.sender.SendText(ctx, to, body); err != nil {
		slog.Error("Failed to send reply", "error", err, "to", to)
	}
}

// sendDestinationImage sends the destination image best-effort.
func (e *Engine) sendDestinationImage(ctx context.Context, to string) {
	if e.imagePath == "" {
		return
	}
	if err := e.sender.SendImage(ctx, to, e.imagePath, replyDestinationImageCaption); err != nil {
		slog.Warn("Failed to send destination image", "error", err, "path", e.imagePath)
	}
}

// typing signals composing state and pauses briefly. Purely cosmetic.
func (e *Engine) typing(ctx context.Context, chat string) {
	if e.typingDelay <= 0 {
		return
	}
	_ = e.sender.SendTyping(ctx, chat, true)
	time.Sleep(e.typingDelay)
	_ = e.sender.SendTyping(ctx, chat, false)
}
