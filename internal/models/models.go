// Package models defines core data types for RioBot.
//
// It contains the lead record, the per-sender conversation session, the
// messaging adapter's event shape, and the normalized package offer.
package models

import (
	"strings"
	"time"
)

// LeadType identifies which conversation intent produced a lead.
type LeadType string

// Lead types, matching the values stored in the leads table.
const (
	LeadTypeQuote     LeadType = "orcamento"
	LeadTypePromotion LeadType = "promocao"
	LeadTypeQuestion  LeadType = "duvida"
	LeadTypeHandoff   LeadType = "atendimento"
)

// Constant lead fields for this business unit.
const (
	LeadOrigin  = "Hadassa Viagens – Unidade Rio"
	LeadStatus  = "novo"
	LeadChannel = "whatsapp"
)

// Lead is one captured customer interaction, immutable once created.
type Lead struct {
	ID        int64     `json:"id"`
	WhatsApp  string    `json:"whatsapp"`
	Name      string    `json:"nome"`
	Type      LeadType  `json:"tipo"`
	Message   string    `json:"mensagem"`
	Origin    string    `json:"origem"`
	Status    string    `json:"status"`
	Channel   string    `json:"canal"`
	CreatedAt time.Time `json:"dataCadastro"`
}

// Stage is the conversation's current position in the menu state machine,
// scoped per sender.
type Stage string

// Conversation stages.
const (
	StageIdle         Stage = "idle"
	StageMenu         Stage = "menu_principal"
	StageQuote        Stage = "orcamento_aguardando_dados"
	StageDestinations Stage = "destinos_menu"
	StagePromotions   Stage = "promocoes_aguardando_destino"
	StageHandoff      Stage = "atendente"
	StageQuestions    Stage = "duvidas"
)

// Session holds per-sender conversation state. Created lazily on first
// contact and retained for the process lifetime.
type Session struct {
	Stage Stage
	Name  string
}

// IncomingMessage is one inbound message event from the messaging adapter.
// From keeps the raw JID string so the engine can dispatch on address shape.
type IncomingMessage struct {
	From      string
	Chat      string
	Text      string
	PushName  string
	Timestamp time.Time
}

// PackageOffer is a normalized travel package returned by the catalog
// endpoint. All fields are optional; Price keeps the endpoint's formatting.
type PackageOffer struct {
	Code        string
	Destination string
	Price       string
}

// JID suffixes for the address shapes the bot distinguishes.
const (
	suffixUser      = "@s.whatsapp.net"
	suffixUserLocal = "@c.us"
	suffixLID       = "@lid"
	suffixGroup     = "@g.us"
	suffixBroadcast = "@broadcast"
)

// IsBroadcastSender reports whether the JID belongs to a broadcast origin
// (status updates and broadcast lists).
func IsBroadcastSender(jid string) bool {
	return strings.HasSuffix(jid, suffixBroadcast)
}

// IsGroupSender reports whether the JID belongs to a group chat.
func IsGroupSender(jid string) bool {
	return strings.HasSuffix(jid, suffixGroup)
}

// IsSupportedSender reports whether the JID is one of the one-to-one address
// shapes the bot serves. Both the server-form and legacy user suffixes are
// accepted, plus hidden-identity (lid) addresses.
func IsSupportedSender(jid string) bool {
	return strings.HasSuffix(jid, suffixUser) ||
		strings.HasSuffix(jid, suffixUserLocal) ||
		strings.HasSuffix(jid, suffixLID)
}

// FirstName returns the first whitespace-separated token of a display name,
// or empty when no name is known.
func FirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
