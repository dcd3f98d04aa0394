package models

import "testing"

func TestSenderClassification(t *testing.T) {
	cases := []struct {
		jid       string
		broadcast bool
		group     bool
		supported bool
	}{
		{"status@broadcast", true, false, false},
		{"5521999990000-1630000000@g.us", false, true, false},
		{"5521999990000@s.whatsapp.net", false, false, true},
		{"5521999990000@c.us", false, false, true},
		{"123456789@lid", false, false, true},
		{"5521999990000@newsletter", false, false, false},
	}
	for _, c := range cases {
		if got := IsBroadcastSender(c.jid); got != c.broadcast {
			t.Errorf("IsBroadcastSender(%q) = %v, want %v", c.jid, got, c.broadcast)
		}
		if got := IsGroupSender(c.jid); got != c.group {
			t.Errorf("IsGroupSender(%q) = %v, want %v", c.jid, got, c.group)
		}
		if got := IsSupportedSender(c.jid); got != c.supported {
			t.Errorf("IsSupportedSender(%q) = %v, want %v", c.jid, got, c.supported)
		}
	}
}

func TestFirstName(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"", ""},
		{"Maria", "Maria"},
		{"Maria da Silva", "Maria"},
		{"  João\tPedro ", "João"},
	}
	for _, c := range cases {
		if got := FirstName(c.name); got != c.want {
			t.Errorf("FirstName(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}
