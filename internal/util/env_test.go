package util

import (
	"testing"
	"time"
)

func TestParseBoolEnv(t *testing.T) {
	cases := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"", false, false},
		{"true", false, true},
		{"YES", false, true},
		{"0", true, false},
		{"off", true, false},
		{"garbage", true, true},
	}
	for _, c := range cases {
		t.Setenv("RIOBOT_TEST_BOOL", c.value)
		if got := ParseBoolEnv("RIOBOT_TEST_BOOL", c.def); got != c.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", c.value, c.def, got, c.want)
		}
	}
}

func TestParseDurationEnv(t *testing.T) {
	cases := []struct {
		value string
		def   time.Duration
		want  time.Duration
	}{
		{"", time.Second, time.Second},
		{"800ms", time.Second, 800 * time.Millisecond},
		{"2s", 0, 2 * time.Second},
		{"nonsense", 3 * time.Second, 3 * time.Second},
	}
	for _, c := range cases {
		t.Setenv("RIOBOT_TEST_DURATION", c.value)
		if got := ParseDurationEnv("RIOBOT_TEST_DURATION", c.def); got != c.want {
			t.Errorf("ParseDurationEnv(%q, %v) = %v, want %v", c.value, c.def, got, c.want)
		}
	}
}
