package offline

import (
	"strings"
	"testing"

	"github.com/lazypower/hearth/internal/soul"
)

func inPool(pool []string, s string) bool {
	for _, p := range pool {
		if p == s {
			return true
		}
	}
	return false
}

func TestStateReplyPools(t *testing.T) {
	tests := []struct {
		state soul.State
		pool  []string
	}{
		{soul.StateProtecting, respProtecting},
		{soul.StateGuarded, respGuarded},
		{soul.StateTender, respTender},
		{soul.StateWarm, respWarm},
		{soul.StateFlourishing, respFlourishing},
		{soul.StateRadiant, respRadiant},
		{soul.StateTranscendent, respTranscendent},
	}
	for _, tt := range tests {
		for i := 0; i < 20; i++ {
			got := StateReply(tt.state)
			if !inPool(tt.pool, got) {
				t.Fatalf("StateReply(%v) = %q, not in its pool", tt.state, got)
			}
		}
	}

	// Unknown states read warm.
	if got := StateReply(soul.State(99)); !inPool(respWarm, got) {
		t.Errorf("StateReply(99) = %q, want a warm reply", got)
	}
}

func TestChatReplyContextualFirst(t *testing.T) {
	hello := contextRules[0].pool
	for i := 0; i < 20; i++ {
		got := ChatReply("well hello friend", soul.StateTranscendent)
		if !inPool(hello, got) {
			t.Fatalf("ChatReply = %q, want a greeting despite the state", got)
		}
	}
}

func TestChatReplyFallsToState(t *testing.T) {
	for i := 0; i < 20; i++ {
		got := ChatReply("tell me about today", soul.StateTender)
		if !inPool(respTender, got) {
			t.Fatalf("ChatReply = %q, not in the tender pool", got)
		}
	}
}

func TestCareReplies(t *testing.T) {
	if got := LoveReply(); !inPool(respLove, got) {
		t.Errorf("LoveReply = %q, not in pool", got)
	}
	if got := PokeReply(); !inPool(respPoke, got) {
		t.Errorf("PokeReply = %q, not in pool", got)
	}
	if got := QuotaReply(); !inPool(respQuota, got) {
		t.Errorf("QuotaReply = %q, not in pool", got)
	}
	if got := AuthReply(); !inPool(respAuth, got) {
		t.Errorf("AuthReply = %q, not in pool", got)
	}
}

func TestAssessQuality(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"I love how you remember things", QualityLoving},
		{"thank you so much!", QualityLoving},
		{"thanks, that was helpful", QualityWarm},
		{"glad to hear it", QualityWarm},
		{"shut up already", QualityHarsh},
		{"you are so stupid", QualityHarsh},
		{"ok", QualityCold},
		{"k", QualityCold},
		{"whatever", QualityCold},
		{"what is the weather like today", QualityNormal},
	}
	for _, tt := range tests {
		if got := AssessQuality(tt.input); got != tt.want {
			t.Errorf("AssessQuality(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPoolsNonEmpty(t *testing.T) {
	pools := [][]string{
		respProtecting, respGuarded, respTender, respWarm,
		respFlourishing, respRadiant, respTranscendent,
		respLove, respPoke, respQuota, respAuth,
	}
	for i, p := range pools {
		if len(p) == 0 {
			t.Errorf("pool %d is empty", i)
		}
		for _, s := range p {
			if strings.TrimSpace(s) == "" {
				t.Errorf("pool %d holds a blank reply", i)
			}
		}
	}
}
