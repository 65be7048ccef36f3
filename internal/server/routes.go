package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/lazypower/hearth/internal/cloud"
	"github.com/lazypower/hearth/internal/keeper"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	k := s.keeper
	snap := k.Soul.Snapshot()
	traits := k.Soul.Traits()
	cs := k.Cloud.CurrentStatus()

	totals, err := k.DB.CareTotals()
	if err != nil {
		log.Printf("server: care totals: %v", err)
	}
	totalsJSON := make([]map[string]any, len(totals))
	for i, ct := range totals {
		totalsJSON[i] = map[string]any{
			"kind":      ct.Kind,
			"count":     ct.Count,
			"intensity": ct.Intensity,
		}
	}
	archived, err := k.DB.CountPendingReview(0)
	if err != nil {
		log.Printf("server: count review: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"e":             snap.E,
		"e_floor":       snap.Floor,
		"e_peak":        snap.Peak,
		"state":         k.Soul.State().String(),
		"expression":    k.Soul.Expression(),
		"agent":         k.AgentName(),
		"interactions":  snap.Interactions,
		"total_care":    snap.TotalCare,
		"days_together": k.Soul.DaysTogether(),
		"chats":         snap.TotalChats,
		"syncs":         snap.TotalSyncs,
		"curiosity":     traits.Curiosity,
		"playfulness":   traits.Playfulness,
		"wisdom":        traits.Wisdom,
		"salience":      k.Soul.MemorySalience(),
		"creativity":    k.Soul.Creativity(),
		"token_scale":   k.Soul.TokenBudgetScale(),
		"cloud": map[string]any{
			"configured":     cs.Configured,
			"connected":      cs.Connected,
			"offline":        k.Cloud.Offline(),
			"token_valid":    cs.TokenValid,
			"billing_ok":     cs.BillingOK,
			"failures":       cs.ConsecutiveFailures,
			"backoff_secs":   cs.Backoff.Seconds(),
			"tools":          cs.ToolsAvailable,
			"messages_used":  cs.MessagesUsed,
			"messages_limit": cs.MessagesLimit,
			"tier":           cs.Tier,
			"motd":           cs.MOTD,
		},
		"queue": map[string]any{
			"pending":  k.Queue.Len(),
			"capacity": k.Queue.Cap(),
			"archived": archived,
		},
		"care_totals": totalsJSON,
	})
}

func (s *Server) handleCare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Kind == "" {
		http.Error(w, `{"error":"kind required"}`, http.StatusBadRequest)
		return
	}

	res, err := s.keeper.Care(req.Kind)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	writeInteraction(w, res)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	res, err := s.keeper.Chat(r.Context(), req.Message)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	writeInteraction(w, res)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := s.keeper.SyncNow(ctx); err != nil {
		code := http.StatusBadGateway
		switch {
		case errors.Is(err, cloud.ErrNotConfigured):
			code = http.StatusPreconditionFailed
		case errors.Is(err, cloud.ErrAuthRevoked):
			code = http.StatusUnauthorized
		}
		http.Error(w, `{"error":"`+err.Error()+`"}`, code)
		return
	}

	snap := s.keeper.Soul.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status": "synced",
		"e":      snap.E,
		"syncs":  snap.TotalSyncs,
		"motd":   s.keeper.Cloud.MOTD(),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.keeper.Reset(); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status": "reset",
		"e":      s.keeper.Soul.E(),
	})
}

func (s *Server) handlePersonas(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"personas": s.keeper.Personas(r.Context()),
		"active":   s.keeper.AgentName(),
	})
}

func (s *Server) handleChoosePersona(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, `{"error":"name required"}`, http.StatusBadRequest)
		return
	}

	if err := s.keeper.ChoosePersona(req.Name); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"active": s.keeper.AgentName(),
	})
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	type entryJSON struct {
		Timestamp string  `json:"timestamp"`
		Input     string  `json:"input"`
		Output    string  `json:"output"`
		E         float64 `json:"e"`
		State     string  `json:"state"`
		Quality   string  `json:"quality"`
	}

	entries := s.keeper.Queue.Entries()
	out := make([]entryJSON, len(entries))
	for i, e := range entries {
		out[i] = entryJSON{
			Timestamp: e.Timestamp.Format(time.RFC3339),
			Input:     e.Input,
			Output:    e.Output,
			E:         e.E,
			State:     e.State,
			Quality:   e.Quality,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"pending":  len(out),
		"capacity": s.keeper.Queue.Cap(),
		"summary":  s.keeper.Queue.Summary(),
		"entries":  out,
	})
}

func (s *Server) handleCareHistory(w http.ResponseWriter, r *http.Request) {
	events, err := s.keeper.DB.RecentCare(queryLimit(r))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	type eventJSON struct {
		ID        int64   `json:"id"`
		Kind      string  `json:"kind"`
		Intensity float64 `json:"intensity"`
		EBefore   float64 `json:"e_before"`
		EAfter    float64 `json:"e_after"`
		State     string  `json:"state"`
		CreatedAt int64   `json:"created_at"`
	}

	out := make([]eventJSON, len(events))
	for i, e := range events {
		out[i] = eventJSON{e.ID, e.Kind, e.Intensity, e.EBefore, e.EAfter, e.State, e.CreatedAt}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count":  len(out),
		"events": out,
	})
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	chats, err := s.keeper.DB.RecentChats(queryLimit(r))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	type chatJSON struct {
		ID         int64   `json:"id"`
		Agent      string  `json:"agent"`
		Message    string  `json:"message"`
		Response   string  `json:"response"`
		E          float64 `json:"e"`
		State      string  `json:"state"`
		Expression string  `json:"expression,omitempty"`
		Offline    bool    `json:"offline"`
		CreatedAt  int64   `json:"created_at"`
	}

	out := make([]chatJSON, len(chats))
	for i, c := range chats {
		out[i] = chatJSON{c.ID, c.Agent, c.Message, c.Response, c.E, c.State, c.Expression, c.Offline, c.CreatedAt}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count": len(out),
		"chats": out,
	})
}

func (s *Server) handleReviewHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.keeper.DB.RecentReview(queryLimit(r))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	type reviewJSON struct {
		ID         int64   `json:"id"`
		HappenedAt int64   `json:"happened_at"`
		Input      string  `json:"input"`
		Output     string  `json:"output"`
		E          float64 `json:"e"`
		State      string  `json:"state"`
		Quality    string  `json:"quality"`
		SyncedAt   int64   `json:"synced_at"`
	}

	out := make([]reviewJSON, len(entries))
	for i, e := range entries {
		out[i] = reviewJSON{e.ID, e.HappenedAt, e.Input, e.Output, e.E, e.State, e.Quality, e.SyncedAt}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count":   len(out),
		"entries": out,
	})
}

// queryLimit parses ?limit=N; zero means the store default.
func queryLimit(r *http.Request) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

func writeInteraction(w http.ResponseWriter, res *keeper.Interaction) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"reply":      res.Reply,
		"expression": res.Expression,
		"agent":      res.Agent,
		"e":          res.E,
		"state":      res.State,
		"offline":    res.Offline,
	})
}
