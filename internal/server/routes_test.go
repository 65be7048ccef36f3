package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStatusShape(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("GET", "/api/status", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["e"].(float64) != 1.0 {
		t.Errorf("newborn e = %v, want 1.0", resp["e"])
	}
	if resp["state"] != "GUARDED" {
		t.Errorf("state = %v, want GUARDED", resp["state"])
	}
	cloudPart, ok := resp["cloud"].(map[string]any)
	if !ok {
		t.Fatal("no cloud section")
	}
	if cloudPart["configured"] != false {
		t.Errorf("cloud.configured = %v, want false", cloudPart["configured"])
	}
	if _, ok := resp["queue"].(map[string]any); !ok {
		t.Fatal("no queue section")
	}
}

func TestStatusCareTotals(t *testing.T) {
	srv := testServer(t)

	for _, kind := range []string{"love", "love", "poke"} {
		req := httptest.NewRequest("POST", "/api/care", strings.NewReader(`{"kind":"`+kind+`"}`))
		srv.ServeHTTP(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest("GET", "/api/status", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var resp struct {
		CareTotals []struct {
			Kind      string  `json:"kind"`
			Count     int64   `json:"count"`
			Intensity float64 `json:"intensity"`
		} `json:"care_totals"`
		Queue struct {
			Archived int `json:"archived"`
		} `json:"queue"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(resp.CareTotals) != 2 {
		t.Fatalf("got %d care totals, want 2", len(resp.CareTotals))
	}
	// Kinds come back alphabetical from the store.
	if resp.CareTotals[0].Kind != "love" || resp.CareTotals[0].Count != 2 || resp.CareTotals[0].Intensity != 3.0 {
		t.Errorf("love total = %+v, want 2 times / 3.0", resp.CareTotals[0])
	}
	if resp.CareTotals[1].Kind != "poke" || resp.CareTotals[1].Count != 1 {
		t.Errorf("poke total = %+v, want 1 time", resp.CareTotals[1])
	}
	if resp.Queue.Archived != 0 {
		t.Errorf("archived = %d, want 0 before any sync", resp.Queue.Archived)
	}
}

func TestCareEndpoint(t *testing.T) {
	srv := testServer(t)

	body := `{"kind":"love"}`
	req := httptest.NewRequest("POST", "/api/care", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["reply"] == "" {
		t.Error("empty reply")
	}
	if resp["e"].(float64) <= 1.0 {
		t.Errorf("e = %v, want > 1.0 after love", resp["e"])
	}
}

func TestCareRejectsUnknownKind(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("POST", "/api/care", strings.NewReader(`{"kind":"tickle"}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCareMissingKind(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("POST", "/api/care", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestChatFallsBackWhenUnpaired(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"message":"hello"}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["offline"] != true {
		t.Errorf("offline = %v, want true", resp["offline"])
	}
	if resp["reply"] == "" {
		t.Error("empty fallback reply")
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"message":"  "}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestSyncUnpairedIsPreconditionFailed(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("POST", "/api/sync", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusPreconditionFailed {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusPreconditionFailed)
	}
}

func TestSyncAgainstLiveBackend(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"motd": "the village waves back"})
	}))
	defer backend.Close()

	srv := New(testKeeper(t, backend.URL), "test-version")

	req := httptest.NewRequest("POST", "/api/sync", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status"] != "synced" {
		t.Errorf("status = %v, want synced", resp["status"])
	}
	if resp["motd"] != "the village waves back" {
		t.Errorf("motd = %v", resp["motd"])
	}
}

func TestPersonasListAndChoose(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("GET", "/api/personas", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var list struct {
		Personas []string `json:"personas"`
		Active   string   `json:"active"`
	}
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Personas) == 0 {
		t.Fatal("empty persona roster")
	}

	req = httptest.NewRequest("POST", "/api/personas", strings.NewReader(`{"name":"VAJRA"}`))
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("choose status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["active"] != "VAJRA" {
		t.Errorf("active = %v, want VAJRA", resp["active"])
	}

	req = httptest.NewRequest("POST", "/api/personas", strings.NewReader(`{"name":"NOBODY"}`))
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown persona status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestQueueReflectsOfflineChats(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"message":"are you there?"}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("chat status = %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/queue", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("queue status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp struct {
		Pending int `json:"pending"`
		Entries []struct {
			Input   string `json:"input"`
			Quality string `json:"quality"`
		} `json:"entries"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Pending != 1 {
		t.Fatalf("pending = %d, want 1", resp.Pending)
	}
	if resp.Entries[0].Input != "are you there?" {
		t.Errorf("entry input = %q", resp.Entries[0].Input)
	}
	if resp.Entries[0].Quality == "" {
		t.Error("entry missing quality tag")
	}
}

func TestResetEndpoint(t *testing.T) {
	srv := testServer(t)

	// Grow the soul a little first.
	req := httptest.NewRequest("POST", "/api/care", strings.NewReader(`{"kind":"love"}`))
	srv.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest("POST", "/api/reset", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["e"].(float64) != 1.0 {
		t.Errorf("e after reset = %v, want 1.0", resp["e"])
	}
}

func TestCareHistoryEndpoint(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("POST", "/api/care", strings.NewReader(`{"kind":"poke"}`))
	srv.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest("GET", "/api/history/care?limit=5", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp struct {
		Count  int `json:"count"`
		Events []struct {
			Kind      string  `json:"kind"`
			Intensity float64 `json:"intensity"`
		} `json:"events"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 1 {
		t.Fatalf("count = %d, want 1", resp.Count)
	}
	if resp.Events[0].Kind != "poke" || resp.Events[0].Intensity != 0.5 {
		t.Errorf("event = %s/%v, want poke/0.5", resp.Events[0].Kind, resp.Events[0].Intensity)
	}
}

func TestChatHistoryEndpoint(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"message":"hello"}`))
	srv.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest("GET", "/api/history/chats", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp struct {
		Count int `json:"count"`
		Chats []struct {
			Message string `json:"message"`
			Offline bool   `json:"offline"`
		} `json:"chats"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 1 {
		t.Fatalf("count = %d, want 1", resp.Count)
	}
	if resp.Chats[0].Message != "hello" || !resp.Chats[0].Offline {
		t.Errorf("chat = %+v", resp.Chats[0])
	}
}

func TestInvalidJSONIsBadRequest(t *testing.T) {
	srv := testServer(t)

	for _, path := range []string{"/api/care", "/api/chat", "/api/personas"} {
		req := httptest.NewRequest("POST", path, strings.NewReader(`{not json`))
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", path, w.Code, http.StatusBadRequest)
		}
	}
}
