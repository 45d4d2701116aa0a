package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quizlens/internal/domain"
	"quizlens/internal/llm"
)

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func dialWS(t *testing.T, s *testServer) *websocket.Conn {
	t.Helper()
	dialer := websocket.Dialer{Jar: s.client.Jar, HandshakeTimeout: 5 * time.Second}
	u := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws"
	conn, _, err := dialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

// readUntil skips messages until one of type typ arrives and decodes it into out.
func readUntil(t *testing.T, conn *websocket.Conn, typ string, out any, match func() bool) {
	t.Helper()
	for i := 0; i < 20; i++ {
		var msg wsMessage
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json waiting for %s: %v", typ, err)
		}
		if msg.Type != typ {
			continue
		}
		if err := json.Unmarshal(msg.Payload, out); err != nil {
			t.Fatalf("decode %s: %v", typ, err)
		}
		if match == nil || match() {
			return
		}
	}
	t.Fatalf("no matching %s message", typ)
}

func TestWebSocketQuizFlow(t *testing.T) {
	s := newTestServer(t)
	s.provider.AddResponse(llm.MockResponse{Text: threeQuestions})
	conn := dialWS(t, s)

	var view domain.SessionView
	readUntil(t, conn, msgState, &view, nil)
	if view.Phase != domain.PhaseEmpty {
		t.Fatalf("expected empty session on connect, got %s", view.Phase)
	}

	send(t, conn, msgGenerate, topicPayload())
	readUntil(t, conn, msgState, &view, func() bool { return view.Phase == domain.PhaseLoaded })

	send(t, conn, msgSelect, selectRequest{Index: 1, Option: "b"})
	readUntil(t, conn, msgState, &view, func() bool { return view.Phase == domain.PhaseAnswering })
	if view.Answers[1] != "B" {
		t.Fatalf("expected canonical option text, got %+v", view.Answers)
	}

	send(t, conn, msgSubmit, submitRequest{Answers: []string{"A", "B", "C"}})
	var result domain.Result
	readUntil(t, conn, msgResult, &result, nil)
	if result.Score != 3 || result.Total != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}

	send(t, conn, msgSelect, selectRequest{Index: 0, Option: "B"})
	var errResp errorResponse
	readUntil(t, conn, msgError, &errResp, nil)
	if errResp.Error != domain.ErrAlreadySubmitted.Error() {
		t.Fatalf("expected already submitted error, got %q", errResp.Error)
	}

	send(t, conn, msgRestart, nil)
	readUntil(t, conn, msgState, &view, func() bool { return view.Phase == domain.PhaseEmpty })

	// the websocket shares the cookie session with the REST API
	var state domain.SessionView
	s.do(t, http.MethodGet, "/api/quiz", nil, &state)
	if state.SessionID != view.SessionID {
		t.Fatalf("expected shared session %s, got %s", view.SessionID, state.SessionID)
	}
}

func TestWebSocketRejectsUnknownMessage(t *testing.T) {
	s := newTestServer(t)
	conn := dialWS(t, s)

	send(t, conn, "dance", nil)
	var errResp errorResponse
	readUntil(t, conn, msgError, &errResp, nil)
	if errResp.Error != "unsupported message type" {
		t.Fatalf("unexpected error: %q", errResp.Error)
	}
}
