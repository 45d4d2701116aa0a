package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"quizlens/internal/app"
)

type WSHandler struct {
	service  *app.QuizService
	ids      *SessionIdentifier
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, ids *SessionIdentifier) *WSHandler {
	return &WSHandler{
		service: service,
		ids:     ids,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

const (
	msgGenerate = "generate"
	msgSelect   = "select"
	msgSubmit   = "submit"
	msgRestart  = "restart"
	msgState    = "state"
	msgResult   = "result"
	msgError    = "error"
)

// ServeWS upgrades the request and dispatches quiz commands for the cookie's
// session. Every session change is pushed as a "state" message.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.ids.Resolve(w, r)
	if err != nil {
		log.Printf("resolve session: %v", err)
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	// the upgrader writes its own response, so carry a freshly minted cookie over
	var header http.Header
	if cookies := w.Header().Values("Set-Cookie"); len(cookies) > 0 {
		header = http.Header{"Set-Cookie": cookies}
	}
	conn, err := h.upgrader.Upgrade(w, r, header)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancelCtx := context.WithCancel(r.Context())
	defer cancelCtx()

	updates, unsubscribe := h.service.Subscribe(ctx, sessionID)
	defer h.service.Release(context.Background(), sessionID)
	defer unsubscribe()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})
	var inflight sync.WaitGroup

	emit := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}
	emitError := func(err error) {
		emit(outboundMessage[any]{Type: msgError, Payload: toErrorResponse(err)})
	}

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case view, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: msgState, Payload: view}:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case msgGenerate:
			var payload generateRequest
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit(outboundMessage[any]{Type: msgError, Payload: errorResponse{Error: "invalid generate payload"}})
				continue
			}
			// generation runs off the read loop so a restart can supersede it
			inflight.Add(1)
			go func() {
				defer inflight.Done()
				if _, err := h.service.Generate(ctx, sessionID, payload.toApp()); err != nil {
					log.Printf("generate quiz for session %s: %v", sessionID, err)
					emitError(err)
				}
			}()
		case msgSelect:
			var payload selectRequest
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit(outboundMessage[any]{Type: msgError, Payload: errorResponse{Error: "invalid select payload"}})
				continue
			}
			if _, err := h.service.SelectAnswer(ctx, sessionID, payload.Index, payload.Option); err != nil {
				emitError(err)
			}
		case msgSubmit:
			var payload submitRequest
			if len(inbound.Payload) > 0 {
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					emit(outboundMessage[any]{Type: msgError, Payload: errorResponse{Error: "invalid submit payload"}})
					continue
				}
			}
			result, err := h.service.Submit(ctx, sessionID, payload.Answers...)
			if err != nil {
				emitError(err)
				continue
			}
			emit(outboundMessage[any]{Type: msgResult, Payload: result})
		case msgRestart:
			h.service.Restart(ctx, sessionID)
		case msgState:
			emit(outboundMessage[any]{Type: msgState, Payload: h.service.State(ctx, sessionID)})
		default:
			emit(outboundMessage[any]{Type: msgError, Payload: errorResponse{Error: "unsupported message type"}})
		}
	}

	close(closeSignals)
	cancelCtx()
	inflight.Wait()
	<-updatesDone
	close(send)
	<-writerDone
}
