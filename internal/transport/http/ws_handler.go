package http

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"study-aid-service/internal/app"
	"study-aid-service/internal/domain"
)

type WSHandler struct {
	service  *app.StudyService
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewWSHandler(service *app.StudyService, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		log:     log,
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

type quizResult struct {
	Score int `json:"score"`
}

// ServeWS upgrades to a websocket that streams session snapshots and accepts
// study commands for that session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}
	if _, err := h.service.Snapshot(r.Context(), sessionID); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel, err := h.service.Subscribe(r.Context(), sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.Release(r.Context(), sessionID)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})
	var commands sync.WaitGroup

	emit := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-closeSignals:
		}
	}
	emitErr := func(err error) {
		emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
	}

	// single writer; gorilla connections do not support concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", zap.String("session", sessionID), zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				emit(outboundMessage[any]{Type: "snapshot", Payload: update})
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
		case "generate":
			var payload generateRequest
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid generate payload"}})
				continue
			}
			// generation is slow; keep reading so navigation stays responsive
			commands.Add(1)
			go func() {
				defer commands.Done()
				if _, err := h.service.RequestGeneration(r.Context(), sessionID, payload.Kind, payload.Count); err != nil {
					emitErr(err)
				}
			}()
		case "navigate":
			var payload navigateRequest
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid navigate payload"}})
				continue
			}
			if _, err := h.service.Navigate(r.Context(), sessionID, payload.View); err != nil {
				emitErr(err)
			}
		case "new":
			if _, err := h.service.StartNewDocument(r.Context(), sessionID); err != nil {
				emitErr(err)
			}
		case "quiz":
			var payload quizRequest
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid quiz payload"}})
				continue
			}
			score, err := h.handleQuiz(r, sessionID, payload)
			if err != nil {
				emitErr(err)
				continue
			}
			emit(outboundMessage[any]{Type: "quizResult", Payload: quizResult{Score: score}})
		default:
			emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(closeSignals)
	commands.Wait()
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) handleQuiz(r *http.Request, sessionID string, payload quizRequest) (int, error) {
	if payload.Score != nil {
		_, err := h.service.CompleteQuiz(r.Context(), sessionID, *payload.Score)
		return *payload.Score, err
	}
	if payload.Answers == nil {
		return 0, domain.ErrInvalidScore
	}
	_, score, err := h.service.SubmitQuizAnswers(r.Context(), sessionID, payload.Answers)
	return score, err
}
