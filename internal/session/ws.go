package session

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/scopedoc/internal/docs"
	"github.com/ziadkadry99/scopedoc/internal/interview"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RegisterSocket mounts the interview socket at /ws/interview. It is kept
// apart from RegisterRoutes so request timeouts do not apply to it.
func RegisterSocket(r chi.Router, engine *Engine) {
	r.Get("/ws/interview", handleInterviewSocket(engine))
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type       string `json:"type"`       // "start", "next", "answer" or "generate"
	SessionID  string `json:"session_id"` // empty only for "start"
	QuestionID string `json:"question_id,omitempty"`
	Content    string `json:"content"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type      string `json:"type"` // "session", "question", "complete", "answer_result", "document" or "error"
	SessionID string `json:"session_id"`
	Content   string `json:"content,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// handleInterviewSocket drives one interview over a WebSocket. Messages on
// one connection are handled in order.
func handleInterviewSocket(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			engine.logger.Warn("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					engine.logger.Warn("websocket read failed", "error", err)
				}
				return
			}

			var req wsRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				engine.send(conn, wsResponse{Type: "error", Content: "invalid message format"})
				continue
			}
			if req.Type != "start" && req.SessionID == "" {
				engine.send(conn, wsResponse{Type: "error", Content: "session_id is required"})
				continue
			}

			engine.send(conn, engine.handleMessage(r, req))
		}
	}
}

func (e *Engine) handleMessage(r *http.Request, req wsRequest) wsResponse {
	ctx := r.Context()
	fail := func(err error) wsResponse {
		return wsResponse{Type: "error", SessionID: req.SessionID, Content: err.Error()}
	}

	switch req.Type {
	case "start":
		s, err := e.Create(ctx)
		if err != nil {
			return fail(err)
		}
		return wsResponse{Type: "session", SessionID: s.ID, Data: s.View()}

	case "next":
		resp, err := e.NextQuestion(ctx, req.SessionID)
		if err != nil {
			return fail(err)
		}
		if resp.Action == interview.ActionComplete {
			return wsResponse{Type: "complete", SessionID: req.SessionID, Data: resp.Sufficiency}
		}
		return wsResponse{Type: "question", SessionID: req.SessionID, Content: resp.Question.Text, Data: resp.Question}

	case "answer":
		res, err := e.Answer(ctx, req.SessionID, AnswerInput{QuestionID: req.QuestionID, Answer: req.Content})
		if err != nil {
			return fail(err)
		}
		return wsResponse{Type: "answer_result", SessionID: req.SessionID, Data: res}

	case "generate":
		doc, err := e.Generate(ctx, req.SessionID)
		if err != nil {
			return fail(err)
		}
		md, err := docs.RenderMarkdown(doc)
		if err != nil {
			return fail(err)
		}
		return wsResponse{Type: "document", SessionID: req.SessionID, Content: md, Data: map[string]any{
			"version":  doc.Version,
			"score":    doc.Validation.Score,
			"complete": doc.Validation.Complete,
		}}

	default:
		return wsResponse{Type: "error", SessionID: req.SessionID, Content: "unknown message type: " + req.Type}
	}
}

func (e *Engine) send(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		e.logger.Warn("websocket write failed", "error", err)
	}
}
