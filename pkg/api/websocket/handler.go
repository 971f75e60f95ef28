package websocket

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aescanero/tripplanner/pkg/domain"
	"github.com/aescanero/tripplanner/pkg/ports"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Message types sent to the client
const (
	MessageEvent  = "event"
	MessageResult = "result"
	MessageError  = "error"
)

const (
	requestReadTimeout = 30 * time.Second
	writeTimeout       = 10 * time.Second

	// drainTimeout bounds how long the final result waits for trailing events.
	drainTimeout = time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Planner builds a plan under a caller-chosen plan ID
type Planner interface {
	PlanWithID(ctx context.Context, planID string, req domain.Request) (*domain.CompositeResult, error)
}

// Message is a frame sent to the client
type Message struct {
	Type  string                  `json:"type"`
	Event *ports.Event            `json:"event,omitempty"`
	Plan  *domain.CompositeResult `json:"plan,omitempty"`
	Error *ErrorMessage           `json:"error,omitempty"`
}

// ErrorMessage describes a failed request
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Handler handles WebSocket connections
type Handler struct {
	planner  Planner
	eventBus ports.EventBus
	logger   *zap.Logger
}

// NewHandler creates a new WebSocket handler. eventBus may be nil, in which
// case only the final message is sent.
func NewHandler(planner Planner, eventBus ports.EventBus, logger *zap.Logger) *Handler {
	return &Handler{
		planner:  planner,
		eventBus: eventBus,
		logger:   logger,
	}
}

type planResult struct {
	plan *domain.CompositeResult
	err  error
}

// HandlePlanStream builds one plan and streams its progress
func (h *Handler) HandlePlanStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	planID := uuid.New().String()
	h.logger.Info("WebSocket connection established",
		zap.String("plan_id", planID),
		zap.String("client", c.ClientIP()))

	var req domain.Request
	_ = conn.SetReadDeadline(time.Now().Add(requestReadTimeout))
	if err := conn.ReadJSON(&req); err != nil {
		h.send(conn, Message{Type: MessageError, Error: &ErrorMessage{Code: "INVALID_REQUEST", Message: "expected a JSON plan request"}})
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events := make(chan ports.Event, 32)
	h.subscribe(ctx, planID, events)

	results := make(chan planResult, 1)
	go func() {
		plan, err := h.planner.PlanWithID(ctx, planID, req)
		results <- planResult{plan: plan, err: err}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			if !h.sendEvent(conn, event) {
				return
			}
		case res := <-results:
			if res.err == nil {
				h.drain(conn, events)
			}
			h.finish(conn, planID, res)
			return
		}
	}
}

// subscribe forwards events of planID to ch
func (h *Handler) subscribe(ctx context.Context, planID string, ch chan<- ports.Event) {
	if h.eventBus == nil {
		return
	}

	handler := func(ctx context.Context, event ports.Event) error {
		if event.PlanID != planID {
			return nil
		}
		select {
		case ch <- event:
		case <-ctx.Done():
			return ctx.Err()
		default:
			h.logger.Warn("event channel full, dropping event",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)))
		}
		return nil
	}

	if err := h.eventBus.Subscribe(ctx, ports.PlanEventsTopic, handler); err != nil {
		h.logger.Error("failed to subscribe to plan events",
			zap.String("plan_id", planID),
			zap.Error(err))
	}
}

// drain forwards queued events until the plan's final event arrives
func (h *Handler) drain(conn *websocket.Conn, events <-chan ports.Event) {
	if h.eventBus == nil {
		return
	}

	timer := time.NewTimer(drainTimeout)
	defer timer.Stop()

	for {
		select {
		case event := <-events:
			if !h.sendEvent(conn, event) {
				return
			}
			if event.Type == ports.EventTypePlanCompleted || event.Type == ports.EventTypePlanCacheHit {
				return
			}
		case <-timer.C:
			return
		}
	}
}

func (h *Handler) finish(conn *websocket.Conn, planID string, res planResult) {
	msg := Message{Type: MessageResult, Plan: res.plan}
	if res.err != nil {
		code := "PLAN_FAILED"
		if errors.Is(res.err, domain.ErrInvalidRequest) {
			code = "INVALID_REQUEST"
		}
		msg = Message{Type: MessageError, Error: &ErrorMessage{Code: code, Message: res.err.Error()}}
	}

	if !h.send(conn, msg) {
		return
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "plan complete"),
		time.Now().Add(writeTimeout))

	h.logger.Info("WebSocket plan stream finished",
		zap.String("plan_id", planID),
		zap.String("type", msg.Type))
}

func (h *Handler) sendEvent(conn *websocket.Conn, event ports.Event) bool {
	return h.send(conn, Message{Type: MessageEvent, Event: &event})
}

func (h *Handler) send(conn *websocket.Conn, msg Message) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Error("failed to write message", zap.Error(err))
		return false
	}
	return true
}
