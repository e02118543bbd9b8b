package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pairpad/backend/internal/domain/exec"
	"github.com/pairpad/backend/internal/domain/session"
	"github.com/pairpad/backend/internal/infrastructure/logging"
)

// storeTimeout bounds each session store round trip so a stuck backend
// cannot pin the connection's event loop forever.
const storeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// SessionStore is the slice of the session store the gateway needs.
type SessionStore interface {
	GetOrCreate(ctx context.Context, id string) (*session.Session, error)
	Update(ctx context.Context, id string, upd session.Update) error
}

// Metrics is the slice of the metrics collector the gateway needs.
type Metrics interface {
	IncWSConnections()
	DecWSConnections()
	RecordWSMessage(direction, event string)
	SetSessionGroups(count int)
	IncSessionWrites()
}

// Gateway handles WebSocket connections: one session per connection,
// persist-then-rebroadcast for edits, rebroadcast-only for run results.
type Gateway struct {
	hub     *Hub
	store   SessionStore
	logger  *logging.Logger
	metrics Metrics
}

// NewGateway creates a WebSocket gateway.
func NewGateway(hub *Hub, store SessionStore, logger *logging.Logger) *Gateway {
	return &Gateway{
		hub:    hub,
		store:  store,
		logger: logger,
	}
}

// WithMetrics attaches a metrics collector.
func (g *Gateway) WithMetrics(m Metrics) *Gateway {
	g.metrics = m
	return g
}

// HandleConnection upgrades the request and runs the connection's event
// loop. Handlers for one connection run to completion in arrival order;
// connections for different sessions interleave freely.
func (g *Gateway) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	client := NewClient(conn)
	go client.writePump()

	if g.metrics != nil {
		g.metrics.IncWSConnections()
	}
	g.logger.Info("Connection opened", zap.String("conn_id", client.ID.String()))

	defer func() {
		g.hub.Leave(client)
		client.Close()
		if g.metrics != nil {
			g.metrics.DecWSConnections()
			g.metrics.SetSessionGroups(g.hub.GroupCount())
		}
		g.logger.Info("Connection closed", zap.String("conn_id", client.ID.String()))
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.logger.Warn("WebSocket read error",
					zap.String("conn_id", client.ID.String()), zap.Error(err))
			}
			return
		}

		if g.metrics != nil {
			g.metrics.RecordWSMessage("in", msg.Event)
		}

		switch msg.Event {
		case EventJoinSession:
			g.handleJoin(client, msg)
		case EventCodeChange:
			g.handleCodeChange(client, msg)
		case EventLanguageChange:
			g.handleLanguageChange(client, msg)
		case EventRunResult:
			g.handleRunResult(client, msg)
		case EventPing:
			client.SendMessage(&Message{Event: EventPong})
		default:
			g.sendError(client, "unknown event type")
		}
	}
}

// handleJoin fetches or lazily creates the session document and delivers
// it to the joining connection only.
func (g *Gateway) handleJoin(client *Client, msg Message) {
	if msg.SessionID == "" {
		g.sendError(client, "sessionId is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	sess, err := g.store.GetOrCreate(ctx, msg.SessionID)
	if err != nil {
		g.logger.Error("Failed to load session",
			zap.String("session_id", msg.SessionID), zap.Error(err))
		g.sendError(client, "failed to load session")
		return
	}

	g.hub.Join(client, msg.SessionID)
	if g.metrics != nil {
		g.metrics.SetSessionGroups(g.hub.GroupCount())
	}

	client.SendMessage(&Message{
		Event:    EventInitSession,
		Code:     sess.Code,
		Language: sess.Language,
	})
	g.emitted(EventInitSession)

	g.logger.Info("Joined session",
		zap.String("conn_id", client.ID.String()),
		zap.String("session_id", msg.SessionID),
		zap.Int("members", g.hub.MemberCount(msg.SessionID)),
	)
}

// handleCodeChange persists the full buffer then rebroadcasts it. On a
// storage failure the broadcast is aborted so peers never see an edit
// the store lost.
func (g *Gateway) handleCodeChange(client *Client, msg Message) {
	if msg.SessionID == "" {
		g.sendError(client, "sessionId is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := g.store.Update(ctx, msg.SessionID, session.Update{Code: &msg.Code}); err != nil {
		g.logger.Error("Failed to persist code change",
			zap.String("session_id", msg.SessionID), zap.Error(err))
		g.sendError(client, "failed to save changes")
		return
	}
	if g.metrics != nil {
		g.metrics.IncSessionWrites()
	}

	g.hub.EmitToOthers(msg.SessionID, client, &Message{
		Event: EventCodeUpdate,
		Code:  msg.Code,
	})
	g.emitted(EventCodeUpdate)
}

// handleLanguageChange validates against the closed language set, then
// persists and rebroadcasts like a code change.
func (g *Gateway) handleLanguageChange(client *Client, msg Message) {
	if msg.SessionID == "" {
		g.sendError(client, "sessionId is required")
		return
	}

	lang, err := exec.ParseLanguage(msg.Language)
	if err != nil {
		g.sendError(client, "unsupported language")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	langStr := string(lang)
	if err := g.store.Update(ctx, msg.SessionID, session.Update{Language: &langStr}); err != nil {
		g.logger.Error("Failed to persist language change",
			zap.String("session_id", msg.SessionID), zap.Error(err))
		g.sendError(client, "failed to save changes")
		return
	}
	if g.metrics != nil {
		g.metrics.IncSessionWrites()
	}

	g.hub.EmitToOthers(msg.SessionID, client, &Message{
		Event:    EventLanguageUpdate,
		Language: langStr,
	})
	g.emitted(EventLanguageUpdate)
}

// handleRunResult rebroadcasts execution output to peers. Display-sync
// only: nothing is written to the store, and a late joiner never sees
// past results.
func (g *Gateway) handleRunResult(client *Client, msg Message) {
	if msg.SessionID == "" {
		g.sendError(client, "sessionId is required")
		return
	}

	g.hub.EmitToOthers(msg.SessionID, client, &Message{
		Event:  EventRunResult,
		Stdout: msg.Stdout,
		Stderr: msg.Stderr,
	})
	g.emitted(EventRunResult)
}

func (g *Gateway) sendError(client *Client, text string) {
	client.SendMessage(&Message{Event: EventError, Error: text})
	g.emitted(EventError)
}

func (g *Gateway) emitted(event string) {
	if g.metrics != nil {
		g.metrics.RecordWSMessage("out", event)
	}
}
