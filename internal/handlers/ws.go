package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/monocle-dev/planboard/internal/apperror"
	"github.com/monocle-dev/planboard/internal/logging"
	"github.com/monocle-dev/planboard/internal/policy"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// BoardMessage is what the hub sends. It never carries board data; clients
// re-fetch on "refresh".
type BoardMessage struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	ProjectID uint   `json:"projectId"`
}

// boardClient serialises writes; a websocket.Conn allows one writer at a time.
type boardClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *boardClient) send(msg BoardMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(msg)
}

// Hub tracks open board connections per project.
type Hub struct {
	mu       sync.RWMutex
	clients  map[uint]map[*boardClient]bool
	upgrader websocket.Upgrader
}

// NewHub returns a hub accepting upgrades from origins allowOrigin approves.
// Requests without an Origin header (non-browser clients) are accepted.
func NewHub(allowOrigin func(origin string) bool) *Hub {
	return &Hub{
		clients: make(map[uint]map[*boardClient]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowOrigin(origin)
			},
		},
	}
}

func (hub *Hub) register(projectID uint, client *boardClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	if hub.clients[projectID] == nil {
		hub.clients[projectID] = make(map[*boardClient]bool)
	}
	hub.clients[projectID][client] = true
}

func (hub *Hub) unregister(projectID uint, client *boardClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	if clients, exists := hub.clients[projectID]; exists {
		delete(clients, client)
		if len(clients) == 0 {
			delete(hub.clients, projectID)
		}
	}
}

// Connections reports how many boards are open for projectID.
func (hub *Hub) Connections(projectID uint) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.clients[projectID])
}

// BroadcastRefresh asks every board open on projectID to re-fetch. Clients
// that cannot be written to are dropped.
func (hub *Hub) BroadcastRefresh(projectID uint) {
	hub.mu.RLock()
	clients := make([]*boardClient, 0, len(hub.clients[projectID]))
	for client := range hub.clients[projectID] {
		clients = append(clients, client)
	}
	hub.mu.RUnlock()

	msg := BoardMessage{Type: "refresh", Message: "Board data updated", ProjectID: projectID}

	for _, client := range clients {
		if err := client.send(msg); err != nil {
			logging.Logger.WithError(err).WithField("project_id", projectID).Warn("Dropping board connection after failed broadcast")
			hub.unregister(projectID, client)
			client.conn.Close()
		}
	}
}

// ProjectWebSocket upgrades to a live board feed for the project. The owner,
// members and assignees may watch.
func (h *Handler) ProjectWebSocket(ctx *gin.Context) {
	userID, project, err := h.loadProject(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	isMember, err := h.Store.IsMember(ctx.Request.Context(), project.ID, userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if !policy.CanWatchProject(userID, project, isMember) {
		respondError(ctx, apperror.Forbidden("Not authorized"))
		return
	}

	if h.Hub == nil {
		respondError(ctx, apperror.NotFound("Live updates are not enabled"))
		return
	}

	h.Hub.serve(ctx, project.ID, userID)
}

func (hub *Hub) serve(ctx *gin.Context, projectID, userID uint) {
	log := logging.Logger.WithFields(logrus.Fields{
		"project_id": projectID,
		"user_id":    userID,
	})

	conn, err := hub.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	client := &boardClient{conn: conn}
	hub.register(projectID, client)
	defer func() {
		hub.unregister(projectID, client)
		conn.Close()
		log.Debug("WebSocket connection closed")
	}()

	err = client.send(BoardMessage{
		Type:      "connected",
		Message:   "WebSocket connection established",
		ProjectID: projectID,
	})
	if err != nil {
		log.WithError(err).Warn("Failed to send welcome message")
		return
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).Warn("WebSocket error")
			}
			return
		}
	}
}
