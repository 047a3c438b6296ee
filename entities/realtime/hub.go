package realtime

import (
	"context"
	"crm/database"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	ACTION_CREATED   = "created"
	ACTION_UPDATED   = "updated"
	ACTION_DELETED   = "deleted"
	ACTION_RESTORED  = "restored"
	ACTION_PURGED    = "purged"
	ACTION_MOVED     = "moved"
	ACTION_PROMOTED  = "promoted"
	ACTION_IMPORTED  = "imported"
	ACTION_RECOMPUTE = "recomputed"

	ENTITY_MEMBER   = "member"
	ENTITY_PIPELINE = "pipeline"
	ENTITY_DEAL     = "deal"
	ENTITY_LEAD     = "lead"
)

type Event struct {
	Action   string `json:"action"`
	Entity   string `json:"entity"`
	ID       string `json:"id,omitempty"`
	Pipeline string `json:"pipeline_id,omitempty"`
	Payload  any    `json:"payload,omitempty"`
	Details  string `json:"details,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans CRM events out to every connected websocket. With redis configured
// events travel through pub/sub so every instance delivers them.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHub(rdb *redis.Client, logger *zap.Logger) *Hub {
	return &Hub{
		clients: map[*websocket.Conn]bool{},
		rdb:     rdb,
		logger:  logger,
	}
}

func (h *Hub) Broadcast(ctx context.Context, event Event) {
	if h.rdb == nil {
		h.deliver(event)
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("event not encodable", zap.String("action", event.Action), zap.Error(err))
		return
	}

	if err := h.rdb.Publish(ctx, database.REDIS_CHANNEL_CRM_EVENTS, payload).Err(); err != nil {
		h.logger.Warn("redis publish failed, delivering locally", zap.Error(err))
		h.deliver(event)
	}
}

// Run relays redis events into the local hub until ctx is done. Without redis
// it returns right away.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		return
	}

	pubsub := h.rdb.Subscribe(ctx, database.REDIS_CHANNEL_CRM_EVENTS)
	defer pubsub.Close()

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			event := Event{}
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.logger.Warn("invalid event on redis channel", zap.Error(err))
				continue
			}
			h.deliver(event)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) deliver(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		err := client.WriteJSON(event)
		if err != nil {
			client.Close()
			delete(h.clients, client)
		}
	}
}

func (h *Hub) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "Não foi possível fazer upgrade para websocket", http.StatusInternalServerError)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}
