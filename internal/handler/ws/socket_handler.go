package wshandler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"broadcast-service/internal/channel"
	"broadcast-service/internal/middleware"
	"broadcast-service/internal/repository"
	"broadcast-service/pkg/broker/ws"
)

type WSHandler struct {
	manager *ws.Manager
	repo    repository.Repository
	logger  *zap.Logger
}

func NewWSHandler(manager *ws.Manager, repo repository.Repository, logger *zap.Logger) *WSHandler {
	return &WSHandler{manager: manager, repo: repo, logger: logger}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// clientFrame is what a connected client sends: join or leave a set of
// channel addresses.
type clientFrame struct {
	Action   string   `json:"action"` // subscribe, unsubscribe
	Channels []string `json:"channels"`
}

type ackFrame struct {
	Event    string   `json:"event"`
	Channels []string `json:"channels,omitempty"`
	Denied   []string `json:"denied,omitempty"`
}

// HandleSubscribe upgrades HTTP to WebSocket and runs the subscribe
// protocol until the client goes away.
func (h *WSHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(middleware.ContextUserID).(string)
	userType, _ := r.Context().Value(middleware.ContextUserType).(string)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade replies to the client itself on failure.
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	h.logger.Info("ws subscribe session",
		zap.String("user_type", userType),
		zap.String("user_id", userID))

	c := h.manager.Add(userType, userID, conn)
	ctx := context.Background()

	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		c.Touch()
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		c.Touch()

		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}

		switch frame.Action {
		case "subscribe":
			var joined, denied []string
			for _, ch := range frame.Channels {
				if !h.canSubscribe(ctx, userType, userID, ch) {
					denied = append(denied, ch)
					continue
				}
				if err := h.manager.Join(ctx, c, ch); err != nil {
					denied = append(denied, ch)
					continue
				}
				joined = append(joined, ch)
			}
			_ = c.SendJSON(ackFrame{Event: "subscribed", Channels: joined, Denied: denied})
		case "unsubscribe":
			for _, ch := range frame.Channels {
				h.manager.Leave(ctx, c, ch)
			}
			_ = c.SendJSON(ackFrame{Event: "unsubscribed", Channels: frame.Channels})
		}
	}

	h.manager.Remove(ctx, c)
}

// canSubscribe is the channel ACL. Personal channels must match the
// authenticated principal; entity channels require membership, checked
// against the current snapshot.
func (h *WSHandler) canSubscribe(ctx context.Context, userType, userID, address string) bool {
	audience, rawID, ok := strings.Cut(address, ".")
	if !ok {
		return false
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return false
	}
	selfID, _ := strconv.ParseInt(userID, 10, 64)

	switch audience {
	case channel.AudienceUser:
		return id == selfID
	case channel.AudienceGuest:
		return userType == "guest" && id == selfID
	case channel.AudienceCast:
		return userType == "cast" && id == selfID
	case channel.AudienceChat:
		chat, err := h.repo.GetChat(ctx, id)
		if err != nil {
			return false
		}
		if userType == "guest" && chat.GuestID != nil && *chat.GuestID == selfID {
			return true
		}
		if userType == "cast" && chat.CastID != nil && *chat.CastID == selfID {
			return true
		}
		return false
	case channel.AudienceGroup:
		group, err := h.repo.GetGroup(ctx, id)
		if err != nil {
			return false
		}
		if userType == "cast" {
			for _, castID := range group.CastIDs {
				if castID == selfID {
					return true
				}
			}
			return false
		}
		if userType == "guest" && group.Reservation != nil &&
			group.Reservation.GuestID != nil && *group.Reservation.GuestID == selfID {
			return true
		}
		return false
	case channel.AudienceReservation:
		res, err := h.repo.GetReservation(ctx, id)
		if err != nil {
			return false
		}
		// Casts browse open reservations; the owning guest gets its own
		// updates on the same channel.
		if userType == "cast" {
			return true
		}
		return userType == "guest" && res.GuestID != nil && *res.GuestID == selfID
	}
	return false
}
