package payload

import "time"

// Fallbacks baked into the chat view so either client can render a list
// row without knowing which side it is on.
const (
	UnknownGuest  = "Unknown Guest"
	UnknownCast   = "Unknown Cast"
	UnknownName   = "Unknown"
	DefaultAvatar = "/assets/avatar/default.png"
)

// UserView is the minimal person card embedded in chat payloads.
type UserView struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

type GroupView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type GiftView struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Icon   string `json:"icon"`
	Points int    `json:"points"`
}

// ChatView is the denormalized dual-audience chat-list row. Both
// guest_* and cast_* convenience fields are always present so a client
// reads its own side without inspecting the other.
//
// last_message / lastMessage / unread are emitted as ""/0 by contract:
// the list component patches live values client-side, this shaper never
// consults message history.
type ChatView struct {
	ID            int64      `json:"id"`
	GuestID       *int64     `json:"guest_id"`
	CastID        *int64     `json:"cast_id"`
	ReservationID *int64     `json:"reservation_id"`
	GroupID       *int64     `json:"group_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Guest         *UserView  `json:"guest"`
	Cast          *UserView  `json:"cast"`
	GuestNickname string     `json:"guest_nickname"`
	CastNickname  string     `json:"cast_nickname"`
	Name          string     `json:"name"`
	Avatar        string     `json:"avatar"`
	Group         *GroupView `json:"group"`
	GroupName     *string    `json:"group_name"`
	IsGroupChat   bool       `json:"is_group_chat"`
	LastMessage   string     `json:"last_message"`
	LastMessageJS string     `json:"lastMessage"`
	Unread        int        `json:"unread"`
	GuestAge      *int       `json:"guest_age"`
}

// MessageView is the full serialized message with sender and gift
// relations, published to chat and counterpart channels.
type MessageView struct {
	ID            int64     `json:"id"`
	ChatID        *int64    `json:"chat_id"`
	GroupID       *int64    `json:"group_id"`
	SenderGuestID *int64    `json:"sender_guest_id"`
	SenderCastID  *int64    `json:"sender_cast_id"`
	Message       *string   `json:"message"`
	Image         *string   `json:"image"`
	GiftID        *int64    `json:"gift_id"`
	RecipientType string    `json:"recipient_type"`
	CreatedAt     time.Time `json:"created_at"`
	Guest         *UserView `json:"guest"`
	Cast          *UserView `json:"cast"`
	Gift          *GiftView `json:"gift"`
}

// MessageEnvelope wraps a message payload under the key chat clients
// route message pushes on.
type MessageEnvelope struct {
	Message MessageView `json:"message"`
}

type ReservationView struct {
	ID          int64     `json:"id"`
	GuestID     *int64    `json:"guest_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Location    string    `json:"location"`
	Duration    int       `json:"duration"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type GroupCreatedView struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ReservationID int64     `json:"reservation_id"`
	CastIDs       []int64   `json:"cast_ids"`
	CreatedAt     time.Time `json:"created_at"`
}

type NotificationView struct {
	ID        int64                  `json:"id"`
	UserID    int64                  `json:"user_id"`
	UserType  string                 `json:"user_type"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Data      map[string]interface{} `json:"data"`
	ReadAt    *time.Time             `json:"read_at"`
	CreatedAt time.Time              `json:"created_at"`
}
