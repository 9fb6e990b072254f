package domain

// EventKind tags the broadcast event types the core knows how to route.
// The string value doubles as the client-facing event name.
type EventKind string

const (
	MessageSent        EventKind = "MessageSent"
	GroupMessageSent   EventKind = "GroupMessageSent"
	ChatCreated        EventKind = "ChatCreated"
	ChatGroupCreated   EventKind = "ChatGroupCreated"
	ChatListUpdated    EventKind = "ChatListUpdated"
	ReservationCreated EventKind = "ReservationCreated"
	ReservationUpdated EventKind = "ReservationUpdated"
	FavoriteToggled    EventKind = "FavoriteToggled"
	NotificationSent   EventKind = "NotificationSent"
)

// Name is the stable identifier clients route on.
func (k EventKind) Name() string { return string(k) }

// Subject is the snapshot of the mutated entity an event is about, with
// relations already loaded by the caller. Only the fields relevant to the
// event kind are set; resolution and shaping read, never mutate.
type Subject struct {
	Chat         *Chat
	Message      *Message
	Group        *ChatGroup
	Reservation  *Reservation
	Notification *Notification

	// ChatListUpdated and FavoriteToggled address an explicit principal
	// instead of deriving one from an entity.
	UserType string
	UserID   int64

	// Extra is caller-supplied context published as-is (FavoriteToggled).
	Extra map[string]interface{}
}
