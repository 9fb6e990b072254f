package domain

import "time"

// Guest and Cast are the two end-user populations of the matching app.
// The broadcast core only ever reads them as eagerly loaded relations.
type Guest struct {
	ID        int64
	Nickname  string
	Avatar    string
	BirthYear *int
}

type Cast struct {
	ID       int64
	Nickname string
	Avatar   string
}

// Chat is a 1:1 conversation between a guest and a cast. Either side may
// still be unset while a match is pending; at least one is always set.
type Chat struct {
	ID            int64
	GuestID       *int64
	CastID        *int64
	ReservationID *int64
	GroupID       *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Guest *Guest
	Cast  *Cast
	Group *ChatGroup
}

// ChatGroup is a multi-cast group conversation tied to a reservation.
// CastIDs is never empty.
type ChatGroup struct {
	ID            int64
	Name          string
	ReservationID int64
	CastIDs       []int64
	CreatedAt     time.Time

	Reservation *Reservation
}

// Message carries exactly one of SenderGuestID / SenderCastID. Text is
// nil for image- or gift-only messages.
type Message struct {
	ID            int64
	ChatID        *int64
	GroupID       *int64
	SenderGuestID *int64
	SenderCastID  *int64
	Text          *string
	Image         *string
	GiftID        *int64
	RecipientType string // guest, cast, both
	CreatedAt     time.Time

	Chat  *Chat
	Guest *Guest
	Cast  *Cast
	Gift  *Gift
}

type Gift struct {
	ID     int64
	Name   string
	Icon   string
	Points int
}

type Reservation struct {
	ID          int64
	GuestID     *int64
	ScheduledAt time.Time
	Location    string
	Duration    int // hours
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Notification is an in-app notification row owned by the main
// application; the core only fans out its creation.
type Notification struct {
	ID        int64
	UserID    int64
	UserType  string // guest, cast
	Type      string
	Title     string
	Body      string
	Data      map[string]interface{}
	ReadAt    *time.Time
	CreatedAt time.Time
}
