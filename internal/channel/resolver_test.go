package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"broadcast-service/internal/domain"
)

func ptr(v int64) *int64 { return &v }

func TestResolve_ChatCreated_BothParties(t *testing.T) {
	subject := domain.Subject{
		Chat: &domain.Chat{ID: 3, GuestID: ptr(42), CastID: ptr(7)},
	}

	got := Resolve(domain.ChatCreated, subject)

	require.Len(t, got, 2)
	assert.Equal(t, Address("guest.42"), got[0])
	assert.Equal(t, Address("cast.7"), got[1])
}

func TestResolve_ChatCreated_UnmatchedGuestOnly(t *testing.T) {
	subject := domain.Subject{
		Chat: &domain.Chat{ID: 3, GuestID: ptr(42)},
	}

	got := Resolve(domain.ChatCreated, subject)

	require.Len(t, got, 1)
	assert.Equal(t, Address("guest.42"), got[0])
}

func TestResolve_MessageSent_GuestSenderNotifiesCast(t *testing.T) {
	chat := &domain.Chat{ID: 10, GuestID: ptr(1), CastID: ptr(7)}
	subject := domain.Subject{
		Chat:    chat,
		Message: &domain.Message{ID: 100, ChatID: ptr(int64(10)), SenderGuestID: ptr(1)},
	}

	got := Resolve(domain.MessageSent, subject)

	require.Len(t, got, 3)
	assert.ElementsMatch(t,
		[]Address{"chat.10", "user.7", "cast.7"},
		got)
}

func TestResolve_MessageSent_CastSenderNotifiesGuest(t *testing.T) {
	chat := &domain.Chat{ID: 10, GuestID: ptr(1), CastID: ptr(2)}
	subject := domain.Subject{
		Chat:    chat,
		Message: &domain.Message{ID: 100, ChatID: ptr(int64(10)), SenderCastID: ptr(2)},
	}

	got := Resolve(domain.MessageSent, subject)

	assert.ElementsMatch(t,
		[]Address{"chat.10", "user.1", "guest.1"},
		got)
}

func TestResolve_MessageSent_PendingMatchOmitsCounterpart(t *testing.T) {
	// Guest-only chat: the cast side is omitted, never a sentinel.
	chat := &domain.Chat{ID: 10, GuestID: ptr(1)}
	subject := domain.Subject{
		Chat:    chat,
		Message: &domain.Message{ID: 100, ChatID: ptr(int64(10)), SenderGuestID: ptr(1)},
	}

	got := Resolve(domain.MessageSent, subject)

	require.Len(t, got, 1)
	assert.Equal(t, Address("chat.10"), got[0])
}

func TestResolve_MessageSent_ChatRelationOnMessage(t *testing.T) {
	// The chat may be attached to the message instead of the subject.
	msg := &domain.Message{
		ID:            100,
		ChatID:        ptr(int64(10)),
		SenderGuestID: ptr(1),
		Chat:          &domain.Chat{ID: 10, GuestID: ptr(1), CastID: ptr(7)},
	}

	got := Resolve(domain.MessageSent, domain.Subject{Message: msg})

	assert.ElementsMatch(t,
		[]Address{"chat.10", "user.7", "cast.7"},
		got)
}

func TestResolve_GroupMessageSent_GroupOnly(t *testing.T) {
	subject := domain.Subject{
		Message: &domain.Message{ID: 5, GroupID: ptr(9), SenderCastID: ptr(3)},
	}

	got := Resolve(domain.GroupMessageSent, subject)

	require.Len(t, got, 1)
	assert.Equal(t, Address("group.9"), got[0])
}

func TestResolve_ChatGroupCreated_DedupesCastIDs(t *testing.T) {
	subject := domain.Subject{
		Group: &domain.ChatGroup{
			ID:      9,
			CastIDs: []int64{3, 5, 9, 5},
			Reservation: &domain.Reservation{
				ID:      4,
				GuestID: ptr(2),
			},
		},
	}

	got := Resolve(domain.ChatGroupCreated, subject)

	require.Len(t, got, 4)
	assert.Equal(t, []Address{"guest.2", "cast.3", "cast.5", "cast.9"}, got)
}

func TestResolve_ChatGroupCreated_NoReservation(t *testing.T) {
	subject := domain.Subject{
		Group: &domain.ChatGroup{ID: 9, CastIDs: []int64{3}},
	}

	got := Resolve(domain.ChatGroupCreated, subject)

	assert.Equal(t, []Address{"cast.3"}, got)
}

func TestResolve_ChatListUpdated_ExplicitPrincipal(t *testing.T) {
	got := Resolve(domain.ChatListUpdated, domain.Subject{UserType: "cast", UserID: 12})

	assert.Equal(t, []Address{"cast.12"}, got)
}

func TestResolve_ReservationCreated(t *testing.T) {
	subject := domain.Subject{
		Reservation: &domain.Reservation{ID: 5, GuestID: ptr(2)},
	}

	got := Resolve(domain.ReservationCreated, subject)

	assert.Equal(t, []Address{"reservation.5", "guest.2"}, got)
}

func TestResolve_ReservationCreated_NoGuest(t *testing.T) {
	subject := domain.Subject{
		Reservation: &domain.Reservation{ID: 5},
	}

	got := Resolve(domain.ReservationCreated, subject)

	assert.Equal(t, []Address{"reservation.5"}, got)
}

func TestResolve_ReservationUpdated_SingleChannel(t *testing.T) {
	subject := domain.Subject{
		Reservation: &domain.Reservation{ID: 55, GuestID: ptr(2)},
	}

	got := Resolve(domain.ReservationUpdated, subject)

	assert.Equal(t, []Address{"reservation.55"}, got)
}

func TestResolve_FavoriteToggled(t *testing.T) {
	got := Resolve(domain.FavoriteToggled, domain.Subject{UserID: 8})

	assert.Equal(t, []Address{"user.8"}, got)
}

func TestResolve_NotificationSent(t *testing.T) {
	subject := domain.Subject{
		Notification: &domain.Notification{ID: 1, UserID: 33, UserType: "guest"},
	}

	got := Resolve(domain.NotificationSent, subject)

	assert.Equal(t, []Address{"user.33"}, got)
}

func TestResolve_MissingSubjects(t *testing.T) {
	kinds := []domain.EventKind{
		domain.MessageSent,
		domain.GroupMessageSent,
		domain.ChatCreated,
		domain.ChatGroupCreated,
		domain.ReservationCreated,
		domain.ReservationUpdated,
		domain.NotificationSent,
	}
	for _, kind := range kinds {
		assert.Empty(t, Resolve(kind, domain.Subject{}), "kind %s", kind)
	}
}

func TestDedupe_PreservesOrder(t *testing.T) {
	in := []Address{"a.1", "b.2", "a.1", "c.3", "b.2"}

	assert.Equal(t, []Address{"a.1", "b.2", "c.3"}, Dedupe(in))
}
