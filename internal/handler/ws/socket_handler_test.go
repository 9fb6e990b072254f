package wshandler

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"broadcast-service/internal/domain"
	"broadcast-service/internal/repository"
)

func ptr(v int64) *int64 { return &v }

// fakeRepo serves a fixed snapshot: chat 10 between guest 1 and cast 7,
// group 9 with casts 7,8 on reservation 55 owned by guest 1.
type fakeRepo struct{}

func (fakeRepo) GetChat(_ context.Context, id int64) (*domain.Chat, error) {
	if id != 10 {
		return nil, repository.ErrNotFound
	}
	return &domain.Chat{ID: 10, GuestID: ptr(1), CastID: ptr(7)}, nil
}

func (fakeRepo) GetMessage(_ context.Context, id int64) (*domain.Message, error) {
	return nil, repository.ErrNotFound
}

func (fakeRepo) GetGroup(_ context.Context, id int64) (*domain.ChatGroup, error) {
	if id != 9 {
		return nil, repository.ErrNotFound
	}
	return &domain.ChatGroup{
		ID:            9,
		ReservationID: 55,
		CastIDs:       []int64{7, 8},
		Reservation:   &domain.Reservation{ID: 55, GuestID: ptr(1)},
	}, nil
}

func (fakeRepo) GetReservation(_ context.Context, id int64) (*domain.Reservation, error) {
	if id != 55 {
		return nil, repository.ErrNotFound
	}
	return &domain.Reservation{ID: 55, GuestID: ptr(1)}, nil
}

func (fakeRepo) GetNotification(_ context.Context, id int64) (*domain.Notification, error) {
	return nil, repository.ErrNotFound
}

func TestCanSubscribe(t *testing.T) {
	h := NewWSHandler(nil, fakeRepo{}, zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		name     string
		userType string
		userID   string
		address  string
		want     bool
	}{
		{"own user channel as guest", "guest", "5", "user.5", true},
		{"own user channel as cast", "cast", "5", "user.5", true},
		{"someone else's user channel", "guest", "5", "user.6", false},

		{"own guest channel", "guest", "1", "guest.1", true},
		{"guest channel wrong type", "cast", "1", "guest.1", false},
		{"guest channel wrong id", "guest", "2", "guest.1", false},
		{"own cast channel", "cast", "7", "cast.7", true},
		{"cast channel wrong type", "guest", "7", "cast.7", false},

		{"chat member guest", "guest", "1", "chat.10", true},
		{"chat member cast", "cast", "7", "chat.10", true},
		{"chat non-member guest", "guest", "2", "chat.10", false},
		{"chat non-member cast", "cast", "8", "chat.10", false},
		{"unknown chat", "guest", "1", "chat.99", false},

		{"group member cast", "cast", "8", "group.9", true},
		{"group non-member cast", "cast", "3", "group.9", false},
		{"group owning guest", "guest", "1", "group.9", true},
		{"group other guest", "guest", "2", "group.9", false},
		{"unknown group", "cast", "7", "group.99", false},

		{"reservation any cast", "cast", "999", "reservation.55", true},
		{"reservation owning guest", "guest", "1", "reservation.55", true},
		{"reservation other guest", "guest", "2", "reservation.55", false},
		{"unknown reservation", "cast", "7", "reservation.99", false},

		{"no separator", "guest", "1", "bogus", false},
		{"empty id", "guest", "1", "chat.", false},
		{"non-numeric id", "guest", "1", "chat.x", false},
		{"unknown audience", "guest", "5", "lounge.5", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.canSubscribe(ctx, tt.userType, tt.userID, tt.address)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandleSubscribe_RejectsPlainHTTP(t *testing.T) {
	h := NewWSHandler(nil, fakeRepo{}, zap.NewNop())

	// No Upgrade headers: the handshake fails and the upgrader's own
	// reply must be the only one written.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ws", nil)
	h.HandleSubscribe(rec, req)

	assert.Equal(t, 400, rec.Code)
}
