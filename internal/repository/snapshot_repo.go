package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"broadcast-service/internal/domain"
)

var ErrNotFound = errors.New("not found")

// Repository loads subject snapshots with their relations eagerly, the
// way the triggering action would hand them in. Strictly read-only: the
// broadcast core never owns or mutates these rows.
type Repository interface {
	GetChat(ctx context.Context, id int64) (*domain.Chat, error)
	GetMessage(ctx context.Context, id int64) (*domain.Message, error)
	GetGroup(ctx context.Context, id int64) (*domain.ChatGroup, error)
	GetReservation(ctx context.Context, id int64) (*domain.Reservation, error)
	GetNotification(ctx context.Context, id int64) (*domain.Notification, error)
}

type pgRepo struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &pgRepo{db: db}
}

func (p *pgRepo) GetChat(ctx context.Context, id int64) (*domain.Chat, error) {
	query := `
		SELECT c.id, c.guest_id, c.cast_id, c.reservation_id, c.group_id,
		       c.created_at, c.updated_at,
		       g.id, g.nickname, g.avatar, g.birth_year,
		       ca.id, ca.nickname, ca.avatar,
		       cg.id, cg.name, cg.reservation_id, cg.cast_ids, cg.created_at
		FROM chats c
		LEFT JOIN guests g       ON g.id  = c.guest_id
		LEFT JOIN casts ca       ON ca.id = c.cast_id
		LEFT JOIN chat_groups cg ON cg.id = c.group_id
		WHERE c.id = $1
	`

	var (
		chat           domain.Chat
		gID, caID      *int64
		gNick, gAvatar *string
		gBirthYear     *int
		caNick, caAvat *string
		cgID, cgResID  *int64
		cgName         *string
		cgCastIDs      []int64
		cgCreatedAt    *time.Time
	)
	err := p.db.QueryRow(ctx, query, id).Scan(
		&chat.ID, &chat.GuestID, &chat.CastID, &chat.ReservationID, &chat.GroupID,
		&chat.CreatedAt, &chat.UpdatedAt,
		&gID, &gNick, &gAvatar, &gBirthYear,
		&caID, &caNick, &caAvat,
		&cgID, &cgName, &cgResID, &cgCastIDs, &cgCreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get chat %d: %w", id, err)
	}

	if gID != nil {
		chat.Guest = &domain.Guest{ID: *gID, BirthYear: gBirthYear}
		if gNick != nil {
			chat.Guest.Nickname = *gNick
		}
		if gAvatar != nil {
			chat.Guest.Avatar = *gAvatar
		}
	}
	if caID != nil {
		chat.Cast = &domain.Cast{ID: *caID}
		if caNick != nil {
			chat.Cast.Nickname = *caNick
		}
		if caAvat != nil {
			chat.Cast.Avatar = *caAvat
		}
	}
	if cgID != nil {
		chat.Group = &domain.ChatGroup{ID: *cgID, CastIDs: cgCastIDs}
		if cgName != nil {
			chat.Group.Name = *cgName
		}
		if cgResID != nil {
			chat.Group.ReservationID = *cgResID
		}
		if cgCreatedAt != nil {
			chat.Group.CreatedAt = *cgCreatedAt
		}
	}
	return &chat, nil
}

func (p *pgRepo) GetMessage(ctx context.Context, id int64) (*domain.Message, error) {
	query := `
		SELECT m.id, m.chat_id, m.group_id, m.sender_guest_id, m.sender_cast_id,
		       m.message, m.image, m.gift_id, m.recipient_type, m.created_at,
		       g.id, g.nickname, g.avatar,
		       ca.id, ca.nickname, ca.avatar,
		       gf.id, gf.name, gf.icon, gf.points
		FROM messages m
		LEFT JOIN guests g ON g.id  = m.sender_guest_id
		LEFT JOIN casts ca ON ca.id = m.sender_cast_id
		LEFT JOIN gifts gf ON gf.id = m.gift_id
		WHERE m.id = $1
	`

	var (
		msg            domain.Message
		gID, caID      *int64
		gNick, gAvatar *string
		caNick, caAvat *string
		gfID           *int64
		gfName, gfIcon *string
		gfPoints       *int
	)
	err := p.db.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.ChatID, &msg.GroupID, &msg.SenderGuestID, &msg.SenderCastID,
		&msg.Text, &msg.Image, &msg.GiftID, &msg.RecipientType, &msg.CreatedAt,
		&gID, &gNick, &gAvatar,
		&caID, &caNick, &caAvat,
		&gfID, &gfName, &gfIcon, &gfPoints,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get message %d: %w", id, err)
	}

	if gID != nil {
		msg.Guest = &domain.Guest{ID: *gID}
		if gNick != nil {
			msg.Guest.Nickname = *gNick
		}
		if gAvatar != nil {
			msg.Guest.Avatar = *gAvatar
		}
	}
	if caID != nil {
		msg.Cast = &domain.Cast{ID: *caID}
		if caNick != nil {
			msg.Cast.Nickname = *caNick
		}
		if caAvat != nil {
			msg.Cast.Avatar = *caAvat
		}
	}
	if gfID != nil {
		msg.Gift = &domain.Gift{ID: *gfID}
		if gfName != nil {
			msg.Gift.Name = *gfName
		}
		if gfIcon != nil {
			msg.Gift.Icon = *gfIcon
		}
		if gfPoints != nil {
			msg.Gift.Points = *gfPoints
		}
	}

	if msg.ChatID != nil {
		chat, err := p.GetChat(ctx, *msg.ChatID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		msg.Chat = chat
	}
	return &msg, nil
}

func (p *pgRepo) GetGroup(ctx context.Context, id int64) (*domain.ChatGroup, error) {
	query := `
		SELECT cg.id, cg.name, cg.reservation_id, cg.cast_ids, cg.created_at,
		       r.id, r.guest_id, r.scheduled_at, r.location, r.duration,
		       r.created_at, r.updated_at
		FROM chat_groups cg
		LEFT JOIN reservations r ON r.id = cg.reservation_id
		WHERE cg.id = $1
	`

	var (
		group      domain.ChatGroup
		rID        *int64
		rGuestID   *int64
		rSchedAt   *time.Time
		rLocation  *string
		rDuration  *int
		rCreatedAt *time.Time
		rUpdatedAt *time.Time
	)
	err := p.db.QueryRow(ctx, query, id).Scan(
		&group.ID, &group.Name, &group.ReservationID, &group.CastIDs, &group.CreatedAt,
		&rID, &rGuestID, &rSchedAt, &rLocation, &rDuration, &rCreatedAt, &rUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get group %d: %w", id, err)
	}

	if rID != nil {
		res := &domain.Reservation{ID: *rID, GuestID: rGuestID}
		if rSchedAt != nil {
			res.ScheduledAt = *rSchedAt
		}
		if rLocation != nil {
			res.Location = *rLocation
		}
		if rDuration != nil {
			res.Duration = *rDuration
		}
		if rCreatedAt != nil {
			res.CreatedAt = *rCreatedAt
		}
		if rUpdatedAt != nil {
			res.UpdatedAt = *rUpdatedAt
		}
		group.Reservation = res
	}
	return &group, nil
}

func (p *pgRepo) GetReservation(ctx context.Context, id int64) (*domain.Reservation, error) {
	query := `
		SELECT id, guest_id, scheduled_at, location, duration, created_at, updated_at
		FROM reservations
		WHERE id = $1
	`

	var res domain.Reservation
	err := p.db.QueryRow(ctx, query, id).Scan(
		&res.ID, &res.GuestID, &res.ScheduledAt, &res.Location, &res.Duration,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reservation %d: %w", id, err)
	}
	return &res, nil
}

func (p *pgRepo) GetNotification(ctx context.Context, id int64) (*domain.Notification, error) {
	query := `
		SELECT id, user_id, user_type, type, title, body, data, read_at, created_at
		FROM notifications
		WHERE id = $1
	`

	var (
		n    domain.Notification
		data []byte
	)
	err := p.db.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.UserID, &n.UserType, &n.Type, &n.Title, &n.Body, &data,
		&n.ReadAt, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get notification %d: %w", id, err)
	}
	if len(data) > 0 {
		_ = json.Unmarshal(data, &n.Data)
	}
	return &n, nil
}
