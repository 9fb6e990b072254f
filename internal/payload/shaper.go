package payload

import (
	"fmt"

	"broadcast-service/internal/domain"
)

// Shape builds the single JSON-serializable payload for an event. The same
// value is published verbatim to every resolved channel. Missing relations
// degrade to null/fallback fields; only an absent subject is an error.
func Shape(kind domain.EventKind, s domain.Subject) (interface{}, error) {
	switch kind {
	case domain.MessageSent, domain.GroupMessageSent:
		if s.Message == nil {
			return nil, fmt.Errorf("shape %s: missing message subject", kind)
		}
		return MessageEnvelope{Message: shapeMessage(s.Message)}, nil

	case domain.ChatCreated, domain.ChatListUpdated:
		if s.Chat == nil {
			return nil, fmt.Errorf("shape %s: missing chat subject", kind)
		}
		return ShapeChat(s.Chat), nil

	case domain.ChatGroupCreated:
		if s.Group == nil {
			return nil, fmt.Errorf("shape %s: missing group subject", kind)
		}
		return GroupCreatedView{
			ID:            s.Group.ID,
			Name:          s.Group.Name,
			ReservationID: s.Group.ReservationID,
			CastIDs:       s.Group.CastIDs,
			CreatedAt:     s.Group.CreatedAt,
		}, nil

	case domain.ReservationCreated, domain.ReservationUpdated:
		if s.Reservation == nil {
			return nil, fmt.Errorf("shape %s: missing reservation subject", kind)
		}
		r := s.Reservation
		return ReservationView{
			ID:          r.ID,
			GuestID:     r.GuestID,
			ScheduledAt: r.ScheduledAt,
			Location:    r.Location,
			Duration:    r.Duration,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		}, nil

	case domain.FavoriteToggled:
		data := make(map[string]interface{}, len(s.Extra)+1)
		for k, v := range s.Extra {
			data[k] = v
		}
		// The resolved principal always wins over caller-supplied context.
		data["user_id"] = s.UserID
		return data, nil

	case domain.NotificationSent:
		if s.Notification == nil {
			return nil, fmt.Errorf("shape %s: missing notification subject", kind)
		}
		n := s.Notification
		return NotificationView{
			ID:        n.ID,
			UserID:    n.UserID,
			UserType:  n.UserType,
			Type:      n.Type,
			Title:     n.Title,
			Body:      n.Body,
			Data:      n.Data,
			ReadAt:    n.ReadAt,
			CreatedAt: n.CreatedAt,
		}, nil
	}

	return nil, fmt.Errorf("shape: unknown event kind %q", kind)
}

// ShapeChat denormalizes a chat row for both audiences at once.
func ShapeChat(c *domain.Chat) ChatView {
	v := ChatView{
		ID:            c.ID,
		GuestID:       c.GuestID,
		CastID:        c.CastID,
		ReservationID: c.ReservationID,
		GroupID:       c.GroupID,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		GuestNickname: UnknownGuest,
		CastNickname:  UnknownCast,
		Name:          UnknownName,
		Avatar:        DefaultAvatar,
		IsGroupChat:   c.GroupID != nil,
		LastMessage:   "",
		LastMessageJS: "",
		Unread:        0,
	}

	if c.Guest != nil {
		v.Guest = &UserView{ID: c.Guest.ID, Nickname: c.Guest.Nickname, Avatar: c.Guest.Avatar}
		if c.Guest.Nickname != "" {
			v.GuestNickname = c.Guest.Nickname
		}
		v.GuestAge = c.Guest.BirthYear
	}
	if c.Cast != nil {
		v.Cast = &UserView{ID: c.Cast.ID, Nickname: c.Cast.Nickname, Avatar: c.Cast.Avatar}
		if c.Cast.Nickname != "" {
			v.CastNickname = c.Cast.Nickname
		}
	}

	// Generic name/avatar prefer the guest side, then the cast side.
	switch {
	case c.Guest != nil && c.Guest.Nickname != "":
		v.Name = c.Guest.Nickname
	case c.Cast != nil && c.Cast.Nickname != "":
		v.Name = c.Cast.Nickname
	}
	switch {
	case c.Guest != nil && c.Guest.Avatar != "":
		v.Avatar = c.Guest.Avatar
	case c.Cast != nil && c.Cast.Avatar != "":
		v.Avatar = c.Cast.Avatar
	}

	if c.Group != nil {
		v.Group = &GroupView{ID: c.Group.ID, Name: c.Group.Name}
		name := c.Group.Name
		v.GroupName = &name
	}
	return v
}

func shapeMessage(m *domain.Message) MessageView {
	v := MessageView{
		ID:            m.ID,
		ChatID:        m.ChatID,
		GroupID:       m.GroupID,
		SenderGuestID: m.SenderGuestID,
		SenderCastID:  m.SenderCastID,
		Message:       m.Text,
		Image:         m.Image,
		GiftID:        m.GiftID,
		RecipientType: m.RecipientType,
		CreatedAt:     m.CreatedAt,
	}
	if m.Guest != nil {
		v.Guest = &UserView{ID: m.Guest.ID, Nickname: m.Guest.Nickname, Avatar: m.Guest.Avatar}
	}
	if m.Cast != nil {
		v.Cast = &UserView{ID: m.Cast.ID, Nickname: m.Cast.Nickname, Avatar: m.Cast.Avatar}
	}
	if m.Gift != nil {
		v.Gift = &GiftView{ID: m.Gift.ID, Name: m.Gift.Name, Icon: m.Gift.Icon, Points: m.Gift.Points}
	}
	return v
}
