package channel

import "broadcast-service/internal/domain"

// Resolve maps an event to the set of addresses it must reach. A missing
// required id silently drops the corresponding address; resolution never
// fails. The result is deduplicated in first-occurrence order.
func Resolve(kind domain.EventKind, s domain.Subject) []Address {
	var out []Address

	switch kind {
	case domain.MessageSent:
		out = resolveMessageSent(s)
	case domain.GroupMessageSent:
		if s.Message != nil && s.Message.GroupID != nil {
			out = append(out, Group(*s.Message.GroupID))
		}
	case domain.ChatCreated:
		if s.Chat != nil {
			if s.Chat.GuestID != nil {
				out = append(out, Guest(*s.Chat.GuestID))
			}
			if s.Chat.CastID != nil {
				out = append(out, Cast(*s.Chat.CastID))
			}
		}
	case domain.ChatGroupCreated:
		if s.Group != nil {
			if s.Group.Reservation != nil && s.Group.Reservation.GuestID != nil {
				out = append(out, Guest(*s.Group.Reservation.GuestID))
			}
			for _, castID := range s.Group.CastIDs {
				out = append(out, Cast(castID))
			}
		}
	case domain.ChatListUpdated:
		out = append(out, ForUser(s.UserType, s.UserID))
	case domain.ReservationCreated:
		if s.Reservation != nil {
			out = append(out, Reservation(s.Reservation.ID))
			if s.Reservation.GuestID != nil {
				out = append(out, Guest(*s.Reservation.GuestID))
			}
		}
	case domain.ReservationUpdated:
		if s.Reservation != nil {
			out = append(out, Reservation(s.Reservation.ID))
		}
	case domain.FavoriteToggled:
		out = append(out, User(s.UserID))
	case domain.NotificationSent:
		if s.Notification != nil {
			out = append(out, User(s.Notification.UserID))
		}
	}

	return Dedupe(out)
}

// resolveMessageSent targets the chat itself plus the party that did not
// send, so an idle client still gets a badge push on its user channels.
func resolveMessageSent(s domain.Subject) []Address {
	msg := s.Message
	if msg == nil || msg.ChatID == nil {
		return nil
	}
	out := []Address{Chat(*msg.ChatID)}

	chat := s.Chat
	if chat == nil {
		chat = msg.Chat
	}
	if chat == nil {
		return out
	}

	switch {
	case msg.SenderGuestID != nil:
		if chat.CastID != nil {
			out = append(out, User(*chat.CastID), Cast(*chat.CastID))
		}
	case msg.SenderCastID != nil:
		if chat.GuestID != nil {
			out = append(out, User(*chat.GuestID), Guest(*chat.GuestID))
		}
	}
	return out
}
