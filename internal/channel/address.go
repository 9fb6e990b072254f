package channel

import "fmt"

// Address is a pub/sub topic key of the form "{audience}.{id}". Addresses
// are derived fresh on every event and never cached.
type Address string

// Audience prefixes. These are part of the wire contract with clients.
const (
	AudienceGuest       = "guest"
	AudienceCast        = "cast"
	AudienceUser        = "user"
	AudienceChat        = "chat"
	AudienceGroup       = "group"
	AudienceReservation = "reservation"
)

func Guest(id int64) Address       { return addr(AudienceGuest, id) }
func Cast(id int64) Address        { return addr(AudienceCast, id) }
func User(id int64) Address        { return addr(AudienceUser, id) }
func Chat(id int64) Address        { return addr(AudienceChat, id) }
func Group(id int64) Address       { return addr(AudienceGroup, id) }
func Reservation(id int64) Address { return addr(AudienceReservation, id) }

// ForUser builds an address from an explicit audience string, used when
// the caller already knows the principal ("guest"/"cast"/"user").
func ForUser(userType string, id int64) Address { return addr(userType, id) }

func addr(audience string, id int64) Address {
	return Address(fmt.Sprintf("%s.%d", audience, id))
}

func (a Address) String() string { return string(a) }

// Dedupe removes repeated addresses preserving first-occurrence order.
func Dedupe(in []Address) []Address {
	seen := make(map[Address]struct{}, len(in))
	out := make([]Address, 0, len(in))
	for _, a := range in {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
