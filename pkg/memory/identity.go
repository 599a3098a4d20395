package memory

import "github.com/google/uuid"

// IsDurableIdentity reports whether identity names a durable authenticated
// user. An identity is durable if and only if it is a 36-character
// canonical UUID; anything else, including the empty string, is an
// ephemeral guest identity for which no state is persisted.
//
// Every mutating operation re-checks this gate on entry. Durability is
// never cached or assumed from prior calls.
func IsDurableIdentity(identity string) bool {
	if len(identity) != 36 {
		return false
	}
	_, err := uuid.Parse(identity)
	return err == nil
}
