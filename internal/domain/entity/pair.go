package entity

import (
	"fmt"

	"turtlecoin/pkg/errors"
)

// Pair is the canonical identity of a room: the two participant ids ordered
// so that Left < Right. Every external caller may pass the ids in any order;
// only the canonical form is stored.
type Pair struct {
	Left  int64
	Right int64
}

// NewPair canonicalizes two user ids into a Pair.
func NewPair(a, b int64) (Pair, error) {
	if a <= 0 || b <= 0 {
		return Pair{}, errors.InvalidParticipants("user ids must be positive")
	}
	if a == b {
		return Pair{}, errors.InvalidParticipants("cannot open a room with yourself")
	}
	if a < b {
		return Pair{Left: a, Right: b}, nil
	}
	return Pair{Left: b, Right: a}, nil
}

func (p Pair) Contains(userID int64) bool {
	return userID == p.Left || userID == p.Right
}

// IndexOf returns the positional index of userID (0 for Left, 1 for Right),
// or -1 if the user is not a participant.
func (p Pair) IndexOf(userID int64) int {
	switch userID {
	case p.Left:
		return 0
	case p.Right:
		return 1
	}
	return -1
}

// Other returns the opposite participant of userID.
func (p Pair) Other(userID int64) int64 {
	if userID == p.Left {
		return p.Right
	}
	return p.Left
}

// Key is a stable storage key for the pair.
func (p Pair) Key() string {
	return fmt.Sprintf("%d_%d", p.Left, p.Right)
}
