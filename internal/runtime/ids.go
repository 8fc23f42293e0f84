package runtime

import (
	"strconv"
	"time"
)

// IDGenerator hands out step identifiers.
// The step list rejects duplicates, so a generator only needs to be mostly unique.
type IDGenerator interface {
	NextID() string
}

// IDFunc adapts a plain function to IDGenerator.
type IDFunc func() string

func (f IDFunc) NextID() string { return f() }

// Sequence is the default generator: a monotonic counter rendered in decimal.
// It is not safe for concurrent use; the App serialises access.
type Sequence struct {
	next int64
}

// NewSequence starts a sequence at seed. A seed <= 0 uses the current Unix milliseconds.
func NewSequence(seed int64) *Sequence {
	if seed <= 0 {
		seed = time.Now().UnixMilli()
	}
	return &Sequence{next: seed}
}

func (s *Sequence) NextID() string {
	id := strconv.FormatInt(s.next, 10)
	s.next++
	return id
}

// Peek returns the value the next call to NextID will use.
func (s *Sequence) Peek() int64 {
	return s.next
}
