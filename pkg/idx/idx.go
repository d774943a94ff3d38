// Package idx issues request ids. They are ULIDs, so log lines sort by the
// time the request arrived.
package idx

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// MaxInboundLen caps a caller-supplied request id.
const MaxInboundLen = 128

// ID is a request id.
type ID string

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a fresh id for the current time.
func New() ID {
	return NewAt(time.Now().UTC())
}

// NewAt returns an id stamped with t. Ids made within one millisecond still
// sort in creation order.
func NewAt(t time.Time) ID {
	mu.Lock()
	defer mu.Unlock()
	return ID(ulid.MustNew(ulid.Timestamp(t), entropy).String())
}

// FromHeader keeps a caller's id when it is safe to echo into headers and
// logs, and mints a new one otherwise.
func FromHeader(v string) ID {
	if v == "" || len(v) > MaxInboundLen {
		return New()
	}
	for i := 0; i < len(v); i++ {
		if !idChar(v[i]) {
			return New()
		}
	}
	return ID(v)
}

func idChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == ':':
		return true
	}
	return false
}

func (id ID) String() string { return string(id) }

// Time is when an id we minted was issued, or zero for foreign ids.
func (id ID) Time() time.Time {
	u, err := ulid.ParseStrict(string(id))
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time()).UTC()
}
