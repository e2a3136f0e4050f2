// Package idgen produces note identifiers and millisecond timestamps.
package idgen

import (
	"time"

	"github.com/google/uuid"
)

// Generator hands out ids and timestamps. The zero value uses random UUIDs
// and the wall clock.
type Generator struct {
	IDFunc func() string
	Clock  func() time.Time
}

var Default = &Generator{}

// NewID returns an identifier that is unique for the lifetime of the process
// with overwhelming probability.
func (g *Generator) NewID() string {
	if g != nil && g.IDFunc != nil {
		return g.IDFunc()
	}
	return uuid.NewString()
}

// Now returns the current time in milliseconds since the Unix epoch.
func (g *Generator) Now() int64 {
	if g != nil && g.Clock != nil {
		return g.Clock().UnixMilli()
	}
	return time.Now().UnixMilli()
}
