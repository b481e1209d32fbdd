// Package slug derives URL-safe post identifiers from titles.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// MaxBaseLen caps the title-derived part of a slug.
const MaxBaseLen = 80

var (
	disallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	spaces     = regexp.MustCompile(`\s+`)
)

// Generator appends a base-36 millisecond suffix to the title-derived base.
// Suffixes are strictly increasing per Generator, so slugs never repeat within a process.
type Generator struct {
	now  func() time.Time
	last atomic.Int64
}

// New returns a generator using the wall clock.
func New() *Generator { return NewWithClock(time.Now) }

// NewWithClock returns a generator using now as its time source.
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Generate returns the slug for title.
func (g *Generator) Generate(title string) string {
	suffix := strconv.FormatInt(g.nextStamp(), 36)
	base := Base(title)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

func (g *Generator) nextStamp() int64 {
	ms := g.now().UnixMilli()
	for {
		prev := g.last.Load()
		next := ms
		if next <= prev {
			next = prev + 1
		}
		if g.last.CompareAndSwap(prev, next) {
			return next
		}
	}
}

// Base lowercases title, drops characters outside [a-z0-9 whitespace -], joins words with
// single hyphens and truncates to MaxBaseLen.
func Base(title string) string {
	s := strings.ToLower(title)
	s = disallowed.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = spaces.ReplaceAllString(s, "-")
	if len(s) > MaxBaseLen {
		s = s[:MaxBaseLen]
	}
	return s
}
