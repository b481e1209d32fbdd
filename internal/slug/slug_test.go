package slug

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var slugRe = regexp.MustCompile(`^[a-z0-9-]{1,90}$`)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestBase(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Hello World":                 "hello-world",
		"  Agents   & Tools: 2026!  ": "agents-tools-2026",
		"Über-cool\tLLM\nnotes":       "ber-cool-llm-notes",
		"!!!":                         "",
		"already-hyphenated title":    "already-hyphenated-title",
	}
	for in, want := range cases {
		require.Equal(t, want, Base(in), "Base(%q)", in)
	}

	long := strings.Repeat("a", 200)
	require.Len(t, Base(long), MaxBaseLen)
}

func TestGenerate_Format(t *testing.T) {
	t.Parallel()

	at := time.UnixMilli(1_700_000_000_000)
	g := NewWithClock(fixedClock(at))

	s := g.Generate("Why Agents Write")
	require.Equal(t, "why-agents-write-"+strconv.FormatInt(at.UnixMilli(), 36), s)
	require.Regexp(t, slugRe, s)

	only := g.Generate("???")
	require.Regexp(t, slugRe, only)
	require.False(t, strings.HasPrefix(only, "-"))

	long := g.Generate(strings.Repeat("word ", 100))
	require.Regexp(t, slugRe, long)
}

func TestGenerate_SameTitleSameInstantStillUnique(t *testing.T) {
	t.Parallel()

	g := NewWithClock(fixedClock(time.UnixMilli(1_700_000_000_000)))
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		s := g.Generate("Same Title")
		require.False(t, seen[s], "duplicate slug %s", s)
		seen[s] = true
	}
}

func TestGenerate_ConcurrentUnique(t *testing.T) {
	t.Parallel()

	g := New()
	const n = 64
	out := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i] = g.Generate("Concurrent")
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, s := range out {
		require.False(t, seen[s], "duplicate slug %s", s)
		seen[s] = true
	}
}
