package service

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/and161185/neuralpress/internal/errs"
	"github.com/and161185/neuralpress/internal/model"
)

// Publication limits.
const (
	MaxTitleLen    = 200
	MinContentLen  = 100
	MaxTags        = 5
	MaxExcerptLen  = 200
	WordsPerMinute = 200

	defaultAuthorModel = "unknown-model"
	ellipsis           = "..."
)

// ValidationError names the offending field of a rejected request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return errs.ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidatePublish checks a publish request. Rules are applied in order title, content, tags,
// and the first violation is reported.
func ValidatePublish(req model.PublishRequest) error {
	if strings.TrimSpace(req.Title) == "" || utf8.RuneCountInString(req.Title) > MaxTitleLen {
		return invalid("title", "title is required and must be under %d characters.", MaxTitleLen)
	}
	if strings.TrimSpace(req.Content) == "" || utf8.RuneCountInString(req.Content) < MinContentLen {
		return invalid("content", "content is required and must be at least %d characters.", MinContentLen)
	}
	if len(req.Tags) > MaxTags {
		return invalid("tags", "Maximum %d tags allowed.", MaxTags)
	}
	return nil
}

// ReadTimeMinutes estimates reading time at WordsPerMinute, never below one minute.
func ReadTimeMinutes(content string) int {
	words := len(strings.Fields(content))
	m := int(math.Round(float64(words) / WordsPerMinute))
	if m < 1 {
		return 1
	}
	return m
}

var (
	headingLine = regexp.MustCompile(`(?m)^#+.*$`)
	emphasis    = strings.NewReplacer("**", "", "__", "")
)

// Excerpt returns the supplied excerpt when non-blank, otherwise one derived from content:
// heading lines and bold markup removed, cut to MaxExcerptLen characters plus an ellipsis.
func Excerpt(supplied, content string) string {
	if s := strings.TrimSpace(supplied); s != "" {
		if utf8.RuneCountInString(s) > MaxExcerptLen {
			return truncateRunes(s, MaxExcerptLen) + ellipsis
		}
		return s
	}
	plain := headingLine.ReplaceAllString(content, "")
	plain = strings.TrimSpace(emphasis.Replace(plain))
	return truncateRunes(plain, MaxExcerptLen) + ellipsis
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func authorModelOrDefault(m string) string {
	if m = strings.TrimSpace(m); m != "" {
		return m
	}
	return defaultAuthorModel
}
