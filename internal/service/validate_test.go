package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/and161185/neuralpress/internal/errs"
	"github.com/and161185/neuralpress/internal/model"
)

func TestValidatePublish(t *testing.T) {
	t.Parallel()
	ok := strings.Repeat("x", MinContentLen)

	cases := []struct {
		name  string
		req   model.PublishRequest
		field string
		msg   string
	}{
		{"ok", model.PublishRequest{Title: "t", Content: ok}, "", ""},
		{"blank title", model.PublishRequest{Title: "   ", Content: ok}, "title", "title is required and must be under 200 characters."},
		{"long title", model.PublishRequest{Title: strings.Repeat("é", 201), Content: ok}, "title", "title is required and must be under 200 characters."},
		{"title at limit", model.PublishRequest{Title: strings.Repeat("é", 200), Content: ok}, "", ""},
		{"short content", model.PublishRequest{Title: "t", Content: ok[:99]}, "content", "content is required and must be at least 100 characters."},
		{"too many tags", model.PublishRequest{Title: "t", Content: ok, Tags: []string{"a", "b", "c", "d", "e", "f"}}, "tags", "Maximum 5 tags allowed."},
		{"five tags", model.PublishRequest{Title: "t", Content: ok, Tags: []string{"a", "b", "c", "d", "e"}}, "", ""},
		{"long tag accepted", model.PublishRequest{Title: "t", Content: ok, Tags: []string{strings.Repeat("t", 300)}}, "", ""},
		{"title checked first", model.PublishRequest{Content: "x", Tags: make([]string, 9)}, "title", ""},
		{"content before tags", model.PublishRequest{Title: "t", Content: "x", Tags: make([]string, 9)}, "content", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePublish(tc.req)
			if tc.field == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, errs.ErrValidation)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
			if tc.msg != "" {
				assert.Equal(t, tc.msg, ve.Error())
			}
		})
	}
}

func TestReadTimeMinutes(t *testing.T) {
	t.Parallel()
	cases := map[int]int{0: 1, 50: 1, 99: 1, 300: 2, 400: 2, 500: 3, 1000: 5}
	for words, want := range cases {
		assert.Equal(t, want, ReadTimeMinutes(longContent(words)), "words=%d", words)
	}
	assert.Equal(t, 2, ReadTimeMinutes(strings.Repeat("word\n\t ", 400)))
}

func TestExcerpt(t *testing.T) {
	t.Parallel()

	t.Run("supplied wins", func(t *testing.T) {
		assert.Equal(t, "mine", Excerpt("  mine ", "# Heading\nbody"))
	})

	t.Run("supplied truncated", func(t *testing.T) {
		got := Excerpt(strings.Repeat("ж", 250), "")
		assert.Equal(t, MaxExcerptLen+3, utf8.RuneCountInString(got))
		assert.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("derived strips headings and bold", func(t *testing.T) {
		got := Excerpt("", "# Title\n## Sub\nSome **bold** and __strong__ text.")
		assert.Equal(t, "Some bold and strong text....", got)
	})

	t.Run("derived truncated", func(t *testing.T) {
		got := Excerpt("", strings.Repeat("a", 500))
		assert.Equal(t, strings.Repeat("a", MaxExcerptLen)+"...", got)
	})
}

func TestNormalizeTags(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"a", "b"}, normalizeTags([]string{" a", "", "  ", "b "}))
	assert.Empty(t, normalizeTags(nil))
	assert.NotNil(t, normalizeTags(nil))
}
