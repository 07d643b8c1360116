package domain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateSnippet(t *testing.T) {
	t.Run("short snippet unchanged", func(t *testing.T) {
		s := strings.Repeat("a", 150)
		assert.Equal(t, s, TruncateSnippet(s))
	})

	t.Run("exact limit unchanged", func(t *testing.T) {
		s := strings.Repeat("a", SnippetRuneLimit)
		assert.Equal(t, s, TruncateSnippet(s))
	})

	t.Run("long snippet truncated with ellipsis", func(t *testing.T) {
		s := strings.Repeat("a", 250)
		got := TruncateSnippet(s)
		assert.Equal(t, strings.Repeat("a", 200)+"...", got)
		assert.Len(t, got, 203)
	})

	t.Run("counts characters not bytes", func(t *testing.T) {
		s := strings.Repeat("é", 250)
		got := TruncateSnippet(s)
		assert.Equal(t, SnippetRuneLimit+3, utf8.RuneCountInString(got))
		assert.True(t, strings.HasSuffix(got, "..."))
	})
}

func TestTruncateContent(t *testing.T) {
	t.Run("under cap unchanged", func(t *testing.T) {
		s := strings.Repeat("x", 100)
		assert.Equal(t, s, TruncateContent(s, MaxContentBytes))
	})

	t.Run("over cap truncated to byte budget", func(t *testing.T) {
		s := strings.Repeat("x", MaxContentBytes+500)
		got := TruncateContent(s, MaxContentBytes)
		assert.Len(t, got, MaxContentBytes)
	})

	t.Run("never cuts a multi-byte sequence", func(t *testing.T) {
		// "日" is 3 bytes; a cap of 8 falls mid-rune.
		s := strings.Repeat("日", 4)
		got := TruncateContent(s, 8)
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, strings.Repeat("日", 2), got)
	})

	t.Run("zero limit returns input", func(t *testing.T) {
		assert.Equal(t, "abc", TruncateContent("abc", 0))
	})
}
