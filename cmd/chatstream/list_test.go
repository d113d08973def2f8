package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/chatstream"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteConversations(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		writeConversations(&buf, nil)
		assert.Equal(t, "No conversations.\n", buf.String())
	})

	t.Run("names are aligned by display width", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		writeConversations(&buf, []chatstream.Conversation{
			{ID: "c1", Name: "short", Messages: make([]chatstream.Message, 2), UpdatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)},
			{ID: "c2", Name: strings.Repeat("漢字", 20)},
		})

		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "short")
		assert.Contains(t, lines[0], "2024-05-01 12:00")
		assert.Contains(t, lines[1], "…")
		assert.True(t, strings.HasSuffix(lines[1], "-"))

		// The name column is padded to a fixed display width, then count and date.
		assert.Equal(t, nameWidth+2+3+2+16, runewidth.StringWidth(strings.TrimPrefix(lines[0], "c1  ")))
		assert.Equal(t, nameWidth+2+3+2+1, runewidth.StringWidth(strings.TrimPrefix(lines[1], "c2  ")))
	})
}
