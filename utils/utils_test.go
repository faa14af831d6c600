package utils

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMentions(t *testing.T) {
	assert.Equal(t, "<@123>", Mention("123"))
	assert.Equal(t, "<@&456>", RoleMention("456"))
	assert.Equal(t, "<#789>", ChannelMention("789"))

	instant := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, fmt.Sprintf("<t:%d:R>", instant.Unix()), RelativeTimestamp(instant))
}

func TestMentionChunkSize(t *testing.T) {
	tests := []struct {
		name string
		base string
		want int
	}{
		{"short message hits the cap", "Rappel !", RelanceMaxMentionsPerMessage},
		{"long message shrinks the chunk", strings.Repeat("x", 1800), 8},
		{"huge message still fits one mention", strings.Repeat("x", 1999), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MentionChunkSize(tt.base))
		})
	}
}

func TestMentionChunkSizeNeverOverflows(t *testing.T) {
	base := strings.Repeat("x", 1500)
	size := MentionChunkSize(base)

	// worst case message: base + separator + size mentions of max length
	total := len(base) + 4 + size*DiscordMentionLength
	assert.LessOrEqual(t, total, DiscordMessageLimit)
}

func TestChunkStrings(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	chunks := ChunkStrings(items, 2)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, chunks)

	assert.Len(t, ChunkStrings(items, 10), 1)
	assert.Nil(t, ChunkStrings(nil, 3))

	// degenerate size clamps to one per chunk
	assert.Len(t, ChunkStrings(items, 0), 5)
}

func TestTruncateList(t *testing.T) {
	t.Run("short list untouched", func(t *testing.T) {
		out, truncated := TruncateList([]string{"<@1>", "<@2>"})
		assert.False(t, truncated)
		assert.Equal(t, "<@1>\n<@2>", out)
	})

	t.Run("long list cut on item boundary", func(t *testing.T) {
		items := make([]string, 500)
		for i := range items {
			items[i] = fmt.Sprintf("<@%018d>", i)
		}
		out, truncated := TruncateList(items)
		assert.True(t, truncated)
		assert.LessOrEqual(t, len(out), DiscordEmbedDescriptionLimit)
		for _, line := range strings.Split(out, "\n") {
			assert.Regexp(t, `^<@\d{18}>$`, line)
		}
	})
}
