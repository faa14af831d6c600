// Package utils provides utility functions for the application.
package utils

import (
	"fmt"
	"strings"
	"time"
)

func ToPtr[T any](v T) *T {
	return &v
}

// Mention renders a user mention for the given member ID.
func Mention(memberID string) string {
	return fmt.Sprintf("<@%s>", memberID)
}

// RoleMention renders a role mention for the given role ID.
func RoleMention(roleID string) string {
	return fmt.Sprintf("<@&%s>", roleID)
}

// ChannelMention renders a channel mention for the given channel ID.
func ChannelMention(channelID string) string {
	return fmt.Sprintf("<#%s>", channelID)
}

// RelativeTimestamp renders a Discord relative timestamp ("in 3 days") for
// the given instant.
func RelativeTimestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}

// MentionChunkSize computes how many mentions fit in one message alongside
// baseMessage, capped at RelanceMaxMentionsPerMessage. The overhead accounts
// for the "\n\n" separator plus the message itself.
func MentionChunkSize(baseMessage string) int {
	overhead := 4 + len(baseMessage)
	maxMentions := (DiscordMessageLimit - overhead) / DiscordMentionLength
	if maxMentions > RelanceMaxMentionsPerMessage {
		return RelanceMaxMentionsPerMessage
	}
	if maxMentions < 1 {
		return 1
	}
	return maxMentions
}

// ChunkStrings splits items into consecutive slices of at most size elements.
func ChunkStrings(items []string, size int) [][]string {
	if size < 1 {
		size = 1
	}
	var chunks [][]string
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[i:end])
	}
	return chunks
}

// TruncateList joins items with newlines and truncates the result to the
// embed description limit, cutting on item boundaries so no entry is ever
// split. The second return value reports truncation.
func TruncateList(items []string) (string, bool) {
	list := strings.Join(items, "\n")
	if len(list) <= DiscordEmbedDescriptionLimit {
		return list, false
	}

	size := 0
	kept := 0
	for _, item := range items {
		next := size + len(item)
		if kept > 0 {
			next++ // newline
		}
		if next > DiscordEmbedDescriptionLimit {
			break
		}
		size = next
		kept++
	}
	return strings.Join(items[:kept], "\n"), true
}
