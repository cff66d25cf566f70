package types

import "strconv"

// RunID identifies a GitHub Actions workflow run
type RunID int64

// String returns the decimal form used as a cache key
func (x RunID) String() string {
	return strconv.FormatInt(int64(x), 10)
}

// MessageID identifies a message posted to the chat platform
type MessageID string

func (x MessageID) String() string { return string(x) }

// ChannelID identifies a chat channel
type ChannelID string

func (x ChannelID) String() string { return string(x) }

// CommitSHA is a full git commit hash
type CommitSHA string

func (x CommitSHA) String() string { return string(x) }
