package interfaces

import (
	"context"

	"github.com/m-mizutani/ci-preview/pkg/domain/model"
	"github.com/m-mizutani/ci-preview/pkg/domain/types"
)

// ChatClient defines operations against the chat platform
type ChatClient interface {
	// SendMessage posts msg to channel and returns the new message id
	SendMessage(ctx context.Context, channel types.ChannelID, msg *model.ChatMessage) (types.MessageID, error)

	// EditMessage replaces the content of an existing message
	EditMessage(ctx context.Context, channel types.ChannelID, id types.MessageID, msg *model.ChatMessage) error

	// FetchMessage retrieves an existing message
	FetchMessage(ctx context.Context, channel types.ChannelID, id types.MessageID) (*model.PostedMessage, error)

	// ResolveEmoji converts a configured emoji identifier into the
	// inline form the platform renders in message text
	ResolveEmoji(ctx context.Context, id string) (string, error)
}
