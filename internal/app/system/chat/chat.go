// internal/app/system/chat/chat.go

// Package chat defines the contract with the chat platform the bot
// lives in. The core only ever talks to the platform through Client, so
// handlers stay testable and the platform's SDK never leaks inward.
package chat

import (
	"context"

	"github.com/rollcallhq/rollcall/internal/domain/models"
)

// HistoryPage is one page of channel history. The source API returns
// messages newest-first and paginates with an opaque cursor; an empty
// NextCursor ends the walk.
type HistoryPage struct {
	Messages   []models.Message
	NextCursor string
}

// Client is the outbound surface of the chat platform used by the
// processor's handlers and the backfill walker.
type Client interface {
	// PostMessage posts text to a channel, optionally threaded under
	// threadTS. Returns the new message's timestamp.
	PostMessage(ctx context.Context, tenantID, channelID, threadTS, text string) (string, error)

	// UpdateMessage rewrites an existing message in place.
	UpdateMessage(ctx context.Context, tenantID, channelID, ts, text string) error

	// PostEphemeral sends text visible only to one user. Used to
	// surface validation and authorization failures discovered after
	// the trigger was already acknowledged.
	PostEphemeral(ctx context.Context, tenantID, channelID, userID, text string) error

	// History fetches one page of a channel's messages no older than
	// oldest (a platform timestamp string; empty means no bound).
	History(ctx context.Context, tenantID, channelID, oldest, cursor string) (HistoryPage, error)

	// UserEmail resolves a user's email for identity matching. A
	// missing email is ("", nil), not an error.
	UserEmail(ctx context.Context, tenantID, userID string) (string, error)

	// BotUserID returns the bot's own user id in the tenant, used to
	// detect self-originated events.
	BotUserID(ctx context.Context, tenantID string) (string, error)
}
