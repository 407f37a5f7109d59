// internal/app/backfill/walker.go

// Package backfill replays a channel's recent history through the
// ingest pipeline when the bot joins it, so attendance posted before
// the bot arrived still gets recorded.
package backfill

import (
	"context"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rollcallhq/rollcall/internal/app/ingest"
	"github.com/rollcallhq/rollcall/internal/app/system/chat"
	"github.com/rollcallhq/rollcall/internal/domain/models"
)

// Markers records which channels have already been backfilled.
type Markers interface {
	Seen(ctx context.Context, tenantID, channelID string) (bool, error)
	Mark(ctx context.Context, tenantID, channelID string) error
}

// Walker pages through channel history and replays it.
type Walker struct {
	Chat     chat.Client
	Pipeline *ingest.Pipeline
	Markers  Markers

	// WindowDays bounds the look-back. Zero means the default week.
	WindowDays int

	Log *zap.Logger
}

const defaultWindowDays = 7

// Run backfills one channel and returns how many messages produced
// attendance changes.
//
// The walk happens at most once per channel: an existing marker
// short-circuits, and the marker is set unconditionally at the end even
// when individual messages failed. Failures are logged, not retried;
// a half-broken history is not worth replaying confirmations into a
// channel twice.
func (w *Walker) Run(ctx context.Context, tenantID, channelID string) (int, error) {
	seen, err := w.Markers.Seen(ctx, tenantID, channelID)
	if err != nil {
		return 0, err
	}
	if seen {
		w.Log.Info("backfill: channel already processed",
			zap.String("tenant", tenantID),
			zap.String("channel", channelID))
		return 0, nil
	}

	msgs, err := w.collect(ctx, tenantID, channelID)
	if err != nil {
		return 0, err
	}

	// Sort before processing: a later message can correct an earlier
	// one, so applying in delivery order (newest first) would leave
	// the original as the final state.
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].TSFloat() < msgs[j].TSFloat()
	})

	processed := 0
	for _, m := range msgs {
		m.TenantID = tenantID
		m.ChannelID = channelID
		res, err := w.Pipeline.Process(ctx, m, false)
		if err != nil {
			w.Log.Warn("backfill: message failed",
				zap.String("tenant", tenantID),
				zap.String("channel", channelID),
				zap.String("ts", m.TS),
				zap.Error(err))
			continue
		}
		if res.Applied() {
			processed++
		}
	}

	if err := w.Markers.Mark(ctx, tenantID, channelID); err != nil {
		return processed, err
	}
	w.Log.Info("backfill: channel done",
		zap.String("tenant", tenantID),
		zap.String("channel", channelID),
		zap.Int("messages", len(msgs)),
		zap.Int("processed", processed))
	return processed, nil
}

// collect accumulates every page inside the look-back window before
// anything is processed, because pages arrive newest first.
func (w *Walker) collect(ctx context.Context, tenantID, channelID string) ([]models.Message, error) {
	days := w.WindowDays
	if days <= 0 {
		days = defaultWindowDays
	}
	oldest := strconv.FormatInt(time.Now().AddDate(0, 0, -days).Unix(), 10) + ".000000"

	var msgs []models.Message
	cursor := ""
	for {
		page, err := w.Chat.History(ctx, tenantID, channelID, oldest, cursor)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, page.Messages...)
		if page.NextCursor == "" {
			return msgs, nil
		}
		cursor = page.NextCursor
	}
}
