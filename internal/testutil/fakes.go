package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rollcallhq/rollcall/internal/app/system/chat"
	"github.com/rollcallhq/rollcall/internal/app/system/extract"
	"github.com/rollcallhq/rollcall/internal/domain/models"
)

// FakeChat is an in-memory chat.Client recording everything posted.
type FakeChat struct {
	mu sync.Mutex

	Posts      []FakePost
	Ephemerals []FakePost
	Updates    []FakePost

	// Emails maps user id to profile email for UserEmail lookups.
	Emails map[string]string

	// HistoryPages is returned page by page, keyed by cursor ("" is the
	// first page).
	HistoryPages map[string]chat.HistoryPage

	// Err, when set, is returned from every call.
	Err error

	BotID string

	nextTS int
}

// FakePost is one recorded outbound message.
type FakePost struct {
	TenantID  string
	ChannelID string
	ThreadTS  string
	UserID    string
	TS        string
	Text      string
}

func NewFakeChat() *FakeChat {
	return &FakeChat{
		Emails:       map[string]string{},
		HistoryPages: map[string]chat.HistoryPage{},
		BotID:        "B-bot",
	}
}

func (f *FakeChat) PostMessage(ctx context.Context, tenantID, channelID, threadTS, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	f.nextTS++
	ts := fmt.Sprintf("%d.%06d", time.Now().Unix(), f.nextTS)
	f.Posts = append(f.Posts, FakePost{TenantID: tenantID, ChannelID: channelID, ThreadTS: threadTS, TS: ts, Text: text})
	return ts, nil
}

func (f *FakeChat) UpdateMessage(ctx context.Context, tenantID, channelID, ts, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Updates = append(f.Updates, FakePost{TenantID: tenantID, ChannelID: channelID, TS: ts, Text: text})
	return nil
}

func (f *FakeChat) PostEphemeral(ctx context.Context, tenantID, channelID, userID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Ephemerals = append(f.Ephemerals, FakePost{TenantID: tenantID, ChannelID: channelID, UserID: userID, Text: text})
	return nil
}

func (f *FakeChat) History(ctx context.Context, tenantID, channelID, oldest, cursor string) (chat.HistoryPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return chat.HistoryPage{}, f.Err
	}
	return f.HistoryPages[cursor], nil
}

func (f *FakeChat) UserEmail(ctx context.Context, tenantID, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	return f.Emails[userID], nil
}

func (f *FakeChat) BotUserID(ctx context.Context, tenantID string) (string, error) {
	return f.BotID, nil
}

// PostTexts returns the text of every recorded PostMessage call.
func (f *FakeChat) PostTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Posts))
	for i, p := range f.Posts {
		out[i] = p.Text
	}
	return out
}

var _ chat.Client = (*FakeChat)(nil)

// FakeExtractor returns canned items per input text.
type FakeExtractor struct {
	// Items maps message text to the items to return. Text not present
	// yields an empty result.
	Items map[string][]extract.Item

	// Err, when set, is returned from every call.
	Err error

	Calls int
}

func (f *FakeExtractor) Extract(ctx context.Context, text string, base time.Time) ([]extract.Item, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Items[text], nil
}

var _ extract.Extractor = (*FakeExtractor)(nil)

// FakeAttendance is an in-memory ingest.AttendanceWriter plus the read
// side the walker tests need.
type FakeAttendance struct {
	mu      sync.Mutex
	Records map[models.AttendanceKey]models.AttendanceRecord

	// UpsertErr, when set, fails every Upsert.
	UpsertErr error
}

func NewFakeAttendance() *FakeAttendance {
	return &FakeAttendance{Records: map[models.AttendanceKey]models.AttendanceRecord{}}
}

func (f *FakeAttendance) Upsert(ctx context.Context, rec models.AttendanceRecord) (models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpsertErr != nil {
		return models.AttendanceRecord{}, f.UpsertErr
	}
	f.Records[rec.Key()] = rec
	return rec, nil
}

func (f *FakeAttendance) DeleteByKey(ctx context.Context, key models.AttendanceKey) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Records[key]; !ok {
		return 0, nil
	}
	delete(f.Records, key)
	return 1, nil
}

// Get returns the stored record for key, if any.
func (f *FakeAttendance) Get(key models.AttendanceKey) (models.AttendanceRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.Records[key]
	return rec, ok
}
