package firehose

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	cursorServiceName  = "jetstream"
	cursorSaveInterval = 5 * time.Second
)

// wantedCollections is the set of AT Proto collection NSIDs this subscriber
// requests from Jetstream. Only engagement events matter for snapshot
// freshness.
var wantedCollections = []string{
	"app.bsky.feed.like",
	"app.bsky.feed.repost",
}

// Invalidator marks the cached snapshot stale when live engagement on the
// account's posts is observed.
type Invalidator interface {
	Invalidate()
}

// CursorStore persists the firehose cursor so the subscriber resumes after
// a restart instead of replaying or skipping events.
type CursorStore interface {
	GetCursor(ctx context.Context, service string) (int64, error)
	UpdateCursor(ctx context.Context, service string, cursor int64) error
}

// Subscriber connects to the Jetstream firehose and watches for likes and
// reposts targeting the account's own posts.
type Subscriber struct {
	url        string
	accountDID string
	cache      Invalidator
	cursors    CursorStore
	logger     *slog.Logger
	onMatch    func() // optional hook, used for metrics
}

// NewSubscriber creates a new firehose subscriber for the given account DID.
func NewSubscriber(
	firehoseURL string,
	accountDID string,
	cache Invalidator,
	cursors CursorStore,
	logger *slog.Logger,
) *Subscriber {
	return &Subscriber{
		url:        firehoseURL,
		accountDID: accountDID,
		cache:      cache,
		cursors:    cursors,
		logger:     logger,
	}
}

// OnMatch registers a hook invoked once per engagement event on own posts.
func (s *Subscriber) OnMatch(fn func()) {
	s.onMatch = fn
}

// Start connects to the firehose and processes events until the context is
// cancelled. It automatically reconnects on transient errors.
func (s *Subscriber) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := s.subscribe(ctx); err != nil {
				s.logger.Error("firehose connection error, reconnecting", "error", err)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(5 * time.Second):
					// backoff before reconnecting
				}
			}
		}
	}
}

func (s *Subscriber) buildURL(cursor int64) string {
	u, _ := url.Parse(s.url)
	q := u.Query()
	for _, c := range wantedCollections {
		q.Add("wantedCollections", c)
	}
	if cursor > 0 {
		q.Set("cursor", fmt.Sprintf("%d", cursor))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *Subscriber) subscribe(ctx context.Context) error {
	cursor, err := s.cursors.GetCursor(ctx, cursorServiceName)
	if err != nil {
		s.logger.Warn("failed to load cursor, starting from live", "error", err)
	}

	wsURL := s.buildURL(cursor)
	s.logger.Info("connecting to firehose", "url", wsURL)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial firehose: %w", err)
	}
	defer conn.Close()

	s.logger.Info("connected to firehose")

	lastCursorSave := time.Now()
	var latestCursor int64
	var eventsReceived, engagementsMatched int64
	lastStatsLog := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		event, err := parseEvent(message)
		if err != nil {
			s.logger.Error("failed to parse event", "error", err)
			continue
		}

		eventsReceived++
		latestCursor = event.TimeUS

		if event.Kind == "commit" && event.Commit != nil {
			if s.handleCommit(event) {
				engagementsMatched++
			}
		}

		// Log stats every 30 seconds
		if time.Since(lastStatsLog) >= 30*time.Second {
			s.logger.Info("firehose stats",
				"events_received", eventsReceived,
				"engagements_matched", engagementsMatched,
			)
			lastStatsLog = time.Now()
		}

		// Periodically save cursor
		if time.Since(lastCursorSave) >= cursorSaveInterval {
			if err := s.cursors.UpdateCursor(ctx, cursorServiceName, latestCursor); err != nil {
				s.logger.Error("failed to save cursor", "error", err)
			} else {
				lastCursorSave = time.Now()
			}
		}
	}
}

// handleCommit reports whether the commit is a new like or repost of one of
// the account's own posts, invalidating the snapshot cache when it is.
func (s *Subscriber) handleCommit(event *jetstreamEvent) bool {
	commit := event.Commit
	if commit.Operation != "create" || commit.Record == nil {
		return false
	}

	subject := commit.Record.Subject.URI
	if !strings.HasPrefix(subject, "at://"+s.accountDID+"/") {
		return false
	}

	s.logger.Info("live engagement on own post",
		"collection", commit.Collection,
		"subject", subject,
		"actor", event.DID,
	)
	s.cache.Invalidate()
	if s.onMatch != nil {
		s.onMatch()
	}
	return true
}

func parseEvent(data []byte) (*jetstreamEvent, error) {
	var raw struct {
		DID    string          `json:"did"`
		TimeUS int64           `json:"time_us"`
		Kind   string          `json:"kind"`
		Commit json.RawMessage `json:"commit,omitempty"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}

	event := &jetstreamEvent{
		DID:    raw.DID,
		TimeUS: raw.TimeUS,
		Kind:   raw.Kind,
	}

	if raw.Kind == "commit" && len(raw.Commit) > 0 {
		var rc struct {
			Rev        string          `json:"rev"`
			Operation  string          `json:"operation"`
			Collection string          `json:"collection"`
			RKey       string          `json:"rkey"`
			Record     json.RawMessage `json:"record,omitempty"`
			CID        string          `json:"cid"`
		}
		if err := json.Unmarshal(raw.Commit, &rc); err != nil {
			return nil, fmt.Errorf("unmarshal commit: %w", err)
		}

		commit := &jetstreamCommit{
			Rev:        rc.Rev,
			Operation:  rc.Operation,
			Collection: rc.Collection,
			RKey:       rc.RKey,
			CID:        rc.CID,
		}

		if len(rc.Record) > 0 && strings.HasPrefix(rc.Collection, "app.bsky.feed.") {
			var record engagementRecord
			if err := json.Unmarshal(rc.Record, &record); err != nil {
				return nil, fmt.Errorf("unmarshal engagement record: %w", err)
			}
			commit.Record = &record
		}

		event.Commit = commit
	}

	return event, nil
}
