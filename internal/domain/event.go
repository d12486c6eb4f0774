package domain

import (
	"fmt"
	"time"
)

// EventType discriminates the kind of activity an Event row records.
type EventType string

const (
	EventPost   EventType = "post"
	EventLike   EventType = "like"
	EventRepost EventType = "repost"
)

// Event is the uniform row shape every analytics function consumes. Posts,
// likes and reposts are all normalized into this shape with a common
// timestamp and a type discriminator so the aggregators never branch on the
// raw record kind.
type Event struct {
	// Timestamp is when the activity itself happened (the post's index time
	// for posts, the engagement's index time for likes and reposts).
	Timestamp time.Time `json:"timestamp"`

	Type EventType `json:"type"`

	// PostURI identifies the post this event belongs to. For a post event it
	// is the post itself.
	PostURI string `json:"postUri"`

	// PostTimestamp is when the targeted post was indexed. Never after
	// Timestamp: an engagement cannot precede the post it targets.
	PostTimestamp time.Time `json:"postTimestamp"`

	ActorHandle string `json:"actorHandle"`

	IsFollowing bool `json:"isFollowing"`
	IsFollower  bool `json:"isFollower"`

	LikeCount     int `json:"likeCount"`
	ReplyCount    int `json:"replyCount"`
	RepostCount   int `json:"repostCount"`
	QuoteCount    int `json:"quoteCount"`
	BookmarkCount int `json:"bookmarkCount"`

	EmbedType EmbedType `json:"embedType,omitempty"`
}

// ValidationError reports a malformed event row. Batches containing such
// rows are rejected whole rather than silently filtered, because dropped
// rows corrupt chart totals without any visible signal.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid event at row %d: field %q %s", e.Index, e.Field, e.Reason)
}

// ValidateEvents checks the Event invariants over a batch: every row has a
// timestamp, a type, and a post timestamp no later than the event timestamp.
func ValidateEvents(events []Event) error {
	for i, ev := range events {
		if ev.Timestamp.IsZero() {
			return &ValidationError{Index: i, Field: "timestamp", Reason: "is missing"}
		}
		switch ev.Type {
		case EventPost, EventLike, EventRepost:
		default:
			return &ValidationError{Index: i, Field: "type", Reason: fmt.Sprintf("has unknown value %q", ev.Type)}
		}
		if !ev.PostTimestamp.IsZero() && ev.PostTimestamp.After(ev.Timestamp) {
			return &ValidationError{Index: i, Field: "postTimestamp", Reason: "is after the event timestamp"}
		}
	}
	return nil
}
