package domain

import "time"

// handleSet builds a membership set of handles from the follow graph.
func handleSet(accounts []Follower) map[string]struct{} {
	set := make(map[string]struct{}, len(accounts))
	for _, a := range accounts {
		set[a.Handle] = struct{}{}
	}
	return set
}

// EventsFromFeed normalizes the account owner's feed posts into Event rows.
// Entries authored by other handles (reposts surfaced in the feed) are
// skipped; they are not the owner's activity. Returns a ValidationError if
// any kept row violates the Event invariants.
func EventsFromFeed(feed []Post, ownerHandle string) ([]Event, error) {
	events := make([]Event, 0, len(feed))
	for _, p := range feed {
		if p.AuthorHandle != ownerHandle {
			continue
		}
		events = append(events, Event{
			Timestamp:     p.IndexedAt,
			Type:          EventPost,
			PostURI:       p.URI,
			PostTimestamp: p.IndexedAt,
			ActorHandle:   p.AuthorHandle,
			LikeCount:     p.LikeCount,
			ReplyCount:    p.ReplyCount,
			RepostCount:   p.RepostCount,
			QuoteCount:    p.QuoteCount,
			BookmarkCount: p.BookmarkCount,
			EmbedType:     p.Embed.Type,
		})
	}
	if err := ValidateEvents(events); err != nil {
		return nil, err
	}
	return events, nil
}

// EventsFromLikes normalizes like records into Event rows, resolving the
// actor's position in the follow graph by handle membership.
func EventsFromLikes(likes []Like, follows, followers []Follower) ([]Event, error) {
	following := handleSet(follows)
	followedBy := handleSet(followers)

	events := make([]Event, 0, len(likes))
	for _, l := range likes {
		_, isFollowing := following[l.ActorHandle]
		_, isFollower := followedBy[l.ActorHandle]
		events = append(events, Event{
			Timestamp:     l.IndexedAt,
			Type:          EventLike,
			PostURI:       l.PostURI,
			PostTimestamp: l.PostIndexedAt,
			ActorHandle:   l.ActorHandle,
			IsFollowing:   isFollowing,
			IsFollower:    isFollower,
		})
	}
	if err := ValidateEvents(events); err != nil {
		return nil, err
	}
	return events, nil
}

// EventsFromReposts normalizes repost records into Event rows.
func EventsFromReposts(reposts []Repost, follows, followers []Follower) ([]Event, error) {
	likes := make([]Like, len(reposts))
	for i, r := range reposts {
		likes[i] = Like(r)
	}
	events, err := EventsFromLikes(likes, follows, followers)
	if err != nil {
		return nil, err
	}
	for i := range events {
		events[i].Type = EventRepost
	}
	return events, nil
}

// Snapshot is one immutable fetch of everything the dashboard renders from.
// Aggregations read it and never write it; a new fetch produces a new
// Snapshot.
type Snapshot struct {
	Profile   Profile    `json:"profile"`
	Feed      []Post     `json:"feed"`
	Events    []Event    `json:"events"`
	Followers []Follower `json:"followers"`
	Follows   []Follower `json:"follows"`
	FetchedAt time.Time  `json:"fetchedAt"`
}

// EventsOfType returns the snapshot rows matching any of the given types, as
// a fresh slice so callers cannot alias the snapshot's backing array.
func (s *Snapshot) EventsOfType(types ...EventType) []Event {
	wanted := make(map[EventType]struct{}, len(types))
	for _, t := range types {
		wanted[t] = struct{}{}
	}
	var out []Event
	for _, ev := range s.Events {
		if _, ok := wanted[ev.Type]; ok {
			out = append(out, ev)
		}
	}
	return out
}
