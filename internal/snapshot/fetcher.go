package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pupbiscuit/skydash/internal/domain"
)

// API is the subset of the BlueSky client the fetcher depends on.
type API interface {
	Profile(ctx context.Context, actor string) (domain.Profile, error)
	AuthorFeed(ctx context.Context, actor string) ([]domain.Post, error)
	PostLikes(ctx context.Context, posts []domain.Post, ownerHandle string) ([]domain.Like, error)
	PostReposts(ctx context.Context, posts []domain.Post, ownerHandle string) ([]domain.Repost, error)
	Follows(ctx context.Context, actor string) ([]domain.Follower, error)
	Followers(ctx context.Context, actor string) ([]domain.Follower, error)
}

// Fetcher pulls a complete snapshot from the network: profile, feed,
// per-post engagements, and the follow graph, then normalizes everything
// into event rows. Fetches are sequential; the first failing call aborts the
// whole snapshot so callers never merge partial results.
type Fetcher struct {
	api    API
	did    string
	handle string
	logger *slog.Logger
}

// NewFetcher creates a Fetcher for the given account.
func NewFetcher(api API, did, handle string, logger *slog.Logger) *Fetcher {
	return &Fetcher{api: api, did: did, handle: handle, logger: logger}
}

// Fetch performs one full snapshot fetch.
func (f *Fetcher) Fetch(ctx context.Context) (*domain.Snapshot, error) {
	started := time.Now()

	profile, err := f.api.Profile(ctx, f.did)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	feed, err := f.api.AuthorFeed(ctx, f.did)
	if err != nil {
		return nil, fmt.Errorf("fetch author feed: %w", err)
	}

	likes, err := f.api.PostLikes(ctx, feed, f.handle)
	if err != nil {
		return nil, fmt.Errorf("fetch likes: %w", err)
	}

	reposts, err := f.api.PostReposts(ctx, feed, f.handle)
	if err != nil {
		return nil, fmt.Errorf("fetch reposts: %w", err)
	}

	follows, err := f.api.Follows(ctx, f.did)
	if err != nil {
		return nil, fmt.Errorf("fetch follows: %w", err)
	}

	followers, err := f.api.Followers(ctx, f.did)
	if err != nil {
		return nil, fmt.Errorf("fetch followers: %w", err)
	}

	postEvents, err := domain.EventsFromFeed(feed, f.handle)
	if err != nil {
		return nil, fmt.Errorf("normalize feed: %w", err)
	}
	likeEvents, err := domain.EventsFromLikes(likes, follows, followers)
	if err != nil {
		return nil, fmt.Errorf("normalize likes: %w", err)
	}
	repostEvents, err := domain.EventsFromReposts(reposts, follows, followers)
	if err != nil {
		return nil, fmt.Errorf("normalize reposts: %w", err)
	}

	events := make([]domain.Event, 0, len(postEvents)+len(likeEvents)+len(repostEvents))
	events = append(events, postEvents...)
	events = append(events, likeEvents...)
	events = append(events, repostEvents...)

	f.logger.Info("snapshot fetched",
		"posts", len(postEvents),
		"likes", len(likeEvents),
		"reposts", len(repostEvents),
		"followers", len(followers),
		"duration", time.Since(started),
	)

	return &domain.Snapshot{
		Profile:   profile,
		Feed:      feed,
		Events:    events,
		Followers: followers,
		Follows:   follows,
		FetchedAt: time.Now().UTC(),
	}, nil
}
