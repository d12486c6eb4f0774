package bluesky

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/pupbiscuit/skydash/internal/domain"
)

// Every listing below follows the same cursor-until-exhausted loop: request
// a page, append, repeat with the returned cursor until the server omits it.
// A failure on any page aborts the whole fetch; callers never see a
// partially accumulated result.

// Profile fetches the account owner's profile summary.
func (c *Client) Profile(ctx context.Context, actor string) (domain.Profile, error) {
	params := url.Values{"actor": {actor}}

	var resp profileResponse
	if err := c.get(ctx, "/xrpc/app.bsky.actor.getProfile", params, &resp); err != nil {
		return domain.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	createdAt, err := parseTimestamp(resp.CreatedAt)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("profile createdAt: %w", err)
	}

	return domain.Profile{
		DID:            resp.DID,
		Handle:         resp.Handle,
		FollowersCount: resp.FollowersCount,
		FollowsCount:   resp.FollowsCount,
		CreatedAt:      createdAt,
	}, nil
}

// AuthorFeed fetches the actor's full feed (posts and author threads),
// paginating until the cursor is exhausted.
func (c *Client) AuthorFeed(ctx context.Context, actor string) ([]domain.Post, error) {
	var posts []domain.Post
	cursor := ""
	for {
		params := url.Values{
			"actor":  {actor},
			"filter": {"posts_and_author_threads"},
			"limit":  {strconv.Itoa(pageLimit)},
		}
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var resp authorFeedResponse
		if err := c.get(ctx, "/xrpc/app.bsky.feed.getAuthorFeed", params, &resp); err != nil {
			return nil, fmt.Errorf("get author feed: %w", err)
		}

		for _, item := range resp.Feed {
			post, err := item.Post.toDomain()
			if err != nil {
				return nil, fmt.Errorf("parse feed post %s: %w", item.Post.URI, err)
			}
			posts = append(posts, post)
		}

		if resp.Cursor == "" {
			break
		}
		cursor = resp.Cursor
	}
	return posts, nil
}

// PostLikes fetches every like on the given posts, skipping posts not
// authored by ownerHandle (reposted entries in the feed).
func (c *Client) PostLikes(ctx context.Context, posts []domain.Post, ownerHandle string) ([]domain.Like, error) {
	var likes []domain.Like
	for _, post := range posts {
		if post.AuthorHandle != ownerHandle {
			continue
		}

		cursor := ""
		for {
			params := url.Values{
				"uri":   {post.URI},
				"limit": {strconv.Itoa(pageLimit)},
			}
			if cursor != "" {
				params.Set("cursor", cursor)
			}

			var resp likesResponse
			if err := c.get(ctx, "/xrpc/app.bsky.feed.getLikes", params, &resp); err != nil {
				return nil, fmt.Errorf("get likes for %s: %w", post.URI, err)
			}

			for _, like := range resp.Likes {
				indexedAt, err := parseTimestamp(like.IndexedAt)
				if err != nil {
					return nil, fmt.Errorf("like indexedAt on %s: %w", post.URI, err)
				}
				likes = append(likes, domain.Like{
					PostURI:       post.URI,
					PostIndexedAt: post.IndexedAt,
					IndexedAt:     indexedAt,
					ActorHandle:   like.Actor.Handle,
				})
			}

			if resp.Cursor == "" {
				break
			}
			cursor = resp.Cursor
		}
	}
	return likes, nil
}

// PostReposts fetches every repost of the given posts, skipping posts not
// authored by ownerHandle.
func (c *Client) PostReposts(ctx context.Context, posts []domain.Post, ownerHandle string) ([]domain.Repost, error) {
	var reposts []domain.Repost
	for _, post := range posts {
		if post.AuthorHandle != ownerHandle {
			continue
		}

		cursor := ""
		for {
			params := url.Values{
				"uri":   {post.URI},
				"limit": {strconv.Itoa(pageLimit)},
			}
			if cursor != "" {
				params.Set("cursor", cursor)
			}

			var resp repostedByResponse
			if err := c.get(ctx, "/xrpc/app.bsky.feed.getRepostedBy", params, &resp); err != nil {
				return nil, fmt.Errorf("get reposts for %s: %w", post.URI, err)
			}

			for _, actor := range resp.RepostedBy {
				indexedAt, err := parseTimestamp(actor.IndexedAt)
				if err != nil {
					return nil, fmt.Errorf("repost indexedAt on %s: %w", post.URI, err)
				}
				reposts = append(reposts, domain.Repost{
					PostURI:       post.URI,
					PostIndexedAt: post.IndexedAt,
					IndexedAt:     indexedAt,
					ActorHandle:   actor.Handle,
				})
			}

			if resp.Cursor == "" {
				break
			}
			cursor = resp.Cursor
		}
	}
	return reposts, nil
}

// Follows fetches the accounts the actor follows, in pagination order.
func (c *Client) Follows(ctx context.Context, actor string) ([]domain.Follower, error) {
	return c.followGraph(ctx, "/xrpc/app.bsky.graph.getFollows", actor)
}

// Followers fetches the accounts following the actor, in pagination order.
func (c *Client) Followers(ctx context.Context, actor string) ([]domain.Follower, error) {
	return c.followGraph(ctx, "/xrpc/app.bsky.graph.getFollowers", actor)
}

func (c *Client) followGraph(ctx context.Context, path, actor string) ([]domain.Follower, error) {
	var accounts []domain.Follower
	cursor := ""
	index := 0
	for {
		params := url.Values{
			"actor": {actor},
			"limit": {strconv.Itoa(pageLimit)},
		}
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var resp followGraphResponse
		if err := c.get(ctx, path, params, &resp); err != nil {
			return nil, fmt.Errorf("get follow graph: %w", err)
		}

		profiles := resp.Follows
		if len(resp.Followers) > 0 {
			profiles = resp.Followers
		}
		for _, p := range profiles {
			follower, err := p.toDomain(index)
			if err != nil {
				return nil, fmt.Errorf("parse profile %s: %w", p.Handle, err)
			}
			index++
			accounts = append(accounts, follower)
		}

		if resp.Cursor == "" {
			break
		}
		cursor = resp.Cursor
	}
	return accounts, nil
}

// parseTimestamp accepts the RFC3339 variants the network emits.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
