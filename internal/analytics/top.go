package analytics

import (
	"sort"

	"github.com/pupbiscuit/skydash/internal/domain"
)

// TopPost identifies the post that maximizes one engagement metric.
type TopPost struct {
	Thumbnail string `json:"thumbnail"`
	Count     int    `json:"count"`
}

// topBy scans the feed once and keeps the first post (in input iteration
// order) authored by handle whose metric strictly exceeds every earlier
// one. Ties keep the first qualifying maximum; callers should not depend on
// any other ordering. An empty or fully filtered feed yields an empty
// thumbnail and count 0.
func topBy(feed []domain.Post, handle string, metric func(domain.Post) int) TopPost {
	var top TopPost
	for _, p := range feed {
		if p.AuthorHandle != handle {
			continue
		}
		if n := metric(p); n > top.Count {
			top.Count = n
			top.Thumbnail = p.Embed.Thumbnail
		}
	}
	return top
}

// MostLiked returns the author's most-liked post.
func MostLiked(feed []domain.Post, handle string) TopPost {
	return topBy(feed, handle, func(p domain.Post) int { return p.LikeCount })
}

// MostReplied returns the author's most-replied post.
func MostReplied(feed []domain.Post, handle string) TopPost {
	return topBy(feed, handle, func(p domain.Post) int { return p.ReplyCount })
}

// MostReposted returns the author's most-reposted post.
func MostReposted(feed []domain.Post, handle string) TopPost {
	return topBy(feed, handle, func(p domain.Post) int { return p.RepostCount })
}

// MostBookmarked returns the author's most-bookmarked post.
func MostBookmarked(feed []domain.Post, handle string) TopPost {
	return topBy(feed, handle, func(p domain.Post) int { return p.BookmarkCount })
}

// TopFollower is a follower ranked by how often they engaged.
type TopFollower struct {
	Handle      string `json:"handle"`
	Engagements int    `json:"engagements"`
}

// TopEngagingFollowers counts like and repost events per follower handle and
// returns up to limit followers ordered by descending engagement count, ties
// broken by handle for stable output.
func TopEngagingFollowers(events []domain.Event, limit int) []TopFollower {
	counts := make(map[string]int)
	for _, ev := range events {
		if !ev.IsFollower {
			continue
		}
		switch ev.Type {
		case domain.EventLike, domain.EventRepost:
			counts[ev.ActorHandle]++
		}
	}

	ranked := make([]TopFollower, 0, len(counts))
	for _, handle := range sortedKeys(counts) {
		ranked = append(ranked, TopFollower{Handle: handle, Engagements: counts[handle]})
	}
	// sortedKeys already ordered by handle; a stable sort on count keeps the
	// lexical order within equal counts.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Engagements > ranked[j].Engagements
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
