package bluesky

import (
	"fmt"

	"github.com/pupbiscuit/skydash/internal/domain"
)

// Raw JSON shapes of the app.bsky read endpoints, reduced to the fields the
// dashboard consumes.

type profileResponse struct {
	DID            string `json:"did"`
	Handle         string `json:"handle"`
	DisplayName    string `json:"displayName"`
	FollowersCount int    `json:"followersCount"`
	FollowsCount   int    `json:"followsCount"`
	IndexedAt      string `json:"indexedAt"`
	CreatedAt      string `json:"createdAt"`
}

type authorFeedResponse struct {
	Feed   []feedItem `json:"feed"`
	Cursor string     `json:"cursor"`
}

type feedItem struct {
	Post wirePost `json:"post"`
}

type wirePost struct {
	URI           string     `json:"uri"`
	CID           string     `json:"cid"`
	Author        wireActor  `json:"author"`
	Record        wireRecord `json:"record"`
	Embed         *wireEmbed `json:"embed"`
	IndexedAt     string     `json:"indexedAt"`
	LikeCount     int        `json:"likeCount"`
	ReplyCount    int        `json:"replyCount"`
	RepostCount   int        `json:"repostCount"`
	QuoteCount    int        `json:"quoteCount"`
	BookmarkCount int        `json:"bookmarkCount"`
}

type wireActor struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	IndexedAt   string `json:"indexedAt"`
	CreatedAt   string `json:"createdAt"`
}

type wireRecord struct {
	Text string `json:"text"`
}

type wireEmbed struct {
	Type      string           `json:"$type"`
	Images    []wireEmbedImage `json:"images"`
	Playlist  string           `json:"playlist"`
	Thumbnail string           `json:"thumbnail"`
}

type wireEmbedImage struct {
	Fullsize string `json:"fullsize"`
	Thumb    string `json:"thumb"`
}

type likesResponse struct {
	Likes  []wireLike `json:"likes"`
	Cursor string     `json:"cursor"`
}

type wireLike struct {
	IndexedAt string    `json:"indexedAt"`
	CreatedAt string    `json:"createdAt"`
	Actor     wireActor `json:"actor"`
}

type repostedByResponse struct {
	RepostedBy []wireActor `json:"repostedBy"`
	Cursor     string      `json:"cursor"`
}

type followGraphResponse struct {
	Follows   []wireActor `json:"follows"`
	Followers []wireActor `json:"followers"`
	Cursor    string      `json:"cursor"`
}

// toDomain maps a wire post to the domain record, classifying the embed the
// way the dashboard buckets media: images, video, or other. A post can carry
// multiple images; the first one represents the post in thumbnails.
func (p wirePost) toDomain() (domain.Post, error) {
	indexedAt, err := parseTimestamp(p.IndexedAt)
	if err != nil {
		return domain.Post{}, err
	}

	embed := domain.Embed{Type: domain.EmbedOther}
	if p.Embed != nil {
		switch p.Embed.Type {
		case "app.bsky.embed.images#view":
			if len(p.Embed.Images) > 0 {
				embed = domain.Embed{
					Resource:  p.Embed.Images[0].Fullsize,
					Thumbnail: p.Embed.Images[0].Thumb,
					Type:      domain.EmbedImages,
				}
			}
		case "app.bsky.embed.video#view":
			embed = domain.Embed{
				Resource:  p.Embed.Playlist,
				Thumbnail: p.Embed.Thumbnail,
				Type:      domain.EmbedVideo,
			}
		}
	}

	return domain.Post{
		URI:           p.URI,
		CID:           p.CID,
		AuthorHandle:  p.Author.Handle,
		IndexedAt:     indexedAt,
		Text:          p.Record.Text,
		Embed:         embed,
		LikeCount:     p.LikeCount,
		ReplyCount:    p.ReplyCount,
		RepostCount:   p.RepostCount,
		QuoteCount:    p.QuoteCount,
		BookmarkCount: p.BookmarkCount,
	}, nil
}

func (a wireActor) toDomain(followIndex int) (domain.Follower, error) {
	indexedAt, err := parseTimestamp(a.IndexedAt)
	if err != nil {
		return domain.Follower{}, fmt.Errorf("indexedAt: %w", err)
	}
	createdAt, err := parseTimestamp(a.CreatedAt)
	if err != nil {
		return domain.Follower{}, fmt.Errorf("createdAt: %w", err)
	}
	return domain.Follower{
		DID:         a.DID,
		Handle:      a.Handle,
		DisplayName: a.DisplayName,
		IndexedAt:   indexedAt,
		CreatedAt:   createdAt,
		FollowIndex: followIndex,
	}, nil
}
