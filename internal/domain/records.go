package domain

import "time"

// EmbedType classifies the media attached to a post.
type EmbedType string

const (
	EmbedImages EmbedType = "images"
	EmbedVideo  EmbedType = "video"
	EmbedOther  EmbedType = "other"
)

// Embed is the media attachment of a post, reduced to what the dashboard
// needs (a full-size resource URL and a thumbnail).
type Embed struct {
	Resource  string    `json:"resource"`
	Thumbnail string    `json:"thumbnail"`
	Type      EmbedType `json:"type"`
}

// Post is a single entry from the author's feed.
type Post struct {
	// URI is the AT-URI of the post (e.g. at://did:plc:abc/app.bsky.feed.post/3l3qo2vuowo2b).
	URI string `json:"uri"`

	// CID is the content identifier of the record.
	CID string `json:"cid"`

	// AuthorHandle is the handle of the post's author. The feed can contain
	// reposted entries by other authors, so this is not always the account
	// owner's handle.
	AuthorHandle string `json:"authorHandle"`

	// IndexedAt is when the network indexed the post.
	IndexedAt time.Time `json:"indexedAt"`

	Text  string `json:"text"`
	Embed Embed  `json:"embed"`

	LikeCount     int `json:"likeCount"`
	ReplyCount    int `json:"replyCount"`
	RepostCount   int `json:"repostCount"`
	QuoteCount    int `json:"quoteCount"`
	BookmarkCount int `json:"bookmarkCount"`
}

// Like is a single like on one of the account's posts.
type Like struct {
	PostURI       string    `json:"postUri"`
	PostIndexedAt time.Time `json:"postIndexedAt"`
	IndexedAt     time.Time `json:"indexedAt"`
	ActorHandle   string    `json:"actorHandle"`
}

// Repost is a single repost of one of the account's posts. It carries the
// same fields as a Like.
type Repost struct {
	PostURI       string    `json:"postUri"`
	PostIndexedAt time.Time `json:"postIndexedAt"`
	IndexedAt     time.Time `json:"indexedAt"`
	ActorHandle   string    `json:"actorHandle"`
}

// Follower is an account in the follower or following graph.
type Follower struct {
	DID         string    `json:"did"`
	Handle      string    `json:"handle"`
	DisplayName string    `json:"displayName,omitempty"`
	IndexedAt   time.Time `json:"indexedAt"`
	CreatedAt   time.Time `json:"createdAt"`

	// FollowIndex is the ordinal position of this account in the paginated
	// listing, used as a stable fetch-order marker.
	FollowIndex int `json:"followIndex"`
}

// Profile is the account owner's profile summary.
type Profile struct {
	DID            string    `json:"did"`
	Handle         string    `json:"handle"`
	FollowersCount int       `json:"followersCount"`
	FollowsCount   int       `json:"followsCount"`
	CreatedAt      time.Time `json:"createdAt"`
}
