package bluesky

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pupbiscuit/skydash/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestAuthorFeedPaginates(t *testing.T) {
	pages := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/xrpc/app.bsky.feed.getAuthorFeed", r.URL.Path)
		require.Equal(t, "posts_and_author_threads", r.URL.Query().Get("filter"))

		pages++
		resp := map[string]any{
			"feed": []map[string]any{
				{
					"post": map[string]any{
						"uri":       "at://did:plc:me/app.bsky.feed.post/p" + r.URL.Query().Get("cursor"),
						"cid":       "cid",
						"author":    map[string]any{"handle": "me.bsky.social"},
						"record":    map[string]any{"text": "hello"},
						"indexedAt": "2024-05-01T10:00:00Z",
						"likeCount": 3,
						"embed": map[string]any{
							"$type":  "app.bsky.embed.images#view",
							"images": []map[string]any{{"fullsize": "full.jpg", "thumb": "thumb.jpg"}},
						},
					},
				},
			},
		}
		if pages == 1 {
			resp["cursor"] = "next"
		}
		json.NewEncoder(w).Encode(resp)
	}))

	posts, err := client.AuthorFeed(context.Background(), "did:plc:me")
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	require.Len(t, posts, 2)
	assert.Equal(t, "me.bsky.social", posts[0].AuthorHandle)
	assert.Equal(t, domain.EmbedImages, posts[0].Embed.Type)
	assert.Equal(t, "thumb.jpg", posts[0].Embed.Thumbnail)
	assert.Equal(t, 3, posts[0].LikeCount)
}

func TestAuthorFeedFailsFastOnPageError(t *testing.T) {
	pages := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		if pages == 1 {
			json.NewEncoder(w).Encode(map[string]any{
				"feed": []map[string]any{{"post": map[string]any{
					"uri": "at://p/1", "author": map[string]any{"handle": "me"},
					"record": map[string]any{"text": ""}, "indexedAt": "2024-05-01T10:00:00Z",
				}}},
				"cursor": "next",
			})
			return
		}
		http.Error(w, `{"error":"InternalServerError"}`, http.StatusInternalServerError)
	}))

	// A mid-pagination failure aborts the fetch entirely; no partial result.
	posts, err := client.AuthorFeed(context.Background(), "did:plc:me")
	require.Error(t, err)
	assert.Nil(t, posts)
}

func TestPostLikesSkipsOtherAuthors(t *testing.T) {
	var requested []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Query().Get("uri"))
		json.NewEncoder(w).Encode(map[string]any{
			"likes": []map[string]any{
				{"indexedAt": "2024-05-02T08:00:00Z", "actor": map[string]any{"handle": "fan.bsky.social"}},
			},
		})
	}))

	posts := []domain.Post{
		{URI: "at://p/mine", AuthorHandle: "me"},
		{URI: "at://p/theirs", AuthorHandle: "them"},
	}

	likes, err := client.PostLikes(context.Background(), posts, "me")
	require.NoError(t, err)
	assert.Equal(t, []string{"at://p/mine"}, requested)
	require.Len(t, likes, 1)
	assert.Equal(t, "fan.bsky.social", likes[0].ActorHandle)
	assert.Equal(t, "at://p/mine", likes[0].PostURI)
}

func TestFollowersAssignsOrdinalIndex(t *testing.T) {
	page := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page++
		resp := map[string]any{
			"followers": []map[string]any{
				{"did": "did:1", "handle": "a", "createdAt": "2023-01-01T00:00:00Z"},
				{"did": "did:2", "handle": "b", "createdAt": "2023-01-02T00:00:00Z"},
			},
		}
		if page == 1 {
			resp["cursor"] = "more"
		}
		json.NewEncoder(w).Encode(resp)
	}))

	followers, err := client.Followers(context.Background(), "did:plc:me")
	require.NoError(t, err)
	require.Len(t, followers, 4)
	for i, f := range followers {
		assert.Equal(t, i, f.FollowIndex)
	}
}

func TestLoginStoresSession(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/xrpc/com.atproto.server.createSession", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"accessJwt": "jwt",
			"did":       "did:plc:me",
			"handle":    "me.bsky.social",
		})
	}))

	require.NoError(t, client.Login(context.Background(), "me.bsky.social", "app-password"))
	assert.Equal(t, "did:plc:me", client.DID())
	assert.Equal(t, "me.bsky.social", client.Handle())
}

func TestUploadBlobRequiresLogin(t *testing.T) {
	client := NewClient("")
	_, err := client.UploadBlob(context.Background(), []byte("img"), "image/jpeg")
	assert.Error(t, err)
}
