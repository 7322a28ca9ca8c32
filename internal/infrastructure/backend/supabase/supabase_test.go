package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"github.com/popcornsocial/popcorn/internal/infrastructure/jwt"
	"github.com/popcornsocial/popcorn/internal/usecase/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedIn() context.Context {
	return entity.ContextWithSession(context.Background(), entity.Session{UserID: "u1", AccessToken: "user-jwt"})
}

func newTestProvider(t *testing.T, h http.HandlerFunc) *Provider {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, "anon-key", time.Second, mocks.NewMockLogger())
}

func TestSetLikeCount(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/rest/v1/posts", r.URL.Path)
		assert.Equal(t, "eq.42", r.URL.Query().Get("id"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		assert.Equal(t, "Bearer user-jwt", r.Header.Get("Authorization"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		var body map[string]int64
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(8), body["likes"])
		_, _ = io.WriteString(w, `[{"likes":8}]`)
	})

	n, err := p.SetLikeCount(signedIn(), entity.TargetKindPost, "42", 8)
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)
}

func TestSetLikeCount_EmptyResultIsExplained(t *testing.T) {
	var exists atomic.Bool
	exists.Store(true)
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			_, _ = io.WriteString(w, `[]`)
			return
		}
		if exists.Load() {
			_, _ = io.WriteString(w, `[{"id":42}]`)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	})

	_, err := p.SetLikeCount(signedIn(), entity.TargetKindCollection, "42", 1)
	assert.ErrorIs(t, err, entity.ErrPermissionDenied)

	exists.Store(false)
	_, err = p.SetLikeCount(signedIn(), entity.TargetKindCollection, "42", 1)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestWritesNeedSession(t *testing.T) {
	var calls int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := p.SetLikeCount(context.Background(), entity.TargetKindPost, "1", 1)
	assert.ErrorIs(t, err, entity.ErrAuthRequired)
	assert.ErrorIs(t, p.SetFollowing(context.Background(), "", "u2", true), entity.ErrAuthRequired)
	_, err = p.AddComment(context.Background(), entity.ParentRef{Kind: entity.TargetKindPost, ID: "1"}, "hi")
	assert.ErrorIs(t, err, entity.ErrAuthRequired)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestSetSaved_Upsert(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/saved_collections", r.URL.Path)
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "user_id,collection_id", r.URL.Query().Get("on_conflict"))
			assert.Contains(t, r.Header.Get("Prefer"), "resolution=merge-duplicates")
			_, _ = io.WriteString(w, `[{"id":17,"user_id":"u1","collection_id":"c9"}]`)
		case http.MethodDelete:
			assert.Equal(t, "eq.c9", r.URL.Query().Get("collection_id"))
			w.WriteHeader(http.StatusNoContent)
		}
	})

	id, err := p.SetSaved(signedIn(), "u1", "c9", true)
	require.NoError(t, err)
	assert.Equal(t, "17", id)

	id, err = p.SetSaved(signedIn(), "u1", "c9", false)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestListComments(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.7", r.URL.Query().Get("collection_id"))
		assert.Equal(t, "created_at.asc", r.URL.Query().Get("order"))
		_, _ = io.WriteString(w, `[
			{"id":1,"collection_id":7,"user_id":"u2","text":"first","created_at":"2025-01-01T10:00:00Z","author":{"username":"bob","name":"Bob"}},
			{"id":2,"collection_id":7,"user_id":"u3","text":"second","created_at":"2025-01-01T11:00:00Z","author":null}
		]`)
	})

	comments, err := p.ListComments(context.Background(), entity.ParentRef{Kind: entity.TargetKindCollection, ID: "7"})
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "1", comments[0].ID)
	assert.Equal(t, "@bob", comments[0].AuthorHandle)
	assert.Equal(t, entity.ParentRef{Kind: entity.TargetKindCollection, ID: "7"}, comments[1].Parent())
	assert.Empty(t, comments[1].AuthorName)
}

func TestDeleteComment_Forbidden(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"code":"42501","message":"permission denied for table comments"}`)
	})
	assert.ErrorIs(t, p.DeleteComment(signedIn(), "5"), entity.ErrPermissionDenied)
}

func TestCount(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		assert.Equal(t, "/rest/v1/followers", r.URL.Path)
		assert.Equal(t, "eq.u1", r.URL.Query().Get("following_id"))
		assert.Equal(t, "count=exact", r.Header.Get("Prefer"))
		w.Header().Set("Content-Range", "*/12")
	})

	n, err := p.Count(context.Background(), entity.CountQuery{Resource: "followers", Field: "following_id", Value: "u1"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
}

func TestParseContentRange(t *testing.T) {
	n, err := parseContentRange("0-9/42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	_, err = parseContentRange("0-9/*")
	assert.Error(t, err)
}

func TestSignIn(t *testing.T) {
	token, _, err := jwt.NewJWTManager("secret", time.Hour).GenerateAccessToken("u1", "")
	require.NoError(t, err)

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/token":
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
			assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token":  token,
				"refresh_token": "r1",
				"expires_in":    3600,
				"user":          map[string]string{"id": "u1"},
			})
		case "/rest/v1/users":
			assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, `[{"username":"ann","name":"Ann"}]`)
		}
	})

	sess, err := p.SignIn(context.Background(), "ann@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, "@ann", sess.Handle())
	assert.Equal(t, "r1", sess.RefreshToken)
}

func TestSignIn_BadCredentials(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`)
	})
	_, err := p.SignIn(context.Background(), "ann@example.com", "nope")
	assert.ErrorIs(t, err, entity.ErrAuthRequired)
}

func TestCreatePost(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/posts", r.URL.Path)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u1", body["user_id"])
		assert.NotContains(t, body, "movie_image")
		_, _ = io.WriteString(w, `[{"id":5,"user_id":"u1","movie_title":"Alien","rating":4,"likes":0,"author":{"username":"@ann","name":"Ann"}}]`)
	})

	post, err := p.CreatePost(signedIn(), entity.PostDraft{MovieTitle: "Alien", ReviewText: "tense", Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, "5", post.ID)
	assert.Equal(t, "@ann", post.UserHandle)
}

func TestCreateCollection(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/collections", r.URL.Path)
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u1", body["created_by"])
		assert.Equal(t, []interface{}{}, body["movies"])
		_, _ = io.WriteString(w, `[{"id":"c1","title":"Noir","movies":[],"created_by":"u1","likes":0}]`)
	})

	col, err := p.CreateCollection(signedIn(), entity.CollectionDraft{Title: "Noir"})
	require.NoError(t, err)
	assert.Equal(t, "c1", col.ID)
	assert.Zero(t, col.Likes)
}

func TestUpdateProfile(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/rest/v1/users", r.URL.Path)
		assert.Equal(t, "eq.u1", r.URL.Query().Get("id"))
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]interface{}{"username": "@annie"}, body)
		_, _ = io.WriteString(w, `[{"id":"u1","username":"@annie","name":"Ann"}]`)
	})

	handle := "annie"
	u, err := p.UpdateProfile(signedIn(), entity.ProfileUpdate{Username: &handle})
	require.NoError(t, err)
	assert.Equal(t, "annie", u.Username)
}

func TestSignUp_WritesProfileRowWithNewSession(t *testing.T) {
	var rowWritten atomic.Bool
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/signup":
			assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, `{"access_token":"new-jwt","refresh_token":"r","user":{"id":"u9"}}`)
		case "/rest/v1/users":
			assert.Equal(t, "Bearer new-jwt", r.Header.Get("Authorization"))
			var body map[string]interface{}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "u9", body["id"])
			assert.Equal(t, "@bob", body["username"])
			rowWritten.Store(true)
			w.WriteHeader(http.StatusCreated)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})

	u, err := p.SignUp(context.Background(), entity.Registration{Email: "bob@example.com", Password: "pw", Username: "@bob", Name: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, "u9", u.ID)
	assert.Equal(t, "bob", u.Username)
	assert.True(t, rowWritten.Load())
}

func TestSignUp_ConfirmationPending(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/v1/signup" {
			_, _ = io.WriteString(w, `{"id":"u9","email":"bob@example.com"}`)
			return
		}
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"code":"23505","message":"duplicate key value"}`)
	})

	_, err := p.SignUp(context.Background(), entity.Registration{Email: "bob@example.com", Password: "pw", Username: "bob", Name: "Bob"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate key")
}
