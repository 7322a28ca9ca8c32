package jsonserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"github.com/popcornsocial/popcorn/internal/infrastructure/jwt"
	"github.com/popcornsocial/popcorn/internal/usecase/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, req.Method+" "+req.URL.Path)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func signedIn() context.Context {
	return entity.ContextWithSession(context.Background(), entity.Session{
		UserID:      "u1",
		Username:    "ann",
		Name:        "Ann",
		AccessToken: "tok",
	})
}

func newTestProvider(t *testing.T, h http.HandlerFunc) (*Provider, *recorder) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL, time.Second, mocks.NewMockLogger()), rec
}

func TestSetLikeCount(t *testing.T) {
	p, rec := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var body map[string]int64
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": "42", "likes": body["likes"]})
	})

	n, err := p.SetLikeCount(signedIn(), entity.TargetKindPost, "42", 11)
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)
	assert.Equal(t, []string{"PATCH /posts/42"}, rec.list())
}

func TestSetLikeCount_MissingPost(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{}`)
	})
	_, err := p.SetLikeCount(signedIn(), entity.TargetKindPost, "404", 1)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestSetSaved_ReusesExistingRecord(t *testing.T) {
	p, rec := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "u1", r.URL.Query().Get("userId"))
		assert.Equal(t, "c9", r.URL.Query().Get("collectionId"))
		_, _ = io.WriteString(w, `[{"id":"s1","userId":"u1","collectionId":"c9"}]`)
	})

	id, err := p.SetSaved(signedIn(), "u1", "c9", true)
	require.NoError(t, err)
	assert.Equal(t, "s1", id)
	assert.Equal(t, []string{"GET /savedCollections"}, rec.list())
}

func TestSetSaved_CreatesThenDeletes(t *testing.T) {
	var mu sync.Mutex
	var stored []map[string]interface{}
	p, rec := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(stored)
		case http.MethodPost:
			var body map[string]interface{}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			body["id"] = "s7"
			stored = append(stored, body)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(body)
		case http.MethodDelete:
			stored = nil
			_, _ = io.WriteString(w, `{}`)
		}
	})

	id, err := p.SetSaved(signedIn(), "u1", "c9", true)
	require.NoError(t, err)
	assert.Equal(t, "s7", id)

	id, err = p.SetSaved(signedIn(), "u1", "c9", false)
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Equal(t, []string{
		"GET /savedCollections",
		"POST /savedCollections",
		"GET /savedCollections",
		"DELETE /savedCollections/s7",
	}, rec.list())
}

func TestSetFollowing_Unfollow(t *testing.T) {
	p, rec := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = io.WriteString(w, `[{"id":"f1","followerId":"u1","followingId":"u2"}]`)
			return
		}
		_, _ = io.WriteString(w, `{}`)
	})

	require.NoError(t, p.SetFollowing(signedIn(), "u1", "u2", false))
	assert.Equal(t, []string{"GET /followers", "DELETE /followers/f1"}, rec.list())

	require.NoError(t, p.SetFollowing(signedIn(), "u1", "u2", true))
	assert.Len(t, rec.list(), 3, "already following, no POST")
}

func TestAddComment(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "7", body["collectionId"])
		assert.Equal(t, "@ann", body["userHandle"])
		body["id"] = "cm1"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(body)
	})

	c, err := p.AddComment(signedIn(), entity.ParentRef{Kind: entity.TargetKindCollection, ID: "7"}, "nice list")
	require.NoError(t, err)
	assert.Equal(t, "cm1", c.ID)
	assert.Equal(t, "nice list", c.Text)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestDeleteComment_Forbidden(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":"only the author can delete this comment"}`)
	})
	assert.ErrorIs(t, p.DeleteComment(signedIn(), "cm1"), entity.ErrPermissionDenied)
}

func TestCount(t *testing.T) {
	p, rec := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "u1", r.URL.Query().Get("userId"))
		assert.Equal(t, "1", r.URL.Query().Get("_limit"))
		w.Header().Set("X-Total-Count", "5")
		_, _ = io.WriteString(w, `[{"id":"s1"}]`)
	})

	n, err := p.Count(context.Background(), entity.CountQuery{Resource: "saved_collections", Field: "user_id", Value: "u1"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, []string{"GET /savedCollections"}, rec.list())
}

func TestCamelCase(t *testing.T) {
	assert.Equal(t, "followingId", camelCase("following_id"))
	assert.Equal(t, "posts", camelCase("posts"))
}

func TestSignIn(t *testing.T) {
	token, _, err := jwt.NewJWTManager("secret", time.Hour).GenerateAccessToken("u1", "ann")
	require.NoError(t, err)
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"accessToken": token,
			"user":        map[string]string{"id": "u1", "username": "ann", "name": "Ann"},
		})
	})

	sess, err := p.SignIn(context.Background(), "ann@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, "Ann", sess.Name)
	assert.True(t, sess.Valid(time.Now()))
}

func TestCreatePost_DenormalizesAuthor(t *testing.T) {
	p, rec := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u1", body["userId"])
		assert.Equal(t, "@ann", body["userHandle"])
		assert.Equal(t, "Alien", body["movieTitle"])
		assert.EqualValues(t, 0, body["likes"])
		body["id"] = "p7"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(body)
	})

	post, err := p.CreatePost(signedIn(), entity.PostDraft{MovieTitle: "Alien", Year: 1979, ReviewText: "tense", Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, "p7", post.ID)
	assert.Equal(t, 1979, post.Year)
	assert.Equal(t, []string{"POST /posts"}, rec.list())
}

func TestCreateCollection(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u1", body["createdBy"])
		assert.Equal(t, "Ann", body["author"])
		assert.EqualValues(t, 2, body["moviesCount"])
		body["id"] = "c3"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(body)
	})

	col, err := p.CreateCollection(signedIn(), entity.CollectionDraft{Title: "Noir", Movies: []string{"Laura", "Gilda"}})
	require.NoError(t, err)
	assert.Equal(t, "c3", col.ID)
	assert.Equal(t, 2, col.MoviesCount)
}

func TestCreateNeedsSession(t *testing.T) {
	p, rec := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := p.CreatePost(context.Background(), entity.PostDraft{MovieTitle: "Alien"})
	assert.ErrorIs(t, err, entity.ErrAuthRequired)
	_, err = p.CreateCollection(context.Background(), entity.CollectionDraft{Title: "Noir"})
	assert.ErrorIs(t, err, entity.ErrAuthRequired)
	_, err = p.UpdateProfile(context.Background(), entity.ProfileUpdate{})
	assert.ErrorIs(t, err, entity.ErrAuthRequired)
	assert.Empty(t, rec.list())
}

func TestUpdateProfile_PatchesOwnRow(t *testing.T) {
	p, rec := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]interface{}{"bio": "films"}, body)
		_, _ = io.WriteString(w, `{"id":"u1","username":"ann","name":"Ann","bio":"films"}`)
	})

	bio := "films"
	u, err := p.UpdateProfile(signedIn(), entity.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	require.NotNil(t, u.Bio)
	assert.Equal(t, "films", *u.Bio)
	assert.Equal(t, []string{"PATCH /users/u1"}, rec.list())
}

func TestSignUp(t *testing.T) {
	p, rec := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bob", body["username"])
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"accessToken":"x","user":{"id":"u9","username":"bob","name":"Bob","email":"bob@example.com"}}`)
	})

	u, err := p.SignUp(context.Background(), entity.Registration{Email: "bob@example.com", Password: "Secret#123", Username: "bob", Name: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, "u9", u.ID)
	assert.Equal(t, "bob", u.Username)
	assert.Equal(t, []string{"POST /auth/register"}, rec.list())
}

func TestSignUp_Conflict(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"error":"email already registered"}`)
	})

	_, err := p.SignUp(context.Background(), entity.Registration{Email: "bob@example.com", Password: "Secret#123", Username: "bob", Name: "Bob"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email already registered")
}
