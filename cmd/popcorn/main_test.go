package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/popcornsocial/popcorn/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeJSONServer answers the handful of json-server routes the commands touch.
type fakeJSONServer struct {
	mu    sync.Mutex
	likes int64
	seen  []string
}

func (f *fakeJSONServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, r.Method+" "+r.URL.Path)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/auth/login":
		token, _, _ := jwt.NewJWTManager("test-secret", time.Hour).GenerateAccessToken("u1", "ann")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"accessToken": token,
			"user":        map[string]string{"id": "u1", "username": "ann", "name": "Ann"},
		})
	case r.Method == http.MethodGet && r.URL.Path == "/posts/p1":
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": "p1", "likes": f.likes})
	case r.Method == http.MethodPatch && r.URL.Path == "/posts/p1":
		var body struct {
			Likes int64 `json:"likes"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.likes = body.Likes
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": "p1", "likes": f.likes})
	case r.Method == http.MethodPost && r.URL.Path == "/auth/register":
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"accessToken": "ignored",
			"user":        map[string]interface{}{"id": "u5", "username": body["username"], "name": body["name"]},
		})
	case r.Method == http.MethodPost && r.URL.Path == "/posts":
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		body["id"] = "p2"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(body)
	case r.Method == http.MethodPatch && r.URL.Path == "/users/u1":
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		body["id"] = "u1"
		if _, ok := body["username"]; !ok {
			body["username"] = "ann"
		}
		_ = json.NewEncoder(w).Encode(body)
	case r.Method == http.MethodGet && r.URL.Path == "/comments":
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": "m1", "postId": "p1", "userId": "u2", "userHandle": "@bob", "text": "agreed", "createdAt": "2025-12-01T10:00:00Z"},
		})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{}`))
	}
}

func (f *fakeJSONServer) patches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.seen {
		if s == "PATCH /posts/p1" {
			n++
		}
	}
	return n
}

type cliEnv struct {
	server  *fakeJSONServer
	session string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	fake := &fakeJSONServer{likes: 3}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	t.Setenv("BACKEND", "json-server")
	t.Setenv("JSON_SERVER_URL", srv.URL)
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("LOG_LEVEL", "error")
	return &cliEnv{server: fake, session: filepath.Join(t.TempDir(), "session.json")}
}

func (e *cliEnv) run(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--session", e.session}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestLoginStoresSession(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run("login", "--email", "ann@example.com", "--password", "Secret123!")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as @ann on json-server")

	info, err := os.Stat(env.session)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out, err = env.run("logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")
	_, err = os.Stat(env.session)
	assert.True(t, os.IsNotExist(err))
}

func TestLike_OptimisticThenSettled(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run("login", "--email", "ann@example.com", "--password", "Secret123!")
	require.NoError(t, err)

	out, err := env.run("like", "post", "p1")
	require.NoError(t, err)
	assert.Contains(t, out, "post:p1:like -> liked=true likes=4")
	assert.Contains(t, out, "post:p1:like settled at liked=true likes=4")
	assert.Equal(t, 1, env.server.patches())

	out, err = env.run("like", "post", "p1", "--liked")
	require.NoError(t, err)
	assert.Contains(t, out, "settled at liked=false likes=3")
}

func TestLike_WithoutSessionRollsBack(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run("like", "post", "p1")
	require.Error(t, err)
	assert.ErrorIs(t, err, errNotSignedIn)
	assert.Contains(t, out, "rolled back to liked=false likes=3")
	assert.Equal(t, 0, env.server.patches())
}

func TestCommentsList(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run("comments", "list", "post", "p1")
	require.NoError(t, err)
	assert.Contains(t, out, "1 comment(s)")
	assert.Contains(t, out, "@bob: agreed")
}

func TestSessionOfOtherBackendIsIgnored(t *testing.T) {
	env := newCLIEnv(t)
	stale := `{"backend":"supabase","session":{"user_id":"u9","access_token":"x"}}`
	require.NoError(t, os.WriteFile(env.session, []byte(stale), 0o600))

	_, err := env.run("like", "post", "p1")
	assert.ErrorIs(t, err, errNotSignedIn)
}

func TestParseKind(t *testing.T) {
	_, err := parseKind("user")
	assert.Error(t, err)
	kind, err := parseKind("collection")
	require.NoError(t, err)
	assert.Equal(t, "collection", string(kind))
}

func TestRegisterThenLogin(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run("register", "--email", "bob@example.com", "--password", "Secret123!", "--username", "@Bob", "--name", "Bob")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered @bob on json-server")
	_, err = os.Stat(env.session)
	assert.True(t, os.IsNotExist(err), "registering does not sign in")
}

func TestPostCreate(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("post", "create", "Alien", "--review", "tense")
	assert.ErrorIs(t, err, errNotSignedIn)

	_, err = env.run("login", "--email", "ann@example.com", "--password", "Secret123!")
	require.NoError(t, err)
	out, err := env.run("post", "create", "Alien", "--review", "tense", "--rating", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Published review p2 of Alien")
}

func TestProfileEdit(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run("login", "--email", "ann@example.com", "--password", "Secret123!")
	require.NoError(t, err)

	out, err := env.run("profile", "edit", "--name", "Ann B")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated profile of @ann (Ann B)")

	_, err = env.run("profile", "edit")
	assert.EqualError(t, err, "nothing to update")
}

func TestLike_PrintsMetrics(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run("login", "--email", "ann@example.com", "--password", "Secret123!")
	require.NoError(t, err)

	out, err := env.run("like", "post", "p1", "--metrics")
	require.NoError(t, err)
	assert.Contains(t, out, `popcorn_interaction_toggles_applied_total{interaction="like"} 1`)
	assert.Contains(t, out, `popcorn_interaction_toggles_reconciled_total{interaction="like"} 1`)

	out, err = env.run("logout", "--metrics")
	require.NoError(t, err)
	assert.NotContains(t, out, "popcorn_interaction")
}
