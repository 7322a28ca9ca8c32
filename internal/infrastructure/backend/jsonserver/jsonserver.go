package jsonserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"github.com/popcornsocial/popcorn/internal/infrastructure/backend/rest"
	"github.com/popcornsocial/popcorn/internal/infrastructure/jwt"
	usecasecontract "github.com/popcornsocial/popcorn/internal/usecase/contract"
)

// Provider talks to a json-server style REST API, either the real json-server
// used during front-end development or cmd/mockapi.
type Provider struct {
	client *rest.Client
	logger usecasecontract.IAppLogger
	now    func() time.Time
}

var _ contract.IBackend = (*Provider)(nil)

func New(baseURL string, timeout time.Duration, logger usecasecontract.IAppLogger, opts ...rest.Option) *Provider {
	return &Provider{
		client: rest.NewClient(baseURL, timeout, opts...),
		logger: logger,
		now:    time.Now,
	}
}

func (p *Provider) Name() string { return "json-server" }

func (p *Provider) get(ctx context.Context, op, path string, q url.Values, out interface{}) (*http.Response, error) {
	return p.client.Do(ctx, rest.Request{Op: op, Method: http.MethodGet, Path: path, Query: q, Out: out})
}

func (p *Provider) send(ctx context.Context, op, method, path string, body, out interface{}) error {
	if _, err := entity.RequireSession(ctx, op); err != nil {
		return err
	}
	_, err := p.client.Do(ctx, rest.Request{Op: op, Method: method, Path: path, Body: body, Out: out})
	return err
}

func resourceFor(kind entity.TargetKind) (string, bool) {
	switch kind {
	case entity.TargetKindPost:
		return "/posts/", true
	case entity.TargetKindCollection:
		return "/collections/", true
	}
	return "", false
}

// SetLikeCount PATCHes the likes field and returns what the server stored.
func (p *Provider) SetLikeCount(ctx context.Context, kind entity.TargetKind, id string, newValue int64) (int64, error) {
	op := "set likes " + string(kind) + " " + id
	prefix, ok := resourceFor(kind)
	if !ok {
		return 0, entity.NewMutationError(entity.ErrorKindNotFound, op, fmt.Errorf("%s has no like counter", kind))
	}
	var out struct {
		Likes int64 `json:"likes"`
	}
	body := map[string]int64{"likes": entity.ClampCount(newValue)}
	if err := p.send(ctx, op, http.MethodPatch, prefix+url.PathEscape(id), body, &out); err != nil {
		return 0, err
	}
	return entity.ClampCount(out.Likes), nil
}

func (p *Provider) findFollows(ctx context.Context, op, followerID, targetUserID string) ([]entity.Follow, error) {
	var follows []entity.Follow
	q := url.Values{"followerId": {followerID}, "followingId": {targetUserID}}
	if _, err := p.get(ctx, op, "/followers", q, &follows); err != nil {
		return nil, err
	}
	return follows, nil
}

// SetFollowing makes the edge exist or not exist. json-server cannot delete by
// query, so edges are looked up first and removed by id.
func (p *Provider) SetFollowing(ctx context.Context, followerID, targetUserID string, following bool) error {
	op := "set following " + targetUserID
	if _, err := entity.RequireSession(ctx, op); err != nil {
		return err
	}
	existing, err := p.findFollows(ctx, op, followerID, targetUserID)
	if err != nil {
		return err
	}
	if following {
		if len(existing) > 0 {
			return nil
		}
		body := map[string]interface{}{
			"followerId":  followerID,
			"followingId": targetUserID,
			"createdAt":   p.now().UTC(),
		}
		return p.send(ctx, op, http.MethodPost, "/followers", body, nil)
	}
	for _, f := range existing {
		if err := p.send(ctx, op, http.MethodDelete, "/followers/"+url.PathEscape(f.ID), nil, nil); err != nil && !errors.Is(err, entity.ErrNotFound) {
			return err
		}
	}
	return nil
}

func (p *Provider) findSaved(ctx context.Context, op, userID, collectionID string) ([]entity.SavedCollection, error) {
	var saved []entity.SavedCollection
	q := url.Values{"userId": {userID}, "collectionId": {collectionID}}
	if _, err := p.get(ctx, op, "/savedCollections", q, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// SetSaved creates the bookmark unless one exists and returns its id.
func (p *Provider) SetSaved(ctx context.Context, userID, collectionID string, saved bool) (string, error) {
	op := "set saved " + collectionID
	if _, err := entity.RequireSession(ctx, op); err != nil {
		return "", err
	}
	existing, err := p.findSaved(ctx, op, userID, collectionID)
	if err != nil {
		return "", err
	}
	if saved {
		if len(existing) > 0 {
			return existing[0].ID, nil
		}
		var created entity.SavedCollection
		body := map[string]interface{}{
			"userId":       userID,
			"collectionId": collectionID,
			"savedAt":      p.now().UTC(),
		}
		if err := p.send(ctx, op, http.MethodPost, "/savedCollections", body, &created); err != nil {
			return "", err
		}
		return created.ID, nil
	}
	for _, s := range existing {
		if err := p.send(ctx, op, http.MethodDelete, "/savedCollections/"+url.PathEscape(s.ID), nil, nil); err != nil && !errors.Is(err, entity.ErrNotFound) {
			return "", err
		}
	}
	return "", nil
}

func parentParam(parent entity.ParentRef) (string, error) {
	switch parent.Kind {
	case entity.TargetKindPost:
		return "postId", nil
	case entity.TargetKindCollection:
		return "collectionId", nil
	}
	return "", fmt.Errorf("comments cannot hang off a %s", parent.Kind)
}

func (p *Provider) ListComments(ctx context.Context, parent entity.ParentRef) ([]entity.Comment, error) {
	op := "list comments " + parent.ID
	param, err := parentParam(parent)
	if err != nil {
		return nil, entity.NewMutationError(entity.ErrorKindNotFound, op, err)
	}
	comments := []entity.Comment{}
	q := url.Values{param: {parent.ID}, "_sort": {"createdAt"}, "_order": {"asc"}}
	if _, err := p.get(ctx, op, "/comments", q, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// AddComment posts a comment authored by the session user.
func (p *Provider) AddComment(ctx context.Context, parent entity.ParentRef, text string) (*entity.Comment, error) {
	op := "add comment " + parent.ID
	sess, err := entity.RequireSession(ctx, op)
	if err != nil {
		return nil, err
	}
	param, err := parentParam(parent)
	if err != nil {
		return nil, entity.NewMutationError(entity.ErrorKindNotFound, op, err)
	}
	body := map[string]interface{}{
		param:        parent.ID,
		"userId":     sess.UserID,
		"userName":   sess.Name,
		"userHandle": sess.Handle(),
		"text":       text,
		"createdAt":  p.now().UTC(),
	}
	var created entity.Comment
	if err := p.send(ctx, op, http.MethodPost, "/comments", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (p *Provider) DeleteComment(ctx context.Context, commentID string) error {
	return p.send(ctx, "delete comment "+commentID, http.MethodDelete, "/comments/"+url.PathEscape(commentID), nil, nil)
}

func (p *Provider) GetLikeCount(ctx context.Context, kind entity.TargetKind, id string) (int64, error) {
	op := "get likes " + string(kind) + " " + id
	prefix, ok := resourceFor(kind)
	if !ok {
		return 0, entity.NewMutationError(entity.ErrorKindNotFound, op, fmt.Errorf("%s has no like counter", kind))
	}
	var out struct {
		Likes int64 `json:"likes"`
	}
	if _, err := p.get(ctx, op, prefix+url.PathEscape(id), nil, &out); err != nil {
		return 0, err
	}
	return entity.ClampCount(out.Likes), nil
}

func (p *Provider) ListPosts(ctx context.Context) ([]entity.Post, error) {
	posts := []entity.Post{}
	q := url.Values{"_sort": {"createdAt"}, "_order": {"desc"}}
	_, err := p.get(ctx, "list posts", "/posts", q, &posts)
	return posts, err
}

func (p *Provider) ListPostsByUser(ctx context.Context, userID string) ([]entity.Post, error) {
	posts := []entity.Post{}
	q := url.Values{"userId": {userID}, "_sort": {"createdAt"}, "_order": {"desc"}}
	_, err := p.get(ctx, "list posts of "+userID, "/posts", q, &posts)
	return posts, err
}

func (p *Provider) DeletePost(ctx context.Context, id string) error {
	return p.send(ctx, "delete post "+id, http.MethodDelete, "/posts/"+url.PathEscape(id), nil, nil)
}

func (p *Provider) ListCollections(ctx context.Context) ([]entity.Collection, error) {
	collections := []entity.Collection{}
	_, err := p.get(ctx, "list collections", "/collections", nil, &collections)
	return collections, err
}

func (p *Provider) DeleteCollection(ctx context.Context, id string) error {
	return p.send(ctx, "delete collection "+id, http.MethodDelete, "/collections/"+url.PathEscape(id), nil, nil)
}

// CreatePost posts a review with zeroed counters and the author copied from the session,
// the way json-server expects denormalized rows.
func (p *Provider) CreatePost(ctx context.Context, draft entity.PostDraft) (*entity.Post, error) {
	op := "create post"
	sess, err := entity.RequireSession(ctx, op)
	if err != nil {
		return nil, err
	}
	body := map[string]interface{}{
		"userId":     sess.UserID,
		"userName":   sess.Name,
		"userHandle": sess.Handle(),
		"movieTitle": draft.MovieTitle,
		"year":       draft.Year,
		"reviewText": draft.ReviewText,
		"rating":     draft.Rating,
		"movieImage": draft.MovieImage,
		"likes":      0,
		"comments":   0,
		"createdAt":  p.now().UTC(),
	}
	var created entity.Post
	if err := p.send(ctx, op, http.MethodPost, "/posts", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (p *Provider) CreateCollection(ctx context.Context, draft entity.CollectionDraft) (*entity.Collection, error) {
	op := "create collection"
	sess, err := entity.RequireSession(ctx, op)
	if err != nil {
		return nil, err
	}
	movies := draft.Movies
	if movies == nil {
		movies = []string{}
	}
	body := map[string]interface{}{
		"title":       draft.Title,
		"author":      sess.Name,
		"description": draft.Description,
		"moviesCount": len(movies),
		"movies":      movies,
		"isPrivate":   draft.IsPrivate,
		"createdBy":   sess.UserID,
		"likes":       0,
		"createdAt":   p.now().UTC(),
	}
	var created entity.Collection
	if err := p.send(ctx, op, http.MethodPost, "/collections", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (p *Provider) IsFollowing(ctx context.Context, followerID, targetUserID string) (bool, error) {
	follows, err := p.findFollows(ctx, "read follow state", followerID, targetUserID)
	return len(follows) > 0, err
}

func (p *Provider) ListSavedCollections(ctx context.Context, userID string) ([]entity.SavedCollection, error) {
	saved := []entity.SavedCollection{}
	_, err := p.get(ctx, "list saved collections", "/savedCollections", url.Values{"userId": {userID}}, &saved)
	return saved, err
}

// Count uses json-server's X-Total-Count header, falling back to the length of the page.
func (p *Provider) Count(ctx context.Context, q entity.CountQuery) (int64, error) {
	op := "count " + q.Resource
	query := url.Values{"_limit": {"1"}}
	if q.Field != "" {
		query.Set(camelCase(q.Field), q.Value)
	}
	var page []map[string]interface{}
	resp, err := p.get(ctx, op, "/"+camelCase(q.Resource), query, &page)
	if err != nil {
		return 0, err
	}
	if total := resp.Header.Get("X-Total-Count"); total != "" {
		n, err := strconv.ParseInt(total, 10, 64)
		if err != nil {
			return 0, entity.NewMutationError(entity.ErrorKindNetwork, op, fmt.Errorf("bad X-Total-Count %q", total))
		}
		return n, nil
	}
	return int64(len(page)), nil
}

// camelCase turns the column names used across backends (saved_collections, user_id)
// into json-server's (savedCollections, userId).
func camelCase(s string) string {
	parts := strings.Split(s, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

// UpdateProfile PATCHes the session user's row.
func (p *Provider) UpdateProfile(ctx context.Context, update entity.ProfileUpdate) (*entity.User, error) {
	op := "update profile"
	sess, err := entity.RequireSession(ctx, op)
	if err != nil {
		return nil, err
	}
	var out userResponse
	if err := p.send(ctx, op, http.MethodPatch, "/users/"+url.PathEscape(sess.UserID), update, &out); err != nil {
		return nil, err
	}
	u := out.toEntity()
	return &u, nil
}

// userResponse is the public user shape, which spells the image camelCase.
type userResponse struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Bio          *string `json:"bio"`
	ProfileImage *string `json:"profileImage"`
}

func (r userResponse) toEntity() entity.User {
	return entity.User{
		ID:           r.ID,
		Username:     strings.TrimPrefix(r.Username, "@"),
		Name:         r.Name,
		Email:        r.Email,
		Bio:          r.Bio,
		ProfileImage: r.ProfileImage,
	}
}

type loginResponse struct {
	AccessToken string       `json:"accessToken"`
	User        userResponse `json:"user"`
}

// SignIn posts credentials to /auth/login.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*entity.Session, error) {
	var out loginResponse
	_, err := p.client.Do(ctx, rest.Request{
		Op:     "sign in",
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   map[string]string{"email": email, "password": password},
		Out:    &out,
	})
	if err != nil {
		return nil, err
	}
	sess, err := jwt.ParseSession(out.AccessToken, "")
	if err != nil {
		return nil, entity.NewMutationError(entity.ErrorKindNetwork, "sign in", err)
	}
	if out.User.Username != "" {
		sess.Username = out.User.Username
	}
	sess.Name = out.User.Name
	return sess, nil
}

// SignUp posts to /auth/register. The token it answers with is discarded, callers sign in afterwards.
func (p *Provider) SignUp(ctx context.Context, reg entity.Registration) (*entity.User, error) {
	var out loginResponse
	_, err := p.client.Do(ctx, rest.Request{
		Op:     "sign up",
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body: map[string]interface{}{
			"email":        reg.Email,
			"password":     reg.Password,
			"username":     reg.Username,
			"name":         reg.Name,
			"profileImage": reg.ProfileImage,
		},
		Out: &out,
	})
	if err != nil {
		return nil, err
	}
	u := out.User.toEntity()
	return &u, nil
}
