package supabase

import (
	"context"
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

const (
	preferRepresentation = "return=representation"
	preferMinimal        = "return=minimal"
	commentSelect        = "id,post_id,collection_id,user_id,text,created_at," + authorSelect
	userSelect           = "id,username,name,email,bio,profile_image"
)

// Provider talks to a Supabase project through PostgREST and GoTrue.
type Provider struct {
	client *rest.Client
	logger usecasecontract.IAppLogger
}

var _ contract.IBackend = (*Provider)(nil)

// New creates a Provider. Requests without a session are sent with the anon key as bearer.
func New(projectURL, anonKey string, timeout time.Duration, logger usecasecontract.IAppLogger, opts ...rest.Option) *Provider {
	opts = append([]rest.Option{
		rest.WithHeader("apikey", anonKey),
		rest.WithFallbackToken(anonKey),
	}, opts...)
	return &Provider{
		client: rest.NewClient(projectURL, timeout, opts...),
		logger: logger,
	}
}

func (p *Provider) Name() string { return "supabase" }

func eq(v string) string { return "eq." + v }

func tableFor(kind entity.TargetKind) (string, bool) {
	switch kind {
	case entity.TargetKindPost:
		return "posts", true
	case entity.TargetKindCollection:
		return "collections", true
	}
	return "", false
}

func (p *Provider) rest(ctx context.Context, op, method, table string, q url.Values, prefer string, body, out interface{}) (*http.Response, error) {
	var h http.Header
	if prefer != "" {
		h = http.Header{"Prefer": []string{prefer}}
	}
	return p.client.Do(ctx, rest.Request{
		Op:     op,
		Method: method,
		Path:   "/rest/v1/" + table,
		Query:  q,
		Header: h,
		Body:   body,
		Out:    out,
	})
}

// explainEmpty tells apart a row hidden by row-level security from a missing one
// after a write matched nothing.
func (p *Provider) explainEmpty(ctx context.Context, op, table, id string) error {
	var rows []idRow
	q := url.Values{"select": {"id"}, "id": {eq(id)}}
	if _, err := p.rest(ctx, op, http.MethodGet, table, q, "", nil, &rows); err != nil {
		return err
	}
	if len(rows) > 0 {
		return entity.NewMutationError(entity.ErrorKindPermissionDenied, op, fmt.Errorf("%s %s is not yours", table, id))
	}
	return entity.NewMutationError(entity.ErrorKindNotFound, op, fmt.Errorf("%s %s does not exist", table, id))
}

func (p *Provider) deleteByID(ctx context.Context, op, table, id string) error {
	if _, err := entity.RequireSession(ctx, op); err != nil {
		return err
	}
	var rows []idRow
	q := url.Values{"id": {eq(id)}, "select": {"id"}}
	if _, err := p.rest(ctx, op, http.MethodDelete, table, q, preferRepresentation, nil, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return p.explainEmpty(ctx, op, table, id)
	}
	return nil
}

// SetLikeCount overwrites the likes column and returns what PostgREST stored.
func (p *Provider) SetLikeCount(ctx context.Context, kind entity.TargetKind, id string, newValue int64) (int64, error) {
	op := "set likes " + string(kind) + " " + id
	table, ok := tableFor(kind)
	if !ok {
		return 0, entity.NewMutationError(entity.ErrorKindNotFound, op, fmt.Errorf("%s has no like counter", kind))
	}
	if _, err := entity.RequireSession(ctx, op); err != nil {
		return 0, err
	}

	var rows []struct {
		Likes int64 `json:"likes"`
	}
	q := url.Values{"id": {eq(id)}, "select": {"likes"}}
	body := map[string]int64{"likes": entity.ClampCount(newValue)}
	if _, err := p.rest(ctx, op, http.MethodPatch, table, q, preferRepresentation, body, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, p.explainEmpty(ctx, op, table, id)
	}
	return entity.ClampCount(rows[0].Likes), nil
}

// SetFollowing inserts or removes the follower edge. Both directions are idempotent.
func (p *Provider) SetFollowing(ctx context.Context, followerID, targetUserID string, following bool) error {
	op := "set following " + targetUserID
	if _, err := entity.RequireSession(ctx, op); err != nil {
		return err
	}
	if following {
		q := url.Values{"on_conflict": {"follower_id,following_id"}}
		body := map[string]string{"follower_id": followerID, "following_id": targetUserID}
		_, err := p.rest(ctx, op, http.MethodPost, "followers", q, "resolution=ignore-duplicates,"+preferMinimal, body, nil)
		return err
	}
	q := url.Values{"follower_id": {eq(followerID)}, "following_id": {eq(targetUserID)}}
	_, err := p.rest(ctx, op, http.MethodDelete, "followers", q, preferMinimal, nil, nil)
	return err
}

// SetSaved upserts or removes the bookmark and returns the record id when saving.
func (p *Provider) SetSaved(ctx context.Context, userID, collectionID string, saved bool) (string, error) {
	op := "set saved " + collectionID
	if _, err := entity.RequireSession(ctx, op); err != nil {
		return "", err
	}
	if !saved {
		q := url.Values{"user_id": {eq(userID)}, "collection_id": {eq(collectionID)}}
		_, err := p.rest(ctx, op, http.MethodDelete, "saved_collections", q, preferMinimal, nil, nil)
		return "", err
	}

	var rows []savedRow
	q := url.Values{"on_conflict": {"user_id,collection_id"}, "select": {"id,user_id,collection_id,created_at"}}
	body := map[string]string{"user_id": userID, "collection_id": collectionID}
	if _, err := p.rest(ctx, op, http.MethodPost, "saved_collections", q, "resolution=merge-duplicates,"+preferRepresentation, body, &rows); err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", entity.NewMutationError(entity.ErrorKindNetwork, op, fmt.Errorf("upsert returned no row"))
	}
	return string(rows[0].ID), nil
}

func parentColumn(parent entity.ParentRef) (string, error) {
	switch parent.Kind {
	case entity.TargetKindPost:
		return "post_id", nil
	case entity.TargetKindCollection:
		return "collection_id", nil
	}
	return "", fmt.Errorf("comments cannot hang off a %s", parent.Kind)
}

// ListComments returns the parent's comments oldest first.
func (p *Provider) ListComments(ctx context.Context, parent entity.ParentRef) ([]entity.Comment, error) {
	op := "list comments " + parent.ID
	column, err := parentColumn(parent)
	if err != nil {
		return nil, entity.NewMutationError(entity.ErrorKindNotFound, op, err)
	}
	var rows []commentRow
	q := url.Values{"select": {commentSelect}, column: {eq(parent.ID)}, "order": {"created_at.asc"}}
	if _, err := p.rest(ctx, op, http.MethodGet, "comments", q, "", nil, &rows); err != nil {
		return nil, err
	}
	out := make([]entity.Comment, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toEntity())
	}
	return out, nil
}

// AddComment inserts a comment authored by the session user.
func (p *Provider) AddComment(ctx context.Context, parent entity.ParentRef, text string) (*entity.Comment, error) {
	op := "add comment " + parent.ID
	sess, err := entity.RequireSession(ctx, op)
	if err != nil {
		return nil, err
	}
	column, err := parentColumn(parent)
	if err != nil {
		return nil, entity.NewMutationError(entity.ErrorKindNotFound, op, err)
	}

	var rows []commentRow
	q := url.Values{"select": {commentSelect}}
	body := map[string]string{column: parent.ID, "user_id": sess.UserID, "text": text}
	if _, err := p.rest(ctx, op, http.MethodPost, "comments", q, preferRepresentation, body, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, entity.NewMutationError(entity.ErrorKindNetwork, op, fmt.Errorf("insert returned no row"))
	}
	c := rows[0].toEntity()
	return &c, nil
}

func (p *Provider) DeleteComment(ctx context.Context, commentID string) error {
	return p.deleteByID(ctx, "delete comment "+commentID, "comments", commentID)
}

func (p *Provider) GetLikeCount(ctx context.Context, kind entity.TargetKind, id string) (int64, error) {
	op := "get likes " + string(kind) + " " + id
	table, ok := tableFor(kind)
	if !ok {
		return 0, entity.NewMutationError(entity.ErrorKindNotFound, op, fmt.Errorf("%s has no like counter", kind))
	}
	var rows []struct {
		Likes int64 `json:"likes"`
	}
	if _, err := p.rest(ctx, op, http.MethodGet, table, url.Values{"select": {"likes"}, "id": {eq(id)}}, "", nil, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, entity.NewMutationError(entity.ErrorKindNotFound, op, fmt.Errorf("%s %s does not exist", table, id))
	}
	return entity.ClampCount(rows[0].Likes), nil
}

func (p *Provider) listPosts(ctx context.Context, op string, q url.Values) ([]entity.Post, error) {
	q.Set("select", "*,"+authorSelect)
	q.Set("order", "created_at.desc")
	var rows []postRow
	if _, err := p.rest(ctx, op, http.MethodGet, "posts", q, "", nil, &rows); err != nil {
		return nil, err
	}
	out := make([]entity.Post, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toEntity())
	}
	return out, nil
}

func (p *Provider) ListPosts(ctx context.Context) ([]entity.Post, error) {
	return p.listPosts(ctx, "list posts", url.Values{})
}

func (p *Provider) ListPostsByUser(ctx context.Context, userID string) ([]entity.Post, error) {
	return p.listPosts(ctx, "list posts of "+userID, url.Values{"user_id": {eq(userID)}})
}

func (p *Provider) DeletePost(ctx context.Context, id string) error {
	return p.deleteByID(ctx, "delete post "+id, "posts", id)
}

func (p *Provider) ListCollections(ctx context.Context) ([]entity.Collection, error) {
	var rows []collectionRow
	q := url.Values{"select": {"*," + authorSelect}, "order": {"created_at.desc"}}
	if _, err := p.rest(ctx, "list collections", http.MethodGet, "collections", q, "", nil, &rows); err != nil {
		return nil, err
	}
	out := make([]entity.Collection, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toEntity())
	}
	return out, nil
}

func (p *Provider) DeleteCollection(ctx context.Context, id string) error {
	return p.deleteByID(ctx, "delete collection "+id, "collections", id)
}

// CreatePost inserts a review owned by the session user and returns it with the author joined.
func (p *Provider) CreatePost(ctx context.Context, draft entity.PostDraft) (*entity.Post, error) {
	op := "create post"
	sess, err := entity.RequireSession(ctx, op)
	if err != nil {
		return nil, err
	}
	body := map[string]interface{}{
		"user_id":     sess.UserID,
		"movie_title": draft.MovieTitle,
		"review_text": draft.ReviewText,
		"rating":      draft.Rating,
	}
	if draft.Year != 0 {
		body["year"] = draft.Year
	}
	if draft.MovieImage != "" {
		body["movie_image"] = draft.MovieImage
	}
	var rows []postRow
	q := url.Values{"select": {"*," + authorSelect}}
	if _, err := p.rest(ctx, op, http.MethodPost, "posts", q, preferRepresentation, body, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, entity.NewMutationError(entity.ErrorKindNetwork, op, fmt.Errorf("insert returned no row"))
	}
	post := rows[0].toEntity()
	return &post, nil
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
		"description": draft.Description,
		"movies":      movies,
		"is_private":  draft.IsPrivate,
		"created_by":  sess.UserID,
		"likes":       0,
	}
	var rows []collectionRow
	q := url.Values{"select": {"*," + authorSelect}}
	if _, err := p.rest(ctx, op, http.MethodPost, "collections", q, preferRepresentation, body, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, entity.NewMutationError(entity.ErrorKindNetwork, op, fmt.Errorf("insert returned no row"))
	}
	col := rows[0].toEntity()
	return &col, nil
}

func (p *Provider) IsFollowing(ctx context.Context, followerID, targetUserID string) (bool, error) {
	var rows []idRow
	q := url.Values{
		"select":       {"id"},
		"follower_id":  {eq(followerID)},
		"following_id": {eq(targetUserID)},
		"limit":        {"1"},
	}
	if _, err := p.rest(ctx, "read follow state", http.MethodGet, "followers", q, "", nil, &rows); err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func (p *Provider) ListSavedCollections(ctx context.Context, userID string) ([]entity.SavedCollection, error) {
	var rows []savedRow
	q := url.Values{"select": {"id,user_id,collection_id,created_at"}, "user_id": {eq(userID)}, "order": {"created_at.desc"}}
	if _, err := p.rest(ctx, "list saved collections", http.MethodGet, "saved_collections", q, "", nil, &rows); err != nil {
		return nil, err
	}
	out := make([]entity.SavedCollection, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toEntity())
	}
	return out, nil
}

// Count asks PostgREST for an exact count without transferring rows.
func (p *Provider) Count(ctx context.Context, q entity.CountQuery) (int64, error) {
	op := "count " + q.Resource
	query := url.Values{"select": {"id"}}
	if q.Field != "" {
		query.Set(q.Field, eq(q.Value))
	}
	resp, err := p.rest(ctx, op, http.MethodHead, q.Resource, query, "count=exact", nil, nil)
	if err != nil {
		return 0, err
	}
	n, err := parseContentRange(resp.Header.Get("Content-Range"))
	if err != nil {
		return 0, entity.NewMutationError(entity.ErrorKindNetwork, op, err)
	}
	return n, nil
}

// parseContentRange reads the total from "0-9/42" or "*/42".
func parseContentRange(v string) (int64, error) {
	i := strings.LastIndexByte(v, '/')
	if i < 0 || v[i+1:] == "*" {
		return 0, fmt.Errorf("no exact count in Content-Range %q", v)
	}
	return strconv.ParseInt(v[i+1:], 10, 64)
}

// UpdateProfile patches the session user's row. Row-level security hides other rows.
func (p *Provider) UpdateProfile(ctx context.Context, update entity.ProfileUpdate) (*entity.User, error) {
	op := "update profile"
	sess, err := entity.RequireSession(ctx, op)
	if err != nil {
		return nil, err
	}
	var rows []userRow
	q := url.Values{"id": {eq(sess.UserID)}, "select": {userSelect}}
	if _, err := p.rest(ctx, op, http.MethodPatch, "users", q, preferRepresentation, profileColumns(update), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, p.explainEmpty(ctx, op, "users", sess.UserID)
	}
	u := rows[0].toEntity()
	return &u, nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         struct {
		ID string `json:"id"`
	} `json:"user"`
}

// SignIn runs the GoTrue password grant and loads the public profile row.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*entity.Session, error) {
	var tok tokenResponse
	_, err := p.client.Do(ctx, rest.Request{
		Op:     "sign in",
		Method: http.MethodPost,
		Path:   "/auth/v1/token",
		Query:  url.Values{"grant_type": {"password"}},
		Body:   map[string]string{"email": email, "password": password},
		Out:    &tok,
	})
	if err != nil {
		return nil, err
	}

	sess, err := jwt.ParseSession(tok.AccessToken, tok.RefreshToken)
	if err != nil {
		return nil, entity.NewMutationError(entity.ErrorKindNetwork, "sign in", err)
	}
	if sess.ExpiresAt.IsZero() && tok.ExpiresIn > 0 {
		sess.ExpiresAt = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}

	var profile []authorRow
	authed := entity.ContextWithSession(ctx, *sess)
	q := url.Values{"select": {"username,name,profile_image"}, "id": {eq(sess.UserID)}}
	if _, err := p.rest(authed, "load profile", http.MethodGet, "users", q, "", nil, &profile); err != nil {
		p.logger.Warnf("signed in but profile lookup failed: %v", err)
	} else if len(profile) > 0 {
		sess.Username = strings.TrimPrefix(profile[0].Username, "@")
		sess.Name = profile[0].Name
	}
	return sess, nil
}

// signUpResponse is either a bare user, when email confirmation is on, or a token response.
type signUpResponse struct {
	ID           string `json:"id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID string `json:"id"`
	} `json:"user"`
}

func (r signUpResponse) userID() string {
	if r.User.ID != "" {
		return r.User.ID
	}
	return r.ID
}

// SignUp creates the GoTrue account and then the public users row.
// The row is written with the new session when GoTrue hands one out, with the anon key otherwise.
func (p *Provider) SignUp(ctx context.Context, reg entity.Registration) (*entity.User, error) {
	op := "sign up"
	var out signUpResponse
	_, err := p.client.Do(ctx, rest.Request{
		Op:     op,
		Method: http.MethodPost,
		Path:   "/auth/v1/signup",
		Body:   map[string]string{"email": reg.Email, "password": reg.Password},
		Out:    &out,
	})
	if err != nil {
		return nil, err
	}
	id := out.userID()
	if id == "" {
		return nil, entity.NewMutationError(entity.ErrorKindNetwork, op, fmt.Errorf("signup returned no user"))
	}

	writeCtx := ctx
	if out.AccessToken != "" {
		writeCtx = entity.ContextWithSession(ctx, entity.Session{UserID: id, AccessToken: out.AccessToken, RefreshToken: out.RefreshToken})
	}
	row := map[string]interface{}{
		"id":            id,
		"name":          reg.Name,
		"username":      "@" + strings.TrimPrefix(reg.Username, "@"),
		"email":         reg.Email,
		"profile_image": reg.ProfileImage,
	}
	if _, err := p.rest(writeCtx, "create profile", http.MethodPost, "users", nil, preferMinimal, row, nil); err != nil {
		p.logger.Errorf("account %s created but profile row failed: %v", id, err)
		return nil, err
	}
	return &entity.User{
		ID:           id,
		Username:     strings.TrimPrefix(reg.Username, "@"),
		Name:         reg.Name,
		Email:        reg.Email,
		ProfileImage: reg.ProfileImage,
	}, nil
}
