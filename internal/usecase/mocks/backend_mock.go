package mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
)

// MockBackend is an in-memory implementation of contract.IBackend for usecase tests.
type MockBackend struct {
	mu sync.Mutex

	// Control mock behavior
	SetLikeCountErr  error
	SetFollowingErr  error
	SetSavedErr      error
	ListCommentsErr  error
	AddCommentErr    error
	DeleteCommentErr error
	DeletePostErr    error
	DeleteCollErr    error
	CountErr         error
	CreateErr        error
	SignUpErr        error
	UpdateProfileErr error

	// LikeCountOverride, when set, is returned instead of the value that was sent.
	LikeCountOverride *int64

	// Gate, when non-nil, blocks mutations until a value is received.
	Gate chan struct{}
	// Entered receives one value each time a mutation starts waiting on Gate.
	Entered chan struct{}

	// Recorded calls
	SetLikeCountCalls  []int64
	SetFollowingCalls  []bool
	SetSavedCalls      []bool
	ListCommentsCalls  int
	AddCommentCalls    int
	DeleteCommentCalls []string
	DeletePostCalls    []string

	// Data
	CommentsByParent map[entity.ParentRef][]entity.Comment
	PostsData        []entity.Post
	CollectionsData  []entity.Collection
	Counts           map[string]int64
	Following        map[string]bool
	SessionToReturn  *entity.Session
	SignUps          []entity.Registration
	ProfileUpdates   []entity.ProfileUpdate

	nextID int
}

var _ contract.IBackend = (*MockBackend)(nil)

func NewMockBackend() *MockBackend {
	return &MockBackend{
		CommentsByParent: make(map[entity.ParentRef][]entity.Comment),
		Counts:           make(map[string]int64),
		Following:        make(map[string]bool),
	}
}

func (m *MockBackend) Name() string { return "mock" }

func (m *MockBackend) wait(ctx context.Context) error {
	if m.Gate == nil {
		return nil
	}
	if m.Entered != nil {
		m.Entered <- struct{}{}
	}
	select {
	case <-m.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MockBackend) SetLikeCount(ctx context.Context, kind entity.TargetKind, id string, newValue int64) (int64, error) {
	m.mu.Lock()
	m.SetLikeCountCalls = append(m.SetLikeCountCalls, newValue)
	m.mu.Unlock()
	if err := m.wait(ctx); err != nil {
		return 0, err
	}
	if m.SetLikeCountErr != nil {
		return 0, m.SetLikeCountErr
	}
	if m.LikeCountOverride != nil {
		return *m.LikeCountOverride, nil
	}
	return newValue, nil
}

func (m *MockBackend) SetFollowing(ctx context.Context, followerID, targetUserID string, following bool) error {
	m.mu.Lock()
	m.SetFollowingCalls = append(m.SetFollowingCalls, following)
	m.mu.Unlock()
	if err := m.wait(ctx); err != nil {
		return err
	}
	if m.SetFollowingErr != nil {
		return m.SetFollowingErr
	}
	m.mu.Lock()
	m.Following[followerID+"->"+targetUserID] = following
	m.mu.Unlock()
	return nil
}

func (m *MockBackend) SetSaved(ctx context.Context, userID, collectionID string, saved bool) (string, error) {
	m.mu.Lock()
	m.SetSavedCalls = append(m.SetSavedCalls, saved)
	m.mu.Unlock()
	if err := m.wait(ctx); err != nil {
		return "", err
	}
	if m.SetSavedErr != nil {
		return "", m.SetSavedErr
	}
	if !saved {
		return "", nil
	}
	return "saved-" + userID + "-" + collectionID, nil
}

func (m *MockBackend) ListComments(ctx context.Context, parent entity.ParentRef) ([]entity.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCommentsCalls++
	if m.ListCommentsErr != nil {
		return nil, m.ListCommentsErr
	}
	out := make([]entity.Comment, len(m.CommentsByParent[parent]))
	copy(out, m.CommentsByParent[parent])
	return out, nil
}

func (m *MockBackend) AddComment(ctx context.Context, parent entity.ParentRef, text string) (*entity.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddCommentCalls++
	if m.AddCommentErr != nil {
		return nil, m.AddCommentErr
	}
	sess, ok := entity.SessionFromContext(ctx)
	if !ok {
		return nil, entity.ErrAuthRequired
	}
	m.nextID++
	c := entity.Comment{
		ID:           fmt.Sprintf("srv-%d", m.nextID),
		UserID:       sess.UserID,
		AuthorName:   sess.Name,
		AuthorHandle: sess.Handle(),
		Text:         text,
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC).Add(time.Duration(m.nextID) * time.Second),
	}
	if parent.Kind == entity.TargetKindCollection {
		c.CollectionID = parent.ID
	} else {
		c.PostID = parent.ID
	}
	m.CommentsByParent[parent] = append(m.CommentsByParent[parent], c)
	return &c, nil
}

func (m *MockBackend) DeleteComment(ctx context.Context, commentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCommentCalls = append(m.DeleteCommentCalls, commentID)
	if m.DeleteCommentErr != nil {
		return m.DeleteCommentErr
	}
	for parent, list := range m.CommentsByParent {
		for i, c := range list {
			if c.ID == commentID {
				m.CommentsByParent[parent] = append(list[:i:i], list[i+1:]...)
				return nil
			}
		}
	}
	return entity.ErrNotFound
}

func (m *MockBackend) GetLikeCount(ctx context.Context, kind entity.TargetKind, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.PostsData {
		if p.ID == id {
			return p.Likes, nil
		}
	}
	for _, c := range m.CollectionsData {
		if c.ID == id {
			return c.Likes, nil
		}
	}
	return 0, entity.ErrNotFound
}

func (m *MockBackend) ListPosts(ctx context.Context) ([]entity.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Post, len(m.PostsData))
	copy(out, m.PostsData)
	return out, nil
}

func (m *MockBackend) ListPostsByUser(ctx context.Context, userID string) ([]entity.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Post
	for _, p := range m.PostsData {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockBackend) DeletePost(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeletePostCalls = append(m.DeletePostCalls, id)
	return m.DeletePostErr
}

func (m *MockBackend) ListCollections(ctx context.Context) ([]entity.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Collection, len(m.CollectionsData))
	copy(out, m.CollectionsData)
	return out, nil
}

func (m *MockBackend) DeleteCollection(ctx context.Context, id string) error {
	return m.DeleteCollErr
}

func (m *MockBackend) IsFollowing(ctx context.Context, followerID, targetUserID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Following[followerID+"->"+targetUserID], nil
}

func (m *MockBackend) ListSavedCollections(ctx context.Context, userID string) ([]entity.SavedCollection, error) {
	return nil, nil
}

func (m *MockBackend) Count(ctx context.Context, q entity.CountQuery) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	return m.Counts[q.Resource+"."+q.Field], nil
}

func (m *MockBackend) SignIn(ctx context.Context, email, password string) (*entity.Session, error) {
	if m.SessionToReturn == nil {
		return nil, errors.New("invalid credentials")
	}
	return m.SessionToReturn, nil
}

func (m *MockBackend) CreatePost(ctx context.Context, draft entity.PostDraft) (*entity.Post, error) {
	sess, err := entity.RequireSession(ctx, "create post")
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.nextID++
	p := entity.Post{
		ID:         fmt.Sprintf("post-%d", m.nextID),
		UserID:     sess.UserID,
		UserName:   sess.Name,
		UserHandle: sess.Handle(),
		MovieTitle: draft.MovieTitle,
		Year:       draft.Year,
		ReviewText: draft.ReviewText,
		Rating:     draft.Rating,
		MovieImage: draft.MovieImage,
	}
	m.PostsData = append(m.PostsData, p)
	return &p, nil
}

func (m *MockBackend) CreateCollection(ctx context.Context, draft entity.CollectionDraft) (*entity.Collection, error) {
	sess, err := entity.RequireSession(ctx, "create collection")
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.nextID++
	c := entity.Collection{
		ID:          fmt.Sprintf("collection-%d", m.nextID),
		Title:       draft.Title,
		Author:      sess.Name,
		Description: draft.Description,
		Movies:      draft.Movies,
		MoviesCount: len(draft.Movies),
		IsPrivate:   draft.IsPrivate,
		CreatedBy:   sess.UserID,
	}
	m.CollectionsData = append(m.CollectionsData, c)
	return &c, nil
}

func (m *MockBackend) UpdateProfile(ctx context.Context, update entity.ProfileUpdate) (*entity.User, error) {
	sess, err := entity.RequireSession(ctx, "update profile")
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProfileUpdates = append(m.ProfileUpdates, update)
	if m.UpdateProfileErr != nil {
		return nil, m.UpdateProfileErr
	}
	u := entity.User{ID: sess.UserID, Username: sess.Username, Name: sess.Name, Bio: update.Bio, ProfileImage: update.ProfileImage}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Username != nil {
		u.Username = *update.Username
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	return &u, nil
}

func (m *MockBackend) SignUp(ctx context.Context, reg entity.Registration) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SignUps = append(m.SignUps, reg)
	if m.SignUpErr != nil {
		return nil, m.SignUpErr
	}
	m.nextID++
	return &entity.User{
		ID:       fmt.Sprintf("user-%d", m.nextID),
		Username: reg.Username,
		Name:     reg.Name,
		Email:    reg.Email,
	}, nil
}
