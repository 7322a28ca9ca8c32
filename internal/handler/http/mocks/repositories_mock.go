package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
)

var errStorage = errors.New("storage unavailable")

// MockStore is an in-memory implementation of every repository the mock backend uses.
// Repository views are obtained with Users(), Posts(), and so on.
type MockStore struct {
	mu          sync.Mutex
	seq         int
	users       map[string]entity.User
	posts       map[string]entity.Post
	collections map[string]entity.Collection
	comments    map[string]entity.Comment
	saved       map[string]entity.SavedCollection
	follows     map[string]entity.Follow

	// Control mock behavior
	ShouldFailList   bool
	ShouldFailCreate bool
	ShouldFailDelete bool
	ShouldFailCount  bool
}

func NewMockStore() *MockStore {
	return &MockStore{
		users:       make(map[string]entity.User),
		posts:       make(map[string]entity.Post),
		collections: make(map[string]entity.Collection),
		comments:    make(map[string]entity.Comment),
		saved:       make(map[string]entity.SavedCollection),
		follows:     make(map[string]entity.Follow),
	}
}

func (s *MockStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// SeedUser inserts a user as-is and returns it.
func (s *MockStore) SeedUser(u entity.User) entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return u
}

func (s *MockStore) SeedPost(p entity.Post) entity.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[p.ID] = p
	return p
}

func (s *MockStore) SeedCollection(c entity.Collection) entity.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[c.ID] = c
	return c
}

func (s *MockStore) SeedComment(c entity.Comment) entity.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[c.ID] = c
	return c
}

func (s *MockStore) SeedFollow(f entity.Follow) entity.Follow {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.follows[f.ID] = f
	return f
}

// Post returns the stored post for assertions.
func (s *MockStore) Post(id string) (entity.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	return p, ok
}

// SavedCount returns the number of saved-collection records.
func (s *MockStore) SavedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func (s *MockStore) FollowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.follows)
}

func (s *MockStore) Users() contract.IUserRepository             { return userRepo{s} }
func (s *MockStore) Posts() contract.IPostRepository             { return postRepo{s} }
func (s *MockStore) Collections() contract.ICollectionRepository { return collectionRepo{s} }
func (s *MockStore) Comments() contract.ICommentRepository       { return commentRepo{s} }
func (s *MockStore) Saved() contract.ISavedCollectionRepository  { return savedRepo{s} }
func (s *MockStore) Follows() contract.IFollowRepository         { return followRepo{s} }
func (s *MockStore) Counter() contract.ICounter                  { return counter{s} }

type userRepo struct{ s *MockStore }

func (r userRepo) CreateUser(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ShouldFailCreate {
		return errStorage
	}
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return contract.ErrDuplicateEmail
		}
	}
	user.ID = r.s.nextID("user")
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, contract.ErrRecordNotFound
	}
	return &u, nil
}

func (r userRepo) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, contract.ErrRecordNotFound
}

func (r userRepo) UpdateProfile(ctx context.Context, id string, update entity.ProfileUpdate) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, contract.ErrRecordNotFound
	}
	if update.Email != nil {
		for otherID, other := range r.s.users {
			if otherID != id && other.Email == *update.Email {
				return nil, contract.ErrDuplicateEmail
			}
		}
		u.Email = *update.Email
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Username != nil {
		u.Username = *update.Username
	}
	if update.Bio != nil {
		u.Bio = update.Bio
	}
	if update.ProfileImage != nil {
		u.ProfileImage = update.ProfileImage
	}
	u.UpdatedAt = time.Now().UTC()
	r.s.users[id] = u
	return &u, nil
}

type postRepo struct{ s *MockStore }

func (r postRepo) List(ctx context.Context, userID string) ([]entity.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ShouldFailList {
		return nil, errStorage
	}
	out := []entity.Post{}
	for _, p := range r.s.posts {
		if userID == "" || p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r postRepo) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, contract.ErrRecordNotFound
	}
	return &p, nil
}

func (r postRepo) Create(ctx context.Context, post *entity.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ShouldFailCreate {
		return errStorage
	}
	post.ID = r.s.nextID("post")
	post.CreatedAt = time.Now().UTC()
	r.s.posts[post.ID] = *post
	return nil
}

func (r postRepo) SetLikes(ctx context.Context, id string, likes int64) (*entity.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, contract.ErrRecordNotFound
	}
	p.Likes = entity.ClampCount(likes)
	r.s.posts[id] = p
	return &p, nil
}

func (r postRepo) IncrementComments(ctx context.Context, id string, delta int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return contract.ErrRecordNotFound
	}
	p.Comments = entity.ClampCount(p.Comments + delta)
	r.s.posts[id] = p
	return nil
}

func (r postRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ShouldFailDelete {
		return errStorage
	}
	if _, ok := r.s.posts[id]; !ok {
		return contract.ErrRecordNotFound
	}
	delete(r.s.posts, id)
	return nil
}

type collectionRepo struct{ s *MockStore }

func (r collectionRepo) List(ctx context.Context, createdBy string) ([]entity.Collection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ShouldFailList {
		return nil, errStorage
	}
	out := []entity.Collection{}
	for _, c := range r.s.collections {
		if createdBy == "" || c.CreatedBy == createdBy {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r collectionRepo) GetByID(ctx context.Context, id string) (*entity.Collection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.collections[id]
	if !ok {
		return nil, contract.ErrRecordNotFound
	}
	return &c, nil
}

func (r collectionRepo) Create(ctx context.Context, col *entity.Collection) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ShouldFailCreate {
		return errStorage
	}
	col.ID = r.s.nextID("collection")
	col.MoviesCount = len(col.Movies)
	col.CreatedAt = time.Now().UTC()
	r.s.collections[col.ID] = *col
	return nil
}

func (r collectionRepo) SetLikes(ctx context.Context, id string, likes int64) (*entity.Collection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.collections[id]
	if !ok {
		return nil, contract.ErrRecordNotFound
	}
	c.Likes = entity.ClampCount(likes)
	r.s.collections[id] = c
	return &c, nil
}

func (r collectionRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ShouldFailDelete {
		return errStorage
	}
	if _, ok := r.s.collections[id]; !ok {
		return contract.ErrRecordNotFound
	}
	delete(r.s.collections, id)
	return nil
}

type commentRepo struct{ s *MockStore }

func (r commentRepo) filter(keep func(entity.Comment) bool) []entity.Comment {
	out := []entity.Comment{}
	for _, c := range r.s.comments {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r commentRepo) ListByParent(ctx context.Context, parent entity.ParentRef) ([]entity.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ShouldFailList {
		return nil, errStorage
	}
	return r.filter(func(c entity.Comment) bool { return c.Parent() == parent }), nil
}

func (r commentRepo) ListByUser(ctx context.Context, userID string) ([]entity.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ShouldFailList {
		return nil, errStorage
	}
	return r.filter(func(c entity.Comment) bool { return c.UserID == userID }), nil
}

func (r commentRepo) GetByID(ctx context.Context, id string) (*entity.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, contract.ErrRecordNotFound
	}
	return &c, nil
}

func (r commentRepo) Create(ctx context.Context, comment *entity.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ShouldFailCreate {
		return errStorage
	}
	comment.ID = r.s.nextID("comment")
	comment.CreatedAt = time.Now().UTC()
	r.s.comments[comment.ID] = *comment
	return nil
}

func (r commentRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ShouldFailDelete {
		return errStorage
	}
	if _, ok := r.s.comments[id]; !ok {
		return contract.ErrRecordNotFound
	}
	delete(r.s.comments, id)
	return nil
}

type savedRepo struct{ s *MockStore }

func (r savedRepo) Save(ctx context.Context, saved *entity.SavedCollection) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ShouldFailCreate {
		return errStorage
	}
	for _, existing := range r.s.saved {
		if existing.UserID == saved.UserID && existing.CollectionID == saved.CollectionID {
			*saved = existing
			return nil
		}
	}
	saved.ID = r.s.nextID("saved")
	saved.SavedAt = time.Now().UTC()
	r.s.saved[saved.ID] = *saved
	return nil
}

func (r savedRepo) ListByUser(ctx context.Context, userID string) ([]entity.SavedCollection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ShouldFailList {
		return nil, errStorage
	}
	out := []entity.SavedCollection{}
	for _, sc := range r.s.saved {
		if userID == "" || sc.UserID == userID {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r savedRepo) GetByID(ctx context.Context, id string) (*entity.SavedCollection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sc, ok := r.s.saved[id]
	if !ok {
		return nil, contract.ErrRecordNotFound
	}
	return &sc, nil
}

func (r savedRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ShouldFailDelete {
		return errStorage
	}
	if _, ok := r.s.saved[id]; !ok {
		return contract.ErrRecordNotFound
	}
	delete(r.s.saved, id)
	return nil
}

type followRepo struct{ s *MockStore }

func (r followRepo) Follow(ctx context.Context, follow *entity.Follow) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ShouldFailCreate {
		return errStorage
	}
	for _, existing := range r.s.follows {
		if existing.FollowerID == follow.FollowerID && existing.FollowingID == follow.FollowingID {
			*follow = existing
			return nil
		}
	}
	follow.ID = r.s.nextID("follow")
	follow.CreatedAt = time.Now().UTC()
	r.s.follows[follow.ID] = *follow
	return nil
}

func (r followRepo) Unfollow(ctx context.Context, followerID, followingID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ShouldFailDelete {
		return errStorage
	}
	for id, f := range r.s.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			delete(r.s.follows, id)
			return nil
		}
	}
	return contract.ErrRecordNotFound
}

func (r followRepo) List(ctx context.Context, followerID, followingID string) ([]entity.Follow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ShouldFailList {
		return nil, errStorage
	}
	out := []entity.Follow{}
	for _, f := range r.s.follows {
		if (followerID == "" || f.FollowerID == followerID) && (followingID == "" || f.FollowingID == followingID) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r followRepo) GetByID(ctx context.Context, id string) (*entity.Follow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.follows[id]
	if !ok {
		return nil, contract.ErrRecordNotFound
	}
	return &f, nil
}

type counter struct{ s *MockStore }

// Count supports the resources the profile page asks for, keyed by their storage names.
func (c counter) Count(ctx context.Context, q entity.CountQuery) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.ShouldFailCount {
		return 0, errStorage
	}
	var n int64
	switch {
	case q.Resource == "posts" && q.Field == "user_id":
		for _, p := range c.s.posts {
			if p.UserID == q.Value {
				n++
			}
		}
	case q.Resource == "followers" && q.Field == "follower_id":
		for _, f := range c.s.follows {
			if f.FollowerID == q.Value {
				n++
			}
		}
	case q.Resource == "followers" && q.Field == "following_id":
		for _, f := range c.s.follows {
			if f.FollowingID == q.Value {
				n++
			}
		}
	default:
		return 0, fmt.Errorf("%w: %s.%s", contract.ErrUnsupportedCount, q.Resource, q.Field)
	}
	return n, nil
}
