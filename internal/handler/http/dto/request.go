package dto

// RegisterRequest creates an account.
type RegisterRequest struct {
	Username     string  `json:"username" binding:"required,handle"`
	Name         string  `json:"name" binding:"required,notblank,max=80"`
	Email        string  `json:"email" binding:"required,email"`
	Password     string  `json:"password" binding:"required,min=8"`
	ProfileImage *string `json:"profileImage" binding:"omitempty,url"`
}

// UpdateProfileRequest edits the caller's profile. Absent fields are left alone.
type UpdateProfileRequest struct {
	Name         *string `json:"name" binding:"omitempty,notblank,max=80"`
	Username     *string `json:"username" binding:"omitempty,handle"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Bio          *string `json:"bio" binding:"omitempty,max=500"`
	ProfileImage *string `json:"profileImage" binding:"omitempty,url"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// PatchLikesRequest is the only field clients may patch on posts and collections.
type PatchLikesRequest struct {
	Likes *int64 `json:"likes" binding:"required"`
}

// CreatePostRequest publishes a review.
type CreatePostRequest struct {
	MovieTitle string `json:"movieTitle" binding:"required,notblank"`
	Year       int    `json:"year"`
	ReviewText string `json:"reviewText" binding:"required,notblank"`
	Rating     int    `json:"rating" binding:"min=0,max=5"`
	MovieImage string `json:"movieImage"`
}

// CreateCollectionRequest creates a curated list.
type CreateCollectionRequest struct {
	Title       string   `json:"title" binding:"required,notblank"`
	Description string   `json:"description"`
	Movies      []string `json:"movies"`
	IsPrivate   bool     `json:"isPrivate"`
}

// CreateCommentRequest attaches a comment to exactly one of a post or a collection.
type CreateCommentRequest struct {
	PostID       string `json:"postId" binding:"required_without=CollectionID,excluded_with=CollectionID"`
	CollectionID string `json:"collectionId" binding:"required_without=PostID"`
	Text         string `json:"text" binding:"required,notblank,max=2000"`
}

// SaveCollectionRequest bookmarks a collection for the caller.
type SaveCollectionRequest struct {
	CollectionID string `json:"collectionId" binding:"required"`
}

// FollowRequest follows another user.
type FollowRequest struct {
	FollowingID string `json:"followingId" binding:"required"`
}
