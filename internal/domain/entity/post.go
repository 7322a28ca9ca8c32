package entity

import "time"

// TargetKind names the kind of entity an interaction or comment is attached to.
type TargetKind string

const (
	TargetKindPost       TargetKind = "post"
	TargetKindCollection TargetKind = "collection"
	TargetKindUser       TargetKind = "user"
)

// Post is a movie review.
type Post struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	UserID     string    `bson:"user_id" json:"userId"`
	UserName   string    `bson:"user_name" json:"userName"`
	UserHandle string    `bson:"user_handle" json:"userHandle"`
	UserImage  *string   `bson:"user_image,omitempty" json:"userImage"`
	MovieTitle string    `bson:"movie_title" json:"movieTitle"`
	Year       int       `bson:"year" json:"year"`
	ReviewText string    `bson:"review_text" json:"reviewText"`
	Rating     int       `bson:"rating" json:"rating"`
	MovieImage string    `bson:"movie_image" json:"movieImage"`
	Likes      int64     `bson:"likes" json:"likes"`
	Comments   int64     `bson:"comments" json:"comments"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}

// Collection is a curated list of movies.
type Collection struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Author      string    `bson:"author" json:"author"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	MoviesCount int       `bson:"movies_count" json:"moviesCount"`
	Movies      []string  `bson:"movies" json:"movies"`
	IsPrivate   bool      `bson:"is_private" json:"isPrivate"`
	CreatedBy   string    `bson:"created_by" json:"createdBy"`
	Likes       int64     `bson:"likes" json:"likes"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}

// SavedCollection records that a user bookmarked a collection.
// The pair (UserID, CollectionID) is unique.
type SavedCollection struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	UserID       string    `bson:"user_id" json:"userId"`
	CollectionID string    `bson:"collection_id" json:"collectionId"`
	SavedAt      time.Time `bson:"saved_at" json:"savedAt"`
}

// CountQuery asks the backend for an exact row count of Resource where Field equals Value.
type CountQuery struct {
	Resource string
	Field    string
	Value    string
}

// PostDraft is a review about to be published. The author comes from the session.
type PostDraft struct {
	MovieTitle string
	Year       int
	ReviewText string
	Rating     int
	MovieImage string
}

// CollectionDraft is a collection about to be created. The owner comes from the session.
type CollectionDraft struct {
	Title       string
	Description string
	Movies      []string
	IsPrivate   bool
}
