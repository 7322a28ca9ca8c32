package supabase

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/popcornsocial/popcorn/internal/domain/entity"
)

// flexID accepts both bigint and uuid primary keys.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type authorRow struct {
	Username     string  `json:"username"`
	Name         string  `json:"name"`
	ProfileImage *string `json:"profile_image"`
}

func (a *authorRow) handle() string {
	if a == nil || a.Username == "" {
		return ""
	}
	return "@" + strings.TrimPrefix(a.Username, "@")
}

const authorSelect = "author:users(username,name,profile_image)"

type postRow struct {
	ID         flexID     `json:"id"`
	UserID     flexID     `json:"user_id"`
	MovieTitle string     `json:"movie_title"`
	Year       int        `json:"year"`
	ReviewText string     `json:"review_text"`
	Rating     int        `json:"rating"`
	MovieImage string     `json:"movie_image"`
	Likes      int64      `json:"likes"`
	Comments   int64      `json:"comments"`
	CreatedAt  time.Time  `json:"created_at"`
	Author     *authorRow `json:"author"`
}

func (r postRow) toEntity() entity.Post {
	p := entity.Post{
		ID:         string(r.ID),
		UserID:     string(r.UserID),
		MovieTitle: r.MovieTitle,
		Year:       r.Year,
		ReviewText: r.ReviewText,
		Rating:     r.Rating,
		MovieImage: r.MovieImage,
		Likes:      entity.ClampCount(r.Likes),
		Comments:   entity.ClampCount(r.Comments),
		CreatedAt:  r.CreatedAt,
	}
	if r.Author != nil {
		p.UserName = r.Author.Name
		p.UserHandle = r.Author.handle()
		p.UserImage = r.Author.ProfileImage
	}
	return p
}

type collectionRow struct {
	ID          flexID     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Movies      []string   `json:"movies"`
	IsPrivate   bool       `json:"is_private"`
	CreatedBy   flexID     `json:"created_by"`
	Likes       int64      `json:"likes"`
	CreatedAt   time.Time  `json:"created_at"`
	Author      *authorRow `json:"author"`
}

func (r collectionRow) toEntity() entity.Collection {
	c := entity.Collection{
		ID:          string(r.ID),
		Title:       r.Title,
		Description: r.Description,
		Movies:      r.Movies,
		MoviesCount: len(r.Movies),
		IsPrivate:   r.IsPrivate,
		CreatedBy:   string(r.CreatedBy),
		Likes:       entity.ClampCount(r.Likes),
		CreatedAt:   r.CreatedAt,
	}
	if r.Author != nil {
		c.Author = r.Author.Name
	}
	return c
}

type commentRow struct {
	ID           flexID     `json:"id"`
	PostID       flexID     `json:"post_id"`
	CollectionID flexID     `json:"collection_id"`
	UserID       flexID     `json:"user_id"`
	Text         string     `json:"text"`
	CreatedAt    time.Time  `json:"created_at"`
	Author       *authorRow `json:"author"`
}

func (r commentRow) toEntity() entity.Comment {
	c := entity.Comment{
		ID:           string(r.ID),
		PostID:       string(r.PostID),
		CollectionID: string(r.CollectionID),
		UserID:       string(r.UserID),
		Text:         r.Text,
		CreatedAt:    r.CreatedAt,
	}
	if r.Author != nil {
		c.AuthorName = r.Author.Name
		c.AuthorHandle = r.Author.handle()
	}
	return c
}

type savedRow struct {
	ID           flexID    `json:"id"`
	UserID       flexID    `json:"user_id"`
	CollectionID flexID    `json:"collection_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r savedRow) toEntity() entity.SavedCollection {
	return entity.SavedCollection{
		ID:           string(r.ID),
		UserID:       string(r.UserID),
		CollectionID: string(r.CollectionID),
		SavedAt:      r.CreatedAt,
	}
}

type idRow struct {
	ID flexID `json:"id"`
}

type userRow struct {
	ID           flexID  `json:"id"`
	Username     string  `json:"username"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Bio          *string `json:"bio"`
	ProfileImage *string `json:"profile_image"`
}

func (r userRow) toEntity() entity.User {
	return entity.User{
		ID:           string(r.ID),
		Username:     strings.TrimPrefix(r.Username, "@"),
		Name:         r.Name,
		Email:        r.Email,
		Bio:          r.Bio,
		ProfileImage: r.ProfileImage,
	}
}

// profileColumns maps an update onto the users table. The table keeps the @ on usernames.
func profileColumns(u entity.ProfileUpdate) map[string]interface{} {
	cols := make(map[string]interface{})
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Username != nil {
		cols["username"] = "@" + strings.TrimPrefix(*u.Username, "@")
	}
	if u.Email != nil {
		cols["email"] = *u.Email
	}
	if u.Bio != nil {
		cols["bio"] = *u.Bio
	}
	if u.ProfileImage != nil {
		cols["profile_image"] = *u.ProfileImage
	}
	return cols
}
