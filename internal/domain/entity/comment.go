package entity

import "time"

// ParentRef identifies the post or collection a comment hangs off.
type ParentRef struct {
	Kind TargetKind
	ID   string
}

// Comment is a child row of a post or collection.
type Comment struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	PostID       string    `bson:"post_id,omitempty" json:"postId,omitempty"`
	CollectionID string    `bson:"collection_id,omitempty" json:"collectionId,omitempty"`
	UserID       string    `bson:"user_id" json:"userId"`
	AuthorName   string    `bson:"user_name" json:"userName"`
	AuthorHandle string    `bson:"user_handle" json:"userHandle"`
	Text         string    `bson:"text" json:"text"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}

// Parent returns the reference of the entity the comment belongs to.
func (c Comment) Parent() ParentRef {
	if c.CollectionID != "" {
		return ParentRef{Kind: TargetKindCollection, ID: c.CollectionID}
	}
	return ParentRef{Kind: TargetKindPost, ID: c.PostID}
}
