package structs

import (
	"slices"
	"time"
)

// Member-set fields of a post.
const (
	FieldLikedBy   = "likedBy"
	FieldBookmarks = "bookmarks"
)

// Post is a unit of user-authored content.
type Post struct {
	ID        string    `json:"id" bson:"_id"`
	UID       string    `json:"uid" bson:"uid"`
	Name      string    `json:"name" bson:"name"`
	Content   string    `json:"content" bson:"content"`
	ImageURL  string    `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	LikedBy   []string  `json:"likedBy" bson:"likedBy"`
	Bookmarks []string  `json:"bookmarks" bson:"bookmarks"`
	Comments  []Comment `json:"comments" bson:"comments"`
}

// Comment is appended to a post; order is append order.
type Comment struct {
	UID       string    `json:"uid" bson:"uid"`
	Name      string    `json:"name" bson:"name"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// CreatePostBody is the input of a new post.
type CreatePostBody struct {
	Content  string `json:"content" validate:"required"`
	ImageURL string `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

// Members returns the member set named by field.
func (p *Post) Members(field string) []string {
	switch field {
	case FieldLikedBy:
		return p.LikedBy
	case FieldBookmarks:
		return p.Bookmarks
	}
	return nil
}

// SetMembers replaces the member set named by field.
func (p *Post) SetMembers(field string, members []string) {
	switch field {
	case FieldLikedBy:
		p.LikedBy = members
	case FieldBookmarks:
		p.Bookmarks = members
	}
}

// HasMember reports whether uid is in the member set named by field.
func (p *Post) HasMember(field, uid string) bool {
	return slices.Contains(p.Members(field), uid)
}

// Clone returns a deep copy so aggregator state never aliases store state.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	c := *p
	c.LikedBy = slices.Clone(p.LikedBy)
	c.Bookmarks = slices.Clone(p.Bookmarks)
	c.Comments = slices.Clone(p.Comments)
	return &c
}

// IsPostField reports whether field is a toggleable post member set.
func IsPostField(field string) bool {
	return field == FieldLikedBy || field == FieldBookmarks
}
