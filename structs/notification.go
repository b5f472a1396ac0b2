package structs

import "time"

// Notification is a recent post by a followed author, resolved with the
// author's profile.
type Notification struct {
	PostID    string    `json:"postId"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Author    *Profile  `json:"author"`
}
