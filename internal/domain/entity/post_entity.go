package entity

import "time"

// Post is a short text post owned by a user. Kept minimal; it exists
// mostly so account deletion has dependent records to cascade over.
type Post struct {
	ID           string
	UserID       string
	Text         string
	AuthorName   string
	AuthorAvatar string
	CreatedAt    time.Time
}
