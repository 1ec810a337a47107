package domain

import (
	"errors"
	"time"
)

var (
	// ErrPostNotFound indicates that the post is not found.
	ErrPostNotFound = errors.New("post not found")
)

// Post holds social post data.
type Post struct {
	ID        int64     `json:"id"`
	AuthorID  int32     `json:"author_id"`
	Content   string    `json:"content"`
	Likes     int64     `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
}

// ListPostsParams is the input data to list posts newest first.
type ListPostsParams struct {
	AuthorID int32 `json:"author_id"` // 0 lists posts of all authors
	Limit    int32 `json:"limit"`
	Offset   int32 `json:"offset"`
}

// Comment holds a comment on a post.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	AuthorID  int32     `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
