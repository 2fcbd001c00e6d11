package models

import "time"

type Comment struct {
	CommentID   int64     `json:"comment_id"`
	MediaID     int64     `json:"media_id"`
	UserID      int64     `json:"user_id"`
	CommentText string    `json:"comment_text"`
	CreatedAt   time.Time `json:"created_at"`
}

// CommentWithUsername is a Comment joined with its author's username.
type CommentWithUsername struct {
	Comment
	Username string `json:"username"`
}

// LikeRecord links one user to one media item. From the viewer's
// perspective there is at most one per (MediaID, UserID).
type LikeRecord struct {
	LikeID  int64 `json:"like_id"`
	MediaID int64 `json:"media_id"`
	UserID  int64 `json:"user_id"`
}
