package dto

import "github.com/hongminglow/wayfarer/internal/models"

type CreatePostRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    models.PostCategory `json:"category"`
	Area        string              `json:"area"`
}

type ReactRequest struct {
	Reaction models.Reaction `json:"reaction"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

// CommentResponse is returned after a comment is accepted.
type CommentResponse struct {
	Comment       models.Comment `json:"comment"`
	CommentsCount int            `json:"comments_count"`
}
