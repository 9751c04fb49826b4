package models

import (
	"strings"
	"time"
)

// PostCategory classifies community posts.
type PostCategory string

const (
	PriceAlert PostCategory = "PRICE_ALERT"
	Traffic    PostCategory = "TRAFFIC"
	FoodTips   PostCategory = "FOOD_TIPS"
	LostFound  PostCategory = "LOST_FOUND"
)

// PostCategories lists every accepted category in display order.
var PostCategories = []PostCategory{PriceAlert, Traffic, FoodTips, LostFound}

// ParsePostCategory accepts case-insensitive category names.
func ParsePostCategory(value string) (PostCategory, bool) {
	category := PostCategory(strings.ToUpper(strings.TrimSpace(value)))
	for _, known := range PostCategories {
		if known == category {
			return category, true
		}
	}
	return "", false
}

// Reaction is a like or dislike on a post.
type Reaction string

const (
	Like    Reaction = "LIKE"
	Dislike Reaction = "DISLIKE"
)

// Valid reports whether r is LIKE or DISLIKE.
func (r Reaction) Valid() bool {
	return r == Like || r == Dislike
}

// Comment is a reply on a community post.
type Comment struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Post is a community feed entry.
type Post struct {
	ID            int64        `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Category      PostCategory `json:"category"`
	Author        string       `json:"author"`
	Area          string       `json:"area"`
	CreatedAt     time.Time    `json:"created_at"`
	LikesCount    int          `json:"likes_count"`
	DislikesCount int          `json:"dislikes_count"`
	Comments      []Comment    `json:"comments"`
	CommentsCount int          `json:"comments_count"`
}

// Key returns the post id.
func (p Post) Key() int64 { return p.ID }

// ReactionCounts is the server's reply to a reaction.
type ReactionCounts struct {
	LikesCount    int `json:"likes_count"`
	DislikesCount int `json:"dislikes_count"`
}
