package models

import "time"

// Area is a named neighbourhood used to group places and posts.
type Area struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Review is a short rating left on a place.
type Review struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Place is a point of interest listed on the explore view.
type Place struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	AreaName      string   `json:"area_name"`
	Category      string   `json:"category"`
	Address       string   `json:"address"`
	AverageRating float64  `json:"average_rating"`
	ReviewCount   int      `json:"review_count"`
	OpeningTime   string   `json:"opening_time"`
	ClosingTime   string   `json:"closing_time"`
	ImageURL      string   `json:"image_url"`
	LatestReviews []Review `json:"latest_reviews"`
}

// Key returns the place id.
func (p Place) Key() int64 { return p.ID }

// SavedPlace links a user to a place they bookmarked.
type SavedPlace struct {
	ID      int64     `json:"id"`
	Place   Place     `json:"place"`
	SavedAt time.Time `json:"saved_at"`
}

// Key returns the saved place's place id.
func (s SavedPlace) Key() int64 { return s.Place.ID }
