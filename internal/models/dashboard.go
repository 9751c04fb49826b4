package models

// Dashboard is the per-role landing summary.
type Dashboard struct {
	Role        Role             `json:"role"`
	Stats       map[string]int64 `json:"stats"`
	RecentPosts []Post           `json:"recent_posts"`
	SavedPlaces []Place          `json:"saved_places"`
}
