package memory

import (
	"time"

	"github.com/hongminglow/wayfarer/internal/models"
)

// Seed fills s with a small city guide so a fresh backend has something
// to browse.
func (s *ContentStore) Seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	s.areas = []models.Area{
		{ID: 1, Name: "Harbour"},
		{ID: 2, Name: "Old Town"},
		{ID: 3, Name: "Riverside"},
	}

	s.places = []models.Place{
		{
			ID: 1, Name: "Lantern Street Cafe", AreaName: "Old Town", Category: "cafe",
			Address: "12 Lantern Street", AverageRating: 4.6, ReviewCount: 2,
			OpeningTime: "07:00", ClosingTime: "18:00",
			LatestReviews: []models.Review{
				{ID: 1, Author: "mei", Rating: 5, Text: "Best flat white in town.", CreatedAt: base},
				{ID: 2, Author: "tomas", Rating: 4, Text: "Busy at weekends.", CreatedAt: base.Add(24 * time.Hour)},
			},
		},
		{
			ID: 2, Name: "Maritime Museum", AreaName: "Harbour", Category: "museum",
			Address: "1 Quay Road", AverageRating: 4.3, ReviewCount: 1,
			OpeningTime: "10:00", ClosingTime: "17:00",
			LatestReviews: []models.Review{
				{ID: 3, Author: "ana", Rating: 4, Text: "Give it a full afternoon.", CreatedAt: base},
			},
		},
		{
			ID: 3, Name: "Night Market", AreaName: "Riverside", Category: "market",
			Address: "Riverside Promenade",
			OpeningTime: "18:00", ClosingTime: "23:30",
		},
		{
			ID: 4, Name: "Clocktower Square", AreaName: "Old Town", Category: "landmark",
			Address: "Clocktower Square",
		},
		{
			ID: 5, Name: "Fishermen's Wharf Grill", AreaName: "Harbour", Category: "restaurant",
			Address: "8 Wharf Lane",
			OpeningTime: "11:30", ClosingTime: "22:00",
		},
	}

	s.services = []models.Service{
		{ID: 1, Name: "City General Hospital", Category: models.Hospital, Area: "Riverside", Address: "200 River Road", Phone: "112", OpenHours: "24/7", Latitude: 1.2921, Longitude: 103.8519},
		{ID: 2, Name: "Old Town Police Post", Category: models.Police, Area: "Old Town", Address: "3 Gate Street", Phone: "999", OpenHours: "24/7"},
		{ID: 3, Name: "Harbour ATM", Category: models.ATM, Area: "Harbour", Address: "Ferry terminal, level 1", OpenHours: "24/7", Notes: "Accepts foreign cards"},
		{ID: 4, Name: "Green Cross Pharmacy", Category: models.Pharmacy, Area: "Old Town", Address: "40 Market Street", Phone: "+65 6000 1234", OpenHours: "08:00-21:00"},
		{ID: 5, Name: "Central Bus Interchange", Category: models.Transport, Area: "Riverside", Address: "Interchange Road", OpenHours: "05:30-00:30"},
	}

	s.posts = []models.Post{
		{
			ID: 1, Title: "Taxi queue at the ferry is 40 minutes", Description: "Walk to the bus interchange instead.",
			Category: models.Traffic, Author: "tomas", Area: "Harbour", CreatedAt: base,
		},
		{
			ID: 2, Title: "Fair price for coconuts at the night market", Description: "Should be no more than 3 dollars.",
			Category: models.PriceAlert, Author: "mei", Area: "Riverside", CreatedAt: base.Add(2 * time.Hour),
			Comments: []models.Comment{
				{ID: 1, Author: "ana", Text: "Paid 2.50 yesterday.", CreatedAt: base.Add(3 * time.Hour)},
			},
			CommentsCount: 1,
		},
		{
			ID: 3, Title: "Try the fish soup at Wharf Grill", Description: "Ask for the lunch set.",
			Category: models.FoodTips, Author: "ana", Area: "Harbour", CreatedAt: base.Add(5 * time.Hour),
		},
	}
}
