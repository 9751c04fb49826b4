package models

import "strings"

// ServiceCategory classifies public services.
type ServiceCategory string

const (
	Hospital  ServiceCategory = "HOSPITAL"
	Police    ServiceCategory = "POLICE"
	ATM       ServiceCategory = "ATM"
	Pharmacy  ServiceCategory = "PHARMACY"
	Transport ServiceCategory = "TRANSPORT"
)

// ServiceCategories lists every accepted category in display order.
var ServiceCategories = []ServiceCategory{Hospital, Police, ATM, Pharmacy, Transport}

// ParseServiceCategory accepts case-insensitive category names.
func ParseServiceCategory(value string) (ServiceCategory, bool) {
	category := ServiceCategory(strings.ToUpper(strings.TrimSpace(value)))
	for _, known := range ServiceCategories {
		if known == category {
			return category, true
		}
	}
	return "", false
}

// Service is an admin-managed public service listing.
type Service struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Category  ServiceCategory `json:"category"`
	Area      string          `json:"area"`
	Address   string          `json:"address"`
	Phone     string          `json:"phone"`
	OpenHours string          `json:"open_hours"`
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Notes     string          `json:"notes"`
}

// Key returns the service id.
func (s Service) Key() int64 { return s.ID }
