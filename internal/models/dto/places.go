package dto

import "github.com/hongminglow/wayfarer/internal/models"

type SavePlaceRequest struct {
	PlaceID int64 `json:"place_id"`
}

// ServicePatch carries a partial service update. Nil fields are left unchanged.
type ServicePatch struct {
	Name      *string                 `json:"name,omitempty"`
	Category  *models.ServiceCategory `json:"category,omitempty"`
	Area      *string                 `json:"area,omitempty"`
	Address   *string                 `json:"address,omitempty"`
	Phone     *string                 `json:"phone,omitempty"`
	OpenHours *string                 `json:"open_hours,omitempty"`
	Latitude  *float64                `json:"latitude,omitempty"`
	Longitude *float64                `json:"longitude,omitempty"`
	Notes     *string                 `json:"notes,omitempty"`
}

// Apply copies the set fields onto service.
func (p ServicePatch) Apply(service *models.Service) {
	if p.Name != nil {
		service.Name = *p.Name
	}
	if p.Category != nil {
		service.Category = *p.Category
	}
	if p.Area != nil {
		service.Area = *p.Area
	}
	if p.Address != nil {
		service.Address = *p.Address
	}
	if p.Phone != nil {
		service.Phone = *p.Phone
	}
	if p.OpenHours != nil {
		service.OpenHours = *p.OpenHours
	}
	if p.Latitude != nil {
		service.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		service.Longitude = *p.Longitude
	}
	if p.Notes != nil {
		service.Notes = *p.Notes
	}
}
