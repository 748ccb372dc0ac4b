package models

import (
	"strings"
	"time"
)

// PropertyStatus is the workflow status of a listing.
type PropertyStatus string

// Workflow statuses. Any status may transition to any other; there is no
// transition guard.
const (
	StatusPending     PropertyStatus = "pending"
	StatusApproved    PropertyStatus = "approved"
	StatusDisapproved PropertyStatus = "disapproved"
	StatusFlagged     PropertyStatus = "flagged"
	StatusDraft       PropertyStatus = "draft"
)

// AllStatuses lists every workflow status, in the order count responses
// enumerate them.
var AllStatuses = []PropertyStatus{
	StatusApproved,
	StatusDisapproved,
	StatusFlagged,
	StatusPending,
	StatusDraft,
}

// IsValid reports whether s is a known workflow status.
func (s PropertyStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDisapproved, StatusFlagged, StatusDraft:
		return true
	}
	return false
}

// ParseStatus converts a raw (case-insensitive) status string into a
// PropertyStatus. The bool result reports whether the value was recognized.
func ParseStatus(raw string) (PropertyStatus, bool) {
	s := PropertyStatus(strings.ToLower(raw))
	return s, s.IsValid()
}

// Property represents a real-estate listing row.
// Nullable columns use pointers to distinguish zero values from NULL.
// Geom and Centroid carry raw geometry as read from the database: Geom is
// JSONB (possibly a JSON-encoded string, not guaranteed well-formed) and
// Centroid is the GeoJSON rendering of the stored point.
type Property struct {
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	Geom           interface{}    `json:"geom"`
	Centroid       interface{}    `json:"centroid,omitempty"`
	PropertyName   *string        `json:"property_name,omitempty"`
	OwnerName      *string        `json:"owner_name,omitempty"`
	Type           *string        `json:"property_type,omitempty"`
	Price          *float64       `json:"price,omitempty"`
	AreaSqM        *float64       `json:"area_sq_m,omitempty"`
	Unit           *string        `json:"unit,omitempty"`
	Murabba        *int           `json:"murabba,omitempty"`
	Khasra         *string        `json:"khasra,omitempty"`
	Khewat         *string        `json:"khewat,omitempty"`
	Khata          *string        `json:"khata,omitempty"`
	OwnerDetailsEn *string        `json:"owner_details_en,omitempty"`
	OwnerDetailsHi *string        `json:"owner_details_hi,omitempty"`
	State          *string        `json:"state,omitempty"`
	District       *string        `json:"district,omitempty"`
	Tehsil         *string        `json:"tehsil,omitempty"`
	Village        *string        `json:"village,omitempty"`
	Landmark       *string        `json:"landmark,omitempty"`
	FlagReason     *string        `json:"flag_reason,omitempty"`
	Phone          *string        `json:"phone,omitempty"`
	Email          *string        `json:"email,omitempty"`
	Status         PropertyStatus `json:"status"`
	Images         []PropertyImage `json:"images"`
	ID             int64          `json:"id"`
	Visits         int            `json:"visits"`
	Verified       bool           `json:"verified"`
	Available      bool           `json:"available"`
	UserUploaded   bool           `json:"user_uploaded"`
}

// PropertyImage is an image attached to a property. Rows are cascade-deleted
// with their parent property.
type PropertyImage struct {
	UploadedAt time.Time `json:"uploaded_at"`
	ImageURL   string    `json:"image_url"`
	ID         int64     `json:"id"`
	PropertyID int64     `json:"-"`
}

// StatusCounts holds per-status counts of user-uploaded properties.
// All five statuses are always present, zero-defaulted.
type StatusCounts struct {
	Approved    int `json:"approved"`
	Disapproved int `json:"disapproved"`
	Flagged     int `json:"flagged"`
	Pending     int `json:"pending"`
	Draft       int `json:"draft"`
}
