package geojson

import (
	"time"

	"github.com/khetbazaar/estate-admin-api/internal/models"
)

// PolygonGeometry is a GeoJSON Polygon geometry: rings of [lon, lat] points.
// Winding order and ring closure are not validated.
type PolygonGeometry struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

// PointGeometry is a GeoJSON Point geometry.
type PointGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// FeatureProperties is the flattened attribute set of a property feature.
type FeatureProperties struct {
	CreatedAt    *time.Time             `json:"created_at,omitempty"`
	UpdatedAt    *time.Time             `json:"updated_at,omitempty"`
	Centroid     *PointGeometry         `json:"centroid,omitempty"`
	PropertyName *string                `json:"property_name,omitempty"`
	OwnerName    *string                `json:"owner_name,omitempty"`
	PropertyType *string                `json:"property_type,omitempty"`
	Price        *float64               `json:"price,omitempty"`
	AreaSqM      *float64               `json:"area_sq_m,omitempty"`
	Unit         *string                `json:"unit,omitempty"`
	Murabba      *int                   `json:"murabba,omitempty"`
	Khasra       *string                `json:"khasra,omitempty"`
	Khewat       *string                `json:"khewat,omitempty"`
	Khata        *string                `json:"khata,omitempty"`
	State        *string                `json:"state,omitempty"`
	District     *string                `json:"district,omitempty"`
	Tehsil       *string                `json:"tehsil,omitempty"`
	Village      *string                `json:"village,omitempty"`
	FlagReason   *string                `json:"flag_reason,omitempty"`
	Phone        *string                `json:"phone,omitempty"`
	Email        *string                `json:"email,omitempty"`
	Status       models.PropertyStatus  `json:"status"`
	Images       []models.PropertyImage `json:"images"`
	ID           int64                  `json:"id"`
	Visits       int                    `json:"visits"`
	Verified     bool                   `json:"verified"`
	Available    bool                   `json:"available"`
	UserUploaded bool                   `json:"user_uploaded"`
}

// Feature is a GeoJSON Feature wrapping one property.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   PolygonGeometry        `json:"geometry"`
	Properties FeatureProperties      `json:"properties"`
	Images     []models.PropertyImage `json:"images"`
}

// FeatureCollection is a GeoJSON FeatureCollection of property features.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
