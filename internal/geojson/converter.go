package geojson

import (
	"encoding/json"

	"github.com/khetbazaar/estate-admin-api/internal/logger"
	"github.com/khetbazaar/estate-admin-api/internal/models"
)

// nestingShape classifies how a stored coordinate value is wrapped.
// The data source is inconsistent about wrapping polygons as [ring...] vs
// [[ring...]] vs [[[ring...]]], so the shape is decided once up front and
// every outcome maps to a single Polygon coordinate value.
type nestingShape int

const (
	shapeInvalid nestingShape = iota
	shapeRing                 // a bare sequence of points
	shapePolygon              // a sequence of rings
	shapePolygonList          // a polygon wrapped one level too deep
)

// Converter turns stored property rows into GeoJSON features.
// Malformed geometry never fails a request: it is logged and replaced with a
// degenerate placeholder so map consumers always get a well-typed Polygon.
type Converter struct {
	log *logger.Logger
}

// NewConverter creates a Converter. A nil logger disables logging.
func NewConverter(log *logger.Logger) *Converter {
	return &Converter{log: log}
}

// emptyPolygon returns the degenerate placeholder: one ring holding one
// empty point, serializing as [[[]]].
func emptyPolygon() [][][]float64 {
	return [][][]float64{{{}}}
}

// NormalizePolygon coerces a raw stored geometry value into Polygon-shaped
// coordinates. The raw value may be a decoded JSONB map, a []byte, or a
// JSON-encoded string; on any decode or structural error the placeholder is
// returned instead of an error.
func (cv *Converter) NormalizePolygon(raw interface{}, propertyID int64) [][][]float64 {
	geom, ok := decodeGeometry(raw)
	if !ok {
		cv.logGeometry("failed to decode stored geometry", propertyID)
		return emptyPolygon()
	}

	coords, ok := coordinateList(geom)
	if !ok {
		cv.logGeometry("stored geometry has no usable coordinates", propertyID)
		return emptyPolygon()
	}

	switch classify(coords) {
	case shapeRing:
		ring, ok := convertRing(coords)
		if !ok {
			cv.logGeometry("stored geometry ring has malformed points", propertyID)
			return emptyPolygon()
		}
		return [][][]float64{ring}
	case shapePolygon:
		polygon, ok := convertPolygon(coords)
		if !ok {
			cv.logGeometry("stored geometry polygon has malformed rings", propertyID)
			return emptyPolygon()
		}
		return polygon
	case shapePolygonList:
		// Double-wrapped: strip the outer wrapper, keeping the first polygon.
		inner, _ := coords[0].([]interface{})
		polygon, ok := convertPolygon(inner)
		if !ok {
			cv.logGeometry("stored geometry polygon list has malformed rings", propertyID)
			return emptyPolygon()
		}
		return polygon
	default:
		cv.logGeometry("stored geometry has inconsistent nesting", propertyID)
		return emptyPolygon()
	}
}

// Centroid extracts the first coordinate pair of a stored centroid geometry.
// Returns nil when the centroid is absent or malformed; never an error.
func (cv *Converter) Centroid(raw interface{}) *PointGeometry {
	if raw == nil {
		return nil
	}

	geom, ok := decodeGeometry(raw)
	if !ok {
		return nil
	}

	value, exists := geom["coordinates"]
	if !exists {
		return nil
	}

	pair, ok := firstCoordinatePair(value)
	if !ok {
		return nil
	}

	return &PointGeometry{
		Type:        "Point",
		Coordinates: pair,
	}
}

// Feature assembles a GeoJSON Feature from a property row.
func (cv *Converter) Feature(p *models.Property) Feature {
	images := p.Images
	if images == nil {
		images = []models.PropertyImage{}
	}

	createdAt := p.CreatedAt
	updatedAt := p.UpdatedAt

	return Feature{
		Type: "Feature",
		Geometry: PolygonGeometry{
			Type:        "Polygon",
			Coordinates: cv.NormalizePolygon(p.Geom, p.ID),
		},
		Properties: FeatureProperties{
			ID:           p.ID,
			PropertyName: p.PropertyName,
			OwnerName:    p.OwnerName,
			PropertyType: p.Type,
			Price:        p.Price,
			AreaSqM:      p.AreaSqM,
			Unit:         p.Unit,
			Murabba:      p.Murabba,
			Khasra:       p.Khasra,
			Khewat:       p.Khewat,
			Khata:        p.Khata,
			State:        p.State,
			District:     p.District,
			Tehsil:       p.Tehsil,
			Village:      p.Village,
			Verified:     p.Verified,
			Available:    p.Available,
			Visits:       p.Visits,
			CreatedAt:    &createdAt,
			UpdatedAt:    &updatedAt,
			Status:       p.Status,
			UserUploaded: p.UserUploaded,
			Phone:        p.Phone,
			Email:        p.Email,
			FlagReason:   p.FlagReason,
			Centroid:     cv.Centroid(p.Centroid),
			Images:       images,
		},
		Images: images,
	}
}

// Collection assembles a FeatureCollection from property rows.
func (cv *Converter) Collection(properties []*models.Property) FeatureCollection {
	features := make([]Feature, 0, len(properties))
	for _, p := range properties {
		features = append(features, cv.Feature(p))
	}
	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

func (cv *Converter) logGeometry(msg string, propertyID int64) {
	if cv.log != nil {
		cv.log.Error(msg, nil, map[string]interface{}{
			"property_id": propertyID,
		})
	}
}

// decodeGeometry turns the raw stored value into a geometry map.
// Strings and byte slices are JSON-decoded; maps pass through.
func decodeGeometry(raw interface{}) (map[string]interface{}, bool) {
	switch v := raw.(type) {
	case map[string]interface{}:
		return v, true
	case []byte:
		var geom map[string]interface{}
		if err := json.Unmarshal(v, &geom); err != nil {
			return nil, false
		}
		return geom, true
	case string:
		var geom map[string]interface{}
		if err := json.Unmarshal([]byte(v), &geom); err != nil {
			return nil, false
		}
		return geom, true
	default:
		return nil, false
	}
}

// coordinateList extracts the coordinates field as a non-empty list whose
// elements are all themselves lists.
func coordinateList(geom map[string]interface{}) ([]interface{}, bool) {
	value, exists := geom["coordinates"]
	if !exists {
		return nil, false
	}

	coords, ok := value.([]interface{})
	if !ok || len(coords) == 0 {
		return nil, false
	}

	for _, element := range coords {
		if _, ok := element.([]interface{}); !ok {
			return nil, false
		}
	}

	return coords, true
}

// classify inspects up to three levels of nesting of the first element to
// decide how the coordinate value is wrapped.
func classify(coords []interface{}) nestingShape {
	first := coords[0].([]interface{})
	if len(first) == 0 {
		return shapeInvalid
	}

	// First ring's first element not a sequence: the whole value is one ring.
	inner, ok := first[0].([]interface{})
	if !ok {
		return shapeRing
	}
	if len(inner) == 0 {
		return shapeInvalid
	}

	// Triple-nested: the outer wrapper holds whole polygons.
	if _, ok := inner[0].([]interface{}); ok {
		return shapePolygonList
	}

	return shapePolygon
}

// convertPolygon converts a sequence of rings into typed coordinates.
func convertPolygon(rings []interface{}) ([][][]float64, bool) {
	polygon := make([][][]float64, 0, len(rings))
	for _, element := range rings {
		rawRing, ok := element.([]interface{})
		if !ok {
			return nil, false
		}
		ring, ok := convertRing(rawRing)
		if !ok {
			return nil, false
		}
		polygon = append(polygon, ring)
	}
	return polygon, true
}

// convertRing converts a sequence of points into typed coordinates.
// Every point must be a sequence of exactly two numbers.
func convertRing(points []interface{}) ([][]float64, bool) {
	ring := make([][]float64, 0, len(points))
	for _, element := range points {
		rawPoint, ok := element.([]interface{})
		if !ok || len(rawPoint) != 2 {
			return nil, false
		}
		lon, ok := toFloat(rawPoint[0])
		if !ok {
			return nil, false
		}
		lat, ok := toFloat(rawPoint[1])
		if !ok {
			return nil, false
		}
		ring = append(ring, []float64{lon, lat})
	}
	return ring, true
}

// firstCoordinatePair descends through leading elements until it finds a
// pair of numbers.
func firstCoordinatePair(value interface{}) ([]float64, bool) {
	for depth := 0; depth < 4; depth++ {
		list, ok := value.([]interface{})
		if !ok || len(list) == 0 {
			return nil, false
		}
		if _, nested := list[0].([]interface{}); nested {
			value = list[0]
			continue
		}
		if len(list) < 2 {
			return nil, false
		}
		lon, ok := toFloat(list[0])
		if !ok {
			return nil, false
		}
		lat, ok := toFloat(list[1])
		if !ok {
			return nil, false
		}
		return []float64{lon, lat}, true
	}
	return nil, false
}

func toFloat(value interface{}) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
