package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/khetbazaar/estate-admin-api/internal/database"
	"github.com/khetbazaar/estate-admin-api/internal/models"
)

// PropertyRepository defines the interface for property data access.
type PropertyRepository interface {
	// GetByID fetches one property with its images.
	// Returns nil, nil if no property is found (not an error).
	GetByID(ctx context.Context, id int64) (*models.Property, error)

	// UpdateStatus sets the status and flag reason of a property.
	// markVerified additionally sets verified = true; it never clears it.
	// Returns pgx.ErrNoRows wrapped when the property does not exist.
	UpdateStatus(ctx context.Context, id int64, status models.PropertyStatus, flagReason *string, markVerified bool) error

	// ListByStatus returns one page of user-uploaded properties with the
	// given status, newest first, with their images attached.
	// Returns an empty slice if none match (not an error).
	ListByStatus(ctx context.Context, status models.PropertyStatus, limit, offset int) ([]*models.Property, error)

	// CountByStatus counts user-uploaded properties with the given status.
	CountByStatus(ctx context.Context, status models.PropertyStatus) (int, error)

	// CountsGroupedByStatus counts user-uploaded properties per status.
	// Statuses with zero rows are absent from the map.
	CountsGroupedByStatus(ctx context.Context) (map[models.PropertyStatus]int, error)
}

// propertyRepository is the concrete implementation of PropertyRepository.
type propertyRepository struct {
	db *database.Database
}

// NewPropertyRepository creates a new instance of PropertyRepository.
func NewPropertyRepository(db *database.Database) PropertyRepository {
	return &propertyRepository{db: db}
}

// propertyColumns is the shared select list. Geometry columns come back as
// text: geom is raw JSONB (possibly malformed, normalized later) and
// centroid is rendered as GeoJSON.
const propertyColumns = `
	id,
	property_name,
	owner_name,
	type,
	price,
	area_sq_m,
	unit,
	murabba,
	khasra,
	khewat,
	khata,
	owner_details_en,
	owner_details_hi,
	state,
	district,
	tehsil,
	village,
	landmark,
	verified,
	available,
	ST_AsGeoJSON(centroid) AS centroid,
	geom::text AS geom,
	visits,
	created_at,
	updated_at,
	status,
	flag_reason,
	user_uploaded,
	phone,
	email
`

// scanProperty scans one property row from the shared select list.
func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	var status string
	var centroid, geom *string

	err := row.Scan(
		&p.ID,
		&p.PropertyName,
		&p.OwnerName,
		&p.Type,
		&p.Price,
		&p.AreaSqM,
		&p.Unit,
		&p.Murabba,
		&p.Khasra,
		&p.Khewat,
		&p.Khata,
		&p.OwnerDetailsEn,
		&p.OwnerDetailsHi,
		&p.State,
		&p.District,
		&p.Tehsil,
		&p.Village,
		&p.Landmark,
		&p.Verified,
		&p.Available,
		&centroid,
		&geom,
		&p.Visits,
		&p.CreatedAt,
		&p.UpdatedAt,
		&status,
		&p.FlagReason,
		&p.UserUploaded,
		&p.Phone,
		&p.Email,
	)
	if err != nil {
		return nil, err
	}

	p.Status = models.PropertyStatus(status)
	if centroid != nil {
		p.Centroid = *centroid
	}
	if geom != nil {
		p.Geom = *geom
	}

	return &p, nil
}

// GetByID fetches a single property and attaches its images.
func (r *propertyRepository) GetByID(ctx context.Context, id int64) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	p, err := scanProperty(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query property %d: %w", id, err)
	}

	images, err := r.imagesForProperties(ctx, []int64{p.ID})
	if err != nil {
		return nil, err
	}
	p.Images = images[p.ID]
	if p.Images == nil {
		p.Images = []models.PropertyImage{}
	}

	return p, nil
}

// UpdateStatus sets status and flag reason; verified flips to true only when
// markVerified is set, and is never cleared.
func (r *propertyRepository) UpdateStatus(ctx context.Context, id int64, status models.PropertyStatus, flagReason *string, markVerified bool) error {
	query := `
		UPDATE properties
		SET status = $2,
		    flag_reason = $3,
		    verified = CASE WHEN $4 THEN TRUE ELSE verified END,
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, id, string(status), flagReason, markVerified)
	if err != nil {
		return fmt.Errorf("failed to update status of property %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("property %d: %w", id, pgx.ErrNoRows)
	}

	return nil
}

// ListByStatus returns one page of matching user-uploaded properties,
// ordered by creation time descending, images attached.
func (r *propertyRepository) ListByStatus(ctx context.Context, status models.PropertyStatus, limit, offset int) ([]*models.Property, error) {
	query := `
		SELECT ` + propertyColumns + `
		FROM properties
		WHERE status = $1 AND user_uploaded = TRUE
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties with status %q: %w", status, err)
	}
	defer rows.Close()

	var properties []*models.Property
	var ids []int64

	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property row: %w", err)
		}
		properties = append(properties, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating property rows: %w", err)
	}

	if len(properties) == 0 {
		return []*models.Property{}, nil
	}

	images, err := r.imagesForProperties(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range properties {
		p.Images = images[p.ID]
		if p.Images == nil {
			p.Images = []models.PropertyImage{}
		}
	}

	return properties, nil
}

// CountByStatus counts user-uploaded rows matching the status.
func (r *propertyRepository) CountByStatus(ctx context.Context, status models.PropertyStatus) (int, error) {
	query := `SELECT COUNT(id) FROM properties WHERE status = $1 AND user_uploaded = TRUE`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, string(status)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count properties with status %q: %w", status, err)
	}
	return count, nil
}

// CountsGroupedByStatus aggregates user-uploaded row counts per status.
func (r *propertyRepository) CountsGroupedByStatus(ctx context.Context) (map[models.PropertyStatus]int, error) {
	query := `
		SELECT status, COUNT(id)
		FROM properties
		WHERE user_uploaded = TRUE
		GROUP BY status
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count properties by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.PropertyStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count row: %w", err)
		}
		counts[models.PropertyStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status count rows: %w", err)
	}

	return counts, nil
}

// imagesForProperties loads images for the given property ids, keyed by
// property id.
func (r *propertyRepository) imagesForProperties(ctx context.Context, ids []int64) (map[int64][]models.PropertyImage, error) {
	query := `
		SELECT id, property_id, image_url, uploaded_at
		FROM property_images
		WHERE property_id = ANY($1)
		ORDER BY uploaded_at
	`

	rows, err := r.db.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query property images: %w", err)
	}
	defer rows.Close()

	images := make(map[int64][]models.PropertyImage)
	for rows.Next() {
		var img models.PropertyImage
		if err := rows.Scan(&img.ID, &img.PropertyID, &img.ImageURL, &img.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan property image row: %w", err)
		}
		images[img.PropertyID] = append(images[img.PropertyID], img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating property image rows: %w", err)
	}

	return images, nil
}
