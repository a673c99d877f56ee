package repository

import (
	"context"
	"errors"
	"fmt"

	"service-area-api/internal/models"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

const serviceAreaColumns = `
			id,
			city_name,
			latitude,
			longitude,
			radius_km,
			is_active,
			color_hex,
			sort_order,
			COALESCE(description, '') AS description,
			created_at,
			updated_at`

func scanServiceArea(row pgx.Row, a *models.ServiceArea) error {
	return row.Scan(
		&a.ID,
		&a.CityName,
		&a.Latitude,
		&a.Longitude,
		&a.RadiusKm,
		&a.IsActive,
		&a.ColorHex,
		&a.SortOrder,
		&a.Description,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
}

func (r *Repository) queryServiceAreas(ctx context.Context, sql string, args ...any) ([]models.ServiceArea, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query service areas: %w", err)
	}
	defer rows.Close()

	areas := []models.ServiceArea{}
	for rows.Next() {
		var a models.ServiceArea
		if err := scanServiceArea(rows, &a); err != nil {
			return nil, fmt.Errorf("repository: failed to scan service area: %w", err)
		}
		areas = append(areas, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return areas, nil
}

// ListActiveServiceAreas returns active areas ordered by sort order, then id. This order is
// the registry order used for tie-breaks.
func (r *Repository) ListActiveServiceAreas(ctx context.Context) (areas []models.ServiceArea, err error) {
	ctx, span := r.startSpan(ctx, "ListActiveServiceAreas")
	defer func() { endSpan(span, err) }()

	sql := `SELECT` + serviceAreaColumns + `
		FROM service_areas
		WHERE is_active
		ORDER BY sort_order, id
	`
	return r.queryServiceAreas(ctx, sql)
}

// ListServiceAreas returns every area, active or not
func (r *Repository) ListServiceAreas(ctx context.Context) (areas []models.ServiceArea, err error) {
	ctx, span := r.startSpan(ctx, "ListServiceAreas")
	defer func() { endSpan(span, err) }()

	sql := `SELECT` + serviceAreaColumns + `
		FROM service_areas
		ORDER BY sort_order, id
	`
	return r.queryServiceAreas(ctx, sql)
}

// GetServiceArea fetches a single area by id
func (r *Repository) GetServiceArea(ctx context.Context, id int64) (area *models.ServiceArea, err error) {
	ctx, span := r.startSpan(ctx, "GetServiceArea", attribute.Int64("service_area.id", id))
	defer func() { endSpan(span, err) }()

	sql := `SELECT` + serviceAreaColumns + `
		FROM service_areas
		WHERE id = $1
	`

	var a models.ServiceArea
	if err := scanServiceArea(r.db.QueryRow(ctx, sql, id), &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("repository: service area %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("repository: failed to get service area: %w", err)
	}
	return &a, nil
}

// CreateServiceArea inserts the area and fills in its id and timestamps
func (r *Repository) CreateServiceArea(ctx context.Context, area *models.ServiceArea) (err error) {
	ctx, span := r.startSpan(ctx, "CreateServiceArea", attribute.String("service_area.city", area.CityName))
	defer func() { endSpan(span, err) }()

	sql := `
		INSERT INTO service_areas (
			city_name, latitude, longitude, radius_km, is_active, color_hex, sort_order, description
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err = r.db.QueryRow(ctx, sql,
		area.CityName,
		area.Latitude,
		area.Longitude,
		area.RadiusKm,
		area.IsActive,
		area.ColorHex,
		area.SortOrder,
		nullIfEmpty(area.Description),
	).Scan(&area.ID, &area.CreatedAt, &area.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert service area: %w", err)
	}
	return nil
}

// UpdateServiceArea replaces the editable fields of an existing area
func (r *Repository) UpdateServiceArea(ctx context.Context, area *models.ServiceArea) (err error) {
	ctx, span := r.startSpan(ctx, "UpdateServiceArea", attribute.Int64("service_area.id", area.ID))
	defer func() { endSpan(span, err) }()

	sql, args, err := r.psql.Update("service_areas").
		SetMap(map[string]any{
			"city_name":   area.CityName,
			"latitude":    area.Latitude,
			"longitude":   area.Longitude,
			"radius_km":   area.RadiusKm,
			"is_active":   area.IsActive,
			"color_hex":   area.ColorHex,
			"sort_order":  area.SortOrder,
			"description": nullIfEmpty(area.Description),
			"updated_at":  squirrelNow,
		}).
		Where("id = ?", area.ID).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("repository: failed to build update: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&area.CreatedAt, &area.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("repository: service area %d: %w", area.ID, models.ErrNotFound)
		}
		return fmt.Errorf("repository: failed to update service area: %w", err)
	}
	return nil
}

// SetServiceAreaActive toggles the active flag
func (r *Repository) SetServiceAreaActive(ctx context.Context, id int64, active bool) (err error) {
	ctx, span := r.startSpan(ctx, "SetServiceAreaActive", attribute.Int64("service_area.id", id), attribute.Bool("service_area.active", active))
	defer func() { endSpan(span, err) }()

	tag, err := r.db.Exec(ctx, `UPDATE service_areas SET is_active = $1, updated_at = now() WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("repository: failed to toggle service area: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repository: service area %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// DeleteServiceArea removes an area
func (r *Repository) DeleteServiceArea(ctx context.Context, id int64) (err error) {
	ctx, span := r.startSpan(ctx, "DeleteServiceArea", attribute.Int64("service_area.id", id))
	defer func() { endSpan(span, err) }()

	tag, err := r.db.Exec(ctx, `DELETE FROM service_areas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete service area: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repository: service area %d: %w", id, models.ErrNotFound)
	}
	return nil
}
