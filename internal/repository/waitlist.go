package repository

import (
	"context"
	"errors"
	"fmt"

	"service-area-api/internal/models"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

var waitlistColumns = []string{
	"id",
	"email",
	"COALESCE(name, '')",
	"COALESCE(phone, '')",
	"requested_address",
	"requested_latitude",
	"requested_longitude",
	"COALESCE(nearest_area_city, '')",
	"distance_to_nearest_area_km",
	"status",
	"COALESCE(admin_notes, '')",
	"notified_at",
	"created_at",
	"updated_at",
}

func scanWaitlistEntry(row pgx.Row, e *models.WaitlistEntry) error {
	return row.Scan(
		&e.ID,
		&e.Email,
		&e.Name,
		&e.Phone,
		&e.RequestedAddress,
		&e.RequestedLatitude,
		&e.RequestedLongitude,
		&e.NearestAreaCity,
		&e.DistanceToNearestAreaKm,
		&e.Status,
		&e.AdminNotes,
		&e.NotifiedAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
}

// WaitlistEntryExists reports whether an entry already exists for the email and the
// coordinates rounded to five decimal places.
func (r *Repository) WaitlistEntryExists(ctx context.Context, email string, lat, lon float64) (exists bool, err error) {
	ctx, span := r.startSpan(ctx, "WaitlistEntryExists")
	defer func() { endSpan(span, err) }()

	sql := `
		SELECT EXISTS (
			SELECT 1
			FROM waitlist_entries
			WHERE lower(email) = lower($1)
				AND round(requested_latitude::numeric, 5) = round($2::numeric, 5)
				AND round(requested_longitude::numeric, 5) = round($3::numeric, 5)
		)
	`

	if err := r.db.QueryRow(ctx, sql, email, lat, lon).Scan(&exists); err != nil {
		return false, fmt.Errorf("repository: failed to check waitlist entry: %w", err)
	}
	return exists, nil
}

// CreateWaitlistEntry inserts the entry and fills in its id and timestamps. A concurrent
// duplicate caught by the unique index is reported as models.ErrDuplicateWaitlistEntry.
func (r *Repository) CreateWaitlistEntry(ctx context.Context, entry *models.WaitlistEntry) (err error) {
	ctx, span := r.startSpan(ctx, "CreateWaitlistEntry")
	defer func() { endSpan(span, err) }()

	sql := `
		INSERT INTO waitlist_entries (
			email, name, phone, requested_address, requested_latitude, requested_longitude,
			nearest_area_city, distance_to_nearest_area_km, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err = r.db.QueryRow(ctx, sql,
		entry.Email,
		nullIfEmpty(entry.Name),
		nullIfEmpty(entry.Phone),
		entry.RequestedAddress,
		entry.RequestedLatitude,
		entry.RequestedLongitude,
		nullIfEmpty(entry.NearestAreaCity),
		entry.DistanceToNearestAreaKm,
		string(entry.Status),
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("repository: %w", models.ErrDuplicateWaitlistEntry)
		}
		return fmt.Errorf("repository: failed to insert waitlist entry: %w", err)
	}
	return nil
}

// GetWaitlistEntry fetches a single entry by id
func (r *Repository) GetWaitlistEntry(ctx context.Context, id int64) (entry *models.WaitlistEntry, err error) {
	ctx, span := r.startSpan(ctx, "GetWaitlistEntry", attribute.Int64("waitlist.id", id))
	defer func() { endSpan(span, err) }()

	sql, args, err := r.psql.Select(waitlistColumns...).
		From("waitlist_entries").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("repository: failed to build query: %w", err)
	}

	var e models.WaitlistEntry
	if err := scanWaitlistEntry(r.db.QueryRow(ctx, sql, args...), &e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("repository: waitlist entry %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("repository: failed to get waitlist entry: %w", err)
	}
	return &e, nil
}

// UpdateWaitlistEntry persists the administrative fields: status, notes and notified-at.
func (r *Repository) UpdateWaitlistEntry(ctx context.Context, entry *models.WaitlistEntry) (err error) {
	ctx, span := r.startSpan(ctx, "UpdateWaitlistEntry", attribute.Int64("waitlist.id", entry.ID), attribute.String("waitlist.status", string(entry.Status)))
	defer func() { endSpan(span, err) }()

	sql, args, err := r.psql.Update("waitlist_entries").
		Set("status", string(entry.Status)).
		Set("admin_notes", nullIfEmpty(entry.AdminNotes)).
		Set("notified_at", entry.NotifiedAt).
		Set("updated_at", squirrelNow).
		Where("id = ?", entry.ID).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("repository: failed to build update: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&entry.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("repository: waitlist entry %d: %w", entry.ID, models.ErrNotFound)
		}
		return fmt.Errorf("repository: failed to update waitlist entry: %w", err)
	}
	return nil
}

// ListWaitlistEntries returns entries newest first, optionally filtered by status
func (r *Repository) ListWaitlistEntries(ctx context.Context, filter models.WaitlistFilter) (entries []models.WaitlistEntry, err error) {
	ctx, span := r.startSpan(ctx, "ListWaitlistEntries", attribute.String("waitlist.status", string(filter.Status)))
	defer func() { endSpan(span, err) }()

	q := r.psql.Select(waitlistColumns...).
		From("waitlist_entries").
		OrderBy("created_at DESC", "id DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("repository: failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query waitlist entries: %w", err)
	}
	defer rows.Close()

	entries = []models.WaitlistEntry{}
	for rows.Next() {
		var e models.WaitlistEntry
		if err := scanWaitlistEntry(rows, &e); err != nil {
			return nil, fmt.Errorf("repository: failed to scan waitlist entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return entries, nil
}

// CountWaitlistByNearestCity aggregates entries per nearest service area, largest first.
// Entries recorded while no area was active are grouped under an empty city.
func (r *Repository) CountWaitlistByNearestCity(ctx context.Context) (counts []models.WaitlistCount, err error) {
	ctx, span := r.startSpan(ctx, "CountWaitlistByNearestCity")
	defer func() { endSpan(span, err) }()

	sql := `
		SELECT COALESCE(nearest_area_city, '') AS city, COUNT(*)
		FROM waitlist_entries
		GROUP BY 1
		ORDER BY 2 DESC, 1
	`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to count waitlist entries: %w", err)
	}
	defer rows.Close()

	counts = []models.WaitlistCount{}
	for rows.Next() {
		var c models.WaitlistCount
		if err := rows.Scan(&c.City, &c.Count); err != nil {
			return nil, fmt.Errorf("repository: failed to scan waitlist count: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return counts, nil
}
