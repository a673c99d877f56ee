package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"service-area-api/internal/config"
	"service-area-api/internal/logger"
	"service-area-api/internal/migrations"
	"service-area-api/internal/models"
	"service-area-api/internal/notify"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// csvColumns is the expected header and the copy target, in order. is_active, color_hex,
// sort_order and description may be left empty.
var csvColumns = []string{"city_name", "latitude", "longitude", "radius_km", "is_active", "color_hex", "sort_order", "description"}

func main() {
	file := flag.String("file", "", "Path to the service area CSV file to import")
	replace := flag.Bool("replace", false, "Delete existing service areas before importing")
	flag.Parse()

	_ = godotenv.Load(".env")

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := run(context.Background(), cfg, *file, *replace); err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}
}

func run(ctx context.Context, cfg config.Config, path string, replace bool) error {
	if path == "" {
		return errors.New("--file flag is required")
	}

	log.Info().Str("file", path).Msg("starting import")

	areas, err := readCSVFile(path)
	if err != nil {
		return err
	}
	log.Info().Int("records", len(areas)).Msg("parsed service areas")

	pool, err := pgxpool.New(ctx, cfg.DBSource)
	if err != nil {
		return fmt.Errorf("cannot connect to db: %w", err)
	}
	defer pool.Close()

	if err := migrations.Up(ctx, pool); err != nil {
		return fmt.Errorf("cannot apply migrations: %w", err)
	}

	inserted, err := insertAreas(ctx, pool, areas, replace)
	if err != nil {
		return fmt.Errorf("cannot insert service areas: %w", err)
	}

	if cfg.RedisAddr != "" {
		if err := announce(ctx, cfg); err != nil {
			log.Warn().Err(err).Msg("imported, but running instances were not notified")
		}
	}

	log.Info().Int64("records", inserted).Bool("replace", replace).Msg("import finished")
	return nil
}

func readCSVFile(path string) ([]models.ServiceArea, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open file: %w", err)
	}
	defer f.Close()

	areas, err := parseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("cannot parse CSV: %w", err)
	}
	return areas, nil
}

func parseCSV(r io.Reader) ([]models.ServiceArea, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // trailing optional columns may be omitted
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) < 4 || !strings.EqualFold(strings.TrimSpace(header[0]), csvColumns[0]) {
		return nil, fmt.Errorf("unexpected header %v, expected %v", header, csvColumns)
	}

	var areas []models.ServiceArea
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		area, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		areas = append(areas, area)
	}

	return areas, nil
}

func parseRecord(record []string) (models.ServiceArea, error) {
	field := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	if len(record) < 4 {
		return models.ServiceArea{}, fmt.Errorf("invalid record length: %d, expected at least 4 columns", len(record))
	}

	area := models.ServiceArea{
		CityName:    field(0),
		IsActive:    true,
		ColorHex:    field(5),
		Description: field(7),
	}

	var err error
	if area.Latitude, err = strconv.ParseFloat(field(1), 64); err != nil {
		return area, fmt.Errorf("invalid latitude: %s", field(1))
	}
	if area.Longitude, err = strconv.ParseFloat(field(2), 64); err != nil {
		return area, fmt.Errorf("invalid longitude: %s", field(2))
	}
	if area.RadiusKm, err = strconv.ParseFloat(field(3), 64); err != nil {
		return area, fmt.Errorf("invalid radius: %s", field(3))
	}
	if v := field(4); v != "" {
		if area.IsActive, err = strconv.ParseBool(v); err != nil {
			return area, fmt.Errorf("invalid is_active: %s", v)
		}
	}
	if v := field(6); v != "" {
		if area.SortOrder, err = strconv.Atoi(v); err != nil {
			return area, fmt.Errorf("invalid sort_order: %s", v)
		}
	}
	if area.ColorHex == "" {
		area.ColorHex = models.DefaultColorHex
	}

	if err := area.Validate(); err != nil {
		return area, err
	}
	return area, nil
}

func insertAreas(ctx context.Context, pool *pgxpool.Pool, areas []models.ServiceArea, replace bool) (int64, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if replace {
		if _, err := tx.Exec(ctx, "DELETE FROM service_areas"); err != nil {
			return 0, fmt.Errorf("failed to clear service areas: %w", err)
		}
	}

	// Use CopyFrom for bulk insert
	n, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"service_areas"},
		csvColumns,
		pgx.CopyFromSlice(len(areas), func(i int) ([]any, error) {
			a := areas[i]
			var description *string
			if a.Description != "" {
				description = &a.Description
			}
			return []any{a.CityName, a.Latitude, a.Longitude, a.RadiusKm, a.IsActive, a.ColorHex, a.SortOrder, description}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy service areas: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return n, nil
}

// announce tells running API instances to reload their registries.
func announce(ctx context.Context, cfg config.Config) error {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer rdb.Close()

	return rdb.Publish(ctx, cfg.RedisChannel, "importer-"+notify.NewInstanceID()).Err()
}
