package warehouse

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/leap-analytics/gymscope/internal/model"
)

// SnapshotStore implements Store against a local SQLite snapshot written by
// `gymscope snapshot`. It lets the dashboard run without warehouse access.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshot opens (or creates) a SQLite snapshot at the given path and
// ensures its schema.
func NewSnapshot(path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "snapshot: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "snapshot: exec %s", pragma)
		}
	}
	s := &SnapshotStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const snapshotMigration = `
CREATE TABLE IF NOT EXISTS block_groups (
	census_block_group             TEXT PRIMARY KEY,
	state                          TEXT NOT NULL,
	county                         TEXT NOT NULL,
	geometry                       TEXT NOT NULL,
	total_population               INTEGER NOT NULL,
	pop_age_18_54                  INTEGER NOT NULL,
	pct_prime_gym_age              REAL NOT NULL,
	median_household_income        REAL NOT NULL,
	employed_population            INTEGER NOT NULL,
	demand_score                   REAL NOT NULL,
	is_high_demand_area            INTEGER NOT NULL,
	gyms_within_1_mile             INTEGER NOT NULL,
	gyms_within_half_mile          INTEGER NOT NULL,
	distance_to_nearest_gym_meters REAL NOT NULL,
	distance_to_nearest_gym_miles  REAL NOT NULL,
	accessibility_rating           TEXT NOT NULL,
	is_underserved                 INTEGER NOT NULL,
	opportunity_score              REAL NOT NULL,
	opportunity_tier               TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS gyms (
	place_id     TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	gym_type     TEXT NOT NULL,
	longitude    REAL NOT NULL,
	latitude     REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshot_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

func (s *SnapshotStore) migrate() error {
	if _, err := s.db.Exec(snapshotMigration); err != nil {
		return eris.Wrap(err, "snapshot: migrate")
	}
	return nil
}

// Write replaces the snapshot contents with the given datasets in a single
// transaction and records the capture time.
func (s *SnapshotStore) Write(ctx context.Context, blocks []model.BlockGroup, gyms []model.GymLocation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "snapshot: begin")
	}
	defer tx.Rollback()

	for _, table := range []string{"block_groups", "gyms"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return eris.Wrapf(err, "snapshot: clear %s", table)
		}
	}

	const insertBlock = `
		INSERT INTO block_groups (
			census_block_group, state, county, geometry,
			total_population, pop_age_18_54, pct_prime_gym_age,
			median_household_income, employed_population,
			demand_score, is_high_demand_area,
			gyms_within_1_mile, gyms_within_half_mile,
			distance_to_nearest_gym_meters, distance_to_nearest_gym_miles,
			accessibility_rating, is_underserved,
			opportunity_score, opportunity_tier
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, bg := range blocks {
		if _, err := tx.ExecContext(ctx, insertBlock,
			bg.CensusBlockGroup, bg.State, bg.County, bg.Geometry,
			bg.TotalPopulation, bg.PopAge18To54, bg.PctPrimeGymAge,
			bg.MedianHouseholdIncome, bg.EmployedPopulation,
			bg.DemandScore, bg.IsHighDemandArea,
			bg.GymsWithin1Mile, bg.GymsWithinHalfMile,
			bg.DistanceToNearestGymMeters, bg.DistanceToNearestGymMiles,
			bg.AccessibilityRating, bg.IsUnderserved,
			bg.OpportunityScore, bg.OpportunityTier,
		); err != nil {
			return eris.Wrapf(err, "snapshot: insert block group %s", bg.CensusBlockGroup)
		}
	}

	const insertGym = `
		INSERT INTO gyms (place_id, display_name, gym_type, longitude, latitude)
		VALUES (?, ?, ?, ?, ?)`
	for _, g := range gyms {
		if _, err := tx.ExecContext(ctx, insertGym,
			g.PlaceID, g.DisplayName, g.GymType, g.Longitude, g.Latitude,
		); err != nil {
			return eris.Wrapf(err, "snapshot: insert gym %s", g.PlaceID)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot_meta (key, value) VALUES ('captured_at', ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return eris.Wrap(err, "snapshot: record capture time")
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "snapshot: commit")
	}
	return nil
}

// CapturedAt returns when the snapshot was written, or the zero time if the
// snapshot is empty.
func (s *SnapshotStore) CapturedAt(ctx context.Context) (time.Time, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM snapshot_meta WHERE key = 'captured_at'`).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, eris.Wrap(err, "snapshot: read capture time")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, eris.Wrap(err, "snapshot: parse capture time")
	}
	return t, nil
}

// FetchBlockGroupMetrics reads the snapshotted mart rows, ordered by
// opportunity score descending like the warehouse query.
func (s *SnapshotStore) FetchBlockGroupMetrics(ctx context.Context) ([]model.BlockGroup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT census_block_group, state, county, geometry,
		       total_population, pop_age_18_54, pct_prime_gym_age,
		       median_household_income, employed_population,
		       demand_score, is_high_demand_area,
		       gyms_within_1_mile, gyms_within_half_mile,
		       distance_to_nearest_gym_meters, distance_to_nearest_gym_miles,
		       accessibility_rating, is_underserved,
		       opportunity_score, opportunity_tier
		FROM block_groups
		ORDER BY opportunity_score DESC`)
	if err != nil {
		return nil, &ConnectionError{Op: "query snapshot block_groups", Err: err}
	}
	defer rows.Close()

	var out []model.BlockGroup
	for rows.Next() {
		var bg model.BlockGroup
		if err := rows.Scan(
			&bg.CensusBlockGroup, &bg.State, &bg.County, &bg.Geometry,
			&bg.TotalPopulation, &bg.PopAge18To54, &bg.PctPrimeGymAge,
			&bg.MedianHouseholdIncome, &bg.EmployedPopulation,
			&bg.DemandScore, &bg.IsHighDemandArea,
			&bg.GymsWithin1Mile, &bg.GymsWithinHalfMile,
			&bg.DistanceToNearestGymMeters, &bg.DistanceToNearestGymMiles,
			&bg.AccessibilityRating, &bg.IsUnderserved,
			&bg.OpportunityScore, &bg.OpportunityTier,
		); err != nil {
			return nil, eris.Wrap(err, "snapshot: scan block group")
		}
		out = append(out, bg)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "snapshot: iterate block groups")
	}
	return out, nil
}

// FetchGymLocations reads the snapshotted gym points.
func (s *SnapshotStore) FetchGymLocations(ctx context.Context) ([]model.GymLocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT place_id, display_name, gym_type, longitude, latitude
		FROM gyms`)
	if err != nil {
		return nil, &ConnectionError{Op: "query snapshot gyms", Err: err}
	}
	defer rows.Close()

	var out []model.GymLocation
	for rows.Next() {
		var g model.GymLocation
		if err := rows.Scan(&g.PlaceID, &g.DisplayName, &g.GymType, &g.Longitude, &g.Latitude); err != nil {
			return nil, eris.Wrap(err, "snapshot: scan gym")
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "snapshot: iterate gyms")
	}
	return out, nil
}

// Close closes the snapshot database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
