package warehouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/leap-analytics/gymscope/internal/db"
	"github.com/leap-analytics/gymscope/internal/model"
)

// PostgresConfig holds connection settings for the PostGIS warehouse.
type PostgresConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	Database string `yaml:"database" mapstructure:"database"`
	SSLMode  string `yaml:"sslmode" mapstructure:"sslmode"`

	MartSchema         string `yaml:"mart_schema" mapstructure:"mart_schema"`
	IntermediateSchema string `yaml:"intermediate_schema" mapstructure:"intermediate_schema"`

	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// missing returns the names of required settings that are empty. Password is
// optional (peer/trust auth); everything else pointing at the warehouse is
// critical.
func (c PostgresConfig) missing() []string {
	var miss []string
	if c.Host == "" {
		miss = append(miss, "host")
	}
	if c.User == "" {
		miss = append(miss, "user")
	}
	if c.Database == "" {
		miss = append(miss, "database")
	}
	return miss
}

func (c PostgresConfig) dsn() string {
	port := c.Port
	if port == 0 {
		port = 5432
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "prefer"
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		c.Host, port, c.User, c.Database, sslmode)
	if c.Password != "" {
		dsn += " password=" + c.Password
	}
	return dsn
}

// PostgresStore implements Store against the PostGIS mart using pgxpool. The
// pool is created once and reused for the process lifetime; individual
// fetches never close it.
type PostgresStore struct {
	pool         db.Pool
	mart         string
	intermediate string
}

// NewPostgres validates the connection settings, opens a pool, and pings the
// warehouse. Missing critical settings or an unreachable host both surface as
// *ConnectionError.
func NewPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	if miss := cfg.missing(); len(miss) > 0 {
		return nil, &ConnectionError{
			Op: "missing required connection settings: " + strings.Join(miss, ", "),
		}
	}

	pgxCfg, err := pgxpool.ParseConfig(cfg.dsn())
	if err != nil {
		return nil, &ConnectionError{Op: "parse connection settings", Err: err}
	}

	maxConns := int32(4)
	minConns := int32(1)
	if cfg.MaxConns > 0 {
		maxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		minConns = cfg.MinConns
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, &ConnectionError{Op: "create pool", Err: err}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &ConnectionError{Op: "ping", Err: err}
	}

	return &PostgresStore{
		pool:         pool,
		mart:         schemaOrDefault(cfg.MartSchema, "dev_marts"),
		intermediate: schemaOrDefault(cfg.IntermediateSchema, "dev_intermediate"),
	}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests and by callers
// that manage pool lifecycle themselves.
func NewPostgresFromPool(pool db.Pool, martSchema, intermediateSchema string) *PostgresStore {
	return &PostgresStore{
		pool:         pool,
		mart:         schemaOrDefault(martSchema, "dev_marts"),
		intermediate: schemaOrDefault(intermediateSchema, "dev_intermediate"),
	}
}

func schemaOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Close releases the underlying pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// metricsSQL projects the full mart contract. Numeric columns are cast
// explicitly so row values arrive as int64/float64 regardless of how the dbt
// models typed them.
func (s *PostgresStore) metricsSQL() string {
	return fmt.Sprintf(`
		SELECT
			census_block_group,
			state,
			county,
			ST_AsGeoJSON(geom) AS geometry,
			total_population::bigint AS total_population,
			pop_age_18_54::bigint AS pop_age_18_54,
			pct_prime_gym_age::float8 AS pct_prime_gym_age,
			median_household_income::float8 AS median_household_income,
			employed_population::bigint AS employed_population,
			demand_score::float8 AS demand_score,
			is_high_demand_area,
			gyms_within_1_mile::bigint AS gyms_within_1_mile,
			gyms_within_half_mile::bigint AS gyms_within_half_mile,
			distance_to_nearest_gym_meters::float8 AS distance_to_nearest_gym_meters,
			distance_to_nearest_gym_miles::float8 AS distance_to_nearest_gym_miles,
			accessibility_rating,
			is_underserved,
			opportunity_score::float8 AS opportunity_score,
			opportunity_tier
		FROM %s.mart_gym_accessibility
		ORDER BY opportunity_score DESC
	`, s.mart)
}

func (s *PostgresStore) gymsSQL() string {
	return fmt.Sprintf(`
		SELECT
			place_id,
			display_name,
			gym_type,
			ST_X(geom::geometry)::float8 AS longitude,
			ST_Y(geom::geometry)::float8 AS latitude
		FROM %s.int_sf_gyms
	`, s.intermediate)
}

// FetchBlockGroupMetrics reads the full mart, ordered by opportunity score
// descending.
func (s *PostgresStore) FetchBlockGroupMetrics(ctx context.Context) ([]model.BlockGroup, error) {
	rows, err := s.pool.Query(ctx, s.metricsSQL())
	if err != nil {
		return nil, &ConnectionError{Op: "query mart_gym_accessibility", Err: err}
	}
	defer rows.Close()

	cols, err := columnIndex(rows, "mart_gym_accessibility", blockGroupColumns)
	if err != nil {
		return nil, err
	}

	var out []model.BlockGroup
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, eris.Wrap(err, "warehouse: read mart row")
		}
		out = append(out, scanBlockGroup(vals, cols))
	}
	if err := rows.Err(); err != nil {
		return nil, &ConnectionError{Op: "iterate mart rows", Err: err}
	}
	return out, nil
}

// FetchGymLocations reads the individual gym points.
func (s *PostgresStore) FetchGymLocations(ctx context.Context) ([]model.GymLocation, error) {
	rows, err := s.pool.Query(ctx, s.gymsSQL())
	if err != nil {
		return nil, &ConnectionError{Op: "query int_sf_gyms", Err: err}
	}
	defer rows.Close()

	cols, err := columnIndex(rows, "int_sf_gyms", gymColumns)
	if err != nil {
		return nil, err
	}

	var out []model.GymLocation
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, eris.Wrap(err, "warehouse: read gym row")
		}
		out = append(out, model.GymLocation{
			PlaceID:     asString(vals[cols["place_id"]]),
			DisplayName: asString(vals[cols["display_name"]]),
			GymType:     asString(vals[cols["gym_type"]]),
			Longitude:   asFloat(vals[cols["longitude"]]),
			Latitude:    asFloat(vals[cols["latitude"]]),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &ConnectionError{Op: "iterate gym rows", Err: err}
	}
	return out, nil
}

// columnIndex lower-cases the result's column names and maps each expected
// column to its position. Case normalization happens here, once, at the
// data-access boundary. Missing columns are a *SchemaError.
func columnIndex(rows pgx.Rows, relation string, expected []string) (map[string]int, error) {
	idx := make(map[string]int, len(expected))
	for i, fd := range rows.FieldDescriptions() {
		idx[strings.ToLower(fd.Name)] = i
	}

	var missing []string
	for _, col := range expected {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Relation: relation, Missing: missing}
	}
	return idx, nil
}

func scanBlockGroup(vals []any, cols map[string]int) model.BlockGroup {
	at := func(name string) any { return vals[cols[name]] }
	return model.BlockGroup{
		CensusBlockGroup:           asString(at("census_block_group")),
		State:                      asString(at("state")),
		County:                     asString(at("county")),
		Geometry:                   asString(at("geometry")),
		TotalPopulation:            asInt(at("total_population")),
		PopAge18To54:               asInt(at("pop_age_18_54")),
		PctPrimeGymAge:             asFloat(at("pct_prime_gym_age")),
		MedianHouseholdIncome:      asFloat(at("median_household_income")),
		EmployedPopulation:         asInt(at("employed_population")),
		DemandScore:                asFloat(at("demand_score")),
		IsHighDemandArea:           asBool(at("is_high_demand_area")),
		GymsWithin1Mile:            asInt(at("gyms_within_1_mile")),
		GymsWithinHalfMile:         asInt(at("gyms_within_half_mile")),
		DistanceToNearestGymMeters: asFloat(at("distance_to_nearest_gym_meters")),
		DistanceToNearestGymMiles:  asFloat(at("distance_to_nearest_gym_miles")),
		AccessibilityRating:        asString(at("accessibility_rating")),
		IsUnderserved:              asBool(at("is_underserved")),
		OpportunityScore:           asFloat(at("opportunity_score")),
		OpportunityTier:            asString(at("opportunity_tier")),
	}
}

// Row values arrive as whatever the driver decoded. The casts in the SQL keep
// this small: bigint -> int64, float8 -> float64, text -> string, bool.

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return ""
}

func asInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int32:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func asBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}
