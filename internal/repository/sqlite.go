package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mr1hm/go-disaster-alerts/internal/geo"
	"github.com/mr1hm/go-disaster-alerts/internal/models"
	"github.com/mr1hm/go-disaster-alerts/internal/proximity"
)

// SQLiteStore keeps alerts and shelters in a local SQLite file. It is
// seeded with the fixture dataset on first open, and reads fall back to
// the fixtures when a query fails.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// one connection keeps ":memory:" databases shared across queries
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteStore{
		db: db,
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error while migrating database: %w", err)
	}
	if err := s.seed(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("error while seeding database: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			severity TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			location_name TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			safety_tips TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			radius REAL NOT NULL,
			active INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS shelters (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			address TEXT NOT NULL,
			capacity INTEGER NOT NULL,
			available INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_alerts_position ON alerts(latitude, longitude);
		CREATE INDEX IF NOT EXISTS idx_alerts_active ON alerts(active);
		CREATE INDEX IF NOT EXISTS idx_shelters_position ON shelters(latitude, longitude);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) seed(ctx context.Context) error {
	var alerts, shelters int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts`).Scan(&alerts); err != nil {
		return err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shelters`).Scan(&shelters); err != nil {
		return err
	}

	if alerts == 0 {
		for _, a := range FixtureAlerts() {
			if err := s.AddAlert(ctx, &a); err != nil {
				return err
			}
		}
		slog.Info("seeded alerts", "store", "sqlite", "count", len(fixtureAlerts))
	}
	if shelters == 0 {
		for _, sh := range FixtureShelters() {
			if err := s.AddShelter(ctx, &sh); err != nil {
				return err
			}
		}
		slog.Info("seeded shelters", "store", "sqlite", "count", len(fixtureShelters))
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// timestampLayout is fixed width so text order matches time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

const alertColumns = `id, type, severity, title, description, location_name, latitude, longitude, safety_tips, timestamp, radius, active`
const shelterColumns = `id, name, latitude, longitude, address, capacity, available`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (models.DisasterAlert, error) {
	var (
		a         models.DisasterAlert
		tips      string
		timestamp string
	)
	err := row.Scan(&a.ID, &a.Type, &a.Severity, &a.Title, &a.Description, &a.Location.Name,
		&a.Location.Coordinates.Latitude, &a.Location.Coordinates.Longitude,
		&tips, &timestamp, &a.Radius, &a.Active)
	if err != nil {
		return a, err
	}
	if err := json.Unmarshal([]byte(tips), &a.SafetyTips); err != nil {
		return a, fmt.Errorf("alert %s: bad safety tips: %w", a.ID, err)
	}
	if a.Timestamp, err = time.Parse(time.RFC3339Nano, timestamp); err != nil {
		return a, fmt.Errorf("alert %s: bad timestamp: %w", a.ID, err)
	}
	return a, nil
}

func scanShelter(row rowScanner) (models.SafetyShelter, error) {
	var sh models.SafetyShelter
	err := row.Scan(&sh.ID, &sh.Name, &sh.Coordinates.Latitude, &sh.Coordinates.Longitude,
		&sh.Address, &sh.Capacity, &sh.Available)
	return sh, err
}

// boundsClause restricts latitude/longitude columns to the bounding box of
// a radius query. Rows inside the box still need the exact distance check.
func boundsClause(r geo.Rect) (string, []any) {
	if r.WrapsAntimeridian {
		return `latitude BETWEEN ? AND ? AND (longitude >= ? OR longitude <= ?)`,
			[]any{r.LatLo, r.LatHi, r.LngLo, r.LngHi}
	}
	return `latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?`,
		[]any{r.LatLo, r.LatHi, r.LngLo, r.LngHi}
}

func (s *SQLiteStore) queryAlerts(ctx context.Context, where string, args ...any) ([]models.DisasterAlert, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE `+where+` ORDER BY timestamp DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]models.DisasterAlert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (s *SQLiteStore) queryShelters(ctx context.Context, where string, args ...any) ([]models.SafetyShelter, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+shelterColumns+` FROM shelters WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query shelters: %w", err)
	}
	defer rows.Close()

	shelters := make([]models.SafetyShelter, 0)
	for rows.Next() {
		sh, err := scanShelter(rows)
		if err != nil {
			return nil, err
		}
		shelters = append(shelters, sh)
	}
	return shelters, rows.Err()
}

func (s *SQLiteStore) GetActiveAlerts(ctx context.Context) []models.DisasterAlert {
	alerts, err := s.queryAlerts(ctx, `active = 1`)
	if err != nil {
		slog.Error("reading alerts failed, serving fixtures", "store", "sqlite", "error", err)
		return activeOnly(FixtureAlerts())
	}
	return alerts
}

func (s *SQLiteStore) GetAlertsNearLocation(ctx context.Context, lat, lon, radiusKm float64) []models.DisasterAlert {
	clause, args := boundsClause(geo.BoundingRect(models.Coordinates{Latitude: lat, Longitude: lon}, radiusKm))
	candidates, err := s.queryAlerts(ctx, `active = 1 AND `+clause, args...)
	if err != nil {
		slog.Error("reading nearby alerts failed, serving fixtures", "store", "sqlite", "error", err)
		candidates = FixtureAlerts()
	}
	return proximity.NearbyActive(candidates, lat, lon, radiusKm)
}

func (s *SQLiteStore) GetAlertByID(ctx context.Context, id string) *models.DisasterAlert {
	row := s.db.QueryRowContext(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = ?`, id)
	a, err := scanAlert(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		slog.Error("reading alert failed, serving fixtures", "store", "sqlite", "id", id, "error", err)
		return fixtureAlert(id)
	}
	return &a
}

func (s *SQLiteStore) GetNearbyShelters(ctx context.Context, lat, lon, radiusKm float64) []models.SafetyShelter {
	clause, args := boundsClause(geo.BoundingRect(models.Coordinates{Latitude: lat, Longitude: lon}, radiusKm))
	candidates, err := s.queryShelters(ctx, clause, args...)
	if err != nil {
		slog.Error("reading shelters failed, serving fixtures", "store", "sqlite", "error", err)
		candidates = FixtureShelters()
	}
	return proximity.NearbyShelters(candidates, lat, lon, radiusKm)
}

func alertArgs(a *models.DisasterAlert) ([]any, error) {
	tips := a.SafetyTips
	if tips == nil {
		tips = []string{}
	}
	raw, err := json.Marshal(tips)
	if err != nil {
		return nil, err
	}
	return []any{
		string(a.Type), string(a.Severity), a.Title, a.Description, a.Location.Name,
		a.Location.Coordinates.Latitude, a.Location.Coordinates.Longitude,
		string(raw), a.Timestamp.UTC().Format(timestampLayout), a.Radius, a.Active,
	}, nil
}

func (s *SQLiteStore) AddAlert(ctx context.Context, a *models.DisasterAlert) error {
	if err := validateAlert(a); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	args, err := alertArgs(a)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO alerts (`+alertColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append([]any{a.ID}, args...)...)
	if err != nil {
		return fmt.Errorf("insert alert %s: %w", a.ID, constraintErr(err))
	}
	return nil
}

func (s *SQLiteStore) UpdateAlert(ctx context.Context, a *models.DisasterAlert) error {
	if err := validateAlert(a); err != nil {
		return err
	}
	args, err := alertArgs(a)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET type = ?, severity = ?, title = ?, description = ?, location_name = ?,
			latitude = ?, longitude = ?, safety_tips = ?, timestamp = ?, radius = ?, active = ?
		WHERE id = ?`,
		append(args, a.ID)...)
	if err != nil {
		return fmt.Errorf("update alert %s: %w", a.ID, err)
	}
	return affectedOne(res)
}

func (s *SQLiteStore) DeleteAlert(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete alert %s: %w", id, err)
	}
	return affectedOne(res)
}

func (s *SQLiteStore) AddShelter(ctx context.Context, sh *models.SafetyShelter) error {
	if err := validateShelter(sh); err != nil {
		return err
	}
	if sh.ID == "" {
		sh.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shelters (`+shelterColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sh.ID, sh.Name, sh.Coordinates.Latitude, sh.Coordinates.Longitude, sh.Address, sh.Capacity, sh.Available)
	if err != nil {
		return fmt.Errorf("insert shelter %s: %w", sh.ID, constraintErr(err))
	}
	return nil
}

func (s *SQLiteStore) UpdateShelter(ctx context.Context, sh *models.SafetyShelter) error {
	if err := validateShelter(sh); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE shelters SET name = ?, latitude = ?, longitude = ?, address = ?, capacity = ?, available = ?
		WHERE id = ?`,
		sh.Name, sh.Coordinates.Latitude, sh.Coordinates.Longitude, sh.Address, sh.Capacity, sh.Available, sh.ID)
	if err != nil {
		return fmt.Errorf("update shelter %s: %w", sh.ID, err)
	}
	return affectedOne(res)
}

func (s *SQLiteStore) DeleteShelter(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shelters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shelter %s: %w", id, err)
	}
	return affectedOne(res)
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// constraintErr maps a primary key violation onto ErrAlreadyExists.
func constraintErr(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
		return ErrAlreadyExists
	}
	return err
}
