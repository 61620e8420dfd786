package postgres

import (
	"database/sql"
	"embed"
	stderrors "errors"
	"io/fs"
	"sort"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/turtacn/ChemGraph/internal/config"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const migrationsDir = "migrations"

// Migrator applies the embedded schema migrations. It owns a dedicated
// handle, closed by Close.
type Migrator struct {
	m      *migrate.Migrate
	logger logging.Logger
}

// NewMigrator opens a handle for cfg and prepares the migration run.
func NewMigrator(cfg config.DatabaseConfig, log logging.Logger) (*Migrator, error) {
	db, err := sqlOpen(driverName, buildDSN(cfg))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "open migration handle")
	}
	m, err := newMigrate(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Migrator{m: m, logger: log}, nil
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFS, migrationsDir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "load embedded migrations")
	}
	drv, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "create migration driver")
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", drv)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "create migrate instance")
	}
	return m, nil
}

// Up applies every pending migration. Nothing to do is not an error.
func (g *Migrator) Up() error {
	if err := g.m.Up(); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		v, dirty, _ := g.m.Version()
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "apply migrations").
			WithDetailf("version %d, dirty %t", v, dirty)
	}
	v, dirty, _ := g.Version()
	g.logger.Info("catalog schema up to date", logging.Int64("version", int64(v)), logging.Bool("dirty", dirty))
	return nil
}

// Down rolls back steps migrations.
func (g *Migrator) Down(steps int) error {
	if steps <= 0 {
		return errors.InvalidParam("rollback steps must be positive").WithDetailf("%d", steps)
	}
	if err := g.m.Steps(-steps); err != nil {
		if stderrors.Is(err, migrate.ErrNoChange) {
			return errors.Conflict("no migrations to roll back")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "roll back migrations").WithDetailf("%d step(s)", steps)
	}
	g.logger.Info("catalog schema rolled back", logging.Int("steps", steps))
	return nil
}

// Version is the applied version; 0 when nothing has been applied.
func (g *Migrator) Version() (uint, bool, error) {
	v, dirty, err := g.m.Version()
	if stderrors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, errors.ErrCodeDatabaseError, "read migration version")
	}
	return v, dirty, nil
}

// Force records version as applied without running anything; it clears a
// dirty state left by a failed migration.
func (g *Migrator) Force(version int) error {
	if err := g.m.Force(version); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "force migration version").WithDetailf("%d", version)
	}
	g.logger.Warn("catalog schema version forced", logging.Int("version", version))
	return nil
}

// Close releases the source and the database handle.
func (g *Migrator) Close() error {
	srcErr, dbErr := g.m.Close()
	if srcErr != nil {
		return srcErr
	}
	return dbErr
}

// Migrations lists the embedded up migrations in version order.
func Migrations() ([]string, error) {
	entries, err := fs.ReadDir(migrationFS, migrationsDir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

//Personal.AI order the ending
