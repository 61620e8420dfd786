package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/turtacn/ChemGraph/internal/domain/library"
	"github.com/turtacn/ChemGraph/internal/infrastructure/database/postgres"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

const uniqueViolation = "23505"

const structureColumns = `id, format, title, content_hash, document_key, size_bytes, summary, created_at`

// StructureRepository is the PostgreSQL catalog of imported structures.
// Counts and the formula are duplicated out of the summary document into
// plain columns so they can be indexed.
type StructureRepository struct {
	db      queryExecutor
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

var _ library.Repository = (*StructureRepository)(nil)

// NewStructureRepository builds a repository over conn. metrics may be nil.
func NewStructureRepository(conn *postgres.Connection, log logging.Logger, metrics *prometheus.AppMetrics) *StructureRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &StructureRepository{db: conn.DB(), logger: log.Named("structures"), metrics: metrics}
}

func (r *StructureRepository) observe(op string, start time.Time, err error) {
	prometheus.RecordDBQuery(r.metrics, op, time.Since(start), err)
}

// Save inserts s; a duplicate content hash is a conflict.
func (r *StructureRepository) Save(ctx context.Context, s *library.Structure) (err error) {
	defer func(start time.Time) { r.observe("insert", start, err) }(time.Now())
	if err := s.Validate(); err != nil {
		return err
	}
	summary, err := json.Marshal(s.Summary)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode structure summary")
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO structures (id, format, title, content_hash, document_key, size_bytes,
			molecule_count, atom_count, bond_count, ring_count, formula, molecular_weight,
			summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		s.ID, s.Format, s.Title, s.ContentHash, s.DocumentKey, s.SizeBytes,
		s.Summary.Molecules, s.Summary.Atoms, s.Summary.Bonds, s.Summary.Rings,
		s.Summary.Formula, s.Summary.MolecularWeight, summary, s.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if stderrors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return errors.Conflict("structure already imported").WithDetail(s.ContentHash).WithCause(err)
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "insert structure").WithDetail(s.ID.String())
	}
	r.logger.Debug("structure saved", logging.String("id", s.ID.String()), logging.String("format", s.Format))
	return nil
}

// FindByID loads one structure.
func (r *StructureRepository) FindByID(ctx context.Context, id uuid.UUID) (s *library.Structure, err error) {
	defer func(start time.Time) { r.observe("select", start, err) }(time.Now())
	row := r.db.QueryRowContext(ctx, `SELECT `+structureColumns+` FROM structures WHERE id = $1`, id)
	return scanStructure(row, id.String())
}

// FindByHash loads the structure whose original document hashes to hash.
func (r *StructureRepository) FindByHash(ctx context.Context, hash string) (s *library.Structure, err error) {
	defer func(start time.Time) { r.observe("select", start, err) }(time.Now())
	row := r.db.QueryRowContext(ctx, `SELECT `+structureColumns+` FROM structures WHERE content_hash = $1`, hash)
	return scanStructure(row, hash)
}

// List returns one page, newest first, and the catalog size.
func (r *StructureRepository) List(ctx context.Context, limit, offset int) (out []*library.Structure, total int64, err error) {
	defer func(start time.Time) { r.observe("list", start, err) }(time.Now())
	if limit <= 0 || offset < 0 {
		return nil, 0, errors.InvalidParam("limit must be positive and offset non-negative").WithDetailf("limit=%d offset=%d", limit, offset)
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM structures`).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "count structures")
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+structureColumns+` FROM structures ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "list structures")
	}
	defer rows.Close()
	out = []*library.Structure{}
	for rows.Next() {
		s, err := scanStructure(rows, "")
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "list structures")
	}
	return out, total, nil
}

// Delete removes one structure.
func (r *StructureRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer func(start time.Time) { r.observe("delete", start, err) }(time.Now())
	res, err := r.db.ExecContext(ctx, `DELETE FROM structures WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "delete structure").WithDetail(id.String())
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "delete structure").WithDetail(id.String())
	}
	if n == 0 {
		return notFound(id.String())
	}
	r.logger.Debug("structure deleted", logging.String("id", id.String()))
	return nil
}

func notFound(key string) error {
	return errors.New(errors.ErrCodeStructureNotFound, "structure not found").WithDetail(key)
}

func scanStructure(row scanner, key string) (*library.Structure, error) {
	var (
		s       library.Structure
		summary []byte
	)
	err := row.Scan(&s.ID, &s.Format, &s.Title, &s.ContentHash, &s.DocumentKey, &s.SizeBytes, &summary, &s.CreatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scan structure")
	}
	if err := json.Unmarshal(summary, &s.Summary); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decode structure summary").WithDetail(s.ID.String())
	}
	return &s, nil
}

//Personal.AI order the ending
