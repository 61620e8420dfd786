package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/ChemGraph/internal/domain/library"
	"github.com/turtacn/ChemGraph/internal/infrastructure/database/postgres"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/ChemGraph/pkg/errors"
)

var selectColumns = []string{"id", "format", "title", "content_hash", "document_key", "size_bytes", "summary", "created_at"}

type StructureRepoTestSuite struct {
	suite.Suite
	db   *sql.DB
	mock sqlmock.Sqlmock
	repo *StructureRepository
	ctx  context.Context
}

func (s *StructureRepoTestSuite) SetupTest() {
	var err error
	s.db, s.mock, err = sqlmock.New()
	s.Require().NoError(err)
	s.repo = NewStructureRepository(postgres.NewConnectionWithDB(s.db, nil), logging.NewNopLogger(), nil)
	s.ctx = context.Background()
}

func (s *StructureRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.db.Close()
}

func (s *StructureRepoTestSuite) structure() *library.Structure {
	return library.NewStructure("sdf", "sdf", []byte("parafuchsin"), library.Summary{
		Molecules: 2, Atoms: 41, Bonds: 42, Rings: 3,
		RingSizes: []int{6, 6, 6},
		Formula:   "C 19 H 18 N 3 1 . Cl 1 -1",
		Names:     []string{"parafuchsin"},
		Warnings:  []string{},
		Errors:    []string{},
	})
}

func (s *StructureRepoTestSuite) row(st *library.Structure) *sqlmock.Rows {
	summary, err := json.Marshal(st.Summary)
	s.Require().NoError(err)
	return sqlmock.NewRows(selectColumns).AddRow(
		st.ID.String(), st.Format, st.Title, st.ContentHash, st.DocumentKey, st.SizeBytes, summary, st.CreatedAt,
	)
}

func (s *StructureRepoTestSuite) TestSave() {
	st := s.structure()
	s.mock.ExpectExec("INSERT INTO structures").
		WithArgs(st.ID, "sdf", "parafuchsin", st.ContentHash, st.DocumentKey, st.SizeBytes,
			2, 41, 42, 3, "C 19 H 18 N 3 1 . Cl 1 -1", 0.0, sqlmock.AnyArg(), st.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.repo.Save(s.ctx, st))
}

func (s *StructureRepoTestSuite) TestSave_DuplicateHashIsConflict() {
	st := s.structure()
	s.mock.ExpectExec("INSERT INTO structures").WillReturnError(&pgconn.PgError{Code: "23505"})

	err := s.repo.Save(s.ctx, st)
	s.True(pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func (s *StructureRepoTestSuite) TestSave_DatabaseError() {
	s.mock.ExpectExec("INSERT INTO structures").WillReturnError(errors.New("broken pipe"))

	err := s.repo.Save(s.ctx, s.structure())
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeDatabaseError))
	s.Contains(err.Error(), "broken pipe")
}

func (s *StructureRepoTestSuite) TestSave_InvalidStructureSkipsQuery() {
	st := s.structure()
	st.ContentHash = ""
	s.True(pkgerrors.IsValidation(s.repo.Save(s.ctx, st)))
}

func (s *StructureRepoTestSuite) TestFindByID() {
	st := s.structure()
	s.mock.ExpectQuery("SELECT .* FROM structures WHERE id = \\$1").
		WithArgs(st.ID).
		WillReturnRows(s.row(st))

	got, err := s.repo.FindByID(s.ctx, st.ID)
	s.Require().NoError(err)
	s.Equal(st.ID, got.ID)
	s.Equal("parafuchsin", got.Title)
	s.Equal(st.Summary, got.Summary)
	s.True(st.CreatedAt.Equal(got.CreatedAt))
}

func (s *StructureRepoTestSuite) TestFindByID_NotFound() {
	id := uuid.New()
	s.mock.ExpectQuery("SELECT .* FROM structures WHERE id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(selectColumns))

	_, err := s.repo.FindByID(s.ctx, id)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeStructureNotFound))
	s.True(pkgerrors.IsNotFound(err))
}

func (s *StructureRepoTestSuite) TestFindByID_CorruptSummary() {
	st := s.structure()
	s.mock.ExpectQuery("SELECT .* FROM structures WHERE id").
		WillReturnRows(sqlmock.NewRows(selectColumns).AddRow(
			st.ID.String(), st.Format, st.Title, st.ContentHash, st.DocumentKey, st.SizeBytes, []byte("{"), st.CreatedAt))

	_, err := s.repo.FindByID(s.ctx, st.ID)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func (s *StructureRepoTestSuite) TestFindByHash() {
	st := s.structure()
	s.mock.ExpectQuery("SELECT .* FROM structures WHERE content_hash = \\$1").
		WithArgs(st.ContentHash).
		WillReturnRows(s.row(st))

	got, err := s.repo.FindByHash(s.ctx, st.ContentHash)
	s.Require().NoError(err)
	s.Equal(st.DocumentKey, got.DocumentKey)
}

func (s *StructureRepoTestSuite) TestList() {
	a, b := s.structure(), s.structure()
	b.CreatedAt = a.CreatedAt.Add(-time.Minute)
	s.mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM structures").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(7)))
	rows := s.row(a)
	summary, _ := json.Marshal(b.Summary)
	rows.AddRow(b.ID.String(), b.Format, b.Title, b.ContentHash, b.DocumentKey, b.SizeBytes, summary, b.CreatedAt)
	s.mock.ExpectQuery("ORDER BY created_at DESC, id LIMIT \\$1 OFFSET \\$2").
		WithArgs(2, 4).
		WillReturnRows(rows)

	got, total, err := s.repo.List(s.ctx, 2, 4)
	s.Require().NoError(err)
	s.Equal(int64(7), total)
	s.Require().Len(got, 2)
	s.Equal(a.ID, got[0].ID)
	s.Equal(b.ID, got[1].ID)
}

func (s *StructureRepoTestSuite) TestList_EmptyPageIsNotNil() {
	s.mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	s.mock.ExpectQuery("FROM structures ORDER BY").WillReturnRows(sqlmock.NewRows(selectColumns))

	got, total, err := s.repo.List(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.NotNil(got)
	s.Empty(got)
	s.Zero(total)
}

func (s *StructureRepoTestSuite) TestList_RejectsBadPaging() {
	_, _, err := s.repo.List(s.ctx, 0, 0)
	s.True(pkgerrors.IsValidation(err))
	_, _, err = s.repo.List(s.ctx, 5, -1)
	s.True(pkgerrors.IsValidation(err))
}

func (s *StructureRepoTestSuite) TestDelete() {
	id := uuid.New()
	s.mock.ExpectExec("DELETE FROM structures WHERE id = \\$1").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.NoError(s.repo.Delete(s.ctx, id))
}

func (s *StructureRepoTestSuite) TestDelete_NotFound() {
	id := uuid.New()
	s.mock.ExpectExec("DELETE FROM structures").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.True(pkgerrors.IsNotFound(s.repo.Delete(s.ctx, id)))
}

func TestStructureRepoTestSuite(t *testing.T) {
	suite.Run(t, new(StructureRepoTestSuite))
}

//Personal.AI order the ending
