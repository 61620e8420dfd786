package library

import (
	"context"

	"github.com/google/uuid"

	"github.com/turtacn/ChemGraph/internal/domain/chemistry"
)

// Repository is the catalog of imported structures.
type Repository interface {
	// Save inserts s. A second structure with the same content hash is a
	// conflict.
	Save(ctx context.Context, s *Structure) error

	// FindByID returns ErrCodeStructureNotFound when id is unknown.
	FindByID(ctx context.Context, id uuid.UUID) (*Structure, error)

	// FindByHash returns ErrCodeStructureNotFound when no structure has hash.
	FindByHash(ctx context.Context, hash string) (*Structure, error)

	// List pages through the catalog newest first and reports the total.
	List(ctx context.Context, limit, offset int) ([]*Structure, int64, error)

	// Delete returns ErrCodeStructureNotFound when id is unknown.
	Delete(ctx context.Context, id uuid.UUID) error
}

// DocumentStore keeps original documents.
type DocumentStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// ConversionCache memoises conversion output by key. A miss is (nil, false, nil).
type ConversionCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
}

// EventPublisher puts library events on the bus.
type EventPublisher interface {
	Publish(ctx context.Context, e Event) error
}

// SearchHit is one full-text match.
type SearchHit struct {
	StructureID string   `json:"structure_id"`
	Title       string   `json:"title"`
	Formula     string   `json:"formula"`
	Names       []string `json:"names"`
	Score       float64  `json:"score"`
}

// SearchIndexer maintains the full-text index over names and formulas.
type SearchIndexer interface {
	Index(ctx context.Context, s *Structure) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit int) ([]SearchHit, error)
}

// GraphProjector mirrors a parsed structure into a graph store.
type GraphProjector interface {
	Project(ctx context.Context, s *Structure, m *chemistry.Model) error
	Remove(ctx context.Context, id string) error
}

//Personal.AI order the ending
