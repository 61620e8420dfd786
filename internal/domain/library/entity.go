// Package library models the structure library: imported structure
// documents, their chemistry summary, and the events raised when the
// library changes.
package library

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/ChemGraph/internal/domain/chemistry"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

// Summary is the searchable digest of a parsed document.
type Summary struct {
	Molecules       int      `json:"molecules"`
	Atoms           int      `json:"atoms"`
	Bonds           int      `json:"bonds"`
	Rings           int      `json:"rings"`
	RingSizes       []int    `json:"ring_sizes"`
	Formula         string   `json:"formula"`
	MolecularWeight float64  `json:"molecular_weight"`
	Names           []string `json:"names"`
	Warnings        []string `json:"warnings"`
	Errors          []string `json:"errors"`
}

// Summarize digests m. Molecules counts top-level molecules only; ring
// sizes are sorted ascending.
func Summarize(m *chemistry.Model) Summary {
	s := Summary{
		Molecules:       len(m.Molecules()),
		Atoms:           len(m.AllAtoms()),
		Bonds:           len(m.AllBonds()),
		Rings:           m.TotalRingCount(),
		Formula:         m.ConciseFormula(),
		MolecularWeight: m.MolecularWeight(),
		RingSizes:       []int{},
		Names:           []string{},
		Warnings:        append([]string{}, m.AllWarnings()...),
		Errors:          append([]string{}, m.AllErrors()...),
	}
	for _, mol := range m.AllMolecules() {
		for _, r := range mol.Rings() {
			s.RingSizes = append(s.RingSizes, r.Size())
		}
		for _, n := range mol.Names {
			if v := strings.TrimSpace(n.Value); v != "" {
				s.Names = append(s.Names, v)
			}
		}
	}
	sort.Ints(s.RingSizes)
	return s
}

// Structure is one imported document.
type Structure struct {
	ID          uuid.UUID `json:"id"`
	Format      string    `json:"format"`
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash"`
	DocumentKey string    `json:"document_key"`
	SizeBytes   int64     `json:"size_bytes"`
	Summary     Summary   `json:"summary"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewStructure stamps a fresh record for data. The title is the first name
// found in the document, if any; ext is the format's file extension.
func NewStructure(format, ext string, data []byte, sum Summary) *Structure {
	id := uuid.New()
	s := &Structure{
		ID:          id,
		Format:      format,
		ContentHash: ContentHash(data),
		DocumentKey: DocumentKey(id, ext),
		SizeBytes:   int64(len(data)),
		Summary:     sum,
		CreatedAt:   time.Now().UTC(),
	}
	if len(sum.Names) > 0 {
		s.Title = sum.Names[0]
	}
	return s
}

// Validate checks the fields every store relies on.
func (s *Structure) Validate() error {
	if s == nil {
		return errors.InvalidParam("structure is nil")
	}
	if s.ID == uuid.Nil {
		return errors.InvalidParam("structure id is required")
	}
	if s.Format == "" {
		return errors.InvalidParam("structure format is required").WithDetail(s.ID.String())
	}
	if s.DocumentKey == "" {
		return errors.InvalidParam("structure document key is required").WithDetail(s.ID.String())
	}
	if len(s.ContentHash) != sha256.Size*2 {
		return errors.InvalidParam("structure content hash is malformed").WithDetail(s.ContentHash)
	}
	return nil
}

// ContentHash is the hex SHA-256 of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DocumentKey is the blob store key of a structure's original document.
func DocumentKey(id uuid.UUID, ext string) string {
	return fmt.Sprintf("structures/%s.%s", id, strings.TrimPrefix(ext, "."))
}

// ParseID parses a structure id, reporting malformed input as a bad request.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errors.InvalidParam("malformed structure id").WithDetail(s).WithCause(err)
	}
	return id, nil
}

//Personal.AI order the ending
