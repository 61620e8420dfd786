package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/ChemGraph/internal/domain/library"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

// StructureDocument is what gets indexed for one structure.
type StructureDocument struct {
	StructureID     string    `json:"structure_id"`
	Title           string    `json:"title"`
	Format          string    `json:"format"`
	Formula         string    `json:"formula"`
	Names           []string  `json:"names"`
	Molecules       int       `json:"molecules"`
	Atoms           int       `json:"atoms"`
	Bonds           int       `json:"bonds"`
	Rings           int       `json:"rings"`
	RingSizes       []int     `json:"ring_sizes"`
	MolecularWeight float64   `json:"molecular_weight"`
	CreatedAt       time.Time `json:"created_at"`
}

func documentFor(s *library.Structure) StructureDocument {
	return StructureDocument{
		StructureID:     s.ID.String(),
		Title:           s.Title,
		Format:          s.Format,
		Formula:         s.Summary.Formula,
		Names:           s.Summary.Names,
		Molecules:       s.Summary.Molecules,
		Atoms:           s.Summary.Atoms,
		Bonds:           s.Summary.Bonds,
		Rings:           s.Summary.Rings,
		RingSizes:       s.Summary.RingSizes,
		MolecularWeight: s.Summary.MolecularWeight,
		CreatedAt:       s.CreatedAt,
	}
}

// indexMapping keeps formula as a keyword too so exact formula lookups work.
var indexMapping = map[string]interface{}{
	"settings": map[string]interface{}{
		"number_of_shards":   1,
		"number_of_replicas": 0,
	},
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"structure_id": map[string]interface{}{"type": "keyword"},
			"title":        map[string]interface{}{"type": "text"},
			"format":       map[string]interface{}{"type": "keyword"},
			"formula": map[string]interface{}{
				"type":   "text",
				"fields": map[string]interface{}{"raw": map[string]interface{}{"type": "keyword"}},
			},
			"names":            map[string]interface{}{"type": "text"},
			"molecules":        map[string]interface{}{"type": "integer"},
			"atoms":            map[string]interface{}{"type": "integer"},
			"bonds":            map[string]interface{}{"type": "integer"},
			"rings":            map[string]interface{}{"type": "integer"},
			"ring_sizes":       map[string]interface{}{"type": "integer"},
			"molecular_weight": map[string]interface{}{"type": "double"},
			"created_at":       map[string]interface{}{"type": "date"},
		},
	},
}

// Indexer maintains the structure index and answers searches through its
// Searcher.
type Indexer struct {
	client   *Client
	searcher *Searcher
	refresh  string
	logger   logging.Logger
}

var _ library.SearchIndexer = (*Indexer)(nil)

type IndexerOption func(*Indexer)

// WithRefresh sets the refresh policy of writes ("true", "wait_for", "false").
func WithRefresh(policy string) IndexerOption {
	return func(i *Indexer) { i.refresh = policy }
}

func NewIndexer(client *Client, log logging.Logger, opts ...IndexerOption) *Indexer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	i := &Indexer{client: client, refresh: "false", logger: log.Named("indexer")}
	for _, opt := range opts {
		opt(i)
	}
	i.searcher = NewSearcher(client, log)
	return i
}

// EnsureIndex creates the index with its mapping unless it exists.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	exists, err := opensearchapi.IndicesExistsRequest{Index: []string{i.client.index}}.Do(ctx, i.client.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchIndexFailed, "check index")
	}
	exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}
	body, err := json.Marshal(indexMapping)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "marshal index mapping")
	}
	resp, err := opensearchapi.IndicesCreateRequest{Index: i.client.index, Body: bytes.NewReader(body)}.Do(ctx, i.client.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchIndexFailed, "create index")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return responseError(resp, "create index")
	}
	i.logger.Info("index created", logging.String("index", i.client.index))
	return nil
}

// Index upserts the document for s under its id.
func (i *Indexer) Index(ctx context.Context, s *library.Structure) error {
	body, err := json.Marshal(documentFor(s))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "marshal structure document")
	}
	resp, err := opensearchapi.IndexRequest{
		Index:      i.client.index,
		DocumentID: s.ID.String(),
		Body:       bytes.NewReader(body),
		Refresh:    i.refresh,
	}.Do(ctx, i.client.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchIndexFailed, "index structure").WithDetail(s.ID.String())
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return responseError(resp, "index structure")
	}
	i.logger.Debug("structure indexed", logging.String("id", s.ID.String()))
	return nil
}

// Remove deletes the document; an unknown id is not an error.
func (i *Indexer) Remove(ctx context.Context, id string) error {
	resp, err := opensearchapi.DeleteRequest{
		Index:      i.client.index,
		DocumentID: id,
		Refresh:    i.refresh,
	}.Do(ctx, i.client.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchIndexFailed, "remove structure").WithDetail(id)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.IsError() {
		return responseError(resp, "remove structure")
	}
	return nil
}

// Search runs a free-text query over titles, names and formulas.
func (i *Indexer) Search(ctx context.Context, query string, limit int) ([]library.SearchHit, error) {
	res, err := i.searcher.Search(ctx, SearchRequest{Text: query, Limit: limit})
	if err != nil {
		return nil, err
	}
	return res.Hits, nil
}

//Personal.AI order the ending
