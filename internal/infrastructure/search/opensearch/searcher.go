package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/ChemGraph/internal/domain/library"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// SearchRequest narrows a search. Zero values disable a filter.
type SearchRequest struct {
	Text     string
	Formula  string // exact concise formula
	Format   string
	MinRings int
	Limit    int
	Offset   int
}

type SearchResult struct {
	Total int64
	Hits  []library.SearchHit
}

// Searcher builds query DSL for structure searches and parses the hits.
type Searcher struct {
	client *Client
	logger logging.Logger
}

func NewSearcher(client *Client, log logging.Logger) *Searcher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Searcher{client: client, logger: log.Named("searcher")}
}

func (s *Searcher) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if req.Offset < 0 {
		return nil, errors.InvalidParam("offset must be non-negative")
	}
	body, err := json.Marshal(buildQueryDSL(req))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshal search query")
	}
	resp, err := opensearchapi.SearchRequest{
		Index: []string{s.client.index},
		Body:  bytes.NewReader(body),
	}.Do(ctx, s.client.client)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSearchIndexFailed, "search structures")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return nil, responseError(resp, "search structures")
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string            `json:"_id"`
				Score  float64           `json:"_score"`
				Source StructureDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decode search response")
	}
	out := &SearchResult{Total: parsed.Hits.Total.Value, Hits: make([]library.SearchHit, 0, len(parsed.Hits.Hits))}
	for _, h := range parsed.Hits.Hits {
		id := h.Source.StructureID
		if id == "" {
			id = h.ID
		}
		names := h.Source.Names
		if names == nil {
			names = []string{}
		}
		out.Hits = append(out.Hits, library.SearchHit{
			StructureID: id,
			Title:       h.Source.Title,
			Formula:     h.Source.Formula,
			Names:       names,
			Score:       h.Score,
		})
	}
	s.logger.Debug("search done", logging.String("text", req.Text), logging.Int64("total", out.Total))
	return out, nil
}

func pageSize(limit int) int {
	switch {
	case limit <= 0:
		return defaultPageSize
	case limit > maxPageSize:
		return maxPageSize
	}
	return limit
}

func buildQueryDSL(req SearchRequest) map[string]interface{} {
	var must interface{} = map[string]interface{}{"match_all": map[string]interface{}{}}
	if text := strings.TrimSpace(req.Text); text != "" {
		must = map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": []string{"title^3", "names^2", "formula"},
			},
		}
	}
	var filters []interface{}
	if req.Formula != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"formula.raw": req.Formula}})
	}
	if req.Format != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"format": req.Format}})
	}
	if req.MinRings > 0 {
		filters = append(filters, map[string]interface{}{"range": map[string]interface{}{"rings": map[string]interface{}{"gte": req.MinRings}}})
	}

	query := must
	if len(filters) > 0 {
		query = map[string]interface{}{"bool": map[string]interface{}{"must": must, "filter": filters}}
	}
	return map[string]interface{}{
		"query": query,
		"from":  req.Offset,
		"size":  pageSize(req.Limit),
	}
}

//Personal.AI order the ending
