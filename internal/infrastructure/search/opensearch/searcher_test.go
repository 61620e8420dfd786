package opensearch

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/turtacn/ChemGraph/pkg/errors"
)

const searchResponse = `{
	"took": 3,
	"hits": {
		"total": {"value": 2, "relation": "eq"},
		"hits": [
			{"_id": "a", "_score": 4.2, "_source": {"structure_id": "a", "title": "benzene", "formula": "C 6 H 6", "names": ["benzene"]}},
			{"_id": "b", "_score": 1.5, "_source": {"title": "phenol", "formula": "C 6 H 6 O 1"}}
		]
	}
}`

func TestSearch_ParsesHits(t *testing.T) {
	fc, srv := newFakeCluster(t)
	fc.on("POST /structures/_search", reply(http.StatusOK, searchResponse))
	idx := NewIndexer(newTestClient(t, srv), nil)

	hits, err := idx.Search(context.Background(), "benzene", 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].StructureID)
	assert.Equal(t, 4.2, hits[0].Score)
	assert.Equal(t, "b", hits[1].StructureID)
	assert.Equal(t, []string{}, hits[1].Names)

	body := fc.body("POST /structures/_search")
	assert.EqualValues(t, 5, body["size"])
	mm := body["query"].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "benzene", mm["query"])
}

func TestSearcher_Filters(t *testing.T) {
	fc, srv := newFakeCluster(t)
	fc.on("POST /structures/_search", reply(http.StatusOK, searchResponse))
	s := NewSearcher(newTestClient(t, srv), nil)

	res, err := s.Search(context.Background(), SearchRequest{Formula: "C 6 H 6", MinRings: 1, Limit: 1000, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)

	body := fc.body("POST /structures/_search")
	assert.EqualValues(t, maxPageSize, body["size"])
	assert.EqualValues(t, 10, body["from"])
	b := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Contains(t, b["must"], "match_all")
	assert.Len(t, b["filter"], 2)
}

func TestSearcher_Errors(t *testing.T) {
	fc, srv := newFakeCluster(t)
	fc.on("POST /structures/_search", reply(http.StatusBadRequest,
		`{"error":{"type":"search_phase_execution_exception","reason":"all shards failed"},"status":400}`))
	s := NewSearcher(newTestClient(t, srv), nil)

	_, err := s.Search(context.Background(), SearchRequest{Text: "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSearchIndexFailed))

	_, err = s.Search(context.Background(), SearchRequest{Offset: -1})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestBuildQueryDSL_DefaultPage(t *testing.T) {
	dsl := buildQueryDSL(SearchRequest{})
	assert.Equal(t, defaultPageSize, dsl["size"])
	assert.Equal(t, 0, dsl["from"])
}

//Personal.AI order the ending
