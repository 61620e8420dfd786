package opensearch

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemGraph/internal/domain/library"
	pkgerrors "github.com/turtacn/ChemGraph/pkg/errors"
)

func benzeneStructure() *library.Structure {
	return library.NewStructure("cml", "cml", []byte("<cml/>"), library.Summary{
		Molecules: 1, Atoms: 12, Bonds: 12, Rings: 1, RingSizes: []int{6},
		Formula: "C 6 H 6", Names: []string{"benzene"}, MolecularWeight: 78.11,
		Warnings: []string{}, Errors: []string{},
	})
}

func TestEnsureIndex_CreatesWithMapping(t *testing.T) {
	fc, srv := newFakeCluster(t)
	fc.on("PUT /structures", reply(http.StatusOK, `{"acknowledged":true}`))
	idx := NewIndexer(newTestClient(t, srv), nil)

	require.NoError(t, idx.EnsureIndex(context.Background()))

	body := fc.body("PUT /structures")
	props := body["mappings"].(map[string]interface{})["properties"].(map[string]interface{})
	assert.Contains(t, props, "formula")
	assert.Contains(t, props, "ring_sizes")
}

func TestEnsureIndex_ExistingIndexIsKept(t *testing.T) {
	fc, srv := newFakeCluster(t)
	fc.on("HEAD /structures", reply(http.StatusOK, ""))
	idx := NewIndexer(newTestClient(t, srv), nil)

	require.NoError(t, idx.EnsureIndex(context.Background()))
	assert.Nil(t, fc.body("PUT /structures"))
}

func TestEnsureIndex_CreateFails(t *testing.T) {
	fc, srv := newFakeCluster(t)
	fc.on("PUT /structures", reply(http.StatusBadRequest,
		`{"error":{"type":"resource_already_exists_exception","reason":"index exists"},"status":400}`))
	idx := NewIndexer(newTestClient(t, srv), nil)

	err := idx.EnsureIndex(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resource_already_exists_exception")
}

func TestIndex_SendsDocument(t *testing.T) {
	fc, srv := newFakeCluster(t)
	s := benzeneStructure()
	route := "PUT /structures/_doc/" + s.ID.String()
	fc.on(route, reply(http.StatusCreated, `{"result":"created"}`))
	idx := NewIndexer(newTestClient(t, srv), nil, WithRefresh("wait_for"))

	require.NoError(t, idx.Index(context.Background(), s))

	doc := fc.body(route)
	assert.Equal(t, s.ID.String(), doc["structure_id"])
	assert.Equal(t, "C 6 H 6", doc["formula"])
	assert.Equal(t, "benzene", doc["title"])
	assert.Equal(t, []interface{}{"benzene"}, doc["names"])
	assert.EqualValues(t, 1, doc["rings"])
	assert.Contains(t, fc.requests[len(fc.requests)-1], "refresh=wait_for")
}

func TestIndex_ClusterError(t *testing.T) {
	fc, srv := newFakeCluster(t)
	s := benzeneStructure()
	fc.on("PUT /structures/_doc/"+s.ID.String(), reply(http.StatusBadRequest,
		`{"error":{"type":"mapper_parsing_exception","reason":"failed to parse"},"status":400}`))
	idx := NewIndexer(newTestClient(t, srv), nil)

	err := idx.Index(context.Background(), s)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSearchIndexFailed))
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestRemove(t *testing.T) {
	fc, srv := newFakeCluster(t)
	fc.on("DELETE /structures/_doc/known", reply(http.StatusOK, `{"result":"deleted"}`))
	idx := NewIndexer(newTestClient(t, srv), nil)

	assert.NoError(t, idx.Remove(context.Background(), "known"))
	assert.NoError(t, idx.Remove(context.Background(), "unknown"))

	fc.on("DELETE /structures/_doc/broken", reply(http.StatusInternalServerError, `{}`))
	assert.Error(t, idx.Remove(context.Background(), "broken"))
}

//Personal.AI order the ending
