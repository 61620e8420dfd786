package neo4j

import (
	"context"
	"strconv"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/turtacn/ChemGraph/internal/domain/chemistry"
	"github.com/turtacn/ChemGraph/internal/domain/library"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

// Node keys are "<structure id>/<local id>" so that ids reused across
// structures never collide.
const (
	cypherDeleteStructure = `
MATCH (s:Structure {id: $id})
OPTIONAL MATCH (s)-[:CONTAINS]->(m:Molecule)
OPTIONAL MATCH (m)-[:HAS_ATOM]->(a:Atom)
OPTIONAL MATCH (m)-[:HAS_RING]->(r:Ring)
DETACH DELETE a, r, m, s`

	cypherMergeStructure = `
MERGE (s:Structure {id: $id})
SET s.format = $format, s.title = $title, s.formula = $formula,
    s.content_hash = $content_hash, s.molecular_weight = $molecular_weight,
    s.ring_count = $ring_count, s.created_at = $created_at`

	cypherMergeMolecules = `
MATCH (s:Structure {id: $id})
UNWIND $molecules AS mol
MERGE (m:Molecule {key: mol.key})
SET m.id = mol.id, m.formula = mol.formula, m.charge = mol.charge, m.names = mol.names
MERGE (s)-[:CONTAINS]->(m)
WITH m, mol WHERE mol.parent <> ''
MATCH (p:Molecule {key: mol.parent})
MERGE (p)-[:HAS_CHILD]->(m)`

	cypherMergeAtoms = `
UNWIND $atoms AS atom
MATCH (m:Molecule {key: atom.molecule})
MERGE (a:Atom {key: atom.key})
SET a.id = atom.id, a.element = atom.element, a.charge = atom.charge, a.x = atom.x, a.y = atom.y
MERGE (m)-[:HAS_ATOM]->(a)`

	cypherMergeBonds = `
UNWIND $bonds AS bond
MATCH (a:Atom {key: bond.start}), (b:Atom {key: bond.end})
MERGE (a)-[r:BOND {key: bond.key}]->(b)
SET r.id = bond.id, r.order = bond.order, r.stereo = bond.stereo`

	cypherMergeRings = `
UNWIND $rings AS ring
MATCH (m:Molecule {key: ring.molecule})
MERGE (r:Ring {key: ring.key})
SET r.size = ring.size
MERGE (m)-[:HAS_RING]->(r)
WITH r, ring
UNWIND ring.atoms AS member
MATCH (a:Atom {key: member})
MERGE (a)-[:MEMBER_OF]->(r)`

	cypherRingSizes = `
MATCH (:Structure {id: $id})-[:CONTAINS]->(:Molecule)-[:HAS_RING]->(r:Ring)
RETURN r.size AS size ORDER BY size`
)

// GraphProjector mirrors a structure's molecular graph into neo4j. A
// projection replaces whatever was stored for the structure before.
type GraphProjector struct {
	driver *Driver
	logger logging.Logger
}

var _ library.GraphProjector = (*GraphProjector)(nil)

func NewGraphProjector(d *Driver, log logging.Logger) *GraphProjector {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &GraphProjector{driver: d, logger: log.Named("projector")}
}

// Project writes s and its model in one transaction.
func (p *GraphProjector) Project(ctx context.Context, s *library.Structure, m *chemistry.Model) error {
	if s == nil || m == nil {
		return errors.InvalidParam("structure and model are required")
	}
	g := buildGraph(s, m)
	steps := []struct {
		cypher string
		params map[string]any
	}{
		{cypherDeleteStructure, map[string]any{"id": g.id}},
		{cypherMergeStructure, g.structure},
		{cypherMergeMolecules, map[string]any{"id": g.id, "molecules": g.molecules}},
		{cypherMergeAtoms, map[string]any{"atoms": g.atoms}},
		{cypherMergeBonds, map[string]any{"bonds": g.bonds}},
		{cypherMergeRings, map[string]any{"rings": g.rings}},
	}
	_, err := p.driver.ExecuteWrite(ctx, func(tx Transaction) (any, error) {
		for _, st := range steps {
			res, err := tx.Run(ctx, st.cypher, st.params)
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return err
	}
	p.logger.Debug("structure projected",
		logging.String("id", g.id),
		logging.Int("atoms", len(g.atoms)),
		logging.Int("bonds", len(g.bonds)),
		logging.Int("rings", len(g.rings)))
	return nil
}

// Remove deletes the structure's subgraph. Unknown ids are a no-op.
func (p *GraphProjector) Remove(ctx context.Context, id string) error {
	_, err := p.driver.ExecuteWrite(ctx, func(tx Transaction) (any, error) {
		res, err := tx.Run(ctx, cypherDeleteStructure, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	return err
}

// RingSizes reads back the sorted ring sizes stored for a structure.
func (p *GraphProjector) RingSizes(ctx context.Context, id string) ([]int, error) {
	out, err := p.driver.ExecuteRead(ctx, func(tx Transaction) (any, error) {
		res, err := tx.Run(ctx, cypherRingSizes, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		return CollectRecords(ctx, res, func(r *neo4j.Record) (int, error) {
			v, ok := r.Get("size")
			if !ok {
				return 0, errors.New(errors.ErrCodeSerialization, "ring record without size")
			}
			n, ok := v.(int64)
			if !ok {
				return 0, errors.New(errors.ErrCodeSerialization, "ring size is not an integer")
			}
			return int(n), nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out.([]int), nil
}

type graph struct {
	id        string
	structure map[string]any
	molecules []map[string]any
	atoms     []map[string]any
	bonds     []map[string]any
	rings     []map[string]any
}

// buildGraph flattens the model into driver-friendly parameter maps. Only
// primitive values and slices of them are used, as bolt requires.
func buildGraph(s *library.Structure, m *chemistry.Model) graph {
	id := s.ID.String()
	key := func(local string) string { return id + "/" + local }

	g := graph{
		id: id,
		structure: map[string]any{
			"id":               id,
			"format":           s.Format,
			"title":            s.Title,
			"formula":          s.Summary.Formula,
			"content_hash":     s.ContentHash,
			"molecular_weight": s.Summary.MolecularWeight,
			"ring_count":       int64(s.Summary.Rings),
			"created_at":       s.CreatedAt,
		},
		molecules: []map[string]any{},
		atoms:     []map[string]any{},
		bonds:     []map[string]any{},
		rings:     []map[string]any{},
	}

	for _, mol := range m.AllMolecules() {
		parent := ""
		if p := mol.Parent(); p != nil {
			parent = key(p.ID)
		}
		names := make([]string, 0, len(mol.Names))
		for _, n := range mol.Names {
			names = append(names, n.Value)
		}
		g.molecules = append(g.molecules, map[string]any{
			"key":     key(mol.ID),
			"id":      mol.ID,
			"parent":  parent,
			"formula": mol.ConciseFormula(),
			"charge":  int64(mol.Charge()),
			"names":   names,
		})
		for _, a := range mol.Atoms() {
			pos := a.Position()
			g.atoms = append(g.atoms, map[string]any{
				"key":      key(a.ID),
				"id":       a.ID,
				"molecule": key(mol.ID),
				"element":  a.Element.String(),
				"charge":   int64(a.Charge()),
				"x":        pos.X,
				"y":        pos.Y,
			})
		}
		for _, b := range mol.Bonds() {
			g.bonds = append(g.bonds, map[string]any{
				"key":    key(b.ID),
				"id":     b.ID,
				"start":  key(b.Start()),
				"end":    key(b.End()),
				"order":  b.Order.String(),
				"stereo": b.Stereo.String(),
			})
		}
		for i, r := range mol.Rings() {
			members := make([]string, 0, r.Size())
			for _, atomID := range r.AtomIDs() {
				members = append(members, key(atomID))
			}
			g.rings = append(g.rings, map[string]any{
				"key":      key(mol.ID + "/r" + strconv.Itoa(i+1)),
				"molecule": key(mol.ID),
				"size":     int64(r.Size()),
				"atoms":    members,
			})
		}
	}
	return g
}

//Personal.AI order the ending
