// Package library is the application service of the structure library. It
// sits between the HTTP, CLI and worker entry points and the stores, codecs
// and event bus.
package library

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/turtacn/ChemGraph/internal/converter"
	"github.com/turtacn/ChemGraph/internal/domain/chemistry"
	domainLib "github.com/turtacn/ChemGraph/internal/domain/library"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// Service defines the structure library operations.
type Service interface {
	Import(ctx context.Context, input *ImportInput) (*ImportResult, error)
	Get(ctx context.Context, id string) (*domainLib.Structure, error)
	Document(ctx context.Context, id string) (*Document, error)
	List(ctx context.Context, input *ListInput) (*ListResult, error)
	Delete(ctx context.Context, id string) error
	Convert(ctx context.Context, input *ConvertInput) (*ConvertResult, error)
	Inspect(ctx context.Context, input *InspectInput) (*InspectResult, error)
	Search(ctx context.Context, input *SearchInput) ([]domainLib.SearchHit, error)
	Project(ctx context.Context, e domainLib.Event) error
}

// ImportInput is a document upload. An empty Format is sniffed from Payload.
type ImportInput struct {
	Format  string
	Payload []byte
}

// ImportResult reports the stored structure. Duplicate is set when an
// identical document was already in the library; nothing new is written then.
type ImportResult struct {
	Structure *domainLib.Structure `json:"structure"`
	Duplicate bool                 `json:"duplicate"`
}

// Document is an original upload.
type Document struct {
	Structure   *domainLib.Structure
	ContentType string
	Data        []byte
}

type ListInput struct {
	Limit  int
	Offset int
}

type ListResult struct {
	Structures []*domainLib.Structure `json:"structures"`
	Total      int64                  `json:"total"`
	Limit      int                    `json:"limit"`
	Offset     int                    `json:"offset"`
}

// ConvertInput is a stateless conversion request. An empty From is sniffed.
type ConvertInput struct {
	From    string
	To      string
	Payload []byte
}

type ConvertResult struct {
	Format      converter.Format
	ContentType string
	Data        []byte
	Cached      bool
}

type InspectInput struct {
	Format  string
	Payload []byte
}

// InspectResult digests a document without storing it. Problems lists
// integrity violations of the parsed model.
type InspectResult struct {
	Format   converter.Format  `json:"format"`
	Summary  domainLib.Summary `json:"summary"`
	Problems []string          `json:"problems"`
}

type SearchInput struct {
	Query string
	Limit int
}

// Dependencies wires the service. Only Codecs is required; operations whose
// store is missing fail with ErrCodeServiceUnavailable.
type Dependencies struct {
	Repository       domainLib.Repository
	Documents        domainLib.DocumentStore
	Cache            domainLib.ConversionCache
	Publisher        domainLib.EventPublisher
	Indexer          domainLib.SearchIndexer
	Projector        domainLib.GraphProjector
	Codecs           *converter.Registry
	Metrics          *prometheus.AppMetrics
	Logger           logging.Logger
	MaxDocumentBytes int64
}

// loadingCache is implemented by caches that collapse concurrent misses.
type loadingCache interface {
	GetOrLoad(ctx context.Context, key string, load func(context.Context) ([]byte, error)) ([]byte, bool, error)
}

type serviceImpl struct {
	deps   Dependencies
	logger logging.Logger
}

// NewService creates the structure library service.
func NewService(deps Dependencies) Service {
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if deps.Codecs == nil {
		deps.Codecs = converter.NewRegistry(converter.Options{Logger: deps.Logger})
	}
	return &serviceImpl{deps: deps, logger: deps.Logger.Named("library")}
}

func unavailable(what string) error {
	return errors.New(errors.ErrCodeServiceUnavailable, what+" is not configured")
}

func (s *serviceImpl) checkPayload(payload []byte) error {
	if len(payload) == 0 {
		return errors.InvalidParam("document is empty")
	}
	if limit := s.deps.MaxDocumentBytes; limit > 0 && int64(len(payload)) > limit {
		return errors.InvalidParam("document too large").WithDetailf("%d bytes, limit %d", len(payload), limit)
	}
	return nil
}

func resolveFormat(name string, payload []byte) (converter.Format, error) {
	if name == "" {
		return converter.Sniff(payload), nil
	}
	return converter.ParseFormat(name)
}

// parse decodes payload with the codec for f.
func (s *serviceImpl) parse(f converter.Format, payload []byte) (*chemistry.Model, error) {
	codec, err := s.deps.Codecs.Codec(f)
	if err != nil {
		return nil, err
	}
	return codec.Import(bytes.NewReader(payload))
}

func (s *serviceImpl) render(f converter.Format, m *chemistry.Model) ([]byte, error) {
	codec, err := s.deps.Codecs.Codec(f)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := codec.Export(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// conversionKey identifies a conversion by its endpoints and input content.
func conversionKey(from, to converter.Format, hash string) string {
	return fmt.Sprintf("%s:%s:%s", from, to, hash)
}

func (s *serviceImpl) Import(ctx context.Context, input *ImportInput) (res *ImportResult, err error) {
	if s.deps.Repository == nil || s.deps.Documents == nil {
		return nil, unavailable("structure storage")
	}
	if input == nil {
		return nil, errors.InvalidParam("import input is required")
	}
	if err := s.checkPayload(input.Payload); err != nil {
		return nil, err
	}
	f, err := resolveFormat(input.Format, input.Payload)
	if err != nil {
		return nil, err
	}

	var sum domainLib.Summary
	defer func() {
		prometheus.RecordImport(s.deps.Metrics, string(f), prometheus.ImportStats{
			Atoms:         sum.Atoms,
			Rings:         sum.Rings,
			Warnings:      len(sum.Warnings),
			GeneralErrors: len(sum.Errors),
		}, err)
	}()

	m, err := s.parse(f, input.Payload)
	if err != nil {
		return nil, err
	}
	sum = domainLib.Summarize(m)

	hash := domainLib.ContentHash(input.Payload)
	existing, err := s.deps.Repository.FindByHash(ctx, hash)
	switch {
	case err == nil:
		s.logger.Info("document already imported", logging.String("id", existing.ID.String()))
		return &ImportResult{Structure: existing, Duplicate: true}, nil
	case !errors.IsNotFound(err):
		return nil, err
	}

	st := domainLib.NewStructure(string(f), f.Extension(), input.Payload, sum)
	if err = s.deps.Documents.Put(ctx, st.DocumentKey, f.ContentType(), input.Payload); err != nil {
		return nil, err
	}
	if err = s.deps.Repository.Save(ctx, st); err != nil {
		if derr := s.deps.Documents.Delete(context.WithoutCancel(ctx), st.DocumentKey); derr != nil {
			s.logger.Warn("orphaned document left behind", logging.String("key", st.DocumentKey), logging.Err(derr))
		}
		return nil, err
	}

	s.cacheCanonical(ctx, f, hash, m)
	s.publish(ctx, domainLib.ImportedEvent(st))

	s.logger.Info("structure imported",
		logging.String("id", st.ID.String()),
		logging.String("format", string(f)),
		logging.Int("atoms", sum.Atoms),
		logging.Int("rings", sum.Rings))
	return &ImportResult{Structure: st}, nil
}

// cacheCanonical stores the CML rendering of a fresh import so a later
// conversion to CML is a cache hit.
func (s *serviceImpl) cacheCanonical(ctx context.Context, f converter.Format, hash string, m *chemistry.Model) {
	if s.deps.Cache == nil {
		return
	}
	out, err := s.render(converter.FormatCML, m.Clone())
	if err != nil {
		s.logger.Warn("canonical rendering failed", logging.Err(err))
		return
	}
	if err := s.deps.Cache.Set(ctx, conversionKey(f, converter.FormatCML, hash), out); err != nil {
		s.logger.Warn("caching canonical rendering failed", logging.Err(err))
	}
}

// publish announces e. A failure is logged and the change stands; the
// search index and graph catch up with the next event for the structure.
func (s *serviceImpl) publish(ctx context.Context, e domainLib.Event) {
	if s.deps.Publisher == nil {
		return
	}
	if err := s.deps.Publisher.Publish(ctx, e); err != nil {
		s.logger.Error("publishing library event failed",
			logging.String("type", string(e.Type)),
			logging.String("structure_id", e.StructureID),
			logging.Err(err))
	}
}

func (s *serviceImpl) Get(ctx context.Context, id string) (*domainLib.Structure, error) {
	if s.deps.Repository == nil {
		return nil, unavailable("structure catalog")
	}
	uid, err := domainLib.ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.deps.Repository.FindByID(ctx, uid)
}

func (s *serviceImpl) Document(ctx context.Context, id string) (*Document, error) {
	if s.deps.Documents == nil {
		return nil, unavailable("document store")
	}
	st, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := s.deps.Documents.Get(ctx, st.DocumentKey)
	if err != nil {
		return nil, err
	}
	ct := "application/octet-stream"
	if f, ferr := converter.ParseFormat(st.Format); ferr == nil {
		ct = f.ContentType()
	}
	return &Document{Structure: st, ContentType: ct, Data: data}, nil
}

func (s *serviceImpl) List(ctx context.Context, input *ListInput) (*ListResult, error) {
	if s.deps.Repository == nil {
		return nil, unavailable("structure catalog")
	}
	in := ListInput{}
	if input != nil {
		in = *input
	}
	if in.Offset < 0 {
		return nil, errors.InvalidParam("offset must not be negative")
	}
	if in.Limit <= 0 {
		in.Limit = defaultPageSize
	}
	if in.Limit > maxPageSize {
		in.Limit = maxPageSize
	}
	items, total, err := s.deps.Repository.List(ctx, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	return &ListResult{Structures: items, Total: total, Limit: in.Limit, Offset: in.Offset}, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) error {
	if s.deps.Repository == nil || s.deps.Documents == nil {
		return unavailable("structure storage")
	}
	st, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.deps.Repository.Delete(ctx, st.ID); err != nil {
		return err
	}
	if err := s.deps.Documents.Delete(ctx, st.DocumentKey); err != nil {
		s.logger.Warn("document delete failed", logging.String("key", st.DocumentKey), logging.Err(err))
	}
	s.publish(ctx, domainLib.DeletedEvent(st))
	s.logger.Info("structure deleted", logging.String("id", st.ID.String()))
	return nil
}

func (s *serviceImpl) Convert(ctx context.Context, input *ConvertInput) (res *ConvertResult, err error) {
	if input == nil {
		return nil, errors.InvalidParam("convert input is required")
	}
	if err := s.checkPayload(input.Payload); err != nil {
		return nil, err
	}
	from, err := resolveFormat(input.From, input.Payload)
	if err != nil {
		return nil, err
	}
	to, err := converter.ParseFormat(input.To)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		prometheus.RecordConversion(s.deps.Metrics, string(from), string(to), time.Since(start), err)
	}()

	load := func(context.Context) ([]byte, error) {
		out, _, err := s.deps.Codecs.Convert(from, to, input.Payload)
		return out, err
	}
	res = &ConvertResult{Format: to, ContentType: to.ContentType()}
	key := conversionKey(from, to, domainLib.ContentHash(input.Payload))

	switch c := s.deps.Cache.(type) {
	case nil:
		res.Data, err = load(ctx)
	case loadingCache:
		res.Data, res.Cached, err = c.GetOrLoad(ctx, key, load)
	default:
		res.Data, res.Cached, err = getOrLoad(ctx, c, key, load, s.logger)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// getOrLoad is the plain read-through path for caches without their own.
func getOrLoad(ctx context.Context, c domainLib.ConversionCache, key string, load func(context.Context) ([]byte, error), log logging.Logger) ([]byte, bool, error) {
	data, hit, err := c.Get(ctx, key)
	if err != nil {
		log.Warn("conversion cache unavailable", logging.Err(err))
	}
	if hit {
		return data, true, nil
	}
	data, err = load(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := c.Set(ctx, key, data); err != nil {
		log.Warn("conversion cache write failed", logging.Err(err))
	}
	return data, false, nil
}

func (s *serviceImpl) Inspect(ctx context.Context, input *InspectInput) (*InspectResult, error) {
	if input == nil {
		return nil, errors.InvalidParam("inspect input is required")
	}
	if err := s.checkPayload(input.Payload); err != nil {
		return nil, err
	}
	f, err := resolveFormat(input.Format, input.Payload)
	if err != nil {
		return nil, err
	}
	m, err := s.parse(f, input.Payload)
	if err != nil {
		return nil, err
	}
	problems := m.CheckIntegrity()
	if problems == nil {
		problems = []string{}
	}
	return &InspectResult{Format: f, Summary: domainLib.Summarize(m), Problems: problems}, nil
}

func (s *serviceImpl) Search(ctx context.Context, input *SearchInput) ([]domainLib.SearchHit, error) {
	if s.deps.Indexer == nil {
		return nil, unavailable("search index")
	}
	if input == nil || input.Query == "" {
		return nil, errors.InvalidParam("search query is required")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.deps.Indexer.Search(ctx, input.Query, limit)
}

// Project brings the search index and the graph in line with e. An import
// event for a structure deleted since is skipped.
func (s *serviceImpl) Project(ctx context.Context, e domainLib.Event) error {
	switch e.Type {
	case domainLib.EventDeleted:
		return s.unproject(ctx, e.StructureID)
	case domainLib.EventImported:
	default:
		return errors.InvalidParam("unknown event type").WithDetail(string(e.Type))
	}

	st, err := s.Get(ctx, e.StructureID)
	if errors.IsNotFound(err) {
		s.logger.Info("structure gone before projection", logging.String("id", e.StructureID))
		return nil
	}
	if err != nil {
		return err
	}
	if s.deps.Documents == nil {
		return unavailable("document store")
	}
	data, err := s.deps.Documents.Get(ctx, st.DocumentKey)
	if err != nil {
		return err
	}
	f, err := converter.ParseFormat(st.Format)
	if err != nil {
		return err
	}
	m, err := s.parse(f, data)
	if err != nil {
		return err
	}

	if s.deps.Indexer != nil {
		if err := s.timed("opensearch", func() error { return s.deps.Indexer.Index(ctx, st) }); err != nil {
			return err
		}
	}
	if s.deps.Projector != nil {
		if err := s.timed("neo4j", func() error { return s.deps.Projector.Project(ctx, st, m) }); err != nil {
			return err
		}
	}
	s.logger.Debug("structure projected", logging.String("id", e.StructureID))
	return nil
}

func (s *serviceImpl) unproject(ctx context.Context, id string) error {
	if s.deps.Indexer != nil {
		if err := s.timed("opensearch", func() error { return s.deps.Indexer.Remove(ctx, id) }); err != nil {
			return err
		}
	}
	if s.deps.Projector != nil {
		if err := s.timed("neo4j", func() error { return s.deps.Projector.Remove(ctx, id) }); err != nil {
			return err
		}
	}
	return nil
}

func (s *serviceImpl) timed(target string, fn func() error) error {
	start := time.Now()
	err := fn()
	prometheus.RecordProjection(s.deps.Metrics, target, time.Since(start), err)
	return err
}

//Personal.AI order the ending
