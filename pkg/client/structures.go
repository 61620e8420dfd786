package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Summary describes the molecules of a document.
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

// Structure is a stored document's catalog entry.
type Structure struct {
	ID          string    `json:"id"`
	Format      string    `json:"format"`
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash"`
	DocumentKey string    `json:"document_key"`
	SizeBytes   int64     `json:"size_bytes"`
	Summary     Summary   `json:"summary"`
	CreatedAt   time.Time `json:"created_at"`
}

// ImportResult is the answer to Import. Duplicate is set when the same
// bytes were already stored; Structure is then the existing entry.
type ImportResult struct {
	Structure *Structure `json:"structure"`
	Duplicate bool       `json:"duplicate"`
}

type ListResult struct {
	Items  []*Structure `json:"items"`
	Total  int64        `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

type SearchHit struct {
	StructureID string   `json:"structure_id"`
	Title       string   `json:"title"`
	Formula     string   `json:"formula"`
	Names       []string `json:"names"`
	Score       float64  `json:"score"`
}

type SearchResult struct {
	Query string      `json:"query"`
	Hits  []SearchHit `json:"hits"`
}

// InspectResult reports a document without storing it.
type InspectResult struct {
	Format   string   `json:"format"`
	Summary  Summary  `json:"summary"`
	Problems []string `json:"problems"`
}

// Document is a stored upload, byte for byte.
type Document struct {
	ContentType string
	ETag        string
	Data        []byte
}

// Converted is rendered output. Cached reports a conversion cache hit.
type Converted struct {
	ContentType string
	Cached      bool
	Data        []byte
}

// Health is the liveness or readiness answer.
type Health struct {
	Status     string                     `json:"status"`
	Version    string                     `json:"version,omitempty"`
	Uptime     string                     `json:"uptime,omitempty"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

type ComponentHealth struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

func formatQuery(key, value string) url.Values {
	if value == "" {
		return nil
	}
	return url.Values{key: {value}}
}

// Import uploads data. An empty format lets the server sniff it.
func (c *Client) Import(ctx context.Context, format string, data []byte) (*ImportResult, error) {
	resp, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        apiPrefix + "/structures",
		query:       formatQuery("format", format),
		body:        data,
		contentType: "application/octet-stream",
	})
	if err != nil {
		return nil, err
	}
	var out ImportResult
	if err := decode(resp.body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) List(ctx context.Context, limit, offset int) (*ListResult, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	var out ListResult
	if err := c.getJSON(ctx, apiPrefix+"/structures", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Get(ctx context.Context, id string) (*Structure, error) {
	var out Structure
	if err := c.getJSON(ctx, apiPrefix+"/structures/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Document(ctx context.Context, id string) (*Document, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: apiPrefix + "/structures/" + url.PathEscape(id) + "/document"})
	if err != nil {
		return nil, err
	}
	return &Document{ContentType: resp.header.Get("Content-Type"), ETag: resp.header.Get("ETag"), Data: resp.body}, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: apiPrefix + "/structures/" + url.PathEscape(id)})
	return err
}

// Search runs a full-text query over titles, names and formulas.
func (c *Client) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	q := url.Values{"q": {query}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out SearchResult
	if err := c.getJSON(ctx, apiPrefix+"/search", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Convert renders data in format to. An empty from lets the server sniff it.
func (c *Client) Convert(ctx context.Context, from, to string, data []byte) (*Converted, error) {
	q := url.Values{"to": {to}}
	if from != "" {
		q.Set("from", from)
	}
	resp, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        apiPrefix + "/convert",
		query:       q,
		body:        data,
		contentType: "application/octet-stream",
	})
	if err != nil {
		return nil, err
	}
	return &Converted{
		ContentType: resp.header.Get("Content-Type"),
		Cached:      resp.header.Get("X-Cache") == "HIT",
		Data:        resp.body,
	}, nil
}

func (c *Client) Inspect(ctx context.Context, format string, data []byte) (*InspectResult, error) {
	resp, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        apiPrefix + "/inspect",
		query:       formatQuery("format", format),
		body:        data,
		contentType: "application/octet-stream",
	})
	if err != nil {
		return nil, err
	}
	var out InspectResult
	if err := decode(resp.body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Live calls /healthz.
func (c *Client) Live(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.getJSON(ctx, "/healthz", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ready calls /readyz. A not-ready server answers 503, returned as *APIError.
func (c *Client) Ready(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.getJSON(ctx, "/readyz", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
