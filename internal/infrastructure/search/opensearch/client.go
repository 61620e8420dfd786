// Package opensearch keeps a full-text index of library structures: titles,
// names and formulas, with their counts for filtering.
package opensearch

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/ChemGraph/internal/config"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

var ErrConnectionFailed = errors.New(errors.ErrCodeSearchIndexFailed, "opensearch unreachable")

// Client wraps the opensearch client with the configured index name.
type Client struct {
	client  *opensearch.Client
	index   string
	logger  logging.Logger
	healthy atomic.Bool
}

// NewClient builds a client for cfg and pings the cluster.
func NewClient(ctx context.Context, cfg config.OpenSearchConfig, log logging.Logger) (*Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.InvalidParam("opensearch addresses required")
	}
	if cfg.IndexName == "" {
		return nil, errors.InvalidParam("opensearch index_name required")
	}
	transport := &http.Transport{MaxIdleConnsPerHost: 10}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	osc, err := opensearch.NewClient(opensearch.Config{
		Addresses:     cfg.Addresses,
		Username:      cfg.User,
		Password:      cfg.Password,
		Transport:     transport,
		MaxRetries:    3,
		RetryOnStatus: []int{429, 502, 503, 504},
		RetryBackoff:  func(i int) time.Duration { return time.Duration(i) * 100 * time.Millisecond },
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSearchIndexFailed, "create opensearch client")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &Client{client: osc, index: cfg.IndexName, logger: log.Named("opensearch")}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pctx); err != nil {
		return nil, ErrConnectionFailed.WithDetailf("%v", cfg.Addresses).WithCause(err)
	}
	c.logger.Info("opensearch client connected", logging.Strings("addresses", cfg.Addresses), logging.String("index", cfg.IndexName))
	return c, nil
}

// Ping checks the cluster answers and records the result for IsHealthy.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.client.Ping(c.client.Ping.WithContext(ctx))
	if err != nil {
		c.healthy.Store(false)
		return err
	}
	defer resp.Body.Close()
	if resp.IsError() {
		c.healthy.Store(false)
		return errors.New(errors.ErrCodeSearchIndexFailed, "ping returned error status").WithDetail(resp.Status())
	}
	c.healthy.Store(true)
	return nil
}

func (c *Client) IsHealthy() bool { return c.healthy.Load() }

func (c *Client) Index() string { return c.index }

// responseError turns an error response into an AppError carrying the
// cluster's reason when there is one.
func responseError(resp *opensearchapi.Response, op string) error {
	body, _ := io.ReadAll(resp.Body)
	var parsed struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Reason != "" {
		return errors.New(errors.ErrCodeSearchIndexFailed, op).
			WithDetailf("%d %s: %s", resp.StatusCode, parsed.Error.Type, parsed.Error.Reason)
	}
	return errors.New(errors.ErrCodeSearchIndexFailed, op).WithDetailf("status %d", resp.StatusCode)
}

//Personal.AI order the ending
