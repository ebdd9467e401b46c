// Package labelclient resolves a medicine name against the openFDA drug label
// database. Search always returns at least one record: strategies are tried
// in priority order and the first that yields results wins, with a
// placeholder record as the last resort.
package labelclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/juju/ratelimit"
	"github.com/tjswar/medilookapp/config"
	"github.com/tjswar/medilookapp/entities"
	"github.com/tjswar/medilookapp/interfaces"
	"github.com/tjswar/medilookapp/logging"
	"github.com/tjswar/medilookapp/metrics"
)

// Compile-time check to ensure Client implements DrugLookup
var _ interfaces.DrugLookup = (*Client)(nil)

var (
	// ErrNetwork covers transport failures and timeouts.
	ErrNetwork = errors.New("label lookup network failure")
	// ErrDecode means the body matched neither the success nor the error schema.
	ErrDecode = errors.New("label lookup decode failure")
	// ErrUpstream means the database answered with an error envelope.
	ErrUpstream = errors.New("label lookup upstream error")
	// ErrEmpty means a well-formed response carried no usable records.
	ErrEmpty = errors.New("label lookup returned no usable records")
)

const (
	primaryLimit     = 10
	alternativeLimit = 20
	maxResponseBytes = 8 << 20

	strategyPrimary     = "primary"
	strategyAlternative = "alternative"
	strategyProbe       = "probe"
)

// Client queries GET {base}/label.json.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *ratelimit.Bucket
}

// NewClient creates a label database client from configuration. Outbound calls
// are paced by a token bucket refilled at cfg.LookupRate per second.
func NewClient(cfg *config.Config) *Client {
	capacity := int64(cfg.LookupRate)
	if capacity < 1 {
		capacity = 1
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.OpenFDABaseURL, "/"),
		apiKey:  cfg.OpenFDAAPIKey,
		httpClient: &http.Client{
			Timeout: cfg.LookupTimeout,
		},
		limiter: ratelimit.NewBucketWithRate(cfg.LookupRate, capacity),
	}
}

// Search resolves query into one or more medicines. It never fails: any
// network, decoding or upstream problem moves on to the next strategy, and
// the placeholder record is returned when nothing else worked. A blank query
// goes straight to the placeholder without calling the database.
func (c *Client) Search(ctx context.Context, query string) ([]entities.Medicine, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		logging.Info("Blank query, returning fallback medicine")
		return []entities.Medicine{fallbackMedicine(query)}, nil
	}

	for _, term := range SearchTerms(query) {
		medicines, err := c.searchPrimary(ctx, query, term)
		if err == nil {
			return medicines, nil
		}
		logging.Warn("Label search term produced nothing", "query", query, "term", term, "strategy", strategyPrimary, "error", err)
	}

	medicine, err := c.searchAlternative(ctx, query)
	if err == nil {
		return []entities.Medicine{medicine}, nil
	}
	logging.Warn("Alternative label search produced nothing", "query", query, "strategy", strategyAlternative, "error", err)

	logging.Info("Returning fallback medicine", "query", query)
	return []entities.Medicine{fallbackMedicine(query)}, nil
}

// Probe performs a minimal lookup to check that the database is reachable.
// An error envelope still counts as reachable.
func (c *Client) Probe(ctx context.Context) error {
	_, err := c.fetch(ctx, strategyProbe, `openfda.generic_name:"ibuprofen"`, 1)
	if err == nil {
		metrics.LabelLookupTotal.WithLabelValues(strategyProbe, metrics.OutcomeSuccess).Inc()
		return nil
	}
	if errors.Is(err, ErrUpstream) {
		return nil
	}
	return err
}

// searchPrimary looks up one term by exact brand or generic name and keeps one
// medicine per matching brand name.
func (c *Client) searchPrimary(ctx context.Context, query, term string) ([]entities.Medicine, error) {
	search := fmt.Sprintf(`(openfda.brand_name:%s OR openfda.generic_name:%s)`, quote(term), quote(term))
	records, err := c.fetch(ctx, strategyPrimary, search, primaryLimit)
	if err != nil {
		return nil, err
	}

	medicines := BuildMedicines(query, records)
	if len(medicines) == 0 {
		metrics.LabelLookupTotal.WithLabelValues(strategyPrimary, metrics.OutcomeEmpty).Inc()
		return nil, ErrEmpty
	}

	metrics.LabelLookupTotal.WithLabelValues(strategyPrimary, metrics.OutcomeSuccess).Inc()
	return medicines, nil
}

// searchAlternative issues one broader lookup on the raw query and builds a
// single medicine from the best record.
func (c *Client) searchAlternative(ctx context.Context, query string) (entities.Medicine, error) {
	search := fmt.Sprintf(`openfda.generic_name:%s OR openfda.brand_name:%s`, quote(query), quote(query))
	records, err := c.fetch(ctx, strategyAlternative, search, alternativeLimit)
	if err != nil {
		return entities.Medicine{}, err
	}

	medicine, ok := BuildAlternativeMedicine(query, records)
	if !ok {
		metrics.LabelLookupTotal.WithLabelValues(strategyAlternative, metrics.OutcomeEmpty).Inc()
		return entities.Medicine{}, ErrEmpty
	}

	metrics.LabelLookupTotal.WithLabelValues(strategyAlternative, metrics.OutcomeSuccess).Inc()
	return medicine, nil
}

// fetch performs one paced, bounded GET and decodes the records. The error
// envelope is checked before the body is decoded as a success.
func (c *Client) fetch(ctx context.Context, strategy, search string, limit int) ([]entities.LabelRecord, error) {
	if err := c.wait(ctx); err != nil {
		return nil, c.fail(strategy, metrics.OutcomeNetwork, fmt.Errorf("%w: %v", ErrNetwork, err))
	}

	params := url.Values{}
	params.Set("search", search)
	params.Set("limit", strconv.Itoa(limit))
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/label.json?"+params.Encode(), nil)
	if err != nil {
		return nil, c.fail(strategy, metrics.OutcomeNetwork, fmt.Errorf("%w: failed to build request: %v", ErrNetwork, err))
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	response, err := c.httpClient.Do(req)
	metrics.LabelLookupDuration.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, c.fail(strategy, metrics.OutcomeNetwork, fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, c.fail(strategy, metrics.OutcomeNetwork, fmt.Errorf("%w: failed to read response body: %v", ErrNetwork, err))
	}

	var envelope entities.LabelErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		return nil, c.fail(strategy, metrics.OutcomeUpstream,
			fmt.Errorf("%w: %s: %s", ErrUpstream, envelope.Error.Code, envelope.Error.Message))
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, c.fail(strategy, metrics.OutcomeUpstream, fmt.Errorf("%w: status %d", ErrUpstream, response.StatusCode))
	}

	var decoded entities.LabelResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, c.fail(strategy, metrics.OutcomeDecode, fmt.Errorf("%w: %v", ErrDecode, err))
	}

	return decoded.Results, nil
}

// wait takes one token from the outbound bucket, honouring ctx.
func (c *Client) wait(ctx context.Context) error {
	d := c.limiter.Take(1)
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) fail(strategy, outcome string, err error) error {
	metrics.LabelLookupTotal.WithLabelValues(strategy, outcome).Inc()
	return err
}

// quote wraps a term as an exact phrase, dropping characters that would break
// the search expression.
func quote(term string) string {
	term = strings.NewReplacer(`"`, "", `\`, "").Replace(strings.TrimSpace(term))
	return `"` + term + `"`
}
