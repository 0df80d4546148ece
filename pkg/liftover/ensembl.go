package liftover

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/time/rate"

	"github.com/jgbaldwinbrown/posbed/pkg/assembly"
	"github.com/jgbaldwinbrown/posbed/pkg/logging"
	"github.com/jgbaldwinbrown/posbed/pkg/position"
)

const (
	DefaultBaseURL   = "https://rest.ensembl.org"
	DefaultSpecies   = "human"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 15.0
)

// Config configures an Ensembl client. Zero values select the defaults.
type Config struct {
	BaseURL string
	Species string
	Timeout time.Duration
	// RateLimit is in requests per second; negative disables pacing.
	RateLimit float64
	// StrictSingle rejects responses with more than one mapping instead of
	// taking the first.
	StrictSingle bool
	HTTPClient   *http.Client
}

// Client performs one synchronous GET per lookup, with no retries.
type Client struct {
	baseURL string
	species string
	timeout time.Duration
	strict  bool
	client  *http.Client
	limiter *rate.Limiter
}

type mapResponse struct {
	Mappings []mapping `json:"mappings"`
}

type mapping struct {
	Original mappedRegion `json:"original"`
	Mapped   mappedRegion `json:"mapped"`
}

type mappedRegion struct {
	SeqRegionName string `json:"seq_region_name"`
	Start         int64  `json:"start"`
	End           int64  `json:"end"`
	Strand        int    `json:"strand"`
	Assembly      string `json:"assembly"`
	CoordSystem   string `json:"coord_system"`
}

func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		species: cfg.Species,
		timeout: cfg.Timeout,
		strict:  cfg.StrictSingle,
		client:  cfg.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.species == "" {
		c.species = DefaultSpecies
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.client == nil {
		c.client = cleanhttp.DefaultPooledClient()
		c.client.Timeout = c.timeout
	}

	limit := cfg.RateLimit
	if limit == 0 {
		limit = DefaultRateLimit
	}
	if limit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(limit), 1)
	}
	return c
}

// EnsemblChrom converts a UCSC chromosome name to Ensembl's (chr1 -> 1,
// chrM -> MT).
func EnsemblChrom(chrom string) string {
	name := strings.TrimPrefix(chrom, "chr")
	if name == "M" {
		return "MT"
	}
	return name
}

// UCSCChrom converts an Ensembl sequence region name back to UCSC style.
func UCSCChrom(name string) string {
	if strings.HasPrefix(name, "chr") {
		return name
	}
	if name == "MT" {
		name = "M"
	}
	return "chr" + name
}

// MapURL builds the lookup URL for an interval.
func (c *Client) MapURL(iv position.Interval, from, to assembly.ID) string {
	region := fmt.Sprintf("%s:%d..%d", EnsemblChrom(iv.Chrom), iv.Start, iv.End)
	return fmt.Sprintf("%s/map/%s/%s/%s/%s",
		c.baseURL,
		url.PathEscape(c.species),
		url.PathEscape(from.GRC()),
		url.PathEscape(region),
		url.PathEscape(to.GRC()),
	)
}

func (c *Client) Lift(ctx context.Context, iv position.Interval, from, to assembly.ID) Result {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if isTimeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return Failed(ReasonTimeout, "waiting for rate limiter: %v", err)
			}
			return Failed(ReasonNetwork, "waiting for rate limiter: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.MapURL(iv, from, to)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Failed(ReasonRequest, "failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	began := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		logging.LiftoverRequest(ctx, u, 0, time.Since(began), "error", err.Error())
		if isTimeout(err) {
			return Failed(ReasonTimeout, "request timed out: %v", err)
		}
		return Failed(ReasonNetwork, "request failed: %v", err)
	}
	defer resp.Body.Close()
	logging.LiftoverRequest(ctx, u, resp.StatusCode, time.Since(began))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return Failed(ReasonHTTPStatus, "HTTP %d", resp.StatusCode)
	}

	var body mapResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if isTimeout(err) {
			return Failed(ReasonTimeout, "reading response: %v", err)
		}
		return Failed(ReasonMalformed, "decoding response: %v", err)
	}
	return c.pick(body)
}

func (c *Client) pick(body mapResponse) Result {
	switch {
	case len(body.Mappings) == 0:
		return Failed(ReasonNoMapping, "no mapping returned")
	case len(body.Mappings) > 1 && c.strict:
		return Failed(ReasonMultipleMappings, "%d mappings returned", len(body.Mappings))
	}

	m := body.Mappings[0].Mapped
	if m.SeqRegionName == "" {
		return Failed(ReasonMalformed, "mapping has no seq_region_name")
	}
	return Mapped(position.Interval{
		Chrom: UCSCChrom(m.SeqRegionName),
		Start: m.Start,
		End:   m.End,
	})
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
