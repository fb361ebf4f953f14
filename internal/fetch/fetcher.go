// Package fetch runs the artwork pipeline: pick an active source at
// random, issue its request, normalize the payload, validate that the
// record has an image, and retry with a fresh source draw otherwise.
//
// Retries are capped with a short exponential backoff so a systemically
// broken source cannot spin a tight loop. A run is a single sequential
// chain; nothing inside one run executes concurrently.
package fetch

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/gallerytab/server/internal/artwork"
	"github.com/gallerytab/server/internal/metrics"
	"github.com/gallerytab/server/internal/settings"
	"github.com/gallerytab/server/internal/sources"
	"github.com/gallerytab/server/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// ErrNoArtwork is returned when the retry cap is exhausted without an
// acceptable record.
var ErrNoArtwork = errors.New("fetch: no artwork after maximum attempts")

// Attempt outcomes, used for logging and metric labels.
const (
	outcomeAccepted  = "accepted"
	outcomeNoImage   = "no_image"
	outcomeTransport = "transport"
	outcomeStatus    = "status"
	outcomeMalformed = "malformed"
)

const maxResponseBytes = 4 << 20

// Catalog is the registry view the fetcher needs.
type Catalog interface {
	All() []sources.Source
	Active(enabled map[string]bool) []sources.Source
}

// FlagReader supplies the persisted enable flags, keyed by short code.
type FlagReader interface {
	Flags(ctx context.Context) settings.Flags
}

type Config struct {
	MaxAttempts       int
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	BaseBackoff       time.Duration
	MaxBackoff        time.Duration
}

func (c *Config) applyDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 25
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 15 * time.Second
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 4
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 50 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 2 * time.Second
	}
}

type Fetcher struct {
	catalog Catalog
	flags   FlagReader
	doer    sources.Doer
	cfg     Config
	logger  zerolog.Logger
	tracer  trace.Tracer

	mu  sync.Mutex
	rng *rand.Rand
}

func New(catalog Catalog, flags FlagReader, client *http.Client, cfg Config, logger zerolog.Logger) *Fetcher {
	cfg.applyDefaults()
	if client == nil {
		client = &http.Client{Timeout: cfg.RequestTimeout}
	}
	return &Fetcher{
		catalog: catalog,
		flags:   flags,
		doer: &limitedDoer{
			client:  client,
			limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		},
		cfg:    cfg,
		logger: logger,
		tracer: telemetry.GetTracer("github.com/gallerytab/server/internal/fetch"),
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Fetch runs the pipeline once and returns an artwork with a usable image,
// or ErrNoArtwork after the retry cap. Transport failures, non-2xx
// statuses, malformed payloads, and image-less results all count as retry
// reasons with a fresh uniform source draw; none of them surface to the
// caller individually.
func (f *Fetcher) Fetch(ctx context.Context) (artwork.Record, error) {
	ctx, span := f.tracer.Start(ctx, "fetch.pipeline")
	defer span.End()

	active := f.catalog.Active(f.flags.Flags(ctx))
	if len(active) == 0 {
		// The settings boundary keeps the active set non-empty; if storage
		// handed back something unusable anyway, draw from every source.
		active = f.catalog.All()
	}

	backoff := f.cfg.BaseBackoff
	for attempt := 1; attempt <= f.cfg.MaxAttempts; attempt++ {
		rec, outcome, err := f.attempt(ctx, active)
		if outcome == outcomeAccepted {
			return rec, nil
		}
		if ctx.Err() != nil {
			return artwork.Record{}, ctx.Err()
		}

		f.logger.Debug().
			Str("outcome", outcome).
			Err(err).
			Int("attempt", attempt).
			Msg("artwork attempt failed, reselecting source")

		if attempt < f.cfg.MaxAttempts {
			if err := sleep(ctx, backoff); err != nil {
				return artwork.Record{}, err
			}
			backoff = min(backoff*2, f.cfg.MaxBackoff)
		}
	}

	metrics.PipelineExhaustedTotal.Inc()
	return artwork.Record{}, ErrNoArtwork
}

func (f *Fetcher) attempt(ctx context.Context, active []sources.Source) (artwork.Record, string, error) {
	src := f.pick(active)

	ctx, span := f.tracer.Start(ctx, "fetch.attempt",
		trace.WithAttributes(attribute.String("source", src.ShortCode())))
	defer span.End()

	start := time.Now()
	rec, outcome, err := f.attemptSource(ctx, src)
	span.SetAttributes(attribute.String("outcome", outcome))

	metrics.FetchAttemptsTotal.WithLabelValues(src.ShortCode(), outcome).Inc()
	metrics.FetchAttemptDuration.WithLabelValues(src.ShortCode()).Observe(time.Since(start).Seconds())
	if outcome == outcomeAccepted {
		metrics.ArtworksAcceptedTotal.WithLabelValues(src.ShortCode()).Inc()
	}
	return rec, outcome, err
}

func (f *Fetcher) attemptSource(ctx context.Context, src sources.Source) (artwork.Record, string, error) {
	req := f.randomRequest(src)

	reqCtx, cancel := context.WithTimeout(ctx, f.cfg.RequestTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodGet, req.URL, nil)
	if err != nil {
		return artwork.Record{}, outcomeTransport, err
	}

	resp, err := f.doer.Do(httpReq)
	if err != nil {
		return artwork.Record{}, outcomeTransport, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return artwork.Record{}, outcomeStatus, errors.New(resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return artwork.Record{}, outcomeTransport, err
	}

	rec, err := src.Normalize(reqCtx, body, f.doer)
	if err != nil {
		return artwork.Record{}, outcomeMalformed, err
	}
	if !rec.HasImage() {
		return artwork.Record{}, outcomeNoImage, nil
	}
	return rec, outcomeAccepted, nil
}

// pick and randomRequest draw from the shared generator under the lock;
// math/rand/v2's Rand is not safe for concurrent use and pipeline runs may
// execute in parallel for independent requests.
func (f *Fetcher) pick(active []sources.Source) sources.Source {
	f.mu.Lock()
	defer f.mu.Unlock()
	return sources.PickRandom(f.rng, active)
}

func (f *Fetcher) randomRequest(src sources.Source) sources.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return src.RandomRequest(f.rng)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// limitedDoer applies the outbound politeness limit to every museum API
// call, including dependent second fetches issued during normalization.
type limitedDoer struct {
	client  *http.Client
	limiter *rate.Limiter
}

func (d *limitedDoer) Do(req *http.Request) (*http.Response, error) {
	if err := d.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return d.client.Do(req)
}
