// Package poster looks up poster images for movie titles from an external
// metadata provider (OMDb-compatible JSON API).
package poster

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

var (
	// ErrUnavailable: поставщик недоступен, ответил ошибкой или не уложился в таймаут.
	ErrUnavailable = errors.New("poster provider unavailable")
	// ErrNoPoster: поставщик ответил, но постера для названия нет.
	ErrNoPoster = errors.New("no poster for title")
)

// Lookuper is the poster collaborator contract.
type Lookuper interface {
	Lookup(ctx context.Context, title string) (string, error)
}

type ClientConfig struct {
	BaseURL          string
	APIKey           string
	Timeout          time.Duration
	RatePerSecond    float64
	Burst            int
	FailureThreshold uint32        // подряд идущих ошибок до размыкания
	OpenTimeout      time.Duration // сколько держать цепь разомкнутой
}

// Client queries the provider. Safe for concurrent use.
type Client struct {
	cfg     ClientConfig
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[string]
	limiter *rate.Limiter
	logger  zerolog.Logger
}

type providerResponse struct {
	Response string `json:"Response"`
	Poster   string `json:"Poster"`
	Error    string `json:"Error"`
}

func NewClient(cfg ClientConfig, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := max(cfg.Burst, 1)

	log := logger.With().Str("component", "poster").Logger()
	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		logger:  log,
	}
	c.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:    "poster",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// «нет постера» это нормальный ответ, цепь не размыкает
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNoPoster)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit state changed")
		},
	})
	return c
}

// Lookup returns the poster URL for title or an error wrapping ErrUnavailable / ErrNoPoster.
func (c *Client) Lookup(ctx context.Context, title string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	u, err := c.breaker.Execute(func() (string, error) { return c.fetch(ctx, title) })
	if err != nil {
		if errors.Is(err, ErrNoPoster) || errors.Is(err, ErrUnavailable) {
			return "", err
		}
		// gobreaker.ErrOpenState / ErrTooManyRequests
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return u, nil
}

func (c *Client) fetch(ctx context.Context, title string) (string, error) {
	q := url.Values{}
	q.Set("t", title)
	if c.cfg.APIKey != "" {
		q.Set("apikey", c.cfg.APIKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var pr providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if !strings.HasPrefix(pr.Poster, "http") {
		return "", ErrNoPoster
	}
	return pr.Poster, nil
}
