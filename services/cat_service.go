package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	m "github.com/ChrisTheAbysswalker/nekopage/models"
)

//go:generate mockgen -destination=mocks/mock_fetcher.go -package=mocks github.com/ChrisTheAbysswalker/nekopage/services CatImageFetcher

type CatImageFetcher interface {
	FetchCatImage(ctx context.Context) (m.CatImage, error)
}

var _ CatImageFetcher = (*CatService)(nil)

var (
	ErrUpstreamStatus = errors.New("cat api returned an error status")
	ErrNoImages       = errors.New("cat api returned no images")
	ErrInvalidImage   = errors.New("cat api returned an invalid image")
)

const (
	DefaultBaseURL = "https://api.thecatapi.com"
	DefaultTimeout = 5 * time.Second

	searchPath = "/v1/images/search"
)

// Options configures the upstream cat API client. Zero values take the
// defaults; an empty UserAgent leaves net/http's own.
type Options struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration
}

// CatService talks to thecatapi.com. It keeps no state between calls apart
// from a fetch counter reported by the health endpoint.
type CatService struct {
	baseURL   *url.URL
	http      *http.Client
	apiKey    string
	userAgent string
	logger    *zap.Logger

	fetchCount atomic.Int64
}

func NewCatService(opts Options, logger *zap.Logger) (*CatService, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CatService{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		apiKey:    strings.TrimSpace(opts.APIKey),
		userAgent: strings.TrimSpace(opts.UserAgent),
		logger:    logger.Named("catapi"),
	}, nil
}

// FetchCatImage issues one GET against images/search and returns the first
// element. There is no retry and no cache; every call reaches the API.
func (s *CatService) FetchCatImage(ctx context.Context) (m.CatImage, error) {
	if s == nil {
		return m.CatImage{}, fmt.Errorf("cat service is nil")
	}

	s.fetchCount.Add(1)
	start := time.Now()

	image, err := s.fetch(ctx)
	elapsed := time.Since(start)
	observeFetch(outcomeOf(err), elapsed)

	if err != nil {
		s.logger.Warn("cat image fetch failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return m.CatImage{}, err
	}

	s.logger.Debug("cat image fetched",
		zap.String("id", image.ID),
		zap.String("url", image.URL),
		zap.Duration("elapsed", elapsed),
	)
	return image, nil
}

func (s *CatService) FetchCount() int64 {
	return s.fetchCount.Load()
}

func (s *CatService) fetch(ctx context.Context) (m.CatImage, error) {
	reqURL := s.baseURL.ResolveReference(&url.URL{Path: searchPath})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return m.CatImage{}, fmt.Errorf("create request: %w", err)
	}
	// * plain GET by default: no query, no key, no extra headers
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	if s.apiKey != "" {
		req.Header.Set("x-api-key", s.apiKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return m.CatImage{}, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return m.CatImage{}, fmt.Errorf("%w: %s answered %d", ErrUpstreamStatus, searchPath, resp.StatusCode)
	}

	// * only element 0 is decoded; the rest of the array may hold anything
	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return m.CatImage{}, fmt.Errorf("decode response: %w", err)
	}
	if len(raw) == 0 {
		return m.CatImage{}, ErrNoImages
	}

	var first m.CatImage
	if err := json.Unmarshal(raw[0], &first); err != nil {
		return m.CatImage{}, fmt.Errorf("%w: decode first element: %w", ErrInvalidImage, err)
	}
	if err := first.Validate(); err != nil {
		return m.CatImage{}, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	return first, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse cat api base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("cat api base url %q has no host", raw)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
