// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package predictor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/larder-app/larder/internal/logging"
	"github.com/larder-app/larder/internal/metrics"
)

// RemoteConfig configures the remote model service client.
type RemoteConfig struct {
	// URL is the base URL of the model service. Empty disables the remote
	// path entirely; the service runs purely on the local estimator.
	URL string

	// Timeout bounds a single prediction call. Default: 5s.
	Timeout time.Duration

	// RequestsPerSecond rate-limits calls to the remote. Default: 20.
	RequestsPerSecond float64

	// Burst is the limiter burst size. Default: 10.
	Burst int
}

// ErrRemoteDisabled is returned by the remote client when no URL is
// configured.
var ErrRemoteDisabled = errors.New("predictor: remote model service not configured")

// RemoteClient calls the external model service with circuit breaker
// protection and client-side rate limiting. The breaker opens after a 60%
// failure rate over at least 10 requests, waits 2 minutes, then probes
// with up to 3 half-open requests - the same policy the rest of the
// system uses for flaky upstreams.
type RemoteClient struct {
	cfg     RemoteConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[Prediction]
	limiter *rate.Limiter
}

// NewRemoteClient creates a remote model client. Zero config fields get
// defaults.
func NewRemoteClient(cfg RemoteConfig) *RemoteClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 20
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}

	const breakerName = "model-service"
	metrics.BreakerState.WithLabelValues(breakerName).Set(0)

	breaker := gobreaker.NewCircuitBreaker[Prediction](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Model service circuit breaker state change")
			metrics.BreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})

	return &RemoteClient{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// Predict calls the remote model service. It blocks on the rate limiter
// (respecting ctx), then runs the HTTP call through the breaker.
func (c *RemoteClient) Predict(ctx context.Context, req Request) (Prediction, error) {
	if c.cfg.URL == "" {
		return Prediction{}, ErrRemoteDisabled
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Prediction{}, fmt.Errorf("predictor: rate limiter: %w", err)
	}

	pred, err := c.breaker.Execute(func() (Prediction, error) {
		return c.call(ctx, req)
	})
	if err != nil {
		metrics.PredictorRequests.WithLabelValues("remote", "error").Inc()
		return Prediction{}, err
	}

	metrics.PredictorRequests.WithLabelValues("remote", "success").Inc()
	pred.Source = "remote"
	return pred, nil
}

func (c *RemoteClient) call(ctx context.Context, req Request) (Prediction, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("predictor: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+"/predict", bytes.NewReader(body))
	if err != nil {
		return Prediction{}, fmt.Errorf("predictor: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Prediction{}, fmt.Errorf("predictor: model service call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Prediction{}, fmt.Errorf("predictor: model service returned %d", resp.StatusCode)
	}

	var pred Prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return Prediction{}, fmt.Errorf("predictor: decode response: %w", err)
	}
	return pred, nil
}

// Service is the baseline predictor used by the HTTP layer: remote model
// first when configured, local heuristic as the fallback. Either way the
// biological floor and the base-days lookup come from the local table, so
// a misbehaving remote cannot emit implausible estimates.
type Service struct {
	estimator *Estimator
	remote    *RemoteClient
}

// NewService builds the combined predictor. remote may be nil.
func NewService(estimator *Estimator, remote *RemoteClient) *Service {
	return &Service{estimator: estimator, remote: remote}
}

// Table exposes the item vocabulary.
func (s *Service) Table() *Table {
	return s.estimator.Table()
}

// Predict returns the baseline prediction for req.
func (s *Service) Predict(ctx context.Context, req Request) Prediction {
	if s.remote != nil {
		pred, err := s.remote.Predict(ctx, req)
		if err == nil {
			return s.sanitize(req, pred)
		}
		if !errors.Is(err, ErrRemoteDisabled) {
			logging.Ctx(ctx).Warn().Err(err).Msg("Remote model unavailable, using local estimator")
		}
	}

	metrics.PredictorRequests.WithLabelValues("local", "success").Inc()
	return s.estimator.Predict(req)
}

// sanitize re-derives base days and the floor locally so remote output
// stays inside the same plausibility bounds as local estimates.
func (s *Service) sanitize(req Request, pred Prediction) Prediction {
	base := s.estimator.Table().BaseExpiryDays(req.Item, req.Storage)
	pred.BaseDays = base

	if pred.RawDays <= 0 {
		pred.RawDays = base
	}
	pred.FinalDays = pred.RawDays
	if floor := biologicalFloor * base; pred.FinalDays < floor {
		pred.FinalDays = floor
	}
	return pred
}
