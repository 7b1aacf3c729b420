// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package predictor

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
)

func floatPtr(v float64) *float64 { return &v }

func TestEstimator_Predict(t *testing.T) {
	e := NewEstimator(NewTable())

	t.Run("default environment returns base duration", func(t *testing.T) {
		pred := e.Predict(Request{Item: "milk", Storage: "fridge"})

		if pred.BaseDays != 7 {
			t.Errorf("BaseDays = %f, want 7", pred.BaseDays)
		}
		if math.Abs(pred.RawDays-7) > 1e-9 {
			t.Errorf("RawDays = %f, want 7 at default environment", pred.RawDays)
		}
		if pred.Source != "local" {
			t.Errorf("Source = %q, want local", pred.Source)
		}
	})

	t.Run("warm storage shortens estimate but respects floor", func(t *testing.T) {
		pred := e.Predict(Request{
			Item:         "milk",
			Storage:      "fridge",
			TemperatureC: floatPtr(30), // badly overheated fridge
		})

		if pred.RawDays >= 7 {
			t.Errorf("RawDays = %f, want < 7 for warm storage", pred.RawDays)
		}
		if pred.FinalDays < biologicalFloor*pred.BaseDays {
			t.Errorf("FinalDays = %f below biological floor %f", pred.FinalDays, biologicalFloor*pred.BaseDays)
		}
	})

	t.Run("cool storage extends estimate within bounds", func(t *testing.T) {
		pred := e.Predict(Request{
			Item:         "milk",
			Storage:      "fridge",
			TemperatureC: floatPtr(1),
		})

		if pred.RawDays <= 7 {
			t.Errorf("RawDays = %f, want > 7 for cool storage", pred.RawDays)
		}
		if pred.RawDays > 7*1.15*1.10+1e-9 {
			t.Errorf("RawDays = %f exceeds factor bounds", pred.RawDays)
		}
	})

	t.Run("unknown storage falls back to pantry", func(t *testing.T) {
		pred := e.Predict(Request{Item: "milk", Storage: "windowsill"})
		if pred.BaseDays != 1 {
			t.Errorf("BaseDays = %f, want pantry value 1", pred.BaseDays)
		}
	})
}

func TestService_RemoteFallback(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			// First call succeeds with an implausibly low estimate.
			_ = json.NewEncoder(w).Encode(Prediction{RawDays: 0.5})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewService(NewEstimator(NewTable()), NewRemoteClient(RemoteConfig{URL: srv.URL}))

	req := Request{Item: "milk", Storage: "fridge"}

	// Remote success: base days and the floor are re-derived locally.
	pred := svc.Predict(context.Background(), req)
	if pred.Source != "remote" {
		t.Fatalf("Source = %q, want remote", pred.Source)
	}
	if pred.BaseDays != 7 {
		t.Errorf("BaseDays = %f, want 7 from the local table", pred.BaseDays)
	}
	if math.Abs(pred.FinalDays-biologicalFloor*7) > 1e-9 {
		t.Errorf("FinalDays = %f, want floored to %f", pred.FinalDays, biologicalFloor*7)
	}

	// Remote failure: falls back to the local estimator.
	pred = svc.Predict(context.Background(), req)
	if pred.Source != "local" {
		t.Errorf("Source after remote failure = %q, want local", pred.Source)
	}
}

func TestService_NoRemoteConfigured(t *testing.T) {
	svc := NewService(NewEstimator(NewTable()), nil)

	pred := svc.Predict(context.Background(), Request{Item: "cheese", Storage: "fridge"})
	if pred.Source != "local" {
		t.Errorf("Source = %q, want local", pred.Source)
	}
	if pred.BaseDays != 21 {
		t.Errorf("BaseDays = %f, want 21", pred.BaseDays)
	}
}
