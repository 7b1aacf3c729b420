// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/foods", "200"))

	RecordHTTPRequest("GET", "/api/v1/foods", "200", 25*time.Millisecond)
	RecordHTTPRequest("GET", "/api/v1/foods", "200", 40*time.Millisecond)

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/foods", "200"))
	if after-before != 2 {
		t.Errorf("http_requests_total delta = %f, want 2", after-before)
	}
}

func TestRecordDBQuery(t *testing.T) {
	errBefore := testutil.ToFloat64(DBQueryErrors.WithLabelValues("insert", "foods"))

	RecordDBQuery("insert", "foods", 5*time.Millisecond, nil)
	RecordDBQuery("insert", "foods", 5*time.Millisecond, errors.New("constraint violation"))

	errAfter := testutil.ToFloat64(DBQueryErrors.WithLabelValues("insert", "foods"))
	if errAfter-errBefore != 1 {
		t.Errorf("duckdb_query_errors_total delta = %f, want 1 (only the failed query counts)", errAfter-errBefore)
	}
}

func TestRecordFeedback(t *testing.T) {
	before := testutil.ToFloat64(FeedbackTotal.WithLabelValues("early"))

	RecordFeedback("early", -1.33, -0.57)

	after := testutil.ToFloat64(FeedbackTotal.WithLabelValues("early"))
	if after-before != 1 {
		t.Errorf("feedback_total delta = %f, want 1", after-before)
	}
}

func TestRecordSweep(t *testing.T) {
	errBefore := testutil.ToFloat64(SweepErrors)
	itemsBefore := testutil.ToFloat64(SweepItemsProcessed)

	RecordSweep(2*time.Second, 40, nil)
	if got := testutil.ToFloat64(SweepLastSuccess); got == 0 {
		t.Error("sweep_last_success_timestamp not set after successful run")
	}
	if got := testutil.ToFloat64(SweepItemsProcessed) - itemsBefore; got != 40 {
		t.Errorf("sweep_items_processed_total delta = %f, want 40", got)
	}

	RecordSweep(time.Second, 0, errors.New("database unavailable"))
	if got := testutil.ToFloat64(SweepErrors) - errBefore; got != 1 {
		t.Errorf("sweep_errors_total delta = %f, want 1", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	base := testutil.ToFloat64(HTTPActiveRequests)

	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(HTTPActiveRequests) - base; got != 2 {
		t.Errorf("http_active_requests delta = %f, want 2", got)
	}

	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(HTTPActiveRequests) - base; got != 0 {
		t.Errorf("http_active_requests delta after release = %f, want 0", got)
	}
}
