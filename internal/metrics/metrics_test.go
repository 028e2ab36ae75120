// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/library", "200"))
	RecordAPIRequest("GET", "/api/v1/library", 200, 25*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/library", "200"))
	if after != before+1 {
		t.Errorf("api_requests_total = %v, want %v", after, before+1)
	}
}

func TestRecordCatalogRequest(t *testing.T) {
	okBefore := testutil.ToFloat64(CatalogRequests.WithLabelValues("googlebooks", "ok"))
	errBefore := testutil.ToFloat64(CatalogRequests.WithLabelValues("googlebooks", "error"))

	RecordCatalogRequest("googlebooks", nil, 10*time.Millisecond)
	RecordCatalogRequest("googlebooks", errors.New("boom"), 10*time.Millisecond)

	if got := testutil.ToFloat64(CatalogRequests.WithLabelValues("googlebooks", "ok")); got != okBefore+1 {
		t.Errorf("ok counter = %v, want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(CatalogRequests.WithLabelValues("googlebooks", "error")); got != errBefore+1 {
		t.Errorf("error counter = %v, want %v", got, errBefore+1)
	}
}
