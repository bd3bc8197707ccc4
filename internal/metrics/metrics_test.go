package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrumentHandlerRecordsStatus(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/status", InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})).ServeHTTP)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusTeapot)
	}

	got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/status", "418"))
	if got != 1 {
		t.Errorf("HTTPRequestsTotal[GET,/status,418] = %v, want 1", got)
	}
}

func TestRecorderIncrementsDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(callLogsGenerated)
	Recorder{}.CallLogGenerated()
	after := testutil.ToFloat64(callLogsGenerated)
	if after != before+1 {
		t.Errorf("callLogsGenerated = %v, want %v", after, before+1)
	}
}
