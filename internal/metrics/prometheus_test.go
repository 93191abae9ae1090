package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestRecordOperation(t *testing.T) {
	c := NewCollector(zap.NewNop())

	c.RecordOperation("deposit", "OK", 10*time.Millisecond)
	c.RecordOperation("deposit", "OK", 5*time.Millisecond)
	c.RecordOperation("withdraw", "INSUFFICIENT_FUNDS", time.Millisecond)

	if got := testutil.ToFloat64(c.operationsTotal.WithLabelValues("deposit", "OK")); got != 2 {
		t.Errorf("Expected 2 successful deposits, got %v", got)
	}
	if got := testutil.ToFloat64(c.operationsTotal.WithLabelValues("withdraw", "INSUFFICIENT_FUNDS")); got != 1 {
		t.Errorf("Expected 1 rejected withdrawal, got %v", got)
	}
}

func TestUpdateAccountBalance(t *testing.T) {
	c := NewCollector(zap.NewNop())

	c.UpdateAccountBalance("A", decimal.RequireFromString("12.5"))
	if got := testutil.ToFloat64(c.accountBalance.WithLabelValues("A")); got != 12.5 {
		t.Errorf("Expected 12.5, got %v", got)
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.RecordOperation("deposit", "OK", time.Millisecond)
	c.RecordEntry("DEPOSIT")
	c.UpdateAccountBalance("A", decimal.Zero)
}

func TestHandler(t *testing.T) {
	c := NewCollector(zap.NewNop())
	c.RecordEntry("TRANSFER")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `ledger_entries_appended_total{type="TRANSFER"} 1`) {
		t.Errorf("Expected entry counter in output, got:\n%s", rec.Body.String())
	}
}
