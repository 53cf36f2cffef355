package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Mainframe-Renewal-Project/sear/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	before := testutil.ToFloat64(decodes.WithLabelValues("user", ResultOK))
	RecordDecode("user", ResultOK, 512, 40*time.Microsecond)
	RecordDecode("user", ResultMalformed, 0, time.Millisecond)
	RecordExperimental("user", 2)
	RecordExperimental("user", 0)

	if got := testutil.ToFloat64(decodes.WithLabelValues("user", ResultOK)); got != before+1 {
		t.Fatalf("ok decodes = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(experimentalFields.WithLabelValues("user")); got < 2 {
		t.Fatalf("experimental fields = %v", got)
	}
}

func TestInitLoggerWritesAppField(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	logger := InitLoggerTo(&buf, "searctl")
	logger.Info().Msg("hello")
	if !strings.Contains(buf.String(), "searctl") {
		t.Fatalf("expected app field in %q", buf.String())
	}
}
