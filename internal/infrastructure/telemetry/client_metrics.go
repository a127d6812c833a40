package telemetry

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Outcomes of an outbound call
const (
	OutcomeSuccess        = "success"
	OutcomeClientError    = "client_error"
	OutcomeServerError    = "server_error"
	OutcomeTransportError = "transport_error"
)

// ClientMetrics counts calls to the upstream APIs by outcome. A nil
// *ClientMetrics records nothing.
type ClientMetrics struct {
	requestTotal    *Counter
	requestDuration *Histogram
}

// NewClientMetrics creates the outbound call instruments on meter.
func NewClientMetrics(meter metric.Meter) (*ClientMetrics, error) {
	requestTotal, err := NewCounter(meter,
		"external_api_request_total",
		"Calls to upstream APIs by service, operation and outcome",
		"{request}")
	if err != nil {
		return nil, err
	}
	requestDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "external_api_request_duration_seconds",
		Description: "Upstream API latency distribution in seconds",
		Unit:        "s",
		Boundaries:  HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return &ClientMetrics{requestTotal: requestTotal, requestDuration: requestDuration}, nil
}

// Record counts one call. status is 0 when no response arrived.
func (m *ClientMetrics) Record(ctx context.Context, service, operation string, status int, d time.Duration) {
	if m == nil {
		return
	}
	outcome := CallOutcome(status)
	m.requestTotal.Inc(ctx,
		AttrPeerService.String(service),
		AttrOperation.String(operation),
		AttrOutcome.String(outcome),
		AttrHTTPStatusCode.Int(status))
	m.requestDuration.RecordDuration(ctx, d,
		AttrPeerService.String(service),
		AttrOperation.String(operation))
}

// CallOutcome classifies an upstream status code
func CallOutcome(status int) string {
	switch {
	case status == 0:
		return OutcomeTransportError
	case status >= http.StatusInternalServerError:
		return OutcomeServerError
	case status >= http.StatusBadRequest:
		return OutcomeClientError
	default:
		return OutcomeSuccess
	}
}
