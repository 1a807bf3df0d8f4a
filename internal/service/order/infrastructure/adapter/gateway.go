package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"printexpress/internal/service/order/port"
)

// HTTPPaymentGateway talks to the hosted payment provider. Failures are
// wrapped in port.ErrExternalService so handlers can map them uniformly.
type HTTPPaymentGateway struct {
	baseURL string
	client  *http.Client
	tracer  trace.Tracer
}

// NewHTTPPaymentGateway creates the adapter.
func NewHTTPPaymentGateway(baseURL string, tracer trace.Tracer) *HTTPPaymentGateway {
	return &HTTPPaymentGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		tracer:  tracer,
	}
}

type paymentLinkRequest struct {
	Amount    float64 `json:"amount"`
	Reference string  `json:"reference"`
}

type paymentLinkResponse struct {
	URL string `json:"url"`
}

// CreatePaymentLink asks the provider for a hosted checkout URL. The
// reference is echoed back by the confirmation webhook.
func (g *HTTPPaymentGateway) CreatePaymentLink(ctx context.Context, amount float64, ref string) (string, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.CreatePaymentLink")
	defer span.End()

	body, err := json.Marshal(paymentLinkRequest{Amount: amount, Reference: ref})
	if err != nil {
		return "", errors.Wrap(err, "marshal payment link request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/payment_links", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build payment link request")
	}
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := g.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return "", errors.Wrapf(port.ErrExternalService, "payment gateway unreachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", errors.Wrapf(port.ErrExternalService, "payment gateway returned %d: %s", resp.StatusCode, payload)
	}

	var out paymentLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrapf(port.ErrExternalService, "payment gateway sent a malformed response: %v", err)
	}
	if out.URL == "" {
		return "", errors.Wrap(port.ErrExternalService, "payment gateway sent no link")
	}
	return out.URL, nil
}
