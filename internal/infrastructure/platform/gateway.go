package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/infrastructure/telemetry"
)

// DefaultMaxResponseSize caps the body read from an adapter endpoint (10MB)
const DefaultMaxResponseSize = 10 * 1024 * 1024

// DefaultCallTimeout bounds a single adapter call
const DefaultCallTimeout = 30 * time.Second

// GatewayConfig configures adapter invocation
type GatewayConfig struct {
	CallTimeout     time.Duration
	MaxResponseSize int64
}

func (c *GatewayConfig) applyDefaults() {
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	if c.MaxResponseSize <= 0 {
		c.MaxResponseSize = DefaultMaxResponseSize
	}
}

// Gateway invokes platform functions either over HTTP or through the adapter registry
type Gateway struct {
	cfg        GatewayConfig
	registry   *Registry
	httpClient *http.Client
	schemas    map[fulfillment.Function]*jsonschema.Schema
	metrics    *telemetry.AdapterMetrics
	logger     *zap.Logger
}

var _ fulfillment.Gateway = (*Gateway)(nil)

// NewGateway creates a Gateway. A nil meter falls back to the global meter provider.
func NewGateway(
	cfg GatewayConfig,
	registry *Registry,
	httpClient *http.Client,
	meter metric.Meter,
	logger *zap.Logger,
) (*Gateway, error) {
	cfg.applyDefaults()
	if registry == nil {
		registry = NewRegistry()
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if meter == nil {
		meter = otel.Meter(telemetry.TracerName)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	metrics, err := telemetry.NewAdapterMetrics(meter)
	if err != nil {
		return nil, err
	}

	return &Gateway{
		cfg:        cfg,
		registry:   registry,
		httpClient: httpClient,
		schemas:    schemas,
		metrics:    metrics,
		logger:     logger,
	}, nil
}

// Invoke calls fn on the platform referenced by ref and decodes the validated result into out.
func (g *Gateway) Invoke(ctx context.Context, ref string, fn fulfillment.Function, args any, out any) error {
	if ref == "" {
		return fmt.Errorf("%w: no %s function", fulfillment.ErrAdapterNotConfigured, fn)
	}

	transport := "adapter"
	if fulfillment.IsHTTPRef(ref) {
		transport = "http"
	}

	ctx, span := telemetry.StartClientSpan(ctx, "platform.invoke",
		attribute.String("platform.function", string(fn)),
		attribute.String("platform.transport", transport),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, g.cfg.CallTimeout)
	defer cancel()

	start := time.Now()
	var body []byte
	var err error
	if transport == "http" {
		body, err = g.post(ctx, ref, fn, args)
	} else {
		body, err = g.callAdapter(ctx, ref, fn, args)
	}
	if err == nil {
		err = g.decode(fn, body, out)
	}
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fulfillment.NewAdapterError(fn, "%s timed out after %s", fn, g.cfg.CallTimeout)
	}

	telemetry.Finish(span, err)
	g.metrics.Observe(ctx, string(fn), transport, time.Since(start), err)
	if err != nil {
		g.logger.Debug("Platform adapter call failed",
			zap.String("function", string(fn)),
			zap.String("transport", transport),
			zap.Error(err),
		)
	}
	return err
}

// post sends args as JSON to an adapter endpoint
func (g *Gateway) post(ctx context.Context, endpoint string, fn fulfillment.Function, args any) ([]byte, error) {
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s arguments: %v", shared.ErrInvalidInput, fn, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fulfillment.NewAdapterError(fn, "invalid %s endpoint: %v", fn, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Platform-Function", string(fn))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fulfillment.NewAdapterError(fn, "%s request failed: %v", fn, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, g.cfg.MaxResponseSize))
	if err != nil {
		return nil, fulfillment.NewAdapterError(fn, "read %s response: %v", fn, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if msg := reportedError(body); msg != "" {
			return nil, fulfillment.NewAdapterError(fn, "%s", msg)
		}
		return nil, fulfillment.NewAdapterError(fn, "%s", resp.Status)
	}
	return body, nil
}

// callAdapter runs a registered adapter and encodes its result
func (g *Gateway) callAdapter(ctx context.Context, key string, fn fulfillment.Function, args any) ([]byte, error) {
	adapter, ok := g.registry.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: adapter %q is not registered", fulfillment.ErrAdapterNotConfigured, key)
	}

	result, err := invokeAdapter(ctx, adapter, fn, args)
	if err != nil {
		var adapterErr *fulfillment.AdapterError
		if errors.As(err, &adapterErr) || errors.Is(err, shared.ErrInvalidInput) {
			return nil, err
		}
		return nil, fulfillment.NewAdapterError(fn, "%s", err.Error())
	}

	body, err := json.Marshal(result)
	if err != nil {
		return nil, fulfillment.NewAdapterError(fn, "encode %s result: %v", fn, err)
	}
	return body, nil
}

// decode checks the payload for a reported error, validates it and fills out
func (g *Gateway) decode(fn fulfillment.Function, body []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fulfillment.NewAdapterError(fn, "invalid %s response: %v", fn, err)
	}

	if fields, ok := doc.(map[string]any); ok {
		if msg, _ := fields["error"].(string); msg != "" {
			return fulfillment.NewAdapterError(fn, "%s", msg)
		}
		if success, present := fields["success"].(bool); present && !success {
			return fulfillment.NewAdapterError(fn, "%s was not accepted", fn)
		}
	}

	if schema, ok := g.schemas[fn]; ok {
		if err := schema.Validate(doc); err != nil {
			return fulfillment.NewAdapterError(fn, "invalid %s response: %v", fn, err)
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fulfillment.NewAdapterError(fn, "decode %s response: %v", fn, err)
	}
	return nil
}

// reportedError extracts the error field of a JSON body, if any
func reportedError(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error
}
