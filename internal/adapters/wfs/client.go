package wfs

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/geosearch/internal/core/domain"
	"github.com/samirrijal/geosearch/internal/pkg/metrics"
	"github.com/samirrijal/geosearch/internal/pkg/telemetry"
)

// Feature type names served by the WFS endpoint.
const (
	TypeRaster = "omar:raster_entry"
	TypeVideo  = "omar:video_data_set"
)

const (
	wfsPath        = "/omar-wfs/wfs"
	wfsVersion     = "1.1.0"
	rasterSortBy   = "acquisition_date :D"
	defaultTimeout = 3 * time.Second
	maxBodySize    = 16 << 20
)

// Client implements ports.FeatureRepository against an OMAR WFS endpoint.
type Client struct {
	http      *fasthttp.Client
	serverURL string
	timeout   time.Duration
}

// New creates a WFS client for serverURL. A non-positive timeout falls back to 3s.
func New(serverURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http: &fasthttp.Client{
			Name:                "geosearch",
			MaxResponseBodySize: maxBodySize,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
		},
		serverURL: strings.TrimRight(serverURL, "/"),
		timeout:   timeout,
	}
}

// ServerURL returns the configured base URL without a trailing slash.
func (c *Client) ServerURL() string { return c.serverURL }

// featureCollection is the GeoJSON response body of GetFeature.
type featureCollection struct {
	Type          string           `json:"type"`
	TotalFeatures *int             `json:"totalFeatures"`
	Features      []domain.Feature `json:"features"`
}

// Query issues a GetFeature request for q and decorates the returned features
// with their derived links.
func (c *Client) Query(ctx context.Context, q domain.FeatureQuery) (*domain.FeaturePage, error) {
	typeName, err := typeNameFor(q.Context)
	if err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, "wfs.GetFeature")
	defer span.End()
	span.SetAttributes(
		attribute.String(telemetry.AttrTypeName, typeName),
		attribute.String(telemetry.AttrFilter, q.Filter),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.RequestURL(q))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	err = c.http.DoDeadline(req, resp, deadline)
	metrics.WFSRequestDuration.WithLabelValues(typeName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.WFSErrors.WithLabelValues(typeName).Inc()
		span.RecordError(err)
		return nil, fmt.Errorf("GET %s: %w", typeName, err)
	}

	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		metrics.WFSErrors.WithLabelValues(typeName).Inc()
		err := fmt.Errorf("HTTP %d for %s", status, typeName)
		span.RecordError(err)
		return nil, err
	}

	var fc featureCollection
	if err := json.Unmarshal(resp.Body(), &fc); err != nil {
		metrics.WFSErrors.WithLabelValues(typeName).Inc()
		span.RecordError(err)
		return nil, fmt.Errorf("decode %s response: %w", typeName, err)
	}

	for i := range fc.Features {
		switch q.Context {
		case domain.ContextVideo:
			c.decorateVideo(&fc.Features[i].Properties)
		case domain.ContextImagery:
			decorateRaster(&fc.Features[i].Properties)
		}
	}

	total := len(fc.Features)
	if fc.TotalFeatures != nil {
		total = *fc.TotalFeatures
	}
	if fc.Features == nil {
		fc.Features = []domain.Feature{}
	}
	span.SetAttributes(attribute.Int(telemetry.AttrFeatureCount, len(fc.Features)))

	return &domain.FeaturePage{Features: fc.Features, Total: total}, nil
}

// RequestURL returns the GetFeature URL for q. The filter is appended last.
func (c *Client) RequestURL(q domain.FeatureQuery) string {
	typeName, _ := typeNameFor(q.Context)

	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)

	args.Set("service", "WFS")
	args.Set("version", wfsVersion)
	args.Set("request", "GetFeature")
	args.Set("typeName", typeName)
	args.Set("outputFormat", "JSON")
	args.Set("startIndex", strconv.Itoa(q.Offset))
	args.Set("maxFeatures", strconv.Itoa(q.Limit))
	switch q.Context {
	case domain.ContextImagery:
		args.Set("sortBy", rasterSortBy)
	case domain.ContextVideo:
		args.Set("resultType", "results")
	}
	args.Set("filter", q.Filter)

	return c.serverURL + wfsPath + "?" + args.String()
}

func typeNameFor(sc domain.SearchContext) (string, error) {
	switch sc {
	case domain.ContextImagery:
		return TypeRaster, nil
	case domain.ContextVideo:
		return TypeVideo, nil
	}
	return "", fmt.Errorf("%w: unknown search context %q", domain.ErrInvalidEntry, sc)
}
