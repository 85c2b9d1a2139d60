package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/geosearch/internal/adapters/http"
	"github.com/samirrijal/geosearch/internal/adapters/wfs"
	"github.com/samirrijal/geosearch/internal/core/domain"
	"github.com/samirrijal/geosearch/internal/core/usecases"
)

// ---- Mock repositories ----

type mockFeatureRepo struct {
	queryFn func(ctx context.Context, q domain.FeatureQuery) (*domain.FeaturePage, error)
}

func (m *mockFeatureRepo) Query(ctx context.Context, q domain.FeatureQuery) (*domain.FeaturePage, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, q)
	}
	return &domain.FeaturePage{Features: []domain.Feature{}}, nil
}

type mockSavedRepo struct {
	createFn    func(ctx context.Context, s *domain.SavedSearch) error
	getByIDFn   func(ctx context.Context, id string) (*domain.SavedSearch, error)
	listFn      func(ctx context.Context, limit, offset int) ([]domain.SavedSearch, int, error)
	deleteFn    func(ctx context.Context, id string) error
	recordRunFn func(ctx context.Context, id string, at time.Time, count int) error
}

func (m *mockSavedRepo) Create(ctx context.Context, s *domain.SavedSearch) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	s.ID = "new-id"
	s.CreatedAt = time.Now()
	return nil
}

func (m *mockSavedRepo) GetByID(ctx context.Context, id string) (*domain.SavedSearch, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockSavedRepo) List(ctx context.Context, limit, offset int) ([]domain.SavedSearch, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return []domain.SavedSearch{}, 0, nil
}

func (m *mockSavedRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return domain.ErrNotFound
}

func (m *mockSavedRepo) RecordRun(ctx context.Context, id string, at time.Time, count int) error {
	if m.recordRunFn != nil {
		return m.recordRunFn(ctx, id, at, count)
	}
	return nil
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

type depsOptions struct {
	features *mockFeatureRepo
	saved    *mockSavedRepo
}

func makeDeps(opts ...func(*depsOptions)) *handler.Dependencies {
	o := &depsOptions{features: &mockFeatureRepo{}, saved: &mockSavedRepo{}}
	for _, fn := range opts {
		fn(o)
	}
	search := usecases.NewSearchService(o.features, nil, nil)
	return &handler.Dependencies{
		Search:        search,
		SavedSearches: usecases.NewSavedSearchService(o.saved, search, nil),
		Thumbnails:    wfs.New("http://omar.example", time.Second),
	}
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, readBody(t, resp.Body)
}

func get(t *testing.T, app *fiber.App, path string) (int, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, readBody(t, resp.Body)
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func decodeError(t *testing.T, body []byte) handler.APIError {
	t.Helper()
	var apiErr handler.APIError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, body)
	}
	return apiErr
}

// ---- Filter handler tests ----

func TestBuildImageryFilter_Success(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := postJSON(t, app, "/v1/filters/imagery", `{"entries":[
		{"category":"magicword","value":"34.5 -118.2"},
		{"category":"sensor","type":"sensor_id","value":"wv02"},
		{"category":"id","type":"mission_id","value":"m1"}]}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var result struct {
		Context string `json:"context"`
		Filter  string `json:"filter"`
	}
	json.Unmarshal(body, &result)
	want := "(INTERSECTS(ground_geom,POINT(-118.2+34.5))) AND (sensor_id LIKE '%WV02%') AND (mission_id LIKE '%M1%')"
	if result.Filter != want {
		t.Errorf("expected %q, got %q", want, result.Filter)
	}
	if result.Context != "imagery" {
		t.Errorf("expected imagery context, got %s", result.Context)
	}
}

func TestBuildVideoFilter_IgnoresSensors(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := postJSON(t, app, "/v1/filters/video", `{"entries":[
		{"category":"magicword","value":"clip"},
		{"category":"sensor","type":"sensor_id","value":"wv02"}]}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if !bytes.Contains(body, []byte(`"filter":"(filename LIKE '%CLIP%')"`)) {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestBuildFilter_EmptyEntries(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := postJSON(t, app, "/v1/filters/imagery", `{"entries":[]}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if !bytes.Contains(body, []byte(`"filter":""`)) {
		t.Errorf("expected empty filter, got %s", body)
	}
}

func TestBuildFilter_InvalidGrid(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := postJSON(t, app, "/v1/filters/imagery", `{"entries":[{"category":"magicword","value":"61SUJ2337106519"}]}`)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	if code := decodeError(t, body).Code; code != "invalid_grid_reference" {
		t.Errorf("expected invalid_grid_reference, got %s", code)
	}
}

func TestBuildFilter_BadRequest(t *testing.T) {
	app := setupApp(makeDeps())

	cases := map[string]string{
		"malformed json":   `{"entries":`,
		"unknown category": `{"entries":[{"category":"color","value":"red"}]}`,
		"missing field":    `{"entries":[{"category":"id","value":"42"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			status, resp := postJSON(t, app, "/v1/filters/imagery", body)
			if status != 400 {
				t.Fatalf("expected 400, got %d", status)
			}
			if code := decodeError(t, resp).Code; code != "bad_request" {
				t.Errorf("expected bad_request, got %s", code)
			}
		})
	}
}

// ---- Recognize handler tests ----

func TestRecognize(t *testing.T) {
	app := setupApp(makeDeps())

	tests := []struct {
		q        string
		notation string
		hasPoint bool
	}{
		{"34.5%20-118.2", "decimal", true},
		{"34%C2%B030'30%22N%20118%C2%B012'00%22W", "dms", true},
		{"18SUJ2337106519", "grid", true},
		{"harbor", "text", false},
	}
	for _, tt := range tests {
		t.Run(tt.notation, func(t *testing.T) {
			status, body := get(t, app, "/v1/coordinates/recognize?q="+tt.q)
			if status != 200 {
				t.Fatalf("expected 200, got %d: %s", status, body)
			}
			var result struct {
				Notation string   `json:"notation"`
				Lat      *float64 `json:"lat"`
				Lng      *float64 `json:"lng"`
			}
			json.Unmarshal(body, &result)
			if result.Notation != tt.notation {
				t.Errorf("expected %s, got %s", tt.notation, result.Notation)
			}
			if (result.Lat != nil) != tt.hasPoint {
				t.Errorf("expected point=%v, got %+v", tt.hasPoint, result)
			}
		})
	}
}

func TestRecognize_MissingQuery(t *testing.T) {
	app := setupApp(makeDeps())

	status, _ := get(t, app, "/v1/coordinates/recognize")
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestRecognize_InvalidGrid(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := get(t, app, "/v1/coordinates/recognize?q=18SUI2337106519")
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	if code := decodeError(t, body).Code; code != "invalid_grid_reference" {
		t.Errorf("expected invalid_grid_reference, got %s", code)
	}
}

// ---- Search handler tests ----

func TestImagerySearch_Success(t *testing.T) {
	var got domain.FeatureQuery
	app := setupApp(makeDeps(func(o *depsOptions) {
		o.features.queryFn = func(ctx context.Context, q domain.FeatureQuery) (*domain.FeaturePage, error) {
			got = q
			return &domain.FeaturePage{
				Features: []domain.Feature{{ID: "raster_entry.1", Properties: domain.FeatureProperties{ImageID: "IMG"}}},
				Total:    7,
			}, nil
		}
	}))

	status, body := postJSON(t, app, "/v1/imagery/search", `{"entries":[{"category":"magicword","value":"img"}],"offset":5,"limit":10}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if got.Context != domain.ContextImagery || got.Offset != 5 || got.Limit != 10 {
		t.Errorf("unexpected query: %+v", got)
	}

	var result handler.SearchResponse
	json.Unmarshal(body, &result)
	if result.Filter != "(image_id LIKE '%IMG%')" {
		t.Errorf("unexpected filter %q", result.Filter)
	}
	if result.Pagination.Total != 7 || result.Pagination.Limit != 10 || len(result.Data) != 1 {
		t.Errorf("unexpected page: %+v", result)
	}
}

func TestVideoSearch_DefaultLimit(t *testing.T) {
	var got domain.FeatureQuery
	app := setupApp(makeDeps(func(o *depsOptions) {
		o.features.queryFn = func(ctx context.Context, q domain.FeatureQuery) (*domain.FeaturePage, error) {
			got = q
			return &domain.FeaturePage{Features: []domain.Feature{}}, nil
		}
	}))

	status, _ := postJSON(t, app, "/v1/videos/search", `{"entries":[]}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if got.Context != domain.ContextVideo || got.Limit != 30 || got.Filter != "" {
		t.Errorf("unexpected query: %+v", got)
	}
}

func TestSearch_UpstreamError(t *testing.T) {
	app := setupApp(makeDeps(func(o *depsOptions) {
		o.features.queryFn = func(ctx context.Context, q domain.FeatureQuery) (*domain.FeaturePage, error) {
			return nil, errors.New("HTTP 503 for omar:raster_entry")
		}
	}))

	status, body := postJSON(t, app, "/v1/imagery/search", `{"entries":[]}`)
	if status != 502 {
		t.Fatalf("expected 502, got %d", status)
	}
	if code := decodeError(t, body).Code; code != "upstream_error" {
		t.Errorf("expected upstream_error, got %s", code)
	}
}

// ---- Thumbnail handler tests ----

func TestThumbnail_Redirect(t *testing.T) {
	app := setupApp(makeDeps())

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/imagery/thumbnail?entry_id=0&filename=/data/a.ntf&id=7&size=128", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 302 {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "http://omar.example/omar-oms/imageSpace/getThumbnail?") || !strings.Contains(loc, "size=128") {
		t.Errorf("unexpected location %q", loc)
	}
}

func TestThumbnail_MissingID(t *testing.T) {
	app := setupApp(makeDeps())

	status, _ := get(t, app, "/v1/imagery/thumbnail")
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
}

// ---- Legacy filter tests ----

func TestLegacyFilter_Deprecated(t *testing.T) {
	app := setupApp(makeDeps())

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/filter?q=foo&q=34.5%20-118.2", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Deprecation") != "true" {
		t.Error("expected Deprecation header")
	}
	if !strings.Contains(resp.Header.Get("Link"), "/v1/filters/imagery") {
		t.Errorf("expected successor link, got %q", resp.Header.Get("Link"))
	}

	body := readBody(t, resp.Body)
	want := `"filter":"(image_id LIKE '%FOO%' OR INTERSECTS(ground_geom,POINT(-118.2+34.5)))"`
	if !bytes.Contains(body, []byte(want)) {
		t.Errorf("expected %s in %s", want, body)
	}
}

// ---- Saved search handler tests ----

func TestCreateSavedSearch(t *testing.T) {
	var stored *domain.SavedSearch
	app := setupApp(makeDeps(func(o *depsOptions) {
		o.saved.createFn = func(ctx context.Context, s *domain.SavedSearch) error {
			s.ID = "abc"
			stored = s
			return nil
		}
	}))

	req := httptest.NewRequest("POST", "/v1/searches", strings.NewReader(
		`{"name":"port","context":"video","entries":[{"category":"id","type":"id","value":"42"}]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Location") != "/v1/searches/abc" {
		t.Errorf("unexpected location %q", resp.Header.Get("Location"))
	}
	if stored == nil || stored.Filter != "(id LIKE '%42%')" {
		t.Errorf("unexpected stored search: %+v", stored)
	}
}

func TestCreateSavedSearch_BadContext(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := postJSON(t, app, "/v1/searches", `{"name":"x","context":"maps","entries":[]}`)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	if code := decodeError(t, body).Code; code != "bad_request" {
		t.Errorf("expected bad_request, got %s", code)
	}
}

func TestListSavedSearches(t *testing.T) {
	app := setupApp(makeDeps(func(o *depsOptions) {
		o.saved.listFn = func(ctx context.Context, limit, offset int) ([]domain.SavedSearch, int, error) {
			return []domain.SavedSearch{{ID: "a"}, {ID: "b"}}, 5, nil
		}
	}))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/searches?limit=2", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Link"), `rel="next"`) {
		t.Errorf("expected next link, got %q", resp.Header.Get("Link"))
	}

	var result struct {
		Data       []domain.SavedSearch `json:"data"`
		Pagination handler.Pagination   `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Data) != 2 || result.Pagination.Total != 5 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestGetSavedSearch_NotFound(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := get(t, app, "/v1/searches/missing")
	if status != 404 {
		t.Fatalf("expected 404, got %d", status)
	}
	if code := decodeError(t, body).Code; code != "not_found" {
		t.Errorf("expected not_found, got %s", code)
	}
}

func TestDeleteSavedSearch(t *testing.T) {
	app := setupApp(makeDeps(func(o *depsOptions) {
		o.saved.deleteFn = func(ctx context.Context, id string) error { return nil }
	}))

	resp, err := app.Test(httptest.NewRequest("DELETE", "/v1/searches/abc", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 204 {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

func TestRunSavedSearch(t *testing.T) {
	var recorded int
	app := setupApp(makeDeps(func(o *depsOptions) {
		o.saved.getByIDFn = func(ctx context.Context, id string) (*domain.SavedSearch, error) {
			return &domain.SavedSearch{ID: id, Context: domain.ContextVideo, Filter: "(filename LIKE '%CLIP%')"}, nil
		}
		o.saved.recordRunFn = func(ctx context.Context, id string, at time.Time, count int) error {
			recorded = count
			return nil
		}
		o.features.queryFn = func(ctx context.Context, q domain.FeatureQuery) (*domain.FeaturePage, error) {
			return &domain.FeaturePage{Features: []domain.Feature{{ID: "v1"}, {ID: "v2"}}, Total: 37}, nil
		}
	}))

	status, body := postJSON(t, app, "/v1/searches/abc/run?limit=2", ``)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if recorded != 37 {
		t.Errorf("expected run to be recorded with total 37, got %d", recorded)
	}
}

func TestRefreshSavedSearch_NoScheduler(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := postJSON(t, app, "/v1/searches/abc/refresh", ``)
	if status != 503 {
		t.Fatalf("expected 503, got %d", status)
	}
	if code := decodeError(t, body).Code; code != "unavailable" {
		t.Errorf("expected unavailable, got %s", code)
	}
}

// ---- GraphQL tests ----

func TestGraphQL_Recognize(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := postJSON(t, app, "/graphql", `{"query":"{ recognize(token: \"18SUJ2337106519\") { notation lat lng } }"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var result struct {
		Data struct {
			Recognize struct {
				Notation string  `json:"notation"`
				Lat      float64 `json:"lat"`
				Lng      float64 `json:"lng"`
			} `json:"recognize"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	json.Unmarshal(body, &result)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Data.Recognize.Notation != "grid" {
		t.Errorf("expected grid, got %s", result.Data.Recognize.Notation)
	}
	if result.Data.Recognize.Lat < 38.88 || result.Data.Recognize.Lat > 38.90 {
		t.Errorf("unexpected lat %v", result.Data.Recognize.Lat)
	}
}

func TestGraphQL_ImageryFilter(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := postJSON(t, app, "/graphql",
		`{"query":"query($e: [FilterEntryInput!]) { imageryFilter(entries: $e) }","variables":{"e":[{"category":"magicword","value":"foo"}]}}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if !bytes.Contains(body, []byte(`"imageryFilter":"(image_id LIKE '%FOO%')"`)) {
		t.Errorf("unexpected body %s", body)
	}
}

func TestGraphQL_EmptyQuery(t *testing.T) {
	app := setupApp(makeDeps())

	status, _ := postJSON(t, app, "/graphql", `{"query":""}`)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
}

// ---- Middleware tests ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := get(t, app, "/v1/health")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if !bytes.Contains(body, []byte(`"status":"healthy"`)) {
		t.Errorf("unexpected body %s", body)
	}
}

func TestReady_NoDatabase(t *testing.T) {
	app := setupApp(makeDeps())

	status, _ := get(t, app, "/v1/ready")
	if status != 503 {
		t.Fatalf("expected 503 without database, got %d", status)
	}
}

func TestETag_NotModified(t *testing.T) {
	app := setupApp(makeDeps())

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/coordinates/recognize?q=harbor", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	req := httptest.NewRequest("GET", "/v1/coordinates/recognize?q=harbor", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 304 {
		t.Fatalf("expected 304, got %d", resp.StatusCode)
	}
}

func TestCaching_Headers(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/coordinates/recognize?q=harbor", nil), -1)
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=86400" {
		t.Errorf("unexpected Cache-Control %q", cc)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/coordinates/recognize", nil), -1)
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("expected no-store on errors, got %q", cc)
	}
}

func TestRequestID_InErrorEnvelope(t *testing.T) {
	app := setupApp(makeDeps())

	_, body := get(t, app, "/v1/coordinates/recognize")
	if decodeError(t, body).RequestID == "" {
		t.Error("expected request id in error envelope")
	}
}
