package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geosearch/internal/adapters/wfs"
	"github.com/samirrijal/geosearch/internal/core/domain"
)

type filterRequest struct {
	Entries []domain.FilterEntry `json:"entries"`
}

type filterResponse struct {
	Context domain.SearchContext `json:"context"`
	Filter  string               `json:"filter"`
}

type searchRequest struct {
	Entries []domain.FilterEntry `json:"entries"`
	Offset  int                  `json:"offset"`
	Limit   int                  `json:"limit"`
}

// SearchResponse is a page of features together with the expression that selected them.
type SearchResponse struct {
	Filter     string           `json:"filter"`
	Data       []domain.Feature `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

type recognizeResponse struct {
	Token    string          `json:"token"`
	Notation domain.Notation `json:"notation"`
	Lat      *float64        `json:"lat,omitempty"`
	Lng      *float64        `json:"lng,omitempty"`
}

// BuildFilterHandler compiles the posted entries into a filter expression for sc.
func BuildFilterHandler(deps *Dependencies, sc domain.SearchContext) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req filterRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		expr, err := deps.Search.BuildFilter(c.UserContext(), sc, req.Entries)
		if err != nil {
			return errFromUsecase(c, err, errInternal)
		}
		return c.JSON(filterResponse{Context: sc, Filter: expr})
	}
}

// RecognizeHandler reports how a single magic word is interpreted.
func RecognizeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("q")
		if token == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(token) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}

		m, err := deps.Search.Recognize(token)
		if err != nil {
			return errFromUsecase(c, err, errInternal)
		}

		resp := recognizeResponse{Token: token, Notation: m.Notation()}
		if sm, ok := m.(domain.SpatialMatch); ok {
			p := sm.Point()
			resp.Lat, resp.Lng = &p.Lat, &p.Lng
		}
		return c.JSON(resp)
	}
}

// SearchHandler builds the filter for sc and returns one page of matching features.
func SearchHandler(deps *Dependencies, sc domain.SearchContext) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req searchRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Offset < 0 {
			req.Offset = 0
		}
		limit := deps.Search.PageLimit(req.Limit)

		page, expr, err := deps.Search.Search(c.UserContext(), sc, req.Entries, req.Offset, limit)
		if err != nil {
			return errFromUsecase(c, err, errUpstream)
		}

		return c.JSON(SearchResponse{
			Filter:     expr,
			Data:       page.Features,
			Pagination: Pagination{Offset: req.Offset, Limit: limit, Total: page.Total},
		})
	}
}

// ThumbnailHandler redirects to the thumbnail of an imagery or video record.
func ThumbnailHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Thumbnails == nil {
			return errUnavailable(c, "feature service not configured")
		}

		r := wfs.ThumbnailRequest{
			EntryID:             c.Query("entry_id"),
			Filename:            c.Query("filename"),
			ID:                  c.Query("id"),
			Type:                c.Query("type"),
			RequestThumbnailURL: c.Query("request_thumbnail_url"),
			Size:                c.QueryInt("size", wfs.DefaultThumbnailSize),
		}
		if r.ID == "" && r.RequestThumbnailURL == "" {
			return errBadRequest(c, "id or request_thumbnail_url is required")
		}
		if r.Size <= 0 || r.Size > 1024 {
			return errBadRequest(c, "size must be between 1 and 1024")
		}

		return c.Redirect(deps.Thumbnails.ThumbnailURL(r), fiber.StatusFound)
	}
}

// LegacyFilterHandler serves GET /v1/filter?context=imagery&q=..., treating every
// q value as a magic word.
func LegacyFilterHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sc := domain.SearchContext(c.Query("context", string(domain.ContextImagery)))

		var entries []domain.FilterEntry
		for _, q := range c.Context().QueryArgs().PeekMulti("q") {
			v := strings.TrimSpace(string(q))
			if v == "" {
				continue
			}
			entries = append(entries, domain.FilterEntry{Category: domain.CategoryMagicWord, Value: v})
		}

		expr, err := deps.Search.BuildFilter(c.UserContext(), sc, entries)
		if err != nil {
			return errFromUsecase(c, err, errInternal)
		}
		return c.JSON(filterResponse{Context: sc, Filter: expr})
	}
}
