package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geosearch/internal/core/domain"
)

type createSavedSearchRequest struct {
	Name    string               `json:"name"`
	Context domain.SearchContext `json:"context"`
	Entries []domain.FilterEntry `json:"entries"`
}

// CreateSavedSearchHandler compiles and stores a named search.
func CreateSavedSearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createSavedSearchRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		saved, err := deps.SavedSearches.Create(c.UserContext(), req.Name, req.Context, req.Entries)
		if err != nil {
			return errFromUsecase(c, err, errInternal)
		}

		c.Location("/v1/searches/" + saved.ID)
		return c.Status(fiber.StatusCreated).JSON(saved)
	}
}

// ListSavedSearchesHandler returns saved searches, newest first.
func ListSavedSearchesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 100 {
			limit = 50
		}

		searches, total, err := deps.SavedSearches.List(c.UserContext(), limit, offset)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: searches, Pagination: pg})
	}
}

// GetSavedSearchHandler returns a single saved search.
func GetSavedSearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		saved, err := deps.SavedSearches.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromUsecase(c, err, errInternal)
		}
		return c.JSON(saved)
	}
}

// DeleteSavedSearchHandler removes a saved search.
func DeleteSavedSearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.SavedSearches.Delete(c.UserContext(), c.Params("id")); err != nil {
			return errFromUsecase(c, err, errInternal)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// RunSavedSearchHandler executes a saved search and returns one page of features.
func RunSavedSearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		if offset < 0 {
			offset = 0
		}
		limit := deps.Search.PageLimit(c.QueryInt("limit", 0))

		page, err := deps.SavedSearches.Run(c.UserContext(), c.Params("id"), offset, limit)
		if err != nil {
			return errFromUsecase(c, err, errUpstream)
		}

		return c.JSON(PaginatedResponse{
			Data:       page.Features,
			Pagination: Pagination{Offset: offset, Limit: limit, Total: page.Total},
		})
	}
}

// RefreshSavedSearchHandler starts a background refresh workflow.
func RefreshSavedSearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		runID, err := deps.SavedSearches.ScheduleRefresh(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromUsecase(c, err, errInternal)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"run_id": runID})
	}
}
