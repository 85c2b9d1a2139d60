package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geosearch/internal/adapters/postgres"
	"github.com/samirrijal/geosearch/internal/adapters/valkey"
	"github.com/samirrijal/geosearch/internal/adapters/wfs"
	"github.com/samirrijal/geosearch/internal/core/usecases"
)

// ThumbnailLinker resolves thumbnail links for feature records.
type ThumbnailLinker interface {
	ThumbnailURL(r wfs.ThumbnailRequest) string
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Search        *usecases.SearchService
	SavedSearches *usecases.SavedSearchService
	Thumbnails    ThumbnailLinker
	NATS          *nats.Conn
	DB            *postgres.DB
	Cache         *valkey.Cache
}
