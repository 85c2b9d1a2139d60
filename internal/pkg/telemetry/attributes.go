package telemetry

// Span attribute keys.
const (
	AttrSearchContext = "geosearch.context"
	AttrFilter        = "geosearch.filter"
	AttrTypeName      = "wfs.type_name"
	AttrFeatureCount  = "wfs.feature_count"
	AttrCached        = "geosearch.cached"
)
