package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/geosearch/internal/core/domain"
)

// recognition is the GraphQL view of a recognised magic word.
type recognition struct {
	Notation string   `json:"notation"`
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	Text     string   `json:"text"`
}

func toRecognition(m domain.CoordinateMatch) recognition {
	r := recognition{Notation: string(m.Notation())}
	switch v := m.(type) {
	case domain.SpatialMatch:
		p := v.Point()
		r.Lat, r.Lng = &p.Lat, &p.Lng
	case domain.PlainText:
		r.Text = v.Text
	}
	return r
}

// entriesArg decodes a [FilterEntryInput] argument.
func entriesArg(raw interface{}) ([]domain.FilterEntry, error) {
	list, _ := raw.([]interface{})
	entries := make([]domain.FilterEntry, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("entry %d: expected object", i)
		}
		e := domain.FilterEntry{}
		if v, ok := m["category"].(string); ok {
			e.Category = domain.Category(v)
		}
		if v, ok := m["type"].(string); ok {
			e.Field = v
		}
		if v, ok := m["value"].(string); ok {
			e.Value = v
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	recognitionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Recognition",
		Fields: graphql.Fields{
			"notation": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"lat":      &graphql.Field{Type: graphql.Float},
			"lng":      &graphql.Field{Type: graphql.Float},
			"text":     &graphql.Field{Type: graphql.String},
		},
	})

	filterEntryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FilterEntry",
		Fields: graphql.Fields{
			"category": &graphql.Field{Type: graphql.String},
			"type":     &graphql.Field{Type: graphql.String},
			"value":    &graphql.Field{Type: graphql.String},
		},
	})

	filterEntryInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "FilterEntryInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"category": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"type":     &graphql.InputObjectFieldConfig{Type: graphql.String},
			"value":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	savedSearchType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SavedSearch",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"context":     &graphql.Field{Type: graphql.String},
			"entries":     &graphql.Field{Type: graphql.NewList(filterEntryType)},
			"filter":      &graphql.Field{Type: graphql.String},
			"created_at":  &graphql.Field{Type: graphql.DateTime},
			"last_run_at": &graphql.Field{Type: graphql.DateTime},
			"last_count":  &graphql.Field{Type: graphql.Int},
		},
	})

	entriesArgs := graphql.FieldConfigArgument{
		"entries": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(filterEntryInput))},
	}

	filterResolver := func(sc domain.SearchContext) graphql.FieldResolveFn {
		return func(p graphql.ResolveParams) (interface{}, error) {
			entries, err := entriesArg(p.Args["entries"])
			if err != nil {
				return nil, err
			}
			return deps.Search.BuildFilter(p.Context, sc, entries)
		}
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"recognize": &graphql.Field{
				Type:        recognitionType,
				Description: "Classify a magic word as decimal degrees, DMS, grid reference or text",
				Args: graphql.FieldConfigArgument{
					"token": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					m, err := deps.Search.Recognize(p.Args["token"].(string))
					if err != nil {
						return nil, err
					}
					return toRecognition(m), nil
				},
			},
			"imageryFilter": &graphql.Field{
				Type:        graphql.String,
				Description: "Build the imagery filter expression",
				Args:        entriesArgs,
				Resolve:     filterResolver(domain.ContextImagery),
			},
			"videoFilter": &graphql.Field{
				Type:        graphql.String,
				Description: "Build the video filter expression",
				Args:        entriesArgs,
				Resolve:     filterResolver(domain.ContextVideo),
			},
			"savedSearches": &graphql.Field{
				Type:        graphql.NewList(savedSearchType),
				Description: "List saved searches, newest first",
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.SavedSearches == nil {
						return nil, fmt.Errorf("saved searches not available")
					}
					searches, _, err := deps.SavedSearches.List(p.Context, p.Args["limit"].(int), p.Args["offset"].(int))
					return searches, err
				},
			},
			"savedSearch": &graphql.Field{
				Type:        savedSearchType,
				Description: "Get a saved search by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.SavedSearches == nil {
						return nil, fmt.Errorf("saved searches not available")
					}
					return deps.SavedSearches.GetByID(p.Context, p.Args["id"].(string))
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createSavedSearch": &graphql.Field{
				Type:        savedSearchType,
				Description: "Compile and store a named search",
				Args: graphql.FieldConfigArgument{
					"name":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"context": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"entries": entriesArgs["entries"],
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.SavedSearches == nil {
						return nil, fmt.Errorf("saved searches not available")
					}
					entries, err := entriesArg(p.Args["entries"])
					if err != nil {
						return nil, err
					}
					return deps.SavedSearches.Create(p.Context, p.Args["name"].(string),
						domain.SearchContext(p.Args["context"].(string)), entries)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
