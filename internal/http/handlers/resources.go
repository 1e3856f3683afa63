package handlers

import (
	"jsonapi/internal/models"
	"jsonapi/pipeline"
	"jsonapi/route"
)

// Resources declares the API's resource endpoints.
func Resources(set models.Set, limit int) []route.Config {
	return []route.Config{
		{
			Endpoint: "/users",
			ID:       "_id",
			Model:    set.Users,
			Mapper:   models.UserMapper,
			Limit:    limit,
			Populate: []string{"company"},
			Search:   pipeline.SearchConfig{Active: true, Fields: []string{"first-name", "last-name"}},
			Sanitize: pipeline.SanitizeConfig{Active: true, Fields: []string{"first-name"}},
			Metadata: map[string]any{"resource": "users"},
			Methods:  route.Methods(pipeline.GetList, pipeline.Get, pipeline.Patch, pipeline.Post),
		},
		{
			Endpoint: "/admins",
			ID:       "_id",
			Model:    set.Admins,
			Limit:    limit,
			Sanitize: pipeline.SanitizeConfig{Active: true},
			Methods:  route.Methods(pipeline.GetList, pipeline.Patch),
		},
		{
			Endpoint: "/managers",
			ID:       "_id",
			Model:    set.Admins,
			Limit:    limit,
			Methods:  route.Methods(pipeline.Patch),
		},
		{
			Endpoint: "/companies",
			ID:       "_id",
			Model:    set.Companies,
			Limit:    limit,
			Lean:     true,
			Search:   pipeline.SearchConfig{Active: true, Fields: []string{"name", "legal-name"}},
			Sanitize: pipeline.SanitizeConfig{Active: true},
			Methods:  route.Methods(pipeline.GetList, pipeline.Get, pipeline.Post),
		},
	}
}
