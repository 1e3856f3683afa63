package models

import (
	"strings"

	"jsonapi/pipeline"
	"jsonapi/store"
)

// UserMapper shapes user documents for responses.
var UserMapper = pipeline.MapperFunc(func(doc store.Document) any {
	first, _ := doc["first-name"].(string)
	last, _ := doc["last-name"].(string)
	return map[string]any{
		"id": doc["_id"],
		"name": map[string]any{
			"first": doc["first-name"],
			"last":  doc["last-name"],
		},
		"full-name": strings.TrimSpace(first + " " + last),
		"company":   doc["company"],
		"address":   doc["address"],
		"credentials": map[string]any{
			"username": doc["username"],
		},
	}
})
