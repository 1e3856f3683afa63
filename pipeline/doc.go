// Package pipeline runs JSON-API requests through ordered stages.
//
// Every request gets a fresh [State] holding the route configuration and
// the values stages produce: criteria, the in-flight query, fetched
// records, serialized output and page metadata. Stages run one after the
// other; the first one to return an error halts the pipeline.
//
// The default stage order per route shape is fixed in a table and can be
// read with [Lookup]:
//
//	getList: search, filter, query, sort, page, execute, serialize, render
//	get:     query, execute, serialize, render
//	patch:   validate, sanitize, find, update, serialize, render
//	post:    validate, sanitize, create, serialize, render
package pipeline
