// Package models declares the demo resources served by the API: users,
// admins stored alongside users, and the companies users belong to.
package models

import (
	"context"
	"database/sql"
	"time"

	"jsonapi/store"
	"jsonapi/store/memstore"
	"jsonapi/store/mongostore"
	"jsonapi/store/mysqlstore"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	UsersCollection     = "users"
	CompaniesCollection = "companies"

	// RoleKey discriminates the kinds of user sharing the users collection.
	RoleKey   = "role"
	RoleAdmin = "Admin"
)

var addressFields = []store.Field{
	{Path: "line1", Kind: store.String},
	{Path: "line2", Kind: store.String},
	{Path: "city", Kind: store.String},
	{Path: "state", Kind: store.String},
	{Path: "postcode", Kind: store.String},
	{Path: "country", Kind: store.String},
	{Path: "created-on", Kind: store.Date},
}

func userFields() []store.Field {
	fields := []store.Field{
		{Path: "username", Kind: store.String},
		{Path: "first-name", Kind: store.String},
		{Path: "last-name", Kind: store.String},
		{Path: "company", Kind: store.String},
		{Path: "addresses", Kind: store.Any},
		{Path: "created-on", Kind: store.Date},
		{Path: RoleKey, Kind: store.String},
	}
	for _, f := range addressFields {
		fields = append(fields, store.Field{Path: "address." + f.Path, Kind: f.Kind})
	}
	return fields
}

var (
	UserSchema  = store.NewSchema(userFields()...)
	AdminSchema = store.NewSchema(append(userFields(), store.Field{Path: "acls", Kind: store.String})...)

	CompanySchema = store.NewSchema(
		store.Field{Path: "name", Kind: store.String},
		store.Field{Path: "legal-name", Kind: store.String},
		store.Field{Path: "created-on", Kind: store.Date},
	)
)

var adminRole = store.Discriminator{Key: RoleKey, Value: RoleAdmin}

// Set is the models the API binds.
type Set struct {
	Users     store.Model
	Admins    store.Model
	Companies store.Model
}

// Memory builds the models on the in-memory store, seeded with demo data.
func Memory() Set {
	companies := memstore.New(CompaniesCollection, CompanySchema)
	users := memstore.New(UsersCollection, UserSchema, memstore.WithRefs(store.Refs{
		"company": {Model: companies},
	}))
	admins := users.Discriminate("admins", AdminSchema, adminRole)

	seed(companies, users, admins)
	return stamp(users, admins, companies)
}

// MySQL builds the models on MySQL tables, creating them when missing.
func MySQL(ctx context.Context, db *sql.DB) (Set, error) {
	companies, err := mysqlstore.New(db, CompaniesCollection, CompanySchema)
	if err != nil {
		return Set{}, err
	}
	users, err := mysqlstore.New(db, UsersCollection, UserSchema, mysqlstore.WithRefs(store.Refs{
		"company": {Model: companies},
	}))
	if err != nil {
		return Set{}, err
	}
	for _, t := range []*mysqlstore.Table{companies, users} {
		if err := t.Ensure(ctx); err != nil {
			return Set{}, err
		}
	}
	admins := users.Discriminate("admins", AdminSchema, adminRole)
	return stamp(users, admins, companies), nil
}

// Mongo builds the models on MongoDB collections.
func Mongo(db *mongo.Database) Set {
	companies := mongostore.New(db.Collection(CompaniesCollection), CompaniesCollection, CompanySchema)
	users := mongostore.New(db.Collection(UsersCollection), UsersCollection, UserSchema, mongostore.WithRefs(store.Refs{
		"company": {Model: companies},
	}))
	admins := users.Discriminate("admins", AdminSchema, adminRole)
	return stamp(users, admins, companies)
}

func stamp(users, admins, companies store.Model) Set {
	return Set{
		Users:     Stamped(users),
		Admins:    Stamped(admins),
		Companies: Stamped(companies),
	}
}

// StampedModel sets "created-on" on documents created without one.
type StampedModel struct {
	store.Model
	Now func() time.Time
}

func Stamped(m store.Model) StampedModel {
	return StampedModel{Model: m, Now: time.Now}
}

func (m StampedModel) Create(ctx context.Context, attrs store.Document) (*store.Record, error) {
	doc := attrs.Clone()
	if doc == nil {
		doc = store.Document{}
	}
	if _, ok := doc["created-on"]; !ok {
		doc["created-on"] = m.Now().UTC()
	}
	return m.Model.Create(ctx, doc)
}

func seed(companies, users, admins *memstore.Collection) {
	created := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	companies.Insert(
		store.Document{"_id": "c1", "name": "Analytical Engines", "legal-name": "Analytical Engines Ltd", "created-on": created},
	)
	users.Insert(
		store.Document{"_id": "u1", "username": "adalovelace", "first-name": "Ada", "last-name": "Lovelace", "company": "c1",
			"address": store.Document{"city": "London", "country": "UK"}, "created-on": created},
		store.Document{"_id": "u2", "username": "alanturing", "first-name": "Alan", "last-name": "Turing", "company": "c1",
			"address": store.Document{"city": "Wilmslow", "country": "UK"}, "created-on": created},
		store.Document{"_id": "u3", "username": "gracehopper", "first-name": "Grace", "last-name": "Hopper",
			"address": store.Document{"city": "Arlington", "country": "US"}, "created-on": created},
	)
	admins.Insert(
		store.Document{"_id": "a1", "username": "root", "first-name": "Margaret", "last-name": "Hamilton",
			"acls": []any{"users:write"}, "created-on": created},
	)
}
