// Package mysqlstore keeps documents in MySQL tables as JSON columns.
//
// Each model maps to a table with two columns: id and doc. Criteria are
// compiled to JSON_EXTRACT based SQL, so MySQL 8.0.17 or newer is needed.
package mysqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"jsonapi/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var tableName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Table is a model backed by one MySQL table.
type Table struct {
	db      *sql.DB
	name    string
	table   string
	schema  store.Schema
	idField string
	disc    *store.Discriminator
	refs    store.Refs
}

type Option func(*Table)

// WithTable overrides the table name, which defaults to the model name.
func WithTable(table string) Option {
	return func(t *Table) { t.table = table }
}

// WithIDField sets the identifier field, "_id" by default.
func WithIDField(field string) Option {
	return func(t *Table) { t.idField = field }
}

// WithRefs declares populatable paths.
func WithRefs(refs store.Refs) Option {
	return func(t *Table) { t.refs = refs }
}

func New(db *sql.DB, name string, schema store.Schema, opts ...Option) (*Table, error) {
	t := &Table{
		db:      db,
		name:    name,
		table:   name,
		schema:  schema,
		idField: "_id",
	}
	for _, opt := range opts {
		opt(t)
	}
	if !tableName.MatchString(t.table) {
		return nil, fmt.Errorf("mysqlstore: invalid table name %q", t.table)
	}
	return t, nil
}

// Discriminate returns a model stored in t's table but scoped to rows
// stamped with d.
func (t *Table) Discriminate(name string, schema store.Schema, d store.Discriminator) *Table {
	cp := *t
	cp.name = name
	cp.schema = schema
	cp.disc = &d
	return &cp
}

func (t *Table) Name() string { return t.name }

func (t *Table) Schema() store.Schema { return t.schema }

// Ensure creates the table when it does not exist yet.
func (t *Table) Ensure(ctx context.Context) error {
	ok, err := hasTable(ctx, t.db, t.table)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	_, err = t.db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS `"+t.table+"` (id VARCHAR(191) NOT NULL PRIMARY KEY, doc JSON NOT NULL)")
	if err != nil {
		return fmt.Errorf("create table %s: %w", t.table, err)
	}
	zerolog.Ctx(ctx).Info().Str("table", t.table).Msg("created document table")
	return nil
}

func hasTable(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var name sql.NullString
	err := db.QueryRowContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1
	`, table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup table %s: %w", table, err)
	}
	return name.Valid && name.String != "", nil
}

func (t *Table) Find(c store.Criteria) store.Query {
	return &query{t: t, crit: t.disc.Scope(c)}
}

func (t *Table) FindOne(c store.Criteria) store.Query {
	return &query{t: t, crit: t.disc.Scope(c), one: true}
}

func (t *Table) Create(ctx context.Context, attrs store.Document) (*store.Record, error) {
	doc := attrs.Clone()
	if doc == nil {
		doc = store.Document{}
	}
	t.disc.Stamp(doc)
	if _, ok := doc[t.idField]; !ok {
		doc[t.idField] = uuid.NewString()
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", t.name, err)
	}
	_, err = t.db.ExecContext(ctx, "INSERT INTO `"+t.table+"` (id, doc) VALUES (?, ?)", fmt.Sprint(doc[t.idField]), raw)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", t.name, err)
	}
	return store.NewRecord(doc, saver{t}), nil
}

type saver struct {
	t *Table
}

func (s saver) Save(ctx context.Context, doc store.Document) error {
	id, ok := doc[s.t.idField]
	if !ok {
		return fmt.Errorf("%s: document has no %s", s.t.name, s.t.idField)
	}
	s.t.disc.Stamp(doc)
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.t.name, err)
	}
	_, err = s.t.db.ExecContext(ctx, "UPDATE `"+s.t.table+"` SET doc = ? WHERE id = ?", raw, fmt.Sprint(id))
	if err != nil {
		return fmt.Errorf("update %s: %w", s.t.name, err)
	}
	return nil
}

type sortKey struct {
	field string
	order store.Order
}

type query struct {
	t        *Table
	crit     store.Criteria
	one      bool
	sorts    []sortKey
	skip     int
	limit    int
	populate []string
}

func (q *query) Sort(field string, order store.Order) store.Query {
	q.sorts = append(q.sorts, sortKey{field: field, order: order})
	return q
}

func (q *query) Skip(n int) store.Query {
	q.skip = n
	return q
}

func (q *query) Limit(n int) store.Query {
	q.limit = n
	return q
}

func (q *query) Populate(paths ...string) store.Query {
	q.populate = append(q.populate, paths...)
	return q
}

func (q *query) Count(ctx context.Context) (int, error) {
	cond, args, err := where(q.crit)
	if err != nil {
		return 0, err
	}
	var n int
	err = q.t.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM `"+q.t.table+"` WHERE "+cond, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", q.t.name, err)
	}
	return n, nil
}

// selectSQL builds the SELECT for All and One.
func (q *query) selectSQL() (string, []any, error) {
	cond, args, err := where(q.crit)
	if err != nil {
		return "", nil, err
	}
	var b strings.Builder
	b.WriteString("SELECT doc FROM `" + q.t.table + "` WHERE " + cond)

	if len(q.sorts) > 0 {
		keys := make([]string, 0, len(q.sorts))
		for _, k := range q.sorts {
			dir := "ASC"
			if k.order == store.Desc {
				dir = "DESC"
			}
			keys = append(keys, "JSON_EXTRACT(doc, ?) "+dir)
			args = append(args, jsonPath(k.field))
		}
		b.WriteString(" ORDER BY " + strings.Join(keys, ", "))
	}

	limit := q.limit
	if q.one {
		limit = 1
	}
	switch {
	case limit > 0:
		b.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, limit, q.skip)
	case q.skip > 0:
		// MySQL has no OFFSET without LIMIT.
		b.WriteString(" LIMIT 18446744073709551615 OFFSET ?")
		args = append(args, q.skip)
	}
	return b.String(), args, nil
}

func (q *query) All(ctx context.Context) ([]*store.Record, error) {
	stmt, args, err := q.selectSQL()
	if err != nil {
		return nil, err
	}
	rows, err := q.t.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.t.name, err)
	}
	defer rows.Close()

	var docs []store.Document
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", q.t.name, err)
		}
		var doc store.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", q.t.name, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", q.t.name, err)
	}

	if err := store.Populate(ctx, docs, q.t.refs, q.populate); err != nil {
		return nil, err
	}

	recs := make([]*store.Record, 0, len(docs))
	for _, d := range docs {
		recs = append(recs, store.NewRecord(d, saver{q.t}))
	}
	return recs, nil
}

func (q *query) One(ctx context.Context) (*store.Record, error) {
	q.one = true
	recs, err := q.All(ctx)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}
