package introspect

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasefe/pgts/schema"
)

var (
	relationCols   = []string{"nspname", "relname", "relkind", "comment", "definition"}
	columnCols     = []string{"nspname", "relname", "attname", "type", "dims", "attnotnull", "default", "attidentity", "attgenerated", "comment"}
	constraintCols = []string{"nspname", "relname", "contype", "attname", "ref_schema", "ref_table", "ref_column"}
	enumCols       = []string{"nspname", "typname", "comment", "enumlabel"}
	typeCols       = []string{"nspname", "typname", "comment", "type"}
	domainCols     = []string{"nspname", "typname", "comment", "type", "dims"}
	dependCols     = []string{"view_schema", "view_name", "table_schema", "table_name", "column_name"}
)

func q(fragment string) string {
	return regexp.QuoteMeta(fragment)
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestIntrospect(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(q("FROM pg_class c JOIN pg_namespace n")).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows(relationCols).
			AddRow("public", "film", "r", "Films in stock", "").
			AddRow("public", "film_list", "v", "", " SELECT film.film_id, film.title FROM film;").
			AddRow("public", "inventory", "r", "", "").
			AddRow("public", "point3d", "c", "", "").
			AddRow("public", "sales_stats", "m", "", " SELECT 1;"))

	mock.ExpectQuery(q("FROM pg_attribute a")).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows(columnCols).
			AddRow("public", "film", "film_id", "pg_catalog.int4", 0, true, nil, "d", "", "").
			AddRow("public", "film", "title", "pg_catalog.text", 0, true, nil, "", "", "Display title").
			AddRow("public", "film", "special_features", "pg_catalog.text", 1, false, nil, "", "", "").
			AddRow("public", "film", "fulltext", "pg_catalog.tsvector", 0, true, "to_tsvector(title)", "", "s", "").
			AddRow("public", "film", "last_update", "pg_catalog.timestamptz", 0, true, "now()", "", "", "").
			AddRow("public", "film_list", "film_id", "pg_catalog.int4", 0, false, nil, "", "", "").
			AddRow("public", "film_list", "title", "pg_catalog.text", 0, false, nil, "", "", "").
			AddRow("public", "film_list", "last_update", "pg_catalog.timestamptz", 0, false, nil, "", "", "").
			AddRow("public", "inventory", "inventory_id", "pg_catalog.int4", 0, true, "nextval('inventory_inventory_id_seq'::regclass)", "", "", "").
			AddRow("public", "inventory", "film_id", "pg_catalog.int4", 0, true, nil, "", "", "").
			AddRow("public", "inventory", "last_update", "pg_catalog.timestamptz", 0, true, "now()", "", "", "").
			AddRow("public", "point3d", "x", "pg_catalog.float8", 0, false, nil, "", "", "").
			AddRow("public", "sales_stats", "film_id", "pg_catalog.int4", 0, false, nil, "", "", "").
			AddRow("public", "vanished", "x", "pg_catalog.int4", 0, false, nil, "", "", ""))

	mock.ExpectQuery(q("FROM pg_constraint con")).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows(constraintCols).
			AddRow("public", "film", "p", "film_id", nil, nil, nil).
			AddRow("public", "inventory", "f", "film_id", "public", "film", "film_id").
			AddRow("public", "inventory", "p", "inventory_id", nil, nil, nil))

	mock.ExpectQuery(q("JOIN pg_enum e")).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows(enumCols).
			AddRow("public", "mpaa_rating", "", "G").
			AddRow("public", "mpaa_rating", "", "PG").
			AddRow("public", "mpaa_rating", "", "PG-13"))

	mock.ExpectQuery(q("FROM pg_range r")).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows(typeCols).AddRow("public", "year_range", "", "pg_catalog.int4"))

	mock.ExpectQuery(q("t.typtype = 'd'")).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows(domainCols).
			AddRow("public", "scores", "", "pg_catalog.int4", 2).
			AddRow("public", "year", "Four digits", "pg_catalog.int4", 0))

	mock.ExpectQuery(q("FROM pg_depend d JOIN pg_rewrite r")).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows(dependCols).
			AddRow("public", "film_list", "public", "film", "film_id").
			AddRow("public", "film_list", "public", "film", "last_update").
			AddRow("public", "film_list", "public", "film", "title").
			AddRow("public", "film_list", "public", "inventory", "last_update").
			AddRow("public", "sales_stats", "public", "film", "film_id"))

	catalog, err := New(db).Introspect(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Contains(t, catalog, "public")
	public := catalog["public"]
	assert.Len(t, public.Tables, 2)
	assert.Len(t, public.Views, 1)
	assert.Len(t, public.MaterializedViews, 1)
	assert.Len(t, public.CompositeTypes, 1)

	film := catalog.Lookup("public", "film")
	require.NotNil(t, film)
	assert.Equal(t, schema.KindTable, film.Kind)
	assert.Equal(t, "Films in stock", film.Comment)
	require.Len(t, film.Columns, 5)

	filmID := film.Column("film_id")
	assert.True(t, filmID.PrimaryKey)
	assert.Equal(t, "BY DEFAULT", filmID.Identity)
	assert.False(t, filmID.Nullable)
	assert.Equal(t, 1, filmID.Ordinal)

	features := film.Column("special_features")
	assert.Equal(t, 1, features.Dimensions)
	assert.True(t, features.Nullable)
	assert.Equal(t, "Display title", film.Column("title").Comment)

	fulltext := film.Column("fulltext")
	assert.Equal(t, "ALWAYS", fulltext.Generated)
	assert.Nil(t, fulltext.Default)

	inventory := catalog.Lookup("public", "inventory")
	require.NotNil(t, inventory)
	assert.Equal(t, []schema.ColumnRef{{Schema: "public", Table: "film", Column: "film_id"}}, inventory.Column("film_id").References)
	require.NotNil(t, inventory.Column("inventory_id").Default)
	assert.Equal(t, "nextval('inventory_inventory_id_seq'::regclass)", *inventory.Column("inventory_id").Default)

	view := catalog.Lookup("public", "film_list")
	require.NotNil(t, view)
	assert.Equal(t, &schema.ColumnRef{Schema: "public", Table: "film", Column: "film_id"}, view.Column("film_id").Source)
	assert.Equal(t, &schema.ColumnRef{Schema: "public", Table: "film", Column: "title"}, view.Column("title").Source)
	assert.Nil(t, view.Column("last_update").Source, "ambiguous source must not be linked")

	stats := catalog.Lookup("public", "sales_stats")
	require.NotNil(t, stats)
	assert.Equal(t, schema.KindMaterializedView, stats.Kind)
	assert.Equal(t, &schema.ColumnRef{Schema: "public", Table: "film", Column: "film_id"}, stats.Column("film_id").Source)

	rating := catalog.LookupType("public.mpaa_rating")
	require.NotNil(t, rating)
	assert.Equal(t, []string{"G", "PG", "PG-13"}, rating.Values)

	yr := catalog.LookupType("public.year_range")
	require.NotNil(t, yr)
	assert.Equal(t, "pg_catalog.int4", yr.Subtype)

	year := catalog.LookupType("public.year")
	require.NotNil(t, year)
	assert.Equal(t, "pg_catalog.int4", year.BaseType)
	assert.Equal(t, "Four digits", year.Comment)
	assert.Zero(t, year.BaseDimensions)

	scores := catalog.LookupType("public.scores")
	require.NotNil(t, scores)
	assert.Equal(t, "pg_catalog.int4", scores.BaseType)
	assert.Equal(t, 2, scores.BaseDimensions)
}

func expectEmpty(mock sqlmock.Sqlmock, fragment string, cols []string, args ...driver.Value) {
	mock.ExpectQuery(q(fragment)).WithArgs(args...).WillReturnRows(sqlmock.NewRows(cols))
}

func TestIntrospectAllSchemas(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(q("FROM pg_namespace WHERE nspname NOT IN")).
		WithArgs("information_schema", "pg_catalog", "pg_toast", "pg_%").
		WillReturnRows(sqlmock.NewRows([]string{"nspname"}).AddRow("public").AddRow("sales"))
	expectEmpty(mock, "FROM pg_class c", relationCols, "public", "sales")
	expectEmpty(mock, "FROM pg_attribute a", columnCols, "public", "sales")
	expectEmpty(mock, "FROM pg_constraint con", constraintCols, "public", "sales")
	expectEmpty(mock, "JOIN pg_enum e", enumCols, "public", "sales")
	expectEmpty(mock, "FROM pg_range r", typeCols, "public", "sales")
	expectEmpty(mock, "t.typtype = 'd'", domainCols, "public", "sales")

	catalog, err := New(db, WithSchemas("ignored"), WithAllSchemas(), WithViewSources(false)).
		Introspect(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, []string{"public", "sales"}, catalog.SortedNames())
	assert.Equal(t, 0, catalog.Len())
}

func TestIntrospectFilters(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(q("FROM pg_class c")).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows(relationCols).
			AddRow("public", "film", "r", "", "").
			AddRow("public", "migrations", "r", "", "").
			AddRow("public", "film_list", "v", "", ""))
	expectEmpty(mock, "FROM pg_attribute a", columnCols, "public")
	expectEmpty(mock, "FROM pg_constraint con", constraintCols, "public")
	expectEmpty(mock, "JOIN pg_enum e", enumCols, "public")
	expectEmpty(mock, "FROM pg_range r", typeCols, "public")
	expectEmpty(mock, "t.typtype = 'd'", domainCols, "public")

	noViews := func(o *schema.Object) bool { return o.Kind != schema.KindView }
	catalog, err := New(db,
		WithExclude("migrations"),
		WithTypeFilter(noViews),
		WithViewSources(false),
	).Introspect(context.Background())
	require.NoError(t, err)

	public := catalog["public"]
	require.Len(t, public.Tables, 1)
	assert.Equal(t, "film", public.Tables[0].Name)
	assert.Empty(t, public.Views)
}

func TestIntrospectInvalidExclude(t *testing.T) {
	db, mock := newMock(t)

	_, err := New(db, WithExclude("[")).Introspect(context.Background())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIntrospectQueryError(t *testing.T) {
	db, mock := newMock(t)

	boom := errors.New("connection reset")
	mock.ExpectQuery(q("FROM pg_class c")).WithArgs("public").WillReturnError(boom)

	_, err := New(db).Introspect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to get relations")
}

func TestIntrospectScanError(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(q("FROM pg_class c")).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"nspname"}).AddRow("public"))

	_, err := New(db).Introspect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get relations")
}
