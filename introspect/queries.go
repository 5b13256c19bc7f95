package introspect

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/lucasefe/pgts/schema"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var systemSchemas = []string{"information_schema", "pg_catalog", "pg_toast"}

// query runs q and calls scan once per row.
func (i *Introspector) query(ctx context.Context, q sq.SelectBuilder, scan func(*sql.Rows) error) error {
	query, args, err := q.ToSql()
	if err != nil {
		return err
	}

	rows, err := i.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (i *Introspector) allSchemas(ctx context.Context) ([]string, error) {
	q := psql.Select("nspname").
		From("pg_namespace").
		Where(sq.NotEq{"nspname": systemSchemas}).
		Where(sq.NotLike{"nspname": "pg_%"}).
		OrderBy("nspname")

	var schemas []string
	err := i.query(ctx, q, func(rows *sql.Rows) error {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		schemas = append(schemas, name)
		return nil
	})
	return schemas, err
}

var relationKinds = map[string]schema.Kind{
	"r": schema.KindTable,
	"p": schema.KindTable,
	"v": schema.KindView,
	"m": schema.KindMaterializedView,
	"c": schema.KindCompositeType,
}

func (i *Introspector) relations(ctx context.Context, b *builder) error {
	q := psql.Select(
		"n.nspname",
		"c.relname",
		"c.relkind",
		"COALESCE(obj_description(c.oid, 'pg_class'), '')",
		"CASE WHEN c.relkind IN ('v', 'm') THEN COALESCE(pg_get_viewdef(c.oid), '') ELSE '' END",
	).
		From("pg_class c").
		Join("pg_namespace n ON n.oid = c.relnamespace").
		Where("c.relkind IN ('r', 'p', 'v', 'm', 'c')").
		Where("NOT c.relispartition").
		Where(sq.Eq{"n.nspname": b.schemas}).
		OrderBy("n.nspname", "c.relname")

	return i.query(ctx, q, func(rows *sql.Rows) error {
		var obj schema.Object
		var relkind string
		if err := rows.Scan(&obj.Schema, &obj.Name, &relkind, &obj.Comment, &obj.Definition); err != nil {
			return err
		}
		obj.Kind = relationKinds[relkind]
		b.add(&obj)
		return nil
	})
}

func (i *Introspector) columns(ctx context.Context, b *builder) error {
	q := psql.Select(
		"n.nspname",
		"c.relname",
		"a.attname",
		"en.nspname || '.' || et.typname",
		"CASE WHEN at.typcategory = 'A' THEN GREATEST(a.attndims, 1) ELSE 0 END",
		"a.attnotnull",
		"pg_get_expr(d.adbin, d.adrelid)",
		"a.attidentity::text",
		"a.attgenerated::text",
		"COALESCE(col_description(c.oid, a.attnum), '')",
	).
		From("pg_attribute a").
		Join("pg_class c ON c.oid = a.attrelid").
		Join("pg_namespace n ON n.oid = c.relnamespace").
		Join("pg_type at ON at.oid = a.atttypid").
		Join("pg_type et ON et.oid = CASE WHEN at.typcategory = 'A' THEN at.typelem ELSE at.oid END").
		Join("pg_namespace en ON en.oid = et.typnamespace").
		LeftJoin("pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum").
		Where("a.attnum > 0").
		Where("NOT a.attisdropped").
		Where("c.relkind IN ('r', 'p', 'v', 'm', 'c')").
		Where(sq.Eq{"n.nspname": b.schemas}).
		OrderBy("n.nspname", "c.relname", "a.attnum")

	return i.query(ctx, q, func(rows *sql.Rows) error {
		var (
			schemaName, relName string
			col                 schema.Column
			notNull             bool
			def                 sql.NullString
			identity, generated string
		)
		err := rows.Scan(
			&schemaName,
			&relName,
			&col.Name,
			&col.Type,
			&col.Dimensions,
			&notNull,
			&def,
			&identity,
			&generated,
			&col.Comment,
		)
		if err != nil {
			return err
		}

		obj := b.relation(schemaName, relName)
		if obj == nil {
			return nil
		}

		col.Nullable = !notNull
		switch identity {
		case "a":
			col.Identity = "ALWAYS"
		case "d":
			col.Identity = "BY DEFAULT"
		}
		if generated == "s" {
			col.Generated = "ALWAYS"
		} else if def.Valid {
			col.Default = &def.String
		}
		col.Ordinal = len(obj.Columns) + 1
		obj.Columns = append(obj.Columns, col)
		return nil
	})
}

func (i *Introspector) constraints(ctx context.Context, b *builder) error {
	q := psql.Select(
		"n.nspname",
		"c.relname",
		"con.contype::text",
		"a.attname",
		"fn.nspname",
		"fc.relname",
		"fa.attname",
	).
		From("pg_constraint con").
		Join("pg_class c ON c.oid = con.conrelid").
		Join("pg_namespace n ON n.oid = c.relnamespace").
		JoinClause("CROSS JOIN LATERAL unnest(con.conkey) WITH ORDINALITY AS k(attnum, ord)").
		Join("pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum").
		LeftJoin("pg_class fc ON fc.oid = con.confrelid").
		LeftJoin("pg_namespace fn ON fn.oid = fc.relnamespace").
		LeftJoin("pg_attribute fa ON fa.attrelid = con.confrelid AND fa.attnum = con.confkey[k.ord]").
		Where("con.contype IN ('p', 'f')").
		Where(sq.Eq{"n.nspname": b.schemas}).
		OrderBy("n.nspname", "c.relname", "con.conname", "k.ord")

	return i.query(ctx, q, func(rows *sql.Rows) error {
		var (
			schemaName, relName, contype, column string
			refSchema, refTable, refColumn       sql.NullString
		)
		if err := rows.Scan(&schemaName, &relName, &contype, &column, &refSchema, &refTable, &refColumn); err != nil {
			return err
		}

		obj := b.relation(schemaName, relName)
		if obj == nil {
			return nil
		}
		col := obj.Column(column)
		if col == nil {
			return nil
		}

		switch contype {
		case "p":
			col.PrimaryKey = true
		case "f":
			if refSchema.Valid && refTable.Valid && refColumn.Valid {
				col.References = append(col.References, schema.ColumnRef{
					Schema: refSchema.String,
					Table:  refTable.String,
					Column: refColumn.String,
				})
			}
		}
		return nil
	})
}

func (i *Introspector) enums(ctx context.Context, b *builder) error {
	q := psql.Select(
		"n.nspname",
		"t.typname",
		"COALESCE(obj_description(t.oid, 'pg_type'), '')",
		"e.enumlabel",
	).
		From("pg_type t").
		Join("pg_namespace n ON n.oid = t.typnamespace").
		Join("pg_enum e ON e.enumtypid = t.oid").
		Where(sq.Eq{"n.nspname": b.schemas}).
		OrderBy("n.nspname", "t.typname", "e.enumsortorder")

	return i.query(ctx, q, func(rows *sql.Rows) error {
		var schemaName, name, comment, label string
		if err := rows.Scan(&schemaName, &name, &comment, &label); err != nil {
			return err
		}

		obj := b.objects[objectKey{schemaName, name}]
		if obj == nil {
			obj = &schema.Object{Schema: schemaName, Name: name, Kind: schema.KindEnum, Comment: comment}
			b.add(obj)
		}
		obj.Values = append(obj.Values, label)
		return nil
	})
}

func (i *Introspector) ranges(ctx context.Context, b *builder) error {
	q := psql.Select(
		"n.nspname",
		"t.typname",
		"COALESCE(obj_description(t.oid, 'pg_type'), '')",
		"sn.nspname || '.' || st.typname",
	).
		From("pg_range r").
		Join("pg_type t ON t.oid = r.rngtypid").
		Join("pg_namespace n ON n.oid = t.typnamespace").
		Join("pg_type st ON st.oid = r.rngsubtype").
		Join("pg_namespace sn ON sn.oid = st.typnamespace").
		Where(sq.Eq{"n.nspname": b.schemas}).
		OrderBy("n.nspname", "t.typname")

	return i.query(ctx, q, func(rows *sql.Rows) error {
		obj := &schema.Object{Kind: schema.KindRange}
		if err := rows.Scan(&obj.Schema, &obj.Name, &obj.Comment, &obj.Subtype); err != nil {
			return err
		}
		b.add(obj)
		return nil
	})
}

func (i *Introspector) domains(ctx context.Context, b *builder) error {
	q := psql.Select(
		"n.nspname",
		"t.typname",
		"COALESCE(obj_description(t.oid, 'pg_type'), '')",
		"en.nspname || '.' || et.typname",
		"CASE WHEN bt.typcategory = 'A' THEN GREATEST(t.typndims, 1) ELSE 0 END",
	).
		From("pg_type t").
		Join("pg_namespace n ON n.oid = t.typnamespace").
		Join("pg_type bt ON bt.oid = t.typbasetype").
		Join("pg_type et ON et.oid = CASE WHEN bt.typcategory = 'A' THEN bt.typelem ELSE bt.oid END").
		Join("pg_namespace en ON en.oid = et.typnamespace").
		Where("t.typtype = 'd'").
		Where(sq.Eq{"n.nspname": b.schemas}).
		OrderBy("n.nspname", "t.typname")

	return i.query(ctx, q, func(rows *sql.Rows) error {
		obj := &schema.Object{Kind: schema.KindDomain}
		if err := rows.Scan(&obj.Schema, &obj.Name, &obj.Comment, &obj.BaseType, &obj.BaseDimensions); err != nil {
			return err
		}
		b.add(obj)
		return nil
	})
}

// viewSources links view and materialized view columns to the base
// columns they expose. The rewrite rule of a view only records which base
// columns it uses, so a view column is linked when exactly one used base
// column carries the same name.
func (i *Introspector) viewSources(ctx context.Context, b *builder) error {
	q := psql.Select(
		"vn.nspname",
		"v.relname",
		"tn.nspname",
		"t.relname",
		"a.attname",
	).
		Distinct().
		From("pg_depend d").
		Join("pg_rewrite r ON r.oid = d.objid").
		Join("pg_class v ON v.oid = r.ev_class").
		Join("pg_namespace vn ON vn.oid = v.relnamespace").
		Join("pg_class t ON t.oid = d.refobjid").
		Join("pg_namespace tn ON tn.oid = t.relnamespace").
		Join("pg_attribute a ON a.attrelid = d.refobjid AND a.attnum = d.refobjsubid").
		Where("d.classid = 'pg_rewrite'::regclass").
		Where("d.refclassid = 'pg_class'::regclass").
		Where("d.refobjsubid > 0").
		Where("v.relkind IN ('v', 'm')").
		Where("t.oid <> v.oid").
		Where(sq.Eq{"vn.nspname": b.schemas}).
		OrderBy("vn.nspname", "v.relname", "tn.nspname", "t.relname", "a.attname")

	used := make(map[objectKey][]schema.ColumnRef)
	err := i.query(ctx, q, func(rows *sql.Rows) error {
		var view objectKey
		var ref schema.ColumnRef
		if err := rows.Scan(&view.schema, &view.name, &ref.Schema, &ref.Table, &ref.Column); err != nil {
			return err
		}
		used[view] = append(used[view], ref)
		return nil
	})
	if err != nil {
		return err
	}

	for key, refs := range used {
		view := b.relation(key.schema, key.name)
		if view == nil || (view.Kind != schema.KindView && view.Kind != schema.KindMaterializedView) {
			continue
		}
		for c := range view.Columns {
			col := &view.Columns[c]
			var match *schema.ColumnRef
			for r := range refs {
				if refs[r].Column != col.Name {
					continue
				}
				if match != nil {
					match = nil
					break
				}
				match = &refs[r]
			}
			if match != nil {
				src := *match
				col.Source = &src
			}
		}
	}
	return nil
}
