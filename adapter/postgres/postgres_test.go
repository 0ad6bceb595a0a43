//nolint:gochecknoglobals
package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/adapter/postgres"
	"github.com/root-talis/kaizou/internal/adaptertest"
	"github.com/root-talis/kaizou/schema"
)

func newAdapter(t *testing.T, exec *adaptertest.Executor) *postgres.Adapter {
	t.Helper()

	a, err := postgres.New(adapter.Options{Name: "app", Executor: exec})
	require.NoError(t, err)
	return a
}

func TestTypesRoundTrip(t *testing.T) {
	t.Parallel()

	a := newAdapter(t, adaptertest.New())
	for _, typ := range a.ColumnTypes() {
		sqlType, err := a.GetSQLType(typ, 0)
		require.NoError(t, err, typ)

		back, err := a.GetColumnType(sqlType.String())
		require.NoError(t, err, typ)
		assert.Equal(t, typ, back, "round trip through %q", sqlType.String())
	}
}

func TestAliasesAreNotReported(t *testing.T) {
	t.Parallel()

	a := newAdapter(t, adaptertest.New())
	types := a.ColumnTypes()

	for _, alias := range []schema.ColumnType{schema.TypeDatetime, schema.TypeTinyInteger, schema.TypeBlob, schema.TypeBinaryUUID} {
		assert.NotContains(t, types, alias)

		_, err := a.GetSQLType(alias, 0)
		assert.NoError(t, err, "%s is still accepted", alias)
	}

	datetime, err := a.GetSQLType(schema.TypeDatetime, 0)
	require.NoError(t, err)
	back, err := a.GetColumnType(datetime.String())
	require.NoError(t, err)
	assert.Equal(t, schema.TypeTimestamp, back)
}

func TestGetColumnType(t *testing.T) {
	t.Parallel()

	a := newAdapter(t, adaptertest.New())

	tests := map[string]schema.ColumnType{
		"character varying":           schema.TypeString,
		"character varying(40)":       schema.TypeString,
		"timestamp without time zone": schema.TypeTimestamp,
		"int4":                        schema.TypeInteger,
		"numeric(10,2)":               schema.TypeDecimal,
		"bytea":                       schema.TypeBinary,
	}
	for native, expected := range tests {
		actual, err := a.GetColumnType(native)
		assert.NoError(t, err, native)
		assert.Equal(t, expected, actual, native)
	}

	_, err := a.GetColumnType("tsvector")
	var typeErr *adapter.UnsupportedTypeError
	assert.ErrorAs(t, err, &typeErr)
}

func TestCreateTable(t *testing.T) {
	t.Parallel()

	exec := adaptertest.New()
	a := newAdapter(t, exec)

	email := &schema.Column{Name: "email", Type: schema.TypeString, Limit: 100, Comment: "login"}
	created := &schema.Column{Name: "created_at", Type: schema.TypeTimestamp, Timezone: true, Default: schema.Literal("CURRENT_TIMESTAMP")}
	idx, err := schema.NewIndex([]string{"email"}, schema.Options{"unique": true})
	require.NoError(t, err)

	table := schema.NewTable("users", schema.Options{"comment": "people"})
	require.NoError(t, a.CreateTable(context.Background(), table, []*schema.Column{email, created}, []*schema.Index{idx}))

	assert.Equal(t, []string{
		"BEGIN",
		`CREATE TABLE "users" ("id" SERIAL NOT NULL, "email" character varying(100) NOT NULL, ` +
			`"created_at" timestamp with time zone NOT NULL DEFAULT CURRENT_TIMESTAMP, ` +
			`CONSTRAINT "users_pkey" PRIMARY KEY ("id"))`,
		`COMMENT ON TABLE "users" IS 'people'`,
		`COMMENT ON COLUMN "users"."email" IS 'login'`,
		`CREATE UNIQUE INDEX "users_email" ON "users" ("email")`,
		"COMMIT",
	}, exec.Log)
}

func TestExecuteActions(t *testing.T) {
	t.Parallel()

	exec := adaptertest.New().OnQuery("information_schema.columns",
		adapter.Row{"column_name": "name", "data_type": "character varying", "is_nullable": "NO"},
	)
	a := newAdapter(t, exec)
	table := schema.NewTable("users", nil)

	age := &schema.Column{Name: "age", Type: schema.TypeSmallInteger, Null: true}
	changed := &schema.Column{Name: "nick", Type: schema.TypeString, Limit: 50, Default: "anon"}

	require.NoError(t, a.ExecuteActions(context.Background(), table, []schema.Action{
		schema.NewAddColumn(table, age),
		schema.NewChangeColumn(table, "nickname", changed),
		schema.NewRenameColumn(table, &schema.Column{Name: "name"}, "full_name"),
		schema.NewRemoveColumn(table, &schema.Column{Name: "legacy"}),
	}))

	assert.Equal(t, []string{
		"BEGIN",
		`ALTER TABLE "users" ADD "age" smallint NULL, ` +
			`ALTER COLUMN "nickname" TYPE character varying(50) USING "nickname"::character varying(50), ` +
			`ALTER COLUMN "nickname" SET NOT NULL, ` +
			`ALTER COLUMN "nickname" SET DEFAULT 'anon', ` +
			`DROP COLUMN "legacy"`,
		`ALTER TABLE "users" RENAME COLUMN "nickname" TO "nick"`,
		`ALTER TABLE "users" RENAME COLUMN "name" TO "full_name"`,
		"COMMIT",
	}, exec.Log)
}

func TestRenameMissingColumn(t *testing.T) {
	t.Parallel()

	a := newAdapter(t, adaptertest.New())
	table := schema.NewTable("users", nil)

	err := a.ExecuteActions(context.Background(), table, []schema.Action{
		schema.NewRenameColumn(table, &schema.Column{Name: "ghost"}, "spirit"),
	})
	assert.ErrorIs(t, err, adapter.ErrColumnNotFound)
}

func TestForeignKeysAndIndexes(t *testing.T) {
	t.Parallel()

	exec := adaptertest.New().
		OnQuery("pg_constraint",
			adapter.Row{"constraint_name": "posts_user_id_fkey", "column_name": "user_id",
				"referenced_table_name": "users", "referenced_column_name": "id"},
		).
		OnQuery("pg_index",
			adapter.Row{"index_name": "posts_pkey", "column_name": "id", "is_unique": true},
			adapter.Row{"index_name": "posts_user_id_created", "column_name": "user_id", "is_unique": false},
			adapter.Row{"index_name": "posts_user_id_created", "column_name": "created", "is_unique": false},
		)
	a := newAdapter(t, exec)
	ctx := context.Background()
	table := schema.NewTable("posts", nil)

	fk, err := schema.NewForeignKey([]string{"author_id"}, schema.NewTable("users", nil), nil, schema.Options{"delete": "SET_NULL"})
	require.NoError(t, err)

	require.NoError(t, a.ExecuteActions(ctx, table, []schema.Action{
		schema.NewDropForeignKey(table, []string{"user_id"}, ""),
		schema.NewAddForeignKey(table, fk),
		schema.NewDropIndex(table, &schema.Index{Columns: []string{"user_id", "created"}}),
	}))

	assert.Equal(t, []string{
		"BEGIN",
		`ALTER TABLE "posts" DROP CONSTRAINT "posts_user_id_fkey", ` +
			`ADD CONSTRAINT "posts_author_id_fkey" FOREIGN KEY ("author_id") REFERENCES "users" ("id") ON DELETE SET NULL`,
		`DROP INDEX IF EXISTS "public"."posts_user_id_created"`,
		"COMMIT",
	}, exec.Log)

	found, err := a.HasForeignKey(ctx, "posts", []string{"User_Id"}, "")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRenameTable(t *testing.T) {
	t.Parallel()

	exec := adaptertest.New()
	a := newAdapter(t, exec)
	table := schema.NewTable("crm.users", nil)

	require.NoError(t, a.ExecuteActions(context.Background(), table, []schema.Action{
		schema.NewRenameTable(table, "crm.people"),
	}))
	assert.Equal(t, `ALTER TABLE "crm"."users" RENAME TO "people"`, exec.Statements[0])
}

func TestForeignKeysFromRowsCollapsesJoins(t *testing.T) {
	t.Parallel()

	rows := []adapter.Row{
		{"constraint_name": "fk", "column_name": "a", "referenced_table_name": "r", "referenced_column_name": "x"},
		{"constraint_name": "fk", "column_name": "a", "referenced_table_name": "r", "referenced_column_name": "y"},
		{"constraint_name": "fk", "column_name": "b", "referenced_table_name": "r", "referenced_column_name": "x"},
		{"constraint_name": "fk", "column_name": "b", "referenced_table_name": "r", "referenced_column_name": "y"},
	}

	fks := postgres.ForeignKeysFromRows(rows)
	require.Len(t, fks, 1)
	assert.Equal(t, []string{"a", "b"}, fks[0].Columns)
	assert.Equal(t, []string{"x", "y"}, fks[0].ReferencedColumns)
	assert.Equal(t, "r", fks[0].ReferencedTable)
}

func TestDSN(t *testing.T) {
	t.Parallel()

	a, err := postgres.New(adapter.Options{
		Host: "db", Name: "app", User: "app", Pass: "p@ss", Schema: "crm",
		Params: map[string]string{"sslmode": "disable"},
	})
	require.NoError(t, err)

	dsn, err := a.DSN()
	require.NoError(t, err)
	assert.Equal(t, "postgres://app:p%40ss@db:5432/app?search_path=crm&sslmode=disable", dsn)
}

func TestQuoting(t *testing.T) {
	t.Parallel()

	a := newAdapter(t, adaptertest.New())
	assert.Equal(t, `"public"."users"`, a.QuoteTableName("public.users"))
	assert.Equal(t, `"we""ird"`, a.QuoteColumnName(`we"ird`))
	assert.Equal(t, `'it''s'`, a.QuoteString("it's"))
}
