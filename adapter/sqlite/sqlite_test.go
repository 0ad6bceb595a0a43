//nolint:gochecknoglobals
package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/adapter/sqlite"
	"github.com/root-talis/kaizou/internal/adaptertest"
	"github.com/root-talis/kaizou/migration"
	"github.com/root-talis/kaizou/schema"
)

func newRecorded(t *testing.T, exec *adaptertest.Executor) *sqlite.Adapter {
	t.Helper()

	a, err := sqlite.New(adapter.Options{Memory: true, Executor: exec})
	require.NoError(t, err)
	return a
}

func newMemory(t *testing.T) *sqlite.Adapter {
	t.Helper()

	a, err := sqlite.New(adapter.Options{Memory: true})
	require.NoError(t, err)
	require.NoError(t, a.Connect(context.Background()))
	t.Cleanup(func() { _ = a.Disconnect() })
	return a
}

func TestTypesRoundTrip(t *testing.T) {
	t.Parallel()

	a := newRecorded(t, adaptertest.New())
	for _, typ := range a.ColumnTypes() {
		sqlType, err := a.GetSQLType(typ, 0)
		require.NoError(t, err, typ)

		back, err := a.GetColumnType(sqlType.String())
		require.NoError(t, err, typ)
		assert.Equal(t, typ, back, "round trip through %q", sqlType.String())
	}
}

func TestCreateTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		table    *schema.Table
		columns  []*schema.Column
		indexes  []*schema.Index
		expected []string
	}{
		/* s0 */ {
			name:  "test s0: should inline an integer identity key",
			table: schema.NewTable("users", nil),
			columns: []*schema.Column{
				{Name: "email", Type: schema.TypeString, Limit: 100},
				{Name: "active", Type: schema.TypeBoolean, Default: true},
			},
			indexes: []*schema.Index{{Columns: []string{"email"}, Type: schema.IndexUnique}},
			expected: []string{
				`CREATE TABLE "users" ("id" integer NOT NULL PRIMARY KEY AUTOINCREMENT, ` +
					`"email" varchar(100) NOT NULL, "active" boolean NOT NULL DEFAULT 1)`,
				`CREATE UNIQUE INDEX "users_email" ON "users" ("email")`,
			},
		},
		/* s1 */ {
			name:  "test s1: should declare a composite key as a table constraint",
			table: schema.NewTable("tags", schema.Options{"id": false, "primary_key": []string{"post_id", "tag"}}),
			columns: []*schema.Column{
				{Name: "post_id", Type: schema.TypeInteger},
				{Name: "tag", Type: schema.TypeString, Limit: 20, Null: true},
			},
			expected: []string{
				`CREATE TABLE "tags" ("post_id" integer NOT NULL, "tag" varchar(20) NULL, PRIMARY KEY ("post_id", "tag"))`,
			},
		},
	}

	for _, test := range tests {
		exec := adaptertest.New()
		a := newRecorded(t, exec)

		err := a.CreateTable(context.Background(), test.table, test.columns, test.indexes)
		require.NoError(t, err, test.name)
		assert.Equal(t, test.expected, exec.Statements, test.name)
	}
}

func TestUnsupportedAlterations(t *testing.T) {
	t.Parallel()

	users := schema.NewTable("users", nil)
	fk, err := schema.NewForeignKey([]string{"group_id"}, schema.NewTable("groups", nil), nil, nil)
	require.NoError(t, err)
	comment := "people"

	tests := []struct {
		name   string
		action schema.Action
	}{
		/* e0 */ {name: "test e0: should refuse to change a column", action: schema.NewChangeColumn(users, "email", &schema.Column{Name: "email", Type: schema.TypeText})},
		/* e1 */ {name: "test e1: should refuse to add a foreign key", action: schema.NewAddForeignKey(users, fk)},
		/* e2 */ {name: "test e2: should refuse to drop a foreign key", action: schema.NewDropForeignKey(users, []string{"group_id"}, "")},
		/* e3 */ {name: "test e3: should refuse to change the primary key", action: schema.NewChangePrimaryKey(users, []string{"email"})},
		/* e4 */ {name: "test e4: should refuse comments", action: schema.NewChangeComment(users, &comment)},
	}

	for _, test := range tests {
		exec := adaptertest.New()
		a := newRecorded(t, exec)

		err := a.ExecuteActions(context.Background(), users, []schema.Action{test.action})

		var opErr *adapter.UnsupportedOperationError
		require.ErrorAs(t, err, &opErr, test.name)
		assert.Equal(t, sqlite.Name, opErr.Adapter, test.name)
		assert.Empty(t, exec.Log, test.name)
	}
}

func TestAlterationsAreSeparateStatements(t *testing.T) {
	t.Parallel()

	exec := adaptertest.New().OnQuery("PRAGMA table_info",
		adapter.Row{"cid": int64(0), "name": "login", "type": "varchar(50)", "notnull": int64(1), "pk": int64(0)},
		adapter.Row{"cid": int64(1), "name": "age", "type": "integer", "notnull": int64(0), "pk": int64(0)},
	)
	a := newRecorded(t, exec)
	table := schema.NewTable("users", nil)

	require.NoError(t, a.ExecuteActions(context.Background(), table, []schema.Action{
		schema.NewAddColumn(table, &schema.Column{Name: "age", Type: schema.TypeInteger, Null: true}),
		schema.NewRenameColumn(table, &schema.Column{Name: "login"}, "username"),
		schema.NewAddIndex(table, &schema.Index{Columns: []string{"age"}, Type: schema.IndexPlain}),
		schema.NewRenameTable(table, "members"),
	}))

	assert.Equal(t, []string{
		"BEGIN",
		`ALTER TABLE "users" ADD COLUMN "age" integer NULL`,
		`ALTER TABLE "users" RENAME COLUMN "login" TO "username"`,
		`CREATE INDEX "users_age" ON "users" ("age")`,
		`ALTER TABLE "users" RENAME TO "members"`,
		"COMMIT",
	}, exec.Log)
}

func TestDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     adapter.Options
		expected string
		fails    bool
	}{
		/* s0 */ {name: "test s0: should append the default suffix", opts: adapter.Options{Name: "db/app"}, expected: "db/app.sqlite3"},
		/* s1 */ {name: "test s1: should keep a suffix that is already there", opts: adapter.Options{Name: "app.db", Suffix: ".db"}, expected: "app.db"},
		/* s2 */ {name: "test s2: should open memory databases", opts: adapter.Options{Memory: true}, expected: ":memory:"},
		/* s3 */ {name: "test s3: should use an explicit dsn as is", opts: adapter.Options{DSN: "file:app?mode=ro"}, expected: "file:app?mode=ro"},
		/* e0 */ {name: "test e0: should require a name", opts: adapter.Options{}, fails: true},
	}

	for _, test := range tests {
		a, err := sqlite.New(test.opts)
		require.NoError(t, err, test.name)

		dsn, err := a.DSN()
		if test.fails {
			assert.Error(t, err, test.name)
			continue
		}
		require.NoError(t, err, test.name)
		assert.Equal(t, test.expected, dsn, test.name)
	}
}

// ---

func TestLiveSchemaChanges(t *testing.T) {
	t.Parallel()

	a := newMemory(t)
	ctx := context.Background()
	users := schema.NewTable("users", nil)

	require.NoError(t, a.CreateTable(ctx, users, []*schema.Column{
		{Name: "email", Type: schema.TypeString, Limit: 100},
		{Name: "nick", Type: schema.TypeString, Limit: 30, Null: true, Default: "anon"},
		{Name: "score", Type: schema.TypeInteger, Default: 0},
	}, []*schema.Index{{Columns: []string{"email"}, Type: schema.IndexUnique}}))

	exists, err := a.HasTable(ctx, "users")
	require.NoError(t, err)
	assert.True(t, exists)

	columns, err := a.GetColumns(ctx, "users")
	require.NoError(t, err)
	require.Len(t, columns, 4)
	assert.True(t, columns[0].Identity)
	assert.Equal(t, schema.TypeString, columns[1].Type)
	assert.Equal(t, 100, columns[1].Limit)
	assert.False(t, columns[1].Null)
	assert.Equal(t, "anon", columns[2].Default)
	assert.Equal(t, int64(0), columns[3].Default)

	pk, err := a.HasPrimaryKey(ctx, "users", []string{"id"}, "")
	require.NoError(t, err)
	assert.True(t, pk)

	require.NoError(t, a.ExecuteActions(ctx, users, []schema.Action{
		schema.NewAddColumn(users, &schema.Column{Name: "bio", Type: schema.TypeText, Null: true}),
		schema.NewRenameColumn(users, &schema.Column{Name: "nick"}, "nickname"),
		schema.NewAddIndex(users, &schema.Index{Columns: []string{"nickname", "score"}, Type: schema.IndexPlain}),
	}))

	found, err := a.HasColumn(ctx, "users", "nickname")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = a.HasIndex(ctx, "users", []string{"nickname", "score"})
	require.NoError(t, err)
	assert.True(t, found)

	found, err = a.HasIndex(ctx, "users", []string{"score", "nickname"})
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, a.ExecuteActions(ctx, users, []schema.Action{
		schema.NewDropIndex(users, &schema.Index{Columns: []string{"nickname", "score"}, Type: schema.IndexPlain}),
		schema.NewRemoveColumn(users, &schema.Column{Name: "bio"}),
	}))

	found, err = a.HasIndexByName(ctx, "users", "users_nickname_score")
	require.NoError(t, err)
	assert.False(t, found)

	found, err = a.HasColumn(ctx, "users", "bio")
	require.NoError(t, err)
	assert.False(t, found)

	err = a.ExecuteActions(ctx, users, []schema.Action{
		schema.NewRenameColumn(users, &schema.Column{Name: "ghost"}, "spirit"),
	})
	assert.ErrorIs(t, err, adapter.ErrColumnNotFound)
}

func TestLiveIndexOnMissingColumn(t *testing.T) {
	t.Parallel()

	a := newMemory(t)
	ctx := context.Background()
	users := schema.NewTable("users", nil)

	require.NoError(t, a.CreateTable(ctx, users, []*schema.Column{{Name: "email", Type: schema.TypeString}}, nil))

	err := a.ExecuteActions(ctx, users, []schema.Action{
		schema.NewAddColumn(users, &schema.Column{Name: "age", Type: schema.TypeInteger, Null: true}),
		schema.NewAddIndex(users, &schema.Index{Columns: []string{"ghost"}, Type: schema.IndexPlain}),
	})
	require.ErrorIs(t, err, adapter.ErrColumnNotFound)

	found, err := a.HasColumn(ctx, "users", "age")
	require.NoError(t, err)
	assert.False(t, found, "the whole batch is rolled back")

	found, err = a.HasIndexByName(ctx, "users", "users_ghost")
	require.NoError(t, err)
	assert.False(t, found)

	err = a.CreateTable(ctx, schema.NewTable("posts", nil),
		[]*schema.Column{{Name: "title", Type: schema.TypeString}},
		[]*schema.Index{{Columns: []string{"ghost"}, Type: schema.IndexPlain}})
	require.ErrorIs(t, err, adapter.ErrColumnNotFound)

	exists, err := a.HasTable(ctx, "posts")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLiveForeignKeys(t *testing.T) {
	t.Parallel()

	a := newMemory(t)
	ctx := context.Background()

	_, err := a.Execute(ctx, `CREATE TABLE "groups" ("id" integer PRIMARY KEY AUTOINCREMENT)`)
	require.NoError(t, err)
	_, err = a.Execute(ctx, `CREATE TABLE "members" ("id" integer PRIMARY KEY AUTOINCREMENT, `+
		`"group_id" integer REFERENCES "groups" ("id") ON DELETE CASCADE)`)
	require.NoError(t, err)

	tests := []struct {
		name     string
		columns  []string
		expected bool
	}{
		/* s0 */ {name: "test s0: should find the key by its columns", columns: []string{"group_id"}, expected: true},
		/* s1 */ {name: "test s1: should compare column case exactly", columns: []string{"GROUP_ID"}, expected: false},
		/* s2 */ {name: "test s2: should not match other columns", columns: []string{"id"}, expected: false},
	}

	for _, test := range tests {
		found, err := a.HasForeignKey(ctx, "members", test.columns, "")
		require.NoError(t, err, test.name)
		assert.Equal(t, test.expected, found, test.name)
	}
}

func TestLiveVersionLog(t *testing.T) {
	t.Parallel()

	a := newMemory(t)
	ctx := context.Background()

	first := migration.Migration{Version: 20120508120534, Name: "CreateUsers"}
	second := migration.Migration{Version: 20130508120534, Name: "AddEmail"}
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	log, err := a.GetVersionLog(ctx)
	require.NoError(t, err)
	assert.Empty(t, log)

	require.NoError(t, a.Migrated(ctx, second, migration.Up, start, start.Add(time.Second)))
	require.NoError(t, a.Migrated(ctx, first, migration.Up, start.Add(time.Minute), start.Add(time.Minute)))

	versions, err := a.GetVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []migration.Version{first.Version, second.Version}, versions)

	require.NoError(t, a.ToggleBreakpoint(ctx, first))
	require.NoError(t, a.SetBreakpoint(ctx, second))

	log, err = a.GetVersionLog(ctx)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.True(t, log[0].Breakpoint)
	assert.Equal(t, "CreateUsers", log[0].Name)

	reset, err := a.ResetAllBreakpoints(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), reset)

	require.NoError(t, a.Migrated(ctx, second, migration.Down, start, start))

	versions, err = a.GetVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []migration.Version{first.Version}, versions)
}

func TestLiveVersionLogInExecutionOrder(t *testing.T) {
	t.Parallel()

	a, err := sqlite.New(adapter.Options{Memory: true, VersionOrder: "execution"})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, a.Connect(ctx))
	t.Cleanup(func() { _ = a.Disconnect() })

	first := migration.Migration{Version: 20120508120534, Name: "CreateUsers"}
	second := migration.Migration{Version: 20130508120534, Name: "AddEmail"}
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, a.Migrated(ctx, second, migration.Up, start, start.Add(time.Second)))
	require.NoError(t, a.Migrated(ctx, first, migration.Up, start.Add(time.Minute), start.Add(time.Minute)))

	versions, err := a.GetVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []migration.Version{second.Version, first.Version}, versions)
}

func TestDatabaseFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	name := filepath.Join(dir, "nested", "app")

	a, err := sqlite.New(adapter.Options{Name: name})
	require.NoError(t, err)
	ctx := context.Background()

	exists, err := a.HasDatabase(ctx, name)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, a.CreateDatabase(ctx, name))
	assert.FileExists(t, name+sqlite.DefaultSuffix)

	exists, err = a.HasDatabase(ctx, name)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, a.DropDatabase(ctx, name))
	require.NoError(t, a.DropDatabase(ctx, name))
	assert.NoFileExists(t, name+sqlite.DefaultSuffix)
}
