//nolint:gochecknoglobals
package mysql_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/adapter/mysql"
	"github.com/root-talis/kaizou/internal/adaptertest"
	"github.com/root-talis/kaizou/schema"
)

func newAdapter(t *testing.T, exec *adaptertest.Executor) *mysql.Adapter {
	t.Helper()

	a, err := mysql.New(adapter.Options{Name: "app", Executor: exec})
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

var sqlTypeTests = []struct {
	name     string
	typ      schema.ColumnType
	limit    int
	expected string
}{
	/* s0 */ {name: "test s0: string defaults to varchar(255)", typ: schema.TypeString, expected: "varchar(255)"},
	/* s1 */ {name: "test s1: string keeps its limit", typ: schema.TypeString, limit: 30, expected: "varchar(30)"},
	/* s2 */ {name: "test s2: TEXT_LONG selects longtext", typ: schema.TypeText, limit: mysql.TextLong, expected: "longtext"},
	/* s3 */ {name: "test s3: TEXT_MEDIUM selects mediumtext", typ: schema.TypeText, limit: mysql.TextMedium, expected: "mediumtext"},
	/* s4 */ {name: "test s4: TEXT_TINY selects tinytext", typ: schema.TypeText, limit: mysql.TextTiny, expected: "tinytext"},
	/* s5 */ {name: "test s5: INT_BIG selects bigint", typ: schema.TypeInteger, limit: mysql.IntBig, expected: "bigint"},
	/* s6 */ {name: "test s6: INT_MEDIUM selects mediumint", typ: schema.TypeInteger, limit: mysql.IntMedium, expected: "mediumint"},
	/* s7 */ {name: "test s7: other integer limits are display widths", typ: schema.TypeInteger, limit: 11, expected: "int(11)"},
	/* s8 */ {name: "test s8: boolean ignores limits", typ: schema.TypeBoolean, limit: 5, expected: "tinyint(1)"},
	/* s9 */ {name: "test s9: uuid is char(36)", typ: schema.TypeUUID, expected: "char(36)"},
	/* s10 */ {name: "test s10: literal types pass through", typ: schema.LiteralType("geometry"), expected: "geometry"},
}

func TestGetSQLType(t *testing.T) {
	t.Parallel()

	a := newAdapter(t, adaptertest.New())
	for _, test := range sqlTypeTests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			sqlType, err := a.GetSQLType(test.typ, test.limit)
			require.NoError(t, err)
			assert.Equal(t, test.expected, sqlType.String())
		})
	}
}

func TestGetColumnType(t *testing.T) {
	t.Parallel()

	a := newAdapter(t, adaptertest.New())

	tests := map[string]schema.ColumnType{
		"int(11) unsigned": schema.TypeInteger,
		"INT(11)":          schema.TypeInteger,
		"tinyint(1)":       schema.TypeBoolean,
		"tinyint(4)":       schema.TypeTinyInteger,
		"char(36)":         schema.TypeUUID,
		"char(2)":          schema.TypeChar,
		"binary(16)":       schema.TypeBinaryUUID,
		"decimal(10, 2)":   schema.TypeDecimal,
		"longtext":         schema.TypeText,
		"varchar(100)":     schema.TypeString,
	}
	for native, expected := range tests {
		actual, err := a.GetColumnType(native)
		assert.NoError(t, err, native)
		assert.Equal(t, expected, actual, native)
	}

	_, err := a.GetColumnType("geometry")
	var typeErr *adapter.UnsupportedTypeError
	assert.ErrorAs(t, err, &typeErr)
}

func TestCreateTable(t *testing.T) {
	t.Parallel()

	exec := adaptertest.New()
	a := newAdapter(t, exec)

	email := &schema.Column{Name: "email", Type: schema.TypeString, Limit: 100, Signed: true}
	score := &schema.Column{Name: "score", Type: schema.TypeDecimal, Precision: 5, Scale: 2, Null: true, Default: 1.5, Signed: true}
	unique, err := schema.NewIndex([]string{"email"}, schema.Options{"unique": true})
	require.NoError(t, err)

	table := schema.NewTable("users", schema.Options{"comment": "all users"})
	err = a.CreateTable(context.Background(), table, []*schema.Column{email, score}, []*schema.Index{unique})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"BEGIN",
		"CREATE TABLE `users` (`id` int NOT NULL AUTO_INCREMENT, `email` varchar(100) NOT NULL, " +
			"`score` decimal(5,2) NULL DEFAULT 1.5, PRIMARY KEY (`id`), UNIQUE KEY (`email`)) " +
			"ENGINE = InnoDB CHARACTER SET utf8mb4 COMMENT='all users'",
		"COMMIT",
	}, exec.Log)
}

func TestCreateTableWithoutID(t *testing.T) {
	t.Parallel()

	exec := adaptertest.New()
	a := newAdapter(t, exec)

	code := &schema.Column{Name: "code", Type: schema.TypeChar, Limit: 2}
	table := schema.NewTable("countries", schema.Options{"id": false, "primary_key": "code"})
	require.NoError(t, a.CreateTable(context.Background(), table, []*schema.Column{code}, nil))

	assert.Equal(t,
		"CREATE TABLE `countries` (`code` char(2) NOT NULL, PRIMARY KEY (`code`)) ENGINE = InnoDB CHARACTER SET utf8mb4",
		exec.Statements[0])
}

func TestExecuteActionsMergesAlterations(t *testing.T) {
	t.Parallel()

	exec := adaptertest.New()
	a := newAdapter(t, exec)
	table := schema.NewTable("users", nil)

	age := &schema.Column{Name: "age", Type: schema.TypeInteger, Null: true, After: "email", Signed: true}
	idx, err := schema.NewIndex([]string{"age"}, schema.Options{"name": "users_age"})
	require.NoError(t, err)

	err = a.ExecuteActions(context.Background(), table, []schema.Action{
		schema.NewAddColumn(table, age),
		schema.NewRemoveColumn(table, &schema.Column{Name: "legacy"}),
		schema.NewAddIndex(table, idx),
		schema.NewDropTable(schema.NewTable("users_old", nil)),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"BEGIN",
		"ALTER TABLE `users` ADD `age` int NULL AFTER `email`, DROP COLUMN `legacy`, ADD KEY `users_age` (`age`)",
		"DROP TABLE `users_old`",
		"COMMIT",
	}, exec.Log)
}

func TestRenameColumnKeepsDefinition(t *testing.T) {
	t.Parallel()

	exec := adaptertest.New().OnQuery("SHOW FULL COLUMNS FROM `users`",
		adapter.Row{"Field": "id", "Type": "int(11)", "Null": "NO", "Extra": "auto_increment"},
		adapter.Row{"Field": "mail", "Type": "varchar(100)", "Null": "YES", "Default": "none", "Comment": "address"},
	)
	a := newAdapter(t, exec)
	table := schema.NewTable("users", nil)

	err := a.ExecuteActions(context.Background(), table, []schema.Action{
		schema.NewRenameColumn(table, &schema.Column{Name: "mail"}, "email"),
	})
	require.NoError(t, err)
	assert.Equal(t,
		"ALTER TABLE `users` CHANGE COLUMN `mail` `email` varchar(100) NULL DEFAULT 'none' COMMENT 'address'",
		exec.Statements[0])

	err = a.ExecuteActions(context.Background(), table, []schema.Action{
		schema.NewRenameColumn(table, &schema.Column{Name: "missing"}, "other"),
	})
	assert.ErrorIs(t, err, adapter.ErrColumnNotFound)
}

var fkRows = []adapter.Row{
	{"CONSTRAINT_NAME": "posts_user_fk", "COLUMN_NAME": "user_id", "REFERENCED_TABLE_NAME": "users", "REFERENCED_COLUMN_NAME": "id"},
	{"CONSTRAINT_NAME": "posts_pair_fk", "COLUMN_NAME": "a", "REFERENCED_TABLE_NAME": "pairs", "REFERENCED_COLUMN_NAME": "x"},
	{"CONSTRAINT_NAME": "posts_pair_fk", "COLUMN_NAME": "b", "REFERENCED_TABLE_NAME": "pairs", "REFERENCED_COLUMN_NAME": "y"},
}

func TestForeignKeys(t *testing.T) {
	t.Parallel()

	exec := adaptertest.New().OnQuery("KEY_COLUMN_USAGE", fkRows...)
	a := newAdapter(t, exec)
	ctx := context.Background()

	found, err := a.HasForeignKey(ctx, "posts", []string{"a", "b"}, "")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = a.HasForeignKey(ctx, "posts", []string{"b", "a"}, "")
	require.NoError(t, err)
	assert.False(t, found, "column order matters")

	found, err = a.HasForeignKey(ctx, "posts", []string{"USER_ID"}, "")
	require.NoError(t, err)
	assert.False(t, found, "column case matters")

	found, err = a.HasForeignKey(ctx, "posts", nil, "posts_user_fk")
	require.NoError(t, err)
	assert.True(t, found, "a constraint name alone matches by name")

	table := schema.NewTable("posts", nil)
	require.NoError(t, a.ExecuteActions(ctx, table, []schema.Action{
		schema.NewDropForeignKey(table, []string{"a", "b"}, ""),
	}))
	assert.Equal(t, "ALTER TABLE `posts` DROP FOREIGN KEY `posts_pair_fk`", exec.Statements[0])

	err = a.ExecuteActions(ctx, table, []schema.Action{
		schema.NewDropForeignKey(table, []string{"nope"}, ""),
	})
	assert.ErrorIs(t, err, adapter.ErrForeignKeyNotFound)
}

func TestAddForeignKey(t *testing.T) {
	t.Parallel()

	exec := adaptertest.New()
	a := newAdapter(t, exec)
	table := schema.NewTable("posts", nil)

	fk, err := schema.NewForeignKey([]string{"user_id"}, schema.NewTable("users", nil), nil,
		schema.Options{"delete": "cascade", "update": "no_action", "constraint": "posts_user_fk"})
	require.NoError(t, err)

	require.NoError(t, a.ExecuteActions(context.Background(), table, []schema.Action{
		schema.NewAddForeignKey(table, fk),
	}))
	assert.Equal(t,
		"ALTER TABLE `posts` ADD CONSTRAINT `posts_user_fk` FOREIGN KEY (`user_id`) REFERENCES `users` (`id`) "+
			"ON DELETE CASCADE ON UPDATE NO ACTION",
		exec.Statements[0])
}

func TestIndexes(t *testing.T) {
	t.Parallel()

	exec := adaptertest.New().OnQuery("SHOW INDEXES FROM `users`",
		adapter.Row{"Key_name": "PRIMARY", "Column_name": "id", "Non_unique": int64(0)},
		adapter.Row{"Key_name": "users_name", "Column_name": "last", "Non_unique": int64(1)},
		adapter.Row{"Key_name": "users_name", "Column_name": "first", "Non_unique": int64(1)},
	)
	a := newAdapter(t, exec)
	ctx := context.Background()

	found, err := a.HasIndex(ctx, "users", []string{"last", "first"})
	require.NoError(t, err)
	assert.True(t, found)

	found, err = a.HasIndex(ctx, "users", []string{"first", "last"})
	require.NoError(t, err)
	assert.False(t, found)

	found, err = a.HasPrimaryKey(ctx, "users", []string{"id"}, "")
	require.NoError(t, err)
	assert.True(t, found)

	table := schema.NewTable("users", nil)
	require.NoError(t, a.ExecuteActions(ctx, table, []schema.Action{
		schema.NewDropIndex(table, &schema.Index{Columns: []string{"last", "first"}}),
		schema.NewDropIndexByName(table, "PRIMARY"),
	}))
	assert.Equal(t, "ALTER TABLE `users` DROP INDEX `users_name`, DROP INDEX `PRIMARY`", exec.Statements[0])

	err = a.ExecuteActions(ctx, table, []schema.Action{schema.NewDropIndexByName(table, "nope")})
	assert.ErrorIs(t, err, adapter.ErrIndexNotFound)
}

func TestQuoting(t *testing.T) {
	t.Parallel()

	a := newAdapter(t, adaptertest.New())
	assert.Equal(t, "`app`.`users`", a.QuoteTableName("app.users"))
	assert.Equal(t, "`we``ird`", a.QuoteColumnName("we`ird"))
	assert.Equal(t, `'it\'s \"quoted\"\n'`, a.QuoteString("it's \"quoted\"\n"))
}

func TestDSN(t *testing.T) {
	t.Parallel()

	a, err := mysql.New(adapter.Options{
		Host: "db", Port: 3307, Name: "app", User: "root", Pass: "secret", Charset: "utf8",
	})
	require.NoError(t, err)

	dsn, err := a.DSN()
	require.NoError(t, err)
	assert.Contains(t, dsn, "root:secret@tcp(db:3307)/app?")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "multiStatements=true")
	assert.Contains(t, dsn, "charset=utf8")
}

func TestDryRunWritesStatements(t *testing.T) {
	t.Parallel()

	exec := adaptertest.New()
	out := &bytes.Buffer{}
	a, err := mysql.New(adapter.Options{Name: "app", Executor: exec, DryRun: true, Output: out})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.BeginTransaction(ctx))
	_, err = a.Execute(ctx, "DELETE FROM `users`;;")
	require.NoError(t, err)
	require.NoError(t, a.CommitTransaction(ctx))

	assert.Equal(t, "DELETE FROM `users`;\n", out.String())
	assert.Empty(t, exec.Log)
}

func TestUnsupportedTypeFailsTheTable(t *testing.T) {
	t.Parallel()

	exec := adaptertest.New()
	a := newAdapter(t, exec)

	err := a.CreateTable(context.Background(), schema.NewTable("t", nil),
		[]*schema.Column{{Name: "x", Type: schema.TypeInterval}}, nil)

	var typeErr *adapter.UnsupportedTypeError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, "interval", typeErr.Type)
	assert.Empty(t, exec.Log)
}
