package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSession 记录迁移步骤调用的 Session 实现
type recordingSession struct {
	calls   []string
	columns map[string][]string
	version int
	failOn  string
}

func newRecordingSession() *recordingSession {
	return &recordingSession{columns: map[string][]string{}}
}

func (s *recordingSession) record(call string) error {
	s.calls = append(s.calls, call)
	if s.failOn != "" && call == s.failOn {
		return errors.New("injected failure")
	}
	return nil
}

func (s *recordingSession) TableNames() ([]string, error) {
	names := make([]string, 0, len(s.columns))
	for n := range s.columns {
		names = append(names, n)
	}
	return names, nil
}

func (s *recordingSession) ColumnNames(table string) ([]string, error) {
	return s.columns[table], nil
}

func (s *recordingSession) AddColumn(table, columnSQL string) error {
	return s.record("add_column " + table + " " + columnSQL)
}

func (s *recordingSession) RemoveTable(table string) error {
	return s.record("remove_table " + table)
}

func (s *recordingSession) AddTable(table, columnsSQL string) error {
	return s.record("add_table " + table)
}

func (s *recordingSession) RecreateTable(table, columnsSQL string) error {
	return s.record("recreate_table " + table)
}

func (s *recordingSession) RecreateTableRenaming(table, columnsSQL string, renames map[string]string) error {
	return s.record("recreate_table_renaming " + table)
}

func (s *recordingSession) Exec(query string, args ...interface{}) error {
	return s.record(query)
}

func (s *recordingSession) SetDatabaseVersion(version int) error {
	s.version = version
	return s.record("set_version")
}

func TestColumn_SQL(t *testing.T) {
	assert.Equal(t, "dummy TEXT ", Column{Name: "dummy", Type: "TEXT"}.SQL())
	assert.Equal(t, "pindex TEXT UNIQUE NOT NULL", text("pindex", "UNIQUE NOT NULL").SQL())
}

func TestColumn_Default(t *testing.T) {
	def, ok := textDefault("colour").Default()
	assert.True(t, ok)
	assert.Equal(t, "''", def)

	def, ok = Column{Name: "speed", Type: "REAL", Constraints: "DEFAULT 0.0"}.Default()
	assert.True(t, ok)
	assert.Equal(t, "0.0", def)

	_, ok = text("band", "NOT NULL").Default()
	assert.False(t, ok)
	_, ok = pk("Pigeonskey").Default()
	assert.False(t, ok)
}

func TestIndex_SQL(t *testing.T) {
	idx := Index{Name: "date_racepoint", Table: TableResults, Columns: []string{"date", "point"}}
	assert.Equal(t, "CREATE INDEX IF NOT EXISTS date_racepoint ON Results (date, point)", idx.SQL())
}

func TestBuiltin_Versions(t *testing.T) {
	reg := Builtin()
	assert.Equal(t, 2, reg.Latest())

	v1Tables, err := reg.TableNames(1)
	require.NoError(t, err)
	assert.Len(t, v1Tables, 21)
	assert.NotContains(t, v1Tables, TableWidow)
	assert.Contains(t, v1Tables, TableUpgradeDummy)

	v2Tables, err := reg.TableNames(2)
	require.NoError(t, err)
	assert.Len(t, v2Tables, 22)
	assert.Contains(t, v2Tables, TableWidow)

	_, err = reg.TableNames(3)
	assert.ErrorIs(t, err, ErrUnknownVersion)
}

func TestRegistry_ColumnNames(t *testing.T) {
	reg := Builtin()

	cols, err := reg.ColumnNames(1, TableResults)
	require.NoError(t, err)
	assert.Contains(t, cols, "put")
	assert.NotContains(t, cols, "speed")

	cols, err = reg.ColumnNames(2, TableResults)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Resultkey", "pindex", "date", "point", "place", "out", "speed", "sector", "type",
		"category", "wind", "windspeed", "weather", "temperature", "ownplace", "ownout", "comment",
	}, cols)

	_, err = reg.ColumnNames(1, TableWidow)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTable)
	var unknown *UnknownTableError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, 1, unknown.Version)
	assert.Equal(t, TableWidow, unknown.Table)
}

func TestRegistry_ColumnsSQL(t *testing.T) {
	reg := Builtin()

	sql, err := reg.ColumnsSQL(2, TableUpgradeDummy)
	require.NoError(t, err)
	assert.Equal(t, "dummy TEXT ", sql)

	sql, err = reg.ColumnsSQL(2, TableColours)
	require.NoError(t, err)
	assert.Equal(t, "Colourkey INTEGER PRIMARY KEY, colour TEXT UNIQUE NOT NULL", sql)

	sql, err = reg.ColumnsSQL(2, TableWidow)
	require.NoError(t, err)
	assert.Equal(t, "Widowkey INTEGER PRIMARY KEY, pindex TEXT NOT NULL, partner TEXT DEFAULT '', info TEXT DEFAULT ''", sql)

	// 重复调用结果一致，且不依赖其他版本
	for _, n := range []int{1, 2} {
		names, err := reg.TableNames(n)
		require.NoError(t, err)
		for _, table := range names {
			first, err := reg.ColumnsSQL(n, table)
			require.NoError(t, err)
			second, err := Builtin().ColumnsSQL(n, table)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		}
	}

	_, err = reg.ColumnsSQL(2, "Events")
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestRegistry_ColumnSQL(t *testing.T) {
	reg := Builtin()
	sql, err := reg.ColumnSQL(2, TableRacepoints, "unit")
	require.NoError(t, err)
	assert.Equal(t, "unit INTEGER DEFAULT 0", sql)

	_, err = reg.ColumnSQL(2, TableRacepoints, "nope")
	assert.Error(t, err)
}

func TestNewRegistry_Validation(t *testing.T) {
	step := StepFunc(func(Session) error { return nil })
	table := &Table{Name: "t", Columns: []Column{pk("id")}}

	_, err := NewRegistry()
	assert.ErrorIs(t, err, ErrInvalidRegistry)

	// 最低版本可以没有迁移步骤
	_, err = NewRegistry(&Version{Number: 1, Tables: []*Table{table}})
	assert.NoError(t, err)

	_, err = NewRegistry(&Version{Number: 2, Step: step})
	assert.ErrorIs(t, err, ErrInvalidRegistry, "chain must start at 1")

	_, err = NewRegistry(&Version{Number: 1, Step: step}, &Version{Number: 3, Step: step})
	assert.ErrorIs(t, err, ErrInvalidRegistry, "chain must be gapless")

	_, err = NewRegistry(&Version{Number: 1, Step: step}, &Version{Number: 2})
	assert.ErrorIs(t, err, ErrInvalidRegistry, "every version above the lowest needs a step")

	_, err = NewRegistry(&Version{Number: 1, Tables: []*Table{table, table}})
	assert.ErrorIs(t, err, ErrInvalidRegistry, "duplicate table")

	_, err = NewRegistry(&Version{Number: 1, Indexes: []Index{{Name: "i", Table: "missing", Columns: []string{"a"}}}})
	assert.ErrorIs(t, err, ErrInvalidRegistry, "index on unknown table")

	assert.Panics(t, func() { MustNewRegistry() })
}

func TestRegistry_Step(t *testing.T) {
	reg := MustNewRegistry(&Version{Number: 1})
	_, err := reg.Step(1)
	assert.ErrorIs(t, err, ErrUnknownVersion)

	step, err := Builtin().Step(2)
	require.NoError(t, err)
	assert.NotNil(t, step)
}

func TestRegistry_CreateNew(t *testing.T) {
	reg := Builtin()
	s := newRecordingSession()

	require.NoError(t, reg.CreateNew(s, 2))
	assert.Equal(t, 2, s.version)
	// 22 张表 + 2 个索引 + 写入版本号
	require.Len(t, s.calls, 25)
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS upgrade_dummy (dummy TEXT )", s.calls[0])
	assert.Equal(t, "CREATE INDEX IF NOT EXISTS pindex_pigeons ON Pigeons (pindex)", s.calls[22])
	assert.Equal(t, "set_version", s.calls[24])
}

func TestMigrateTo2(t *testing.T) {
	step, err := Builtin().Step(2)
	require.NoError(t, err)

	s := newRecordingSession()
	require.NoError(t, step.Apply(s))
	assert.Equal(t, []string{
		"recreate_table Results",
		"add_table Widow",
		"CREATE INDEX IF NOT EXISTS pindex_pigeons ON Pigeons (pindex)",
		"CREATE INDEX IF NOT EXISTS date_racepoint ON Results (date, point)",
	}, s.calls)

	s = newRecordingSession()
	s.failOn = "add_table Widow"
	assert.Error(t, step.Apply(s))
}

func TestMigrateTo1(t *testing.T) {
	step, err := Builtin().Step(1)
	require.NoError(t, err)

	s := newRecordingSession()
	s.columns[TablePigeons] = []string{"Pigeonskey", "pindex", "alive"}
	s.columns[TableAddresses] = []string{"Addresskey", "name"}
	s.columns[TableRacepoints] = []string{"Racepointkey", "racepoint", "unit"}

	require.NoError(t, step.Apply(s))
	assert.Contains(t, s.calls, "recreate_table_renaming Pigeons")
	assert.Contains(t, s.calls, "add_column Addresses latitude TEXT DEFAULT ''")
	assert.Contains(t, s.calls, "add_column Addresses longitude TEXT DEFAULT ''")
	assert.NotContains(t, s.calls, "add_column Racepoints unit INTEGER DEFAULT 0")
	assert.Contains(t, s.calls, "remove_table Version")
	assert.Contains(t, s.calls, "remove_table Events")
	assert.Contains(t, s.calls, "UPDATE Pigeons SET sex=CAST(sex AS integer)")
	assert.Contains(t, s.calls, `UPDATE Results SET "put"='' WHERE "put" IS NULL`)
	assert.Contains(t, s.calls, `UPDATE Pigeons SET "show"=1 WHERE "show" IS NULL`)
	assert.Equal(t, "CREATE INDEX IF NOT EXISTS date_racepoint ON Results (date, point)", s.calls[len(s.calls)-1])
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"end"`, QuoteIdent("end"))
	assert.Equal(t, `"a""b"`, QuoteIdent(`a"b`))
}
