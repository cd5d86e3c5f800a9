package schema

import (
	"strings"
)

// Column 一列的定义：列名、声明类型、约束子句
// 约束子句为自由文本（如 "PRIMARY KEY"、"DEFAULT 空字符串"、"UNIQUE NOT NULL"），由 SQLite 解释
type Column struct {
	Name        string
	Type        string
	Constraints string
}

// SQL 返回用于 CREATE TABLE 的列定义片段
// 三个部分以单个空格连接，约束为空时保留末尾空格，以保证与已有数据库文件中的表结构文本一致
func (c Column) SQL() string {
	return c.Name + " " + c.Type + " " + c.Constraints
}

// Default 返回约束子句中 DEFAULT 关键字之后的字面量
func (c Column) Default() (string, bool) {
	fields := strings.Fields(c.Constraints)
	for i, f := range fields {
		if strings.EqualFold(f, "DEFAULT") && i+1 < len(fields) {
			return fields[i+1], true
		}
	}
	return "", false
}

// Table 表定义，列按声明顺序排列
type Table struct {
	Name    string
	Columns []Column
}

// ColumnNames 按声明顺序返回列名
func (t *Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}

// ColumnsSQL 返回整张表的列定义片段，列之间以 ", " 分隔
func (t *Table) ColumnsSQL() string {
	parts := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		parts = append(parts, c.SQL())
	}
	return strings.Join(parts, ", ")
}

// Column 按名称查找列
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// CreateSQL 返回幂等的建表语句
func (t *Table) CreateSQL() string {
	return "CREATE TABLE IF NOT EXISTS " + t.Name + " (" + t.ColumnsSQL() + ")"
}

// Index 索引定义
type Index struct {
	Name    string
	Table   string
	Columns []string
}

// SQL 返回幂等的建索引语句
func (i Index) SQL() string {
	return "CREATE INDEX IF NOT EXISTS " + i.Name + " ON " + i.Table + " (" + strings.Join(i.Columns, ", ") + ")"
}

func pk(name string) Column {
	return Column{Name: name, Type: "INTEGER", Constraints: "PRIMARY KEY"}
}

func text(name, constraints string) Column {
	return Column{Name: name, Type: "TEXT", Constraints: constraints}
}

func integer(name, constraints string) Column {
	return Column{Name: name, Type: "INTEGER", Constraints: constraints}
}

// textDefault 是最常见的列形态：TEXT，默认值为空字符串
func textDefault(name string) Column {
	return text(name, "DEFAULT ''")
}
