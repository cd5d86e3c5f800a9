package schema

import (
	"fmt"
)

// Version 一个数据库结构版本
type Version struct {
	Number  int
	Tables  []*Table
	Indexes []Index
	// Step 从 Number-1 迁移到 Number，最低版本可以为空
	Step Step
}

// Table 按名称查找表定义
func (v *Version) Table(name string) (*Table, bool) {
	for _, t := range v.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// CreateIndexes 创建该版本声明的全部索引
func (v *Version) CreateIndexes(s Session) error {
	for _, idx := range v.Indexes {
		if err := s.Exec(idx.SQL()); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.Name, err)
		}
	}
	return nil
}

// Registry 从 1 开始、无间隙、严格递增的版本集合，构造后只读
type Registry struct {
	versions []*Version
}

// NewRegistry 校验并构造版本集合，versions 必须按版本号顺序给出
func NewRegistry(versions ...*Version) (*Registry, error) {
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: no versions", ErrInvalidRegistry)
	}
	for i, v := range versions {
		if v == nil {
			return nil, fmt.Errorf("%w: version at position %d is nil", ErrInvalidRegistry, i)
		}
		if v.Number != i+1 {
			return nil, fmt.Errorf("%w: expected version %d at position %d, got %d", ErrInvalidRegistry, i+1, i, v.Number)
		}
		if v.Step == nil && i > 0 {
			return nil, fmt.Errorf("%w: version %d has no migration step", ErrInvalidRegistry, v.Number)
		}
		seen := make(map[string]bool, len(v.Tables))
		for _, t := range v.Tables {
			if seen[t.Name] {
				return nil, fmt.Errorf("%w: table %s defined twice in version %d", ErrInvalidRegistry, t.Name, v.Number)
			}
			seen[t.Name] = true
		}
		for _, idx := range v.Indexes {
			if !seen[idx.Table] {
				return nil, fmt.Errorf("%w: index %s references unknown table %s in version %d", ErrInvalidRegistry, idx.Name, idx.Table, v.Number)
			}
		}
	}
	return &Registry{versions: versions}, nil
}

// MustNewRegistry 同 NewRegistry，失败时 panic
func MustNewRegistry(versions ...*Version) *Registry {
	r, err := NewRegistry(versions...)
	if err != nil {
		panic(fmt.Sprintf("failed to build schema registry: %v", err))
	}
	return r
}

// Latest 最新版本号
func (r *Registry) Latest() int {
	return r.versions[len(r.versions)-1].Number
}

// Version 返回指定版本
func (r *Registry) Version(n int) (*Version, error) {
	if n < 1 || n > len(r.versions) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVersion, n)
	}
	return r.versions[n-1], nil
}

// TableNames 返回该版本定义的所有表名（声明顺序）
func (r *Registry) TableNames(n int) ([]string, error) {
	v, err := r.Version(n)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(v.Tables))
	for _, t := range v.Tables {
		names = append(names, t.Name)
	}
	return names, nil
}

func (r *Registry) table(n int, name string) (*Table, error) {
	v, err := r.Version(n)
	if err != nil {
		return nil, err
	}
	t, ok := v.Table(name)
	if !ok {
		return nil, &UnknownTableError{Version: n, Table: name}
	}
	return t, nil
}

// ColumnNames 返回该版本中某张表的列名（声明顺序）
func (r *Registry) ColumnNames(n int, table string) ([]string, error) {
	t, err := r.table(n, table)
	if err != nil {
		return nil, err
	}
	return t.ColumnNames(), nil
}

// ColumnsSQL 返回该版本中某张表的列定义片段
func (r *Registry) ColumnsSQL(n int, table string) (string, error) {
	t, err := r.table(n, table)
	if err != nil {
		return "", err
	}
	return t.ColumnsSQL(), nil
}

// ColumnSQL 返回单列的定义片段
func (r *Registry) ColumnSQL(n int, table, column string) (string, error) {
	t, err := r.table(n, table)
	if err != nil {
		return "", err
	}
	c, ok := t.Column(column)
	if !ok {
		return "", fmt.Errorf("column %q is not defined in table %s (version %d)", column, table, n)
	}
	return c.SQL(), nil
}

// CreateNew 在空数据库上直接建出第 n 版的全部表和索引，并写入版本号
func (r *Registry) CreateNew(s Session, n int) error {
	v, err := r.Version(n)
	if err != nil {
		return err
	}
	for _, t := range v.Tables {
		if err := s.Exec(t.CreateSQL()); err != nil {
			return fmt.Errorf("failed to create table %s: %w", t.Name, err)
		}
	}
	if err := v.CreateIndexes(s); err != nil {
		return err
	}
	return s.SetDatabaseVersion(n)
}

// Step 返回迁移到第 n 版的步骤
func (r *Registry) Step(n int) (Step, error) {
	v, err := r.Version(n)
	if err != nil {
		return nil, err
	}
	if v.Step == nil {
		return nil, fmt.Errorf("%w: version %d has no migration step", ErrUnknownVersion, n)
	}
	return v.Step, nil
}
