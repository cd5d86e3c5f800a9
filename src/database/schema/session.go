package schema

// Session 迁移步骤可以使用的数据库结构操作
type Session interface {
	// TableNames 返回数据库中实际存在的表
	TableNames() ([]string, error)
	// ColumnNames 返回数据库中某张表实际存在的列
	ColumnNames(table string) ([]string, error)
	// AddColumn 执行 ALTER TABLE ... ADD COLUMN，columnSQL 形如 "unit INTEGER DEFAULT 0"
	AddColumn(table, columnSQL string) error
	// RemoveTable 删除表（IF EXISTS）
	RemoveTable(table string) error
	// AddTable 建表（IF NOT EXISTS）
	AddTable(table, columnsSQL string) error
	// RecreateTable 以新的列定义重建表，数据按列名投影复制回去
	RecreateTable(table, columnsSQL string) error
	// RecreateTableRenaming 同 RecreateTable，renames 为 新列名 -> 旧列名 的映射
	RecreateTableRenaming(table, columnsSQL string, renames map[string]string) error
	// Exec 执行任意语句
	Exec(query string, args ...interface{}) error
	// SetDatabaseVersion 写入 PRAGMA user_version
	SetDatabaseVersion(version int) error
}

// Step 从上一个版本迁移到本版本
type Step interface {
	Apply(s Session) error
}

// StepFunc 将普通函数适配为 Step
type StepFunc func(s Session) error

// Apply 调用 f(s)
func (f StepFunc) Apply(s Session) error {
	return f(s)
}
