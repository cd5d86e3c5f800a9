package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/pigeonplanner/pigeonplanner/src/database/schema"
)

// 结构操作原语不吞掉错误，全部原样返回给迁移流程处理

// TableNames 返回数据库中实际存在的表
func (s *Session) TableNames() ([]string, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var names []string
	if err := db.Select(&names, "SELECT name FROM sqlite_master WHERE type='table' AND name IS NOT NULL"); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return names, nil
}

// ColumnNames 返回数据库中某张表实际存在的列（按位置顺序）
func (s *Session) ColumnNames(table string) ([]string, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	return columnNames(db, table)
}

func columnNames(q sqlx.Queryer, table string) ([]string, error) {
	var names []string
	if err := sqlx.Select(q, &names, "SELECT name FROM pragma_table_info(?) ORDER BY cid", table); err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", table, err)
	}
	return names, nil
}

// AddColumn 增加一列，columnSQL 形如 "unit INTEGER DEFAULT 0"
func (s *Session) AddColumn(table, columnSQL string) error {
	s.logger.WithFields(logrus.Fields{"table": table, "column": columnSQL}).Debug("adding column")
	return s.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, columnSQL))
}

// RemoveTable 删除表，表不存在时不报错
func (s *Session) RemoveTable(table string) error {
	s.logger.WithField("table", table).Debug("removing table")
	return s.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table))
}

// AddTable 建表，表已存在时不报错
func (s *Session) AddTable(table, columnsSQL string) error {
	s.logger.WithField("table", table).Debug("adding table")
	return s.Exec(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, columnsSQL))
}

// RecreateTable 以新的列定义重建表
func (s *Session) RecreateTable(table, columnsSQL string) error {
	return s.RecreateTableRenaming(table, columnsSQL, nil)
}

// RecreateTableRenaming 以新的列定义重建表，renames 为 新列名 -> 旧列名
//
// 数据先复制到临时表，删除并重建原表后，按列名投影复制回去：
// 两边都有的列保留数据，新增的列取默认值，旧表独有的列被丢弃。
// 整个过程在一个事务内完成。
func (s *Session) RecreateTableRenaming(table, columnsSQL string, renames map[string]string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	logger := s.logger.WithField("table", table)
	logger.Debug("recreating table")

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	oldCols, err := columnNames(tx, table)
	if err != nil {
		return err
	}
	if len(oldCols) == 0 {
		return fmt.Errorf("cannot recreate table %s: table does not exist", table)
	}

	tmp := "tmp_" + table
	stmts := []string{
		fmt.Sprintf("DROP TABLE IF EXISTS temp.%s", tmp),
		fmt.Sprintf("CREATE TEMP TABLE %s AS SELECT * FROM %s", tmp, table),
		fmt.Sprintf("DROP TABLE %s", table),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, columnsSQL),
	}
	for _, stmt := range stmts {
		logger.WithField("sql", stmt).Trace("exec")
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to recreate table %s: %w", table, err)
		}
	}

	newCols, err := columnNames(tx, table)
	if err != nil {
		return err
	}
	dst, src := projectColumns(oldCols, newCols, renames)
	if len(dst) > 0 {
		insert := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM temp.%s",
			table, strings.Join(dst, ", "), strings.Join(src, ", "), tmp)
		logger.WithField("sql", insert).Trace("exec")
		if _, err := tx.Exec(insert); err != nil {
			return fmt.Errorf("failed to copy data back into %s: %w", table, err)
		}
	}
	if _, err := tx.Exec(fmt.Sprintf("DROP TABLE temp.%s", tmp)); err != nil {
		return err
	}
	return tx.Commit()
}

// projectColumns 计算新旧表共有的列，返回已加引号的目标列和源列
func projectColumns(oldCols, newCols []string, renames map[string]string) (dst, src []string) {
	existing := make(map[string]string, len(oldCols))
	for _, c := range oldCols {
		existing[strings.ToLower(c)] = c
	}
	for _, c := range newCols {
		from := c
		if renamed, ok := renames[c]; ok {
			if _, present := existing[strings.ToLower(renamed)]; present {
				from = renamed
			}
		}
		if old, ok := existing[strings.ToLower(from)]; ok {
			dst = append(dst, schema.QuoteIdent(c))
			src = append(src, schema.QuoteIdent(old))
		}
	}
	return dst, src
}

// Exec 执行任意语句，数据值通过 args 传入
func (s *Session) Exec(query string, args ...interface{}) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	s.logger.WithField("sql", query).Debug("exec")
	_, err = db.Exec(query, args...)
	return err
}
