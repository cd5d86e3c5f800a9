// Package migration 提供单文件 SQLite 数据库的版本收敛流程
//
// 主要特性：
//
// 1. 版本收敛：从数据库当前版本开始，依次执行 current+1 … latest 的迁移步骤
// 2. 整文件备份：迁移开始前把数据库复制到 <dbpath>_bckp，任一步骤失败时整体复制回去
// 3. 残留备份：上次进程在迁移中途退出留下的 _bckp 不会被覆盖，会先归档，并可通过 Recover 恢复
// 4. 空间检查：备份前检查磁盘剩余空间
//
// 本包不加锁，调用方需保证迁移期间没有其他进程或线程访问同一个数据库文件。
//
// 基本使用示例：
//
//	m, err := migration.NewMigrator(db, runner)
//	result, err := m.Run()
//	if errors.Is(err, migration.ErrDatabaseTooNew) { ... }
package migration
