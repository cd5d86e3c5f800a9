// Package schema 定义 Pigeon Planner 数据库的各个版本结构
//
// 每个版本（Version）都携带自己完整的表结构、索引列表，以及从上一个版本迁移到该版本的步骤（Step）。
// 版本一经发布便不可修改，新的发布只能追加新版本。
//
// Registry 是按版本号排列、无间隙的只读集合，由 NewRegistry 显式构造并传递给会话使用，没有全局注册表：
//
//	reg := schema.Builtin()
//	session, err := database.Open(path, reg)
//
// 迁移步骤通过 Session 接口操作数据库，Session 由 database 包实现。
package schema
