// Package kvdb 提供基于 BadgerDB 的类型化嵌入式存储
//
// go-kvdb 在有序键值引擎之上提供命名数据树（tree）隔离、
// 类型化存取与原子批量写入，作为进程内库被宿主应用使用。
//
// # 核心概念
//
//   - Database: 顶层句柄，打开引擎、管理数据树、全局刷盘与批量销毁
//   - Tree: 命名数据树句柄，拥有独立的有序键空间
//   - Batch: 写批量，多条记录一次性原子提交到某个数据树
//   - Keyer: 领域记录实现的键派生能力，记录自己产生存储键
//
// # 架构
//
//	┌─────────────────────────────────────────────┐
//	│                宿主应用                      │
//	│        （提供 Options 与 Keyer 记录）        │
//	└─────────────────────────────────────────────┘
//	                      │
//	                      ▼
//	┌─────────────────────────────────────────────┐
//	│              kvdb (本包)                    │
//	│   Database │ Tree │ Batch │ Keyer           │
//	└─────────────────────────────────────────────┘
//	                      │
//	                      ▼
//	┌─────────────────────────────────────────────┐
//	│           internal/engine/badger            │
//	│              BadgerDB 实现                   │
//	└─────────────────────────────────────────────┘
//
// # 键空间设计
//
// 每个数据树通过键前缀在引擎键空间中隔离：
//
//	前缀              | 说明
//	------------------|----------------------------
//	't' 0x00 name 0x00 | 数据树 name 的条目
//	'n' 0x00 name      | 数据树目录（已存在的树名）
//
// 前缀固定，树内条目的相对顺序与原始键字节序一致。
// 保留树 DefaultTree 始终存在，且不会被 Destroy 删除。
//
// # 使用示例
//
//	db, err := kvdb.Open(kvdb.DefaultOptions("/data/app.db"))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	tree, err := db.OpenTree("users")
//	if err != nil {
//	    return err
//	}
//
//	// record 实现 kvdb.Keyer
//	prev, err := tree.Insert(record)
//
//	// 批量原子写入
//	batch := kvdb.NewBatch()
//	_ = batch.Insert(record1)
//	_ = batch.Insert(record2)
//	if err := tree.ApplyBatch(batch); err != nil {
//	    return err
//	}
//
//	// 类型化读取
//	user, err := kvdb.Deserialize[User](tree, key)
//
// # 线程安全
//
// Database 和 Tree 可以在多个 goroutine 间共享并发使用，
// 并发控制由底层引擎保证。Batch 归单个调用方所有，
// 不应并发使用。
package kvdb
