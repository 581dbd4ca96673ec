package kvdb

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-kvdb/internal/engine"
	"github.com/dep2p/go-kvdb/internal/engine/badger"
	"github.com/dep2p/go-kvdb/pkg/lib/log"
	"go.uber.org/multierr"
)

// logger 是 kvdb 门面层的日志记录器
var logger = log.Logger("kvdb")

// Entry 数据树中的一个条目
type Entry struct {
	Key   []byte
	Value []byte
}

// Database 顶层存储句柄
//
// 拥有底层引擎的句柄，可以在多个 goroutine 间共享并发使用，
// 生命周期等于最长的持有者。同一个引擎路径只应打开一个 Database。
type Database struct {
	eng    engine.Engine
	closed atomic.Bool

	mu    sync.RWMutex
	trees map[TreeName]*Tree
}

// Open 打开存储
//
// 按配置初始化底层引擎并启动后台任务，注册保留的默认数据树。
// 引擎无法打开（路径非法、锁被占用、磁盘状态损坏）时返回错误。
func Open(opts Options) (*Database, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	eng, err := badger.New(opts.toEngineConfig())
	if err != nil {
		return nil, fmt.Errorf("kvdb: open engine: %w", err)
	}

	if err := eng.Start(); err != nil {
		_ = eng.Close()
		return nil, fmt.Errorf("kvdb: start engine: %w", err)
	}

	db := &Database{
		eng:   eng,
		trees: make(map[TreeName]*Tree),
	}

	// 保留树始终存在
	if _, err := db.OpenTree(DefaultTree); err != nil {
		_ = eng.Close()
		return nil, err
	}

	logger.Debug("存储已打开", "path", opts.Path, "mode", opts.Mode.String())
	return db, nil
}

// OpenTree 打开指定名称的数据树（不存在时创建）
//
// 幂等：同名的重复调用返回同一个句柄。
func (db *Database) OpenTree(name TreeName) (*Tree, error) {
	if err := name.Validate(); err != nil {
		return nil, err
	}

	db.mu.RLock()
	tree, ok := db.trees[name]
	db.mu.RUnlock()
	if ok {
		return tree, nil
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if tree, ok := db.trees[name]; ok {
		return tree, nil
	}

	// 登记到数据树目录
	if err := db.eng.Put(catalogKey(name), []byte{}); err != nil {
		return nil, fmt.Errorf("kvdb: register tree %q: %w", name, err)
	}

	tree = &Tree{
		name:   name,
		prefix: treePrefix(name),
		eng:    db.eng,
	}
	db.trees[name] = tree

	return tree, nil
}

// ListValues 返回数据树的全部条目
//
// 条目按键字节升序排列。无法读取的条目会被跳过而不是报错，
// 每次跳过记录一条 Debug 日志。
func (db *Database) ListValues(name TreeName) ([]Entry, error) {
	tree, err := db.OpenTree(name)
	if err != nil {
		return nil, err
	}

	var entries []Entry

	iter := tree.Iter()
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		value := iter.Value()
		if value == nil {
			logger.Debug("跳过无法读取的条目", "tree", name, "key", iter.Key())
			continue
		}
		entries = append(entries, Entry{Key: iter.Key(), Value: value})
	}

	return entries, nil
}

// Flush 强制所有待写入数据落盘
//
// 返回自上次刷盘以来落盘的字节数。
func (db *Database) Flush() (int64, error) {
	return db.eng.Sync()
}

// Destroy 清空除保留默认树以外的全部数据树
//
// 尽力而为：单个数据树清空失败只记录日志并跳过，
// 不会中断其余数据树的处理，也不会向调用方返回错误。
// 目录项与已打开的句柄保持有效：Destroy 之后旧句柄可以
// 继续读写，写入的数据仍会被后续的 Destroy 覆盖到。
func (db *Database) Destroy() {
	for _, name := range db.treeNames() {
		if name == DefaultTree {
			continue
		}

		if err := db.dropTree(name); err != nil {
			logger.Error("清空数据树失败", "tree", name, "error", err)
		}
	}
}

// treeNames 从目录中枚举已存在的数据树名
func (db *Database) treeNames() []TreeName {
	var names []TreeName

	iter := db.eng.NewPrefixIterator(catalogPrefix)
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if name := treeNameFromCatalogKey(iter.Key()); name != "" {
			names = append(names, name)
		}
	}

	return names
}

// dropChunkSize 单次删除批量的最大条目数
//
// 删除分块提交，大树的清空不会超出引擎单事务容量。
const dropChunkSize = 1000

// dropTree 删除一个数据树的全部条目
//
// 条目分块删除，单个数据树的清空不要求原子性。
// 目录项保留，树在清空后仍可继续使用。
func (db *Database) dropTree(name TreeName) error {
	prefix := treePrefix(name)

	var keys [][]byte
	iter := db.eng.NewPrefixIterator(prefix)
	for iter.First(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Key())
	}
	iter.Close()

	for start := 0; start < len(keys); start += dropChunkSize {
		end := start + dropChunkSize
		if end > len(keys) {
			end = len(keys)
		}

		batch := db.eng.NewBatch()
		for _, key := range keys[start:end] {
			batch.Delete(key)
		}
		if err := db.eng.Write(batch); err != nil {
			return err
		}
	}

	return nil
}

// Stats 返回引擎统计信息快照
func (db *Database) Stats() *engine.Stats {
	return db.eng.Stats()
}

// Close 关闭存储
//
// 先刷盘再关闭引擎。幂等：重复调用返回 nil。
// Options.Debug 为 true 时，引擎在关闭前输出统计信息。
func (db *Database) Close() error {
	if db.closed.Swap(true) {
		return nil // 已经关闭
	}

	var err error

	if _, ferr := db.eng.Sync(); ferr != nil {
		err = multierr.Append(err, ferr)
	}

	if cerr := db.eng.Close(); cerr != nil {
		err = multierr.Append(err, cerr)
	}

	return err
}
