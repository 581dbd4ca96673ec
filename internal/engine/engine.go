// Package engine 定义存储引擎的内部接口
//
// go-kvdb 的数据树层（根包）只依赖本包的接口，
// 具体实现由 engine/badger 提供。
//
// # 线程安全
//
// 所有接口实现必须保证线程安全。批量操作和事务在提交前
// 是独立的，不影响其他并发操作。
package engine

// Engine 存储引擎接口
//
// 提供键值读写、批量原子提交、迭代器、事务等能力。
// 数据树层在此之上实现命名空间隔离与类型化存取。
type Engine interface {
	// Get 获取指定键的值
	//
	// 返回:
	//   - []byte: 值
	//   - error: ErrNotFound 如果键不存在
	Get(key []byte) ([]byte, error)

	// Put 设置键值对
	Put(key, value []byte) error

	// Delete 删除指定键
	Delete(key []byte) error

	// Has 检查键是否存在
	Has(key []byte) (bool, error)

	// NewBatch 创建新的批量写入对象
	//
	// 批量写入将多个操作合并为一次原子提交。
	NewBatch() Batch

	// Write 执行批量写入
	//
	// 将批量操作作为单个事务原子性地写入存储：
	// 并发读取者要么看到批量中的全部写入，要么一个都看不到。
	// 写入完成后，Batch 对象会被自动重置。
	Write(batch Batch) error

	// NewIterator 创建新的迭代器
	//
	// 调用者负责在使用后调用 Close()。
	// opts 可为 nil，使用默认选项。
	NewIterator(opts *IteratorOptions) Iterator

	// NewPrefixIterator 创建前缀迭代器
	//
	// 仅遍历具有指定前缀的键，按键字节升序。
	NewPrefixIterator(prefix []byte) Iterator

	// NewTransaction 创建新的事务
	//
	// 参数:
	//   - writable: true 表示读写事务，false 表示只读事务
	NewTransaction(writable bool) Transaction

	// Start 启动存储引擎
	//
	// 启动后台任务（如值日志垃圾回收）。
	// 必须在使用引擎前调用。
	Start() error

	// Sync 同步数据到磁盘
	//
	// 确保所有已写入的数据持久化到磁盘。
	//
	// 返回:
	//   - int64: 自上次同步以来落盘的字节数
	//   - error: 同步失败时返回错误
	Sync() (int64, error)

	// Stats 获取引擎统计信息快照
	Stats() *Stats

	// Close 关闭存储引擎
	Close() error
}

// Batch 批量写入接口
//
// 用于将多个写入操作合并为一次原子写入。
// Batch 不是线程安全的，不应在多个 goroutine 中并发使用。
type Batch interface {
	// Put 添加一个写入操作到批量中
	Put(key, value []byte)

	// Delete 添加一个删除操作到批量中
	Delete(key []byte)

	// Write 执行批量写入
	//
	// 将所有操作作为单个事务原子性地写入存储。
	// 写入后批量对象会被自动重置。
	Write() error

	// Reset 重置批量对象
	//
	// 清空所有待写入的操作，使批量对象可以重用。
	Reset()

	// Size 返回批量中的操作数量
	Size() int
}

// Iterator 迭代器接口
//
// 用于按键字节升序遍历存储中的键值对。迭代器保持创建时的
// 快照视图，不受后续写入操作影响。
//
// 使用模式:
//
//	iter := engine.NewPrefixIterator(prefix)
//	defer iter.Close()
//
//	for iter.First(); iter.Valid(); iter.Next() {
//	    key := iter.Key()
//	    value := iter.Value()
//	}
//
//	if err := iter.Error(); err != nil {
//	    return err
//	}
type Iterator interface {
	// First 移动到第一个键值对
	First() bool

	// Next 移动到下一个键值对
	Next() bool

	// Valid 检查迭代器是否指向有效位置
	Valid() bool

	// Key 返回当前键
	//
	// 返回键的副本，可以安全保留。
	Key() []byte

	// Value 返回当前值
	//
	// 返回值的副本。读取失败时返回 nil 并记录错误，
	// 可通过 Error() 获取。
	Value() []byte

	// Close 关闭迭代器
	Close()

	// Error 返回迭代过程中的错误
	Error() error
}

// IteratorOptions 迭代器选项
type IteratorOptions struct {
	// Prefix 仅迭代具有此前缀的键
	Prefix []byte

	// StartKey 起始键（包含）
	StartKey []byte

	// EndKey 结束键（不包含）
	EndKey []byte

	// PrefetchSize 预取数量（0 表示使用默认值）
	PrefetchSize int

	// PrefetchValues 是否预取值（默认 true）
	PrefetchValues bool
}

// DefaultIteratorOptions 返回默认迭代器选项
func DefaultIteratorOptions() *IteratorOptions {
	return &IteratorOptions{
		PrefetchSize:   100,
		PrefetchValues: true,
	}
}

// Transaction 事务接口
//
// 读写事务可以读取和修改数据，只读事务只能读取但开销更小。
//
// 使用模式:
//
//	txn := engine.NewTransaction(true)
//	defer txn.Discard()
//
//	if err := txn.Set(key, value); err != nil {
//	    return err
//	}
//
//	return txn.Commit()
type Transaction interface {
	// Get 在事务中读取值
	//
	// 返回:
	//   - error: ErrNotFound 如果键不存在
	Get(key []byte) ([]byte, error)

	// Set 在事务中设置值
	//
	// 仅对读写事务有效。
	Set(key, value []byte) error

	// Delete 在事务中删除键
	//
	// 仅对读写事务有效。
	Delete(key []byte) error

	// Commit 提交事务
	//
	// 返回:
	//   - error: ErrTransactionConflict 如果发生写冲突
	Commit() error

	// Discard 丢弃事务
	//
	// 回滚所有未提交的修改。多次调用是安全的。
	Discard()
}

// Stats 引擎统计信息
type Stats struct {
	DiskSize        int64 `json:"disk_size"`         // 磁盘占用总量
	LSMSize         int64 `json:"lsm_size"`          // LSM 树大小
	VlogSize        int64 `json:"vlog_size"`         // 值日志大小
	NumTables       int   `json:"num_tables"`        // SST 表数量
	NumLevels       int   `json:"num_levels"`        // LSM 层数
	NumWrites       int64 `json:"num_writes"`        // 写入次数
	NumReads        int64 `json:"num_reads"`         // 读取次数
	NumDeletes      int64 `json:"num_deletes"`       // 删除次数
	NumBytesWritten int64 `json:"num_bytes_written"` // 写入字节数
}
