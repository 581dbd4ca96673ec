package badger

import (
	"github.com/dep2p/go-kvdb/internal/engine"
	"github.com/dgraph-io/badger/v4"
)

// batchOp 批量中的单个操作
type batchOp struct {
	key    []byte
	value  []byte
	delete bool
}

// WriteBatch BadgerDB 批量写入实现
//
// 操作先缓存在内存中，Write 时作为单个事务一次性提交。
// 对并发读取者而言，批量中的写入要么全部可见，要么全部不可见。
// 超出单事务容量的批量会以 ErrTransactionTooLarge 失败，
// 而不是退化为多次提交。
type WriteBatch struct {
	db  *Engine
	ops []batchOp
}

// Put 添加一个写入操作到批量中
func (b *WriteBatch) Put(key, value []byte) {
	if len(key) == 0 {
		return
	}

	b.ops = append(b.ops, batchOp{key: key, value: value})
}

// Delete 添加一个删除操作到批量中
func (b *WriteBatch) Delete(key []byte) {
	if len(key) == 0 {
		return
	}

	b.ops = append(b.ops, batchOp{key: key, delete: true})
}

// Write 执行批量写入
//
// 所有操作在单个事务中原子提交，随后批量对象被重置。
func (b *WriteBatch) Write() error {
	if b.db.closed.Load() {
		return engine.ErrClosed
	}

	if b.db.config.ReadOnly {
		return engine.ErrReadOnly
	}

	if len(b.ops) == 0 {
		return nil
	}

	var bytes int64
	err := b.db.db.Update(func(txn *badger.Txn) error {
		for _, op := range b.ops {
			if op.delete {
				if err := txn.Delete(op.key); err != nil {
					return err
				}
				continue
			}
			if err := txn.Set(op.key, op.value); err != nil {
				return err
			}
			bytes += int64(len(op.key) + len(op.value))
		}
		return nil
	})
	if err != nil {
		return convertError(err)
	}

	// 更新统计
	for _, op := range b.ops {
		if op.delete {
			b.db.stats.numDeletes.Add(1)
		} else {
			b.db.stats.numWrites.Add(1)
		}
	}
	b.db.stats.numBytesWritten.Add(bytes)
	b.db.pendingBytes.Add(bytes)

	// 重置
	b.Reset()

	return nil
}

// Reset 重置批量对象
func (b *WriteBatch) Reset() {
	b.ops = nil
}

// Size 返回批量中的操作数量
func (b *WriteBatch) Size() int {
	return len(b.ops)
}

// 编译时检查接口实现
var _ engine.Batch = (*WriteBatch)(nil)
