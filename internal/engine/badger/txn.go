package badger

import (
	"sync/atomic"

	"github.com/dep2p/go-kvdb/internal/engine"
	"github.com/dgraph-io/badger/v4"
)

// Transaction BadgerDB 事务实现
type Transaction struct {
	db        *Engine
	txn       *badger.Txn
	writable  bool
	committed atomic.Bool
	discarded atomic.Bool

	// 事务中累计的写入统计，提交成功后计入引擎
	pendingBytes  int64
	pendingWrites int64
}

// Get 在事务中读取值
func (t *Transaction) Get(key []byte) ([]byte, error) {
	if t.discarded.Load() {
		return nil, engine.ErrTransactionDiscarded
	}

	if len(key) == 0 {
		return nil, engine.ErrEmptyKey
	}

	item, err := t.txn.Get(key)
	if err != nil {
		return nil, convertError(err)
	}

	return item.ValueCopy(nil)
}

// Set 在事务中设置值
func (t *Transaction) Set(key, value []byte) error {
	if t.discarded.Load() {
		return engine.ErrTransactionDiscarded
	}

	if !t.writable {
		return engine.ErrReadOnly
	}

	if len(key) == 0 {
		return engine.ErrEmptyKey
	}

	if err := t.txn.Set(key, value); err != nil {
		return convertError(err)
	}

	t.pendingBytes += int64(len(key) + len(value))
	t.pendingWrites++
	return nil
}

// Delete 在事务中删除键
func (t *Transaction) Delete(key []byte) error {
	if t.discarded.Load() {
		return engine.ErrTransactionDiscarded
	}

	if !t.writable {
		return engine.ErrReadOnly
	}

	if len(key) == 0 {
		return engine.ErrEmptyKey
	}

	err := t.txn.Delete(key)
	return convertError(err)
}

// Commit 提交事务
func (t *Transaction) Commit() error {
	if t.discarded.Load() {
		return engine.ErrTransactionDiscarded
	}

	if t.committed.Swap(true) {
		return nil // 已经提交
	}

	if err := t.txn.Commit(); err != nil {
		return convertError(err)
	}

	// 提交成功，写入统计计入引擎
	if t.pendingWrites > 0 {
		t.db.stats.numWrites.Add(t.pendingWrites)
		t.db.stats.numBytesWritten.Add(t.pendingBytes)
		t.db.pendingBytes.Add(t.pendingBytes)
	}

	return nil
}

// Discard 丢弃事务
func (t *Transaction) Discard() {
	if t.discarded.Swap(true) {
		return // 已经丢弃
	}

	if t.committed.Load() {
		return // 已经提交
	}

	t.txn.Discard()
}

// IsWritable 返回事务是否可写
func (t *Transaction) IsWritable() bool {
	return t.writable
}

// 编译时检查接口实现
var _ engine.Transaction = (*Transaction)(nil)
