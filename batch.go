package kvdb

import (
	"encoding/json"
	"fmt"
)

// pair 批量中待写入的键值对
type pair struct {
	key   []byte
	value []byte
}

// Batch 写批量
//
// 在内存中累积 (键, 序列化值) 对，通过 Tree.ApplyBatch
// 一次性原子提交到某个数据树。Batch 归单个调用方所有，
// 不是线程安全的。
//
// 应用时待写入内容被转移（而非复制）：ApplyBatch 返回后
// 批量为空，可以直接复用累积下一轮写入。对已清空的批量
// 再次应用是安全的空操作。
type Batch struct {
	pending []pair
}

// NewBatch 创建空的写批量
func NewBatch() *Batch {
	return &Batch{}
}

// Insert 向批量添加一条记录
//
// 派生记录的键并序列化其值，追加到待写入集合。
// 不触碰存储。
func (b *Batch) Insert(rec Keyer) error {
	key, err := rec.Key()
	if err != nil {
		return fmt.Errorf("kvdb: derive key for %T: %w", rec, err)
	}

	if len(key) == 0 {
		return ErrEmptyKey
	}

	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("kvdb: encode %T: %w", rec, err)
	}

	b.pending = append(b.pending, pair{key: key, value: value})
	return nil
}

// Count 返回待写入的条目数量
func (b *Batch) Count() int {
	return len(b.pending)
}

// take 转移并清空待写入内容
func (b *Batch) take() []pair {
	pending := b.pending
	b.pending = nil
	return pending
}
