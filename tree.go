package kvdb

import (
	"encoding/json"
	"fmt"

	"github.com/dep2p/go-kvdb/internal/engine"
)

// Tree 命名数据树句柄
//
// 每个数据树在引擎键空间中通过固定前缀隔离，拥有独立的
// 有序键空间。句柄可以在多个 goroutine 间共享并发使用。
type Tree struct {
	name   TreeName
	prefix []byte
	eng    engine.Engine
}

// Name 返回数据树名
func (t *Tree) Name() TreeName {
	return t.name
}

// prefixKey 为键添加数据树前缀
func (t *Tree) prefixKey(key []byte) []byte {
	prefixed := make([]byte, len(t.prefix)+len(key))
	copy(prefixed, t.prefix)
	copy(prefixed[len(t.prefix):], key)
	return prefixed
}

// stripKey 从键中移除数据树前缀
func (t *Tree) stripKey(key []byte) []byte {
	if len(key) < len(t.prefix) {
		return key
	}
	return key[len(t.prefix):]
}

// Len 返回当前条目数量
func (t *Tree) Len() (int, error) {
	var count int

	err := t.Scan(func(_, _ []byte) bool {
		count++
		return true
	})

	return count, err
}

// IsEmpty 检查数据树是否为空
func (t *Tree) IsEmpty() (bool, error) {
	empty := true

	err := t.Scan(func(_, _ []byte) bool {
		empty = false
		return false
	})

	return empty, err
}

// Scan 按键字节升序遍历所有条目
//
// 回调函数返回 false 时停止遍历。
// 回调收到的 key 已去除数据树前缀。
func (t *Tree) Scan(fn func(key, value []byte) bool) error {
	iter := t.eng.NewPrefixIterator(t.prefix)
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		key := t.stripKey(iter.Key())
		value := iter.Value()

		if !fn(key, value) {
			break
		}
	}

	return iter.Error()
}

// Iter 创建新的迭代器
//
// 按键字节升序遍历，键已去除数据树前缀。迭代器是一次性的，
// 不能中途重启，但可以再次调用 Iter 开启新一轮遍历。
// 调用者负责在使用后调用 Close()。
func (t *Tree) Iter() *Iterator {
	return &Iterator{
		inner:  t.eng.NewPrefixIterator(t.prefix),
		prefix: t.prefix,
	}
}

// ContainsKey 检查键是否存在
func (t *Tree) ContainsKey(key []byte) (bool, error) {
	return t.eng.Has(t.prefixKey(key))
}

// Flush 强制数据落盘
//
// 返回自上次刷盘以来落盘的字节数。刷盘作用于整个引擎。
func (t *Tree) Flush() (int64, error) {
	return t.eng.Sync()
}

// Insert 插入一条记录
//
// 通过 Keyer 派生记录的键，序列化记录并写入。
// 覆盖语义：同键后写者胜。返回该键下的前值，不存在时为 nil。
// 读取前值与写入在同一个引擎事务中完成。
func (t *Tree) Insert(rec Keyer) ([]byte, error) {
	key, err := rec.Key()
	if err != nil {
		return nil, fmt.Errorf("kvdb: derive key for %T: %w", rec, err)
	}

	if len(key) == 0 {
		return nil, ErrEmptyKey
	}

	value, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("kvdb: encode %T: %w", rec, err)
	}

	storageKey := t.prefixKey(key)

	txn := t.eng.NewTransaction(true)
	defer txn.Discard()

	prev, err := txn.Get(storageKey)
	if err != nil && !engine.IsNotFound(err) {
		return nil, err
	}

	if err := txn.Set(storageKey, value); err != nil {
		return nil, err
	}

	if err := txn.Commit(); err != nil {
		return nil, err
	}

	return prev, nil
}

// Get 获取键对应的原始值
//
// 键不存在返回 (nil, nil)，不作为错误。
func (t *Tree) Get(key []byte) ([]byte, error) {
	value, err := t.eng.Get(t.prefixKey(key))
	if err != nil {
		if engine.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}

// ApplyBatch 原子提交批量中的全部待写入条目
//
// 所有条目在单个引擎事务中提交：并发读取者要么看到批量的
// 全部写入，要么一个都看不到。原子性仅限本数据树（本次调用），
// 不提供跨数据树的原子性。
//
// 批量的待写入内容在提交前被转移，成功返回后批量为空、
// 可以复用；对已清空的批量再次调用是安全的空操作。
func (t *Tree) ApplyBatch(b *Batch) error {
	pending := b.take()
	if len(pending) == 0 {
		return nil
	}

	batch := t.eng.NewBatch()
	for _, p := range pending {
		batch.Put(t.prefixKey(p.key), p.value)
	}

	return t.eng.Write(batch)
}

// Deserialize 类型化读取
//
// 获取键对应的值并解码为 T。键不存在时返回 ErrNotFound，
// 存储的字节无法解码为 T 时返回解码错误。
func Deserialize[T any](t *Tree, key []byte) (T, error) {
	var v T

	data, err := t.eng.Get(t.prefixKey(key))
	if err != nil {
		return v, fmt.Errorf("kvdb: value for key %q: %w", key, err)
	}

	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("kvdb: decode %T: %w", v, err)
	}

	return v, nil
}

// Iterator 数据树迭代器
//
// 包装引擎迭代器，返回的键已去除数据树前缀。
type Iterator struct {
	inner  engine.Iterator
	prefix []byte
}

// First 移动到第一个条目
func (it *Iterator) First() bool {
	return it.inner.First()
}

// Next 移动到下一个条目
func (it *Iterator) Next() bool {
	return it.inner.Next()
}

// Valid 检查迭代器是否指向有效位置
func (it *Iterator) Valid() bool {
	return it.inner.Valid()
}

// Key 返回当前键（已去除数据树前缀）
func (it *Iterator) Key() []byte {
	key := it.inner.Key()
	if len(key) < len(it.prefix) {
		return key
	}
	return key[len(it.prefix):]
}

// Value 返回当前值
//
// 读取失败时返回 nil，错误可通过 Err() 获取。
func (it *Iterator) Value() []byte {
	return it.inner.Value()
}

// Close 关闭迭代器
func (it *Iterator) Close() {
	it.inner.Close()
}

// Err 返回迭代过程中的错误
func (it *Iterator) Err() error {
	return it.inner.Error()
}
