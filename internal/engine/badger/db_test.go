package badger

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dep2p/go-kvdb/internal/engine"
)

// testEngine 创建测试用引擎
// 使用 t.TempDir() 创建临时目录，确保测试与生产一致
func testEngine(t *testing.T) *Engine {
	t.Helper()

	// 使用临时目录，测试结束后自动清理
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := engine.DefaultConfig(dbPath)
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	t.Cleanup(func() {
		if err := e.Close(); err != nil {
			t.Errorf("failed to close engine: %v", err)
		}
	})

	return e
}

// ============= 基础 CRUD 测试 =============

func TestEngine_PutGet(t *testing.T) {
	e := testEngine(t)

	key := []byte("test-key")
	value := []byte("test-value")

	// Put
	if err := e.Put(key, value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Get
	got, err := e.Get(key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if !bytes.Equal(got, value) {
		t.Errorf("Get returned %q, want %q", got, value)
	}
}

func TestEngine_GetNotFound(t *testing.T) {
	e := testEngine(t)

	_, err := e.Get([]byte("nonexistent"))
	if !engine.IsNotFound(err) {
		t.Errorf("Get returned error %v, want ErrNotFound", err)
	}
}

func TestEngine_EmptyKey(t *testing.T) {
	e := testEngine(t)

	if err := e.Put(nil, []byte("value")); err != engine.ErrEmptyKey {
		t.Errorf("Put with empty key returned %v, want ErrEmptyKey", err)
	}

	if _, err := e.Get(nil); err != engine.ErrEmptyKey {
		t.Errorf("Get with empty key returned %v, want ErrEmptyKey", err)
	}
}

func TestEngine_Delete(t *testing.T) {
	e := testEngine(t)

	key := []byte("delete-key")

	if err := e.Put(key, []byte("delete-value")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := e.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Verify deleted
	_, err := e.Get(key)
	if !engine.IsNotFound(err) {
		t.Errorf("Get after Delete returned error %v, want ErrNotFound", err)
	}
}

func TestEngine_Has(t *testing.T) {
	e := testEngine(t)

	key := []byte("has-key")

	exists, err := e.Has(key)
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if exists {
		t.Error("Has returned true for nonexistent key")
	}

	if err := e.Put(key, []byte("value")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	exists, err = e.Has(key)
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if !exists {
		t.Error("Has returned false for existing key")
	}
}

// ============= 统计测试 =============

func TestEngine_ReadStats(t *testing.T) {
	e := testEngine(t)

	key := []byte("stats-key")
	if err := e.Put(key, []byte("value")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	before := e.Stats().NumReads

	if _, err := e.Get(key); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	// Has 与 Get 一样计入读取统计
	if _, err := e.Has(key); err != nil {
		t.Fatalf("Has failed: %v", err)
	}

	if got := e.Stats().NumReads - before; got != 2 {
		t.Errorf("NumReads increased by %d, want 2", got)
	}
}

// ============= 批量写入测试 =============

func TestWriteBatch_Write(t *testing.T) {
	e := testEngine(t)

	batch := e.NewBatch()

	for i := 0; i < 50; i++ {
		batch.Put([]byte(fmt.Sprintf("key-%02d", i)), []byte(fmt.Sprintf("value-%d", i)))
	}

	if batch.Size() != 50 {
		t.Errorf("Batch.Size() = %d, want 50", batch.Size())
	}

	if err := e.Write(batch); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// 写入后批量对象被重置
	if batch.Size() != 0 {
		t.Errorf("Batch.Size() after Write = %d, want 0", batch.Size())
	}

	// Verify
	for i := 0; i < 50; i++ {
		got, err := e.Get([]byte(fmt.Sprintf("key-%02d", i)))
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, []byte(fmt.Sprintf("value-%d", i))) {
			t.Errorf("Get returned %q, want value-%d", got, i)
		}
	}
}

func TestWriteBatch_Delete(t *testing.T) {
	e := testEngine(t)

	for i := 0; i < 10; i++ {
		if err := e.Put([]byte(fmt.Sprintf("key-%d", i)), []byte("value")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	batch := e.NewBatch()
	for i := 0; i < 10; i++ {
		batch.Delete([]byte(fmt.Sprintf("key-%d", i)))
	}

	if err := e.Write(batch); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		_, err := e.Get([]byte(fmt.Sprintf("key-%d", i)))
		if !engine.IsNotFound(err) {
			t.Errorf("Get after batch delete returned %v, want ErrNotFound", err)
		}
	}
}

func TestWriteBatch_WriteEmpty(t *testing.T) {
	e := testEngine(t)

	// 空批量写入是安全的空操作
	batch := e.NewBatch()
	if err := e.Write(batch); err != nil {
		t.Fatalf("Write of empty batch failed: %v", err)
	}
}

// ============= 迭代器测试 =============

func TestIterator_PrefixOrder(t *testing.T) {
	e := testEngine(t)

	// 乱序写入
	keys := []string{"a/3", "a/1", "b/1", "a/2", "c/1"}
	for _, k := range keys {
		if err := e.Put([]byte(k), []byte("value")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	iter := e.NewPrefixIterator([]byte("a/"))
	defer iter.Close()

	var got []string
	for iter.First(); iter.Valid(); iter.Next() {
		got = append(got, string(iter.Key()))
	}

	if err := iter.Error(); err != nil {
		t.Fatalf("iterator error: %v", err)
	}

	want := []string{"a/1", "a/2", "a/3"}
	if len(got) != len(want) {
		t.Fatalf("iterated %d keys, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("key[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestIterator_Fresh(t *testing.T) {
	e := testEngine(t)

	if err := e.Put([]byte("k1"), []byte("v1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// 迭代器是一次性的，但可以重新创建进行新一轮遍历
	for round := 0; round < 2; round++ {
		iter := e.NewPrefixIterator(nil)
		count := 0
		for iter.First(); iter.Valid(); iter.Next() {
			count++
		}
		iter.Close()

		if count != 1 {
			t.Errorf("round %d: iterated %d keys, want 1", round, count)
		}
	}
}

// ============= 事务测试 =============

func TestTransaction_CommitDiscard(t *testing.T) {
	e := testEngine(t)

	key := []byte("txn-key")

	// 提交
	txn := e.NewTransaction(true)
	if err := txn.Set(key, []byte("committed")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := txn.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	got, err := e.Get(key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "committed" {
		t.Errorf("Get returned %q, want %q", got, "committed")
	}

	// 丢弃
	txn = e.NewTransaction(true)
	if err := txn.Set([]byte("discard-key"), []byte("discarded")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	txn.Discard()

	_, err = e.Get([]byte("discard-key"))
	if !engine.IsNotFound(err) {
		t.Errorf("Get after discard returned %v, want ErrNotFound", err)
	}
}

func TestTransaction_ReadOnly(t *testing.T) {
	e := testEngine(t)

	txn := e.NewTransaction(false)
	defer txn.Discard()

	err := txn.Set([]byte("key"), []byte("value"))
	if !engine.IsReadOnly(err) {
		t.Errorf("Set on read-only transaction returned %v, want ErrReadOnly", err)
	}
}

// ============= 刷盘测试 =============

func TestEngine_SyncBytes(t *testing.T) {
	e := testEngine(t)

	key := []byte("sync-key")
	value := []byte("sync-value")

	if err := e.Put(key, value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	n, err := e.Sync()
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	want := int64(len(key) + len(value))
	if n != want {
		t.Errorf("Sync returned %d bytes, want %d", n, want)
	}

	// 没有新写入时，再次刷盘返回 0
	n, err = e.Sync()
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if n != 0 {
		t.Errorf("second Sync returned %d bytes, want 0", n)
	}
}

// ============= 关闭测试 =============

func TestEngine_Closed(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "closed.db")

	cfg := engine.DefaultConfig(dbPath)
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// 重复关闭是安全的
	if err := e.Close(); err != nil {
		t.Errorf("second Close returned %v, want nil", err)
	}

	if err := e.Put([]byte("key"), []byte("value")); !engine.IsClosed(err) {
		t.Errorf("Put on closed engine returned %v, want ErrClosed", err)
	}

	if _, err := e.Get([]byte("key")); !engine.IsClosed(err) {
		t.Errorf("Get on closed engine returned %v, want ErrClosed", err)
	}

	if _, err := e.Sync(); !engine.IsClosed(err) {
		t.Errorf("Sync on closed engine returned %v, want ErrClosed", err)
	}
}

// ============= 并发测试 =============

func TestEngine_ConcurrentAccess(t *testing.T) {
	e := testEngine(t)

	var wg sync.WaitGroup
	errCh := make(chan error, 200)

	// Concurrent writes
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			key := []byte(fmt.Sprintf("key-%d", idx))
			if err := e.Put(key, []byte(fmt.Sprintf("value-%d", idx))); err != nil {
				errCh <- fmt.Errorf("Put(%s) failed: %v", key, err)
			}
		}(i)
	}

	// Concurrent reads
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			key := []byte(fmt.Sprintf("key-%d", idx))
			// May not exist yet, ignore NotFound
			_, err := e.Get(key)
			if err != nil && !engine.IsNotFound(err) {
				errCh <- fmt.Errorf("Get(%s) failed: %v", key, err)
			}
		}(i)
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Error(err)
	}
}
