package kvdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
)

// ============= 插入测试 =============

func TestTree_InsertReturnsPrev(t *testing.T) {
	db := testDB(t)
	tree, _ := db.OpenTree("insert")

	// 首次插入：前值为 nil
	prev, err := tree.Insert(&testRecord{ID: "k1", Foo: "first"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if prev != nil {
		t.Errorf("first Insert returned prev %q, want nil", prev)
	}

	// 覆盖插入：返回前值
	prev, err = tree.Insert(&testRecord{ID: "k1", Foo: "second"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	var old testRecord
	if err := json.Unmarshal(prev, &old); err != nil {
		t.Fatalf("decode prev: %v", err)
	}
	if old.Foo != "first" {
		t.Errorf("prev.Foo = %q, want first", old.Foo)
	}

	// 覆盖不增加条目数量
	if n := mustLen(t, tree); n != 1 {
		t.Errorf("len after overwrite = %d, want 1", n)
	}
}

func TestTree_InsertKeyError(t *testing.T) {
	db := testDB(t)
	tree, _ := db.OpenTree("insert-err")

	// 键派生失败向调用方透传
	if _, err := tree.Insert(&testRecord{ID: "", Foo: "v"}); err == nil {
		t.Error("Insert with failing Keyer returned nil error")
	}

	if n := mustLen(t, tree); n != 0 {
		t.Errorf("len after failed Insert = %d, want 0", n)
	}
}

// ============= 读取测试 =============

func TestTree_GetAbsent(t *testing.T) {
	db := testDB(t)
	tree, _ := db.OpenTree("get")

	// 不存在的键不是错误
	value, err := tree.Get([]byte("nope"))
	if err != nil {
		t.Fatalf("Get returned error %v, want nil", err)
	}
	if value != nil {
		t.Errorf("Get returned %q, want nil", value)
	}
}

func TestTree_GetRaw(t *testing.T) {
	db := testDB(t)
	tree, _ := db.OpenTree("get-raw")

	if _, err := tree.Insert(&testRecord{ID: "k1", Foo: "v1"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	value, err := tree.Get([]byte("k1"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	var rec testRecord
	if err := json.Unmarshal(value, &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Foo != "v1" {
		t.Errorf("rec.Foo = %q, want v1", rec.Foo)
	}
}

func TestTree_ContainsKey(t *testing.T) {
	db := testDB(t)
	tree, _ := db.OpenTree("contains")

	ok, err := tree.ContainsKey([]byte("k1"))
	if err != nil {
		t.Fatalf("ContainsKey failed: %v", err)
	}
	if ok {
		t.Error("ContainsKey returned true for absent key")
	}

	if _, err := tree.Insert(&testRecord{ID: "k1", Foo: "v1"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	ok, err = tree.ContainsKey([]byte("k1"))
	if err != nil {
		t.Fatalf("ContainsKey failed: %v", err)
	}
	if !ok {
		t.Error("ContainsKey returned false for existing key")
	}
}

// ============= 类型化读取测试 =============

func TestDeserialize(t *testing.T) {
	db := testDB(t)
	tree, _ := db.OpenTree("deserialize")

	want := testRecord{ID: "k1", Foo: "v1"}
	if _, err := tree.Insert(&want); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := Deserialize[testRecord](tree, []byte("k1"))
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if got != want {
		t.Errorf("Deserialize returned %+v, want %+v", got, want)
	}
}

func TestDeserialize_NotFound(t *testing.T) {
	db := testDB(t)
	tree, _ := db.OpenTree("deserialize-missing")

	// 与 Get 不同，类型化读取将缺失视为错误
	_, err := Deserialize[testRecord](tree, []byte("nope"))
	if !IsNotFound(err) {
		t.Errorf("Deserialize returned %v, want ErrNotFound", err)
	}
}

func TestDeserialize_DecodeError(t *testing.T) {
	db := testDB(t)
	tree, _ := db.OpenTree("deserialize-bad")

	if _, err := tree.Insert(&testRecord{ID: "k1", Foo: "v1"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// 存储的是 JSON 对象，解码为 int 必然失败
	if _, err := Deserialize[int](tree, []byte("k1")); err == nil {
		t.Error("Deserialize into incompatible type returned nil error")
	}
}

// ============= 遍历测试 =============

func TestTree_IterOrder(t *testing.T) {
	db := testDB(t)
	tree, _ := db.OpenTree("iter")

	// 乱序写入
	for _, id := range []string{"k3", "k1", "k2"} {
		if _, err := tree.Insert(&testRecord{ID: id, Foo: "v-" + id}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	iter := tree.Iter()
	defer iter.Close()

	var got []string
	for iter.First(); iter.Valid(); iter.Next() {
		got = append(got, string(iter.Key()))
	}
	if err := iter.Err(); err != nil {
		t.Fatalf("iterator error: %v", err)
	}

	want := []string{"k1", "k2", "k3"}
	if len(got) != len(want) {
		t.Fatalf("iterated %d keys, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("key[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTree_ScanEarlyStop(t *testing.T) {
	db := testDB(t)
	tree, _ := db.OpenTree("scan")

	for _, id := range []string{"k1", "k2", "k3"} {
		if _, err := tree.Insert(&testRecord{ID: id, Foo: "v"}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	var seen [][]byte
	err := tree.Scan(func(key, _ []byte) bool {
		seen = append(seen, append([]byte(nil), key...))
		return len(seen) < 2 // 第二个条目后停止
	})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(seen) != 2 {
		t.Fatalf("Scan visited %d entries, want 2", len(seen))
	}
	if !bytes.Equal(seen[0], []byte("k1")) || !bytes.Equal(seen[1], []byte("k2")) {
		t.Errorf("Scan visited %q, want [k1 k2]", seen)
	}
}

func TestTree_IsEmpty(t *testing.T) {
	db := testDB(t)
	tree, _ := db.OpenTree("is-empty")

	empty, err := tree.IsEmpty()
	if err != nil {
		t.Fatalf("IsEmpty failed: %v", err)
	}
	if !empty {
		t.Error("IsEmpty returned false for fresh tree")
	}

	if _, err := tree.Insert(&testRecord{ID: "k1", Foo: "v"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	empty, err = tree.IsEmpty()
	if err != nil {
		t.Fatalf("IsEmpty failed: %v", err)
	}
	if empty {
		t.Error("IsEmpty returned true for non-empty tree")
	}
}

// ============= 批量原子性测试 =============

func TestTree_ApplyBatchAtomicVisibility(t *testing.T) {
	db := testDB(t)
	tree, _ := db.OpenTree("atomic")

	const total = 500

	batch := NewBatch()
	for i := 0; i < total; i++ {
		if err := batch.Insert(&testRecord{ID: fmt.Sprintf("key-%04d", i), Foo: "v"}); err != nil {
			t.Fatalf("batch.Insert failed: %v", err)
		}
	}

	stop := make(chan struct{})
	errCh := make(chan error, 1)

	var observed []int
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			n, err := tree.Len()
			if err != nil {
				errCh <- err
				return
			}
			observed = append(observed, n)

			select {
			case <-stop:
				return
			default:
			}
		}
	}()

	if err := tree.ApplyBatch(batch); err != nil {
		t.Fatalf("ApplyBatch failed: %v", err)
	}

	close(stop)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Fatalf("concurrent Len failed: %v", err)
	}

	// 并发读取者要么看到批量的全部写入，要么一个都看不到
	for _, n := range observed {
		if n != 0 && n != total {
			t.Errorf("concurrent scan observed %d entries, want 0 or %d", n, total)
		}
	}
}

// ============= 刷盘测试 =============

func TestTree_Flush(t *testing.T) {
	db := testDB(t)
	tree, _ := db.OpenTree("tree-flush")

	if _, err := tree.Insert(&testRecord{ID: "k1", Foo: "v1"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	n, err := tree.Flush()
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if n <= 0 {
		t.Errorf("Flush returned %d bytes, want > 0", n)
	}
}
