package kvdb

import "bytes"

// Keyer 键派生能力
//
// 领域记录实现此接口即可被存储：记录自己产生查找键。
// 对逻辑上相同的记录，Key 必须返回稳定的字节序列，
// 写入与后续查找使用同一个键。必要字段缺失时应返回错误，
// 而不是返回空键或占位键。
type Keyer interface {
	// Key 返回记录的存储键
	Key() ([]byte, error)
}

// TreeName 数据树名
//
// 相等性与散列遵循字符串值。树名由调用方自由选择，
// DefaultTree 为引擎保留的默认树名。
type TreeName string

// DefaultTree 保留的默认数据树
//
// 始终存在于目录中，Destroy 永远不会删除它。
const DefaultTree TreeName = "__default"

// String 返回树名字符串
func (n TreeName) String() string {
	return string(n)
}

// Validate 验证树名
//
// 树名不能为空，且不能包含键编码使用的 0x00 分隔符。
func (n TreeName) Validate() error {
	if len(n) == 0 {
		return ErrInvalidTreeName
	}
	if bytes.IndexByte([]byte(n), 0x00) >= 0 {
		return ErrInvalidTreeName
	}
	return nil
}

// 键编码
//
// 数据键:  't' 0x00 name 0x00 rawKey
// 目录键:  'n' 0x00 name
//
// 前缀固定，树内条目的字节序与原始键一致。
const (
	dataTag    = 't'
	catalogTag = 'n'
	keySep     = 0x00
)

// catalogPrefix 目录键前缀
var catalogPrefix = []byte{catalogTag, keySep}

// treePrefix 返回数据树的数据键前缀
func treePrefix(name TreeName) []byte {
	prefix := make([]byte, 0, len(name)+3)
	prefix = append(prefix, dataTag, keySep)
	prefix = append(prefix, name...)
	prefix = append(prefix, keySep)
	return prefix
}

// catalogKey 返回数据树的目录键
func catalogKey(name TreeName) []byte {
	key := make([]byte, 0, len(name)+2)
	key = append(key, catalogTag, keySep)
	key = append(key, name...)
	return key
}

// treeNameFromCatalogKey 从目录键还原树名
func treeNameFromCatalogKey(key []byte) TreeName {
	if len(key) <= len(catalogPrefix) {
		return ""
	}
	return TreeName(key[len(catalogPrefix):])
}
