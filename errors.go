package kvdb

import (
	"errors"

	"github.com/dep2p/go-kvdb/internal/engine"
)

// 本包自身的错误定义
var (
	// ErrInvalidTreeName 数据树名非法（空，或包含保留分隔符）
	ErrInvalidTreeName = errors.New("kvdb: invalid tree name")
)

// 重导出 engine 包的错误，方便使用方直接使用
var (
	// ErrNotFound 键不存在
	ErrNotFound = engine.ErrNotFound

	// ErrEmptyKey 空键
	ErrEmptyKey = engine.ErrEmptyKey

	// ErrClosed 引擎已关闭
	ErrClosed = engine.ErrClosed

	// ErrReadOnly 只读模式
	ErrReadOnly = engine.ErrReadOnly

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = engine.ErrInvalidConfig

	// ErrCorrupted 数据损坏
	ErrCorrupted = engine.ErrCorrupted

	// ErrTransactionTooLarge 批量超出单事务容量
	ErrTransactionTooLarge = engine.ErrTransactionTooLarge
)

// 重导出错误检查函数
var (
	// IsNotFound 检查是否为 key not found 错误
	IsNotFound = engine.IsNotFound

	// IsClosed 检查是否为 engine closed 错误
	IsClosed = engine.IsClosed

	// IsCorrupted 检查是否为数据损坏错误
	IsCorrupted = engine.IsCorrupted
)
