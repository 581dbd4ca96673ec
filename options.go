package kvdb

import (
	"github.com/dep2p/go-kvdb/internal/engine"
)

// Mode 引擎空间/吞吐量权衡提示
type Mode int

const (
	// ModeFast 吞吐量优先（默认）
	ModeFast Mode = iota

	// ModeLowSpace 空间优先
	// 使用更小的内存表与值日志，关闭时压缩 L0
	ModeLowSpace
)

// String 返回模式名称
func (m Mode) String() string {
	switch m {
	case ModeLowSpace:
		return "low-space"
	default:
		return "fast"
	}
}

// Options 打开 Database 的配置
//
// 不可变值，在 Open 时消费一次，映射到底层引擎配置。
type Options struct {
	// Path 持久化存储的文件系统位置（必需）
	Path string

	// CompressionFactor 压缩因子
	// 大于 0 时启用 ZSTD 压缩并以此作为压缩级别，0 表示禁用
	CompressionFactor int

	// Mode 空间/吞吐量权衡提示，默认 ModeFast
	Mode Mode

	// PageCacheSize 引擎块缓存大小（字节），0 表示使用引擎默认值
	PageCacheSize int64

	// Debug 为 true 时，关闭存储会输出引擎统计信息，
	// 并启用引擎内部日志
	Debug bool
}

// DefaultOptions 返回默认配置
func DefaultOptions(path string) Options {
	return Options{
		Path:              path,
		CompressionFactor: 0,
		Mode:              ModeFast,
		PageCacheSize:     0,
		Debug:             false,
	}
}

// Validate 验证配置
func (o Options) Validate() error {
	// Path 是必需的
	if o.Path == "" {
		return ErrInvalidConfig
	}

	if o.CompressionFactor < 0 {
		return ErrInvalidConfig
	}

	if o.PageCacheSize < 0 {
		return ErrInvalidConfig
	}

	if o.Mode != ModeFast && o.Mode != ModeLowSpace {
		return ErrInvalidConfig
	}

	return nil
}

// WithCompressionFactor 设置压缩因子
func (o Options) WithCompressionFactor(factor int) Options {
	o.CompressionFactor = factor
	return o
}

// WithMode 设置空间/吞吐量模式
func (o Options) WithMode(mode Mode) Options {
	o.Mode = mode
	return o
}

// WithPageCacheSize 设置块缓存大小
func (o Options) WithPageCacheSize(size int64) Options {
	o.PageCacheSize = size
	return o
}

// WithDebug 设置调试模式
func (o Options) WithDebug(debug bool) Options {
	o.Debug = debug
	return o
}

// toEngineConfig 转换为引擎配置
func (o Options) toEngineConfig() *engine.Config {
	cfg := engine.DefaultConfig(o.Path)

	// 模式映射
	if o.Mode == ModeLowSpace {
		cfg.Badger.MemTableSize = 8 << 20        // 8MB
		cfg.Badger.ValueLogFileSize = 256 << 20  // 256MB
		cfg.Badger.NumMemtables = 2
		cfg.Badger.NumCompactors = 2
		cfg.Badger.CompactL0OnClose = true
	}

	// 压缩：大于 0 启用并作为级别
	cfg.Badger.ZSTDCompressionLevel = o.CompressionFactor

	if o.PageCacheSize > 0 {
		cfg.Badger.BlockCacheSize = o.PageCacheSize
	}

	if o.Debug {
		cfg.ProfileOnClose = true
		cfg.Logger = engine.NewComponentLogger("engine/badger")
	}

	return cfg
}
