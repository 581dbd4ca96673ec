package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dep2p/go-kvdb/pkg/lib/log"
)

// Config 存储引擎配置
//
// 测试代码应使用 t.TempDir() 创建临时目录，确保测试与生产一致。
type Config struct {
	// Path 数据目录路径（必需）
	Path string

	// SyncWrites 是否同步写入
	// 启用后每次写入都会同步到磁盘，更安全但性能较低
	SyncWrites bool

	// ReadOnly 是否只读模式
	// 只读模式下不能进行写入操作
	ReadOnly bool

	// ProfileOnClose 关闭引擎时是否输出统计信息
	ProfileOnClose bool

	// Logger 日志记录器
	// 如果为 nil，将禁用引擎内部日志
	Logger Logger

	// Badger 特定选项
	Badger BadgerOptions
}

// BadgerOptions BadgerDB 特定选项
type BadgerOptions struct {
	// MemTableSize 内存表大小（字节）
	// 默认 64MB
	MemTableSize int64

	// ValueLogFileSize 值日志文件大小（字节）
	// 默认 1GB
	ValueLogFileSize int64

	// NumMemtables 内存表数量
	// 默认 5
	NumMemtables int

	// ValueThreshold 值大小阈值
	// 大于此值的值会存储在值日志中
	// 默认 1KB
	ValueThreshold int64

	// BlockCacheSize 块缓存大小（字节）
	// 默认 256MB
	BlockCacheSize int64

	// IndexCacheSize 索引缓存大小（字节）
	// 默认 0（禁用）
	IndexCacheSize int64

	// NumCompactors 压缩器数量
	// 默认 4
	NumCompactors int

	// CompactL0OnClose 关闭时是否压缩 L0
	// 默认 false
	CompactL0OnClose bool

	// ZSTDCompressionLevel ZSTD 压缩级别
	// 0 表示禁用压缩
	ZSTDCompressionLevel int

	// GCInterval 值日志垃圾回收间隔
	// 默认 10 分钟
	GCInterval time.Duration

	// GCDiscardRatio 垃圾回收丢弃比例
	// 默认 0.5
	GCDiscardRatio float64
}

// Logger 日志接口
type Logger interface {
	Errorf(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// DefaultConfig 返回默认配置
func DefaultConfig(path string) *Config {
	return &Config{
		Path:           path,
		SyncWrites:     false,
		ReadOnly:       false,
		ProfileOnClose: false,
		Logger:         nil,
		Badger:         DefaultBadgerOptions(),
	}
}

// DefaultBadgerOptions 返回默认 BadgerDB 选项
func DefaultBadgerOptions() BadgerOptions {
	return BadgerOptions{
		MemTableSize:         64 << 20, // 64MB
		ValueLogFileSize:     1 << 30,  // 1GB
		NumMemtables:         5,
		ValueThreshold:       1 << 10,   // 1KB
		BlockCacheSize:       256 << 20, // 256MB
		IndexCacheSize:       0,
		NumCompactors:        4,
		CompactL0OnClose:     false,
		ZSTDCompressionLevel: 0,
		GCInterval:           10 * time.Minute,
		GCDiscardRatio:       0.5,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	// Path 是必需的
	if c.Path == "" {
		return ErrInvalidConfig
	}

	if c.Badger.MemTableSize < 1<<20 { // 最小 1MB
		return ErrInvalidConfig
	}

	if c.Badger.ValueLogFileSize < 1<<20 { // 最小 1MB
		return ErrInvalidConfig
	}

	if c.Badger.GCDiscardRatio <= 0 || c.Badger.GCDiscardRatio > 1 {
		c.Badger.GCDiscardRatio = 0.5
	}

	return nil
}

// EnsureDir 确保数据目录存在
func (c *Config) EnsureDir() error {
	// 获取绝对路径
	absPath, err := filepath.Abs(c.Path)
	if err != nil {
		return err
	}
	c.Path = absPath

	// 创建目录
	return os.MkdirAll(c.Path, 0755)
}

// WithLogger 设置日志记录器
func (c *Config) WithLogger(logger Logger) *Config {
	c.Logger = logger
	return c
}

// WithSyncWrites 设置同步写入
func (c *Config) WithSyncWrites(sync bool) *Config {
	c.SyncWrites = sync
	return c
}

// WithReadOnly 设置只读模式
func (c *Config) WithReadOnly(readOnly bool) *Config {
	c.ReadOnly = readOnly
	return c
}

// NewComponentLogger 返回路由到统一日志的引擎 Logger
//
// 用于将 BadgerDB 内部日志接入 pkg/lib/log。
func NewComponentLogger(component string) Logger {
	return &componentLogger{l: log.Logger(component)}
}

// componentLogger 将格式化日志适配到 LazyLogger
type componentLogger struct {
	l *log.LazyLogger
}

func (c *componentLogger) Errorf(format string, args ...interface{}) {
	c.l.Error(fmt.Sprintf(format, args...))
}

func (c *componentLogger) Warningf(format string, args ...interface{}) {
	c.l.Warn(fmt.Sprintf(format, args...))
}

func (c *componentLogger) Infof(format string, args ...interface{}) {
	c.l.Info(fmt.Sprintf(format, args...))
}

func (c *componentLogger) Debugf(format string, args ...interface{}) {
	c.l.Debug(fmt.Sprintf(format, args...))
}
