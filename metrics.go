package kvdb

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector 将引擎统计信息暴露为 Prometheus 指标
//
// 使用方式：
//
//	db, _ := kvdb.Open(opts)
//	prometheus.MustRegister(kvdb.NewCollector(db))
type Collector struct {
	db *Database

	reads        *prometheus.Desc
	writes       *prometheus.Desc
	deletes      *prometheus.Desc
	bytesWritten *prometheus.Desc
	diskSize     *prometheus.Desc
	lsmSize      *prometheus.Desc
	vlogSize     *prometheus.Desc
	numTables    *prometheus.Desc
	numLevels    *prometheus.Desc
}

// NewCollector 创建 Database 的指标采集器
func NewCollector(db *Database) *Collector {
	return &Collector{
		db: db,
		reads: prometheus.NewDesc(
			"kvdb_engine_reads_total",
			"Total number of engine read operations.",
			nil, nil,
		),
		writes: prometheus.NewDesc(
			"kvdb_engine_writes_total",
			"Total number of engine write operations.",
			nil, nil,
		),
		deletes: prometheus.NewDesc(
			"kvdb_engine_deletes_total",
			"Total number of engine delete operations.",
			nil, nil,
		),
		bytesWritten: prometheus.NewDesc(
			"kvdb_engine_bytes_written_total",
			"Total number of key/value bytes written to the engine.",
			nil, nil,
		),
		diskSize: prometheus.NewDesc(
			"kvdb_engine_disk_size_bytes",
			"Total on-disk size of the engine (LSM + value log).",
			nil, nil,
		),
		lsmSize: prometheus.NewDesc(
			"kvdb_engine_lsm_size_bytes",
			"Size of the engine LSM tree.",
			nil, nil,
		),
		vlogSize: prometheus.NewDesc(
			"kvdb_engine_vlog_size_bytes",
			"Size of the engine value log.",
			nil, nil,
		),
		numTables: prometheus.NewDesc(
			"kvdb_engine_tables",
			"Number of SST tables in the engine.",
			nil, nil,
		),
		numLevels: prometheus.NewDesc(
			"kvdb_engine_levels",
			"Number of LSM levels in the engine.",
			nil, nil,
		),
	}
}

// Describe 实现 prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.reads
	ch <- c.writes
	ch <- c.deletes
	ch <- c.bytesWritten
	ch <- c.diskSize
	ch <- c.lsmSize
	ch <- c.vlogSize
	ch <- c.numTables
	ch <- c.numLevels
}

// Collect 实现 prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.db.Stats()

	ch <- prometheus.MustNewConstMetric(c.reads, prometheus.CounterValue, float64(s.NumReads))
	ch <- prometheus.MustNewConstMetric(c.writes, prometheus.CounterValue, float64(s.NumWrites))
	ch <- prometheus.MustNewConstMetric(c.deletes, prometheus.CounterValue, float64(s.NumDeletes))
	ch <- prometheus.MustNewConstMetric(c.bytesWritten, prometheus.CounterValue, float64(s.NumBytesWritten))
	ch <- prometheus.MustNewConstMetric(c.diskSize, prometheus.GaugeValue, float64(s.DiskSize))
	ch <- prometheus.MustNewConstMetric(c.lsmSize, prometheus.GaugeValue, float64(s.LSMSize))
	ch <- prometheus.MustNewConstMetric(c.vlogSize, prometheus.GaugeValue, float64(s.VlogSize))
	ch <- prometheus.MustNewConstMetric(c.numTables, prometheus.GaugeValue, float64(s.NumTables))
	ch <- prometheus.MustNewConstMetric(c.numLevels, prometheus.GaugeValue, float64(s.NumLevels))
}

// 编译时检查接口实现
var _ prometheus.Collector = (*Collector)(nil)
