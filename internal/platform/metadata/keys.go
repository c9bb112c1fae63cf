package metadata

// metadata 表 key 列使用的键
const (
	// LastFlushAtKey 记录最近一次去重标记成功落盘的时间（RFC3339）
	LastFlushAtKey = "last_dedup_flush_at"

	// LastWarmupAtKey 记录最近一次把去重标记预热到Redis的时间
	LastWarmupAtKey = "last_dedup_warmup_at"
)
