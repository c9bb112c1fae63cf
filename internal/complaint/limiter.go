package complaint

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/SlpAus/fame-list-backend/internal/platform/apperr"
	applog "github.com/SlpAus/fame-list-backend/internal/platform/logger"
)

const (
	// ipKeyPrefix 是Redis中每个IP的有序集合键名前缀
	ipKeyPrefix = "complaints:ip:"
	// window 是申诉计数的时间窗口
	window = 24 * time.Hour
	// keyTTL 比窗口稍长以作缓冲
	keyTTL = 25 * time.Hour
)

// Limiter 用Redis有序集合实现按IP的滑动窗口计数。
// Redis不可用时放行，申诉不值得因为缓存故障而被拒绝。
type Limiter struct {
	rdb     *redis.Client
	healthy func() bool
	limit   int64
	now     func() time.Time
}

// NewLimiter limit<=0 时不做限制
func NewLimiter(rdb *redis.Client, healthy func() bool, limit int) *Limiter {
	return &Limiter{rdb: rdb, healthy: healthy, limit: int64(limit), now: time.Now}
}

// Reservation 是一次计数增加的补偿句柄。
// 转发失败时通过 RollbackUnlessCommitted 撤销这次计数，nil 句柄的方法都是空操作。
type Reservation struct {
	rdb       *redis.Client
	key       string
	member    string
	committed bool
}

// newMemberID 生成 [8字节纳秒时间戳 | 8字节随机数] 的成员ID，避免同一时刻的成员冲突
func newMemberID(t time.Time) (string, error) {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[0:8], uint64(t.UnixNano()))
	if _, err := rand.Read(b[8:16]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Acquire 为 ip 记录一次申诉。超过限制时返回 apperr.ErrRateLimited，且不占用名额。
func (l *Limiter) Acquire(ctx context.Context, ip string) (*Reservation, error) {
	if l == nil || l.limit <= 0 || l.rdb == nil || !l.healthy() {
		return nil, nil
	}
	if net.ParseIP(ip) == nil {
		applog.L().Debug("无法识别的客户端IP，跳过申诉频率限制", zap.String("ip", ip))
		return nil, nil
	}

	now := l.now()
	key := ipKeyPrefix + ip
	member, err := newMemberID(now)
	if err != nil {
		return nil, fmt.Errorf("生成 memberID 失败: %w", err)
	}
	minScore := float64(now.Add(-window).UnixMicro())

	// 清理过期记录、添加本次记录、刷新过期时间、读取总数，在一个事务中完成
	pipe := l.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("(%f", minScore))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMicro()), Member: member})
	pipe.Expire(ctx, key, keyTTL)
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		// 计数失败时放行
		applog.L().Warn("申诉频率计数失败，放行本次申诉", zap.Error(err))
		return nil, nil
	}

	res := &Reservation{rdb: l.rdb, key: key, member: member}
	if countCmd.Val() > l.limit {
		res.RollbackUnlessCommitted(ctx)
		return nil, apperr.ErrRateLimited
	}
	return res, nil
}

// Commit 标记申诉已成功转发，阻止回滚
func (r *Reservation) Commit() {
	if r != nil {
		r.committed = true
	}
}

// RollbackUnlessCommitted 应在 defer 中调用
func (r *Reservation) RollbackUnlessCommitted(ctx context.Context) {
	if r == nil || r.committed {
		return
	}
	if err := r.rdb.ZRem(context.WithoutCancel(ctx), r.key, r.member).Err(); err != nil {
		applog.L().Error("申诉计数补偿失败", zap.String("key", r.key), zap.Error(err))
	}
}
