package listing

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SlpAus/fame-list-backend/internal/platform/logger"
	"github.com/SlpAus/fame-list-backend/internal/platform/metrics"
	"github.com/SlpAus/fame-list-backend/internal/profile"
	"github.com/SlpAus/fame-list-backend/pkg/lifecycle"
)

// State 是列表加载状态机的状态
type State int

const (
	StateLoading State = iota
	StateLoaded
	// StateLoadFailed 对用户展示为空列表，与“暂无资料”无法区分
	StateLoadFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateLoadFailed:
		return "load_failed"
	default:
		return "unknown"
	}
}

// Repository 是控制器需要的远程操作
type Repository interface {
	FetchAll(ctx context.Context) ([]profile.Profile, error)
	IncrementView(ctx context.Context, id int64) error
}

// ViewTracker 是单个客户端的浏览去重记录，由 viewdedup.Tracker 实现
type ViewTracker interface {
	HasViewed(ctx context.Context, id int64) (bool, error)
	MarkViewed(ctx context.Context, id int64) error
}

// View 是一次按等级筛选后的展示结果
type View struct {
	State    State
	Caste    profile.Caste
	Profiles []profile.Profile
	LoadedAt time.Time
}

// Controller 编排 加载 → 筛选排序 → 选中 → 去重检查 → 增加浏览 → 重新加载。
// 快照只会被整体替换，不会被原地修改。
type Controller struct {
	repo Repository

	mu       sync.RWMutex
	state    State
	snapshot []profile.Profile
	loadedAt time.Time
	// seq 保证较早发起、较晚返回的加载不会覆盖较新的结果
	seq     uint64
	applied uint64

	wg sync.WaitGroup
}

func NewController(repo Repository) *Controller {
	return &Controller{repo: repo, state: StateLoading}
}

// Load 进入Loading并拉取完整集合。成功进入Loaded；失败进入LoadFailed，
// 快照清空，错误只记录日志，不返回给调用方。
func (c *Controller) Load(ctx context.Context) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state = StateLoading
	c.mu.Unlock()

	profiles, err := c.repo.FetchAll(ctx)
	metrics.ObserveFetch(err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq < c.applied {
		return
	}
	c.applied = seq
	if err != nil {
		logger.L().Error("加载资料列表失败", zap.Error(err))
		c.state = StateLoadFailed
		c.snapshot = nil
		return
	}
	c.state = StateLoaded
	c.snapshot = profiles
	c.loadedAt = time.Now()
}

// State 返回当前状态
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// View 在已加载的快照上同步地执行筛选排序，不会触发拉取
func (c *Controller) View(caste profile.Caste) View {
	c.mu.RLock()
	snapshot, state, loadedAt := c.snapshot, c.state, c.loadedAt
	c.mu.RUnlock()

	return View{
		State:    state,
		Caste:    caste,
		Profiles: profile.FilterSort(snapshot, caste),
		LoadedAt: loadedAt,
	}
}

// Profile 在当前快照中查找资料
func (c *Controller) Profile(id int64) (profile.Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.snapshot {
		if p.ID == id {
			return p, true
		}
	}
	return profile.Profile{}, false
}

// Select 立即返回快照中的资料（不重新拉取）。
// 同时在后台：若该客户端尚未浏览过，则 IncrementView → MarkViewed → Load。
// 快照中不存在的id不会触发任何远程调用。
func (c *Controller) Select(ctx context.Context, tracker ViewTracker, id int64) (profile.Profile, bool) {
	p, ok := c.Profile(id)
	if !ok {
		return profile.Profile{}, false
	}

	// 后台任务不随请求结束而取消
	bg := context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.recordView(bg, tracker, id)
	}()
	return p, true
}

func (c *Controller) recordView(ctx context.Context, tracker ViewTracker, id int64) {
	log := logger.L().With(zap.Int64("profile_id", id))

	viewed, err := tracker.HasViewed(ctx, id)
	if err != nil {
		// 无法确认时宁可少计一次，也不重复计数
		log.Warn("无法读取浏览标记，跳过本次计数", zap.Error(err))
		return
	}
	if viewed {
		metrics.ObserveView("deduplicated")
		return
	}

	if err := c.repo.IncrementView(ctx, id); err != nil {
		metrics.ObserveView("failed")
		log.Error("增加浏览数失败", zap.Error(err))
		return
	}
	metrics.ObserveView("sent")

	if err := tracker.MarkViewed(ctx, id); err != nil {
		log.Error("写入浏览标记失败", zap.Error(err))
	}

	c.Load(ctx)
}

// Wait 等待所有后台选中任务完成
func (c *Controller) Wait() {
	c.wg.Wait()
}

// RunRefresher 定期重新加载快照，直到生命周期句柄被取消
func (c *Controller) RunRefresher(handle *lifecycle.Handle, interval time.Duration) {
	defer handle.Close()
	for {
		if err := handle.Sleep(interval); err != nil {
			return
		}
		c.Load(handle.Ctx())
	}
}
