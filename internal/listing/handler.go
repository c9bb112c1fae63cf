package listing

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SlpAus/fame-list-backend/internal/like"
	"github.com/SlpAus/fame-list-backend/internal/platform/apperr"
	"github.com/SlpAus/fame-list-backend/internal/platform/logger"
	"github.com/SlpAus/fame-list-backend/internal/profile"
	"github.com/SlpAus/fame-list-backend/internal/session"
)

// TrackerFactory 返回某个客户端的浏览去重记录
type TrackerFactory func(clientID string) ViewTracker

// profileItem 是带有当前会话点赞标记的资料
type profileItem struct {
	profile.Profile
	Liked bool `json:"liked"`
}

type listResponse struct {
	State    string        `json:"state"`
	Caste    profile.Caste `json:"caste"`
	Profiles []profileItem `json:"profiles"`
	LoadedAt *time.Time    `json:"loaded_at,omitempty"`
}

type casteItem struct {
	Caste profile.Caste `json:"caste"`
	Rank  int           `json:"rank"`
}

// Handler 暴露列表、详情和点赞接口
type Handler struct {
	ctrl     *Controller
	trackers TrackerFactory
	toggler  *like.Toggler
}

func NewHandler(ctrl *Controller, trackers TrackerFactory, toggler *like.Toggler) *Handler {
	return &Handler{ctrl: ctrl, trackers: trackers, toggler: toggler}
}

func items(profiles []profile.Profile, likes *like.State) []profileItem {
	out := make([]profileItem, len(profiles))
	for i, p := range profiles {
		out[i] = profileItem{Profile: p, Liked: likes != nil && likes.IsLiked(p.ID)}
	}
	return out
}

// Castes 处理 GET /api/castes，按等级顺序返回封闭的等级集合
func (h *Handler) Castes(c *gin.Context) {
	castes := profile.KnownCastes()
	out := make([]casteItem, len(castes))
	for i, caste := range castes {
		out[i] = casteItem{Caste: caste, Rank: caste.Rank()}
	}
	c.JSON(http.StatusOK, gin.H{"castes": out})
}

// List 处理 GET /api/profiles?caste=
// 没有 caste 参数时沿用会话中上一次选择的筛选。
func (h *Handler) List(c *gin.Context) {
	s := session.FromContext(c)

	caste := profile.CasteAll
	if raw, ok := c.GetQuery("caste"); ok {
		parsed, err := profile.ParseCasteFilter(raw)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		caste = parsed
		if s != nil {
			s.SetCaste(caste)
		}
	} else if s != nil {
		caste = s.Caste()
	}

	view := h.ctrl.View(caste)
	resp := listResponse{
		State: view.State.String(),
		Caste: view.Caste,
	}
	var likes *like.State
	if s != nil {
		likes = s.Likes
	}
	resp.Profiles = items(view.Profiles, likes)
	if !view.LoadedAt.IsZero() {
		resp.LoadedAt = &view.LoadedAt
	}
	c.JSON(http.StatusOK, resp)
}

// Detail 处理 GET /api/profiles/:id
// 立即返回快照中的资料，浏览计数在后台完成。
func (h *Handler) Detail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	s := session.FromContext(c)

	var (
		p     profile.Profile
		found bool
	)
	if s == nil {
		// 没有访客身份时无法去重，只展示不计数
		p, found = h.ctrl.Profile(id)
	} else {
		p, found = h.ctrl.Select(c.Request.Context(), h.trackers(s.ClientID), id)
	}
	if !found {
		apperr.Respond(c, apperr.ErrNotFound)
		return
	}

	item := profileItem{Profile: p}
	if s != nil {
		item.Liked = s.Likes.IsLiked(id)
	}
	c.JSON(http.StatusOK, item)
}

// Like 处理 POST /api/profiles/:id/like
// 本地点赞状态总是翻转；远程失败时 synced 为false，展示的点赞数在下一次加载后更新。
func (h *Handler) Like(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	s := session.FromContext(c)
	if s == nil {
		apperr.Respond(c, apperr.ErrUnauthorized)
		return
	}
	if _, found := h.ctrl.Profile(id); !found {
		apperr.Respond(c, apperr.ErrNotFound)
		return
	}

	liked, err := h.toggler.Toggle(c.Request.Context(), s.Likes, id)
	if err != nil {
		logger.L().Warn("点赞同步失败", zap.Int64("profile_id", id), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked, "synced": err == nil})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		apperr.Respond(c, apperr.NewValidation("id", "Некорректный идентификатор"))
		return 0, false
	}
	return id, true
}
