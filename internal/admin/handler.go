package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SlpAus/fame-list-backend/internal/platform/apperr"
	"github.com/SlpAus/fame-list-backend/internal/profile"
	"github.com/SlpAus/fame-list-backend/internal/session"
)

// profileRequest 是创建/修改资料的请求体。Image 是可选的base64图片。
type profileRequest struct {
	Name        string `json:"name"`
	Username    string `json:"username"`
	Description string `json:"description"`
	PhotoURL    string `json:"photo_url"`
	Caste       string `json:"caste"`
	Image       string `json:"image"`
}

func (r profileRequest) fields() profile.Fields {
	return profile.Fields{
		Name:        r.Name,
		Username:    r.Username,
		Description: r.Description,
		PhotoURL:    r.PhotoURL,
		Caste:       profile.Caste(r.Caste),
	}
}

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

type Handler struct {
	gate *Gate
	svc  *Service
}

func NewHandler(gate *Gate, svc *Service) *Handler {
	return &Handler{gate: gate, svc: svc}
}

// Login 处理 POST /api/admin/login
func (h *Handler) Login(c *gin.Context) {
	s := session.FromContext(c)
	if s == nil {
		apperr.Respond(c, apperr.ErrUnauthorized)
		return
	}
	var body loginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	if !h.gate.Login(s, body.Password) {
		abortUnauthorized(c, "Неверный пароль")
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": true})
}

// Logout 处理 POST /api/admin/logout
func (h *Handler) Logout(c *gin.Context) {
	if s := session.FromContext(c); s != nil {
		h.gate.Logout(s)
	}
	c.JSON(http.StatusOK, gin.H{"admin": false})
}

// Status 处理 GET /api/admin/status
func (h *Handler) Status(c *gin.Context) {
	s := session.FromContext(c)
	c.JSON(http.StatusOK, gin.H{"enabled": h.gate.Enabled(), "admin": s != nil && s.IsAdmin()})
}

func (h *Handler) Create(c *gin.Context) {
	var body profileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	id, err := h.svc.Create(c.Request.Context(), body.fields(), body.Image)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "Профиль добавлен"})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body profileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	if err := h.svc.Update(c.Request.Context(), id, body.fields(), body.Image); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Профиль обновлён"})
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Профиль удалён"})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		apperr.Respond(c, apperr.NewValidation("id", "Некорректный идентификатор"))
		return 0, false
	}
	return id, true
}
