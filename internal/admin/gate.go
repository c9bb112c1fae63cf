package admin

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SlpAus/fame-list-backend/internal/platform/apperr"
	"github.com/SlpAus/fame-list-backend/internal/session"
)

// Gate 是管理入口的口令开关。
// 它只决定界面上是否显示管理操作，不是安全边界：口令是一个共享的配置字符串。
type Gate struct {
	password []byte
}

// NewGate 口令为空时管理入口永远无法解锁
func NewGate(password string) *Gate {
	return &Gate{password: []byte(password)}
}

// Enabled 返回是否配置了口令
func (g *Gate) Enabled() bool {
	return len(g.password) > 0
}

// Check 时间恒定地比较口令
func (g *Gate) Check(password string) bool {
	if !g.Enabled() {
		return false
	}
	return subtle.ConstantTimeCompare(g.password, []byte(password)) == 1
}

// Login 口令正确时解锁会话的管理入口
func (g *Gate) Login(s *session.Session, password string) bool {
	if !g.Check(password) {
		return false
	}
	s.SetAdmin(true)
	return true
}

func (g *Gate) Logout(s *session.Session) {
	s.SetAdmin(false)
}

// RequireAdmin 拒绝未解锁管理入口的会话
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := session.FromContext(c)
		if s == nil || !s.IsAdmin() {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// abortUnauthorized 用于登录失败，提示与 RequireAdmin 不同
func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
