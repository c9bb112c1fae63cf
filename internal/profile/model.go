package profile

import (
	"strings"

	"github.com/SlpAus/fame-list-backend/internal/platform/apperr"
)

// Profile 是远程存储中一条个人资料的快照。
// 每次拉取列表都会整体替换，客户端从不原地修改。
type Profile struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photo_url"`
	Caste       Caste     `json:"caste"`
	Views       int64     `json:"views"`
	Likes       int64     `json:"likes"`
	CreatedAt   Timestamp `json:"created_at"`
}

// HasPhoto 照片URL为空表示没有照片
func (p Profile) HasPhoto() bool {
	return p.PhotoURL != ""
}

// Fields 是管理员创建/修改资料时提交给远程存储的字段
type Fields struct {
	Name        string `json:"name"`
	Username    string `json:"username"`
	Description string `json:"description"`
	PhotoURL    string `json:"photo_url"`
	Caste       Caste  `json:"caste"`
}

// Normalize 去掉首尾空白
func (f Fields) Normalize() Fields {
	f.Name = strings.TrimSpace(f.Name)
	f.Username = strings.TrimSpace(f.Username)
	f.Description = strings.TrimSpace(f.Description)
	f.PhotoURL = strings.TrimSpace(f.PhotoURL)
	f.Caste = Caste(strings.TrimSpace(string(f.Caste)))
	return f
}

// Validate 名字和等级是必填项，等级必须来自封闭集合
func (f Fields) Validate() error {
	if f.Name == "" {
		return apperr.NewValidation("name", "заполните имя")
	}
	if f.Caste == "" {
		return apperr.NewValidation("caste", "выберите касту")
	}
	if !f.Caste.Known() {
		return apperr.NewValidation("caste", "неизвестная каста: "+string(f.Caste))
	}
	return nil
}

// listResponse 对应 GET 返回的 {profiles: [...]}
type listResponse struct {
	Profiles []Profile `json:"profiles"`
}

// createResponse 对应 POST 返回的 {id, message}
type createResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// dedupeByID 丢弃重复id的资料，保留第一次出现的那条
func dedupeByID(profiles []Profile) []Profile {
	seen := make(map[int64]struct{}, len(profiles))
	out := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
