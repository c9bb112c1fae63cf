package profile

import (
	"math"
	"strings"

	"github.com/SlpAus/fame-list-backend/internal/platform/apperr"
)

// Caste 是资料的等级标签，决定展示分组和排序
type Caste string

const (
	CasteMainFame  Caste = "главный фейм"
	CasteFame      Caste = "фейм"
	CasteMidFame   Caste = "средний фейм"
	CasteSmallFame Caste = "малый фейм"
	CasteNewcomer  Caste = "новичок"
	CasteScammer   Caste = "скамер"

	// CasteAll 是“不筛选”的哨兵值
	CasteAll Caste = "all"
)

// unrankedRank 未知等级排在所有已知等级之后
const unrankedRank = math.MaxInt

var casteRanks = map[Caste]int{
	CasteMainFame:  1,
	CasteFame:      2,
	CasteMidFame:   3,
	CasteSmallFame: 4,
	CasteNewcomer:  5,
	CasteScammer:   6,
}

// KnownCastes 按排名顺序返回封闭的等级集合
func KnownCastes() []Caste {
	return []Caste{CasteMainFame, CasteFame, CasteMidFame, CasteSmallFame, CasteNewcomer, CasteScammer}
}

// Rank 返回等级的排名，未知等级返回 math.MaxInt
func (c Caste) Rank() int {
	if r, ok := casteRanks[c]; ok {
		return r
	}
	return unrankedRank
}

// Known 判断等级是否属于封闭集合
func (c Caste) Known() bool {
	_, ok := casteRanks[c]
	return ok
}

// ParseCasteFilter 解析查询参数中的等级筛选。空字符串和 "all" 都表示不筛选。
func ParseCasteFilter(raw string) (Caste, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, string(CasteAll)) {
		return CasteAll, nil
	}
	c := Caste(strings.ToLower(raw))
	if !c.Known() {
		return "", apperr.NewValidation("caste", "неизвестная каста: "+raw)
	}
	return c, nil
}
