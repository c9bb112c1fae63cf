package profile

import "sort"

// FilterSort 返回只包含指定等级的资料（CasteAll 时为全部），按等级排名升序，
// 同一排名内保持输入顺序。不修改输入切片。
// 未知等级的资料只会出现在 CasteAll 视图中，并排在所有已知等级之后。
func FilterSort(profiles []Profile, caste Caste) []Profile {
	out := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		if caste == CasteAll || caste == "" || p.Caste == caste {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Caste.Rank() < out[j].Caste.Rank()
	})
	return out
}
