package query

import (
	"sort"
	"strings"
)

const (
	// DefaultLimit 未指定页大小时的默认值
	DefaultLimit = 10
	// MaxLimit 单页上限，防止一次拉取过多
	MaxLimit = 100
	// WideFetchLimit 需要本地过滤/排序时向上游拉取的宽页大小
	WideFetchLimit = 200
)

// PageRequest 列表查询请求，只做钳制与默认值填充，不拒绝
type PageRequest struct {
	Limit  int
	Skip   int
	Search string
	Sort   string // "field:asc" 或 "field:desc"
}

// Normalize 钳制分页参数
func (r PageRequest) Normalize() PageRequest {
	if r.Limit <= 0 {
		r.Limit = DefaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	if r.Skip < 0 {
		r.Skip = 0
	}
	r.Search = strings.TrimSpace(r.Search)
	return r
}

// Capabilities 上游数据源能力声明
type Capabilities struct {
	// SortFields 上游可排序的逻辑字段 → 上游物理字段（如 name → firstName）
	SortFields map[string]string
	// ServerSearch 上游是否提供专门的搜索端点
	ServerSearch bool
	// LocalFilter 调用方会对取回的页再做本地谓词过滤（如按角色筛选），
	// 此时分页必须落在本地
	LocalFilter bool
}

// Plan 查询执行计划：上游请求参数 + 取回后的本地处理步骤
type Plan struct {
	Request PageRequest

	// 上游请求参数
	UpstreamLimit int
	UpstreamSkip  int
	SortBy        string // 为空表示不下发排序
	Order         string
	SearchQuery   string // 非空表示走上游搜索端点

	// 本地处理步骤
	ClientSortField string // 为空表示无需本地排序
	ClientSortDesc  bool
	ClientSearch    string // 非空表示本地子串过滤
	ClientPaginate  bool   // 本地过滤/排序后需要自行切片
}

// Compose 根据请求与上游能力决定排序/搜索在哪一侧执行。
//
// 排序字段在 SortFields 中则映射后下发上游；否则整页取回后本地稳定排序。
// 搜索同理：上游具备搜索端点时透传，否则本地按显示名/邮箱做不区分大小写
// 的子串匹配。任一步骤落在本地时，向上游拉宽页并在最后切片，total 以过滤
// 后的数量为准，保证 ceil(total/limit) 与实际可翻页数一致。
func Compose(req PageRequest, caps Capabilities) Plan {
	req = req.Normalize()
	p := Plan{Request: req}

	field, desc := SplitSort(req.Sort)
	if field != "" {
		if physical, ok := caps.SortFields[field]; ok {
			p.SortBy = physical
			if desc {
				p.Order = "desc"
			} else {
				p.Order = "asc"
			}
		} else {
			p.ClientSortField = field
			p.ClientSortDesc = desc
		}
	}

	if req.Search != "" {
		if caps.ServerSearch {
			p.SearchQuery = req.Search
		} else {
			p.ClientSearch = req.Search
		}
	}

	if p.ClientSortField != "" || p.ClientSearch != "" || caps.LocalFilter {
		// 本地处理需要完整候选集：拉宽页，最后自行切片
		p.ClientPaginate = true
		p.UpstreamLimit = WideFetchLimit
		p.UpstreamSkip = 0
	} else {
		// 全部下推，信任上游分页结果
		p.UpstreamLimit = req.Limit
		p.UpstreamSkip = req.Skip
	}

	return p
}

// SplitSort 拆分 "field:direction"，方向缺省或非法时按升序
func SplitSort(s string) (field string, desc bool) {
	if s == "" {
		return "", false
	}
	parts := strings.SplitN(s, ":", 2)
	field = strings.TrimSpace(parts[0])
	if len(parts) == 2 && strings.TrimSpace(parts[1]) == "desc" {
		desc = true
	}
	return field, desc
}

// SortKey 排序键：数值字段按数值比较（缺失按 0），其余按不区分大小写的字符串
type SortKey struct {
	Str     string
	Num     float64
	Numeric bool
}

// StringKey 字符串排序键
func StringKey(s string) SortKey {
	return SortKey{Str: strings.ToLower(s)}
}

// NumberKey 数值排序键
func NumberKey(n float64) SortKey {
	return SortKey{Num: n, Numeric: true}
}

func (k SortKey) less(other SortKey) bool {
	if k.Numeric || other.Numeric {
		return k.Num < other.Num
	}
	return k.Str < other.Str
}

// PageResult 最终分页结果
type PageResult[T any] struct {
	Items []T
	Total int
	Skip  int
	Limit int
}

// Finalize 对取回的页执行计划中的本地步骤并产出最终结果。
//
// keyFn 按请求的排序字段给出排序键，matchFn 判断条目是否命中本地搜索。
// 顺序固定为：过滤 → 稳定排序 → 切片。未启用本地分页时直接信任上游的
// items 与 total。相同输入下输出顺序逐字节一致（稳定排序，平局保持原序）。
func Finalize[T any](p Plan, items []T, upstreamTotal int, keyFn func(item T, field string) SortKey, matchFn func(item T, q string) bool) PageResult[T] {
	if !p.ClientPaginate {
		return PageResult[T]{
			Items: items,
			Total: upstreamTotal,
			Skip:  p.Request.Skip,
			Limit: p.Request.Limit,
		}
	}

	filtered := items
	if p.ClientSearch != "" && matchFn != nil {
		q := strings.ToLower(p.ClientSearch)
		filtered = make([]T, 0, len(items))
		for _, it := range items {
			if matchFn(it, q) {
				filtered = append(filtered, it)
			}
		}
	}

	if p.ClientSortField != "" && keyFn != nil {
		sorted := make([]T, len(filtered))
		copy(sorted, filtered)
		sort.SliceStable(sorted, func(i, j int) bool {
			ki := keyFn(sorted[i], p.ClientSortField)
			kj := keyFn(sorted[j], p.ClientSortField)
			if p.ClientSortDesc {
				return kj.less(ki)
			}
			return ki.less(kj)
		})
		filtered = sorted
	}

	total := len(filtered)
	start := p.Request.Skip
	if start > total {
		start = total
	}
	end := start + p.Request.Limit
	if end > total {
		end = total
	}

	return PageResult[T]{
		Items: filtered[start:end],
		Total: total,
		Skip:  p.Request.Skip,
		Limit: p.Request.Limit,
	}
}

// MatchesDisplayName 判断条目的显示名（first + last）或邮箱是否包含查询串。
// q 需已转小写。供各列表服务做本地搜索时复用。
func MatchesDisplayName(first, last, email, q string) bool {
	if q == "" {
		return true
	}
	f := strings.ToLower(strings.TrimSpace(first))
	l := strings.ToLower(strings.TrimSpace(last))
	full := strings.TrimSpace(f + " " + l)
	return strings.Contains(f, q) ||
		strings.Contains(l, q) ||
		strings.Contains(full, q) ||
		strings.Contains(strings.ToLower(email), q)
}
