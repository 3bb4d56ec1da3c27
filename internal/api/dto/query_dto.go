package dto

// ListQuery 列表查询参数（分页 + 搜索 + 排序）
type ListQuery struct {
	Limit  int    `form:"limit"`
	Skip   int    `form:"skip"`
	Search string `form:"search"`
	Sort   string `form:"sort"` // "field:asc" | "field:desc"
}
