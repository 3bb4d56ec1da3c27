package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type row struct {
	Name  string
	Email string
	Likes int
	Seq   int // 用于验证平局时保持原始相对顺序
}

func rowKey(r row, field string) SortKey {
	switch field {
	case "name":
		return StringKey(r.Name)
	case "likes":
		return NumberKey(float64(r.Likes))
	}
	return SortKey{}
}

func rowMatch(r row, q string) bool {
	return MatchesDisplayName(r.Name, "", r.Email, q)
}

func userCaps() Capabilities {
	return Capabilities{
		SortFields: map[string]string{
			"name":  "firstName",
			"email": "email",
			"role":  "role",
		},
		ServerSearch: true,
	}
}

func TestComposeServerSideSort(t *testing.T) {
	p := Compose(PageRequest{Limit: 10, Skip: 20, Sort: "name:desc"}, userCaps())

	require.Equal(t, "firstName", p.SortBy)
	require.Equal(t, "desc", p.Order)
	require.Empty(t, p.ClientSortField)
	require.False(t, p.ClientPaginate)
	require.Equal(t, 10, p.UpstreamLimit)
	require.Equal(t, 20, p.UpstreamSkip)
}

func TestComposeClientSortNotForwarded(t *testing.T) {
	caps := Capabilities{SortFields: map[string]string{"id": "id", "views": "views"}}
	p := Compose(PageRequest{Limit: 10, Skip: 0, Sort: "likes:desc"}, caps)

	// likes 不在上游可排序字段中，绝不能下发 sortBy=likes
	require.Empty(t, p.SortBy)
	require.Equal(t, "likes", p.ClientSortField)
	require.True(t, p.ClientSortDesc)
	require.True(t, p.ClientPaginate)
	require.Equal(t, WideFetchLimit, p.UpstreamLimit)
	require.Equal(t, 0, p.UpstreamSkip)
}

func TestFinalizeClientSortStable(t *testing.T) {
	caps := Capabilities{SortFields: map[string]string{"id": "id"}}
	p := Compose(PageRequest{Limit: 10, Sort: "likes:desc"}, caps)

	items := []row{
		{Name: "a", Likes: 3, Seq: 0},
		{Name: "b", Likes: 7, Seq: 1},
		{Name: "c", Likes: 3, Seq: 2},
		{Name: "d", Likes: 9, Seq: 3},
		{Name: "e", Likes: 3, Seq: 4},
	}

	res := Finalize(p, items, 50, rowKey, rowMatch)
	require.Equal(t, 5, res.Total)

	likes := make([]int, 0, len(res.Items))
	for _, r := range res.Items {
		likes = append(likes, r.Likes)
	}
	require.Equal(t, []int{9, 7, 3, 3, 3}, likes)

	// 平局（likes=3）保持原始相对顺序
	require.Equal(t, 0, res.Items[2].Seq)
	require.Equal(t, 2, res.Items[3].Seq)
	require.Equal(t, 4, res.Items[4].Seq)
}

func TestFinalizeFilteredTotal(t *testing.T) {
	caps := Capabilities{} // 上游不支持搜索，本地过滤
	p := Compose(PageRequest{Limit: 5, Skip: 0, Search: "smith"}, caps)

	items := make([]row, 0, 50)
	for i := 0; i < 50; i++ {
		name := "John Doe"
		if i%7 == 0 { // 50 条中 8 条命中
			name = "Jane Smith"
		}
		items = append(items, row{Name: name, Seq: i})
	}

	res := Finalize(p, items, 500, rowKey, rowMatch)
	// total 反映过滤后的数量，而非上游总量
	require.Equal(t, 8, res.Total)
	require.Len(t, res.Items, 5)
	for _, r := range res.Items {
		require.Equal(t, "Jane Smith", r.Name)
	}
}

func TestFinalizeIdempotentOrdering(t *testing.T) {
	caps := Capabilities{}
	req := PageRequest{Limit: 10, Sort: "likes:asc", Search: "jane"}

	items := []row{
		{Name: "Jane A", Likes: 2, Seq: 0},
		{Name: "Jane B", Likes: 2, Seq: 1},
		{Name: "John C", Likes: 1, Seq: 2},
		{Name: "Jane D", Likes: 1, Seq: 3},
		{Name: "Jane E", Likes: 2, Seq: 4},
	}

	first := Finalize(Compose(req, caps), items, 5, rowKey, rowMatch)
	second := Finalize(Compose(req, caps), items, 5, rowKey, rowMatch)
	require.Equal(t, first, second)
}

func TestFinalizeSkipBeyondTotal(t *testing.T) {
	caps := Capabilities{}
	p := Compose(PageRequest{Limit: 10, Skip: 30, Search: "x"}, caps)

	items := []row{{Name: "x1"}, {Name: "x2"}}
	res := Finalize(p, items, 2, rowKey, rowMatch)
	require.Empty(t, res.Items)
	require.Equal(t, 2, res.Total)
}

func TestComposeServerSearchRouting(t *testing.T) {
	p := Compose(PageRequest{Limit: 10, Search: "  alice  "}, userCaps())
	require.Equal(t, "alice", p.SearchQuery)
	require.Empty(t, p.ClientSearch)
	require.False(t, p.ClientPaginate)
}

func TestNormalizeClamps(t *testing.T) {
	r := PageRequest{Limit: -5, Skip: -1}.Normalize()
	require.Equal(t, DefaultLimit, r.Limit)
	require.Equal(t, 0, r.Skip)

	r = PageRequest{Limit: 10000}.Normalize()
	require.Equal(t, MaxLimit, r.Limit)
}

func TestSplitSort(t *testing.T) {
	f, desc := SplitSort("name:desc")
	require.Equal(t, "name", f)
	require.True(t, desc)

	f, desc = SplitSort("email")
	require.Equal(t, "email", f)
	require.False(t, desc)

	f, _ = SplitSort("")
	require.Empty(t, f)
}
