package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestFetchUsersPageForwardsSort(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		require.Equal(t, "/users", r.URL.Path)
		_ = json.NewEncoder(w).Encode(UsersPage{
			Users: []User{{ID: 1, FirstName: "Emily", Role: "admin"}},
			Total: 208, Skip: 10, Limit: 5,
		})
	})

	page, err := c.FetchUsersPage(context.Background(), 5, 10, "firstName", "desc")
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	require.Equal(t, 208, page.Total)
	require.Contains(t, gotQuery, "sortBy=firstName")
	require.Contains(t, gotQuery, "order=desc")
}

func TestFetchUsersPageOmitsEmptySort(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.URL.Query().Get("sortBy"))
		require.Empty(t, r.URL.Query().Get("order"))
		_ = json.NewEncoder(w).Encode(UsersPage{})
	})

	_, err := c.FetchUsersPage(context.Background(), 10, 0, "", "")
	require.NoError(t, err)
}

func TestFetchPostsForUserProjection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/posts/user/42", r.URL.Path)
		require.Equal(t, "0", r.URL.Query().Get("limit"))
		require.Equal(t, "id,reactions", r.URL.Query().Get("select"))
		w.Write([]byte(`{"posts":[{"id":1,"reactions":{"likes":3}},{"id":2,"reactions":{"likes":null}}],"total":12}`))
	})

	posts, total, err := c.FetchPostsForUser(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, 12, total)
	require.Len(t, posts, 2)
	require.Equal(t, Count(3), posts[0].Reactions.Likes)
	// null likes 在边界处被强制为 0
	require.Equal(t, Count(0), posts[1].Reactions.Likes)
}

func TestFetchCommentCountForPost(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/posts/7/comments", r.URL.Path)
		require.Equal(t, "1", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"comments":[{"id":1}],"total":5,"skip":0,"limit":1}`))
	})

	total, err := c.FetchCommentCountForPost(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 5, total)
}

func TestNonSuccessStatusIsUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.FetchUsersPage(context.Background(), 10, 0, "", "")
	require.ErrorIs(t, err, ErrUpstream)

	_, err = c.FetchCommentCountForPost(context.Background(), 1)
	require.ErrorIs(t, err, ErrUpstream)
}

func TestCreateUserSendsPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/users/add", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Jane", body["firstName"])
		require.Equal(t, "admin", body["role"])

		_ = json.NewEncoder(w).Encode(User{ID: 209, FirstName: "Jane", Role: "admin"})
	})

	user, err := c.CreateUser(context.Background(), &UserInput{FirstName: "Jane", Role: "admin"})
	require.NoError(t, err)
	require.Equal(t, int64(209), user.ID)
}

func TestCountCoercion(t *testing.T) {
	var c Count
	require.NoError(t, json.Unmarshal([]byte(`8`), &c))
	require.Equal(t, Count(8), c)

	require.NoError(t, json.Unmarshal([]byte(`null`), &c))
	require.Equal(t, Count(0), c)

	require.NoError(t, json.Unmarshal([]byte(`"12"`), &c))
	require.Equal(t, Count(12), c)

	require.NoError(t, json.Unmarshal([]byte(`"oops"`), &c))
	require.Equal(t, Count(0), c)
}
