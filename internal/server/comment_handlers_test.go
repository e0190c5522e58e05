package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"photogram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) commentCount(postID uint) int64 {
	e.t.Helper()
	var n int64
	require.NoError(e.t, e.db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&n).Error)
	return n
}

func TestCreateComment(t *testing.T) {
	e := newTestServer(t)
	author, reader := e.user("author"), e.user("reader")
	post := e.post(author, "hello")
	tok := e.token(reader)
	path := fmt.Sprintf("/api/posts/%d/comments", post.ID)

	t.Run("valid form redirects to the post", func(t *testing.T) {
		// author_id in the body is ignored; the caller is the author.
		resp := e.do(http.MethodPost, path, map[string]any{"content": "  nice shot  ", "author_id": author.ID}, withToken(tok))
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, fmt.Sprintf("/posts/%d", post.ID), resp.Header.Get("Location"))

		var stored models.Comment
		require.NoError(t, e.db.Order("id desc").First(&stored).Error)
		assert.Equal(t, reader.ID, stored.AuthorID)
		assert.Equal(t, post.ID, stored.PostID)
		assert.Equal(t, "nice shot", stored.Content)
	})

	t.Run("next overrides the target", func(t *testing.T) {
		resp := e.do(http.MethodPost, path+"?next=/feed", map[string]string{"content": "again"}, withToken(tok))
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/feed", resp.Header.Get("Location"))
		assert.Equal(t, "/feed", decode[map[string]any](t, resp)["redirect"])
	})

	t.Run("offsite next is ignored", func(t *testing.T) {
		resp := e.do(http.MethodPost, path+"?next=//evil.example.com", map[string]string{"content": "third"}, withToken(tok))
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, fmt.Sprintf("/posts/%d", post.ID), resp.Header.Get("Location"))
	})

	t.Run("missing post", func(t *testing.T) {
		resp := e.do(http.MethodPost, "/api/posts/9999/comments", map[string]string{"content": "x"}, withToken(tok))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		resp := e.do(http.MethodPost, path, map[string]string{"content": "x"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	assert.EqualValues(t, 3, e.commentCount(post.ID))
}

func TestCreateComment_InvalidFormFlashes(t *testing.T) {
	e := newTestServer(t)
	author := e.user("author")
	post := e.post(author, "hello")
	tok := e.token(author)

	resp := e.do(http.MethodPost, fmt.Sprintf("/api/posts/%d/comments?next=/posts/%d", post.ID, post.ID),
		map[string]string{"content": "   "}, withToken(tok))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/posts/%d", post.ID), resp.Header.Get("Location"))
	assert.Zero(t, e.commentCount(post.ID))

	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)

	msgs := decode[[]FlashMessage](t, e.do(http.MethodGet, "/api/messages", nil, withCookies(cookies)))
	require.Len(t, msgs, 1)
	assert.Equal(t, FlashError, msgs[0].Level)
	assert.Equal(t, "content: This field is required.", msgs[0].Message)

	again := decode[[]FlashMessage](t, e.do(http.MethodGet, "/api/messages", nil, withCookies(cookies)))
	assert.Empty(t, again, "messages are shown once")
}

func TestCreateComment_UnparsableBodyFlashes(t *testing.T) {
	e := newTestServer(t)
	author := e.user("author")
	post := e.post(author, "hello")
	tok := e.token(author)

	// A JSON string cannot bind to the comment form.
	resp := e.do(http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", post.ID), "not a form", withToken(tok))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/posts/%d", post.ID), resp.Header.Get("Location"))
	assert.Zero(t, e.commentCount(post.ID))

	msgs := decode[[]FlashMessage](t, e.do(http.MethodGet, "/api/messages", nil, withCookies(resp.Cookies())))
	require.Len(t, msgs, 1)
	assert.Equal(t, FlashError, msgs[0].Level)
	assert.Equal(t, "Invalid request body", msgs[0].Message)
}

func TestModifyComment(t *testing.T) {
	e := newTestServer(t)
	owner, other := e.user("owner"), e.user("other")
	post := e.post(owner, "hello")
	cm := e.comment(owner, post, "first draft")
	path := fmt.Sprintf("/api/comments/%d/modify", cm.ID)

	t.Run("form is prefilled", func(t *testing.T) {
		resp := e.do(http.MethodGet, path, nil, withToken(e.token(owner)))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[map[string]map[string]any](t, resp)
		assert.Equal(t, "first draft", body["form"]["content"])
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		resp := e.do(http.MethodPost, path, map[string]string{"content": "hijack"}, withToken(e.token(other)))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		resp = e.do(http.MethodGet, path, nil, withToken(e.token(other)))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("invalid form returns 400", func(t *testing.T) {
		resp := e.do(http.MethodPost, path, map[string]string{"content": strings.Repeat("x", 2001)}, withToken(e.token(owner)))
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decode[map[string]any](t, resp)
		assert.Contains(t, body["fields"], "content")
	})

	t.Run("owner edit redirects to next", func(t *testing.T) {
		resp := e.do(http.MethodPut, path+"?next=/users/me", map[string]string{"content": "final"}, withToken(e.token(owner)))
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/users/me", resp.Header.Get("Location"))
	})

	t.Run("owner edit defaults to the post", func(t *testing.T) {
		resp := e.do(http.MethodPost, path, map[string]string{"content": "final again"}, withToken(e.token(owner)))
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, fmt.Sprintf("/posts/%d", post.ID), resp.Header.Get("Location"))
	})

	var stored models.Comment
	require.NoError(t, e.db.First(&stored, cm.ID).Error)
	assert.Equal(t, "final again", stored.Content)

	t.Run("missing comment", func(t *testing.T) {
		resp := e.do(http.MethodGet, "/api/comments/9999/modify", nil, withToken(e.token(owner)))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteComment(t *testing.T) {
	e := newTestServer(t)
	owner, other := e.user("owner"), e.user("other")
	post := e.post(owner, "hello")
	cm := e.comment(owner, post, "bye")
	path := fmt.Sprintf("/api/comments/%d/delete", cm.ID)

	resp := e.do(http.MethodPost, path, nil, withToken(e.token(other)))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = e.do(http.MethodGet, path, nil, withToken(e.token(owner)))
	assert.NotEqual(t, http.StatusSeeOther, resp.StatusCode, "delete requires POST")
	assert.EqualValues(t, 1, e.commentCount(post.ID))

	resp = e.do(http.MethodPost, path, nil, withToken(e.token(owner)))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/posts/%d", post.ID), resp.Header.Get("Location"))
	assert.Zero(t, e.commentCount(post.ID))
}
