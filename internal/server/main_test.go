package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"photogram/internal/config"
	"photogram/internal/models"
	"photogram/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret-key-12345678901234567890123456789012"

type testEnv struct {
	t     *testing.T
	s     *Server
	app   *fiber.App
	db    *gorm.DB
	store *testutil.MemoryStore
	mr    *miniredis.Miniredis
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:      testJWTSecret,
		Env:            "test",
		FacebookAppID:  "4242",
		ImageStore:     "memory",
		ImagePublicURL: "/media",
	}
	for _, m := range mutate {
		m(cfg)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db := testutil.NewTestDB(t)
	store := testutil.NewMemoryStore()

	s, err := NewServerWithDeps(cfg, db, rdb, store)
	require.NoError(t, err)

	return &testEnv{t: t, s: s, app: s.NewApp(), db: db, store: store, mr: mr}
}

// user inserts an account directly; its password is not usable for login.
func (e *testEnv) user(name string) *models.User {
	e.t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", Password: "x"}
	require.NoError(e.t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) token(u *models.User) string {
	e.t.Helper()
	tok, err := e.s.generateToken(u.ID, u.Username)
	require.NoError(e.t, err)
	return tok
}

func (e *testEnv) post(author *models.User, content string) *models.Post {
	e.t.Helper()
	p := &models.Post{AuthorID: author.ID, Content: content, Photo: "mem://posts/1/seed.jpg"}
	require.NoError(e.t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) comment(author *models.User, post *models.Post, content string) *models.Comment {
	e.t.Helper()
	cm := &models.Comment{AuthorID: author.ID, PostID: post.ID, Content: content}
	require.NoError(e.t, e.db.Create(cm).Error)
	return cm
}

type reqOpt func(*http.Request)

func withToken(tok string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func withCookies(cookies []*http.Cookie) reqOpt {
	return func(r *http.Request) {
		for _, c := range cookies {
			r.AddCookie(c)
		}
	}
}

func (e *testEnv) do(method, path string, body any, opts ...reqOpt) *http.Response {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, o := range opts {
		o(req)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) upload(path, field, filename string, content []byte, fields map[string]string, opts ...reqOpt) *http.Response {
	e.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(e.t, w.WriteField(k, v))
	}
	if content != nil {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(e.t, err)
		_, err = part.Write(content)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	for _, o := range opts {
		o(req)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
