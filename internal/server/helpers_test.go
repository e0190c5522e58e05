package server

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestSafeNext(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"", ""},
		{"next=/posts/3", "/posts/3"},
		{"next=/posts/3?tab=comments", "/posts/3?tab=comments"},
		{"next=https://evil.example.com", ""},
		{"next=//evil.example.com", ""},
		{"next=/%5Cevil.example.com", ""},
		{"next=posts/3", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			app := fiber.New()
			var got string
			app.Get("/", func(c *fiber.Ctx) error {
				got = safeNext(c)
				return nil
			})
			_, err := app.Test(httptest.NewRequest("GET", "/?"+tt.query, nil))
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", 20, 0},
		{"limit=5&offset=10", 5, 10},
		{"limit=500", maxPageSize, 0},
		{"limit=-1&offset=-4", 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			app := fiber.New()
			var got Pagination
			app.Get("/", func(c *fiber.Ctx) error {
				got = parsePagination(c, 20)
				return nil
			})
			_, err := app.Test(httptest.NewRequest("GET", "/?"+tt.query, nil))
			assert.NoError(t, err)
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.Equal(t, tt.wantOffset, got.Offset)
		})
	}
}

func TestHumanizeParam(t *testing.T) {
	assert.Equal(t, "ID", humanizeParam("id"))
	assert.Equal(t, "Comment ID", humanizeParam("commentId"))
	assert.Equal(t, "Post ID", humanizeParam("postID"))
	assert.Equal(t, "Limit", humanizeParam("limit"))
}
