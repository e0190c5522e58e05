package server

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"photogram/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten signals that a helper already wrote the HTTP response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed pagination parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPageSize = 100

// parsePagination extracts limit and offset query parameters with defaults and caps.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	offset := c.QueryInt("offset", 0)

	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return Pagination{Limit: limit, Offset: offset}
}

// parseID parses a positive route id. On failure it writes a 400 and returns
// errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(fmt.Sprintf("Invalid %s", humanizeParam(param))))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// currentUserID returns the id AuthRequired stored for the request.
func currentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok && id != 0
}

// safeNext returns the next query value when it is a local absolute path.
func safeNext(c *fiber.Ctx) string {
	next := strings.TrimSpace(c.Query("next"))
	if next == "" || !strings.HasPrefix(next, "/") {
		return ""
	}
	// Protocol-relative and backslash forms resolve to another host in browsers.
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	if strings.ContainsAny(next, "\r\n") {
		return ""
	}
	return next
}

func postPath(postID uint) string {
	return fmt.Sprintf("/posts/%d", postID)
}

// redirect answers with 303 and mirrors the target in the JSON body so API
// clients can follow it without reading headers.
func redirect(c *fiber.Ctx, target string, body fiber.Map) error {
	if body == nil {
		body = fiber.Map{}
	}
	body["redirect"] = target
	c.Location(target)
	return c.Status(fiber.StatusSeeOther).JSON(body)
}

func humanizeParam(param string) string {
	if strings.EqualFold(param, "id") {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") || strings.HasSuffix(param, "ID") {
		base := strings.TrimSuffix(strings.TrimSuffix(param, "Id"), "ID")
		if base == "" {
			return "ID"
		}
		return splitCamel(base) + " ID"
	}
	return splitCamel(param)
}

func splitCamel(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		if i == 0 {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
