package server

import (
	"encoding/json"
	"log/slog"

	"photogram/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

const flashSessionKey = "flash"

// FlashError is the level of a rejected form submission.
const FlashError = "error"

// FlashMessage is a one-shot notice shown on the next page the client loads.
type FlashMessage struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// addFlash queues msg in the caller's session. A failure is logged and the
// request continues.
func (s *Server) addFlash(c *fiber.Ctx, level, msg string) {
	sess, err := s.sessions.Get(c)
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "session unavailable", slog.String("error", err.Error()))
		return
	}
	pending := decodeFlashes(sess.Get(flashSessionKey))
	pending = append(pending, FlashMessage{Level: level, Message: msg})
	raw, err := json.Marshal(pending)
	if err != nil {
		return
	}
	sess.Set(flashSessionKey, string(raw))
	if err := sess.Save(); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "saving flash failed", slog.String("error", err.Error()))
	}
}

// popFlashes returns and clears the queued messages.
func (s *Server) popFlashes(c *fiber.Ctx) ([]FlashMessage, error) {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return nil, err
	}
	pending := decodeFlashes(sess.Get(flashSessionKey))
	if len(pending) == 0 {
		return []FlashMessage{}, nil
	}
	sess.Delete(flashSessionKey)
	if err := sess.Save(); err != nil {
		return nil, err
	}
	return pending, nil
}

func decodeFlashes(v interface{}) []FlashMessage {
	raw, ok := v.(string)
	if !ok || raw == "" {
		return nil
	}
	var out []FlashMessage
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// PopMessages returns pending flash messages and clears them
// @Summary Pop flash messages
// @Description Returns the messages queued for this session and removes them
// @Tags messages
// @Produce json
// @Success 200 {array} FlashMessage
// @Router /messages [get]
func (s *Server) PopMessages(c *fiber.Ctx) error {
	msgs, err := s.popFlashes(c)
	if err != nil {
		return err
	}
	return c.JSON(msgs)
}
