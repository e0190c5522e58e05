package server

import (
	"context"

	"photogram/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Follow handles POST /api/users/:id/follow
// @Summary Follow a user
// @Description Idempotent; following yourself is allowed
// @Tags follow
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{following=bool,created=bool}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/follow [post]
func (s *Server) Follow(c *fiber.Ctx) error {
	return s.withTarget(c, func(ctx context.Context, userID, targetID uint) error {
		created, err := s.followService.Follow(ctx, userID, targetID)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		return c.JSON(fiber.Map{"following": true, "created": created})
	})
}

// Unfollow handles DELETE /api/users/:id/follow
// @Summary Unfollow a user
// @Tags follow
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{following=bool,removed=bool}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/follow [delete]
func (s *Server) Unfollow(c *fiber.Ctx) error {
	return s.withTarget(c, func(ctx context.Context, userID, targetID uint) error {
		removed, err := s.followService.Unfollow(ctx, userID, targetID)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		return c.JSON(fiber.Map{"following": false, "removed": removed})
	})
}

// FollowToggle handles POST /api/users/:id/follow/toggle
// @Summary Toggle following
// @Tags follow
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{following=bool}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/follow/toggle [post]
func (s *Server) FollowToggle(c *fiber.Ctx) error {
	return s.withTarget(c, func(ctx context.Context, userID, targetID uint) error {
		following, err := s.followService.FollowToggle(ctx, userID, targetID)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		return c.JSON(fiber.Map{"following": following})
	})
}

// GetFollowing handles GET /api/users/:id/following
// @Summary Users this user follows
// @Tags follow
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} models.User
// @Router /users/{id}/following [get]
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	return s.withTarget(c, func(ctx context.Context, _, targetID uint) error {
		users, err := s.followService.Following(ctx, targetID)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		return c.JSON(users)
	})
}

// GetFollowers handles GET /api/users/:id/followers
// @Summary Users following this user
// @Tags follow
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} models.User
// @Router /users/{id}/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	return s.withTarget(c, func(ctx context.Context, _, targetID uint) error {
		users, err := s.followService.Followers(ctx, targetID)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		return c.JSON(users)
	})
}

// GetFollowStatus handles GET /api/users/:id/follow-status
// @Summary Relation between caller and user
// @Tags follow
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.FollowStatus
// @Router /users/{id}/follow-status [get]
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	return s.withTarget(c, func(ctx context.Context, userID, targetID uint) error {
		status, err := s.followService.Status(ctx, userID, targetID)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		return c.JSON(status)
	})
}

func (s *Server) withTarget(c *fiber.Ctx, fn func(ctx context.Context, userID, targetID uint) error) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := currentUserID(c)
	return fn(c.UserContext(), userID, targetID)
}
