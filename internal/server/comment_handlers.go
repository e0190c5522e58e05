package server

import (
	"errors"

	"photogram/internal/models"
	"photogram/internal/service"
	"photogram/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const commentLocalsKey = "comment"

// CommentOwnerRequired loads :commentId and lets the request through only
// for its author. The comment is left in c.Locals("comment").
func (s *Server) CommentOwnerRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "commentId")
		if err != nil {
			return nil
		}
		comment, err := s.commentService.GetComment(c.UserContext(), id)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		userID, _ := currentUserID(c)
		if !comment.IsOwnedBy(userID) {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("You can only change your own comments"))
		}
		c.Locals(commentLocalsKey, comment)
		return c.Next()
	}
}

func ownedCommentFrom(c *fiber.Ctx) *models.Comment {
	comment, _ := c.Locals(commentLocalsKey).(*models.Comment)
	return comment
}

// GetComments handles GET /api/posts/:id/comments
// @Summary List comments on a post
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {array} models.Comment
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	comments, err := s.commentService.ListComments(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(comments)
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Comment on a post
// @Description Always redirects to next or the post. An invalid form queues one flash message with every field error and stores nothing.
// @Tags comments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param next query string false "Redirect target"
// @Param request body validation.CommentForm true "Comment"
// @Success 303 {object} object{redirect=string,comment=models.Comment}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := currentUserID(c)

	target := safeNext(c)
	if target == "" {
		target = postPath(postID)
	}

	var form validation.CommentForm
	if err := c.BodyParser(&form); err != nil {
		msg := "Invalid request body"
		s.addFlash(c, FlashError, msg)
		return redirect(c, target, fiber.Map{"message": msg})
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID: userID,
		PostID: postID,
		Form:   form,
	})
	if err != nil {
		if models.ErrorCode(err) != models.CodeValidation {
			return models.RespondWithAppError(c, err)
		}
		msg := err.Error()
		s.addFlash(c, FlashError, msg)
		return redirect(c, target, fiber.Map{"message": msg})
	}

	return redirect(c, target, fiber.Map{"comment": comment})
}

// GetCommentForm handles GET /api/comments/:commentId/modify
// @Summary Pre-filled comment form
// @Tags comments
// @Security BearerAuth
// @Produce json
// @Param commentId path int true "Comment ID"
// @Success 200 {object} object{form=validation.CommentForm,comment=models.Comment}
// @Failure 403 {object} models.ErrorResponse
// @Router /comments/{commentId}/modify [get]
func (s *Server) GetCommentForm(c *fiber.Ctx) error {
	comment := ownedCommentFrom(c)
	return c.JSON(fiber.Map{
		"form":    validation.CommentForm{Content: comment.Content},
		"comment": comment,
	})
}

// ModifyComment handles POST/PUT /api/comments/:commentId/modify
// @Summary Edit a comment
// @Description Redirects to next or the parent post. An invalid form returns 400 with the form.
// @Tags comments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param commentId path int true "Comment ID"
// @Param next query string false "Redirect target"
// @Param request body validation.CommentForm true "Comment"
// @Success 303 {object} object{redirect=string,comment=models.Comment}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /comments/{commentId}/modify [post]
func (s *Server) ModifyComment(c *fiber.Ctx) error {
	comment := ownedCommentFrom(c)
	userID, _ := currentUserID(c)

	var form validation.CommentForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	updated, err := s.commentService.ModifyComment(c.UserContext(), service.ModifyCommentInput{
		UserID:    userID,
		CommentID: comment.ID,
		Form:      form,
	})
	if err != nil {
		if models.ErrorCode(err) == models.CodeValidation {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  err.Error(),
				"code":   models.CodeValidation,
				"form":   form,
				"fields": fieldsOf(err),
			})
		}
		return models.RespondWithAppError(c, err)
	}

	target := safeNext(c)
	if target == "" {
		target = postPath(updated.PostID)
	}
	return redirect(c, target, fiber.Map{"comment": updated})
}

// DeleteComment handles POST /api/comments/:commentId/delete
// @Summary Delete a comment
// @Description Redirects to the post the comment belonged to
// @Tags comments
// @Security BearerAuth
// @Produce json
// @Param commentId path int true "Comment ID"
// @Success 303 {object} object{redirect=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /comments/{commentId}/delete [post]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	comment := ownedCommentFrom(c)
	userID, _ := currentUserID(c)

	postID, err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		UserID:    userID,
		CommentID: comment.ID,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return redirect(c, postPath(postID), nil)
}

func fieldsOf(err error) map[string]string {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}
