package service

import (
	"context"
	"log/slog"

	"photogram/internal/middleware"
	"photogram/internal/models"
	"photogram/internal/notifications"
	"photogram/internal/observability"
	"photogram/internal/repository"
	"photogram/internal/validation"
)

// FormErrorSeparator joins field errors into the single flash message.
const FormErrorSeparator = "\n"

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	events      EventPublisher
}

type CreateCommentInput struct {
	UserID uint
	PostID uint
	Form   validation.CommentForm
}

type ModifyCommentInput struct {
	UserID    uint
	CommentID uint
	Form      validation.CommentForm
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	events EventPublisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		events:      events,
	}
}

// CreateComment attaches a comment by UserID to PostID. An invalid form
// yields a validation error whose message is every field error joined by
// FormErrorSeparator; nothing is stored in that case.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	form := in.Form
	if errs := form.Validate(); !errs.Empty() {
		observability.CommentMutations.WithLabelValues("create", "invalid").Inc()
		return nil, models.NewFieldValidationError(errs.Join(FormErrorSeparator), errs.First())
	}

	comment := &models.Comment{
		Content:  form.Content,
		AuthorID: in.UserID,
		PostID:   post.ID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.CommentMutations.WithLabelValues("create", "changed").Inc()

	stored, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}

	if s.events != nil && post.AuthorID != in.UserID {
		ev := notifications.Event{
			Type:      notifications.EventCommented,
			ActorID:   in.UserID,
			ActorName: stored.Author.DisplayName(),
			Payload:   map[string]uint{"post_id": post.ID, "comment_id": comment.ID},
		}
		if err := s.events.PublishUser(ctx, post.AuthorID, ev); err != nil {
			middleware.Logger.WarnContext(ctx, "publish comment event failed",
				slog.Uint64("post_id", uint64(post.ID)),
				slog.String("error", err.Error()),
			)
		}
	}
	return stored, nil
}

func (s *CommentService) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	return s.commentRepo.GetByID(ctx, id)
}

func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

// ModifyComment rewrites the content of a comment owned by UserID.
func (s *CommentService) ModifyComment(ctx context.Context, in ModifyCommentInput) (*models.Comment, error) {
	comment, err := s.ownedComment(ctx, in.UserID, in.CommentID)
	if err != nil {
		return nil, err
	}

	form := in.Form
	if errs := form.Validate(); !errs.Empty() {
		observability.CommentMutations.WithLabelValues("modify", "invalid").Inc()
		return nil, models.NewFieldValidationError(errs.Join(FormErrorSeparator), errs.First())
	}

	comment.Content = form.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	observability.CommentMutations.WithLabelValues("modify", "changed").Inc()
	return comment, nil
}

// DeleteComment removes a comment owned by UserID and returns the id of the
// post it belonged to.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (uint, error) {
	comment, err := s.ownedComment(ctx, in.UserID, in.CommentID)
	if err != nil {
		return 0, err
	}
	postID := comment.PostID
	if err := s.commentRepo.Delete(ctx, comment); err != nil {
		return 0, err
	}
	observability.CommentMutations.WithLabelValues("delete", "changed").Inc()
	return postID, nil
}

func (s *CommentService) ownedComment(ctx context.Context, userID, commentID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !comment.IsOwnedBy(userID) {
		return nil, models.NewForbiddenError("You can only change your own comments")
	}
	return comment, nil
}
