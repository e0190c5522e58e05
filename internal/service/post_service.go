package service

import (
	"context"
	"time"

	"photogram/internal/models"
	"photogram/internal/observability"
	"photogram/internal/repository"
	"photogram/internal/validation"
)

type PostService struct {
	posts     repository.PostRepository
	relations repository.RelationRepository
	images    *ImageService
}

type CreatePostInput struct {
	UserID      uint
	Content     string
	Filename    string
	ContentType string
	Photo       []byte
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

type FeedInput struct {
	UserID uint
	// FollowingOnly restricts the feed to authors UserID follows plus
	// UserID itself.
	FollowingOnly bool
	Limit         int
	Offset        int
}

func NewPostService(posts repository.PostRepository, relations repository.RelationRepository, images *ImageService) *PostService {
	return &PostService{posts: posts, relations: relations, images: images}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	form := validation.PostForm{Content: in.Content}
	if errs := form.Validate(); !errs.Empty() {
		return nil, models.NewFieldValidationError(errs.Join("\n"), errs.First())
	}
	if len(in.Photo) == 0 {
		return nil, fieldError("photo", "photo: This field is required.")
	}

	start := time.Now()
	ref, err := s.images.Upload(ctx, UploadImageInput{
		UserID:      in.UserID,
		Kind:        ImageKindPost,
		Filename:    in.Filename,
		ContentType: in.ContentType,
		Content:     in.Photo,
	})
	observability.ObserveSince(observability.ImageUploadLatency.WithLabelValues(ImageKindPost), start)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID: in.UserID,
		Photo:    ref.URL,
		Content:  form.Content,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.images.Remove(ctx, ref.Key)
		return nil, err
	}
	return s.posts.GetByID(ctx, post.ID)
}

// GetPost returns the post with its comments in creation order.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.posts.GetWithComments(ctx, id)
}

func (s *PostService) ListPosts(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.posts.List(ctx, limit, offset)
}

func (s *PostService) Feed(ctx context.Context, in FeedInput) ([]*models.Post, error) {
	if !in.FollowingOnly {
		return s.posts.List(ctx, in.Limit, in.Offset)
	}
	ids, err := s.relations.FollowingIDs(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	ids = append(ids, in.UserID)
	return s.posts.ListByAuthors(ctx, ids, in.Limit, in.Offset)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("Only the author can edit this post")
	}

	form := validation.PostForm{Content: in.Content}
	if errs := form.Validate(); !errs.Empty() {
		return nil, models.NewFieldValidationError(errs.Join("\n"), errs.First())
	}
	post.Content = form.Content
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes the post, its comments and its stored photo.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if post.AuthorID != in.UserID {
		return models.NewForbiddenError("Only the author can delete this post")
	}
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return err
	}
	if s.images != nil {
		s.images.Remove(ctx, s.images.KeyFromURL(post.Photo))
	}
	return nil
}
