package service

import (
	"context"
	"strings"
	"testing"

	"photogram/internal/models"
	"photogram/internal/notifications"
	"photogram/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
	updateFn     func(context.Context, *models.Comment) error
	deleteFn     func(context.Context, *models.Comment) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, comment *models.Comment) error {
	return s.deleteFn(ctx, comment)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:    func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		updateFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:     func(_ context.Context, _ *models.Comment) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	getByIDFn func(context.Context, uint) (*models.Post, error)
}

func (s *postRepoStub) Create(context.Context, *models.Post) error { return nil }
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetWithComments(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(context.Context, int, int) ([]*models.Post, error) { return nil, nil }
func (s *postRepoStub) ListByAuthors(context.Context, []uint, int, int) ([]*models.Post, error) {
	return nil, nil
}
func (s *postRepoStub) Update(context.Context, *models.Post) error { return nil }
func (s *postRepoStub) Delete(context.Context, uint) error         { return nil }

func postRepoWithAuthor(authorID uint) *postRepoStub {
	return &postRepoStub{getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, AuthorID: authorID}, nil
	}}
}

func missingPostRepo() *postRepoStub {
	return &postRepoStub{getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}}
}

func TestCommentService_CreateComment_InvalidFormStoresNothing(t *testing.T) {
	t.Parallel()

	repo := noopCommentRepo()
	repo.createFn = func(context.Context, *models.Comment) error {
		t.Fatal("invalid comment must not be persisted")
		return nil
	}
	svc := NewCommentService(repo, postRepoWithAuthor(1), nil)
	ctx := context.Background()

	t.Run("blank content", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: 2, PostID: 1, Form: validation.CommentForm{Content: "   "}})
		appErr := assertValidationError(t, err)
		assert.Equal(t, "content: This field is required.", appErr.Message)
		assert.Contains(t, appErr.Fields, "content")
	})

	t.Run("content too long", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, CreateCommentInput{
			UserID: 2,
			PostID: 1,
			Form:   validation.CommentForm{Content: strings.Repeat("x", validation.MaxCommentLength+1)},
		})
		assertValidationError(t, err)
	})
}

func TestCommentService_CreateComment_PostNotFound(t *testing.T) {
	t.Parallel()
	svc := NewCommentService(noopCommentRepo(), missingPostRepo(), nil)

	_, err := svc.CreateComment(context.Background(), CreateCommentInput{UserID: 1, PostID: 9, Form: validation.CommentForm{Content: "hi"}})
	assertAppError(t, err, models.CodeNotFound)
}

func TestCommentService_CreateComment_BindsAuthorAndPost(t *testing.T) {
	t.Parallel()

	var saved *models.Comment
	repo := noopCommentRepo()
	repo.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 77
		saved = c
		return nil
	}
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		require.NotNil(t, saved)
		saved.Author = models.User{ID: saved.AuthorID, Username: "u3"}
		return saved, nil
	}
	pub := &recordingPublisher{}
	svc := NewCommentService(repo, postRepoWithAuthor(5), pub)

	comment, err := svc.CreateComment(context.Background(), CreateCommentInput{
		UserID: 3,
		PostID: 12,
		Form:   validation.CommentForm{Content: "  nice shot  "},
	})
	require.NoError(t, err)
	assert.Equal(t, uint(77), comment.ID)
	assert.Equal(t, uint(3), comment.AuthorID)
	assert.Equal(t, uint(12), comment.PostID)
	assert.Equal(t, "nice shot", comment.Content)

	events := pub.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, uint(5), events[0].userID)
	assert.Equal(t, notifications.EventCommented, events[0].event.Type)
	assert.Equal(t, "u3", events[0].event.ActorName)
}

func TestCommentService_CreateComment_OwnPostNotAnnounced(t *testing.T) {
	t.Parallel()
	pub := &recordingPublisher{}
	svc := NewCommentService(noopCommentRepo(), postRepoWithAuthor(3), pub)

	_, err := svc.CreateComment(context.Background(), CreateCommentInput{UserID: 3, PostID: 1, Form: validation.CommentForm{Content: "me"}})
	require.NoError(t, err)
	assert.Empty(t, pub.snapshot())
}

func TestCommentService_ModifyComment(t *testing.T) {
	t.Parallel()

	existing := func() *commentRepoStub {
		repo := noopCommentRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, AuthorID: 4, PostID: 8, Content: "old"}, nil
		}
		return repo
	}

	t.Run("owner updates in place", func(t *testing.T) {
		t.Parallel()
		repo := existing()
		var updated *models.Comment
		repo.updateFn = func(_ context.Context, c *models.Comment) error {
			updated = c
			return nil
		}
		svc := NewCommentService(repo, postRepoWithAuthor(1), nil)

		c, err := svc.ModifyComment(context.Background(), ModifyCommentInput{UserID: 4, CommentID: 2, Form: validation.CommentForm{Content: "new"}})
		require.NoError(t, err)
		assert.Equal(t, "new", c.Content)
		assert.Equal(t, uint(8), c.PostID)
		require.NotNil(t, updated)
		assert.Equal(t, uint(2), updated.ID)
	})

	t.Run("non owner is forbidden", func(t *testing.T) {
		t.Parallel()
		repo := existing()
		repo.updateFn = func(context.Context, *models.Comment) error {
			t.Fatal("must not update")
			return nil
		}
		svc := NewCommentService(repo, postRepoWithAuthor(1), nil)

		_, err := svc.ModifyComment(context.Background(), ModifyCommentInput{UserID: 5, CommentID: 2, Form: validation.CommentForm{Content: "new"}})
		assertAppError(t, err, models.CodeForbidden)
	})

	t.Run("invalid form", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(existing(), postRepoWithAuthor(1), nil)
		_, err := svc.ModifyComment(context.Background(), ModifyCommentInput{UserID: 4, CommentID: 2})
		assertValidationError(t, err)
	})
}

func TestCommentService_DeleteCommentReturnsParentPost(t *testing.T) {
	t.Parallel()

	repo := noopCommentRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, AuthorID: 4, PostID: 31}, nil
	}
	repo.deleteFn = func(_ context.Context, c *models.Comment) error {
		// Simulate the row being gone afterwards.
		c.PostID = 0
		return nil
	}
	svc := NewCommentService(repo, postRepoWithAuthor(1), nil)

	postID, err := svc.DeleteComment(context.Background(), DeleteCommentInput{UserID: 4, CommentID: 2})
	require.NoError(t, err)
	assert.Equal(t, uint(31), postID)

	_, err = svc.DeleteComment(context.Background(), DeleteCommentInput{UserID: 9, CommentID: 2})
	assertAppError(t, err, models.CodeForbidden)
}

func TestCommentService_ListCommentsRequiresPost(t *testing.T) {
	t.Parallel()
	svc := NewCommentService(noopCommentRepo(), missingPostRepo(), nil)
	_, err := svc.ListComments(context.Background(), 3)
	assertAppError(t, err, models.CodeNotFound)
}
