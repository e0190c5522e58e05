package service

import (
	"context"
	"log/slog"

	"photogram/internal/middleware"
	"photogram/internal/models"
	"photogram/internal/notifications"
	"photogram/internal/observability"
	"photogram/internal/repository"
)

// EventPublisher pushes realtime events to one user.
type EventPublisher interface {
	PublishUser(ctx context.Context, userID uint, ev notifications.Event) error
}

// FollowService owns the directed follow graph between users.
type FollowService struct {
	relations repository.RelationRepository
	users     repository.UserRepository
	events    EventPublisher
}

// NewFollowService returns a new FollowService. events may be nil.
func NewFollowService(relations repository.RelationRepository, users repository.UserRepository, events EventPublisher) *FollowService {
	return &FollowService{relations: relations, users: users, events: events}
}

// Follow makes userID follow targetID. Following twice is a no-op; created
// reports whether a new edge was stored. Following yourself is allowed.
func (s *FollowService) Follow(ctx context.Context, userID, targetID uint) (created bool, err error) {
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return false, err
	}
	created, err = s.relations.Add(ctx, userID, targetID)
	if err != nil {
		return false, err
	}
	observability.FollowOperations.WithLabelValues("follow", observability.Outcome(created)).Inc()
	if created && userID != targetID {
		s.publish(ctx, targetID, notifications.Event{Type: notifications.EventFollowed, ActorID: userID})
	}
	return created, nil
}

// Unfollow removes the userID -> targetID edge if present.
func (s *FollowService) Unfollow(ctx context.Context, userID, targetID uint) (removed bool, err error) {
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return false, err
	}
	removed, err = s.relations.Remove(ctx, userID, targetID)
	if err != nil {
		return false, err
	}
	observability.FollowOperations.WithLabelValues("unfollow", observability.Outcome(removed)).Inc()
	if removed && userID != targetID {
		s.publish(ctx, targetID, notifications.Event{Type: notifications.EventUnfollowed, ActorID: userID})
	}
	return removed, nil
}

// FollowToggle unfollows when userID already follows targetID and follows
// otherwise. It returns the resulting state.
func (s *FollowService) FollowToggle(ctx context.Context, userID, targetID uint) (following bool, err error) {
	exists, err := s.IsFollow(ctx, userID, targetID)
	if err != nil {
		return false, err
	}
	if exists {
		_, err = s.Unfollow(ctx, userID, targetID)
		return false, err
	}
	_, err = s.Follow(ctx, userID, targetID)
	return err == nil, err
}

// IsFollow reports whether userID follows targetID.
func (s *FollowService) IsFollow(ctx context.Context, userID, targetID uint) (bool, error) {
	return s.relations.Exists(ctx, userID, targetID)
}

// IsFollower reports whether targetID follows userID.
func (s *FollowService) IsFollower(ctx context.Context, userID, targetID uint) (bool, error) {
	return s.relations.Exists(ctx, targetID, userID)
}

// Following lists the users userID follows.
func (s *FollowService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.relations.ListFollowing(ctx, userID)
}

// Followers lists the users following userID.
func (s *FollowService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.relations.ListFollowers(ctx, userID)
}

func (s *FollowService) Stats(ctx context.Context, userID uint) (*models.FollowStats, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.relations.Stats(ctx, userID)
}

// Status reports both directions between viewerID and targetID.
func (s *FollowService) Status(ctx context.Context, viewerID, targetID uint) (*models.FollowStatus, error) {
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return nil, err
	}
	isFollow, err := s.IsFollow(ctx, viewerID, targetID)
	if err != nil {
		return nil, err
	}
	isFollower, err := s.IsFollower(ctx, viewerID, targetID)
	if err != nil {
		return nil, err
	}
	return &models.FollowStatus{UserID: targetID, IsFollow: isFollow, IsFollower: isFollower}, nil
}

// publish sends ev to userID, naming the actor by its display name.
func (s *FollowService) publish(ctx context.Context, userID uint, ev notifications.Event) {
	if s.events == nil {
		return
	}
	if actor, err := s.users.GetByID(ctx, ev.ActorID); err == nil {
		ev.ActorName = actor.DisplayName()
	}
	if err := s.events.PublishUser(ctx, userID, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "publish event failed",
			slog.String("type", ev.Type),
			slog.Uint64("user_id", uint64(userID)),
			slog.String("error", err.Error()),
		)
	}
}
