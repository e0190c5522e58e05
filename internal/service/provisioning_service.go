package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"photogram/internal/models"
	"photogram/internal/observability"
	"photogram/internal/repository"
)

// FacebookProfile is the subset of a Graph API /me response used to
// provision an account.
type FacebookProfile struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	PictureURL string `json:"-"`
}

// ProvisioningService maps external identities onto local users.
type ProvisioningService struct {
	users repository.UserRepository
	appID string
}

func NewProvisioningService(users repository.UserRepository, facebookAppID string) *ProvisioningService {
	return &ProvisioningService{users: users, appID: facebookAppID}
}

// FacebookUsername derives the reserved username of a Facebook account.
func FacebookUsername(appID, facebookID string) string {
	return fmt.Sprintf("%s_%s_%s", models.UserTypeFacebook, appID, facebookID)
}

// GetOrCreateFacebookUser returns the account for profile, creating it on
// first sight. Concurrent calls for one profile resolve to the same row.
func (s *ProvisioningService) GetOrCreateFacebookUser(ctx context.Context, profile FacebookProfile) (*models.User, bool, error) {
	id := strings.TrimSpace(profile.ID)
	if id == "" {
		return nil, false, models.NewValidationError("Facebook profile id is required")
	}
	if s.appID == "" {
		return nil, false, models.NewInternalError(fmt.Errorf("facebook app id not configured"))
	}

	candidate := &models.User{
		Username:   FacebookUsername(s.appID, id),
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		Email:      profile.Email,
		Password:   unusablePassword(),
		UserType:   models.UserTypeFacebook,
		ImgProfile: profile.PictureURL,
	}
	user, created, err := s.users.GetOrCreate(ctx, candidate)
	if err != nil {
		return nil, false, err
	}
	observability.AccountsProvisioned.WithLabelValues(string(models.UserTypeFacebook), fmt.Sprint(created)).Inc()
	return user, created, nil
}

// unusablePassword never verifies against bcrypt because it is not a hash.
func unusablePassword() string {
	b := make([]byte, 20)
	_, _ = rand.Read(b)
	return "!" + hex.EncodeToString(b)
}
