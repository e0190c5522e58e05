package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"photogram/internal/models"
	"photogram/internal/observability"
	"photogram/internal/repository"
	"photogram/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo repository.UserRepository
	images   *ImageService
}

type SignupInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Nickname  string
}

// UpdateProfileInput carries optional profile changes. A nil field is left
// alone; a non-nil empty Nickname clears it.
type UpdateProfileInput struct {
	UserID    uint
	FirstName *string
	LastName  *string
	Nickname  *string
}

type SetProfileImageInput struct {
	UserID      uint
	Filename    string
	ContentType string
	Content     []byte
}

func NewUserService(userRepo repository.UserRepository, images *ImageService) *UserService {
	return &UserService{userRepo: userRepo, images: images}
}

// CreateLocalUser registers a password account.
func (s *UserService) CreateLocalUser(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, models.NewValidationError("Username, email, and password are required")
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, fieldError("username", err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, fieldError("email", err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, fieldError("password", err.Error())
	}
	nickname, err := normalizeNickname(in.Nickname)
	if err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("User already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hashed),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		UserType:  models.UserTypeLocal,
		Nickname:  nickname,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	observability.AccountsProvisioned.WithLabelValues(string(models.UserTypeLocal), "true").Inc()
	return user, nil
}

// Authenticate resolves login by username or email. Facebook accounts carry
// an unusable password and never match.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(login))
	} else {
		user, err = s.userRepo.GetByUsername(ctx, login)
	}
	if err != nil {
		return nil, err
	}
	if user == nil || user.IsFacebook() {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxNameLen = 150
	if in.FirstName != nil {
		v := strings.TrimSpace(*in.FirstName)
		if len(v) > maxNameLen {
			return nil, fieldError("first_name", "first name too long (max 150 characters)")
		}
		user.FirstName = v
	}
	if in.LastName != nil {
		v := strings.TrimSpace(*in.LastName)
		if len(v) > maxNameLen {
			return nil, fieldError("last_name", "last name too long (max 150 characters)")
		}
		user.LastName = v
	}
	if in.Nickname != nil {
		nickname, err := normalizeNickname(*in.Nickname)
		if err != nil {
			return nil, err
		}
		user.Nickname = nickname
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetProfileImage stores a new avatar and points img_profile at it. The
// previous image is removed once the row is updated.
func (s *UserService) SetProfileImage(ctx context.Context, in SetProfileImageInput) (*models.User, error) {
	if s.images == nil {
		return nil, models.NewInternalError(errors.New("image storage not configured"))
	}
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ref, err := s.images.Upload(ctx, UploadImageInput{
		UserID:      in.UserID,
		Kind:        ImageKindProfile,
		Filename:    in.Filename,
		ContentType: in.ContentType,
		Content:     in.Content,
	})
	observability.ObserveSince(observability.ImageUploadLatency.WithLabelValues(ImageKindProfile), start)
	if err != nil {
		return nil, err
	}

	previous := user.ImgProfile
	user.ImgProfile = ref.URL
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.images.Remove(ctx, ref.Key)
		return nil, err
	}
	if previous != "" && previous != ref.URL {
		s.images.Remove(ctx, s.images.KeyFromURL(previous))
	}
	return user, nil
}

// normalizeNickname maps blank input to NULL.
func normalizeNickname(raw string) (*string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil, nil
	}
	if err := validation.ValidateNickname(v); err != nil {
		return nil, fieldError("nickname", err.Error())
	}
	return &v, nil
}

func fieldError(field, msg string) *models.AppError {
	return models.NewFieldValidationError(msg, map[string]string{field: msg})
}
