package server

import (
	"io"
	"mime/multipart"

	"photogram/internal/models"
	"photogram/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ProfileResponse is a user with both follow counters.
type ProfileResponse struct {
	*models.User
	FollowingCount int64 `json:"following_count"`
	FollowersCount int64 `json:"followers_count"`
}

// GetAllUsers handles GET /api/users
// @Summary List users
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.User
// @Router /users [get]
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	users, err := s.userService.ListUsers(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(users)
}

// GetMyProfile handles GET /api/users/me
// @Summary Current user's profile
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} ProfileResponse
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)
	return s.respondProfile(c, userID)
}

// GetUserProfile handles GET /api/users/:id
// @Summary User profile
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} ProfileResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	return s.respondProfile(c, id)
}

func (s *Server) respondProfile(c *fiber.Ctx, userID uint) error {
	ctx := c.UserContext()
	user, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	stats, err := s.followService.Stats(ctx, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(ProfileResponse{
		User:           user,
		FollowingCount: stats.FollowingCount,
		FollowersCount: stats.FollowersCount,
	})
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update names and nickname
// @Description Omitted fields are unchanged; an empty nickname clears it
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{first_name=string,last_name=string,nickname=string} true "Profile changes"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)

	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Nickname  *string `json:"nickname"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Nickname:  req.Nickname,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// UploadProfileImage handles POST /api/users/me/image
// @Summary Upload profile image
// @Description Multipart field "image"; the image is square-cropped
// @Tags users
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me/image [post]
func (s *Server) UploadProfileImage(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)

	file, content, err := readUpload(c, "image")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	user, err := s.userService.SetProfileImage(c.UserContext(), service.SetProfileImageInput{
		UserID:      userID,
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// readUpload reads the multipart file stored under field.
func readUpload(c *fiber.Ctx, field string) (*multipart.FileHeader, []byte, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return nil, nil, models.NewFieldValidationError("No file uploaded",
			map[string]string{field: "This field is required."})
	}

	src, err := file.Open()
	if err != nil {
		return nil, nil, models.NewValidationError("Unable to read uploaded file")
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, nil, models.NewValidationError("Unable to read uploaded file")
	}
	return file, content, nil
}
