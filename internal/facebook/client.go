// Package facebook talks to the Graph API on behalf of a logged-in user.
package facebook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"photogram/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultGraphURL = "https://graph.facebook.com/v19.0"
	defaultTimeout  = 5 * time.Second
	profileFields   = "id,first_name,last_name,email,picture.type(large)"
)

// Profile is the /me payload.
type Profile struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Picture   struct {
		Data struct {
			URL          string `json:"url"`
			IsSilhouette bool   `json:"is_silhouette"`
		} `json:"data"`
	} `json:"picture"`
}

// PictureURL returns the profile picture unless it is the default silhouette.
func (p *Profile) PictureURL() string {
	if p.Picture.Data.IsSilhouette {
		return ""
	}
	return p.Picture.Data.URL
}

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Client calls the Graph API with appsecret_proof on every request.
type Client struct {
	baseURL   string
	appSecret string
	timeout   time.Duration
}

// NewClient builds a Client. An empty graphURL selects the public endpoint.
func NewClient(graphURL, appSecret string) *Client {
	if graphURL == "" {
		graphURL = defaultGraphURL
	}
	return &Client{
		baseURL:   strings.TrimRight(graphURL, "/"),
		appSecret: appSecret,
		timeout:   defaultTimeout,
	}
}

// AppSecretProof signs accessToken with the app secret.
func AppSecretProof(appSecret, accessToken string) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write([]byte(accessToken))
	return hex.EncodeToString(mac.Sum(nil))
}

// Me fetches the profile owning accessToken. Rejected tokens map to an
// UNAUTHORIZED AppError.
func (c *Client) Me(ctx context.Context, accessToken string) (*Profile, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, models.NewValidationError("access_token is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("fields", profileFields)
	q.Set("access_token", accessToken)
	if c.appSecret != "" {
		q.Set("appsecret_proof", AppSecretProof(c.appSecret, accessToken))
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(fiber.MethodGet)
	req.SetRequestURI(c.baseURL + "/me?" + q.Encode())
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return nil, models.NewInternalError(fmt.Errorf("facebook request: %w", err))
	}
	agent.Timeout(timeout)

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, models.NewInternalError(fmt.Errorf("facebook request: %w", errors.Join(errs...)))
	}

	if status != fiber.StatusOK {
		var ge graphError
		_ = json.Unmarshal(body, &ge)
		if status == fiber.StatusBadRequest || status == fiber.StatusUnauthorized || ge.Error.Type == "OAuthException" {
			return nil, models.NewUnauthorizedError("Facebook rejected the access token")
		}
		return nil, models.NewInternalError(fmt.Errorf("facebook status %d: %s", status, ge.Error.Message))
	}

	var p Profile
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, models.NewInternalError(fmt.Errorf("decode facebook profile: %w", err))
	}
	if p.ID == "" {
		return nil, models.NewInternalError(errors.New("facebook profile without id"))
	}
	return &p, nil
}
