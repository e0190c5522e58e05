// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// UserType discriminates how an account was provisioned.
type UserType string

const (
	// UserTypeLocal marks accounts created through username/password signup.
	UserTypeLocal UserType = "d"
	// UserTypeFacebook marks accounts provisioned from a Facebook identity.
	UserTypeFacebook UserType = "f"
)

// User represents an account in the Photogram application.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName  string    `gorm:"size:150;not null;default:''" json:"first_name"`
	LastName   string    `gorm:"size:150;not null;default:''" json:"last_name"`
	Email      string    `gorm:"size:254;index" json:"email"`
	Password   string    `gorm:"not null" json:"-"`
	UserType   UserType  `gorm:"type:varchar(1);not null;default:'d'" json:"user_type"`
	Nickname   *string   `gorm:"size:24" json:"nickname"`
	ImgProfile string    `gorm:"not null;default:''" json:"img_profile"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BeforeCreate fills the user type default so the in-memory struct matches the stored row.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.UserType == "" {
		u.UserType = UserTypeLocal
	}
	return nil
}

// DisplayName returns the nickname when one is set, otherwise the username.
func (u *User) DisplayName() string {
	if u.Nickname != nil && *u.Nickname != "" {
		return *u.Nickname
	}
	return u.Username
}

// IsFacebook reports whether the account was provisioned from Facebook.
func (u *User) IsFacebook() bool {
	return u.UserType == UserTypeFacebook
}
