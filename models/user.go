package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dheeraj1717/fleet-manager/config"
	"github.com/dheeraj1717/fleet-manager/utils"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email     string    `gorm:"size:100;not null;unique" json:"email" binding:"required"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginInfo struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserId       int    `json:"user_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
}

func Register(ctx context.Context, input *NewUser) (*User, error) {
	db := config.GetDB()

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !utils.IsValidEmail(email) {
		return nil, errors.New("invalid email address")
	}

	var count int64
	if err := db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("email already registered")
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		Name:     input.Name,
		Email:    email,
		Password: string(hashed),
		IsActive: utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func Login(ctx context.Context, email string, password string) (*LoginInfo, error) {
	db := config.GetDB()

	user := User{}
	err := db.WithContext(ctx).Model(&User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Take(&user).Error
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	// check login credentials
	err = utils.ComparePassword(user.Password, password)
	if err != nil && err == bcrypt.ErrMismatchedHashAndPassword {
		return nil, errors.New("invalid email or password")
	}

	if user.IsActive != nil && !*user.IsActive {
		return nil, errors.New("user is disabled")
	}

	return issueTokenPair(&user)
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// access/refresh pair is issued. A previously rotated (revoked) token is
// rejected, which limits replay of stolen refresh tokens.
func Refresh(ctx context.Context, refreshToken string) (*LoginInfo, error) {
	validated, err := utils.JwtValidate(refreshToken)
	if err != nil || !validated.Valid {
		return nil, utils.ErrorUnauthorized
	}
	claim, ok := validated.Claims.(*utils.JwtCustomClaim)
	if !ok || claim.TokenType != utils.TokenTypeRefresh || claim.Id == "" {
		return nil, utils.ErrorUnauthorized
	}

	revoked, _, err := config.GetRedisValue("RevokedToken:" + claim.Id)
	if err != nil {
		return nil, err
	}
	if revoked != "" {
		return nil, utils.ErrorUnauthorized
	}

	db := config.GetDB()
	user := User{}
	if err := db.WithContext(ctx).First(&user, claim.ID).Error; err != nil {
		return nil, utils.ErrorUnauthorized
	}
	if user.IsActive != nil && !*user.IsActive {
		return nil, utils.ErrorUnauthorized
	}

	if err := revokeRefreshToken(claim.Id); err != nil {
		return nil, err
	}
	return issueTokenPair(&user)
}

func Logout(ctx context.Context, refreshToken string) (bool, error) {
	validated, err := utils.JwtValidate(refreshToken)
	if err != nil || !validated.Valid {
		return false, utils.ErrorUnauthorized
	}
	claim, ok := validated.Claims.(*utils.JwtCustomClaim)
	if !ok || claim.TokenType != utils.TokenTypeRefresh || claim.Id == "" {
		return false, utils.ErrorUnauthorized
	}
	if err := revokeRefreshToken(claim.Id); err != nil {
		return false, err
	}
	return true, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	return utils.FetchSingleModel[User](ctx, id)
}

func issueTokenPair(user *User) (*LoginInfo, error) {
	access, err := utils.JwtGenerateAccess(user.ID)
	if err != nil {
		return nil, err
	}
	refresh, _, err := utils.JwtGenerateRefresh(user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginInfo{
		AccessToken:  access,
		RefreshToken: refresh,
		UserId:       user.ID,
		Name:         user.Name,
		Email:        user.Email,
	}, nil
}

// denylist entries live exactly as long as the longest-lived refresh token
func revokeRefreshToken(jti string) error {
	return config.SetRedisValue("RevokedToken:"+jti, "1", utils.RefreshTokenLifespan())
}
