package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type JwtCustomClaim struct {
	ID        int    `json:"id"`
	TokenType string `json:"token_type"`
	jwt.StandardClaims
}

var jwtSecret = []byte(getJwtSecret())

func getJwtSecret() string {
	secret := os.Getenv("API_SECRET")
	if secret == "" {
		return "FleetManager-Secret"
	}
	return secret
}

// access token lifespan in minutes, TOKEN_MINUTE_LIFESPAN (default 15)
func accessLifespan() time.Duration {
	minutes, err := strconv.Atoi(os.Getenv("TOKEN_MINUTE_LIFESPAN"))
	if err != nil || minutes <= 0 {
		minutes = 15
	}
	return time.Duration(minutes) * time.Minute
}

// refresh token lifespan in hours, REFRESH_TOKEN_HOUR_LIFESPAN (default 168 = 7 days)
func refreshLifespan() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("REFRESH_TOKEN_HOUR_LIFESPAN"))
	if err != nil || hours <= 0 {
		hours = 168
	}
	return time.Duration(hours) * time.Hour
}

func JwtGenerateAccess(userID int) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		ID:        userID,
		TokenType: TokenTypeAccess,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(accessLifespan()).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})
	return t.SignedString(jwtSecret)
}

// Refresh tokens carry a jti so individual tokens can be revoked
// (rotation + logout) via the Redis denylist.
func JwtGenerateRefresh(userID int) (token string, jti string, err error) {
	jti = uuid.NewString()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		ID:        userID,
		TokenType: TokenTypeRefresh,
		StandardClaims: jwt.StandardClaims{
			Id:        jti,
			ExpiresAt: time.Now().Add(refreshLifespan()).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})
	token, err = t.SignedString(jwtSecret)
	return token, jti, err
}

func JwtValidate(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return jwtSecret, nil
	})
}

func RefreshTokenLifespan() time.Duration {
	return refreshLifespan()
}
