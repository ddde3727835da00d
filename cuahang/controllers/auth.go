// cuahang/controllers/auth.go
package controllers

import (
	"context"
	"time"

	"cuahang/cuahang/config"
	"cuahang/cuahang/sources/psql/dao"
	"cuahang/cuahang/utils/apperr"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 24 * time.Hour

type AuthController struct {
	userDAO *dao.UserDAO
	cfg     config.Config
}

func NewAuthController(userDAO *dao.UserDAO, cfg config.Config) *AuthController {
	return &AuthController{
		userDAO: userDAO,
		cfg:     cfg,
	}
}

func (c *AuthController) Login(ctx context.Context, username string) (string, error) {
	if username == "" {
		return "", apperr.InvalidArg("username is required")
	}
	user, err := c.userDAO.GetUserByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", apperr.Unauthorized("unknown user")
	}
	return IssueToken(c.cfg.JWTSecret, user.ID, user.Role, time.Now().Add(tokenTTL))
}

// IssueToken signs the claims the auth middleware reads.
func IssueToken(secret string, userID int, role string, expires time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     expires.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
