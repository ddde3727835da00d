// cuahang/controllers/user.go
package controllers

import (
	"context"
	"strings"

	"cuahang/cuahang/sources/psql/dao"
	"cuahang/cuahang/sources/psql/models"
	"cuahang/cuahang/utils/apperr"
	"cuahang/cuahang/utils/types"
)

type UserController struct {
	dao *dao.UserDAO
}

func NewUserController(dao *dao.UserDAO) *UserController {
	return &UserController{dao: dao}
}

func (c *UserController) GetUser(ctx context.Context, id int) (*models.User, error) {
	user, err := c.dao.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

func (c *UserController) CreateUser(ctx context.Context, req types.CreateUserRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" {
		return nil, apperr.InvalidArg("username and email are required")
	}
	role := req.Role
	switch role {
	case "":
		role = models.RoleCustomer
	case models.RoleCustomer, models.RoleVendor:
	default:
		return nil, apperr.InvalidArg("role must be customer or vendor")
	}

	existing, err := c.dao.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.InvalidArg("username already taken")
	}

	user := &models.User{
		Username: username,
		Email:    email,
		FullName: req.FullName,
		ImageURL: req.ImageURL,
		Role:     role,
	}
	if err := c.dao.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
