package user

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-invoice-service/internal/model"
	"github.com/fekuna/omnipos-invoice-service/internal/user/dto"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type UseCase interface {
	CreateUser(ctx context.Context, input *dto.CreateUserInput) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id string, input *dto.UpdateUserInput) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}
