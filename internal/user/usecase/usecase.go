package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-invoice-service/internal/model"
	"github.com/fekuna/omnipos-invoice-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-invoice-service/internal/user"
	"github.com/fekuna/omnipos-invoice-service/internal/user/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type userUseCase struct {
	repo   user.Repository
	cost   int
	logger logger.ZapLogger
}

func NewUserUseCase(repo user.Repository, log logger.ZapLogger) user.UseCase {
	return &userUseCase{repo: repo, cost: bcrypt.DefaultCost, logger: log}
}

func (uc *userUseCase) CreateUser(ctx context.Context, input *dto.CreateUserInput) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), uc.cost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &model.User{
		BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: string(hash),
	}
	if err := uc.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	uc.logger.Info("user created", zap.String("user_id", u.ID))
	return u, nil
}

func (uc *userUseCase) GetUser(ctx context.Context, id string) (*model.User, error) {
	u, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (uc *userUseCase) ListUsers(ctx context.Context) ([]model.User, error) {
	return uc.repo.FindAll(ctx)
}

func (uc *userUseCase) UpdateUser(ctx context.Context, id string, input *dto.UpdateUserInput) (*model.User, error) {
	u, err := uc.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Email = input.Email
	u.Name = input.Name
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), uc.cost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hash)
	}
	u.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (uc *userUseCase) DeleteUser(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}
