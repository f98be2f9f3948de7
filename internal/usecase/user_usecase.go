package usecase

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"turtlecoin/internal/domain/entity"
	"turtlecoin/internal/domain/repository"
	"turtlecoin/pkg/errors"
	"turtlecoin/pkg/utils"
)

type UserUseCase struct {
	userRepo  repository.UserRepository
	jwtSecret string
	jwtExpiry int64
}

func NewUserUseCase(userRepo repository.UserRepository, jwtSecret string, jwtExpiry int64) *UserUseCase {
	return &UserUseCase{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

type RegisterInput struct {
	Email        string
	Password     string
	Nickname     string
	ProfileImage string
	Address      string
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

func (uc *UserUseCase) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	if _, err := uc.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, errors.Conflict("Email is already registered")
	} else if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	user := &entity.User{
		Email:        input.Email,
		PasswordHash: string(hash),
		Nickname:     input.Nickname,
		ProfileImage: input.ProfileImage,
		Address:      input.Address,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *UserUseCase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil, errors.Unauthorized("Invalid email or password", nil)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errors.Unauthorized("Invalid email or password", err)
	}

	token, err := utils.GenerateToken(user.ID, uc.jwtSecret, uc.jwtExpiry)
	if err != nil {
		return nil, errors.Internal("Failed to issue token", err)
	}

	return &LoginResult{Token: token, User: user}, nil
}

func (uc *UserUseCase) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}
