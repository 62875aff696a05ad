package service

import (
	"context"
	"strings"
	"time"

	"vibenotes-be/internal/dto"
	"vibenotes-be/internal/entity"
	"vibenotes-be/internal/mapper"
	"vibenotes-be/internal/pkg/apperr"
	"vibenotes-be/internal/pkg/serverutils"
	"vibenotes-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	jwtSecret  string
	tokenTTL   time.Duration
	bcryptCost int
	dtoMapper  *mapper.NoteDtoMapper
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, jwtSecret string, tokenTTL time.Duration, bcryptCost int) IAuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		uowFactory: uowFactory,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		dtoMapper:  mapper.NewNoteDtoMapper(),
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := &entity.User{
		Id:           uuid.New(),
		Username:     strings.TrimSpace(req.Username),
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			return nil, err
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, apperr.Internal("failed to load user", err)
	}
	if user == nil {
		return nil, apperr.NotAuthenticated("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperr.NotAuthenticated("invalid credentials")
	}
	if user.IsBanned {
		return nil, apperr.Forbidden("user account is banned")
	}

	return s.issue(user)
}

func (s *authService) issue(user *entity.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := serverutils.GenerateUserToken(user.Id.String(), s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, apperr.Internal("failed to sign token", err)
	}
	profiles := mapper.Profiles{user.Id: user.Profile()}
	return &dto.AuthResponse{
		Token:     token,
		ExpiresAt: mapper.FormatTime(expiresAt),
		User:      s.dtoMapper.Author(user.Id, profiles),
	}, nil
}
