package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"HRCore/internal/authz"
	"HRCore/internal/cache"
	"HRCore/internal/model"
	"HRCore/internal/model/dto"
	"HRCore/internal/repository"
	"HRCore/pkg/errors"
	"HRCore/pkg/logger"
	"HRCore/pkg/token"
	"HRCore/storage/database"
	"HRCore/utils"
)

var (
	authService *AuthService
	authOnce    sync.Once
)

func Auth() *AuthService {
	authOnce.Do(func() {
		db := database.DB()
		authService = NewAuthService(
			repository.NewAccountRepository(db),
			repository.NewEmployeeRepository(db),
			cache.NewRedisRefreshStore(),
		)
	})
	return authService
}

type AuthService struct {
	accounts  AccountStore
	employees EmployeeStore
	refresh   cache.RefreshStore
	issue     func(token.Subject) (string, string, int, error)
	parse     func(string) (int64, error)
	now       func() time.Time
}

func NewAuthService(accounts AccountStore, employees EmployeeStore, refresh cache.RefreshStore) *AuthService {
	return &AuthService{
		accounts:  accounts,
		employees: employees,
		refresh:   refresh,
		issue:     token.GenerateTokenPair,
		parse:     token.ValidateRefreshToken,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Login 用户名不存在与密码错误返回同一个错误
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenPairResponse, error) {
	acc, err := s.accounts.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, lookupErr(err, errors.InvalidCredentials, "account")
	}
	if !utils.CheckPassword(acc.PasswordHash, req.Password) {
		logger.Logger.Info("Login rejected", zap.String("username", acc.Username))
		return nil, errors.InvalidCredentials
	}
	if !acc.Active {
		return nil, errors.AccountDisabled
	}

	pair, err := s.issuePair(ctx, acc)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.TouchLogin(ctx, acc.ID, s.now()); err != nil {
		logger.Logger.Warn("Failed to update last login", zap.Int64("account_id", acc.ID), zap.Error(err))
	}
	return pair, nil
}

// Refresh refresh token 一次有效，刷新后旧 token 失效
func (s *AuthService) Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.TokenPairResponse, error) {
	accountID, err := s.parse(req.RefreshToken)
	if err != nil {
		return nil, errors.ErrInvalidToken
	}
	if !s.refresh.Matches(ctx, accountID, req.RefreshToken) {
		return nil, errors.ErrInvalidToken
	}

	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, lookupErr(err, errors.Unauthorized, "account")
	}
	if !acc.Active {
		_ = s.refresh.Revoke(ctx, acc.ID)
		return nil, errors.AccountDisabled
	}
	return s.issuePair(ctx, acc)
}

func (s *AuthService) issuePair(ctx context.Context, acc *model.Account) (*dto.TokenPairResponse, error) {
	actor := acc.Actor()
	roles := make([]string, len(actor.Roles))
	for i, r := range actor.Roles {
		roles[i] = string(r)
	}

	access, refresh, expiresIn, err := s.issue(token.Subject{
		AccountID:  acc.ID,
		EmployeeID: acc.EmployeeID,
		Roles:      roles,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	if err := s.refresh.Save(ctx, acc.ID, refresh); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
	}, nil
}

// NewAccountInput 仅供运维命令创建账号，不经过 HTTP
type NewAccountInput struct {
	EmployeeID *int64
	Username   string
	Password   string
	Roles      []authz.Role
}

// CreateAccount 密码以 bcrypt 存储；未指定角色时为 EMPLEADO
func (s *AuthService) CreateAccount(ctx context.Context, in NewAccountInput) (*model.Account, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, errors.InvalidRequest.WithMessage("username and password are required")
	}
	if in.EmployeeID != nil {
		if _, err := s.employees.Get(ctx, *in.EmployeeID); err != nil {
			return nil, lookupErr(err, errors.EmployeeNotFound, "employee")
		}
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	roles := in.Roles
	if len(roles) == 0 {
		roles = []authz.Role{authz.RoleEmployee}
	}

	acc := &model.Account{
		Username:     username,
		PasswordHash: hash,
		Roles:        authz.JoinRoles(roles),
		EmployeeID:   in.EmployeeID,
		Active:       true,
	}
	if err := s.accounts.Create(ctx, acc); err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.AccountDuplicate
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	logger.Logger.Info("Account created",
		zap.Int64("account_id", acc.ID),
		zap.String("username", acc.Username),
		zap.String("roles", acc.Roles),
	)
	return acc, nil
}

// Me 当前账号及关联员工
func (s *AuthService) Me(ctx context.Context, actor authz.Actor) (*dto.MeResponse, error) {
	acc, err := s.accounts.GetByID(ctx, actor.AccountID)
	if err != nil {
		return nil, lookupErr(err, errors.Unauthorized, "account")
	}

	out := &dto.MeResponse{
		AccountID:  acc.ID,
		Username:   acc.Username,
		EmployeeID: acc.EmployeeID,
		Roles:      []string{},
	}
	for _, r := range authz.ParseRoles(acc.Roles) {
		out.Roles = append(out.Roles, string(r))
	}

	if acc.EmployeeID != nil {
		emp, err := s.employees.Get(ctx, *acc.EmployeeID)
		if err != nil {
			logger.Logger.Warn("Account linked to missing employee",
				zap.Int64("account_id", acc.ID),
				zap.Int64("employee_id", *acc.EmployeeID),
				zap.Error(err),
			)
		} else {
			item := dto.NewEmployeeItem(emp)
			out.Employee = &item
		}
	}
	return out, nil
}
