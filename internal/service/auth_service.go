package service

import (
	"errors"

	"admin-go/internal/api/dto"
	"admin-go/internal/config"
	"admin-go/internal/model"
	"admin-go/internal/repository"
	"admin-go/pkg/utils"

	"gorm.io/gorm"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrEmailExists       = errors.New("email already registered")
	ErrInvalidCredential = errors.New("invalid email or password")
)

// AuthService 仪表盘账号认证（本地 postgres 账号，与上游用户数据无关）
type AuthService struct {
	accountRepo *repository.AccountRepository
}

func NewAuthService(accountRepo *repository.AccountRepository) *AuthService {
	return &AuthService{accountRepo: accountRepo}
}

// Register 注册仪表盘账号
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.AccountInfo, error) {
	exists, err := s.accountRepo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = "viewer"
	}

	account := &model.Account{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashedPassword,
		Role:     role,
	}

	if err := s.accountRepo.Create(account); err != nil {
		return nil, err
	}

	return toAccountInfo(account), nil
}

// Login 登录，返回 token 数据
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.TokenData, error) {
	account, err := s.accountRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}

	if !utils.VerifyPassword(req.Password, account.Password) {
		return nil, ErrInvalidCredential
	}

	token, err := utils.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, err
	}

	expireSeconds := config.GetJWT().ExpireHours * 3600

	return &dto.TokenData{
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: expireSeconds,
		Account:   *toAccountInfo(account),
	}, nil
}

// GetCurrentAccount 根据账号 ID 获取账号信息
func (s *AuthService) GetCurrentAccount(accountID int64) (*dto.AccountInfo, error) {
	account, err := s.accountRepo.GetByID(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return toAccountInfo(account), nil
}

func toAccountInfo(account *model.Account) *dto.AccountInfo {
	return &dto.AccountInfo{
		ID:    account.ID,
		Name:  account.Name,
		Email: account.Email,
		Role:  account.Role,
	}
}
