package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"line_price_portal/internal/api/dto"
	"line_price_portal/internal/apperr"
	"line_price_portal/internal/middleware"
	"line_price_portal/internal/model"
	"line_price_portal/internal/repository"
	"line_price_portal/pkg/line"
)

// ProfileVerifier 校验 LIFF access token
type ProfileVerifier interface {
	VerifyProfile(ctx context.Context, accessToken string) (*line.Profile, error)
}

var _ ProfileVerifier = (*line.Client)(nil)

// AuthService LINE 登录与 Token
type AuthService struct {
	users    repository.UserRepository
	verifier ProfileVerifier
	audit    AuditLogger
	now      func() time.Time
}

// NewAuthService 创建认证服务
func NewAuthService(users repository.UserRepository, verifier ProfileVerifier, audit AuditLogger) *AuthService {
	if audit == nil {
		audit = NopAuditLogger{}
	}
	return &AuthService{
		users:    users,
		verifier: verifier,
		audit:    audit,
		now:      time.Now,
	}
}

// ==================== 登录 ====================

// LoginWithLine 校验 LINE token 后登录或注册
// 已有用户刷新资料；新用户角色为 user
func (s *AuthService) LoginWithLine(ctx context.Context, req *dto.LineLoginRequest) (*dto.LoginResponse, error) {
	profile, err := s.verifier.VerifyProfile(ctx, req.AccessToken)
	if err != nil {
		if errors.Is(err, line.ErrInvalidAccessToken) {
			return nil, ErrInvalidLineToken
		}
		log.Warn().Err(err).Msg("line profile verification failed")
		return nil, ErrInvalidLineToken
	}
	if profile.UserID != req.UserID {
		return nil, ErrLineUserMismatch
	}

	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		name = profile.DisplayName
	}
	image := req.PictureURL
	if image == "" {
		image = profile.PictureURL
	}
	now := s.now()

	user, isNew, err := s.upsert(ctx, profile.UserID, name, req.Email, image, now)
	if err != nil {
		return nil, err
	}

	action := model.ActionLogin
	if isNew {
		action = model.ActionRegister
	}
	s.audit.Log(ctx, AuditEntry{
		UserID:     user.ID,
		Action:     action,
		EntityType: model.EntityUser,
		EntityID:   strconv.FormatInt(user.ID, 10),
		Details:    map[string]interface{}{"provider": model.ProviderLine},
	})

	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Name, user.Role)
	if err != nil {
		return nil, apperr.Store(err)
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(middleware.GetJWTConfig().AccessTokenTTL),
		IsNewUser:    isNew,
		User:         toUserInfo(user),
	}, nil
}

func (s *AuthService) upsert(ctx context.Context, providerID, name, email, image string, now time.Time) (*model.User, bool, error) {
	user, err := s.users.GetByProvider(ctx, model.ProviderLine, providerID)
	if err != nil {
		return nil, false, repository.TranslateError(err)
	}

	if user != nil {
		if !user.IsActive {
			return nil, false, ErrUserDisabled
		}
		if err := s.users.UpdateLoginProfile(ctx, user.ID, name, email, image, now); err != nil {
			return nil, false, repository.TranslateError(err)
		}
		user.Name = name
		if email != "" {
			user.Email = email
		}
		user.Image = image
		user.LastLoginAt = &now
		return user, false, nil
	}

	user = &model.User{
		Provider:    model.ProviderLine,
		ProviderID:  providerID,
		Name:        name,
		Email:       email,
		Image:       image,
		Role:        model.RoleUser,
		IsActive:    true,
		LastLoginAt: &now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperr.KindOf(err) != apperr.KindConflict {
			return nil, false, repository.TranslateError(err)
		}
		// 并发首次登录，另一个请求已经建好
		existing, getErr := s.users.GetByProvider(ctx, model.ProviderLine, providerID)
		if getErr != nil || existing == nil {
			return nil, false, repository.TranslateError(err)
		}
		return existing, false, nil
	}
	return user, true, nil
}

// Logout 记录登出，Token 由客户端丢弃
func (s *AuthService) Logout(ctx context.Context, userID int64) {
	s.audit.Log(ctx, AuditEntry{
		UserID:     userID,
		Action:     model.ActionLogout,
		EntityType: model.EntityUser,
		EntityID:   strconv.FormatInt(userID, 10),
	})
}

// ==================== Token 刷新 ====================

// RefreshToken 刷新 Token，角色以数据库为准
func (s *AuthService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.RefreshTokenResponse, error) {
	claims, err := middleware.ParseToken(req.RefreshToken)
	if err != nil || claims.Subject != middleware.TokenSubjectRefresh {
		return nil, ErrInvalidRefresh
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, repository.TranslateError(err)
	}
	if user == nil || !user.IsActive {
		return nil, ErrUserDisabled
	}

	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Name, user.Role)
	if err != nil {
		return nil, apperr.Store(err)
	}

	return &dto.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    s.now().Add(middleware.GetJWTConfig().AccessTokenTTL),
	}, nil
}
