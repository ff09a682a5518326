package user

import (
	"context"
	"time"

	"github.com/xiebiao/medsupply/internal/domain/user"
	"github.com/xiebiao/medsupply/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/medsupply/pkg/jwt"
)

// LoginUseCase 用户登录用例
// 设计说明：
// 1. 验证邮箱密码
// 2. 生成JWT Token对（Claims携带角色与所属机构，鉴权不回查数据库）
// 3. 保存会话到Redis
type LoginUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore *redis.SessionStore,
) *LoginUseCase {
	return &LoginUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	// 1. 验证邮箱密码（调用领域服务）
	u, err := uc.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	// 2. 生成JWT Token对
	tokenPair, err := uc.jwtManager.GenerateToken(u.ID, u.Email, u.Name, string(u.Role), u.FacilityID)
	if err != nil {
		return nil, err
	}

	// 3. 保存会话到Redis
	sessionData := map[string]interface{}{
		"user_id":  u.ID,
		"email":    u.Email,
		"name":     u.Name,
		"role":     string(u.Role),
		"login_at": time.Now().Unix(),
	}

	// 会话保存失败不影响登录
	_ = uc.sessionStore.SaveSession(ctx, u.ID, sessionData, 7*24*time.Hour)

	return &LoginResponse{
		User: UserInfo{
			ID:         u.ID,
			Name:       u.Name,
			Email:      u.Email,
			Role:       string(u.Role),
			FacilityID: u.FacilityID,
		},
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

// LogoutUseCase 用户登出用例
type LogoutUseCase struct {
	sessionStore *redis.SessionStore
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessionStore *redis.SessionStore) *LogoutUseCase {
	return &LogoutUseCase{sessionStore: sessionStore}
}

// Execute 执行登出
func (uc *LogoutUseCase) Execute(ctx context.Context, userID uint, accessToken string) error {
	if err := uc.sessionStore.DeleteSession(ctx, userID); err != nil {
		return err
	}

	// Access Token加入黑名单，防止过期前继续使用
	return uc.sessionStore.AddToBlacklist(ctx, accessToken, 2*time.Hour)
}

// =========================================
// 应用层DTO
// =========================================

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
}

// LoginResponse 登录响应
type LoginResponse struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
}

// UserInfo 用户信息
type UserInfo struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	FacilityID *uint  `json:"facility_id,omitempty"`
}
