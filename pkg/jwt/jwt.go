package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

// Manager JWT管理器
// 设计说明：
// 1. 使用双Token机制：Access Token（短期）+ Refresh Token（长期）
// 2. Access Token用于API鉴权，有效期短（2小时）
// 3. Refresh Token用于刷新Access Token，有效期长（7天）
type Manager struct {
	secret             string        // JWT签名密钥
	accessTokenExpire  time.Duration // Access Token有效期
	refreshTokenExpire time.Duration // Refresh Token有效期
}

// NewManager 创建JWT管理器
func NewManager(secret string, accessTokenExpire, refreshTokenExpire time.Duration) *Manager {
	return &Manager{
		secret:             secret,
		accessTokenExpire:  accessTokenExpire,
		refreshTokenExpire: refreshTokenExpire,
	}
}

// Claims 自定义JWT Claims
// 学习要点：
// 1. 嵌入jwt.RegisteredClaims获取标准字段（exp、iat、nbf等）
// 2. 添加自定义字段：角色和所属机构是鉴权的核心依据，
//    中间件直接从Claims还原Principal，避免每个请求查库
type Claims struct {
	UserID     uint   `json:"user_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	FacilityID *uint  `json:"facility_id,omitempty"` // 仓库/超管角色无所属机构
	jwt.RegisteredClaims
}

// TokenPair Token对（Access + Refresh）
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // Access Token过期时间（秒）
}

// GenerateToken 生成Token对
func (m *Manager) GenerateToken(userID uint, email, name, role string, facilityID *uint) (*TokenPair, error) {
	now := time.Now()

	// 1. 生成Access Token
	accessClaims := Claims{
		UserID:     userID,
		Email:      email,
		Name:       name,
		Role:       role,
		FacilityID: facilityID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTokenExpire)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "medsupply",
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(m.secret))
	if err != nil {
		return nil, apperrors.Wrap(err, "生成Access Token失败")
	}

	// 2. 生成Refresh Token（只包含UserID，减少payload大小）
	refreshClaims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTokenExpire)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "medsupply",
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString([]byte(m.secret))
	if err != nil {
		return nil, apperrors.Wrap(err, "生成Refresh Token失败")
	}

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresIn:    int64(m.accessTokenExpire.Seconds()),
	}, nil
}

// ParseToken 解析并验证Token
// 学习要点：
// 1. 验证签名（防止伪造）
// 2. 验证过期时间（exp）与生效时间（nbf）
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名算法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非法的签名算法: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})

	if err != nil {
		if err == jwt.ErrTokenExpired {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, apperrors.ErrInvalidToken
}

// RefreshAccessToken 使用Refresh Token刷新Access Token
// 业务流程：
// 1. 验证Refresh Token有效性
// 2. 提取UserID
// 3. 生成新的Access Token
func (m *Manager) RefreshAccessToken(refreshToken string) (string, error) {
	claims, err := m.ParseToken(refreshToken)
	if err != nil {
		return "", err
	}

	now := time.Now()
	newClaims := Claims{
		UserID:     claims.UserID,
		Email:      claims.Email,
		Name:       claims.Name,
		Role:       claims.Role,
		FacilityID: claims.FacilityID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTokenExpire)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "medsupply",
			Subject:   fmt.Sprintf("%d", claims.UserID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, newClaims)
	tokenString, err := token.SignedString([]byte(m.secret))
	if err != nil {
		return "", apperrors.Wrap(err, "刷新Token失败")
	}

	return tokenString, nil
}
