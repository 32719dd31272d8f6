package token

import (
	"fmt"
	"strconv"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/hertz-contrib/jwt"

	"HRCore/config"
	"HRCore/pkg/errors"
)

const (
	IdentityKey = "uid"
	RolesKey    = "roles"
	EmployeeKey = "emp"
	TypeKey     = "type"

	typeAccess  = "access"
	typeRefresh = "refresh"
)

// 这个实例会被 middleware 和 token 包共同使用
var sharedGenerator *jwt.HertzJWTMiddleware

// Subject token 中携带的身份信息
type Subject struct {
	EmployeeID *int64
	Roles      []string
	AccountID  int64
}

func Init() error {
	var err error
	sharedGenerator, err = jwt.New(&jwt.HertzJWTMiddleware{
		Key:         []byte(config.Cfg.JWTSecret),
		Timeout:     time.Duration(config.Cfg.JWTExpireMinutes) * time.Minute,
		MaxRefresh:  time.Duration(config.Cfg.JWTRefreshDays) * 24 * time.Hour,
		IdentityKey: IdentityKey,
		TimeFunc:    time.Now,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token generator: %w", err)
	}

	return nil
}

// GetGenerator 获取共享的 token 生成器（供 middleware 使用）
func GetGenerator() *jwt.HertzJWTMiddleware {
	return sharedGenerator
}

// GenerateTokenPair 生成 access token 和 refresh token
//
// refresh token 只携带账号 ID，刷新时重新读取角色。
func GenerateTokenPair(sub Subject) (accessToken, refreshToken string, expiresIn int, err error) {
	if sharedGenerator == nil {
		return "", "", 0, errors.ErrTokenGeneratorNotInitialized
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(config.Cfg.JWTExpireMinutes) * time.Minute)
	uid := strconv.FormatInt(sub.AccountID, 10)

	accessClaims := jwtv5.MapClaims{
		IdentityKey: uid,
		RolesKey:    sub.Roles,
		TypeKey:     typeAccess,
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
	}
	if sub.EmployeeID != nil {
		accessClaims[EmployeeKey] = strconv.FormatInt(*sub.EmployeeID, 10)
	}

	accessToken, err = sign(accessClaims)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err = sign(jwtv5.MapClaims{
		IdentityKey: uid,
		TypeKey:     typeRefresh,
		"iat":       now.Unix(),
		"exp":       now.Add(time.Duration(config.Cfg.JWTRefreshDays) * 24 * time.Hour).Unix(),
	})
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	expiresIn = max(int(time.Until(expiresAt).Seconds()), 0)
	return accessToken, refreshToken, expiresIn, nil
}

func sign(claims jwtv5.MapClaims) (string, error) {
	return jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString([]byte(config.Cfg.JWTSecret))
}

// ValidateRefreshToken 验证 refresh token 并返回账号 ID
func ValidateRefreshToken(tokenString string) (int64, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, jwtv5.MapClaims{}, func(token *jwtv5.Token) (interface{}, error) {
		if token.Method != jwtv5.SigningMethodHS256 {
			return nil, fmt.Errorf("%w: %v, expected HS256", errors.ErrUnexpectedSigningMethod, token.Header["alg"])
		}
		return []byte(config.Cfg.JWTSecret), nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}
	if !token.Valid {
		return 0, errors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwtv5.MapClaims)
	if !ok {
		return 0, errors.ErrInvalidTokenClaims
	}

	if t, _ := claims[TypeKey].(string); t != typeRefresh {
		return 0, errors.ErrInvalidTokenType
	}

	return int64Claim(claims, IdentityKey)
}

// SubjectFromClaims 从已校验的 access token claims 还原身份
func SubjectFromClaims(claims map[string]interface{}) (Subject, error) {
	if t, _ := claims[TypeKey].(string); t == typeRefresh {
		return Subject{}, errors.ErrInvalidTokenType
	}

	uid, err := int64Claim(claims, IdentityKey)
	if err != nil {
		return Subject{}, err
	}
	sub := Subject{AccountID: uid}

	if _, ok := claims[EmployeeKey]; ok {
		emp, err := int64Claim(claims, EmployeeKey)
		if err != nil {
			return Subject{}, errors.ErrInvalidTokenClaims
		}
		sub.EmployeeID = &emp
	}

	switch roles := claims[RolesKey].(type) {
	case []string:
		sub.Roles = roles
	case []interface{}:
		for _, r := range roles {
			if s, ok := r.(string); ok {
				sub.Roles = append(sub.Roles, s)
			}
		}
	}

	return sub, nil
}

func int64Claim(claims map[string]interface{}, key string) (int64, error) {
	switch v := claims[key].(type) {
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, errors.ErrUserIDNotFound
		}
		return id, nil
	case float64:
		return int64(v), nil
	default:
		return 0, errors.ErrUserIDNotFound
	}
}
