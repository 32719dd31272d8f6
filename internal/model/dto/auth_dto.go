package dto

// ========== Auth 相关 DTO ==========

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPairResponse 登录与刷新共用
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// MeResponse 当前账号
type MeResponse struct {
	Employee   *EmployeeItem `json:"employee,omitempty"`
	EmployeeID *int64        `json:"employee_id,omitempty"`
	Username   string        `json:"username"`
	Roles      []string      `json:"roles"`
	AccountID  int64         `json:"account_id"`
}
