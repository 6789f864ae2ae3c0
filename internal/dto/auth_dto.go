package dto

// RegisterRequest carries the registration form fields.
type RegisterRequest struct {
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// LoginRequest carries the login form fields.
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// FormRenderResponse is returned by GET form endpoints: the CSRF token the
// frontend must embed as the hidden csrf_token field, plus optional echoed
// input after a validation failure.
type FormRenderResponse struct {
	CSRFToken string            `json:"csrf_token"`
	Echo      map[string]string `json:"echo,omitempty"`
}

// SessionInfo describes the signed-in identity for page headers.
type SessionInfo struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
