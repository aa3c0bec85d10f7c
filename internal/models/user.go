package models

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type CreateUserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the login response. Older backends name the credential
// "token" instead of "jwt"; Credential returns whichever is set.
type LoginResult struct {
	JWT      string `json:"jwt"`
	Token    string `json:"token,omitempty"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

func (r LoginResult) Credential() string {
	if r.JWT != "" {
		return r.JWT
	}
	return r.Token
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type ResetPasswordInput struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// ReportFilter dates use the yyyy-mm-dd form of the date inputs; empty
// values are left off the query.
type ReportFilter struct {
	StartDate string
	EndDate   string
}
