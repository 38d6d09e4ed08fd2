package handler

import "github.com/99minutos/access-control/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type loginRequest struct {
	Username string `json:"username" validate:"max=64"`
	Password string `json:"password" validate:"max=72"`
	Role     string `json:"role"     validate:"max=32"`
}

// bcrypt rejects secrets longer than 72 bytes, hence the password limits.
type addAccountRequest struct {
	Username string `json:"username" validate:"max=64,excludesall=/"`
	Password string `json:"password" validate:"max=72"`
	Role     string `json:"role"     validate:"max=32"`
}

// updateAccountRequest distinguishes an omitted field (nil) from a supplied one.
type updateAccountRequest struct {
	Password *string `json:"password" validate:"omitempty,max=72"`
	Role     *string `json:"role"     validate:"omitempty,max=32"`
}

// --- Response types ---

// accountResponse never carries the secret or its hash.
type accountResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Token    string `json:"token"`
}

type accountsResponse struct {
	Message string            `json:"message"`
	Users   []accountResponse `json:"users"`
}

type accountUpdatedResponse struct {
	Message string          `json:"message"`
	User    accountResponse `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toAccountResponse(a domain.Account) accountResponse {
	return accountResponse{Username: a.Username, Role: a.Role.String()}
}

func toAccountsResponse(accounts []domain.Account) []accountResponse {
	out := make([]accountResponse, len(accounts))
	for i, a := range accounts {
		out[i] = toAccountResponse(a)
	}
	return out
}

func (r updateAccountRequest) patch() domain.AccountPatch {
	var p domain.AccountPatch
	if r.Password != nil {
		secret := *r.Password
		p.Secret = &secret
	}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		p.Role = &role
	}
	return p
}
