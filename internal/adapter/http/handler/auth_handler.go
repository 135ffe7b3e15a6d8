package handler

import (
	"encoding/json"
	"net/http"

	"github.com/iho/cambiod/internal/adapter/http/dto"
	"github.com/iho/cambiod/internal/adapter/http/middleware"
	"github.com/iho/cambiod/internal/domain"
	"github.com/iho/cambiod/internal/usecase"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Generate(user *domain.User) (string, error)
}

// AuthHandler handles registration and login.
type AuthHandler struct {
	userUC    *usecase.UserUseCase
	accountUC *usecase.AccountUseCase
	tokens    TokenIssuer
}

// NewAuthHandler creates a new AuthHandler. tokens may be nil when
// authentication is disabled.
func NewAuthHandler(userUC *usecase.UserUseCase, accountUC *usecase.AccountUseCase, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{
		userUC:    userUC,
		accountUC: accountUC,
		tokens:    tokens,
	}
}

// Register creates a user. Client-role users also get a client profile and
// their initial bolivar account in the same request.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	role := domain.Role(req.Role)
	if role == "" {
		role = domain.RoleClient
	}

	// Staff roles are only assignable by an authenticated admin.
	if role.IsStaff() {
		actor, ok := middleware.GetUserFromContext(r.Context())
		if !ok || actor.Role != domain.RoleAdmin {
			writeError(w, http.StatusForbidden, "staff roles require admin access", "")
			return
		}
	}

	user, err := h.userUC.Register(r.Context(), usecase.RegisterUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to register user", err.Error())

		return
	}

	resp := dto.RegisterResponse{User: dto.UserFromDomain(user)}

	if role == domain.RoleClient {
		client, account, err := h.accountUC.RegisterClient(r.Context(), usecase.RegisterClientInput{
			UserID:     user.ID,
			Name:       req.Name,
			DocumentID: req.DocumentID,
		})
		if err != nil {
			status := mapDomainError(err)
			writeError(w, status, "failed to register client", err.Error())

			return
		}

		if err := h.userUC.LinkClient(r.Context(), user.ID, client.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to link client", err.Error())
			return
		}

		user.ClientID = client.ID
		resp.User.ClientID = client.ID
		resp.Account = dto.AccountFromDomain(account)
	}

	if h.tokens != nil {
		token, err := h.tokens.Generate(user)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to issue token", err.Error())
			return
		}

		resp.Token = token
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Login verifies credentials and returns a signed token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.userUC.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "authentication failed", err.Error())

		return
	}

	if h.tokens == nil {
		writeError(w, http.StatusServiceUnavailable, "authentication is disabled", "")
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		Token: token,
		User:  dto.UserFromDomain(user),
	})
}
