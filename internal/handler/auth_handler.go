/*
Package handler wires the REST API and the realtime WebSocket endpoint onto a chi router.
*/
package handler

import (
	"net/http"

	"taskhub/internal/app/user"
	"taskhub/internal/pkg/auth/jwt"
	"taskhub/internal/pkg/errs"
	"taskhub/internal/pkg/logx"
	"taskhub/internal/pkg/req"
	"taskhub/internal/pkg/resp"
)

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=6,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=30"`
}

// HandleRegister creates a new account.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput
		if customErr := req.BindAndValidate(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		created, err := deps.Users.Register(r.Context(), input.Username, input.Email, input.Password)
		if err != nil {
			logx.Warn("register: account not created", "username", input.Username, "error", err.Error())
			respondServiceError(w, r, err)
			return
		}

		logx.Info("User registered", "user_id", created.ID.String())
		resp.RespondCreated(w, r, "User registered successfully", created.Serialize())
	}
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginOutput struct {
	AccessToken string `json:"access_token"`
}

// HandleLogin verifies user credentials and issues a JWT token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindAndValidate(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		account, err := deps.Users.Authenticate(r.Context(), input.Username, input.Password)
		if err != nil {
			logx.Warn("login: rejected", "username", input.Username)
			respondServiceError(w, r, err)
			return
		}

		token, err := jwt.GenerateToken(&jwt.Payload{UserID: int64(account.ID)}, deps.Config.JWTSecret, deps.Config.TokenLifetime)
		if err != nil {
			logx.Error(err, "login: jwt generation failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, "Login successful", LoginOutput{AccessToken: token})
	}
}

// HandleGetUserProfile returns the authenticated user's public fields.
func HandleGetUserProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := deps.Users.Get(r.Context(), currentUser(r))
		if err != nil {
			respondServiceError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, "User found", account.Serialize())
	}
}

// currentUser is only valid behind jwt.RequireIdentity.
func currentUser(r *http.Request) user.ID {
	return user.ID(jwt.GetPayloadFromContext(r).UserID)
}
