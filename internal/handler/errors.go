package handler

import (
	"errors"
	"net/http"

	"taskhub/internal/app/task"
	"taskhub/internal/app/user"
	"taskhub/internal/pkg/errs"
	"taskhub/internal/pkg/logx"
	"taskhub/internal/pkg/resp"
)

// respondServiceError maps domain errors to their client-facing codes.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, task.ErrNotFound):
		resp.RespondError(w, r, errs.NewError(errs.ErrTaskNotFound))
	case errors.Is(err, user.ErrAlreadyExists):
		resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
	case errors.Is(err, user.ErrInvalidCredentials):
		resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
	case errors.Is(err, user.ErrNotFound):
		resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
	default:
		logx.Error(err, "Unhandled service error", "path", r.URL.Path)
		resp.RespondError(w, r, errs.From(err))
	}
}
