package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"taskhub/internal/app/task"
	"taskhub/internal/pkg/errs"
	"taskhub/internal/pkg/req"
	"taskhub/internal/pkg/resp"
)

type TaskInput struct {
	Title       string `json:"title" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"required,min=10"`
}

// HandleCreateTask stores a task for the caller. Live connections of the
// caller receive task_created.
func HandleCreateTask(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input TaskInput
		if customErr := req.BindAndValidate(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		created, err := deps.Tasks.Create(r.Context(), currentUser(r), input.Title, input.Description)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}

		resp.RespondCreated(w, r, "Task created", created.Serialize())
	}
}

// HandleListTasks returns one page of the caller's tasks.
// Query: page (default 1), per_page (default and maximum task.RESTPageSize).
func HandleListTasks(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := queryInt(r, "page", 1)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrValidationFailed, "page"))
			return
		}
		perPage, ok := queryInt(r, "per_page", task.RESTPageSize)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrValidationFailed, "per_page"))
			return
		}

		tasks, err := deps.Tasks.List(r.Context(), currentUser(r), page, perPage)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, "Success", task.SerializeAll(tasks))
	}
}

// HandleGetTask returns one of the caller's tasks.
func HandleGetTask(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := taskID(r)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrTaskNotFound))
			return
		}

		t, err := deps.Tasks.Get(r.Context(), currentUser(r), id)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, "Task found", t.Serialize())
	}
}

// HandleUpdateTask rewrites one of the caller's tasks and emits task_updated.
func HandleUpdateTask(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := taskID(r)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrTaskNotFound))
			return
		}

		var input TaskInput
		if customErr := req.BindAndValidate(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		updated, err := deps.Tasks.Update(r.Context(), currentUser(r), id, input.Title, input.Description)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, "Task updated", updated.Serialize())
	}
}

// HandleDeleteTask removes one of the caller's tasks and emits task_removed.
func HandleDeleteTask(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := taskID(r)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrTaskNotFound))
			return
		}

		if err := deps.Tasks.Delete(r.Context(), currentUser(r), id); err != nil {
			respondServiceError(w, r, err)
			return
		}

		resp.RespondNoContent(w, r)
	}
}

func taskID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
