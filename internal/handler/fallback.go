package handler

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	"taskhub/internal/pkg/errs"
	"taskhub/internal/pkg/logx"
	"taskhub/internal/pkg/resp"
)

// HandleNotFound answers unmatched paths with the JSON error envelope.
func HandleNotFound(w http.ResponseWriter, r *http.Request) {
	resp.RespondError(w, r, errs.NewError(errs.ErrRouteNotFound))
}

// HandleMethodNotAllowed answers a known path requested with the wrong method.
func HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	resp.RespondError(w, r, errs.NewError(errs.ErrMethodNotAllowed))
}

// Recoverer turns a panicking handler into a logged 500 with the JSON error
// envelope. http.ErrAbortHandler is re-raised so net/http can abort the
// response as usual.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			logx.Error(
				fmt.Errorf("panic: %v", rvr),
				"Recovered from panic in HTTP handler",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)

			if r.Header.Get("Connection") != "Upgrade" {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
