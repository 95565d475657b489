package handler

import (
	"errors"
	"net/http"

	"syncroom/internal/app/media"
	"syncroom/internal/pkg/errs"
	"syncroom/internal/pkg/logx"
	"syncroom/internal/pkg/req"
	"syncroom/internal/pkg/resp"
)

type MediaCheckInput struct {
	Source string `json:"source"`
}

// HandleMediaCheck verifies a remote media source on behalf of a room member
// and returns a signed token attesting it. The caller authenticates with the
// session token issued at create/join time.
func HandleMediaCheck(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := deps.Hub.ResolveAuthHeader(r.Header.Get("Authorization"))
		if user == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrSessionInvalid))
			return
		}

		var input MediaCheckInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Source == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		token, err := deps.Media.VerifySource(r.Context(), input.Source)
		if err != nil {
			var vErr *media.ValidationError
			if errors.As(err, &vErr) {
				resp.RespondError(w, r, errs.NewError(errs.ErrMediaInvalid, vErr.Kind))
				return
			}

			logx.Error(err, "Media verification failed unexpectedly.", "user_id", user.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"token": token})
	}
}
