/*
Package handler provides HTTP handler functions for chat history reads.

History fetches are the reconciliation path for missed realtime pushes: they
return everything, decrypted, ascending by timestamp.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"crmchat/internal/pkg/auth/jwt"
	"crmchat/internal/pkg/errs"
	"crmchat/internal/pkg/resp"
)

// HandleDirectHistory returns the full direct-message history between the
// caller and the user named in the URL.
func HandleDirectHistory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		otherUserID := chi.URLParam(r, "userID")
		if otherUserID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		messages, err := deps.Router.History(r.Context(), identity.ID, otherUserID)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, messages)
	}
}

// HandleGroupHistory returns the full message history of a group.
func HandleGroupHistory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := chi.URLParam(r, "groupID")
		if groupID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		messages, err := deps.Router.GroupHistory(r.Context(), groupID)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, messages)
	}
}
