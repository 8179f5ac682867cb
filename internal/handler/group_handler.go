/*
Package handler provides HTTP handler functions for group membership management.
*/
package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"crmchat/internal/pkg/auth/jwt"
	"crmchat/internal/pkg/errs"
	"crmchat/internal/pkg/req"
	"crmchat/internal/pkg/resp"
)

// respondServiceError translates a service-layer error into a JSON error response.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		resp.RespondError(w, r, customErr)
		return
	}
	resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
}

type CreateGroupInput struct {
	Name string `json:"name" validate:"required"`
}

// HandleCreateGroup creates a new group with the caller as sole initial member.
func HandleCreateGroup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		var input CreateGroupInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		g, err := deps.Groups.Create(r.Context(), input.Name, identity.ID)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}

		resp.RespondCreated(w, r, g)
	}
}

type AddGroupMembersInput struct {
	UserIDs []string `json:"userIds" validate:"required,min=1"`
}

// HandleAddGroupMembers unions the given user identifiers into the group's member set.
func HandleAddGroupMembers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := chi.URLParam(r, "groupID")

		var input AddGroupMembersInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		g, err := deps.Groups.AddMembers(r.Context(), groupID, input.UserIDs)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, g)
	}
}

type RenameGroupInput struct {
	Name string `json:"name" validate:"required"`
}

// HandleRenameGroup changes a group's display name.
func HandleRenameGroup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := chi.URLParam(r, "groupID")

		var input RenameGroupInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		g, err := deps.Groups.Rename(r.Context(), groupID, input.Name)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, g)
	}
}

// HandleListGroups returns the groups visible to the caller.
func HandleListGroups(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		groups, err := deps.Groups.List(r.Context(), identity.ID)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, groups)
	}
}
