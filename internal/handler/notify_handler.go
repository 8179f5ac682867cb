/*
Package handler provides the integration hook between the CRM lead workflow
and the messaging core.

When a lead is assigned, the CRUD side calls this endpoint; the messaging core
resolves the assignee in the presence registry and pushes a one-off
leadAssigned event. Offline assignees are a silent no-op.
*/
package handler

import (
	"encoding/json"
	"net/http"

	"crmchat/internal/app/chat"
	"crmchat/internal/pkg/req"
	"crmchat/internal/pkg/resp"
)

type LeadAssignedInput struct {
	UserID  string          `json:"userId" validate:"required"`
	Message string          `json:"message" validate:"required"`
	Lead    json.RawMessage `json:"lead,omitempty"`
}

// HandleLeadAssigned pushes a lead-assignment notification to a single user.
func HandleLeadAssigned(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LeadAssignedInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if _, err := deps.Directory.Lookup(r.Context(), input.UserID); err != nil {
			respondServiceError(w, r, err)
			return
		}

		delivered := false
		if conn, ok := deps.Registry.Resolve(input.UserID); ok {
			payload := chat.LeadAssignedPayload{
				Message: input.Message,
				Lead:    input.Lead,
			}
			delivered = conn.Push(chat.EventLeadAssigned, payload) == nil
		}

		resp.RespondSuccess(w, r, map[string]any{
			"delivered": delivered,
		})
	}
}
