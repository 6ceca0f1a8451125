package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/osiahq/founding-circle-api/api"
	"github.com/osiahq/founding-circle-api/config"
	"github.com/osiahq/founding-circle-api/models"
	"github.com/osiahq/founding-circle-api/waitlist"
)

// Waitlist handles waitlist-related requests
type Waitlist struct {
	Service *waitlist.Service
}

// JoinWaitlistHandler admits an applicant into the waitlist queue
func (h Waitlist) JoinWaitlistHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody models.JoinWaitlistRequest
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if requestBody.Email == "" {
		http.Error(w, `{"success": false, "message": "Email is required"}`, http.StatusBadRequest)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	resp, err := h.Service.JoinWaitlist(ctx, requestBody.Email, requestBody.ReferralSource)
	if err != nil {
		config.ErrorStatus("failed to join waitlist", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// ApproveMemberHandler promotes a single pending member to approved
func (h Waitlist) ApproveMemberHandler(w http.ResponseWriter, r *http.Request) {
	memberID := mux.Vars(r)["member_id"]

	mID, err := primitive.ObjectIDFromHex(memberID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	member, err := h.Service.ApproveMember(ctx, mID)
	if err != nil {
		switch {
		case errors.Is(err, waitlist.ErrMemberNotFound):
			config.ErrorStatus("member not found", http.StatusNotFound, w, err)
		case errors.Is(err, waitlist.ErrInvalidTransition):
			config.ErrorStatus("member is already approved or activated", http.StatusConflict, w, err)
		default:
			config.ErrorStatus("failed to approve member", http.StatusInternalServerError, w, err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(member)
}

// BulkApproveHandler promotes up to count pending members, oldest first
func (h Waitlist) BulkApproveHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody models.BulkApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if requestBody.Count <= 0 {
		http.Error(w, `{"success": false, "message": "Count must be a positive integer"}`, http.StatusBadRequest)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	approved, err := h.Service.BulkApprove(ctx, requestBody.Count)
	if err != nil {
		config.ErrorStatus("failed to bulk approve members", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(approved)
}

// ValidateAccessCodeHandler validates a (code, email) pair presented during
// downstream signup and activates the member when eligible
func (h Waitlist) ValidateAccessCodeHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody models.ValidateCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if requestBody.AccessCode == "" || requestBody.Email == "" {
		http.Error(w, `{"success": false, "message": "Access code and email are required"}`, http.StatusBadRequest)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	resp, err := h.Service.ValidateAndActivate(ctx, requestBody.AccessCode, requestBody.Email)
	if err != nil {
		var vErr *waitlist.ValidationError
		if errors.As(err, &vErr) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"valid":  false,
				"reason": vErr.Reason,
			})
			return
		}
		config.ErrorStatus("failed to validate access code", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// WaitlistStatsHandler returns member counts by status and remaining capacity
func (h Waitlist) WaitlistStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	stats, err := h.Service.GetStats(ctx)
	if err != nil {
		config.ErrorStatus("failed to get waitlist stats", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(stats)
}

// MembersHandler lists every member in queue order. Access codes of pending
// members are redacted; they only become visible once a member is approved.
func (h Waitlist) MembersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	members, err := h.Service.GetAllMembers(ctx)
	if err != nil {
		config.ErrorStatus("failed to list members", http.StatusInternalServerError, w, err)
		return
	}

	for i := range members {
		if members[i].Status == models.StatusPending {
			members[i].AccessCode = ""
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(members)
}

// DeleteMemberHandler removes a member and compacts the queue numbering.
// Deleting an unknown id succeeds quietly.
func (h Waitlist) DeleteMemberHandler(w http.ResponseWriter, r *http.Request) {
	memberID := mux.Vars(r)["member_id"]

	mID, err := primitive.ObjectIDFromHex(memberID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := h.Service.RemoveMember(ctx, mID); err != nil {
		config.ErrorStatus("failed to remove member", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "member removed successfully"}`))
}
