package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/reelcanon/internal/models"
	"github.com/HammerMeetNail/reelcanon/internal/services"
)

type FriendshipHandler struct {
	workflow services.FriendshipWorkflowInterface
}

func NewFriendshipHandler(workflow services.FriendshipWorkflowInterface) *FriendshipHandler {
	return &FriendshipHandler{workflow: workflow}
}

type SendFriendRequestRequest struct {
	RecipientID string `json:"recipient_id"`
}

type FriendshipResponse struct {
	Friendship *models.FriendshipPair `json:"friendship,omitempty"`
	Transition services.Transition    `json:"transition,omitempty"`
	Message    string                 `json:"message,omitempty"`
}

type FriendshipListResponse struct {
	UserID      uuid.UUID                  `json:"user_id"`
	Friendships []models.FriendRequestView `json:"friendships"`
}

type AllFriendshipsResponse struct {
	Friendships []*models.FriendshipPair `json:"friendships"`
}

func (h *FriendshipHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	caller := requirePrincipal(w, r)
	if caller == nil {
		return
	}

	var req SendFriendRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid recipient ID")
		return
	}

	pair, err := h.workflow.SendRequest(r.Context(), *caller, recipientID)
	if err != nil {
		writeServiceError(w, r, "send friend request", err)
		return
	}
	writeJSON(w, http.StatusCreated, FriendshipResponse{
		Friendship: pair,
		Transition: services.TransitionRequested,
		Message:    "Friend request sent",
	})
}

func (h *FriendshipHandler) Accept(w http.ResponseWriter, r *http.Request) {
	caller := requirePrincipal(w, r)
	if caller == nil {
		return
	}

	pairID, err := parseUUIDPath(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid friendship ID")
		return
	}

	pair, err := h.workflow.Accept(r.Context(), *caller, pairID)
	if err != nil {
		writeServiceError(w, r, "accept friend request", err)
		return
	}
	writeJSON(w, http.StatusOK, FriendshipResponse{
		Friendship: pair,
		Transition: services.TransitionAccepted,
		Message:    "Friend request accepted",
	})
}

// Remove cancels, rejects or unfriends depending on the pair's state and the
// caller's role in it.
func (h *FriendshipHandler) Remove(w http.ResponseWriter, r *http.Request) {
	caller := requirePrincipal(w, r)
	if caller == nil {
		return
	}

	otherID, err := parseUUIDPath(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	transition, err := h.workflow.Remove(r.Context(), *caller, otherID)
	if err != nil {
		writeServiceError(w, r, "remove friendship", err)
		return
	}
	writeJSON(w, http.StatusOK, FriendshipResponse{Transition: transition, Message: removalMessage(transition)})
}

func removalMessage(t services.Transition) string {
	switch t {
	case services.TransitionCancelled:
		return "Friend request cancelled"
	case services.TransitionRejected:
		return "Friend request rejected"
	default:
		return "Friend removed"
	}
}

func (h *FriendshipHandler) AdminRemove(w http.ResponseWriter, r *http.Request) {
	caller := requirePrincipal(w, r)
	if caller == nil {
		return
	}

	a, errA := parseUUIDPath(r, "userId")
	b, errB := parseUUIDPath(r, "otherUserId")
	if errA != nil || errB != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.workflow.AdminRemove(r.Context(), *caller, a, b); err != nil {
		writeServiceError(w, r, "admin remove friendship", err)
		return
	}
	writeJSON(w, http.StatusOK, FriendshipResponse{Transition: services.TransitionAdminRemoved, Message: "Friendship removed"})
}

// List serves both the caller's own list and, with a {userId} path value, an
// explicit target's list. Views are always from the target's perspective.
func (h *FriendshipHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := requirePrincipal(w, r)
	if caller == nil {
		return
	}

	target, err := resolveTargetUserID(r, caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	filter, ok := parseFriendshipFilter(w, r)
	if !ok {
		return
	}

	views, err := h.workflow.ListFor(r.Context(), *caller, target, filter)
	if err != nil {
		writeServiceError(w, r, "list friendships", err)
		return
	}
	writeJSON(w, http.StatusOK, FriendshipListResponse{UserID: target, Friendships: views})
}

func (h *FriendshipHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	caller := requirePrincipal(w, r)
	if caller == nil {
		return
	}

	pairs, err := h.workflow.ListAll(r.Context(), *caller)
	if err != nil {
		writeServiceError(w, r, "list all friendships", err)
		return
	}
	if pairs == nil {
		pairs = []*models.FriendshipPair{}
	}
	writeJSON(w, http.StatusOK, AllFriendshipsResponse{Friendships: pairs})
}

func parseFriendshipFilter(w http.ResponseWriter, r *http.Request) (services.FriendshipFilter, bool) {
	var filter services.FriendshipFilter
	q := r.URL.Query()

	switch status := models.FriendshipState(q.Get("status")); status {
	case "":
	case models.FriendshipStatePending, models.FriendshipStateAccepted:
		filter.State = status
	default:
		writeError(w, http.StatusBadRequest, "status must be pending or accepted")
		return filter, false
	}

	switch direction := q.Get("direction"); direction {
	case "":
	case services.DirectionIncoming, services.DirectionOutgoing:
		filter.Direction = direction
	default:
		writeError(w, http.StatusBadRequest, "direction must be incoming or outgoing")
		return filter, false
	}

	return filter, true
}
