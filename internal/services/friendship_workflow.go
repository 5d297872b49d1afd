package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/reelcanon/internal/logging"
	"github.com/HammerMeetNail/reelcanon/internal/metrics"
	"github.com/HammerMeetNail/reelcanon/internal/models"
)

// Transition names a change in a pair's workflow state.
type Transition string

const (
	TransitionRequested    Transition = "requested"
	TransitionAccepted     Transition = "accepted"
	TransitionCancelled    Transition = "cancelled"
	TransitionRejected     Transition = "rejected"
	TransitionUnfriended   Transition = "unfriended"
	TransitionAdminRemoved Transition = "admin_removed"
)

const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// FriendshipFilter narrows a friendship list. Zero values match everything.
type FriendshipFilter struct {
	State     models.FriendshipState
	Direction string
}

func (f FriendshipFilter) matches(v models.FriendRequestView) bool {
	if f.State != "" && v.State != f.State {
		return false
	}
	switch f.Direction {
	case DirectionIncoming:
		return v.Role == models.FriendshipRoleRecipient
	case DirectionOutgoing:
		return v.Role == models.FriendshipRoleRequester
	}
	return true
}

// FriendshipEngine is the storage contract the workflow drives.
type FriendshipEngine interface {
	Create(ctx context.Context, requesterID, recipientID uuid.UUID) (*models.FriendshipPair, error)
	ListFor(ctx context.Context, userID uuid.UUID) ([]*models.FriendshipPair, error)
	ListAll(ctx context.Context) ([]*models.FriendshipPair, error)
	Accept(ctx context.Context, pairID, actorID uuid.UUID) (*models.FriendshipPair, error)
	Remove(ctx context.Context, a, b uuid.UUID) (*models.FriendshipPair, error)
}

// FriendshipWorkflow applies caller authorization and the
// none -> pending -> accepted state machine on top of the engine.
type FriendshipWorkflow struct {
	engine FriendshipEngine
}

func NewFriendshipWorkflow(engine FriendshipEngine) *FriendshipWorkflow {
	return &FriendshipWorkflow{engine: engine}
}

func (w *FriendshipWorkflow) SendRequest(ctx context.Context, caller models.Principal, recipientID uuid.UUID) (*models.FriendshipPair, error) {
	pair, err := w.engine.Create(ctx, caller.UserID, recipientID)
	if err != nil {
		return nil, err
	}
	recordTransition(TransitionRequested, caller, pair)
	return pair, nil
}

func (w *FriendshipWorkflow) Accept(ctx context.Context, caller models.Principal, pairID uuid.UUID) (*models.FriendshipPair, error) {
	pair, err := w.engine.Accept(ctx, pairID, caller.UserID)
	if err != nil {
		return nil, err
	}
	recordTransition(TransitionAccepted, caller, pair)
	return pair, nil
}

// classifyRemoval names what deleting pair means for actor.
func classifyRemoval(pair *models.FriendshipPair, actorID uuid.UUID) Transition {
	switch {
	case pair.Accepted:
		return TransitionUnfriended
	case pair.RequesterID == actorID:
		return TransitionCancelled
	default:
		return TransitionRejected
	}
}

// Remove ends the caller's relationship with otherID. A pending request is
// cancelled by its requester or rejected by its recipient; an accepted pair is
// unfriended by either participant.
func (w *FriendshipWorkflow) Remove(ctx context.Context, caller models.Principal, otherID uuid.UUID) (Transition, error) {
	removed, err := w.engine.Remove(ctx, caller.UserID, otherID)
	if err != nil {
		return "", err
	}
	if removed == nil {
		return "", ErrFriendshipNotFound
	}

	// Classify the row that was actually deleted.
	transition := classifyRemoval(removed, caller.UserID)
	recordTransition(transition, caller, removed)
	return transition, nil
}

// AdminRemove deletes the pair between two arbitrary users.
func (w *FriendshipWorkflow) AdminRemove(ctx context.Context, caller models.Principal, a, b uuid.UUID) error {
	if err := RequireAdmin(caller); err != nil {
		return err
	}
	removed, err := w.engine.Remove(ctx, a, b)
	if err != nil {
		return err
	}
	recordTransition(TransitionAdminRemoved, caller, removed)
	return nil
}

// ListFor returns target's pairs rendered from target's perspective.
func (w *FriendshipWorkflow) ListFor(ctx context.Context, caller models.Principal, target uuid.UUID, filter FriendshipFilter) ([]models.FriendRequestView, error) {
	if err := AuthorizeSelfOrAdmin(caller, target); err != nil {
		return nil, err
	}

	pairs, err := w.engine.ListFor(ctx, target)
	if err != nil {
		return nil, err
	}

	views := make([]models.FriendRequestView, 0, len(pairs))
	for _, p := range pairs {
		v := p.ViewFor(target)
		if filter.matches(v) {
			views = append(views, v)
		}
	}
	return views, nil
}

func (w *FriendshipWorkflow) ListAll(ctx context.Context, caller models.Principal) ([]*models.FriendshipPair, error) {
	if err := RequireAdmin(caller); err != nil {
		return nil, err
	}
	return w.engine.ListAll(ctx)
}

func recordTransition(t Transition, caller models.Principal, pair *models.FriendshipPair) {
	metrics.FriendshipTransitions.WithLabelValues(string(t)).Inc()
	logging.Info("Friendship transition", map[string]interface{}{
		"transition":   string(t),
		"actor_id":     caller.UserID.String(),
		"friendship":   pair.ID.String(),
		"low_id":       pair.LowID.String(),
		"high_id":      pair.HighID.String(),
		"requester_id": pair.RequesterID.String(),
	})
}
