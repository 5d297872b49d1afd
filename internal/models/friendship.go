package models

import (
	"time"

	"github.com/google/uuid"
)

type FriendshipState string

const (
	FriendshipStateNone     FriendshipState = "none"
	FriendshipStatePending  FriendshipState = "pending"
	FriendshipStateAccepted FriendshipState = "accepted"
)

// FriendshipPair is the single stored record for an unordered pair of users.
// LowID sorts before HighID; RequesterID is one of the two.
type FriendshipPair struct {
	ID          uuid.UUID `json:"id"`
	LowID       uuid.UUID `json:"low_id"`
	HighID      uuid.UUID `json:"high_id"`
	RequesterID uuid.UUID `json:"requester_id"`
	Accepted    bool      `json:"accepted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *FriendshipPair) State() FriendshipState {
	if p.Accepted {
		return FriendshipStateAccepted
	}
	return FriendshipStatePending
}

func (p *FriendshipPair) Involves(id uuid.UUID) bool {
	return p.LowID == id || p.HighID == id
}

// RecipientID is the participant that did not send the request.
func (p *FriendshipPair) RecipientID() uuid.UUID {
	if p.RequesterID == p.LowID {
		return p.HighID
	}
	return p.LowID
}

// Other returns the participant that is not id. The caller must ensure id is a participant.
func (p *FriendshipPair) Other(id uuid.UUID) uuid.UUID {
	if p.LowID == id {
		return p.HighID
	}
	return p.LowID
}

type FriendshipRole string

const (
	FriendshipRoleRequester FriendshipRole = "requester"
	FriendshipRoleRecipient FriendshipRole = "recipient"
)

// FriendRequestView is a pair rendered from one participant's perspective.
type FriendRequestView struct {
	ID        uuid.UUID       `json:"id"`
	ViewerID  uuid.UUID       `json:"viewer_id"`
	FriendID  uuid.UUID       `json:"friend_id"`
	Role      FriendshipRole  `json:"role"`
	State     FriendshipState `json:"state"`
	Accepted  bool            `json:"accepted"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ViewFor renders the pair for viewer. The viewer must be a participant.
func (p *FriendshipPair) ViewFor(viewer uuid.UUID) FriendRequestView {
	role := FriendshipRoleRecipient
	if p.RequesterID == viewer {
		role = FriendshipRoleRequester
	}
	return FriendRequestView{
		ID:        p.ID,
		ViewerID:  viewer,
		FriendID:  p.Other(viewer),
		Role:      role,
		State:     p.State(),
		Accepted:  p.Accepted,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
