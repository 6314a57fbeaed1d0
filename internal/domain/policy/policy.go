// Package policy holds the request authorization matrix.
//
// Authorize is a pure function over the action, the calling identity and the
// target resource. It never touches storage; callers load the target first
// when an ownership rule applies and pass nil for collection-level checks.
package policy

import (
	"fmt"

	"coderr/internal/domain/entity"
	domainerrors "coderr/internal/domain/errors"
)

// Action names one operation on one resource type.
type Action string

const (
	ProfileRead   Action = "profile.read"
	ProfileList   Action = "profile.list"
	ProfileUpdate Action = "profile.update"

	OfferList     Action = "offer.list"
	OfferRetrieve Action = "offer.retrieve"
	OfferDetail   Action = "offer.detail"
	OfferShare    Action = "offer.share"
	OfferCreate   Action = "offer.create"
	OfferUpdate   Action = "offer.update"
	OfferDelete   Action = "offer.delete"

	OrderList     Action = "order.list"
	OrderRetrieve Action = "order.retrieve"
	OrderCount    Action = "order.count"
	OrderCreate   Action = "order.create"
	OrderUpdate   Action = "order.update"
	OrderDelete   Action = "order.delete"

	ReviewList     Action = "review.list"
	ReviewRetrieve Action = "review.retrieve"
	ReviewCreate   Action = "review.create"
	ReviewUpdate   Action = "review.update"
	ReviewDelete   Action = "review.delete"

	BaseInfoRead Action = "baseinfo.read"
)

// Caller is the authenticated identity a request acts as. A nil *Caller is anonymous.
type Caller struct {
	UserID  int64
	Type    entity.ProfileType
	IsStaff bool
}

// CallerFromUser builds a Caller from a loaded user.
func CallerFromUser(u *entity.User) *Caller {
	if u == nil {
		return nil
	}

	return &Caller{UserID: u.ID, Type: u.Type(), IsStaff: u.IsStaff}
}

// Target describes the resource an ownership rule compares against.
// OwnerID is the identity the rule requires: profile owner, offer owner,
// order business user or review author.
type Target struct {
	OwnerID int64
}

// TargetOwnedBy is a shorthand for object-level checks.
func TargetOwnedBy(ownerID int64) *Target {
	return &Target{OwnerID: ownerID}
}

// DenyReason tells the boundary which error class a denial maps to.
type DenyReason int

const (
	// NotDenied is the zero value carried by Allow decisions.
	NotDenied DenyReason = iota
	// Unauthenticated maps to 401.
	Unauthenticated
	// Forbidden maps to 403.
	Forbidden
)

// Decision is the tagged result of Authorize.
type Decision struct {
	Reason  DenyReason
	Message string
}

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool {
	return d.Reason == NotDenied
}

// Err converts a denial into the domain error taxonomy; nil when allowed.
func (d Decision) Err() error {
	switch d.Reason {
	case Unauthenticated:
		return domainerrors.ErrUnauthorized.WithMessage(d.Message)
	case Forbidden:
		return domainerrors.ErrForbidden.WithMessage(d.Message)
	default:
		return nil
	}
}

func allow() Decision {
	return Decision{}
}

func deny(reason DenyReason, message string) Decision {
	return Decision{Reason: reason, Message: message}
}

type ruleKind int

const (
	rulePublic ruleKind = iota
	ruleAuthenticated
	ruleRole
	ruleOwner
	ruleStaff
)

type rule struct {
	kind ruleKind
	role entity.ProfileType
}

var matrix = map[Action]rule{
	ProfileRead:   {kind: ruleAuthenticated},
	ProfileList:   {kind: ruleAuthenticated},
	ProfileUpdate: {kind: ruleOwner},

	OfferList:     {kind: rulePublic},
	OfferRetrieve: {kind: ruleAuthenticated},
	OfferDetail:   {kind: ruleAuthenticated},
	OfferShare:    {kind: ruleAuthenticated},
	OfferCreate:   {kind: ruleRole, role: entity.ProfileTypeBusiness},
	OfferUpdate:   {kind: ruleOwner},
	OfferDelete:   {kind: ruleOwner},

	OrderList:     {kind: ruleAuthenticated},
	OrderRetrieve: {kind: ruleAuthenticated},
	OrderCount:    {kind: ruleAuthenticated},
	OrderCreate:   {kind: ruleRole, role: entity.ProfileTypeCustomer},
	OrderUpdate:   {kind: ruleOwner},
	OrderDelete:   {kind: ruleStaff},

	ReviewList:     {kind: ruleAuthenticated},
	ReviewRetrieve: {kind: ruleAuthenticated},
	ReviewCreate:   {kind: ruleRole, role: entity.ProfileTypeCustomer},
	ReviewUpdate:   {kind: ruleOwner},
	ReviewDelete:   {kind: ruleOwner},

	BaseInfoRead: {kind: rulePublic},
}

// Authorize evaluates the matrix. Unknown actions are forbidden.
func Authorize(action Action, caller *Caller, target *Target) Decision {
	r, ok := matrix[action]
	if !ok {
		return deny(Forbidden, fmt.Sprintf("Unknown action %q.", action))
	}

	if r.kind == rulePublic {
		return allow()
	}

	if caller == nil {
		return deny(Unauthenticated, domainerrors.ErrUnauthorized.Message())
	}

	switch r.kind {
	case ruleRole:
		if caller.Type != r.role {
			return deny(Forbidden, fmt.Sprintf("Only %s users may perform this action.", r.role))
		}
	case ruleStaff:
		if !caller.IsStaff {
			return deny(Forbidden, "Only staff members may perform this action.")
		}
	case ruleOwner:
		if target != nil && target.OwnerID != caller.UserID {
			return deny(Forbidden, "You are not the owner of this resource.")
		}
	}

	return allow()
}

// Check is Authorize followed by Err, for call sites that only need the error.
func Check(action Action, caller *Caller, target *Target) error {
	return Authorize(action, caller, target).Err()
}
