package trade

import (
	"fmt"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
)

// EffectDirection says whether an order's lines become economically active or stop being so
type EffectDirection string

const (
	EffectNone    EffectDirection = ""
	EffectApply   EffectDirection = "APPLY"
	EffectReverse EffectDirection = "REVERSE"
)

// String returns the string representation of EffectDirection
func (d EffectDirection) String() string {
	if d == EffectNone {
		return "NONE"
	}
	return string(d)
}

// Factor is +1 for APPLY, -1 for REVERSE and 0 otherwise
func (d EffectDirection) Factor() int {
	switch d {
	case EffectApply:
		return 1
	case EffectReverse:
		return -1
	}
	return 0
}

// OrderAction names the lifecycle event that triggers reconciliation
type OrderAction string

const (
	ActionNone      OrderAction = ""
	ActionCreate    OrderAction = "CREATE"
	ActionDelete    OrderAction = "DELETE"
	ActionDiscard   OrderAction = "DISCARD"
	ActionUndiscard OrderAction = "UNDISCARD"
)

// Direction collapses the action to its effect: CREATE and UNDISCARD apply,
// DELETE and DISCARD reverse.
func (a OrderAction) Direction() EffectDirection {
	switch a {
	case ActionCreate, ActionUndiscard:
		return EffectApply
	case ActionDelete, ActionDiscard:
		return EffectReverse
	}
	return EffectNone
}

// Transition records a legal lifecycle step and the reconciliation it triggers
type Transition struct {
	From   OrderStatus
	To     OrderStatus
	Action OrderAction
	// Deletes is true when the order is removed rather than moved to To
	Deletes bool
}

// Effect returns the reconciliation direction of the transition
func (t Transition) Effect() EffectDirection {
	return t.Action.Direction()
}

// PlanTransition validates moving an order of itemCount lines from one status to
// another and resolves the reconciliation action. It performs no writes.
func PlanTransition(from, to OrderStatus, itemCount int) (Transition, error) {
	if !to.IsValid() {
		return Transition{}, shared.NewValidationError("status", fmt.Sprintf("Unknown order status %q", to))
	}
	if !from.CanTransitionTo(to) {
		return Transition{}, shared.NewDomainError(shared.CodeIllegalTransition,
			fmt.Sprintf("Cannot move order from %s to %s", from, to))
	}

	t := Transition{From: from, To: to}
	if to == OrderStatusFinished && itemCount == 0 {
		return Transition{}, shared.NewDomainError(shared.CodeIllegalTransition,
			"Cannot finish an order without line items")
	}
	switch {
	case from == OrderStatusPending && to == OrderStatusFinished:
		t.Action = ActionCreate
	case from == OrderStatusFinished && to == OrderStatusDiscarded:
		t.Action = ActionDiscard
	case from == OrderStatusDiscarded && to == OrderStatusFinished:
		t.Action = ActionUndiscard
	}
	// PENDING -> DISCARDED holds no live effects, so it has no action
	return t, nil
}

// PlanDeletion validates removing an order. Only FINISHED orders reverse their
// effects; DISCARDED ones were already reversed. PENDING orders cannot be deleted.
func PlanDeletion(status OrderStatus) (Transition, error) {
	switch status {
	case OrderStatusFinished:
		return Transition{From: status, To: status, Action: ActionDelete, Deletes: true}, nil
	case OrderStatusDiscarded:
		return Transition{From: status, To: status, Deletes: true}, nil
	}
	return Transition{}, shared.NewDomainError(shared.CodeIllegalTransition,
		fmt.Sprintf("Cannot delete order in %s status", status))
}
