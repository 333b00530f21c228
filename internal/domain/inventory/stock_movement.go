package inventory

import (
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/trade"
	"github.com/google/uuid"
)

// MovementDirection tells whether stock went up or down
type MovementDirection string

const (
	MovementInbound  MovementDirection = "INBOUND"
	MovementOutbound MovementDirection = "OUTBOUND"
)

// StockMovement is an append-only record of one stock change written by reconciliation
type StockMovement struct {
	ID             uuid.UUID
	BusinessID     uuid.UUID
	ProductID      uuid.UUID
	OrderID        uuid.UUID
	Action         trade.OrderAction
	Effect         trade.EffectDirection
	Direction      MovementDirection
	RequestedDelta int
	AppliedDelta   int
	StockBefore    int
	StockAfter     int
	Clamped        bool
	CreatedAt      time.Time
}

func newStockMovement(plan *Plan, productID uuid.UUID, requested, applied, before int, clamped bool, at time.Time) *StockMovement {
	dir := MovementOutbound
	if requested > 0 {
		dir = MovementInbound
	}
	return &StockMovement{
		ID:             uuid.New(),
		BusinessID:     plan.BusinessID,
		ProductID:      productID,
		OrderID:        plan.OrderID,
		Action:         plan.Action,
		Effect:         plan.Direction,
		Direction:      dir,
		RequestedDelta: requested,
		AppliedDelta:   applied,
		StockBefore:    before,
		StockAfter:     before + applied,
		Clamped:        clamped,
		CreatedAt:      at,
	}
}
