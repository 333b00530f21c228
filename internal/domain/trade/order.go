package trade

import (
	"fmt"
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusFinished  OrderStatus = "FINISHED"
	OrderStatusDiscarded OrderStatus = "DISCARDED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusFinished, OrderStatusDiscarded:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusFinished || target == OrderStatusDiscarded
	case OrderStatusFinished:
		return target == OrderStatusDiscarded
	case OrderStatusDiscarded:
		return target == OrderStatusFinished
	}
	return false
}

// PaymentMethod represents how the customer paid
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCredit   PaymentMethod = "CREDIT"
	PaymentDebit    PaymentMethod = "DEBIT"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

// IsValid checks if the payment method is a known value
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCash, PaymentCredit, PaymentDebit, PaymentTransfer:
		return true
	}
	return false
}

// Order is one checkout session of a seller
type Order struct {
	shared.BusinessAggregateRoot
	SellerID       uuid.UUID
	Status         OrderStatus
	PaymentMethod  PaymentMethod
	Items          []LineItem
	DirectDiscount DirectDiscount
	Subtotal       decimal.Decimal
	TotalDiscount  decimal.Decimal
	// DirectDiscountAmount is the derived amount of DirectDiscount
	DirectDiscountAmount decimal.Decimal
	Total                decimal.Decimal
	// EffectsApplied tracks whether stock and analytics currently reflect this order
	EffectsApplied bool
	CompletedAt    *time.Time
}

// NewPendingOrder creates an empty PENDING order for a seller
func NewPendingOrder(businessID, sellerID uuid.UUID) (*Order, error) {
	if businessID == uuid.Nil {
		return nil, shared.NewValidationError("business_id", "Business ID cannot be empty")
	}
	if sellerID == uuid.Nil {
		return nil, shared.NewValidationError("seller_id", "Seller ID cannot be empty")
	}

	return &Order{
		BusinessAggregateRoot: shared.NewBusinessAggregateRoot(businessID),
		SellerID:              sellerID,
		Status:                OrderStatusPending,
		PaymentMethod:         PaymentCash,
		Items:                 make([]LineItem, 0),
		Subtotal:              decimal.Zero,
		TotalDiscount:         decimal.Zero,
		DirectDiscountAmount:  decimal.Zero,
		Total:                 decimal.Zero,
	}, nil
}

// IsPending returns true if the order is still open
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// IsDiscarded returns true if the order was discarded
func (o *Order) IsDiscarded() bool {
	return o.Status == OrderStatusDiscarded
}

// ItemCount returns the number of lines
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// GetItem returns the line with the given id, or nil
func (o *Order) GetItem(itemID uuid.UUID) *LineItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

// GetItemByProduct returns the line for a product, or nil
func (o *Order) GetItemByProduct(productID uuid.UUID) *LineItem {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			return &o.Items[i]
		}
	}
	return nil
}

// ProductIDs returns the distinct products referenced by the lines
func (o *Order) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(o.Items))
	ids := make([]uuid.UUID, 0, len(o.Items))
	for i := range o.Items {
		id := o.Items[i].ProductID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func (o *Order) ensurePending(action string) error {
	if !o.IsPending() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot %s in %s status", action, o.Status))
	}
	return nil
}

// UpsertItem adds a line for the product or changes the existing one.
// The returned line must be recalculated before the order totals are refreshed.
func (o *Order) UpsertItem(productID uuid.UUID, quantity int, lineType LineType) (*LineItem, error) {
	if err := o.ensurePending("modify order"); err != nil {
		return nil, err
	}

	if existing := o.GetItemByProduct(productID); existing != nil {
		if err := existing.Change(quantity, lineType); err != nil {
			return nil, err
		}
		o.Touch()
		return existing, nil
	}

	item, err := NewLineItem(o.ID, productID, quantity, lineType)
	if err != nil {
		return nil, err
	}
	o.Items = append(o.Items, *item)
	o.Touch()
	return &o.Items[len(o.Items)-1], nil
}

// RemoveItem deletes a line from a PENDING order
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	if err := o.ensurePending("remove items"); err != nil {
		return err
	}

	for i := range o.Items {
		if o.Items[i].ID == itemID {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			o.Touch()
			o.RecalculateTotals()
			return nil
		}
	}
	return shared.NewNotFoundError("line item", itemID)
}

// SetDirectDiscount validates and stores an order-level discount
func (o *Order) SetDirectDiscount(kind DirectDiscountKind, value decimal.Decimal) error {
	if err := o.ensurePending("apply a direct discount"); err != nil {
		return err
	}

	dd, err := NewDirectDiscount(kind, value, LineSum(o.Items))
	if err != nil {
		return err
	}
	o.DirectDiscount = dd
	o.Touch()
	o.RecalculateTotals()
	return nil
}

// SetPaymentMethod sets the payment method of a PENDING order
func (o *Order) SetPaymentMethod(method PaymentMethod) error {
	if !method.IsValid() {
		return shared.NewValidationError("payment_method", "Unknown payment method")
	}
	if err := o.ensurePending("change payment method"); err != nil {
		return err
	}
	o.PaymentMethod = method
	o.Touch()
	return nil
}

// Totals returns the derived aggregate without modifying the order
func (o *Order) Totals() OrderTotals {
	return CalculateOrderTotals(o.Items, o.DirectDiscount)
}

// StoredTotals returns the aggregate amounts as last persisted
func (o *Order) StoredTotals() OrderTotals {
	return OrderTotals{
		Subtotal:       o.Subtotal,
		TotalDiscount:  o.TotalDiscount,
		DirectDiscount: o.DirectDiscountAmount,
		Total:          o.Total,
	}
}

// RecalculateTotals refreshes the stored aggregate from the lines.
// It reports whether any stored amount changed.
func (o *Order) RecalculateTotals() bool {
	totals := o.Totals()
	if totals.Equal(o.StoredTotals()) {
		return false
	}
	o.Subtotal = totals.Subtotal
	o.TotalDiscount = totals.TotalDiscount
	o.DirectDiscountAmount = totals.DirectDiscount
	o.Total = totals.Total
	o.Touch()
	return true
}

// Transition moves the order to a new status and raises the matching event.
// Reconciliation of the returned transition is the caller's job and must
// happen in the same unit of work.
func (o *Order) Transition(target OrderStatus) (Transition, error) {
	t, err := PlanTransition(o.Status, target, len(o.Items))
	if err != nil {
		return Transition{}, err
	}

	now := time.Now()
	o.Status = target
	o.UpdatedAt = now

	switch t.Effect() {
	case EffectApply:
		o.EffectsApplied = true
	case EffectReverse:
		o.EffectsApplied = false
	}

	switch target {
	case OrderStatusFinished:
		// an order discarded while PENDING completes on its first finish
		if o.CompletedAt == nil {
			o.CompletedAt = &now
			o.AddDomainEvent(NewOrderFinishedEvent(o))
		} else {
			o.AddDomainEvent(NewOrderReopenedEvent(o))
		}
	case OrderStatusDiscarded:
		o.AddDomainEvent(NewOrderDiscardedEvent(o, t.From))
	}
	return t, nil
}

// MarkForDeletion validates deleting the order and raises OrderDeleted
func (o *Order) MarkForDeletion() (Transition, error) {
	t, err := PlanDeletion(o.Status)
	if err != nil {
		return Transition{}, err
	}
	if t.Effect() == EffectReverse {
		o.EffectsApplied = false
	}
	o.AddDomainEvent(NewOrderDeletedEvent(o, t.Effect()))
	return t, nil
}
