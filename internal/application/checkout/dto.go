package checkout

import (
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/domain/promotion"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddOrChangeLineItemRequest adds a product to a PENDING order or changes its line
type AddOrChangeLineItemRequest struct {
	OrderID   uuid.UUID      `json:"order_id" validate:"required"`
	ProductID uuid.UUID      `json:"product_id" validate:"required"`
	Quantity  int            `json:"quantity" validate:"required,min=1"`
	Type      trade.LineType `json:"type" validate:"required,oneof=SELL RETURN PROMO"`
}

// ApplyDirectDiscountRequest sets or clears the order-level discount.
// An empty kind clears it.
type ApplyDirectDiscountRequest struct {
	OrderID uuid.UUID       `json:"order_id" validate:"required"`
	Kind    string          `json:"kind" validate:"omitempty,oneof=FIXED PERCENTAGE"`
	Value   decimal.Decimal `json:"value"`
}

// OrderTotals is the aggregate view of an order
type OrderTotals struct {
	OrderID        uuid.UUID       `json:"order_id"`
	Status         string          `json:"status"`
	ItemCount      int             `json:"item_count"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TotalDiscount  decimal.Decimal `json:"total_discount"`
	DirectDiscount decimal.Decimal `json:"direct_discount"`
	Total          decimal.Decimal `json:"total"`
}

// AppliedDiscountResponse is one discount contributing to a line
type AppliedDiscountResponse struct {
	DiscountID uuid.UUID       `json:"discount_id"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
}

// LineItemTotals is returned after a line was added or changed
type LineItemTotals struct {
	LineItemID       uuid.UUID                 `json:"line_item_id"`
	ProductID        uuid.UUID                 `json:"product_id"`
	Quantity         int                       `json:"quantity"`
	RequestedType    string                    `json:"requested_type"`
	Type             string                    `json:"type"`
	UnitPrice        decimal.Decimal           `json:"unit_price"`
	TotalPrice       decimal.Decimal           `json:"total_price"`
	TotalDiscount    decimal.Decimal           `json:"total_discount"`
	AppliedDiscounts []AppliedDiscountResponse `json:"applied_discounts,omitempty"`
	Order            OrderTotals               `json:"order"`
}

// LineItemResponse is a line as stored
type LineItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	Quantity          int             `json:"quantity"`
	Type              string          `json:"type"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	TotalDiscount     decimal.Decimal `json:"total_discount"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	Profit            decimal.Decimal `json:"profit"`
	AppliedStockDelta int             `json:"applied_stock_delta"`
}

// OrderResponse is the full view of an order
type OrderResponse struct {
	ID                  uuid.UUID          `json:"id"`
	BusinessID          uuid.UUID          `json:"business_id"`
	SellerID            uuid.UUID          `json:"seller_id"`
	Status              string             `json:"status"`
	PaymentMethod       string             `json:"payment_method"`
	Items               []LineItemResponse `json:"items"`
	DirectDiscountKind  string             `json:"direct_discount_kind,omitempty"`
	DirectDiscountValue decimal.Decimal    `json:"direct_discount_value"`
	Totals              OrderTotals        `json:"totals"`
	EffectsApplied      bool               `json:"effects_applied"`
	CompletedAt         *time.Time         `json:"completed_at,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
	Version             int                `json:"version"`
}

// ToOrderTotals builds the aggregate view from the stored amounts
func ToOrderTotals(o *trade.Order) OrderTotals {
	return toOrderTotals(o, o.StoredTotals())
}

func toOrderTotals(o *trade.Order, t trade.OrderTotals) OrderTotals {
	return OrderTotals{
		OrderID:        o.ID,
		Status:         o.Status.String(),
		ItemCount:      o.ItemCount(),
		Subtotal:       t.Subtotal,
		TotalDiscount:  t.TotalDiscount,
		DirectDiscount: t.DirectDiscount,
		Total:          t.Total,
	}
}

// ToOrderResponse converts an order to its response
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]LineItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = LineItemResponse{
			ID:                item.ID,
			ProductID:         item.ProductID,
			Quantity:          item.Quantity,
			Type:              item.Type.String(),
			UnitPrice:         item.UnitPrice,
			TotalPrice:        item.TotalPrice,
			TotalDiscount:     item.TotalDiscount,
			UnitCost:          item.UnitCost,
			Profit:            item.Profit,
			AppliedStockDelta: item.AppliedStockDelta,
		}
	}
	return OrderResponse{
		ID:                  o.ID,
		BusinessID:          o.BusinessID,
		SellerID:            o.SellerID,
		Status:              o.Status.String(),
		PaymentMethod:       string(o.PaymentMethod),
		Items:               items,
		DirectDiscountKind:  string(o.DirectDiscount.Kind),
		DirectDiscountValue: o.DirectDiscount.Value,
		Totals:              ToOrderTotals(o),
		EffectsApplied:      o.EffectsApplied,
		CompletedAt:         o.CompletedAt,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
		Version:             o.Version,
	}
}

func toLineItemTotals(o *trade.Order, item *trade.LineItem, requested trade.LineType, eval promotion.Evaluation) *LineItemTotals {
	out := &LineItemTotals{
		LineItemID:    item.ID,
		ProductID:     item.ProductID,
		Quantity:      item.Quantity,
		RequestedType: requested.String(),
		Type:          item.Type.String(),
		UnitPrice:     item.UnitPrice,
		TotalPrice:    item.TotalPrice,
		TotalDiscount: item.TotalDiscount,
		Order:         ToOrderTotals(o),
	}
	if item.Type == trade.LineTypePromo {
		for _, d := range eval.Applied {
			out.AppliedDiscounts = append(out.AppliedDiscounts, AppliedDiscountResponse{
				DiscountID: d.DiscountID,
				Name:       d.Name,
				Amount:     d.Amount,
			})
		}
	}
	return out
}
