package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/CristobalNPE/ventesca-sub000/internal/application/checkout"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/catalog"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/promotion"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/shared"
	"github.com/CristobalNPE/ventesca-sub000/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type command struct {
	summary string
	run     func(ctx context.Context, a *app, fs *flag.FlagSet, args []string, out io.Writer) error
}

var commands = map[string]command{
	"pending":         {"Get or create the pending order of a seller", runPending},
	"add-item":        {"Add a product to a pending order or change its line", runAddItem},
	"remove-item":     {"Remove a line from a pending order", runRemoveItem},
	"direct-discount": {"Set or clear the order-level discount", runDirectDiscount},
	"payment":         {"Set the payment method of a pending order", runPayment},
	"transition":      {"Move an order to FINISHED or DISCARDED", runTransition},
	"recompute":       {"Re-evaluate discounts and persist changed totals", runRecompute},
	"totals":          {"Show the derived totals of an order", runTotals},
	"show":            {"Show an order with its lines", runShow},
	"delete":          {"Delete a FINISHED or DISCARDED order", runDelete},
	"product-create":  {"Create a product with its analytics row", runProductCreate},
	"discount-create": {"Create an automatic discount", runDiscountCreate},
	"movements":       {"List the latest stock movements of a product", runMovements},
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// uuidFlag is a flag.Value holding a required UUID
type uuidFlag struct {
	id uuid.UUID
}

func (f *uuidFlag) String() string {
	if f == nil || f.id == uuid.Nil {
		return ""
	}
	return f.id.String()
}

func (f *uuidFlag) Set(s string) error {
	id, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid UUID %q", s)
	}
	f.id = id
	return nil
}

// decimalFlag is a flag.Value holding an exact amount
type decimalFlag struct {
	value decimal.Decimal
}

func (f *decimalFlag) String() string { return f.value.String() }

func (f *decimalFlag) Set(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount %q", s)
	}
	f.value = d
	return nil
}

func uuidVar(fs *flag.FlagSet, name, usage string) *uuidFlag {
	f := &uuidFlag{}
	fs.Var(f, name, usage)
	return f
}

func decimalVar(fs *flag.FlagSet, name, usage string) *decimalFlag {
	f := &decimalFlag{}
	fs.Var(f, name, usage)
	return f
}

// required reports the first UUID flag left unset as a validation error
func required(flags map[string]*uuidFlag) error {
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if flags[name].id == uuid.Nil {
			return shared.NewValidationError(name, "-"+name+" is required")
		}
	}
	return nil
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", errUsage, err)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runPending(ctx context.Context, a *app, fs *flag.FlagSet, args []string, out io.Writer) error {
	business := uuidVar(fs, "business", "business id")
	seller := uuidVar(fs, "seller", "seller id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required(map[string]*uuidFlag{"business": business, "seller": seller}); err != nil {
		return err
	}
	order, err := a.svc.GetOrCreatePendingOrder(ctx, business.id, seller.id)
	if err != nil {
		return err
	}
	return writeJSON(out, order)
}

func runAddItem(ctx context.Context, a *app, fs *flag.FlagSet, args []string, out io.Writer) error {
	order := uuidVar(fs, "order", "order id")
	product := uuidVar(fs, "product", "product id")
	qty := fs.Int("qty", 1, "quantity")
	lineType := fs.String("type", string(trade.LineTypeSell), "SELL, RETURN or PROMO")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required(map[string]*uuidFlag{"order": order, "product": product}); err != nil {
		return err
	}
	res, err := a.svc.AddOrChangeLineItem(ctx, checkout.AddOrChangeLineItemRequest{
		OrderID:   order.id,
		ProductID: product.id,
		Quantity:  *qty,
		Type:      trade.LineType(strings.ToUpper(*lineType)),
	})
	if err != nil {
		return err
	}
	return writeJSON(out, res)
}

func runRemoveItem(ctx context.Context, a *app, fs *flag.FlagSet, args []string, out io.Writer) error {
	order := uuidVar(fs, "order", "order id")
	line := uuidVar(fs, "line", "line item id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required(map[string]*uuidFlag{"order": order, "line": line}); err != nil {
		return err
	}
	if err := a.svc.RemoveLineItem(ctx, order.id, line.id); err != nil {
		return err
	}
	totals, err := a.svc.GetOrderTotals(ctx, order.id)
	if err != nil {
		return err
	}
	return writeJSON(out, totals)
}

func runDirectDiscount(ctx context.Context, a *app, fs *flag.FlagSet, args []string, out io.Writer) error {
	order := uuidVar(fs, "order", "order id")
	kind := fs.String("kind", "", "FIXED or PERCENTAGE; empty clears the discount")
	value := decimalVar(fs, "value", "discount amount or percentage")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required(map[string]*uuidFlag{"order": order}); err != nil {
		return err
	}
	totals, err := a.svc.ApplyDirectDiscount(ctx, checkout.ApplyDirectDiscountRequest{
		OrderID: order.id,
		Kind:    strings.ToUpper(*kind),
		Value:   value.value,
	})
	if err != nil {
		return err
	}
	return writeJSON(out, totals)
}

func runPayment(ctx context.Context, a *app, fs *flag.FlagSet, args []string, out io.Writer) error {
	order := uuidVar(fs, "order", "order id")
	method := fs.String("method", string(trade.PaymentCash), "CASH, CREDIT, DEBIT or TRANSFER")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required(map[string]*uuidFlag{"order": order}); err != nil {
		return err
	}
	totals, err := a.svc.SetPaymentMethod(ctx, order.id, trade.PaymentMethod(strings.ToUpper(*method)))
	if err != nil {
		return err
	}
	return writeJSON(out, totals)
}

func runTransition(ctx context.Context, a *app, fs *flag.FlagSet, args []string, out io.Writer) error {
	order := uuidVar(fs, "order", "order id")
	status := fs.String("status", "", "FINISHED or DISCARDED")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required(map[string]*uuidFlag{"order": order}); err != nil {
		return err
	}
	totals, err := a.svc.TransitionOrder(ctx, order.id, trade.OrderStatus(strings.ToUpper(*status)))
	if err != nil {
		return err
	}
	return writeJSON(out, totals)
}

func runRecompute(ctx context.Context, a *app, fs *flag.FlagSet, args []string, out io.Writer) error {
	return withOrder(fs, args, out, func(id uuid.UUID) (any, error) {
		return a.svc.RecomputeOrderTotals(ctx, id)
	})
}

func runTotals(ctx context.Context, a *app, fs *flag.FlagSet, args []string, out io.Writer) error {
	return withOrder(fs, args, out, func(id uuid.UUID) (any, error) {
		return a.svc.GetOrderTotals(ctx, id)
	})
}

func runShow(ctx context.Context, a *app, fs *flag.FlagSet, args []string, out io.Writer) error {
	return withOrder(fs, args, out, func(id uuid.UUID) (any, error) {
		return a.svc.GetOrder(ctx, id)
	})
}

func runDelete(ctx context.Context, a *app, fs *flag.FlagSet, args []string, out io.Writer) error {
	return withOrder(fs, args, out, func(id uuid.UUID) (any, error) {
		if err := a.svc.DeleteOrder(ctx, id); err != nil {
			return nil, err
		}
		return map[string]any{"order_id": id, "deleted": true}, nil
	})
}

// withOrder runs commands whose only input is -order
func withOrder(fs *flag.FlagSet, args []string, out io.Writer, fn func(uuid.UUID) (any, error)) error {
	order := uuidVar(fs, "order", "order id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required(map[string]*uuidFlag{"order": order}); err != nil {
		return err
	}
	res, err := fn(order.id)
	if err != nil {
		return err
	}
	return writeJSON(out, res)
}

type productOutput struct {
	ID           uuid.UUID       `json:"id"`
	BusinessID   uuid.UUID       `json:"business_id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	CategoryID   *uuid.UUID      `json:"category_id,omitempty"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Stock        int             `json:"stock"`
}

func runProductCreate(ctx context.Context, a *app, fs *flag.FlagSet, args []string, out io.Writer) error {
	business := uuidVar(fs, "business", "business id")
	category := uuidVar(fs, "category", "optional category id")
	code := fs.String("code", "", "product code")
	name := fs.String("name", "", "product name")
	cost := decimalVar(fs, "cost", "unit cost")
	price := decimalVar(fs, "price", "selling price")
	stock := fs.Int("stock", 0, "initial stock")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required(map[string]*uuidFlag{"business": business}); err != nil {
		return err
	}

	p, err := catalog.NewProduct(business.id, *code, *name, cost.value, price.value, *stock)
	if err != nil {
		return err
	}
	if category.id != uuid.Nil {
		p.SetCategory(&category.id)
	}
	if err := a.products.Create(ctx, p); err != nil {
		return err
	}
	return writeJSON(out, productOutput{
		ID:           p.ID,
		BusinessID:   p.BusinessID,
		Code:         p.Code,
		Name:         p.Name,
		CategoryID:   p.CategoryID,
		UnitCost:     p.UnitCost,
		SellingPrice: p.SellingPrice,
		Stock:        p.Stock,
	})
}

type discountOutput struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Scope           string          `json:"scope"`
	ProductID       *uuid.UUID      `json:"product_id,omitempty"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
	Method          string          `json:"method"`
	ValueType       string          `json:"value_type"`
	Value           decimal.Decimal `json:"value"`
	MinimumQuantity int             `json:"minimum_quantity"`
	ValidFrom       time.Time       `json:"valid_from"`
	ValidUntil      time.Time       `json:"valid_until"`
}

func runDiscountCreate(ctx context.Context, a *app, fs *flag.FlagSet, args []string, out io.Writer) error {
	business := uuidVar(fs, "business", "business id")
	target := uuidVar(fs, "target", "product or category id for PRODUCT and CATEGORY scopes")
	name := fs.String("name", "", "discount name")
	scope := fs.String("scope", string(promotion.ScopeGlobal), "GLOBAL, PRODUCT or CATEGORY")
	method := fs.String("method", string(promotion.MethodByProduct), "BY_PRODUCT or TO_TOTAL")
	valueType := fs.String("value-type", string(promotion.ValuePercentage), "PERCENTAGE or FIXED")
	value := decimalVar(fs, "value", "percentage or fixed amount")
	minQty := fs.Int("min-qty", 0, "minimum line quantity")
	from := fs.String("from", "", "start of validity, RFC3339 (default: now)")
	until := fs.String("until", "", "end of validity, RFC3339 (default: 30 days from start)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required(map[string]*uuidFlag{"business": business}); err != nil {
		return err
	}

	validFrom, err := parseTime("from", *from, time.Now().UTC())
	if err != nil {
		return err
	}
	validUntil, err := parseTime("until", *until, validFrom.AddDate(0, 0, 30))
	if err != nil {
		return err
	}

	params := promotion.DiscountParams{
		Name:            *name,
		Scope:           promotion.Scope(strings.ToUpper(*scope)),
		Method:          promotion.ApplicationMethod(strings.ToUpper(*method)),
		ValueType:       promotion.ValueType(strings.ToUpper(*valueType)),
		Value:           value.value,
		MinimumQuantity: *minQty,
		ValidFrom:       validFrom,
		ValidUntil:      validUntil,
	}
	if target.id != uuid.Nil {
		params.TargetID = &target.id
	}

	d, err := promotion.NewDiscount(business.id, params)
	if err != nil {
		return err
	}
	if err := a.discounts.Save(ctx, d); err != nil {
		return err
	}
	return writeJSON(out, discountOutput{
		ID:              d.ID,
		Name:            d.Name,
		Scope:           string(d.Scope),
		ProductID:       d.ProductID,
		CategoryID:      d.CategoryID,
		Method:          string(d.Method),
		ValueType:       string(d.ValueType),
		Value:           d.Value,
		MinimumQuantity: d.MinimumQuantity,
		ValidFrom:       d.ValidFrom,
		ValidUntil:      d.ValidUntil,
	})
}

func parseTime(field, value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, shared.NewValidationError(field, "-"+field+" must be an RFC3339 timestamp")
	}
	return t.UTC(), nil
}

type movementOutput struct {
	ID             uuid.UUID `json:"id"`
	OrderID        uuid.UUID `json:"order_id"`
	Action         string    `json:"action,omitempty"`
	Effect         string    `json:"effect"`
	Direction      string    `json:"direction"`
	RequestedDelta int       `json:"requested_delta"`
	AppliedDelta   int       `json:"applied_delta"`
	StockBefore    int       `json:"stock_before"`
	StockAfter     int       `json:"stock_after"`
	Clamped        bool      `json:"clamped"`
	CreatedAt      time.Time `json:"created_at"`
}

func runMovements(ctx context.Context, a *app, fs *flag.FlagSet, args []string, out io.Writer) error {
	product := uuidVar(fs, "product", "product id")
	limit := fs.Int("limit", 20, "number of movements, 0 for all")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required(map[string]*uuidFlag{"product": product}); err != nil {
		return err
	}
	movements, err := a.movements.FindByProduct(ctx, product.id, *limit)
	if err != nil {
		return err
	}
	rows := make([]movementOutput, len(movements))
	for i, mv := range movements {
		rows[i] = movementOutput{
			ID:             mv.ID,
			OrderID:        mv.OrderID,
			Action:         string(mv.Action),
			Effect:         string(mv.Effect),
			Direction:      string(mv.Direction),
			RequestedDelta: mv.RequestedDelta,
			AppliedDelta:   mv.AppliedDelta,
			StockBefore:    mv.StockBefore,
			StockAfter:     mv.StockAfter,
			Clamped:        mv.Clamped,
			CreatedAt:      mv.CreatedAt,
		}
	}
	return writeJSON(out, rows)
}
