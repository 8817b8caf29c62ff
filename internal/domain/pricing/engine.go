package pricing

import (
	"github.com/shopspring/decimal"

	"lemonpos/internal/core/apperror"
	"lemonpos/internal/core/types"
	"lemonpos/internal/domain/catalog/product"
)

// Engine computes line and order totals. It is stateless; trusted
// product data is supplied by the caller.
type Engine struct{}

// NewEngine creates a pricing engine.
func NewEngine() *Engine {
	return &Engine{}
}

// EffectivePrice selects the charged unit price for a temperature
// variant: Hot uses HotPrice if set, Cold uses ColdPrice if set,
// otherwise BasePrice.
func (e *Engine) EffectivePrice(p *product.Product, temp Temperature) types.Money {
	switch temp {
	case TemperatureHot:
		if p.HotPrice != nil {
			return *p.HotPrice
		}
	case TemperatureCold:
		if p.ColdPrice != nil {
			return *p.ColdPrice
		}
	}
	return p.BasePrice
}

// PriceLine prices one cart item against trusted product data.
func (e *Engine) PriceLine(p *product.Product, item CartItem) (PricedLine, error) {
	if item.Quantity <= 0 {
		return PricedLine{}, apperror.NewValidation("item quantity must be positive").
			WithDetail("product_id", item.ProductID)
	}

	temp := item.Temperature
	if temp == "" {
		temp = TemperatureNone
	}
	if !temp.Valid() {
		return PricedLine{}, apperror.NewValidation("unknown temperature").
			WithDetail("value", string(item.Temperature))
	}

	effective := e.EffectivePrice(p, temp)

	// Per-unit price including add-ons, at full precision.
	unit := effective
	addOns := make([]AddOn, 0, len(item.AddOns))
	for _, a := range item.AddOns {
		if a.Price.IsNegative() {
			return PricedLine{}, apperror.NewValidation("add-on price cannot be negative").
				WithDetail("add_on", a.Name)
		}
		qty := a.Quantity
		if qty <= 0 {
			qty = 1
		}
		copied := AddOn{Name: a.Name, Price: a.Price, Quantity: qty}
		addOns = append(addOns, copied)
		unit = unit.Add(a.Price.Mul(decimal.NewFromInt(int64(qty))))
	}

	subtotal := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))

	total := subtotal
	var disc *Discount
	if item.Discount != nil {
		if item.Discount.Amount.IsNegative() {
			return PricedLine{}, apperror.NewValidation("discount amount cannot be negative")
		}
		copied := *item.Discount
		disc = &copied
		// Amount is authoritative; floor the line at zero.
		total = types.MaxMoney(types.Zero(), subtotal.Sub(disc.Amount))
	}

	return PricedLine{
		ProductID:   p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       effective,
		BasePrice:   p.BasePrice,
		Temperature: temp,
		Quantity:    item.Quantity,
		AddOns:      addOns,
		Discount:    disc,
		Subtotal:    types.RoundMoney(subtotal),
		Total:       types.RoundMoney(total),
	}, nil
}

// OrderTotal sums line totals and adds the externally supplied service
// fee (service-type policy lives with the caller).
func (e *Engine) OrderTotal(lines []PricedLine, serviceFee types.Money) types.Money {
	total := types.Zero()
	for _, line := range lines {
		total = total.Add(line.Total)
	}
	return types.RoundMoney(total.Add(serviceFee))
}

// Change computes amountReceived − total. Cash payments with
// insufficient tender fail with NegativeChange; non-cash methods skip
// the check and report zero change.
func (e *Engine) Change(total, amountReceived types.Money, method PaymentMethod) (types.Money, error) {
	if !method.IsCash() {
		return types.Zero(), nil
	}

	change := amountReceived.Sub(total)
	if change.IsNegative() {
		return types.Zero(), apperror.NewNegativeChange(total.StringFixed(2), amountReceived.StringFixed(2))
	}
	return types.RoundMoney(change), nil
}
