package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Normalize trims surrounding whitespace from every field.
func (c Contact) Normalize() Contact {
	return Contact{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.TrimSpace(c.Email),
		Phone:   strings.TrimSpace(c.Phone),
		Address: strings.TrimSpace(c.Address),
	}
}

type OrderLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
	Wholesale bool            `json:"wholesale"`
}

// Summary renders the line as it appears in the order email.
func (l OrderLine) Summary() string {
	s := fmt.Sprintf("%s x%d - %s", l.Name, l.Quantity, FormatPrice(l.UnitPrice))
	if l.Wholesale {
		s += " (Mayorista -30%)"
	}
	return s
}

// Order is the payload handed to the email collaborator. It is built once per
// submission and never stored.
type Order struct {
	Reference   string          `json:"reference"`
	Contact     Contact         `json:"contact"`
	Lines       []OrderLine     `json:"lines"`
	Total       decimal.Decimal `json:"total"`
	Savings     decimal.Decimal `json:"savings"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

func NewOrder(reference string, contact Contact, cart CartState, now time.Time) *Order {
	lines := make([]OrderLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		lines = append(lines, OrderLine{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.EffectiveUnitPrice(),
			Total:     line.Total(),
			Wholesale: line.IsWholesale(),
		})
	}

	return &Order{
		Reference:   reference,
		Contact:     contact,
		Lines:       lines,
		Total:       cart.Total(),
		Savings:     cart.Savings(),
		SubmittedAt: now.UTC(),
	}
}

// ItemsSummary joins the line summaries with ", ".
func (o *Order) ItemsSummary() string {
	parts := make([]string, len(o.Lines))
	for i, line := range o.Lines {
		parts[i] = line.Summary()
	}
	return strings.Join(parts, ", ")
}
