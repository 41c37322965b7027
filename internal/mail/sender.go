package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/SantiagoTucci/circulo-matero/internal/domain"
)

type Sender interface {
	Send(ctx context.Context, order *domain.Order) error
}

func subject(order *domain.Order) string {
	return fmt.Sprintf("Nuevo pedido %s - %s", order.Reference, order.Contact.Name)
}

// body renders the fields of the order email: contact data, one summary per
// line and the total.
func body(order *domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pedido: %s\n", order.Reference)
	fmt.Fprintf(&b, "Nombre: %s\n", order.Contact.Name)
	fmt.Fprintf(&b, "Correo: %s\n", order.Contact.Email)
	fmt.Fprintf(&b, "Teléfono: %s\n", order.Contact.Phone)
	fmt.Fprintf(&b, "Dirección: %s\n", order.Contact.Address)
	b.WriteString("Productos:\n")
	for _, line := range order.Lines {
		fmt.Fprintf(&b, "  - %s\n", line.Summary())
	}
	if !order.Savings.IsZero() {
		fmt.Fprintf(&b, "Ahorro mayorista: %s\n", domain.FormatPrice(order.Savings))
	}
	fmt.Fprintf(&b, "Total: %s\n", domain.FormatPrice(order.Total))
	return b.String()
}
