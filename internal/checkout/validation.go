package checkout

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/SantiagoTucci/circulo-matero/internal/domain"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError maps each invalid contact field to the message shown next to it.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid contact fields: %s", strings.Join(names, ", "))
}

// ValidateContact checks the checkout form. It returns nil or a *ValidationError.
func ValidateContact(c domain.Contact) error {
	c = c.Normalize()
	fields := map[string]string{}

	if c.Name == "" {
		fields["name"] = "El nombre es requerido"
	}

	if c.Email == "" {
		fields["email"] = "El correo es requerido"
	} else if !emailPattern.MatchString(c.Email) {
		fields["email"] = "Correo electrónico inválido"
	}

	if c.Phone == "" {
		fields["phone"] = "El teléfono es requerido"
	}

	if c.Address == "" {
		fields["address"] = "La dirección es requerida"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
