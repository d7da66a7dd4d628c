package appointment

import (
	"strings"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

// Customer is either Registered or Guest.
type Customer interface {
	isCustomer()
	Validate() error
}

type Registered struct {
	UserID uint
}

func (Registered) isCustomer() {}

func (r Registered) Validate() error {
	if r.UserID == 0 {
		return httperr.Validation("customer_required")
	}
	return nil
}

// Guest books without an account and must leave a way to be reached.
type Guest struct {
	Name  string
	Email string
	Phone string
}

func (Guest) isCustomer() {}

func (g Guest) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return httperr.Validation("guest_name_required")
	}
	if strings.TrimSpace(g.Email) == "" && strings.TrimSpace(g.Phone) == "" {
		return httperr.Validation("guest_contact_required")
	}
	return nil
}

// Normalized trims the guest's fields and lower-cases the email.
func (g Guest) Normalized() Guest {
	return Guest{
		Name:  strings.TrimSpace(g.Name),
		Email: strings.ToLower(strings.TrimSpace(g.Email)),
		Phone: strings.TrimSpace(g.Phone),
	}
}

func ValidateCustomer(c Customer) error {
	if c == nil {
		return httperr.Validation("customer_required")
	}
	return c.Validate()
}
