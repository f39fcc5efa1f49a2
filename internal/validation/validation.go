// Package validation holds the document-level rules checked before anything
// is written to the store.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type FieldError struct {
	Field   string
	Message string
}

// Errors is a non-empty list of failed field rules.
type Errors []FieldError

func (e Errors) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), ", ")
}

func (e Errors) Messages() []string {
	out := make([]string, len(e))
	for i, fe := range e {
		out[i] = fe.Message
	}
	return out
}

// errOrNil keeps callers from returning a typed nil inside an error.
func (e Errors) errOrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

var (
	emailPattern = regexp.MustCompile(`^[a-z][a-z0-9._-]+@[a-z]+\.[a-z]+$`)
	namePattern  = regexp.MustCompile(`^[A-Z][A-Za-z ]+$`)
)

const passwordSpecials = "!@#$%^&*"

func checkEmail(errs Errors, email string) Errors {
	switch {
	case email == "":
		return append(errs, FieldError{"email", "Email is a mandatory field."})
	case !emailPattern.MatchString(email):
		return append(errs, FieldError{"email", "Not a valid email: " + email})
	}
	return errs
}

func checkName(errs Errors, name string) Errors {
	switch {
	case name == "":
		return append(errs, FieldError{"name", "Name is a mandatory field."})
	case !namePattern.MatchString(name):
		return append(errs, FieldError{"name", "Not a valid name: " + name})
	}
	return errs
}

// StrongPassword reports whether pw is 8 to 15 characters drawn from letters,
// digits and !@#$%^&*, with at least one of each class.
func StrongPassword(pw string) bool {
	if len(pw) < 8 || len(pw) > 15 {
		return false
	}
	var digit, upper, lower, special bool
	for _, c := range pw {
		switch {
		case c >= '0' && c <= '9':
			digit = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= 'a' && c <= 'z':
			lower = true
		case strings.ContainsRune(passwordSpecials, c):
			special = true
		default:
			return false
		}
	}
	return digit && upper && lower && special
}

// NewUser validates the fields of a registration.
func NewUser(email, name, password string) error {
	var errs Errors
	errs = checkEmail(errs, email)
	errs = checkName(errs, name)
	if !StrongPassword(password) {
		errs = append(errs, FieldError{"password", "Not a strong password"})
	}
	return errs.errOrNil()
}

// UserInfo validates an email and name change.
func UserInfo(email, name string) error {
	var errs Errors
	errs = checkEmail(errs, email)
	errs = checkName(errs, name)
	return errs.errOrNil()
}

func Password(password string) error {
	if !StrongPassword(password) {
		return Errors{{"password", "Not a strong password"}}
	}
	return nil
}

// Cart checks quantities and that each product appears at most once.
func Cart(items []domain.CartItem) error {
	var errs Errors
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		if it.Quantity < 1 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("currentCartItems.%d.quantity", i),
				Message: fmt.Sprintf("Path `quantity` (%d) is less than minimum allowed value (1).", it.Quantity),
			})
		}
		key := it.Product.Hex()
		if seen[key] {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("currentCartItems.%d.product", i),
				Message: "Duplicate product in cart: " + key,
			})
		}
		seen[key] = true
	}
	return errs.errOrNil()
}

func Product(p *domain.Product) error {
	var errs Errors
	if p.Title == "" {
		errs = append(errs, FieldError{"title", "Path `title` is required."})
	}
	if p.Price < 0 {
		errs = append(errs, FieldError{"price", fmt.Sprintf("Path `price` (%v) is less than minimum allowed value (0).", p.Price)})
	}
	if p.ImageURL == "" {
		errs = append(errs, FieldError{"imageUrl", "Path `imageUrl` is required."})
	}
	if p.Category == "" {
		errs = append(errs, FieldError{"category", "Path `category` is required."})
	}
	return errs.errOrNil()
}

func Order(o *domain.Order) error {
	var errs Errors
	if o.Price < 0 {
		errs = append(errs, FieldError{"price", fmt.Sprintf("Path `price` (%v) is less than minimum allowed value (0).", o.Price)})
	}
	if o.User.IsZero() {
		errs = append(errs, FieldError{"user", "Path `user` is required."})
	}
	if o.StripeID == "" {
		errs = append(errs, FieldError{"stripeId", "Path `stripeId` is required."})
	}
	for i, it := range o.Products {
		if it.Quantity < 1 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("products.%d.quantity", i),
				Message: fmt.Sprintf("Path `quantity` (%d) is less than minimum allowed value (1).", it.Quantity),
			})
		}
	}
	return errs.errOrNil()
}
