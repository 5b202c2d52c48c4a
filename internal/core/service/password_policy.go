package service

import (
	"fmt"
	"unicode"

	"github.com/dombarter/solar-api/internal/core/domain"
)

// PasswordPolicy is the configurable complexity policy applied at
// registration. Zero values disable the corresponding rule.
type PasswordPolicy struct {
	MinLength              int
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
	RequireNonAlphanumeric bool
}

// DefaultPasswordPolicy mirrors the identity defaults: eight characters
// with a digit, a lowercase, an uppercase and a symbol.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:              8,
		RequireDigit:           true,
		RequireLowercase:       true,
		RequireUppercase:       true,
		RequireNonAlphanumeric: true,
	}
}

// Validate checks password against every rule and returns a
// *domain.PasswordPolicyError listing all violations, or nil.
func (p PasswordPolicy) Validate(password string) error {
	var hasDigit, hasLower, hasUpper, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		default:
			hasSymbol = true
		}
	}

	var violations []domain.RuleViolation
	if p.MinLength > 0 && len([]rune(password)) < p.MinLength {
		violations = append(violations, domain.RuleViolation{
			Code:        "PasswordTooShort",
			Description: fmt.Sprintf("Passwords must be at least %d characters.", p.MinLength),
		})
	}
	if p.RequireDigit && !hasDigit {
		violations = append(violations, domain.RuleViolation{
			Code:        "PasswordRequiresDigit",
			Description: "Passwords must have at least one digit ('0'-'9').",
		})
	}
	if p.RequireLowercase && !hasLower {
		violations = append(violations, domain.RuleViolation{
			Code:        "PasswordRequiresLower",
			Description: "Passwords must have at least one lowercase ('a'-'z').",
		})
	}
	if p.RequireUppercase && !hasUpper {
		violations = append(violations, domain.RuleViolation{
			Code:        "PasswordRequiresUpper",
			Description: "Passwords must have at least one uppercase ('A'-'Z').",
		})
	}
	if p.RequireNonAlphanumeric && !hasSymbol {
		violations = append(violations, domain.RuleViolation{
			Code:        "PasswordRequiresNonAlphanumeric",
			Description: "Passwords must have at least one non alphanumeric character.",
		})
	}

	if len(violations) > 0 {
		return &domain.PasswordPolicyError{Violations: violations}
	}
	return nil
}
