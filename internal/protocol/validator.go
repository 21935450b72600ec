// Package protocol implements RFC 1035 wire-level validation.
package protocol

import (
	"fmt"
	"strings"

	"github.com/hearthdns/hearth/internal/errors"
)

// ValidateName validates a presentation-format DNS name per RFC 1035 §3.1:
// total wire length, per-label length, and legal label characters (the
// "preferred name syntax" of RFC 1035 §2.3.1, relaxed to allow a leading
// digit and leading underscore as is common practice for service and TXT
// record owners).
func ValidateName(name string) error {
	if name == "" || name == "." {
		return nil // root name
	}

	trimmed := strings.TrimSuffix(name, ".")
	labels := strings.Split(trimmed, ".")

	wireLength := 1 // terminating zero octet
	for _, label := range labels {
		wireLength += 1 + len(label)
	}
	if wireLength > MaxNameLength {
		return &errors.ValidationError{
			Field:   "name",
			Value:   name,
			Message: fmt.Sprintf("name exceeds maximum wire length of %d bytes (got %d)", MaxNameLength, wireLength),
		}
	}

	for i, label := range labels {
		if err := validateLabel(label); err != nil {
			return &errors.ValidationError{
				Field:   "name",
				Value:   name,
				Message: fmt.Sprintf("label %d: %v", i, err),
			}
		}
	}
	return nil
}

func validateLabel(label string) error {
	if label == "" {
		return fmt.Errorf("empty label (consecutive dots)")
	}
	if len(label) > MaxLabelLength {
		return fmt.Errorf("label %q exceeds %d bytes", label, MaxLabelLength)
	}
	if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
		return fmt.Errorf("label %q starts or ends with a hyphen", label)
	}
	for _, ch := range label {
		if !isValidNameChar(ch) {
			return fmt.Errorf("invalid character %q in label %q", ch, label)
		}
	}
	return nil
}

func isValidNameChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '-' ||
		ch == '_'
}

// ValidateQuestion checks that a question's class is one this resolver can
// answer (IN, or ANY for a qclass-agnostic lookup); other classes decode
// fine but are rejected here with NotImplemented semantics left to the
// caller.
func ValidateQuestion(name string, qclass Class) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	switch qclass {
	case ClassIN, ClassANY:
		return nil
	default:
		return &errors.ValidationError{
			Field:   "qclass",
			Value:   qclass,
			Message: fmt.Sprintf("unsupported query class %s", qclass),
		}
	}
}
