package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNetworkErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := &NetworkError{Operation: "dial upstream", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is should see through Unwrap to the cause")
	}
	if err.Error() == "" {
		t.Fatal("Error() should not be empty")
	}
}

func TestValidationErrorIncludesValue(t *testing.T) {
	err := &ValidationError{Field: "ttl", Value: -1, Message: "must be non-negative"}
	msg := err.Error()
	if msg == "" {
		t.Fatal("Error() should not be empty")
	}
}

func TestWireFormatErrorOffsetFormatting(t *testing.T) {
	withOffset := &WireFormatError{Operation: "parse name", Offset: 12, Message: "bad pointer"}
	withoutOffset := &WireFormatError{Operation: "parse name", Offset: -1, Message: "bad pointer"}
	if withOffset.Error() == withoutOffset.Error() {
		t.Fatal("offset should affect the formatted message")
	}
}

func TestConfigErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := &ConfigError{Operation: "load zone file", Source: "/etc/hearthd/example.zone", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is should see through Unwrap to the cause")
	}
}

func TestErrorsAsDiscriminatesType(t *testing.T) {
	var err error = &ValidationError{Field: "name", Message: "bad"}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("errors.As should match ValidationError")
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		t.Fatal("errors.As should not match NetworkError for a ValidationError")
	}
}
