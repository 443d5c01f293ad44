package worker

import (
	"errors"
	"testing"

	"github.com/shopora/internal/service"
)

func TestIsEmailDeliveryUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "disabled", err: service.ErrEmailServiceDisabled, want: true},
		{name: "not_configured", err: service.ErrEmailServiceNotConfigured, want: true},
		{name: "bad_address", err: service.ErrInvalidEmail, want: true},
		{name: "recipient_rejected", err: service.ErrEmailRecipientRejected, want: true},
		{name: "network_error", err: errors.New("dial tcp timeout"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEmailDeliveryUnavailable(tt.err); got != tt.want {
				t.Fatalf("isEmailDeliveryUnavailable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
