package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopora/internal/models"

	"github.com/shopspring/decimal"
)

func TestBuildOrderStatusContent(t *testing.T) {
	tests := []struct {
		name                string
		status              string
		orderNo             string
		wantSubjectContains []string
		wantBodyContains    []string
	}{
		{
			name:    "in_transit",
			status:  "in_transit",
			orderNo: "SO-TRANSIT",
			wantSubjectContains: []string{
				"Order status updated",
				"In transit",
			},
			wantBodyContains: []string{
				"on the way",
				"Order No: SO-TRANSIT",
			},
		},
		{
			name:    "delivered",
			status:  "delivered",
			orderNo: "SO-DELIVER",
			wantSubjectContains: []string{
				"Order status updated",
				"Delivered",
			},
			wantBodyContains: []string{
				"Delivery completed",
				"Order No: SO-DELIVER",
			},
		},
		{
			name:    "cancelled",
			status:  "cancelled",
			orderNo: "SO-CANCEL",
			wantSubjectContains: []string{
				"Order status updated",
				"Cancelled",
			},
			wantBodyContains: []string{
				"has been cancelled",
				"Order No: SO-CANCEL",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := OrderStatusEmailInput{
				OrderNo:     tt.orderNo,
				Status:      tt.status,
				TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(19.8)),
				Currency:    "USD",
			}
			subject, body := buildOrderStatusContent(input)
			for _, expected := range tt.wantSubjectContains {
				if !strings.Contains(subject, expected) {
					t.Fatalf("subject missing %q: %s", expected, subject)
				}
			}
			for _, expected := range tt.wantBodyContains {
				if !strings.Contains(body, expected) {
					t.Fatalf("body missing %q: %s", expected, body)
				}
			}
		})
	}
}

func TestBuildRefundStatusContent(t *testing.T) {
	input := RefundStatusEmailInput{
		RefundNo:        "RF123",
		OrderNo:         "SO123",
		Status:          "rejected",
		Amount:          models.NewMoneyFromDecimal(decimal.NewFromFloat(9.99)),
		Currency:        "USD",
		RejectionReason: "item already shipped back window",
	}
	subject, body := buildRefundStatusContent(input)
	if !strings.Contains(subject, "rejected") {
		t.Fatalf("subject missing rejected: %s", subject)
	}
	if !strings.Contains(body, "Reason: item already shipped back window") {
		t.Fatalf("body missing rejection reason: %s", body)
	}

	input.Status = "processed"
	input.RejectionReason = ""
	subject, body = buildRefundStatusContent(input)
	if !strings.Contains(subject, "processed") {
		t.Fatalf("subject missing processed: %s", subject)
	}
	if !strings.Contains(body, "has been processed") {
		t.Fatalf("body missing processed text: %s", body)
	}
}

func TestBuildDiscountContent(t *testing.T) {
	subject, body := buildDiscountContent(DiscountEmailInput{
		ProductTitle:    "Mechanical Keyboard",
		OldPrice:        "100.00",
		NewPrice:        "80.00",
		DiscountPercent: 20,
	})
	if !strings.Contains(subject, "20% off") {
		t.Fatalf("subject missing discount: %s", subject)
	}
	if !strings.Contains(body, "Was: 100.00") || !strings.Contains(body, "Now: 80.00") {
		t.Fatalf("body missing prices: %s", body)
	}
}

func TestIsEmailRecipientRejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "smtp_550_no_such_recipient",
			err:  errors.New("550 No such recipient here"),
			want: true,
		},
		{
			name: "smtp_user_unknown",
			err:  errors.New("SMTP 5.1.1 user unknown"),
			want: true,
		},
		{
			name: "smtp_550_mailbox_unavailable",
			err:  errors.New("550 mailbox unavailable"),
			want: true,
		},
		{
			name: "network_timeout",
			err:  errors.New("dial tcp timeout"),
			want: false,
		},
		{
			name: "nil_error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEmailRecipientRejected(tt.err); got != tt.want {
				t.Fatalf("isEmailRecipientRejected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeEmailSendError(t *testing.T) {
	rejected := errors.New("550 No such recipient here")
	if got := normalizeEmailSendError(rejected); !errors.Is(got, ErrEmailRecipientRejected) {
		t.Fatalf("normalizeEmailSendError() expected ErrEmailRecipientRejected, got %v", got)
	}

	networkErr := errors.New("dial tcp timeout")
	if got := normalizeEmailSendError(networkErr); !errors.Is(got, networkErr) {
		t.Fatalf("normalizeEmailSendError() should keep original error, got %v", got)
	}

	if got := normalizeEmailSendError(nil); got != nil {
		t.Fatalf("normalizeEmailSendError(nil) should be nil, got %v", got)
	}
}
