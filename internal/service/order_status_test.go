package service

import (
	"testing"

	"github.com/shopora/internal/constants"
	"github.com/shopora/internal/models"
)

func TestDeriveOrderStatus(t *testing.T) {
	cases := []struct {
		name     string
		statuses []string
		current  string
		want     string
	}{
		{name: "no deliveries keeps current", statuses: nil, current: constants.OrderStatusProcessing, want: constants.OrderStatusProcessing},
		{name: "all delivered", statuses: []string{"delivered", "delivered"}, current: constants.OrderStatusInTransit, want: constants.OrderStatusDelivered},
		{name: "any in transit wins over pending", statuses: []string{"in_transit", "pending"}, current: constants.OrderStatusProcessing, want: constants.OrderStatusInTransit},
		{name: "delivered plus in transit is in transit", statuses: []string{"delivered", "in_transit"}, current: constants.OrderStatusProcessing, want: constants.OrderStatusInTransit},
		{name: "pending only is processing", statuses: []string{"pending", "pending"}, current: constants.OrderStatusInTransit, want: constants.OrderStatusProcessing},
		{name: "delivered plus pending is processing", statuses: []string{"delivered", "pending"}, current: constants.OrderStatusInTransit, want: constants.OrderStatusProcessing},
		{name: "failed does not count toward delivered", statuses: []string{"delivered", "failed"}, current: constants.OrderStatusInTransit, want: constants.OrderStatusInTransit},
		{name: "all failed keeps current", statuses: []string{"failed", "failed"}, current: constants.OrderStatusProcessing, want: constants.OrderStatusProcessing},
		{name: "status comparison is case insensitive", statuses: []string{"Delivered", " DELIVERED "}, current: constants.OrderStatusProcessing, want: constants.OrderStatusDelivered},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deliveries := make([]models.Delivery, 0, len(tc.statuses))
			for _, status := range tc.statuses {
				deliveries = append(deliveries, models.Delivery{Status: status})
			}
			got := deriveOrderStatus(deliveries, tc.current)
			if got != tc.want {
				t.Fatalf("status want %s got %s", tc.want, got)
			}
		})
	}
}
