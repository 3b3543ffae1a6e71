package services_test

import (
	"testing"

	"marketplace-service/models"
	"marketplace-service/services"

	"github.com/stretchr/testify/assert"
)

func TestIsValidStatus(t *testing.T) {
	for _, s := range services.ValidOrderStatuses() {
		assert.True(t, services.IsValidStatus(s), s)
	}
	assert.False(t, services.IsValidStatus("shipped"))
	assert.False(t, services.IsValidStatus(""))
	assert.False(t, services.IsValidStatus("PENDING"))
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, services.IsTerminalStatus(models.StatusDelivered))
	assert.True(t, services.IsTerminalStatus(models.StatusCancelled))

	for _, s := range []string{
		models.StatusPending,
		models.StatusConfirmed,
		models.StatusInPreparation,
		models.StatusInTransit,
	} {
		assert.False(t, services.IsTerminalStatus(s), s)
	}
}

func TestCanAdminTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"linear step", models.StatusPending, models.StatusConfirmed, true},
		{"skip steps forward", models.StatusPending, models.StatusInTransit, true},
		{"step backward", models.StatusInTransit, models.StatusConfirmed, true},
		{"cancel from in_transit", models.StatusInTransit, models.StatusCancelled, true},
		{"straight to delivered", models.StatusConfirmed, models.StatusDelivered, true},
		{"out of delivered", models.StatusDelivered, models.StatusInTransit, false},
		{"out of cancelled", models.StatusCancelled, models.StatusPending, false},
		{"unknown target", models.StatusPending, "refunded", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.CanAdminTransition(tt.from, tt.to))
		})
	}
}

func TestCanOwnerCancel(t *testing.T) {
	assert.True(t, services.CanOwnerCancel(models.StatusPending))

	for _, s := range []string{
		models.StatusConfirmed,
		models.StatusInPreparation,
		models.StatusInTransit,
		models.StatusDelivered,
		models.StatusCancelled,
	} {
		assert.False(t, services.CanOwnerCancel(s), s)
	}
}
