package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

func TestCancel_IsIdempotent(t *testing.T) {
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	ap := &models.Appointment{Status: string(StatusScheduled)}

	changed, err := Cancel(ap, now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, string(StatusCanceled), ap.Status)
	require.NotNil(t, ap.CanceledAt)

	changed, err = Cancel(ap, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, now, *ap.CanceledAt)
}

func TestCancel_TerminalStates(t *testing.T) {
	for _, st := range []Status{StatusCompleted, StatusNoShow} {
		ap := &models.Appointment{Status: string(st)}
		_, err := Cancel(ap, time.Now())
		assert.True(t, httperr.IsBusiness(err, "invalid_state"), st)
		assert.Equal(t, string(st), ap.Status)
	}
}

func TestMarkNoShow_OnlyAfterEnd(t *testing.T) {
	end := time.Date(2026, 1, 5, 10, 30, 0, 0, time.UTC)
	ap := &models.Appointment{Status: string(StatusScheduled), AppointmentEnd: end}

	err := MarkNoShow(ap, end.Add(-time.Minute))
	assert.True(t, httperr.IsBusiness(err, "appointment_not_ended"))
	assert.Equal(t, string(StatusScheduled), ap.Status)

	require.NoError(t, MarkNoShow(ap, end))
	assert.Equal(t, string(StatusNoShow), ap.Status)
	assert.NotNil(t, ap.NoShowAt)
}

func TestApply(t *testing.T) {
	end := time.Date(2026, 1, 5, 10, 30, 0, 0, time.UTC)

	ap := &models.Appointment{Status: string(StatusScheduled), AppointmentEnd: end}
	changed, err := Apply(ap, StatusCompleted, end)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotNil(t, ap.CompletedAt)

	_, err = Apply(ap, StatusCompleted, end)
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))

	_, err = Apply(ap, StatusScheduled, end)
	assert.True(t, httperr.IsBusiness(err, "invalid_status"))
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("no_show")
	require.NoError(t, err)
	assert.Equal(t, StatusNoShow, st)
	assert.True(t, st.IsTerminal())
	assert.False(t, StatusScheduled.IsTerminal())

	_, err = ParseStatus("cancelled")
	assert.Error(t, err)
}

func TestOverlaps_HalfOpen(t *testing.T) {
	base := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	at := func(m int) time.Time { return base.Add(time.Duration(m) * time.Minute) }

	assert.False(t, Overlaps(at(-30), at(0), at(0), at(30)))
	assert.False(t, Overlaps(at(30), at(60), at(0), at(30)))
	assert.True(t, Overlaps(at(-15), at(15), at(0), at(30)))
	assert.True(t, Overlaps(at(5), at(10), at(0), at(30)))
}

func TestGuestValidate(t *testing.T) {
	assert.True(t, httperr.IsBusiness(Guest{Name: "Ana"}.Validate(), "guest_contact_required"))
	assert.True(t, httperr.IsBusiness(Guest{Phone: "+5511999"}.Validate(), "guest_name_required"))
	assert.NoError(t, Guest{Name: "Ana", Phone: "+5511999"}.Validate())
	assert.NoError(t, Guest{Name: "Ana", Email: "ana@example.com"}.Validate())

	assert.True(t, httperr.IsBusiness(ValidateCustomer(nil), "customer_required"))
	assert.True(t, httperr.IsBusiness(ValidateCustomer(Registered{}), "customer_required"))
	assert.NoError(t, ValidateCustomer(Registered{UserID: 3}))

	g := Guest{Name: "  Ana ", Email: " Ana@Example.COM "}.Normalized()
	assert.Equal(t, Guest{Name: "Ana", Email: "ana@example.com"}, g)
}
