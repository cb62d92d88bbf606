package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAvailability(t *testing.T) {
	h := newHarness(t)
	w := h.window("w1", "court-1", "2026-10-26", "15:00", 60, 4, "Group Clinic")
	h.window("w2", "court-1", "2026-10-26", "23:30", 30, 2, "Court Rental")
	h.window("next", "court-1", "2026-10-27", "00:00", 60, 2, "Court Rental")
	h.window("other", "court-2", "2026-10-26", "15:00", 60, 2, "Court Rental")
	h.store.addBookings(3, "court-1", w.StartTime, w.EndTime)

	windows, err := h.svc.ListAvailability(context.Background(), "court-1", "2026-10-26")
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, "w1", windows[0].ID)
	assert.Equal(t, 3, windows[0].Booked)
	assert.Equal(t, 1, windows[0].Remaining)
	assert.Equal(t, "w2", windows[1].ID)
	assert.Equal(t, 2, windows[1].Remaining)

	_, err = h.svc.ListAvailability(context.Background(), "court-1", "26/10/2026")
	assert.Error(t, err)
}

func TestStartTopupRejectsNonPositiveCredits(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.StartTopup(context.Background(), "u1", 0)
	assert.True(t, errors.Is(err, ErrPaymentError))
	assert.Empty(t, h.gateway.requests)
}

func TestPendingSession(t *testing.T) {
	h := newHarness(t)
	sess, err := h.svc.StartTopup(context.Background(), "u1", 3)
	require.NoError(t, err)

	sid, err := h.svc.PendingSession(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, sid)
}
