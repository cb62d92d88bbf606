package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	availabilityRepo "courtside/database/repository/availability"
	bookingRepo "courtside/database/repository/booking"
	stagingRepo "courtside/database/repository/staging"
	walletRepo "courtside/database/repository/wallet"
	"courtside/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore backs the availability, booking and wallet fakes with shared state.
type memStore struct {
	mu       sync.Mutex
	windows  map[string]models.AvailabilityWindow
	bookings []models.Booking
	balances map[string]float64

	// failInsertAt makes the nth insert of a transaction fail (1-based).
	failInsertAt int
	deductErr    error
	creditErr    error
}

func newMemStore() *memStore {
	return &memStore{
		windows:  map[string]models.AvailabilityWindow{},
		balances: map[string]float64{},
	}
}

func (m *memStore) addWindow(w models.AvailabilityWindow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows[w.ID] = w
}

func (m *memStore) addBookings(n int, locationID string, start, end time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		m.bookings = append(m.bookings, models.Booking{
			ID: fmt.Sprintf("existing-%d", len(m.bookings)), UserID: "other",
			LocationID: locationID, StartTime: start, EndTime: end,
		})
	}
}

func (m *memStore) window(id string) models.AvailabilityWindow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.windows[id]
}

func (m *memStore) bookingsFor(userID string) []models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out
}

func (m *memStore) balance(userID string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[userID]
}

func (m *memStore) countLocked(locationID string, start, end time.Time) int {
	n := 0
	for _, b := range m.bookings {
		if b.LocationID == locationID && b.StartTime.Equal(start) && b.EndTime.Equal(end) {
			n++
		}
	}
	return n
}

type memAvailability struct{ *memStore }

func (a memAvailability) GetOpenByID(_ context.Context, id string) (*models.AvailabilityWindow, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	w, ok := a.windows[id]
	if !ok || w.IsBooked {
		return nil, availabilityRepo.ErrNotFound
	}
	return &w, nil
}

func (a memAvailability) FindOpen(_ context.Context, locationID string, from, to time.Time) ([]models.AvailabilityWindow, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []models.AvailabilityWindow
	for _, w := range a.windows {
		if w.LocationID == locationID && !w.IsBooked && !w.StartTime.Before(from) && !w.StartTime.After(to) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (a memAvailability) EnsureIndexes(context.Context) error { return nil }

type memBookings struct{ *memStore }

func (b memBookings) CountForWindow(_ context.Context, locationID string, start, end time.Time) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.countLocked(locationID, start, end), nil
}

func (b memBookings) ListByUser(_ context.Context, userID string) ([]models.Booking, error) {
	return b.bookingsFor(userID), nil
}

func (b memBookings) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx bookingRepo.BookingTx) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	savedBookings := append([]models.Booking(nil), b.bookings...)
	savedWindows := make(map[string]models.AvailabilityWindow, len(b.windows))
	for k, v := range b.windows {
		savedWindows[k] = v
	}

	if err := fn(ctx, &memTx{memStore: b.memStore}); err != nil {
		b.bookings = savedBookings
		b.windows = savedWindows
		return err
	}
	return nil
}

func (b memBookings) EnsureIndexes(context.Context) error { return nil }

// memTx runs with memStore.mu held by WithTransaction.
type memTx struct {
	*memStore
	inserts int
}

func (t *memTx) LockWindows(_ context.Context, ids []string) error {
	matched := 0
	for _, id := range ids {
		if w, ok := t.windows[id]; ok {
			w.Version++
			t.windows[id] = w
			matched++
		}
	}
	if matched == 0 {
		return fmt.Errorf("no availability windows found for %v", ids)
	}
	return nil
}

func (t *memTx) CountForWindow(_ context.Context, locationID string, start, end time.Time) (int, error) {
	return t.countLocked(locationID, start, end), nil
}

func (t *memTx) InsertBooking(_ context.Context, b *models.Booking) error {
	t.inserts++
	if t.failInsertAt > 0 && t.inserts == t.failInsertAt {
		return errors.New("insert booking failed: connection reset")
	}
	t.bookings = append(t.bookings, *b)
	return nil
}

func (t *memTx) MarkWindowsBooked(_ context.Context, ids []string) error {
	for _, id := range ids {
		if w, ok := t.windows[id]; ok {
			w.IsBooked = true
			t.windows[id] = w
		}
	}
	return nil
}

type memWallet struct{ *memStore }

func (w memWallet) GetBalance(_ context.Context, userID string) (float64, error) {
	return w.balance(userID), nil
}

func (w memWallet) GetFCMToken(context.Context, string) (string, error) { return "", nil }

func (w memWallet) Deduct(_ context.Context, userID string, amount float64) (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.deductErr != nil {
		return 0, w.deductErr
	}
	if w.balances[userID] < amount {
		return 0, walletRepo.ErrInsufficientBalance
	}
	w.balances[userID] -= amount
	return w.balances[userID], nil
}

func (w memWallet) Credit(_ context.Context, userID string, amount float64) (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.creditErr != nil {
		return 0, w.creditErr
	}
	w.balances[userID] += amount
	return w.balances[userID], nil
}

func (w memWallet) EnsureIndexes(context.Context) error { return nil }

// fakeGateway records checkout sessions and answers verification from them.
type fakeGateway struct {
	mu        sync.Mutex
	next      int
	requests  []models.CheckoutRequest
	sessions  map[string]*models.PaymentVerification
	createErr error
	verifyErr error
	verifies  int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sessions: map[string]*models.PaymentVerification{}}
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.next++
	id := fmt.Sprintf("cs_test_%d", g.next)
	g.requests = append(g.requests, req)
	g.sessions[id] = &models.PaymentVerification{
		SessionID:   id,
		UserID:      req.UserID,
		BookedBy:    req.BookedBy,
		Type:        req.Type,
		AmountCents: int64(req.Credits * 4000),
	}
	return &models.CheckoutSession{ID: id, RedirectURL: "https://checkout.test/" + id}, nil
}

func (g *fakeGateway) VerifySession(_ context.Context, sessionID string) (*models.PaymentVerification, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifies++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	v, ok := g.sessions[sessionID]
	if !ok {
		return nil, errors.New("no such checkout session")
	}
	cp := *v
	return &cp, nil
}

func (g *fakeGateway) pay(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[sessionID].Paid = true
}

type recordingReminders struct {
	mu       sync.Mutex
	bookings []models.Booking
}

func (r *recordingReminders) ScheduleReminder(_ context.Context, b models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings = append(r.bookings, b)
	return nil
}

type recordingNotifier struct {
	confirmed [][]models.Booking
}

func (n *recordingNotifier) NotifyBookingsConfirmed(_ context.Context, _ string, bookings []models.Booking) error {
	n.confirmed = append(n.confirmed, bookings)
	return nil
}

func (n *recordingNotifier) SendReminder(context.Context, models.ReminderPayload) error { return nil }

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type harness struct {
	svc       *DefaultBookingService
	store     *memStore
	gateway   *fakeGateway
	staging   *stagingRepo.RedisStagingRepo
	redis     *miniredis.Miniredis
	reminders *recordingReminders
	notifier  *recordingNotifier
	loc       *time.Location
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := newMemStore()
	h := &harness{
		store:     store,
		gateway:   newFakeGateway(),
		staging:   stagingRepo.NewRedisStagingRepo(client),
		redis:     mr,
		reminders: &recordingReminders{},
		notifier:  &recordingNotifier{},
		loc:       loc,
	}
	h.svc = &DefaultBookingService{
		Availability: memAvailability{store},
		Bookings:     memBookings{store},
		Wallet:       memWallet{store},
		Staging:      h.staging,
		Gateway:      h.gateway,
		Reminders:    h.reminders,
		Notifier:     h.notifier,
		Pricer: NewPricer(map[string]float64{
			"Private Lesson": 1.0,
			"Group Clinic":   0.5,
			"Court Rental":   0.25,
		}, 1.0),
		Rules: Rules{
			Location:            loc,
			MinAdvance:          7 * 24 * time.Hour,
			StagingTTL:          24 * time.Hour,
			VerifyTimeout:       200 * time.Millisecond,
			VerifyRetryInterval: 10 * time.Millisecond,
			StagingPollTimeout:  50 * time.Millisecond,
			CreditPriceCents:    4000,
		},
		Logger: zap.NewNop(),
		Now:    func() time.Time { return testNow },
	}
	return h
}

// local returns a time on the academy clock.
func (h *harness) local(date, clock string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, h.loc)
	if err != nil {
		panic(err)
	}
	return t
}

func (h *harness) window(id, location, date, clock string, minutes, capacity int, service string) models.AvailabilityWindow {
	start := h.local(date, clock)
	w := models.AvailabilityWindow{
		ID:          id,
		LocationID:  location,
		StartTime:   start,
		EndTime:     start.Add(time.Duration(minutes) * time.Minute),
		ServiceName: service,
		MaxCapacity: capacity,
	}
	h.store.addWindow(w)
	return w
}
