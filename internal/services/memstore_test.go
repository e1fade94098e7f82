package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/ihute/transit-backend/internal/database"
	"github.com/ihute/transit-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// memStore is an in-memory database.Store with the same guarded semantics as
// the SQL repositories. Transactions are serialized and roll back on error.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	ledger   map[models.EntityRef]models.SeatAvailability
	bookings map[int64]models.Booking
	payments map[int64]models.Payment

	nextBookingID int64
	nextPaymentID int64

	// errors returned by successive Bookings().Create calls before the insert happens
	createErrs []error
}

func newMemStore() *memStore {
	return &memStore{
		ledger:   make(map[models.EntityRef]models.SeatAvailability),
		bookings: make(map[int64]models.Booking),
		payments: make(map[int64]models.Payment),
	}
}

func (s *memStore) Seats() database.SeatLedger      { return memSeats{s} }
func (s *memStore) Bookings() database.BookingStore { return memBookings{s} }
func (s *memStore) Payments() database.PaymentStore { return memPayments{s} }

func (s *memStore) WithinTx(ctx context.Context, fn func(database.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	ledger := copyMap(s.ledger)
	bookings := copyMap(s.bookings)
	payments := copyMap(s.payments)
	nextB, nextP := s.nextBookingID, s.nextPaymentID
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.ledger, s.bookings, s.payments = ledger, bookings, payments
		s.nextBookingID, s.nextPaymentID = nextB, nextP
		s.mu.Unlock()
		return err
	}
	return nil
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// seed helpers

func (s *memStore) initLedger(ref models.EntityRef, total int) {
	_ = s.Seats().Initialize(context.Background(), ref, total)
}

func (s *memStore) entry(ref models.EntityRef) models.SeatAvailability {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger[ref]
}

func (s *memStore) setLedger(ref models.EntityRef, booked, locked int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.ledger[ref]
	e.BookedSeats, e.LockedSeats = booked, locked
	s.ledger[ref] = e
}

func (s *memStore) booking(id int64) models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings[id]
}

func (s *memStore) setHoldExpiry(id int64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bookings[id]
	b.HoldExpiresAt = &at
	s.bookings[id] = b
}

func (s *memStore) paymentsFor(bookingID int64) []models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Payment
	for _, p := range s.payments {
		if p.BookingID == bookingID {
			out = append(out, p)
		}
	}
	return out
}

// ledger

type memSeats struct{ s *memStore }

func (m memSeats) Initialize(_ context.Context, ref models.EntityRef, total int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.ledger[ref]; !ok {
		m.s.ledger[ref] = models.SeatAvailability{EntityType: ref.Type, EntityID: ref.ID, TotalSeats: total}
	}
	return nil
}

func (m memSeats) Lock(_ context.Context, ref models.EntityRef, n int) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e, ok := m.s.ledger[ref]
	if !ok || e.BookedSeats+e.LockedSeats+n > e.TotalSeats {
		return false, nil
	}
	e.LockedSeats += n
	m.s.ledger[ref] = e
	return true, nil
}

func (m memSeats) Unlock(_ context.Context, ref models.EntityRef, n int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if e, ok := m.s.ledger[ref]; ok {
		e.LockedSeats = max(0, e.LockedSeats-n)
		m.s.ledger[ref] = e
	}
	return nil
}

func (m memSeats) Confirm(_ context.Context, ref models.EntityRef, n int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if e, ok := m.s.ledger[ref]; ok {
		e.BookedSeats += n
		e.LockedSeats = max(0, e.LockedSeats-n)
		m.s.ledger[ref] = e
	}
	return nil
}

func (m memSeats) Available(_ context.Context, ref models.EntityRef) (int, bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e, ok := m.s.ledger[ref]
	if !ok {
		return 0, false, nil
	}
	return e.TotalSeats - e.BookedSeats - e.LockedSeats, true, nil
}

func (m memSeats) Get(_ context.Context, ref models.EntityRef) (*models.SeatAvailability, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e, ok := m.s.ledger[ref]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

// bookings

type memBookings struct{ s *memStore }

func (m memBookings) Create(_ context.Context, b *models.Booking) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if len(m.s.createErrs) > 0 {
		err := m.s.createErrs[0]
		m.s.createErrs = m.s.createErrs[1:]
		return err
	}
	m.s.nextBookingID++
	b.ID = m.s.nextBookingID
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.s.bookings[b.ID] = *b
	return nil
}

func (m memBookings) GetByID(_ context.Context, id int64) (*models.Booking, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	b, ok := m.s.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m memBookings) GetByReference(_ context.Context, ref string) (*models.Booking, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, b := range m.s.bookings {
		if b.BookingReference == ref {
			return &b, nil
		}
	}
	return nil, nil
}

func (m memBookings) MarkPaid(_ context.Context, id int64) (bool, error) {
	return m.transition(id, models.BookingStatusPaid), nil
}

func (m memBookings) MarkCancelled(_ context.Context, id int64) (bool, error) {
	return m.transition(id, models.BookingStatusCancelled), nil
}

func (m memBookings) transition(id int64, to models.BookingStatus) bool {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	b, ok := m.s.bookings[id]
	if !ok || b.Status != models.BookingStatusPending {
		return false
	}
	b.Status = to
	b.HoldExpiresAt = nil
	m.s.bookings[id] = b
	return true
}

func (m memBookings) ListExpiredPending(_ context.Context, now time.Time, limit int) ([]*models.Booking, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*models.Booking
	for id := int64(1); id <= m.s.nextBookingID && len(out) < limit; id++ {
		b, ok := m.s.bookings[id]
		if ok && b.Status == models.BookingStatusPending && b.HoldExpiresAt != nil && !b.HoldExpiresAt.After(now) {
			out = append(out, &b)
		}
	}
	return out, nil
}

// payments

type memPayments struct{ s *memStore }

func (m memPayments) Create(_ context.Context, p *models.Payment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.nextPaymentID++
	p.ID = m.s.nextPaymentID
	p.CreatedAt = time.Now()
	m.s.payments[p.ID] = *p
	return nil
}

func (m memPayments) GetByID(_ context.Context, id int64) (*models.Payment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m memPayments) ListByBooking(_ context.Context, bookingID int64) ([]*models.Payment, error) {
	var out []*models.Payment
	for _, p := range m.s.paymentsFor(bookingID) {
		p := p
		out = append(out, &p)
	}
	return out, nil
}

// shared fakes

type fakeSchedule map[int64]time.Time

func (f fakeSchedule) GetTripDeparture(_ context.Context, tripID int64) (time.Time, bool, error) {
	t, ok := f[tripID]
	return t, ok, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	created   []string
	paid      []string
	cancelled []string
}

func (n *recordingNotifier) BookingCreated(_ context.Context, b *models.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, b.BookingReference)
}

func (n *recordingNotifier) PaymentReceived(_ context.Context, b *models.Booking, _ *models.Payment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paid = append(n.paid, b.BookingReference)
}

func (n *recordingNotifier) BookingCancelled(_ context.Context, b *models.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, b.BookingReference)
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
	actors  []AdminActor
}

func (a *recordingAudit) LogAdminAction(_ context.Context, actor AdminActor, entry AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actors = append(a.actors, actor)
	a.entries = append(a.entries, entry)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func int64Ptr(v int64) *int64 { return &v }
