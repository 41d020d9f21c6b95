package services

import (
	"context"
	"fmt"
	"time"

	"doorlist/internal/domain"
)

// fixedClock pins Now for deterministic timestamps in tests.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type mockEventRepository struct {
	events map[string]*domain.Event
	err    error
}

func (m *mockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.err != nil {
		return m.err
	}
	if event.ID == "" {
		event.ID = fmt.Sprintf("e%d", len(m.events)+1)
	}
	if m.events == nil {
		m.events = map[string]*domain.Event{}
	}
	m.events[event.ID] = event
	return nil
}

func (m *mockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	ev, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

func (m *mockEventRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.Event, 0)
	for _, ev := range m.events {
		if ev.OrganizerID == organizerID {
			out = append(out, ev)
		}
	}
	return out, nil
}

// mockRegistrationRepository is a stateful in-memory registration store so the
// conditional writes behave like the real ones: SetCheckedIn succeeds only on a
// registration that is not checked in, ClearCheckedIn only on one that is.
type mockRegistrationRepository struct {
	regs map[string]*domain.Registration
	err  error
	// beforeSetCheckedIn, when set, runs before the conditional write is
	// evaluated. Tests use it to interleave a competing write.
	beforeSetCheckedIn func()
}

func (m *mockRegistrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	if m.err != nil {
		return m.err
	}
	if reg.ID == "" {
		reg.ID = fmt.Sprintf("r%d", len(m.regs)+1)
	}
	if m.regs == nil {
		m.regs = map[string]*domain.Registration{}
	}
	m.regs[reg.ID] = reg
	return nil
}

func (m *mockRegistrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	if m.err != nil {
		return nil, m.err
	}
	reg, ok := m.regs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return reg, nil
}

func (m *mockRegistrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.Registration, 0)
	for _, reg := range m.regs {
		if reg.EventID == eventID {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (m *mockRegistrationRepository) Confirm(ctx context.Context, id, ticketNumber string, at time.Time) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	reg, ok := m.regs[id]
	if !ok || reg.Status != domain.RegistrationPending {
		return false, nil
	}
	reg.Status = domain.RegistrationConfirmed
	reg.TicketNumber = ticketNumber
	reg.UpdatedAt = at
	return true, nil
}

func (m *mockRegistrationRepository) Cancel(ctx context.Context, id string, at time.Time) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	reg, ok := m.regs[id]
	if !ok || reg.Status == domain.RegistrationCancelled {
		return false, nil
	}
	reg.Status = domain.RegistrationCancelled
	reg.UpdatedAt = at
	return true, nil
}

func (m *mockRegistrationRepository) SetCheckedIn(ctx context.Context, id string, at time.Time, by string, meta domain.RegistrationMetadata) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.beforeSetCheckedIn != nil {
		m.beforeSetCheckedIn()
	}
	reg, ok := m.regs[id]
	if !ok || reg.CheckedIn {
		return false, nil
	}
	reg.CheckedIn = true
	reg.CheckedInAt = &at
	reg.CheckedInBy = &by
	reg.Metadata = meta
	reg.UpdatedAt = at
	return true, nil
}

func (m *mockRegistrationRepository) ClearCheckedIn(ctx context.Context, id string, at time.Time, meta domain.RegistrationMetadata) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	reg, ok := m.regs[id]
	if !ok || !reg.CheckedIn {
		return false, nil
	}
	reg.CheckedIn = false
	reg.CheckedInAt = nil
	reg.CheckedInBy = nil
	reg.Metadata = meta
	reg.UpdatedAt = at
	return true, nil
}

type mockUserRepository struct {
	users    map[string]*domain.User
	byEmail  map[string]*domain.User
	assigned map[string]string
	err      error
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.err != nil {
		return m.err
	}
	if user.ID == "" {
		user.ID = fmt.Sprintf("u%d", len(m.users)+1)
	}
	if m.users == nil {
		m.users = map[string]*domain.User{}
	}
	if m.byEmail == nil {
		m.byEmail = map[string]*domain.User{}
	}
	m.users[user.ID] = user
	m.byEmail[user.Email] = user
	return nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepository) AssignRole(ctx context.Context, userID, roleID string) error {
	if m.err != nil {
		return m.err
	}
	if m.assigned == nil {
		m.assigned = map[string]string{}
	}
	m.assigned[userID] = roleID
	return nil
}

type mockRoleRepository struct {
	byCode  map[string]*domain.Role
	byUser  map[string][]*domain.Role
	err     error
}

func (m *mockRoleRepository) GetByCode(ctx context.Context, code string) (*domain.Role, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (m *mockRoleRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Role, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byUser[userID], nil
}

type mockActivityRepository struct {
	recorded []*domain.Activity
	err      error
}

func (m *mockActivityRepository) Record(ctx context.Context, a *domain.Activity) error {
	if m.err != nil {
		return m.err
	}
	m.recorded = append(m.recorded, a)
	return nil
}

func (m *mockActivityRepository) ListByEventID(ctx context.Context, eventID string, p domain.PaginationParams) ([]*domain.Activity, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	out := make([]*domain.Activity, 0)
	for _, a := range m.recorded {
		if a.EventID == eventID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

// countOfType counts recorded activities of the given type.
func (m *mockActivityRepository) countOfType(activityType string) int {
	n := 0
	for _, a := range m.recorded {
		if a.Type == activityType {
			n++
		}
	}
	return n
}

type mockTicketTypeRepository struct {
	types      map[string]*domain.TicketType
	err        error
	reserveErr error
	releaseErr error
	released   map[string]int
}

func (m *mockTicketTypeRepository) Create(ctx context.Context, tt *domain.TicketType) error {
	if m.err != nil {
		return m.err
	}
	if tt.ID == "" {
		tt.ID = fmt.Sprintf("tt%d", len(m.types)+1)
	}
	if m.types == nil {
		m.types = map[string]*domain.TicketType{}
	}
	m.types[tt.ID] = tt
	return nil
}

func (m *mockTicketTypeRepository) GetByID(ctx context.Context, id string) (*domain.TicketType, error) {
	if m.err != nil {
		return nil, m.err
	}
	tt, ok := m.types[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return tt, nil
}

func (m *mockTicketTypeRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.TicketType, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.TicketType, 0)
	for _, tt := range m.types {
		if tt.EventID == eventID {
			out = append(out, tt)
		}
	}
	return out, nil
}

func (m *mockTicketTypeRepository) Reserve(ctx context.Context, id string, quantity int) (bool, error) {
	if m.reserveErr != nil {
		return false, m.reserveErr
	}
	tt, ok := m.types[id]
	if !ok {
		return false, nil
	}
	if tt.QuantitySold+quantity > tt.Quantity {
		return false, nil
	}
	tt.QuantitySold += quantity
	return true, nil
}

func (m *mockTicketTypeRepository) Release(ctx context.Context, id string, quantity int) error {
	if m.releaseErr != nil {
		return m.releaseErr
	}
	if m.released == nil {
		m.released = map[string]int{}
	}
	m.released[id] += quantity
	if tt, ok := m.types[id]; ok {
		tt.QuantitySold -= quantity
		if tt.QuantitySold < 0 {
			tt.QuantitySold = 0
		}
	}
	return nil
}

type mockTicketPurchaseRepository struct {
	purchases []*domain.TicketPurchase
	err       error
}

func (m *mockTicketPurchaseRepository) Create(ctx context.Context, p *domain.TicketPurchase) error {
	if m.err != nil {
		return m.err
	}
	if p.ID == "" {
		p.ID = fmt.Sprintf("p%d", len(m.purchases)+1)
	}
	m.purchases = append(m.purchases, p)
	return nil
}

func (m *mockTicketPurchaseRepository) ListByRegistrationID(ctx context.Context, registrationID string) ([]*domain.TicketPurchase, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.TicketPurchase, 0)
	for _, p := range m.purchases {
		if p.RegistrationID == registrationID {
			out = append(out, p)
		}
	}
	return out, nil
}
