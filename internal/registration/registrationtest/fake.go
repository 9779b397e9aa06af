// Package registrationtest provides an in-memory registration.Repository for service tests.
package registrationtest

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"gymhub/internal/registration"
)

type FakeRepository struct {
	mu     sync.Mutex
	regs   map[int]registration.Registration
	nextID int
}

func NewFakeRepository(regs ...registration.Registration) *FakeRepository {
	f := &FakeRepository{regs: make(map[int]registration.Registration), nextID: 1}
	for _, r := range regs {
		f.Put(r)
	}
	return f
}

func (f *FakeRepository) Put(r registration.Registration) registration.Registration {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.ID == 0 {
		r.ID = f.nextID
	}
	if r.ID >= f.nextID {
		f.nextID = r.ID + 1
	}
	f.regs[r.ID] = r
	return r
}

func (f *FakeRepository) filter(match func(registration.Registration) bool) ([]registration.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []registration.Registration
	for _, r := range f.regs {
		if match(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeRepository) count(match func(registration.Registration) bool) int64 {
	out, _ := f.filter(match)
	return int64(len(out))
}

func (f *FakeRepository) Create(ctx context.Context, memberID, gymClassID int, notes string) (*registration.Registration, error) {
	now := time.Now()
	r := f.Put(registration.Registration{
		MemberID:         memberID,
		GymClassID:       gymClassID,
		Status:           registration.StatusRegistered,
		RegistrationDate: now,
		Notes:            notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	return &r, nil
}

func (f *FakeRepository) FindByID(ctx context.Context, id int) (*registration.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.regs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &r, nil
}

func (f *FakeRepository) LockByID(ctx context.Context, id int) (*registration.Registration, error) {
	return f.FindByID(ctx, id)
}

func (f *FakeRepository) HasActive(ctx context.Context, memberID, gymClassID int) (bool, error) {
	n := f.count(func(r registration.Registration) bool {
		return r.MemberID == memberID && r.GymClassID == gymClassID && r.Status != registration.StatusCancelled
	})
	return n > 0, nil
}

func (f *FakeRepository) CountRegistered(ctx context.Context, gymClassID int) (int64, error) {
	return f.count(func(r registration.Registration) bool {
		return r.GymClassID == gymClassID && r.Status == registration.StatusRegistered
	}), nil
}

func (f *FakeRepository) CountAttendedByMember(ctx context.Context, memberID int) (int64, error) {
	return f.count(func(r registration.Registration) bool {
		return r.MemberID == memberID && r.Status == registration.StatusAttended
	}), nil
}

func (f *FakeRepository) List(ctx context.Context) ([]registration.Registration, error) {
	return f.filter(func(registration.Registration) bool { return true })
}

func (f *FakeRepository) ListByMember(ctx context.Context, memberID int) ([]registration.Registration, error) {
	return f.filter(func(r registration.Registration) bool { return r.MemberID == memberID })
}

// ListUpcomingByMember has no class data to join, so only the registration part is filled.
func (f *FakeRepository) ListUpcomingByMember(ctx context.Context, memberID int) ([]registration.RegistrationWithClass, error) {
	regs, _ := f.filter(func(r registration.Registration) bool {
		return r.MemberID == memberID && r.Status == registration.StatusRegistered
	})
	out := make([]registration.RegistrationWithClass, 0, len(regs))
	for _, r := range regs {
		out = append(out, registration.RegistrationWithClass{Registration: r})
	}
	return out, nil
}

func (f *FakeRepository) ListByClass(ctx context.Context, gymClassID int) ([]registration.Registration, error) {
	return f.filter(func(r registration.Registration) bool { return r.GymClassID == gymClassID })
}

func (f *FakeRepository) ListByStatus(ctx context.Context, status registration.Status) ([]registration.Registration, error) {
	return f.filter(func(r registration.Registration) bool { return r.Status == status })
}

func (f *FakeRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]registration.Registration, error) {
	return f.filter(func(r registration.Registration) bool {
		return !r.RegistrationDate.Before(start) && !r.RegistrationDate.After(end)
	})
}

func (f *FakeRepository) UpdateStatus(ctx context.Context, id int, status registration.Status, attendanceDate *time.Time) (*registration.Registration, error) {
	r, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Status = status
	if attendanceDate != nil {
		r.AttendanceDate = attendanceDate
	}
	r.UpdatedAt = time.Now()
	stored := f.Put(*r)
	return &stored, nil
}

func (f *FakeRepository) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.regs[id]; !ok {
		return registration.ErrRegistrationNotFound
	}
	delete(f.regs, id)
	return nil
}

// Transactor runs fn directly against the given store.
type Transactor struct {
	Store registration.Store
}

func (t Transactor) InTx(ctx context.Context, fn func(registration.Store) error) error {
	return fn(t.Store)
}

// Notifier records the e-mails it was asked to send.
type Notifier struct {
	mu            sync.Mutex
	Registrations []string
	Cancellations []string
	Err           error
}

func (n *Notifier) SendClassRegistration(ctx context.Context, to, name, className, schedule string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Registrations = append(n.Registrations, to)
	return n.Err
}

func (n *Notifier) SendClassCancellation(ctx context.Context, to, name, className string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Cancellations = append(n.Cancellations, to)
	return n.Err
}
