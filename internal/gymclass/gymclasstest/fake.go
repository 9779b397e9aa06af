// Package gymclasstest provides an in-memory gymclass.Repository for service tests.
package gymclasstest

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"gymhub/internal/gymclass"
)

type FakeRepository struct {
	mu      sync.Mutex
	classes map[int]gymclass.GymClass
	nextID  int
	// Saves counts SaveEnrollment calls.
	Saves int
}

func NewFakeRepository(classes ...gymclass.GymClass) *FakeRepository {
	f := &FakeRepository{classes: make(map[int]gymclass.GymClass), nextID: 1}
	for _, g := range classes {
		f.Put(g)
	}
	return f
}

func (f *FakeRepository) Put(g gymclass.GymClass) gymclass.GymClass {
	f.mu.Lock()
	defer f.mu.Unlock()

	if g.ID == 0 {
		g.ID = f.nextID
	}
	if g.ID >= f.nextID {
		f.nextID = g.ID + 1
	}
	f.classes[g.ID] = g
	return g
}

// Get returns the stored copy of a class, ignoring errors.
func (f *FakeRepository) Get(id int) gymclass.GymClass {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.classes[id]
}

func (f *FakeRepository) filter(match func(gymclass.GymClass) bool) ([]gymclass.GymClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []gymclass.GymClass
	for _, g := range f.classes {
		if match(g) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeRepository) Create(ctx context.Context, g *gymclass.GymClass) (*gymclass.GymClass, error) {
	created := f.Put(*g)
	return &created, nil
}

func (f *FakeRepository) FindByID(ctx context.Context, id int) (*gymclass.GymClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	g, ok := f.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &g, nil
}

func (f *FakeRepository) LockByID(ctx context.Context, id int) (*gymclass.GymClass, error) {
	return f.FindByID(ctx, id)
}

func (f *FakeRepository) List(ctx context.Context) ([]gymclass.GymClass, error) {
	return f.filter(func(gymclass.GymClass) bool { return true })
}

func (f *FakeRepository) ListAvailable(ctx context.Context) ([]gymclass.GymClass, error) {
	return f.filter(func(g gymclass.GymClass) bool {
		return g.Status == gymclass.StatusActive && g.CurrentEnrollment < g.MaxCapacity
	})
}

func (f *FakeRepository) ListFull(ctx context.Context) ([]gymclass.GymClass, error) {
	return f.filter(func(g gymclass.GymClass) bool { return g.IsFull() })
}

func (f *FakeRepository) ListByStatus(ctx context.Context, status gymclass.Status) ([]gymclass.GymClass, error) {
	return f.filter(func(g gymclass.GymClass) bool { return g.Status == status })
}

func (f *FakeRepository) ListByTrainer(ctx context.Context, trainerID int, activeOnly bool) ([]gymclass.GymClass, error) {
	return f.filter(func(g gymclass.GymClass) bool {
		return g.TrainerID == trainerID && (!activeOnly || g.Status == gymclass.StatusActive)
	})
}

func (f *FakeRepository) ListByType(ctx context.Context, classType gymclass.ClassType, activeOnly bool) ([]gymclass.GymClass, error) {
	return f.filter(func(g gymclass.GymClass) bool {
		return g.Type == classType && (!activeOnly || g.Status == gymclass.StatusActive)
	})
}

func (f *FakeRepository) ListByLocation(ctx context.Context, location string) ([]gymclass.GymClass, error) {
	return f.filter(func(g gymclass.GymClass) bool { return g.Location == location })
}

func (f *FakeRepository) ListByDay(ctx context.Context, day string) ([]gymclass.GymClass, error) {
	return f.filter(func(g gymclass.GymClass) bool {
		return g.Status == gymclass.StatusActive && strings.Contains(strings.ToUpper(g.ScheduleDays), strings.ToUpper(day))
	})
}

func (f *FakeRepository) ListByTimeRange(ctx context.Context, start, end string) ([]gymclass.GymClass, error) {
	return f.filter(func(g gymclass.GymClass) bool {
		return g.Status == gymclass.StatusActive && g.StartTime >= start && g.StartTime <= end
	})
}

func (f *FakeRepository) Search(ctx context.Context, term string) ([]gymclass.GymClass, error) {
	term = strings.ToLower(term)
	return f.filter(func(g gymclass.GymClass) bool {
		return strings.Contains(strings.ToLower(g.Name), term) || strings.Contains(strings.ToLower(g.Description), term)
	})
}

func (f *FakeRepository) CountActive(ctx context.Context) (int64, error) {
	active, _ := f.ListByStatus(ctx, gymclass.StatusActive)
	return int64(len(active)), nil
}

func (f *FakeRepository) Update(ctx context.Context, g *gymclass.GymClass) (*gymclass.GymClass, error) {
	current, err := f.FindByID(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	next := *g
	next.CurrentEnrollment = current.CurrentEnrollment
	stored := f.Put(next)
	return &stored, nil
}

func (f *FakeRepository) UpdateStatus(ctx context.Context, id int, status gymclass.Status) (*gymclass.GymClass, error) {
	g, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Status = status
	stored := f.Put(*g)
	return &stored, nil
}

func (f *FakeRepository) SaveEnrollment(ctx context.Context, g *gymclass.GymClass) error {
	current, err := f.FindByID(ctx, g.ID)
	if err != nil {
		return gymclass.ErrGymClassNotFound
	}
	current.CurrentEnrollment = g.CurrentEnrollment
	current.Status = g.Status
	f.Put(*current)

	f.mu.Lock()
	f.Saves++
	f.mu.Unlock()
	return nil
}

func (f *FakeRepository) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.classes[id]; !ok {
		return gymclass.ErrGymClassNotFound
	}
	delete(f.classes, id)
	return nil
}

// Transactor runs fn directly against the given store.
type Transactor struct {
	Store gymclass.Store
}

func (t Transactor) InTx(ctx context.Context, fn func(gymclass.Store) error) error {
	return fn(t.Store)
}
