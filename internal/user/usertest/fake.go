// Package usertest provides an in-memory user.Repository for service tests.
package usertest

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"gymhub/internal/auth"
	"gymhub/internal/user"
)

type FakeRepository struct {
	mu     sync.Mutex
	users  map[int]user.User
	nextID int
}

func NewFakeRepository(users ...user.User) *FakeRepository {
	f := &FakeRepository{users: make(map[int]user.User), nextID: 1}
	for _, u := range users {
		f.Put(u)
	}
	return f
}

// Put stores u as-is, assigning an ID when it has none.
func (f *FakeRepository) Put(u user.User) user.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	if u.ID == 0 {
		u.ID = f.nextID
	}
	if u.ID >= f.nextID {
		f.nextID = u.ID + 1
	}
	f.users[u.ID] = u
	return u
}

func (f *FakeRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	created := f.Put(*u)
	return &created, nil
}

func (f *FakeRepository) FindByID(ctx context.Context, id int) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (f *FakeRepository) find(match func(user.User) bool) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *FakeRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return f.find(func(u user.User) bool { return u.Email == email })
}

func (f *FakeRepository) FindByLogin(ctx context.Context, login string) (*user.User, error) {
	return f.find(func(u user.User) bool { return u.Username == login || u.Email == login })
}

func (f *FakeRepository) LockByID(ctx context.Context, id int) (*user.User, error) {
	return f.FindByID(ctx, id)
}

func (f *FakeRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := f.find(func(u user.User) bool { return u.Username == username })
	return err == nil, nil
}

func (f *FakeRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.FindByEmail(ctx, email)
	return err == nil, nil
}

func (f *FakeRepository) List(ctx context.Context) ([]user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	users := make([]user.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (f *FakeRepository) ListByRole(ctx context.Context, role auth.Role) ([]user.User, error) {
	all, _ := f.List(ctx)
	var users []user.User
	for _, u := range all {
		if u.Role == role {
			users = append(users, u)
		}
	}
	return users, nil
}

func (f *FakeRepository) Update(ctx context.Context, u *user.User) (*user.User, error) {
	if _, err := f.FindByID(ctx, u.ID); err != nil {
		return nil, err
	}
	updated := f.Put(*u)
	return &updated, nil
}

func (f *FakeRepository) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[id]; !ok {
		return user.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}
