package moderation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"marketplace/internal/client"
	"marketplace/internal/notify"
)

// ErrBusy is returned when a mutation is already running on the list.
var ErrBusy = errors.New("another action is in progress")

type UserAPI interface {
	AdminUsers(ctx context.Context) ([]client.User, error)
	AdminDeleteUser(ctx context.Context, id int64) error
}

// UserList is the admin "all users" screen.
type UserList struct {
	api    UserAPI
	notify notify.Notifier

	mu      sync.Mutex
	users   []client.User
	loading bool
	acting  bool
}

func NewUserList(api UserAPI, n notify.Notifier) *UserList {
	return &UserList{api: api, notify: n}
}

// Load replaces the list with a fresh fetch.
func (l *UserList) Load(ctx context.Context) error {
	l.setLoading(true)
	defer l.setLoading(false)

	users, err := l.api.AdminUsers(ctx)
	if err != nil {
		notify.Error(l.notify, client.Message(err))
		return fmt.Errorf("load users: %w", err)
	}

	l.mu.Lock()
	l.users = users
	l.mu.Unlock()
	return nil
}

func (l *UserList) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

func (l *UserList) Busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.acting
}

// All returns the fetched users in fetch order.
func (l *UserList) All() []client.User {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]client.User(nil), l.users...)
}

// View applies q to the fetched users.
func (l *UserList) View(q Query) []client.User {
	users := l.All()

	rows := make([]row, len(users))
	idx := make([]int, 0, len(users))
	for i, u := range users {
		rows[i] = row{
			haystack:  []string{u.Name, u.Email, u.Phone, u.Address, u.Shop.Name()},
			name:      u.Name,
			email:     u.Email,
			role:      string(u.Role),
			createdAt: u.CreatedAt,
		}
		if matches(q.Role, string(u.Role)) && matchesSearch(q.Search, rows[i].haystack) {
			idx = append(idx, i)
		}
	}
	sortIndexes(idx, rows, q.Sort)

	out := make([]client.User, 0, len(idx))
	for _, i := range idx {
		out = append(out, users[i])
	}
	return out
}

// Delete removes the user, then reloads the list.
func (l *UserList) Delete(ctx context.Context, id int64) error {
	if !l.begin() {
		return ErrBusy
	}
	defer l.end()

	if err := l.api.AdminDeleteUser(ctx, id); err != nil {
		notify.Error(l.notify, client.Message(err))
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	notify.Success(l.notify, "User deleted successfully")
	return l.Load(ctx)
}

func (l *UserList) setLoading(v bool) {
	l.mu.Lock()
	l.loading = v
	l.mu.Unlock()
}

func (l *UserList) begin() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.acting {
		return false
	}
	l.acting = true
	return true
}

func (l *UserList) end() {
	l.mu.Lock()
	l.acting = false
	l.mu.Unlock()
}
