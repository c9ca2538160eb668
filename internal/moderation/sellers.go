package moderation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"marketplace/internal/client"
	"marketplace/internal/notify"
)

type SellerAPI interface {
	AdminSellers(ctx context.Context) ([]client.Shop, error)
	ApproveSeller(ctx context.Context, shopID int64) (*client.Shop, error)
	RejectSeller(ctx context.Context, shopID int64, reason string) (*client.Shop, error)
	AdminDeleteSeller(ctx context.Context, shopID int64) error
}

// SellerList is the admin "all sellers" screen; one entry per shop.
type SellerList struct {
	api    SellerAPI
	notify notify.Notifier

	mu      sync.Mutex
	shops   []client.Shop
	loading bool
	acting  bool
}

func NewSellerList(api SellerAPI, n notify.Notifier) *SellerList {
	return &SellerList{api: api, notify: n}
}

func (l *SellerList) Load(ctx context.Context) error {
	l.setLoading(true)
	defer l.setLoading(false)

	shops, err := l.api.AdminSellers(ctx)
	if err != nil {
		notify.Error(l.notify, client.Message(err))
		return fmt.Errorf("load sellers: %w", err)
	}

	l.mu.Lock()
	l.shops = shops
	l.mu.Unlock()
	return nil
}

func (l *SellerList) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

func (l *SellerList) Busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.acting
}

func (l *SellerList) All() []client.Shop {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]client.Shop(nil), l.shops...)
}

// View applies q to the fetched sellers. Name sorts by shop name, email
// and role by the owner's.
func (l *SellerList) View(q Query) []client.Shop {
	shops := l.All()

	rows := make([]row, len(shops))
	idx := make([]int, 0, len(shops))
	for i, s := range shops {
		r := row{
			haystack:  []string{s.Name, s.Phone, s.Address},
			name:      s.Name,
			createdAt: s.CreatedAt,
		}
		if s.Owner != nil {
			r.haystack = append(r.haystack, s.Owner.Name, s.Owner.Email)
			r.email = s.Owner.Email
			r.role = string(s.Owner.Role)
		}
		rows[i] = r
		if matches(q.Status, string(s.Status)) && matchesSearch(q.Search, r.haystack) {
			idx = append(idx, i)
		}
	}
	sortIndexes(idx, rows, q.Sort)

	out := make([]client.Shop, 0, len(idx))
	for _, i := range idx {
		out = append(out, shops[i])
	}
	return out
}

// Counts returns the number of sellers per status, for the filter tabs.
func (l *SellerList) Counts() map[client.ShopStatus]int {
	counts := map[client.ShopStatus]int{}
	for _, s := range l.All() {
		counts[s.Status]++
	}
	return counts
}

func (l *SellerList) Approve(ctx context.Context, shopID int64) error {
	return l.mutate(ctx, "Seller approved successfully", func() error {
		_, err := l.api.ApproveSeller(ctx, shopID)
		return err
	})
}

func (l *SellerList) Reject(ctx context.Context, shopID int64, reason string) error {
	return l.mutate(ctx, "Seller rejected", func() error {
		_, err := l.api.RejectSeller(ctx, shopID, strings.TrimSpace(reason))
		return err
	})
}

func (l *SellerList) Delete(ctx context.Context, shopID int64) error {
	return l.mutate(ctx, "Seller deleted successfully", func() error {
		return l.api.AdminDeleteSeller(ctx, shopID)
	})
}

// mutate runs call, reports the outcome and reloads after the response.
func (l *SellerList) mutate(ctx context.Context, okMsg string, call func() error) error {
	if !l.begin() {
		return ErrBusy
	}
	defer l.end()

	if err := call(); err != nil {
		notify.Error(l.notify, client.Message(err))
		return err
	}
	notify.Success(l.notify, okMsg)
	return l.Load(ctx)
}

func (l *SellerList) setLoading(v bool) {
	l.mu.Lock()
	l.loading = v
	l.mu.Unlock()
}

func (l *SellerList) begin() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.acting {
		return false
	}
	l.acting = true
	return true
}

func (l *SellerList) end() {
	l.mu.Lock()
	l.acting = false
	l.mu.Unlock()
}
