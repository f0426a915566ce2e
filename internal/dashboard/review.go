package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/pkg/logger"
)

// RoleChangedNotice is shown after a successful commit.
const RoleChangedNotice = "Successfully Change Role"

// ErrNotEditing is returned by Commit when no row is selected.
var ErrNotEditing = errors.New("dashboard: no row selected")

// Review is the archived review table: a list fetched once per mount, plus
// the single-row role editor.
type Review struct {
	api *Client

	mu       sync.Mutex
	users    []models.User
	selected string
	role     string
	page     Pagination
}

func NewReview(api *Client) *Review {
	return &Review{api: api, page: Pagination{page: 1}}
}

// Load fetches the table. On failure the previous list is kept.
func (r *Review) Load(ctx context.Context) error {
	users, err := r.api.Users(ctx)
	if err != nil {
		logger.WithCtx(ctx).Error("dashboard: fetch review table", "error", err)
		return err
	}
	r.mu.Lock()
	r.users = users
	r.mu.Unlock()
	return nil
}

// Users returns a copy of the loaded list.
func (r *Review) Users() []models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.User(nil), r.users...)
}

// Page returns the rows on the current page.
func (r *Review) Page() []models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.User(nil), Visible(&r.page, r.users)...)
}

// Pagination exposes the table's cursor.
func (r *Review) Pagination() *Pagination { return &r.page }

// Select starts editing orderID. A previous selection and its buffered role
// are dropped.
func (r *Review) Select(orderID string) {
	r.mu.Lock()
	r.selected = orderID
	r.role = ""
	r.mu.Unlock()
}

// SetRole buffers the role for the selected row.
func (r *Review) SetRole(role string) {
	r.mu.Lock()
	r.role = role
	r.mu.Unlock()
}

// Editing reports the selected row and the buffered role.
func (r *Review) Editing() (orderID, role string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selected, r.role, r.selected != ""
}

// Cancel leaves edit mode without a network call.
func (r *Review) Cancel() {
	r.mu.Lock()
	r.selected, r.role = "", ""
	r.mu.Unlock()
}

// Commit sends the buffered role for the selected row, once. On success the
// editor returns to idle; on failure the selection and buffer stay as they
// were. The loaded list is not touched either way.
func (r *Review) Commit(ctx context.Context) (string, error) {
	r.mu.Lock()
	id, role := r.selected, r.role
	r.mu.Unlock()
	if id == "" {
		return "", ErrNotEditing
	}

	if _, err := r.api.ChangeRole(ctx, id, role); err != nil {
		logger.WithCtx(ctx).Error("dashboard: change role", "order_id", id, "role", role, "error", err)
		return "", err
	}

	r.mu.Lock()
	if r.selected == id {
		r.selected, r.role = "", ""
	}
	r.mu.Unlock()
	return RoleChangedNotice, nil
}
