package listing

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"blog_admin/internal/domain"
	"blog_admin/internal/remote"
)

// Item is a record type a Controller can manage.
type Item[T any] interface {
	domain.Record
	WithID(id domain.ID) T
}

type Options struct {
	PageSize   int
	AdminEmail string
	// Query is sent with every load, e.g. to scope comments to one post.
	Query     remote.Query
	Publisher Publisher
	Logger    *slog.Logger
	// NewID generates ids for records created locally. Defaults to UUIDv4.
	NewID func() domain.ID
	Now   func() time.Time
}

// Controller keeps a filtered, paginated view over a remote collection and
// applies writes optimistically, rolling a record back when its write fails.
type Controller[T Item[T]] struct {
	remote     Remote[T]
	sessions   SessionProvider
	publisher  Publisher
	kind       Kind[T]
	pageSize   int
	adminEmail string
	query      remote.Query
	newID      func() domain.ID
	now        func() time.Time
	logger     *slog.Logger

	mu       sync.Mutex
	items    []T
	filtered []T
	filter   Filter
	reversed bool
	page     int
	loading  bool
	loadErr  error
	loadSeq  uint64
	closed   bool
}

func NewController[T Item[T]](r Remote[T], sessions SessionProvider, kind Kind[T], opts Options) *Controller[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.NewID == nil {
		opts.NewID = func() domain.ID { return domain.ID(uuid.NewString()) }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if kind.CreatePolicy == nil {
		kind.CreatePolicy = Anyone
	}
	if kind.WritePolicy == nil {
		kind.WritePolicy = Anyone
	}

	return &Controller[T]{
		remote:     r,
		sessions:   sessions,
		publisher:  opts.Publisher,
		kind:       kind,
		pageSize:   opts.PageSize,
		adminEmail: opts.AdminEmail,
		query:      opts.Query,
		newID:      opts.NewID,
		now:        opts.Now,
		logger:     opts.Logger.With("collection", kind.Name),
		page:       1,
	}
}

// Name returns the collection name.
func (c *Controller[T]) Name() string {
	return c.kind.Name
}

// View is a snapshot of what the list currently shows.
type View[T any] struct {
	Items         []T
	Page          int
	TotalPages    int
	PageSize      int
	FilteredCount int
	Total         int
	Filter        Filter
	Loading       bool
	Err           error
}

// Pager returns the compact page list for the view.
func (v View[T]) Pager() []PageItem {
	return PageList(v.Page, v.TotalPages)
}

func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	start, end := PageBounds(c.page, c.pageSize, len(c.filtered))
	return View[T]{
		Items:         slices.Clone(c.filtered[start:end]),
		Page:          c.page,
		TotalPages:    TotalPages(len(c.filtered), c.pageSize),
		PageSize:      c.pageSize,
		FilteredCount: len(c.filtered),
		Total:         len(c.items),
		Filter:        c.filter,
		Loading:       c.loading,
		Err:           c.loadErr,
	}
}

// All returns every record currently held, unfiltered.
func (c *Controller[T]) All() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Find looks a record up by id.
func (c *Controller[T]) Find(id domain.ID) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Load replaces the local collection with the remote one. A load that is
// overtaken by a newer load, or finishes after Close, is discarded and
// reported as domain.ErrStale.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrStale
	}
	c.loadSeq++
	token := c.loadSeq
	c.loading = true
	query := c.query
	c.mu.Unlock()

	items, err := c.remote.List(ctx, query)

	if err == nil && c.kind.Sort != nil {
		c.kind.Sort(items)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || token != c.loadSeq {
		c.logger.Debug("discarding stale load", "token", token, "current", c.loadSeq)
		return domain.ErrStale
	}

	c.loading = false
	if err != nil {
		c.loadErr = err
		c.logger.Error("load failed", "error", err)
		return fmt.Errorf("load %s: %w", c.kind.Name, err)
	}

	if c.reversed {
		slices.Reverse(items)
	}
	c.items = items
	c.loadErr = nil
	c.refresh()

	c.logger.Debug("loaded collection", "count", len(items))
	return nil
}

// SetQuery changes the query used by subsequent loads.
func (c *Controller[T]) SetQuery(q remote.Query) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = q
}

// SetFilter recomputes the visible subset and clamps the current page.
func (c *Controller[T]) SetFilter(f Filter) View[T] {
	c.mu.Lock()
	c.filter = f
	c.refresh()
	c.mu.Unlock()
	return c.View()
}

// SetPage moves to page n, clamped to the existing pages, and returns the
// page actually selected.
func (c *Controller[T]) SetPage(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.page = ClampPage(n, TotalPages(len(c.filtered), c.pageSize))
	return c.page
}

// Reverse flips the collection order relative to the kind's natural order.
func (c *Controller[T]) Reverse(reversed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reversed == reversed {
		return
	}
	c.reversed = reversed
	slices.Reverse(c.items)
	c.refresh()
}

// Create adds rec locally, then writes it to the store.
func (c *Controller[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	session := c.sessions.Current()

	if !c.kind.CreatePolicy(session, domain.Owner{}, c.adminEmail) {
		return zero, fmt.Errorf("create %s: %w", c.kind.Name, domain.ErrPermission)
	}

	if rec.RecordID().IsZero() {
		rec = rec.WithID(c.newID())
	}
	if c.kind.Prepare != nil {
		rec = c.kind.Prepare(rec, session, c.now())
	}
	id := rec.RecordID()

	c.mu.Lock()
	if err := c.validate(rec); err != nil {
		c.mu.Unlock()
		return zero, fmt.Errorf("create %s: %w", c.kind.Name, err)
	}
	prevPage := c.page
	if c.kind.Append {
		c.items = append(c.items, rec)
		c.refresh()
		c.page = TotalPages(len(c.filtered), c.pageSize)
	} else {
		c.items = append([]T{rec}, c.items...)
		c.page = 1
		c.refresh()
	}
	c.mu.Unlock()

	saved, err := c.remote.Create(ctx, rec)

	c.mu.Lock()
	if err != nil {
		if i := c.indexOf(id); i >= 0 {
			c.items = slices.Delete(c.items, i, i+1)
		}
		c.page = prevPage
		c.refresh()
		c.mu.Unlock()
		c.logger.Warn("create failed, rolled back", "id", id, "error", err)
		return zero, fmt.Errorf("create %s: %w", c.kind.Name, err)
	}
	if saved.RecordID().IsZero() {
		saved = rec
	}
	// A load that finished while the write was in flight may have replaced
	// the optimistic record with an older list.
	switch i := c.indexOf(id); {
	case i >= 0:
		c.items[i] = saved
	case c.kind.Append:
		c.items = append(c.items, saved)
	default:
		c.items = append([]T{saved}, c.items...)
	}
	c.refresh()
	c.mu.Unlock()

	c.publish(ctx, domain.ActionCreate, saved.RecordID(), saved)
	return saved, nil
}

// Update applies patch to the record with the given id.
func (c *Controller[T]) Update(ctx context.Context, id domain.ID, patch domain.Patch) (T, error) {
	return c.write(ctx, domain.ActionUpdate, id, patch)
}

// SetStatus changes the status field of a record.
func (c *Controller[T]) SetStatus(ctx context.Context, id domain.ID, status string) (T, error) {
	return c.write(ctx, domain.ActionStatus, id, domain.Patch{"status": status})
}

func (c *Controller[T]) write(ctx context.Context, action domain.ChangeAction, id domain.ID, patch domain.Patch) (T, error) {
	var zero T
	session := c.sessions.Current()

	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return zero, fmt.Errorf("%s %s/%s: %w", action, c.kind.Name, id, domain.ErrNotFound)
	}
	prev := c.items[i]

	if !c.kind.WritePolicy(session, prev.OwnerRef(), c.adminEmail) {
		c.mu.Unlock()
		return zero, fmt.Errorf("%s %s/%s: %w", action, c.kind.Name, id, domain.ErrPermission)
	}

	next, err := domain.ApplyPatch(prev, patch)
	if err != nil {
		c.mu.Unlock()
		return zero, fmt.Errorf("%s %s/%s: %w", action, c.kind.Name, id, err)
	}
	if err := c.validate(next); err != nil {
		c.mu.Unlock()
		return zero, fmt.Errorf("%s %s/%s: %w", action, c.kind.Name, id, err)
	}
	c.items[i] = next
	c.refresh()
	c.mu.Unlock()

	saved, err := c.remote.Patch(ctx, id, patch)

	c.mu.Lock()
	if err != nil {
		if j := c.indexOf(id); j >= 0 {
			c.items[j] = prev
		}
		c.refresh()
		c.mu.Unlock()
		c.logger.Warn("write failed, rolled back", "action", action, "id", id, "error", err)
		return zero, fmt.Errorf("%s %s/%s: %w", action, c.kind.Name, id, err)
	}
	if saved.RecordID().IsZero() {
		saved = next
	}
	if j := c.indexOf(id); j >= 0 {
		c.items[j] = saved
	}
	c.refresh()
	c.mu.Unlock()

	c.publish(ctx, action, id, saved)
	return saved, nil
}

// Remove deletes the record with the given id.
func (c *Controller[T]) Remove(ctx context.Context, id domain.ID) error {
	session := c.sessions.Current()

	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return fmt.Errorf("delete %s/%s: %w", c.kind.Name, id, domain.ErrNotFound)
	}
	prev := c.items[i]

	if !c.kind.WritePolicy(session, prev.OwnerRef(), c.adminEmail) {
		c.mu.Unlock()
		return fmt.Errorf("delete %s/%s: %w", c.kind.Name, id, domain.ErrPermission)
	}

	c.items = slices.Delete(c.items, i, i+1)
	c.refresh()
	c.mu.Unlock()

	if err := c.remote.Delete(ctx, id); err != nil {
		c.mu.Lock()
		if c.indexOf(id) < 0 {
			at := min(i, len(c.items))
			c.items = slices.Insert(c.items, at, prev)
		}
		c.refresh()
		c.mu.Unlock()
		c.logger.Warn("delete failed, rolled back", "id", id, "error", err)
		return fmt.Errorf("delete %s/%s: %w", c.kind.Name, id, err)
	}

	c.publish(ctx, domain.ActionDelete, id, nil)
	return nil
}

// Close drops the local state; loads still in flight are discarded.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.loadSeq++
	c.items = nil
	c.filtered = nil
	c.page = 1
	c.loading = false
}

func (c *Controller[T]) validate(rec T) error {
	if c.kind.Validate == nil {
		return nil
	}
	return c.kind.Validate(rec, c.items)
}

// refresh recomputes the filtered view and clamps the page. Callers hold mu.
func (c *Controller[T]) refresh() {
	c.filtered = Apply(c.items, c.filter, c.sessions.Current())
	c.page = ClampPage(c.page, TotalPages(len(c.filtered), c.pageSize))
}

func (c *Controller[T]) indexOf(id domain.ID) int {
	return slices.IndexFunc(c.items, func(it T) bool {
		return domain.SameID(it.RecordID(), id)
	})
}

func (c *Controller[T]) publish(ctx context.Context, action domain.ChangeAction, id domain.ID, rec any) {
	if c.publisher == nil {
		return
	}

	change, err := domain.NewChange(c.kind.Name, action, id, rec)
	if err != nil {
		c.logger.Error("encode change", "id", id, "error", err)
		return
	}
	if err := c.publisher.Publish(ctx, change); err != nil {
		c.logger.Error("publish change", "action", action, "id", id, "error", err)
	}
}
