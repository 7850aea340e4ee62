// Package view orchestrates user intents into catalog calls and keeps the
// transient UI state of the catalog screen consistent.
package view

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sweetshop/internal/application/access"
	"github.com/jhoicas/sweetshop/internal/application/dto"
	"github.com/jhoicas/sweetshop/internal/application/ports"
	"github.com/jhoicas/sweetshop/internal/application/session"
	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/pkg/logger"
)

// DefaultRestockQuantity is used for an item until the user picks another
// value for it.
const DefaultRestockQuantity = 5

// Controller composes the session store, the catalog client and the access
// policy into the interactive catalog screen. After every mutation it refetches
// the full list with the active filter instead of patching local state: a
// deliberate consistency strategy that keeps the backend the single source of
// truth and eliminates drift between concurrent editors.
//
// The controller serves a single interactive loop and is not safe for
// concurrent use.
type Controller struct {
	session *session.Store
	catalog ports.CatalogAPI
	log     *logger.Logger

	items []entity.Sweet

	// Filter fields are staged here and only take effect on ApplyFilter, so
	// fast typing never triggers a refetch.
	queryDraft    string
	categoryDraft string
	minPriceDraft string
	maxPriceDraft string
	active        dto.FilterCriteria

	// At most one item is in price-edit mode at a time.
	editingID  string
	priceDraft string

	// Pending restock quantity per item id, remembered until the process
	// exits.
	restockQty map[string]int
}

// New builds a controller. Call Refresh once the session is settled to load
// the initial item list.
func New(sess *session.Store, catalog ports.CatalogAPI, log *logger.Logger) *Controller {
	return &Controller{
		session:    sess,
		catalog:    catalog,
		log:        log,
		restockQty: make(map[string]int),
	}
}

// Items returns the currently displayed item list.
func (c *Controller) Items() []entity.Sweet {
	return c.items
}

// IsAdmin reports whether the resolved identity may use the admin-gated
// actions (create, price edit, restock, delete).
func (c *Controller) IsAdmin() bool {
	return access.IsAdmin(c.session.Identity())
}

// Refresh reissues the list query with the active filter and replaces the
// displayed items wholesale. On failure the previous list stays displayed.
func (c *Controller) Refresh(ctx context.Context) error {
	items, err := c.catalog.List(ctx, c.active)
	if err != nil {
		c.log.Warn().Err(err).Msg("refreshing catalog")
		return err
	}
	c.items = items
	return nil
}

// SetFilters stages the filter fields. Nothing is sent until ApplyFilter.
func (c *Controller) SetFilters(query, category, minPrice, maxPrice string) {
	c.queryDraft = strings.TrimSpace(query)
	c.categoryDraft = strings.TrimSpace(category)
	c.minPriceDraft = strings.TrimSpace(minPrice)
	c.maxPriceDraft = strings.TrimSpace(maxPrice)
}

// ApplyFilter turns the staged fields into the active filter and refetches.
// A malformed price bound is a validation failure and no request goes out.
func (c *Controller) ApplyFilter(ctx context.Context) error {
	filter := dto.FilterCriteria{
		Query:    c.queryDraft,
		Category: c.categoryDraft,
	}
	var err error
	if filter.MinPrice, err = parsePriceBound(c.minPriceDraft); err != nil {
		return err
	}
	if filter.MaxPrice, err = parsePriceBound(c.maxPriceDraft); err != nil {
		return err
	}
	c.active = filter
	return c.Refresh(ctx)
}

// ResetFilter drops both the staged fields and the active filter, then
// refetches the unfiltered list.
func (c *Controller) ResetFilter(ctx context.Context) error {
	c.queryDraft, c.categoryDraft, c.minPriceDraft, c.maxPriceDraft = "", "", "", ""
	c.active = dto.FilterCriteria{}
	return c.Refresh(ctx)
}

// ActiveFilter returns the filter currently applied to the displayed list.
func (c *Controller) ActiveFilter() dto.FilterCriteria {
	return c.active
}

// Purchase requests one unit of an item. The stock check against the cached
// list is advisory; the backend rejects the purchase authoritatively when the
// cache was stale.
func (c *Controller) Purchase(ctx context.Context, id string) error {
	item := c.find(id)
	if item == nil {
		return fmt.Errorf("%w: unknown item %q", domain.ErrNotFound, id)
	}
	if !item.InStock() {
		return fmt.Errorf("%w: %s is out of stock", domain.ErrValidation, item.Name)
	}
	if _, err := c.catalog.Purchase(ctx, id, 1); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// Create validates the raw form fields and adds a new item. Non-numeric price
// or quantity never reaches the wire.
func (c *Controller) Create(ctx context.Context, name, category, price, quantity string) error {
	if err := c.requireAdmin(); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)
	if name == "" || category == "" {
		return fmt.Errorf("%w: name and category are required", domain.ErrValidation)
	}
	p, err := parsePrice(price)
	if err != nil {
		return err
	}
	q, err := strconv.Atoi(strings.TrimSpace(quantity))
	if err != nil || q < 0 {
		return fmt.Errorf("%w: quantity must be a non-negative integer", domain.ErrValidation)
	}
	in := dto.CreateSweetRequest{Name: name, Category: category, Price: p, Quantity: q}
	if _, err := c.catalog.Create(ctx, in); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// StartPriceEdit puts an item into price-edit mode, replacing any previous
// edit. The draft starts at the item's current price.
func (c *Controller) StartPriceEdit(id string) error {
	if err := c.requireAdmin(); err != nil {
		return err
	}
	item := c.find(id)
	if item == nil {
		return fmt.Errorf("%w: unknown item %q", domain.ErrNotFound, id)
	}
	c.editingID = id
	c.priceDraft = item.Price.StringFixed(2)
	return nil
}

// EditingID returns the id of the item in price-edit mode, "" when none.
func (c *Controller) EditingID() string {
	return c.editingID
}

// SetPriceDraft replaces the draft value of the active price edit.
func (c *Controller) SetPriceDraft(value string) {
	c.priceDraft = strings.TrimSpace(value)
}

// CommitPriceEdit sends the tracked draft value and leaves edit mode. The
// commit is bound to the draft, never to whatever input happens to hold
// focus.
func (c *Controller) CommitPriceEdit(ctx context.Context) error {
	if err := c.requireAdmin(); err != nil {
		return err
	}
	if c.editingID == "" {
		return fmt.Errorf("%w: no price edit in progress", domain.ErrValidation)
	}
	price, err := parsePrice(c.priceDraft)
	if err != nil {
		return err
	}
	if _, err := c.catalog.UpdatePrice(ctx, c.editingID, price); err != nil {
		return err
	}
	c.editingID, c.priceDraft = "", ""
	return c.Refresh(ctx)
}

// CancelPriceEdit discards the draft without any request.
func (c *Controller) CancelPriceEdit() {
	c.editingID, c.priceDraft = "", ""
}

// SetRestockQuantity remembers the pending restock quantity for an item.
func (c *Controller) SetRestockQuantity(id string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: restock quantity must be a positive integer", domain.ErrValidation)
	}
	c.restockQty[id] = quantity
	return nil
}

// RestockQuantity returns the pending restock quantity for an item.
func (c *Controller) RestockQuantity(id string) int {
	if q, ok := c.restockQty[id]; ok {
		return q
	}
	return DefaultRestockQuantity
}

// Restock increments an item's stock by its pending restock quantity.
func (c *Controller) Restock(ctx context.Context, id string) error {
	if err := c.requireAdmin(); err != nil {
		return err
	}
	if _, err := c.catalog.Restock(ctx, id, c.RestockQuantity(id)); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// Delete removes an item. Without confirmation it is a no-op and no request
// goes out; deletion is irreversible and the confirmation lives at this
// boundary.
func (c *Controller) Delete(ctx context.Context, id string, confirmed bool) error {
	if err := c.requireAdmin(); err != nil {
		return err
	}
	if !confirmed {
		return nil
	}
	if err := c.catalog.Remove(ctx, id); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

func (c *Controller) requireAdmin() error {
	if !c.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

func (c *Controller) find(id string) *entity.Sweet {
	for i := range c.items {
		if c.items[i].ID == id {
			return &c.items[i]
		}
	}
	return nil
}

// parsePrice parses a required, non-negative price.
func parsePrice(s string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: price must be a number", domain.ErrValidation)
	}
	if p.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	return p, nil
}

// parsePriceBound parses an optional price bound, nil when the field is empty.
func parsePriceBound(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	p, err := parsePrice(s)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
