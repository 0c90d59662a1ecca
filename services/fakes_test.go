package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tivrax/storefront/models"
	"github.com/tivrax/storefront/repository"
	"gorm.io/gorm"
)

// ---- products ----

type fakeProductRepo struct {
	products map[uuid.UUID]*models.Product
	err      error
}

func newFakeProductRepo(ps ...*models.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: map[uuid.UUID]*models.Product{}}
	for _, p := range ps {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) FindAll(ctx context.Context, f models.ProductFilter, page, limit int) ([]models.Product, int64, error) {
	out := []models.Product{}
	for _, p := range r.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), r.err
}

func (r *fakeProductRepo) Create(ctx context.Context, p *models.Product) error {
	if r.err != nil {
		return r.err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *models.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.products[p.ID] = p
	return r.err
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) UpsertSizes(ctx context.Context, productID uuid.UUID, sizes []models.ProductSize) error {
	p, ok := r.products[productID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, s := range sizes {
		if existing := p.FindSize(s.Size); existing != nil {
			existing.Stock = s.Stock
			continue
		}
		p.Sizes = append(p.Sizes, models.ProductSize{ProductID: productID, Size: s.Size, Stock: s.Stock})
	}
	return nil
}

// ---- cart ----

type fakeCartRepo struct {
	mu       sync.Mutex
	lines    map[uuid.UUID]*models.CartLine
	products *fakeProductRepo
	seq      int
	err      error
}

func newFakeCartRepo(products *fakeProductRepo) *fakeCartRepo {
	return &fakeCartRepo{lines: map[uuid.UUID]*models.CartLine{}, products: products}
}

func (r *fakeCartRepo) withProduct(l models.CartLine) models.CartLine {
	if p, ok := r.products.products[l.ProductID]; ok {
		cp := *p
		l.Product = &cp
	}
	return l
}

func (r *fakeCartRepo) FindByUser(ctx context.Context, userID string) ([]models.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := []models.CartLine{}
	for _, l := range r.lines {
		if l.UserID == userID {
			out = append(out, r.withProduct(*l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeCartRepo) FindLine(ctx context.Context, userID string, lineID uuid.UUID) (*models.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lines[lineID]
	if !ok || l.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := r.withProduct(*l)
	return &cp, nil
}

func (r *fakeCartRepo) FindByProductSize(ctx context.Context, userID string, productID uuid.UUID, size string) (*models.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lines {
		if l.UserID == userID && l.ProductID == productID && l.Size == size {
			cp := *l
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCartRepo) Create(ctx context.Context, line *models.CartLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.seq++
	line.ID = uuid.New()
	line.CreatedAt = time.Unix(int64(r.seq), 0)
	cp := *line
	r.lines[line.ID] = &cp
	return nil
}

func (r *fakeCartRepo) UpdateQuantity(ctx context.Context, userID string, lineID uuid.UUID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lines[lineID]
	if !ok || l.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	l.Quantity = quantity
	return nil
}

func (r *fakeCartRepo) UpdateSize(ctx context.Context, userID string, lineID uuid.UUID, size string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lines[lineID]
	if !ok || l.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	l.Size = size
	return nil
}

func (r *fakeCartRepo) deleteIfUnchanged(userID string, want models.OrderedCartLine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.lines[want.ID]; ok && l.UserID == userID && l.Size == want.Size && l.Quantity == want.Quantity {
		delete(r.lines, want.ID)
	}
}

func (r *fakeCartRepo) DeleteLine(ctx context.Context, userID string, lineID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lines[lineID]
	if !ok || l.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(r.lines, lineID)
	return nil
}

func (r *fakeCartRepo) DeleteByUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, l := range r.lines {
		if l.UserID == userID {
			delete(r.lines, id)
		}
	}
	return nil
}

// ---- orders ----

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    []models.Order
	cart      *fakeCartRepo
	placeErr  error
	placeCall int
}

func (r *fakeOrderRepo) PlaceOrders(ctx context.Context, orders []models.Order, userID string, ordered []models.OrderedCartLine) error {
	r.mu.Lock()
	r.placeCall++
	if r.placeErr != nil {
		r.mu.Unlock()
		return r.placeErr
	}
	r.orders = append(r.orders, orders...)
	r.mu.Unlock()
	if r.cart != nil {
		for _, l := range ordered {
			r.cart.deleteIfUnchanged(userID, l)
		}
	}
	return nil
}

func (r *fakeOrderRepo) FindByCheckoutID(ctx context.Context, checkoutID uuid.UUID) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if o.CheckoutID == checkoutID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) FindByUserID(ctx context.Context, userID string, page, limit int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) FindByIDForUser(ctx context.Context, userID string, id uuid.UUID) (*models.Order, error) {
	for i := range r.orders {
		if r.orders[i].ID == id && r.orders[i].UserID == userID {
			o := r.orders[i]
			return &o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	for i := range r.orders {
		if r.orders[i].ID == id {
			o := r.orders[i]
			return &o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) FindAll(ctx context.Context, status string, page, limit int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range r.orders {
		if status == "" || o.OrderStatus == status {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders[i].OrderStatus = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) UpdateStatusByPaymentReference(ctx context.Context, ref, status string) ([]models.Order, error) {
	var before []models.Order
	for i := range r.orders {
		if r.orders[i].PaymentReference == ref {
			before = append(before, r.orders[i])
			r.orders[i].OrderStatus = status
		}
	}
	return before, nil
}

func (r *fakeOrderRepo) UpdateRating(ctx context.Context, userID string, id uuid.UUID, rating int) error {
	for i := range r.orders {
		if r.orders[i].ID == id && r.orders[i].UserID == userID {
			r.orders[i].Rating = &rating
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ---- checkout sessions ----

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]models.CheckoutSession
	locks    map[uuid.UUID]bool
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[uuid.UUID]models.CheckoutSession{}, locks: map[uuid.UUID]bool{}}
}

func (f *fakeSessionStore) Save(ctx context.Context, s *models.CheckoutSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = *s
	return nil
}

func (f *fakeSessionStore) Get(ctx context.Context, id uuid.UUID) (*models.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &s, nil
}

func (f *fakeSessionStore) AcquireConfirmLock(ctx context.Context, id uuid.UUID, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.locks[id] {
		return false, nil
	}
	f.locks[id] = true
	return true, nil
}

func (f *fakeSessionStore) ReleaseConfirmLock(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.locks, id)
	return nil
}

// ---- wishlist ----

type fakeWishlistRepo struct {
	entries map[string]models.WishlistEntry
}

func newFakeWishlistRepo() *fakeWishlistRepo {
	return &fakeWishlistRepo{entries: map[string]models.WishlistEntry{}}
}

func wishKey(userID string, productID uuid.UUID) string { return userID + "/" + productID.String() }

func (f *fakeWishlistRepo) Exists(ctx context.Context, userID string, productID uuid.UUID) (bool, error) {
	_, ok := f.entries[wishKey(userID, productID)]
	return ok, nil
}

func (f *fakeWishlistRepo) Add(ctx context.Context, e *models.WishlistEntry) error {
	f.entries[wishKey(e.UserID, e.ProductID)] = *e
	return nil
}

func (f *fakeWishlistRepo) FindByUser(ctx context.Context, userID string) ([]models.WishlistEntry, error) {
	var out []models.WishlistEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeWishlistRepo) Delete(ctx context.Context, userID string, productID uuid.UUID) error {
	k := wishKey(userID, productID)
	if _, ok := f.entries[k]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.entries, k)
	return nil
}

// ---- events ----

type publishedEvent struct {
	eventType string
	key       string
	payload   interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{eventType, key, payload})
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		out = append(out, e.eventType)
	}
	return out
}

var errBoom = errors.New("boom")
