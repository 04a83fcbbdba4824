package service_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/maxviazov/fabricare-service/internal/cache"
	"github.com/maxviazov/fabricare-service/internal/model"
	"github.com/maxviazov/fabricare-service/internal/pagination"
	"github.com/maxviazov/fabricare-service/internal/payment"
	"github.com/maxviazov/fabricare-service/internal/repository"
	"github.com/maxviazov/fabricare-service/internal/service"
)

var (
	discard   = zerolog.New(io.Discard)
	lists     = service.ListSettings{MaxLimit: 25, CacheTTL: time.Minute}
	baseClock = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

// sliceQuery is an in-memory pagination.Query ordered by timestamp.
type sliceQuery[T any] struct {
	rows    []T
	ts      func(T) time.Time
	fetches *int
}

func (q sliceQuery[T]) match(row T, b *pagination.Bound) bool {
	if b == nil {
		return true
	}
	v, at := q.ts(row), b.Value.(time.Time)
	switch b.Op {
	case pagination.OpGt:
		return v.After(at)
	case pagination.OpLt:
		return v.Before(at)
	case pagination.OpGe:
		return !v.Before(at)
	case pagination.OpLe:
		return !v.After(at)
	}
	return false
}

func (q sliceQuery[T]) Count(_ context.Context, b *pagination.Bound) (int, error) {
	n := 0
	for _, r := range q.rows {
		if q.match(r, b) {
			n++
		}
	}
	return n, nil
}

func (q sliceQuery[T]) Fetch(_ context.Context, w pagination.Window) ([]T, error) {
	if q.fetches != nil {
		*q.fetches++
	}
	var out []T
	for _, r := range q.rows {
		if q.match(r, w.Bound) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if w.Desc {
			return q.ts(out[i]).After(q.ts(out[j]))
		}
		return q.ts(out[i]).Before(q.ts(out[j]))
	})
	if w.Offset >= len(out) {
		return []T{}, nil
	}
	out = out[w.Offset:]
	if len(out) > w.Limit {
		out = out[:w.Limit]
	}
	return out, nil
}

// spyCache is a working in-memory cache that counts flushes.
type spyCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	flushes int
}

func newSpyCache() *spyCache { return &spyCache{entries: map[string][]byte{}} }

func (c *spyCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return b, nil
}

func (c *spyCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *spyCache) Flush(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string][]byte{}
	c.flushes++
	return nil
}

// ---- users

type fakeUsers struct {
	nextID  int64
	items   map[int64]model.User
	fetches int
}

func newFakeUsers() *fakeUsers { return &fakeUsers{nextID: 1, items: map[int64]model.User{}} }

func (f *fakeUsers) Create(_ context.Context, u model.User) (model.User, error) {
	for _, it := range f.items {
		if it.Username == u.Username || it.Email == u.Email {
			return model.User{}, repository.ErrAlreadyExists
		}
	}
	u.ID = f.nextID
	u.Timestamp = baseClock.Add(time.Duration(f.nextID) * time.Minute)
	u.Avatar = model.GravatarURL(u.Email, 128)
	f.nextID++
	f.items[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (model.User, error) {
	u, ok := f.items[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) find(pred func(model.User) bool) (model.User, error) {
	for _, u := range f.items {
		if pred(u) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (model.User, error) {
	return f.find(func(u model.User) bool { return u.Username == username })
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	return f.find(func(u model.User) bool { return u.Email == email })
}

func (f *fakeUsers) Update(_ context.Context, u model.User) (model.User, error) {
	if _, ok := f.items[u.ID]; !ok {
		return model.User{}, repository.ErrNotFound
	}
	f.items[u.ID] = u
	return u, nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeUsers) ListCustomers() pagination.Query[model.User] {
	var rows []model.User
	for _, u := range f.items {
		if u.Role != model.RoleAdmin {
			rows = append(rows, u)
		}
	}
	return sliceQuery[model.User]{rows: rows, ts: func(u model.User) time.Time { return u.Timestamp }, fetches: &f.fetches}
}

// ---- artists

type fakeArtists struct {
	nextID int64
	items  map[int64]model.Artist
}

func newFakeArtists() *fakeArtists { return &fakeArtists{nextID: 1, items: map[int64]model.Artist{}} }

func (f *fakeArtists) Create(_ context.Context, a model.Artist) (model.Artist, error) {
	for _, it := range f.items {
		if it.Name == a.Name {
			return model.Artist{}, repository.ErrAlreadyExists
		}
	}
	a.ID = f.nextID
	a.Timestamp = baseClock.Add(time.Duration(f.nextID) * time.Minute)
	f.nextID++
	f.items[a.ID] = a
	return a, nil
}

func (f *fakeArtists) GetByID(_ context.Context, id int64) (model.Artist, error) {
	a, ok := f.items[id]
	if !ok {
		return model.Artist{}, repository.ErrNotFound
	}
	return a, nil
}

func (f *fakeArtists) GetByName(_ context.Context, name string) (model.Artist, error) {
	for _, a := range f.items {
		if a.Name == name {
			return a, nil
		}
	}
	return model.Artist{}, repository.ErrNotFound
}

func (f *fakeArtists) Names(context.Context) ([]string, error) {
	var all []model.Artist
	for _, a := range f.items {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Timestamp.After(all[j].Timestamp) })
	var names []string
	for _, a := range all {
		names = append(names, a.Name)
	}
	return names, nil
}

func (f *fakeArtists) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeArtists) List() pagination.Query[model.Artist] {
	var rows []model.Artist
	for _, a := range f.items {
		rows = append(rows, a)
	}
	return sliceQuery[model.Artist]{rows: rows, ts: func(a model.Artist) time.Time { return a.Timestamp }}
}

// ---- products

type fakeProducts struct {
	nextID int64
	items  map[int64]model.Product
}

func newFakeProducts() *fakeProducts { return &fakeProducts{nextID: 1, items: map[int64]model.Product{}} }

func (f *fakeProducts) Create(_ context.Context, p model.Product) (model.Product, error) {
	p.ID = f.nextID
	p.Timestamp = baseClock.Add(time.Duration(f.nextID) * time.Minute)
	f.nextID++
	f.items[p.ID] = p
	return p, nil
}

func (f *fakeProducts) GetByID(_ context.Context, id int64) (model.Product, error) {
	p, ok := f.items[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeProducts) Update(_ context.Context, p model.Product) (model.Product, error) {
	if _, ok := f.items[p.ID]; !ok {
		return model.Product{}, repository.ErrNotFound
	}
	f.items[p.ID] = p
	return p, nil
}

func (f *fakeProducts) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeProducts) IDsByTitles(_ context.Context, titles []string) ([]int64, error) {
	var ids []int64
	for _, t := range titles {
		for _, p := range f.items {
			if p.Title == t {
				ids = append(ids, p.ID)
			}
		}
	}
	return ids, nil
}

func (f *fakeProducts) rows(keep func(model.Product) bool) pagination.Query[model.Product] {
	var rows []model.Product
	for _, p := range f.items {
		if keep(p) {
			rows = append(rows, p)
		}
	}
	return sliceQuery[model.Product]{rows: rows, ts: func(p model.Product) time.Time { return p.Timestamp }}
}

func (f *fakeProducts) List() pagination.Query[model.Product] {
	return f.rows(func(model.Product) bool { return true })
}

func (f *fakeProducts) ListByArtist(artistID int64) pagination.Query[model.Product] {
	return f.rows(func(p model.Product) bool { return p.ArtistID == artistID })
}

// ---- carts

type fakeCarts struct {
	nextID   int64
	items    map[int64]model.CartItem
	products *fakeProducts
}

func newFakeCarts(products *fakeProducts) *fakeCarts {
	return &fakeCarts{nextID: 1, items: map[int64]model.CartItem{}, products: products}
}

func (f *fakeCarts) Add(ctx context.Context, customerID, productID int64, size string) (model.CartItem, error) {
	p, err := f.products.GetByID(ctx, productID)
	if err != nil {
		return model.CartItem{}, repository.ErrConflict
	}
	for id, it := range f.items {
		if it.CustomerID == customerID && it.ProductID == productID {
			it.Quantity++
			it.TotalPrice = it.Quantity * it.Product.Price
			f.items[id] = it
			return it, nil
		}
	}
	it := model.CartItem{
		ID: f.nextID, Quantity: 1, Size: size, CustomerID: customerID, ProductID: productID,
		Product:    model.ProductSummary{ID: p.ID, Title: p.Title, Price: p.Price},
		Customer:   model.UserSummary{ID: customerID},
		TotalPrice: p.Price,
		Timestamp:  baseClock.Add(time.Duration(f.nextID) * time.Minute),
	}
	f.items[it.ID] = it
	f.nextID++
	return it, nil
}

func (f *fakeCarts) GetByID(_ context.Context, id int64) (model.CartItem, error) {
	it, ok := f.items[id]
	if !ok {
		return model.CartItem{}, repository.ErrNotFound
	}
	return it, nil
}

func (f *fakeCarts) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeCarts) DeleteForCustomer(_ context.Context, customerID, id int64) error {
	it, ok := f.items[id]
	if !ok || it.CustomerID != customerID {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeCarts) mine(customerID int64) []model.CartItem {
	var out []model.CartItem
	for _, it := range f.items {
		if it.CustomerID == customerID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeCarts) ItemsForCustomer(_ context.Context, customerID int64) ([]model.CartItem, error) {
	return f.mine(customerID), nil
}

func (f *fakeCarts) QuantityInCart(_ context.Context, customerID, productID int64) (int, error) {
	n := 0
	for _, it := range f.mine(customerID) {
		if it.ProductID == productID {
			n += it.Quantity
		}
	}
	return n, nil
}

func (f *fakeCarts) Clear(_ context.Context, customerID int64) (int, error) {
	items := f.mine(customerID)
	for _, it := range items {
		delete(f.items, it.ID)
	}
	return len(items), nil
}

func (f *fakeCarts) Total(_ context.Context, customerID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, it := range f.mine(customerID) {
		total = total.Add(decimal.NewFromInt(int64(it.Quantity * it.Product.Price)))
	}
	return total, nil
}

func cartQuery(rows []model.CartItem) pagination.Query[model.CartItem] {
	return sliceQuery[model.CartItem]{rows: rows, ts: func(c model.CartItem) time.Time { return c.Timestamp }}
}

func (f *fakeCarts) List() pagination.Query[model.CartItem] {
	var rows []model.CartItem
	for _, it := range f.items {
		rows = append(rows, it)
	}
	return cartQuery(rows)
}

func (f *fakeCarts) ListByCustomer(customerID int64) pagination.Query[model.CartItem] {
	return cartQuery(f.mine(customerID))
}

// ---- orders

type fakeOrders struct {
	nextID  int64
	items   map[int64]model.Order
	linked  map[int64][]int64
	failErr error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{nextID: 1, items: map[int64]model.Order{}, linked: map[int64][]int64{}}
}

func (f *fakeOrders) Create(_ context.Context, o model.Order, productIDs []int64) (model.Order, error) {
	if f.failErr != nil {
		return model.Order{}, f.failErr
	}
	o.ID = f.nextID
	o.Timestamp = baseClock.Add(time.Duration(f.nextID) * time.Minute)
	f.nextID++
	f.items[o.ID] = o
	f.linked[o.ID] = productIDs
	return o, nil
}

func (f *fakeOrders) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeOrders) List() pagination.Query[model.Order] {
	var rows []model.Order
	for _, o := range f.items {
		rows = append(rows, o)
	}
	return sliceQuery[model.Order]{rows: rows, ts: func(o model.Order) time.Time { return o.Timestamp }}
}

// fakeTx runs the unit of work inline; it cannot roll back, tests only assert what was attempted.
type fakeTx struct{ calls int }

func (f *fakeTx) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	f.calls++
	return fn(ctx)
}

// ---- payment gateway

type mockGateway struct{ mock.Mock }

func (m *mockGateway) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) ParseEvent(payload []byte, signature string) (payment.Event, error) {
	args := m.Called(payload, signature)
	return args.Get(0).(payment.Event), args.Error(1)
}

func (m *mockGateway) GetSession(ctx context.Context, id string) (payment.Session, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(payment.Session), args.Error(1)
}

var (
	_ repository.UserRepository    = (*fakeUsers)(nil)
	_ repository.ArtistRepository  = (*fakeArtists)(nil)
	_ repository.ProductRepository = (*fakeProducts)(nil)
	_ repository.CartRepository    = (*fakeCarts)(nil)
	_ repository.OrderRepository   = (*fakeOrders)(nil)
	_ repository.TxManager         = (*fakeTx)(nil)
	_ payment.Gateway              = (*mockGateway)(nil)
	_ cache.Cache                  = (*spyCache)(nil)
)
