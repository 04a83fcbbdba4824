package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maxviazov/fabricare-service/internal/model"
	"github.com/maxviazov/fabricare-service/internal/pagination"
	"github.com/maxviazov/fabricare-service/internal/repository"
)

// Repos bundles every repository of one backend so suites can seed related rows.
type Repos struct {
	Users    repository.UserRepository
	Artists  repository.ArtistRepository
	Products repository.ProductRepository
	Carts    repository.CartRepository
	Orders   repository.OrderRepository
	Tx       repository.TxManager
}

type ReposFactory func(t *testing.T) (Repos, func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

func seedUser(t *testing.T, r Repos, username string, role string) model.User {
	t.Helper()
	u, err := r.Users.Create(context.Background(), model.User{
		FirstName: "Test", LastName: "User", Username: username,
		Email: username + "@example.com", Role: role, PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

func seedArtist(t *testing.T, r Repos, name string) model.Artist {
	t.Helper()
	a, err := r.Artists.Create(context.Background(), model.Artist{
		Name: name, Description: "hand printed textiles", Website: "https://example.com",
	})
	if err != nil {
		t.Fatalf("seed artist %s: %v", name, err)
	}
	return a
}

func seedProduct(t *testing.T, r Repos, artist model.Artist, title string, price int) model.Product {
	t.Helper()
	p, err := r.Products.Create(context.Background(), model.Product{
		Title: title, Deadline: 30, Goal: 10, Price: price, ArtistID: artist.ID,
		SubImages: []string{"a.png"}, Sizes: []string{"S", "M"}, Quantity: 5,
	})
	if err != nil {
		t.Fatalf("seed product %s: %v", title, err)
	}
	return p
}

func RunUserRepositoryContract(t *testing.T, makeRepos ReposFactory) {
	t.Helper()

	t.Run("create_and_lookup", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created := seedUser(t, r, "alice", model.RoleClient)
		if created.Avatar == "" || created.Timestamp.IsZero() {
			t.Fatalf("derived fields missing: %+v", created)
		}
		byName, err := r.Users.GetByUsername(ctx, "alice")
		if err != nil || byName.ID != created.ID {
			t.Fatalf("get by username: %+v %v", byName, err)
		}
		byEmail, err := r.Users.GetByEmail(ctx, "alice@example.com")
		if err != nil || byEmail.ID != created.ID {
			t.Fatalf("get by email: %+v %v", byEmail, err)
		}
	})

	t.Run("duplicate_username", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		seedUser(t, r, "bob", model.RoleClient)
		_, err := r.Users.Create(context.Background(), model.User{
			FirstName: "B", LastName: "B", Username: "bob", Email: "other@example.com", PasswordHash: "x",
		})
		if !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("list_customers_excludes_admins", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		seedUser(t, r, "root", model.RoleAdmin)
		seedUser(t, r, "carol", model.RoleClient)
		seedUser(t, r, "dave", model.RoleModerator)
		total, err := r.Users.ListCustomers().Count(context.Background(), nil)
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if total != 2 {
			t.Fatalf("expected 2 customers, got %d", total)
		}
	})

	t.Run("delete_not_found", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		if err := r.Users.Delete(context.Background(), 999999); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func RunListQueryContract(t *testing.T, makeRepos ReposFactory) {
	t.Helper()

	t.Run("window_and_bounds", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for _, name := range []string{"A1", "A2", "A3", "A4", "A5"} {
			seedArtist(t, r, name)
			time.Sleep(2 * time.Millisecond)
		}
		q := r.Artists.List()
		total, err := q.Count(ctx, nil)
		if err != nil || total != 5 {
			t.Fatalf("count: %d %v", total, err)
		}
		page, err := q.Fetch(ctx, pagination.Window{OrderBy: "timestamp", Desc: true, Limit: 2, Offset: 1})
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if len(page) != 2 || page[0].Name != "A4" || page[1].Name != "A3" {
			t.Fatalf("unexpected window: %+v", page)
		}
		after := &pagination.Bound{Column: "timestamp", Op: pagination.OpLt, Value: page[0].Timestamp}
		rest, err := q.Fetch(ctx, pagination.Window{OrderBy: "timestamp", Desc: true, Bound: after, Limit: 10})
		if err != nil {
			t.Fatalf("fetch after: %v", err)
		}
		if len(rest) != 3 || rest[0].Name != "A3" {
			t.Fatalf("unexpected cursor page: %+v", rest)
		}
		upTo, err := q.Count(ctx, &pagination.Bound{Column: "timestamp", Op: pagination.OpGe, Value: page[0].Timestamp})
		if err != nil || upTo != 2 {
			t.Fatalf("bounded count: %d %v", upTo, err)
		}
	})

	t.Run("unknown_order_column", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		if _, err := r.Artists.List().Fetch(context.Background(), pagination.Window{OrderBy: "name; drop", Limit: 1}); err == nil {
			t.Fatalf("expected error for unknown order column")
		}
	})
}

func RunCatalogContract(t *testing.T, makeRepos ReposFactory) {
	t.Helper()

	t.Run("product_roundtrip", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		artist := seedArtist(t, r, "Weaver")
		p := seedProduct(t, r, artist, "Linen Shirt", 40)
		if p.ArtistName != "Weaver" || len(p.Sizes) != 2 || p.DaysLeft == 0 {
			t.Fatalf("unexpected product: %+v", p)
		}
		p.Price = 45
		p.Sizes = nil
		updated, err := r.Products.Update(ctx, p)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Price != 45 || updated.Sizes == nil || len(updated.Sizes) != 0 {
			t.Fatalf("update not applied: %+v", updated)
		}
		ids, err := r.Products.IDsByTitles(ctx, []string{"Linen Shirt", "missing"})
		if err != nil || len(ids) != 1 || ids[0] != p.ID {
			t.Fatalf("ids by titles: %v %v", ids, err)
		}
		n, err := r.Products.ListByArtist(artist.ID).Count(ctx, nil)
		if err != nil || n != 1 {
			t.Fatalf("list by artist: %d %v", n, err)
		}
	})

	t.Run("artist_names_newest_first", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		seedArtist(t, r, "First")
		time.Sleep(2 * time.Millisecond)
		seedArtist(t, r, "Second")
		names, err := r.Artists.Names(context.Background())
		if err != nil || len(names) != 2 || names[0] != "Second" {
			t.Fatalf("names: %v %v", names, err)
		}
	})

	t.Run("product_requires_artist", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		_, err := r.Products.Create(context.Background(), model.Product{Title: "Orphan", Deadline: 1, Goal: 1, ArtistID: 424242})
		if !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})
}

func RunCartRepositoryContract(t *testing.T, makeRepos ReposFactory) {
	t.Helper()

	t.Run("add_increments_and_totals", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		u := seedUser(t, r, "erin", model.RoleClient)
		a := seedArtist(t, r, "Dyer")
		shirt := seedProduct(t, r, a, "Shirt", 20)
		scarf := seedProduct(t, r, a, "Scarf", 15)

		if _, err := r.Carts.Add(ctx, u.ID, shirt.ID, "M"); err != nil {
			t.Fatalf("add: %v", err)
		}
		line, err := r.Carts.Add(ctx, u.ID, shirt.ID, "M")
		if err != nil {
			t.Fatalf("add again: %v", err)
		}
		if line.Quantity != 2 || line.TotalPrice != 40 || line.Customer.Username != "erin" {
			t.Fatalf("unexpected line: %+v", line)
		}
		if _, err := r.Carts.Add(ctx, u.ID, scarf.ID, ""); err != nil {
			t.Fatalf("add scarf: %v", err)
		}
		total, err := r.Carts.Total(ctx, u.ID)
		if err != nil || !total.Equal(decimal.NewFromInt(55)) {
			t.Fatalf("total: %s %v", total, err)
		}
		qty, err := r.Carts.QuantityInCart(ctx, u.ID, shirt.ID)
		if err != nil || qty != 2 {
			t.Fatalf("quantity in cart: %d %v", qty, err)
		}
		owner, err := r.Users.GetByID(ctx, u.ID)
		if err != nil || owner.CartSize != 2 {
			t.Fatalf("cart size: %+v %v", owner, err)
		}
	})

	t.Run("delete_scoped_to_customer", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		owner := seedUser(t, r, "frank", model.RoleClient)
		other := seedUser(t, r, "grace", model.RoleClient)
		p := seedProduct(t, r, seedArtist(t, r, "Knitter"), "Hat", 10)
		line, err := r.Carts.Add(ctx, owner.ID, p.ID, "")
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if err := r.Carts.DeleteForCustomer(ctx, other.ID, line.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for foreign line, got %v", err)
		}
		if err := r.Carts.DeleteForCustomer(ctx, owner.ID, line.ID); err != nil {
			t.Fatalf("delete own line: %v", err)
		}
	})

	t.Run("clear", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		u := seedUser(t, r, "heidi", model.RoleClient)
		p := seedProduct(t, r, seedArtist(t, r, "Potter"), "Mug", 12)
		if _, err := r.Carts.Add(ctx, u.ID, p.ID, ""); err != nil {
			t.Fatalf("add: %v", err)
		}
		n, err := r.Carts.Clear(ctx, u.ID)
		if err != nil || n != 1 {
			t.Fatalf("clear: %d %v", n, err)
		}
		items, err := r.Carts.ItemsForCustomer(ctx, u.ID)
		if err != nil || len(items) != 0 {
			t.Fatalf("items after clear: %v %v", items, err)
		}
	})
}

func RunOrderRepositoryContract(t *testing.T, makeRepos ReposFactory) {
	t.Helper()

	t.Run("create_with_products", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		u := seedUser(t, r, "ivan", model.RoleClient)
		p := seedProduct(t, r, seedArtist(t, r, "Tailor"), "Coat", 120)
		o, err := r.Orders.Create(ctx, model.Order{
			Price: decimal.RequireFromString("132.50"), Status: "complete", PaymentID: "cs_test_1", CustomerID: u.ID,
		}, []int64{p.ID})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if !o.Price.Equal(decimal.RequireFromString("132.5")) || len(o.Products) != 1 || o.Products[0].Title != "Coat" {
			t.Fatalf("unexpected order: %+v", o)
		}
		if o.Customer.Username != "ivan" {
			t.Fatalf("customer not joined: %+v", o.Customer)
		}
	})
}

func RunTxManagerContract(t *testing.T, makeRepos ReposFactory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID int64
		err := r.Tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := r.Artists.Create(ctx, model.Artist{Name: "TxCommit"})
			if err != nil {
				return err
			}
			createdID = out.ID
			return nil
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if _, err := r.Artists.GetByID(ctx, createdID); err != nil {
			t.Fatalf("expected committed row visible, got err=%v", err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID int64
		errMarker := errors.New("boom")
		err := r.Tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := r.Artists.Create(ctx, model.Artist{Name: "TxRollback"})
			if err != nil {
				return err
			}
			createdID = out.ID
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := r.Artists.GetByID(ctx, createdID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after rollback, got %v", err)
		}
	})

	t.Run("nested_joins_outer", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var innerID int64
		errMarker := errors.New("outer failed")
		err := r.Tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := r.Tx.WithinTx(ctx, func(ctx context.Context) error {
				out, err := r.Artists.Create(ctx, model.Artist{Name: "TxNested"})
				innerID = out.ID
				return err
			}); err != nil {
				return err
			}
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := r.Artists.GetByID(ctx, innerID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("inner write should roll back with the outer tx, got %v", err)
		}
	})

	t.Run("rollback_on_panic", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID int64
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic to propagate")
				}
			}()
			_ = r.Tx.WithinTx(ctx, func(ctx context.Context) error {
				out, err := r.Artists.Create(ctx, model.Artist{Name: "TxPanic"})
				if err != nil {
					return err
				}
				createdID = out.ID
				panic("boom")
			})
		}()
		if _, err := r.Artists.GetByID(ctx, createdID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after panic, got %v", err)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}
