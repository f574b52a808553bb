package utils

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pasr-server/models"
	"pasr-server/storage"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"
)

type memoryListings struct {
	listings map[uuid.UUID]models.Listing
	err      error
}

func (m *memoryListings) FindListing(ctx context.Context, kind models.ListingKind, id uuid.UUID) (models.Listing, error) {
	if m.err != nil {
		return nil, m.err
	}
	l, ok := m.listings[id]
	if !ok || l.Kind() != kind {
		return nil, storage.ErrNotFound
	}
	return l, nil
}

type memoryReviews map[uuid.UUID]*models.Review

func (m memoryReviews) FindReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	r, ok := m[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return r, nil
}

// testIdentity signs in the customer named by the X-Customer header.
func testIdentity(customers map[string]*models.Customer) iris.Handler {
	return func(ctx iris.Context) {
		if c, ok := customers[ctx.GetHeader("X-Customer")]; ok {
			SetCurrentCustomer(ctx, c)
		}
		ctx.Next()
	}
}

type guardFixture struct {
	app      *iris.Application
	owner    *models.Customer
	stranger *models.Customer
	provider *models.Provider
	review   *models.Review
	writes   int
}

func newGuardFixture(t *testing.T, listingErr error) *guardFixture {
	t.Helper()
	f := &guardFixture{
		owner:    &models.Customer{ID: uuid.New(), Username: "9876543210", Verified: true},
		stranger: &models.Customer{ID: uuid.New(), Username: "9123456780"},
	}
	f.provider = &models.Provider{ID: uuid.New(), OwnerID: f.owner.ID}
	f.review = &models.Review{ID: uuid.New(), AuthorID: f.owner.ID, ListingID: f.provider.ID}

	listings := &memoryListings{listings: map[uuid.UUID]models.Listing{f.provider.ID: f.provider}, err: listingErr}
	reviews := memoryReviews{f.review.ID: f.review}

	app := iris.New()
	app.Use(sessions.New(sessions.Config{Cookie: "test.sid"}).Handler())
	app.Use(testIdentity(map[string]*models.Customer{"owner": f.owner, "stranger": f.stranger}))

	app.Post("/shedule/{id}", Chain(Authenticated(), OwnerOf(models.ProviderListing, listings)), func(ctx iris.Context) {
		if CurrentListing(ctx) == nil {
			t.Error("expected the guard to attach the listing")
		}
		f.writes++
		ctx.StatusCode(iris.StatusNoContent)
	})
	app.Delete("/provider/{id}/reviews/{reviewId}", Chain(Authenticated(), AuthorshipOf(reviews, func(id string) string {
		return "/provider/" + id + "/profile"
	})), func(ctx iris.Context) {
		f.writes++
		ctx.StatusCode(iris.StatusNoContent)
	})
	app.Get("/become/provider", Chain(Authenticated(), VerifiedRole()), func(ctx iris.Context) {
		ctx.StatusCode(iris.StatusNoContent)
	})
	app.Get("/provider/verify", Chain(Authenticated(), AdminAllowlist([]string{"9876543210"})), func(ctx iris.Context) {
		ctx.StatusCode(iris.StatusNoContent)
	})

	if err := app.Build(); err != nil {
		t.Fatalf("build app: %v", err)
	}
	f.app = app
	return f
}

func (f *guardFixture) do(method, path, who string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if who != "" {
		req.Header.Set("X-Customer", who)
	}
	rec := httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)
	return rec
}

func expectRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Fatalf("expected redirect to %s, got %s", location, got)
	}
}

func TestOwnerGuardShortCircuits(t *testing.T) {
	f := newGuardFixture(t, nil)
	path := "/shedule/" + f.provider.ID.String()

	expectRedirect(t, f.do(http.MethodPost, path, ""), "/login")
	expectRedirect(t, f.do(http.MethodPost, path, "stranger"), "/provider/"+f.provider.ID.String()+"/profile")
	expectRedirect(t, f.do(http.MethodPost, "/shedule/not-an-id", "owner"), "/home")
	expectRedirect(t, f.do(http.MethodPost, "/shedule/"+uuid.NewString(), "owner"), "/home")

	if f.writes != 0 {
		t.Fatalf("guarded operation ran %d times after denials", f.writes)
	}

	if rec := f.do(http.MethodPost, path, "owner"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected owner to pass, got %d", rec.Code)
	}
	if f.writes != 1 {
		t.Fatalf("expected exactly one write, got %d", f.writes)
	}
}

func TestOwnerGuardLookupFailure(t *testing.T) {
	f := newGuardFixture(t, errors.New("connection reset"))

	rec := f.do(http.MethodPost, "/shedule/"+f.provider.ID.String(), "owner")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if f.writes != 0 {
		t.Fatal("guarded operation must not run after a guard error")
	}
}

func TestAuthorshipGuard(t *testing.T) {
	f := newGuardFixture(t, nil)
	base := "/provider/" + f.provider.ID.String()

	expectRedirect(t, f.do(http.MethodDelete, base+"/reviews/"+f.review.ID.String(), "stranger"), base+"/profile")
	expectRedirect(t, f.do(http.MethodDelete, base+"/reviews/"+uuid.NewString(), "owner"), base+"/profile")
	if f.writes != 0 {
		t.Fatalf("expected no deletes, got %d", f.writes)
	}

	if rec := f.do(http.MethodDelete, base+"/reviews/"+f.review.ID.String(), "owner"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected author to pass, got %d", rec.Code)
	}
}

func TestVerifiedAndAdminGuards(t *testing.T) {
	f := newGuardFixture(t, nil)

	expectRedirect(t, f.do(http.MethodGet, "/become/provider", "stranger"), "/home")
	if rec := f.do(http.MethodGet, "/become/provider", "owner"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected verified customer to pass, got %d", rec.Code)
	}

	expectRedirect(t, f.do(http.MethodGet, "/provider/verify", "stranger"), "/home")
	expectRedirect(t, f.do(http.MethodGet, "/provider/verify", ""), "/login")
	if rec := f.do(http.MethodGet, "/provider/verify", "owner"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected allowlisted handle to pass, got %d", rec.Code)
	}
}

func TestOwnerRedirectsPerKind(t *testing.T) {
	id := uuid.NewString()
	tests := map[models.ListingKind]ownerRedirects{
		models.ProviderListing: {missing: "/home", notOwner: "/provider/" + id + "/profile"},
		models.ShopListing:     {missing: "/shops", notOwner: "/shops/" + id},
		models.ProductListing:  {missing: "/localMarket", notOwner: "/products/" + id},
	}
	for kind, want := range tests {
		if got := redirectsFor(kind, id); got != want {
			t.Errorf("%s: expected %+v, got %+v", kind, want, got)
		}
	}
}
