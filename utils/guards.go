package utils

import (
	"context"
	"errors"
	"fmt"

	"pasr-server/models"
	"pasr-server/storage"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
)

// Decision is the outcome of one guard. A denied decision carries where to
// send the client and what to tell them.
type Decision struct {
	Allowed  bool
	Redirect string
	Message  string
}

func Pass() Decision {
	return Decision{Allowed: true}
}

func Deny(redirect, message string) Decision {
	return Decision{Redirect: redirect, Message: message}
}

// Guard checks one authorization rule. It must not write anything when it
// denies; on success it may attach what it loaded to the request values.
type Guard interface {
	Evaluate(ctx iris.Context) (Decision, error)
}

type GuardFunc func(ctx iris.Context) (Decision, error)

func (f GuardFunc) Evaluate(ctx iris.Context) (Decision, error) {
	return f(ctx)
}

// Chain runs guards in order and stops at the first denial, which is
// flashed and redirected. The next handler runs only if every guard passes.
func Chain(guards ...Guard) iris.Handler {
	return func(ctx iris.Context) {
		for _, g := range guards {
			d, err := g.Evaluate(ctx)
			if err != nil {
				InternalError(ctx, err, "authorization")
				ctx.StopExecution()
				return
			}
			if !d.Allowed {
				Fail(ctx, d.Redirect, d.Message)
				return
			}
		}
		ctx.Next()
	}
}

const (
	listingValueKey = "listing"
	reviewValueKey  = "review"
)

func Authenticated() Guard {
	return GuardFunc(func(ctx iris.Context) (Decision, error) {
		if CurrentCustomer(ctx) == nil {
			return Deny("/login", "You must be logged in to see all services."), nil
		}
		return Pass(), nil
	})
}

// VerifiedRole requires the signed-in customer to be explicitly verified.
func VerifiedRole() Guard {
	return GuardFunc(func(ctx iris.Context) (Decision, error) {
		c := CurrentCustomer(ctx)
		if c == nil {
			return Deny("/login", "Please login first."), nil
		}
		if !c.Verified {
			return Deny("/home", "You are not verified yet."), nil
		}
		return Pass(), nil
	})
}

// AdminAllowlist admits customers whose handle is one of handles.
func AdminAllowlist(handles []string) Guard {
	allowed := make(map[string]bool, len(handles))
	for _, h := range handles {
		allowed[h] = true
	}
	return GuardFunc(func(ctx iris.Context) (Decision, error) {
		c := CurrentCustomer(ctx)
		if c == nil || !allowed[c.Username] {
			return Deny("/home", "Only admin have access of this route"), nil
		}
		return Pass(), nil
	})
}

type ListingFinder interface {
	FindListing(ctx context.Context, kind models.ListingKind, id uuid.UUID) (models.Listing, error)
}

type ownerRedirects struct {
	missing  string
	notOwner string
}

func redirectsFor(kind models.ListingKind, id string) ownerRedirects {
	switch kind {
	case models.ShopListing:
		return ownerRedirects{missing: "/shops", notOwner: "/shops/" + id}
	case models.ProductListing:
		return ownerRedirects{missing: "/localMarket", notOwner: "/products/" + id}
	default:
		return ownerRedirects{missing: "/home", notOwner: "/provider/" + id + "/profile"}
	}
}

// OwnerOf requires the signed-in customer to own the listing named by the
// "id" path parameter. The loaded listing is available through
// CurrentListing afterwards.
func OwnerOf(kind models.ListingKind, finder ListingFinder) Guard {
	return GuardFunc(func(ctx iris.Context) (Decision, error) {
		raw := ctx.Params().Get("id")
		to := redirectsFor(kind, raw)

		id, err := uuid.Parse(raw)
		if err != nil {
			return Deny(to.missing, fmt.Sprintf("Invalid %s ID", kind.Label())), nil
		}
		listing, err := finder.FindListing(ctx.Request().Context(), kind, id)
		if errors.Is(err, storage.ErrNotFound) {
			return Deny(to.missing, fmt.Sprintf("%s not found", kind.Label())), nil
		}
		if err != nil {
			return Decision{}, fmt.Errorf("load %s %s: %w", kind, id, err)
		}

		c := CurrentCustomer(ctx)
		if c == nil || listing.ListingOwner() != c.ID {
			return Deny(to.notOwner, "You are not the owner."), nil
		}
		ctx.Values().Set(listingValueKey, listing)
		return Pass(), nil
	})
}

func CurrentListing(ctx iris.Context) models.Listing {
	l, _ := ctx.Values().Get(listingValueKey).(models.Listing)
	return l
}

type ReviewFinder interface {
	FindReview(ctx context.Context, id uuid.UUID) (*models.Review, error)
}

// AuthorshipOf requires the signed-in customer to have written the review
// named by the "reviewId" path parameter. back builds the redirect target
// from the "id" path parameter.
func AuthorshipOf(finder ReviewFinder, back func(id string) string) Guard {
	return GuardFunc(func(ctx iris.Context) (Decision, error) {
		to := back(ctx.Params().Get("id"))

		id, err := uuid.Parse(ctx.Params().Get("reviewId"))
		if err != nil {
			return Deny(to, "Review not found"), nil
		}
		review, err := finder.FindReview(ctx.Request().Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			return Deny(to, "Review not found"), nil
		}
		if err != nil {
			return Decision{}, fmt.Errorf("load review %s: %w", id, err)
		}

		c := CurrentCustomer(ctx)
		if c == nil || review.AuthorID != c.ID {
			return Deny(to, "Only review owner can delete this review."), nil
		}
		ctx.Values().Set(reviewValueKey, review)
		return Pass(), nil
	})
}

func CurrentReview(ctx iris.Context) *models.Review {
	r, _ := ctx.Values().Get(reviewValueKey).(*models.Review)
	return r
}
