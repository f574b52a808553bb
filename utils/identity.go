package utils

import (
	"context"
	"errors"

	"pasr-server/models"
	"pasr-server/storage"

	"github.com/google/uuid"
	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"
)

const (
	SessionCustomerKey = "customerID"
	currentCustomerKey = "currUser"
)

type CustomerFinder interface {
	FindCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

// Identity loads the signed-in customer of the session, if any, into the
// request values. It never rejects a request.
func Identity(finder CustomerFinder) iris.Handler {
	return func(ctx iris.Context) {
		sess := sessions.Get(ctx)
		if sess == nil {
			ctx.Next()
			return
		}
		raw := sess.GetString(SessionCustomerKey)
		if raw == "" {
			ctx.Next()
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			sess.Delete(SessionCustomerKey)
			ctx.Next()
			return
		}
		customer, err := finder.FindCustomer(ctx.Request().Context(), id)
		switch {
		case err == nil:
			SetCurrentCustomer(ctx, customer)
		case errors.Is(err, storage.ErrNotFound):
			sess.Delete(SessionCustomerKey)
		default:
			golog.Errorf("load session customer %s: %v", id, err)
		}
		ctx.Next()
	}
}

func CurrentCustomer(ctx iris.Context) *models.Customer {
	c, _ := ctx.Values().Get(currentCustomerKey).(*models.Customer)
	return c
}

func SetCurrentCustomer(ctx iris.Context, c *models.Customer) {
	ctx.Values().Set(currentCustomerKey, c)
}

// Login binds the customer to the session.
func Login(ctx iris.Context, c *models.Customer) {
	if sess := sessions.Get(ctx); sess != nil {
		sess.Set(SessionCustomerKey, c.ID.String())
	}
	SetCurrentCustomer(ctx, c)
}

func Logout(ctx iris.Context) {
	if sess := sessions.Get(ctx); sess != nil {
		sess.Delete(SessionCustomerKey)
	}
	ctx.Values().Remove(currentCustomerKey)
}

func SessionID(ctx iris.Context) string {
	if sess := sessions.Get(ctx); sess != nil {
		return sess.ID()
	}
	return ""
}
