package routes

import (
	"context"
	"errors"

	"pasr-server/models"
	"pasr-server/services"
	"pasr-server/storage"
	"pasr-server/utils"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
)

func (h *Handlers) AdminUnverifiedCustomers(ctx iris.Context) {
	customers, err := h.Store.UnverifiedCustomers(ctx.Request().Context())
	if err != nil {
		utils.InternalError(ctx, err, "list customers")
		return
	}
	ctx.JSON(iris.Map{"customers": customers})
}

func (h *Handlers) AdminVerifyCustomer(ctx iris.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	reqCtx := ctx.Request().Context()
	before, err := h.Store.FindCustomer(reqCtx, id)
	if err != nil {
		h.adminLoadFailed(ctx, err, "/customer/verify", "Customer not found")
		return
	}
	if err := h.Store.VerifyCustomer(reqCtx, id, h.verifier(ctx)); err != nil {
		utils.InternalError(ctx, err, "verify customer")
		return
	}
	after, _ := h.Store.FindCustomer(reqCtx, id)
	utils.Audit(ctx, h.Audit, "verify", "customer", id, before, after)
	utils.Succeed(ctx, "/customer/verify", "Customer verified")
}

func (h *Handlers) AdminRejectCustomer(ctx iris.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	before, err := h.Store.FindCustomer(ctx.Request().Context(), id)
	if err != nil {
		h.adminLoadFailed(ctx, err, "/customer/verify", "Customer not found")
		return
	}
	if err := h.Cascade.DeleteAccount(ctx.Request().Context(), id); err != nil {
		utils.InternalError(ctx, err, "reject customer")
		return
	}
	utils.Audit(ctx, h.Audit, "reject", "customer", id, before, nil)
	utils.Succeed(ctx, "/customer/verify", "Customer deleted")
}

// AdminProviders lists all providers, unverified included.
func (h *Handlers) AdminProviders(ctx iris.Context) {
	providers, err := h.Store.AllProviders(ctx.Request().Context())
	if err != nil {
		utils.InternalError(ctx, err, "list providers")
		return
	}
	ctx.JSON(iris.Map{"allProvider": providers})
}

func (h *Handlers) AdminVerifyProvider(ctx iris.Context) {
	h.adminVerify(ctx, models.ProviderListing, "/provider/verify", h.Store.VerifyProvider)
}

func (h *Handlers) AdminRejectProvider(ctx iris.Context) {
	h.adminReject(ctx, models.ProviderListing, "/provider/verify", func(l models.Listing) error {
		return h.Cascade.DeleteProvider(ctx.Request().Context(), l.(*models.Provider))
	})
}

func (h *Handlers) AdminShops(ctx iris.Context) {
	shops, err := h.Store.AllShops(ctx.Request().Context())
	if err != nil {
		utils.InternalError(ctx, err, "list shops")
		return
	}
	ctx.JSON(iris.Map{"shops": shops})
}

func (h *Handlers) AdminVerifyShop(ctx iris.Context) {
	h.adminVerify(ctx, models.ShopListing, "/shops/verify", h.Store.VerifyShop)
}

func (h *Handlers) AdminRejectShop(ctx iris.Context) {
	h.adminReject(ctx, models.ShopListing, "/shops/verify", func(l models.Listing) error {
		return h.Cascade.DeleteShop(ctx.Request().Context(), l.(*models.Shop))
	})
}

// AdminProducts lists all products through the discovery builder with the
// verification filter bypassed.
func (h *Handlers) AdminProducts(ctx iris.Context) {
	products := []models.Product{}
	q := services.DiscoveryQuery{
		Kind:              models.ProductListing,
		Category:          ctx.URLParam("category"),
		IncludeUnverified: true,
		WhenUnresolved:    services.FallbackUnfiltered,
	}
	if err := h.Discovery.Find(ctx.Request().Context(), q, &products); err != nil {
		utils.InternalError(ctx, err, "list products")
		return
	}
	ctx.JSON(iris.Map{"products": products})
}

func (h *Handlers) AdminVerifyProduct(ctx iris.Context) {
	h.adminVerify(ctx, models.ProductListing, "/products/verify", h.Store.VerifyProduct)
}

func (h *Handlers) AdminRejectProduct(ctx iris.Context) {
	h.adminReject(ctx, models.ProductListing, "/products/verify", func(l models.Listing) error {
		return h.Cascade.DeleteProduct(ctx.Request().Context(), l.(*models.Product))
	})
}

func (h *Handlers) AdminAuditLog(ctx iris.Context) {
	limit := ctx.URLParamIntDefault("limit", 100)
	if limit < 1 || limit > 500 {
		limit = 100
	}
	logs, err := h.Store.RecentAuditLogs(ctx.Request().Context(), limit)
	if err != nil {
		utils.InternalError(ctx, err, "list audit log")
		return
	}
	ctx.JSON(iris.Map{"auditLogs": logs})
}

// verifier is the handle recorded against verified records.
func (h *Handlers) verifier(ctx iris.Context) string {
	return utils.CurrentCustomer(ctx).Username
}

func (h *Handlers) adminVerify(ctx iris.Context, kind models.ListingKind, back string,
	verify func(context.Context, uuid.UUID, string) error) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	reqCtx := ctx.Request().Context()
	before, err := h.Store.FindListing(reqCtx, kind, id)
	if err != nil {
		h.adminLoadFailed(ctx, err, back, kind.Label()+" not found")
		return
	}
	if err := verify(reqCtx, id, h.verifier(ctx)); err != nil {
		utils.InternalError(ctx, err, "verify "+kind.Label())
		return
	}
	after, _ := h.Store.FindListing(reqCtx, kind, id)
	utils.Audit(ctx, h.Audit, "verify", string(kind), id, before, after)
	utils.Succeed(ctx, back, kind.Label()+" verified")
}

func (h *Handlers) adminReject(ctx iris.Context, kind models.ListingKind, back string, remove func(models.Listing) error) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	before, err := h.Store.FindListing(ctx.Request().Context(), kind, id)
	if err != nil {
		h.adminLoadFailed(ctx, err, back, kind.Label()+" not found")
		return
	}
	if err := remove(before); err != nil {
		utils.InternalError(ctx, err, "reject "+kind.Label())
		return
	}
	utils.Audit(ctx, h.Audit, "reject", string(kind), id, before, nil)
	utils.Succeed(ctx, back, kind.Label()+" deleted")
}

func (h *Handlers) adminLoadFailed(ctx iris.Context, err error, back, msg string) {
	if errors.Is(err, storage.ErrNotFound) {
		utils.Fail(ctx, back, msg)
		return
	}
	utils.InternalError(ctx, err, "load record")
}
