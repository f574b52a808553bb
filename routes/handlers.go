package routes

import (
	"context"
	"time"

	"pasr-server/models"
	"pasr-server/services"
	"pasr-server/storage"
	"pasr-server/utils"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
)

type SessionLocationStore interface {
	Save(ctx context.Context, sid string, p models.GeoPoint) error
	Load(ctx context.Context, sid string) (*models.GeoPoint, error)
	Delete(ctx context.Context, sid string) error
}

// Handlers carries the dependencies of every route.
type Handlers struct {
	Store     *storage.Store
	Listings  utils.ListingFinder
	Customers utils.CustomerFinder
	Reviews   utils.ReviewFinder
	Audit     utils.AuditStore

	Locations  SessionLocationStore
	Discovery  *services.Discovery
	Calendars  *services.AvailabilityEngine
	Geocoder   services.Geocoder
	Enrichment services.Enqueuer
	Images     services.ImageStore
	Cascade    *services.Cascade

	AdminHandles []string
	Limiter      *utils.RateLimiter
	StartedAt    time.Time
}

// Register mounts the session identity middleware and every route on app.
func (h *Handlers) Register(app *iris.Application) {
	app.Use(utils.Identity(h.Customers))

	authed := utils.Chain(utils.Authenticated())
	verified := utils.Chain(utils.Authenticated(), utils.VerifiedRole())
	admin := utils.Chain(utils.Authenticated(), utils.AdminAllowlist(h.AdminHandles))
	ownsProvider := utils.Chain(utils.Authenticated(), utils.OwnerOf(models.ProviderListing, h.Listings))
	ownsShop := utils.Chain(utils.Authenticated(), utils.OwnerOf(models.ShopListing, h.Listings))
	ownsProduct := utils.Chain(utils.Authenticated(), utils.OwnerOf(models.ProductListing, h.Listings))
	limited := h.Limiter.Handler()

	app.Get("/health", h.Health)
	app.Get("/messages", func(ctx iris.Context) { ctx.JSON(utils.Flashes(ctx)) })

	// location
	app.Post("/set-location", limited, h.SetLocation)
	app.Get("/get-address", limited, h.GetAddress)

	// customers
	app.Post("/customer/signup", h.Signup)
	app.Post("/login", limited, h.Login)
	app.Get("/logout", h.Logout)
	app.Get("/user", authed, h.CurrentUserListings)
	app.Put("/customer/update/{id}", authed, h.UpdateCustomer)
	app.Post("/customer/delete-account", authed, h.DeleteAccount)

	// providers
	for path, category := range providerPages {
		app.Get(path, authed, h.ProviderCategoryPage(category))
	}
	app.Get("/providers", authed, h.ListProviders)
	app.Get("/search", authed, h.SearchProviders)
	app.Get("/provider/{id}/profile", authed, h.ProviderProfile)
	app.Post("/become/provider", verified, h.CreateProvider)
	app.Put("/update/{id}", ownsProvider, h.UpdateProvider)
	app.Delete("/provider/{id}", ownsProvider, h.DeleteProvider)
	app.Post("/provider/{id}/reviews", verified, h.CreateProviderReview)
	app.Delete("/provider/{id}/review/{reviewId}", utils.Chain(utils.Authenticated(),
		utils.AuthorshipOf(h.Reviews, func(id string) string { return "/provider/" + id + "/profile" })), h.DeleteReview)

	// availability
	app.Get("/shedule/{id}", ownsProvider, h.GetSchedule)
	app.Post("/shedule/{id}", ownsProvider, h.SaveSchedule)

	// shops
	app.Get("/shops", authed, h.ListShops)
	app.Post("/shops", authed, h.CreateShop)
	app.Get("/shops/{id}", h.ShowShop)
	app.Put("/shops/{id}", ownsShop, h.UpdateShop)
	app.Delete("/shops/{id}", ownsShop, h.DeleteShop)
	app.Post("/shops/{id}/items", ownsShop, h.CreateItem)
	app.Delete("/shops/{id}/items/{itemId}", ownsShop, h.DeleteItem)
	app.Post("/shops/{id}/reviews", authed, h.CreateShopReview)
	app.Delete("/shops/{id}/reviews/{reviewId}", utils.Chain(utils.Authenticated(),
		utils.AuthorshipOf(h.Reviews, func(id string) string { return "/shops/" + id })), h.DeleteReview)

	// local market
	app.Get("/localMarket", authed, h.ListProducts)
	app.Post("/product/seller", authed, h.CreateProduct)
	app.Get("/products/{id}", authed, h.ShowProduct)
	app.Put("/products/{id}/edit", ownsProduct, h.UpdateProduct)
	app.Delete("/products/{id}/delete", ownsProduct, h.DeleteProduct)

	// admin verification
	app.Get("/customer/verify", admin, h.AdminUnverifiedCustomers)
	app.Put("/{id}/verifycustomer", admin, h.AdminVerifyCustomer)
	app.Delete("/customer/{id}/verifyfail", admin, h.AdminRejectCustomer)
	app.Get("/provider/verify", admin, h.AdminProviders)
	app.Put("/{id}/verifyprovider", admin, h.AdminVerifyProvider)
	app.Delete("/{id}/verifyfail", admin, h.AdminRejectProvider)
	app.Get("/shops/verify", admin, h.AdminShops)
	app.Put("/shops/{id}/verify", admin, h.AdminVerifyShop)
	app.Delete("/shops/{id}/verifyfail", admin, h.AdminRejectShop)
	app.Get("/products/verify", admin, h.AdminProducts)
	app.Put("/{id}/verifyproduct", admin, h.AdminVerifyProduct)
	app.Delete("/{id}/verifyfailproduct", admin, h.AdminRejectProduct)
	app.Get("/admin/audit", admin, h.AdminAuditLog)
}

func (h *Handlers) Health(ctx iris.Context) {
	ctx.JSON(iris.Map{
		"status": "ok",
		"uptime": time.Since(h.StartedAt).Round(time.Second).String(),
	})
}

// pathID parses a uuid path parameter, answering 400 when it is malformed.
func pathID(ctx iris.Context, name string) (uuid.UUID, bool) {
	id, err := services.ParseListingID(ctx.Params().Get(name))
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "Invalid id")
		return uuid.Nil, false
	}
	return id, true
}
