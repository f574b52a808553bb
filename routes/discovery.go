package routes

import (
	"math"

	"pasr-server/models"
	"pasr-server/services"
	"pasr-server/utils"

	"github.com/kataras/iris/v12"
)

// providerPages maps the category landing pages to their provider category.
var providerPages = map[string]string{
	"/homeservice":   "Home Service",
	"/others":        "Others",
	"/farm":          "Farming Vehicles",
	"/car":           "Four Wheelers",
	"/bus":           "HMV (Bus)",
	"/three-weelers": "Three Wheelers",
	"/caterings":     "Caterings",
	"/filming":       "Filming",
	"/decor":         "Decoration",
	"/djdecor":       "DJ and Tent",
	"/bandparty":     "Band Party",
	"/heavy":         "Heavy Equipments",
}

// ProviderCategoryPage lists verified providers of one category near the
// client. Without a resolvable point it lists the whole category.
func (h *Handlers) ProviderCategoryPage(category string) iris.Handler {
	return func(ctx iris.Context) {
		h.discoverProviders(ctx, category)
	}
}

func (h *Handlers) ListProviders(ctx iris.Context) {
	category := ctx.URLParam("category")
	if category != "" && !models.IsProviderCategory(category) {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_category", "Unknown provider category")
		return
	}
	h.discoverProviders(ctx, category)
}

func (h *Handlers) discoverProviders(ctx iris.Context, category string) {
	point, source := h.resolvePoint(ctx)
	q := services.DiscoveryQuery{
		Kind:           models.ProviderListing,
		Category:       category,
		Point:          point,
		RadiusKm:       services.ParseRadiusKm(ctx.URLParam("range")),
		WhenUnresolved: services.FallbackUnfiltered,
	}

	providers := []models.Provider{}
	if err := h.Discovery.Find(ctx.Request().Context(), q, &providers); err != nil {
		utils.InternalError(ctx, err, "discover providers")
		return
	}
	ls := make([]models.Listing, len(providers))
	for i := range providers {
		ls[i] = &providers[i]
	}
	ctx.JSON(discoveryResponse(q, source, "allProvider", providers, ls))
}

// ListShops lists verified shops near the client. Nothing is listed when
// no point can be resolved.
func (h *Handlers) ListShops(ctx iris.Context) {
	point, source := h.resolvePoint(ctx)
	q := services.DiscoveryQuery{
		Kind:           models.ShopListing,
		Category:       ctx.URLParam("category"),
		Point:          point,
		RadiusKm:       services.ParseRadiusKm(ctx.URLParam("range")),
		OpenNow:        isTruthy(ctx.URLParam("openNow")),
		WhenUnresolved: services.FallbackEmpty,
	}

	shops := []models.Shop{}
	if err := h.Discovery.Find(ctx.Request().Context(), q, &shops); err != nil {
		utils.InternalError(ctx, err, "discover shops")
		return
	}
	ls := make([]models.Listing, len(shops))
	for i := range shops {
		ls[i] = &shops[i]
	}
	ctx.JSON(discoveryResponse(q, source, "shops", shops, ls))
}

// ListProducts is the local market: verified products near the client.
func (h *Handlers) ListProducts(ctx iris.Context) {
	point, source := h.resolvePoint(ctx)
	q := services.DiscoveryQuery{
		Kind:           models.ProductListing,
		Category:       ctx.URLParam("category"),
		Point:          point,
		RadiusKm:       services.ParseRadiusKm(ctx.URLParam("range")),
		WhenUnresolved: services.FallbackEmpty,
	}

	products := []models.Product{}
	if err := h.Discovery.Find(ctx.Request().Context(), q, &products); err != nil {
		utils.InternalError(ctx, err, "discover products")
		return
	}
	ls := make([]models.Listing, len(products))
	for i := range products {
		ls[i] = &products[i]
	}
	ctx.JSON(discoveryResponse(q, source, "products", products, ls))
}

func (h *Handlers) SearchProviders(ctx iris.Context) {
	q := ctx.URLParam("q")
	providers, err := h.Store.SearchProviders(ctx.Request().Context(), q)
	if err != nil {
		utils.InternalError(ctx, err, "search providers")
		return
	}
	if providers == nil {
		providers = []models.Provider{}
	}
	ctx.JSON(iris.Map{"query": q, "allProvider": providers, "count": len(providers)})
}

// discoveryResponse wraps results with the query that produced them. With a
// resolved point it also reports each listing's distance in meters.
func discoveryResponse(q services.DiscoveryQuery, source services.LocationSource, key string, results interface{}, listings []models.Listing) iris.Map {
	out := iris.Map{
		key:        results,
		"count":    len(listings),
		"category": q.Category,
		"location": source.String(),
	}
	if q.Point != nil {
		out["latitude"] = q.Point.Latitude
		out["longitude"] = q.Point.Longitude
		out["range"] = services.EffectiveRadiusKm(q.Kind, q.RadiusKm)
		distances := make(map[string]int, len(listings))
		for _, l := range listings {
			distances[l.ListingID().String()] = int(math.Round(q.Point.DistanceMeters(l.Point())))
		}
		out["distances"] = distances
	}
	return out
}

func isTruthy(v string) bool {
	switch v {
	case "true", "1", "on", "yes":
		return true
	}
	return false
}
