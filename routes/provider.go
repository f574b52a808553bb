package routes

import (
	"errors"

	"pasr-server/models"
	"pasr-server/services"
	"pasr-server/storage"
	"pasr-server/utils"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
)

type ProviderInput struct {
	Categories  string   `json:"categories" form:"categories" validate:"required"`
	Company     string   `json:"company" form:"company" validate:"required,max=50"`
	Description string   `json:"description" form:"description" validate:"max=200"`
	Experience  int      `json:"experience" form:"experience" validate:"gte=0,lte=80"`
	PhoneNumber string   `json:"phoneNumber" form:"phoneNumber" validate:"omitempty,handle"`
	Location    string   `json:"location" form:"location" validate:"required,max=300"`
	Images      []string `json:"images" form:"images" validate:"max=4"`
}

type ReviewInput struct {
	Comment string `json:"comment" form:"comment" validate:"required,min=3,max=300"`
	Ratings int    `json:"ratings" form:"ratings" validate:"required,min=1,max=5"`
}

func (h *Handlers) ProviderProfile(ctx iris.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	reqCtx := ctx.Request().Context()

	provider, err := h.Store.FindProvider(reqCtx, id)
	if errors.Is(err, storage.ErrNotFound) {
		utils.Fail(ctx, "/home", "Provider not found")
		return
	}
	if err != nil {
		utils.InternalError(ctx, err, "load provider")
		return
	}
	reviews, err := h.Store.ReviewsFor(reqCtx, models.ProviderListing, id)
	if err != nil {
		utils.InternalError(ctx, err, "load reviews")
		return
	}
	days, err := h.Calendars.Days(reqCtx, id.String())
	if err != nil {
		utils.InternalError(ctx, err, "load schedule")
		return
	}

	c := utils.CurrentCustomer(ctx)
	ctx.JSON(iris.Map{
		"provider":     provider,
		"reviews":      reviews,
		"existingDays": days,
		"isOwner":      c != nil && c.ID == provider.OwnerID,
	})
}

func (h *Handlers) CreateProvider(ctx iris.Context) {
	var input ProviderInput
	if !utils.ReadValid(ctx, &input) {
		return
	}
	if !models.IsProviderCategory(input.Categories) {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_category", "Unknown provider category")
		return
	}
	geo, ok := h.geocode(ctx, input.Location, "/become/provider")
	if !ok {
		return
	}
	images, err := services.UploadImages(ctx.Request().Context(), h.Images, input.Company, input.Images)
	if err != nil {
		utils.InternalError(ctx, err, "upload provider images")
		return
	}

	provider := models.Provider{
		OwnerID:     utils.CurrentCustomer(ctx).ID,
		Categories:  input.Categories,
		Company:     input.Company,
		Description: input.Description,
		Experience:  input.Experience,
		PhoneNumber: utils.NormalizeHandle(input.PhoneNumber),
		Location:    input.Location,
		Coordinates: models.CoordinatesOf(geo.Point),
		Images:      models.EncodeImages(images),
	}
	if err := h.Store.CreateProvider(ctx.Request().Context(), &provider); err != nil {
		utils.InternalError(ctx, err, "create provider")
		return
	}
	utils.Succeed(ctx, "/provider/"+provider.ID.String()+"/profile", "Provider created, it will be listed once verified")
}

func (h *Handlers) UpdateProvider(ctx iris.Context) {
	provider := utils.CurrentListing(ctx).(*models.Provider)

	var input ProviderInput
	if !utils.ReadValid(ctx, &input) {
		return
	}
	if !models.IsProviderCategory(input.Categories) {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_category", "Unknown provider category")
		return
	}
	back := "/provider/" + provider.ID.String() + "/profile"
	geo, ok := h.geocode(ctx, input.Location, back)
	if !ok {
		return
	}
	added, err := services.UploadImages(ctx.Request().Context(), h.Images, input.Company, input.Images)
	if err != nil {
		utils.InternalError(ctx, err, "upload provider images")
		return
	}

	provider.Categories = input.Categories
	provider.Company = input.Company
	provider.Description = input.Description
	provider.Experience = input.Experience
	provider.PhoneNumber = utils.NormalizeHandle(input.PhoneNumber)
	provider.Location = input.Location
	provider.Coordinates = models.CoordinatesOf(geo.Point)
	provider.Images = models.EncodeImages(append(models.DecodeImages(provider.Images), added...))
	if err := h.Store.SaveProvider(ctx.Request().Context(), provider); err != nil {
		utils.InternalError(ctx, err, "update provider")
		return
	}
	utils.Succeed(ctx, back, "Provider updated")
}

func (h *Handlers) DeleteProvider(ctx iris.Context) {
	provider := utils.CurrentListing(ctx).(*models.Provider)
	if err := h.Cascade.DeleteProvider(ctx.Request().Context(), provider); err != nil {
		utils.InternalError(ctx, err, "delete provider")
		return
	}
	utils.Succeed(ctx, "/user", "Provider deleted")
}

func (h *Handlers) CreateProviderReview(ctx iris.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if _, err := h.Store.FindProvider(ctx.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.Fail(ctx, "/home", "Provider not found")
			return
		}
		utils.InternalError(ctx, err, "load provider")
		return
	}
	h.createReview(ctx, models.ProviderListing, id, "/provider/"+id.String()+"/profile")
}

func (h *Handlers) createReview(ctx iris.Context, kind models.ListingKind, listingID uuid.UUID, back string) {
	var input ReviewInput
	if !utils.ReadValid(ctx, &input) {
		return
	}
	review := models.Review{
		ListingKind: kind,
		ListingID:   listingID,
		AuthorID:    utils.CurrentCustomer(ctx).ID,
		Comment:     input.Comment,
		Ratings:     input.Ratings,
	}
	if err := h.Store.CreateReview(ctx.Request().Context(), &review); err != nil {
		utils.InternalError(ctx, err, "create review")
		return
	}
	utils.Succeed(ctx, back, "New review is created")
}

// DeleteReview runs after the authorship guard for both provider and shop
// reviews.
func (h *Handlers) DeleteReview(ctx iris.Context) {
	review := utils.CurrentReview(ctx)
	if err := h.Store.DeleteReview(ctx.Request().Context(), review.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		utils.InternalError(ctx, err, "delete review")
		return
	}
	back := "/provider/" + review.ListingID.String() + "/profile"
	if review.ListingKind == models.ShopListing {
		back = "/shops/" + review.ListingID.String()
	}
	utils.Succeed(ctx, back, "Review deleted")
}

// geocode forward-geocodes an address. A miss is flashed back to the form
// at failTo; an upstream failure answers 500.
func (h *Handlers) geocode(ctx iris.Context, address, failTo string) (services.GeocodeResult, bool) {
	res, err := h.Geocoder.Forward(ctx.Request().Context(), address)
	if errors.Is(err, services.ErrGeocodeNoMatch) {
		utils.Fail(ctx, failTo, "We could not find that location, please check the address.")
		return res, false
	}
	if err != nil {
		utils.InternalError(ctx, err, "geocode address")
		return res, false
	}
	return res, true
}
