package routes

import (
	"errors"

	"pasr-server/models"
	"pasr-server/services"
	"pasr-server/storage"
	"pasr-server/utils"

	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"
)

type ShopInput struct {
	ShopName        string   `json:"shopName" form:"shopName" validate:"required,max=50"`
	ShopDescription string   `json:"shopDescription" form:"shopDescription" validate:"max=500"`
	Category        string   `json:"category" form:"category" validate:"required,max=64"`
	Location        string   `json:"location" form:"location" validate:"required,max=300"`
	OpeningTime     string   `json:"openingTime" form:"openingTime" validate:"omitempty,hhmm"`
	ClosingTime     string   `json:"closingTime" form:"closingTime" validate:"omitempty,hhmm"`
	Images          []string `json:"images" form:"images" validate:"max=4"`
}

type ItemInput struct {
	Name         string  `json:"name" form:"name" validate:"required,max=100"`
	Price        float64 `json:"price" form:"price" validate:"gte=0"`
	Quantity     int     `json:"quantity" form:"quantity" validate:"gte=0"`
	ItemCategory string  `json:"itemCategory" form:"itemCategory" validate:"max=64"`
	Image        string  `json:"image" form:"image"`
}

// validHours rejects a window whose closing time is not after its opening
// time. Either bound alone is accepted.
func (in ShopInput) validHours() bool {
	if in.OpeningTime == "" || in.ClosingTime == "" {
		return true
	}
	return in.ClosingTime > in.OpeningTime
}

func (h *Handlers) CreateShop(ctx iris.Context) {
	var input ShopInput
	if !utils.ReadValid(ctx, &input) {
		return
	}
	if !input.validHours() {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_hours", "Closing time must be after opening time")
		return
	}
	geo, ok := h.geocode(ctx, input.Location, "/shops")
	if !ok {
		return
	}
	images, err := services.UploadImages(ctx.Request().Context(), h.Images, input.ShopName, input.Images)
	if err != nil {
		utils.InternalError(ctx, err, "upload shop images")
		return
	}

	shop := models.Shop{
		OwnerID:         utils.CurrentCustomer(ctx).ID,
		ShopName:        input.ShopName,
		ShopDescription: input.ShopDescription,
		Category:        input.Category,
		Location:        input.Location,
		Coordinates:     models.CoordinatesOf(geo.Point),
		OpeningTime:     input.OpeningTime,
		ClosingTime:     input.ClosingTime,
		Images:          models.EncodeImages(images),
	}
	if err := h.Store.CreateShop(ctx.Request().Context(), &shop); err != nil {
		utils.InternalError(ctx, err, "create shop")
		return
	}
	utils.Succeed(ctx, "/shops/"+shop.ID.String(), "Shop created, it will be listed once verified")
}

func (h *Handlers) ShowShop(ctx iris.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	shop, err := h.Store.FindShop(ctx.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		utils.Fail(ctx, "/shops", "Shop not found")
		return
	}
	if err != nil {
		utils.InternalError(ctx, err, "load shop")
		return
	}
	reviews, err := h.Store.ReviewsFor(ctx.Request().Context(), models.ShopListing, id)
	if err != nil {
		utils.InternalError(ctx, err, "load reviews")
		return
	}

	c := utils.CurrentCustomer(ctx)
	ctx.JSON(iris.Map{
		"shop":    shop,
		"reviews": reviews,
		"isOwner": c != nil && c.ID == shop.OwnerID,
	})
}

func (h *Handlers) UpdateShop(ctx iris.Context) {
	shop := utils.CurrentListing(ctx).(*models.Shop)

	var input ShopInput
	if !utils.ReadValid(ctx, &input) {
		return
	}
	if !input.validHours() {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_hours", "Closing time must be after opening time")
		return
	}
	back := "/shops/" + shop.ID.String()
	geo, ok := h.geocode(ctx, input.Location, back)
	if !ok {
		return
	}
	added, err := services.UploadImages(ctx.Request().Context(), h.Images, input.ShopName, input.Images)
	if err != nil {
		utils.InternalError(ctx, err, "upload shop images")
		return
	}

	shop.ShopName = input.ShopName
	shop.ShopDescription = input.ShopDescription
	shop.Category = input.Category
	shop.Location = input.Location
	shop.Coordinates = models.CoordinatesOf(geo.Point)
	shop.OpeningTime = input.OpeningTime
	shop.ClosingTime = input.ClosingTime
	shop.Images = models.EncodeImages(append(models.DecodeImages(shop.Images), added...))
	if err := h.Store.SaveShop(ctx.Request().Context(), shop); err != nil {
		utils.InternalError(ctx, err, "update shop")
		return
	}
	utils.Succeed(ctx, back, "Shop updated")
}

func (h *Handlers) DeleteShop(ctx iris.Context) {
	shop := utils.CurrentListing(ctx).(*models.Shop)
	if err := h.Cascade.DeleteShop(ctx.Request().Context(), shop); err != nil {
		utils.InternalError(ctx, err, "delete shop")
		return
	}
	utils.Succeed(ctx, "/shops", "Shop deleted")
}

func (h *Handlers) CreateItem(ctx iris.Context) {
	shop := utils.CurrentListing(ctx).(*models.Shop)

	var input ItemInput
	if !utils.ReadValid(ctx, &input) {
		return
	}
	item := models.Item{
		ShopID:       shop.ID,
		Name:         input.Name,
		Price:        input.Price,
		Quantity:     input.Quantity,
		ItemCategory: input.ItemCategory,
	}
	if input.Image != "" {
		images, err := services.UploadImages(ctx.Request().Context(), h.Images, input.Name, []string{input.Image})
		if err != nil {
			utils.InternalError(ctx, err, "upload item image")
			return
		}
		item.ImageURL, item.ImageFilename = images[0].URL, images[0].Filename
	}
	if err := h.Store.CreateItem(ctx.Request().Context(), &item); err != nil {
		utils.InternalError(ctx, err, "create item")
		return
	}
	utils.Succeed(ctx, "/shops/"+shop.ID.String(), "Item added")
}

func (h *Handlers) DeleteItem(ctx iris.Context) {
	shop := utils.CurrentListing(ctx).(*models.Shop)
	back := "/shops/" + shop.ID.String()

	itemID, ok := pathID(ctx, "itemId")
	if !ok {
		return
	}
	item, err := h.Store.FindItem(ctx.Request().Context(), shop.ID, itemID)
	if errors.Is(err, storage.ErrNotFound) {
		utils.Fail(ctx, back, "Item not found")
		return
	}
	if err != nil {
		utils.InternalError(ctx, err, "load item")
		return
	}
	if item.ImageFilename != "" {
		if err := h.Images.Destroy(ctx.Request().Context(), item.ImageFilename); err != nil {
			golog.Warnf("destroy item image %s: %v", item.ImageFilename, err)
		}
	}
	if err := h.Store.DeleteItem(ctx.Request().Context(), item.ID); err != nil {
		utils.InternalError(ctx, err, "delete item")
		return
	}
	utils.Succeed(ctx, back, "Item deleted")
}

func (h *Handlers) CreateShopReview(ctx iris.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if _, err := h.Store.FindShop(ctx.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.Fail(ctx, "/shops", "Shop not found")
			return
		}
		utils.InternalError(ctx, err, "load shop")
		return
	}
	h.createReview(ctx, models.ShopListing, id, "/shops/"+id.String())
}
