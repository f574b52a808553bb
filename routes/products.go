package routes

import (
	"errors"

	"pasr-server/models"
	"pasr-server/services"
	"pasr-server/storage"
	"pasr-server/utils"

	"github.com/kataras/iris/v12"
)

type ProductInput struct {
	Categories         string   `json:"categories" form:"categories" validate:"required,max=64"`
	ProductName        string   `json:"productName" form:"productName" validate:"required,max=50"`
	ProductDescription string   `json:"productDescription" form:"productDescription" validate:"max=500"`
	Price              float64  `json:"price" form:"price" validate:"gte=0"`
	Quantity           int      `json:"quantity" form:"quantity" validate:"gte=0"`
	Location           string   `json:"location" form:"location" validate:"required,max=300"`
	HideListing        bool     `json:"hideListing" form:"hideListing"`
	Images             []string `json:"images" form:"images" validate:"max=4"`
}

func (h *Handlers) CreateProduct(ctx iris.Context) {
	var input ProductInput
	if !utils.ReadValid(ctx, &input) {
		return
	}
	geo, ok := h.geocode(ctx, input.Location, "/localMarket")
	if !ok {
		return
	}
	images, err := services.UploadImages(ctx.Request().Context(), h.Images, input.ProductName, input.Images)
	if err != nil {
		utils.InternalError(ctx, err, "upload product images")
		return
	}

	product := models.Product{
		OwnerID:            utils.CurrentCustomer(ctx).ID,
		Categories:         input.Categories,
		ProductName:        input.ProductName,
		ProductDescription: input.ProductDescription,
		Price:              input.Price,
		Quantity:           input.Quantity,
		Location:           input.Location,
		Coordinates:        models.CoordinatesOf(geo.Point),
		HideListing:        input.HideListing,
		Images:             models.EncodeImages(images),
	}
	if err := h.Store.CreateProduct(ctx.Request().Context(), &product); err != nil {
		utils.InternalError(ctx, err, "create product")
		return
	}
	utils.Succeed(ctx, "/products/"+product.ID.String(), "Product listed, it will be visible once verified")
}

func (h *Handlers) ShowProduct(ctx iris.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	product, err := h.Store.FindProduct(ctx.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		utils.Fail(ctx, "/localMarket", "Product not found")
		return
	}
	if err != nil {
		utils.InternalError(ctx, err, "load product")
		return
	}
	c := utils.CurrentCustomer(ctx)
	ctx.JSON(iris.Map{
		"product": product,
		"isOwner": c != nil && c.ID == product.OwnerID,
	})
}

func (h *Handlers) UpdateProduct(ctx iris.Context) {
	product := utils.CurrentListing(ctx).(*models.Product)

	var input ProductInput
	if !utils.ReadValid(ctx, &input) {
		return
	}
	back := "/products/" + product.ID.String()
	geo, ok := h.geocode(ctx, input.Location, back)
	if !ok {
		return
	}
	added, err := services.UploadImages(ctx.Request().Context(), h.Images, input.ProductName, input.Images)
	if err != nil {
		utils.InternalError(ctx, err, "upload product images")
		return
	}

	product.Categories = input.Categories
	product.ProductName = input.ProductName
	product.ProductDescription = input.ProductDescription
	product.Price = input.Price
	product.Quantity = input.Quantity
	product.Location = input.Location
	product.Coordinates = models.CoordinatesOf(geo.Point)
	product.HideListing = input.HideListing
	product.Images = models.EncodeImages(append(models.DecodeImages(product.Images), added...))
	if err := h.Store.SaveProduct(ctx.Request().Context(), product); err != nil {
		utils.InternalError(ctx, err, "update product")
		return
	}
	utils.Succeed(ctx, back, "Product updated")
}

func (h *Handlers) DeleteProduct(ctx iris.Context) {
	product := utils.CurrentListing(ctx).(*models.Product)
	if err := h.Cascade.DeleteProduct(ctx.Request().Context(), product); err != nil {
		utils.InternalError(ctx, err, "delete product")
		return
	}
	utils.Succeed(ctx, "/localMarket", "Product deleted")
}
