package services

import (
	"context"
	"fmt"

	"pasr-server/models"

	"github.com/google/uuid"
	"github.com/kataras/golog"
)

type CascadeStore interface {
	ProvidersByOwner(ctx context.Context, owner uuid.UUID) ([]models.Provider, error)
	ShopsByOwner(ctx context.Context, owner uuid.UUID) ([]models.Shop, error)
	ProductsByOwner(ctx context.Context, owner uuid.UUID) ([]models.Product, error)
	ItemsByShop(ctx context.Context, shopID uuid.UUID) ([]models.Item, error)

	DeleteReviewsForListing(ctx context.Context, kind models.ListingKind, listingID uuid.UUID) error
	DeleteReviewsByAuthor(ctx context.Context, author uuid.UUID) (int64, error)
	DeleteCalendar(ctx context.Context, listingID uuid.UUID) error
	DeleteItemsByShop(ctx context.Context, shopID uuid.UUID) error

	DeleteProvider(ctx context.Context, id uuid.UUID) error
	DeleteShop(ctx context.Context, id uuid.UUID) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
}

// Cascade removes listings and accounts together with everything that
// depends on them. Image store failures are logged and skipped; a
// persistence failure stops the cascade and is returned.
type Cascade struct {
	store  CascadeStore
	images ImageStore
}

func NewCascade(store CascadeStore, images ImageStore) *Cascade {
	return &Cascade{store: store, images: images}
}

func (c *Cascade) DeleteProvider(ctx context.Context, p *models.Provider) error {
	destroyImages(ctx, c.images, models.DecodeImages(p.Images))
	if err := c.store.DeleteReviewsForListing(ctx, models.ProviderListing, p.ID); err != nil {
		return fmt.Errorf("delete reviews of provider %s: %w", p.ID, err)
	}
	if err := c.store.DeleteCalendar(ctx, p.ID); err != nil {
		return fmt.Errorf("delete calendar of provider %s: %w", p.ID, err)
	}
	if err := c.store.DeleteProvider(ctx, p.ID); err != nil {
		return fmt.Errorf("delete provider %s: %w", p.ID, err)
	}
	return nil
}

func (c *Cascade) DeleteShop(ctx context.Context, s *models.Shop) error {
	destroyImages(ctx, c.images, models.DecodeImages(s.Images))

	items, err := c.store.ItemsByShop(ctx, s.ID)
	if err != nil {
		return fmt.Errorf("load items of shop %s: %w", s.ID, err)
	}
	for _, item := range items {
		destroyImage(ctx, c.images, item.ImageFilename)
	}
	if err := c.store.DeleteItemsByShop(ctx, s.ID); err != nil {
		return fmt.Errorf("delete items of shop %s: %w", s.ID, err)
	}
	if err := c.store.DeleteReviewsForListing(ctx, models.ShopListing, s.ID); err != nil {
		return fmt.Errorf("delete reviews of shop %s: %w", s.ID, err)
	}
	if err := c.store.DeleteCalendar(ctx, s.ID); err != nil {
		return fmt.Errorf("delete calendar of shop %s: %w", s.ID, err)
	}
	if err := c.store.DeleteShop(ctx, s.ID); err != nil {
		return fmt.Errorf("delete shop %s: %w", s.ID, err)
	}
	return nil
}

func (c *Cascade) DeleteProduct(ctx context.Context, p *models.Product) error {
	destroyImages(ctx, c.images, models.DecodeImages(p.Images))
	if err := c.store.DeleteCalendar(ctx, p.ID); err != nil {
		return fmt.Errorf("delete calendar of product %s: %w", p.ID, err)
	}
	if err := c.store.DeleteProduct(ctx, p.ID); err != nil {
		return fmt.Errorf("delete product %s: %w", p.ID, err)
	}
	return nil
}

// DeleteAccount removes a customer with every listing they own and every
// review they wrote.
func (c *Cascade) DeleteAccount(ctx context.Context, customerID uuid.UUID) error {
	providers, err := c.store.ProvidersByOwner(ctx, customerID)
	if err != nil {
		return fmt.Errorf("load providers of %s: %w", customerID, err)
	}
	for i := range providers {
		if err := c.DeleteProvider(ctx, &providers[i]); err != nil {
			return err
		}
	}

	shops, err := c.store.ShopsByOwner(ctx, customerID)
	if err != nil {
		return fmt.Errorf("load shops of %s: %w", customerID, err)
	}
	for i := range shops {
		if err := c.DeleteShop(ctx, &shops[i]); err != nil {
			return err
		}
	}

	products, err := c.store.ProductsByOwner(ctx, customerID)
	if err != nil {
		return fmt.Errorf("load products of %s: %w", customerID, err)
	}
	for i := range products {
		if err := c.DeleteProduct(ctx, &products[i]); err != nil {
			return err
		}
	}

	n, err := c.store.DeleteReviewsByAuthor(ctx, customerID)
	if err != nil {
		return fmt.Errorf("delete reviews by %s: %w", customerID, err)
	}
	if err := c.store.DeleteCustomer(ctx, customerID); err != nil {
		return fmt.Errorf("delete customer %s: %w", customerID, err)
	}

	golog.Infof("account %s deleted with %d providers, %d shops, %d products, %d reviews",
		customerID, len(providers), len(shops), len(products), n)
	return nil
}

func destroyImages(ctx context.Context, store ImageStore, images []models.Image) {
	for _, img := range images {
		destroyImage(ctx, store, img.Filename)
	}
}

func destroyImage(ctx context.Context, store ImageStore, filename string) {
	if filename == "" {
		return
	}
	if err := store.Destroy(ctx, filename); err != nil {
		golog.Warnf("destroy image %s: %v", filename, err)
	}
}
