package storage

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"pasr-server/models"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// FindListing loads the listing of the given kind.
func (s *Store) FindListing(ctx context.Context, kind models.ListingKind, id uuid.UUID) (models.Listing, error) {
	switch kind {
	case models.ProviderListing:
		return s.FindProvider(ctx, id)
	case models.ShopListing:
		return s.FindShop(ctx, id)
	case models.ProductListing:
		return s.FindProduct(ctx, id)
	}
	return nil, fmt.Errorf("unknown listing kind %q", kind)
}

// Providers

func (s *Store) FindProvider(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	var p models.Provider
	if err := s.db.WithContext(ctx).Preload("Owner").First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) CreateProvider(ctx context.Context, p *models.Provider) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error)
}

func (s *Store) SaveProvider(ctx context.Context, p *models.Provider) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error)
}

func (s *Store) DeleteProvider(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(ctx, &models.Provider{}, id)
}

func (s *Store) ProvidersByOwner(ctx context.Context, owner uuid.UUID) ([]models.Provider, error) {
	var providers []models.Provider
	err := s.db.WithContext(ctx).Where("owner_id = ?", owner).Order("created_at").Find(&providers).Error
	return providers, err
}

// AllProviders includes unverified providers. Admin views only.
func (s *Store) AllProviders(ctx context.Context) ([]models.Provider, error) {
	var providers []models.Provider
	err := s.db.WithContext(ctx).Preload("Owner").Order("verified, created_at").Find(&providers).Error
	return providers, err
}

func (s *Store) VerifyProvider(ctx context.Context, id uuid.UUID, verifier string) error {
	return s.setVerified(ctx, &models.Provider{}, id, verifier)
}

// SearchProviders matches an all-digit query against the phone number and
// anything else against company, category and location text.
func (s *Store) SearchProviders(ctx context.Context, q string) ([]models.Provider, error) {
	q = strings.TrimSpace(q)
	var providers []models.Provider
	if q == "" {
		return providers, nil
	}

	tx := s.db.WithContext(ctx).Preload("Owner").Where("verified = ?", true)
	if isDigits(q) {
		tx = tx.Where("phone_number = ?", q)
	} else {
		pattern := "%" + escapeLike(q) + "%"
		tx = tx.Where("company ILIKE ? OR categories ILIKE ? OR location ILIKE ?", pattern, pattern, pattern)
	}
	err := tx.Order("company, id").Find(&providers).Error
	return providers, err
}

// Shops

func (s *Store) FindShop(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	err := s.db.WithContext(ctx).Preload("Owner").Preload("Items").First(&shop, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &shop, nil
}

func (s *Store) CreateShop(ctx context.Context, shop *models.Shop) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(shop).Error)
}

func (s *Store) SaveShop(ctx context.Context, shop *models.Shop) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Save(shop).Error)
}

func (s *Store) DeleteShop(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(ctx, &models.Shop{}, id)
}

func (s *Store) ShopsByOwner(ctx context.Context, owner uuid.UUID) ([]models.Shop, error) {
	var shops []models.Shop
	err := s.db.WithContext(ctx).Where("owner_id = ?", owner).Order("created_at").Find(&shops).Error
	return shops, err
}

func (s *Store) AllShops(ctx context.Context) ([]models.Shop, error) {
	var shops []models.Shop
	err := s.db.WithContext(ctx).Preload("Owner").Order("verified, created_at").Find(&shops).Error
	return shops, err
}

func (s *Store) VerifyShop(ctx context.Context, id uuid.UUID, verifier string) error {
	return s.setVerified(ctx, &models.Shop{}, id, verifier)
}

// Items

func (s *Store) CreateItem(ctx context.Context, item *models.Item) error {
	return translate(s.db.WithContext(ctx).Create(item).Error)
}

func (s *Store) FindItem(ctx context.Context, shopID, itemID uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := s.db.WithContext(ctx).First(&item, "id = ? AND shop_id = ?", itemID, shopID).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (s *Store) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(ctx, &models.Item{}, id)
}

func (s *Store) ItemsByShop(ctx context.Context, shopID uuid.UUID) ([]models.Item, error) {
	var items []models.Item
	err := s.db.WithContext(ctx).Where("shop_id = ?", shopID).Order("created_at").Find(&items).Error
	return items, err
}

func (s *Store) DeleteItemsByShop(ctx context.Context, shopID uuid.UUID) error {
	return s.db.WithContext(ctx).Where("shop_id = ?", shopID).Delete(&models.Item{}).Error
}

// Products

func (s *Store) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).Preload("Owner").First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error)
}

func (s *Store) SaveProduct(ctx context.Context, p *models.Product) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error)
}

func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(ctx, &models.Product{}, id)
}

func (s *Store) ProductsByOwner(ctx context.Context, owner uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).Where("owner_id = ?", owner).Order("created_at").Find(&products).Error
	return products, err
}

func (s *Store) AllProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).Preload("Owner").Order("verified, created_at").Find(&products).Error
	return products, err
}

func (s *Store) VerifyProduct(ctx context.Context, id uuid.UUID, verifier string) error {
	return s.setVerified(ctx, &models.Product{}, id, verifier)
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
