package storage

import (
	"context"

	"pasr-server/models"

	"github.com/google/uuid"
)

func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return translate(s.db.WithContext(ctx).Create(c).Error)
}

func (s *Store) FindCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var c models.Customer
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Store) FindCustomerByUsername(ctx context.Context, username string) (*models.Customer, error) {
	var c models.Customer
	if err := s.db.WithContext(ctx).First(&c, "username = ?", username).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Store) SaveCustomer(ctx context.Context, c *models.Customer) error {
	return translate(s.db.WithContext(ctx).Save(c).Error)
}

// UpdateProfileLocation overwrites the geocoded profile fields of a customer.
func (s *Store) UpdateProfileLocation(ctx context.Context, id uuid.UUID, address, pincode string, p models.GeoPoint) error {
	res := s.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).Updates(map[string]interface{}{
		"address":   address,
		"pincode":   pincode,
		"longitude": p.Longitude,
		"latitude":  p.Latitude,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UnverifiedCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := s.db.WithContext(ctx).Where("verified = ?", false).Order("created_at").Find(&customers).Error
	return customers, err
}

// CustomersWithoutLocation returns customers whose profile has an address
// but no coordinates.
func (s *Store) CustomersWithoutLocation(ctx context.Context, limit int) ([]models.Customer, error) {
	var customers []models.Customer
	err := s.db.WithContext(ctx).
		Where("(longitude IS NULL OR latitude IS NULL) AND address <> ''").
		Order("created_at").Limit(limit).Find(&customers).Error
	return customers, err
}

func (s *Store) VerifyCustomer(ctx context.Context, id uuid.UUID, verifier string) error {
	return s.setVerified(ctx, &models.Customer{}, id, verifier)
}

func (s *Store) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(ctx, &models.Customer{}, id)
}

func (s *Store) setVerified(ctx context.Context, model interface{}, id uuid.UUID, verifier string) error {
	res := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(map[string]interface{}{
		"verified":    true,
		"verified_by": verifier,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) deleteByID(ctx context.Context, model interface{}, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
