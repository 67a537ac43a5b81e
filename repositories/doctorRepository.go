package repositories

import (
	"MediBook/cache"
	"MediBook/models"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

const (
	DoctorProfileCacheExpiry = 1 * time.Hour
)

// DoctorRepository resolves and maintains the tenant side of the data
// model. ResolveByRegNo is the first step of every tenant-scoped
// operation; downstream code only ever works with the resolved doctor
// id, never with the raw registration number from the request.
type DoctorRepository interface {
	ResolveByRegNo(ctx context.Context, regNo string) (*models.Doctor, error)
	GetByEmail(ctx context.Context, email string) (*models.Doctor, error)
	GetByID(ctx context.Context, id uint) (*models.Doctor, error)
	Create(ctx context.Context, doctor *models.Doctor) error
	FindRegistrationConflict(ctx context.Context, email, regNo, phone string) (string, error)
	UpdateRefreshToken(ctx context.Context, id uint, token string) error
	GetProfile(ctx context.Context, regNo string) (*models.Doctor, error)
	UpdateProfile(ctx context.Context, id uint, doctor *models.Doctor, degrees []models.DoctorDegree) error
}

type doctorRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewDoctorRepository(db *gorm.DB, cache *cache.Cache) DoctorRepository {
	return &doctorRepository{db: db, cache: cache}
}

// ResolveByRegNo maps a registration number to the doctor row. Always a
// fresh read: tenant resolution must see a just-registered doctor.
func (r *doctorRepository) ResolveByRegNo(ctx context.Context, regNo string) (*models.Doctor, error) {
	var doctor models.Doctor
	err := r.db.WithContext(ctx).
		Select("id, name, email, reg_no, phone, specialty").
		Where("reg_no = ?", regNo).
		First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("failed to resolve doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	var doctor models.Doctor
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("failed to get doctor by email: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetByID(ctx context.Context, id uint) (*models.Doctor, error) {
	var doctor models.Doctor
	err := r.db.WithContext(ctx).First(&doctor, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) Create(ctx context.Context, doctor *models.Doctor) error {
	if err := r.db.WithContext(ctx).Create(doctor).Error; err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

// FindRegistrationConflict reports which unique field collides with an
// existing doctor ("email", "regNo", "phone"), or "" when none does.
func (r *doctorRepository) FindRegistrationConflict(ctx context.Context, email, regNo, phone string) (string, error) {
	var existing models.Doctor
	err := r.db.WithContext(ctx).
		Select("email, reg_no, phone").
		Where("email = ? OR reg_no = ? OR phone = ?", email, regNo, phone).
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to check registration conflict: %w", err)
	}
	switch {
	case existing.Email == email:
		return "email", nil
	case existing.RegNo == regNo:
		return "regNo", nil
	default:
		return "phone", nil
	}
}

func (r *doctorRepository) UpdateRefreshToken(ctx context.Context, id uint, token string) error {
	err := r.db.WithContext(ctx).Model(&models.Doctor{}).
		Where("id = ?", id).
		Update("refresh_token", token).Error
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// GetProfile returns the doctor with degrees preloaded, served from
// cache when possible.
func (r *doctorRepository) GetProfile(ctx context.Context, regNo string) (*models.Doctor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheKey := r.getProfileCacheKey(regNo)
	var cached models.Doctor
	if ok, err := r.cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
		return &cached, nil
	} else if err != nil {
		log.Printf("Failed to get doctor profile from cache: %v", err)
	}

	var doctor models.Doctor
	err := r.db.WithContext(ctx).
		Select("id, name, email, reg_no, phone, image_url, specialty, address, consult_location").
		Preload("Degrees").
		Where("reg_no = ?", regNo).
		First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("failed to get doctor profile: %w", err)
	}

	if err := r.cache.SetJSON(ctx, cacheKey, doctor, DoctorProfileCacheExpiry); err != nil {
		log.Printf("Failed to set doctor profile in cache: %v", err)
	}
	return &doctor, nil
}

// UpdateProfile updates the basic profile fields and replaces the
// degree list wholesale, the way the profile editor submits it.
func (r *doctorRepository) UpdateProfile(ctx context.Context, id uint, doctor *models.Doctor, degrees []models.DoctorDegree) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":      doctor.Name,
			"email":     doctor.Email,
			"image_url": doctor.ImageURL,
			"specialty": doctor.Specialty,
			"address":   doctor.Address,
			"phone":     doctor.Phone,
		}
		if err := tx.Model(&models.Doctor{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update doctor profile: %w", err)
		}

		if degrees != nil {
			if err := tx.Where("doctor_id = ?", id).Delete(&models.DoctorDegree{}).Error; err != nil {
				return fmt.Errorf("failed to clear doctor degrees: %w", err)
			}
			for i := range degrees {
				degrees[i].ID = 0
				degrees[i].DoctorID = id
			}
			if len(degrees) > 0 {
				if err := tx.Create(&degrees).Error; err != nil {
					return fmt.Errorf("failed to insert doctor degrees: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := r.cache.Delete(ctx, r.getProfileCacheKey(doctor.RegNo)); err != nil {
		log.Printf("Failed to delete doctor profile cache: %v", err)
	}
	return nil
}

func (r *doctorRepository) getProfileCacheKey(regNo string) string {
	return fmt.Sprintf("doctor_profile_cache:%s", regNo)
}
