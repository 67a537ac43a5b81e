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
	LocationCacheExpiry = 24 * time.Hour
)

// LocationFilter narrows the consultation-location listing.
type LocationFilter struct {
	LocationName string
	ActiveDay    string
	StartTime    string
	EndTime      string
	Search       string
}

// LocationRepository owns a doctor's consultation locations with their
// active days and time slots, and serves the slot-configuration lookup
// the booking engine depends on. Slot capacity is read fresh on every
// booking attempt; only the public listing is cached.
type LocationRepository interface {
	CreateWithSchedule(ctx context.Context, location *models.ConsultationLocation) error
	UpdateWithSchedule(ctx context.Context, doctorID, locationID uint, location *models.ConsultationLocation) error
	Delete(ctx context.Context, doctorID, locationID uint) error
	TogglePublish(ctx context.Context, doctorID, locationID uint, publish bool) error
	List(ctx context.Context, doctorID uint, filter LocationFilter) ([]models.ConsultationLocation, error)
	GetLocation(ctx context.Context, doctorID, locationID uint) (*models.ConsultationLocation, error)
	GetTimeSlot(ctx context.Context, locationID, slotID uint) (*models.TimeSlot, error)
}

type locationRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewLocationRepository(db *gorm.DB, cache *cache.Cache) LocationRepository {
	return &locationRepository{db: db, cache: cache}
}

// CreateWithSchedule inserts a location and its nested active days and
// time slots in one transaction.
func (r *locationRepository) CreateWithSchedule(ctx context.Context, location *models.ConsultationLocation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		days := location.ActiveDays
		location.ActiveDays = nil
		if err := tx.Omit("ActiveDays").Create(location).Error; err != nil {
			return fmt.Errorf("failed to create consultation location: %w", err)
		}
		for i := range days {
			day := days[i]
			slots := day.TimeSlots
			day.ID = 0
			day.LocationID = location.ID
			day.TimeSlots = nil
			if err := tx.Omit("TimeSlots").Create(&day).Error; err != nil {
				return fmt.Errorf("failed to create active day: %w", err)
			}
			for j := range slots {
				slots[j].ID = 0
				slots[j].ActiveDayID = day.ID
			}
			if len(slots) > 0 {
				if err := tx.Create(&slots).Error; err != nil {
					return fmt.Errorf("failed to create time slots: %w", err)
				}
			}
			day.TimeSlots = slots
			days[i] = day
		}
		location.ActiveDays = days
		return nil
	})
	if err != nil {
		return err
	}
	r.invalidateListCache(ctx, location.DoctorID)
	return nil
}

// UpdateWithSchedule updates the location fields and replaces the whole
// active-day/slot tree, matching how the schedule editor submits it.
func (r *locationRepository) UpdateWithSchedule(ctx context.Context, doctorID, locationID uint, location *models.ConsultationLocation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ConsultationLocation{}).
			Where("id = ? AND doctor_id = ?", locationID, doctorID).
			Updates(map[string]interface{}{
				"location_name":    location.LocationName,
				"address":          location.Address,
				"location_type":    location.LocationType,
				"room_number":      location.RoomNumber,
				"consultation_fee": location.ConsultationFee,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update consultation location: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrLocationNotFound
		}

		if err := deleteSchedule(tx, locationID); err != nil {
			return err
		}

		for i := range location.ActiveDays {
			day := location.ActiveDays[i]
			slots := day.TimeSlots
			day.ID = 0
			day.LocationID = locationID
			day.TimeSlots = nil
			if err := tx.Omit("TimeSlots").Create(&day).Error; err != nil {
				return fmt.Errorf("failed to recreate active day: %w", err)
			}
			for j := range slots {
				slots[j].ID = 0
				slots[j].ActiveDayID = day.ID
			}
			if len(slots) > 0 {
				if err := tx.Create(&slots).Error; err != nil {
					return fmt.Errorf("failed to recreate time slots: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.invalidateListCache(ctx, doctorID)
	return nil
}

// Delete removes a location and cascades to its days and slots.
// Owner-scoped: a foreign locationID deletes nothing.
func (r *locationRepository) Delete(ctx context.Context, doctorID, locationID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&models.ConsultationLocation{}).
			Where("id = ? AND doctor_id = ?", locationID, doctorID).
			Count(&owned).Error; err != nil {
			return fmt.Errorf("failed to check location ownership: %w", err)
		}
		if owned == 0 {
			return ErrLocationNotFound
		}
		if err := deleteSchedule(tx, locationID); err != nil {
			return err
		}
		if err := tx.Where("id = ? AND doctor_id = ?", locationID, doctorID).
			Delete(&models.ConsultationLocation{}).Error; err != nil {
			return fmt.Errorf("failed to delete consultation location: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.invalidateListCache(ctx, doctorID)
	return nil
}

func deleteSchedule(tx *gorm.DB, locationID uint) error {
	var dayIDs []uint
	if err := tx.Model(&models.ActiveDay{}).
		Where("location_id = ?", locationID).
		Pluck("id", &dayIDs).Error; err != nil {
		return fmt.Errorf("failed to list active days: %w", err)
	}
	if len(dayIDs) > 0 {
		if err := tx.Where("active_day_id IN ?", dayIDs).Delete(&models.TimeSlot{}).Error; err != nil {
			return fmt.Errorf("failed to delete time slots: %w", err)
		}
	}
	if err := tx.Where("location_id = ?", locationID).Delete(&models.ActiveDay{}).Error; err != nil {
		return fmt.Errorf("failed to delete active days: %w", err)
	}
	return nil
}

func (r *locationRepository) TogglePublish(ctx context.Context, doctorID, locationID uint, publish bool) error {
	res := r.db.WithContext(ctx).Model(&models.ConsultationLocation{}).
		Where("id = ? AND doctor_id = ?", locationID, doctorID).
		Update("is_published", publish)
	if res.Error != nil {
		return fmt.Errorf("failed to update publish status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrLocationNotFound
	}
	r.invalidateListCache(ctx, doctorID)
	return nil
}

// List returns the doctor's locations with their active days and slots,
// keeping only days with at least one slot matching the time filters
// and locations with at least one such day. The unfiltered listing is
// cached per doctor.
func (r *locationRepository) List(ctx context.Context, doctorID uint, filter LocationFilter) ([]models.ConsultationLocation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	unfiltered := filter == LocationFilter{}
	cacheKey := r.getListCacheKey(doctorID)
	if unfiltered {
		var cached []models.ConsultationLocation
		if ok, err := r.cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
			return cached, nil
		} else if err != nil {
			log.Printf("Failed to get locations from cache: %v", err)
		}
	}

	query := r.db.WithContext(ctx).Where("doctor_id = ?", doctorID)
	if filter.LocationName != "" {
		query = query.Where("location_name = ?", filter.LocationName)
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where("(location_name LIKE ? OR address LIKE ?)", term, term)
	}

	var locations []models.ConsultationLocation
	if err := query.Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("failed to list consultation locations: %w", err)
	}

	result := make([]models.ConsultationLocation, 0, len(locations))
	for _, loc := range locations {
		dayQuery := r.db.WithContext(ctx).Where("location_id = ? AND is_active = ?", loc.ID, true)
		if filter.ActiveDay != "" {
			dayQuery = dayQuery.Where("day = ?", filter.ActiveDay)
		}
		var days []models.ActiveDay
		if err := dayQuery.Find(&days).Error; err != nil {
			return nil, fmt.Errorf("failed to list active days: %w", err)
		}

		validDays := make([]models.ActiveDay, 0, len(days))
		for _, day := range days {
			slotQuery := r.db.WithContext(ctx).Where("active_day_id = ?", day.ID)
			if filter.StartTime != "" {
				slotQuery = slotQuery.Where("start_time >= ?", filter.StartTime)
			}
			if filter.EndTime != "" {
				slotQuery = slotQuery.Where("end_time <= ?", filter.EndTime)
			}
			var slots []models.TimeSlot
			if err := slotQuery.Find(&slots).Error; err != nil {
				return nil, fmt.Errorf("failed to list time slots: %w", err)
			}
			if len(slots) > 0 {
				day.TimeSlots = slots
				validDays = append(validDays, day)
			}
		}

		loc.ActiveDays = validDays
		if len(loc.ActiveDays) > 0 {
			result = append(result, loc)
		}
	}

	if unfiltered {
		if err := r.cache.SetJSON(ctx, cacheKey, result, LocationCacheExpiry); err != nil {
			log.Printf("Failed to set locations in cache: %v", err)
		}
	}
	return result, nil
}

// GetLocation fetches one location, owner-scoped.
func (r *locationRepository) GetLocation(ctx context.Context, doctorID, locationID uint) (*models.ConsultationLocation, error) {
	var location models.ConsultationLocation
	err := r.db.WithContext(ctx).
		Where("id = ? AND doctor_id = ?", locationID, doctorID).
		First(&location).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("failed to get consultation location: %w", err)
	}
	return &location, nil
}

// GetTimeSlot fetches a slot definition, verifying it belongs to the
// given location. Deliberately uncached: capacity edits made by the
// doctor must affect the very next allocation decision.
func (r *locationRepository) GetTimeSlot(ctx context.Context, locationID, slotID uint) (*models.TimeSlot, error) {
	var slot models.TimeSlot
	err := r.db.WithContext(ctx).
		Joins("JOIN active_days ON active_days.id = time_slots.active_day_id").
		Where("time_slots.id = ? AND active_days.location_id = ?", slotID, locationID).
		First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeSlotNotFound
		}
		return nil, fmt.Errorf("failed to get time slot: %w", err)
	}
	return &slot, nil
}

func (r *locationRepository) invalidateListCache(ctx context.Context, doctorID uint) {
	if err := r.cache.Delete(ctx, r.getListCacheKey(doctorID)); err != nil {
		log.Printf("Failed to delete locations cache: %v", err)
	}
}

func (r *locationRepository) getListCacheKey(doctorID uint) string {
	return fmt.Sprintf("locations_cache:%d", doctorID)
}
