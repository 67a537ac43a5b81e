package services

import (
	"MediBook/models"
	"MediBook/repositories"
	"context"
)

// DoctorService covers the doctor-facing profile and consultation
// location management.
type DoctorService struct {
	doctors   repositories.DoctorRepository
	locations repositories.LocationRepository
}

func NewDoctorService(doctors repositories.DoctorRepository, locations repositories.LocationRepository) *DoctorService {
	return &DoctorService{doctors: doctors, locations: locations}
}

func (s *DoctorService) GetProfile(ctx context.Context, regNo string) (*models.Doctor, error) {
	return s.doctors.GetProfile(ctx, regNo)
}

func (s *DoctorService) UpdateProfile(ctx context.Context, doctorID uint, doctor *models.Doctor, degrees []models.DoctorDegree) error {
	return s.doctors.UpdateProfile(ctx, doctorID, doctor, degrees)
}

// ResolvePublicProfile serves the public booking page: the doctor's
// profile plus only the published locations.
func (s *DoctorService) ResolvePublicProfile(ctx context.Context, regNo string) (*models.Doctor, []models.ConsultationLocation, error) {
	doctor, err := s.doctors.GetProfile(ctx, regNo)
	if err != nil {
		return nil, nil, err
	}
	locations, err := s.locations.List(ctx, doctor.ID, repositories.LocationFilter{})
	if err != nil {
		return nil, nil, err
	}
	published := make([]models.ConsultationLocation, 0, len(locations))
	for _, loc := range locations {
		if loc.IsPublished {
			published = append(published, loc)
		}
	}
	return doctor, published, nil
}

func (s *DoctorService) CreateLocation(ctx context.Context, doctorID uint, location *models.ConsultationLocation) error {
	location.DoctorID = doctorID
	return s.locations.CreateWithSchedule(ctx, location)
}

func (s *DoctorService) UpdateLocation(ctx context.Context, doctorID, locationID uint, location *models.ConsultationLocation) error {
	return s.locations.UpdateWithSchedule(ctx, doctorID, locationID, location)
}

func (s *DoctorService) DeleteLocation(ctx context.Context, doctorID, locationID uint) error {
	return s.locations.Delete(ctx, doctorID, locationID)
}

func (s *DoctorService) PublishLocation(ctx context.Context, doctorID, locationID uint, publish bool) error {
	return s.locations.TogglePublish(ctx, doctorID, locationID, publish)
}

func (s *DoctorService) ListLocations(ctx context.Context, doctorID uint, filter repositories.LocationFilter) ([]models.ConsultationLocation, error) {
	return s.locations.List(ctx, doctorID, filter)
}
