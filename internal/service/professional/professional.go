// Package professional manages professional profiles: the credentials row a
// user publishes on top of their profile, together with its availability
// schedule and appointments.
package professional

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bookline/bookline_backend/internal/model"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	ProfileID      uint
	Qualifications string
	Biography      *string
}

type UpdateRequest struct {
	ProfessionalID uint
	Qualifications *string
	Bio            *string
}

// ProfileInfo is the public slice of the owning user profile.
type ProfileInfo struct {
	Bio string
}

type AvailabilityEntry struct {
	Datetime    time.Time
	IsAvailable bool
}

type AppointmentEntry struct {
	ScheduledTime time.Time
	Status        string
}

// Detail is the full professional view: credentials, the owning profile's
// bio, the availability schedule and booked appointments. The professional's
// own id is deliberately not part of it; callers already have it.
type Detail struct {
	Profile        ProfileInfo
	Qualifications string
	Availabilities []AvailabilityEntry
	Appointments   []AppointmentEntry
}

type UpdateResult struct {
	Success        bool
	Message        string
	UpdatedProfile *Detail
}

// DeleteResult reports the outcome in-band: exactly one of Confirmation and
// Error is non-empty.
type DeleteResult struct {
	Confirmation string
	Error        string
}

type Summary struct {
	ID             uint
	FirstName      string
	LastName       string
	Qualifications string
}

// Notifier enqueues a notification record for a user. nil disables
// notifications.
type Notifier interface {
	Enqueue(ctx context.Context, userID uint, message string) (*model.Notification, error)
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Detail, error)
	Get(ctx context.Context, professionalID uint) (*Detail, error)
	Update(ctx context.Context, req UpdateRequest) (*UpdateResult, error)
	Delete(ctx context.Context, professionalID uint) (*DeleteResult, error)
	List(ctx context.Context) ([]Summary, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type professionalService struct {
	db       *gorm.DB
	notifier Notifier
}

func New(db *gorm.DB, notifier Notifier) Service {
	return &professionalService{db: db, notifier: notifier}
}

func (s *professionalService) Create(ctx context.Context, req CreateRequest) (*Detail, error) {
	var profile model.UserProfile
	err := s.db.WithContext(ctx).First(&profile, req.ProfileID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	prof := model.ProfessionalProfile{
		ProfileID:      req.ProfileID,
		Qualifications: req.Qualifications,
	}
	if err := s.db.WithContext(ctx).Create(&prof).Error; err != nil {
		return nil, fmt.Errorf("create professional: %w", err)
	}

	if bio := strVal(req.Biography); bio != "" {
		err := s.db.WithContext(ctx).
			Model(&model.UserProfile{}).
			Where("id = ?", req.ProfileID).
			Update("bio", bio).Error
		if err != nil {
			return nil, fmt.Errorf("update bio: %w", err)
		}
	}

	return s.detail(ctx, prof.ID)
}

func (s *professionalService) Get(ctx context.Context, professionalID uint) (*Detail, error) {
	return s.detail(ctx, professionalID)
}

func (s *professionalService) Update(ctx context.Context, req UpdateRequest) (*UpdateResult, error) {
	var prof model.ProfessionalProfile
	err := s.db.WithContext(ctx).First(&prof, req.ProfessionalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &UpdateResult{
				Success: false,
				Message: fmt.Sprintf("No professional profile found with ID: %d", req.ProfessionalID),
			}, nil
		}
		return nil, fmt.Errorf("get professional: %w", err)
	}

	// The bio lives on the user profile, not the professional row, and is
	// written first.
	if bio := strVal(req.Bio); bio != "" {
		err := s.db.WithContext(ctx).
			Model(&model.UserProfile{}).
			Where("id = ?", prof.ProfileID).
			Update("bio", bio).Error
		if err != nil {
			return nil, fmt.Errorf("update bio: %w", err)
		}
	}

	if q := strVal(req.Qualifications); q != "" {
		err := s.db.WithContext(ctx).
			Model(&model.ProfessionalProfile{}).
			Where("id = ?", req.ProfessionalID).
			Update("qualifications", q).Error
		if err != nil {
			return nil, fmt.Errorf("update qualifications: %w", err)
		}
	}

	updated, err := s.detail(ctx, req.ProfessionalID)
	if err != nil {
		return nil, fmt.Errorf("reload professional: %w", err)
	}

	return &UpdateResult{
		Success:        true,
		Message:        "Profile successfully updated.",
		UpdatedProfile: updated,
	}, nil
}

// Delete removes a professional profile and its dependent rows, then leaves a
// notification for the owning user. Every failure is reported in-band.
func (s *professionalService) Delete(ctx context.Context, professionalID uint) (*DeleteResult, error) {
	var prof model.ProfessionalProfile
	err := s.db.WithContext(ctx).First(&prof, professionalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &DeleteResult{Error: "Professional profile not found."}, nil
		}
		return deleteFailure(err), nil
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"availabilities", func() error {
			return s.db.WithContext(ctx).Where("professional_id = ?", professionalID).Delete(&model.Availability{}).Error
		}},
		{"appointments", func() error {
			return s.db.WithContext(ctx).Where("professional_id = ?", professionalID).Delete(&model.Appointment{}).Error
		}},
		{"reviews", func() error {
			return s.db.WithContext(ctx).Where("professional_id = ?", professionalID).Delete(&model.Review{}).Error
		}},
		{"professional", func() error {
			return s.db.WithContext(ctx).Delete(&model.ProfessionalProfile{}, professionalID).Error
		}},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return deleteFailure(fmt.Errorf("delete %s: %w", step.name, err)), nil
		}
	}

	if s.notifier != nil {
		msg := fmt.Sprintf("Professional Profile with ID %d has been deleted.", professionalID)
		if _, err := s.notifier.Enqueue(ctx, prof.ProfileID, msg); err != nil {
			return deleteFailure(err), nil
		}
	}

	return &DeleteResult{Confirmation: "Professional profile successfully deleted."}, nil
}

func (s *professionalService) List(ctx context.Context) ([]Summary, error) {
	var profs []*model.ProfessionalProfile
	if err := s.db.WithContext(ctx).Find(&profs).Error; err != nil {
		return nil, fmt.Errorf("list professionals: %w", err)
	}
	if len(profs) == 0 {
		return []Summary{}, nil
	}

	profileIDs := make([]uint, 0, len(profs))
	for _, p := range profs {
		profileIDs = append(profileIDs, p.ProfileID)
	}
	var profiles []*model.UserProfile
	if err := s.db.WithContext(ctx).Where("id IN ?", profileIDs).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	byID := make(map[uint]*model.UserProfile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	out := make([]Summary, 0, len(profs))
	for _, prof := range profs {
		profile, ok := byID[prof.ProfileID]
		if !ok {
			// Read paths do not guard against broken profile chains.
			return nil, fmt.Errorf("profile %d not found for professional %d", prof.ProfileID, prof.ID)
		}
		out = append(out, Summary{
			ID:             prof.ID,
			FirstName:      profile.FirstName,
			LastName:       profile.LastName,
			Qualifications: prof.Qualifications,
		})
	}
	return out, nil
}

// detail assembles the full view for one professional.
func (s *professionalService) detail(ctx context.Context, professionalID uint) (*Detail, error) {
	var prof model.ProfessionalProfile
	err := s.db.WithContext(ctx).
		Preload("Availabilities").
		Preload("Appointments").
		First(&prof, professionalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get professional: %w", err)
	}

	var profile model.UserProfile
	if err := s.db.WithContext(ctx).First(&profile, prof.ProfileID).Error; err != nil {
		// Read paths do not guard against broken profile chains.
		return nil, fmt.Errorf("get profile %d for professional %d: %w", prof.ProfileID, professionalID, err)
	}

	availabilities := make([]AvailabilityEntry, 0, len(prof.Availabilities))
	for _, a := range prof.Availabilities {
		availabilities = append(availabilities, AvailabilityEntry{
			Datetime:    a.Datetime,
			IsAvailable: a.IsAvailable,
		})
	}
	appointments := make([]AppointmentEntry, 0, len(prof.Appointments))
	for _, a := range prof.Appointments {
		appointments = append(appointments, AppointmentEntry{
			ScheduledTime: a.ScheduledTime,
			Status:        a.Status,
		})
	}

	return &Detail{
		Profile:        ProfileInfo{Bio: profile.Bio},
		Qualifications: prof.Qualifications,
		Availabilities: availabilities,
		Appointments:   appointments,
	}, nil
}

func deleteFailure(err error) *DeleteResult {
	return &DeleteResult{
		Error: fmt.Sprintf("Failed to delete professional profile: %s", err),
	}
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
