package availability

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

type SetRequest struct {
	ProfessionalID uint
	Datetime       time.Time
	IsAvailable    bool
}

type SetResult struct {
	ProfessionalID uint
	UpdatedStatus  bool
	Message        string
}

// ProfessionalAvailability is one availability row joined with the owning
// professional's display name. NextAvailableTime is the row's own datetime
// when the slot is free, nil otherwise.
type ProfessionalAvailability struct {
	ProfessionalID    uint
	Name              string
	Availability      bool
	NextAvailableTime *time.Time
}

type AvailabilityRecord struct {
	Datetime    time.Time
	IsAvailable bool
}

// Notifier enqueues a notification record for a user.
type Notifier interface {
	Enqueue(ctx context.Context, userID uint, message string) (*model.Notification, error)
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

// Service is the availability ledger: the set of (professional, timestamp)
// slots and their is_available flag.
type Service interface {
	// Ledger primitives
	FindSlot(ctx context.Context, professionalID uint, ts time.Time) (*model.Availability, error)
	ListSlots(ctx context.Context, professionalID *uint, date *time.Time) ([]*model.Availability, error)
	SetAvailability(ctx context.Context, req SetRequest) (*SetResult, error)

	// Reserve returns the slot iff it exists and is free. It never flips the
	// flag itself; the booking flow does that as a separate write.
	Reserve(ctx context.Context, professionalID uint, ts time.Time) (*model.Availability, error)

	// Release bulk-sets is_available=true on every row matching the exact
	// (professionalID, ts) pair, healing duplicate rows in one pass.
	Release(ctx context.Context, professionalID uint, ts time.Time) error

	// Query views
	CheckAvailability(ctx context.Context, professionalID *uint, date *time.Time) ([]ProfessionalAvailability, error)
	AvailableTimeSlots(ctx context.Context, professionalID uint, start, end time.Time) ([]ProfessionalAvailability, error)
	History(ctx context.Context, professionalID uint) ([]AvailabilityRecord, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type availabilityService struct {
	db       *gorm.DB
	notifier Notifier
}

func New(db *gorm.DB, notifier Notifier) Service {
	return &availabilityService{db: db, notifier: notifier}
}

func (s *availabilityService) FindSlot(ctx context.Context, professionalID uint, ts time.Time) (*model.Availability, error) {
	var slot model.Availability
	err := s.db.WithContext(ctx).
		Where("professional_id = ? AND datetime = ?", professionalID, ts).
		First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("find slot: %w", err)
	}
	return &slot, nil
}

func (s *availabilityService) ListSlots(ctx context.Context, professionalID *uint, date *time.Time) ([]*model.Availability, error) {
	q := s.db.WithContext(ctx).Model(&model.Availability{})

	if professionalID != nil {
		q = q.Where("professional_id = ?", *professionalID)
	}
	if date != nil {
		dayStart, dayEnd := dayBounds(*date)
		q = q.Where("datetime >= ? AND datetime < ?", dayStart, dayEnd)
	}

	var slots []*model.Availability
	if err := q.Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

func (s *availabilityService) SetAvailability(ctx context.Context, req SetRequest) (*SetResult, error) {
	var slot model.Availability
	err := s.db.WithContext(ctx).
		Where("professional_id = ? AND datetime = ?", req.ProfessionalID, req.Datetime).
		First(&slot).Error

	switch {
	case err == nil:
		if err := s.db.WithContext(ctx).
			Model(&model.Availability{}).
			Where("id = ?", slot.ID).
			Update("is_available", req.IsAvailable).Error; err != nil {
			return nil, fmt.Errorf("update slot: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		slot = model.Availability{
			ProfessionalID: req.ProfessionalID,
			Datetime:       req.Datetime,
			IsAvailable:    req.IsAvailable,
		}
		if err := s.db.WithContext(ctx).Create(&slot).Error; err != nil {
			return nil, fmt.Errorf("create slot: %w", err)
		}
	default:
		return nil, fmt.Errorf("find slot: %w", err)
	}

	state := "available"
	if !req.IsAvailable {
		state = "not available"
	}
	msg := fmt.Sprintf("Your availability for %s has been set to %s.",
		req.Datetime.Format("2006-01-02 15:04"), state)

	// The notification recipient is the professional id used as a user id,
	// matching the ledger's unlinked notification rows.
	if _, err := s.notifier.Enqueue(ctx, req.ProfessionalID, msg); err != nil {
		return nil, fmt.Errorf("enqueue notification: %w", err)
	}

	return &SetResult{
		ProfessionalID: req.ProfessionalID,
		UpdatedStatus:  req.IsAvailable,
		Message:        "Availability successfully updated and notification sent.",
	}, nil
}

func (s *availabilityService) Reserve(ctx context.Context, professionalID uint, ts time.Time) (*model.Availability, error) {
	var slot model.Availability
	err := s.db.WithContext(ctx).
		Where("professional_id = ? AND datetime = ? AND is_available = ?", professionalID, ts, true).
		First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("reserve slot: %w", err)
	}
	return &slot, nil
}

func (s *availabilityService) Release(ctx context.Context, professionalID uint, ts time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&model.Availability{}).
		Where("professional_id = ? AND datetime = ?", professionalID, ts).
		Update("is_available", true).Error
	if err != nil {
		return fmt.Errorf("release slots: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Query views
// ---------------------------------------------------------------------------

func (s *availabilityService) CheckAvailability(ctx context.Context, professionalID *uint, date *time.Time) ([]ProfessionalAvailability, error) {
	q := s.db.WithContext(ctx).Model(&model.Availability{})

	if professionalID != nil {
		q = q.Where("professional_id = ?", *professionalID)
	}
	if date != nil {
		dayStart, dayEnd := dayBounds(*date)
		q = q.Where("datetime >= ? AND datetime < ?", dayStart, dayEnd)
	}

	var slots []*model.Availability
	if err := q.Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	profiles, err := s.profilesForSlots(ctx, slots)
	if err != nil {
		return nil, err
	}

	out := make([]ProfessionalAvailability, 0, len(slots))
	for _, slot := range slots {
		profile, ok := profiles[slot.ProfessionalID]
		if !ok {
			// Read paths do not guard against broken profile chains.
			return nil, fmt.Errorf("profile not found for professional %d", slot.ProfessionalID)
		}

		entry := ProfessionalAvailability{
			// Echoes the user profile id, not the professional profile id.
			ProfessionalID: profile.ID,
			Name:           profile.FirstName + " " + profile.LastName,
			Availability:   slot.IsAvailable,
		}
		if slot.IsAvailable {
			t := slot.Datetime
			entry.NextAvailableTime = &t
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *availabilityService) AvailableTimeSlots(ctx context.Context, professionalID uint, start, end time.Time) ([]ProfessionalAvailability, error) {
	var prof model.ProfessionalProfile
	err := s.db.WithContext(ctx).Where("id = ?", professionalID).First(&prof).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []ProfessionalAvailability{}, nil
		}
		return nil, fmt.Errorf("get professional: %w", err)
	}

	var profile model.UserProfile
	if err := s.db.WithContext(ctx).Where("id = ?", prof.ProfileID).First(&profile).Error; err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	var slots []*model.Availability
	err = s.db.WithContext(ctx).
		Where("professional_id = ? AND datetime >= ? AND datetime <= ?", professionalID, start, end).
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	out := make([]ProfessionalAvailability, 0, len(slots))
	for _, slot := range slots {
		entry := ProfessionalAvailability{
			ProfessionalID: professionalID,
			Name:           profile.FirstName + " " + profile.LastName,
			Availability:   slot.IsAvailable,
		}
		if slot.IsAvailable {
			t := slot.Datetime
			entry.NextAvailableTime = &t
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *availabilityService) History(ctx context.Context, professionalID uint) ([]AvailabilityRecord, error) {
	var slots []*model.Availability
	err := s.db.WithContext(ctx).
		Where("professional_id = ?", professionalID).
		Order("datetime asc").
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	history := make([]AvailabilityRecord, 0, len(slots))
	for _, slot := range slots {
		history = append(history, AvailabilityRecord{
			Datetime:    slot.Datetime,
			IsAvailable: slot.IsAvailable,
		})
	}
	return history, nil
}

// profilesForSlots resolves professional_id -> owning user profile for a batch
// of slots in two queries.
func (s *availabilityService) profilesForSlots(ctx context.Context, slots []*model.Availability) (map[uint]*model.UserProfile, error) {
	if len(slots) == 0 {
		return map[uint]*model.UserProfile{}, nil
	}

	profIDs := make([]uint, 0, len(slots))
	seen := make(map[uint]bool, len(slots))
	for _, slot := range slots {
		if !seen[slot.ProfessionalID] {
			seen[slot.ProfessionalID] = true
			profIDs = append(profIDs, slot.ProfessionalID)
		}
	}

	var profs []*model.ProfessionalProfile
	if err := s.db.WithContext(ctx).Where("id IN ?", profIDs).Find(&profs).Error; err != nil {
		return nil, fmt.Errorf("list professionals: %w", err)
	}

	profileIDs := make([]uint, 0, len(profs))
	profByProfile := make(map[uint]uint, len(profs)) // profile id -> professional id
	for _, p := range profs {
		profileIDs = append(profileIDs, p.ProfileID)
		profByProfile[p.ProfileID] = p.ID
	}

	var profiles []*model.UserProfile
	if len(profileIDs) > 0 {
		if err := s.db.WithContext(ctx).Where("id IN ?", profileIDs).Find(&profiles).Error; err != nil {
			return nil, fmt.Errorf("list profiles: %w", err)
		}
	}

	out := make(map[uint]*model.UserProfile, len(profiles))
	for _, profile := range profiles {
		if profID, ok := profByProfile[profile.ID]; ok {
			out[profID] = profile
		}
	}
	return out, nil
}

// dayBounds expands a calendar date to [00:00:00, 23:59:59.999999] bounds.
func dayBounds(date time.Time) (time.Time, time.Time) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Microsecond)
	return dayStart, dayEnd
}
