package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/bookline/bookline_backend/internal/model"
	"github.com/bookline/bookline_backend/internal/service/availability"
	"github.com/bookline/bookline_backend/internal/streams"
	"github.com/bookline/bookline_backend/pkg/constants"
	"github.com/bookline/bookline_backend/pkg/util/codes"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type BookResult struct {
	Success       bool
	Message       string
	AppointmentID *uint
	Reference     string
}

type CancelResult struct {
	Success bool
	Message string
}

type UpdateRequest struct {
	AppointmentID    uint
	NewScheduledTime *time.Time
	Status           string
}

type UpdateResult struct {
	Success      bool
	Message      string
	Appointment  *model.Appointment
	Notification *model.Notification
}

// AppointmentDetail is one row of a user's personal schedule.
type AppointmentDetail struct {
	ID               uint
	ScheduledTime    time.Time
	Status           string
	Reference        string
	ProfessionalName string
	ProfessionalID   uint
}

type UserBookingProfile struct {
	UserID   uint
	Email    string
	FullName string
}

type ProfessionalBookingProfile struct {
	ProfessionalID uint
	Qualifications string
	Reviews        []string
}

// BookingDetail is the admin overview row: one appointment with both parties
// resolved.
type BookingDetail struct {
	AppointmentID       uint
	ScheduledTime       time.Time
	Status              string
	UserDetails         UserBookingProfile
	ProfessionalDetails ProfessionalBookingProfile
}

// Ledger is the slice of the availability service the booking flow needs.
type Ledger interface {
	Reserve(ctx context.Context, professionalID uint, ts time.Time) (*model.Availability, error)
	Release(ctx context.Context, professionalID uint, ts time.Time) error
}

type Notifier interface {
	Enqueue(ctx context.Context, userID uint, message string) (*model.Notification, error)
	EnqueueWithData(ctx context.Context, userID uint, message string, data map[string]any) (*model.Notification, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, ev streams.Event) (string, error)
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Book(ctx context.Context, userID, professionalID uint, scheduledTime time.Time) (*BookResult, error)
	Cancel(ctx context.Context, appointmentID uint) (*CancelResult, error)
	Update(ctx context.Context, req UpdateRequest) (*UpdateResult, error)

	Get(ctx context.Context, id uint) (*model.Appointment, error)
	ListForUser(ctx context.Context, userID uint) ([]AppointmentDetail, error)
	AdminOverview(ctx context.Context) ([]BookingDetail, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type bookingService struct {
	db       *gorm.DB
	ledger   Ledger
	notifier Notifier
	events   EventPublisher
}

func New(db *gorm.DB, ledger Ledger, notifier Notifier, events EventPublisher) Service {
	return &bookingService{db: db, ledger: ledger, notifier: notifier, events: events}
}

// Book reserves a free slot, creates the appointment, flips the slot and
// notifies the professional. The writes are sequential, not transactional:
// a failure mid-flight leaves the earlier writes in place.
func (s *bookingService) Book(ctx context.Context, userID, professionalID uint, scheduledTime time.Time) (*BookResult, error) {
	slot, err := s.ledger.Reserve(ctx, professionalID, scheduledTime)
	if err != nil {
		if errors.Is(err, availability.ErrSlotUnavailable) {
			return &BookResult{Success: false, Message: "No available slots at the requested time."}, nil
		}
		return nil, err
	}

	ref, err := codes.GenerateBookingReference()
	if err != nil {
		return nil, fmt.Errorf("generate reference: %w", err)
	}

	appt := model.Appointment{
		UserID:         userID,
		ProfessionalID: professionalID,
		ScheduledTime:  scheduledTime,
		Reference:      ref,
	}
	if err := s.db.WithContext(ctx).Create(&appt).Error; err != nil {
		// The create failure is reported in-band, mirroring the endpoint's
		// original contract.
		return &BookResult{Success: false, Message: err.Error()}, nil
	}

	err = s.db.WithContext(ctx).
		Model(&model.Availability{}).
		Where("id = ?", slot.ID).
		Update("is_available", false).Error
	if err != nil {
		return nil, fmt.Errorf("hold slot: %w", err)
	}

	msg := fmt.Sprintf("New appointment booked for %s", scheduledTime.Format("2006-01-02 15:04:05"))
	if _, err := s.notifier.EnqueueWithData(ctx, professionalID, msg, map[string]any{"appointment_id": appt.ID}); err != nil {
		slog.WarnContext(ctx, "failed to enqueue booking notification",
			"appointment_id", appt.ID, "professional_id", professionalID, "error", err)
	}

	s.publish(ctx, streams.BookingCreated(appt.ID, userID, professionalID))

	id := appt.ID
	return &BookResult{
		Success:       true,
		Message:       "Appointment booked successfully.",
		AppointmentID: &id,
		Reference:     ref,
	}, nil
}

func (s *bookingService) Cancel(ctx context.Context, appointmentID uint) (*CancelResult, error) {
	var appt model.Appointment
	err := s.db.WithContext(ctx).First(&appt, appointmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CancelResult{Success: false, Message: "Appointment not found."}, nil
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}

	if appt.Status == constants.StatusCancelled {
		return &CancelResult{Success: false, Message: "Appointment is already cancelled."}, nil
	}

	err = s.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("id = ?", appointmentID).
		Update("status", constants.StatusCancelled).Error
	if err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	// Bulk release by (professional, instant): duplicate slot rows for the
	// same pair all flip back together.
	if err := s.ledger.Release(ctx, appt.ProfessionalID, appt.ScheduledTime); err != nil {
		return nil, err
	}

	if _, err := s.notifier.Enqueue(ctx, appt.UserID, "Your appointment has been cancelled."); err != nil {
		slog.WarnContext(ctx, "failed to enqueue cancellation notification",
			"appointment_id", appointmentID, "user_id", appt.UserID, "error", err)
	}
	if _, err := s.notifier.Enqueue(ctx, appt.ProfessionalID, "An appointment has been cancelled."); err != nil {
		slog.WarnContext(ctx, "failed to enqueue cancellation notification",
			"appointment_id", appointmentID, "professional_id", appt.ProfessionalID, "error", err)
	}

	s.publish(ctx, streams.BookingCancelled(appointmentID, appt.UserID, appt.ProfessionalID))

	return &CancelResult{Success: true, Message: "The appointment has been successfully cancelled."}, nil
}

// Update applies a status change and optional reschedule. Any failure after
// the lookup is reported in-band with the raw error text; this is the one
// flow with that contract. The availability ledger is never touched here,
// even when the new status is CANCELLED.
func (s *bookingService) Update(ctx context.Context, req UpdateRequest) (*UpdateResult, error) {
	var appt model.Appointment
	err := s.db.WithContext(ctx).First(&appt, req.AppointmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &UpdateResult{Success: false, Message: "Appointment not found."}, nil
		}
		return updateFailure(err), nil
	}

	updates := map[string]any{"status": req.Status}
	if req.NewScheduledTime != nil {
		updates["scheduled_time"] = *req.NewScheduledTime
	}
	err = s.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("id = ?", req.AppointmentID).
		Updates(updates).Error
	if err != nil {
		return updateFailure(err), nil
	}

	var updated model.Appointment
	if err := s.db.WithContext(ctx).First(&updated, req.AppointmentID).Error; err != nil {
		return updateFailure(err), nil
	}

	notif, err := s.notifier.Enqueue(ctx, updated.UserID,
		fmt.Sprintf("Appointment status updated to %s.", req.Status))
	if err != nil {
		return updateFailure(err), nil
	}

	return &UpdateResult{
		Success:      true,
		Message:      "Appointment updated successfully.",
		Appointment:  &updated,
		Notification: notif,
	}, nil
}

func (s *bookingService) Get(ctx context.Context, id uint) (*model.Appointment, error) {
	var appt model.Appointment
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("User.Profile").
		Preload("Professional").
		First(&appt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return &appt, nil
}

func (s *bookingService) ListForUser(ctx context.Context, userID uint) ([]AppointmentDetail, error) {
	var appts []*model.Appointment
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	names, err := s.namesForProfessionals(ctx, appts)
	if err != nil {
		return nil, err
	}

	out := make([]AppointmentDetail, 0, len(appts))
	for _, appt := range appts {
		name, ok := names[appt.ProfessionalID]
		if !ok {
			return nil, fmt.Errorf("profile not found for professional %d", appt.ProfessionalID)
		}
		out = append(out, AppointmentDetail{
			ID:               appt.ID,
			ScheduledTime:    appt.ScheduledTime,
			Status:           appt.Status,
			Reference:        appt.Reference,
			ProfessionalName: name,
			ProfessionalID:   appt.ProfessionalID,
		})
	}
	return out, nil
}

func (s *bookingService) AdminOverview(ctx context.Context) ([]BookingDetail, error) {
	var appts []*model.Appointment
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("User.Profile").
		Preload("Professional").
		Preload("Professional.Reviews").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	out := make([]BookingDetail, 0, len(appts))
	for _, appt := range appts {
		if appt.User == nil || appt.User.Profile == nil {
			return nil, fmt.Errorf("user profile not found for appointment %d", appt.ID)
		}
		if appt.Professional == nil {
			return nil, fmt.Errorf("professional not found for appointment %d", appt.ID)
		}

		reviews := make([]string, 0, len(appt.Professional.Reviews))
		for _, r := range appt.Professional.Reviews {
			reviews = append(reviews, r.Content)
		}

		out = append(out, BookingDetail{
			AppointmentID: appt.ID,
			ScheduledTime: appt.ScheduledTime,
			Status:        appt.Status,
			UserDetails: UserBookingProfile{
				UserID:   appt.User.ID,
				Email:    appt.User.Email,
				FullName: appt.User.Profile.FirstName + " " + appt.User.Profile.LastName,
			},
			ProfessionalDetails: ProfessionalBookingProfile{
				ProfessionalID: appt.Professional.ID,
				Qualifications: appt.Professional.Qualifications,
				Reviews:        reviews,
			},
		})
	}
	return out, nil
}

func (s *bookingService) publish(ctx context.Context, ev streams.Event) {
	if s.events == nil {
		return
	}
	if _, err := s.events.Publish(ctx, ev); err != nil {
		slog.WarnContext(ctx, "failed to publish booking event",
			"kind", ev.Kind, "appointment_id", ev.AppointmentID, "error", err)
	}
}

// namesForProfessionals resolves professional ids to display names in two
// queries.
func (s *bookingService) namesForProfessionals(ctx context.Context, appts []*model.Appointment) (map[uint]string, error) {
	if len(appts) == 0 {
		return map[uint]string{}, nil
	}

	profIDs := make([]uint, 0, len(appts))
	seen := make(map[uint]bool, len(appts))
	for _, appt := range appts {
		if !seen[appt.ProfessionalID] {
			seen[appt.ProfessionalID] = true
			profIDs = append(profIDs, appt.ProfessionalID)
		}
	}

	var profs []*model.ProfessionalProfile
	if err := s.db.WithContext(ctx).Where("id IN ?", profIDs).Find(&profs).Error; err != nil {
		return nil, fmt.Errorf("list professionals: %w", err)
	}

	profileIDs := make([]uint, 0, len(profs))
	profByProfile := make(map[uint]uint, len(profs))
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

	out := make(map[uint]string, len(profiles))
	for _, profile := range profiles {
		if profID, ok := profByProfile[profile.ID]; ok {
			out[profID] = profile.FirstName + " " + profile.LastName
		}
	}
	return out, nil
}

func updateFailure(err error) *UpdateResult {
	return &UpdateResult{
		Success: false,
		Message: fmt.Sprintf("Error updating appointment: %s", err),
	}
}
