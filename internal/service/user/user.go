package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nyaruka/phonenumbers"
	"gorm.io/gorm"

	"github.com/bookline/bookline_backend/internal/model"
	"github.com/bookline/bookline_backend/pkg/constants"
	"github.com/bookline/bookline_backend/pkg/crypto"
	"github.com/bookline/bookline_backend/pkg/email"
	"github.com/bookline/bookline_backend/pkg/util/password"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	Email    string
	Password string
	Role     string
}

type CreateResult struct {
	UserID uint
}

type ProfileInfo struct {
	Bio string
}

// Detail is the single-user view: account fields plus the profile when one
// exists.
type Detail struct {
	ID      uint
	Email   string
	Role    string
	Profile *ProfileInfo
}

type BasicInfo struct {
	ID    uint
	Email string
	Role  string
}

type UpdateRequest struct {
	UserID    uint
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	Bio       *string
	Phone     *string
}

type UpdateResult struct {
	UserID    uint
	Email     string
	FirstName string
	LastName  string
	Bio       string
}

type DeleteResult struct {
	Message string
}

// Mailer sends transactional mail. *email.Client satisfies it; nil disables
// outbound mail.
type Mailer interface {
	Send(ctx context.Context, m email.Message) error
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*CreateResult, error)
	Get(ctx context.Context, userID uint) (*Detail, error)
	List(ctx context.Context, emailContains, role *string) ([]BasicInfo, error)
	Update(ctx context.Context, req UpdateRequest) (*UpdateResult, error)
	Delete(ctx context.Context, userID uint) (*DeleteResult, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type userService struct {
	db        *gorm.DB
	mailer    Mailer
	cryptoKey []byte
	appName   string
}

func New(db *gorm.DB, mailer Mailer, cryptoKey []byte, appName string) Service {
	return &userService{db: db, mailer: mailer, cryptoKey: cryptoKey, appName: appName}
}

func (s *userService) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if !constants.ValidRole(req.Role) {
		return nil, ErrInvalidRole
	}

	var existing int64
	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ?", req.Email).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing > 0 {
		return nil, ErrEmailExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{Email: req.Email, PasswordHash: hash, Role: req.Role}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	// The 1-1 profile row is created up front so profile-dependent flows
	// always have one to write into.
	profile := model.UserProfile{UserID: user.ID}
	if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.Send(ctx, email.BuildWelcomeEmail(user.Email, "", s.appName)); err != nil {
			slog.WarnContext(ctx, "failed to send welcome email", "user_id", user.ID, "error", err)
		}
	}

	return &CreateResult{UserID: user.ID}, nil
}

func (s *userService) Get(ctx context.Context, userID uint) (*Detail, error) {
	var user model.User
	err := s.db.WithContext(ctx).Preload("Profile").First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	detail := &Detail{ID: user.ID, Email: user.Email, Role: user.Role}
	if user.Profile != nil {
		detail.Profile = &ProfileInfo{Bio: user.Profile.Bio}
	}
	return detail, nil
}

func (s *userService) List(ctx context.Context, emailContains, role *string) ([]BasicInfo, error) {
	q := s.db.WithContext(ctx).Model(&model.User{})

	if emailContains != nil && *emailContains != "" {
		q = q.Where("email LIKE ?", "%"+*emailContains+"%")
	}
	if role != nil && *role != "" {
		q = q.Where("role = ?", *role)
	}

	var users []*model.User
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]BasicInfo, 0, len(users))
	for _, u := range users {
		out = append(out, BasicInfo{ID: u.ID, Email: u.Email, Role: u.Role})
	}
	return out, nil
}

func (s *userService) Update(ctx context.Context, req UpdateRequest) (*UpdateResult, error) {
	var user model.User
	err := s.db.WithContext(ctx).Preload("Profile").First(&user, req.UserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	userUpdates := map[string]any{}
	if v := strVal(req.Email); v != "" {
		userUpdates["email"] = v
	}
	if v := strVal(req.Password); v != "" {
		hash, err := password.Hash(v)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		userUpdates["password_hash"] = hash
	}

	profileUpdates := map[string]any{}
	if v := strVal(req.FirstName); v != "" {
		profileUpdates["first_name"] = v
	}
	if v := strVal(req.LastName); v != "" {
		profileUpdates["last_name"] = v
	}
	if v := strVal(req.Bio); v != "" {
		profileUpdates["bio"] = v
	}
	if v := strVal(req.Phone); v != "" {
		enc, hash, err := s.encryptPhone(v)
		if err != nil {
			return nil, err
		}
		profileUpdates["phone_enc"] = enc
		profileUpdates["phone_hash"] = hash
		// A new number must be verified again.
		profileUpdates["phone_verified"] = false
	}

	if len(userUpdates) > 0 {
		err := s.db.WithContext(ctx).
			Model(&model.User{}).
			Where("id = ?", req.UserID).
			Updates(userUpdates).Error
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	// The response reads profile fields unconditionally, so a missing
	// profile row is an error even for account-only updates.
	if user.Profile == nil {
		return nil, fmt.Errorf("profile not found for user %d", req.UserID)
	}
	if len(profileUpdates) > 0 {
		err := s.db.WithContext(ctx).
			Model(&model.UserProfile{}).
			Where("id = ?", user.Profile.ID).
			Updates(profileUpdates).Error
		if err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}

	var updated model.User
	if err := s.db.WithContext(ctx).Preload("Profile").First(&updated, req.UserID).Error; err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}

	return &UpdateResult{
		UserID:    updated.ID,
		Email:     updated.Email,
		FirstName: updated.Profile.FirstName,
		LastName:  updated.Profile.LastName,
		Bio:       updated.Profile.Bio,
	}, nil
}

// Delete removes a user and everything hanging off it, in dependency order.
// The steps are sequential service-level deletes, not a database cascade.
func (s *userService) Delete(ctx context.Context, userID uint) (*DeleteResult, error) {
	var user model.User
	err := s.db.WithContext(ctx).Preload("Profile.Professional").First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &DeleteResult{Message: "User does not exist."}, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"appointments", func() error {
			return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Appointment{}).Error
		}},
		{"notifications", func() error {
			return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Notification{}).Error
		}},
		{"reviews", func() error {
			return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Review{}).Error
		}},
		{"sessions", func() error {
			return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.UserSession{}).Error
		}},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return nil, fmt.Errorf("delete %s: %w", step.name, err)
		}
	}

	if user.Profile != nil {
		if prof := user.Profile.Professional; prof != nil {
			profSteps := []struct {
				name string
				run  func() error
			}{
				{"availabilities", func() error {
					return s.db.WithContext(ctx).Where("professional_id = ?", prof.ID).Delete(&model.Availability{}).Error
				}},
				{"professional appointments", func() error {
					return s.db.WithContext(ctx).Where("professional_id = ?", prof.ID).Delete(&model.Appointment{}).Error
				}},
				{"professional reviews", func() error {
					return s.db.WithContext(ctx).Where("professional_id = ?", prof.ID).Delete(&model.Review{}).Error
				}},
				{"professional profile", func() error {
					return s.db.WithContext(ctx).Delete(&model.ProfessionalProfile{}, prof.ID).Error
				}},
			}
			for _, step := range profSteps {
				if err := step.run(); err != nil {
					return nil, fmt.Errorf("delete %s: %w", step.name, err)
				}
			}
		}

		if err := s.db.WithContext(ctx).Delete(&model.UserProfile{}, user.Profile.ID).Error; err != nil {
			return nil, fmt.Errorf("delete profile: %w", err)
		}
	}

	if err := s.db.WithContext(ctx).Delete(&model.User{}, userID).Error; err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}

	return &DeleteResult{Message: "User and related data deleted successfully."}, nil
}

// encryptPhone normalises to E.164, encrypts for storage and returns the
// lookup hash.
func (s *userService) encryptPhone(raw string) (enc, hash string, err error) {
	num, err := phonenumbers.Parse(raw, "")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", "", ErrInvalidPhone
	}
	e164 := phonenumbers.Format(num, phonenumbers.E164)

	enc, err = crypto.Encrypt(s.cryptoKey, e164)
	if err != nil {
		return "", "", fmt.Errorf("encrypt phone: %w", err)
	}
	return enc, crypto.Hash(e164), nil
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
