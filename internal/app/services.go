package app

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/bookline/bookline_backend/config"
	"github.com/bookline/bookline_backend/internal/service/auth"
	"github.com/bookline/bookline_backend/internal/service/availability"
	"github.com/bookline/bookline_backend/internal/service/booking"
	"github.com/bookline/bookline_backend/internal/service/notification"
	"github.com/bookline/bookline_backend/internal/service/professional"
	"github.com/bookline/bookline_backend/internal/service/user"
	"github.com/bookline/bookline_backend/internal/streams"
	"github.com/bookline/bookline_backend/pkg/constants"
	"github.com/bookline/bookline_backend/pkg/crypto"
	"github.com/bookline/bookline_backend/pkg/email"
	pasetotoken "github.com/bookline/bookline_backend/pkg/paseto"
	"github.com/bookline/bookline_backend/pkg/sms"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideUserService,
		ProvideAuthService,
		ProvideNotificationService,
		ProvideAvailabilityService,
		ProvideProfessionalService,
		ProvideBookingService,
		ProvidePasetoManager,
	),
)

func ProvideUserService(db *gorm.DB, emailClient *email.Client, cfg *config.Config) (user.Service, error) {
	key, err := crypto.KeyFromHex(cfg.Authentication.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("user service: invalid encryption key: %w", err)
	}
	var mailer user.Mailer
	if cfg.Email.Enabled {
		mailer = emailClient
	}
	return user.New(db, mailer, key, constants.ServiceDisplayName), nil
}

func ProvideAuthService(
	db *gorm.DB,
	rdb *redis.Client,
	smsCli *sms.Client,
	paseto *pasetotoken.Manager,
	notifSvc notification.Service,
	cfg *config.Config,
) (auth.Service, error) {
	return auth.New(db, rdb, smsCli, paseto, notifSvc, cfg)
}

func ProvideNotificationService(db *gorm.DB, pub *streams.Publisher, cfg *config.Config) notification.Service {
	var events notification.EventPublisher
	if cfg.Streams.Enabled {
		events = pub
	}
	return notification.New(db, events)
}

func ProvideAvailabilityService(db *gorm.DB, notifSvc notification.Service) availability.Service {
	return availability.New(db, notifSvc)
}

func ProvideProfessionalService(db *gorm.DB, notifSvc notification.Service) professional.Service {
	return professional.New(db, notifSvc)
}

func ProvideBookingService(
	db *gorm.DB,
	availSvc availability.Service,
	notifSvc notification.Service,
	pub *streams.Publisher,
	cfg *config.Config,
) booking.Service {
	var events booking.EventPublisher
	if cfg.Streams.Enabled {
		events = pub
	}
	return booking.New(db, availSvc, notifSvc, events)
}

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}
