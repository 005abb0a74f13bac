package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/bookline/bookline_backend/config"
	"github.com/bookline/bookline_backend/internal/model"
	"github.com/bookline/bookline_backend/internal/service/notification"
	"github.com/bookline/bookline_backend/internal/streams"
	"github.com/bookline/bookline_backend/pkg/constants"
	"github.com/bookline/bookline_backend/pkg/crypto"
	"github.com/bookline/bookline_backend/pkg/email"
	"github.com/bookline/bookline_backend/pkg/sms"
)

// WorkerModule registers the stream delivery worker and the reminder job.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc       fx.Lifecycle
	Cfg      *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	NotifSvc notification.Service
	Email    *email.Client
	SMS      *sms.Client
}

func RegisterWorkers(p WorkerParams) error {
	if p.Cfg.Streams.Enabled {
		if err := registerDeliveryWorker(p); err != nil {
			return err
		}
	}
	if p.Cfg.Reminder.Enabled && p.Cfg.Email.Enabled {
		if err := registerReminderJob(p); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// delivery worker
// ---------------------------------------------------------------------------

// deliveryWorker drains the events stream and turns domain events into
// outbound mail and SMS. Everything here is best-effort: a failed send is
// logged and the event is acknowledged anyway.
type deliveryWorker struct {
	db           *gorm.DB
	notifSvc     notification.Service
	email        *email.Client
	sms          *sms.Client
	encKey       []byte
	emailEnabled bool
	smsTemplate  string
}

func registerDeliveryWorker(p WorkerParams) error {
	encKey, err := crypto.KeyFromHex(p.Cfg.Authentication.EncryptionKey)
	if err != nil {
		return fmt.Errorf("delivery worker: invalid encryption key: %w", err)
	}

	w := &deliveryWorker{
		db:           p.DB,
		notifSvc:     p.NotifSvc,
		email:        p.Email,
		sms:          p.SMS,
		encKey:       encKey,
		emailEnabled: p.Cfg.Email.Enabled,
		smsTemplate:  p.Cfg.SMS.SMSIR.TemplateID,
	}

	consumerName := p.Cfg.Streams.ConsumerName
	if consumerName == "" {
		consumerName, _ = os.Hostname()
	}
	if consumerName == "" {
		consumerName = "worker"
	}

	var (
		consumer *streams.Consumer
		cancel   context.CancelFunc
	)

	p.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			c, err := streams.NewConsumer(p.Cfg.Redis, consumerName)
			if err != nil {
				return err
			}
			consumer = c

			runCtx, cancelFn := context.WithCancel(context.Background())
			cancel = cancelFn

			go func() {
				if err := consumer.Consume(runCtx, w.handle); err != nil && !errors.Is(err, context.Canceled) {
					slog.Error("delivery worker stopped", "error", err)
				}
			}()
			slog.Info("delivery worker started", "consumer", consumerName)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return consumer.Close()
		},
	})
	return nil
}

func (w *deliveryWorker) handle(ev streams.Event) error {
	switch ev.Kind {
	case streams.KindNotificationCreated:
		return w.deliverNotification(ev)
	case streams.KindBookingCreated:
		return w.sendBookingEmail(ev, false)
	case streams.KindBookingCancelled:
		return w.sendBookingEmail(ev, true)
	default:
		slog.Debug("delivery worker: unknown event kind", "kind", ev.Kind)
		return nil
	}
}

func (w *deliveryWorker) deliverNotification(ev streams.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var n model.Notification
	if err := w.db.WithContext(ctx).First(&n, ev.NotificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Warn("delivery worker: notification row missing", "notification_id", ev.NotificationID)
			return nil
		}
		return fmt.Errorf("load notification: %w", err)
	}

	var u model.User
	if err := w.db.WithContext(ctx).Preload("Profile").First(&u, n.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The ledger accepts recipient ids that are not user ids.
			slog.Debug("delivery worker: recipient is not a user", "user_id", n.UserID)
			return nil
		}
		return fmt.Errorf("load recipient: %w", err)
	}

	settings, err := w.notifSvc.Settings(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	firstName := ""
	if u.Profile != nil {
		firstName = u.Profile.FirstName
	}

	if w.emailEnabled && settings.EmailAlertsEnabled && u.Email != "" {
		msg := email.BuildNotificationEmail(u.Email, firstName, n.Message, constants.ServiceDisplayName)
		if err := w.email.Send(ctx, msg); err != nil {
			slog.Warn("delivery worker: email send failed", "notification_id", n.ID, "error", err)
		}
	}

	if w.sms.IsEnabled() && settings.SmsAlertsEnabled &&
		u.Profile != nil && u.Profile.PhoneVerified && u.Profile.Phone != "" {
		phone, err := crypto.Decrypt(w.encKey, u.Profile.Phone)
		if err != nil {
			slog.Warn("delivery worker: phone decrypt failed", "user_id", u.ID, "error", err)
			return nil
		}
		if err := w.sms.SendNotification(ctx, phone, w.smsTemplate, n.Message); err != nil {
			slog.Warn("delivery worker: sms send failed", "notification_id", n.ID, "error", err)
		}
	}

	return nil
}

func (w *deliveryWorker) sendBookingEmail(ev streams.Event, cancelled bool) error {
	if !w.emailEnabled {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var appt model.Appointment
	if err := w.db.WithContext(ctx).Preload("User.Profile").First(&appt, ev.AppointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Warn("delivery worker: appointment row missing", "appointment_id", ev.AppointmentID)
			return nil
		}
		return fmt.Errorf("load appointment: %w", err)
	}
	if appt.User == nil {
		slog.Debug("delivery worker: appointment has no user", "appointment_id", appt.ID)
		return nil
	}

	firstName := ""
	if appt.User.Profile != nil {
		firstName = appt.User.Profile.FirstName
	}

	data := email.AppointmentEmailData{
		FirstName:        firstName,
		Email:            appt.User.Email,
		ProfessionalName: professionalDisplayName(ctx, w.db, appt.ProfessionalID),
		ScheduledTime:    appt.ScheduledTime,
		Reference:        appt.Reference,
		AppName:          constants.ServiceDisplayName,
	}

	msg := email.BuildAppointmentConfirmationEmail(data)
	if cancelled {
		msg = email.BuildAppointmentCancelledEmail(data)
	}
	if err := w.email.Send(ctx, msg); err != nil {
		slog.Warn("delivery worker: booking email failed",
			"appointment_id", appt.ID, "cancelled", cancelled, "error", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// reminder job
// ---------------------------------------------------------------------------

// reminderJob mails clients ahead of confirmed appointments. A redis SETNX
// key per appointment keeps overlapping scan windows and multiple instances
// from reminding twice.
type reminderJob struct {
	db    *gorm.DB
	rdb   *redis.Client
	email *email.Client
	cfg   *config.Config
}

func registerReminderJob(p WorkerParams) error {
	r := &reminderJob{db: p.DB, rdb: p.Redis, email: p.Email, cfg: p.Cfg}

	c := cron.New()
	if _, err := c.AddFunc("* * * * *", r.run); err != nil {
		return fmt.Errorf("reminder job: %w", err)
	}

	p.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			c.Start()
			slog.Info("reminder job started",
				"lead_minutes", p.Cfg.Reminder.LeadTimeMin,
				"slack_minutes", p.Cfg.Reminder.WindowSlackMin,
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopped := c.Stop()
			select {
			case <-stopped.Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
	return nil
}

func (r *reminderJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	lead := time.Duration(r.cfg.Reminder.LeadTimeMin) * time.Minute
	if lead <= 0 {
		lead = 60 * time.Minute
	}
	slack := time.Duration(r.cfg.Reminder.WindowSlackMin) * time.Minute
	if slack <= 0 {
		slack = 5 * time.Minute
	}

	now := time.Now()
	from := now.Add(lead - slack)
	to := now.Add(lead + slack)

	var appts []model.Appointment
	err := r.db.WithContext(ctx).
		Preload("User.Profile").
		Where("status = ? AND scheduled_time >= ? AND scheduled_time < ?",
			constants.StatusConfirmed, from, to).
		Find(&appts).Error
	if err != nil {
		slog.Error("reminder job: scan failed", "error", err)
		return
	}

	for _, appt := range appts {
		if appt.User == nil || appt.User.Email == "" {
			continue
		}

		key := fmt.Sprintf("reminder:%d", appt.ID)
		fresh, err := r.rdb.SetNX(ctx, key, 1, 24*time.Hour).Result()
		if err != nil {
			slog.Warn("reminder job: dedup check failed", "appointment_id", appt.ID, "error", err)
			continue
		}
		if !fresh {
			continue
		}

		firstName := ""
		if appt.User.Profile != nil {
			firstName = appt.User.Profile.FirstName
		}

		msg := email.BuildAppointmentReminderEmail(email.AppointmentEmailData{
			FirstName:        firstName,
			Email:            appt.User.Email,
			ProfessionalName: professionalDisplayName(ctx, r.db, appt.ProfessionalID),
			ScheduledTime:    appt.ScheduledTime,
			Reference:        appt.Reference,
			AppName:          constants.ServiceDisplayName,
		})
		if err := r.email.Send(ctx, msg); err != nil {
			slog.Warn("reminder job: send failed", "appointment_id", appt.ID, "error", err)
			continue
		}
		slog.Debug("reminder sent", "appointment_id", appt.ID)
	}
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func professionalDisplayName(ctx context.Context, db *gorm.DB, professionalID uint) string {
	var prof model.ProfessionalProfile
	if err := db.WithContext(ctx).First(&prof, professionalID).Error; err != nil {
		return ""
	}
	var profile model.UserProfile
	if err := db.WithContext(ctx).First(&profile, prof.ProfileID).Error; err != nil {
		return ""
	}
	return strings.TrimSpace(profile.FirstName + " " + profile.LastName)
}
