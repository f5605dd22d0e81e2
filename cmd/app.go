package cmd

import (
	"context"
	"fmt"

	"vetclinic-backend/config"
	"vetclinic-backend/models"
	"vetclinic-backend/services"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// app holds everything the subcommands share once configuration is loaded.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	db     *gorm.DB
	locker services.JobLocker
	closer func()
}

func bootstrap(migrate bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log := config.NewLogger(cfg)

	db, err := config.ConnectDB(cfg, log)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := models.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	a := &app{cfg: cfg, log: log, db: db, closer: func() {}}

	if cfg.RedisURL != "" {
		rdb, err := services.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, job locks are process local")
			a.locker = services.NewLocalLocker()
			_ = rdb.Close()
		} else {
			a.locker = services.NewRedisLocker(rdb)
			a.closer = func() { _ = rdb.Close() }
		}
	} else {
		a.locker = services.NewLocalLocker()
	}

	return a, nil
}

func (a *app) close() {
	a.closer()
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// mailer is the email channel, or a no-op when SMTP isn't configured.
func (a *app) mailer() services.Notifier {
	if a.cfg.EmailEnabled() {
		return services.NewSMTPSender(a.cfg.EmailHost, a.cfg.EmailPort, a.cfg.EmailUser, a.cfg.EmailPass, a.cfg.EmailFrom)
	}
	a.log.Warn().Msg("EMAIL_HOST not set, emails will not be sent")
	return services.NoopNotifier{Log: a.log}
}

// reminderNotifier sends by email and, when Twilio is configured, also by
// SMS or WhatsApp.
func (a *app) reminderNotifier(mailer services.Notifier) services.Notifier {
	if !a.cfg.TwilioEnabled() {
		return mailer
	}
	sms := services.NewTwilioSender(a.cfg.TwilioAccountSID, a.cfg.TwilioAuthToken,
		a.cfg.TwilioPhoneNumber, a.cfg.TwilioWhatsAppNumber, a.cfg.TwilioCountryCode, a.log)
	if !a.cfg.EmailEnabled() {
		return sms
	}
	return &services.Fanout{Primary: mailer, Secondary: []services.Notifier{sms}, Log: a.log}
}

func (a *app) reminderService(mailer services.Notifier) *services.ReminderService {
	return services.NewReminderService(a.db, a.reminderNotifier(mailer), a.locker,
		a.log.With().Str("component", "reminders").Logger(), a.cfg.Location(), a.cfg.ClinicAddress)
}
