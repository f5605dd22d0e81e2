package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vetclinic-backend/models"
	"vetclinic-backend/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	verificationTTL  = 24 * time.Hour
	passwordResetTTL = time.Hour
	minPasswordLen   = 6
)

type AuthConfig struct {
	JWTSecret   string
	JWTExpiry   time.Duration
	FrontendURL string
}

type AuthService struct {
	db     *gorm.DB
	mailer Notifier
	log    zerolog.Logger
	cfg    AuthConfig
	now    func() time.Time
}

func NewAuthService(db *gorm.DB, mailer Notifier, log zerolog.Logger, cfg AuthConfig) *AuthService {
	return &AuthService{
		db:     db,
		mailer: mailer,
		log:    log.With().Str("component", "auth").Logger(),
		cfg:    cfg,
		now:    time.Now,
	}
}

type RegisterInput struct {
	Email         string `json:"email" binding:"required,email"`
	Name          string `json:"nombre" binding:"required"`
	LastName      string `json:"apellidos"`
	Password      string `json:"password" binding:"required"`
	Role          string `json:"rol"`
	Phone         string `json:"telefono"`
	ClinicName    string `json:"nombre_clinica"`
	Specialty     string `json:"especialidad"`
	LicenseNumber string `json:"cedula"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"usuario"`
}

type Profile struct {
	*models.User
	Doctor *models.Doctor `json:"doctor,omitempty"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) newToken(tx *gorm.DB, userID uuid.UUID, kind models.TokenType, ttl time.Duration) (string, error) {
	raw, err := utils.GenerateRandomToken(32)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	tok := models.UserToken{
		UserID:    userID,
		Type:      kind,
		Token:     raw,
		ExpiresAt: s.now().Add(ttl),
	}
	if err := tx.Create(&tok).Error; err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return raw, nil
}

func (s *AuthService) sendMail(ctx context.Context, to, subject, body string) {
	if err := s.mailer.Send(ctx, Message{Email: to, Subject: subject, Body: body}); err != nil {
		s.log.Warn().Err(err).Str("to", to).Str("subject", subject).Msg("failed to send email")
	}
}

// Register creates a pending account and mails its verification link.
// A clinic name creates a new free license; otherwise the account joins the
// shared free license.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if !utils.ValidateEmail(email) {
		return nil, BadRequest("Invalid email")
	}
	if len(in.Password) < minPasswordLen {
		return nil, BadRequest(fmt.Sprintf("Password must have at least %d characters", minPasswordLen))
	}
	role := models.RoleDoctor
	if in.Role != "" {
		r, ok := models.ParseRole(in.Role)
		if !ok || r == models.RoleSuperadmin {
			return nil, BadRequest("Invalid role")
		}
		role = r
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var (
		user  models.User
		token string
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if n > 0 {
			return Conflict("Email already registered")
		}

		var license models.ClinicLicense
		if name := strings.TrimSpace(in.ClinicName); name != "" {
			license = models.ClinicLicense{ClinicName: name, Status: models.LicenseFree, MaxDoctors: 1}
			if err := tx.Create(&license).Error; err != nil {
				return fmt.Errorf("create license: %w", err)
			}
		} else {
			err := tx.Where(models.ClinicLicense{ClinicName: models.DefaultLicenseName}).
				Attrs(models.ClinicLicense{Status: models.LicenseFree, MaxDoctors: 1}).
				FirstOrCreate(&license).Error
			if err != nil {
				return fmt.Errorf("load free license: %w", err)
			}
		}

		user = models.User{
			Email:           email,
			Password:        hashed,
			Name:            strings.TrimSpace(in.Name),
			LastName:        strings.TrimSpace(in.LastName),
			Phone:           strings.TrimSpace(in.Phone),
			Role:            role,
			Status:          models.AccountPending,
			ClinicLicenseID: license.ID,
		}
		if err := tx.Create(&user).Error; err != nil {
			if isUniqueViolation(err) {
				return Conflict("Email already registered")
			}
			return fmt.Errorf("create user: %w", err)
		}

		if role == models.RoleDoctor {
			doctor := models.Doctor{
				UserID:        user.ID,
				Specialty:     strings.TrimSpace(in.Specialty),
				LicenseNumber: strings.TrimSpace(in.LicenseNumber),
			}
			if err := tx.Create(&doctor).Error; err != nil {
				return fmt.Errorf("create doctor: %w", err)
			}
		}

		var err error
		token, err = s.newToken(tx, user.ID, models.TokenVerification, verificationTTL)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.sendMail(ctx, user.Email, "Confirma tu cuenta",
		fmt.Sprintf("Hola %s,\n\nConfirma tu cuenta en el siguiente enlace:\n%s/confirmar/%s\n\nEl enlace expira en 24 horas.",
			user.Name, s.cfg.FrontendURL, token))

	s.log.Info().Str("user_id", user.ID.String()).Str("role", string(user.Role)).Msg("user registered")
	return &user, nil
}

func (s *AuthService) findToken(tx *gorm.DB, raw string, kind models.TokenType) (*models.UserToken, error) {
	var tok models.UserToken
	err := tx.Where("token = ? AND type = ?", raw, kind).First(&tok).Error
	if isNotFound(err) {
		return nil, NotFound("Invalid token")
	}
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	return &tok, nil
}

// ConfirmAccount activates the account behind a verification token.
// alreadyConfirmed is true when the token had been used before.
func (s *AuthService) ConfirmAccount(ctx context.Context, raw string) (alreadyConfirmed bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tok, err := s.findToken(tx, raw, models.TokenVerification)
		if err != nil {
			return err
		}
		if tok.UsedAt != nil {
			alreadyConfirmed = true
			return nil
		}
		if tok.Expired(s.now()) {
			return BadRequest("Token expired, request a new verification email")
		}

		now := s.now()
		if err := tx.Model(tok).Update("used_at", now).Error; err != nil {
			return fmt.Errorf("use token: %w", err)
		}
		err = tx.Model(&models.User{}).
			Where("id = ? AND status = ?", tok.UserID, models.AccountPending).
			Update("status", models.AccountActive).Error
		if err != nil {
			return fmt.Errorf("activate user: %w", err)
		}
		return nil
	})
	return alreadyConfirmed, err
}

// Login checks credentials and returns a signed token. Consecutive failures
// suspend the account at MaxFailedLogins.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Preload("ClinicLicense").Where("email = ?", normalizeEmail(in.Email)).First(&user).Error
	if isNotFound(err) {
		return nil, BadRequest("Invalid email or password")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	switch user.Status {
	case models.AccountPending:
		return nil, Forbidden("Account not confirmed")
	case models.AccountSuspended:
		return nil, Forbidden("Account suspended")
	}
	if user.ClinicLicense == nil || !user.ClinicLicense.Usable() {
		return nil, Forbidden("Clinic license is not active")
	}

	if !utils.CheckPasswordHash(in.Password, user.Password) {
		attempts := user.FailedLoginAttempts + 1
		updates := map[string]interface{}{"failed_login_attempts": attempts}
		if attempts >= models.MaxFailedLogins {
			updates["status"] = models.AccountSuspended
		}
		if err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("record failed login: %w", err)
		}
		if attempts >= models.MaxFailedLogins {
			s.log.Warn().Str("user_id", user.ID.String()).Msg("account suspended after failed logins")
			return nil, Forbidden("Account suspended after too many failed attempts")
		}
		return nil, BadRequest("Invalid email or password")
	}

	now := s.now()
	err = db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"failed_login_attempts": 0,
		"last_login":            now,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	user.FailedLoginAttempts = 0
	user.LastLogin = &now

	token, err := utils.GenerateToken(user.ID, user.ClinicLicenseID, s.cfg.JWTSecret, s.cfg.JWTExpiry)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResult{Token: token, User: &user}, nil
}

// ForgotPassword mails a password reset link valid for one hour.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	var (
		user  models.User
		token string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", normalizeEmail(email)).First(&user).Error
		if isNotFound(err) {
			return NotFound("User not found")
		}
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		token, err = s.newToken(tx, user.ID, models.TokenPasswordReset, passwordResetTTL)
		return err
	})
	if err != nil {
		return err
	}

	s.sendMail(ctx, user.Email, "Restablece tu contraseña",
		fmt.Sprintf("Hola %s,\n\nRestablece tu contraseña en el siguiente enlace:\n%s/olvide-password/%s\n\nEl enlace expira en una hora.",
			user.Name, s.cfg.FrontendURL, token))
	return nil
}

func (s *AuthService) usableResetToken(tx *gorm.DB, raw string) (*models.UserToken, error) {
	tok, err := s.findToken(tx, raw, models.TokenPasswordReset)
	if err != nil {
		return nil, err
	}
	if tok.UsedAt != nil || tok.Expired(s.now()) {
		return nil, BadRequest("Invalid or expired token")
	}
	return tok, nil
}

func (s *AuthService) CheckResetToken(ctx context.Context, raw string) error {
	_, err := s.usableResetToken(s.db.WithContext(ctx), raw)
	return err
}

// ResetPassword sets a new password. A suspended account is reactivated.
func (s *AuthService) ResetPassword(ctx context.Context, raw, password string) error {
	if len(password) < minPasswordLen {
		return BadRequest(fmt.Sprintf("Password must have at least %d characters", minPasswordLen))
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tok, err := s.usableResetToken(tx, raw)
		if err != nil {
			return err
		}
		if err := tx.Model(tok).Update("used_at", s.now()).Error; err != nil {
			return fmt.Errorf("use token: %w", err)
		}

		var user models.User
		if err := tx.First(&user, "id = ?", tok.UserID).Error; err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		updates := map[string]interface{}{"password": hashed, "failed_login_attempts": 0}
		if user.Status == models.AccountSuspended {
			updates["status"] = models.AccountActive
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		return nil
	})
}

// ResendVerification replaces any unused verification token and mails a new one.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	var (
		user  models.User
		token string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", normalizeEmail(email)).First(&user).Error
		if isNotFound(err) {
			return NotFound("User not found")
		}
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if user.Status != models.AccountPending {
			return BadRequest("Account already confirmed")
		}
		err = tx.Where("user_id = ? AND type = ? AND used_at IS NULL", user.ID, models.TokenVerification).
			Delete(&models.UserToken{}).Error
		if err != nil {
			return fmt.Errorf("drop old tokens: %w", err)
		}
		token, err = s.newToken(tx, user.ID, models.TokenVerification, verificationTTL)
		return err
	})
	if err != nil {
		return err
	}

	s.sendMail(ctx, user.Email, "Confirma tu cuenta",
		fmt.Sprintf("Hola %s,\n\nConfirma tu cuenta en el siguiente enlace:\n%s/confirmar/%s\n\nEl enlace expira en 24 horas.",
			user.Name, s.cfg.FrontendURL, token))
	return nil
}

// Profile returns the user with its license and doctor record, if any.
func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Preload("ClinicLicense").First(&user, "id = ?", userID).Error
	if isNotFound(err) {
		return nil, NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	p := &Profile{User: &user}
	var doctor models.Doctor
	err = db.First(&doctor, "user_id = ?", userID).Error
	switch {
	case err == nil:
		p.Doctor = &doctor
	case !isNotFound(err):
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	return p, nil
}
