package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vigilancia/guard-roster-backend/internal/database"
	"github.com/vigilancia/guard-roster-backend/internal/models"
	"github.com/vigilancia/guard-roster-backend/pkg/validator"
	"golang.org/x/crypto/bcrypt"
)

const generatedPasswordLength = 8

// passwordAlphabet excludes look-alike characters so hand-copied one-time
// credentials survive transcription.
const passwordAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"

// GuardService manages the guard roster: registration with generated
// credentials, activation toggling, cascading deletion and password changes.
type GuardService struct {
	guards         GuardStore
	schedules      ScheduleStore
	absences       AbsenceStore
	phoneValidator *validator.PhoneValidator
	bcryptCost     int
	logger         *logrus.Logger
}

// NewGuardService creates a new guard service
func NewGuardService(guards GuardStore, schedules ScheduleStore, absences AbsenceStore, phoneValidator *validator.PhoneValidator, bcryptCost int, logger *logrus.Logger) *GuardService {
	return &GuardService{
		guards:         guards,
		schedules:      schedules,
		absences:       absences,
		phoneValidator: phoneValidator,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// Register creates a guard with a derived username and a generated one-time
// password. The plaintext password is returned exactly once; only the
// bcrypt hash is stored.
func (s *GuardService) Register(req *models.RegisterGuardRequest) (*models.RegisteredGuard, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewValidationError("name is required")
	}

	phone := strings.TrimSpace(req.Phone)
	if phone != "" {
		sanitized, err := s.phoneValidator.Validate(phone)
		if err != nil {
			return nil, NewValidationError("invalid phone number: %v", err)
		}
		phone = sanitized
	}

	username, err := s.uniqueUsername(deriveUsername(name))
	if err != nil {
		return nil, err
	}

	password, err := generatePassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	guard := &models.Guard{
		ID:           uuid.New(),
		Name:         name,
		Username:     username,
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    time.Now(),
	}
	if phone != "" {
		guard.Phone = models.String(phone)
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		guard.Email = models.String(email)
	}

	if err := s.guards.Add(guard); err != nil {
		return nil, &StoreError{Op: "register guard", Err: err}
	}

	s.logger.WithFields(logrus.Fields{
		"guard_id": guard.ID,
		"username": username,
	}).Info("Guard registered")

	return &models.RegisteredGuard{
		Guard:    guard,
		Username: username,
		Password: password,
	}, nil
}

// deriveUsername builds the base login name from a full name: first initial
// plus last surname, lowercased ("Ana Pérez López" -> "alópez"); a single
// name is used as-is.
func deriveUsername(name string) string {
	parts := strings.Fields(strings.ToLower(name))
	if len(parts) >= 2 {
		first := []rune(parts[0])
		return string(first[0]) + parts[len(parts)-1]
	}
	return parts[0]
}

// uniqueUsername suffixes a counter until the username is free.
func (s *GuardService) uniqueUsername(base string) (string, error) {
	candidate := base
	for i := 2; ; i++ {
		_, err := s.guards.GetByUsername(candidate)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return candidate, nil
			}
			return "", &StoreError{Op: "check username", Err: err}
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

// generatePassword draws a random one-time password from the reduced
// alphabet.
func generatePassword() (string, error) {
	out := make([]byte, generatedPasswordLength)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}

// Get fetches a guard by id.
func (s *GuardService) Get(id uuid.UUID) (*models.Guard, error) {
	guard, err := s.guards.Get(id)
	if err != nil {
		return nil, translateStoreErr("fetch guard", "guard", id.String(), err)
	}
	return guard, nil
}

// List returns all guards.
func (s *GuardService) List() ([]models.Guard, error) {
	guards, err := s.guards.GetAll()
	if err != nil {
		return nil, &StoreError{Op: "list guards", Err: err}
	}
	return guards, nil
}

// SetActive toggles a guard's active flag. Inactive guards cannot log in
// but keep their history.
func (s *GuardService) SetActive(id uuid.UUID, active bool) (*models.Guard, error) {
	guard, err := s.guards.Get(id)
	if err != nil {
		return nil, translateStoreErr("update guard status", "guard", id.String(), err)
	}

	guard.Active = active
	if err := s.guards.Put(guard); err != nil {
		return nil, &StoreError{Op: "update guard status", Err: err}
	}

	s.logger.WithFields(logrus.Fields{
		"guard_id": id,
		"active":   active,
	}).Info("Guard status updated")

	return guard, nil
}

// Delete hard-deletes a guard and cascades to their schedules and absences,
// children first, so a failure cannot orphan records behind a missing
// guard. The deletes are sequential; there is no cross-record transaction.
func (s *GuardService) Delete(id uuid.UUID) error {
	guard, err := s.guards.Get(id)
	if err != nil {
		return translateStoreErr("delete guard", "guard", id.String(), err)
	}

	if err := s.absences.DeleteByGuard(id); err != nil {
		return &StoreError{Op: "delete guard absences", Err: err}
	}
	if err := s.schedules.DeleteByGuard(id); err != nil {
		return &StoreError{Op: "delete guard schedules", Err: err}
	}
	if err := s.guards.Delete(id); err != nil {
		return translateStoreErr("delete guard", "guard", id.String(), err)
	}

	s.logger.WithFields(logrus.Fields{
		"guard_id": id,
		"username": guard.Username,
	}).Info("Guard deleted with cascade")

	return nil
}

// ChangePassword verifies the guard's current password and stores a new
// bcrypt hash.
func (s *GuardService) ChangePassword(id uuid.UUID, currentPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return NewValidationError("new password must be at least 6 characters")
	}

	guard, err := s.guards.Get(id)
	if err != nil {
		return translateStoreErr("change password", "guard", id.String(), err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(guard.PasswordHash), []byte(currentPassword)); err != nil {
		return NewValidationError("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	guard.PasswordHash = string(hash)
	if err := s.guards.Put(guard); err != nil {
		return &StoreError{Op: "change password", Err: err}
	}

	s.logger.WithField("guard_id", id).Info("Guard password changed")
	return nil
}

// CountActive returns the number of active guards.
func (s *GuardService) CountActive() (int, error) {
	guards, err := s.guards.GetAll()
	if err != nil {
		return 0, &StoreError{Op: "count active guards", Err: err}
	}

	count := 0
	for _, guard := range guards {
		if guard.Active {
			count++
		}
	}
	return count, nil
}
