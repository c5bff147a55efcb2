package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/teamtasker/team-task-service/internal/models"
	"github.com/teamtasker/team-task-service/internal/permissions"
	"github.com/teamtasker/team-task-service/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrRequestNotFound      = errors.New("registration request not found")
	ErrRequestAlreadyFiled  = errors.New("a registration request for this user already exists")
	ErrWrongPassword        = errors.New("wrong registration password")
	ErrRegistrationDisabled = errors.New("password registration is disabled")
	ErrReviewNotAllowed     = errors.New("only a super admin may review registration requests")
)

// RegistrationService handles how users become registered: either directly
// with the shared registration password, or through a request reviewed by a
// super admin.
type RegistrationService struct {
	registrationRepo repository.RegistrationRepository
	userRepo         repository.UserRepository
	checker          *permissions.Checker
	passwordHash     string
	log              *logrus.Logger
}

// NewRegistrationService creates a new RegistrationService. passwordHash is
// the bcrypt hash of the shared registration password; empty disables the
// password path.
func NewRegistrationService(registrationRepo repository.RegistrationRepository, userRepo repository.UserRepository, checker *permissions.Checker, passwordHash string, log *logrus.Logger) *RegistrationService {
	return &RegistrationService{
		registrationRepo: registrationRepo,
		userRepo:         userRepo,
		checker:          checker,
		passwordHash:     passwordHash,
		log:              log,
	}
}

// RegisterWithPassword registers the user immediately when the shared
// password matches.
func (s *RegistrationService) RegisterWithPassword(userID uint64, name, username, password string) error {
	if s.passwordHash == "" {
		return ErrRegistrationDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return ErrWrongPassword
	}

	user := &models.User{ID: userID, Name: name, Username: username, Registered: true}
	if err := s.userRepo.Upsert(user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}

	s.log.WithField("user_id", userID).Info("user registered with password")
	return nil
}

// RequestRegistration files a registration request for later review.
func (s *RegistrationService) RequestRegistration(userID uint64, name, username string) (*models.RegistrationRequest, error) {
	req := &models.RegistrationRequest{UserID: userID, Name: name, Username: username}
	if err := s.registrationRepo.Create(req); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRequestAlreadyFiled
		}
		return nil, fmt.Errorf("failed to file registration request: %w", err)
	}

	s.log.WithField("user_id", userID).Info("registration request filed")
	return req, nil
}

// ListPending returns the requests awaiting review.
func (s *RegistrationService) ListPending(reviewerID uint64) ([]models.RegistrationRequest, error) {
	if !s.checker.IsSuperAdmin(reviewerID) {
		return nil, ErrReviewNotAllowed
	}

	requests, err := s.registrationRepo.ListPending()
	if err != nil {
		return nil, fmt.Errorf("failed to list registration requests: %w", err)
	}
	return requests, nil
}

// ApproveRequest approves a pending request and registers the user in the
// same transaction.
func (s *RegistrationService) ApproveRequest(requestID, reviewerID uint64) error {
	if !s.checker.IsSuperAdmin(reviewerID) {
		return ErrReviewNotAllowed
	}

	if err := s.registrationRepo.Approve(requestID, reviewerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to approve registration request: %w", err)
	}

	s.log.WithFields(logrus.Fields{"request_id": requestID, "reviewer": reviewerID}).
		Info("registration request approved")
	return nil
}

// RejectRequest rejects a pending request.
func (s *RegistrationService) RejectRequest(requestID, reviewerID uint64) error {
	if !s.checker.IsSuperAdmin(reviewerID) {
		return ErrReviewNotAllowed
	}

	if err := s.registrationRepo.Reject(requestID, reviewerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to reject registration request: %w", err)
	}

	s.log.WithFields(logrus.Fields{"request_id": requestID, "reviewer": reviewerID}).
		Info("registration request rejected")
	return nil
}
