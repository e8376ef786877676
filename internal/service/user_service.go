// Package service validates user operations, drives the store, and emits a
// mutation event on every successful write.
package service

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/livedesk/user-service/internal/events"
	"github.com/livedesk/user-service/internal/models"
)

// Matches the local@domain.tld shape; anything fancier is the mail server's
// problem.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const maxPageLimit = 100

// ValidationError reports malformed input. It is always locally recoverable
// and maps to a 400 at the HTTP boundary.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(problems ...string) *ValidationError {
	return &ValidationError{Message: strings.Join(problems, ", ")}
}

// UserStore defines the store operations the service depends on.
type UserStore interface {
	FindAll() []models.User
	FindByID(id string) (models.User, error)
	FindByEmail(email string) (models.User, error)
	Create(name, email string) (models.User, error)
	Update(id string, patch models.UserPatch) (models.User, error)
	Delete(id string) (models.User, error)
	Count() int
	FindPaginated(offset, limit int) []models.User
}

// Broadcaster is the hub capability the service needs: event fan-out and the
// active connection count for stats.
type Broadcaster interface {
	Broadcast(event events.UserEvent)
	ConnectionCount() int
}

// EventMirror republishes events to an external sink. Optional.
type EventMirror interface {
	Publish(ctx context.Context, event events.UserEvent) error
}

type UserService struct {
	store  UserStore
	hub    Broadcaster
	mirror EventMirror
}

// NewUserService wires the service. mirror may be nil, in which case events
// are only fanned out to connected clients.
func NewUserService(store UserStore, hub Broadcaster, mirror EventMirror) *UserService {
	return &UserService{store: store, hub: hub, mirror: mirror}
}

func (s *UserService) GetAllUsers() []models.User {
	return s.store.FindAll()
}

func (s *UserService) GetUserByID(id string) (models.User, error) {
	if strings.TrimSpace(id) == "" {
		return models.User{}, newValidationError("User ID is required")
	}
	return s.store.FindByID(id)
}

// CreateUser validates the input, creates the record, and broadcasts a
// user.created event. Validation failures are joined into a single message
// and no partial creation occurs.
func (s *UserService) CreateUser(req models.CreateUserRequest) (models.User, error) {
	var problems []string
	if len(strings.TrimSpace(req.Name)) < 2 {
		problems = append(problems, "Name must be at least 2 characters long")
	}
	if !emailPattern.MatchString(req.Email) {
		problems = append(problems, "Invalid email format")
	}
	if len(problems) > 0 {
		return models.User{}, newValidationError(problems...)
	}

	user, err := s.store.Create(strings.TrimSpace(req.Name), req.Email)
	if err != nil {
		return models.User{}, err
	}

	s.emit(events.UserCreated, user)
	return user, nil
}

// UpdateUser validates only the fields present in the patch; absent fields
// are left untouched. Existence and email uniqueness are enforced atomically
// by the store.
func (s *UserService) UpdateUser(id string, patch models.UserPatch) (models.User, error) {
	if strings.TrimSpace(id) == "" {
		return models.User{}, newValidationError("User ID is required")
	}

	var problems []string
	if patch.Name != "" && len(strings.TrimSpace(patch.Name)) < 2 {
		problems = append(problems, "Name must be at least 2 characters long")
	}
	if patch.Email != "" && !emailPattern.MatchString(patch.Email) {
		problems = append(problems, "Invalid email format")
	}
	if len(problems) > 0 {
		return models.User{}, newValidationError(problems...)
	}

	user, err := s.store.Update(id, patch)
	if err != nil {
		return models.User{}, err
	}

	s.emit(events.UserUpdated, user)
	return user, nil
}

// DeleteUser removes the record and broadcasts a user.deleted event carrying
// the pre-removal snapshot.
func (s *UserService) DeleteUser(id string) (models.User, error) {
	if strings.TrimSpace(id) == "" {
		return models.User{}, newValidationError("User ID is required")
	}

	user, err := s.store.Delete(id)
	if err != nil {
		return models.User{}, err
	}

	s.emit(events.UserDeleted, user)
	return user, nil
}

// GetUsersPaginated returns the requested slice plus the full live count.
// Total is computed independently of the slice, so it is accurate even when
// the slice is short.
func (s *UserService) GetUsersPaginated(offset, limit int) (models.PaginatedUsers, error) {
	if offset < 0 || limit <= 0 || limit > maxPageLimit {
		return models.PaginatedUsers{}, newValidationError(
			"Invalid pagination parameters: offset must be >= 0 and limit must be between 1 and 100")
	}

	return models.PaginatedUsers{
		Users:  s.store.FindPaginated(offset, limit),
		Total:  s.store.Count(),
		Offset: offset,
		Limit:  limit,
	}, nil
}

func (s *UserService) GetUserStats() models.UserStats {
	return models.UserStats{
		TotalUsers:       s.store.Count(),
		ConnectionsCount: s.hub.ConnectionCount(),
	}
}

// UserExistsByEmail never propagates an error; any underlying failure reads
// as false.
func (s *UserService) UserExistsByEmail(email string) bool {
	_, err := s.store.FindByEmail(email)
	return err == nil
}

// emit broadcasts the event to connected clients and, when a mirror is
// configured, republishes it. Neither path can fail the mutation that
// triggered it.
func (s *UserService) emit(eventType string, user models.User) {
	event := events.NewUserEvent(eventType, user)
	s.hub.Broadcast(event)
	if s.mirror != nil {
		if err := s.mirror.Publish(context.Background(), event); err != nil {
			log.Printf("Failed to mirror %s event: %v", eventType, err)
		}
	}
}
