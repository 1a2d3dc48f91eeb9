package directors

import (
	"errors"
	"fmt"

	"github.com/pranubaita/photoshare/src/auth"
	"github.com/pranubaita/photoshare/src/catalog"
	"github.com/pranubaita/photoshare/src/engine"
	"github.com/pranubaita/photoshare/src/models"
	"go.uber.org/zap"
)

// UserService registers, authenticates and edits users.
type UserService struct {
	store   engine.Store
	factory auth.UserFactory
	logger  *zap.SugaredLogger
}

func NewUserService(store engine.Store, factory auth.UserFactory, logger *zap.SugaredLogger) *UserService {
	return &UserService{
		store:   store,
		factory: factory,
		logger:  logger,
	}
}

// AddUser registers a new user with an empty bio.
func (s *UserService) AddUser(user auth.NewUser) (*auth.User, error) {
	newUser, err := s.factory.NewUserStruct(user)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Create(catalog.Users, newUser.Record()); err != nil {
		var verr *engine.ValidationError
		if errors.As(err, &verr) && verr.Rule == engine.RuleUnique {
			return nil, fmt.Errorf("%w: %s", auth.ErrUserAlreadyExists, verr.Reason)
		}
		return nil, err
	}

	s.logger.Infow("Registered user", "username", newUser.Username)
	return newUser, nil
}

func (s *UserService) GetUserByName(userName string) (*auth.User, error) {
	record, err := s.store.FetchOne(catalog.Users, userName, true)
	if errors.Is(err, engine.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", auth.ErrUserNotFound, userName)
	}
	if err != nil {
		return nil, err
	}
	return auth.UserFromRecord(record)
}

func (s *UserService) GetAllUsers() ([]*auth.User, error) {
	records, err := s.store.FetchAll(catalog.Users)
	if err != nil {
		return nil, err
	}

	users := make([]*auth.User, 0, len(records))
	for _, record := range records {
		user, err := auth.UserFromRecord(record)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// VerifyCredentials returns the user when password matches, and
// ErrInvalidCredentials otherwise, including for unknown users.
func (s *UserService) VerifyCredentials(userName, password string) (*auth.User, error) {
	user, err := s.GetUserByName(userName)
	if errors.Is(err, auth.ErrUserNotFound) {
		return nil, auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, auth.ErrInvalidCredentials
	}
	return user, nil
}

// ResetPassword replaces the password of the user registered with email.
func (s *UserService) ResetPassword(email, newPassword string) (*auth.User, error) {
	email = auth.NormalizeEmail(email)

	records, err := s.store.FetchAll(catalog.Users)
	if err != nil {
		return nil, err
	}

	var userName string
	for _, record := range records {
		if record["email"] == email {
			userName, _ = record["username"].(string)
			break
		}
	}
	if userName == "" {
		return nil, fmt.Errorf("%w: no user with email %s", auth.ErrUserNotFound, email)
	}

	hash, err := s.factory.NewPasswordHash(newPassword)
	if err != nil {
		return nil, err
	}

	record, err := s.store.Update(catalog.Users, userName, models.Record{"password_hash": hash})
	if errors.Is(err, engine.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", auth.ErrUserNotFound, userName)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Reset password", "username", userName)
	return auth.UserFromRecord(record)
}

// UpdateProfile replaces the names and bio of a user. Names must not be empty.
func (s *UserService) UpdateProfile(userName, firstName, lastName, bio string) (*auth.User, error) {
	if firstName == "" || lastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", auth.ErrInvalidUser)
	}

	record, err := s.store.Update(catalog.Users, userName, models.Record{
		"first_name": firstName,
		"last_name":  lastName,
		"bio":        bio,
	})
	if errors.Is(err, engine.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", auth.ErrUserNotFound, userName)
	}
	if err != nil {
		return nil, err
	}
	return auth.UserFromRecord(record)
}

// DeleteUser removes a user. Posts and comments of the user are kept.
func (s *UserService) DeleteUser(userName string) error {
	err := s.store.Delete(catalog.Users, userName, true)
	if errors.Is(err, engine.ErrNotFound) {
		return fmt.Errorf("%w: %s", auth.ErrUserNotFound, userName)
	}
	return err
}
