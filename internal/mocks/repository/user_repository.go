package repository

import (
	"context"
	"sort"
	"strings"

	"coderr/internal/domain/entity"
	"coderr/internal/domain/repository"
)

type userRepository struct {
	store *Store
}

// NewUserRepository returns a user repository over the store.
func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) FindByID(_ context.Context, id int64) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.takeFailure("UserRepository.FindByID"); err != nil {
		return nil, err
	}

	u, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return cloneUser(u), nil
}

func (r *userRepository) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range r.store.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *userRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.usernameTaken(username, 0), nil
}

func (r *userRepository) ExistsByEmail(_ context.Context, email string, excludeID int64) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.emailTaken(email, excludeID), nil
}

func (r *userRepository) Create(_ context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.takeFailure("UserRepository.Create"); err != nil {
		return err
	}
	if r.store.usernameTaken(user.Username, 0) {
		return repository.ErrDuplicateUsername
	}
	if r.store.emailTaken(user.Email, 0) {
		return repository.ErrDuplicateEmail
	}

	r.store.nextUserID++
	now := r.store.now()
	user.ID = r.store.nextUserID
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Profile != nil {
		user.Profile.UserID = user.ID
		user.Profile.CreatedAt = now
	}
	r.store.users[user.ID] = cloneUser(user)

	return nil
}

func (r *userRepository) Update(_ context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.takeFailure("UserRepository.Update"); err != nil {
		return err
	}

	stored, ok := r.store.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	if r.store.emailTaken(user.Email, user.ID) {
		return repository.ErrDuplicateEmail
	}

	updated := cloneUser(user)
	updated.Username = stored.Username
	updated.PasswordHash = stored.PasswordHash
	updated.IsStaff = stored.IsStaff
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = r.store.now()
	if stored.Profile != nil && updated.Profile != nil {
		updated.Profile.Type = stored.Profile.Type
		updated.Profile.CreatedAt = stored.Profile.CreatedAt
	}
	r.store.users[user.ID] = updated
	user.UpdatedAt = updated.UpdatedAt

	return nil
}

func (r *userRepository) ListByType(_ context.Context, profileType entity.ProfileType, page repository.PageRequest) ([]*entity.User, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	matched := make([]*entity.User, 0)
	for _, u := range r.store.users {
		if u.Type() == profileType {
			matched = append(matched, u)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	paged := applyPage(matched, page)
	users := make([]*entity.User, len(paged))
	for i, u := range paged {
		users[i] = cloneUser(u)
	}

	return users, int64(len(matched)), nil
}

func (r *userRepository) CountByType(_ context.Context, profileType entity.ProfileType) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	for _, u := range r.store.users {
		if u.Type() == profileType {
			n++
		}
	}

	return n, nil
}

// AddUser stores a user directly, bypassing uniqueness checks. Handy for seeding staff accounts.
func (s *Store) AddUser(user *entity.User) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextUserID++
	now := s.now()
	user.ID = s.nextUserID
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Profile != nil {
		user.Profile.UserID = user.ID
		user.Profile.CreatedAt = now
	}
	s.users[user.ID] = cloneUser(user)

	return user
}

func (s *Store) usernameTaken(username string, excludeID int64) bool {
	for id, u := range s.users {
		if id != excludeID && u.Username == username {
			return true
		}
	}

	return false
}

func (s *Store) emailTaken(email string, excludeID int64) bool {
	for id, u := range s.users {
		if id != excludeID && strings.EqualFold(u.Email, email) {
			return true
		}
	}

	return false
}
