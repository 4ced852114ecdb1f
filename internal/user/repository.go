package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"sobgamecoin/internal/domain"
	apperrors "sobgamecoin/internal/errors"
	"sobgamecoin/internal/storage"
)

const (
	userKeyPrefix  = "user:"
	emailKeyPrefix = "user-email:"
)

var ErrEmailTaken = errors.New("email already registered")

// KVRepository stores users as user:<id> with a user-email:<email> index
// holding the id. The index is claimed first so two registrations for the
// same email cannot both succeed.
type KVRepository struct {
	store storage.Store
}

func NewKVRepository(store storage.Store) *KVRepository {
	return &KVRepository{store: store}
}

func (r *KVRepository) Create(ctx context.Context, u *domain.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}

	if _, err := r.store.Create(ctx, emailKeyPrefix+u.Email, []byte(u.ID)); err != nil {
		if errors.Is(err, storage.ErrKeyExists) {
			return ErrEmailTaken
		}
		return fmt.Errorf("claiming email: %w", err)
	}

	version, err := r.store.Create(ctx, userKeyPrefix+u.ID, data)
	if err != nil {
		if rmErr := r.store.Remove(ctx, emailKeyPrefix+u.Email); rmErr != nil {
			return fmt.Errorf("creating user: %w (releasing email: %v)", err, rmErr)
		}
		return fmt.Errorf("creating user: %w", err)
	}

	u.Version = version
	return nil
}

func (r *KVRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	entry, err := r.store.Get(ctx, userKeyPrefix+id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by id: %w", err)
	}
	return decodeUser(*entry)
}

func (r *KVRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	entry, err := r.store.Get(ctx, emailKeyPrefix+email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with email %s not found", email))
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by email: %w", err)
	}
	return r.FindByID(ctx, string(entry.Value))
}

func (r *KVRepository) Update(ctx context.Context, u *domain.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}

	version, err := r.store.CompareAndSwap(ctx, userKeyPrefix+u.ID, data, u.Version)
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", u.ID))
	}
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	u.Version = version
	return nil
}

func (r *KVRepository) Delete(ctx context.Context, u *domain.User) error {
	if err := r.store.Remove(ctx, userKeyPrefix+u.ID); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if err := r.store.Remove(ctx, emailKeyPrefix+u.Email); err != nil {
		return fmt.Errorf("releasing email: %w", err)
	}
	return nil
}

// ClaimEmail reserves email for userID ahead of an email change.
func (r *KVRepository) ClaimEmail(ctx context.Context, email, userID string) error {
	if _, err := r.store.Create(ctx, emailKeyPrefix+email, []byte(userID)); err != nil {
		if errors.Is(err, storage.ErrKeyExists) {
			return ErrEmailTaken
		}
		return fmt.Errorf("claiming email: %w", err)
	}
	return nil
}

func (r *KVRepository) ReleaseEmail(ctx context.Context, email string) error {
	if err := r.store.Remove(ctx, emailKeyPrefix+email); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("releasing email: %w", err)
	}
	return nil
}

// List returns every user, newest first.
func (r *KVRepository) List(ctx context.Context) ([]domain.User, error) {
	entries, err := r.store.List(ctx, userKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	users := make([]domain.User, 0, len(entries))
	for _, entry := range entries {
		u, err := decodeUser(entry)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}

	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func decodeUser(entry storage.Entry) (*domain.User, error) {
	var u domain.User
	if err := json.Unmarshal(entry.Value, &u); err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("user record %s is malformed", entry.Key), err)
	}
	if u.ID == "" || u.Email == "" {
		return nil, apperrors.NewInternalError(fmt.Sprintf("user record %s is missing its id or email", entry.Key), nil)
	}
	if _, err := domain.ParseRole(string(u.Role)); err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("user record %s is invalid", entry.Key), err)
	}

	u.Version = entry.Version
	return &u, nil
}
