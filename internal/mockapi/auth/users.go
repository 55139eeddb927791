package auth

import (
	"context"
	"errors"
	apperrors "hoteldesk/pkg/errors"
	"hoteldesk/pkg/model"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var ErrBadCredentials = errors.New("no active account found with the given credentials")

// Seed is a demo account created at startup.
type Seed struct {
	User     model.User
	Password string
}

// DemoUsers are the accounts the stand-in API starts with.
func DemoUsers() []Seed {
	return []Seed{
		{User: model.User{Email: "admin@hoteldesk.test", FirstName: "Grace", LastName: "Hopper", Role: model.RoleAdmin}, Password: "admin12345"},
		{User: model.User{Email: "manager@hoteldesk.test", FirstName: "Alan", LastName: "Turing", Role: model.RoleManager}, Password: "manager12345"},
		{User: model.User{Email: "front@hoteldesk.test", FirstName: "Ada", LastName: "Lovelace", Role: model.RoleReceptionist}, Password: "front12345"},
	}
}

type UserRepository interface {
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	Register(ctx context.Context, reg model.Registration) (*model.User, error)
	ChangePassword(ctx context.Context, id int64, change model.PasswordChange) error
	List(ctx context.Context) ([]model.User, error)
}

type userRecord struct {
	user model.User
	hash []byte
}

type memoryUserRepository struct {
	mu      sync.RWMutex
	cost    int
	dummy   []byte
	nextID  int64
	byID    map[int64]*userRecord
	byEmail map[string]*userRecord
}

// NewMemoryUserRepository hashes the seeds with the given bcrypt cost.
func NewMemoryUserRepository(cost int, seeds ...Seed) (UserRepository, error) {
	repo := &memoryUserRepository{
		cost:    cost,
		nextID:  1,
		byID:    map[int64]*userRecord{},
		byEmail: map[string]*userRecord{},
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		return nil, err
	}
	repo.dummy = dummy
	for _, s := range seeds {
		if _, err := repo.add(s.User, s.Password); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

func (r *memoryUserRepository) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	r.mu.RLock()
	rec, ok := r.byEmail[normalizeEmail(email)]
	r.mu.RUnlock()
	if !ok {
		// Spend the same time as a real comparison.
		_ = bcrypt.CompareHashAndPassword(r.dummy, []byte(password))
		return nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(rec.hash, []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	user := rec.user
	return &user, nil
}

func (r *memoryUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NotFound("user")
	}
	user := rec.user
	return &user, nil
}

func (r *memoryUserRepository) Register(ctx context.Context, reg model.Registration) (*model.User, error) {
	if reg.Role == "" {
		reg.Role = model.RoleGuest
	}
	user := model.User{
		Email:     reg.Email,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Role:      reg.Role,
		Phone:     reg.Phone,
		Address:   reg.Address,
	}
	return r.add(user, reg.Password)
}

func (r *memoryUserRepository) ChangePassword(ctx context.Context, id int64, change model.PasswordChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return apperrors.NotFound("user")
	}
	if err := bcrypt.CompareHashAndPassword(rec.hash, []byte(change.OldPassword)); err != nil {
		return apperrors.Validation("wrong password", map[string]any{"old_password": []string{"Wrong password."}})
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(change.NewPassword), r.cost)
	if err != nil {
		return apperrors.Internal("failed to hash password", err)
	}
	rec.hash = hash
	return nil
}

func (r *memoryUserRepository) List(ctx context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.User, 0, len(r.byID))
	for _, rec := range r.byID {
		out = append(out, rec.user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryUserRepository) add(user model.User, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	email := normalizeEmail(user.Email)
	if _, exists := r.byEmail[email]; exists {
		return nil, apperrors.Validation("email taken", map[string]any{
			"email": []string{"user with this email already exists."},
		})
	}

	user.ID = r.nextID
	user.Email = email
	r.nextID++

	rec := &userRecord{user: user, hash: hash}
	r.byID[user.ID] = rec
	r.byEmail[email] = rec

	out := user
	return &out, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
