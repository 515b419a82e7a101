package service

import (
	"context"
	"errors"
	"fmt"

	"comptabilite/internal/apperror"
	"comptabilite/internal/model"
	"comptabilite/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for request validation
type SignupRequest struct {
	Firstname string `json:"firstname" binding:"required"`
	Lastname  string `json:"lastname" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Role      string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateUserRequest struct {
	Firstname string `json:"firstname" binding:"required"`
	Lastname  string `json:"lastname" binding:"required"`
	Role      string `json:"role" binding:"required"`
}

// UserResponse is the user shape returned by the API, without the hash.
type UserResponse struct {
	ID        uint   `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// AuthResult carries a freshly issued token plus the authenticated user.
type AuthResult struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// AuthService owns the user lifecycle: signup, login and the admin user
// management endpoints.
type AuthService interface {
	Signup(ctx context.Context, req SignupRequest) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	ListUsers(ctx context.Context) ([]UserResponse, error)
	UpdateUser(ctx context.Context, actorID, id uint, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, actorID, id uint) error
}

type authService struct {
	users     repository.UserRepository
	audits    repository.AuditRepository
	tokens    TokenService
	txManager repository.TransactionManager
	events    EventPublisher
}

// NewAuthService returns a new instance of AuthService
func NewAuthService(
	users repository.UserRepository,
	audits repository.AuditRepository,
	tokens TokenService,
	txManager repository.TransactionManager,
	events EventPublisher,
) AuthService {
	return &authService{
		users:     users,
		audits:    audits,
		tokens:    tokens,
		txManager: txManager,
		events:    events,
	}
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Email:     u.Email,
		Role:      u.Role,
	}
}

func (s *authService) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	role := req.Role
	if role == "" {
		role = model.RoleCustomer
	}
	if !model.ValidRole(role) {
		return nil, apperror.E(apperror.ErrValidation, "invalid role: must be admin or customer")
	}

	taken, err := s.users.EmailTaken(ctx, req.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}
	if taken {
		return nil, apperror.E(apperror.ErrConflict, "email already in use")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", apperror.ErrStorage, err)
	}

	user := &model.User{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Password:  string(hashed),
		Role:      role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The unique index is the source of truth: a racing signup with
		// the same email lands here instead of the pre-check above.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.E(apperror.ErrConflict, "email already in use")
		}
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: issue token: %v", apperror.ErrStorage, err)
	}

	return &AuthResult{Token: token, User: toUserResponse(user)}, nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.E(apperror.ErrNotFound, "user not found")
		}
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperror.E(apperror.ErrUnauthenticated, "invalid password")
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: issue token: %v", apperror.ErrStorage, err)
	}

	return &AuthResult{Token: token, User: toUserResponse(user)}, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	res := make([]UserResponse, 0, len(users))
	for i := range users {
		res = append(res, toUserResponse(&users[i]))
	}
	return res, nil
}

func (s *authService) UpdateUser(ctx context.Context, actorID, id uint, req UpdateUserRequest) (*UserResponse, error) {
	if !model.ValidRole(req.Role) {
		return nil, apperror.E(apperror.ErrValidation, "invalid role: must be admin or customer")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.E(apperror.ErrNotFound, "user not found")
		}
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	user.Firstname = req.Firstname
	user.Lastname = req.Lastname
	user.Role = req.Role

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.Update(txCtx, user); err != nil {
			return fmt.Errorf("%w: %v", apperror.ErrStorage, err)
		}
		return writeAudit(txCtx, s.audits, actorID, model.ActionUpdateUser, user.ID, user.Email, req)
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(EventUserChanged, toUserResponse(user))
	}

	res := toUserResponse(user)
	return &res, nil
}

func (s *authService) DeleteUser(ctx context.Context, actorID, id uint) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.E(apperror.ErrNotFound, "user not found")
		}
		return fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.Delete(txCtx, id); err != nil {
			return fmt.Errorf("%w: %v", apperror.ErrStorage, err)
		}
		return writeAudit(txCtx, s.audits, actorID, model.ActionDeleteUser, id, user.Email, nil)
	})
	if err != nil {
		return err
	}

	if s.events != nil {
		s.events.Publish(EventUserChanged, map[string]uint{"deleted_id": id})
	}
	return nil
}
