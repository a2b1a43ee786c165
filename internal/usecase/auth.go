package usecase

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/xavierca1/lead-system/internal/entity"
)

// authFailedMessage is shared by every login failure so responses do not reveal
// whether the email exists.
const authFailedMessage = "Email ou senha inválidos."

type AuthUseCase struct {
	Repo entity.UserRepositoryInterface
	Cost int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthUseCase(repo entity.UserRepositoryInterface) *AuthUseCase {
	return &AuthUseCase{
		Repo: repo,
		Cost: bcrypt.DefaultCost,
	}
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*entity.Identity, error) {
	if errs := ValidateRegisterInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), uc.cost())
	if err != nil {
		return nil, &TechnicalError{Code: "HASH_ERROR", Message: "Não foi possível criar o usuário.", Err: err}
	}

	user := &entity.User{
		Email:        entity.NormalizeEmail(input.Email),
		Name:         input.Name,
		Role:         entity.RoleStandard,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := uc.Repo.Create(ctx, user); err != nil {
		if errors.Is(err, entity.ErrEmailAlreadyExists) {
			return nil, &DomainError{
				Code:    CodeDuplicateIdentity,
				Message: "Usuário já cadastrado.",
				Err:     err,
			}
		}
		return nil, storeUnavailable("create user", err)
	}

	log.Printf("usuário criado: %s", user.Email)
	id := user.Identity()
	return &id, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, input LoginInput) (*entity.Identity, error) {
	email := entity.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, authFailed()
	}

	user, err := uc.Repo.FindByEmail(ctx, email)
	if errors.Is(err, entity.ErrUserNotFound) {
		// mesmo custo de um bcrypt real
		_ = bcrypt.CompareHashAndPassword(uc.dummy(), []byte(input.Password))
		return nil, authFailed()
	}
	if err != nil {
		return nil, storeUnavailable("find user", err)
	}

	if user.PasswordHash == "" {
		_ = bcrypt.CompareHashAndPassword(uc.dummy(), []byte(input.Password))
		return nil, authFailed()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, authFailed()
	}

	id := user.Identity()
	return &id, nil
}

func (uc *AuthUseCase) cost() int {
	if uc.Cost < bcrypt.MinCost {
		return bcrypt.DefaultCost
	}
	return uc.Cost
}

func (uc *AuthUseCase) dummy() []byte {
	uc.dummyOnce.Do(func() {
		uc.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("lead-system-dummy"), uc.cost())
	})
	return uc.dummyHash
}

func authFailed() error {
	return &DomainError{
		Code:    CodeAuthFailed,
		Message: authFailedMessage,
		Err:     entity.ErrInvalidCredentials,
	}
}
