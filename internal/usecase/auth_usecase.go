package usecase

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/Oluwaseg/shuriken-store-sub000/internal/domain/model"
	repo "github.com/Oluwaseg/shuriken-store-sub000/internal/repository"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")

	// emailが既に使用済み
	ErrEmailAlreadyUsed = errors.New("email already used")
)

// validatorのsentinelをHTTPエラーへ寄せる
func validationError(err error) error {
	if errors.Is(err, ErrEmailAlreadyUsed) {
		return NewHTTPError(http.StatusConflict, "email already used")
	}
	return NewHTTPError(http.StatusBadRequest, "invalid input")
}

// 入力検証はvalidatorパッケージに委譲
type AuthValidator interface {
	ValidateRegister(ctx context.Context, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

type AuthUsecase struct {
	users     repo.UserRepository
	validator AuthValidator
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthUsecase(users repo.UserRepository, validator AuthValidator, jwtSecret string) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		validator: validator,
		jwtSecret: jwtSecret,
		tokenTTL:  24 * time.Hour,
	}
}

type UserOutput struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	Role         string             `json:"role"`
	ShippingInfo model.ShippingInfo `json:"shipping_info"`
}

type AuthOutput struct {
	Token string     `json:"token"`
	User  UserOutput `json:"user"`
}

func (u *AuthUsecase) Register(ctx context.Context, name string, email string, password string) (AuthOutput, error) {
	if name == "" {
		return AuthOutput{}, NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if err := u.validator.ValidateRegister(ctx, email, password); err != nil {
		return AuthOutput{}, validationError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return AuthOutput{}, NewHTTPError(http.StatusInternalServerError, "hashing failed")
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return AuthOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.issue(user)
}

func (u *AuthUsecase) Login(ctx context.Context, email string, password string) (AuthOutput, error) {
	if err := u.validator.ValidateLogin(ctx, email, password); err != nil {
		return AuthOutput{}, validationError(err)
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return AuthOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil {
		//存在しないemailでもメッセージは同じにする
		return AuthOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if !user.IsActive {
		return AuthOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return AuthOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		return AuthOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.issue(user)
}

func (u *AuthUsecase) GetMe(ctx context.Context, userID int64) (UserOutput, error) {
	if userID <= 0 {
		return UserOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return UserOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil {
		return UserOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	return toUserOutput(user), nil
}

// HS256でアクセストークンを発行
func (u *AuthUsecase) issue(user *model.User) (AuthOutput, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(u.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(u.jwtSecret))
	if err != nil {
		return AuthOutput{}, NewHTTPError(http.StatusInternalServerError, "signing failed")
	}

	return AuthOutput{Token: signed, User: toUserOutput(user)}, nil
}

func toUserOutput(user *model.User) UserOutput {
	return UserOutput{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         string(user.Role),
		ShippingInfo: user.ShippingInfo,
	}
}
