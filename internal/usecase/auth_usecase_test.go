package usecase_test

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/Oluwaseg/shuriken-store-sub000/internal/domain/model"
	"github.com/Oluwaseg/shuriken-store-sub000/internal/usecase"
)

// 何でも通すvalidator
type passValidator struct{}

func (passValidator) ValidateRegister(ctx context.Context, email string, password string) error {
	return nil
}
func (passValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	return nil
}

func TestAuthUsecase_Register_IssuesToken(t *testing.T) {
	users := new(UserRepoMock)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		//平文は保存しない
		return u.Email == "ninja@example.com" &&
			u.Role == model.RoleUser &&
			u.PasswordHash != "password123" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")) == nil
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.User).ID = 42
	}).Return(nil)

	uc := usecase.NewAuthUsecase(users, passValidator{}, "test_secret")

	out, err := uc.Register(context.Background(), "Hanzo", "ninja@example.com", "password123")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), out.User.ID)
	assert.NotEmpty(t, out.Token)

	//発行されたJWTのclaimsを確認
	token, err := jwt.Parse(out.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("test_secret"), nil
	})
	assert.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "42", claims["sub"])
	assert.Equal(t, "USER", claims["role"])
}

func TestAuthUsecase_Login_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "ninja@example.com").
		Return(&model.User{ID: 42, Email: "ninja@example.com", PasswordHash: string(hash), IsActive: true}, nil)

	uc := usecase.NewAuthUsecase(users, passValidator{}, "test_secret")

	_, err := uc.Login(context.Background(), "ninja@example.com", "wrong-password")
	assertErrContains(t, err, "invalid credentials")
}

func TestAuthUsecase_Login_UnknownEmailSameMessage(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

	uc := usecase.NewAuthUsecase(users, passValidator{}, "test_secret")

	_, err := uc.Login(context.Background(), "ghost@example.com", "password123")
	assertErrContains(t, err, "invalid credentials")
}

func TestAuthUsecase_Login_Success(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "ninja@example.com").
		Return(&model.User{ID: 42, Email: "ninja@example.com", PasswordHash: string(hash),
			Role: model.RoleUser, IsActive: true}, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.LastLoginAt != nil
	})).Return(nil)

	uc := usecase.NewAuthUsecase(users, passValidator{}, "test_secret")

	out, err := uc.Login(context.Background(), "ninja@example.com", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, int64(42), out.User.ID)
}

func TestOrderUsecase_GetMyOrderDetail_OtherUsersOrderIsHidden(t *testing.T) {
	orders := new(OrderRepoMock)
	orders.On("FindByID", mock.Anything, int64(55)).
		Return(model.Order{ID: 55, UserID: 2, Status: model.OrderStatusPending}, nil)

	uc := usecase.NewOrderUsecase(orders, new(OrderItemRepoMock))

	_, err := uc.GetMyOrderDetail(context.Background(), 1, 55)
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
}
