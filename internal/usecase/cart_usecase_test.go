package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Oluwaseg/shuriken-store-sub000/internal/domain/model"
	repo "github.com/Oluwaseg/shuriken-store-sub000/internal/repository"
	"github.com/Oluwaseg/shuriken-store-sub000/internal/usecase"
)

func newCartUsecase(carts *CartRepoMock, cartItems *CartItemRepoMock, products *ProductRepoMock) *usecase.CartUsecase {
	tx := txManagerStub{repos: txReposStub{
		carts:     carts,
		cartItems: cartItems,
		products:  products,
	}}
	return usecase.NewCartUsecase(carts, cartItems, products, tx)
}

// =====================
// GetCart
// =====================

func TestCartUsecase_GetCart_Totals(t *testing.T) {
	carts := new(CartRepoMock)
	cartItems := new(CartItemRepoMock)
	products := new(ProductRepoMock)

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10, UserID: 1, Status: model.CartStatusActive}, nil)

	cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 500},
		{ID: 2, CartID: 10, ProductID: 200, Quantity: 1, UnitPriceSnapshot: 1000},
	}, nil)

	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Katana", Price: 500, Stock: 10, IsActive: true}, nil)
	products.On("FindByID", mock.Anything, int64(200)).
		Return(model.Product{ID: 200, Name: "Shuriken Set", Price: 1000, Stock: 5, IsActive: true}, nil)

	uc := newCartUsecase(carts, cartItems, products)

	out, err := uc.GetCart(context.Background(), 1)
	assert.NoError(t, err)

	// 500*2 + 1000*1 = 2000、税10%、送料8500
	assert.Equal(t, int64(2000), out.ItemsPrice)
	assert.Equal(t, int64(200), out.Tax)
	assert.Equal(t, int64(8500), out.Shipping)
	assert.Equal(t, int64(10700), out.Total)
	assert.Len(t, out.Items, 2)
}

func TestCartUsecase_GetCart_EmptyHasZeroTotals(t *testing.T) {
	carts := new(CartRepoMock)
	cartItems := new(CartItemRepoMock)
	products := new(ProductRepoMock)

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10, UserID: 1, Status: model.CartStatusActive}, nil)
	cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{}, nil)

	uc := newCartUsecase(carts, cartItems, products)

	out, err := uc.GetCart(context.Background(), 1)
	assert.NoError(t, err)

	//空カートは送料も税も0
	assert.Equal(t, int64(0), out.ItemsPrice)
	assert.Equal(t, int64(0), out.Tax)
	assert.Equal(t, int64(0), out.Shipping)
	assert.Equal(t, int64(0), out.Total)
	assert.Empty(t, out.Items)
}

func TestCartUsecase_GetCart_ProductLookupFailure(t *testing.T) {
	carts := new(CartRepoMock)
	cartItems := new(CartItemRepoMock)
	products := new(ProductRepoMock)

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10, UserID: 1, Status: model.CartStatusActive}, nil)
	cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 500},
	}, nil)

	// ErrNotFound以外のDB障害は明細スキップではなくエラー
	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{}, errors.New("connection reset"))

	uc := newCartUsecase(carts, cartItems, products)

	_, err := uc.GetCart(context.Background(), 1)
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 500, he.Status)
	assertErrContains(t, err, "db error")
}

// =====================
// AddToCart
// =====================

func TestCartUsecase_AddToCart_InvalidQuantity(t *testing.T) {
	uc := newCartUsecase(new(CartRepoMock), new(CartItemRepoMock), new(ProductRepoMock))

	_, err := uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 100, Quantity: 0})
	assertErrContains(t, err, "invalid quantity")

	_, err = uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 100, Quantity: -2})
	assertErrContains(t, err, "invalid quantity")
}

func TestCartUsecase_AddToCart_IncrementsExistingLine(t *testing.T) {
	carts := new(CartRepoMock)
	cartItems := new(CartItemRepoMock)
	products := new(ProductRepoMock)

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10, UserID: 1, Status: model.CartStatusActive}, nil)
	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Katana", Price: 500, Stock: 10, IsActive: true}, nil)

	//既に1個入っている
	cartItems.On("FindByCartAndProduct", mock.Anything, int64(10), int64(100)).
		Return(model.CartItem{ID: 1, CartID: 10, ProductID: 100, Quantity: 1, UnitPriceSnapshot: 450}, nil)

	// 追加分だけをUpsertに渡す（加算はリポジトリ側）
	cartItems.On("UpsertByCartAndProduct", mock.Anything, int64(10), int64(100), int64(2), int64(500)).
		Return(nil)

	cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 100, Quantity: 3, UnitPriceSnapshot: 500},
	}, nil)

	uc := newCartUsecase(carts, cartItems, products)

	out, err := uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 100, Quantity: 2})
	assert.NoError(t, err)
	assert.Equal(t, int64(1500), out.ItemsPrice)

	cartItems.AssertCalled(t, "UpsertByCartAndProduct", mock.Anything, int64(10), int64(100), int64(2), int64(500))
}

func TestCartUsecase_AddToCart_StockExceeded(t *testing.T) {
	carts := new(CartRepoMock)
	cartItems := new(CartItemRepoMock)
	products := new(ProductRepoMock)

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10, UserID: 1, Status: model.CartStatusActive}, nil)
	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Price: 500, Stock: 4, IsActive: true}, nil)
	cartItems.On("FindByCartAndProduct", mock.Anything, int64(10), int64(100)).
		Return(model.CartItem{ID: 1, CartID: 10, ProductID: 100, Quantity: 2}, nil)

	uc := newCartUsecase(carts, cartItems, products)

	_, err := uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 100, Quantity: 3})
	assertErrContains(t, err, "stock exceeded")

	cartItems.AssertNotCalled(t, "UpsertByCartAndProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToCart_InactiveProduct(t *testing.T) {
	carts := new(CartRepoMock)
	cartItems := new(CartItemRepoMock)
	products := new(ProductRepoMock)

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10, UserID: 1, Status: model.CartStatusActive}, nil)
	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Price: 500, Stock: 10, IsActive: false}, nil)

	uc := newCartUsecase(carts, cartItems, products)

	_, err := uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 100, Quantity: 1})
	assertErrContains(t, err, "invalid product")
}

// =====================
// UpdateCartItem / RemoveItem
// =====================

func TestCartUsecase_UpdateCartItem_NegativeQuantity(t *testing.T) {
	uc := newCartUsecase(new(CartRepoMock), new(CartItemRepoMock), new(ProductRepoMock))

	_, err := uc.UpdateCartItem(context.Background(), 1, usecase.UpdateCartItemInput{ProductID: 100, Quantity: -1})
	assertErrContains(t, err, "invalid quantity")
}

func TestCartUsecase_UpdateCartItem_ZeroRemovesLine(t *testing.T) {
	carts := new(CartRepoMock)
	cartItems := new(CartItemRepoMock)
	products := new(ProductRepoMock)

	carts.On("FindActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10, UserID: 1, Status: model.CartStatusActive}, nil)
	cartItems.On("FindByCartAndProduct", mock.Anything, int64(10), int64(100)).
		Return(model.CartItem{ID: 7, CartID: 10, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 500}, nil)
	cartItems.On("DeleteByID", mock.Anything, int64(7)).Return(nil)
	cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{}, nil)

	uc := newCartUsecase(carts, cartItems, products)

	out, err := uc.UpdateCartItem(context.Background(), 1, usecase.UpdateCartItemInput{ProductID: 100, Quantity: 0})
	assert.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Equal(t, int64(0), out.Total)

	cartItems.AssertCalled(t, "DeleteByID", mock.Anything, int64(7))
	cartItems.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_RemoveItem_NotInCart(t *testing.T) {
	carts := new(CartRepoMock)
	cartItems := new(CartItemRepoMock)

	carts.On("FindActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10, UserID: 1, Status: model.CartStatusActive}, nil)
	cartItems.On("FindByCartAndProduct", mock.Anything, int64(10), int64(999)).
		Return(model.CartItem{}, repo.ErrNotFound)

	uc := newCartUsecase(carts, cartItems, new(ProductRepoMock))

	_, err := uc.RemoveItem(context.Background(), 1, 999)
	assertErrContains(t, err, "not found")
}

// =====================
// ClearCart
// =====================

func TestCartUsecase_ClearCart_NoCartIsStillSuccess(t *testing.T) {
	carts := new(CartRepoMock)

	carts.On("FindActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{}, repo.ErrNotFound)

	uc := newCartUsecase(carts, new(CartItemRepoMock), new(ProductRepoMock))

	out, err := uc.ClearCart(context.Background(), 1)
	assert.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Equal(t, int64(0), out.Total)
}

// =====================
// MergeGuestCart
// =====================

func TestCartUsecase_MergeGuestCart_CapsAtStockAndSkipsMissing(t *testing.T) {
	carts := new(CartRepoMock)
	cartItems := new(CartItemRepoMock)
	products := new(ProductRepoMock)

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10, UserID: 1, Status: model.CartStatusActive}, nil)

	//既にp100を1個持っている
	cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 100, Quantity: 1, UnitPriceSnapshot: 500},
	}, nil).Once()

	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Katana", Price: 500, Stock: 3, IsActive: true}, nil)
	//p200は消えた商品
	products.On("FindByID", mock.Anything, int64(200)).
		Return(model.Product{}, repo.ErrNotFound)

	// 在庫3・既存1なので取り込めるのは2個まで。価格はゲスト側の900
	cartItems.On("UpsertByCartAndProduct", mock.Anything, int64(10), int64(100), int64(2), int64(900)).
		Return(nil)

	//マージ後の明細
	cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 100, Quantity: 3, UnitPriceSnapshot: 900},
	}, nil)

	uc := newCartUsecase(carts, cartItems, products)

	out, err := uc.MergeGuestCart(context.Background(), 1, []usecase.GuestCartItem{
		{ProductID: 100, Quantity: 5, Price: 900},
		{ProductID: 200, Quantity: 1, Price: 100},
	})
	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(2700), out.ItemsPrice)

	cartItems.AssertCalled(t, "UpsertByCartAndProduct", mock.Anything, int64(10), int64(100), int64(2), int64(900))
	cartItems.AssertNumberOfCalls(t, "UpsertByCartAndProduct", 1)
}

func TestCartUsecase_MergeGuestCart_EmptyInput(t *testing.T) {
	uc := newCartUsecase(new(CartRepoMock), new(CartItemRepoMock), new(ProductRepoMock))

	_, err := uc.MergeGuestCart(context.Background(), 1, nil)
	assertErrContains(t, err, "empty guest cart")
}
