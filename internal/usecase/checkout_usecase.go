package usecase

import (
	"context"
	"net/http"

	"github.com/Oluwaseg/shuriken-store-sub000/internal/domain/model"
	repo "github.com/Oluwaseg/shuriken-store-sub000/internal/repository"
)

// 配送先未入力はハードエラーではなく、クライアントが入力を促せる形で返す
type NeedShippingInfoError struct {
	Missing []string
}

func (e *NeedShippingInfoError) Error() string {
	return "shipping info required"
}

func AsNeedShippingInfo(err error) (*NeedShippingInfoError, bool) {
	if e, ok := err.(*NeedShippingInfoError); ok {
		return e, true
	}
	return nil, false
}

// チェックアウト開始時点のサマリ（この瞬間のカート状態のスナップショット）
type CheckoutSummary struct {
	ShippingInfo model.ShippingInfo `json:"shipping_info"`
	Cart         CartResponse       `json:"cart"`
}

type CheckoutUsecase struct {
	userRepo repo.UserRepository
	cartRepo repo.CartRepository
	cartUC   *CartUsecase
}

func NewCheckoutUsecase(
	userRepo repo.UserRepository,
	cartRepo repo.CartRepository,
	cartUC *CartUsecase,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		userRepo: userRepo,
		cartRepo: cartRepo,
		cartUC:   cartUC,
	}
}

// InitializeCheckout は配送先を検証してユーザーに保存し、サマリを返す。
// 在庫の引き当てもカートの削除もここでは行わない。
func (u *CheckoutUsecase) InitializeCheckout(ctx context.Context, userID int64, info model.ShippingInfo) (CheckoutSummary, error) {
	if userID <= 0 {
		return CheckoutSummary{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return CheckoutSummary{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil {
		return CheckoutSummary{}, NewHTTPError(http.StatusNotFound, "user not found")
	}

	//6項目すべて必須。欠けていたら何も保存しない
	if missing := info.MissingFields(); len(missing) > 0 {
		return CheckoutSummary{}, &NeedShippingInfoError{Missing: missing}
	}

	//カートが空ならチェックアウトできない
	cart, err := u.cartRepo.FindActiveByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return CheckoutSummary{}, NewHTTPError(http.StatusBadRequest, "cart is empty")
	}
	if err != nil {
		return CheckoutSummary{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	summary, err := u.cartUC.buildCartResponse(ctx, cart.ID)
	if err != nil {
		return CheckoutSummary{}, err
	}
	if len(summary.Items) == 0 {
		return CheckoutSummary{}, NewHTTPError(http.StatusBadRequest, "cart is empty")
	}

	//検証が通ってから配送先を上書き保存（以後の注文のデフォルトになる）
	if err := u.userRepo.UpdateShippingInfo(ctx, userID, info); err != nil {
		return CheckoutSummary{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return CheckoutSummary{
		ShippingInfo: info,
		Cart:         summary,
	}, nil
}
