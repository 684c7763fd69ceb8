package usecase

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Oluwaseg/shuriken-store-sub000/internal/domain/model"
	"github.com/Oluwaseg/shuriken-store-sub000/internal/notification"
	"github.com/Oluwaseg/shuriken-store-sub000/internal/payment"
	repo "github.com/Oluwaseg/shuriken-store-sub000/internal/repository"
)

// payment_referenceの発行。テストでは固定値を差し込む
type ReferenceGenerator interface {
	NewReference() string
}

type UUIDReferenceGenerator struct{}

func (UUIDReferenceGenerator) NewReference() string {
	return uuid.NewString()
}

// PaymentUsecase は決済開始〜照合までを担当します。
// Paystackはこちらの注文を知らないので、referenceとmetadataだけが両者を繋ぐ鍵になる。
type PaymentUsecase struct {
	users       repo.UserRepository
	carts       repo.CartRepository
	cartItems   repo.CartItemRepository
	products    repo.ProductRepository
	orders      repo.OrderRepository
	orderItems  repo.OrderItemRepository
	tx          repo.TransactionManager
	gateway     payment.Gateway
	mailer      notification.Mailer
	refGen      ReferenceGenerator
	callbackURL string
}

func NewPaymentUsecase(
	users repo.UserRepository,
	carts repo.CartRepository,
	cartItems repo.CartItemRepository,
	products repo.ProductRepository,
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	tx repo.TransactionManager,
	gateway payment.Gateway,
	mailer notification.Mailer,
	refGen ReferenceGenerator,
	callbackURL string,
) *PaymentUsecase {
	return &PaymentUsecase{
		users:       users,
		carts:       carts,
		cartItems:   cartItems,
		products:    products,
		orders:      orders,
		orderItems:  orderItems,
		tx:          tx,
		gateway:     gateway,
		mailer:      mailer,
		refGen:      refGen,
		callbackURL: callbackURL,
	}
}

type InitializePaymentOutput struct {
	AuthorizationURL string      `json:"authorization_url"`
	AccessCode       string      `json:"access_code"`
	Reference        string      `json:"reference"`
	Order            OrderOutput `json:"order"`
}

// InitializePayment はACTIVEカートからPaystackの決済を開始します。
// ゲートウェイの呼び出しが成功したら、同一トランザクションで
// 注文（PENDING_VERIFICATION）を作成しカートを空にする。
func (u *PaymentUsecase) InitializePayment(ctx context.Context, userID int64) (InitializePaymentOutput, error) {
	if userID <= 0 {
		return InitializePaymentOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return InitializePaymentOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil {
		return InitializePaymentOutput{}, NewHTTPError(http.StatusNotFound, "user not found")
	}

	// 配送先が無いまま決済を始めさせない
	if !user.HasShippingInfo() {
		return InitializePaymentOutput{}, &NeedShippingInfoError{Missing: user.ShippingInfo.MissingFields()}
	}

	cart, err := u.carts.FindActiveByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return InitializePaymentOutput{}, NewHTTPError(http.StatusNotFound, "Cart is empty")
	}
	if err != nil {
		return InitializePaymentOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	draftItems, itemsPrice, err := u.buildOrderDraft(ctx, cart.ID)
	if err != nil {
		return InitializePaymentOutput{}, err
	}
	if len(draftItems) == 0 {
		return InitializePaymentOutput{}, NewHTTPError(http.StatusNotFound, "Cart is empty")
	}

	tax := model.TaxFor(itemsPrice)
	shipping := model.ShippingFlat
	total := itemsPrice + tax + shipping

	reference := u.refGen.NewReference()
	meta := payment.Metadata{UserID: userID, ShippingInfo: user.ShippingInfo}

	initRes, err := u.gateway.Initialize(ctx, user.Email, payment.ToKobo(total), reference, u.callbackURL, meta)
	if err != nil {
		if ge, ok := err.(*payment.GatewayError); ok {
			return InitializePaymentOutput{}, NewHTTPError(http.StatusBadGateway, ge.Error())
		}
		return InitializePaymentOutput{}, NewHTTPError(http.StatusBadGateway, "payment provider unavailable")
	}

	order := model.Order{
		UserID:           userID,
		Status:           model.OrderStatusPendingVerification,
		ItemsPrice:       itemsPrice,
		TaxPrice:         tax,
		ShippingPrice:    shipping,
		TotalPrice:       total,
		ShippingInfo:     user.ShippingInfo,
		PaymentReference: reference,
		PaymentStatus:    model.PaymentStatusPending,
	}

	//注文作成とカートのクリアは不可分
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		order.ID = orderID

		if err := r.OrderItems().CreateBulk(ctx, orderID, draftItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusCheckedOut); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil && err != repo.ErrNotFound {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	if err != nil {
		return InitializePaymentOutput{}, err
	}

	return InitializePaymentOutput{
		AuthorizationURL: initRes.AuthorizationURL,
		AccessCode:       initRes.AccessCode,
		Reference:        initRes.Reference,
		Order:            toOrderOutput(order, draftItems),
	}, nil
}

// VerifyPayment はPaystackに照会し、結果を注文に反映します。
// 同じreferenceで何度呼ばれても結果は変わらない（冪等）。
func (u *PaymentUsecase) VerifyPayment(ctx context.Context, reference string) (OrderOutput, error) {
	if reference == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "reference is required")
	}

	order, found, err := u.orders.FindByPaymentReference(ctx, reference)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 既に成功確定済みならゲートウェイに聞き直さない（メールも再送しない）
	if found && order.PaymentStatus == model.PaymentStatusSuccess {
		items, err := u.orderItems.ListByOrderID(ctx, order.ID)
		if err != nil {
			return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return toOrderOutput(order, items), nil
	}

	vr, err := u.gateway.Verify(ctx, reference)
	if err != nil {
		if ge, ok := err.(*payment.GatewayError); ok {
			return OrderOutput{}, NewHTTPError(http.StatusBadGateway, ge.Error())
		}
		return OrderOutput{}, NewHTTPError(http.StatusBadGateway, "payment provider unavailable")
	}

	if found {
		return u.settleExistingOrder(ctx, order, vr)
	}
	return u.reconstructOrder(ctx, reference, vr)
}

// 注文が存在するときの照合結果の反映
func (u *PaymentUsecase) settleExistingOrder(ctx context.Context, order model.Order, vr payment.VerifyResult) (OrderOutput, error) {
	items, err := u.orderItems.ListByOrderID(ctx, order.ID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !vr.Succeeded() {
		//失敗してもカートには触らない（買い直しの可能性があるため）
		if err := u.orders.MarkPaymentFailed(ctx, order.ID); err != nil {
			return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		order.PaymentStatus = model.PaymentStatusFailed
		order.Status = model.OrderStatusPaymentFailed
		return toOrderOutput(order, items), nil
	}

	now := time.Now()
	updated, err := u.orders.MarkPaid(ctx, order.ID, now)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	order.PaymentStatus = model.PaymentStatusSuccess
	order.Status = model.OrderStatusPending
	order.PaidAt = &now

	// 並行するverifyが先に確定していたら後始末とメールはそちらに任せる
	if !updated {
		return toOrderOutput(order, items), nil
	}

	// initialize後に作り直されたACTIVEカートが残っていれば片付ける
	if cart, err := u.carts.FindActiveByUserID(ctx, order.UserID); err == nil {
		if err := u.carts.Clear(ctx, cart.ID); err != nil && err != repo.ErrNotFound {
			log.Printf("payment: clearing residual cart for user %d: %v", order.UserID, err)
		}
	}

	u.sendConfirmation(ctx, order)

	return toOrderOutput(order, items), nil
}

// 注文レコードが無いのにPaystack側は成功している場合の復元。
// initializeのDB書き込みが失敗したケースで、カートはまだ生きている。
// metadataの配送先と生存カートから注文を作り直す。
func (u *PaymentUsecase) reconstructOrder(ctx context.Context, reference string, vr payment.VerifyResult) (OrderOutput, error) {
	if !vr.Succeeded() {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	userID := vr.Metadata.UserID
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "cart is empty or already processed")
	}

	cart, err := u.carts.FindActiveByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "cart is empty or already processed")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	draftItems, itemsPrice, err := u.buildOrderDraft(ctx, cart.ID)
	if err != nil {
		return OrderOutput{}, err
	}
	if len(draftItems) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "cart is empty or already processed")
	}

	tax := model.TaxFor(itemsPrice)
	shipping := model.ShippingFlat
	now := time.Now()

	order := model.Order{
		UserID:           userID,
		Status:           model.OrderStatusPending,
		ItemsPrice:       itemsPrice,
		TaxPrice:         tax,
		ShippingPrice:    shipping,
		TotalPrice:       itemsPrice + tax + shipping,
		ShippingInfo:     vr.Metadata.ShippingInfo,
		PaymentReference: reference,
		PaymentStatus:    model.PaymentStatusSuccess,
		PaidAt:           &now,
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		order.ID = orderID

		if err := r.OrderItems().CreateBulk(ctx, orderID, draftItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusCheckedOut); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil && err != repo.ErrNotFound {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.sendConfirmation(ctx, order)

	return toOrderOutput(order, draftItems), nil
}

// 通知は成功の邪魔をしない。失敗はログだけ残す
func (u *PaymentUsecase) sendConfirmation(ctx context.Context, order model.Order) {
	if u.mailer == nil {
		return
	}
	user, err := u.users.FindByID(ctx, order.UserID)
	if err != nil || user == nil {
		log.Printf("payment: looking up user %d for confirmation mail: %v", order.UserID, err)
		return
	}
	if err := u.mailer.SendOrderConfirmation(user.Email, order); err != nil {
		log.Printf("payment: sending confirmation for order %d: %v", order.ID, err)
	}
}

// カート明細から注文明細（スナップショット付き）と商品小計を作る
func (u *PaymentUsecase) buildOrderDraft(ctx context.Context, cartID int64) ([]model.OrderItem, int64, error) {
	cartItems, err := u.cartItems.ListByCartID(ctx, cartID)
	if err != nil {
		return nil, 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items := make([]model.OrderItem, 0, len(cartItems))
	var itemsPrice int64 = 0

	for _, it := range cartItems {
		p, err := u.products.FindByID(ctx, it.ProductID)
		if err == repo.ErrNotFound {
			//消えた商品は注文に含めない
			continue
		}
		if err != nil {
			// ここで握りつぶすと明細が欠けた金額で決済してしまう
			return nil, 0, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !p.IsActive {
			continue
		}

		items = append(items, model.OrderItem{
			ProductID:            it.ProductID,
			ProductNameSnapshot:  p.Name,
			ProductImageSnapshot: p.Image,
			UnitPriceSnapshot:    it.UnitPriceSnapshot,
			Quantity:             it.Quantity,
		})
		itemsPrice += it.UnitPriceSnapshot * it.Quantity
	}

	return items, itemsPrice, nil
}
