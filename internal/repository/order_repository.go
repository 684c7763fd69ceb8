package repository

import (
	"context"
	"time"

	"github.com/Oluwaseg/shuriken-store-sub000/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)

	// フルフィルメント遷移。SHIPPED/DELIVEREDでは日時も刻む
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, at time.Time) error

	//Paystackのreferenceで検索（同じreferenceなら同じ注文）
	FindByPaymentReference(ctx context.Context, reference string) (model.Order, bool, error)
	// 決済成功を確定（payment_status/status/paid_at）。
	// 既にSUCCESSなら何もせずfalseを返す（並行verifyの二重確定防止）
	MarkPaid(ctx context.Context, orderID int64, paidAt time.Time) (bool, error)
	// 決済失敗を確定
	MarkPaymentFailed(ctx context.Context, orderID int64) error

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
