package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Oluwaseg/shuriken-store-sub000/internal/domain/model"
	repo "github.com/Oluwaseg/shuriken-store-sub000/internal/repository"
)

type AdminOrderUsecase struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	tx         repo.TransactionManager
}

func NewAdminOrderUsecase(
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	tx repo.TransactionManager,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{orders: orders, orderItems: orderItems, tx: tx}
}

type AdminOrderListInput struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

func (u *AdminOrderUsecase) ListOrders(ctx context.Context, in AdminOrderListInput) (OrderListOutput, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 || in.Limit > 100 {
		in.Limit = 20
	}

	orders, total, err := u.orders.ListAdmin(ctx, repo.AdminOrderListFilter{
		Page:   in.Page,
		Limit:  in.Limit,
		Status: in.Status,
		UserID: in.UserID,
		From:   in.From,
		To:     in.To,
	})
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		items, err := u.orderItems.ListByOrderID(ctx, o.ID)
		if err != nil {
			return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs = append(outs, toOrderOutput(o, items))
	}

	return OrderListOutput{Items: outs, Total: total}, nil
}

func (u *AdminOrderUsecase) GetOrder(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := u.orderItems.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toOrderOutput(o, items), nil
}

// UpdateStatus はフルフィルメントの状態遷移を1段進めます。
// PENDING→PROCESSINGで在庫を引き当て、引き当て後のキャンセルと返品で在庫を戻す。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, orderID int64, next model.OrderStatus) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	order, err := u.orders.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !model.CanTransition(order.Status, next) {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("cannot transition from %s to %s", order.Status, next))
	}

	items, err := u.orderItems.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := time.Now()

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// PROCESSINGに入る瞬間が在庫引き当てのタイミング
		if next == model.OrderStatusProcessing {
			for _, it := range items {
				ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.Quantity)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				if !ok {
					return NewHTTPError(http.StatusBadRequest,
						fmt.Sprintf("insufficient stock for product %d", it.ProductID))
				}
			}
		}

		// 引き当て済みのキャンセル、または返品なら在庫を戻す
		if u.restoresStock(order.Status, next) {
			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, next, now); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	order.Status = next
	switch next {
	case model.OrderStatusShipped:
		order.ShippedAt = &now
	case model.OrderStatusDelivered:
		order.DeliveredAt = &now
	}

	return toOrderOutput(order, items), nil
}

// PENDINGからのキャンセルはまだ引き当てていないので戻さない
func (u *AdminOrderUsecase) restoresStock(from model.OrderStatus, to model.OrderStatus) bool {
	if to == model.OrderStatusReturned {
		return true
	}
	if to != model.OrderStatusCancelled {
		return false
	}
	return from == model.OrderStatusProcessing || from == model.OrderStatusPackaging
}
