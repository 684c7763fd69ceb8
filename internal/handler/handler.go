package handler

import (
	"net/http"

	"github.com/Oluwaseg/shuriken-store-sub000/internal/middleware"
	"github.com/Oluwaseg/shuriken-store-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// 配送先未入力はクライアントがフォームを出せるよう専用の形で返す
type needShippingInfoResponse struct {
	Error            string   `json:"error"`
	NeedShippingInfo bool     `json:"need_shipping_info"`
	Missing          []string `json:"missing"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ns, ok := usecase.AsNeedShippingInfo(err); ok {
		return c.JSON(http.StatusBadRequest, needShippingInfoResponse{
			Error:            "shipping info required",
			NeedShippingInfo: true,
			Missing:          ns.Missing,
		})
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok {
		return 0, false
	}

	return id, true
}
