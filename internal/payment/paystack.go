package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Oluwaseg/shuriken-store-sub000/internal/domain/model"
)

// Paystackは2回の呼び出し（initialize/verify）間で状態を持たないので、
// metadataに入れたものがverifyでそのまま返ってくる。
type Metadata struct {
	UserID       int64              `json:"user_id"`
	ShippingInfo model.ShippingInfo `json:"shipping_info"`
}

type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type VerifyResult struct {
	Status     string   `json:"status"` // success / failed / abandoned
	Reference  string   `json:"reference"`
	AmountKobo int64    `json:"amount"`
	Metadata   Metadata `json:"metadata"`
}

// 決済が成功扱いか
func (v VerifyResult) Succeeded() bool {
	return v.Status == "success"
}

// Usecaseが依存する決済ゲートウェイの約束
type Gateway interface {
	Initialize(ctx context.Context, email string, amountKobo int64, reference string, callbackURL string, meta Metadata) (InitializeResult, error)
	Verify(ctx context.Context, reference string) (VerifyResult, error)
}

// プロバイダ側エラー。payloadは診断用にそのまま持つ
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("paystack: status %d: %s", e.StatusCode, e.Body)
}

// Naira→kobo（最小通貨単位）
func ToKobo(amount int64) int64 {
	return amount * 100
}

type PaystackClient struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

// タイムアウトなしだとverifyが宙づりになるので30秒で切る
func NewPaystackClient(baseURL string, secretKey string) *PaystackClient {
	return &PaystackClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		secretKey:  secretKey,
	}
}

// Paystackの共通レスポンス
type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeRequest struct {
	Email       string   `json:"email"`
	Amount      int64    `json:"amount"` // kobo
	Reference   string   `json:"reference,omitempty"`
	CallbackURL string   `json:"callback_url,omitempty"`
	Metadata    Metadata `json:"metadata"`
}

// POST /transaction/initialize
func (c *PaystackClient) Initialize(ctx context.Context, email string, amountKobo int64, reference string, callbackURL string, meta Metadata) (InitializeResult, error) {
	body := initializeRequest{
		Email:       email,
		Amount:      amountKobo,
		Reference:   reference,
		CallbackURL: callbackURL,
		Metadata:    meta,
	}

	var out InitializeResult
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", body, &out); err != nil {
		return InitializeResult{}, err
	}
	return out, nil
}

// GET /transaction/verify/:reference
func (c *PaystackClient) Verify(ctx context.Context, reference string) (VerifyResult, error) {
	var out VerifyResult
	if err := c.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &out); err != nil {
		return VerifyResult{}, err
	}
	return out, nil
}

func (c *PaystackClient) do(ctx context.Context, method string, path string, body interface{}, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling paystack: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &GatewayError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var env paystackEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if !env.Status {
		return &GatewayError{StatusCode: resp.StatusCode, Body: env.Message}
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("parsing response data: %w", err)
	}
	return nil
}
