package infra

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/config"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidSignature is returned when an inbound callback fails verification.
var ErrInvalidSignature = errors.New("momo: invalid callback signature")

// PaymentIntentRequest describes the amount to collect for one order.
type PaymentIntentRequest struct {
	OrderID     uuid.UUID
	OrderNumber string
	Amount      decimal.Decimal
}

// PaymentIntent is the gateway's answer: the correlation id echoed back in
// the callback and the URL the customer pays at.
type PaymentIntent struct {
	CorrelationID string
	RedirectURL   string
}

// MomoCallback is the IPN body posted by MoMo after a payment attempt.
type MomoCallback struct {
	PartnerCode  string
	OrderID      string
	RequestID    string
	Amount       int64
	OrderInfo    string
	OrderType    string
	TransID      int64
	ResultCode   int
	Message      string
	PayType      string
	ResponseTime int64
	ExtraData    string
	Signature    string
}

type momoCreateRequest struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IpnURL      string `json:"ipnUrl"`
	RequestType string `json:"requestType"`
	ExtraData   string `json:"extraData"`
	Lang        string `json:"lang"`
	Signature   string `json:"signature"`
}

type momoCreateResponse struct {
	OrderID    string `json:"orderId"`
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
}

// MomoClient creates MoMo wallet payment intents through a circuit breaker
// and verifies inbound IPN callbacks.
type MomoClient struct {
	endpoint    string
	partnerCode string
	accessKey   string
	secretKey   string
	redirectURL string
	ipnURL      string
	httpClient  *http.Client
	cb          *CircuitBreaker
}

func NewMomoClient(cfg *config.Config, cb *CircuitBreaker) *MomoClient {
	return &MomoClient{
		endpoint:    cfg.MomoEndpoint,
		partnerCode: cfg.MomoPartnerCode,
		accessKey:   cfg.MomoAccessKey,
		secretKey:   cfg.MomoSecretKey,
		redirectURL: cfg.MomoRedirectURL,
		ipnURL:      cfg.MomoIPNURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		cb:          cb,
	}
}

// CreatePaymentIntent registers a captureWallet payment for the order.
func (c *MomoClient) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error) {
	payload := momoCreateRequest{
		PartnerCode: c.partnerCode,
		RequestID:   uuid.NewString(),
		Amount:      req.Amount.Round(0).IntPart(),
		OrderID:     fmt.Sprintf("%s-%d", req.OrderNumber, time.Now().UnixMilli()),
		OrderInfo:   "Payment for order " + req.OrderNumber,
		RedirectURL: c.redirectURL,
		IpnURL:      c.ipnURL,
		RequestType: "captureWallet",
		ExtraData:   "",
		Lang:        "vi",
	}
	payload.Signature = c.sign(
		"accessKey=" + c.accessKey +
			"&amount=" + strconv.FormatInt(payload.Amount, 10) +
			"&extraData=" + payload.ExtraData +
			"&ipnUrl=" + payload.IpnURL +
			"&orderId=" + payload.OrderID +
			"&orderInfo=" + payload.OrderInfo +
			"&partnerCode=" + payload.PartnerCode +
			"&redirectUrl=" + payload.RedirectURL +
			"&requestId=" + payload.RequestID +
			"&requestType=" + payload.RequestType)

	var result momoCreateResponse
	err := c.cb.Execute(func() error {
		return c.post(ctx, payload, &result)
	})
	if err != nil {
		return nil, err
	}
	if result.ResultCode != 0 {
		return nil, fmt.Errorf("momo: create payment rejected: %d %s", result.ResultCode, result.Message)
	}
	return &PaymentIntent{CorrelationID: payload.OrderID, RedirectURL: result.PayURL}, nil
}

func (c *MomoClient) post(ctx context.Context, payload momoCreateRequest, out *momoCreateResponse) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("momo: marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("momo: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("momo: gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("momo: gateway returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("momo: decode response: %w", err)
	}
	return nil
}

// VerifyCallback checks the IPN signature against our secret key. Without a
// key every callback is rejected.
func (c *MomoClient) VerifyCallback(cb MomoCallback) error {
	if c.secretKey == "" {
		return ErrInvalidSignature
	}
	raw := "accessKey=" + c.accessKey +
		"&amount=" + strconv.FormatInt(cb.Amount, 10) +
		"&extraData=" + cb.ExtraData +
		"&message=" + cb.Message +
		"&orderId=" + cb.OrderID +
		"&orderInfo=" + cb.OrderInfo +
		"&orderType=" + cb.OrderType +
		"&partnerCode=" + cb.PartnerCode +
		"&payType=" + cb.PayType +
		"&requestId=" + cb.RequestID +
		"&responseTime=" + strconv.FormatInt(cb.ResponseTime, 10) +
		"&resultCode=" + strconv.Itoa(cb.ResultCode) +
		"&transId=" + strconv.FormatInt(cb.TransID, 10)
	expected := c.sign(raw)
	if !hmac.Equal([]byte(expected), []byte(cb.Signature)) {
		return ErrInvalidSignature
	}
	return nil
}

func (c *MomoClient) sign(raw string) string {
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
