package gateway

import (
	"context"
	"crypto/sha512"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/hold"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/clock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/config"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/commands"

	"github.com/google/uuid"
)

const (
	VNPayName = "vnpay"

	vnpVersion       = "2.1.0"
	vnpDateLayout    = "20060102150405"
	vnpSecureHash    = "vnp_SecureHash"
	vnpSecureHashTyp = "vnp_SecureHashType"
	vnpSuccessCode   = "00"
	vnpFullRefund    = "02"
	vnpClientIP      = "127.0.0.1"
)

// VNPay timestamps are Vietnam local time.
var vnpZone = time.FixedZone("ICT", 7*60*60)

// VNPayProvider signs redirect URLs locally; only refunds go over the network.
type VNPayProvider struct {
	cfg       config.VNPayConfig
	returnURL string
	clock     clock.Clock
	client    *http.Client
}

func NewVNPayProvider(cfg config.VNPayConfig, gw config.GatewayConfig, clk clock.Clock) *VNPayProvider {
	return &VNPayProvider{
		cfg:       cfg,
		returnURL: gw.ReturnURL + "/" + VNPayName,
		clock:     clk,
		client:    newHTTPClient(gw.HTTPTimeout),
	}
}

func (p *VNPayProvider) Name() string { return VNPayName }

func (p *VNPayProvider) CreatePayment(_ context.Context, order commands.PaymentOrder) (string, error) {
	if p.cfg.TmnCode == "" || p.cfg.HashSecret == "" {
		return "", errs.New("vnpay is not configured")
	}
	now := p.clock.Now().In(vnpZone)

	params := url.Values{}
	params.Set("vnp_Version", vnpVersion)
	params.Set("vnp_Command", "pay")
	params.Set("vnp_TmnCode", p.cfg.TmnCode)
	params.Set("vnp_Amount", strconv.FormatInt(order.Amount*100, 10))
	params.Set("vnp_CurrCode", "VND")
	params.Set("vnp_TxnRef", order.OrderID)
	params.Set("vnp_OrderInfo", order.Description)
	params.Set("vnp_OrderType", "other")
	params.Set("vnp_Locale", "vn")
	params.Set("vnp_ReturnUrl", p.returnURL)
	params.Set("vnp_IpAddr", vnpClientIP)
	params.Set("vnp_CreateDate", now.Format(vnpDateLayout))

	signed := canonicalQuery(params)
	return p.cfg.PayURL + "?" + signed + "&" + vnpSecureHash + "=" + sign(sha512.New, p.cfg.HashSecret, signed), nil
}

type vnpRefundRequest struct {
	RequestID       string `json:"vnp_RequestId"`
	Version         string `json:"vnp_Version"`
	Command         string `json:"vnp_Command"`
	TmnCode         string `json:"vnp_TmnCode"`
	TransactionType string `json:"vnp_TransactionType"`
	TxnRef          string `json:"vnp_TxnRef"`
	Amount          string `json:"vnp_Amount"`
	OrderInfo       string `json:"vnp_OrderInfo"`
	TransactionNo   string `json:"vnp_TransactionNo"`
	TransactionDate string `json:"vnp_TransactionDate"`
	CreateBy        string `json:"vnp_CreateBy"`
	CreateDate      string `json:"vnp_CreateDate"`
	IPAddr          string `json:"vnp_IpAddr"`
	SecureHash      string `json:"vnp_SecureHash"`
}

type vnpRefundResponse struct {
	ResponseCode string `json:"vnp_ResponseCode"`
	Message      string `json:"vnp_Message"`
}

// Refund calls the merchant web API. The transaction date comes from the order token.
func (p *VNPayProvider) Refund(ctx context.Context, order commands.RefundOrder) error {
	tok, err := hold.ParseOrderToken(order.OrderID)
	if err != nil {
		return errs.Wrap(err, "vnpay refund needs the original order token")
	}

	req := vnpRefundRequest{
		RequestID:       strings.ReplaceAll(uuid.NewString(), "-", ""),
		Version:         vnpVersion,
		Command:         "refund",
		TmnCode:         p.cfg.TmnCode,
		TransactionType: vnpFullRefund,
		TxnRef:          order.OrderID,
		Amount:          strconv.FormatInt(order.Amount*100, 10),
		OrderInfo:       "Refund " + order.HoldID.String(),
		TransactionNo:   order.PaymentID,
		TransactionDate: tok.IssuedAt().In(vnpZone).Format(vnpDateLayout),
		CreateBy:        "system",
		CreateDate:      p.clock.Now().In(vnpZone).Format(vnpDateLayout),
		IPAddr:          vnpClientIP,
	}
	data := strings.Join([]string{
		req.RequestID, req.Version, req.Command, req.TmnCode, req.TransactionType,
		req.TxnRef, req.Amount, req.TransactionNo, req.TransactionDate,
		req.CreateBy, req.CreateDate, req.IPAddr, req.OrderInfo,
	}, "|")
	req.SecureHash = sign(sha512.New, p.cfg.HashSecret, data)

	var resp vnpRefundResponse
	if err := postJSON(ctx, p.client, p.cfg.APIURL, req, &resp); err != nil {
		return err
	}
	if resp.ResponseCode != vnpSuccessCode {
		return errs.Mark(errs.Newf("vnpay refund: %s %s", resp.ResponseCode, resp.Message), ErrProviderRejected)
	}
	return nil
}

// VNPayParser verifies vnp_SecureHash before reading the result.
type VNPayParser struct {
	hashSecret string
}

func NewVNPayParser(cfg config.VNPayConfig) *VNPayParser {
	return &VNPayParser{hashSecret: cfg.HashSecret}
}

func (p *VNPayParser) Provider() string { return VNPayName }

func (p *VNPayParser) Parse(q url.Values) (commands.Callback, error) {
	got := q.Get(vnpSecureHash)
	if got == "" {
		return commands.Callback{}, errs.ErrInvalidSignature
	}
	signedParams := url.Values{}
	for k, v := range q {
		if strings.HasPrefix(k, "vnp_") && k != vnpSecureHash && k != vnpSecureHashTyp {
			signedParams[k] = v
		}
	}
	if !verify(sha512.New, p.hashSecret, canonicalQuery(signedParams), got) {
		return commands.Callback{}, errs.ErrInvalidSignature
	}

	cb := commands.Callback{
		Provider:    VNPayName,
		ExternalRef: q.Get("vnp_TxnRef"),
		PaymentID:   q.Get("vnp_TransactionNo"),
		Outcome:     vnpOutcome(q.Get("vnp_ResponseCode"), q.Get("vnp_TransactionStatus")),
	}
	if cb.Outcome == commands.OutcomeFailure {
		cb.Message = "vnpay response code " + q.Get("vnp_ResponseCode")
	}
	if tok, err := hold.ParseOrderToken(cb.ExternalRef); err == nil {
		id := tok.HoldID()
		cb.HoldID = &id
	}
	return cb, nil
}

func vnpOutcome(responseCode, transactionStatus string) commands.CallbackOutcome {
	switch {
	case responseCode == "":
		return commands.OutcomeUnknown
	case responseCode == vnpSuccessCode && (transactionStatus == "" || transactionStatus == vnpSuccessCode):
		return commands.OutcomeSuccess
	case responseCode == vnpSuccessCode:
		// paid page but the bank has not settled
		return commands.OutcomeUnknown
	default:
		return commands.OutcomeFailure
	}
}

// canonicalQuery is key-sorted, form-encoded key=value pairs joined by '&'.
func canonicalQuery(v url.Values) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v.Get(k)))
	}
	return b.String()
}
