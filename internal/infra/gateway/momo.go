package gateway

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/config"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/commands"

	"github.com/google/uuid"
)

const (
	MoMoName        = "momo"
	momoRequestType = "captureWallet"
	momoLang        = "vi"
)

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

type momoRefundRequest struct {
	PartnerCode string `json:"partnerCode"`
	OrderID     string `json:"orderId"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	TransID     int64  `json:"transId"`
	Lang        string `json:"lang"`
	Description string `json:"description"`
	Signature   string `json:"signature"`
}

type momoResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
}

// MoMoProvider opens MoMo wallet payments over the v2 JSON API.
type MoMoProvider struct {
	cfg       config.MoMoConfig
	returnURL string
	client    *http.Client
}

func NewMoMoProvider(cfg config.MoMoConfig, gw config.GatewayConfig) *MoMoProvider {
	return &MoMoProvider{
		cfg:       cfg,
		returnURL: gw.ReturnURL + "/" + MoMoName,
		client:    newHTTPClient(gw.HTTPTimeout),
	}
}

func (p *MoMoProvider) Name() string { return MoMoName }

func (p *MoMoProvider) CreatePayment(ctx context.Context, order commands.PaymentOrder) (string, error) {
	req := momoCreateRequest{
		PartnerCode: p.cfg.PartnerCode,
		RequestID:   uuid.NewString(),
		Amount:      order.Amount,
		OrderID:     order.OrderID,
		OrderInfo:   order.Description,
		RedirectURL: p.returnURL,
		IpnURL:      p.returnURL,
		RequestType: momoRequestType,
		Lang:        momoLang,
	}
	raw := fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=%s&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		p.cfg.AccessKey, req.Amount, req.ExtraData, req.IpnURL, req.OrderID,
		req.OrderInfo, req.PartnerCode, req.RedirectURL, req.RequestID, req.RequestType,
	)
	req.Signature = sign(sha256.New, p.cfg.SecretKey, raw)

	var resp momoResponse
	if err := postJSON(ctx, p.client, p.cfg.Endpoint, req, &resp); err != nil {
		return "", err
	}
	if resp.ResultCode != 0 || resp.PayURL == "" {
		return "", errs.Mark(errs.Newf("momo create payment: %d %s", resp.ResultCode, resp.Message), ErrProviderRejected)
	}
	return resp.PayURL, nil
}

// Refund reverses the MoMo transaction recorded as the payment id.
func (p *MoMoProvider) Refund(ctx context.Context, order commands.RefundOrder) error {
	transID, err := strconv.ParseInt(order.PaymentID, 10, 64)
	if err != nil {
		return errs.Wrapf(err, "momo refund needs a numeric transId, got %q", order.PaymentID)
	}

	req := momoRefundRequest{
		PartnerCode: p.cfg.PartnerCode,
		OrderID:     "RF_" + order.OrderID,
		RequestID:   uuid.NewString(),
		Amount:      order.Amount,
		TransID:     transID,
		Lang:        momoLang,
		Description: "Refund " + order.HoldID.String(),
	}
	raw := fmt.Sprintf(
		"accessKey=%s&amount=%d&description=%s&orderId=%s&partnerCode=%s&requestId=%s&transId=%d",
		p.cfg.AccessKey, req.Amount, req.Description, req.OrderID, req.PartnerCode, req.RequestID, req.TransID,
	)
	req.Signature = sign(sha256.New, p.cfg.SecretKey, raw)

	var resp momoResponse
	if err := postJSON(ctx, p.client, p.cfg.RefundURL, req, &resp); err != nil {
		return err
	}
	if resp.ResultCode != 0 {
		return errs.Mark(errs.Newf("momo refund: %d %s", resp.ResultCode, resp.Message), ErrProviderRejected)
	}
	return nil
}

// momoSignedFields are the callback fields MoMo signs, in signing order, after accessKey.
// The browser redirect and the IPN carry the same set.
var momoSignedFields = []string{
	"amount", "extraData", "message", "orderId", "orderInfo", "orderType",
	"partnerCode", "payType", "requestId", "responseTime", "resultCode", "transId",
}

// result codes for a payment MoMo has not settled yet
var momoPendingCodes = map[string]bool{"1000": true, "7000": true, "7002": true, "9000": true}

// MoMoParser verifies the HMAC-SHA256 signature and reads only signed fields.
type MoMoParser struct {
	accessKey string
	secretKey string
	fields    *TokenParser
}

func NewMoMoParser(cfg config.MoMoConfig) *MoMoParser {
	return &MoMoParser{
		accessKey: cfg.AccessKey,
		secretKey: cfg.SecretKey,
		fields:    NewTokenParser(MoMoName),
	}
}

func (p *MoMoParser) Provider() string { return MoMoName }

func (p *MoMoParser) Parse(q url.Values) (commands.Callback, error) {
	got := q.Get("signature")
	if got == "" || !verify(sha256.New, p.secretKey, p.signedPayload(q), got) {
		return commands.Callback{}, errs.ErrInvalidSignature
	}

	signed := url.Values{}
	for _, k := range momoSignedFields {
		if q.Has(k) {
			signed.Set(k, q.Get(k))
		}
	}
	cb, err := p.fields.Parse(signed)
	if err != nil {
		return commands.Callback{}, err
	}
	if momoPendingCodes[signed.Get("resultCode")] {
		cb.Outcome = commands.OutcomeUnknown
	}
	return cb, nil
}

func (p *MoMoParser) signedPayload(q url.Values) string {
	var b strings.Builder
	b.WriteString("accessKey=")
	b.WriteString(p.accessKey)
	for _, k := range momoSignedFields {
		b.WriteByte('&')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(q.Get(k))
	}
	return b.String()
}
