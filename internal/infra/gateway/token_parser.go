package gateway

import (
	"net/url"
	"strings"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/hold"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/commands"
)

// TokenParser reads the generic redirect shape: success or resultCode, orderId,
// paymentId (or transId) and message. The hold id comes from the order token.
// It checks no signature; MoMoParser runs it over fields it has already verified.
type TokenParser struct {
	provider string
}

func NewTokenParser(provider string) *TokenParser {
	return &TokenParser{provider: strings.ToLower(provider)}
}

func (p *TokenParser) Provider() string { return p.provider }

func (p *TokenParser) Parse(q url.Values) (commands.Callback, error) {
	cb := commands.Callback{
		Provider:    p.provider,
		ExternalRef: q.Get("orderId"),
		PaymentID:   firstOf(q, "paymentId", "transId"),
		Message:     q.Get("message"),
		Outcome:     outcomeOf(q),
	}
	if tok, err := hold.ParseOrderToken(cb.ExternalRef); err == nil {
		id := tok.HoldID()
		cb.HoldID = &id
	}
	return cb, nil
}

// outcomeOf treats success and resultCode as two spellings of one signal. Missing or
// contradictory signals are unknown, never success.
func outcomeOf(q url.Values) commands.CallbackOutcome {
	var votes []commands.CallbackOutcome
	if q.Has("success") {
		switch strings.ToLower(strings.TrimSpace(q.Get("success"))) {
		case "true":
			votes = append(votes, commands.OutcomeSuccess)
		case "false":
			votes = append(votes, commands.OutcomeFailure)
		default:
			votes = append(votes, commands.OutcomeUnknown)
		}
	}
	if q.Has("resultCode") {
		switch code := strings.TrimSpace(q.Get("resultCode")); {
		case code == "0":
			votes = append(votes, commands.OutcomeSuccess)
		case code == "":
			votes = append(votes, commands.OutcomeUnknown)
		default:
			votes = append(votes, commands.OutcomeFailure)
		}
	}

	if len(votes) == 0 {
		return commands.OutcomeUnknown
	}
	for _, v := range votes[1:] {
		if v != votes[0] {
			return commands.OutcomeUnknown
		}
	}
	return votes[0]
}

func firstOf(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := q.Get(k); v != "" {
			return v
		}
	}
	return ""
}
