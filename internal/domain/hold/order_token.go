package hold

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidOrderToken = errors.New("invalid order token")

// OrderToken correlates a gateway order with a hold: <PROVIDER>_<holdId>_<unixMillis>.
type OrderToken struct {
	provider string
	holdID   uuid.UUID
	issuedAt time.Time
}

func NewOrderToken(provider string, holdID uuid.UUID, at time.Time) OrderToken {
	return OrderToken{provider: strings.ToUpper(provider), holdID: holdID, issuedAt: at.Truncate(time.Millisecond)}
}

// ParseOrderToken splits on the first and last underscore; the hold id itself never contains one.
func ParseOrderToken(s string) (OrderToken, error) {
	first := strings.IndexByte(s, '_')
	last := strings.LastIndexByte(s, '_')
	if first <= 0 || last <= first+1 || last == len(s)-1 {
		return OrderToken{}, ErrInvalidOrderToken
	}

	holdID, err := uuid.Parse(s[first+1 : last])
	if err != nil {
		return OrderToken{}, ErrInvalidOrderToken
	}
	millis, err := strconv.ParseInt(s[last+1:], 10, 64)
	if err != nil || millis < 0 {
		return OrderToken{}, ErrInvalidOrderToken
	}
	return OrderToken{provider: s[:first], holdID: holdID, issuedAt: time.UnixMilli(millis).UTC()}, nil
}

func (t OrderToken) Provider() string    { return t.provider }
func (t OrderToken) HoldID() uuid.UUID   { return t.holdID }
func (t OrderToken) IssuedAt() time.Time { return t.issuedAt }

func (t OrderToken) String() string {
	return t.provider + "_" + t.holdID.String() + "_" + strconv.FormatInt(t.issuedAt.UnixMilli(), 10)
}
