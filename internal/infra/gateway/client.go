// Package gateway holds the external payment providers and their callback parsers.
package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"encoding/hex"
	"encoding/json"
	"hash"
	"io"
	"net/http"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"
)

var ErrProviderRejected = errs.New("payment provider rejected request")

const maxErrorBody = 4 << 10

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func postJSON(ctx context.Context, client *http.Client, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errs.Wrap(err, "marshal gateway request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return errs.Wrap(err, "build gateway request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return errs.Wrap(err, "gateway request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errs.Mark(errs.Newf("gateway returned %d: %s", resp.StatusCode, snippet), ErrProviderRejected)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.Wrap(err, "decode gateway response")
	}
	return nil
}

func sign(h func() hash.Hash, secret, data string) string {
	mac := hmac.New(h, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// verify compares a hex signature in constant time, ignoring case.
func verify(h func() hash.Hash, secret, data, got string) bool {
	want, err := hex.DecodeString(sign(h, secret, data))
	if err != nil {
		return false
	}
	decoded, err := hex.DecodeString(got)
	if err != nil {
		return false
	}
	return hmac.Equal(want, decoded)
}
