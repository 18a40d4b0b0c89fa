package mexc

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
)

// Sign computes the hex HMAC-SHA256 of the url-encoded query, skipping
// any signature param already present.
func Sign(secret string, params url.Values) string {
	q := url.Values{}
	for k, vs := range params {
		if k == "signature" {
			continue
		}
		for _, v := range vs {
			q.Add(k, v)
		}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(q.Encode()))
	return hex.EncodeToString(mac.Sum(nil))
}
