package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"

	"storefront_miniapp/platform/apperr"
)

// verifyInitData checks the signed credential blob the platform hands to
// embedded clients. The blob is a query string whose hash field must equal
// HMAC-SHA256 over the remaining fields (sorted, newline-joined) keyed with
// HMAC-SHA256("WebAppData", botToken).
func verifyInitData(botToken, initData string) error {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return apperr.Validation("malformed init data")
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return apperr.Validation("init data missing hash")
	}
	values.Del("hash")

	pairs := make([]string, 0, len(values))
	for key := range values {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)
	checkString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	wantHash := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(gotHash), []byte(wantHash)) {
		return apperr.Validation("init data signature mismatch")
	}
	return nil
}
