// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package onshape

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

const (
	nonceLength   = 25
	nonceAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// sign attaches the Date, On-Nonce, and Authorization headers for Onshape's
// API-key scheme (R2.1). The signed string must use the exact path and the
// encoded query that go on the wire.
func (c *Client) sign(req *http.Request, apiPath, rawQuery string) {
	date := time.Now().UTC().Format(http.TimeFormat)
	nonce := newNonce()
	req.Header.Set("Date", date)
	req.Header.Set("On-Nonce", nonce)
	req.Header.Set("Authorization",
		authorization(c.accessKey, c.secretKey, req.Method, apiPath, rawQuery, date, nonce, contentTypeJSON))
}

// authorization computes the Authorization header value. The signature is
// HMAC-SHA256 over the lowercased, newline-joined request fields, base64
// encoded and prefixed with the access key.
func authorization(accessKey, secretKey, method, apiPath, rawQuery, date, nonce, contentType string) string {
	payload := strings.ToLower(
		method + "\n" + nonce + "\n" + date + "\n" + contentType + "\n" + apiPath + "\n" + rawQuery + "\n")
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(payload))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return "On " + accessKey + ":HmacSHA256:" + signature
}

// newNonce returns a 25-character alphanumeric request nonce.
func newNonce() string {
	buf := make([]byte, nonceLength)
	rand.Read(buf)
	for i, b := range buf {
		buf[i] = nonceAlphabet[int(b)%len(nonceAlphabet)]
	}
	return string(buf)
}
