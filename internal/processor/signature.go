package processor

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader carries the processor's timestamped HMAC over the raw
// payload, formatted "t=<unix>,v1=<hex digest>".
const SignatureHeader = "X-Processor-Signature"

var (
	ErrMissingSignature   = errors.New("missing signature header")
	ErrMalformedSignature = errors.New("malformed signature header")
	ErrInvalidSignature   = errors.New("signature verification failed")
	ErrStaleTimestamp     = errors.New("signature timestamp outside tolerance")
)

// VerifySignature checks the header against HMAC-SHA256(secret, "<t>.<payload>").
// The timestamp must fall within tolerance of now to bound replay of captured
// deliveries; the idempotence ledger covers replays inside the window.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	if strings.TrimSpace(header) == "" {
		return ErrMissingSignature
	}

	var ts int64
	var sig string
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return ErrMalformedSignature
		}
		switch key {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return ErrMalformedSignature
			}
			ts = parsed
		case "v1":
			sig = value
		}
	}
	if ts == 0 || sig == "" {
		return ErrMalformedSignature
	}

	if tolerance > 0 {
		drift := now.Sub(time.Unix(ts, 0))
		if drift < 0 {
			drift = -drift
		}
		if drift > tolerance {
			return ErrStaleTimestamp
		}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign produces a header value for the given payload. Used by tests and the
// local processor simulator.
func Sign(payload []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return "t=" + ts + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}
