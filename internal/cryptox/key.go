// Package cryptox implements the at-rest encryption of the local store:
// a daily-rotating key derived from the application secret and the client's
// user agent, and an AES-CBC envelope around JSON values.
package cryptox

import (
	"crypto/sha256"
	"io"
	"strconv"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/timex"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

const fallbackSecret = "statusboard-local-fallback-key"

const hkdfInfo = "statusboard local store v1"

// KeyDeriver derives the storage key for a point in time.
type KeyDeriver struct {
	Secret    string
	UserAgent string
	Now       timex.Clock
}

// DayBucket returns the number of whole UTC days since the Unix epoch.
func DayBucket(t time.Time) int64 {
	return t.UTC().Unix() / int64(24*time.Hour/time.Second)
}

// Key returns the key for the current day.
func (d KeyDeriver) Key() []byte {
	return d.KeyAt(d.Now.Or()())
}

// KeyAt hashes secret, user agent and the day bucket of t into a key.
// It never fails: without a secret, or if derivation breaks, the key of a
// hardcoded fallback string is returned and reads simply stop decrypting.
func (d KeyDeriver) KeyAt(t time.Time) []byte {
	if d.Secret == "" {
		return fallbackKey()
	}

	material := d.Secret + d.UserAgent + strconv.FormatInt(DayBucket(t), 10)

	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, []byte(material), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return fallbackKey()
	}
	return key
}

func fallbackKey() []byte {
	sum := sha256.Sum256([]byte(fallbackSecret))
	return sum[:]
}
