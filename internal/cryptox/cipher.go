package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/common"
	"github.com/dmitrijs2005/statusboard/internal/timex"
)

var errBadPadding = errors.New("bad padding")

// Cipher wraps JSON values into encrypted envelopes and back.
type Cipher struct {
	Keys      KeyDeriver
	Now       timex.Clock
	Retention time.Duration
}

// NewCipher returns a Cipher over keys with the default seven-day retention.
// The cipher shares the deriver's clock.
func NewCipher(keys KeyDeriver) *Cipher {
	return &Cipher{Keys: keys, Now: keys.Now, Retention: DefaultRetention}
}

func (c *Cipher) now() time.Time {
	return c.Now.Or()()
}

func (c *Cipher) retention() time.Duration {
	if c.Retention <= 0 {
		return DefaultRetention
	}
	return c.Retention
}

// Encrypt serializes v to JSON, encrypts it with AES-256-CBC under the
// current key and a fresh random IV, and returns the JSON envelope text.
func (c *Cipher) Encrypt(v any) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("serialize value: %w", err)
	}

	iv := common.GenerateRandByteArray(aes.BlockSize)

	now := c.now()
	key := c.Keys.KeyAt(now)
	defer common.WipeByteArray(key)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("new cipher: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	defer common.WipeByteArray(padded)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	env := Envelope{
		Data:      base64.StdEncoding.EncodeToString(ciphertext),
		IV:        hex.EncodeToString(iv),
		Timestamp: timex.EpochMillis(now),
	}
	out, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("serialize envelope: %w", err)
	}
	return string(out), nil
}

// Decrypt opens raw into v. It reports false, and leaves v untouched, when
// the envelope is malformed, expired, not decryptable with today's key, or
// holds empty or non-JSON plaintext.
//
// Values already in v are kept where the plaintext has no field for them.
func (c *Cipher) Decrypt(raw string, v any) bool {
	plaintext, ok := c.DecryptRaw(raw)
	if !ok {
		return false
	}
	dst := reflect.ValueOf(v)
	if dst.Kind() != reflect.Pointer || dst.IsNil() {
		return false
	}
	// A type error half way through would leave v partly filled.
	scratch := reflect.New(dst.Elem().Type()).Interface()
	if json.Unmarshal(plaintext, scratch) != nil {
		return false
	}
	return json.Unmarshal(plaintext, v) == nil
}

// DecryptRaw opens raw and returns the plaintext JSON.
func (c *Cipher) DecryptRaw(raw string) (json.RawMessage, bool) {
	env, ok := ParseEnvelope(raw)
	if !ok {
		return nil, false
	}

	now := c.now()
	if env.Expired(now, c.retention()) {
		return nil, false
	}

	iv, err := hex.DecodeString(env.IV)
	if err != nil || len(iv) != aes.BlockSize {
		return nil, false
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, false
	}

	key := c.Keys.KeyAt(now)
	defer common.WipeByteArray(key)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, false
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil || len(bytes.TrimSpace(plaintext)) == 0 {
		return nil, false
	}
	if !json.Valid(plaintext) {
		return nil, false
	}
	return json.RawMessage(plaintext), true
}

func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(append(make([]byte, 0, len(b)+n), b...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, errBadPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, errBadPadding
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, errBadPadding
		}
	}
	return b[:len(b)-n], nil
}
