package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

// separator 分隔被签名的值和签名
const separator = "."

// Signer 使用HMAC-SHA256对短字符串（例如访客ID）签名
type Signer struct {
	secretKey []byte
}

// NewSigner 使用给定的密钥创建签名器。密钥为空时生成一个32字节的随机密钥，
// 此时进程重启后之前签发的值全部失效。
func NewSigner(secret string) (*Signer, bool, error) {
	if secret != "" {
		return &Signer{secretKey: []byte(secret)}, false, nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, false, errors.New("无法生成安全的密钥: " + err.Error())
	}
	return &Signer{secretKey: key}, true, nil
}

func (s *Signer) signature(value string) []byte {
	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write([]byte(value))
	return mac.Sum(nil)
}

// Sign 返回 "<value>.<base64签名>"
func (s *Signer) Sign(value string) string {
	return value + separator + base64.RawURLEncoding.EncodeToString(s.signature(value))
}

// Verify 校验 Sign 的输出并返回原始值
func (s *Signer) Verify(signed string) (string, bool) {
	idx := strings.LastIndex(signed, separator)
	if idx <= 0 || idx == len(signed)-1 {
		return "", false
	}
	value, sigB64 := signed[:idx], signed[idx+1:]

	actual, err := base64.RawURLEncoding.DecodeString(sigB64)
	if err != nil {
		return "", false
	}
	// 使用 hmac.Equal 进行时间恒定的比较，防止时序攻击
	if !hmac.Equal(s.signature(value), actual) {
		return "", false
	}
	return value, true
}
