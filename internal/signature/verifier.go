// Package signature は公開鍵署名の検証とワイヤ形式のデコードを提供する。
package signature

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
)

// ErrMalformedEncoding はbase64としてデコードできない入力を示す。
var ErrMalformedEncoding = errors.New("malformed base64 encoding")

// Ed25519Verifier はEd25519署名を検証する。状態を持たないため並行利用できる。
type Ed25519Verifier struct{}

// NewEd25519Verifier はEd25519Verifierを生成する。
func NewEd25519Verifier() Ed25519Verifier {
	return Ed25519Verifier{}
}

// Verify はVerify関数に委譲する。
func (Ed25519Verifier) Verify(publicKey, message, sig []byte) bool {
	return Verify(publicKey, message, sig)
}

// Verify はmessageに対するsigがpublicKeyで検証できるかを返す。
// 鍵長・署名長が不正な場合もpanicせずfalseを返す。
// messageは受け取ったバイト列そのものを検証対象とし、正規化は行わない。
func Verify(publicKey, message, sig []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, sig)
}

// DecodeBase64 はパディング付きの標準base64をデコードする。
// パディングなしの入力も受け付ける。
func DecodeBase64(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	b, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrMalformedEncoding
	}
	return b, nil
}
