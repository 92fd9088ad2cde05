package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hitoshi/keybind/internal/signature"
)

// maxRequestBodyBytes はリクエストボディの上限。鍵・署名・メールアドレスには十分な大きさ。
const maxRequestBodyBytes = 64 << 10

// wireBytes は生のバイト列を受け取るJSONフィールド。
// 0〜255の数値配列と標準base64文字列のどちらも受け付ける。
type wireBytes []byte

// UnmarshalJSON はjson.Unmarshalerを実装する。
func (b *wireBytes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '[' {
		var values []int
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		out := make([]byte, len(values))
		for i, v := range values {
			if v < 0 || v > 255 {
				return fmt.Errorf("byte value out of range at index %d: %d", i, v)
			}
			out[i] = byte(v)
		}
		*b = out
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := signature.DecodeBase64(s)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

// decodeJSONBody はリクエストボディをdstにデコードする。
// 未知のフィールドは無視する。
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
