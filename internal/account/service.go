// Package account は公開鍵によるアカウント登録・検索・所持証明のドメインロジックを提供する。
//
// 3つのサービスはいずれもリクエスト単位で独立して動作し、プロセス内に共有可変状態を持たない。
// 同一公開鍵の同時登録はストアの一意制約のみで直列化する。
package account

import (
	"context"
	"time"

	"github.com/hitoshi/keybind/internal/metrics"
	"github.com/hitoshi/keybind/internal/model"
	"github.com/hitoshi/keybind/internal/signature"
)

// SignatureVerifier は署名検証のインターフェース。
// 不正な鍵・署名に対してもpanicせずfalseを返すこと。
type SignatureVerifier interface {
	Verify(publicKey, message, sig []byte) bool
}

// Notifier は登録完了の通知インターフェース。
// 呼び出し元をブロックしないこと。失敗は実装側で処理する。
type Notifier interface {
	NotifyRegistered(ctx context.Context, binding *model.Binding)
}

// nopNotifier は何もしないNotifier。
type nopNotifier struct{}

func (nopNotifier) NotifyRegistered(context.Context, *model.Binding) {}

// decode はワイヤ形式（base64）をデコードする。
// 失敗は呼び出し元にとって「所持を証明できなかった」のと同じなのでErrInvalidSignatureに畳み込む。
func decode(s string) ([]byte, error) {
	b, err := signature.DecodeBase64(s)
	if err != nil {
		return nil, model.ErrInvalidSignature
	}
	return b, nil
}

// observe は操作の結果とレイテンシを記録する。deferで呼び出す。
func observe(m metrics.MetricsCollector, op string, start time.Time, err *error) {
	m.RecordOperation(op, *err)
	m.RecordOperationLatency(op, time.Since(start))
}

func orNop(m metrics.MetricsCollector) metrics.MetricsCollector {
	if m == nil {
		return metrics.NopCollector{}
	}
	return m
}
