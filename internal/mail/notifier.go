package mail

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/keybind/internal/model"
)

// defaultNotifyTimeout は登録通知1通あたりの送信タイムアウト。
const defaultNotifyTimeout = 10 * time.Second

// RegistrationNotifier はアカウント登録の通知メールをバックグラウンドで送信する。
// 送信失敗はログに記録するのみで、登録結果には影響しない。
type RegistrationNotifier struct {
	sender  Sender
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewRegistrationNotifier はRegistrationNotifierを生成する。
func NewRegistrationNotifier(sender Sender, logger *slog.Logger) *RegistrationNotifier {
	return &RegistrationNotifier{
		sender:  sender,
		logger:  logger,
		timeout: defaultNotifyTimeout,
	}
}

// NotifyRegistered は登録通知の送信を開始してすぐに返る。
// リクエストのキャンセルは引き継がない。
func (n *RegistrationNotifier) NotifyRegistered(ctx context.Context, binding *model.Binding) {
	msg := Message{
		To:      binding.Email,
		Subject: "Your keybind account has been registered",
		Body: fmt.Sprintf(
			"A public key was registered for this address.\n\nAccount ID: %s\n",
			binding.AccountID,
		),
	}
	accountID := binding.AccountID.String()

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
		defer cancel()

		if err := n.sender.Send(sendCtx, msg); err != nil {
			n.logger.Warn("registration notice failed",
				slog.String("account_id", accountID),
				slog.String("error", err.Error()),
			)
			return
		}
		n.logger.Debug("registration notice sent", slog.String("account_id", accountID))
	}()
}

// Wait は送信中の通知がすべて終わるまで待つ。シャットダウン時に呼び出す。
func (n *RegistrationNotifier) Wait() {
	n.wg.Wait()
}
