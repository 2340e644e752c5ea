package push

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stockroom/internal/logger"
	"github.com/stockroom/internal/model"
	"github.com/stockroom/internal/repository"
)

const sendTimeout = 10 * time.Second

// Notifier шлёт Web Push «позиция закончилась» на все сохранённые подписки.
// Без VAPID-ключей работает как no-op: подписки сохраняются, отправки нет.
type Notifier struct {
	repo  *repository.PushRepository
	vapid *webpush.Options
}

func NewNotifier(repo *repository.PushRepository, keys *VAPIDKeys) *Notifier {
	n := &Notifier{repo: repo}
	if keys != nil && keys.PublicKey != "" && keys.PrivateKey != "" {
		n.vapid = &webpush.Options{
			Subscriber:      "stockroom",
			VAPIDPublicKey:  keys.PublicKey,
			VAPIDPrivateKey: keys.PrivateKey,
			TTL:             30,
		}
	}
	return n
}

// Enabled — настроена ли отправка (есть ключи).
func (n *Notifier) Enabled() bool {
	return n != nil && n.vapid != nil
}

// ItemOutOfStock уведомляет подписчиков, что qty позиции упал до нуля.
// Вызывается после успешной записи в БД, в отдельной горутине — ответ
// клиенту не ждёт рассылку.
func (n *Notifier) ItemOutOfStock(ctx context.Context, item model.Item) {
	if !n.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	subs, err := n.repo.List(ctx)
	if err != nil {
		logger.Errorf("push: list subscriptions: %v", err)
		return
	}
	payload, _ := json.Marshal(map[string]any{
		"title": "Stockroom",
		"body":  "Закончилась позиция: " + item.Name,
		"data":  map[string]string{"item_id": item.ID},
	})
	for i := range subs {
		sub := &subs[i]
		wpSub := &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys:     webpush.Keys{P256dh: sub.Keys.P256dh, Auth: sub.Keys.Auth},
		}
		resp, err := webpush.SendNotificationWithContext(ctx, payload, wpSub, n.vapid)
		if err != nil {
			logger.Errorf("push send: %v", err)
			continue
		}
		resp.Body.Close()
		// 404/410 — подписка умерла в браузере, чистим её
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			if err := n.repo.Delete(ctx, sub.Endpoint); err != nil {
				logger.Errorf("push: delete dead subscription: %v", err)
			}
		}
	}
}
