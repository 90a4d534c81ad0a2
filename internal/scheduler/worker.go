package scheduler

import (
	"context"
	"fmt"

	"storefront_miniapp/platform/config"
	"storefront_miniapp/platform/logger"
	"storefront_miniapp/platform/telegram"

	"github.com/hibiken/asynq"
)

// WorkerConfig combines the config interfaces the worker needs.
type WorkerConfig interface {
	config.SchedulerConfig
	config.TelegramConfig
}

// Worker consumes queued tasks and delivers admin order notifications.
type Worker struct {
	server      *asynq.Server
	mux         *asynq.ServeMux
	bot         *telegram.Client
	adminChatID int64
	log         *logger.Logger
}

func NewWorker(cfg WorkerConfig, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	var bot *telegram.Client
	if cfg.IsTelegramEnabled() {
		bot = telegram.NewClient(telegram.Config{BotToken: cfg.GetTelegramBotToken()})
	}

	mux := asynq.NewServeMux()
	w := &Worker{
		server:      server,
		mux:         mux,
		bot:         bot,
		adminChatID: cfg.GetTelegramAdminChatID(),
		log:         log,
	}

	mux.HandleFunc(TaskOrderNotification, w.handleOrderNotification)

	return w, nil
}

func (w *Worker) handleOrderNotification(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseOrderNotificationPayload(task)
	if err != nil {
		return err
	}

	if w.bot == nil || w.adminChatID == 0 {
		w.log.Warn("order notification skipped, bot not configured", "orderId", payload.OrderID)
		return nil
	}

	text := fmt.Sprintf(
		"New order %s\nProduct: %s\nPrice: %.2f\nUser: %s",
		payload.OrderID, payload.ProductName, float64(payload.PriceCents)/100, payload.UserID,
	)

	if err := w.bot.SendMessage(ctx, w.adminChatID, text); err != nil {
		w.log.Error("failed to deliver order notification", "orderId", payload.OrderID, "error", err)
		return err
	}

	w.log.Info("order notification delivered", "orderId", payload.OrderID)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
