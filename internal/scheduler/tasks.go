package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskOrderNotification = "shop.order.notify"

// OrderNotificationPayload carries the order snapshot the admin notification
// is rendered from. It is self-contained so the worker never has to read the
// database.
type OrderNotificationPayload struct {
	OrderID     string `json:"orderId"`
	UserID      string `json:"userId"`
	ProductName string `json:"productName"`
	PriceCents  int64  `json:"priceCents"`
}

func NewOrderNotificationTask(payload OrderNotificationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderNotification, data), nil
}

func ParseOrderNotificationPayload(task *asynq.Task) (OrderNotificationPayload, error) {
	var payload OrderNotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return OrderNotificationPayload{}, err
	}
	return payload, nil
}
