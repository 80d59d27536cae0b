package rabbitmq

// Exchange: обменник, через который идут все уведомления.
const Exchange = "notifications"

// Ключи маршрутизации и очереди уведомлений.
const (
	RoutingContact = "contact"
	RoutingBilling = "billing"

	QueueContact = "notification.contact"
	QueueBilling = "notification.billing"
)

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди воркера уведомлений.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueContact, RoutingKey: RoutingContact},
		{QueueName: QueueBilling, RoutingKey: RoutingBilling},
	}
}
