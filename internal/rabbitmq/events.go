package rabbitmq

import (
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/skillswap/internal/models"
)

// SessionEventsRoutingKey ключ маршрутизации событий жизненного цикла сессий.
const SessionEventsRoutingKey = "session.lifecycle"

// SessionEventsQueue очередь уведомлений о событиях сессий.
const SessionEventsQueue = "session_events_queue"

// GetNotificationQueues возвращает очереди сервиса уведомлений.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: SessionEventsQueue, RoutingKey: SessionEventsRoutingKey},
	}
}

// Publisher публикует события жизненного цикла сессий в брокер.
type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher создает новый экземпляр Publisher.
func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch}
}

// PublishSessionEvent публикует событие сессии в exchange сервиса.
func (p *Publisher) PublishSessionEvent(event models.SessionEvent) error {
	return PublishMessage(p.ch, ExchangeName, SessionEventsRoutingKey, event)
}
