package events

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// OrderEvent 订单状态变化事件 (下游风控/报表消费)
type OrderEvent struct {
	EventType   string    `json:"event_type"` // order.created / order.status_changed
	AccountID   int64     `json:"account_id"`
	MeliOrderID int64     `json:"meli_order_id"`
	OldStatus   string    `json:"old_status,omitempty"`
	NewStatus   string    `json:"new_status"`
	TotalCents  int64     `json:"total_cents"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Producer 订单事件生产者
// brokers 为空时返回 nil，调用方直接跳过发布
type Producer struct {
	writer *kafka.Writer
}

// NewProducer 创建生产者，brokers 形如 "host1:9092,host2:9092"
func NewProducer(brokers, topic string) *Producer {
	if brokers == "" {
		return nil
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(strings.Split(brokers, ",")...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        true, // 事件旁路，不阻塞订单主流程
		},
	}
}

// PublishOrderEvent 发布订单事件，按 meli_order_id 分区保序
func (p *Producer) PublishOrderEvent(ctx context.Context, event *OrderEvent) {
	if p == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Events] 事件序列化失败: %v", err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(event.MeliOrderID, 10)),
		Value: payload,
	})
	if err != nil {
		log.Printf("[Events] 事件发布失败 order %d: %v", event.MeliOrderID, err)
	}
}

// Close 关闭底层 writer
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
