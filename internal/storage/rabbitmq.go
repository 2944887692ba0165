package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
)

// MessageQueue 消息队列接口
type MessageQueue interface {
	// PublishJSON 发布JSON格式消息
	PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error

	// Consume 启动消费者，handler返回错误时消息重新入队
	Consume(ctx context.Context, queueName string, workers int, handler func(ctx context.Context, body []byte) error) error

	// Close 关闭连接
	Close() error
}

// 确保RabbitMQ实现了MessageQueue接口
var _ MessageQueue = (*RabbitMQ)(nil)

// RabbitMQ 消息队列，承载简历上传事件到解析worker的投递
type RabbitMQ struct {
	conn         *amqp.Connection
	publishCh    *amqp.Channel
	publishMutex sync.Mutex
	cfg          *config.RabbitMQConfig
}

// NewRabbitMQ 建立连接并声明交换机、队列和绑定
func NewRabbitMQ(cfg *config.RabbitMQConfig) (*RabbitMQ, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("RabbitMQ URL配置不能为空")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("无法连接到RabbitMQ服务器 (%s): %w", cfg.URL, err)
	}

	publishCh, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建RabbitMQ发布通道失败: %w", err)
	}

	mq := &RabbitMQ{
		conn:      conn,
		publishCh: publishCh,
		cfg:       cfg,
	}

	if err := mq.declareTopology(); err != nil {
		mq.Close()
		return nil, err
	}

	logger.Info().Str("url", cfg.URL).Msg("RabbitMQ连接建立完成")
	return mq, nil
}

// declareTopology 声明简历事件交换机、待解析队列及绑定
func (r *RabbitMQ) declareTopology() error {
	if err := r.publishCh.ExchangeDeclare(
		r.cfg.ResumeEventsExchange, "topic", true, false, false, false, nil,
	); err != nil {
		return fmt.Errorf("声明交换机 %s 失败: %w", r.cfg.ResumeEventsExchange, err)
	}

	if _, err := r.publishCh.QueueDeclare(
		r.cfg.RawResumeQueue, true, false, false, false, nil,
	); err != nil {
		return fmt.Errorf("声明队列 %s 失败: %w", r.cfg.RawResumeQueue, err)
	}

	if err := r.publishCh.QueueBind(
		r.cfg.RawResumeQueue, r.cfg.UploadedRoutingKey, r.cfg.ResumeEventsExchange, false, nil,
	); err != nil {
		return fmt.Errorf("绑定队列 %s 失败: %w", r.cfg.RawResumeQueue, err)
	}
	return nil
}

// PublishJSON 发布JSON格式消息
func (r *RabbitMQ) PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	deliveryMode := amqp.Transient
	if persistent {
		deliveryMode = amqp.Persistent
	}

	r.publishMutex.Lock()
	defer r.publishMutex.Unlock()

	err = r.publishCh.PublishWithContext(ctx, exchangeName, routingKey, false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: deliveryMode,
			MessageId:    uuid.NewString(),
		})
	if err != nil {
		return fmt.Errorf("发布消息到 %s/%s 失败: %w", exchangeName, routingKey, err)
	}
	return nil
}

// Consume 启动workers个协程消费指定队列
// handler返回错误时nack并重新入队，上下文取消后退出
func (r *RabbitMQ) Consume(ctx context.Context, queueName string, workers int, handler func(ctx context.Context, body []byte) error) error {
	if workers < 1 {
		workers = 1
	}

	ch, err := r.conn.Channel()
	if err != nil {
		return fmt.Errorf("创建消费通道失败: %w", err)
	}

	prefetch := r.cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = workers
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("设置预取数量失败: %w", err)
	}

	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("订阅队列 %s 失败: %w", queueName, err)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case delivery, ok := <-deliveries:
					if !ok {
						return
					}
					if err := handler(ctx, delivery.Body); err != nil {
						logger.Warn().Err(err).
							Str("queue", queueName).
							Int("worker", workerID).
							Msg("消息处理失败，重新入队")
						_ = delivery.Nack(false, true)
						continue
					}
					_ = delivery.Ack(false)
				}
			}
		}(w)
	}

	wg.Wait()
	return ch.Close()
}

// Close 关闭连接和通道
func (r *RabbitMQ) Close() error {
	if r.publishCh != nil {
		_ = r.publishCh.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
