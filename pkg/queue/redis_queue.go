package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisQueue Redis队列实现
// 路由成功的Webhook事件经此队列交给下游消息处理管道
type RedisQueue struct {
	client *redis.Client
	prefix string
}

// EventMessage 队列中的事件消息
type EventMessage struct {
	DeliveryID uint                   `json:"delivery_id"`
	TenantID   uint                   `json:"tenant_id"`
	AccountID  uint                   `json:"account_id"`
	Token      string                 `json:"token"`   // 路由使用的令牌
	Payload    map[string]interface{} `json:"payload"` // 原始事件负载
	Created    int64                  `json:"created"`
	Source     string                 `json:"source"` // 事件来源
}

// Config Redis配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// NewRedisQueue 创建Redis队列实例
func NewRedisQueue(config *Config) *RedisQueue {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	prefix := config.Prefix
	if prefix == "" {
		prefix = "msghub:events"
	}

	return &RedisQueue{
		client: client,
		prefix: prefix,
	}
}

// Close 关闭Redis连接
func (q *RedisQueue) Close() error {
	return q.client.Close()
}

// Ping 测试Redis连接
func (q *RedisQueue) Ping() error {
	ctx := context.Background()
	return q.client.Ping(ctx).Err()
}

// EnqueueEvent 将路由成功的事件加入队列（左侧入队）
func (q *RedisQueue) EnqueueEvent(message *EventMessage) error {
	ctx := context.Background()

	if message.Created == 0 {
		message.Created = time.Now().Unix()
	}

	// 序列化消息
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("序列化事件消息失败: %v", err)
	}

	if err := q.client.LPush(ctx, q.getQueueKey(), data).Err(); err != nil {
		return fmt.Errorf("事件入队失败: %v", err)
	}

	return nil
}

// QueueLength 获取队列长度
func (q *RedisQueue) QueueLength() (int64, error) {
	ctx := context.Background()
	length, err := q.client.LLen(ctx, q.getQueueKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("获取队列长度失败: %v", err)
	}
	return length, nil
}

// 辅助方法

// getQueueKey 获取队列键名
func (q *RedisQueue) getQueueKey() string {
	return fmt.Sprintf("%s:inbound", q.prefix)
}

// GetClient 获取Redis客户端（用于高级操作）
func (q *RedisQueue) GetClient() *redis.Client {
	return q.client
}

// PublishMessage 发布消息到指定频道
func (q *RedisQueue) PublishMessage(channel string, message interface{}) error {
	ctx := context.Background()

	// 序列化消息
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %v", err)
	}

	// 发布消息
	channelKey := fmt.Sprintf("%s:channel:%s", q.prefix, channel)
	if err := q.client.Publish(ctx, channelKey, data).Err(); err != nil {
		return fmt.Errorf("发布消息失败: %v", err)
	}

	return nil
}

// SubscribeChannel 订阅指定频道
func (q *RedisQueue) SubscribeChannel(channel string) *redis.PubSub {
	ctx := context.Background()
	channelKey := fmt.Sprintf("%s:channel:%s", q.prefix, channel)
	return q.client.Subscribe(ctx, channelKey)
}
