package queue

import (
	"net"
	"strconv"
	"strings"

	"github.com/shopora/internal/config"
	"github.com/shopora/internal/constants"

	"github.com/hibiken/asynq"
)

// DefaultQueue 默认队列名称
const DefaultQueue = constants.QueueDefault

// Client 队列生产端封装，未启用时所有 Enqueue 退化为 no-op
type Client struct {
	client       *asynq.Client
	enabled      bool
	defaultQueue string
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue}, nil
	}
	return &Client{
		client:       asynq.NewClient(buildRedisOpt(cfg)),
		enabled:      true,
		defaultQueue: DefaultQueue,
	}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) enqueue(task *asynq.Task, buildErr error, opts []asynq.Option) error {
	if buildErr != nil {
		return buildErr
	}
	options := append([]asynq.Option{asynq.Queue(c.defaultQueue)}, opts...)
	_, err := c.client.Enqueue(task, options...)
	return err
}

// EnqueueOrderConfirmEmail 推送下单确认邮件任务
func (c *Client) EnqueueOrderConfirmEmail(payload OrderConfirmEmailPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderConfirmEmailTask(payload)
	return c.enqueue(task, err, opts)
}

// EnqueueOrderStatusEmail 推送订单状态邮件任务
func (c *Client) EnqueueOrderStatusEmail(payload OrderStatusEmailPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderStatusEmailTask(payload)
	return c.enqueue(task, err, opts)
}

// EnqueueRefundStatusEmail 推送退款状态邮件任务
func (c *Client) EnqueueRefundStatusEmail(payload RefundStatusEmailPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewRefundStatusEmailTask(payload)
	return c.enqueue(task, err, opts)
}

// EnqueueProductDiscountEmails 推送商品降价通知任务
func (c *Client) EnqueueProductDiscountEmails(payload ProductDiscountEmailsPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewProductDiscountEmailsTask(payload)
	return c.enqueue(task, err, opts)
}

// BuildServerConfig 生成队列消费端配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{DefaultQueue: 1}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return buildRedisOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if h := strings.TrimSpace(cfg.Host); h != "" {
			host = h
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		Password: password,
		DB:       db,
	}
}
