package worker

import (
	"context"
	"errors"

	"github.com/shopora/internal/config"
	"github.com/shopora/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 将 asynq 服务器适配为可托管服务
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewService 创建队列消费服务，队列未启用时返回错误
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}

	opt, serverCfg := queue.BuildServerConfig(cfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	return &Service{
		server: asynq.NewServer(opt, serverCfg),
		mux:    mux,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	return "worker"
}

// Start 启动消费循环，阻塞直到 Shutdown
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	return s.server.Run(s.mux)
}

// Stop 停止消费，等待进行中的任务完成
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	return nil
}
