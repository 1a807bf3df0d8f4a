package main

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"printexpress/internal/pkg/bootstrap"
	"printexpress/internal/pkg/logger"
	"printexpress/internal/pkg/mq"
	"printexpress/internal/pkg/redis"
	"printexpress/internal/push"
	"printexpress/internal/service/order/infrastructure/adapter"
)

const (
	serviceName = "push-gateway"
	servicePort = 8088
)

func main() {
	logger.Init(serviceName)
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	redisClient, err := redis.NewClient(cfg.Infra.Redis.Addrs)
	if err != nil {
		zlog.Fatal().Err(err).Msg("redis connection failed")
	}

	nodeID := serviceName + "-" + uuid.New().String()[:8]
	sessions := push.NewSessionManager(redisClient)
	hub := push.NewHub()
	reader := mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, adapter.OrderNotificationTopic, serviceName)
	consumer := push.NewConsumer(reader, hub)

	runCtx, cancel := context.WithCancel(context.Background())
	g, runCtx := errgroup.WithContext(runCtx)
	g.Go(func() error { return hub.Run(runCtx) })
	g.Go(func() error { return consumer.Run(runCtx) })

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
				hub.ServeWs(sessions, nodeID, w, r)
			})
		},
		OnShutdown: []func(ctx context.Context){
			func(ctx context.Context) {
				cancel()
				if err := reader.Close(); err != nil {
					zlog.Error().Err(err).Msg("kafka reader close failed")
				}
				if err := g.Wait(); err != nil && err != context.Canceled {
					zlog.Error().Err(err).Msg("push loops exited with error")
				}
			},
			func(ctx context.Context) {
				if err := redisClient.Close(); err != nil {
					zlog.Error().Err(err).Msg("redis close failed")
				}
			},
		},
	})
}
