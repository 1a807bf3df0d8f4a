package main

import (
	"context"
	"time"

	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"printexpress/internal/pkg/bootstrap"
	"printexpress/internal/pkg/logger"
	"printexpress/internal/pkg/mq"
	"printexpress/internal/pkg/redis"
	billingapp "printexpress/internal/service/billing/application"
	billinginfra "printexpress/internal/service/billing/infrastructure"
	billinghttp "printexpress/internal/service/billing/interfaces"
	cataloginfra "printexpress/internal/service/catalog/infrastructure"
	cataloghttp "printexpress/internal/service/catalog/interfaces"
	orderapp "printexpress/internal/service/order/application"
	orderinfra "printexpress/internal/service/order/infrastructure"
	"printexpress/internal/service/order/infrastructure/adapter"
	orderhttp "printexpress/internal/service/order/interfaces"
	posapp "printexpress/internal/service/pos/application"
	posinfra "printexpress/internal/service/pos/infrastructure"
	poshttp "printexpress/internal/service/pos/interfaces"
	pricinginfra "printexpress/internal/service/pricing/infrastructure"
	pricinghttp "printexpress/internal/service/pricing/interfaces"
	promotionapp "printexpress/internal/service/promotion/application"
	promotioninfra "printexpress/internal/service/promotion/infrastructure"
	"printexpress/internal/service/promotion/infrastructure/rule"
	promotionhttp "printexpress/internal/service/promotion/interfaces"
	walletapp "printexpress/internal/service/wallet/application"
	walletinfra "printexpress/internal/service/wallet/infrastructure"
	wallethttp "printexpress/internal/service/wallet/interfaces"
	"printexpress/internal/zookeeper"
)

const (
	serviceName = "printshop-service"
	servicePort = 8080
)

func main() {
	logger.Init(serviceName)
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	db, err := gorm.Open(gormmysql.Open(cfg.MySQLDSN()), &gorm.Config{})
	if err != nil {
		zlog.Fatal().Err(err).Msg("mysql connection failed")
	}
	if err := db.AutoMigrate(
		&pricinginfra.RuleSetModel{},
		&promotioninfra.CouponModel{},
		&walletinfra.WalletModel{},
		&walletinfra.LedgerEntryModel{},
		&orderinfra.OrderModel{},
		&cataloginfra.ItemModel{},
		&posinfra.SaleModel{},
		&billinginfra.MessageLogModel{},
	); err != nil {
		zlog.Fatal().Err(err).Msg("schema migration failed")
	}

	redisClient, err := redis.NewClient(cfg.Infra.Redis.Addrs)
	if err != nil {
		zlog.Fatal().Err(err).Msg("redis connection failed")
	}

	zkConn, err := zookeeper.Connect(cfg.Infra.Zookeeper.Servers, 5*time.Second)
	if err != nil {
		zlog.Fatal().Err(err).Msg("zookeeper connection failed")
	}

	notificationWriter := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, adapter.OrderNotificationTopic)

	tracer := otel.Tracer(serviceName)

	// pricing
	ruleSetRepo := pricinginfra.NewGormRuleSetRepository(db)
	pricingHandler := pricinghttp.NewPricingHandler(ruleSetRepo)

	// promotion
	couponRepo := promotioninfra.NewGormCouponRepository(db)
	ruleEngine, err := rule.NewCELRuleEngine()
	if err != nil {
		zlog.Fatal().Err(err).Msg("rule engine initialization failed")
	}
	promotionService := promotionapp.NewPromotionService(couponRepo, ruleEngine, tracer)
	promotionHandler := promotionhttp.NewPromotionHandler(couponRepo, ruleEngine)

	// wallet
	walletRepo := walletinfra.NewGormWalletRepository(db)
	gateway := adapter.NewHTTPPaymentGateway(cfg.Gateway.BaseURL, tracer)
	walletService := walletapp.NewWalletService(walletRepo, gateway, tracer)
	walletHandler := wallethttp.NewWalletHandler(walletService)

	// order
	orderRepo := orderinfra.NewGormOrderRepository(db)
	orderService := orderapp.NewOrderService(
		orderRepo,
		ruleSetRepo,
		promotionService,
		adapter.NewWalletSettlement(walletRepo),
		gateway,
		adapter.NewZkLockFactory(zkConn),
		adapter.NewKafkaNotifier(notificationWriter),
		tracer,
		nil,
	)
	orderHandler := orderhttp.NewOrderHandler(orderService)
	webhookHandler := orderhttp.NewWebhookHandler(orderService, walletRepo, redisClient, cfg.Gateway.WebhookSecret)

	// catalog + pos
	itemRepo := cataloginfra.NewGormItemRepository(db)
	catalogHandler := cataloghttp.NewCatalogHandler(itemRepo)
	posService := posapp.NewPosService(posinfra.NewGormSaleRepository(db), itemRepo, tracer, nil)
	posHandler := poshttp.NewPosHandler(posService)

	// billing
	billingService := billingapp.NewBillingService(
		billinginfra.NewGormMessageLogRepository(db),
		billinginfra.NewKafkaPublisher(notificationWriter),
		tracer,
		nil,
	)
	billingHandler := billinghttp.NewBillingHandler(billingService)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			pricingHandler.RegisterRoutes(appCtx.Mux)
			promotionHandler.RegisterRoutes(appCtx.Mux)
			walletHandler.RegisterRoutes(appCtx.Mux)
			orderHandler.RegisterRoutes(appCtx.Mux)
			webhookHandler.RegisterRoutes(appCtx.Mux)
			catalogHandler.RegisterRoutes(appCtx.Mux)
			posHandler.RegisterRoutes(appCtx.Mux)
			billingHandler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: []func(ctx context.Context){
			func(ctx context.Context) {
				if err := notificationWriter.Close(); err != nil {
					zlog.Error().Err(err).Msg("kafka writer close failed")
				}
			},
			func(ctx context.Context) {
				if err := redisClient.Close(); err != nil {
					zlog.Error().Err(err).Msg("redis close failed")
				}
			},
			func(ctx context.Context) { zkConn.Close() },
		},
	})
}
