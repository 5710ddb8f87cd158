package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Hosanna-Mosa/c-t-sub002/cache"
	"github.com/Hosanna-Mosa/c-t-sub002/consumer"
	"github.com/Hosanna-Mosa/c-t-sub002/controllers"
	"github.com/Hosanna-Mosa/c-t-sub002/database"
	"github.com/Hosanna-Mosa/c-t-sub002/events"
	"github.com/Hosanna-Mosa/c-t-sub002/logger"
	"github.com/Hosanna-Mosa/c-t-sub002/middleware"
	"github.com/Hosanna-Mosa/c-t-sub002/models"
	awspkg "github.com/Hosanna-Mosa/c-t-sub002/pkg/aws"
	"github.com/Hosanna-Mosa/c-t-sub002/providers"
	"github.com/Hosanna-Mosa/c-t-sub002/repository"
	"github.com/Hosanna-Mosa/c-t-sub002/routes"
	"github.com/Hosanna-Mosa/c-t-sub002/sender"
	servicepkg "github.com/Hosanna-Mosa/c-t-sub002/services"
	"github.com/Hosanna-Mosa/c-t-sub002/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

const serviceName = "storefront-api"

func main() {
	ctx := context.Background()

	// Without AWS config the SNS, SQS, S3 and metrics clients are skipped.
	awsCfg, awsErr := awspkg.LoadAWSConfig(ctx)
	awsReady := awsErr == nil

	var secrets secretGetter
	if awsReady && os.Getenv("AWS_USE_SECRETS") == "true" {
		secrets = awspkg.NewSecretsClient(awsCfg)
	}
	cfg, err := LoadConfig(ctx, secrets)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var logSink zapcore.WriteSyncer
	if cfg.CloudWatchEnabled && awsReady {
		cwLogs, err := awspkg.NewCloudWatchLogsWriter(ctx, awsCfg, cfg.CloudWatchLogGroup, serviceName)
		if err != nil {
			log.Printf("CloudWatch Logs init failed: %v", err)
		} else {
			logSink = cwLogs
		}
	}
	zapLogger, err := logger.New(cfg.AppEnv, logSink)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck
	if awsErr != nil {
		zapLogger.Warn("AWS config unavailable, SNS, SQS, S3, DynamoDB and metrics disabled", zap.Error(awsErr))
	}

	db, err := database.Connect(cfg.Database(), zapLogger,
		&models.User{},
		&models.Order{},
		&models.Product{},
		&models.NotificationOutbox{},
		&models.PaymentVerification{},
	)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck

	// Metrics
	var metricsClient *awspkg.MetricsClient
	var metrics servicepkg.MetricsRecorder
	if awsReady {
		metricsClient = awspkg.NewMetricsClient(awsCfg, cfg.MetricsNamespace, cfg.CloudWatchEnabled)
		metrics = metricsClient
	}

	// Redis (optional)
	var catalogCache servicepkg.CatalogCache
	var rateCache servicepkg.RateCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			zapLogger.Warn("Redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
			catalogCache = cache.NewCatalogCache(redisClient, cfg.CatalogCacheTTL, zapLogger)
			rateCache = cache.NewRateQuoteCache(redisClient, cfg.RateCacheTTL, zapLogger)
			zapLogger.Info("Connected to Redis")
		}
	}

	// Media
	cloudinaryStore, err := storage.NewCloudinaryStore(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinarySecret, cfg.LabelPrefix)
	if err != nil {
		zapLogger.Fatal("Failed to init Cloudinary", zap.Error(err))
	}
	var labels storage.LabelStore = cloudinaryStore
	if cfg.LabelStore == "s3" {
		if !awsReady || cfg.LabelBucket == "" {
			zapLogger.Fatal("LABEL_STORE=s3 requires AWS config and LABEL_BUCKET")
		}
		labels = storage.NewS3LabelStore(awspkg.NewS3ObjectStore(awsCfg, cfg.LabelBucket), cfg.LabelPrefix, cfg.LabelURLTTL)
	}

	// Messaging
	var shipmentPublisher events.ShipmentPublisher
	var trackingQueue *awspkg.SQSQueue
	var jobQueue servicepkg.JobQueue
	var templateRepo repository.TemplateRepository
	if awsReady {
		shipmentPublisher = events.NewSNSShipmentPublisher(awspkg.NewSNSClient(awsCfg), cfg.ShipmentSNSTopic, zapLogger)
		templateRepo = repository.NewDynamoTemplateRepository(awspkg.NewDynamoDBClient(awsCfg), cfg.TemplatesTable)
		if cfg.TrackingQueueURL != "" {
			trackingQueue = awspkg.NewSQSQueue(awsCfg, cfg.TrackingQueueURL, zapLogger)
			jobQueue = trackingQueue
		}
	}
	if templateRepo == nil {
		zapLogger.Fatal("Template store requires AWS config")
	}

	var trackingPublisher events.TrackingPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaTrackingPublisher(cfg.KafkaBrokers, cfg.TrackingTopic)
		defer kafkaPublisher.Close() //nolint:errcheck
		trackingPublisher = kafkaPublisher
	}

	var mailer sender.Mailer
	if cfg.SMTPHost != "" {
		smtpSender, err := sender.NewSMTPSender(sender.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
		if err != nil {
			zapLogger.Warn("SMTP disabled", zap.Error(err))
		} else {
			mailer = smtpSender
		}
	}

	// Providers
	shippo := providers.NewShippoProvider(cfg.ShippoAPIKey, cfg.ShippoBaseURL)
	var paymentProviders []providers.PaymentProvider
	if cfg.SquareAccessToken != "" {
		paymentProviders = append(paymentProviders, providers.NewSquareProvider(cfg.SquareAccessToken, cfg.SquareBaseURL))
	}
	if cfg.StripeSecretKey != "" {
		paymentProviders = append(paymentProviders, providers.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeBackendURL))
	}

	// Repositories and services
	orderRepo := repository.NewGormOrderRepository(db)
	outboxRepo := repository.NewGormNotificationOutboxRepository(db)
	paymentRepo := repository.NewGormPaymentRepository(db)
	productRepo := repository.NewGormProductRepository(db)

	dispatcher := servicepkg.NewNotificationDispatcher(outboxRepo, mailer, metrics, zapLogger)
	creator := servicepkg.NewShippoShipmentCreator(shippo, labels, cfg.OriginAddress(), zapLogger)
	shipmentService := servicepkg.NewShipmentService(orderRepo, creator, dispatcher, shipmentPublisher, metrics, zapLogger)
	trackingService := servicepkg.NewTrackingService(orderRepo, shippo, jobQueue, trackingPublisher, metrics, zapLogger)
	rateService := servicepkg.NewRateService(shippo, rateCache, cfg.OriginAddress(), zapLogger)
	casualService := servicepkg.NewProductService(models.ProductKindCasual, productRepo, cloudinaryStore, catalogCache, zapLogger)
	dtfService := servicepkg.NewProductService(models.ProductKindDTF, productRepo, cloudinaryStore, catalogCache, zapLogger)
	templateService := servicepkg.NewTemplateService(templateRepo, cloudinaryStore, zapLogger)
	paymentService := servicepkg.NewPaymentService(orderRepo, paymentRepo, metrics, zapLogger, paymentProviders...)

	r := gin.New()
	// No trusted proxies means ClientIP is the socket peer and X-Forwarded-For is ignored.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		zapLogger.Fatal("Invalid TRUSTED_PROXIES", zap.Error(err))
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(zapLogger))
	r.Use(middleware.Metrics(metricsClient, serviceName))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.Timeout(30 * time.Second))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": serviceName})
	})

	limiter := middleware.NewRateLimiter(rate.Limit(cfg.TrackingRateLimit), cfg.TrackingRateBurst, 10*time.Minute)
	if cfg.TrustGatewayHeaders {
		zapLogger.Warn("Gateway identity headers are trusted")
	}
	guards := routes.NewGuards([]byte(cfg.JWTSecret), cfg.TrustGatewayHeaders, limiter)
	routes.RegisterCasualProductRoutes(r, controllers.NewProductController(casualService), guards)
	routes.RegisterDTFProductRoutes(r, controllers.NewProductController(dtfService), guards)
	routes.RegisterShipmentRoutes(r, controllers.NewShipmentController(shipmentService), guards)
	routes.RegisterTrackingRoutes(r, controllers.NewTrackingController(trackingService), guards)
	routes.RegisterShippingRateRoutes(r, controllers.NewRateController(rateService), guards)
	routes.RegisterTemplateRoutes(r, controllers.NewTemplateController(templateService), guards)
	routes.RegisterPaymentRoutes(r, controllers.NewPaymentController(paymentService), guards)

	// Background workers
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	go dispatcher.Run(workerCtx, cfg.OutboxPollInterval)
	if trackingQueue != nil {
		go consumer.NewTrackingSyncConsumer(trackingQueue, trackingService, zapLogger).Start(workerCtx)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	zapLogger.Info("Storefront API started", zap.String("port", cfg.Port))
	<-quit
	zapLogger.Info("Shutting down storefront API...")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exited cleanly")
}
