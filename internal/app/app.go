package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"math_edu_backend/internal/config"
	"math_edu_backend/internal/controller"
	"math_edu_backend/internal/repository"
	"math_edu_backend/internal/service"
	"math_edu_backend/pkg/database"
	"math_edu_backend/pkg/logger"
	"math_edu_backend/pkg/monitoring"
	"math_edu_backend/pkg/security"
	"math_edu_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	learner  *repository.LearnerRepository
	path     *repository.PathRepository
	position *repository.PositionRepository
	content  *repository.ContentRepository
	progress *repository.ProgressRepository
	mastery  *repository.MasteryRepository
}

type services struct {
	position      *service.PositionService
	repositioning *service.RepositioningService
	rotation      *service.RotationService
	mastery       *service.MasteryService
	scheduler     *service.SchedulerService
	curriculum    *service.CurriculumService
}

type controllers struct {
	scheduler  *controller.SchedulerController
	mastery    *controller.MasteryController
	curriculum *controller.CurriculumController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		learner:  repository.NewLearnerRepository(db),
		path:     repository.NewPathRepository(db),
		position: repository.NewPositionRepository(db),
		content:  repository.NewContentRepository(db),
		progress: repository.NewProgressRepository(db),
		mastery:  repository.NewMasteryRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}
	locks := service.NewLearnerLocks()

	var sink service.AnalyticsSink = service.NoopAnalyticsSink{}
	if cfg.Analytics.Enabled && rdb != nil {
		sink = service.NewRedisAnalyticsSink(rdb, cfg.Analytics.Stream)
	}

	var packSource service.PackSource
	if cfg.Storage.MinioEndpoint != "" {
		mc, err := minio.New(cfg.Storage.MinioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.MinioAccessID, cfg.Storage.MinioSecret, ""),
			Secure: cfg.Storage.MinioUseSSL,
		})
		if err != nil {
			logger.Log.Fatal("Failed to initialize minio client", zap.Error(err))
		}
		packSource = service.NewMinioPackSource(mc, cfg.Storage.MinioBucket)
	}

	s.position = service.NewPositionService(db, repos.position)
	s.repositioning = service.NewRepositioningService(db, repos.content, repos.progress)
	s.rotation = service.NewRotationService(db, repos.path, repos.learner, locks)
	s.mastery = service.NewMasteryService(db, repos.mastery, repos.content, repos.learner, &cfg.Scheduler)
	s.scheduler = service.NewSchedulerService(
		db,
		repos.learner,
		repos.path,
		repos.content,
		repos.progress,
		s.mastery,
		s.rotation,
		sink,
		locks,
		&cfg.Scheduler,
	)
	s.curriculum = service.NewCurriculumService(db, repos.content, repos.path, packSource)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		scheduler:  controller.NewSchedulerController(s.scheduler, s.rotation),
		mastery:    controller.NewMasteryController(s.mastery),
		curriculum: controller.NewCurriculumController(s.curriculum, s.position),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// ApplyConfig 配置热更新回调，由 configwatcher 触发
func (a *App) ApplyConfig(cfg *config.Config) {
	cfg.Scheduler.ApplyDefaults()
	a.services.scheduler.SetConfig(&cfg.Scheduler)
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.MigrateOnly {
		logger.Log.Info("Migration completed, exiting (migrate-only mode)")
		os.Exit(0)
	}

	var rdb *redis.Client
	if cfg.Analytics.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		_, err := tracing.InitTracer("math-scheduler", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.Redis != nil {
		a.Redis.Close()
	}

	log.Println("Server exiting")
}
