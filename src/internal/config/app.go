package config

import (
	"member-service/src/internal/delivery/http"
	"member-service/src/internal/delivery/http/middleware"
	"member-service/src/internal/delivery/http/route"
	"member-service/src/internal/gateway/messaging"
	"member-service/src/internal/gateway/payout"
	"member-service/src/internal/gateway/storage"
	"member-service/src/internal/repository"
	"member-service/src/internal/usecase"
	"member-service/src/pkg/databases/mysql"
	kafkaPkgConfluent "member-service/src/pkg/kafka/confluent"
	"member-service/src/pkg/log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

type BootstrapConfig struct {
	DB          mysql.DBInterface
	App         *fiber.App
	Log         log.Log
	Validate    *validator.Validate
	Config      *viper.Viper
	Producer    kafkaPkgConfluent.Producer
	Redis       redis.UniversalClient
	Geoservice  *GeoService
	AsynqClient *asynq.Client
	Async       *asynq.ServeMux
}

func Bootstrap(config *BootstrapConfig) *usecase.WalletUseCase {
	// setup repositories
	memberRepository := repository.NewMemberRepository(config.DB)
	transactionRepository := repository.NewTransactionRepository(config.DB)
	memberProducer := messaging.NewMemberProducer(config.Producer, config.Log)

	photoStorage, err := storage.NewPhotoStorage(config.Config, config.Log)
	if err != nil {
		config.Log.Error("bootstrap", err.Error(), "photo storage init", "")
		photoStorage = nil
	}

	var geoClient = config.Geoservice.Client

	// setup use cases
	sponsorPolicy := usecase.NewSponsorPolicy(config.Config, memberRepository)
	authUseCase := usecase.NewAuthUseCase(
		config.Log,
		config.Validate,
		config.Config,
		config.DB,
		memberRepository,
		sponsorPolicy,
		usecase.AllowAllPolicy{},
		config.Redis,
		memberProducer,
		photoStorage,
		geoClient,
	)
	walletUseCase := usecase.NewWalletUseCase(
		config.Log,
		config.Validate,
		config.Config,
		config.DB,
		memberRepository,
		transactionRepository,
		config.AsynqClient,
		memberProducer,
		payout.NewStubGateway(config.Log),
	)
	teamUseCase := usecase.NewTeamUseCase(
		config.Log,
		config.Validate,
		config.Config,
		config.DB,
		memberRepository,
		sponsorPolicy,
	)

	// setup controller
	authController := http.NewAuthController(authUseCase, config.Log)
	walletController := http.NewWalletController(walletUseCase, config.Log)
	teamController := http.NewTeamController(teamUseCase, config.Log)

	// setup middleware
	authMiddleware := middleware.VerifyBearer(config.Config, config.Redis)
	rateLimiter := middleware.RegistrationRateLimit(config.Config, config.Redis)

	if config.Async != nil {
		config.Async.HandleFunc(usecase.TaskProcessWithdrawal, walletUseCase.ProcessWithdrawal)
	}

	routeConfig := route.RouteConfig{
		App:              config.App,
		AuthController:   authController,
		WalletController: walletController,
		TeamController:   teamController,
		AuthMiddleware:   authMiddleware,
		RateLimiter:      rateLimiter,
	}
	routeConfig.Setup()

	return walletUseCase
}
