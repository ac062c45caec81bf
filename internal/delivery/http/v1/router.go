package v1

import (
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/rilesCL/Projet-Leandrose-sub000/config"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/delivery/http/middleware"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/usecase"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/auth"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/metrics"
)

type RouterDeps struct {
	ApplicationUC domain.ApplicationUsecase
	AgreementUC   domain.AgreementUsecase
	EvaluationUC  domain.EvaluationUsecase
	HealthUC      usecase.HealthUsecase
	Issuer        *auth.Issuer
	Redis         *goredis.Client // optional; nil uses the in-process limiter
	Config        *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(metrics.GinMiddleware())
	r.Use(middleware.ErrorHandler())

	global := middleware.DefaultRateLimitConfig()
	global.Limit = deps.Config.RateLimitGlobalThreshold
	global.Window = deps.Config.RateLimitWindow()
	r.Use(middleware.RateLimitMiddleware(deps.Redis, global))

	v1 := r.Group("/v1")

	// Public routes
	NewHealthHandler(v1, deps.HealthUC)
	v1.GET("/metrics", gin.WrapH(metrics.Handler()))
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Issuer))

	// State-changing protocol calls get a per-user budget on top of the global one.
	mutations := middleware.RateLimitMiddleware(deps.Redis,
		middleware.MutationRateLimitConfig(deps.Config.RateLimitMutationThreshold, deps.Config.RateLimitWindow()))
	{
		NewApplicationHandler(protected, mutations, deps.ApplicationUC)
		NewAgreementHandler(protected, mutations, deps.AgreementUC)
		NewEvaluationHandler(protected, mutations, deps.EvaluationUC)
	}

	return r
}
