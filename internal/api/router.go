// Package api wires the HTTP routes of the PolloPollo service.
package api

import (
	"pollopollo/internal/domain"     // Roles
	"pollopollo/internal/middleware" // Auth, role, local, rate limit and metrics middleware
	"pollopollo/internal/repository" // Persistence layer
	"pollopollo/internal/storage"    // Static folder name

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Deps are the collaborators the handlers are built from
type Deps struct {
	DB           *gorm.DB
	Redis        *redis.Client // Optional, nil disables caching
	JWTSecret    string
	Users        *repository.UserRepository
	Products     *repository.ProductRepository
	Applications *repository.ApplicationRepository
	Contracts    *repository.ContractRepository
	Donors       *repository.DonorRepository
	Rates        *repository.ExchangeRateRepository
	AuthLimiter  *middleware.RateLimiter // Optional
	Metrics      *middleware.Metrics     // Optional
	ImageDir     string                  // Serve images from disk when set
	InternalPort string                  // Port of the loopback listener for chat bot routes
}

// RegisterRoutes mounts every route on r
func RegisterRoutes(r *gin.Engine, d Deps) {
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	if d.ImageDir != "" {
		r.Static("/"+storage.StaticFolder, d.ImageDir+"/"+storage.StaticFolder) // Uploaded images
	}

	auth := middleware.JWTAuthMiddleware(d.JWTSecret)
	local := middleware.LocalOnlyMiddleware(d.InternalPort)
	producers := middleware.RoleMiddleware(d.DB, domain.RoleProducer)
	receivers := middleware.RoleMiddleware(d.DB, domain.RoleReceiver)

	api := r.Group("/api")

	// User routes
	users := api.Group("/users")
	users.POST("", RegisterHandler(d.Users))
	login := []gin.HandlerFunc{AuthenticateHandler(d.Users)}
	if d.AuthLimiter != nil {
		login = append([]gin.HandlerFunc{d.AuthLimiter.Middleware()}, login...)
	}
	users.POST("/authenticate", login...)
	users.GET("/me", auth, MeHandler(d.Users))
	users.GET("/countproducer", CountProducersHandler(d.Users))
	users.GET("/countreceiver", CountReceiversHandler(d.Users))
	users.GET("/:id", GetUserHandler(d.Users))
	users.PUT("", auth, UpdateUserHandler(d.Users))
	users.PUT("/image", auth, UpdateUserImageHandler(d.Users))
	users.POST("/wallet", local, PairDeviceHandler(d.Users))

	api.GET("/producers", UsersByRoleHandler(d.Users, domain.RoleProducer))
	api.GET("/producers/:id", UserByRoleHandler(d.Users, domain.RoleProducer))
	api.GET("/receivers", UsersByRoleHandler(d.Users, domain.RoleReceiver))
	api.GET("/receivers/:id", UserByRoleHandler(d.Users, domain.RoleReceiver))

	// Product routes
	products := api.Group("/products")
	products.POST("", auth, producers, CreateProductHandler(d.Products))
	products.GET("", ListProductsHandler(d.Products))
	products.GET("/:id", GetProductHandler(d.Products))
	products.GET("/producer/:producerId", ProducerProductsHandler(d.Products))
	products.PUT("/:id", auth, producers, UpdateProductHandler(d.Products))
	products.PUT("/:id/image", auth, producers, UpdateProductImageHandler(d.Products))

	// Application routes
	apps := api.Group("/applications")
	apps.POST("", auth, receivers, CreateApplicationHandler(d.Applications, d.Redis))
	apps.GET("", ListOpenApplicationsHandler(d.Applications))
	apps.GET("/filtered", FilteredApplicationsHandler(d.Applications))
	apps.GET("/completed", CompletedApplicationsHandler(d.Applications))
	apps.GET("/countries", CountriesHandler(d.Applications, d.Redis))
	apps.GET("/cities", CitiesHandler(d.Applications, d.Redis))
	apps.GET("/receiver/:receiverId", ReceiverApplicationsHandler(d.Applications))
	apps.GET("/contractinfo/:id", local, ContractInformationHandler(d.Applications))
	apps.GET("/:id", GetApplicationHandler(d.Applications))
	apps.PUT("", local, UpdateApplicationHandler(d.Applications, d.Redis))
	apps.DELETE("/:userId/:id", auth, DeleteApplicationHandler(d.Applications, d.Redis))

	// Chat bot routes, loopback only
	contracts := api.Group("/contracts", local)
	contracts.POST("", CreateContractHandler(d.Contracts))
	contracts.GET("/:applicationId", GetContractHandler(d.Contracts))

	donors := api.Group("/donors")
	donors.POST("", local, CreateDonorHandler(d.Donors))
	donors.DELETE("/:aaAccount", local, DeleteDonorHandler(d.Donors))
	donors.GET("/:aaAccount/balance", DonorBalanceHandler(d.Donors))

	api.GET("/exchangerate", GetExchangeRateHandler(d.Rates))
	api.PUT("/exchangerate", local, SetExchangeRateHandler(d.Rates))
}
