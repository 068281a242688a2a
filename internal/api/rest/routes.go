package rest

import (
	"github.com/Dhoini/licensing-backend/internal/api/rest/handlers"
	"github.com/Dhoini/licensing-backend/internal/api/rest/middleware"
	"github.com/Dhoini/licensing-backend/internal/service"
	"github.com/Dhoini/licensing-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles the application services the router exposes
type Services struct {
	Clients   service.ClientService
	Catalog   service.CatalogService
	Contracts service.ContractService
	Profit    service.ProfitService
}

// SetupRouter configures the Gin router with routes and middleware
func SetupRouter(log *logger.Logger, registry *prometheus.Registry, svcs Services) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(gin.Recovery())

	r.GET("/health", handlers.HealthCheck)

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	clientHandler := handlers.NewClientHandler(svcs.Clients, log)
	softwareHandler := handlers.NewSoftwareHandler(svcs.Catalog, log)
	contractHandler := handlers.NewContractHandler(svcs.Contracts, log)
	profitHandler := handlers.NewProfitHandler(svcs.Profit, log)

	v1 := r.Group("/api/v1")
	{
		clients := v1.Group("/clients")
		{
			persons := clients.Group("/persons")
			{
				persons.POST("", clientHandler.CreatePerson)
				persons.PUT("/:id", clientHandler.UpdatePerson)
				persons.DELETE("/:id", clientHandler.DeletePerson)
			}

			companies := clients.Group("/companies")
			{
				companies.POST("", clientHandler.CreateCompany)
				companies.PUT("/:id", clientHandler.UpdateCompany)
				companies.DELETE("/:id", clientHandler.DeleteCompany)
			}
		}

		softwares := v1.Group("/softwares")
		{
			softwares.GET("", softwareHandler.GetSoftwares)
		}

		contracts := v1.Group("/contracts")
		{
			contracts.POST("", contractHandler.CreateContract)
			contracts.POST("/:id/payments", contractHandler.PayContract)
			contracts.DELETE("/:id", contractHandler.DeleteContract)
		}

		profits := v1.Group("/profits")
		{
			profits.GET("", profitHandler.GetProfit)
		}
	}

	return r
}
