package routes

import (
	"log/slog"
	"net/http"

	"customerhub-backend/config"
	"customerhub-backend/controllers"
	"customerhub-backend/models"
	"customerhub-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Dependencies struct {
	Customers   controllers.Store[*models.Customer]
	Addresses   controllers.Store[*models.Address]
	Logger      *slog.Logger
	CORSOrigins []string
}

func SetupRouter(deps Dependencies) *gin.Engine {
	utils.SetupValidation()

	r := gin.New()
	r.Use(gin.Recovery())

	if len(deps.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
		}))
	}

	r.Use(config.PerformanceLogger(deps.Logger))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, "Hello")
	})

	customerController := controllers.NewCustomerController(deps.Customers, deps.Logger)
	customers := r.Group("/customers")
	{
		customers.GET("", customerController.GetCustomers)
		customers.POST("", customerController.CreateCustomer)
		customers.GET("/:id", customerController.GetCustomer)
		customers.PATCH("/:id", customerController.UpdateCustomer)
		customers.DELETE("/:id", customerController.DeleteCustomer)
	}

	addressController := controllers.NewAddressController(deps.Addresses, deps.Logger)
	addresses := r.Group("/addresses")
	{
		addresses.GET("", addressController.GetAddresses)
		addresses.POST("", addressController.CreateAddress)
		addresses.GET("/:id", addressController.GetAddress)
		addresses.PATCH("/:id", addressController.UpdateAddress)
		addresses.DELETE("/:id", addressController.DeleteAddress)
	}

	return r
}
