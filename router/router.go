package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/comanda-app/controllers"
	"github.com/yeremiapane/comanda-app/middlewares"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/services"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(120, 60).RateLimit())

	notifier := services.NewNotifier(db)
	orderCtrl := controllers.NewOrderController(db, notifier)
	waitlistCtrl := controllers.NewWaitlistController(db, notifier, orderCtrl.Orders)
	reservationCtrl := controllers.NewReservationController(db, notifier)
	gameCtrl := controllers.NewGameController(db)
	tableCtrl := controllers.NewTableController(db)
	menuCtrl := controllers.NewMenuController(db)
	userCtrl := controllers.NewUserController(db)
	notificationCtrl := controllers.NewNotificationController(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Login is rate limited; staff accounts are created by owners from the
	// authenticated group below.
	auth := r.Group("/")
	auth.Use(middlewares.NewStrictRateLimiter())
	{
		auth.POST("/login", userCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                    CUSTOMER ROUTES (no auth)
	// ----------------------------------------------------------------
	r.POST("/walk-ins", waitlistCtrl.RegisterWalkIn)
	r.GET("/walk-ins/qr", waitlistCtrl.GetEntryQR)
	r.POST("/waitlist", waitlistCtrl.JoinWaitlist)

	r.GET("/menus", menuCtrl.GetAllMenus)
	r.GET("/menus/:menu_id", menuCtrl.GetMenuByID)

	r.POST("/orders", orderCtrl.PlaceOrder)
	r.POST("/orders/delivery", orderCtrl.PlaceDeliveryOrder)
	r.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	r.POST("/orders/:order_id/bill", orderCtrl.RequestBill)

	r.POST("/games/results", gameCtrl.RecordResult)
	r.GET("/games/orders/:order_id/prior", gameCtrl.GetPrior)

	r.POST("/reservations", reservationCtrl.CreateReservation)
	r.POST("/reservations/:reservation_id/cancel", reservationCtrl.CancelReservation)

	r.GET("/notifications/customer", notificationCtrl.ListForCustomer)

	// ----------------------------------------------------------------
	//                      STAFF ROUTES (JWT)
	// ----------------------------------------------------------------
	staff := r.Group("/staff")
	staff.Use(middlewares.AuthMiddleware())
	{
		staff.GET("/profile", userCtrl.GetProfile)
		staff.GET("/events/ws", controllers.EventsHandler)

		staff.GET("/notifications", notificationCtrl.ListMine)
		staff.PATCH("/notifications/:notification_id/read", notificationCtrl.MarkRead)
		staff.PATCH("/notifications/read-all", notificationCtrl.MarkAllRead)

		// Front of house
		front := staff.Group("/")
		front.Use(middlewares.RequireRoles(models.RoleMaitre, models.RoleWaiter))
		{
			front.GET("/waitlist", waitlistCtrl.ListWaiting)
			front.POST("/waitlist/assign", waitlistCtrl.AssignTable)
			front.GET("/tables", tableCtrl.GetAllTables)
			front.GET("/tables/:table_id", tableCtrl.GetTableByID)
			front.GET("/tables/:table_id/order", orderCtrl.GetTableOrder)
			front.GET("/reservations", reservationCtrl.ListReservations)
			front.POST("/reservations/:reservation_id/confirm", reservationCtrl.ConfirmReservation)
			front.POST("/reservations/:reservation_id/reject", reservationCtrl.RejectReservation)
		}

		// Order lifecycle (waiters and supervisors)
		orders := staff.Group("/orders")
		orders.Use(middlewares.RequireRoles(models.RoleWaiter))
		{
			orders.GET("", orderCtrl.ListOrders)
			orders.POST("/:order_id/confirm", orderCtrl.ConfirmOrder)
			orders.POST("/:order_id/reject", orderCtrl.RejectOrder)
			orders.POST("/:order_id/deliver", orderCtrl.DeliverOrder)
			orders.POST("/:order_id/pay", orderCtrl.PayOrder)
		}

		// Preparation stations
		sectors := staff.Group("/sectors")
		sectors.Use(middlewares.RequireRoles(models.RoleChef, models.RoleBartender))
		{
			sectors.GET("/:sector/queue", orderCtrl.SectorQueue)
			sectors.POST("/items/:item_id/start", orderCtrl.StartItem)
			sectors.POST("/items/:item_id/finish", orderCtrl.FinishItem)
		}

		// Administration (owner / supervisor only)
		admin := staff.Group("/admin")
		admin.Use(middlewares.RequireRoles())
		{
			admin.POST("/users", userCtrl.Register)
			admin.GET("/users", userCtrl.GetAllUsers)
			admin.PATCH("/users/:user_id/enabled", userCtrl.SetEnabled)

			admin.POST("/tables", tableCtrl.CreateTable)
			admin.GET("/tables/:table_id/qr", tableCtrl.GetTableQR)
			admin.DELETE("/tables/:table_id", tableCtrl.DeleteTable)

			admin.POST("/menus", menuCtrl.CreateMenu)
			admin.PUT("/menus/:menu_id", menuCtrl.UpdateMenu)
			admin.DELETE("/menus/:menu_id", menuCtrl.DeleteMenu)
		}
	}

	return r
}
