package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/tutorledger/internal/app/controllers"
	"github.com/yigit/tutorledger/internal/app/models"
	"github.com/yigit/tutorledger/internal/middleware"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth      *controllers.AuthController
	Students  *controllers.StudentController
	Sessions  *controllers.SessionController
	Accounts  *controllers.AccountController
	Dashboard *controllers.DashboardController
	Live      *controllers.LiveController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
		auth.POST("/refresh", ctrl.Auth.RefreshToken)
	}
	v1.GET("/flash", ctrl.Dashboard.Flashes)

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/auth/logout", ctrl.Auth.Logout)
		authenticated.GET("/auth/profile", ctrl.Auth.GetProfile)
		authenticated.GET("/dashboard", ctrl.Dashboard.Dashboard)
		authenticated.GET("/ws", ctrl.Live.Subscribe)

		// ownership is checked by the student service
		students := authenticated.Group("/students")
		{
			students.GET("", ctrl.Students.ListStudents)
			students.GET("/:id", ctrl.Students.GetStudent)
			students.GET("/:id/sessions", ctrl.Students.ListStudentSessions)
		}

		teacher := authenticated.Group("")
		teacher.Use(authMiddleware.RoleRequired(models.RoleTeacher))
		{
			teacher.POST("/students", ctrl.Students.CreateStudent)
			teacher.PATCH("/students/:id/price", ctrl.Students.UpdatePrice)

			teacher.POST("/sessions", ctrl.Sessions.CreateSession)
			teacher.GET("/sessions/unpaid", ctrl.Sessions.ListUnpaid)
			teacher.POST("/sessions/:id/toggle-paid", ctrl.Sessions.TogglePaid)

			teacher.GET("/parents", ctrl.Accounts.ListParents)
			teacher.POST("/parents", ctrl.Accounts.CreateParent)
			teacher.GET("/ledger/totals", ctrl.Dashboard.Totals)
		}
	}
}
