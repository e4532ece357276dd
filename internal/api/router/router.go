package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ren-jimpo/shift-management-app-sub000/config"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/api/handler"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/api/middleware"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/api/validation"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/jwt"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/redis"
)

// Setup builds the gin engine. rdb and db may be nil.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if err := validation.Register(); err != nil {
		logger.Error("register validators failed", zap.Error(err))
	}

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// a nil *redis.Client must not become a non-nil interface
	var (
		blacklist middleware.TokenBlacklist
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	r.GET("/health", healthCheck(db))

	manager := middleware.RoleAuth(model.RoleManager)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/login",
			middleware.RateLimit(limiter, cfg.RateLimit.LoginLimit, cfg.RateLimit.LoginWindow),
			h.Auth.Login)

		cron := v1.Group("/cron", middleware.CronAuth(cfg.Cron.Secret))
		{
			cron.GET("/daily-shift-notifications", h.Notification.DailyShiftNotifications)
			cron.POST("/daily-shift-notifications", h.Notification.DailyShiftNotifications)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/reset-password", h.Auth.ResetPassword) // self or manager, checked in service

			users := authorized.Group("/users")
			{
				users.GET("", h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.POST("", manager, h.User.CreateUser)
				users.PUT("/:id", manager, h.User.UpdateUser)
				users.DELETE("/:id", manager, h.User.DeleteUser)
			}
			authorized.PUT("/user-stores/flexible", manager, h.User.SetFlexible)

			stores := authorized.Group("/stores")
			{
				stores.GET("", h.Store.ListStores)
				stores.GET("/:id", h.Store.GetStore)
				stores.POST("", manager, h.Store.CreateStore)
				stores.PUT("/:id", manager, h.Store.UpdateStore)
				stores.DELETE("/:id", manager, h.Store.DeleteStore)
			}

			patterns := authorized.Group("/shift-patterns")
			{
				patterns.GET("", h.ShiftPattern.ListPatterns)
				patterns.GET("/:id", h.ShiftPattern.GetPattern)
				patterns.POST("", manager, h.ShiftPattern.CreatePattern)
				patterns.PUT("/:id", manager, h.ShiftPattern.UpdatePattern)
				patterns.DELETE("/:id", manager, h.ShiftPattern.DeletePattern)
			}

			timeSlots := authorized.Group("/time-slots")
			{
				timeSlots.GET("", h.TimeSlot.ListTimeSlots)
				timeSlots.GET("/:id", h.TimeSlot.GetTimeSlot)
				timeSlots.POST("", manager, h.TimeSlot.CreateTimeSlot)
				timeSlots.PUT("/:id", manager, h.TimeSlot.UpdateTimeSlot)
				timeSlots.DELETE("/:id", manager, h.TimeSlot.DeleteTimeSlot)
			}

			shifts := authorized.Group("/shifts")
			{
				shifts.GET("", h.Shift.ListShifts)
				shifts.GET("/export", manager, h.Shift.ExportWeek)
				shifts.GET("/calendar.ics", h.Shift.Calendar) // own feed unless manager
				shifts.GET("/:id", h.Shift.GetShift)
				shifts.POST("", manager, h.Shift.CreateShift)
				shifts.POST("/recurring", manager, h.Shift.CreateRecurring)
				shifts.PATCH("", manager, h.Shift.BulkUpdateWeek)
				shifts.PUT("/:id", manager, h.Shift.UpdateShift)
				shifts.DELETE("/:id", manager, h.Shift.DeleteShift)
			}

			timeOff := authorized.Group("/time-off-requests")
			{
				timeOff.GET("", h.TimeOff.ListRequests)
				timeOff.POST("", h.TimeOff.CreateRequest)
				timeOff.PATCH("", manager, h.TimeOff.BulkRespond)
				timeOff.PUT("/:id", manager, h.TimeOff.RespondRequest)
				timeOff.DELETE("/:id", h.TimeOff.DeleteRequest) // own pending request unless manager
			}

			emergencies := authorized.Group("/emergency-requests")
			{
				emergencies.GET("", h.Emergency.ListRequests)
				emergencies.GET("/:id", h.Emergency.GetRequest)
				emergencies.POST("", manager, h.Emergency.CreateRequest)
				emergencies.PUT("/:id", manager, h.Emergency.UpdateRequest)
				emergencies.DELETE("/:id", manager, h.Emergency.DeleteRequest)
			}

			volunteers := authorized.Group("/emergency-volunteers")
			{
				volunteers.GET("", h.Emergency.ListVolunteers)
				volunteers.POST("", h.Emergency.Volunteer)
				volunteers.DELETE("/:id", h.Emergency.DeleteVolunteer)
			}

			email := authorized.Group("/email", manager)
			{
				email.POST("", h.Notification.SendEmail)
				email.POST("/test", h.Notification.SendTest)
			}

			authorized.GET("/dashboard", manager, h.Dashboard.Get)
		}
	}

	return r
}

func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}

		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok"})
	}
}
