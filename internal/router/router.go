package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"HRCore/internal/handler"
	"HRCore/internal/middleware"
)

func Register(h *server.Hertz) {
	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.RequestIDMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	h.GET("/health", handler.Health)

	v1 := h.Group("/v1")

	// 认证接口按 IP 限流
	auth := v1.Group("/auth", middleware.LoginRateLimitMiddleware())
	{
		auth.POST("/login", handler.Login)
		auth.POST("/refresh", handler.RefreshToken)
	}

	api := v1.Group("", middleware.AuthMiddleware(), middleware.APIRateLimitMiddleware())
	api.GET("/me", handler.GetMe)

	employees := api.Group("/employees")
	{
		employees.GET("", handler.ListEmployees)
		employees.POST("", handler.CreateEmployee)
		employees.GET("/:id", handler.GetEmployee)
		employees.PUT("/:id", handler.UpdateEmployee)
	}

	locations := api.Group("/locations")
	{
		locations.GET("", handler.ListLocations)
		locations.POST("", handler.CreateLocation)
		locations.PUT("/:id", handler.UpdateLocation)
	}

	schedules := api.Group("/work-schedules")
	{
		schedules.GET("", handler.ListWorkSchedules)
		schedules.POST("", handler.CreateWorkSchedule)
	}

	// 考勤
	checkIns := api.Group("/check-ins")
	{
		checkIns.GET("", handler.ListCheckIns)
		checkIns.POST("", handler.CreateCheckIn)
		checkIns.GET("/:id", handler.GetCheckIn)
		checkIns.POST("/:id/recalculate", handler.RecalculateGeofence)
	}
	api.GET("/attendance/summary", handler.GetDailySummary)
	api.GET("/attendance/summary/range", handler.GetRangeSummary)

	justifications := api.Group("/justifications")
	{
		justifications.GET("", handler.ListJustifications)
		justifications.POST("", handler.CreateJustification)
		justifications.POST("/:id/resolve", handler.ResolveJustification)
	}

	// 年假申请
	leaves := api.Group("/leave-requests")
	{
		leaves.GET("/simulate", handler.SimulateLeave)
		leaves.GET("", handler.ListLeaveRequests)
		leaves.POST("", handler.CreateLeaveRequest)
		leaves.GET("/:id", handler.GetLeaveRequest)
		leaves.PUT("/:id", handler.UpdateLeaveRequest)
		leaves.POST("/:id/approve", handler.ApproveLeaveRequest)
		leaves.POST("/:id/reject", handler.RejectLeaveRequest)
		leaves.POST("/:id/cancel", handler.CancelLeaveRequest)
	}

	// 许可
	api.GET("/permission-types", handler.ListPermissionTypes)
	api.POST("/permission-types", handler.CreatePermissionType)
	permissions := api.Group("/permissions")
	{
		permissions.GET("", handler.ListPermissions)
		permissions.POST("", handler.CreatePermission)
		permissions.POST("/:id/approve", handler.ApprovePermission)
		permissions.POST("/:id/reject", handler.RejectPermission)
		permissions.POST("/:id/cancel", handler.CancelPermission)
	}

	holidays := api.Group("/holidays")
	{
		holidays.GET("", handler.ListHolidays)
		holidays.POST("", handler.CreateHoliday)
		holidays.POST("/expand", handler.ExpandHolidays)
		holidays.POST("/import", handler.ImportHolidays)
		holidays.PUT("/:id", handler.UpdateHoliday)
		holidays.DELETE("/:id", handler.DeleteHoliday)
	}

	policies := api.Group("/policies")
	{
		policies.GET("", handler.ListPolicies)
		policies.POST("", handler.CreatePolicy)
		policies.PUT("/:id", handler.UpdatePolicy)
	}

	balances := api.Group("/balances")
	{
		balances.GET("", handler.ListBalances)
		balances.GET("/export", handler.ExportBalances)
		balances.POST("/rebuild", handler.RebuildBalances)
	}

	api.GET("/calendar/absences", handler.GetAbsenceCalendar)

	// 统计报表，仅 HR
	reports := api.Group("/reports")
	{
		reports.GET("/headcount", handler.GetHeadcount)
		reports.GET("/leave-totals", handler.GetLeaveTotals)
		reports.GET("/pending-approvals", handler.GetPendingBacklog)
		reports.GET("/outside-geofence", handler.GetOutsideGeofence)
		reports.GET("/balance-totals", handler.GetBalanceTotals)
	}
}
