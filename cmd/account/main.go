package main

// 创建登录账号，首个 RRHH/ADMIN 账号只能通过此命令建立

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"HRCore/internal/authz"
	"HRCore/internal/service"
	"HRCore/pkg/logger"
	"HRCore/storage"
)

func main() {
	username := flag.String("username", "", "login name")
	password := flag.String("password", "", "initial password (falls back to $HRCORE_ACCOUNT_PASSWORD)")
	roles := flag.String("roles", string(authz.RoleEmployee), "comma-separated roles, e.g. RRHH,ADMIN")
	employeeID := flag.Int64("employee", 0, "employee to link the account to")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("HRCORE_ACCOUNT_PASSWORD")
	}

	os.Exit(run(*username, *password, *roles, *employeeID))
}

func run(username, password, roles string, employeeID int64) int {
	logger.Init()
	defer logger.Sync()

	if err := storage.Init(storage.Database); err != nil {
		logger.Logger.Error("Failed to initialize database", zap.Error(err))
		return 1
	}
	defer storage.Close()

	in := service.NewAccountInput{
		Username: username,
		Password: password,
		Roles:    authz.ParseRoles(roles),
	}
	if employeeID > 0 {
		in.EmployeeID = &employeeID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	acc, err := service.Auth().CreateAccount(ctx, in)
	if err != nil {
		logger.Logger.Error("Failed to create account", zap.Error(err))
		return 1
	}
	logger.Logger.Info("Account ready", zap.Int64("account_id", acc.ID), zap.String("username", acc.Username))
	return 0
}
