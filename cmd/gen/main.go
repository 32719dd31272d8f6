package main

import (
	"HRCore/internal/repository"
	"HRCore/pkg/logger"
)

func main() {
	logger.Init()
	defer logger.Sync()

	repository.RunGenerate()
}
