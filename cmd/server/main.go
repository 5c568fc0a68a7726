package main

import (
	"github.com/vocal-lineage/backend/internal/server"
	"github.com/vocal-lineage/backend/internal/util"
	"github.com/vocal-lineage/backend/pkg/logger"
	"github.com/vocal-lineage/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: util.GetEnvBool("DEBUG", false),
		JSON:  util.GetEnvString("LOG_FORMAT", "text") == "json",
	})
	logger.Init(consoleLogger)

	server.Init()
}
