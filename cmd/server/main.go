package main

import (
	"github.com/soumendrak/ragas/internal/server"
	"github.com/soumendrak/ragas/internal/util"
	"github.com/soumendrak/ragas/pkg/logger"
	"github.com/soumendrak/ragas/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
