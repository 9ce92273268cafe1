package main

import (
	"github.com/DhavalSuthar-24/padel/cmd"
	_ "github.com/DhavalSuthar-24/padel/docs"
)

// @title Padel REST API
// @version 1.0
// @description Padel match organization, ratings and realtime chat.
// @host localhost:8088
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cmd.Execute()
}
