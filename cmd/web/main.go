// @title           ContentGen API
// @version         1.0
// @description     API генерации маркетингового контента по подписке.
// @host            localhost:5000
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization

package main

import (
	_ "contentgen_backend/docs"
	"contentgen_backend/internal/app"
)

func main() {
	app.Run()
}
