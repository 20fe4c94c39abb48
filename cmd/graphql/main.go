// Standalone admin GraphQL server for local tooling. Run with: go run ./cmd/graphql
// It has no login, so it listens on loopback unless GRAPHQL_ADDR says otherwise.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"

	"bizdash/api"
	graphqlApi "bizdash/api/graphql"
	_ "bizdash/api/site"
	"bizdash/config"
	"bizdash/core/app"
	_ "bizdash/custom"
)

func main() {
	config.LoadEnv()
	a, err := app.New(config.LoadAppConfig())
	if err != nil {
		log.Fatal("app:", err)
	}
	defer a.Close()
	if _, err := a.Deps.Loader.ScanModules(context.Background()); err != nil {
		log.Fatal("modules:", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(a.Deps.Sessions.Middleware())
	graphqlApi.RegisterGraphQLRoutes(e.Group(""), a.Deps)
	api.ApplyRoutes(e, a.Deps)

	gqlFonts := []string{"banner", "big", "block", "slant", "standard", "small", "shadow", "speed", "doom", "larry3d", "puffy", "rectangles"}
	fig := figure.NewFigure("Dashboard GQL", gqlFonts[rand.Intn(len(gqlFonts))], true)
	fig.Print()
	fmt.Println("Standalone GraphQL server")

	addr := config.GetEnv("GRAPHQL_ADDR", "127.0.0.1:8081")
	log.Printf("GraphQL at http://%s%s  Playground at http://%s%s/playground", addr, graphqlApi.Endpoint, addr, graphqlApi.Endpoint)
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
