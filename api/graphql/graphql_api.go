package graphql

import (
	"net/http"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/labstack/echo/v4"

	"bizdash/api"
	"bizdash/core/module"
	"bizdash/core/session"
	graphqlpkg "bizdash/graphql"
	"bizdash/graphqlserver"
)

// Endpoint is where the admin GraphQL API is served under /dashboard.
const Endpoint = "/graphql"

func init() {
	api.RegisterDashboard(RegisterGraphQLRoutes)
}

// RegisterGraphQLRoutes mounts the admin GraphQL endpoint and its playground on the dashboard group.
func RegisterGraphQLRoutes(g *echo.Group, deps *module.Deps) {
	schema, err := graphqlserver.NewSchema(deps)
	if err != nil {
		panic("graphql schema: " + err.Error())
	}
	RegisterGraphQLRoutesWithSchema(g, schema)
}

// RegisterGraphQLRoutesWithSchema registers the endpoint with a prepared schema.
func RegisterGraphQLRoutesWithSchema(g *echo.Group, schema *gql.Schema) {
	handler := graphqlserver.Handler(schema)
	serve := func(c echo.Context) error {
		r := c.Request()
		ctx := graphqlpkg.WithUser(r.Context(), session.Get(c).Data.Username)
		handler.ServeHTTP(c.Response(), r.WithContext(ctx))
		return nil
	}
	g.POST(Endpoint, serve)
	g.GET(Endpoint, serve)
	g.GET(Endpoint+"/playground", playground)
}

const playgroundHTML = `<!DOCTYPE html>
<html>
<head>
	<title>GraphQL Playground</title>
	<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/css/index.css"/>
</head>
<body>
	<div id="root"/>
	<script src="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/js/middleware.js"></script>
	<script>window.addEventListener('load', function() {
		GraphQLPlayground.init(document.getElementById('root'), { endpoint: window.location.pathname.replace(/\/playground$/, '') });
	})</script>
</body>
</html>`

func playground(c echo.Context) error {
	return c.HTML(http.StatusOK, playgroundHTML)
}
