package graphqlserver

import (
	"context"
	"encoding/json"
	"fmt"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"bizdash/core/module"
	"bizdash/graphql"
	gqlmodels "bizdash/graphql/models"
	"bizdash/graphql/registry"
	"bizdash/graphql/resolvers"
)

// RootResolver is the root for graphql-go. Query and Mutation fields share it.
type RootResolver struct {
	deps *module.Deps
	res  *resolvers.Resolver
}

func NewRootResolver(deps *module.Deps) *RootResolver {
	return &RootResolver{deps: deps, res: resolvers.NewResolver(deps)}
}

func (r *RootResolver) Modules(ctx context.Context) ([]*gqlmodels.Module, error) {
	return r.res.Modules(ctx)
}

// NameArgs is the single name argument of module, enableModule and disableModule.
type NameArgs struct {
	Name string
}

func (r *RootResolver) Module(ctx context.Context, args NameArgs) (*gqlmodels.Module, error) {
	return r.res.Module(ctx, args.Name)
}

func (r *RootResolver) MenuItems(ctx context.Context) ([]*gqlmodels.MenuItem, error) {
	return r.res.MenuItems(ctx)
}

type SettingsArgs struct {
	Category string
}

func (r *RootResolver) Settings(ctx context.Context, args SettingsArgs) ([]*gqlmodels.Setting, error) {
	return r.res.Settings(ctx, args.Category)
}

func (r *RootResolver) Stats(ctx context.Context) (*gqlmodels.Stats, error) {
	return r.res.Stats(ctx)
}

// ExtensionArgs for _extension(name, args).
type ExtensionArgs struct {
	Name string
	Args *string
}

func (r *RootResolver) Extension(ctx context.Context, args ExtensionArgs) (*string, error) {
	m := make(map[string]interface{})
	if args.Args != nil && *args.Args != "" {
		if err := json.Unmarshal([]byte(*args.Args), &m); err != nil {
			return nil, fmt.Errorf("extension %s: args must be a JSON object: %w", args.Name, err)
		}
	}
	out, err := registry.Resolve(ctx, r.deps, args.Name, m)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

func (r *RootResolver) EnableModule(ctx context.Context, args NameArgs) ([]string, error) {
	return r.res.EnableModule(ctx, args.Name)
}

func (r *RootResolver) DisableModule(ctx context.Context, args NameArgs) ([]string, error) {
	return r.res.DisableModule(ctx, args.Name)
}

type SetSettingArgs struct {
	Category string
	Key      string
	Value    string
	Type     *string
}

func (r *RootResolver) SetSetting(ctx context.Context, args SetSettingArgs) (*gqlmodels.Setting, error) {
	typ := ""
	if args.Type != nil {
		typ = *args.Type
	}
	return r.res.SetSetting(ctx, args.Category, args.Key, args.Value, typ)
}

// NewSchema parses the base schema plus registered extensions.
func NewSchema(deps *module.Deps) (*gql.Schema, error) {
	return gql.ParseSchema(graphql.Schema(), NewRootResolver(deps), gql.UseFieldResolvers())
}

// Handler returns an http.Handler for GraphQL (relay format).
func Handler(schema *gql.Schema) *relay.Handler {
	return &relay.Handler{Schema: schema}
}
