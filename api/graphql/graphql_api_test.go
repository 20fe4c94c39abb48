package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdash/core/module"
	"bizdash/core/module/moduletest"
	"bizdash/graphql/registry"
)

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func newHarness(t *testing.T) *moduletest.Harness {
	t.Helper()
	table := module.RouteTable{
		"proposals": {Dashboard: func(r *module.Router, _ *module.Deps) {}},
		"cms":       {},
	}
	h := moduletest.New(t, table, "proposals")
	RegisterGraphQLRoutes(h.Echo.Group(module.DashboardPrefix), h.Deps)
	return h
}

func query(t *testing.T, h *moduletest.Harness, q string) gqlResponse {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"query": q})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, module.DashboardPrefix+Endpoint, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out gqlResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestModulesQuery(t *testing.T) {
	h := newHarness(t)
	res := query(t, h, `{ modules { name enabled loaded } stats { proposals pages } }`)
	require.Empty(t, res.Errors)

	var mods []struct {
		Name    string
		Enabled bool
		Loaded  bool
	}
	require.NoError(t, json.Unmarshal(res.Data["modules"], &mods))
	require.Len(t, mods, 2)
	byName := map[string]bool{}
	for _, m := range mods {
		byName[m.Name] = m.Enabled
		if m.Name == "proposals" {
			assert.True(t, m.Loaded)
		}
		if m.Name == "cms" {
			assert.False(t, m.Loaded, "cms has no routes in this table")
		}
	}
	assert.True(t, byName["proposals"])
	assert.False(t, byName["cms"])
}

func TestModuleMutations(t *testing.T) {
	h := newHarness(t)

	res := query(t, h, `mutation { enableModule(name: "cms") }`)
	require.Empty(t, res.Errors)
	var names []string
	require.NoError(t, json.Unmarshal(res.Data["enableModule"], &names))
	assert.Equal(t, []string{"proposals", "cms"}, names)

	res = query(t, h, `mutation { disableModule(name: "proposals") }`)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0].Message, "protected")

	res = query(t, h, `mutation { enableModule(name: "nope") }`)
	require.NotEmpty(t, res.Errors)

	enabled, err := h.Deps.Enabled.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"proposals", "cms"}, enabled)
}

func TestSetSetting(t *testing.T) {
	h := newHarness(t)

	res := query(t, h, `mutation { setSetting(category: "general", key: "company_name", value: "Acme") { value type } }`)
	require.Empty(t, res.Errors)
	got, err := h.Deps.Settings.GetString(context.Background(), "general", "company_name", "")
	require.NoError(t, err)
	assert.Equal(t, "Acme", got)

	res = query(t, h, `{ settings(category: "general") { key value } }`)
	require.Empty(t, res.Errors)
	assert.JSONEq(t, `[{"key":"company_name","value":"Acme"}]`, string(res.Data["settings"]))

	res = query(t, h, `mutation { setSetting(category: "modules", key: "enabled_modules", value: "[]", type: "json") { value } }`)
	require.NotEmpty(t, res.Errors)

	res = query(t, h, `mutation { setSetting(category: "general", key: "blob", value: "{bad", type: "json") { value } }`)
	require.NotEmpty(t, res.Errors)
}

func TestExtension(t *testing.T) {
	registry.Register("testGreet", func(_ context.Context, deps *module.Deps, args map[string]interface{}) (interface{}, error) {
		return map[string]interface{}{"hello": args["who"], "app": deps.Config.AppName}, nil
	})
	defer registry.Unregister("testGreet")

	h := newHarness(t)
	res := query(t, h, `{ _extension(name: "testGreet", args: "{\"who\":\"ada\"}") }`)
	require.Empty(t, res.Errors)
	var s string
	require.NoError(t, json.Unmarshal(res.Data["_extension"], &s))
	assert.JSONEq(t, `{"hello":"ada","app":"Dashboard"}`, s)

	res = query(t, h, `{ _extension(name: "missing") }`)
	require.NotEmpty(t, res.Errors)
}

func TestPlayground(t *testing.T) {
	h := newHarness(t)
	rec := h.Do(http.MethodGet, module.DashboardPrefix+Endpoint+"/playground", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "GraphQLPlayground.init")
}
