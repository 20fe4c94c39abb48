package graphqlserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdash/core/module"
	"bizdash/core/module/moduletest"
	"bizdash/model/repository/proposal"
)

func TestNewSchema_BindsResolvers(t *testing.T) {
	h := moduletest.New(t, module.RouteTable{"proposals": {}}, "proposals")
	schema, err := NewSchema(h.Deps)
	require.NoError(t, err)

	_, err = proposal.NewProposalRepository(h.Deps.DB).Create(context.Background(), proposal.Input{
		Title: "Website", CustomerName: "Ada", CustomerEmail: "ada@example.test",
	})
	require.NoError(t, err)

	res := schema.Exec(context.Background(), `{ stats { proposals pages } menuItems { label } module(name: "proposals") { name version category } }`, "", nil)
	require.Empty(t, res.Errors)

	var data struct {
		Stats struct {
			Proposals int
			Pages     int
		}
		MenuItems []struct{ Label string }
		Module    struct {
			Name     string
			Version  string
			Category string
		}
	}
	require.NoError(t, json.Unmarshal(res.Data, &data))
	assert.Equal(t, 1, data.Stats.Proposals)
	assert.Equal(t, 0, data.Stats.Pages)
	assert.Empty(t, data.MenuItems)
	assert.Equal(t, "proposals", data.Module.Name)
	assert.Equal(t, module.DefaultVersion, data.Module.Version)
	assert.Equal(t, module.DefaultCategory, data.Module.Category)
}

func TestModule_UnknownIsNull(t *testing.T) {
	h := moduletest.New(t, module.RouteTable{})
	schema, err := NewSchema(h.Deps)
	require.NoError(t, err)

	res := schema.Exec(context.Background(), `{ module(name: "ghost") { name } }`, "", nil)
	require.Empty(t, res.Errors)
	assert.JSONEq(t, `{"module":null}`, string(res.Data))
}
