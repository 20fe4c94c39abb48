package resolvers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"bizdash/core/module"
	"bizdash/core/settings"
	gqlmodels "bizdash/graphql/models"
	entity "bizdash/model/entity"
	cmsRepo "bizdash/model/repository/cms"
	proposalRepo "bizdash/model/repository/proposal"
)

// Resolver answers admin queries from the application dependencies.
type Resolver struct {
	deps *module.Deps
}

func NewResolver(deps *module.Deps) *Resolver {
	return &Resolver{deps: deps}
}

// Modules returns every discovered module in discovery order.
func (r *Resolver) Modules(ctx context.Context) ([]*gqlmodels.Module, error) {
	status, err := r.deps.Loader.Status(ctx)
	if err != nil {
		return nil, err
	}
	names := r.deps.Loader.Names()
	out := make([]*gqlmodels.Module, 0, len(names))
	for _, name := range names {
		st, ok := status[name]
		if !ok {
			continue
		}
		out = append(out, r.mapModule(name, st))
	}
	return out, nil
}

// Module returns one module, or nil when it was not discovered.
func (r *Resolver) Module(ctx context.Context, name string) (*gqlmodels.Module, error) {
	if !r.deps.Loader.Has(name) {
		return nil, nil
	}
	status, err := r.deps.Loader.Status(ctx)
	if err != nil {
		return nil, err
	}
	return r.mapModule(name, status[name]), nil
}

func (r *Resolver) mapModule(name string, st module.Status) *gqlmodels.Module {
	m := &gqlmodels.Module{
		Name:        name,
		DisplayName: st.DisplayName,
		Version:     st.Version,
		Description: st.Description,
		Category:    st.Category,
		Core:        st.Core,
		Enabled:     st.Enabled,
		Loaded:      st.Loaded,
		MenuItems:   []*gqlmodels.MenuItem{},
	}
	info := r.deps.Loader.Info(name)
	if info.Loaded {
		at := info.LoadedAt.Format(time.RFC3339)
		m.LoadedAt = &at
	}
	if info.Config != nil {
		m.MenuItems = mapMenuItems(info.Config.MenuItems)
	}
	return m
}

// MenuItems returns the sidebar entries of enabled modules.
func (r *Resolver) MenuItems(ctx context.Context) ([]*gqlmodels.MenuItem, error) {
	items, err := r.deps.Loader.MenuItems(ctx)
	if err != nil {
		return nil, err
	}
	return mapMenuItems(items), nil
}

func mapMenuItems(items []module.MenuItem) []*gqlmodels.MenuItem {
	out := make([]*gqlmodels.MenuItem, 0, len(items))
	for _, it := range items {
		out = append(out, &gqlmodels.MenuItem{
			Label:  it.Label,
			Path:   it.Path,
			Icon:   it.Icon,
			Order:  int32(it.Order),
			Module: it.Module,
			Core:   it.Core,
		})
	}
	return out
}

func (r *Resolver) Settings(ctx context.Context, category string) ([]*gqlmodels.Setting, error) {
	rows, err := r.deps.Settings.Rows(ctx, category)
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.Setting, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapSetting(row))
	}
	return out, nil
}

func mapSetting(row entity.Setting) *gqlmodels.Setting {
	return &gqlmodels.Setting{Category: row.Category, Key: row.Key, Value: row.Value, Type: row.Type}
}

// Stats counts proposals and content in parallel.
func (r *Resolver) Stats(ctx context.Context) (*gqlmodels.Stats, error) {
	var (
		proposals, pages, posts, media int64
	)
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		proposals, err = proposalRepo.NewProposalRepository(r.deps.DB).Count(gctx)
		return err
	})
	eg.Go(func() error {
		var err error
		pages, posts, media, err = cmsRepo.NewCMSRepository(r.deps.DB, r.deps.Cache, r.deps.Logger).Counts(gctx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &gqlmodels.Stats{
		Proposals: int32(proposals),
		Pages:     int32(pages),
		Posts:     int32(posts),
		Media:     int32(media),
	}, nil
}

func (r *Resolver) EnableModule(ctx context.Context, name string) ([]string, error) {
	if !r.deps.Loader.Has(name) {
		return nil, fmt.Errorf("unknown module %q", name)
	}
	return r.deps.Enabled.Enable(ctx, name)
}

func (r *Resolver) DisableModule(ctx context.Context, name string) ([]string, error) {
	return r.deps.Enabled.Disable(ctx, name)
}

// SetSetting stores value. json values must be valid JSON; typ defaults to string.
func (r *Resolver) SetSetting(ctx context.Context, category, key, value, typ string) (*gqlmodels.Setting, error) {
	if settings.IsReserved(category, key) {
		return nil, fmt.Errorf("%w: use enableModule or disableModule", settings.ErrReservedSetting)
	}
	if typ == "" {
		typ = entity.SettingTypeString
	}
	var v interface{} = value
	if typ == entity.SettingTypeJSON {
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			return nil, fmt.Errorf("setting %s/%s: invalid json: %w", category, key, err)
		}
	}
	if err := r.deps.Settings.Set(ctx, category, key, v, typ); err != nil {
		return nil, err
	}
	stored, err := settings.Encode(v, typ)
	if err != nil {
		return nil, err
	}
	return &gqlmodels.Setting{Category: category, Key: key, Value: stored, Type: typ}, nil
}
