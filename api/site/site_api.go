package site

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"bizdash/api"
	"bizdash/core/module"
	entity "bizdash/model/entity"
	cmsRepo "bizdash/model/repository/cms"
	"bizdash/service/media"
)

// HomePosts is how many published posts the home page lists.
const HomePosts = 6

func init() {
	api.RegisterRoute(RegisterSiteRoutes)
	api.RegisterGET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
}

// RegisterSiteRoutes mounts the public home page and the static file trees.
func RegisterSiteRoutes(e *echo.Echo, deps *module.Deps) {
	e.Static("/assets", "assets")
	if deps.Media != nil {
		e.Static(media.URLPrefix, deps.Media.Root())
	}

	e.GET("/", func(c echo.Context) error {
		ctx := c.Request().Context()
		var (
			posts []entity.Post
			pages []entity.Page
		)
		// Content comes from the cms module; when it is switched off the home page is bare.
		withContent, err := deps.Enabled.IsEnabled(ctx, "cms")
		if err != nil {
			deps.Logger.Warn("enabled modules unavailable", "error", err)
		}
		if withContent {
			repo := cmsRepo.NewCMSRepository(deps.DB, deps.Cache, deps.Logger)
			eg, gctx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				var err error
				posts, err = repo.PublishedPosts(gctx, HomePosts)
				return err
			})
			eg.Go(func() error {
				var err error
				pages, err = repo.PublishedPages(gctx)
				return err
			})
			if err := eg.Wait(); err != nil {
				return err
			}
		}
		return deps.RenderPublic(c, http.StatusOK, "home.html", deps.PublicData(c, "Home", echo.Map{
			"Posts": posts,
			"Pages": pages,
		}))
	})
}
