package parts

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// CriticalCSS inlines the site stylesheet into page heads. The file is read once.
type CriticalCSS struct {
	path string
	once sync.Once
	css  string
}

func NewCriticalCSS(assetsDir string) *CriticalCSS {
	return &CriticalCSS{path: filepath.Join(assetsDir, "css", "critical.css")}
}

// Get returns the stylesheet, or "" when it cannot be read.
func (c *CriticalCSS) Get() string {
	c.once.Do(func() {
		css, err := os.ReadFile(c.path)
		if err != nil {
			slog.Debug("critical css unavailable", "path", c.path, "error", err)
			return
		}
		c.css = string(css)
	})
	return c.css
}
