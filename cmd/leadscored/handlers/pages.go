package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

const fallbackIndex = `<!DOCTYPE html>
<html>
<head><title>Lead Scoring Service</title></head>
<body>
<h1>Lead Scoring Service</h1>
<p>POST customer features to /predict to score a lead.</p>
<p>The dashboard lives at <a href="/app">/app</a>.</p>
</body>
</html>
`

const fallbackDashboard = `<!DOCTYPE html>
<html>
<head><title>Lead Scoring Dashboard</title></head>
<body>
<h1>Lead Scoring Dashboard</h1>
<p>The dashboard template is not installed.</p>
</body>
</html>
`

// PageHandler serves one static HTML page. The page is read from
// templateDir at startup; when the file is absent the built-in
// fallback keeps the route alive.
func PageHandler(templateDir string, name string, fallback string) echo.HandlerFunc {
	page := fallback
	if content, err := os.ReadFile(filepath.Join(templateDir, name)); err == nil {
		page = string(content)
	}
	return func(c echo.Context) error {
		return c.HTML(http.StatusOK, page)
	}
}

// IndexHandler serves the landing page.
func IndexHandler(templateDir string) echo.HandlerFunc {
	return PageHandler(templateDir, "index.html", fallbackIndex)
}

// DashboardHandler serves the scoring dashboard.
func DashboardHandler(templateDir string) echo.HandlerFunc {
	return PageHandler(templateDir, "dashboard.html", fallbackDashboard)
}
