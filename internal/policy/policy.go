package policy

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Aryan3212/yelpcamp/internal/config"
	"github.com/Aryan3212/yelpcamp/internal/session"
)

// Origin allowlists for the rendered front end. These are fixed product
// requirements, not configuration: the pages load their scripts and
// styles from these CDNs, the map widget talks to maptiler, and images
// come from the Cloudinary bucket.
var (
	scriptSrcURLs = []string{
		"https://cdnjs.cloudflare.com",
		"https://cdn.jsdelivr.net",
		"https://unpkg.com",
		"https://kit.fontawesome.com",
	}
	styleSrcURLs = []string{
		"https://unpkg.com",
		"https://cdn.jsdelivr.net",
		"https://cdnjs.cloudflare.com",
	}
	connectSrcURLs = []string{
		"https://api.maptiler.com",
		"https://ka-f.fontawesome.com/",
	}
	fontSrcURLs = []string{
		"https://ka-f.fontawesome.com/",
	}
	imgSrcURLs = []string{
		"https://res.cloudinary.com/dwz8ueclf/",
	}
)

// Config is the process-wide security policy. It is immutable after
// startup and passed explicitly to every component that needs it.
type Config struct {
	mode       string
	cookieName string
	csp        string
}

// New derives the policy from the deployment mode once, at startup.
func New(cfg config.Config) *Config {
	return &Config{
		mode:       cfg.Mode,
		cookieName: cfg.CookieName,
		csp:        buildCSP(),
	}
}

// Production reports whether the policy is in production mode.
func (c *Config) Production() bool {
	return c.mode == config.ModeProduction
}

// ContentSecurityPolicy returns the CSP header value.
func (c *Config) ContentSecurityPolicy() string {
	return c.csp
}

// CookieOptions derives the session cookie attributes from the mode.
// HttpOnly always; Secure only in production so plain-HTTP local
// development keeps working; SameSite=None in both modes because
// cross-site embedding is a product requirement.
func (c *Config) CookieOptions() session.CookieOptions {
	return session.CookieOptions{
		Name:     c.cookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Production(),
		SameSite: http.SameSiteNoneMode,
	}
}

// SecureHeaders is the gin middleware applying the security headers to
// every response.
func (c *Config) SecureHeaders() gin.HandlerFunc {
	return func(g *gin.Context) {
		h := g.Writer.Header()
		h.Set("Content-Security-Policy", c.csp)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Referrer-Policy", "no-referrer")
		g.Next()
	}
}

// 'unsafe-inline' for script-src and script-src-attr is a deliberate,
// documented relaxation: the rendered pages rely on inline handlers.
func buildCSP() string {
	directives := []string{
		directive("default-src", "'none'"),
		directive("object-src", "'none'"),
		directive("manifest-src", "'self'"),
		directive("connect-src", append([]string{"'self'"}, connectSrcURLs...)...),
		directive("script-src", append([]string{"'unsafe-inline'", "'self'"}, scriptSrcURLs...)...),
		directive("script-src-attr", "'unsafe-inline'", "'self'"),
		directive("style-src", append([]string{"'self'", "'unsafe-inline'"}, styleSrcURLs...)...),
		directive("worker-src", "'self'", "blob:"),
		directive("child-src", "blob:"),
		directive("img-src", append([]string{"'self'", "blob:", "data:"}, imgSrcURLs...)...),
		directive("font-src", append([]string{"'self'"}, fontSrcURLs...)...),
	}
	return strings.Join(directives, "; ")
}

func directive(name string, sources ...string) string {
	return name + " " + strings.Join(sources, " ")
}
