package session

import "strings"

// Deployment environments recognized by the redirect resolver.
const (
	EnvLocal      = "local"
	EnvPreview    = "preview"
	EnvProduction = "production"
)

// RedirectConfig captures the deployment context used to resolve OAuth
// redirect targets.
type RedirectConfig struct {
	// LocalOrigin is the dev server origin used when the browser runs on
	// localhost.
	LocalOrigin string
	// ProductionOrigin is the canonical production domain.
	ProductionOrigin string
	// DeploymentEnv is one of EnvLocal, EnvPreview, EnvProduction.
	DeploymentEnv string
	// PreviewBaseURL is the per-deploy preview origin, when one exists.
	PreviewBaseURL string
}

// Target resolves where the OAuth provider should send the browser after
// consent. Precedence, in order:
//
//  1. hostname is localhost or 127.0.0.1 -> local dev origin
//  2. production deployment              -> canonical production domain
//  3. preview deployment with a configured preview base URL (trailing
//     slash stripped)                    -> that base URL
//  4. anything else                      -> canonical production domain
//
// The /dashboard suffix is always appended: OAuth sign-ins land on the
// dashboard, and the route guard takes over from there.
func (c RedirectConfig) Target(hostname string) string {
	if hostname == "localhost" || hostname == "127.0.0.1" {
		return c.LocalOrigin + "/dashboard"
	}
	if c.DeploymentEnv == EnvProduction {
		return c.ProductionOrigin + "/dashboard"
	}
	if c.DeploymentEnv == EnvPreview && c.PreviewBaseURL != "" {
		return strings.TrimSuffix(c.PreviewBaseURL, "/") + "/dashboard"
	}
	return c.ProductionOrigin + "/dashboard"
}
