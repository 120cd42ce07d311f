// Package loader registers the HTTP features of the control API.
//
// A feature bundles a service, its handler and its routes behind the Feature
// interface:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// cmd/start registers the sync and integrity features with a Manager and
// calls LoadAll once the global middleware is in place. Disabled features
// are skipped, so a feature whose dependencies are not configured simply
// exposes no routes.
package loader
