// Package middleware decorates chart stores with cross-cutting behavior.
package middleware

import "github.com/aretw0/pfc/pkg/ports"

// Middleware allows wrapping a ChartStore to add behavior.
type Middleware func(ports.ChartStore) ports.ChartStore

// Chain wraps store with mws. The first middleware is the outermost one.
func Chain(store ports.ChartStore, mws ...Middleware) ports.ChartStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
