package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Routes groups the API handlers with the middleware that guards them
type Routes struct {
	Auth    *AuthHandler
	Lookup  *LookupHandler
	Ideas   *IdeaHandler
	Account *AccountHandler

	RequireAuth  mux.MiddlewareFunc
	OptionalAuth mux.MiddlewareFunc
}

// Mount registers every API route on api, which should already have the /api prefix
func (rt Routes) Mount(api *mux.Router) {
	api.HandleFunc("/test", APITest).Methods(http.MethodGet)
	rt.Lookup.RegisterRoutes(api)
	rt.Ideas.RegisterRoutes(api)
	rt.Auth.RegisterRoutes(api.PathPrefix("/auth").Subrouter())

	optional := api.NewRoute().Subrouter()
	optional.Use(rt.OptionalAuth)
	rt.Lookup.RegisterVenueRoutes(optional)
	rt.Ideas.RegisterSpinRoutes(optional)

	protected := api.NewRoute().Subrouter()
	protected.Use(rt.RequireAuth)
	rt.Auth.RegisterProtectedRoutes(protected.PathPrefix("/auth").Subrouter())
	rt.Ideas.RegisterProtectedRoutes(protected)
	rt.Account.RegisterRoutes(protected)
}
