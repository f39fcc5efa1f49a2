package http

import (
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Auth     AuthService
	Catalog  CatalogService
	Users    UserService
	Checkout CheckoutService
	Sessions *auth.SessionStore
	Tokens   TokenVerifier
}

type route struct {
	Method  string
	Pattern string
	Guards  []guard
	Handler http.HandlerFunc
}

func guards(g ...guard) []guard { return g }

// routes is the full API surface. Guards run in order before the handler.
func routes(d Deps) []route {
	var (
		authH     = NewAuthHandler(d.Auth, d.Sessions)
		products  = NewProductHandler(d.Catalog)
		users     = NewUserHandler(d.Users)
		orders    = NewOrderHandler(d.Checkout)
		authn     = SessionAuthenticator(d.Sessions, d.Tokens)
		productIn = RequireBody[productRequest]()
	)

	return []route{
		{http.MethodGet, "/sections", nil, Sections},

		{http.MethodPost, "/auth/register", guards(RequireBody[registerRequest]()), authH.Register},
		{http.MethodPost, "/auth/login", guards(RequireBody[loginRequest]()), authH.Login},
		{http.MethodPost, "/auth/logout", nil, authH.Logout},
		{http.MethodGet, "/auth/current-user", guards(authn), authH.CurrentUser},

		{http.MethodGet, "/products", nil, products.List},
		{http.MethodGet, "/products/{productId}", nil, products.Get},
		{http.MethodPost, "/products", guards(authn, RequireIdentity, productIn), products.Create},
		{http.MethodPatch, "/products/{productId}", guards(authn, RequireIdentity, productIn), products.Update},
		{http.MethodDelete, "/products/{productId}", guards(authn, RequireIdentity), products.Delete},

		{http.MethodPost, "/orders", guards(authn, RequireIdentity, RequireBody[orderRequest]()), orders.Create},

		{http.MethodPatch, "/users/{userId}", guards(authn, RequireIdentity, RequireOwner("userId")), users.Update},
	}
}

// NewRouter builds the chi router with /health at the root and the API under
// /api. Cross-cutting middleware is left to the caller.
func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()
	r.Get("/health", Health)
	r.Route("/api", func(api chi.Router) {
		for _, rt := range routes(d) {
			api.With(rt.Guards...).Method(rt.Method, rt.Pattern, rt.Handler)
		}
	})
	return r
}

func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/sections
func Sections(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, domain.Sections)
}
