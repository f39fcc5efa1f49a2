package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/apperr"
	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type guard = func(http.Handler) http.Handler

const maxBodySize = 1 << 20 // 1MB

type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// SessionAuthenticator attaches the identity carried by the session cookie.
// It never rejects a request: a missing, tampered or expired session leaves
// the request anonymous.
func SessionAuthenticator(sessions *auth.SessionStore, tokens TokenVerifier) guard {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sc, err := sessions.Read(r)
			if err != nil || sc.Token == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := tokens.Verify(sc.Token)
			if err != nil {
				logger.FromContext(r.Context()).Debug("ignoring invalid session token", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireIdentity rejects anonymous requests.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.IdentityFrom(r.Context()) == nil {
			respondError(w, r, apperr.Unauthorized("Not Authorized for this operation."))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireOwner only lets the request through when the user id in the named
// path parameter belongs to the caller.
func RequireOwner(param string) guard {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := chi.URLParam(r, param)
			if _, err := primitive.ObjectIDFromHex(raw); err != nil {
				respondError(w, r, apperr.BadRequest(fmt.Sprintf("Not a valid UserId: %s", raw)))
				return
			}
			id := auth.IdentityFrom(r.Context())
			if id == nil || id.ID != raw {
				respondError(w, r, apperr.Unauthorized(fmt.Sprintf("Not Authorized to update %s", raw)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type bodyKey struct{}

// RequireBody decodes the JSON body into T and checks it against T's
// validate tags before the handler runs. Handlers read it with bodyFrom.
func RequireBody[T any]() guard {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := new(T)
			if err := decodeBody(w, r, body); err != nil {
				respondError(w, r, err)
				return
			}
			if err := validate.Struct(body); err != nil {
				respondError(w, r, bodyError(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), bodyKey{}, body)))
		})
	}
}

func bodyFrom[T any](r *http.Request) *T {
	body, _ := r.Context().Value(bodyKey{}).(*T)
	return body
}

// decodeBody reads a JSON object from the request. An empty body decodes to
// the zero value.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.BadRequest("Request body too large")
	}
	return apperr.BadRequest("Invalid request body: " + err.Error())
}

func bodyError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Internal(err)
	}

	var missing, invalid []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fe.Field())
		}
	}

	var msgs []string
	if len(missing) > 0 {
		msgs = append(msgs, "Missing property in request body: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		msgs = append(msgs, "Invalid property in request body: "+strings.Join(invalid, ", "))
	}
	return apperr.BadRequest(strings.Join(msgs, "; "))
}

func objectIDParam(r *http.Request, name string) (primitive.ObjectID, string, error) {
	raw := chi.URLParam(r, name)
	id, err := primitive.ObjectIDFromHex(raw)
	return id, raw, err
}
