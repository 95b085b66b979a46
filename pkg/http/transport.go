package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	dcoerr "github.com/fluxcd/dco/pkg/errors"
)

// NewAPIRouter gives a router with the routes of the DCO checker
// named, but with no handlers attached.
func NewAPIRouter() *mux.Router {
	r := mux.NewRouter()

	r.NewRoute().Name(Webhook).Methods("POST").Path("/webhook")
	r.NewRoute().Name(Health).Methods("GET").Path("/healthz")
	r.NewRoute().Name(Metrics).Methods("GET").Path("/metrics")

	return r
}

// NotFoundRoute answers anything no other route has matched. Named
// routes left without a handler are answered the same way.
func NotFoundRoute(r *mux.Router) {
	for _, name := range []string{Webhook, Health, Metrics} {
		if route := r.Get(name); route != nil && route.GetHandler() == nil {
			route.HandlerFunc(NotFoundHandler)
		}
	}
	r.NewRoute().Name(NotFound).HandlerFunc(NotFoundHandler)
}

func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, http.StatusNotFound, MakeAPINotFound(r.URL.Path))
}

func WriteError(w http.ResponseWriter, r *http.Request, code int, err error) {
	// An Accept header with "application/json" is sent by clients
	// understanding how to decode JSON errors. GitHub doesn't send
	// one, so it just gets the error text.
	if len(r.Header.Get("Accept")) > 0 {
		switch negotiateContentType(r, []string{"application/json", "text/plain"}) {
		case "application/json":
			body, encodeErr := json.Marshal(err)
			if encodeErr != nil {
				w.Header().Set(http.CanonicalHeaderKey("Content-Type"), "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprintf(w, "Error encoding error response: %s\n\nOriginal error: %s", encodeErr.Error(), err.Error())
				return
			}
			w.Header().Set(http.CanonicalHeaderKey("Content-Type"), "application/json; charset=utf-8")
			w.WriteHeader(code)
			w.Write(body)
			return
		case "text/plain":
			w.Header().Set(http.CanonicalHeaderKey("Content-Type"), "text/plain; charset=utf-8")
			w.WriteHeader(code)
			switch err := err.(type) {
			case *dcoerr.Error:
				fmt.Fprint(w, err.Help)
			default:
				fmt.Fprint(w, err.Error())
			}
			return
		}
	}
	w.Header().Set(http.CanonicalHeaderKey("Content-Type"), "text/plain; charset=utf-8")
	w.WriteHeader(code)
	fmt.Fprint(w, err.Error())
}

func JSONResponse(w http.ResponseWriter, r *http.Request, result interface{}) {
	body, err := json.Marshal(result)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func ErrorResponse(w http.ResponseWriter, r *http.Request, apiError error) {
	var outErr *dcoerr.Error
	var code int
	var ok bool

	err := errors.Cause(apiError)
	if outErr, ok = err.(*dcoerr.Error); !ok {
		outErr = dcoerr.CoverAllError(apiError)
	}
	switch outErr.Type {
	case dcoerr.Missing:
		code = http.StatusNotFound
	case dcoerr.User:
		code = http.StatusUnprocessableEntity
	case dcoerr.Server:
		code = http.StatusInternalServerError
	default:
		code = http.StatusInternalServerError
	}
	WriteError(w, r, code, outErr)
}
