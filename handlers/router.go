// Package handlers implements the gateway's request router: it picks an
// operation from the request target, queries openFDA, and renders the
// records as an HTML fragment.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/giygas/openfda-gateway/drugparser"
	"github.com/giygas/openfda-gateway/interfaces"
	"github.com/giygas/openfda-gateway/logging"
	"github.com/giygas/openfda-gateway/render"
	"github.com/go-chi/chi/v5/middleware"
)

// AuthChallenge is sent with every 401 response
const AuthChallenge = `Basic realm="openfda"`

const (
	overrideSecret   = "secret"
	overrideRedirect = "redirect"
)

// HasOverride reports whether target forces a 401 or 302 regardless of the
// route it would otherwise reach
func HasOverride(target string) bool {
	return strings.Contains(target, overrideSecret) || strings.Contains(target, overrideRedirect)
}

// RenderedResponse is the full response for one request. It is built by
// Dispatch and written once.
type RenderedResponse struct {
	StatusCode int
	Header     http.Header
	Body       string
}

// Write sends the response. Content-Type is always text/html.
func (resp RenderedResponse) Write(w http.ResponseWriter) {
	for key, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write([]byte(resp.Body)); err != nil {
		logging.Warn("Failed to write response body", "error", err)
	}
}

// Router dispatches request targets. It holds no per-request state and is
// shared by all requests.
type Router struct {
	source    interfaces.DrugSource
	pages     interfaces.PageSource
	renderer  render.Renderer
	validator interfaces.InputValidator
	baseURL   string
}

// NewRouter creates a router. baseURL is the Location sent by redirect
// paths; validator may be nil to skip input inspection.
func NewRouter(source interfaces.DrugSource, pages interfaces.PageSource, renderer render.Renderer,
	validator interfaces.InputValidator, baseURL string) *Router {
	return &Router{
		source:    source,
		pages:     pages,
		renderer:  renderer,
		validator: validator,
		baseURL:   baseURL,
	}
}

// ServeHTTP dispatches on the raw request target, query included
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.Dispatch(r.Context(), r.URL.RequestURI()).Write(w)
}

// Dispatch runs the state machine for one request target:
//
//   - "/" renders the home page
//   - the first of searchDrug, listDrugs, searchCompany, listCompanies,
//     listWarnings contained in the target runs that operation
//   - anything else is 404 with the not-found page
//
// Afterwards, independently of the branch taken, a target containing
// "secret" becomes 401 and otherwise one containing "redirect" becomes 302.
func (rt *Router) Dispatch(ctx context.Context, target string) RenderedResponse {
	resp := RenderedResponse{
		StatusCode: http.StatusNotFound,
		Header:     make(http.Header),
	}

	op := SelectOperation(target)
	switch op {
	case OpUnknown:
		resp.Body = rt.notFoundPage()

	case OpHome:
		page, err := rt.pages.HomePage()
		if err != nil {
			logging.Error("Failed to load home page", "error", err, "request_id", middleware.GetReqID(ctx))
			resp.StatusCode = http.StatusInternalServerError
			resp.Body = render.ErrorPage(http.StatusInternalServerError)
			break
		}
		resp.StatusCode = http.StatusOK
		resp.Body = page

	default:
		items, err := rt.run(ctx, op, target)
		if err != nil {
			status := statusForError(err)
			logging.Warn("Operation failed",
				"operation", op.String(),
				"status", status,
				"error", err,
				"request_id", middleware.GetReqID(ctx),
			)
			resp.StatusCode = status
			resp.Body = render.ErrorPage(status)
			break
		}
		resp.StatusCode = http.StatusOK
		resp.Body = rt.renderer.List(items)
	}

	if strings.Contains(target, overrideSecret) {
		resp.StatusCode = http.StatusUnauthorized
		resp.Header.Set("WWW-Authenticate", AuthChallenge)
	} else if strings.Contains(target, overrideRedirect) {
		resp.StatusCode = http.StatusFound
		resp.Header.Set("Location", rt.baseURL)
	}

	return resp
}

// run executes a listing or search operation and returns the display items
func (rt *Router) run(ctx context.Context, op Operation, target string) ([]string, error) {
	switch op {
	case OpSearchDrug:
		params, err := requiredQuery(target)
		if err != nil {
			return nil, err
		}
		ingredient, err := params.Require(ParamActiveIngredient)
		if err != nil {
			return nil, err
		}
		limit := params.LimitOr(DefaultSearchLimit)
		rt.inspect(op, ingredient, limit)

		records, err := rt.source.SearchDrugs(ctx, ingredient, limit)
		if err != nil {
			return nil, err
		}
		return drugparser.ParseDrugLabels(records), nil

	case OpSearchCompany:
		params, err := requiredQuery(target)
		if err != nil {
			return nil, err
		}
		company, err := params.Require(ParamCompany)
		if err != nil {
			return nil, err
		}
		limit := params.LimitOr(DefaultSearchLimit)
		rt.inspect(op, company, limit)

		records, err := rt.source.SearchCompanies(ctx, company, limit)
		if err != nil {
			return nil, err
		}
		return drugparser.ParseCompanyInfo(records), nil
	}

	// The three listings share the unfiltered drug listing; listCompanies
	// has no company-specific upstream call.
	params, err := optionalQuery(target)
	if err != nil {
		return nil, err
	}
	limit := params.LimitOr("")
	rt.inspect(op, "", limit)

	records, err := rt.source.ListDrugs(ctx, limit)
	if err != nil {
		return nil, err
	}

	switch op {
	case OpListCompanies:
		return drugparser.ParseCompanyInfo(records), nil
	case OpListWarnings:
		return drugparser.ParseWarnings(records), nil
	default:
		return drugparser.ParseDrugLabels(records), nil
	}
}

// inspect logs suspicious user input. Values are still forwarded.
func (rt *Router) inspect(op Operation, term, limit string) {
	if rt.validator == nil {
		return
	}
	if term != "" {
		if err := rt.validator.ValidateInput(term); err != nil {
			logging.Warn("Unusual user input", "operation", op.String(), "term", term, "reason", err)
		}
	}
	if limit != "" {
		if err := rt.validator.ValidateLimit(limit); err != nil {
			logging.Warn("Unusual user input", "operation", op.String(), "limit", limit, "reason", err)
		}
	}
}

func (rt *Router) notFoundPage() string {
	page, err := rt.pages.NotFoundPage()
	if err != nil {
		logging.Error("Failed to load not-found page, using fallback", "error", err)
		return render.FallbackNotFoundPage
	}
	return page
}

// statusForError maps dispatch errors to response codes: request problems
// are 400, everything from the upstream side is 502
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrMissingQuery), errors.Is(err, ErrMissingParam), errors.Is(err, ErrMalformedQuery):
		return http.StatusBadRequest
	default:
		// openfda.ErrUpstreamUnreachable, openfda.ErrMalformedResponse and
		// anything unexpected from the source
		return http.StatusBadGateway
	}
}
