package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddelware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/authorizedtester/testgate/pkg/gate"
)

type GateOption func(*gateOptions)

type gateOptions struct {
	skipper echomiddelware.Skipper
}

// WithSkipper excludes the requests matched by skipper from the gate.
func WithSkipper(skipper echomiddelware.Skipper) GateOption {
	return func(o *gateOptions) {
		o.skipper = skipper
	}
}

// Gate returns a middleware that runs every request through the engine.
// Allowed requests continue down the chain with the marker header attached;
// challenged and denied requests are answered here with an empty body.
func Gate(engine *gate.Engine, options ...GateOption) echo.MiddlewareFunc {
	opts := &gateOptions{
		skipper: echomiddelware.DefaultSkipper,
	}
	for _, option := range options {
		option(opts)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if opts.skipper(c) {
				return next(c)
			}
			req := c.Request()
			verdict := evaluate(req.Context(), engine, req)
			if applyVerdict(c.Response(), verdict) {
				return next(c)
			}
			return nil
		}
	}
}

// GateHandler is Gate for plain net/http handler chains.
func GateHandler(engine *gate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			verdict := evaluate(r.Context(), engine, r)
			if applyVerdict(w, verdict) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// evaluate never fails: header parse errors and panics both end in Deny.
func evaluate(ctx context.Context, engine *gate.Engine, r *http.Request) (verdict gate.Verdict) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Ctx(ctx).Error().Interface("Panic", rec).Msg("gate evaluation panicked, denying request")
			verdict = gate.Verdict{Outcome: gate.Deny, Rule: gate.RuleDefaultDeny}
		}
	}()

	v, err := engine.Evaluate(gate.DescribeRequest(r))
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("RemoteAddr", r.RemoteAddr).Msg("rejecting unparsable authorization header")
		return gate.Verdict{Outcome: gate.Deny, Rule: gate.RuleDefaultDeny}
	}
	log.Ctx(ctx).Trace().
		Stringer("Outcome", v.Outcome).
		Str("Rule", string(v.Rule)).
		Str("Host", r.Host).
		Str("RemoteAddr", r.RemoteAddr).
		Msg("gate verdict")
	return v
}

// applyVerdict writes the verdict to w and reports whether the request may
// continue to the next handler.
func applyVerdict(w http.ResponseWriter, verdict gate.Verdict) bool {
	switch verdict.Outcome {
	case gate.Allow:
		if verdict.Marker != "" {
			w.Header().Set(gate.MarkerHeader, verdict.Marker)
		}
		return true
	case gate.ChallengeBasicAuth:
		clearContent(w.Header())
		w.Header().Set(echo.HeaderWWWAuthenticate, gate.ChallengeHeaderValue)
		w.WriteHeader(http.StatusUnauthorized)
		return false
	default:
		clearContent(w.Header())
		w.WriteHeader(http.StatusForbidden)
		return false
	}
}

// clearContent drops content headers set by earlier handlers; rejections
// carry no body.
func clearContent(header http.Header) {
	header.Del(echo.HeaderContentType)
	header.Del(echo.HeaderContentLength)
	header.Del(echo.HeaderContentEncoding)
}
