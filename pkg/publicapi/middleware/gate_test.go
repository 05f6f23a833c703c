//go:build unit || !integration

package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/authorizedtester/testgate/pkg/gate"
)

type GateMiddlewareTestSuite struct {
	suite.Suite
	reached bool
}

func TestGateMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(GateMiddlewareTestSuite))
}

func (suite *GateMiddlewareTestSuite) SetupTest() {
	suite.reached = false
}

func (suite *GateMiddlewareTestSuite) router(config *gate.Config, options ...GateOption) *echo.Echo {
	router := echo.New()
	router.Use(Gate(gate.NewEngine(config), options...))
	handler := func(c echo.Context) error {
		suite.reached = true
		return c.String(http.StatusOK, "application")
	}
	router.GET("/*", handler)
	return router
}

func (suite *GateMiddlewareTestSuite) serve(router http.Handler, remoteAddr, host, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/some/page", nil)
	req.RemoteAddr = remoteAddr
	req.Host = host
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func (suite *GateMiddlewareTestSuite) TestChallengeWithoutCredentials() {
	router := suite.router(gate.NewConfig(gate.WithUserAllowList("admin:pw")))

	rec := suite.serve(router, "10.0.0.5:4000", "test.example.com", "")
	suite.Equal(http.StatusUnauthorized, rec.Code)
	suite.Equal(`Basic realm="TestEnvironment"`, rec.Header().Get(echo.HeaderWWWAuthenticate))
	suite.Empty(rec.Body.String())
	suite.Empty(rec.Header().Get(gate.MarkerHeader))
	suite.False(suite.reached)
}

func (suite *GateMiddlewareTestSuite) TestAllowByCredentials() {
	router := suite.router(gate.NewConfig(gate.WithUserAllowList("admin:pw")))

	rec := suite.serve(router, "10.0.0.5:4000", "test.example.com", "Basic YWRtaW46cHc=")
	suite.Equal(http.StatusOK, rec.Code)
	suite.Equal("Access by credentials", rec.Header().Get(gate.MarkerHeader))
	suite.Equal("application", rec.Body.String())
	suite.True(suite.reached)
}

func (suite *GateMiddlewareTestSuite) TestAllowByIP() {
	router := suite.router(gate.NewConfig(
		gate.WithIPAllowList("10.0.0.5"),
		gate.WithUserAllowList("admin:pw"),
	))

	rec := suite.serve(router, "10.0.0.5:4000", "test.example.com", "")
	suite.Equal(http.StatusOK, rec.Code)
	suite.Equal("Access by IP", rec.Header().Get(gate.MarkerHeader))
	suite.True(suite.reached)
}

func (suite *GateMiddlewareTestSuite) TestDeny() {
	router := suite.router(gate.NewConfig(gate.WithUserAllowList("admin:pw")))

	for _, authorization := range []string{
		"Basic !!!not-base64!!!",
		"Basic " + "YWRtaW46d3Jvbmc=",
		"Bearer token",
		"B@sic YWRtaW46cHc=",
	} {
		suite.SetupTest()
		rec := suite.serve(router, "10.0.0.5:4000", "test.example.com", authorization)
		suite.Equal(http.StatusForbidden, rec.Code, authorization)
		suite.Empty(rec.Body.String())
		suite.Empty(rec.Header().Get(echo.HeaderWWWAuthenticate))
		suite.False(suite.reached)
	}
}

func (suite *GateMiddlewareTestSuite) TestEmptyAuthorizationHeaderDenies() {
	router := suite.router(gate.NewConfig(gate.WithUserAllowList("admin:pw")))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header[echo.HeaderAuthorization] = []string{""}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	suite.Equal(http.StatusForbidden, rec.Code)
	suite.False(suite.reached)
}

func (suite *GateMiddlewareTestSuite) TestDomainEscapeAddsNoMarker() {
	router := suite.router(gate.NewConfig(
		gate.WithIPAllowList("1.2.3.4"),
		gate.WithDomainBlockList("prod.example.com"),
	))

	rec := suite.serve(router, "10.0.0.5:4000", "staging.example.com", "")
	suite.Equal(http.StatusOK, rec.Code)
	suite.Empty(rec.Header().Get(gate.MarkerHeader))
	suite.True(suite.reached)

	suite.SetupTest()
	rec = suite.serve(router, "10.0.0.5:4000", "prod.example.com:443", "")
	suite.Equal(http.StatusForbidden, rec.Code)
	suite.False(suite.reached)
}

func (suite *GateMiddlewareTestSuite) TestDisabled() {
	router := suite.router(gate.NewConfig(gate.WithEnabled(false), gate.WithUserAllowList("admin:pw")))

	rec := suite.serve(router, "10.0.0.5:4000", "test.example.com", "")
	suite.Equal(http.StatusOK, rec.Code)
	suite.Empty(rec.Header().Get(gate.MarkerHeader))
}

func (suite *GateMiddlewareTestSuite) TestSkipper() {
	router := suite.router(gate.NewConfig(), WithSkipper(PathMatchSkipper([]string{"/some/page"})))

	rec := suite.serve(router, "10.0.0.5:4000", "test.example.com", "")
	suite.Equal(http.StatusOK, rec.Code)
	suite.True(suite.reached)
}

func (suite *GateMiddlewareTestSuite) TestRejectionDropsContentHeaders() {
	router := echo.New()
	router.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTML)
			c.Response().Header().Set(echo.HeaderXRequestID, "abc")
			return next(c)
		}
	})
	router.Use(Gate(gate.NewEngine(gate.NewConfig())))
	router.GET("/*", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := suite.serve(router, "10.0.0.5:4000", "test.example.com", "")
	suite.Equal(http.StatusForbidden, rec.Code)
	suite.Empty(rec.Header().Get(echo.HeaderContentType))
	suite.Equal("abc", rec.Header().Get(echo.HeaderXRequestID))
}

func (suite *GateMiddlewareTestSuite) TestGateHandler() {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.reached = true
		w.WriteHeader(http.StatusNoContent)
	})
	engine := gate.NewEngine(gate.NewConfig(gate.WithUserAllowList("admin:pw")))
	handler := GateHandler(engine)(next)

	rec := suite.serve(handler, "10.0.0.5:4000", "test.example.com", "")
	suite.Equal(http.StatusUnauthorized, rec.Code)
	suite.False(suite.reached)

	rec = suite.serve(handler, "10.0.0.5:4000", "test.example.com", "Basic YWRtaW46cHc=")
	suite.Equal(http.StatusNoContent, rec.Code)
	suite.Equal("Access by credentials", rec.Header().Get(gate.MarkerHeader))
	suite.True(suite.reached)
}

func (suite *GateMiddlewareTestSuite) TestEvaluationPanicDenies() {
	router := echo.New()
	router.Use(Gate(nil))
	router.GET("/*", func(c echo.Context) error {
		suite.reached = true
		return c.String(http.StatusOK, "application")
	})

	rec := suite.serve(router, "10.0.0.5:4000", "test.example.com", "")
	suite.Equal(http.StatusForbidden, rec.Code)
	suite.Empty(rec.Body.String())
	suite.Empty(rec.Header().Get(gate.MarkerHeader))
	suite.False(suite.reached)
}

func (suite *GateMiddlewareTestSuite) TestGateHandlerEvaluationPanicDenies() {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.reached = true
		w.WriteHeader(http.StatusNoContent)
	})

	rec := suite.serve(GateHandler(nil)(next), "10.0.0.5:4000", "test.example.com", "Basic YWRtaW46cHc=")
	suite.Equal(http.StatusForbidden, rec.Code)
	suite.Empty(rec.Body.String())
	suite.False(suite.reached)
}

func (suite *GateMiddlewareTestSuite) TestGateHandlerServesConcurrently() {
	var reached atomic.Int32
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	handler := GateHandler(gate.NewEngine(gate.NewConfig(
		gate.WithIPAllowList("10.0.0.1"),
		gate.WithUserAllowList("admin:pw"),
	)))(next)

	requests := []struct {
		remoteAddr    string
		authorization string
		code          int
	}{
		{remoteAddr: "10.0.0.1:4000", code: http.StatusOK},
		{remoteAddr: "10.0.0.5:4000", code: http.StatusUnauthorized},
		{remoteAddr: "10.0.0.5:4000", authorization: "Basic YWRtaW46cHc=", code: http.StatusOK},
		{remoteAddr: "10.0.0.5:4000", authorization: "Basic YWRtaW46eHg=", code: http.StatusForbidden},
	}

	const workers = 100
	codes := make([]int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := requests[i%len(requests)]
			codes[i] = suite.serve(handler, r.remoteAddr, "test.example.com", r.authorization).Code
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		suite.Equal(requests[i%len(requests)].code, codes[i], "worker %d", i)
	}
	suite.Equal(int32(workers/2), reached.Load())
}
