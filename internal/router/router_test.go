package router

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/deppfellow/enhanced-calculator/internal/config"
	"github.com/deppfellow/enhanced-calculator/internal/handler"
	"github.com/deppfellow/enhanced-calculator/internal/logger"
	"github.com/deppfellow/enhanced-calculator/internal/server"
	"github.com/deppfellow/enhanced-calculator/internal/service"
)

type APISuite struct {
	suite.Suite
	router  *echo.Echo
	stdout  *bytes.Buffer
	logDir  string
	closeFn func() error
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.router = s.newRouter(s.testConfig())
}

func (s *APISuite) testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Primary.Env = "test"
	cfg.Observability.Environment = "test"
	cfg.Observability.Logging.Directory = s.T().TempDir()
	return cfg
}

// newRouter wires the full stack for cfg. Logs go to s.stdout and to
// files in cfg's log directory.
func (s *APISuite) newRouter(cfg *config.Config) *echo.Echo {
	if s.closeFn != nil {
		s.Require().NoError(s.closeFn())
	}
	s.logDir = cfg.Observability.Logging.Directory

	s.stdout = &bytes.Buffer{}
	loggerService := logger.NewLoggerService(cfg.Observability)
	log, closeFn, err := logger.NewLoggerWithService(cfg.Observability, s.stdout, loggerService)
	s.Require().NoError(err)
	s.closeFn = closeFn

	srv, err := server.New(cfg, &log, loggerService)
	s.Require().NoError(err)

	services, err := service.NewService()
	s.Require().NoError(err)

	return NewRouter(srv, handler.NewHandlers(srv, services))
}

// records decodes every stdout record written so far with the given message.
func (s *APISuite) records(message string) []map[string]any {
	var out []map[string]any
	dec := json.NewDecoder(bytes.NewReader(s.stdout.Bytes()))
	for dec.More() {
		var record map[string]any
		s.Require().NoError(dec.Decode(&record))
		if record["message"] == message {
			out = append(out, record)
		}
	}
	return out
}

func (s *APISuite) TearDownTest() {
	s.Require().NoError(s.closeFn())
	s.closeFn = nil
}

func (s *APISuite) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (s *APISuite) assertResult(target string, want float64) {
	rec := s.get(target)
	s.Equal(http.StatusOK, rec.Code, target)
	s.Contains(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)

	var body struct {
		Result *float64 `json:"result"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body), target)
	s.Require().NotNil(body.Result, target)
	s.Equal(want, *body.Result, target)
}

func (s *APISuite) assertError(target string, status int, message string) {
	rec := s.get(target)
	s.Equal(status, rec.Code, target)
	s.Contains(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
	s.JSONEq(`{"error":`+mustJSON(message)+`}`, rec.Body.String(), target)
}

func mustJSON(v string) string {
	out, _ := json.Marshal(v)
	return string(out)
}

func (s *APISuite) TestConcreteScenarios() {
	s.JSONEq(`{"result":5}`, s.get("/add?num1=2&num2=3").Body.String())
	s.assertError("/divide?num1=10&num2=0", http.StatusBadRequest, "Division by zero is not allowed")
	s.JSONEq(`{"result":1024}`, s.get("/power?base=2&exponent=10").Body.String())
	s.assertError("/sqrt?num=-4", http.StatusBadRequest, "Square root of negative number is not allowed")
	s.JSONEq(`{"result":1}`, s.get("/modulo?num1=10&num2=3").Body.String())
}

func (s *APISuite) TestOperations() {
	s.assertResult("/add?num1=-1.5&num2=4", 2.5)
	s.assertResult("/subtract?num1=10&num2=4", 6)
	s.assertResult("/multiply?num1=3&num2=-7", -21)
	s.assertResult("/divide?num1=1&num2=8", 0.125)
	s.assertResult("/divide?num1=0&num2=-3", 0)
	s.assertResult("/power?base=9&exponent=0.5", 3)
	s.assertResult("/power?base=0&exponent=0", 1)
	s.assertResult("/sqrt?num=2.25", 1.5)
	s.assertResult("/sqrt?num=0", 0)
	s.assertResult("/modulo?num1=-7&num2=3", -1)
}

func (s *APISuite) TestAddProperty() {
	pairs := [][2]float64{{0, 0}, {1, -1}, {123.25, 0.5}, {-1e10, 3}, {7, 1e-3}}
	for _, p := range pairs {
		target := "/add?num1=" + service.FormatNumber(p[0]) + "&num2=" + service.FormatNumber(p[1])
		s.assertResult(target, p[0]+p[1])
	}
}

func (s *APISuite) TestDivideAndModuloByZeroIgnoreDividend() {
	for _, a := range []string{"0", "-5", "3.5", "1e300"} {
		s.assertError("/divide?num1="+a+"&num2=0", http.StatusBadRequest, "Division by zero is not allowed")
		s.assertError("/modulo?num1="+a+"&num2=0", http.StatusBadRequest, "Modulo by zero is not allowed")
		s.assertError("/divide?num1="+a+"&num2=-0", http.StatusBadRequest, "Division by zero is not allowed")
	}
}

func (s *APISuite) TestInvalidInput() {
	const msg = "Invalid input: Parameters must be numbers"

	targets := []string{
		"/add",
		"/add?num1=2",
		"/add?num2=2",
		"/subtract?num1=abc&num2=1",
		"/multiply?num1=1&num2=",
		"/divide?num1=x&num2=0",
		"/power?base=2",
		"/power?num1=2&num2=3",
		"/sqrt",
		"/sqrt?num=NaN",
		"/modulo?num1=&num2=",
	}

	for _, target := range targets {
		s.assertError(target, http.StatusBadRequest, msg)
	}
}

func (s *APISuite) TestLenientParsing() {
	s.assertResult("/add?num1=3abc&num2=%20%204", 7)
	s.assertResult("/multiply?num1=1e3&num2=.5", 500)
}

func (s *APISuite) TestNonFiniteResultsPassThrough() {
	rec := s.get("/power?base=-8&exponent=0.5")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"result":null}`, rec.Body.String())

	rec = s.get("/multiply?num1=1e308&num2=10")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"result":null}`, rec.Body.String())

	s.Contains(s.stdout.String(), "Power: -8 ^ 0.5 = NaN")
	s.Contains(s.stdout.String(), "Multiplication: 1e+308 * 10 = Infinity")
}

func (s *APISuite) TestIdempotent() {
	first := s.get("/modulo?num1=17.5&num2=4").Body.String()
	for i := 0; i < 3; i++ {
		s.Equal(first, s.get("/modulo?num1=17.5&num2=4").Body.String())
	}
}

func (s *APISuite) TestUnknownRouteAndMethod() {
	s.assertError("/log?num=1", http.StatusNotFound, "Route not found")

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/add?num1=1&num2=2", nil))
	s.Equal(http.StatusMethodNotAllowed, rec.Code)
	s.JSONEq(`{"error":"Method Not Allowed"}`, rec.Body.String())
}

func (s *APISuite) TestLogging() {
	s.get("/add?num1=2&num2=3")
	s.get("/divide?num1=10&num2=0")
	s.get("/sqrt?num=abc")

	out := s.stdout.String()
	s.Contains(out, `"message":"Request received"`)
	s.Contains(out, `"url":"/add?num1=2&num2=3"`)
	s.Contains(out, `"query":{"num1":"2","num2":"3"}`)
	s.Contains(out, `"message":"Addition: 2 + 3 = 5"`)
	s.Contains(out, `"message":"Error in /divide: Division by zero is not allowed"`)
	s.Contains(out, `"message":"Error in /sqrt: Invalid input: Parameters must be numbers"`)
	s.Contains(out, `"service":"enhanced-calculator-microservice"`)

	s.Require().NoError(s.closeFn())
	s.closeFn = func() error { return nil }

	errorLog, err := os.ReadFile(filepath.Join(s.logDir, logger.ErrorLogFile))
	s.Require().NoError(err)
	errorLines := strings.Split(strings.TrimSpace(string(errorLog)), "\n")
	s.Len(errorLines, 2)
	for _, line := range errorLines {
		s.Contains(line, `"level":"error"`)
	}

	combined, err := os.ReadFile(filepath.Join(s.logDir, logger.CombinedLogFile))
	s.Require().NoError(err)
	s.Contains(string(combined), "Addition: 2 + 3 = 5")
	s.Contains(string(combined), "Request received")
}

func (s *APISuite) TestRequestIDHeader() {
	rec := s.get("/add?num1=1&num2=1")
	s.NotEmpty(rec.Header().Get("X-Request-ID"))
}

func (s *APISuite) TestHealth() {
	rec := s.get("/status")
	s.Equal(http.StatusOK, rec.Code)

	var body map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("healthy", body["status"])
	s.Equal("test", body["environment"])

	checks, ok := body["checks"].(map[string]any)
	s.Require().True(ok)
	calculator, ok := checks["calculator"].(map[string]any)
	s.Require().True(ok)
	s.Equal("healthy", calculator["status"])
}

func (s *APISuite) TestDocs() {
	rec := s.get("/docs")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("no-cache", rec.Header().Get("Cache-Control"))
	s.Contains(rec.Body.String(), "/static/openapi.json")

	rec = s.get("/static/openapi.json")
	s.Equal(http.StatusOK, rec.Code)

	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &doc))
	for _, op := range service.Operations() {
		s.Contains(doc.Paths, op.Path())
	}
}

func (s *APISuite) TestResultIsPlainNumber() {
	rec := s.get("/divide?num1=1&num2=3")
	s.Equal(http.StatusOK, rec.Code)

	var body map[string]float64
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.InDelta(1.0/3.0, body["result"], math.SmallestNonzeroFloat64)
}

func (s *APISuite) TestErrorRecordsNameOperation() {
	s.get("/divide?num1=10&num2=0")
	s.get("/sqrt?num=abc")
	s.get("/add?num1=2&num2=3")

	divide := s.records("Error in /divide: Division by zero is not allowed")
	s.Require().Len(divide, 1)
	s.Equal("divide", divide[0]["operation"])

	sqrt := s.records("Error in /sqrt: Invalid input: Parameters must be numbers")
	s.Require().Len(sqrt, 1)
	s.Equal("sqrt", sqrt[0]["operation"])

	add := s.records("Addition: 2 + 3 = 5")
	s.Require().Len(add, 1)
	s.Equal("add", add[0]["operation"])
}

func (s *APISuite) TestClientAddressIgnoresForwardingHeaders() {
	req := httptest.NewRequest(http.MethodGet, "/add?num1=1&num2=2", nil)
	req.RemoteAddr = "192.0.2.1:4000"
	req.Header.Set(echo.HeaderXForwardedFor, "6.6.6.6")
	req.Header.Set(echo.HeaderXRealIP, "7.7.7.7")
	s.router.ServeHTTP(httptest.NewRecorder(), req)

	received := s.records("Request received")
	s.Require().Len(received, 1)
	s.Equal("192.0.2.1", received[0]["ip"])

	completed := s.records("API")
	s.Require().Len(completed, 1)
	s.Equal("192.0.2.1", completed[0]["ip"])
}

func (s *APISuite) TestTrustedProxyForwardsClientAddress() {
	cfg := s.testConfig()
	cfg.Server.TrustedProxies = []string{"192.0.2.0/24"}
	s.router = s.newRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/add?num1=1&num2=2", nil)
	req.RemoteAddr = "192.0.2.1:4000"
	req.Header.Set(echo.HeaderXForwardedFor, "203.0.113.7")
	s.router.ServeHTTP(httptest.NewRecorder(), req)

	received := s.records("Request received")
	s.Require().Len(received, 1)
	s.Equal("203.0.113.7", received[0]["ip"])
}

func (s *APISuite) TestRateLimitKeysOnSocketAddress() {
	cfg := s.testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 1}
	s.router = s.newRouter(cfg)

	send := func(forwardedFor string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/add?num1=1&num2=2", nil)
		req.RemoteAddr = "192.0.2.1:4000"
		req.Header.Set(echo.HeaderXForwardedFor, forwardedFor)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		return rec
	}

	s.Equal(http.StatusOK, send("10.0.0.1").Code)

	for _, forwardedFor := range []string{"10.0.0.2", "10.0.0.3", "10.0.0.4"} {
		rec := send(forwardedFor)
		s.Equal(http.StatusTooManyRequests, rec.Code)
		s.JSONEq(`{"error":"Too many requests"}`, rec.Body.String())
	}
}

func (s *APISuite) TestPathsIgnoreCaseAndTrailingSlash() {
	s.assertResult("/add/?num1=2&num2=3", 5)
	s.assertResult("/ADD?num1=2&num2=3", 5)
	s.assertResult("/Sqrt/?num=16", 4)
	s.assertError("/log/?num=1", http.StatusNotFound, "Route not found")
}

func (s *APISuite) TestHeadAnswersLikeGet() {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/add?num1=2&num2=3", nil))
	s.Equal(http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/divide?num1=1&num2=0", nil))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Empty(rec.Body.String())

	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/status", nil))
	s.Equal(http.StatusOK, rec.Code)
}
