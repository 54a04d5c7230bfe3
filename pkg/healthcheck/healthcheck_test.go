package healthcheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(ctx context.Context) error { return f.err }

func loadCatalog(t *testing.T) *food.Catalog {
	t.Helper()
	c, err := food.DefaultCatalog()
	require.NoError(t, err)
	return c
}

func serve(t *testing.T, h gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))
	return w
}

func TestReadiness_ReportsCatalogSize(t *testing.T) {
	catalog := loadCatalog(t)
	hc := New("test", zaptest.NewLogger(t))
	hc.Register("catalog", NewCatalogChecker(catalog))
	hc.Register("database", NewDatabaseChecker(fakePinger{}))

	w := serve(t, hc.ReadinessHandler())
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string `json:"status"`
		Checks []struct {
			Name     string                 `json:"name"`
			Status   Status                 `json:"status"`
			Metadata map[string]interface{} `json:"metadata"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
	require.Len(t, body.Checks, 2)
	assert.Equal(t, "catalog", body.Checks[0].Name)
	assert.Equal(t, float64(catalog.Len()), body.Checks[0].Metadata["foods"])
	assert.Equal(t, "database", body.Checks[1].Name)
}

func TestReadiness_UnhealthyDependency(t *testing.T) {
	hc := New("test", zaptest.NewLogger(t))
	hc.Register("catalog", NewCatalogChecker(loadCatalog(t)))
	hc.Register("database", NewDatabaseChecker(fakePinger{err: errors.New("connection refused")}))

	w := serve(t, hc.ReadinessHandler())
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestCatalogChecker_Missing(t *testing.T) {
	check := NewCatalogChecker(nil).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, check.Status)
}

func TestHealth_DegradedStillServes(t *testing.T) {
	hc := New("test", nil)
	hc.Register("slow", NewCustomChecker("slow", func(ctx context.Context) (Status, string, interface{}) {
		return StatusDegraded, "queue backlog", nil
	}))

	w := serve(t, hc.Handler())
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(StatusDegraded), resp["status"])
}

func TestCheck_IsCached(t *testing.T) {
	calls := 0
	hc := New("test", nil)
	hc.SetCacheTTL(time.Minute)
	hc.Register("counter", NewCustomChecker("counter", func(ctx context.Context) (Status, string, interface{}) {
		calls++
		return StatusHealthy, "", nil
	}))

	hc.Check(context.Background())
	hc.Check(context.Background())
	assert.Equal(t, 1, calls)
}

func TestLiveness(t *testing.T) {
	w := serve(t, New("test", nil).LivenessHandler())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alive")
}
