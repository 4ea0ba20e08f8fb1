package fulfillment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/gestix-erp/gestix/internal/platform/httpx"
)

type scanRecorder struct {
	calls int
}

func (s *scanRecorder) ScheduleAnomalyScan(context.Context) error {
	s.calls++
	return nil
}

func newTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/companies/{companyID}", h.MountRoutes)
	return r
}

func TestAuditStockAnomalyTriggersScan(t *testing.T) {
	store := newMemoryStore()
	inst := seedInstance(store, "pão", 10, 6)
	svc := NewService(store, nil, nil, nil, nil)
	scans := &scanRecorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := newTestRouter(NewHandler(logger, svc, httpx.PermissionMiddleware{}, scans))

	post := func(count float64) *httptest.ResponseRecorder {
		body := fmt.Sprintf(`{"instanceId":%q,"physicalCount":%v,"reason":"contagem"}`, inst.ID, count)
		req := httptest.NewRequest(http.MethodPost,
			"/companies/"+companyID.String()+"/stock/audit", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	// counting above the reservations adjusts quietly
	rec := post(8)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, scans.calls)

	// counting below them flags the anomaly and queues a company-wide sweep
	rec = post(4)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, scans.calls)
}

func TestAuditStockWithoutSchedulerStillResponds(t *testing.T) {
	store := newMemoryStore()
	inst := seedInstance(store, "pão", 10, 6)
	svc := NewService(store, nil, nil, nil, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := newTestRouter(NewHandler(logger, svc, httpx.PermissionMiddleware{}, nil))

	body := fmt.Sprintf(`{"instanceId":%q,"physicalCount":4,"reason":"quebra"}`, inst.ID)
	req := httptest.NewRequest(http.MethodPost,
		"/companies/"+companyID.String()+"/stock/audit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
