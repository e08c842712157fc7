package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"statforest/internal/features"
	"statforest/internal/models"
	"statforest/internal/store"
)

func init() { gin.SetMode(gin.TestMode) }

// stepRecord is one tree over the game-log features splitting feature 0 at z=0, with the
// scaler centering feature 0 on 5.
func stepRecord() *store.ModelRecord {
	k := len(features.Names)
	means, stds := make([]float64, k), make([]float64, k)
	for i := range stds {
		stds[i] = 1
	}
	means[0] = 5
	f, thr, lo, hi := 0, 0.0, 2.0, 8.0
	return &store.ModelRecord{
		Name:            "assists",
		FeatureNames:    features.Names,
		Standardization: models.StandardizationParams{Means: means, StdDevs: stds},
		Trees: []*store.NodeRecord{{
			FeatureIndex: &f,
			Threshold:    &thr,
			Left:         &store.NodeRecord{Prediction: &lo},
			Right:        &store.NodeRecord{Prediction: &hi},
		}},
	}
}

func row(first float64) []float64 {
	r := make([]float64, len(features.Names))
	r[0] = first
	return r
}

func newTestServer(t *testing.T, apiKey string) (*Server, *store.MockStore, http.Handler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	st := store.NewMockStore(ctrl)
	s := NewServer(st, "assists", apiKey, zaptest.NewLogger(t))
	return s, st, s.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestHealthAndNoModel(t *testing.T) {
	_, _, h := newTestServer(t, "")
	w, body := do(t, h, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["model_loaded"])

	w, _ = do(t, h, http.MethodPost, "/predict", gin.H{"features": row(7)}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w, _ = do(t, h, http.MethodGet, "/model", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPredictStandardizesRawFeatures(t *testing.T) {
	s, st, h := newTestServer(t, "")
	st.EXPECT().Load(gomock.Any(), "assists").Return(stepRecord(), nil)
	require.NoError(t, s.Reload(context.Background()))

	tests := []struct {
		name         string
		first        float64
		standardized bool
		want         float64
	}{
		{"raw below mean", 4, false, 2},
		{"raw above mean", 7, false, 8},
		{"already scaled negative", -1, true, 2},
		{"raw value treated as scaled", 4, true, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(t, h, http.MethodPost, "/predict", gin.H{"features": row(tt.first), "standardized": tt.standardized}, nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, tt.want, body["prediction"])
			assert.Equal(t, "assists", body["model"])
		})
	}
}

func TestPredictRejectsBadRows(t *testing.T) {
	s, st, h := newTestServer(t, "")
	st.EXPECT().Load(gomock.Any(), "assists").Return(stepRecord(), nil)
	require.NoError(t, s.Reload(context.Background()))

	w, _ := do(t, h, http.MethodPost, "/predict", gin.H{"features": []float64{1, 2}}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = do(t, h, http.MethodPost, "/predict", gin.H{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = do(t, h, http.MethodPost, "/batch", gin.H{"rows": [][]float64{row(1), {3}}}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatch(t *testing.T) {
	s, st, h := newTestServer(t, "")
	st.EXPECT().Load(gomock.Any(), "assists").Return(stepRecord(), nil)
	require.NoError(t, s.Reload(context.Background()))

	w, body := do(t, h, http.MethodPost, "/batch", gin.H{"rows": [][]float64{row(1), row(9), row(5)}}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []any{2.0, 8.0, 2.0}, body["predictions"])
}

func TestPredictGame(t *testing.T) {
	s, st, h := newTestServer(t, "")
	st.EXPECT().Load(gomock.Any(), "assists").Return(stepRecord(), nil)
	require.NoError(t, s.Reload(context.Background()))

	game := gin.H{
		"game_id":           "g1",
		"player_id":         "p7",
		"game_date":         "2024-01-03T00:00:00Z",
		"avg_assists_last5": 9.5,
	}
	w, body := do(t, h, http.MethodPost, "/predict/game", game, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 8.0, body["prediction"])
	assert.Equal(t, "p7", body["player_id"])
}

func TestAPIKey(t *testing.T) {
	s, st, h := newTestServer(t, "secret")
	st.EXPECT().Load(gomock.Any(), "assists").Return(stepRecord(), nil)
	require.NoError(t, s.Reload(context.Background()))

	w, _ := do(t, h, http.MethodPost, "/predict", gin.H{"features": row(7)}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = do(t, h, http.MethodPost, "/predict", gin.H{"features": row(7)}, map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = do(t, h, http.MethodPost, "/predict", gin.H{"features": row(7)}, map[string]string{"X-API-Key": "secret"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, h, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestModelInfo(t *testing.T) {
	s, st, h := newTestServer(t, "")
	st.EXPECT().Load(gomock.Any(), "assists").Return(stepRecord(), nil)
	require.NoError(t, s.Reload(context.Background()))

	w, body := do(t, h, http.MethodGet, "/model", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "assists", body["name"])
	assert.Len(t, body["featureNames"], len(features.Names))
	stats := body["stats"].(map[string]any)
	assert.Equal(t, 3.0, stats["nodes"])
}

func TestReload(t *testing.T) {
	s, st, h := newTestServer(t, "")
	gomock.InOrder(
		st.EXPECT().Load(gomock.Any(), "assists").Return(nil, store.ErrNotFound),
		st.EXPECT().Load(gomock.Any(), "assists").Return(stepRecord(), nil),
		st.EXPECT().Load(gomock.Any(), "assists").Return(nil, errors.New("connection reset")),
	)

	w, _ := do(t, h, http.MethodPost, "/reload", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, body := do(t, h, http.MethodPost, "/reload", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "assists", body["name"])

	w, _ = do(t, h, http.MethodPost, "/reload", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	rec, _ := s.current()
	assert.NotNil(t, rec)
}

func TestReloadRejectsMalformedRecord(t *testing.T) {
	s, st, _ := newTestServer(t, "")
	bad := stepRecord()
	bad.Trees[0].Right = nil
	st.EXPECT().Load(gomock.Any(), "assists").Return(bad, nil)
	assert.Error(t, s.Reload(context.Background()))
	rec, _ := s.current()
	assert.Nil(t, rec)
}
