package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/apex-platform/tf-forge/internal/gitlab"
	"github.com/apex-platform/tf-forge/internal/models"
	"github.com/apex-platform/tf-forge/internal/services"
	appErr "github.com/apex-platform/tf-forge/pkg/errors"
)

type mockGenerationService struct {
	mock.Mock
}

func (m *mockGenerationService) Generate(ctx context.Context, in services.GenerateInput) (*services.GenerateResult, error) {
	args := m.Called(ctx, in)
	if v := args.Get(0); v != nil {
		return v.(*services.GenerateResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGenerationService) History(ctx context.Context, username string) ([]models.GenerationStatus, error) {
	args := m.Called(ctx, username)
	if v := args.Get(0); v != nil {
		return v.([]models.GenerationStatus), args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestRouter(svc services.GenerationService) http.Handler {
	h := NewTerraformHandler(svc)
	r := chi.NewRouter()
	r.Post("/generate", h.Generate)
	r.Get("/status/{username}", h.History)
	return r
}

const validBody = `{"username":"jdoe","cloud_id":"aws","resource_type":"rds","request_id":4711}`

func TestTerraformHandler_Generate(t *testing.T) {
	t.Run("successful generation", func(t *testing.T) {
		svc := &mockGenerationService{}
		svc.On("Generate", mock.Anything, services.GenerateInput{
			Username: "jdoe", CloudID: "aws", ResourceType: "rds", RequestID: 4711,
		}).Return(&services.GenerateResult{
			MergeRequest: &gitlab.MergeRequest{IID: 7, URL: "https://example.com/mr/7"},
		}, nil).Once()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(validBody))
		newTestRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Success bool `json:"success"`
			Data    struct {
				Message      string               `json:"message"`
				MergeRequest *gitlab.MergeRequest `json:"merge_request"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.True(t, body.Success)
		require.Equal(t, "https://example.com/mr/7", body.Data.MergeRequest.URL)

		svc.AssertExpectations(t)
	})

	t.Run("malformed json", func(t *testing.T) {
		svc := &mockGenerationService{}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"username":`))
		newTestRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Generate")
	})

	t.Run("schema violations", func(t *testing.T) {
		bodies := []string{
			`{}`,
			`{"username":"jdoe","cloud_id":"oraclecloud","resource_type":"rds","request_id":1}`,
			`{"username":"jdoe","cloud_id":"aws","resource_type":"rds","request_id":0}`,
			`{"username":"jdoe","cloud_id":"aws","request_id":1}`,
		}
		for _, b := range bodies {
			svc := &mockGenerationService{}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(b))
			newTestRouter(svc).ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", b)
			svc.AssertNotCalled(t, "Generate")
		}
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		svc := &mockGenerationService{}
		svc.On("Generate", mock.Anything, mock.Anything).
			Return(nil, appErr.New(appErr.CodeNotFound, "resource not found for aws/rds/4711")).Once()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(validBody))
		newTestRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)

		var body struct {
			Success bool `json:"success"`
			Error   struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.False(t, body.Success)
		require.Equal(t, "not_found", body.Error.Code)
		require.Equal(t, "resource not found for aws/rds/4711", body.Error.Message)
	})

	t.Run("validation failure echoes details", func(t *testing.T) {
		svc := &mockGenerationService{}
		e := appErr.New(appErr.CodeInvalid, "generated configuration failed validation").
			WithMeta("errors", []string{"configuration contains no Terraform block braces"}).
			WithMeta("terraform_code", "just text")
		svc.On("Generate", mock.Anything, mock.Anything).Return(nil, e).Once()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(validBody))
		newTestRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body struct {
			Error struct {
				Code    string `json:"code"`
				Details struct {
					Errors        []string `json:"errors"`
					TerraformCode string   `json:"terraform_code"`
				} `json:"details"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "invalid", body.Error.Code)
		require.Len(t, body.Error.Details.Errors, 1)
		require.Equal(t, "just text", body.Error.Details.TerraformCode)
	})

	t.Run("upstream fault collapses to 500", func(t *testing.T) {
		svc := &mockGenerationService{}
		svc.On("Generate", mock.Anything, mock.Anything).
			Return(nil, appErr.New(appErr.CodeUnavailable, "resource lookup failed")).Once()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(validBody))
		newTestRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestTerraformHandler_History(t *testing.T) {
	t.Run("returns records with total", func(t *testing.T) {
		svc := &mockGenerationService{}
		svc.On("History", mock.Anything, "jdoe").Return([]models.GenerationStatus{
			{ApexRequestID: 1, Username: "jdoe", Status: models.StatusSuccess},
			{ApexRequestID: 2, Username: "jdoe", Status: models.StatusFailed},
		}, nil).Once()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/status/jdoe", nil)
		newTestRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Success bool                      `json:"success"`
			Data    []models.GenerationStatus `json:"data"`
			Meta    struct {
				Total int64 `json:"total"`
			} `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.True(t, body.Success)
		require.Len(t, body.Data, 2)
		require.Equal(t, int64(2), body.Meta.Total)

		svc.AssertExpectations(t)
	})

	t.Run("store fault yields 500", func(t *testing.T) {
		svc := &mockGenerationService{}
		svc.On("History", mock.Anything, "jdoe").
			Return(nil, errors.New("connection refused")).Once()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/status/jdoe", nil)
		newTestRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHealthHandler(t *testing.T) {
	hh := NewHealthHandler()

	rec := httptest.NewRecorder()
	hh.Liveness(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	hh.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
