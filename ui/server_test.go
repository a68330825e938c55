package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coachlens/app"
	"coachlens/internal/errors"
	"coachlens/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct{ response string }

func (g *stubGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	return g.response, nil
}

func (g *stubGenerator) ModelName() string { return "test-model" }

type stubAnalysisRepo struct {
	records map[uuid.UUID]*models.AnalysisRecord
}

func (r *stubAnalysisRepo) Create(ctx context.Context, record *models.AnalysisRecord) (uuid.UUID, error) {
	r.records[record.ID] = record
	return record.ID, nil
}

func (r *stubAnalysisRepo) GetByID(ctx context.Context, userID, analysisID uuid.UUID) (*models.AnalysisRecord, error) {
	record, ok := r.records[analysisID]
	if !ok || record.UserID != userID {
		return nil, errors.NotFound("analysis")
	}
	return record, nil
}

func (r *stubAnalysisRepo) GetByTypeAndDataID(ctx context.Context, userID uuid.UUID, analysisType string, dataID uuid.UUID) ([]*models.AnalysisRecord, error) {
	return nil, nil
}

func (r *stubAnalysisRepo) ListByUser(ctx context.Context, userID uuid.UUID, analysisType string, limit int) ([]*models.AnalysisRecord, error) {
	var out []*models.AnalysisRecord
	for _, record := range r.records {
		if record.UserID == userID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (r *stubAnalysisRepo) Update(ctx context.Context, record *models.AnalysisRecord) error {
	r.records[record.ID] = record
	return nil
}

func (r *stubAnalysisRepo) Delete(ctx context.Context, userID, analysisID uuid.UUID) error {
	delete(r.records, analysisID)
	return nil
}

type stubDataRepo struct {
	items map[uuid.UUID]*models.BusinessData
}

func (r *stubDataRepo) Create(ctx context.Context, data *models.BusinessData) (uuid.UUID, error) {
	r.items[data.ID] = data
	return data.ID, nil
}

func (r *stubDataRepo) GetByID(ctx context.Context, userID, dataID uuid.UUID) (*models.BusinessData, error) {
	data, ok := r.items[dataID]
	if !ok || data.UserID != userID {
		return nil, errors.NotFound("business data")
	}
	return data, nil
}

func (r *stubDataRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.BusinessData, error) {
	var out []*models.BusinessData
	for _, data := range r.items {
		if data.UserID == userID {
			out = append(out, data)
		}
	}
	return out, nil
}

func (r *stubDataRepo) ListByType(ctx context.Context, userID uuid.UUID, dataType string, limit int) ([]*models.BusinessData, error) {
	var out []*models.BusinessData
	for _, data := range r.items {
		if data.UserID == userID && data.DataType == dataType {
			out = append(out, data)
		}
	}
	return out, nil
}

func (r *stubDataRepo) Update(ctx context.Context, data *models.BusinessData) error {
	if existing, ok := r.items[data.ID]; !ok || existing.UserID != data.UserID {
		return errors.NotFound("business data")
	}
	r.items[data.ID] = data
	return nil
}

func (r *stubDataRepo) Delete(ctx context.Context, userID, dataID uuid.UUID) error {
	delete(r.items, dataID)
	return nil
}

type stubBCGRepo struct {
	items map[uuid.UUID]*models.BCGMatrixItem
}

func (r *stubBCGRepo) Create(ctx context.Context, item *models.BCGMatrixItem) (uuid.UUID, error) {
	r.items[item.ID] = item
	return item.ID, nil
}

func (r *stubBCGRepo) GetByID(ctx context.Context, itemID uuid.UUID) (*models.BCGMatrixItem, error) {
	item, ok := r.items[itemID]
	if !ok {
		return nil, errors.NotFound("BCG matrix item")
	}
	return item, nil
}

func (r *stubBCGRepo) ListByAnalysis(ctx context.Context, analysisID uuid.UUID) ([]*models.BCGMatrixItem, error) {
	var out []*models.BCGMatrixItem
	for _, item := range r.items {
		if item.AnalysisID == analysisID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *stubBCGRepo) ListByCategory(ctx context.Context, analysisID uuid.UUID, category string) ([]*models.BCGMatrixItem, error) {
	var out []*models.BCGMatrixItem
	for _, item := range r.items {
		if item.AnalysisID == analysisID && item.Category == category {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *stubBCGRepo) SummaryByUser(ctx context.Context, userID uuid.UUID) ([]*models.BCGCategorySummary, error) {
	byCategory := make(map[string]*models.BCGCategorySummary)
	for _, item := range r.items {
		s, ok := byCategory[item.Category]
		if !ok {
			s = &models.BCGCategorySummary{Category: item.Category}
			byCategory[item.Category] = s
		}
		s.Count++
		s.AvgGrowth += item.MarketGrowth
		s.AvgShare += item.MarketShare
	}
	var out []*models.BCGCategorySummary
	for _, s := range byCategory {
		s.AvgGrowth /= float64(s.Count)
		s.AvgShare /= float64(s.Count)
		out = append(out, s)
	}
	return out, nil
}

func (r *stubBCGRepo) Update(ctx context.Context, item *models.BCGMatrixItem) error {
	r.items[item.ID] = item
	return nil
}

func (r *stubBCGRepo) Delete(ctx context.Context, itemID uuid.UUID) error {
	delete(r.items, itemID)
	return nil
}

func newTestServer(response string) (*Server, *stubAnalysisRepo, *stubDataRepo, *stubBCGRepo) {
	analyses := &stubAnalysisRepo{records: make(map[uuid.UUID]*models.AnalysisRecord)}
	data := &stubDataRepo{items: make(map[uuid.UUID]*models.BusinessData)}
	bcgItems := &stubBCGRepo{items: make(map[uuid.UUID]*models.BCGMatrixItem)}
	service := app.NewAnalysisService(&stubGenerator{response: response}, analyses, data, bcgItems, 2)
	return NewServer(Config{Port: "0"}, service, data, bcgItems), analyses, data, bcgItems
}

func doRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s, _, _, _ := newTestServer("")
	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestRequestUser_InvalidHeader(t *testing.T) {
	s, _, _, _ := newTestServer("")
	req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	req.Header.Set("X-User-ID", "not-a-uuid")
	rec := doRequest(s, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetAnalysis_StatusMapping(t *testing.T) {
	s, _, _, _ := newTestServer("")

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/analysis/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/api/analysis/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateStrategies_RequiresDataID(t *testing.T) {
	s, _, _, _ := newTestServer("")
	req := httptest.NewRequest(http.MethodPost, "/api/analysis/strategies", strings.NewReader(`{}`))
	rec := doRequest(s, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAndListData(t *testing.T) {
	s, _, _, _ := newTestServer("")

	body := `{"filename": "manual.json", "dataType": "customer_data", "content": {"columns": [], "rows": []}}`
	rec := doRequest(s, httptest.NewRequest(http.MethodPost, "/api/data", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/api/data", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "customer_data", listed[0]["data_type"])
}

func TestUploadData_CSV(t *testing.T) {
	s, _, data, _ := newTestServer("")

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	file, err := form.CreateFormFile("file", "customers.csv")
	require.NoError(t, err)
	_, err = file.Write([]byte("Name,Price\nAlice,10\nBob,20\n"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/data/upload", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := doRequest(s, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	stored, err := data.ListByUser(context.Background(), DefaultUserID, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 2, stored[0].RecordCount)
	assert.Equal(t, "upload", stored[0].DataType)
}

func TestUploadData_MalformedFile(t *testing.T) {
	s, _, _, _ := newTestServer("")

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	file, err := form.CreateFormFile("file", "empty.csv")
	require.NoError(t, err)
	_, err = file.Write([]byte("Name,Price\n"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/data/upload", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := doRequest(s, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateData(t *testing.T) {
	s, _, data, _ := newTestServer("")

	stored := models.NewBusinessData(DefaultUserID, "old.csv", "customer_data", []byte(`{"rows": []}`), 0)
	_, err := data.Create(context.Background(), stored)
	require.NoError(t, err)

	body := `{"filename": "revised.csv", "content": {"rows": [{"name": "Alice"}]}}`
	rec := doRequest(s, httptest.NewRequest(http.MethodPut, "/api/data/"+stored.ID.String(), strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated, err := data.GetByID(context.Background(), DefaultUserID, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "revised.csv", updated.OriginalFilename)
	assert.Contains(t, string(updated.Content), "Alice")
}

func TestUpdateData_NotFound(t *testing.T) {
	s, _, _, _ := newTestServer("")
	body := `{"filename": "revised.csv"}`
	rec := doRequest(s, httptest.NewRequest(http.MethodPut, "/api/data/"+uuid.NewString(), strings.NewReader(body)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListData_ByType(t *testing.T) {
	s, _, data, _ := newTestServer("")

	for _, dataType := range []string{"customer_data", "sales_data"} {
		stored := models.NewBusinessData(DefaultUserID, dataType+".csv", dataType, []byte(`{"rows": []}`), 0)
		_, err := data.Create(context.Background(), stored)
		require.NoError(t, err)
	}

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/data?type=sales_data", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "sales_data", listed[0]["data_type"])
}

func seedBCGItem(t *testing.T, analyses *stubAnalysisRepo, bcgItems *stubBCGRepo, userID uuid.UUID, category string) *models.BCGMatrixItem {
	t.Helper()
	record := models.NewAnalysisRecord(userID, nil, models.AnalysisBCG, map[string]interface{}{})
	_, err := analyses.Create(context.Background(), record)
	require.NoError(t, err)

	item := &models.BCGMatrixItem{
		ID:           uuid.New(),
		AnalysisID:   record.ID,
		ItemName:     "Alpha",
		Category:     category,
		MarketGrowth: 12.5,
		MarketShare:  30,
	}
	_, err = bcgItems.Create(context.Background(), item)
	require.NoError(t, err)
	return item
}

func TestListBCGItems_CategoryFilter(t *testing.T) {
	s, analyses, _, bcgItems := newTestServer("")

	star := seedBCGItem(t, analyses, bcgItems, DefaultUserID, "star")
	dog := &models.BCGMatrixItem{ID: uuid.New(), AnalysisID: star.AnalysisID, ItemName: "Beta", Category: "dog"}
	_, err := bcgItems.Create(context.Background(), dog)
	require.NoError(t, err)

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/bcg-matrix/"+star.AnalysisID.String()+"/items?category=star", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Alpha", listed[0]["item_name"])
}

func TestBCGSummary(t *testing.T) {
	s, analyses, _, bcgItems := newTestServer("")
	seedBCGItem(t, analyses, bcgItems, DefaultUserID, "star")

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/bcg-matrix/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var summary []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Len(t, summary, 1)
	assert.Equal(t, "star", summary[0]["category"])
	assert.Equal(t, float64(1), summary[0]["count"])
}

func TestUpdateBCGItem_OwnershipEnforced(t *testing.T) {
	s, analyses, _, bcgItems := newTestServer("")

	// Item belongs to an analysis owned by someone else.
	item := seedBCGItem(t, analyses, bcgItems, uuid.New(), "star")

	body := `{"item_name": "Hijacked"}`
	rec := doRequest(s, httptest.NewRequest(http.MethodPut, "/api/bcg-matrix/items/"+item.ID.String(), strings.NewReader(body)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	kept, err := bcgItems.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", kept.ItemName)
}

func TestDeleteBCGItem_OwnershipEnforced(t *testing.T) {
	s, analyses, _, bcgItems := newTestServer("")

	item := seedBCGItem(t, analyses, bcgItems, uuid.New(), "star")

	rec := doRequest(s, httptest.NewRequest(http.MethodDelete, "/api/bcg-matrix/items/"+item.ID.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, err := bcgItems.GetByID(context.Background(), item.ID)
	assert.NoError(t, err, "a foreign caller must not delete the item")
}

func TestUpdateBCGItem_PartialBodyKeepsCoordinates(t *testing.T) {
	s, analyses, _, bcgItems := newTestServer("")

	item := seedBCGItem(t, analyses, bcgItems, DefaultUserID, "star")

	body := `{"item_name": "Renamed"}`
	rec := doRequest(s, httptest.NewRequest(http.MethodPut, "/api/bcg-matrix/items/"+item.ID.String(), strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated, err := bcgItems.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.ItemName)
	assert.Equal(t, 12.5, updated.MarketGrowth, "omitted coordinates keep their stored values")
	assert.Equal(t, 30.0, updated.MarketShare)
}

func TestAnalysisReport_HTML(t *testing.T) {
	s, analyses, _, _ := newTestServer("")

	record := models.NewAnalysisRecord(DefaultUserID, nil, models.AnalysisMarketResearch, map[string]interface{}{
		"analysis": map[string]interface{}{
			"summary":     "Demand is up.",
			"keyInsights": []interface{}{"growth in the north", "churn in the south"},
		},
	})
	_, err := analyses.Create(context.Background(), record)
	require.NoError(t, err)

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/analysis/"+record.ID.String()+"/report", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<h1")
	assert.Contains(t, rec.Body.String(), "Demand is up.")
	assert.Contains(t, rec.Body.String(), "<li>growth in the north</li>")
}

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", errors.NotFound("analysis"), http.StatusNotFound},
		{"invalid input", errors.InvalidInput("bad"), http.StatusBadRequest},
		{"malformed dataset", errors.MalformedDataset("bad shape"), http.StatusBadRequest},
		{"unauthorized", errors.Unauthorized("who"), http.StatusUnauthorized},
		{"upstream unavailable", errors.UpstreamUnavailable(assert.AnError), http.StatusBadGateway},
		{"anything else", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)
			assert.Equal(t, tt.want, rec.Code)

			var payload map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
			assert.NotEmpty(t, payload["code"])
		})
	}
}
