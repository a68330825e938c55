package ui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"coachlens/adapters/excel"
	"coachlens/ai"
	"coachlens/internal/errors"
	"coachlens/models"

	"github.com/go-chi/chi/v5"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/google/uuid"
)

const maxUploadBytes = 16 << 20

// --- dataset handlers ---

type createDataRequest struct {
	Filename string          `json:"filename"`
	DataType string          `json:"dataType"`
	Content  json.RawMessage `json:"content"`
}

func (s *Server) handleCreateData(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUser(r)
	if err != nil {
		writeError(w, errors.Unauthorized("invalid user id"))
		return
	}

	var req createDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("request body is not valid JSON"))
		return
	}
	if len(req.Content) == 0 {
		writeError(w, errors.InvalidInput("content is required"))
		return
	}
	if req.DataType == "" {
		req.DataType = "manual_entry"
	}

	data := models.NewBusinessData(userID, req.Filename, req.DataType, req.Content, 0)
	if _, err := s.data.Create(r.Context(), data); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, data)
}

func (s *Server) handleUploadData(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUser(r)
	if err != nil {
		writeError(w, errors.Unauthorized("invalid user id"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, errors.InvalidInput("could not parse multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, errors.InvalidInput("file field is required"))
		return
	}
	defer file.Close()

	reader := excel.NewDataReader(header.Filename)
	ds, err := reader.Read(file)
	if err != nil {
		writeError(w, err)
		return
	}

	content, err := json.Marshal(ds)
	if err != nil {
		writeError(w, errors.Wrap(err, "failed to encode dataset"))
		return
	}

	data := models.NewBusinessData(userID, header.Filename, "upload", content, len(ds.Rows))
	if _, err := s.data.Create(r.Context(), data); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, data)
}

func (s *Server) handleListData(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUser(r)
	if err != nil {
		writeError(w, errors.Unauthorized("invalid user id"))
		return
	}

	var datasets []*models.BusinessData
	if dataType := r.URL.Query().Get("type"); dataType != "" {
		datasets, err = s.data.ListByType(r.Context(), userID, dataType, queryLimit(r))
	} else {
		datasets, err = s.data.ListByUser(r.Context(), userID, queryLimit(r))
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, datasets)
}

func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request) {
	userID, dataID, err := scopedIDs(r, "dataID")
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := s.data.GetByID(r.Context(), userID, dataID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

type updateDataRequest struct {
	Filename string          `json:"filename"`
	Content  json.RawMessage `json:"content"`
}

func (s *Server) handleUpdateData(w http.ResponseWriter, r *http.Request) {
	userID, dataID, err := scopedIDs(r, "dataID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("request body is not valid JSON"))
		return
	}
	if req.Filename == "" && len(req.Content) == 0 {
		writeError(w, errors.InvalidInput("nothing to update"))
		return
	}

	data, err := s.data.GetByID(r.Context(), userID, dataID)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Filename != "" {
		data.OriginalFilename = req.Filename
	}
	if len(req.Content) != 0 {
		data.Content = models.JSONBRaw(req.Content)
	}
	if err := s.data.Update(r.Context(), data); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleDeleteData(w http.ResponseWriter, r *http.Request) {
	userID, dataID, err := scopedIDs(r, "dataID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.data.Delete(r.Context(), userID, dataID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "business data deleted"})
}

// --- generation handlers ---

type generateRequest struct {
	DataID uuid.UUID `json:"dataId"`
}

func (s *Server) handleGenerateStrategies(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUser(r)
	if err != nil {
		writeError(w, errors.Unauthorized("invalid user id"))
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DataID == uuid.Nil {
		writeError(w, errors.InvalidInput("dataId is required"))
		return
	}
	result, err := s.analysis.GenerateStrategies(r.Context(), userID, req.DataID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type saveDraftRequest struct {
	DataID   uuid.UUID              `json:"dataId"`
	Strategy map[string]interface{} `json:"strategy"`
}

func (s *Server) handleSaveStrategyDraft(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUser(r)
	if err != nil {
		writeError(w, errors.Unauthorized("invalid user id"))
		return
	}
	var req saveDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DataID == uuid.Nil || len(req.Strategy) == 0 {
		writeError(w, errors.InvalidInput("dataId and strategy are required"))
		return
	}
	record, err := s.analysis.SaveStrategyDraft(r.Context(), userID, req.DataID, req.Strategy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

type prototypeRequest struct {
	ProductName        string `json:"productName"`
	ProductDescription string `json:"productDescription"`
	Category           string `json:"category"`
	TargetMarket       string `json:"targetMarket"`
}

func (s *Server) handleGeneratePrototype(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUser(r)
	if err != nil {
		writeError(w, errors.Unauthorized("invalid user id"))
		return
	}
	var req prototypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("request body is not valid JSON"))
		return
	}
	result, err := s.analysis.GeneratePrototype(r.Context(), userID, ai.PrototypeSeed{
		Name:         req.ProductName,
		Description:  req.ProductDescription,
		Category:     req.Category,
		TargetMarket: req.TargetMarket,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type marketResearchRequest struct {
	SecondaryResearch string `json:"secondaryResearch"`
	PrimaryResearch   string `json:"primaryResearch"`
}

func (s *Server) handleMarketResearch(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUser(r)
	if err != nil {
		writeError(w, errors.Unauthorized("invalid user id"))
		return
	}
	var req marketResearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("request body is not valid JSON"))
		return
	}
	result, err := s.analysis.AnalyzeMarketResearch(r.Context(), userID, req.SecondaryResearch, req.PrimaryResearch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGenerateBCG(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUser(r)
	if err != nil {
		writeError(w, errors.Unauthorized("invalid user id"))
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DataID == uuid.Nil {
		writeError(w, errors.InvalidInput("dataId is required"))
		return
	}
	result, err := s.analysis.GenerateBCG(r.Context(), userID, req.DataID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- analysis CRUD handlers ---

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUser(r)
	if err != nil {
		writeError(w, errors.Unauthorized("invalid user id"))
		return
	}
	analysisType := r.URL.Query().Get("type")
	if raw := r.URL.Query().Get("dataId"); raw != "" && analysisType != "" {
		dataID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, errors.InvalidInput("invalid dataId"))
			return
		}
		records, err := s.analysis.ListAnalysesByData(r.Context(), userID, analysisType, dataID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
		return
	}

	records, err := s.analysis.ListAnalyses(r.Context(), userID, analysisType, queryLimit(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, analysisID, err := scopedIDs(r, "analysisID")
	if err != nil {
		writeError(w, err)
		return
	}
	record, err := s.analysis.GetAnalysis(r.Context(), userID, analysisID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleAnalysisReport renders a stored analysis as an HTML report. The
// record's content is flattened to markdown, then converted.
func (s *Server) handleAnalysisReport(w http.ResponseWriter, r *http.Request) {
	userID, analysisID, err := scopedIDs(r, "analysisID")
	if err != nil {
		writeError(w, err)
		return
	}
	record, err := s.analysis.GetAnalysis(r.Context(), userID, analysisID)
	if err != nil {
		writeError(w, err)
		return
	}

	md := renderAnalysisMarkdown(record)
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	page := markdown.ToHTML([]byte(md), p, renderer)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

type updateAnalysisRequest struct {
	AnalysisContent map[string]interface{} `json:"analysisContent"`
}

func (s *Server) handleUpdateAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, analysisID, err := scopedIDs(r, "analysisID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.AnalysisContent) == 0 {
		writeError(w, errors.InvalidInput("analysisContent is required"))
		return
	}
	record, err := s.analysis.UpdateAnalysis(r.Context(), userID, analysisID, req.AnalysisContent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, analysisID, err := scopedIDs(r, "analysisID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.analysis.DeleteAnalysis(r.Context(), userID, analysisID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "analysis result deleted"})
}

// --- BCG item handlers ---

func (s *Server) handleListBCGItems(w http.ResponseWriter, r *http.Request) {
	userID, analysisID, err := scopedIDs(r, "analysisID")
	if err != nil {
		writeError(w, err)
		return
	}
	// Ownership check: the analysis must belong to the requesting user.
	if _, err := s.analysis.GetAnalysis(r.Context(), userID, analysisID); err != nil {
		writeError(w, err)
		return
	}

	var items []*models.BCGMatrixItem
	if category := r.URL.Query().Get("category"); category != "" {
		items, err = s.bcgItems.ListByCategory(r.Context(), analysisID, category)
	} else {
		items, err = s.bcgItems.ListByAnalysis(r.Context(), analysisID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleBCGSummary rolls up the requesting user's matrix items per quadrant
// across all of their analyses.
func (s *Server) handleBCGSummary(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUser(r)
	if err != nil {
		writeError(w, errors.Unauthorized("invalid user id"))
		return
	}
	summary, err := s.bcgItems.SummaryByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type bcgItemRequest struct {
	ItemName     string  `json:"item_name"`
	Category     string  `json:"category"`
	MarketGrowth float64 `json:"market_growth"`
	MarketShare  float64 `json:"market_share"`
	Explanation  string  `json:"explanation"`
}

func (s *Server) handleCreateBCGItem(w http.ResponseWriter, r *http.Request) {
	userID, analysisID, err := scopedIDs(r, "analysisID")
	if err != nil {
		writeError(w, err)
		return
	}
	record, err := s.analysis.GetAnalysis(r.Context(), userID, analysisID)
	if err != nil {
		writeError(w, err)
		return
	}

	var req bcgItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemName == "" {
		writeError(w, errors.InvalidInput("item_name is required"))
		return
	}
	item := &models.BCGMatrixItem{
		ID:           uuid.New(),
		AnalysisID:   record.ID,
		ItemName:     req.ItemName,
		Category:     req.Category,
		MarketGrowth: req.MarketGrowth,
		MarketShare:  req.MarketShare,
		Explanation:  req.Explanation,
		CreatedAt:    record.CreatedAt,
	}
	if _, err := s.bcgItems.Create(r.Context(), item); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

type updateBCGItemRequest struct {
	ItemName string `json:"item_name"`
	Category string `json:"category"`
	// Pointers so an omitted coordinate keeps its stored value.
	MarketGrowth *float64 `json:"market_growth"`
	MarketShare  *float64 `json:"market_share"`
	Explanation  string   `json:"explanation"`
}

// ownedBCGItem loads an item and verifies its owning analysis belongs to the
// requesting user. Items carry no user id of their own.
func (s *Server) ownedBCGItem(r *http.Request, userID, itemID uuid.UUID) (*models.BCGMatrixItem, error) {
	item, err := s.bcgItems.GetByID(r.Context(), itemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.analysis.GetAnalysis(r.Context(), userID, item.AnalysisID); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Server) handleUpdateBCGItem(w http.ResponseWriter, r *http.Request) {
	userID, itemID, err := scopedIDs(r, "itemID")
	if err != nil {
		writeError(w, err)
		return
	}
	item, err := s.ownedBCGItem(r, userID, itemID)
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateBCGItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("request body is not valid JSON"))
		return
	}
	if req.ItemName != "" {
		item.ItemName = req.ItemName
	}
	if req.Category != "" {
		item.Category = req.Category
	}
	if req.MarketGrowth != nil {
		item.MarketGrowth = *req.MarketGrowth
	}
	if req.MarketShare != nil {
		item.MarketShare = *req.MarketShare
	}
	if req.Explanation != "" {
		item.Explanation = req.Explanation
	}
	if err := s.bcgItems.Update(r.Context(), item); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteBCGItem(w http.ResponseWriter, r *http.Request) {
	userID, itemID, err := scopedIDs(r, "itemID")
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := s.ownedBCGItem(r, userID, itemID); err != nil {
		writeError(w, err)
		return
	}
	if err := s.bcgItems.Delete(r.Context(), itemID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "BCG matrix item deleted"})
}

// --- helpers ---

func scopedIDs(r *http.Request, param string) (uuid.UUID, uuid.UUID, error) {
	userID, err := requestUser(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.Unauthorized("invalid user id")
	}
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.InvalidInput("invalid id in path")
	}
	return userID, id, nil
}

func queryLimit(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			return limit
		}
	}
	return 0
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeInvalidInput, errors.CodeMalformedDataset:
		status = http.StatusBadRequest
	case errors.CodeUnauthorized:
		status = http.StatusUnauthorized
	case errors.CodeUpstreamUnavailable:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{
		"code":    errors.GetCode(err),
		"message": err.Error(),
	})
}

// renderAnalysisMarkdown flattens a stored analysis record into a markdown
// document for the report endpoint.
func renderAnalysisMarkdown(record *models.AnalysisRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", strings.ReplaceAll(record.AnalysisType, "_", " "))
	fmt.Fprintf(&b, "Generated %s\n\n", record.CreatedAt.Format("2006-01-02 15:04 MST"))
	writeMarkdownValue(&b, "", map[string]interface{}(record.Content), 2)
	return b.String()
}

func writeMarkdownValue(b *strings.Builder, key string, value interface{}, depth int) {
	heading := strings.Repeat("#", min(depth, 6))
	switch v := value.(type) {
	case map[string]interface{}:
		if key != "" {
			fmt.Fprintf(b, "%s %s\n\n", heading, key)
		}
		for _, k := range sortedKeys(v) {
			writeMarkdownValue(b, k, v[k], depth+1)
		}
	case []interface{}:
		if key != "" {
			fmt.Fprintf(b, "%s %s\n\n", heading, key)
		}
		for _, item := range v {
			switch entry := item.(type) {
			case map[string]interface{}, []interface{}:
				writeMarkdownValue(b, "", entry, depth+1)
			default:
				fmt.Fprintf(b, "- %v\n", entry)
			}
		}
		b.WriteString("\n")
	default:
		if key != "" {
			fmt.Fprintf(b, "**%s**: %v\n\n", key, v)
		} else {
			fmt.Fprintf(b, "%v\n\n", v)
		}
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
