package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"coachlens/ai"
	"coachlens/domain/bcg"
	"coachlens/domain/dataset"
	"coachlens/internal/errors"
	"coachlens/models"
	"coachlens/ports"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// AnalysisService runs the generation pipeline for every analysis page:
// dataset -> aggregates -> prompt -> external call -> extraction ->
// normalization -> persistence envelope. Outbound LLM calls are bounded by a
// weighted semaphore; everything downstream of a readable dataset degrades
// to defaults instead of failing.
type AnalysisService struct {
	generator ports.TextGenerator
	analyses  ports.AnalysisRepository
	data      ports.BusinessDataRepository
	bcgItems  ports.BCGItemRepository
	sem       *semaphore.Weighted
}

// NewAnalysisService wires the pipeline's collaborators.
func NewAnalysisService(
	generator ports.TextGenerator,
	analyses ports.AnalysisRepository,
	data ports.BusinessDataRepository,
	bcgItems ports.BCGItemRepository,
	maxConcurrentGenerations int64,
) *AnalysisService {
	if maxConcurrentGenerations <= 0 {
		maxConcurrentGenerations = 4
	}
	return &AnalysisService{
		generator: generator,
		analyses:  analyses,
		data:      data,
		bcgItems:  bcgItems,
		sem:       semaphore.NewWeighted(maxConcurrentGenerations),
	}
}

// PersistWarning is set on results when storage failed after a valid record
// was produced; the content is still returned so the user does not lose it.
const PersistWarning = "analysis was generated but could not be saved"

// DataSummary describes the dataset a generation ran over.
type DataSummary struct {
	TotalRows int       `json:"totalRows"`
	Columns   []string  `json:"columns"`
	DataID    uuid.UUID `json:"dataId"`
}

// StrategyResult is the response of one strategy generation run.
type StrategyResult struct {
	AnalysisID      uuid.UUID                `json:"id,omitempty"`
	Strategies      []models.Strategy        `json:"strategies"`
	SavedStrategies []map[string]interface{} `json:"savedStrategies,omitempty"`
	DataSummary     DataSummary              `json:"dataSummary"`
	Warning         string                   `json:"warning,omitempty"`
}

// GenerateStrategies runs the full pipeline for marketing strategies over one
// stored dataset. A malformed dataset is the only hard failure; upstream and
// parse failures degrade to fallback strategies, storage failures degrade to
// a warning.
func (s *AnalysisService) GenerateStrategies(ctx context.Context, userID, dataID uuid.UUID) (*StrategyResult, error) {
	ds, err := s.loadDataset(ctx, userID, dataID)
	if err != nil {
		return nil, err
	}

	summary := dataset.Summarize(ds)
	prompt := ai.BuildPrompt(ai.PromptRequest{
		Task:       ai.TaskStrategy,
		Aggregates: summary,
		SampleRows: ds.SampleRows(5),
		Columns:    columnLabels(ds),
		TotalRows:  len(ds.Rows),
	})

	strategies := s.strategiesFromModel(ctx, prompt)

	result := &StrategyResult{
		Strategies: strategies,
		DataSummary: DataSummary{
			TotalRows: len(ds.Rows),
			Columns:   columnLabels(ds),
			DataID:    dataID,
		},
	}

	// Earlier user-saved drafts survive regeneration.
	if drafts, err := s.analyses.GetByTypeAndDataID(ctx, userID, models.AnalysisStrategyDraft, dataID); err == nil {
		for _, draft := range drafts {
			if saved, ok := draft.Content["strategy"].(map[string]interface{}); ok {
				saved["dbId"] = draft.ID.String()
				result.SavedStrategies = append(result.SavedStrategies, saved)
			}
		}
	} else {
		log.Printf("[AnalysisService] Could not load saved strategy drafts: %v", err)
	}

	record := models.NewAnalysisRecord(userID, &dataID, models.AnalysisStrategy, map[string]interface{}{
		"strategies":  strategies,
		"dataSummary": result.DataSummary,
	})
	if _, err := s.analyses.Create(ctx, record); err != nil {
		log.Printf("[AnalysisService] Failed to persist strategy analysis: %v", err)
		result.Warning = PersistWarning
		return result, nil
	}
	result.AnalysisID = record.ID
	return result, nil
}

// strategiesFromModel calls the model and walks the recovery ladder: parsed
// JSON tagged with the model name, then text-mined partials tagged as
// fallback, then the canned defaults.
func (s *AnalysisService) strategiesFromModel(ctx context.Context, prompt string) []models.Strategy {
	raw, err := s.generate(ctx, prompt)
	if err != nil {
		log.Printf("[AnalysisService] Upstream call failed, using default strategies: %v", err)
		return ai.DefaultStrategies()
	}

	if extracted, ok := ai.Extract(raw); ok {
		return ai.NormalizeStrategies(extracted, s.generator.ModelName())
	}

	log.Printf("[AnalysisService] No JSON structure found, using text parsing fallback")
	partials := ai.ParseTextSections(raw)
	if len(partials) == 0 {
		return ai.DefaultStrategies()
	}
	strategies := make([]models.Strategy, 0, len(partials))
	for _, partial := range partials {
		strategies = append(strategies, ai.NormalizeStrategy(partial, models.GeneratedByFallback))
	}
	return strategies
}

// PrototypeResult is the response of one prototype generation run.
type PrototypeResult struct {
	AnalysisID uuid.UUID        `json:"id,omitempty"`
	Prototype  models.Prototype `json:"prototype"`
	IsFallback bool             `json:"isFallback"`
	Warning    string           `json:"warning,omitempty"`
}

// GeneratePrototype runs the pipeline for a product prototype. The seed's
// name and description are required input; everything else degrades.
func (s *AnalysisService) GeneratePrototype(ctx context.Context, userID uuid.UUID, seed ai.PrototypeSeed) (*PrototypeResult, error) {
	if strings.TrimSpace(seed.Name) == "" || strings.TrimSpace(seed.Description) == "" {
		return nil, errors.InvalidInput("product name and description are required")
	}

	prompt := ai.BuildPrompt(ai.PromptRequest{
		Task: ai.TaskPrototype,
		FreeText: map[string]string{
			"productName":        seed.Name,
			"productDescription": seed.Description,
			"category":           seed.Category,
			"targetMarket":       seed.TargetMarket,
		},
	})

	var prototype models.Prototype
	isFallback := false
	raw, err := s.generate(ctx, prompt)
	if err != nil {
		log.Printf("[AnalysisService] Upstream call failed, using fallback prototype: %v", err)
		prototype = ai.NormalizePrototype(nil, seed, models.GeneratedByFallback)
		isFallback = true
	} else if extracted, ok := ai.Extract(raw); ok {
		prototype = ai.NormalizePrototype(objectPartial(extracted), seed, s.generator.ModelName())
	} else {
		log.Printf("[AnalysisService] Unparsable prototype response, using fallback prototype")
		prototype = ai.NormalizePrototype(nil, seed, models.GeneratedByFallback)
		isFallback = true
	}

	result := &PrototypeResult{Prototype: prototype, IsFallback: isFallback}

	// A prototype gets a companion business data entry so the analysis record
	// has a dataset to reference.
	companion, err := json.Marshal(map[string]interface{}{
		"productInfo": map[string]string{
			"name":        prototype.Name,
			"description": prototype.Description,
			"category":    prototype.Category,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode prototype companion data")
	}

	data := models.NewBusinessData(userID, "", "product_data", companion, 1)
	if _, err := s.data.Create(ctx, data); err != nil {
		log.Printf("[AnalysisService] Failed to persist prototype companion data: %v", err)
		result.Warning = PersistWarning
		return result, nil
	}

	record := models.NewAnalysisRecord(userID, &data.ID, models.AnalysisPrototype, map[string]interface{}{
		"prototype": prototype,
	})
	if _, err := s.analyses.Create(ctx, record); err != nil {
		log.Printf("[AnalysisService] Failed to persist prototype analysis: %v", err)
		result.Warning = PersistWarning
		return result, nil
	}
	result.AnalysisID = record.ID
	return result, nil
}

// MarketResearchResult is the response of one market research run.
type MarketResearchResult struct {
	AnalysisID uuid.UUID             `json:"id,omitempty"`
	Analysis   models.MarketResearch `json:"analysis"`
	Warning    string                `json:"warning,omitempty"`
}

// AnalyzeMarketResearch runs the pipeline over free-text research notes.
func (s *AnalysisService) AnalyzeMarketResearch(ctx context.Context, userID uuid.UUID, secondary, primary string) (*MarketResearchResult, error) {
	if strings.TrimSpace(secondary) == "" && strings.TrimSpace(primary) == "" {
		return nil, errors.InvalidInput("at least one of secondary or primary research data is required")
	}

	prompt := ai.BuildPrompt(ai.PromptRequest{
		Task: ai.TaskMarketResearch,
		FreeText: map[string]string{
			"secondaryResearch": secondary,
			"primaryResearch":   primary,
		},
	})

	var analysis models.MarketResearch
	raw, err := s.generate(ctx, prompt)
	if err != nil {
		log.Printf("[AnalysisService] Upstream call failed, using default market research: %v", err)
		analysis = ai.NormalizeMarketResearch(nil, models.GeneratedByFallback)
	} else if extracted, ok := ai.Extract(raw); ok {
		analysis = ai.NormalizeMarketResearch(objectPartial(extracted), s.generator.ModelName())
	} else {
		log.Printf("[AnalysisService] Unparsable market research response, using defaults")
		analysis = ai.NormalizeMarketResearch(nil, models.GeneratedByFallback)
	}

	result := &MarketResearchResult{Analysis: analysis}

	record := models.NewAnalysisRecord(userID, nil, models.AnalysisMarketResearch, map[string]interface{}{
		"analysis": analysis,
	})
	if _, err := s.analyses.Create(ctx, record); err != nil {
		log.Printf("[AnalysisService] Failed to persist market research: %v", err)
		result.Warning = PersistWarning
		return result, nil
	}
	result.AnalysisID = record.ID
	return result, nil
}

// BCGResult is the response of one BCG matrix run.
type BCGResult struct {
	AnalysisID uuid.UUID           `json:"id,omitempty"`
	Matrix     *bcg.Matrix         `json:"matrix"`
	Narrative  models.BCGNarrative `json:"narrative"`
	Warning    string              `json:"warning,omitempty"`
}

// GenerateBCG classifies a dataset into a BCG matrix and asks the model for a
// narrative over the computed summary. Classification is local and always
// succeeds on a well-formed dataset; only the narrative involves the model.
func (s *AnalysisService) GenerateBCG(ctx context.Context, userID, dataID uuid.UUID) (*BCGResult, error) {
	ds, err := s.loadDataset(ctx, userID, dataID)
	if err != nil {
		return nil, err
	}

	matrix, err := bcg.BuildMatrix(ds)
	if err != nil {
		return nil, err
	}

	prompt := ai.BuildPrompt(ai.PromptRequest{
		Task:      ai.TaskBCGNarrative,
		FreeText:  map[string]string{"matrixSummary": matrixSummaryText(matrix)},
		TotalRows: matrix.Total,
	})

	var narrative models.BCGNarrative
	raw, err := s.generate(ctx, prompt)
	if err != nil {
		log.Printf("[AnalysisService] Upstream call failed, using default narrative: %v", err)
		narrative = ai.NormalizeBCGNarrative(nil, models.GeneratedByFallback)
	} else if extracted, ok := ai.Extract(raw); ok {
		narrative = ai.NormalizeBCGNarrative(objectPartial(extracted), s.generator.ModelName())
	} else {
		narrative = ai.NormalizeBCGNarrative(nil, models.GeneratedByFallback)
	}

	result := &BCGResult{Matrix: matrix, Narrative: narrative}

	record := models.NewAnalysisRecord(userID, &dataID, models.AnalysisBCG, map[string]interface{}{
		"matrix":    matrix,
		"narrative": narrative,
	})
	if _, err := s.analyses.Create(ctx, record); err != nil {
		log.Printf("[AnalysisService] Failed to persist BCG analysis: %v", err)
		result.Warning = PersistWarning
		return result, nil
	}
	result.AnalysisID = record.ID

	for _, product := range matrix.TopProducts {
		item := &models.BCGMatrixItem{
			ID:           uuid.New(),
			AnalysisID:   record.ID,
			ItemName:     product.Name,
			Category:     string(product.Category),
			MarketGrowth: product.GrowthRate,
			MarketShare:  product.MarketShare,
			CreatedAt:    record.CreatedAt,
		}
		if _, err := s.bcgItems.Create(ctx, item); err != nil {
			log.Printf("[AnalysisService] Failed to persist BCG item %q: %v", product.Name, err)
			result.Warning = PersistWarning
		}
	}
	return result, nil
}

// GetAnalysis returns one stored analysis.
func (s *AnalysisService) GetAnalysis(ctx context.Context, userID, analysisID uuid.UUID) (*models.AnalysisRecord, error) {
	return s.analyses.GetByID(ctx, userID, analysisID)
}

// ListAnalyses returns a user's analyses, optionally filtered by type.
func (s *AnalysisService) ListAnalyses(ctx context.Context, userID uuid.UUID, analysisType string, limit int) ([]*models.AnalysisRecord, error) {
	return s.analyses.ListByUser(ctx, userID, analysisType, limit)
}

// ListAnalysesByData returns analyses of one type over one dataset, newest
// first.
func (s *AnalysisService) ListAnalysesByData(ctx context.Context, userID uuid.UUID, analysisType string, dataID uuid.UUID) ([]*models.AnalysisRecord, error) {
	return s.analyses.GetByTypeAndDataID(ctx, userID, analysisType, dataID)
}

// SaveStrategyDraft persists a user-edited strategy so it survives later
// regenerations of the same dataset.
func (s *AnalysisService) SaveStrategyDraft(ctx context.Context, userID, dataID uuid.UUID, strategy map[string]interface{}) (*models.AnalysisRecord, error) {
	normalized := ai.NormalizeStrategy(strategy, models.GeneratedByFallback)
	record := models.NewAnalysisRecord(userID, &dataID, models.AnalysisStrategyDraft, map[string]interface{}{
		"strategy": normalized,
	})
	if _, err := s.analyses.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// UpdateAnalysis replaces the content of a stored analysis.
func (s *AnalysisService) UpdateAnalysis(ctx context.Context, userID, analysisID uuid.UUID, content map[string]interface{}) (*models.AnalysisRecord, error) {
	record, err := s.analyses.GetByID(ctx, userID, analysisID)
	if err != nil {
		return nil, err
	}
	record.Content = models.JSONBMap(content)
	if err := s.analyses.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteAnalysis removes an analysis. A prototype's companion dataset goes
// with it; failure to remove the companion is logged, not surfaced.
func (s *AnalysisService) DeleteAnalysis(ctx context.Context, userID, analysisID uuid.UUID) error {
	record, err := s.analyses.GetByID(ctx, userID, analysisID)
	if err != nil {
		return err
	}
	if record.AnalysisType == models.AnalysisPrototype && record.DataID != nil {
		if err := s.data.Delete(ctx, userID, *record.DataID); err != nil {
			log.Printf("[AnalysisService] Could not delete prototype companion data: %v", err)
		}
	}
	return s.analyses.Delete(ctx, userID, analysisID)
}

// generate performs one semaphore-bounded call to the external endpoint.
func (s *AnalysisService) generate(ctx context.Context, prompt string) (string, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return "", errors.UpstreamUnavailable(err)
	}
	defer s.sem.Release(1)
	return s.generator.GenerateText(ctx, prompt)
}

// loadDataset reads and decodes one stored dataset, surfacing shape problems
// as MalformedDataset.
func (s *AnalysisService) loadDataset(ctx context.Context, userID, dataID uuid.UUID) (*dataset.Dataset, error) {
	data, err := s.data.GetByID(ctx, userID, dataID)
	if err != nil {
		return nil, err
	}
	value, err := data.Content.Decode()
	if err != nil {
		return nil, errors.MalformedDataset("stored dataset content is not valid JSON")
	}
	return dataset.ParseContent(value)
}

// objectPartial coerces an extracted value into a single partial object,
// taking the first element of an array result.
func objectPartial(extracted interface{}) map[string]interface{} {
	switch v := extracted.(type) {
	case map[string]interface{}:
		return v
	case []interface{}:
		for _, item := range v {
			if obj, ok := item.(map[string]interface{}); ok {
				return obj
			}
		}
	}
	return nil
}

func columnLabels(ds *dataset.Dataset) []string {
	labels := make([]string, 0, len(ds.Columns))
	for _, col := range ds.Columns {
		labels = append(labels, col.Label)
	}
	return labels
}

// matrixSummaryText renders the computed matrix for prompt interpolation.
func matrixSummaryText(matrix *bcg.Matrix) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thresholds: market share %.2f, growth rate %.2f\n", matrix.Thresholds.MarketShare, matrix.Thresholds.GrowthRate)
	fmt.Fprintf(&b, "Quadrant counts: %d stars, %d cash cows, %d question marks, %d dogs (of %d products)\n",
		matrix.Counts[bcg.Star], matrix.Counts[bcg.CashCow], matrix.Counts[bcg.QuestionMark], matrix.Counts[bcg.Dog], matrix.Total)
	b.WriteString("Top products by quantity:\n")
	for _, product := range matrix.TopProducts {
		fmt.Fprintf(&b, "- %s: quantity %.0f, share %.2f, growth %.2f, quadrant %s\n",
			product.Name, product.Quantity, product.MarketShare, product.GrowthRate, product.Category)
	}
	return b.String()
}
