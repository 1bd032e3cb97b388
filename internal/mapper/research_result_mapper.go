package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"

	"ai-fitness-be/internal/entity"
	"ai-fitness-be/internal/model"
	"ai-fitness-be/pkg/papersearch"
	"ai-fitness-be/pkg/rag/evidence"
)

type ResearchResultMapper struct{}

func NewResearchResultMapper() *ResearchResultMapper {
	return &ResearchResultMapper{}
}

func (m *ResearchResultMapper) ToEntity(r *model.ResearchResult) (*entity.ResearchResult, error) {
	if r == nil {
		return nil, nil
	}
	e := &entity.ResearchResult{
		Id:          r.Id,
		UserId:      r.UserId,
		Query:       r.Query,
		FinalAnswer: r.FinalAnswer,
		CreatedAt:   r.CreatedAt,
	}
	for _, field := range []struct {
		raw  datatypes.JSON
		dest interface{}
	}{
		{r.ResearchQueries, &e.ResearchQueries},
		{r.EmbeddingQueries, &e.EmbeddingQueries},
		{r.TranscriptChunks, &e.TranscriptChunks},
		{r.TextbookChunks, &e.TextbookChunks},
		{r.Papers, &e.Papers},
		{r.PerChunkAnswers, &e.PerChunkAnswers},
	} {
		if len(field.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(field.raw, field.dest); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (m *ResearchResultMapper) ToModel(e *entity.ResearchResult) (*model.ResearchResult, error) {
	if e == nil {
		return nil, nil
	}

	researchQueries, err := marshalJSONField(e.ResearchQueries, []string{})
	if err != nil {
		return nil, err
	}
	embeddingQueries, err := marshalJSONField(e.EmbeddingQueries, []string{})
	if err != nil {
		return nil, err
	}
	transcriptChunks, err := marshalJSONField(e.TranscriptChunks, []evidence.Chunk{})
	if err != nil {
		return nil, err
	}
	textbookChunks, err := marshalJSONField(e.TextbookChunks, []evidence.Chunk{})
	if err != nil {
		return nil, err
	}
	papers, err := marshalJSONField(e.Papers, []papersearch.Paper{})
	if err != nil {
		return nil, err
	}
	answers, err := marshalJSONField(e.PerChunkAnswers, []string{})
	if err != nil {
		return nil, err
	}

	return &model.ResearchResult{
		Id:               e.Id,
		UserId:           e.UserId,
		Query:            e.Query,
		ResearchQueries:  researchQueries,
		EmbeddingQueries: embeddingQueries,
		TranscriptChunks: transcriptChunks,
		TextbookChunks:   textbookChunks,
		Papers:           papers,
		PerChunkAnswers:  answers,
		FinalAnswer:      e.FinalAnswer,
		CreatedAt:        e.CreatedAt,
	}, nil
}

// marshalJSONField marshals a slice for a jsonb column, substituting an
// empty slice for nil so the column never holds JSON null.
func marshalJSONField[T any](value []T, empty []T) (datatypes.JSON, error) {
	if value == nil {
		value = empty
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
