package mapper

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-fitness-be/internal/entity"
	"ai-fitness-be/pkg/papersearch"
	"ai-fitness-be/pkg/rag/evidence"
)

func TestResearchResultRoundTrip(t *testing.T) {
	m := NewResearchResultMapper()
	final := "Train each muscle twice a week."

	src := &entity.ResearchResult{
		Id:               uuid.New(),
		UserId:           uuid.New(),
		Query:            "optimal training frequency",
		ResearchQueries:  []string{"resistance training frequency hypertrophy"},
		EmbeddingQueries: []string{"how often should I train each muscle"},
		TranscriptChunks: []evidence.Chunk{
			{Text: "frequency talk", SourceTitle: "Hypertrophy Ep. 1", SourceType: evidence.SourceTranscript, Score: 0.88},
		},
		TextbookChunks: []evidence.Chunk{
			{Text: "frequency and volume interact", SourceTitle: "Periodization, ch. 5", SourceType: evidence.SourceTextbook, Score: 0.74},
		},
		Papers: []papersearch.Paper{
			{Title: "Training frequency meta-analysis", URL: "https://example.org/p"},
		},
		PerChunkAnswers: []string{"The video recommends twice a week."},
		FinalAnswer:     &final,
		CreatedAt:       time.Now(),
	}

	model, err := m.ToModel(src)
	require.NoError(t, err)
	require.NotNil(t, model)

	back, err := m.ToEntity(model)
	require.NoError(t, err)

	assert.Equal(t, src.Id, back.Id)
	assert.Equal(t, src.Query, back.Query)
	assert.Equal(t, src.ResearchQueries, back.ResearchQueries)
	assert.Equal(t, src.EmbeddingQueries, back.EmbeddingQueries)
	require.Len(t, back.TranscriptChunks, 1)
	assert.Equal(t, "Hypertrophy Ep. 1", back.TranscriptChunks[0].SourceTitle)
	require.Len(t, back.TextbookChunks, 1)
	assert.Equal(t, "Periodization, ch. 5", back.TextbookChunks[0].SourceTitle)
	require.Len(t, back.Papers, 1)
	assert.Equal(t, "Training frequency meta-analysis", back.Papers[0].Title)
	require.NotNil(t, back.FinalAnswer)
	assert.Equal(t, final, *back.FinalAnswer)
}

func TestResearchResultAbsentFinalAnswer(t *testing.T) {
	m := NewResearchResultMapper()

	src := &entity.ResearchResult{
		Id:     uuid.New(),
		UserId: uuid.New(),
		Query:  "q",
	}

	model, err := m.ToModel(src)
	require.NoError(t, err)
	assert.Nil(t, model.FinalAnswer)

	back, err := m.ToEntity(model)
	require.NoError(t, err)
	assert.Nil(t, back.FinalAnswer)
	assert.Empty(t, back.TranscriptChunks)
	assert.Empty(t, back.TextbookChunks)
	assert.Empty(t, back.ResearchQueries)
	assert.Empty(t, back.EmbeddingQueries)
}

func TestUserMapperHeightAndBirthDate(t *testing.T) {
	m := NewUserMapper()
	height := 180.5
	birth := time.Date(1995, 3, 12, 0, 0, 0, 0, time.UTC)

	e := m.ToEntity(m.ToModel(&entity.User{
		Id:         uuid.New(),
		Username:   "sam",
		FullName:   "Sam Doe",
		BirthDate:  &birth,
		HeightRaw:  &height,
		HeightUnit: entity.HeightUnitCm,
	}))

	require.NotNil(t, e.HeightRaw)
	assert.Equal(t, height, *e.HeightRaw)
	assert.Equal(t, entity.HeightUnitCm, e.HeightUnit)
	assert.Equal(t, 31, e.Age(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 30, e.Age(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
}
