package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ai-fitness-be/internal/config"
	"ai-fitness-be/internal/dto"
	"ai-fitness-be/internal/entity"
	"ai-fitness-be/internal/pkg/cache"
	"ai-fitness-be/internal/repository/memory"
	"ai-fitness-be/internal/repository/specification"
	"ai-fitness-be/internal/repository/unitofwork"
	"ai-fitness-be/pkg/embedding"
	"ai-fitness-be/pkg/llm"
	"ai-fitness-be/pkg/papersearch"
	"ai-fitness-be/pkg/rag/agent"
	"ai-fitness-be/pkg/rag/conversation"
	"ai-fitness-be/pkg/rag/evidence"
	"ai-fitness-be/pkg/rag/planner"
	"ai-fitness-be/pkg/rag/retriever"
	"ai-fitness-be/pkg/rag/synthesizer"
)

// IRagService is the retrieval-augmented backend: conversational chat with
// tool-use, and standalone research runs with persisted results.
type IRagService interface {
	Chat(ctx context.Context, userId uuid.UUID, request *dto.ChatRequest) (*dto.ChatResponse, error)
	GenerateResearch(ctx context.Context, userId uuid.UUID, request *dto.ResearchRequest) (*dto.ResearchResultResponse, error)
	GetResearchById(ctx context.Context, userId uuid.UUID, researchId uuid.UUID) (*dto.ResearchResultResponse, error)
	GetResearchHistory(ctx context.Context, userId uuid.UUID) ([]*dto.ResearchHistoryItem, error)
}

type ragService struct {
	uowFactory       unitofwork.RepositoryFactory
	profileRepo      *memory.ProfileRepository
	researchCache    *cache.ResearchCache
	publisherService IPublisherService
	ragLogger        *log.Logger

	agent       *agent.Agent
	synthesizer *synthesizer.Synthesizer

	historyWindow int
	historyLimit  int
}

// NewRagService wires the retrieval pipeline: the planner and retriever
// are shared between the chat agent and the research synthesizer. The
// agent needs a tool-calling backend; planning and synthesis are plain
// text generation and run on whichever provider is configured.
func NewRagService(
	uowFactory unitofwork.RepositoryFactory,
	toolProvider llm.ToolProvider,
	textProvider llm.Provider,
	embeddingProvider embedding.Provider,
	paperClient *papersearch.Client,
	profileRepo *memory.ProfileRepository,
	researchCache *cache.ResearchCache,
	publisherService IPublisherService,
	ragCfg config.RagConfig,
	ragLogPath string,
) IRagService {
	ragLogger := initRagLogger(ragLogPath)

	queryPlanner := planner.NewPlanner(textProvider)
	chunkSearcher := &uowChunkSearcher{uowFactory: uowFactory}
	ret := retriever.NewRetriever(embeddingProvider, chunkSearcher, paperClient, ragLogger, retriever.Config{
		TranscriptTopK: ragCfg.TranscriptTopK,
		TextbookTopK:   ragCfg.TextbookTopK,
		PaperResults:   ragCfg.PaperResults,
		MaxConcurrency: 4,
	})

	chatAgent := agent.NewAgent(toolProvider, queryPlanner, ret, ragLogger, agent.Config{
		MaxToolTurns:        ragCfg.MaxToolTurns,
		HistoryWindow:       ragCfg.HistoryWindow,
		MaxResearchQueries:  ragCfg.MaxResearchQueries,
		MaxEmbeddingQueries: ragCfg.MaxEmbeddingQueries,
	})

	syn := synthesizer.NewSynthesizer(textProvider, queryPlanner, ret, ragLogger, synthesizer.Config{
		MaxResearchQueries:  ragCfg.MaxResearchQueries,
		MaxEmbeddingQueries: ragCfg.MaxEmbeddingQueries,
	})

	return &ragService{
		uowFactory:       uowFactory,
		profileRepo:      profileRepo,
		researchCache:    researchCache,
		publisherService: publisherService,
		ragLogger:        ragLogger,
		agent:            chatAgent,
		synthesizer:      syn,
		historyWindow:    ragCfg.HistoryWindow,
		historyLimit:     ragCfg.HistoryLimit,
	}
}

func initRagLogger(logPath string) *log.Logger {
	if logPath == "" {
		logPath = filepath.Join("logs", "llm_rag.log")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

// uowChunkSearcher adapts the gorm-backed embedding repository to the
// retriever's search interface.
type uowChunkSearcher struct {
	uowFactory unitofwork.RepositoryFactory
}

func (a *uowChunkSearcher) SearchSimilar(ctx context.Context, vector []float32, sourceType string, topK int) ([]evidence.Chunk, error) {
	uow := a.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.ChunkEmbeddingRepository().SearchSimilarWithScore(ctx, vector, sourceType, topK)
	if err != nil {
		return nil, err
	}
	chunks := make([]evidence.Chunk, 0, len(scored))
	for _, s := range scored {
		chunks = append(chunks, evidence.Chunk{
			Text:        s.Embedding.Document,
			SourceTitle: s.Embedding.SourceTitle,
			SourceType:  s.Embedding.SourceType,
			Score:       s.Similarity,
			SourceRef:   s.Embedding.SourceRef,
		})
	}
	return chunks, nil
}

func (rs *ragService) Chat(ctx context.Context, userId uuid.UUID, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	profile, err := rs.loadProfile(ctx, userId)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, 0, len(request.History))
	for _, m := range request.History {
		role := llm.Role(m.Role)
		if !role.Valid() {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid message role: %s", m.Role))
		}
		history = append(history, llm.Message{Role: role, Content: m.Content})
	}

	state := conversation.NewState(history)
	state.Append(llm.Message{Role: llm.RoleHuman, Content: request.Query})

	answer, err := rs.agent.Chat(ctx, state, profile)
	if err != nil {
		rs.ragLogger.Printf("ERROR chat turn failed for user %s: %v", userId, err)
		return nil, fiber.NewError(fiber.StatusBadGateway, "The assistant is unavailable right now")
	}

	return &dto.ChatResponse{Answer: answer}, nil
}

func (rs *ragService) GenerateResearch(ctx context.Context, userId uuid.UUID, request *dto.ResearchRequest) (*dto.ResearchResultResponse, error) {
	synRes, err := rs.synthesizer.Synthesize(ctx, request.Query)
	if err != nil {
		rs.ragLogger.Printf("ERROR research run failed for user %s: %v", userId, err)
		return nil, fiber.NewError(fiber.StatusBadGateway, "The research pipeline is unavailable right now")
	}

	result := &entity.ResearchResult{
		UserId:           userId,
		Query:            synRes.Query,
		ResearchQueries:  synRes.ResearchQueries,
		EmbeddingQueries: synRes.EmbeddingQueries,
		TranscriptChunks: synRes.TranscriptChunks,
		TextbookChunks:   synRes.TextbookChunks,
		Papers:           synRes.Papers,
		PerChunkAnswers:  synRes.PerChunkAnswers,
		FinalAnswer:      synRes.FinalAnswer,
	}

	uow := rs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ResearchResultRepository().Create(ctx, result); err != nil {
		return nil, err
	}

	rs.researchCache.Set(ctx, result)

	if err := rs.publisherService.PublishResearchCompleted(&dto.PublishResearchCompletedMessage{
		ResearchId: result.Id,
		UserId:     userId,
		Query:      result.Query,
	}); err != nil {
		rs.ragLogger.Printf("WARN failed to publish research completed for %s: %v", result.Id, err)
	}

	return mapResearchResult(result), nil
}

func (rs *ragService) GetResearchById(ctx context.Context, userId uuid.UUID, researchId uuid.UUID) (*dto.ResearchResultResponse, error) {
	if cached, _ := rs.researchCache.Get(ctx, researchId.String()); cached != nil {
		if cached.UserId != userId {
			return nil, fiber.NewError(fiber.StatusNotFound, "Research result not found")
		}
		return mapResearchResult(cached), nil
	}

	uow := rs.uowFactory.NewUnitOfWork(ctx)
	result, err := uow.ResearchResultRepository().FindById(ctx, researchId)
	if err != nil {
		return nil, err
	}
	if result == nil || result.UserId != userId {
		return nil, fiber.NewError(fiber.StatusNotFound, "Research result not found")
	}

	rs.researchCache.Set(ctx, result)
	return mapResearchResult(result), nil
}

func (rs *ragService) GetResearchHistory(ctx context.Context, userId uuid.UUID) ([]*dto.ResearchHistoryItem, error) {
	uow := rs.uowFactory.NewUnitOfWork(ctx)
	results, err := uow.ResearchResultRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Limit{N: rs.historyLimit},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ResearchHistoryItem, len(results))
	for i, r := range results {
		items[i] = &dto.ResearchHistoryItem{
			Id:             r.Id,
			Query:          r.Query,
			HasFinalAnswer: r.FinalAnswer != nil,
			CreatedAt:      r.CreatedAt,
		}
	}
	return items, nil
}

func (rs *ragService) loadProfile(ctx context.Context, userId uuid.UUID) (conversation.Profile, error) {
	user, found := rs.profileRepo.Get(userId.String())
	if !found {
		uow := rs.uowFactory.NewUnitOfWork(ctx)
		var err error
		user, err = uow.UserRepository().FindById(ctx, userId)
		if err != nil {
			return conversation.Profile{}, err
		}
		if user == nil {
			return conversation.Profile{}, fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		rs.profileRepo.Save(user)
	}

	profile := conversation.Profile{
		Username:   user.Username,
		FullName:   user.FullName,
		Age:        user.Age(time.Now()),
		HeightUnit: string(user.HeightUnit),
	}
	if user.HeightRaw != nil {
		profile.HeightRaw = *user.HeightRaw
	}
	return profile, nil
}

func mapResearchResult(r *entity.ResearchResult) *dto.ResearchResultResponse {
	papers := make([]dto.ResearchPaperDTO, len(r.Papers))
	for i, p := range r.Papers {
		papers[i] = dto.ResearchPaperDTO{
			Title:         p.Title,
			URL:           p.URL,
			PublishedDate: p.PublishedDate,
			Summary:       p.Summary,
		}
	}
	answers := r.PerChunkAnswers
	if answers == nil {
		answers = []string{}
	}
	researchQueries := r.ResearchQueries
	if researchQueries == nil {
		researchQueries = []string{}
	}
	embeddingQueries := r.EmbeddingQueries
	if embeddingQueries == nil {
		embeddingQueries = []string{}
	}
	return &dto.ResearchResultResponse{
		Id:               r.Id,
		Query:            r.Query,
		ResearchQueries:  researchQueries,
		EmbeddingQueries: embeddingQueries,
		TranscriptChunks: mapChunkDTOs(r.TranscriptChunks),
		TextbookChunks:   mapChunkDTOs(r.TextbookChunks),
		Papers:           papers,
		PerChunkAnswers:  answers,
		FinalAnswer:      r.FinalAnswer,
		CreatedAt:        r.CreatedAt,
	}
}

func mapChunkDTOs(chunks []evidence.Chunk) []dto.ResearchChunkDTO {
	out := make([]dto.ResearchChunkDTO, len(chunks))
	for i, c := range chunks {
		out[i] = dto.ResearchChunkDTO{
			Text:        c.Text,
			SourceTitle: c.SourceTitle,
			SourceType:  c.SourceType,
			Score:       c.Score,
			SourceRef:   c.SourceRef,
		}
	}
	return out
}
