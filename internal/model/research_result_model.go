package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ResearchResult struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId           uuid.UUID      `gorm:"type:uuid;not null;index"`
	Query            string         `gorm:"type:text;not null"`
	ResearchQueries  datatypes.JSON `gorm:"type:jsonb"`
	EmbeddingQueries datatypes.JSON `gorm:"type:jsonb"`
	TranscriptChunks datatypes.JSON `gorm:"type:jsonb"`
	TextbookChunks   datatypes.JSON `gorm:"type:jsonb"`
	Papers           datatypes.JSON `gorm:"type:jsonb"`
	PerChunkAnswers  datatypes.JSON `gorm:"type:jsonb"`
	FinalAnswer      *string        `gorm:"type:text"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
}

func (ResearchResult) TableName() string {
	return "research_results"
}
