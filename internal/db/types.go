package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/academy-desk/internal/parsing"
	"github.com/jonathan/academy-desk/internal/types"
)

// Draft is an extracted intake record saved for later review.
type Draft struct {
	ID             uuid.UUID           `json:"id"`
	RawText        string              `json:"raw_text"`
	Record         types.PartialRecord `json:"record"`
	ReasonCategory string              `json:"reason_category,omitempty"`
	StudentName    string              `json:"student_name,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

// DraftInput is the data needed to save a draft.
type DraftInput struct {
	RawText        string
	Record         types.PartialRecord
	ReasonCategory string
	StudentName    string
}

// NewDraftInput builds a DraftInput, copying the indexed columns out of rec.
func NewDraftInput(rawText string, rec types.PartialRecord) *DraftInput {
	return &DraftInput{
		RawText:        rawText,
		Record:         rec,
		ReasonCategory: rec.String(parsing.FieldReasonCategory),
		StudentName:    rec.String(parsing.FieldName),
	}
}

// ReasonCount is the number of drafts filed under one reason category.
type ReasonCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Pagination bounds for ListDrafts.
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// NormalizePage clamps limit to [1, MaxListLimit] (DefaultListLimit when
// unset) and offset to >= 0.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
