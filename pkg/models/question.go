package models

// Question is the raw input unit of work for the pipeline.
// It is created once per request and never mutated.
type Question struct {
	Text      string `json:"text"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`

	// ClientIP is filled by the transport layer for audit events. It is
	// never part of the request body.
	ClientIP string `json:"-"`
}

// IntentCategory classifies the purpose of a question.
type IntentCategory string

const (
	IntentDataRetrieval     IntentCategory = "data_retrieval"
	IntentReportGeneration  IntentCategory = "report_generation"
	IntentInsightGeneration IntentCategory = "insight_generation"
	IntentQueryAssistance   IntentCategory = "query_assistance"
	IntentAllocation        IntentCategory = "allocation_explainability"
	IntentKnowledgeBase     IntentCategory = "knowledge_base"
	IntentUnknown           IntentCategory = "unknown"
)

// Intent is the classification result for a question.
// Created by the classifier and read-only afterward.
type Intent struct {
	Category       IntentCategory `json:"category"`
	SubCategory    string         `json:"sub_category,omitempty"`
	QueryType      string         `json:"query_type,omitempty"` // select, aggregate, compare, trend, report
	Entities       []string       `json:"entities,omitempty"`
	TimeRange      string         `json:"time_range,omitempty"`
	Confidence     float64        `json:"confidence"`
	SuggestedTools []string       `json:"suggested_tools,omitempty"`
}

// CandidateQuery is the unvalidated generator output.
type CandidateQuery struct {
	SQL         string   `json:"sql"`
	Explanation string   `json:"explanation"`
	TablesUsed  []string `json:"tables_used,omitempty"`
	Confidence  float64  `json:"confidence"`
}

// CostTier is a coarse execution cost estimate.
type CostTier string

const (
	CostLow    CostTier = "low"
	CostMedium CostTier = "medium"
	CostHigh   CostTier = "high"
)

// ValidationOutcome is the safety verdict for a candidate query.
// Warnings never affect validity.
type ValidationOutcome struct {
	Valid         bool     `json:"valid"`
	SQL           string   `json:"sql"` // cleaned, execution-ready text
	Errors        []string `json:"errors,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
	EstimatedCost CostTier `json:"estimated_cost"`
}

// ExecutionResult holds the rows returned by the execution contract.
type ExecutionResult struct {
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
	RowCount int      `json:"row_count"`
}

// QueryResponse is the one boundary contract the orchestrator exposes.
// Success=false always implies Data is nil and Error is non-empty.
type QueryResponse struct {
	Success     bool             `json:"success"`
	Question    string           `json:"question"`
	SQL         string           `json:"sql"`
	Explanation string           `json:"explanation"`
	Data        *ExecutionResult `json:"data,omitempty"`
	Error       string           `json:"error,omitempty"`
	Warnings    []string         `json:"warnings"`
	Cached      bool             `json:"cached"`
}
