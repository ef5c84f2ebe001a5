package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names shared by the repositories.
const (
	tableSessions     = "sessions"
	tableMastery      = "concept_mastery"
	tableQuestionBank = "question_bank"
	tableLLMRequests  = "llm_requests"
)

var (
	// SessionsColumns holds the columns for the "sessions" table.
	// The session document lives in "data"; the other columns exist for
	// lookups and optimistic concurrency.
	SessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "concept_id", Type: field.TypeString},
		{Name: "completed", Type: field.TypeBool, Default: false},
		{Name: "version", Type: field.TypeInt64, Default: 0},
		{Name: "schema_version", Type: field.TypeString},
		{Name: "data", Type: field.TypeJSON},
	}
	// SessionsTable holds the schema information for the "sessions" table.
	SessionsTable = &schema.Table{
		Name:       tableSessions,
		Columns:    SessionsColumns,
		PrimaryKey: []*schema.Column{SessionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "session_user_id_concept_id", Columns: []*schema.Column{SessionsColumns[1], SessionsColumns[2]}},
		},
	}

	// MasteryColumns holds the columns for the "concept_mastery" table.
	// The primary key is the user_id + "_" + concept_id composite.
	MasteryColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "concept_id", Type: field.TypeString},
		{Name: "version", Type: field.TypeInt64, Default: 0},
		{Name: "schema_version", Type: field.TypeString},
		{Name: "data", Type: field.TypeJSON},
	}
	// MasteryTable holds the schema information for the "concept_mastery" table.
	MasteryTable = &schema.Table{
		Name:       tableMastery,
		Columns:    MasteryColumns,
		PrimaryKey: []*schema.Column{MasteryColumns[0]},
		Indexes: []*schema.Index{
			{Name: "conceptmastery_user_id", Columns: []*schema.Column{MasteryColumns[1]}},
		},
	}

	// QuestionBankColumns holds the columns for the "question_bank" table.
	// Rows are append-only.
	QuestionBankColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "concept_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "schema_version", Type: field.TypeString},
		{Name: "data", Type: field.TypeJSON},
	}
	// QuestionBankTable holds the schema information for the "question_bank" table.
	QuestionBankTable = &schema.Table{
		Name:       tableQuestionBank,
		Columns:    QuestionBankColumns,
		PrimaryKey: []*schema.Column{QuestionBankColumns[0]},
		Indexes: []*schema.Index{
			{Name: "questionbank_concept_id", Columns: []*schema.Column{QuestionBankColumns[1]}},
		},
	}

	// LLMRequestsColumns holds the columns for the "llm_requests" table.
	LLMRequestsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "created_at_ms", Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool, Default: false},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LLMRequestsTable holds the schema information for the "llm_requests" table.
	LLMRequestsTable = &schema.Table{
		Name:       tableLLMRequests,
		Columns:    LLMRequestsColumns,
		PrimaryKey: []*schema.Column{LLMRequestsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequest_purpose", Columns: []*schema.Column{LLMRequestsColumns[4]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		SessionsTable,
		MasteryTable,
		QuestionBankTable,
		LLMRequestsTable,
	}
)
