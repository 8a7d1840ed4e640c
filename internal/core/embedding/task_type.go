package embedding

import (
	"errors"
	"fmt"
	"strings"
)

// TaskType tags an embedding request with its intended downstream use so
// the model can optimize the vector space for it.
type TaskType string

const (
	TaskRetrievalQuery     TaskType = "RETRIEVAL_QUERY"
	TaskRetrievalDocument  TaskType = "RETRIEVAL_DOCUMENT"
	TaskSemanticSimilarity TaskType = "SEMANTIC_SIMILARITY"
	TaskClassification     TaskType = "CLASSIFICATION"
	TaskClustering         TaskType = "CLUSTERING"
	TaskQuestionAnswering  TaskType = "QUESTION_ANSWERING"
	TaskFactVerification   TaskType = "FACT_VERIFICATION"
	TaskCodeRetrievalQuery TaskType = "CODE_RETRIEVAL_QUERY"
)

// ErrInvalidTaskType is returned for task types outside the supported set,
// always before any provider call is made.
var ErrInvalidTaskType = errors.New("invalid embedding task type")

// ParseTaskType validates a task type from an invocation payload.
// Matching is case-insensitive; the canonical form is upper snake case.
func ParseTaskType(s string) (TaskType, error) {
	switch t := TaskType(strings.ToUpper(strings.TrimSpace(s))); t {
	case TaskRetrievalQuery, TaskRetrievalDocument, TaskSemanticSimilarity,
		TaskClassification, TaskClustering, TaskQuestionAnswering,
		TaskFactVerification, TaskCodeRetrievalQuery:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTaskType, s)
}
