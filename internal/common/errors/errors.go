// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Profile test
const (
	ErrCodeProfileTestValidationFailed ErrorCode = "PROFILE_TEST_VALIDATION_FAILED"
	ErrCodeEmptySubmission             ErrorCode = "EMPTY_SUBMISSION"
	ErrCodeSubmissionSaveFailed        ErrorCode = "SUBMISSION_SAVE_FAILED"
)

// Catalog and content
const (
	ErrCodeRecommendedPathsNotFound ErrorCode = "RECOMMENDED_PATHS_NOT_FOUND"
	ErrCodeCatalogLookupFailed      ErrorCode = "CATALOG_LOOKUP_FAILED"
	ErrCodeSearchQueryFailed        ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout            ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeVideoNotFound            ErrorCode = "VIDEO_NOT_FOUND"
	ErrCodeVideoLookupFailed        ErrorCode = "VIDEO_LOOKUP_FAILED"
	ErrCodeContentSaveFailed        ErrorCode = "CONTENT_SAVE_FAILED"
	ErrCodePathNotFound             ErrorCode = "PATH_NOT_FOUND"
)

// Progress and certificates
const (
	ErrCodeProgressNotFound         ErrorCode = "PROGRESS_NOT_FOUND"
	ErrCodeProgressSaveFailed       ErrorCode = "PROGRESS_SAVE_FAILED"
	ErrCodeProgressLookupFailed     ErrorCode = "PROGRESS_LOOKUP_FAILED"
	ErrCodeCertificateAlreadyIssued ErrorCode = "CERTIFICATE_ALREADY_ISSUED"
	ErrCodePathNotCompleted         ErrorCode = "PATH_NOT_COMPLETED"
	ErrCodeCertificateIssueFailed   ErrorCode = "CERTIFICATE_ISSUE_FAILED"
	ErrCodeCertificateNotFound      ErrorCode = "CERTIFICATE_NOT_FOUND"
	ErrCodeCertificateLookupFailed  ErrorCode = "CERTIFICATE_LOOKUP_FAILED"
)

// Forum
const (
	ErrCodeTopicNotFound     ErrorCode = "TOPIC_NOT_FOUND"
	ErrCodeTopicSlugConflict ErrorCode = "TOPIC_SLUG_CONFLICT"
	ErrCodePostNotFound      ErrorCode = "POST_NOT_FOUND"
	ErrCodeForumQueryFailed  ErrorCode = "FORUM_QUERY_FAILED"
)

// Integrations
const (
	ErrCodeChatCompletionTimeout ErrorCode = "CHAT_COMPLETION_TIMEOUT"
	ErrCodeChatCompletionFailed  ErrorCode = "CHAT_COMPLETION_FAILED"
	ErrCodeSubscriptionFailed    ErrorCode = "SUBSCRIPTION_FAILED"
	ErrCodeNotificationFailed    ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// Generic
const (
	ErrCodeValidationFailed         ErrorCode = "VALIDATION_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeBusinessRuleViolation    ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeExternalService          ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout                  ErrorCode = "TIMEOUT_ERROR"
	ErrCodeResourceNotFound         ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeAuthentication           ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeInternal                 ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key that ends up in the BPMN error variables.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewProfileTestValidationError(details string) *StandardError {
	return newError(ErrCodeProfileTestValidationFailed, "Profile test answers are invalid", details, false)
}

func NewEmptySubmissionError() *StandardError {
	return newError(ErrCodeEmptySubmission, "At least one answer is required", "", false)
}

func NewSubmissionSaveFailedError(userID string, err error) *StandardError {
	return newError(ErrCodeSubmissionSaveFailed, "Failed to save profile test submission",
		fmt.Sprintf("userId: %s, error: %s", userID, err.Error()), true)
}

func NewRecommendedPathsNotFoundError(pathIDs []string) *StandardError {
	return newError(ErrCodeRecommendedPathsNotFound, "None of the recommended paths exist in the catalog",
		fmt.Sprintf("pathIds: %s", strings.Join(pathIDs, ",")), false)
}

func NewCatalogLookupFailedError(err error) *StandardError {
	return newError(ErrCodeCatalogLookupFailed, "Catalog lookup failed", err.Error(), true)
}

func NewSearchQueryFailedError(err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Path search query failed", err.Error(), true)
}

func NewSearchTimeoutError() *StandardError {
	return newError(ErrCodeSearchTimeout, "Path search timed out", "", true)
}

func NewVideoNotFoundError(videoID string) *StandardError {
	return newError(ErrCodeVideoNotFound, "YouTube video not found", fmt.Sprintf("videoId: %s", videoID), false)
}

func NewVideoLookupFailedError(err error) *StandardError {
	return newError(ErrCodeVideoLookupFailed, "YouTube metadata lookup failed", err.Error(), true)
}

func NewContentSaveFailedError(err error) *StandardError {
	return newError(ErrCodeContentSaveFailed, "Failed to save content", err.Error(), true)
}

func NewProgressNotFoundError(userID string, contentID int64) *StandardError {
	return newError(ErrCodeProgressNotFound, "Progress record not found",
		fmt.Sprintf("userId: %s, contentId: %d", userID, contentID), false)
}

func NewProgressSaveFailedError(err error) *StandardError {
	return newError(ErrCodeProgressSaveFailed, "Failed to save progress", err.Error(), true)
}

func NewCertificateAlreadyIssuedError(userID, pathID string) *StandardError {
	return newError(ErrCodeCertificateAlreadyIssued, "Certificate already issued for this path",
		fmt.Sprintf("userId: %s, pathId: %s", userID, pathID), false)
}

func NewPathNotCompletedError(completed, total int) *StandardError {
	return newError(ErrCodePathNotCompleted, "Path contents are not all completed",
		fmt.Sprintf("progress: %d/%d", completed, total), false).
		WithMetadata("completedCount", completed).
		WithMetadata("totalContents", total)
}

func NewCertificateIssueFailedError(err error) *StandardError {
	return newError(ErrCodeCertificateIssueFailed, "Failed to issue certificate", err.Error(), true)
}

func NewPathNotFoundError(pathID string) *StandardError {
	return newError(ErrCodePathNotFound, "Path not found", fmt.Sprintf("pathId: %s", pathID), false)
}

func NewProgressLookupFailedError(err error) *StandardError {
	return newError(ErrCodeProgressLookupFailed, "Failed to load user progress", err.Error(), true)
}

func NewCertificateNotFoundError(details string) *StandardError {
	return newError(ErrCodeCertificateNotFound, "Certificate not found or invalid", details, false)
}

func NewCertificateLookupFailedError(err error) *StandardError {
	return newError(ErrCodeCertificateLookupFailed, "Failed to load certificates", err.Error(), true)
}

func NewTopicNotFoundError(slug string) *StandardError {
	return newError(ErrCodeTopicNotFound, "Topic not found", fmt.Sprintf("slug: %s", slug), false)
}

// NewTopicSlugConflictError reports a title whose slug is already taken.
func NewTopicSlugConflictError(slug string) *StandardError {
	return newError(ErrCodeTopicSlugConflict, "A topic with a very similar title already exists",
		fmt.Sprintf("slug: %s", slug), false).
		WithMetadata("slug", slug)
}

// NewPostNotFoundError covers both a missing post and a post owned by
// someone else; the two are not distinguished.
func NewPostNotFoundError(postID, userID string) *StandardError {
	return newError(ErrCodePostNotFound, "Post not found or not owned by the user",
		fmt.Sprintf("postId: %s, userId: %s", postID, userID), false)
}

func NewForumQueryFailedError(err error) *StandardError {
	return newError(ErrCodeForumQueryFailed, "Forum query failed", err.Error(), true)
}

func NewChatCompletionTimeoutError() *StandardError {
	return newError(ErrCodeChatCompletionTimeout, "Chat completion timed out", "", true)
}

func NewChatCompletionFailedError(err error) *StandardError {
	return newError(ErrCodeChatCompletionFailed, "Could not get a response from the AI", err.Error(), true)
}

func NewSubscriptionFailedError(err error) *StandardError {
	return newError(ErrCodeSubscriptionFailed, "Failed to register feature interest", err.Error(), true)
}

func NewValidationError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Input validation failed", details, false)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true)
}

func NewQueryTimeoutError(queryType string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout", fmt.Sprintf("queryType: %s", queryType), true)
}

func NewBusinessRuleError(message, details string) *StandardError {
	return newError(ErrCodeBusinessRuleViolation, message, details, false)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError(ErrCodeResourceNotFound, fmt.Sprintf("Resource not found in %s", service), details, false)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthentication, "Authentication failed", details, false)
}

// BPMNErrorMapping overrides the BPMN code thrown for an internal code.
// Codes that are not listed are thrown as-is.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeEmptySubmission:       string(ErrCodeProfileTestValidationFailed),
	ErrCodeQueryTimeout:          string(ErrCodeQueryExecutionFailed),
	ErrCodeChatCompletionTimeout: string(ErrCodeChatCompletionFailed),
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSubmissionSaveFailed,
		ErrCodeCatalogLookupFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeContentSaveFailed,
		ErrCodeProgressSaveFailed,
		ErrCodeCertificateIssueFailed,
		ErrCodeCertificateLookupFailed,
		ErrCodeProgressLookupFailed,
		ErrCodeForumQueryFailed,
		ErrCodeSubscriptionFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeSearchTimeout,
		ErrCodeQueryTimeout,
		ErrCodeVideoLookupFailed,
		ErrCodeNotificationFailed,
		ErrCodeTimeout:
		return 2

	case ErrCodeChatCompletionTimeout,
		ErrCodeChatCompletionFailed:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, ok := BPMNErrorMapping[stdErr.Code]
	if !ok {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for log dashboards.
func GetErrorCategory(code ErrorCode) string {
	c := string(code)
	switch {
	case strings.Contains(c, "PROFILE_TEST") || strings.Contains(c, "SUBMISSION"):
		return "PROFILE_TEST"
	case strings.Contains(c, "TOPIC") || strings.Contains(c, "POST") || strings.Contains(c, "FORUM"):
		return "FORUM"
	case strings.Contains(c, "CERTIFICATE") || c == string(ErrCodePathNotCompleted):
		return "CERTIFICATE"
	case strings.Contains(c, "PATH") || strings.Contains(c, "CATALOG") || strings.Contains(c, "SEARCH"):
		return "CATALOG"
	case strings.Contains(c, "VIDEO") || strings.Contains(c, "CONTENT") || strings.Contains(c, "PROGRESS"):
		return "CONTENT"
	case strings.Contains(c, "CHAT"):
		return "AI"
	case strings.Contains(c, "SUBSCRIPTION") || strings.Contains(c, "NOTIFICATION"):
		return "ENGAGEMENT"
	case strings.Contains(c, "DATABASE") || strings.Contains(c, "QUERY"):
		return "DATABASE"
	case strings.Contains(c, "AUTH"):
		return "AUTH"
	case strings.Contains(c, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
