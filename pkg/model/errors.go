package model

import (
	"github.com/m-mizutani/goerr/v2"
)

var (
	// TagInvalidInput is for requests rejected before any external call
	TagInvalidInput = goerr.NewTag("invalid_input")
	// TagNotFound is for lookups of a memory that does not exist
	TagNotFound = goerr.NewTag("not_found")
	// TagStoreUnavailable is for failures of the backing store
	TagStoreUnavailable = goerr.NewTag("store_unavailable")
	// TagProviderError is for failures of embedding, generation, extraction
	// and transcription providers
	TagProviderError = goerr.NewTag("provider_error")
	// TagSynthesisFailed is for failures of the answer generation step
	TagSynthesisFailed = goerr.NewTag("synthesis_failed")
	// TagIngestionFailed is for failures that prevented a memory from being saved
	TagIngestionFailed = goerr.NewTag("ingestion_failed")
)

// Operation names the user-facing action an error belongs to
type Operation int

const (
	OperationSearch Operation = iota
	OperationSave
	OperationList
)

// UserMessage translates an error into a message that is safe to show to
// end users. Provider bodies, credentials and stack details never appear in
// the result; the caller is expected to log err separately.
func UserMessage(err error, op Operation) string {
	if goerr.HasTag(err, TagInvalidInput) {
		switch op {
		case OperationSearch:
			return "Please provide a question to search your memories."
		case OperationSave:
			return "Please provide some text to remember."
		}
	}

	if goerr.HasTag(err, TagNotFound) {
		return "Sorry, that memory could not be found."
	}

	switch op {
	case OperationSearch:
		return "Sorry, I could not complete the search. Please try again."
	case OperationSave:
		return "Sorry, I could not save the memory. Please try again."
	default:
		return "Sorry, I could not load your memories. Please try again."
	}
}
