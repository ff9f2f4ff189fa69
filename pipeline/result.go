package pipeline

import (
	"encoding/json"

	"github.com/wudi/packlist/record"
)

// Status is the overall outcome of a document.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// PageResult holds what one page produced.
type PageResult struct {
	// Index is the zero-based page number.
	Index   int
	Records []record.Record
	// Line counters. Lines counts non-blank lines only.
	Lines    int
	NotARow  int
	Invalid  int
	Filtered int
	// Err is set when the page could not be rendered or recognized and the
	// recovery strategy chose to skip it.
	Err error
}

// OK reports whether the page was processed.
func (p PageResult) OK() bool { return p.Err == nil }

// DocumentResult is the document-level result. It serializes to
// {"status":"success","data":[...]} or {"status":"error","message":"..."}.
type DocumentResult struct {
	Status  Status
	Data    []record.Record
	Message string
	// Pages keeps per-page diagnostics, including pages that finished before
	// a fail-fast error.
	Pages []PageResult
}

func (r DocumentResult) OK() bool { return r.Status == StatusSuccess }

func (r DocumentResult) MarshalJSON() ([]byte, error) {
	if r.Status == StatusError {
		return json.Marshal(struct {
			Status  Status `json:"status"`
			Message string `json:"message"`
		}{r.Status, r.Message})
	}
	data := r.Data
	if data == nil {
		data = []record.Record{}
	}
	return json.Marshal(struct {
		Status Status          `json:"status"`
		Data   []record.Record `json:"data"`
	}{r.Status, data})
}

func successResult(pages []PageResult) DocumentResult {
	var data []record.Record
	for _, p := range pages {
		data = append(data, p.Records...)
	}
	return DocumentResult{Status: StatusSuccess, Data: data, Pages: pages}
}

func errorResult(message string, pages []PageResult) DocumentResult {
	return DocumentResult{Status: StatusError, Message: message, Pages: pages}
}
