package http

import (
	"kcvdb/pkg/batch"
	"kcvdb/pkg/types"
)

type Status string

const (
	// StatusOK is used for health-check responses.
	StatusOK Status = "OK"

	// StatusSuccess indicates an operation completed successfully.
	StatusSuccess Status = "success"

	// StatusError indicates an operation failed.
	StatusError Status = "error"
)

// Response represents the standard API response format.
type Response struct {
	Status  Status        `json:"status,omitempty"`
	Value   []byte        `json:"value,omitempty"`
	Entries []types.Entry `json:"entries,omitempty"`
	Keys    [][]byte      `json:"keys,omitempty"`
	Stores  []string      `json:"stores,omitempty"`
	Error   string        `json:"error,omitempty"`
}

func NewOKResponse() Response {
	return Response{Status: StatusOK}
}

func NewSuccessResponse() Response {
	return Response{Status: StatusSuccess}
}

func NewValueResponse(value []byte) Response {
	return Response{Status: StatusSuccess, Value: value}
}

func NewEntriesResponse(entries []types.Entry) Response {
	return Response{Status: StatusSuccess, Entries: entries}
}

func NewKeysResponse(keys [][]byte) Response {
	return Response{Status: StatusSuccess, Keys: keys}
}

func NewStoresResponse(stores []string) Response {
	return Response{Status: StatusSuccess, Stores: stores}
}

func NewErrorResponse(err string) Response {
	return Response{Status: StatusError, Error: err}
}

// getRequest reads one column of a key.
type getRequest struct {
	Key         []byte `json:"key"`
	Column      []byte `json:"column"`
	Consistency string `json:"consistency,omitempty"`
}

// sliceRequest reads the half-open column range [Start, End) of a key.
type sliceRequest struct {
	Key         []byte `json:"key"`
	Start       []byte `json:"start"`
	End         []byte `json:"end"`
	Limit       *int   `json:"limit,omitempty"`
	Consistency string `json:"consistency,omitempty"`
}

// mutateRequest applies one batch to a key.
type mutateRequest struct {
	Key []byte `json:"key"`
	batch.Mutation
	Consistency string `json:"consistency,omitempty"`
}

// mutateManyRequest applies batches to several keys of several stores. Row
// keys are the JSON object keys, so they travel as plain strings.
type mutateManyRequest struct {
	Mutations   map[string]map[string]batch.Mutation `json:"mutations"`
	Consistency string                               `json:"consistency,omitempty"`
}

func (r *getRequest) key() []byte    { return r.Key }
func (r *sliceRequest) key() []byte  { return r.Key }
func (r *mutateRequest) key() []byte { return r.Key }
