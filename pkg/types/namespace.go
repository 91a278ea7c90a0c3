package types

// Namespace partitions the cache key space. The set is closed and each
// namespace maps to its own table in persistent stores.
type Namespace string

const (
	// NamespaceChunkResult holds extracted JSON results keyed by chunk fingerprint
	NamespaceChunkResult Namespace = "chunk_result"

	// NamespaceRawAPIResponse holds raw model responses keyed by prompt transcript fingerprint
	NamespaceRawAPIResponse Namespace = "raw_api_response"
)

// AllNamespaces returns every known namespace
func AllNamespaces() []Namespace {
	return []Namespace{NamespaceChunkResult, NamespaceRawAPIResponse}
}

// Valid reports whether ns is a known namespace
func (ns Namespace) Valid() bool {
	switch ns {
	case NamespaceChunkResult, NamespaceRawAPIResponse:
		return true
	default:
		return false
	}
}

// Table returns the table name used for the namespace
func (ns Namespace) Table() string {
	return string(ns)
}
