// Package events defines the analytics event types recorded alongside searches.
package events

// Type names an analytics event.
type Type string

// Analytics event types.
const (
	TypeDorkUsed          Type = "dork_used"
	TypeSearchRecorded    Type = "search_recorded"
	TypeResultAdded       Type = "result_added"
	TypeFindingCreated    Type = "finding_created"
	TypeFindingRemediated Type = "finding_remediated"
	TypeExportRecorded    Type = "export_recorded"
	TypeLibraryImported   Type = "library_imported"
	TypeLibraryExported   Type = "library_exported"
)

// Data is the opaque payload stored with an event.
type Data map[string]any

// With returns a copy of d with key set to value.
func (d Data) With(key string, value any) Data {
	out := make(Data, len(d)+1)
	for k, v := range d {
		out[k] = v
	}
	out[key] = value
	return out
}
