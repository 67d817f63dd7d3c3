package kind

// Kind is the purpose of a paginated search. The set is closed: every
// Kind must have a route registered with the search engine.
type Kind string

// Search kinds.
const (
	// PifSystem searches PIF system records.
	PifSystem Kind = "pif_system"
	// Dataset searches dataset metadata.
	Dataset Kind = "dataset"
)

// All returns every supported kind.
func All() []Kind { return []Kind{PifSystem, Dataset} }
