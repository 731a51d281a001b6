package domain

// Cluster is an ephemeral grouping of result papers that share a significant
// title keyword. Clusters are rebuilt on every search and never persisted.
type Cluster struct {
	// Name is the shared keyword, capitalized for display.
	Name string `json:"name"`

	// Count is the number of papers in the current result batch sharing the keyword.
	Count int `json:"count"`

	// PaperIDs lists the (provider-native) ids of the member papers.
	PaperIDs []string `json:"paper_ids,omitempty"`
}
