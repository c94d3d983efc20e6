package types

// Row one record returned by the graph engine, keyed by result column
type Row = map[string]interface{}

// Node a graph node as returned inside rows and paths
type Node struct {
	ElementID  string                 `json:"element_id,omitempty"`
	Labels     []string               `json:"labels,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Relationship a graph relationship as returned inside rows
type Relationship struct {
	ElementID  string                 `json:"element_id,omitempty"`
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// PathSegment one hop of a GraphPath: the relationship taken and the node reached
type PathSegment struct {
	Relationship string `json:"relationship"`
	Node         Node   `json:"node"`
}

// GraphPath an acyclic traversal starting at the root node type.
// Schema paths (DataGuide) only carry relationship labels; instance paths
// also carry the labels and properties of every node reached.
type GraphPath struct {
	Root     Node          `json:"root"`
	Segments []PathSegment `json:"segments"`
}

// Len returns the number of relationships in the path
func (p GraphPath) Len() int {
	return len(p.Segments)
}

// Labels returns the relationship labels of the path in traversal order
func (p GraphPath) Labels() []string {
	labels := make([]string, len(p.Segments))
	for i, seg := range p.Segments {
		labels[i] = seg.Relationship
	}
	return labels
}
