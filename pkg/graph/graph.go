package graph

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// NodeType tags the granularity of a node in the knowledge graph.
type NodeType string

const (
	// NodeTypeDocument marks a node backed by a whole source document.
	NodeTypeDocument NodeType = "document"
	// NodeTypeChunk marks a node backed by a token-limited segment of a document.
	NodeTypeChunk NodeType = "chunk"
)

// Property names read and written across the testset pipeline. Nodes may
// carry arbitrary additional properties; unknown or missing keys are treated
// as absent, never as an error.
const (
	PropPageContent      = "page_content"
	PropSummary          = "summary"
	PropKeyphrases       = "keyphrases"
	PropTitle            = "title"
	PropSummaryEmbedding = "summary_embedding"
)

// Relationship property names carrying similarity scores between nodes.
const (
	PropCosineSimilarity        = "cosine_similarity"
	PropSummaryCosineSimilarity = "summary_cosine_similarity"
)

// Node represents a document or chunk in the knowledge graph. Its content
// lives in a dynamic property bag; consumers read well-known keys and treat
// everything missing as absent.
type Node struct {
	ID         string         `json:"id"`
	Type       NodeType       `json:"type"`
	Properties map[string]any `json:"properties"`
}

// NewNode creates a node of the given type with a fresh ID and the provided
// properties. A nil properties map is replaced with an empty one.
func NewNode(nodeType NodeType, properties map[string]any) (*Node, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	if properties == nil {
		properties = map[string]any{}
	}
	return &Node{
		ID:         id,
		Type:       nodeType,
		Properties: properties,
	}, nil
}

// GetProperty returns the named property value and whether it is present.
// A nil stored value counts as absent.
func (n *Node) GetProperty(name string) (any, bool) {
	if n.Properties == nil {
		return nil, false
	}
	value, ok := n.Properties[name]
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

// GetStringProperty returns the named property as a string. Absent values
// and non-string values report absence.
func (n *Node) GetStringProperty(name string) (string, bool) {
	value, ok := n.GetProperty(name)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// GetStringSliceProperty returns the named property as a string slice.
// It accepts both []string and []any (the shape JSON decoding produces).
func (n *Node) GetStringSliceProperty(name string) ([]string, bool) {
	value, ok := n.GetProperty(name)
	if !ok {
		return nil, false
	}
	switch v := value.(type) {
	case []string:
		if len(v) == 0 {
			return nil, false
		}
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	default:
		return nil, false
	}
}

// SetProperty stores a property on the node. Transforms use this during
// graph enrichment; the testset engine itself never mutates nodes.
func (n *Node) SetProperty(name string, value any) {
	if n.Properties == nil {
		n.Properties = map[string]any{}
	}
	n.Properties[name] = value
}

// Relationship represents an undirected-for-traversal edge between two nodes,
// carrying named properties such as similarity scores.
type Relationship struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Source     *Node          `json:"-"`
	Target     *Node          `json:"-"`
	Properties map[string]any `json:"properties"`
}

// GetProperty returns the named relationship property and whether it is present.
func (r *Relationship) GetProperty(name string) (any, bool) {
	if r.Properties == nil {
		return nil, false
	}
	value, ok := r.Properties[name]
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

// GetFloatProperty returns the named property as a float64. It accepts
// float64 and float32 stored values.
func (r *Relationship) GetFloatProperty(name string) (float64, bool) {
	value, ok := r.GetProperty(name)
	if !ok {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	default:
		return 0, false
	}
}

// KnowledgeGraph is a collection of nodes and relationships derived from
// source documents. It is read-only during testset generation; only
// enrichment transforms add nodes and relationships.
type KnowledgeGraph struct {
	Nodes         []*Node
	Relationships []*Relationship
}

// NewKnowledgeGraph creates an empty knowledge graph.
func NewKnowledgeGraph() *KnowledgeGraph {
	return &KnowledgeGraph{}
}

// AddNode appends a node to the graph.
func (g *KnowledgeGraph) AddNode(node *Node) {
	g.Nodes = append(g.Nodes, node)
}

// AddRelationship creates a relationship of the given type between two nodes
// already in the graph and appends it.
func (g *KnowledgeGraph) AddRelationship(
	relType string,
	source *Node,
	target *Node,
	properties map[string]any,
) (*Relationship, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	if properties == nil {
		properties = map[string]any{}
	}
	rel := &Relationship{
		ID:         id,
		Type:       relType,
		Source:     source,
		Target:     target,
		Properties: properties,
	}
	g.Relationships = append(g.Relationships, rel)
	return rel, nil
}

// NodesOfType returns all nodes with the given type, in graph order.
func (g *KnowledgeGraph) NodesOfType(nodeType NodeType) []*Node {
	var nodes []*Node
	for _, node := range g.Nodes {
		if node.Type == nodeType {
			nodes = append(nodes, node)
		}
	}
	return nodes
}
