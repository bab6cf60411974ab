package graph

import (
	"encoding/json"
	"fmt"
)

type relationshipJSON struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	SourceID   string         `json:"source_id"`
	TargetID   string         `json:"target_id"`
	Properties map[string]any `json:"properties"`
}

type knowledgeGraphJSON struct {
	Nodes         []*Node            `json:"nodes"`
	Relationships []relationshipJSON `json:"relationships"`
}

// MarshalJSON serializes the graph with relationships referencing nodes by ID.
func (g *KnowledgeGraph) MarshalJSON() ([]byte, error) {
	out := knowledgeGraphJSON{
		Nodes:         g.Nodes,
		Relationships: make([]relationshipJSON, 0, len(g.Relationships)),
	}
	for _, rel := range g.Relationships {
		if rel.Source == nil || rel.Target == nil {
			return nil, fmt.Errorf("relationship %s has a missing endpoint", rel.ID)
		}
		out.Relationships = append(out.Relationships, relationshipJSON{
			ID:         rel.ID,
			Type:       rel.Type,
			SourceID:   rel.Source.ID,
			TargetID:   rel.Target.ID,
			Properties: rel.Properties,
		})
	}
	return json.Marshal(out)
}

// UnmarshalJSON deserializes a graph, resolving relationship endpoints by
// node ID. A relationship referencing an unknown node is an error.
func (g *KnowledgeGraph) UnmarshalJSON(data []byte) error {
	var in knowledgeGraphJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	byID := make(map[string]*Node, len(in.Nodes))
	for _, node := range in.Nodes {
		byID[node.ID] = node
	}

	relationships := make([]*Relationship, 0, len(in.Relationships))
	for _, rel := range in.Relationships {
		source, ok := byID[rel.SourceID]
		if !ok {
			return fmt.Errorf("relationship %s references unknown source node %s", rel.ID, rel.SourceID)
		}
		target, ok := byID[rel.TargetID]
		if !ok {
			return fmt.Errorf("relationship %s references unknown target node %s", rel.ID, rel.TargetID)
		}
		relationships = append(relationships, &Relationship{
			ID:         rel.ID,
			Type:       rel.Type,
			Source:     source,
			Target:     target,
			Properties: rel.Properties,
		})
	}

	g.Nodes = in.Nodes
	g.Relationships = relationships
	return nil
}
