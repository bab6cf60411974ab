package graph

// RelationshipPredicate decides whether a relationship qualifies for
// cluster traversal.
type RelationshipPredicate func(*Relationship) bool

// FindClusters groups nodes that are transitively connected by relationships
// satisfying the predicate. Relationships are treated as undirected for
// traversal.
//
// Only nodes incident to at least one qualifying relationship appear in the
// result; every such node appears in exactly one cluster. Traversal follows
// graph order, so the output is deterministic for a fixed graph and predicate.
func (g *KnowledgeGraph) FindClusters(predicate RelationshipPredicate) [][]*Node {
	adjacency := make(map[*Node][]*Node)
	for _, rel := range g.Relationships {
		if rel.Source == nil || rel.Target == nil || rel.Source == rel.Target {
			continue
		}
		if !predicate(rel) {
			continue
		}
		adjacency[rel.Source] = append(adjacency[rel.Source], rel.Target)
		adjacency[rel.Target] = append(adjacency[rel.Target], rel.Source)
	}

	visited := make(map[*Node]bool)
	var clusters [][]*Node

	for _, node := range g.Nodes {
		if visited[node] {
			continue
		}
		if len(adjacency[node]) == 0 {
			continue
		}

		var cluster []*Node
		queue := []*Node{node}
		visited[node] = true
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			cluster = append(cluster, current)

			for _, neighbor := range adjacency[current] {
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
		clusters = append(clusters, cluster)
	}

	return clusters
}
