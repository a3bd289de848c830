package query

import "sort"

// maxCycleLength bounds simple-cycle enumeration.
const maxCycleLength = 16

// Cycles enumerates simple cycles in the file-dependency graph,
// deduplicated by a rotation-normalised signature so the same loop
// starting from different nodes is reported once. External dependency
// edges are excluded unless includeExternal is set.
func (e *Engine) Cycles(includeExternal bool) ([][]string, error) {
	adj, err := buildFileGraph(e.store, includeExternal)
	if err != nil {
		return nil, err
	}

	nodes := make([]string, 0, len(adj))
	for n := range adj {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	seenSignatures := make(map[string]bool)
	var cycles [][]string

	var path []string
	onPath := make(map[string]int)

	var dfs func(node string)
	dfs = func(node string) {
		if len(path) >= maxCycleLength {
			return
		}
		path = append(path, node)
		onPath[node] = len(path) - 1
		for _, next := range adj[node] {
			if idx, inPath := onPath[next]; inPath {
				cycle := append([]string(nil), path[idx:]...)
				sig := normalizeRotation(cycle)
				if !seenSignatures[sig] {
					seenSignatures[sig] = true
					cycles = append(cycles, append(cycle, next))
				}
				continue
			}
			dfs(next)
		}
		path = path[:len(path)-1]
		delete(onPath, node)
	}

	for _, n := range nodes {
		dfs(n)
	}
	return cycles, nil
}

// normalizeRotation returns a signature for cycle that is the same
// regardless of which node the cycle is considered to "start" at: rotate
// so the lexicographically smallest node comes first, then join.
func normalizeRotation(cycle []string) string {
	if len(cycle) == 0 {
		return ""
	}
	minIdx := 0
	for i, n := range cycle {
		if n < cycle[minIdx] {
			minIdx = i
		}
	}
	rotated := make([]string, 0, len(cycle))
	rotated = append(rotated, cycle[minIdx:]...)
	rotated = append(rotated, cycle[:minIdx]...)

	sig := ""
	for i, n := range rotated {
		if i > 0 {
			sig += "->"
		}
		sig += n
	}
	return sig
}
