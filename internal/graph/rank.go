package graph

import (
	"math"

	"github.com/phobologic/annodoc/internal/model"
)

// Damping is the PageRank damping factor.
const Damping = 0.85

// Rank applies PageRank over resolved relation links and stores the result on
// each record. An edge points from the using entity to the used one: "uses"
// relations keep their direction and "usedIn" relations are reversed. Links
// declared from both sides count once.
func Rank(export model.ExportMap) {
	if len(export) == 0 {
		return
	}

	nodes := make(map[string]struct{}, len(export))
	for key := range export {
		nodes[key] = struct{}{}
	}

	type edgeKey struct{ src, tgt string }
	seen := make(map[edgeKey]struct{})
	outEdges := make(map[string][]string)
	outDegree := make(map[string]int)

	for _, key := range sortedKeys(export) {
		rec := export[key]
		for _, rel := range model.Relations {
			for _, l := range rec.Links[rel] {
				if !l.Linked() {
					continue
				}
				other := model.ExportKey(l.Kind, *l.Address)
				if _, ok := nodes[other]; !ok || other == key {
					continue
				}
				e := edgeKey{key, other}
				if isReverse(rel) {
					e = edgeKey{other, key}
				}
				if _, dup := seen[e]; dup {
					continue
				}
				seen[e] = struct{}{}
				outEdges[e.src] = append(outEdges[e.src], e.tgt)
				outDegree[e.src]++
			}
		}
	}

	if len(seen) == 0 {
		uniform := 1.0 / float64(len(nodes))
		for _, rec := range export {
			rec.Rank = uniform
		}
		return
	}

	ranks := pageRank(nodes, outEdges, outDegree, Damping, 100, 1e-6)
	for key, rec := range export {
		rec.Rank = ranks[key]
	}
}

func isReverse(rel model.Relation) bool {
	switch rel {
	case model.UsedInScreens, model.UsedInComponents, model.UsedInActions, model.UsedInModules:
		return true
	}
	return false
}

// pageRank iterates over nodes in sorted order so that floating point sums,
// and therefore the ranks, are identical from run to run.
func pageRank(
	nodes map[string]struct{},
	outEdges map[string][]string,
	outDegree map[string]int,
	alpha float64,
	maxIter int,
	tol float64,
) map[string]float64 {
	n := len(nodes)
	if n == 0 {
		return nil
	}
	order := sortedKeys(nodes)

	rank := make(map[string]float64, n)
	initial := 1.0 / float64(n)
	for _, node := range order {
		rank[node] = initial
	}

	teleport := (1.0 - alpha) / float64(n)

	for iter := 0; iter < maxIter; iter++ {
		next := make(map[string]float64, n)

		// Nodes without outgoing edges spread their rank evenly.
		var danglingSum float64
		for _, node := range order {
			if outDegree[node] == 0 {
				danglingSum += rank[node]
			}
		}
		danglingContrib := alpha * danglingSum / float64(n)

		for _, node := range order {
			next[node] = teleport + danglingContrib
		}

		for _, src := range order {
			targets := outEdges[src]
			if len(targets) == 0 {
				continue
			}
			contrib := alpha * rank[src] / float64(outDegree[src])
			for _, tgt := range targets {
				next[tgt] += contrib
			}
		}

		var diff float64
		for _, node := range order {
			diff += math.Abs(next[node] - rank[node])
		}
		rank = next
		if diff < tol {
			break
		}
	}

	return rank
}
