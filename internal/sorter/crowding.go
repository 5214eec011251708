package sorter

import (
	"math"
	"slices"
)

// CrowdingDistance computes the NSGA-II crowding distance for every
// individual in a single front: sort the front by
// each objective, give the two boundary points distance +Inf, and give
// interior points the sum over objectives of the normalized distance
// between their neighbors.
func CrowdingDistance(front []int, fitness [][]float64) map[int]float64 {
	distance := make(map[int]float64, len(front))
	for _, i := range front {
		distance[i] = 0
	}
	if len(front) <= 2 {
		for _, i := range front {
			distance[i] = posInf
		}
		return distance
	}
	m := len(fitness[front[0]])
	order := make([]int, len(front))
	copy(order, front)
	for k := 0; k < m; k++ {
		slices.SortFunc(order, func(a, b int) int {
			switch {
			case fitness[a][k] < fitness[b][k]:
				return -1
			case fitness[a][k] > fitness[b][k]:
				return 1
			default:
				return 0
			}
		})
		lo, hi := fitness[order[0]][k], fitness[order[len(order)-1]][k]
		span := hi - lo
		distance[order[0]] = posInf
		distance[order[len(order)-1]] = posInf
		if span == 0 {
			continue
		}
		for p := 1; p < len(order)-1; p++ {
			if distance[order[p]] == posInf {
				continue
			}
			distance[order[p]] += (fitness[order[p+1]][k] - fitness[order[p-1]][k]) / span
		}
	}
	return distance
}

var posInf = math.Inf(1)
