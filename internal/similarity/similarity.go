// Package similarity scores how alike two normalized strings are, as the
// ratio of twice the total matched length over a greedy
// longest-common-substring alignment to the sum of both lengths. Scores
// are symmetric and live in [0,1].
package similarity

// Ratio returns the alignment similarity of a and b. Two empty strings
// score 1; empty versus non-empty scores 0.
func Ratio(a, b string) float64 {
	la, lb := len(a), len(b)
	if la == 0 && lb == 0 {
		return 1.0
	}
	if la == 0 || lb == 0 {
		return 0.0
	}
	m := newMatcher(a, b)
	total := m.matchTotal(0, la, 0, lb)
	return 2.0 * float64(total) / float64(la+lb)
}

type matcher struct {
	a, b string
	b2j  map[byte][]int // positions of each byte in b, ascending
}

func newMatcher(a, b string) *matcher {
	m := &matcher{a: a, b: b, b2j: make(map[byte][]int)}
	for j := 0; j < len(b); j++ {
		c := b[j]
		m.b2j[c] = append(m.b2j[c], j)
	}
	return m
}

// matchTotal sums the sizes of all matching blocks inside the given
// window: find the longest common run, then recurse on the pieces to its
// left and right.
func (m *matcher) matchTotal(alo, ahi, blo, bhi int) int {
	i, j, size := m.longestMatch(alo, ahi, blo, bhi)
	if size == 0 {
		return 0
	}
	total := size
	if alo < i && blo < j {
		total += m.matchTotal(alo, i, blo, j)
	}
	if i+size < ahi && j+size < bhi {
		total += m.matchTotal(i+size, ahi, j+size, bhi)
	}
	return total
}

// longestMatch finds the longest run common to a[alo:ahi] and b[blo:bhi],
// preferring the earliest start in a, then in b.
func (m *matcher) longestMatch(alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestsize
}
