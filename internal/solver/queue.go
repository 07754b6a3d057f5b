package solver

import "github.com/bits-and-blooms/bitset"

// state est une combinaison partielle. La liste des packages n'est pas
// copiée: node pointe vers le dernier maillon de l'arène.
type state struct {
	price   int64
	count   int
	next    int
	covered *bitset.BitSet
	node    int32
	seq     uint64
}

// stateQueue est un tas min sur (prix, nombre de packages, ordre d'insertion).
type stateQueue []*state

func (q stateQueue) Len() int { return len(q) }

func (q stateQueue) Less(i, j int) bool {
	a, b := q[i], q[j]
	if a.price != b.price {
		return a.price < b.price
	}
	if a.count != b.count {
		return a.count < b.count
	}
	return a.seq < b.seq
}

func (q stateQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *stateQueue) Push(x any) { *q = append(*q, x.(*state)) }

func (q *stateQueue) Pop() any {
	old := *q
	n := len(old)
	st := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return st
}
