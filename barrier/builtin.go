package barrier

import (
	"cmp"
	"math"

	"github.com/kbukum/graphkit/traverser"
)

// Number is the set of value types the numeric reducers accept.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Count counts traversers, weighted by bulk.
func Count[S any]() Reducer[S, int64, int64] {
	return Reducer[S, int64, int64]{
		Name: "count",
		Seed: func() int64 { return 0 },
		Fold: func(acc int64, t *traverser.Of[S]) (int64, error) {
			return acc + t.Bulk(), nil
		},
	}
}

// Sum adds values, weighted by bulk.
func Sum[N Number]() Reducer[N, N, N] {
	return Reducer[N, N, N]{
		Name: "sum",
		Seed: func() N { return 0 },
		Fold: func(acc N, t *traverser.Of[N]) (N, error) {
			return acc + t.Get()*N(t.Bulk()), nil
		},
	}
}

// MeanNumber is the running form of a mean.
type MeanNumber struct {
	Sum   float64 `json:"sum"`
	Count int64   `json:"count"`
}

// Add returns m with v counted bulk times.
func (m MeanNumber) Add(v float64, bulk int64) MeanNumber {
	return MeanNumber{Sum: m.Sum + v*float64(bulk), Count: m.Count + bulk}
}

// Merge returns the combination of two running means.
func (m MeanNumber) Merge(o MeanNumber) MeanNumber {
	return MeanNumber{Sum: m.Sum + o.Sum, Count: m.Count + o.Count}
}

// FinalGet returns the mean, or NaN when nothing was counted.
func (m MeanNumber) FinalGet() float64 {
	if m.Count == 0 {
		return math.NaN()
	}
	return m.Sum / float64(m.Count)
}

// Mean averages values, weighted by bulk.
func Mean[N Number]() Reducer[N, MeanNumber, float64] {
	return Reducer[N, MeanNumber, float64]{
		Name: "mean",
		Seed: func() MeanNumber { return MeanNumber{} },
		Fold: func(acc MeanNumber, t *traverser.Of[N]) (MeanNumber, error) {
			return acc.Add(float64(t.Get()), t.Bulk()), nil
		},
	}
}

// Extremum is the running form of Min and Max.
type Extremum[T cmp.Ordered] struct {
	Value T    `json:"value"`
	Set   bool `json:"set"`
}

// Min keeps the smallest value. An empty input yields the zero value.
func Min[T cmp.Ordered]() Reducer[T, Extremum[T], T] {
	return extremum[T]("min", func(a, b T) bool { return cmp.Less(a, b) })
}

// Max keeps the largest value. An empty input yields the zero value.
func Max[T cmp.Ordered]() Reducer[T, Extremum[T], T] {
	return extremum[T]("max", func(a, b T) bool { return cmp.Less(b, a) })
}

func extremum[T cmp.Ordered](name string, better func(a, b T) bool) Reducer[T, Extremum[T], T] {
	return Reducer[T, Extremum[T], T]{
		Name: name,
		Seed: func() Extremum[T] { return Extremum[T]{} },
		Fold: func(acc Extremum[T], t *traverser.Of[T]) (Extremum[T], error) {
			if !acc.Set || better(t.Get(), acc.Value) {
				return Extremum[T]{Value: t.Get(), Set: true}, nil
			}
			return acc, nil
		},
		Finalize: func(acc Extremum[T]) T { return acc.Value },
	}
}

// Fold gathers values into a slice, each repeated bulk times. The result
// follows upstream order, so it is only deterministic for local execution.
func Fold[S any]() Reducer[S, []S, []S] {
	return Reducer[S, []S, []S]{
		Name: "fold",
		Seed: func() []S { return []S{} },
		Fold: func(acc []S, t *traverser.Of[S]) ([]S, error) {
			for range t.Bulk() {
				acc = append(acc, t.Get())
			}
			return acc, nil
		},
	}
}
