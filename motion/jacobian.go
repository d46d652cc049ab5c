package motion

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// JacobianRow is a sparse row vector: the partial derivatives of one scalar
// with respect to every optimization parameter. Only the structural entries
// (parameters the scalar depends on at all) are stored, in ascending order of
// their index. Every other entry is zero.
type JacobianRow struct {
	n     int
	index []int
	value []float64
}

// NewJacobianRow returns a row of length n with no structural entries.
func NewJacobianRow(n int) JacobianRow {
	return JacobianRow{n: n}
}

// Len returns the length of the row, including structural zeros.
func (r JacobianRow) Len() int {
	return r.n
}

// NonZeros returns the number of structural entries.
func (r JacobianRow) NonZeros() int {
	return len(r.index)
}

// At returns the i-th entry of the row.
func (r JacobianRow) At(i int) float64 {
	if i < 0 || i >= r.n {
		panic(fmt.Sprintf("jacobian row index %d out of range [0, %d)", i, r.n))
	}

	for k, j := range r.index {
		if j == i {
			return r.value[k]
		}
		if j > i {
			break
		}
	}

	return 0
}

// Do calls fn for every structural entry, in ascending index order.
func (r JacobianRow) Do(fn func(i int, v float64)) {
	for k, i := range r.index {
		fn(i, r.value[k])
	}
}

// Dense returns the row as a dense gonum vector.
func (r JacobianRow) Dense() *mat.VecDense {
	if r.n == 0 {
		return &mat.VecDense{}
	}

	v := mat.NewVecDense(r.n, nil)
	r.Do(func(i int, x float64) {
		v.SetVec(i, x)
	})
	return v
}

func (r JacobianRow) String() string {
	parts := make([]string, 0, len(r.index))
	r.Do(func(i int, v float64) {
		parts = append(parts, fmt.Sprintf("%d:%.4f", i, v))
	})
	return fmt.Sprintf("&Row{n=%d %s}", r.n, strings.Join(parts, " "))
}

// add accumulates v into the i-th entry, making it structural if it wasn't.
func (r *JacobianRow) add(i int, v float64) {
	k := 0
	for k < len(r.index) && r.index[k] < i {
		k += 1
	}

	if k < len(r.index) && r.index[k] == i {
		r.value[k] += v
		return
	}

	r.index = append(r.index, 0)
	r.value = append(r.value, 0)
	copy(r.index[k+1:], r.index[k:])
	copy(r.value[k+1:], r.value[k:])
	r.index[k] = i
	r.value[k] = v
}

// embed returns a copy of the row placed at offset within a row of length n.
func (r JacobianRow) embed(offset, n int) JacobianRow {
	out := JacobianRow{
		n:     n,
		index: make([]int, len(r.index)),
		value: make([]float64, len(r.value)),
	}

	for k, i := range r.index {
		out.index[k] = i + offset
	}
	copy(out.value, r.value)

	return out
}
