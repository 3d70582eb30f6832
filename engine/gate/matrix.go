package gate

import (
	"math/cmplx"

	"github.com/pkg/errors"
)

// ErrInvalidDimension and others are errors related to gate validation
var (
	ErrInvalidDimension = errors.New("invalid gate dimension")
	ErrNotUnitary       = errors.New("gate is not unitary")
)

// unitaryTolerance bounds the allowed deviation of U†U from identity
const unitaryTolerance = 1e-9

// Matrix is a dense square complex matrix in row-major order. The zero
// value is not usable; construct with New or one of the builtins.
type Matrix struct {
	dim   int
	elems []complex128
}

// New builds a dim x dim Matrix from row-major elements
func New(dim int, elems ...complex128) (Matrix, error) {
	if dim < 1 || len(elems) != dim*dim {
		return Matrix{}, errors.Wrapf(ErrInvalidDimension, "expected %d elements for dimension %d, got %d", dim*dim, dim, len(elems))
	}

	m := Matrix{
		dim:   dim,
		elems: append([]complex128(nil), elems...),
	}

	return m, nil
}

// Identity returns the dim x dim identity matrix
func Identity(dim int) Matrix {
	elems := make([]complex128, dim*dim)
	for i := 0; i < dim; i++ {
		elems[i*dim+i] = 1
	}

	return Matrix{dim: dim, elems: elems}
}

// Dim returns the matrix dimension
func (m Matrix) Dim() int {
	return m.dim
}

// At returns the element at row i, column j
func (m Matrix) At(i, j int) complex128 {
	return m.elems[i*m.dim+j]
}

// Mul returns the matrix product m * n
func (m Matrix) Mul(n Matrix) Matrix {
	out := make([]complex128, m.dim*m.dim)

	for i := 0; i < m.dim; i++ {
		for j := 0; j < m.dim; j++ {
			var sum complex128
			for k := 0; k < m.dim; k++ {
				sum += m.At(i, k) * n.At(k, j)
			}

			out[i*m.dim+j] = sum
		}
	}

	return Matrix{dim: m.dim, elems: out}
}

// Dagger returns the conjugate transpose of m
func (m Matrix) Dagger() Matrix {
	out := make([]complex128, m.dim*m.dim)

	for i := 0; i < m.dim; i++ {
		for j := 0; j < m.dim; j++ {
			out[j*m.dim+i] = cmplx.Conj(m.At(i, j))
		}
	}

	return Matrix{dim: m.dim, elems: out}
}

// Tensor returns the Kronecker product m ⊗ n
func (m Matrix) Tensor(n Matrix) Matrix {
	dim := m.dim * n.dim
	out := make([]complex128, dim*dim)

	for i := 0; i < m.dim; i++ {
		for j := 0; j < m.dim; j++ {
			for k := 0; k < n.dim; k++ {
				for l := 0; l < n.dim; l++ {
					out[(i*n.dim+k)*dim+(j*n.dim+l)] = m.At(i, j) * n.At(k, l)
				}
			}
		}
	}

	return Matrix{dim: dim, elems: out}
}

// Trace returns the sum of the diagonal elements
func (m Matrix) Trace() complex128 {
	var sum complex128
	for i := 0; i < m.dim; i++ {
		sum += m.At(i, i)
	}

	return sum
}

// IsUnitary reports whether m†m is the identity within tolerance
func (m Matrix) IsUnitary() bool {
	prod := m.Dagger().Mul(m)

	for i := 0; i < m.dim; i++ {
		for j := 0; j < m.dim; j++ {
			want := complex(0, 0)
			if i == j {
				want = 1
			}

			if cmplx.Abs(prod.At(i, j)-want) > unitaryTolerance {
				return false
			}
		}
	}

	return true
}

// Validate rejects a matrix whose dimension is not dim or which is not
// unitary. Called on every custom gate before any state mutation.
func Validate(m Matrix, dim int) error {
	if m.dim != dim {
		return errors.Wrapf(ErrInvalidDimension, "expected a %dx%d matrix, got %dx%d", dim, dim, m.dim, m.dim)
	}

	if !m.IsUnitary() {
		return errors.Wrapf(ErrNotUnitary, "%dx%d matrix failed the unitarity check", m.dim, m.dim)
	}

	return nil
}

// Equal reports element-wise equality within tol
func (m Matrix) Equal(n Matrix, tol float64) bool {
	if m.dim != n.dim {
		return false
	}

	for i := range m.elems {
		if cmplx.Abs(m.elems[i]-n.elems[i]) > tol {
			return false
		}
	}

	return true
}
