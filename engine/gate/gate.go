package gate

import (
	"math"
	"math/cmplx"
)

// Descriptor identifies an operator and the shape its matrix must satisfy
type Descriptor struct {
	Name  string
	Arity int
	Dim   int
}

// Describe builds a Descriptor for an operator acting on arity qubits
// with a dim x dim matrix
func Describe(name string, arity, dim int) Descriptor {
	return Descriptor{Name: name, Arity: arity, Dim: dim}
}

// I returns the single-qubit identity gate
func I() Matrix {
	return Identity(2)
}

// X returns the Pauli X gate
func X() Matrix {
	return Matrix{dim: 2, elems: []complex128{
		0, 1,
		1, 0,
	}}
}

// Y returns the Pauli Y gate
func Y() Matrix {
	return Matrix{dim: 2, elems: []complex128{
		0, complex(0, -1),
		complex(0, 1), 0,
	}}
}

// Z returns the Pauli Z gate
func Z() Matrix {
	return Matrix{dim: 2, elems: []complex128{
		1, 0,
		0, -1,
	}}
}

// H returns the Hadamard gate
func H() Matrix {
	s := complex(1/math.Sqrt2, 0)

	return Matrix{dim: 2, elems: []complex128{
		s, s,
		s, -s,
	}}
}

// T returns the T (π/8 phase) gate
func T() Matrix {
	return Matrix{dim: 2, elems: []complex128{
		1, 0,
		0, cmplx.Exp(complex(0, math.Pi/4)),
	}}
}

// Rx returns a rotation of phi radians around the x axis
func Rx(phi float64) Matrix {
	c := complex(math.Cos(phi/2), 0)
	s := complex(0, -math.Sin(phi/2))

	return Matrix{dim: 2, elems: []complex128{
		c, s,
		s, c,
	}}
}

// Ry returns a rotation of phi radians around the y axis
func Ry(phi float64) Matrix {
	c := complex(math.Cos(phi/2), 0)
	s := complex(math.Sin(phi/2), 0)

	return Matrix{dim: 2, elems: []complex128{
		c, -s,
		s, c,
	}}
}

// Rz returns a rotation of phi radians around the z axis
func Rz(phi float64) Matrix {
	return Matrix{dim: 2, elems: []complex128{
		cmplx.Exp(complex(0, -phi/2)), 0,
		0, cmplx.Exp(complex(0, phi/2)),
	}}
}

// CNOT returns the controlled-X gate on the joint two-qubit subspace,
// control first
func CNOT() Matrix {
	return Controlled(X())
}

// CPhase returns the controlled-Z gate, control first
func CPhase() Matrix {
	return Controlled(Z())
}

// Controlled lifts m to act on a joint subspace with one extra control
// qubit: identity on the control-falsy block, m on the control-truthy one
func Controlled(m Matrix) Matrix {
	dim := m.dim * 2
	out := make([]complex128, dim*dim)

	for i := 0; i < m.dim; i++ {
		out[i*dim+i] = 1
	}

	for i := 0; i < m.dim; i++ {
		for j := 0; j < m.dim; j++ {
			out[(m.dim+i)*dim+(m.dim+j)] = m.At(i, j)
		}
	}

	return Matrix{dim: dim, elems: out}
}
