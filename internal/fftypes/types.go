package fftypes

// Complex is a type constraint for the complex element types a plan can run on.
type Complex interface {
	~complex64 | ~complex128
}
