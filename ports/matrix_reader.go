package ports

import (
	"psimodal/domain/psi"
)

// MatrixReader loads a samples x events PSI matrix from an external source
// (CSV or Excel file). Header row holds event IDs, first column holds sample
// IDs, blank and NA cells become the missing marker.
type MatrixReader interface {
	ReadMatrix() (*psi.Matrix, error)
}
