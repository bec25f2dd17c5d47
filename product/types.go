// SPDX-License-Identifier: MIT

package product

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/lvlath-lfp/matrix"
)

// ExposureType selects how stored cells are interpreted.
//
//   - Infinite — a stored entry (r, c, v) starts feature c at interval r and it
//     stays active through the last interval; only the start is stored.
//   - Short    — every cell is an independent observation.
type ExposureType int

const (
	// Infinite exposures persist from their single recorded start.
	Infinite ExposureType = iota + 1

	// Short exposures are recorded independently per interval.
	Short
)

// String returns "infinite", "short" or "ExposureType(n)".
func (e ExposureType) String() string {
	switch e {
	case Infinite:
		return "infinite"
	case Short:
		return "short"
	}

	return fmt.Sprintf("ExposureType(%d)", int(e))
}

// valid reports whether e is one of the declared constants.
func (e ExposureType) valid() bool {
	return e == Infinite || e == Short
}

// ParseExposureType converts "short" or "infinite" (case-insensitive) to an ExposureType.
func ParseExposureType(s string) (ExposureType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "infinite":
		return Infinite, nil
	case "short":
		return Short, nil
	}

	return 0, fmt.Errorf("ParseExposureType(%q): %w", s, ErrInvalidExposureType)
}

// StorageForm is the physical layout of a subject matrix.
type StorageForm int

const (
	// FormDense is *matrix.Dense.
	FormDense StorageForm = iota + 1

	// FormSparse is *matrix.Sparse.
	FormSparse
)

// String returns "dense" or "sparse".
func (f StorageForm) String() string {
	switch f {
	case FormDense:
		return "dense"
	case FormSparse:
		return "sparse"
	}

	return fmt.Sprintf("StorageForm(%d)", int(f))
}

// FormOf reports the storage form of m.
// Errors: matrix.ErrNilMatrix for nil, ErrUnsupportedStorage for foreign implementations.
func FormOf(m matrix.Matrix) (StorageForm, error) {
	if err := matrix.ValidateNotNil(m); err != nil {
		return 0, err
	}
	switch m.(type) {
	case *matrix.Dense:
		return FormDense, nil
	case *matrix.Sparse:
		return FormSparse, nil
	}

	return 0, fmt.Errorf("FormOf(%T): %w", m, ErrUnsupportedStorage)
}
