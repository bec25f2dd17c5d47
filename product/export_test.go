// SPDX-License-Identifier: MIT

package product

// Test bridge: exposes unexported hooks to product_test only.

// SetBeforeSubject installs fn to run in the worker before each subject.
func SetBeforeSubject(p *FeaturesProduct, fn func(index int)) {
	p.beforeSubject = fn
}

// ErrorKind exposes the metrics label classifier.
var ErrorKind = errorKind
