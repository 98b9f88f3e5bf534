// Package jsonshape decodes JSON streams against declared value shapes.
// A parser is armed with a target type and builds the typed value while
// scanning, so type mismatches surface at the offending token rather than
// after a full generic decode. Input may arrive in arbitrary chunks; the
// character machine suspends at chunk boundaries and resumes mid-token.
package jsonshape
