// Package kdlt provides:
//
// - A primitive document tree (kdl/) with lazily computed byte spans
// - A stable error model via Issues (span, code, message, hint)
// - A multi-error Result carrier so one pass reports every problem found
// - Template expansion (template/) and schema-directed building (deser/)
//
// Design policy:
// - Keep only the shared kernel in the root package; functional layers live
//   in subpackages that import the root, never the other way around.
// - Place the document tree under kdl/, the parser under internal/parser/,
//   encoders under codec/, and the CLI under cmd/kdlt.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	reg := shape.NewRegistry()
//	shape.MustRegister[Config](reg)
//	d, err := deser.Document(ctx, reg, "Config", src)
//	cfg, err := deser.Into[Config](d)
package kdlt
