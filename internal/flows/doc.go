// Package flows contains the protocol runners behind every Engine operation.
//
// Each Run function takes a typed dependency struct and returns a result that
// classifies failure with a [Failure] kind. The root package maps kinds onto
// its public error taxonomy, metrics and logs, which keeps the Engine thin and
// lets the protocols be tested against in-memory stores.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import the root package.
//   - Hold any store lock across a call into another component.
package flows
