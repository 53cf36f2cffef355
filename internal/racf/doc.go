// Package racf is the request/response layer around the R_admin extract
// service.
//
// Ownership boundary:
//   - request validation and function code selection
//   - the native call collaborator interface
//   - mapping native and decode outcomes onto return codes
//   - single and batch execution with logging and metrics
//
// The native call itself is supplied by the caller; this package never
// builds request parameter lists for add or alter operations.
package racf
