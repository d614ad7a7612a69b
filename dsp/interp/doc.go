// Package interp provides the linear interpolation primitives used to locate
// level crossings on sampled curves.
//
//   - [Linear2]:       2-point linear interpolation
//   - [InverseLinear]: fraction along a segment where it reaches a level
//   - [AtIndex]:       value of a sampled axis at a fractional index
package interp
