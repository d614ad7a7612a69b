// Package peak defines the data model shared by detection, fitting and
// reporting: a Gaussian component ([Peak]), an ordered set of components
// ([Set]) and the flat parameter vector exchanged with the least-squares
// solver ([Params]).
//
// A Params vector groups values in triples (position, spread, height), one
// triple per peak, in set order. [Flatten] and [Unflatten] convert between
// the two views without loss.
package peak
