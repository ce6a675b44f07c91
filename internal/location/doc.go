// Package location provides the home and room hierarchy.
//
// Homes are the top-level ownership boundary: users, devices and rules all
// belong to one home. Rooms are named spaces inside a home.
//
// # Thread Safety
//
// SQLRepository is safe for concurrent use from multiple goroutines.
package location
