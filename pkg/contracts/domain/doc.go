// Package domain defines the shared data contracts of the nightlights
// pipeline: typed records for brightness, firms, returns, the joined
// firm-month panel, and the regression output. Every stage consumes and
// produces these types; nullability is explicit via pointer fields rather
// than implicit via column presence.
package domain
