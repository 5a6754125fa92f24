// Package build provides the business boundary for presentation-list builds.
// It defines the Service (dedup, lifecycle, async dispatch), the Store
// interface (persistence of build runs), metrics, and the domain models.
package build
