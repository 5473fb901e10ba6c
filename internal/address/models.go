// Package address manages the geographic taxonomy persons are registered
// under. Nodes form a tree (province, city, town, ...) keyed by an
// administrative code.
package address

import "paybook/pkg/domain"

// Address is one node of the taxonomy. ParentID is zero for a root node.
type Address struct {
	ID       domain.AddressID
	No       string // administrative code, unique, at most 11 characters
	Name     string
	ParentID domain.AddressID
}
