// Package devtree provides read access to hardware description trees.
//
// A description tree is the platform's statement of which controller keys
// exist and how they group into physical quantities. The registry builder
// consumes the Node interface and never cares where the tree came from;
// this package provides two sources:
//
//   - NewNode builds trees programmatically (tests, embedding).
//   - Parse/Load/LoadFile read the YAML profile format.
//
// # Profile format
//
// Nested mappings are nodes, scalar string values are properties, document
// order is preserved (it defines channel numbering):
//
//	hwmon:
//	  temperature-keys:
//	    cpu-prox:
//	      key-id: TC0P
//	      key-desc: CPU Proximity Temp
//	  fan-keys:
//	    fan0:
//	      key-id: F0Ac
//	      key-desc: Fan 1
//	      fan-minimum: F0Mn
//	      fan-maximum: F0Mx
//
// A mapping entry with a null value is an empty node. Sequences have no
// description-tree equivalent and are rejected with the offending line
// number.
package devtree
