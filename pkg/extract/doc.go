// Package extract holds the offline tools that mine source trees and logs for
// the data the viewers display.
//
//   - [github.com/matzehuels/stateviz/pkg/extract/inherit]: class inheritance
//     trees from source files
//   - [github.com/matzehuels/stateviz/pkg/extract/props]: per-state attribute
//     indexes from dotted log lines
package extract
