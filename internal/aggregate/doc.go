// Package aggregate computes the total size of directory subtrees.
//
// The default Aggregator walks one subtree sequentially through an fsys.Provider and
// never fails: unreadable branches contribute zero. FastWalker does the same over the
// local filesystem using fastwalk for parallel traversal inside a single walk.
package aggregate
