// Package statwatch is the data model of statwatch.
//
// A Snapshot is the normalized state of a status page at one point in time,
// and an Update is a change between two Snapshots that is worth to notify.
package statwatch
