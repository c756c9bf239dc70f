// Package poller runs the fetch, validate, translate and notify loop.
//
// A Poller owns the cursor (the from_date of the next request). The cursor
// only moves forward after an iteration succeeded completely, so a failed
// window is asked for again on the next iteration.
package poller
