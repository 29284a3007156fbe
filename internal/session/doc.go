// Package session turns heterogeneous wizard session records into uniform
// summaries.
//
// Each of the fifteen session kinds has a small table of extraction rules that
// pick one to six key facts out of the raw record. Normalize is total: records
// with nothing recognisable still produce a summary carrying a generic
// "Completed a ... session" fact.
package session
