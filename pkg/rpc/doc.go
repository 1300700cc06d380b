/*
Package rpc serves the tool dispatcher over line-delimited JSON-RPC 2.0.

Each input line holds one request and produces exactly one response line. A
malformed line never stops the loop. Besides the standard initialize method the
server answers list_tools and call_tool, and announces itself with a "ready"
notification before reading the first line.
*/
package rpc
