/*
Package tools implements the closed registry of search tools exposed to agents.

Each tool implements the Tool interface: a name from domain.ToolNames, a description,
a JSON schema for its arguments and a Call method that runs the policy steps and
issues at most one backend call. The Dispatcher validates arguments against the
schema, runs the tool, converts every failure (including panics) into a
*domain.ToolError and fires lifecycle hooks and the audit sink.
*/
package tools
