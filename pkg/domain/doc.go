/*
Package domain contains the core domain models shared by every esgate adapter.

It defines the closed set of tool names, the error taxonomy (validation failures,
backend failures and the tool-level error that wraps them), lifecycle events for
observability and audit entries. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - ToolName: The closed enumeration of operations exposed to agents.
  - ValidationError: A request rejected before it reached the backend.
  - BackendError: A failure reported by the search backend.
  - ToolError: What the dispatch boundary hands back to a transport.
  - ToolEvent / LifecycleHooks: Callbacks fired around every tool call.
*/
package domain
