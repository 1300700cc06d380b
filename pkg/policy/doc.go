/*
Package policy implements the query-safety mediation layer of esgate.

Every request an agent sends passes through the same deterministic steps before it
reaches the backend:

  - Registry resolves an index specifier (alias, comma list, "all" or literal) to
    concrete index names.
  - AllowList checks each concrete name against glob patterns.
  - TimeRange injects a lower time bound into structured queries and pipe (ES|QL)
    queries that carry none.
  - ClampSize bounds the result count of structured queries.
  - CheckForbidden rejects pipe queries containing mutating verbs.

Policy bundles the steps in the order the tools apply them. All types are
immutable after construction and safe to share.
*/
package policy
