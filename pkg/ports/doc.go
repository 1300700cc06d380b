/*
Package ports defines the driven ports (interfaces) for esgate.

These interfaces decouple the mediation core from external implementations, allowing
the dispatcher to work with a real Elasticsearch cluster, an in-memory recorder, or
any other backend speaking the same capability set.

# Key Interfaces

  - Backend: Executes structured queries, pipeline (ES|QL) queries, cluster health and
    index listing. Results come back as raw JSON and are passed through untouched.
  - AuditSink: Records one entry per tool call (e.g., in Redis).
*/
package ports
