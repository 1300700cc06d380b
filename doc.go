/*
Package esgate is a read-only gateway that lets tool-calling agents query an
Elasticsearch cluster without being able to run unbounded or mutating requests.

Every request passes through a mediation policy before it reaches the backend:

  - Index aliases are resolved to concrete names and checked against an allow-list.
  - Queries without a time constraint get a default lower bound.
  - Result sizes are clamped.
  - ES|QL queries carrying mutating verbs are rejected.

The same six tools (health, cat_indices, search, esql, list_indices, multi_search)
are served over line-delimited JSON-RPC on stdio, the Model Context Protocol and
plain HTTP.

	p, _ := cfg.Policy()
	backend, _ := elasticsearch.New(elasticsearch.Config{Endpoint: cfg.Endpoint, APIKey: cfg.APIKey})
	gw, _ := esgate.New(p, backend, esgate.WithLogger(logger))
	_ = gw.Serve(ctx, os.Stdin, os.Stdout)
*/
package esgate
