package esgate_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aretw0/esgate"
	"github.com/aretw0/esgate/pkg/adapters/memory"
	"github.com/aretw0/esgate/pkg/policy"
)

// ExampleGateway_Call shows the request a search sends to the backend once the
// policy has resolved the alias, injected a time range and set a size.
func ExampleGateway_Call() {
	reg, err := policy.NewRegistry(
		policy.Alias{Name: "default", Index: "minutes_v1"},
		policy.Alias{Name: "kouhou", Index: "bulletins_v1"},
	)
	if err != nil {
		log.Fatal(err)
	}
	allow, err := policy.NewAllowList([]string{"*"})
	if err != nil {
		log.Fatal(err)
	}
	p := &policy.Policy{
		Registry:  reg,
		AllowList: allow,
		TimeRange: policy.NewTimeRange(true, "now-15m"),
		MaxSize:   100,
	}

	backend := memory.NewBackend()
	gw, err := esgate.New(p, backend)
	if err != nil {
		log.Fatal(err)
	}

	args := map[string]any{"index": "kouhou", "body": map[string]any{"size": 1000}}
	if _, err := gw.Call(context.Background(), "search", args); err != nil {
		log.Fatal(err)
	}

	call, _ := backend.LastCall()
	indices, _ := json.Marshal(call.Indices)
	fmt.Println(string(indices))
	fmt.Println(string(call.Body))
	// Output:
	// ["bulletins_v1"]
	// {"query":{"bool":{"must":[{"bool":{"must":[{"range":{"@timestamp":{"gte":"now-15m"}}}]}},{"match_all":{}}]}},"size":100}
}
