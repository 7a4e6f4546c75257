package engine

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/openfroyo/confmix/pkg/depwindow"
	"github.com/openfroyo/confmix/pkg/diag"
	"github.com/openfroyo/confmix/pkg/params"
	"github.com/openfroyo/confmix/pkg/schema"
	"github.com/openfroyo/confmix/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testDocument() *schema.Document {
	return &schema.Document{
		Root: "service",
		Schemas: map[string]*schema.Definition{
			"service": {
				Type: schema.TypeDict,
				Props: map[string]*schema.Definition{
					"port":    {Type: schema.TypeInt, Required: true},
					"workers": {Type: schema.TypeInt},
					"region":  {Type: schema.TypeStr},
				},
			},
			"worker": {
				Type: schema.TypeDict,
				Lax:  true,
			},
		},
	}
}

func testHosts() depwindow.HostsData {
	return depwindow.HostsData{
		"db1": {Addresses: map[string]string{"private": "10.0.0.1"}},
		"db2": {Addresses: map[string]string{"private": "10.0.0.2"}},
		"db3": {Addresses: map[string]string{"private": "10.0.0.3"}},
	}
}

func testStack() *Stack {
	return &Stack{
		Dictionaries: params.Dictionaries{
			GroupParamsDict: map[string]map[string]interface{}{
				"eu": {"region": "eu-west"},
			},
			SharedParamsDict: map[string]map[string]interface{}{
				"defaults": {"workers": 4},
			},
		},
		Hosts: testHosts(),
		Nodes: []NodeConfig{
			{
				Name:              "api",
				Params:            map[string]interface{}{"port": 8080},
				GroupParams:       map[string]string{"region": "eu"},
				SharedParams:      []string{"defaults"},
				ActiveHostsAmount: 2,
				Dependencies: map[string]depwindow.Spec{
					"db": {Type: depwindow.TypeNode, Hosts: []string{"db1", "db2", "db3"}, Limit: 2},
				},
			},
		},
	}
}

func trails(errs diag.List) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = strings.Join(e.Trail, " | ")
	}
	return out
}

func TestResolveStack(t *testing.T) {
	r := NewResolver(testDocument())

	res, errs := r.Resolve(context.Background(), testStack())
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", trails(errs))
	}
	if res.Status != StatusSucceeded {
		t.Errorf("expected status succeeded, got %s", res.Status)
	}
	if res.RunID == "" {
		t.Error("expected a run id")
	}

	api, ok := res.Node("api")
	if !ok {
		t.Fatal("expected node api in resolution")
	}
	if !api.Valid {
		t.Error("expected api to be valid")
	}

	want := map[string]interface{}{"port": 8080, "workers": 4, "region": "eu-west"}
	if !reflect.DeepEqual(api.Params, want) {
		t.Errorf("expected params %v, got %v", want, api.Params)
	}

	if len(api.Instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(api.Instances))
	}
	first := api.Instances[0]["db"]
	if first.Host != "10.0.0.1" {
		t.Errorf("expected primary 10.0.0.1, got %s", first.Host)
	}
	if !reflect.DeepEqual(first.HostList, []string{"10.0.0.1", "10.0.0.2"}) {
		t.Errorf("expected window [10.0.0.1 10.0.0.2], got %v", first.HostList)
	}
	if second := api.Instances[1]["db"]; second.Host != "10.0.0.2" {
		t.Errorf("expected primary 10.0.0.2, got %s", second.Host)
	}
}

func TestResolveWithoutDocument(t *testing.T) {
	stack := testStack()
	stack.Nodes[0].Params["undeclared"] = true

	res, errs := NewResolver(nil).Resolve(context.Background(), stack)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", trails(errs))
	}
	api, _ := res.Node("api")
	if !api.Valid {
		t.Error("expected api to be valid without a document")
	}
	if api.Params["undeclared"] != true {
		t.Errorf("expected undeclared param to be kept, got %v", api.Params)
	}
}

func TestResolveNodeErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(s *Stack)
		wantTrail string
		wantClass diag.Class
		wantValid bool
	}{
		{
			name: "unknown group key",
			mutate: func(s *Stack) {
				s.Nodes[0].GroupParams = map[string]string{"region": "americas"}
			},
			wantTrail: "api | group_params | region | unknown group_params_dict key 'americas'",
			wantClass: diag.ClassParam,
		},
		{
			name: "schema violation",
			mutate: func(s *Stack) {
				s.Nodes[0].Params["port"] = "http"
			},
			wantTrail: "api | service | port | expected int, got str",
			wantClass: diag.ClassValue,
		},
		{
			name: "missing required param",
			mutate: func(s *Stack) {
				delete(s.Nodes[0].Params, "port")
			},
			wantTrail: "api | service | port | required value is missing",
			wantClass: diag.ClassValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stack := testStack()
			tt.mutate(stack)

			res, errs := NewResolver(testDocument()).Resolve(context.Background(), stack)
			if res.Status != StatusFailed {
				t.Errorf("expected status failed, got %s", res.Status)
			}
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %v", trails(errs))
			}
			if errs[0].Class != tt.wantClass {
				t.Errorf("expected class %s, got %s", tt.wantClass, errs[0].Class)
			}
			if !strings.HasPrefix(trails(errs)[0], "api | ") {
				t.Errorf("expected trail to start with the node, got %s", trails(errs)[0])
			}
			if got := trails(errs)[0]; !strings.HasSuffix(got, lastElement(tt.wantTrail)) {
				t.Errorf("expected trail %s, got %s", tt.wantTrail, got)
			}

			api, ok := res.Node("api")
			if !ok {
				t.Fatal("expected api to still be reported")
			}
			if api.Valid != tt.wantValid {
				t.Errorf("expected valid %v, got %v", tt.wantValid, api.Valid)
			}
			if len(api.Instances) != 2 {
				t.Errorf("expected windows to be resolved anyway, got %d instances", len(api.Instances))
			}
		})
	}
}

func lastElement(trail string) string {
	parts := strings.Split(trail, " | ")
	return parts[len(parts)-1]
}

func TestResolveSelectsNodeSchema(t *testing.T) {
	stack := testStack()
	stack.Nodes[0].Schema = "worker"
	stack.Nodes[0].Params = map[string]interface{}{"anything": 1}

	res, errs := NewResolver(testDocument()).Resolve(context.Background(), stack)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", trails(errs))
	}
	if api, _ := res.Node("api"); !api.Valid {
		t.Error("expected api to validate against the worker schema")
	}
}

func TestResolveDuplicateNode(t *testing.T) {
	stack := testStack()
	dup := stack.Nodes[0]
	dup.Params = map[string]interface{}{"port": "bad"}
	stack.Nodes = append(stack.Nodes, dup)

	res, errs := NewResolver(testDocument()).Resolve(context.Background(), stack)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", trails(errs))
	}
	if errs[0].Class != diag.ClassDuplicate {
		t.Errorf("expected duplicate class, got %s", errs[0].Class)
	}
	if got := trails(errs)[0]; got != "api | duplicate node name" {
		t.Errorf("expected duplicate trail, got %s", got)
	}
	if len(res.Nodes) != 1 {
		t.Errorf("expected the duplicate to be skipped, got %d nodes", len(res.Nodes))
	}
	if api, _ := res.Node("api"); api.Params["port"] != 8080 {
		t.Errorf("expected the first node to win, got %v", api.Params)
	}
}

func TestResolveDuplicatesAreScopedToOneCall(t *testing.T) {
	r := NewResolver(testDocument())
	for i := 0; i < 2; i++ {
		if _, errs := r.Resolve(context.Background(), testStack()); len(errs) != 0 {
			t.Fatalf("call %d: expected no errors, got %v", i+1, trails(errs))
		}
	}
}

func TestResolveInvalidNode(t *testing.T) {
	stack := testStack()
	stack.Nodes = append(stack.Nodes, NodeConfig{ActiveHostsAmount: -1})

	res, errs := NewResolver(testDocument()).Resolve(context.Background(), stack)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", trails(errs))
	}
	got := trails(errs)
	want := []string{
		"nodes[1] | invalid name: failed 'required' check",
		"nodes[1] | invalid active_hosts_amount: failed 'gte=0' check",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if len(res.Nodes) != 1 {
		t.Errorf("expected invalid node to be skipped, got %d nodes", len(res.Nodes))
	}
}

func TestResolveWindowFailure(t *testing.T) {
	stack := testStack()
	spec := stack.Nodes[0].Dependencies["db"]
	spec.Hosts = []string{"db1", "db9"}
	spec.Required = depwindow.RequireAll
	stack.Nodes[0].Dependencies["db"] = spec

	res, errs := NewResolver(testDocument()).Resolve(context.Background(), stack)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", trails(errs))
	}
	if errs[0].Class != diag.ClassDependency {
		t.Errorf("expected dependency class, got %s", errs[0].Class)
	}
	if got := trails(errs)[0]; got != "api | instance 1 | db | unknown host 'db9'" {
		t.Errorf("unexpected trail %s", got)
	}

	api, _ := res.Node("api")
	if !api.Valid {
		t.Error("expected parameters to stay valid")
	}
	if len(api.Instances) != 0 {
		t.Errorf("expected no instances, got %d", len(api.Instances))
	}
}

func TestResolverTelemetry(t *testing.T) {
	var buf bytes.Buffer
	logger := telemetry.NewLoggerWithWriter(telemetry.LoggingConfig{Level: "debug", Format: "json"}, &buf)
	metrics, err := telemetry.NewMetrics(telemetry.DefaultConfig().Metrics)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	stack := testStack()
	stack.Nodes = append(stack.Nodes, stack.Nodes[0])

	r := NewResolver(testDocument(), WithLogger(logger), WithMetrics(metrics))
	res, _ := r.Resolve(context.Background(), stack)

	out := buf.String()
	if !strings.Contains(out, `"component":"engine"`) {
		t.Errorf("expected engine component in logs, got %s", out)
	}
	if !strings.Contains(out, res.RunID) {
		t.Errorf("expected run id %s in logs", res.RunID)
	}
	if !strings.Contains(out, "stack resolved") {
		t.Errorf("expected completion log, got %s", out)
	}

	if n, err := testutil.GatherAndCount(metrics.Registry(), "confmix_nodes_resolved_total"); err != nil || n != 2 {
		t.Errorf("expected ok and failed node series, got %d (%v)", n, err)
	}
	if n, err := testutil.GatherAndCount(metrics.Registry(), "confmix_mixes_total"); err != nil || n != 1 {
		t.Errorf("expected one mix series, got %d (%v)", n, err)
	}
}

func TestNodeConfigLayers(t *testing.T) {
	node := NodeConfig{
		Name:              "n",
		Params:            map[string]interface{}{"a": 1},
		SharedGroupParams: "base",
	}
	dicts := params.Dictionaries{
		SharedGroupParamsDict: map[string]map[string]string{"base": {"g": "x"}},
	}

	l := node.Layers(dicts)
	if l.SharedGroupParams != "base" || l.Params["a"] != 1 {
		t.Errorf("expected node layers to be kept, got %+v", l)
	}
	if l.SharedGroupParamsDict["base"]["g"] != "x" {
		t.Errorf("expected dictionaries to be applied, got %+v", l.SharedGroupParamsDict)
	}
}
