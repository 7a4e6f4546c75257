package config

import (
	"context"
	"strings"
	"testing"

	"github.com/openfroyo/confmix/pkg/depwindow"
	"github.com/openfroyo/confmix/pkg/diag"
	"github.com/openfroyo/confmix/pkg/engine"
)

const schemaYAML = `
root: service
schemas:
  service:
    type: dict
    props:
      port:
        type: int
        required: true
      region:
        type: str
`

const stackYAML = `
group_params_dict:
  eu:
    region: eu-west
shared_group_params_dict:
  base:
    region: eu
hosts:
  db1:
    addresses:
      private: 10.0.0.1
  db2:
    private: 10.0.0.2
    local: true
nodes:
  - name: api
    params:
      port: 8080
    shared_group_params: base
    active_hosts_amount: 2
    dependencies:
      db:
        type: node
        hosts: [db1, db2]
        limit: 1
        port: 5432
`

func TestLoadSchema(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader()
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		doc, errs, err := l.LoadSchema(ctx, writeFile(t, dir, "schema.yaml", schemaYAML))
		if err != nil {
			t.Fatalf("LoadSchema failed: %v", err)
		}
		if len(errs) != 0 {
			t.Fatalf("expected no errors, got %v", errs)
		}
		if doc.Root != "service" {
			t.Errorf("expected root service, got %s", doc.Root)
		}
		if def, ok := doc.Lookup("service"); !ok || def.Props["port"] == nil {
			t.Errorf("expected service definition with port, got %+v", def)
		}
	})

	t.Run("json document", func(t *testing.T) {
		src := `{"root": "n", "schemas": {"n": {"type": "int", "min": 1}}}`
		doc, errs, err := l.LoadSchema(ctx, writeFile(t, dir, "schema.json", src))
		if err != nil || len(errs) != 0 {
			t.Fatalf("expected a valid document, got %v %v", errs, err)
		}
		if lo := doc.Schemas["n"].Min; lo == nil || *lo != 1 {
			t.Errorf("expected min 1, got %v", lo)
		}
	})

	t.Run("invalid definition", func(t *testing.T) {
		src := "root: a\nschemas:\n  a:\n    type: nope\n"
		doc, errs, err := l.LoadSchema(ctx, writeFile(t, dir, "bad.yaml", src))
		if err != nil {
			t.Fatalf("expected records, not an error: %v", err)
		}
		if doc != nil {
			t.Error("expected no document")
		}
		if len(errs) == 0 {
			t.Fatal("expected errors")
		}
		for _, e := range errs {
			if e.Class != diag.ClassValue && e.Class != diag.ClassSchema {
				t.Errorf("unexpected class %s", e.Class)
			}
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, _, err := l.LoadSchema(ctx, dir+"/missing.yaml"); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestLoadStack(t *testing.T) {
	path := writeFile(t, t.TempDir(), "stack.yaml", stackYAML)

	stack, err := NewLoader().LoadStack(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadStack failed: %v", err)
	}

	if len(stack.Nodes) != 1 || stack.Nodes[0].Name != "api" {
		t.Fatalf("expected node api, got %+v", stack.Nodes)
	}
	node := stack.Nodes[0]
	if node.ActiveHostsAmount != 2 {
		t.Errorf("expected 2 active hosts, got %d", node.ActiveHostsAmount)
	}
	dep := node.Dependencies["db"]
	if dep.Type != depwindow.TypeNode || dep.Limit != 1 || dep.Port != 5432 {
		t.Errorf("unexpected dependency %+v", dep)
	}
	if stack.GroupParamsDict["eu"]["region"] != "eu-west" {
		t.Errorf("expected squashed group_params_dict, got %v", stack.GroupParamsDict)
	}
	if stack.SharedGroupParamsDict["base"]["region"] != "eu" {
		t.Errorf("expected shared_group_params_dict, got %v", stack.SharedGroupParamsDict)
	}
	if !stack.Hosts["db2"].Local || stack.Hosts["db1"].Addresses["private"] != "10.0.0.1" {
		t.Errorf("unexpected hosts %+v", stack.Hosts)
	}
	if addr, _, ok := stack.Hosts.Address("db2", "private"); !ok || addr != "10.0.0.2" {
		t.Errorf("expected flat private address on db2, got %q", addr)
	}
}

func TestLoadStackResolves(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader()
	ctx := context.Background()

	doc, errs, err := l.LoadSchema(ctx, writeFile(t, dir, "schema.yaml", schemaYAML))
	if err != nil || len(errs) != 0 {
		t.Fatalf("LoadSchema failed: %v %v", errs, err)
	}
	stack, err := l.LoadStack(ctx, writeFile(t, dir, "stack.yaml", stackYAML))
	if err != nil {
		t.Fatalf("LoadStack failed: %v", err)
	}

	res, errs := engine.NewResolver(doc).Resolve(ctx, stack)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	api, _ := res.Node("api")
	if api.Params["region"] != "eu-west" {
		t.Errorf("expected region through shared group params, got %v", api.Params)
	}
	if got := api.Instances[1]["db"].Host; got != "10.0.0.2:5432" {
		t.Errorf("expected second instance on db2, got %s", got)
	}
}

func TestLoadStackRejectsUnknownFields(t *testing.T) {
	path := writeFile(t, t.TempDir(), "stack.yaml", "nodes:\n  - name: a\n    replicas: 3\n")

	_, err := NewLoader().LoadStack(context.Background(), path)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "replicas") {
		t.Errorf("expected the unknown field to be named, got %v", err)
	}
}

func TestLoadLayers(t *testing.T) {
	src := `{
  "params": {"port": 8080},
  "shared_params": ["defaults"],
  "shared_params_dict": {"defaults": {"workers": 4}}
}`
	path := writeFile(t, t.TempDir(), "layers.json", src)

	layers, err := NewLoader().LoadLayers(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadLayers failed: %v", err)
	}
	if layers.Params["port"] != int64(8080) {
		t.Errorf("expected port 8080, got %v", layers.Params["port"])
	}
	if len(layers.SharedParams) != 1 || layers.SharedParams[0] != "defaults" {
		t.Errorf("unexpected shared params %v", layers.SharedParams)
	}
	if layers.SharedParamsDict["defaults"]["workers"] != int64(4) {
		t.Errorf("unexpected shared params dict %v", layers.SharedParamsDict)
	}
}
