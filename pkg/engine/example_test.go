package engine_test

import (
	"context"
	"fmt"

	"github.com/openfroyo/confmix/pkg/depwindow"
	"github.com/openfroyo/confmix/pkg/engine"
	"github.com/openfroyo/confmix/pkg/schema"
)

func ExampleResolver_Resolve() {
	doc := &schema.Document{
		Root: "cache",
		Schemas: map[string]*schema.Definition{
			"cache": {
				Type: schema.TypeDict,
				Props: map[string]*schema.Definition{
					"size": {Type: schema.TypeInt, Required: true},
				},
			},
		},
	}

	stack := &engine.Stack{
		Hosts: depwindow.HostsData{
			"r1": {Addresses: map[string]string{"private": "10.1.0.1"}},
			"r2": {Addresses: map[string]string{"private": "10.1.0.2"}},
		},
		Nodes: []engine.NodeConfig{
			{
				Name:              "cache",
				Params:            map[string]interface{}{"size": 512},
				ActiveHostsAmount: 2,
				Dependencies: map[string]depwindow.Spec{
					"redis": {Type: depwindow.TypeNode, Hosts: []string{"r1", "r2"}, Limit: 1, Port: 6379},
				},
			},
		},
	}

	res, errs := engine.NewResolver(doc).Resolve(context.Background(), stack)
	if len(errs) > 0 {
		fmt.Println(errs)
		return
	}

	node, _ := res.Node("cache")
	fmt.Println(res.Status, node.Valid)
	for i, inst := range node.Instances {
		fmt.Printf("instance %d: %s\n", i+1, inst["redis"].Host)
	}
	// Output:
	// succeeded true
	// instance 1: 10.1.0.1:6379
	// instance 2: 10.1.0.2:6379
}
