package bridge

import _ "embed"

// ExampleConfig is a commented bridge config showing every rule type.
//
//go:embed example-config.yaml
var ExampleConfig []byte
