package main

import (
	"os"

	"github.com/sri-lang/sri/object"
	"gopkg.in/yaml.v3"
)

// config mirrors the optional .sri.yaml file in the working directory. It
// seeds namespaces for eval_string-style embedding and a default verbose
// flag, so a project can pin interpreter behavior without env vars.
type config struct {
	Verbose    bool              `yaml:"verbose"`
	Namespaces map[string]string `yaml:"namespaces"`
}

// namespaceEnv converts the string-valued namespaces from .sri.yaml into
// the object.Object bindings repl.EvalOptions.Namespaces expects, each
// becoming a Ruby String local in the initial scope.
func (c config) namespaceEnv() map[string]object.Object {
	if len(c.Namespaces) == 0 {
		return nil
	}
	env := make(map[string]object.Object, len(c.Namespaces))
	for name, val := range c.Namespaces {
		env[name] = &object.String{Value: val}
	}
	return env
}

// loadConfig reads .sri.yaml from the current directory if present. A
// missing file is not an error; a malformed one is reported to stderr and
// treated as absent.
func loadConfig() config {
	var cfg config

	data, err := os.ReadFile(".sri.yaml")
	if err != nil {
		return cfg
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		os.Stderr.WriteString("sri: ignoring malformed .sri.yaml: " + err.Error() + "\n")
		return config{}
	}

	return cfg
}
