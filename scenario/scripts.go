// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package scenario

import (
	"os"

	"github.com/db47h/hwbench/internal/script"
	"github.com/pkg/errors"
)

// ScriptScenario returns a scenario named "script/<name>" that runs the Lua
// script in file against the named circuit. See package
// github.com/db47h/hwbench/internal/script for the script API.
//
func ScriptScenario(name, circuit, file string) (Scenario, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return Scenario{}, errors.Wrapf(err, "script %s", name)
	}
	return SourceScenario(name, circuit, string(src)), nil
}

// SourceScenario returns a scenario named "script/<name>" that runs the Lua
// source src against the named circuit.
//
func SourceScenario(name, circuit, src string) Scenario {
	return Scenario{
		Name:    "script/" + name,
		Circuit: circuit,
		Run: func(t *T) error {
			return script.Run(t.Context(), t.Driver, t.Rand, name, src)
		},
	}
}
