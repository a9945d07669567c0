//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Renders the testbed scene with the sample settings and writes the image.
func (Run) Testbed() error {
	fmt.Println("Run testbed...")
	if _, err := executeCmd("go", withArgs("run", "main.go", "-settings", "assets/screenfx.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the testbed until interrupted, reloading the sample settings on change.
func (Run) Watch() error {
	mg.Deps(Test.All)
	_, err := executeCmd("go", withArgs("run", "main.go", "-settings", "assets/screenfx.toml", "-watch", "-frames", "-1"), withStream())
	return err
}
