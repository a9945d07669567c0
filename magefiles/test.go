//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs every test of the module.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Runs every test with the race detector.
func (Test) Race() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream())
	return err
}

// Runs the tests of a single package, e.g. mage test:package ./engine/systems
func (Test) Package(pkg string) error {
	_, err := executeCmd("go", withArgs("test", "-v", pkg), withStream())
	return err
}
