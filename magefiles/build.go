//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Downloads the modules and builds the meshview binary into bin/.
func (Build) Viewer() error {
	if err := goModDownload(); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/meshview", "."), withStream()); err != nil {
		return err
	}
	return nil
}
