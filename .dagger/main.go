// Muninn CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
// It is the main harness for handling nearly all dev operations.
package main

import (
	"context"

	"dagger/muninn/internal/dagger"
)

// Muninn is the main module for the Muninn CI/CD pipeline
type Muninn struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Muninn CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".devenv", "build", "tmp", "data"]
	source *dagger.Directory,
) *Muninn {
	return &Muninn{
		Source: source,
	}
}

// goContainer returns an Alpine-based Go container with the module and
// build caches mounted and the project source at /src.
//
// It is the shared foundation for tests, builds, and linting.
func (m *Muninn) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-alpine").
		WithEnvVariable("CGO_ENABLED", "0").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", m.Source)
}

// Test runs the muninn unit tests via "go test"
func (m *Muninn) Test(ctx context.Context) (string, error) {
	return m.goContainer().
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}
