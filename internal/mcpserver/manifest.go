package mcpserver

import (
	"encoding/json"
)

// Manifest is the MCP registry server.json document.
type Manifest struct {
	Schema      string      `json:"$schema"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	Repository  *Repository `json:"repository,omitempty"`
	Packages    []Package   `json:"packages,omitempty"`
}

// Repository contains source repository information.
type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package describes how to install and launch the server.
type Package struct {
	RegistryType     string     `json:"registryType"`
	Identifier       string     `json:"identifier"`
	Version          string     `json:"version,omitempty"`
	PackageArguments []Argument `json:"packageArguments,omitempty"`
	Transport        Transport  `json:"transport"`
}

// Argument is a command-line argument passed to the package.
type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Transport names the MCP transport.
type Transport struct {
	Type string `json:"type"`
}

const manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"

// GenerateManifest renders server.json for version.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" {
		version = "0.0.0"
	}
	manifest := Manifest{
		Schema:      manifestSchema,
		Name:        "io.github.wisegam/codesleuth",
		Description: "Python code analysis: large files, cyclomatic complexity, and circular imports",
		Version:     version,
		Repository: &Repository{
			URL:    "https://github.com/wisegam/codesleuth",
			Source: "github",
		},
		Packages: []Package{
			{
				RegistryType:     "go",
				Identifier:       "github.com/wisegam/codesleuth/cmd/codesleuth",
				Version:          version,
				PackageArguments: []Argument{{Type: "positional", Value: "mcp"}},
				Transport:        Transport{Type: "stdio"},
			},
		},
	}
	return json.MarshalIndent(manifest, "", "  ")
}
