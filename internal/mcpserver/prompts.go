package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"path"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

type promptFrontmatter struct {
	Description string `yaml:"description"`
}

// registerPrompts adds one prompt per embedded markdown file, named after
// the file.
func (s *Server) registerPrompts() {
	for _, p := range loadPrompts() {
		s.server.AddPrompt(&mcp.Prompt{
			Name:        p.name,
			Description: p.description,
		}, makePromptHandler(p.description, p.body))
	}
}

type prompt struct {
	name        string
	description string
	body        string
}

func loadPrompts() []prompt {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil
	}

	var prompts []prompt
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		content, err := promptFiles.ReadFile(path.Join("prompts", entry.Name()))
		if err != nil {
			continue
		}
		description, body := parseFrontmatter(content)
		prompts = append(prompts, prompt{
			name:        strings.TrimSuffix(entry.Name(), ".md"),
			description: description,
			body:        body,
		})
	}
	return prompts
}

// parseFrontmatter splits YAML frontmatter from the body. Content without
// valid frontmatter is returned whole as the body.
func parseFrontmatter(content []byte) (description string, body string) {
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return "", string(content)
	}

	rest := content[4:]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end == -1 {
		return "", string(content)
	}

	var fm promptFrontmatter
	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		return "", string(content)
	}

	body = strings.TrimPrefix(string(rest[end+5:]), "\n")
	return fm.Description, body
}

func makePromptHandler(description, body string) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return &mcp.GetPromptResult{
			Description: description,
			Messages: []*mcp.PromptMessage{
				{
					Role:    "user",
					Content: &mcp.TextContent{Text: body},
				},
			},
		}, nil
	}
}
