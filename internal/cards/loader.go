package cards

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Blocks in a card file are separated by a line of three or more dashes.
var separatorRe = regexp.MustCompile(`(?m)^-{3,}[ \t]*$`)

// FileProvider reads identities from card files or directories of them.
//
// A block looks like:
//
//	NAME: Bulbasaur
//	KEY: bulbasaur
//	https://example.com/art/1.png
//	https://example.com/sprites/1.png
//
// NAME and KEY are optional; every other non-empty line that does not
// start with # is an image source, best first.
type FileProvider struct {
	paths []string
}

func NewFileProvider(paths ...string) *FileProvider {
	return &FileProvider{paths: paths}
}

func (p *FileProvider) Name() string {
	return "files"
}

func (p *FileProvider) GetCardPool(ctx context.Context, minCount int) ([]Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadIdentities(p.paths)
}

// LoadIdentities loads identities from a list of paths (files or directories).
func LoadIdentities(paths []string) ([]Identity, error) {
	var identities []Identity

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to access path %s: %w", path, err)
		}

		if !info.IsDir() {
			ids, err := loadFile(path)
			if err != nil {
				return nil, err
			}
			identities = append(identities, ids...)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read dir %s: %w", path, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ids, err := loadFile(filepath.Join(path, entry.Name()))
			if err != nil {
				return nil, err
			}
			identities = append(identities, ids...)
		}
	}

	return identities, nil
}

func loadFile(path string) ([]Identity, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	var contentBuilder strings.Builder
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		contentBuilder.WriteString(scanner.Text() + "\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan file %s: %w", path, err)
	}

	var identities []Identity
	for i, part := range separatorRe.Split(contentBuilder.String(), -1) {
		if id, ok := parseBlock(part, path, i+1); ok {
			identities = append(identities, id)
		}
	}
	return identities, nil
}

func parseBlock(block, path string, index int) (Identity, bool) {
	var id Identity
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
		case strings.HasPrefix(line, "NAME:"):
			id.Label = strings.TrimSpace(strings.TrimPrefix(line, "NAME:"))
		case strings.HasPrefix(line, "KEY:"):
			id.Key = strings.TrimSpace(strings.TrimPrefix(line, "KEY:"))
		default:
			id.Sources = append(id.Sources, line)
		}
	}

	if id.Label == "" && id.Key == "" && len(id.Sources) == 0 {
		return Identity{}, false
	}
	if id.Key == "" {
		if id.Label != "" {
			id.Key = strings.ToLower(id.Label)
		} else {
			id.Key = fmt.Sprintf("%s#%d", filepath.Base(path), index)
		}
	}
	if id.Label == "" {
		id.Label = id.Key
	}
	return id, true
}
