// Package loam reads quick templates from a directory of markdown documents
// managed by Loam.
//
//	---
//	title: Keyboard shortcuts
//	category: advanced
//	---
//	Press ? anywhere to see every shortcut.
//
// The template name defaults to the file name without its extension.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/waypoint/pkg/domain"
)

// Source adapts a Loam repository to ports.TemplateSource.
type Source struct {
	Repo *loam.TypedRepository[TemplateMetadata]
}

// New wraps an initialised typed repository.
func New(repo *loam.TypedRepository[TemplateMetadata]) *Source {
	return &Source{Repo: repo}
}

// Open initialises a read-only Loam repository at dir.
func Open(dir string) (*Source, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numeric frontmatter consistent across formats; read-only
	// stops Loam from creating a sandbox since templates are never written.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[TemplateMetadata](repo)), nil
}

// Templates lists every document as a template, ordered by name.
func (s *Source) Templates(ctx context.Context) ([]domain.Template, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string, len(docs))
	templates := make([]domain.Template, 0, len(docs))
	for _, listed := range docs {
		// List carries no body, so each template is read in full.
		doc, err := s.Repo.Get(ctx, listed.ID)
		if err != nil {
			return nil, fmt.Errorf("loam get failed for %s: %w", listed.ID, err)
		}

		name := doc.Data.Name
		if name == "" {
			name = trimExtension(listed.ID)
		}
		if existing, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: template '%s' is defined in both '%s' and '%s'", name, existing, listed.ID)
		}
		seen[name] = listed.ID

		category, err := domain.ParseCategory(doc.Data.Category)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", name, err)
		}

		title := doc.Data.Title
		if title == "" {
			title = name
		}
		templates = append(templates, domain.Template{
			Name:        name,
			Title:       title,
			Description: strings.TrimSpace(doc.Content),
			Image:       doc.Data.Image,
			Category:    category,
		})
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
	return templates, nil
}

// Watch signals the ID of every template document that changes, so callers can reload the catalog.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}
