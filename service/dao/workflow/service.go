// Package workflow provides the versioned workflow definition registry.
package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/approvalflow/internal/clock"
	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/dao"
	"github.com/viant/approvalflow/service/dao/store"
	"gopkg.in/yaml.v3"
)

// ID filters List by workflow id
const ID = "ID"

// Service is a registry of workflow definitions keyed by (ID, Version).
// Registered definitions are immutable: they are copied on the way in and out.
type Service struct {
	definitions dao.Service[string, model.Definition]
	fs          afs.Service
	mux         sync.Mutex
}

// Register validates and stores a definition. A zero version is assigned the
// next version for the id; registering an existing (ID, Version) fails with
// dao.ErrDuplicate.
func (s *Service) Register(ctx context.Context, definition *model.Definition) error {
	if definition == nil {
		return dao.ErrNilEntity
	}
	if definition.ID == "" {
		return dao.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	definition = definition.Clone()
	if definition.Version == 0 {
		latest, err := s.Latest(ctx, definition.ID)
		switch {
		case err == nil:
			definition.Version = latest.Version + 1
		case !errors.Is(err, dao.ErrNotFound):
			return err
		}
	}
	if err := definition.Init(); err != nil {
		return err
	}
	if issues := definition.Validate(); len(issues) > 0 {
		return errors.Join(issues...)
	}
	if definition.CreatedAt.IsZero() {
		definition.CreatedAt = clock.Now()
	}
	if err := s.definitions.Insert(ctx, definition); err != nil {
		return fmt.Errorf("failed to register workflow %s: %w", definition.Key(), err)
	}
	return nil
}

// Load returns the exact definition version
func (s *Service) Load(ctx context.Context, id string, version int) (*model.Definition, error) {
	definition, err := s.definitions.Load(ctx, model.VersionKey(id, version))
	if err != nil {
		return nil, fmt.Errorf("workflow %s: %w", model.VersionKey(id, version), err)
	}
	return definition, nil
}

// Latest returns the highest registered version of the workflow
func (s *Service) Latest(ctx context.Context, id string) (*model.Definition, error) {
	definitions, err := s.Versions(ctx, id)
	if err != nil {
		return nil, err
	}
	return definitions[len(definitions)-1], nil
}

// Versions returns all registered versions of the workflow in ascending order
func (s *Service) Versions(ctx context.Context, id string) ([]*model.Definition, error) {
	definitions, err := s.List(ctx, dao.NewParameter(ID, id))
	if err != nil {
		return nil, err
	}
	if len(definitions) == 0 {
		return nil, fmt.Errorf("workflow %s: %w", id, dao.ErrNotFound)
	}
	return definitions, nil
}

// List returns definitions ordered by id and version
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Definition, error) {
	definitions, err := s.definitions.List(ctx, parameters...)
	if err != nil {
		return nil, err
	}
	sort.Slice(definitions, func(i, j int) bool {
		if definitions[i].ID == definitions[j].ID {
			return definitions[i].Version < definitions[j].Version
		}
		return definitions[i].ID < definitions[j].ID
	})
	return definitions, nil
}

// DecodeYAML decodes one definition, or a sequence of definitions
func (s *Service) DecodeYAML(encoded []byte) ([]*model.Definition, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(encoded))
	var result []*model.Definition
	for {
		var node yaml.Node
		err := decoder.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		root := &node
		if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
			root = root.Content[0]
		}
		if root.Kind == yaml.SequenceNode {
			var definitions []*model.Definition
			if err := root.Decode(&definitions); err != nil {
				return nil, err
			}
			result = append(result, definitions...)
			continue
		}
		definition := &model.Definition{}
		if err := root.Decode(definition); err != nil {
			return nil, err
		}
		result = append(result, definition)
	}
	return result, nil
}

// LoadURL registers definitions from a YAML document or from every YAML
// document in a folder
func (s *Service) LoadURL(ctx context.Context, URL string) ([]*model.Definition, error) {
	objects, err := s.fs.List(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows %s: %w", URL, err)
	}
	var URLs []string
	for _, object := range objects {
		if object.IsDir() {
			continue
		}
		switch strings.ToLower(path.Ext(object.Name())) {
		case ".yaml", ".yml":
			URLs = append(URLs, object.URL())
		}
	}
	sort.Strings(URLs)
	var result []*model.Definition
	for _, candidate := range URLs {
		data, err := s.fs.DownloadWithURL(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("failed to download workflow %s: %w", candidate, err)
		}
		definitions, err := s.DecodeYAML(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode workflow %s: %w", candidate, err)
		}
		for _, definition := range definitions {
			if err := s.Register(ctx, definition); err != nil {
				return nil, fmt.Errorf("invalid workflow %s: %w", candidate, err)
			}
			registered, err := s.Latest(ctx, definition.ID)
			if err != nil {
				return nil, err
			}
			result = append(result, registered)
		}
	}
	return result, nil
}

func matchDefinition(definition *model.Definition, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != ID {
			continue
		}
		matched := false
		for _, value := range parameter.Values() {
			if value == definition.ID {
				matched = true
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// New creates a workflow registry
func New(opts ...Option) *Service {
	ret := &Service{
		definitions: store.NewMemoryStore[string, model.Definition](
			(*model.Definition).Key,
			store.WithCloner[string]((*model.Definition).Clone),
			store.WithMatcher[string](matchDefinition),
		),
		fs: afs.New(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
