// Package fs provides a request store persisting JSON documents with afs.
//
// Layout:
//
//	<base>/<requestID>/request.json
//	<base>/<requestID>/audit/<seq>.json
//
// Audit documents are written before the request document. A save interrupted
// in between leaves audit documents beyond the committed history; they are
// ignored on read and overwritten by the retried save, which reuses the same
// sequence numbers.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/dao"
	"github.com/viant/approvalflow/service/dao/audit"
	"github.com/viant/approvalflow/service/dao/criteria"
	"github.com/viant/approvalflow/service/dao/request"
)

const (
	requestFile = "request.json"
	auditFolder = "audit"
)

// Service implements a filesystem-based request storage
type Service struct {
	baseURL string
	fs      afs.Service
	mu      sync.RWMutex
}

var _ request.Store = (*Service)(nil)

// Create stores a new request
func (s *Service) Create(ctx context.Context, req *model.Request, actions ...*model.Action) error {
	if err := request.Validate(req, actions); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	exists, err := s.fs.Exists(ctx, s.requestURL(req.ID))
	if err != nil {
		return fmt.Errorf("failed to check request %s: %w", req.ID, err)
	}
	if exists {
		return fmt.Errorf("request %s: %w", req.ID, dao.ErrDuplicate)
	}
	candidate := req.Clone()
	candidate.Revision = 1
	candidate.History = request.Merge(candidate.History, actions)
	if err := s.commit(ctx, candidate, actions); err != nil {
		return err
	}
	req.Revision = candidate.Revision
	req.History = request.Merge(req.History, actions)
	return nil
}

// Save stores the request when its revision is current
func (s *Service) Save(ctx context.Context, req *model.Request, actions ...*model.Action) error {
	if err := request.Validate(req, actions); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.load(ctx, req.ID)
	if err != nil {
		return err
	}
	if current.Revision != req.Revision {
		return fmt.Errorf("request %s at revision %d, got %d: %w", req.ID, current.Revision, req.Revision, dao.ErrConflict)
	}
	candidate := req.Clone()
	candidate.Revision++
	candidate.History = request.Merge(current.History, actions)
	if err := s.commit(ctx, candidate, actions); err != nil {
		return err
	}
	req.Revision = candidate.Revision
	req.History = request.Merge(req.History, actions)
	return nil
}

func (s *Service) commit(ctx context.Context, req *model.Request, actions []*model.Action) error {
	for _, action := range actions {
		if err := s.upload(ctx, s.actionURL(action.RequestID, action.Seq), action); err != nil {
			return err
		}
	}
	return s.upload(ctx, s.requestURL(req.ID), req)
}

func (s *Service) upload(ctx context.Context, URL string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", URL, err)
	}
	if err = s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to upload %s: %w", URL, err)
	}
	return nil
}

// Load retrieves a request from the filesystem
func (s *Service) Load(ctx context.Context, id string) (*model.Request, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(ctx, id)
}

func (s *Service) load(ctx context.Context, id string) (*model.Request, error) {
	URL := s.requestURL(id)
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check request %s: %w", id, err)
	}
	if !exists {
		return nil, fmt.Errorf("request %s: %w", id, dao.ErrNotFound)
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read request %s: %w", id, err)
	}
	ret := &model.Request{}
	if err := json.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to unmarshal request %s: %w", id, err)
	}
	return ret, nil
}

// List returns requests matching parameters
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exists, err := s.fs.Exists(ctx, s.baseURL)
	if err != nil || !exists {
		return []*model.Request{}, err
	}
	objects, err := s.fs.List(ctx, s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	ret := make([]*model.Request, 0, len(objects))
	for _, object := range objects {
		if !object.IsDir() || strings.TrimRight(object.URL(), "/") == strings.TrimRight(s.baseURL, "/") {
			continue
		}
		req, err := s.load(ctx, object.Name())
		if err != nil {
			if errors.Is(err, dao.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if criteria.Match(req, parameters) {
			ret = append(ret, req)
		}
	}
	sort.SliceStable(ret, func(i, j int) bool {
		if ret[i].CreatedAt.Equal(ret[j].CreatedAt) {
			return ret[i].ID < ret[j].ID
		}
		return ret[i].CreatedAt.Before(ret[j].CreatedAt)
	})
	return ret, nil
}

// Append writes an audit action of an existing request
func (s *Service) Append(ctx context.Context, action *model.Action) error {
	if err := audit.Validate(action); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.load(ctx, action.RequestID)
	if err != nil {
		return err
	}
	merged := request.Merge(current.History, []*model.Action{action})
	if len(merged) == len(current.History) {
		return nil
	}
	current.History = merged
	return s.commit(ctx, current, []*model.Action{action})
}

// ListByRequest returns committed audit actions ordered by Seq
func (s *Service) ListByRequest(ctx context.Context, requestID string) ([]*model.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	current, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	committed := map[int]bool{}
	for _, action := range current.History {
		committed[action.Seq] = true
	}
	folderURL := url.Join(s.folderURL(requestID), auditFolder)
	objects, err := s.fs.List(ctx, folderURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit of %s: %w", requestID, err)
	}
	var ret []*model.Action
	for _, object := range objects {
		if object.IsDir() || path.Ext(object.Name()) != ".json" {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", object.URL(), err)
		}
		action := &model.Action{}
		if err := json.Unmarshal(data, action); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", object.URL(), err)
		}
		if committed[action.Seq] {
			ret = append(ret, action)
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Seq < ret[j].Seq })
	return ret, nil
}

func (s *Service) folderURL(id string) string {
	return url.Join(s.baseURL, id)
}

func (s *Service) requestURL(id string) string {
	return url.Join(s.folderURL(id), requestFile)
}

func (s *Service) actionURL(requestID string, seq int) string {
	return url.Join(url.Join(s.folderURL(requestID), auditFolder), fmt.Sprintf("%08d.json", seq))
}

// New creates a filesystem request store rooted at baseURL
func New(baseURL string, fs afs.Service) (*Service, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if fs == nil {
		fs = afs.New()
	}
	return &Service{
		baseURL: url.Normalize(baseURL, file.Scheme),
		fs:      fs,
	}, nil
}
