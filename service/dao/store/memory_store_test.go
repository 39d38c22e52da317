package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/approvalflow/service/dao"
)

type record struct {
	ID    string
	Tags  []string
	Count int
}

func cloneRecord(r *record) *record {
	ret := *r
	ret.Tags = append([]string(nil), r.Tags...)
	return &ret
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	srv := NewMemoryStore[string, record](func(r *record) string { return r.ID },
		WithCloner[string](cloneRecord),
		WithMatcher[string](func(r *record, parameters []*dao.Parameter) bool {
			for _, parameter := range parameters {
				if parameter.Name == "Tag" {
					for _, tag := range r.Tags {
						if tag == parameter.Value {
							return true
						}
					}
					return false
				}
			}
			return true
		}))

	input := &record{ID: "1", Tags: []string{"a"}}
	require.NoError(t, srv.Insert(ctx, input))
	assert.ErrorIs(t, srv.Insert(ctx, input), dao.ErrDuplicate)
	assert.ErrorIs(t, srv.Save(ctx, nil), dao.ErrNilEntity)
	require.NoError(t, srv.Save(ctx, &record{ID: "2", Tags: []string{"b"}}))

	input.Tags[0] = "mutated"
	loaded, err := srv.Load(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, loaded.Tags)

	err = srv.Update(ctx, "1", func(current *record) (*record, error) {
		current.Count++
		return current, nil
	})
	require.NoError(t, err)
	boom := errors.New("boom")
	assert.ErrorIs(t, srv.Update(ctx, "1", func(current *record) (*record, error) { return nil, boom }), boom)
	assert.ErrorIs(t, srv.Update(ctx, "9", func(current *record) (*record, error) { return current, nil }), dao.ErrNotFound)
	loaded, _ = srv.Load(ctx, "1")
	assert.Equal(t, 1, loaded.Count)

	all, err := srv.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	tagged, err := srv.List(ctx, &dao.Parameter{Name: "Tag", Value: "b"})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "2", tagged[0].ID)

	require.NoError(t, srv.Delete(ctx, "2"))
	assert.ErrorIs(t, srv.Delete(ctx, "2"), dao.ErrNotFound)
	_, err = srv.Load(ctx, "2")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}
