package main

import (
	"context"
	"errors"
	"testing"

	"github.com/natserract/ffcleverreach/pkg/cleverreach"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type listsAPI struct {
	cleverreach.API
	groups     []cleverreach.Group
	attributes map[string][]cleverreach.Attribute
}

func (l *listsAPI) Groups(ctx context.Context) ([]cleverreach.Group, error) {
	return l.groups, nil
}

func (l *listsAPI) GroupAttributes(ctx context.Context, listID string) ([]cleverreach.Attribute, error) {
	attrs, ok := l.attributes[listID]
	if !ok {
		return nil, errors.New("forbidden")
	}
	return attrs, nil
}

func TestCollectLists(t *testing.T) {
	api := &listsAPI{
		groups: []cleverreach.Group{{ID: "2", Name: "Newsletter"}, {ID: "1", Name: "Events"}},
		attributes: map[string][]cleverreach.Attribute{
			"2": {{Name: "lastname"}, {Name: "firstname"}},
		},
	}

	lists, err := collectLists(context.Background(), api, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []exportedList{
		{ID: "1", Name: "Events", Attributes: []string{}},
		{ID: "2", Name: "Newsletter", Attributes: []string{"firstname", "lastname"}},
	}, lists)
}
