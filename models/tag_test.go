package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateTags(t *testing.T) {
	articles := []Issue{
		{Labels: []Label{{Name: "a", Color: "111"}}},
		{Labels: []Label{{Name: "a", Color: "222"}}},
		{Labels: []Label{{Name: "b", Color: "333"}}},
	}

	tags := AggregateTags(articles)
	require.Len(t, tags, 2)
	assert.Equal(t, Tag{Label: Label{Name: "a", Color: "111"}, Count: 2}, tags[0])
	assert.Equal(t, Tag{Label: Label{Name: "b", Color: "333"}, Count: 1}, tags[1])
}

func TestAggregateTagsCountsOncePerArticle(t *testing.T) {
	articles := []Issue{
		{Labels: []Label{{Name: "a", Color: "111", Description: "first"}, {Name: "a", Color: "999"}}},
		{Labels: []Label{{Name: "a", Description: "second"}}},
	}

	tags := AggregateTags(articles)
	require.Len(t, tags, 1)
	assert.Equal(t, 2, tags[0].Count)
	assert.Equal(t, "111", tags[0].Color)
	assert.Equal(t, "first", tags[0].Description)
}

func TestAggregateTagsEmpty(t *testing.T) {
	tags := AggregateTags(nil)
	assert.NotNil(t, tags)
	assert.Empty(t, tags)
}
