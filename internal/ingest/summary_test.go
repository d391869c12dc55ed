package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportedMessage(t *testing.T) {
	assert.Equal(t, "3 park(s) imported.", ImportedMessage(3, 0))
	assert.Equal(t, "0 park(s) imported. 2 feature(s) skipped (invalid or missing id/geometry).", ImportedMessage(0, 2))
}

func TestValidationMessage(t *testing.T) {
	assert.Equal(t, "GeoJSON validation failed: a b", ValidationMessage([]string{"a", "b"}))
	assert.Equal(t, "GeoJSON validation failed: a b c", ValidationMessage([]string{"a", "b", "c"}))
	assert.Equal(t, "GeoJSON validation failed: a b c …", ValidationMessage([]string{"a", "b", "c", "d"}))
}

func TestShardIsStable(t *testing.T) {
	for _, gid := range []string{"A1", "{3F2504E0-4F89-11D3-9A0C-0305E82C3301}", ""} {
		assert.Equal(t, shard(gid, 7), shard(gid, 7))
		assert.Less(t, shard(gid, 7), 7)
	}
}

func TestRunResult(t *testing.T) {
	assert.Equal(t, "completed", runResult(Summary{}))
	assert.Equal(t, "aborted", runResult(Summary{Aborted: true}))
	assert.Equal(t, "failed", runResult(Summary{Failed: true}))
}
