package idgen

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerator(t *testing.T) {
	id := NewUUID("").Generate()
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	prefixed := NewUUID("job").Generate()
	require.True(t, strings.HasPrefix(prefixed, "job_"))
	_, err = uuid.Parse(strings.TrimPrefix(prefixed, "job_"))
	assert.NoError(t, err)

	assert.NotEqual(t, id, NewUUID("").Generate())
}

func TestSequentialGenerator(t *testing.T) {
	g := NewSequential("job")
	assert.Equal(t, "job_1", g.Generate())
	assert.Equal(t, "job_2", g.Generate())

	bare := NewSequential("")
	assert.Equal(t, "1", bare.Generate())
}
