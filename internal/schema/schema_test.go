package schema_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fcindex/fcindex/internal/schema"
)

func TestBuild_Succeeds(t *testing.T) {
	im, err := schema.Build()
	require.NoError(t, err)
	require.NotNil(t, im)
	require.NoError(t, im.Validate())
}
