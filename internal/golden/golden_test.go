package golden_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rlox/internal/golden"
)

func TestScripts(t *testing.T) {
	cases, err := golden.Discover("../../testdata/scripts")
	require.NoError(t, err)
	require.NotEmpty(t, cases)

	for _, c := range cases {
		c := c
		t.Run(c.Path, func(t *testing.T) {
			res := golden.Run(c)
			golden.PrintResult(os.Stdout, res)
			assert.True(t, res.Passed, "%v", res.Failures)
		})
	}
}
