package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gotvm/decompiler/catalog"
)

func loadSample(t *testing.T) *catalog.Catalog {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "sample.json"))
	require.NoError(t, err)
	c, err := catalog.Load(data)
	require.NoError(t, err)
	return c
}

func TestLoadAndLookup(t *testing.T) {
	c := loadSample(t)
	require.NotEmpty(t, c.Instructions)

	add := c.Lookup("ADD")
	require.NotNil(t, add)
	require.Equal(t, "arithmetic", add.Doc.Category)
	require.Len(t, add.ValueFlow.Inputs, 2)
	require.Len(t, add.ValueFlow.Outputs, 1)

	require.Nil(t, c.Lookup("NOSUCHOP"))
}

func TestCategoryHelpers(t *testing.T) {
	c := loadSample(t)

	dup := c.Lookup("DUP")
	require.True(t, dup.IsStackShuffle())
	require.False(t, dup.IsConstProducer())

	pushint := c.Lookup("PUSHINT")
	require.True(t, pushint.IsConstProducer())
	require.False(t, pushint.IsStackShuffle())
}

func TestLoadRejectsEmptyMnemonic(t *testing.T) {
	_, err := catalog.Load([]byte(`{"instructions":[{"mnemonic":"","bytecode":{"prefix":"0"}}]}`))
	require.Error(t, err)
}
