package mev

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCategoryOf(t *testing.T) {
	r := NewRegistry()

	cat, ok := r.CategoryOf(raydiumAmmProgram)
	require.True(t, ok)
	assert.Equal(t, CategoryDex, cat)

	cat, ok = r.CategoryOf(systemProgram)
	require.True(t, ok)
	assert.Equal(t, CategorySystem, cat)

	_, ok = r.CategoryOf("unknownAddress1")
	assert.False(t, ok)
}

func TestRegistryTipRecipients(t *testing.T) {
	r := NewRegistry()

	recipients := r.TipRecipients()
	require.NotEmpty(t, recipients)
	for _, addr := range recipients {
		assert.True(t, r.IsTipRecipient(addr))
	}
}
