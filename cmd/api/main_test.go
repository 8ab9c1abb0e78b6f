package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/docbrief/internal/pkg/logger"
)

func TestNewIdentityVerifier(t *testing.T) {
	v, err := newIdentityVerifier("", logger.Nop())
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = newIdentityVerifier("whsec_dGVzdA==", logger.Nop())
	require.NoError(t, err)
	assert.NotNil(t, v)

	_, err = newIdentityVerifier("whsec_***", logger.Nop())
	assert.Error(t, err)
}
