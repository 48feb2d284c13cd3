package srcenc

import (
	"testing"

	"github.com/dekarrin/lrforge/internal/lrforge/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Detect_DefaultsWhenNoDeclaration(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	_, name, err := Detect([]byte("rule $S : ('a')\n"), "utf-8")
	require.NoError(err)
	assert.Equal("utf-8", name)
}

func Test_Detect_ReadsCodingComment(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	_, name, err := Detect([]byte("# coding: iso-8859-1\nrule $S : ('a')\n"), "utf-8")
	require.NoError(err)
	assert.Equal("iso-8859-1", name)
}

func Test_Detect_EqualsStyleDeclaration(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	_, name, err := Detect([]byte("# -*- coding=utf-8 -*-\n"), "iso-8859-1")
	require.NoError(err)
	assert.Equal("utf-8", name)
}

func Test_Detect_BOMForcesUTF8(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	data := append([]byte(bom), []byte("rule $S : ('a')\n")...)
	_, name, err := Detect(data, "iso-8859-1")
	require.NoError(err)
	assert.Equal("utf-8", name)
}

func Test_Detect_BOMWithConflictingDeclarationErrors(t *testing.T) {
	require := require.New(t)

	data := append([]byte(bom), []byte("# coding: iso-8859-1\n")...)
	_, _, err := Detect(data, "utf-8")
	require.Error(err)

	dErr, ok := err.(*diag.Error)
	require.True(ok)
	require.Equal(diag.InvalidEncodingDeclaration, dErr.Kind())
}

func Test_Detect_UnknownEncodingErrors(t *testing.T) {
	require := require.New(t)

	_, _, err := Detect([]byte("# coding: not-a-real-encoding\n"), "utf-8")
	require.Error(err)

	dErr, ok := err.(*diag.Error)
	require.True(ok)
	require.Equal(diag.InvalidEncodingDeclaration, dErr.Kind())
}
