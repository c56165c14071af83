package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/parsing"
	"github.com/codelens-dev/codelens/internal/types"
)

func TestImports_PythonPlainAndFrom(t *testing.T) {
	cache := parsing.New()
	defer cache.Close()

	code := `import os
from collections import OrderedDict
from . import sibling
`
	imports := Imports(cache, types.LangPython, code)
	require.Len(t, imports, 3)
	assert.Equal(t, "os", imports[0].Module)
	assert.Equal(t, "collections", imports[1].Module)
	assert.Equal(t, []string{"OrderedDict"}, imports[1].Names)
	assert.Equal(t, 1, imports[2].Level)
}

func TestImports_GoSpec(t *testing.T) {
	cache := parsing.New()
	defer cache.Close()

	code := `package main

import "fmt"
`
	imports := Imports(cache, types.LangGo, code)
	require.Len(t, imports, 1)
	assert.Equal(t, "fmt", imports[0].Module)
	assert.Equal(t, []string{"fmt"}, imports[0].Names)
}

func TestImports_RustUseList(t *testing.T) {
	cache := parsing.New()
	defer cache.Close()

	code := `use std::collections::{HashMap, HashSet};
`
	imports := Imports(cache, types.LangRust, code)
	require.Len(t, imports, 1)
	assert.ElementsMatch(t, []string{"HashMap", "HashSet"}, imports[0].Names)
}

func TestImports_JSNamedImport(t *testing.T) {
	cache := parsing.New()
	defer cache.Close()

	code := `import { useState } from "react";
`
	imports := Imports(cache, types.LangJavaScript, code)
	require.Len(t, imports, 1)
	assert.Equal(t, "react", imports[0].Module)
	assert.Contains(t, imports[0].Names, "useState")
}

func TestImports_CInclude(t *testing.T) {
	cache := parsing.New()
	defer cache.Close()

	code := `#include <stdio.h>
`
	imports := Imports(cache, types.LangC, code)
	require.Len(t, imports, 1)
	assert.Equal(t, "stdio.h", imports[0].Module)
}
