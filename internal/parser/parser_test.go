package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageForExt(t *testing.T) {
	cases := []struct {
		ext  string
		want Language
		ok   bool
	}{
		{".go", Go, true},
		{".rs", Rust, true},
		{".py", Python, true},
		{".c", C, true},
		{".h", C, true},
		{".cpp", C, true},
		{".java", Java, true},
		{".JAVA", Java, true},
		{".rb", "", false},
	}
	for _, c := range cases {
		got, ok := LanguageForExt(c.ext)
		assert.Equal(t, c.ok, ok, c.ext)
		assert.Equal(t, c.want, got, c.ext)
	}
}

func TestParseGoFile(t *testing.T) {
	f := New()
	src := []byte("package demo\n\nfunc Foo() int { return 1 }\n")
	tree, parseErr := f.Parse("demo.go", src)
	require.Empty(t, parseErr)
	require.NotNil(t, tree)
	require.NotNil(t, tree.Go)
	assert.Equal(t, "demo", tree.Go.File.Name.Name)
	tree.Close()
}

func TestParseGoFileSyntaxError(t *testing.T) {
	f := New()
	src := []byte("package demo\n\nfunc Foo( {\n")
	tree, parseErr := f.Parse("bad.go", src)
	assert.Nil(t, tree)
	assert.NotEmpty(t, parseErr)
}

func TestParseUnsupportedExtension(t *testing.T) {
	f := New()
	tree, parseErr := f.Parse("README.md", []byte("# hi"))
	assert.Nil(t, tree)
	assert.Empty(t, parseErr)
}

func TestParsePythonFile(t *testing.T) {
	f := New()
	src := []byte("def foo():\n    return 1\n")
	tree, parseErr := f.Parse("mod.py", src)
	require.Empty(t, parseErr)
	require.NotNil(t, tree)
	require.NotNil(t, tree.TS)
	assert.Equal(t, Python, tree.Language)
	tree.Close()
}

func TestParseRustFile(t *testing.T) {
	f := New()
	src := []byte("fn foo() -> i32 { 1 }\n")
	tree, parseErr := f.Parse("mod.rs", src)
	require.Empty(t, parseErr)
	require.NotNil(t, tree)
	tree.Close()
}

func TestParseReusesCachedGrammar(t *testing.T) {
	f := New()
	_, err1 := f.Parse("a.py", []byte("x = 1\n"))
	require.Empty(t, err1)
	f.mu.Lock()
	n := len(f.ts)
	f.mu.Unlock()
	assert.Equal(t, 1, n)

	_, err2 := f.Parse("b.py", []byte("y = 2\n"))
	require.Empty(t, err2)
	f.mu.Lock()
	n = len(f.ts)
	f.mu.Unlock()
	assert.Equal(t, 1, n, "second parse of the same language must reuse the cached grammar")
}
