package code

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/segmenters/window"
)

const pythonSource = `import os

CONSTANT = 3


@dataclass
class Point:
    x: int
    y: int

    def norm(self):
        return (self.x ** 2 + self.y ** 2) ** 0.5


# Loads the config file.
def load(path):
    with open(path) as f:
        return f.read()
`

const goSource = `package main

import "fmt"

// Server handles requests.
type Server struct {
	addr string
}

// Run starts the server.
func (s *Server) Run() error {
	fmt.Println(s.addr)
	return nil
}
`

func newStrategy(t *testing.T, opts ...window.Option) *Strategy {
	t.Helper()
	w, err := window.New(opts...)
	require.NoError(t, err)
	return New(w)
}

func TestDefinitions_Python(t *testing.T) {
	defs := Definitions(pythonSource, "python")

	require.Len(t, defs, 3)
	assert.Equal(t, "import os\n\nCONSTANT = 3", defs[0])
	assert.True(t, strings.HasPrefix(defs[1], "@dataclass\nclass Point:"))
	assert.Contains(t, defs[1], "def norm(self):")
	assert.True(t, strings.HasPrefix(defs[2], "# Loads the config file.\ndef load(path):"))
}

func TestDefinitions_Go(t *testing.T) {
	defs := Definitions(goSource, "go")

	require.Len(t, defs, 3)
	assert.Equal(t, "package main\n\nimport \"fmt\"", defs[0])
	assert.True(t, strings.HasPrefix(defs[1], "// Server handles requests.\ntype Server struct"))
	assert.True(t, strings.HasPrefix(defs[2], "// Run starts the server.\nfunc (s *Server) Run()"))
}

func TestDefinitions_JavaScript(t *testing.T) {
	src := "const a = 1;\n\nexport function one() {\n  return 1;\n}\n\nconst two = () => 2;\n\nclass Three {}\n"

	defs := Definitions(src, "javascript")

	assert.Equal(t, []string{
		"const a = 1;",
		"export function one() {\n  return 1;\n}",
		"const two = () => 2;",
		"class Three {}",
	}, defs)
}

func TestDefinitions_JavaMethodsNotControlFlow(t *testing.T) {
	src := "public class A {\n    public int f(int x) {\n        if (x > 0) {\n            return x;\n        }\n        return 0;\n    }\n}\n"

	defs := Definitions(src, "java")

	require.Len(t, defs, 2)
	assert.True(t, strings.HasPrefix(defs[1], "    public int f(int x) {"))
	assert.Contains(t, defs[1], "if (x > 0)")
}

func TestDefinitions_UnknownLanguageIsWholeFile(t *testing.T) {
	src := "\n\nFROM alpine\nRUN apk add curl\n\n"

	assert.Equal(t, []string{"FROM alpine\nRUN apk add curl"}, Definitions(src, "dockerfile"))
}

func TestDefinitions_Empty(t *testing.T) {
	assert.Empty(t, Definitions("", "go"))
	assert.Empty(t, Definitions("\n \n", "python"))
}

func TestLookup(t *testing.T) {
	for _, lang := range []string{
		"python", "go", "rust", "javascript", "typescript", "java", "kotlin",
		"scala", "csharp", "c", "cpp", "ruby", "php", "swift", "shell",
	} {
		_, ok := Lookup(lang)
		assert.True(t, ok, lang)
	}
	_, ok := Lookup("cobol")
	assert.False(t, ok)
	assert.Equal(t, 15, Languages())
}

func TestSegment_CarriesLanguage(t *testing.T) {
	s := newStrategy(t)

	segs, err := s.Segment(context.Background(), driven.SegmentSource{
		DocumentID: "doc",
		FileName:   "main.go",
		Category:   domain.CategorySourceCode,
		Language:   "go",
		Text:       goSource,
	})

	require.NoError(t, err)
	require.Len(t, segs, 3)
	for i, seg := range segs {
		assert.Equal(t, "go", seg.Metadata.Language)
		assert.Equal(t, i, seg.Metadata.ChunkIndex)
		assert.Equal(t, "main.go", seg.Metadata.FileName)
	}
}

func TestSegment_OversizedDefinitionWindowed(t *testing.T) {
	s := newStrategy(t, window.WithSize(100), window.WithOverlap(20))
	body := strings.Repeat("    x = x + 1\n", 30)
	src := "def small():\n    pass\n\ndef big():\n" + body

	segs, err := s.Segment(context.Background(), driven.SegmentSource{
		FileName: "big.py",
		Category: domain.CategorySourceCode,
		Language: "python",
		Text:     src,
	})

	require.NoError(t, err)
	require.Greater(t, len(segs), 2)
	assert.Equal(t, "def small():\n    pass", segs[0].Content)
	for _, seg := range segs {
		assert.LessOrEqual(t, seg.Metadata.CharCount, 100)
		assert.Equal(t, "python", seg.Metadata.Language)
	}
}

func TestSegment_DefaultsLanguage(t *testing.T) {
	segs, err := newStrategy(t).Segment(context.Background(), driven.SegmentSource{
		FileName: "Makefile",
		Category: domain.CategorySourceCode,
		Text:     "all:\n\tgo build ./...\n",
	})

	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, domain.DefaultLanguage, segs[0].Metadata.Language)
}
