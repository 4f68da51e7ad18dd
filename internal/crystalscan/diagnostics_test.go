package crystalscan

import (
	"regexp"
	"testing"

	"github.com/navid-m/liger/internal/protocol"
	"github.com/stretchr/testify/require"
)

var origHeredocStartRe *regexp.Regexp = heredocStartRe

func TestDiagnoseCleanSourceHasNoDiagnostics(t *testing.T) {
	src := "class Foo\n  def bar\n    1\n  end\nend\n"
	require.Empty(t, Diagnose(src))
}

func TestDiagnoseUnmatchedEnd(t *testing.T) {
	src := "def foo\nend\nend\n"
	diags := Diagnose(src)
	require.Len(t, diags, 1)
	require.Equal(t, 1, diags[0].Severity)
	require.Contains(t, diags[0].Message, "unmatched")
}

func TestDiagnoseUnterminatedHeredoc(t *testing.T) {
	src := "x = <<-FOO\nhello\n"
	diags := Diagnose(src)
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Message, "heredoc")
}

func TestDiagnoseUnbalancedBlock(t *testing.T) {
	src := "class Foo\n  def bar\n"
	diags := Diagnose(src)
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Message, "unbalanced")
}

// TestRecoverToParseErrorShape locks in the generic (0,0) "Parse error: "
// diagnostic that Diagnose's deferred recover produces on any scanner panic.
func TestRecoverToParseErrorShape(t *testing.T) {
	d := RecoverToParseError("boom")
	require.Equal(t, 0, d.Range.Start.Line)
	require.Equal(t, 0, d.Range.Start.Character)
	require.Equal(t, protocol.SeverityError, d.Severity)
	require.Equal(t, "Parse error: boom", d.Message)
}

// TestDiagnoseRecoversFromPanic drives Diagnose's own deferred recover (not
// RecoverToParseError directly) to confirm the wiring actually triggers.
func TestDiagnoseRecoversFromPanic(t *testing.T) {
	defer func() { heredocStartRe = origHeredocStartRe }()
	heredocStartRe = nil // FindStringSubmatch on a nil *regexp.Regexp panics

	diags := Diagnose("x = <<-FOO\nhello\n")
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Message, "Parse error:")
}
