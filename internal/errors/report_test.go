package errors

import (
	"testing"

	"github.com/go-modelica/moc/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndWrap(t *testing.T) {
	r := New(FLT003, &ast.Span{Start: ast.Pos{Line: 4, Column: 2}}, "der() expects a simple identifier")
	assert.Equal(t, "flatten", r.Phase)
	assert.False(t, r.IsWarning())

	err := Wrap(r)
	got, ok := AsReport(err)
	require.True(t, ok)
	assert.Equal(t, FLT003, got.Code)
}

func TestBalanceWarningIsNonFatal(t *testing.T) {
	r := New(BAL002, nil, "underdetermined")
	assert.True(t, r.IsWarning())
}

func TestSinkSeparatesErrorsAndWarnings(t *testing.T) {
	sink := NewSink()
	sink.Add(New(RES001, nil, "unknown identifier 'foo'"))
	sink.Add(New(BAL001, nil, "overdetermined by 1"))
	sink.Add(nil)

	assert.Len(t, sink.Errors(), 1)
	assert.Len(t, sink.Warnings(), 1)
	assert.True(t, sink.HasErrors())
}

func TestSinkToJSONDeterministicOrder(t *testing.T) {
	sink := NewSink()
	sink.Add(New(RES001, &ast.Span{Start: ast.Pos{Line: 9}}, "b"))
	sink.Add(New(RES001, &ast.Span{Start: ast.Pos{Line: 2}}, "a"))

	out1, err := sink.ToJSON(false)
	require.NoError(t, err)
	out2, err := sink.ToJSON(false)
	require.NoError(t, err)
	assert.Equal(t, out1, out2)
}
