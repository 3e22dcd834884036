package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cognit/pkg/syntax"
)

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "function", syntax.KindFunction.String())
	assert.Equal(t, "logical_and", syntax.KindLogicalAnd.String())
	assert.Equal(t, "other", syntax.KindOther.String())
	assert.Equal(t, "kind(200)", syntax.Kind(200).String())
}

func TestParseKindRoundTrip(t *testing.T) {
	t.Parallel()

	kinds := []syntax.Kind{
		syntax.KindFile,
		syntax.KindFunction,
		syntax.KindLambda,
		syntax.KindSelection,
		syntax.KindLoop,
		syntax.KindHandler,
		syntax.KindTernary,
		syntax.KindLogicalAnd,
		syntax.KindLogicalOr,
		syntax.KindElse,
		syntax.KindGoto,
		syntax.KindIdentifier,
		syntax.KindParams,
		syntax.KindTypeSpec,
		syntax.KindScopeSpec,
		syntax.KindBlock,
	}

	for _, k := range kinds {
		parsed, err := syntax.ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
}

func TestParseKindUnknown(t *testing.T) {
	t.Parallel()

	_, err := syntax.ParseKind("no_such_kind")
	require.ErrorIs(t, err, syntax.ErrUnknownKind)
}

func TestKindSetContains(t *testing.T) {
	t.Parallel()

	s := syntax.NewKindSet(syntax.KindLoop, syntax.KindSelection)

	assert.True(t, s.Contains(syntax.KindLoop))
	assert.True(t, s.Contains(syntax.KindSelection))
	assert.False(t, s.Contains(syntax.KindLambda))
	assert.False(t, s.Contains(syntax.KindOther))
}

func TestKindSetUnionWithout(t *testing.T) {
	t.Parallel()

	a := syntax.NewKindSet(syntax.KindLoop)
	b := syntax.NewKindSet(syntax.KindSelection, syntax.KindTernary)

	u := a.Union(b)
	assert.Equal(t, 3, u.Len())
	assert.True(t, u.Contains(syntax.KindLoop))
	assert.True(t, u.Contains(syntax.KindTernary))

	w := u.Without(syntax.KindLoop, syntax.KindTernary)
	assert.Equal(t, 1, w.Len())
	assert.True(t, w.Contains(syntax.KindSelection))
	assert.False(t, w.Contains(syntax.KindLoop))
}

func TestKindSetKinds(t *testing.T) {
	t.Parallel()

	s := syntax.NewKindSet(syntax.KindIdentifier, syntax.KindFunction, syntax.KindElse)

	kinds := s.Kinds()
	assert.Equal(t, []syntax.Kind{syntax.KindFunction, syntax.KindElse, syntax.KindIdentifier}, kinds)
}
