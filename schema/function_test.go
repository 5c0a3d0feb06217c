package schema

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionFullyQualifiedName(t *testing.T) {
	t.Parallel()
	table := newBoundWordsTable(t)
	word, err := table.Column("word")
	require.NoError(t, err)

	fqn, err := Count().FullyQualifiedName()
	require.NoError(t, err)
	assert.Equal(t, "COUNT(*)", fqn)

	fqn, err = Count(word).FullyQualifiedName()
	require.NoError(t, err)
	assert.Equal(t, "COUNT(words.word)", fqn)

	fqn, err = Min(word).FullyQualifiedName()
	require.NoError(t, err)
	assert.Equal(t, "MIN(words.word)", fqn)
}

func TestFunctionAlias(t *testing.T) {
	t.Parallel()
	table := newBoundWordsTable(t)
	word, err := table.Column("word")
	require.NoError(t, err)

	alias, err := Count().Alias()
	require.NoError(t, err)
	assert.Equal(t, "FUNCTION.count", alias)

	alias, err = Max(word).Alias()
	require.NoError(t, err)
	assert.Equal(t, "FUNCTION.max.COLUMN.words.word", alias)
}

func TestFunctionEquality(t *testing.T) {
	t.Parallel()
	table := newBoundWordsTable(t)
	word, err := table.Column("word")
	require.NoError(t, err)

	assert.True(t, Min(word).Equal(Min(word)), "separate instances with the same name are equal")
	assert.False(t, Min(word).Equal(Max(word)))
	assert.False(t, Count().Equal(Count(word)))
	assert.False(t, Count().Equal(nil))
}

func TestFunctionParameterName(t *testing.T) {
	t.Parallel()
	table := newBoundWordsTable(t)
	word, err := table.Column("word")
	require.NoError(t, err)

	name, err := Sum(word).ParameterName()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^sum_words_word_[0-9a-f]{8}$`), name)

	name, err = Count().ParameterName()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^count_[0-9a-f]{8}$`), name)
}

func TestFunctionByName(t *testing.T) {
	t.Parallel()
	table := newBoundWordsTable(t)
	word, err := table.Column("word")
	require.NoError(t, err)

	f, err := FunctionByName("count", nil)
	require.NoError(t, err)
	assert.Equal(t, "count", f.Name())

	f, err = FunctionByName("MIN", word)
	require.NoError(t, err)
	assert.True(t, f.Equal(Min(word)))

	_, err = FunctionByName("median", nil)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	_, err = FunctionByName("min", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a column")
}

func TestFunctionMandatoryColumn(t *testing.T) {
	t.Parallel()
	for _, f := range []*Function{Min(nil), Max(nil), Sum(nil), Avg(nil)} {
		assert.Error(t, f.Err())
	}
	assert.Error(t, Count(nil, nil).Err())
}
