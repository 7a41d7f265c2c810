package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relnorm/internal/domain"
)

func names(sets []domain.AttributeSet) [][]string {
	out := make([][]string, len(sets))
	for i, s := range sets {
		out[i] = s.Names()
	}
	return out
}

func TestCandidateKeys(t *testing.T) {
	tests := []struct {
		name string
		rel  domain.Relation
		want [][]string
	}{
		{
			name: "two_simple_keys",
			rel: domain.Relation{
				domain.RowOf("A", 1, "B", "x", "C", "same"),
				domain.RowOf("A", 2, "B", "y", "C", "same"),
			},
			want: [][]string{{"A"}, {"B"}},
		},
		{
			name: "composite_only",
			rel: domain.Relation{
				domain.RowOf("A", 1, "B", 1),
				domain.RowOf("A", 1, "B", 2),
				domain.RowOf("A", 2, "B", 1),
			},
			want: [][]string{{"A", "B"}},
		},
		{
			name: "course_student",
			rel: domain.Relation{
				domain.RowOf("Course", "Math", "Student", "Melisa", "CourseFee", 500),
				domain.RowOf("Course", "Physics", "Student", "Melisa", "CourseFee", 600),
				domain.RowOf("Course", "Math", "Student", "John", "CourseFee", 500),
				domain.RowOf("Course", "Biology", "Student", "Melisa", "CourseFee", 500),
			},
			want: [][]string{{"Course", "Student"}},
		},
		{
			name: "duplicate_rows_have_no_key",
			rel: domain.Relation{
				domain.RowOf("A", 1, "B", 2),
				domain.RowOf("A", 1, "B", 2),
			},
			want: [][]string{},
		},
		{
			name: "nulls_compare_equal",
			rel: domain.Relation{
				domain.RowOf("A", nil, "B", 1),
				domain.RowOf("A", nil, "B", 2),
			},
			want: [][]string{{"B"}},
		},
		{
			name: "single_row",
			rel:  domain.Relation{domain.RowOf("A", 1, "B", 2)},
			want: [][]string{{"A"}, {"B"}},
		},
		{
			name: "delimiter_in_values",
			rel: domain.Relation{
				domain.RowOf("A", "a|b", "B", "c"),
				domain.RowOf("A", "a", "B", "b|c"),
				domain.RowOf("A", "a", "B", "c"),
				domain.RowOf("A", "a|b", "B", "b|c"),
			},
			want: [][]string{{"A", "B"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Synthesizer{}.CandidateKeys(tt.rel)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))

			for i := range got {
				assert.True(t, IsSuperKey(tt.rel, got[i]))
				for j := range got {
					if i != j {
						assert.False(t, got[i].IsSubsetOf(got[j]), "%v ⊆ %v", got[i], got[j])
					}
				}
			}
		})
	}
}

func TestCandidateKeys_Empty(t *testing.T) {
	got, err := Synthesizer{}.CandidateKeys(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCandidateKeys_Limit(t *testing.T) {
	rel := domain.Relation{domain.RowOf("A", 1, "B", 2, "C", 3)}

	_, err := Synthesizer{MaxAttributes: 2}.CandidateKeys(rel)
	require.ErrorIs(t, err, ErrTooManyAttributes)

	got, err := Synthesizer{MaxAttributes: 3}.CandidateKeys(rel)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestCandidateKeys_SparseRowsReadNull(t *testing.T) {
	rel := domain.Relation{
		domain.RowOf("A", 1, "B", 1),
		domain.RowOf("A", 1),
	}
	got, err := Synthesizer{}.CandidateKeys(rel)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"B"}}, names(got))
}

func TestCombinations(t *testing.T) {
	var got [][]int
	combinations(4, 2, func(idx []int) {
		got = append(got, append([]int(nil), idx...))
	})
	assert.Equal(t, [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}, got)

	called := false
	combinations(2, 3, func([]int) { called = true })
	assert.False(t, called)
}

func TestSelect(t *testing.T) {
	a := domain.NewAttributeSet("A")
	b := domain.NewAttributeSet("B")
	ab := domain.NewAttributeSet("A", "B")
	cd := domain.NewAttributeSet("C", "D")
	abc := domain.NewAttributeSet("A", "B", "C")

	tests := []struct {
		name   string
		keys   []domain.AttributeSet
		want   []string
		wantOK bool
	}{
		{name: "empty", keys: nil, wantOK: false},
		{name: "prefers_composite", keys: []domain.AttributeSet{a, abc}, want: []string{"A", "B", "C"}, wantOK: true},
		{name: "smallest_composite", keys: []domain.AttributeSet{abc, cd}, want: []string{"C", "D"}, wantOK: true},
		{name: "tie_first_discovered", keys: []domain.AttributeSet{ab, cd}, want: []string{"A", "B"}, wantOK: true},
		{name: "simple_only", keys: []domain.AttributeSet{a, b}, want: []string{"A"}, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Select(tt.keys)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got.Names())
			}
		})
	}
}
