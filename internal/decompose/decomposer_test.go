package decompose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relnorm/internal/domain"
	"relnorm/internal/keys"
)

func courses() domain.Relation {
	return domain.Relation{
		domain.RowOf("Course", "Math", "Student", "Melisa", "CourseFee", 500),
		domain.RowOf("Course", "Physics", "Student", "Melisa", "CourseFee", 600),
		domain.RowOf("Course", "Math", "Student", "John", "CourseFee", 500),
		domain.RowOf("Course", "Biology", "Student", "Melisa", "CourseFee", 500),
	}
}

func TestDecompose_PartialDependency(t *testing.T) {
	d := Decomposer{Prefix: "Uni"}
	res := d.Decompose(courses(), domain.NewAttributeSet("Student", "Course"))

	require.Equal(t, domain.OutcomeDecomposed, res.Outcome)
	require.Len(t, res.Relations, 2)
	assert.Equal(t, "Course", res.Determinant)
	assert.Equal(t, "CourseFee", res.Dependent)
	assert.Empty(t, res.Warnings)

	details, main := res.Relations[0], res.Relations[1]

	assert.Equal(t, "UNI_COURSE_DETAILS", details.Name)
	assert.Equal(t, []string{"COURSE"}, details.PrimaryKeys)
	assert.Empty(t, details.ForeignKeys)
	require.Len(t, details.Data, 3, "duplicate (Math, 500) collapses")
	assert.Equal(t, []string{"Course", "CourseFee"}, details.Data[0].Names())
	assert.Equal(t, domain.Text("Math"), details.Data[0].Get("Course"))
	assert.Equal(t, domain.Int(500), details.Data[0].Get("CourseFee"))
	assert.Equal(t, domain.Text("Physics"), details.Data[1].Get("Course"))
	assert.Equal(t, domain.Text("Biology"), details.Data[2].Get("Course"))

	assert.Equal(t, "UNI_MAINRELATION", main.Name)
	assert.Equal(t, []string{"COURSE", "STUDENT"}, main.PrimaryKeys, "heading order, not key insertion order")
	assert.Equal(t, map[string]string{"COURSE": "UNI_COURSE_DETAILS(COURSE)"}, main.ForeignKeys)
	require.Len(t, main.Data, 4)
	for _, row := range main.Data {
		assert.False(t, row.Has("CourseFee"))
		assert.Equal(t, []string{"Course", "Student"}, row.Names())
	}
}

func TestDecompose_ForeignKeyResolves(t *testing.T) {
	res := Decomposer{Prefix: "Uni"}.Decompose(courses(), domain.NewAttributeSet("Course", "Student"))
	require.Len(t, res.Relations, 2)

	for col, ref := range res.Relations[1].ForeignKeys {
		table, target, err := domain.ParseReference(ref)
		require.NoError(t, err)
		assert.Equal(t, res.Relations[0].Name, table)
		assert.Contains(t, res.Relations[0].PrimaryKeys, target)
		assert.Contains(t, res.Relations[1].PrimaryKeys, col)
	}
}

func TestDecompose_Unchanged(t *testing.T) {
	tests := []struct {
		name    string
		rel     domain.Relation
		key     domain.AttributeSet
		wantPKs []string
	}{
		{
			name: "simple_key",
			rel: domain.Relation{
				domain.RowOf("ID", 1, "Name", "a"),
				domain.RowOf("ID", 2, "Name", "b"),
			},
			key:     domain.NewAttributeSet("ID"),
			wantPKs: []string{"ID"},
		},
		{
			name: "no_partial_dependency",
			rel: domain.Relation{
				domain.RowOf("A", 1, "B", 1, "C", "x"),
				domain.RowOf("A", 1, "B", 2, "C", "y"),
				domain.RowOf("A", 2, "B", 1, "C", "z"),
			},
			key:     domain.NewAttributeSet("A", "B"),
			wantPKs: []string{"A", "B"},
		},
		{
			name: "all_null_determinant",
			rel: domain.Relation{
				domain.RowOf("A", nil, "B", 1, "C", "x"),
				domain.RowOf("A", nil, "B", 2, "C", "x"),
			},
			key:     domain.NewAttributeSet("A", "B"),
			wantPKs: []string{"A", "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Decomposer{Prefix: "T"}.Decompose(tt.rel, tt.key)
			assert.Equal(t, domain.OutcomeUnchanged, res.Outcome)
			require.Len(t, res.Relations, 1)
			assert.Equal(t, "T_MAINRELATION", res.Relations[0].Name)
			assert.Equal(t, tt.wantPKs, res.Relations[0].PrimaryKeys)
			assert.Empty(t, res.Relations[0].ForeignKeys)
			assert.True(t, tt.rel.Equal(res.Relations[0].Data))
		})
	}
}

func TestDecompose_ConsistencyFault(t *testing.T) {
	rel := domain.Relation{
		domain.RowOf("Course Fee", 1, "Course_Fee", 2, "ID", 1),
		domain.RowOf("Course Fee", 1, "Course_Fee", 3, "ID", 2),
	}

	tests := []struct {
		name string
		key  domain.AttributeSet
	}{
		{name: "composite_key", key: domain.NewAttributeSet("ID", "Course_Fee")},
		{name: "simple_key", key: domain.NewAttributeSet("ID")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Decomposer{Prefix: "X"}.Decompose(rel, tt.key)
			assert.Equal(t, domain.OutcomeFallback, res.Outcome)
			require.Len(t, res.Relations, 1)
			assert.Empty(t, res.Relations[0].PrimaryKeys)
			require.Len(t, res.Warnings, 1)
			assert.Equal(t, domain.WarnConsistencyFault, res.Warnings[0].Code)
			assert.Contains(t, res.Warnings[0].Message, "COURSE_FEE")
		})
	}
}

func TestDecompose_DoesNotMutateInput(t *testing.T) {
	rel := courses()
	before := rel.Clone()
	Decomposer{Prefix: "Uni"}.Decompose(rel, domain.NewAttributeSet("Course", "Student"))
	assert.True(t, before.Equal(rel))
}

func TestDependsOn(t *testing.T) {
	tests := []struct {
		name string
		rel  domain.Relation
		dep  string
		want bool
	}{
		{
			name: "conflicting_dependents",
			rel: domain.Relation{
				domain.RowOf("D", "a", "X", 1),
				domain.RowOf("D", "a", "X", 2),
			},
			dep:  "X",
			want: false,
		},
		{
			name: "null_dependents_compare_equal",
			rel: domain.Relation{
				domain.RowOf("D", "a", "Y", nil),
				domain.RowOf("D", "a", "Y", nil),
				domain.RowOf("D", "b", "Y", 5),
			},
			dep:  "Y",
			want: true,
		},
		{
			name: "null_determinants_must_agree",
			rel: domain.Relation{
				domain.RowOf("D", nil, "X", 1),
				domain.RowOf("D", nil, "X", 2),
				domain.RowOf("D", "b", "X", 3),
			},
			dep:  "X",
			want: false,
		},
		{
			name: "null_determinant_is_a_value",
			rel: domain.Relation{
				domain.RowOf("D", nil, "X", 1),
				domain.RowOf("D", nil, "X", 1),
				domain.RowOf("D", "b", "X", 3),
			},
			dep:  "X",
			want: true,
		},
		{
			name: "all_null_determinant",
			rel: domain.Relation{
				domain.RowOf("D", nil, "X", 1),
				domain.RowOf("D", nil, "X", 1),
			},
			dep:  "X",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DependsOn(tt.rel, "D", tt.dep))
		})
	}
}

func TestDecompose_NullDeterminantKeepsDetailsKeyUnique(t *testing.T) {
	tests := []struct {
		name        string
		rel         domain.Relation
		wantOutcome domain.Outcome
	}{
		{
			name: "conflicting_null_rows",
			rel: domain.Relation{
				domain.RowOf("Course", nil, "Student", "a", "Fee", 1),
				domain.RowOf("Course", nil, "Student", "b", "Fee", 2),
				domain.RowOf("Course", "X", "Student", "a", "Fee", 3),
				domain.RowOf("Course", "X", "Student", "b", "Fee", 3),
			},
			wantOutcome: domain.OutcomeUnchanged,
		},
		{
			name: "agreeing_null_rows",
			rel: domain.Relation{
				domain.RowOf("Course", nil, "Student", "a", "Fee", 1),
				domain.RowOf("Course", nil, "Student", "b", "Fee", 1),
				domain.RowOf("Course", "X", "Student", "a", "Fee", 3),
				domain.RowOf("Course", "X", "Student", "b", "Fee", 3),
			},
			wantOutcome: domain.OutcomeDecomposed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Decomposer{Prefix: "P"}.Decompose(tt.rel, domain.NewAttributeSet("Course", "Student"))
			require.Equal(t, tt.wantOutcome, res.Outcome)
			if res.Outcome != domain.OutcomeDecomposed {
				return
			}
			details := res.Relations[0]
			assert.Equal(t, "P_COURSE_DETAILS", details.Name)
			assert.Len(t, details.Data, 2)
			assert.True(t, keys.IsSuperKey(details.Data, domain.NewAttributeSet("Course")),
				"details primary key must identify its rows")
		})
	}
}

func TestUnkeyed(t *testing.T) {
	u := Decomposer{Prefix: "EXCEL_DATA"}.Unkeyed(courses())
	assert.Equal(t, "EXCEL_DATA_MAINRELATION", u.Name)
	assert.Empty(t, u.PrimaryKeys)
	assert.NotNil(t, u.PrimaryKeys)
	assert.Len(t, u.Data, 4)
}
