package doctor

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCheck struct {
	mock.Mock
}

func (m *mockCheck) Name() string     { return m.Called().String(0) }
func (m *mockCheck) Category() string { return m.Called().String(0) }

func (m *mockCheck) Run(ctx context.Context) *CheckResult {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*CheckResult)
	return res
}

func newMockCheck(t *testing.T, name string, result *CheckResult) *mockCheck {
	t.Helper()
	m := &mockCheck{}
	m.On("Name").Return(name).Maybe()
	m.On("Category").Return("test").Maybe()
	m.On("Run", mock.Anything).Return(result).Maybe()
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func TestRunner_Run(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Severity
		want     Summary
	}{
		{name: "empty runner", want: Summary{}},
		{name: "all passed", statuses: []Severity{SeverityPass, SeverityPass}, want: Summary{Passed: 2}},
		{
			name:     "mixed",
			statuses: []Severity{SeverityPass, SeverityInfo, SeverityWarning, SeverityError, SeverityWarning},
			want:     Summary{Passed: 1, Info: 1, Warnings: 2, Errors: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner()
			for _, s := range tt.statuses {
				r.AddCheck(newMockCheck(t, "c", &CheckResult{Name: "c", Category: "test", Status: s}))
			}

			report := r.Run(context.Background())
			assert.Len(t, report.Results, len(tt.statuses))
			assert.Equal(t, tt.want, report.Summary)
			assert.Equal(t, tt.want.Errors > 0, report.HasErrors())
			assert.Equal(t, tt.want.Warnings > 0, report.HasWarnings())
			assert.False(t, report.Timestamp.IsZero())
		})
	}
}

func TestRunner_FillsNameAndCategory(t *testing.T) {
	r := NewRunner()
	r.AddCheck(newMockCheck(t, "named", &CheckResult{Status: SeverityPass}))
	r.AddCheck(newMockCheck(t, "nil-result", nil))

	report := r.Run(context.Background())
	require.Len(t, report.Results, 1)
	assert.Equal(t, "named", report.Results[0].Name)
	assert.Equal(t, "test", report.Results[0].Category)
}

func TestRunner_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := &mockCheck{}
	r := NewRunner()
	r.AddCheck(m)

	report := r.Run(ctx)
	assert.Empty(t, report.Results)
	m.AssertNotCalled(t, "Run", mock.Anything)
}

type fixingCheck struct {
	*mockCheck
	canFix bool
	fixed  int
}

func (f *fixingCheck) CanFix() bool { return f.canFix }

func (f *fixingCheck) Fix() []FixResult {
	f.fixed++
	return []FixResult{{Path: "/x", Fixed: true, Description: "done"}}
}

func TestRunner_Fix(t *testing.T) {
	willFix := &fixingCheck{mockCheck: newMockCheck(t, "fix", &CheckResult{Status: SeverityWarning}), canFix: true}
	nothing := &fixingCheck{mockCheck: newMockCheck(t, "clean", &CheckResult{Status: SeverityPass})}

	r := NewRunner()
	r.AddCheck(willFix, nothing, newMockCheck(t, "plain", &CheckResult{Status: SeverityPass}))
	r.Run(context.Background())

	results := r.Fix()
	require.Len(t, results, 1)
	assert.Equal(t, "/x", results[0].Path)
	assert.Equal(t, 1, willFix.fixed)
	assert.Equal(t, 0, nothing.fixed)
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "unknown", Severity(42).String())

	_, err := Severity(-1).MarshalText()
	require.Error(t, err)

	data, err := json.Marshal(&CheckResult{Name: "n", Category: "c", Status: SeverityError, Message: "m"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"n","category":"c","status":"error","message":"m"}`, string(data))
}
