package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/templatematch/internal/catalog"
)

func TestDeriveFragments_SplitsOnPlaceholders(t *testing.T) {
	frags := deriveFragments("ERROR <*> task <id> failed")
	assert.Equal(t, []string{"ERROR ", " task ", " failed"}, frags)
}

func TestValidator_RejectsOutOfOrderFragments(t *testing.T) {
	v := NewValidator(catalog.New(1), 1)
	candidate := GeneratedTemplate{Pattern: "<*> ERROR <*> failed", Fragments: []string{" ERROR ", " failed"}}

	_, _, ok := v.Validate(candidate, "x failed then ERROR here")
	assert.False(t, ok)
}

func TestValidator_RejectsNoQualifyingFragment(t *testing.T) {
	v := NewValidator(catalog.New(5), 5)
	candidate := GeneratedTemplate{Pattern: "<*> a <*> b <*>", Fragments: []string{" a ", " b "}}

	_, _, ok := v.Validate(candidate, "x a y b z")
	assert.False(t, ok)
}

func TestValidator_AcceptsOrderedQualifyingFragments(t *testing.T) {
	v := NewValidator(catalog.New(1), 1)
	candidate := GeneratedTemplate{Pattern: "ERROR <*> failed", Fragments: []string{"ERROR ", " failed"}}

	_, frags, ok := v.Validate(candidate, "ERROR task-42 failed")
	require.True(t, ok)
	assert.Equal(t, []string{"ERROR ", " failed"}, frags)
}

func TestValidator_RejectsDuplicateOfInstalledPattern(t *testing.T) {
	cat := catalog.New(1)
	_, err := cat.Install("ERROR <*> failed", []string{"ERROR ", " failed"}, "", nil)
	require.NoError(t, err)

	v := NewValidator(cat, 1)
	candidate := GeneratedTemplate{Pattern: "ERROR <*> failed", Fragments: []string{"ERROR ", " failed"}}

	_, _, ok := v.Validate(candidate, "ERROR: task-42 failed")
	assert.False(t, ok)
}

func TestValidator_MasksDynamicValuesBeforeDedup(t *testing.T) {
	cat := catalog.New(1)
	_, err := cat.Install("connect to <IP> failed", []string{"connect to ", " failed"}, "", nil)
	require.NoError(t, err)

	v := NewValidator(cat, 1)
	candidate := GeneratedTemplate{Pattern: "connect to 10.0.0.5 failed", Fragments: []string{"connect to ", " failed"}}

	_, _, ok := v.Validate(candidate, "connect to 10.0.0.5 failed")
	assert.False(t, ok, "pattern should be masked to the same canonical form as the installed template")
}
