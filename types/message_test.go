package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleValid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleSystem, true},
		{RoleUser, true},
		{RoleAssistant, true},
		{Role("tool"), false},
		{Role(""), false},
		{Role("User"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.Valid())
		})
	}
}

func TestRoleUnmarshalText(t *testing.T) {
	t.Run("known role", func(t *testing.T) {
		var r Role
		require.NoError(t, r.UnmarshalText([]byte("assistant")))
		assert.Equal(t, RoleAssistant, r)
	})

	t.Run("unknown role", func(t *testing.T) {
		r := RoleUser
		err := r.UnmarshalText([]byte("function"))
		assert.Error(t, err)
		assert.Equal(t, RoleUser, r, "role must be left untouched on error")
	})
}

func TestMessageConstructors(t *testing.T) {
	assert.Equal(t, Message{Role: RoleSystem, Content: "s"}, SystemMessage("s"))
	assert.Equal(t, Message{Role: RoleUser, Content: "u"}, UserMessage("u"))
	assert.Equal(t, Message{Role: RoleAssistant, Content: "a"}, AssistantMessage("a"))
}

func TestCloneMessages(t *testing.T) {
	assert.Nil(t, CloneMessages(nil))

	orig := []Message{UserMessage("hello")}
	clone := CloneMessages(orig)
	clone[0].Content = "changed"
	clone = append(clone, AssistantMessage("extra"))

	assert.Equal(t, "hello", orig[0].Content)
	assert.Len(t, orig, 1)
	assert.Len(t, clone, 2)
}
