package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountID_ParseAndString(t *testing.T) {
	id := NewAccountID()
	require.False(t, id.IsZero())

	parsed, err := ParseAccountID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseAccountID("not-a-uuid")
	assert.Error(t, err)
}

func TestAccountID_JSON(t *testing.T) {
	id := NewAccountID()

	data, err := json.Marshal(map[string]AccountID{"id": id})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+id.String()+`"}`, string(data))

	var decoded map[string]AccountID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded["id"])
}

func TestAccountID_Owns(t *testing.T) {
	owner := NewAccountID()

	assert.True(t, owner.Owns(owner))
	assert.False(t, owner.Owns(NewAccountID()))
	assert.False(t, NilAccountID.Owns(NilAccountID))
	assert.False(t, NilAccountID.Owns(owner))
}

func TestAccountUpdate_IsEmpty(t *testing.T) {
	name := "Ann"

	assert.True(t, AccountUpdate{}.IsEmpty())
	assert.False(t, AccountUpdate{Name: &name}.IsEmpty())
}
