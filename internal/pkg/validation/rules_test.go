package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Username string `validate:"required,username"`
	Amount   string `validate:"money"`
}

func TestRegisterRules(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterRules(v))

	assert.NoError(t, v.Struct(sample{Username: "m.dupont", Amount: "25.50"}))
	assert.NoError(t, v.Struct(sample{Username: "teacher_1", Amount: ""}))

	err := v.Struct(sample{Username: "a b", Amount: "12.345"})
	require.Error(t, err)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	tags := map[string]string{}
	for _, fe := range verrs {
		tags[fe.Field()] = fe.Tag()
	}
	assert.Equal(t, map[string]string{"Username": "username", "Amount": "money"}, tags)
}

func TestRegisterGinRules(t *testing.T) {
	assert.NoError(t, RegisterGinRules())
}

func TestValidMoney(t *testing.T) {
	assert.True(t, ValidMoney("  "))
	assert.True(t, ValidMoney("30"))
	assert.False(t, ValidMoney("-3"))
	assert.False(t, ValidMoney("+-1"))
	assert.False(t, ValidMoney("1.+5"))
	assert.False(t, ValidMoney("184467440737095517"))
}
