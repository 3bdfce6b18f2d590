package users

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserRequestValidate(t *testing.T) {
	valid := CreateUserRequest{Name: "Ana", Email: "ana@x.com", Age: 25}
	require.NoError(t, valid.Validate())

	t.Run("Name", func(t *testing.T) {
		cases := map[string]string{
			"empty":    "",
			"tooShort": "A",
			"tooLong":  strings.Repeat("a", NameMaxLength+1),
		}
		for name, value := range cases {
			t.Run(name, func(t *testing.T) {
				req := valid
				req.Name = value
				assert.Error(t, req.Validate())
			})
		}

		req := valid
		req.Name = strings.Repeat("a", NameMaxLength)
		assert.NoError(t, req.Validate())

		// bounds count characters, not bytes
		req.Name = strings.Repeat("ã", NameMaxLength)
		assert.NoError(t, req.Validate())
	})

	t.Run("Email", func(t *testing.T) {
		for _, value := range []string{"", "not-an-email", "a@b", "a@b.c", "@x.com", "ana@"} {
			req := valid
			req.Email = value
			assert.Errorf(t, req.Validate(), "email %q should be rejected", value)
		}

		for _, value := range []string{"ana@x.com", "joao.silva@email.com", "a+b@sub.domain.org"} {
			req := valid
			req.Email = value
			assert.NoErrorf(t, req.Validate(), "email %q should be accepted", value)
		}
	})

	t.Run("Age", func(t *testing.T) {
		for _, value := range []int{0, -1, AgeMax + 1} {
			req := valid
			req.Age = value
			assert.Errorf(t, req.Validate(), "age %d should be rejected", value)
		}

		for _, value := range []int{AgeMin, 25, AgeMax} {
			req := valid
			req.Age = value
			assert.NoErrorf(t, req.Validate(), "age %d should be accepted", value)
		}
	})
}

func TestUpdateUserRequestValidate(t *testing.T) {
	t.Run("EmptyRequestIsValid", func(t *testing.T) {
		req := UpdateUserRequest{}
		assert.NoError(t, req.Validate())
	})

	t.Run("SetFieldsAreChecked", func(t *testing.T) {
		shortName := "A"
		assert.Error(t, (&UpdateUserRequest{Name: &shortName}).Validate())

		badEmail := "nope"
		assert.Error(t, (&UpdateUserRequest{Email: &badEmail}).Validate())

		badAge := 0
		assert.Error(t, (&UpdateUserRequest{Age: &badAge}).Validate())

		goodAge := 42
		assert.NoError(t, (&UpdateUserRequest{Age: &goodAge}).Validate())
	})
}

func TestUpdateUserRequestApply(t *testing.T) {
	user := User{Name: "Ana", Email: "ana@x.com", Age: 25}

	age := 26
	(&UpdateUserRequest{Age: &age}).Apply(&user)

	assert.Equal(t, 26, user.Age)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, "ana@x.com", user.Email)
}
