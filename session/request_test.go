package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginRequestRedactsPassword(t *testing.T) {
	expectedMap := map[string]string{"email": "ada@example.com", "password": "***"}
	expected, _ := json.Marshal(expectedMap)
	loginReq := LoginRequest{Email: "ada@example.com", Password: "password"}

	actual, _ := json.Marshal(loginReq)

	assert.EqualValues(t, expected, actual)
	assert.EqualValues(t, "password", loginReq.Password)
}

func TestSignupRequestRedactsPassword(t *testing.T) {
	signupReq := SignupRequest{
		Email:     "ada@example.com",
		Password:  "password",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}

	expectedMap := map[string]string{
		"email":     "ada@example.com",
		"password":  "***",
		"firstName": "Ada",
		"lastName":  "Lovelace",
	}
	expected, _ := json.Marshal(expectedMap)

	actual, err := json.Marshal(signupReq)
	assert.NoError(t, err)
	assert.JSONEq(t, string(expected), string(actual))
	assert.EqualValues(t, "password", signupReq.Password)
}
